package launcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/ethereum/go-ethereum/metrics/exp"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-raffle/api"
	"github.com/rony4d/go-raffle/history"
	"github.com/rony4d/go-raffle/integration"
	"github.com/rony4d/go-raffle/keeper"
	"github.com/rony4d/go-raffle/ledger"
	"github.com/rony4d/go-raffle/raffle"
	"github.com/rony4d/go-raffle/vrf"
)

// Node runs one raffle on a development network: a fake-genesis ledger, a
// mock randomness coordinator with its responder, the keeper and the RPC
// endpoints.
type Node struct {
	cfg    Config
	preset integration.PresetConfig
	log    *logrus.Entry

	ledger    *ledger.StateLedger
	coord     *vrf.MockCoordinator
	store     history.Store
	raffle    *raffle.Raffle
	responder *vrf.Responder
	keeper    *keeper.Keeper // nil when disabled

	rpc      *rpc.Server
	listener net.Listener
	httpSrv  *http.Server

	quit chan struct{}
	wg   sync.WaitGroup
}

// NewNode assembles every component from cfg. Nothing runs until Start.
func NewNode(cfg Config, clock mclock.Clock, le *logrus.Entry) (*Node, error) {
	rcfg, preset, err := cfg.MakeRaffleConfig()
	if err != nil {
		return nil, err
	}
	if !preset.Development {
		return nil, errors.Errorf("network %q (chain %d) is not a development network; only development networks can be served", preset.Name, preset.ChainID)
	}
	kcfg, err := cfg.Keeper.keeperConfig()
	if err != nil {
		return nil, err
	}
	vcfg, err := cfg.VRF.responderConfig()
	if err != nil {
		return nil, err
	}
	funding, err := parseWei("vrf funding", cfg.VRF.Funding)
	if err != nil {
		return nil, err
	}
	balance, err := parseWei("fakenet balance", cfg.FakeNet.Balance)
	if err != nil {
		return nil, err
	}
	if le == nil {
		le = logrus.NewEntry(logrus.StandardLogger())
	}

	n := &Node{
		cfg:    cfg,
		preset: preset,
		log:    le.WithField("node", cfg.Node.Name),
		quit:   make(chan struct{}),
	}

	n.ledger, err = ledger.NewStateLedger()
	if err != nil {
		return nil, err
	}
	if _, err := ledger.ApplyFakeGenesis(n.ledger, ledger.FakeGenesis(cfg.FakeNet.Accounts, balance)); err != nil {
		return nil, errors.Wrap(err, "failed to apply genesis")
	}

	n.coord = vrf.NewMockCoordinator(nil)
	if rcfg.SubscriptionID == 0 {
		rcfg.SubscriptionID = n.coord.CreateSubscription()
	} else if _, _, err := n.coord.GetSubscription(rcfg.SubscriptionID); err != nil {
		return nil, errors.Wrapf(err, "subscription %d", rcfg.SubscriptionID)
	}
	if err := n.coord.FundSubscription(rcfg.SubscriptionID, funding); err != nil {
		return nil, err
	}

	if n.store, err = openStore(cfg); err != nil {
		return nil, err
	}

	// The pot lives at the address the deployer's first contract would get.
	address := crypto.CreateAddress(ledger.FakeAccount(0), 0)
	n.raffle, err = raffle.New(address, rcfg, n.ledger, n.coord, raffle.NewClock(clock, time.Now()), n.store)
	if err != nil {
		n.store.Close()
		return nil, err
	}
	if err := n.coord.AddConsumer(rcfg.SubscriptionID, address, n.raffle); err != nil {
		n.store.Close()
		return nil, err
	}

	n.responder = vrf.NewResponder(vcfg, n.coord, clock)
	if cfg.Keeper.Enabled {
		n.keeper = keeper.New(kcfg, n.raffle, clock)
	}

	var dev *api.DevAPI
	if serves(cfg.Node.RPC.HTTPAPI, "dev") {
		dev = api.NewDevAPI(n.raffle, n.ledger, ledger.FakeAccounts(cfg.FakeNet.Accounts))
	}
	if n.rpc, err = api.NewServer(api.APIs(n.raffle, dev)); err != nil {
		n.store.Close()
		return nil, err
	}
	return n, nil
}

func openStore(cfg Config) (history.Store, error) {
	if cfg.History.Backend == "memory" {
		return history.NewMemoryStore(), nil
	}
	path := cfg.History.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(cfg.Node.DataDir, path)
	}
	return history.OpenBoltStore(path)
}

func serves(modules []string, namespace string) bool {
	for _, m := range modules {
		if m == namespace {
			return true
		}
	}
	return false
}

// Start launches the background services.
func (n *Node) Start() error {
	if n.cfg.Node.RPC.HTTPEnabled {
		addr := net.JoinHostPort(n.cfg.Node.RPC.HTTPAddr, fmt.Sprint(n.cfg.Node.RPC.HTTPPort))
		listener, err := net.Listen("tcp", addr)
		if err != nil {
			return errors.Wrap(err, "failed to start HTTP-RPC server")
		}
		n.listener = listener
		n.httpSrv = &http.Server{Handler: n.rpc}
		n.wg.Add(1)
		go func() {
			defer n.wg.Done()
			if err := n.httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
				n.log.WithError(err).Error("HTTP-RPC server failed")
			}
		}()
		n.log.WithFields(logrus.Fields{"url": n.HTTPEndpoint(), "apis": n.cfg.Node.RPC.HTTPAPI}).Info("HTTP-RPC server started")
	}

	if n.cfg.Node.Metrics.Enabled {
		if metrics.Enabled {
			exp.Setup(net.JoinHostPort(n.cfg.Node.Metrics.HTTPAddr, fmt.Sprint(n.cfg.Node.Metrics.HTTPPort)))
		} else {
			n.log.Warn("Metrics requested but not collected; pass --metrics on the command line")
		}
	}

	n.wg.Add(1)
	go n.eventLoop()

	n.responder.Start()
	if n.keeper != nil {
		n.keeper.Start()
	}

	n.log.WithFields(logrus.Fields{
		"network": n.preset.Name,
		"chainid": n.preset.ChainID,
		"raffle":  n.raffle.Address().Hex(),
		"fee":     n.raffle.EntranceFee(),
		"keeper":  n.keeper != nil,
	}).Info("Raffle node started")
	return nil
}

// Stop shuts every service down and releases the history store.
func (n *Node) Stop() error {
	if n.keeper != nil {
		n.keeper.Stop()
	}
	n.responder.Stop()

	if n.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		n.httpSrv.Shutdown(ctx)
		cancel()
	}
	n.rpc.Stop()

	close(n.quit)
	n.raffle.Close()
	n.coord.Close()
	n.wg.Wait()

	n.log.Info("Raffle node stopped")
	return n.store.Close()
}

// Attach returns an in-process RPC client.
func (n *Node) Attach() *rpc.Client {
	return rpc.DialInProc(n.rpc)
}

// HTTPEndpoint returns the URL of the HTTP-RPC server, or "" if it is off.
func (n *Node) HTTPEndpoint() string {
	if n.listener == nil {
		return ""
	}
	return "http://" + n.listener.Addr().String()
}

func (n *Node) Raffle() *raffle.Raffle            { return n.raffle }
func (n *Node) Ledger() *ledger.StateLedger       { return n.ledger }
func (n *Node) Coordinator() *vrf.MockCoordinator { return n.coord }

// eventLoop reports raffle events through the launcher's logger.
func (n *Node) eventLoop() {
	defer n.wg.Done()

	var (
		entered   = make(chan raffle.EnteredEvent, 16)
		closed    = make(chan raffle.RoundClosedEvent, 4)
		picked    = make(chan raffle.WinnerPickedEvent, 4)
		fulfilled = make(chan vrf.RandomWordsFulfilled, 4)
	)
	subs := []interface{ Unsubscribe() }{
		n.raffle.SubscribeEntered(entered),
		n.raffle.SubscribeRoundClosed(closed),
		n.raffle.SubscribeWinnerPicked(picked),
		n.coord.SubscribeRandomWordsFulfilled(fulfilled),
	}
	defer func() {
		for _, sub := range subs {
			sub.Unsubscribe()
		}
	}()

	for {
		select {
		case ev := <-entered:
			n.log.WithFields(logrus.Fields{
				"round":  ev.Round,
				"player": ev.Player.Hex(),
				"value":  ev.Value,
			}).Info("Player entered")
		case ev := <-closed:
			n.log.WithFields(logrus.Fields{
				"round":   ev.Round,
				"request": ev.RequestID,
				"players": ev.Players,
				"pot":     ev.Balance,
			}).Info("Round closed")
		case ev := <-picked:
			n.log.WithFields(logrus.Fields{
				"round":   ev.Round,
				"request": ev.RequestID,
				"winner":  ev.Winner.Hex(),
				"payout":  ev.Payout,
			}).Info("Winner picked")
		case ev := <-fulfilled:
			if !ev.Success {
				n.log.WithField("request", ev.RequestID).Warn("Randomness delivery rejected")
			}
		case <-n.quit:
			return
		}
	}
}
