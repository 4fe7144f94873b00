package launcher

import (
	"io/ioutil"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-raffle/api"
	"github.com/rony4d/go-raffle/history"
	"github.com/rony4d/go-raffle/ledger"
	"github.com/rony4d/go-raffle/raffle"
)

func testNodeConfig(t *testing.T) Config {
	cfg := defaultConfig()
	cfg.Node.DataDir = t.TempDir()
	cfg.Node.RPC.HTTPEnabled = true
	cfg.Node.RPC.HTTPPort = 0
	cfg.Node.RPC.HTTPAPI = []string{"raffle", "dev"}
	cfg.Keeper.Enabled = false
	cfg.FakeNet.Accounts = 3
	return cfg
}

func quietLog() *logrus.Entry {
	logger := logrus.New()
	logger.Out = ioutil.Discard
	return logrus.NewEntry(logger)
}

func TestNodeRoundOverHTTP(t *testing.T) {
	require := require.New(t)
	clock := new(mclock.Simulated)
	cfg := testNodeConfig(t)

	node, err := NewNode(cfg, clock, quietLog())
	require.NoError(err)
	require.NoError(node.Start())
	require.NotEmpty(node.HTTPEndpoint())

	client, err := rpc.Dial(node.HTTPEndpoint())
	require.NoError(err)

	var accounts []common.Address
	require.NoError(client.Call(&accounts, "dev_accounts"))
	require.Len(accounts, 3)

	var sub hexutil.Uint64
	require.NoError(client.Call(&sub, "raffle_subscriptionId"))
	require.Equal(hexutil.Uint64(1), sub)

	fee := (*hexutil.Big)(raffle.DefaultEntranceFee)
	for _, acc := range accounts[:2] {
		require.NoError(client.Call(nil, "dev_enter", acc, fee))
	}

	clock.Run(31 * time.Second)
	var id hexutil.Uint64
	require.NoError(client.Call(&id, "dev_performUpkeep"))

	// The responder answers after the configured delay.
	clock.WaitForTimers(1)
	clock.Run(time.Second)

	var state hexutil.Uint
	require.NoError(client.Call(&state, "raffle_getRaffleState"))
	require.Equal(hexutil.Uint(raffle.StateOpen), state)

	var winner common.Address
	require.NoError(client.Call(&winner, "raffle_getRecentWinner"))
	require.Contains(accounts[:2], winner)

	var settlements []*api.RPCSettlement
	require.NoError(client.Call(&settlements, "raffle_getSettlements", hexutil.Uint64(0), hexutil.Uint64(0)))
	require.Len(settlements, 1)
	require.Equal(id, settlements[0].RequestID)
	require.Equal(new(big.Int).Mul(raffle.DefaultEntranceFee, big.NewInt(2)), settlements[0].Payout.ToInt())

	client.Close()
	require.NoError(node.Stop())

	// Settlements outlive the node.
	store, err := history.OpenBoltStore(filepath.Join(cfg.Node.DataDir, cfg.History.Path))
	require.NoError(err)
	defer store.Close()
	settled, err := store.Get(1)
	require.NoError(err)
	require.NotNil(settled)
	require.Equal(winner, settled.Winner)
}

func TestNodeKeeperClosesRound(t *testing.T) {
	require := require.New(t)
	clock := new(mclock.Simulated)
	cfg := testNodeConfig(t)
	cfg.Node.RPC.HTTPEnabled = false
	cfg.History.Backend = "memory"
	cfg.Keeper.Enabled = true
	cfg.Keeper.Period = "31s"

	node, err := NewNode(cfg, clock, quietLog())
	require.NoError(err)
	require.NoError(node.Start())
	defer node.Stop()
	clock.WaitForTimers(1)

	r := node.Raffle()
	require.Equal(crypto.CreateAddress(ledger.FakeAccount(0), 0), r.Address())
	require.NoError(r.Enter(ledger.FakeAccount(1), r.EntranceFee()))

	clock.Run(31 * time.Second)
	clock.WaitForTimers(2)
	require.Equal(raffle.StateCalculating, r.RaffleState())

	clock.Run(time.Second)
	require.Equal(raffle.StateOpen, r.RaffleState())
	require.Equal(ledger.FakeAccount(1), r.RecentWinner())
	require.Zero(node.Ledger().BalanceOf(r.Address()).Sign())

	client := node.Attach()
	defer client.Close()
	var round hexutil.Uint64
	require.NoError(client.Call(&round, "raffle_getRound"))
	require.Equal(hexutil.Uint64(2), round)

	// dev is not served unless asked for.
	cfg2 := cfg
	cfg2.Node.RPC.HTTPAPI = []string{"raffle"}
	other, err := NewNode(cfg2, clock, quietLog())
	require.NoError(err)
	defer other.Stop()
	c2 := other.Attach()
	defer c2.Close()
	require.Error(c2.Call(nil, "dev_accounts"))
}

func TestNodeRejectsPublicNetworks(t *testing.T) {
	cfg := testNodeConfig(t)
	cfg.Node.Network = "sepolia"
	_, err := NewNode(cfg, new(mclock.Simulated), quietLog())
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a development network")
}

func TestNodeUnknownSubscription(t *testing.T) {
	cfg := testNodeConfig(t)
	cfg.Raffle.SubscriptionID = 9
	_, err := NewNode(cfg, new(mclock.Simulated), quietLog())
	require.Error(t, err)
}
