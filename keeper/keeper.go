// Package keeper drives upkeep for a raffle: it periodically asks whether the
// live round can be closed and closes it when it can.
package keeper

import (
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/rony4d/go-raffle/raffle"
	"github.com/rony4d/go-raffle/vrf"
)

var (
	checksMeter    = metrics.NewRegisteredCounter("keeper/checks", nil)
	performedMeter = metrics.NewRegisteredCounter("keeper/performed", nil)
	failedMeter    = metrics.NewRegisteredCounter("keeper/failed", nil)
)

// Upkeep is a contract that can be checked and performed.
type Upkeep interface {
	CheckUpkeep(checkData []byte) (bool, []byte)
	PerformUpkeep(performData []byte) (vrf.RequestID, error)
}

// Config tunes the polling loop.
type Config struct {
	// Period between two checks.
	Period time.Duration

	// CheckData is passed to every CheckUpkeep call.
	CheckData []byte
}

// DefaultConfig checks once per second.
func DefaultConfig() Config {
	return Config{Period: time.Second}
}

// Keeper polls an Upkeep on a clock.
type Keeper struct {
	cfg    Config
	upkeep Upkeep
	clock  mclock.Clock

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	log log.Logger
}

// New creates a stopped keeper.
func New(cfg Config, upkeep Upkeep, clock mclock.Clock) *Keeper {
	if cfg.Period <= 0 {
		cfg.Period = DefaultConfig().Period
	}
	return &Keeper{
		cfg:    cfg,
		upkeep: upkeep,
		clock:  clock,
		log:    log.New("module", "keeper"),
	}
}

// Tick runs one check and, if the upkeep is needed, performs it. performed is
// false when no upkeep was needed.
func (k *Keeper) Tick() (id vrf.RequestID, performed bool, err error) {
	checksMeter.Inc(1)
	needed, performData := k.upkeep.CheckUpkeep(k.cfg.CheckData)
	if !needed {
		return 0, false, nil
	}
	id, err = k.upkeep.PerformUpkeep(performData)
	if err != nil {
		failedMeter.Inc(1)
		return 0, false, err
	}
	performedMeter.Inc(1)
	k.log.Debug("Upkeep performed", "request", id)
	return id, true, nil
}

// Start begins polling. Calling Start on a running keeper is a no-op.
func (k *Keeper) Start() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.running {
		return
	}
	k.running = true
	k.stopCh = make(chan struct{})
	k.doneCh = make(chan struct{})

	go k.loop(k.stopCh, k.doneCh)
	k.log.Info("Keeper started", "period", k.cfg.Period)
}

// Stop halts polling and waits for the loop to exit.
func (k *Keeper) Stop() {
	k.mu.Lock()
	if !k.running {
		k.mu.Unlock()
		return
	}
	k.running = false
	close(k.stopCh)
	done := k.doneCh
	k.mu.Unlock()

	<-done
	k.log.Info("Keeper stopped")
}

// Running reports whether the polling loop is active.
func (k *Keeper) Running() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.running
}

func (k *Keeper) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	timer := k.clock.NewTimer(k.cfg.Period)
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C():
			_, _, err := k.Tick()
			switch {
			case err == nil:
			case errors.Is(err, raffle.ErrCloseNotEligible):
				// Someone else closed the round between check and perform.
				k.log.Debug("Upkeep no longer needed", "err", err)
			default:
				k.log.Warn("Upkeep failed", "err", err)
			}
			timer.Reset(k.cfg.Period)
		}
	}
}
