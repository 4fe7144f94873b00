// Package raffle implements a periodic lottery.
//
// Players pay an entrance fee while a round is open. Once the round has been
// open for at least the configured interval and holds at least one player, a
// trigger closes it and asks a randomness provider for a random word. When the
// word arrives the raffle picks a winner, pays out the whole balance and opens
// the next round.
//
// Every mutating call runs against a private copy of the round state inside a
// single ledger transaction. The copy replaces the live state, and the ledger
// transaction is kept, only if the call succeeds; a failing call leaves no
// trace.
package raffle

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"

	"github.com/rony4d/go-raffle/history"
	"github.com/rony4d/go-raffle/ledger"
	"github.com/rony4d/go-raffle/vrf"
)

// Raffle is a single lottery. It is safe for concurrent use.
type Raffle struct {
	address     common.Address // custody account holding the pot
	cfg         Config
	custody     ledger.Custody
	coordinator vrf.Coordinator
	clock       Clock
	store       history.Store

	mu sync.RWMutex
	st *roundState

	enteredFeed event.Feed
	closedFeed  event.Feed
	winnerFeed  event.Feed
	scope       event.SubscriptionScope

	log log.Logger
}

// New creates a raffle whose pot is held by address in custody. The first
// round opens immediately, numbered after the last round found in store so a
// restarted raffle never overwrites earlier settlements. clock and store may
// be nil, in which case the wall clock is used and no history is kept.
func New(address common.Address, cfg Config, custody ledger.Custody, coordinator vrf.Coordinator, clock Clock, store history.Store) (*Raffle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if custody == nil {
		return nil, errors.New("raffle: no custody ledger")
	}
	if coordinator == nil {
		return nil, errors.New("raffle: no randomness coordinator")
	}
	if clock == nil {
		clock = SystemClock()
	}
	st := newRoundState(clock.Now())
	if store != nil {
		last, err := store.Last()
		if err != nil {
			return nil, fmt.Errorf("raffle: load last settlement: %w", err)
		}
		if last != nil {
			st.round = last.Round + 1
			st.recentWinner = last.Winner
		}
	}
	r := &Raffle{
		address:     address,
		cfg:         cfg.Copy(),
		custody:     custody,
		coordinator: coordinator,
		clock:       clock,
		store:       store,
		st:          st,
		log:         log.New("module", "raffle", "address", address),
	}
	r.log.Info("Raffle opened", "round", st.round, "fee", cfg.EntranceFee, "interval", cfg.Interval, "sub", cfg.SubscriptionID)
	return r, nil
}

// Close unsubscribes every event subscriber.
func (r *Raffle) Close() {
	r.scope.Close()
}

// update runs fn on a copy of the round state inside one ledger transaction
// and installs the copy if fn succeeds. The caller must hold r.mu.
func (r *Raffle) update(fn func(st *roundState, tx ledger.Transactor) error) error {
	draft := r.st.copy()
	err := r.custody.Atomic(func(tx ledger.Transactor) error {
		return fn(draft, tx)
	})
	if err != nil {
		return err
	}
	r.st = draft
	return nil
}

// Enter adds player to the open round, moving value from the player's account
// into the raffle. Any value at or above the entrance fee is accepted and kept
// in full.
func (r *Raffle) Enter(player common.Address, value *big.Int) error {
	if value == nil {
		value = new(big.Int)
	}

	r.mu.Lock()
	var ev EnteredEvent
	err := r.update(func(st *roundState, tx ledger.Transactor) error {
		if value.Cmp(r.cfg.EntranceFee) < 0 {
			return fmt.Errorf("%w: have %v want %v", ErrInsufficientPayment, value, r.cfg.EntranceFee)
		}
		if st.state != StateOpen {
			return ErrRoundNotOpen
		}
		if err := tx.Transfer(player, r.address, value); err != nil {
			return fmt.Errorf("raffle: collect entrance fee: %w", err)
		}
		st.players = append(st.players, player)
		st.balance.Add(st.balance, value)

		ev = EnteredEvent{Player: player, Round: st.round, Value: new(big.Int).Set(value)}
		return nil
	})
	players := len(r.st.players)
	r.mu.Unlock()

	if err != nil {
		r.log.Debug("Entry refused", "player", player, "value", value, "err", err)
		return err
	}
	entriesMeter.Inc(1)
	playersGauge.Update(int64(players))
	r.log.Debug("Player entered", "player", player, "value", value, "round", ev.Round, "players", players)

	r.enteredFeed.Send(ev)
	return nil
}
