package raffle

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-raffle/history"
	"github.com/rony4d/go-raffle/vrf"
)

func (r *Raffle) EntranceFee() *big.Int { return new(big.Int).Set(r.cfg.EntranceFee) }

func (r *Raffle) Interval() time.Duration { return r.cfg.Interval }

func (r *Raffle) RequestConfirmations() uint16 { return r.cfg.RequestConfirmations }

func (r *Raffle) NumWords() uint32 { return r.cfg.NumWords }

func (r *Raffle) CallbackGasLimit() uint32 { return r.cfg.CallbackGasLimit }

func (r *Raffle) GasLane() common.Hash { return r.cfg.GasLane }

func (r *Raffle) SubscriptionID() uint64 { return r.cfg.SubscriptionID }

// Config returns a copy of the raffle's configuration.
func (r *Raffle) Config() Config { return r.cfg.Copy() }

// Address is the custody account holding the pot.
func (r *Raffle) Address() common.Address { return r.address }

func (r *Raffle) RaffleState() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.state
}

func (r *Raffle) NumberOfPlayers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.st.players)
}

// Player returns the i-th entry of the live round.
func (r *Raffle) Player(i int) (common.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i < 0 || i >= len(r.st.players) {
		return common.Address{}, fmt.Errorf("%w: index %d, players %d", ErrIndexOutOfRange, i, len(r.st.players))
	}
	return r.st.players[i], nil
}

// RecentWinner is the zero address until the first round is settled.
func (r *Raffle) RecentWinner() common.Address {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.recentWinner
}

// LastTimestamp is when the live round started.
func (r *Raffle) LastTimestamp() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.lastTimestamp
}

// Balance is the value collected by the live round.
func (r *Raffle) Balance() *big.Int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return new(big.Int).Set(r.st.balance)
}

// Round is the number of the live round, starting at 1.
func (r *Raffle) Round() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.st.round
}

// PendingRequest returns the randomness request the raffle is waiting on.
func (r *Raffle) PendingRequest() (vrf.RequestID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for id := range r.st.pending {
		return id, true
	}
	return 0, false
}

// History lists settled rounds starting at round from. It returns nothing if
// the raffle keeps no history.
func (r *Raffle) History(from uint64, limit int) ([]*history.Settlement, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.List(from, limit)
}

// Settlement returns the record of a settled round, or nil.
func (r *Raffle) Settlement(round uint64) (*history.Settlement, error) {
	if r.store == nil {
		return nil, nil
	}
	return r.store.Get(round)
}
