package raffle

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/rony4d/go-raffle/vrf"
)

// State is the phase of the live round.
type State uint8

const (
	// StateOpen accepts entries.
	StateOpen State = iota
	// StateCalculating waits for randomness; entries are refused.
	StateCalculating
)

func (s State) String() string {
	switch s {
	case StateOpen:
		return "OPEN"
	case StateCalculating:
		return "CALCULATING"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// pendingRound is what a randomness request was issued for.
type pendingRound struct {
	round   uint64
	players int
	balance *big.Int
}

// roundState is the mutable part of a raffle. Mutating calls work on a copy
// and swap it in only when they succeed.
type roundState struct {
	state         State
	players       []common.Address
	balance       *big.Int
	lastTimestamp time.Time
	pending       map[vrf.RequestID]pendingRound
	round         uint64
	recentWinner  common.Address
}

func newRoundState(now time.Time) *roundState {
	return &roundState{
		state:         StateOpen,
		balance:       new(big.Int),
		lastTimestamp: now,
		pending:       make(map[vrf.RequestID]pendingRound),
		round:         1,
	}
}

func (s *roundState) copy() *roundState {
	cp := *s
	cp.players = append([]common.Address(nil), s.players...)
	cp.balance = new(big.Int).Set(s.balance)
	cp.pending = make(map[vrf.RequestID]pendingRound, len(s.pending))
	for id, p := range s.pending {
		cp.pending[id] = p
	}
	return &cp
}

// upkeepNeeded is the round-closing predicate.
func (s *roundState) upkeepNeeded(now time.Time, interval time.Duration) bool {
	return s.state == StateOpen &&
		now.Sub(s.lastTimestamp) >= interval &&
		len(s.players) > 0 &&
		s.balance.Sign() > 0
}
