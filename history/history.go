// Package history records settled raffle rounds.
//
// History is derived data: the raffle keeps working if a store fails, it only
// loses the record of past winners.
package history

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-raffle/vrf"
)

// Settlement is the outcome of one closed round.
type Settlement struct {
	Round      uint64
	RequestID  vrf.RequestID
	Winner     common.Address
	Payout     *big.Int
	Players    uint64
	RandomWord *big.Int
	Time       uint64 // unix seconds
}

// Store persists settlements keyed by round.
type Store interface {
	// Put records s, replacing any earlier record for the same round.
	Put(s *Settlement) error

	// Get returns the settlement for round, or nil if there is none.
	Get(round uint64) (*Settlement, error)

	// List returns up to limit settlements starting at round from, in
	// ascending round order. A zero limit means no limit.
	List(from uint64, limit int) ([]*Settlement, error)

	// Last returns the settlement of the highest round, or nil if the store
	// is empty.
	Last() (*Settlement, error)

	Close() error
}

// EncodeRLP writes the settlement as an RLP list.
func (s *Settlement) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []interface{}{
		s.Round,
		uint64(s.RequestID),
		s.Winner,
		bigOrZero(s.Payout),
		s.Players,
		bigOrZero(s.RandomWord),
		s.Time,
	})
}

// DecodeRLP reads a settlement written by EncodeRLP.
func (s *Settlement) DecodeRLP(st *rlp.Stream) error {
	var enc struct {
		Round      uint64
		RequestID  uint64
		Winner     common.Address
		Payout     *big.Int
		Players    uint64
		RandomWord *big.Int
		Time       uint64
	}
	if err := st.Decode(&enc); err != nil {
		return err
	}
	*s = Settlement{
		Round:      enc.Round,
		RequestID:  vrf.RequestID(enc.RequestID),
		Winner:     enc.Winner,
		Payout:     enc.Payout,
		Players:    enc.Players,
		RandomWord: enc.RandomWord,
		Time:       enc.Time,
	}
	return nil
}

// Copy returns a deep copy of s.
func (s *Settlement) Copy() *Settlement {
	cp := *s
	cp.Payout = new(big.Int).Set(bigOrZero(s.Payout))
	cp.RandomWord = new(big.Int).Set(bigOrZero(s.RandomWord))
	return &cp
}

func bigOrZero(b *big.Int) *big.Int {
	if b == nil {
		return new(big.Int)
	}
	return b
}
