package raffle

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"

	"github.com/rony4d/go-raffle/vrf"
)

// EnteredEvent is posted when a player joins the round.
type EnteredEvent struct {
	Player common.Address
	Round  uint64
	Value  *big.Int
}

// RoundClosedEvent is posted when entry closes and randomness is requested.
type RoundClosedEvent struct {
	RequestID vrf.RequestID
	Round     uint64
	Players   int
	Balance   *big.Int
}

// WinnerPickedEvent is posted when a round is settled.
type WinnerPickedEvent struct {
	Winner    common.Address
	Round     uint64
	RequestID vrf.RequestID
	Payout    *big.Int
}

// SubscribeEntered registers ch for EnteredEvent.
func (r *Raffle) SubscribeEntered(ch chan<- EnteredEvent) event.Subscription {
	return r.scope.Track(r.enteredFeed.Subscribe(ch))
}

// SubscribeRoundClosed registers ch for RoundClosedEvent.
func (r *Raffle) SubscribeRoundClosed(ch chan<- RoundClosedEvent) event.Subscription {
	return r.scope.Track(r.closedFeed.Subscribe(ch))
}

// SubscribeWinnerPicked registers ch for WinnerPickedEvent.
func (r *Raffle) SubscribeWinnerPicked(ch chan<- WinnerPickedEvent) event.Subscription {
	return r.scope.Track(r.winnerFeed.Subscribe(ch))
}
