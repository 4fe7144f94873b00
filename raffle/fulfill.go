package raffle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/rony4d/go-raffle/history"
	"github.com/rony4d/go-raffle/ledger"
	"github.com/rony4d/go-raffle/vrf"
)

// FulfillRandomWords settles the round waiting on request id. The winner is
// players[words[0] mod len(players)] and receives the whole balance.
//
// If the payout is rejected the call fails with a *PayoutError and nothing
// changes: the request stays pending and the same words may be delivered
// again. Randomness for any other id fails with ErrUnknownRequest.
func (r *Raffle) FulfillRandomWords(id vrf.RequestID, words []*uint256.Int) error {
	r.mu.Lock()
	var (
		ev     WinnerPickedEvent
		record *history.Settlement
	)
	err := r.update(func(st *roundState, tx ledger.Transactor) error {
		pending, ok := st.pending[id]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownRequest, id)
		}
		if len(words) == 0 || words[0] == nil {
			return ErrNoRandomWords
		}
		if len(st.players) == 0 {
			return fmt.Errorf("%w: round %d closed without players", ErrIndexOutOfRange, pending.round)
		}
		winner := st.players[winnerIndex(words[0], len(st.players))]
		payout := new(big.Int).Set(st.balance)

		if err := tx.Transfer(r.address, winner, payout); err != nil {
			return &PayoutError{Winner: winner, Amount: payout, Err: err}
		}

		now := r.clock.Now()
		settled := st.round
		st.recentWinner = winner
		st.players = nil
		st.balance = new(big.Int)
		st.state = StateOpen
		st.lastTimestamp = now
		delete(st.pending, id)
		st.round++

		ev = WinnerPickedEvent{Winner: winner, Round: settled, RequestID: id, Payout: payout}
		record = &history.Settlement{
			Round:      settled,
			RequestID:  id,
			Winner:     winner,
			Payout:     payout,
			Players:    uint64(pending.players),
			RandomWord: words[0].ToBig(),
			Time:       uint64(now.Unix()),
		}
		return nil
	})
	r.mu.Unlock()

	if err != nil {
		var perr *PayoutError
		if errors.As(err, &perr) {
			payoutFailedMeter.Inc(1)
			r.log.Warn("Payout to winner failed", "request", id, "winner", perr.Winner, "amount", perr.Amount, "err", perr.Err)
		} else {
			r.log.Debug("Randomness rejected", "request", id, "err", err)
		}
		return err
	}
	roundsSettledMeter.Inc(1)
	playersGauge.Update(0)
	r.log.Info("Winner picked", "round", ev.Round, "winner", ev.Winner, "payout", ev.Payout, "request", id)

	r.recordSettlement(record)
	r.winnerFeed.Send(ev)
	return nil
}

func (r *Raffle) recordSettlement(s *history.Settlement) {
	if r.store == nil {
		return
	}
	if err := r.store.Put(s); err != nil {
		r.log.Error("Failed to record settlement", "round", s.Round, "err", err)
	}
}

func winnerIndex(word *uint256.Int, players int) int {
	return int(new(uint256.Int).Mod(word, uint256.NewInt(uint64(players))).Uint64())
}
