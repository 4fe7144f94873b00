package raffle

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/log"

	"github.com/rony4d/go-raffle/ledger"
	"github.com/rony4d/go-raffle/vrf"
)

// upkeepArgs is the ABI tuple (uint64 round, uint256 players, uint256 balance)
// returned as CheckUpkeep's perform data.
var upkeepArgs = func() abi.Arguments {
	uint64Ty, err := abi.NewType("uint64", "", nil)
	if err != nil {
		panic(err)
	}
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: uint64Ty}, {Type: uint256Ty}, {Type: uint256Ty}}
}()

// CheckUpkeep reports whether the live round may be closed now. The returned
// payload describes the round that was evaluated; it is informational and
// PerformUpkeep does not rely on it.
//
// checkData is ignored.
func (r *Raffle) CheckUpkeep(checkData []byte) (bool, []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needed := r.st.upkeepNeeded(r.clock.Now(), r.cfg.Interval)
	return needed, encodeUpkeepPayload(r.st.round, len(r.st.players), r.st.balance)
}

// PerformUpkeep closes the live round and requests randomness for it. The
// round-closing condition is evaluated again here, so a stale or forged call
// fails with an *UpkeepNotNeededError and changes nothing.
//
// performData is ignored.
func (r *Raffle) PerformUpkeep(performData []byte) (vrf.RequestID, error) {
	r.mu.Lock()
	var ev RoundClosedEvent
	err := r.update(func(st *roundState, _ ledger.Transactor) error {
		if !st.upkeepNeeded(r.clock.Now(), r.cfg.Interval) {
			return &UpkeepNotNeededError{
				Balance: new(big.Int).Set(st.balance),
				Players: len(st.players),
				State:   st.state,
			}
		}
		id, err := r.coordinator.RequestRandomWords(r.address, vrf.Request{
			KeyHash:              r.cfg.GasLane,
			SubID:                r.cfg.SubscriptionID,
			MinimumConfirmations: r.cfg.RequestConfirmations,
			CallbackGasLimit:     r.cfg.CallbackGasLimit,
			NumWords:             r.cfg.NumWords,
		})
		if err != nil {
			return fmt.Errorf("raffle: request randomness: %w", err)
		}
		st.state = StateCalculating
		st.pending[id] = pendingRound{
			round:   st.round,
			players: len(st.players),
			balance: new(big.Int).Set(st.balance),
		}
		ev = RoundClosedEvent{
			RequestID: id,
			Round:     st.round,
			Players:   len(st.players),
			Balance:   new(big.Int).Set(st.balance),
		}
		return nil
	})
	r.mu.Unlock()

	if err != nil {
		r.log.Debug("Upkeep not performed", "err", err)
		return 0, err
	}
	roundsClosedMeter.Inc(1)
	r.log.Info("Round closed", "round", ev.Round, "players", ev.Players, "balance", ev.Balance, "request", ev.RequestID)

	r.closedFeed.Send(ev)
	return ev.RequestID, nil
}

// DecodeUpkeepPayload unpacks the perform data returned by CheckUpkeep.
func DecodeUpkeepPayload(data []byte) (round uint64, players *big.Int, balance *big.Int, err error) {
	values, err := upkeepArgs.Unpack(data)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("raffle: decode upkeep payload: %w", err)
	}
	var ok1, ok2, ok3 bool
	round, ok1 = values[0].(uint64)
	players, ok2 = values[1].(*big.Int)
	balance, ok3 = values[2].(*big.Int)
	if !ok1 || !ok2 || !ok3 {
		return 0, nil, nil, fmt.Errorf("raffle: decode upkeep payload: unexpected types %T %T %T", values[0], values[1], values[2])
	}
	return round, players, balance, nil
}

func encodeUpkeepPayload(round uint64, players int, balance *big.Int) []byte {
	data, err := upkeepArgs.Pack(round, big.NewInt(int64(players)), balance)
	if err != nil {
		log.Error("Failed to encode upkeep payload", "err", err)
		return nil
	}
	return data
}
