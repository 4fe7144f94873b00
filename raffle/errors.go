package raffle

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInsufficientPayment is returned by Enter when the value is below the
	// entrance fee.
	ErrInsufficientPayment = errors.New("raffle: not enough value sent")

	// ErrRoundNotOpen is returned by Enter while a winner is being calculated.
	ErrRoundNotOpen = errors.New("raffle: round not open")

	// ErrCloseNotEligible is matched by every *UpkeepNotNeededError.
	ErrCloseNotEligible = errors.New("raffle: upkeep not needed")

	// ErrUnknownRequest is returned for randomness that does not answer the
	// pending request.
	ErrUnknownRequest = errors.New("raffle: unknown randomness request")

	// ErrNoRandomWords is returned for a fulfillment carrying no words.
	ErrNoRandomWords = errors.New("raffle: no random words")

	// ErrPayoutFailed is matched by every *PayoutError.
	ErrPayoutFailed = errors.New("raffle: transfer to winner failed")

	// ErrIndexOutOfRange is returned by Player for an index past the end.
	ErrIndexOutOfRange = errors.New("raffle: player index out of range")

	ErrInvalidConfig = errors.New("raffle: invalid config")
)

// UpkeepNotNeededError reports the round state that made PerformUpkeep refuse
// to close the round.
type UpkeepNotNeededError struct {
	Balance *big.Int
	Players int
	State   State
}

func (e *UpkeepNotNeededError) Error() string {
	return fmt.Sprintf("%v (balance %v, players %d, state %v)", ErrCloseNotEligible, e.Balance, e.Players, e.State)
}

func (e *UpkeepNotNeededError) Is(target error) bool {
	return target == ErrCloseNotEligible
}

// PayoutError reports a rejected transfer of the prize. The round is left
// calculating and the same randomness may be delivered again.
type PayoutError struct {
	Winner common.Address
	Amount *big.Int
	Err    error
}

func (e *PayoutError) Error() string {
	return fmt.Sprintf("%v: %v to %s: %v", ErrPayoutFailed, e.Amount, e.Winner.Hex(), e.Err)
}

func (e *PayoutError) Is(target error) bool {
	return target == ErrPayoutFailed
}

func (e *PayoutError) Unwrap() error {
	return e.Err
}
