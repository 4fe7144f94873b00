package raffle

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// DefaultRequestConfirmations is how many blocks the randomness provider
	// waits before answering a request.
	DefaultRequestConfirmations uint16 = 3

	// DefaultNumWords is the number of random words requested per round. Only
	// the first word is used to pick the winner.
	DefaultNumWords uint32 = 1

	// DefaultCallbackGasLimit bounds the gas the provider spends on delivering
	// the random words.
	DefaultCallbackGasLimit uint32 = 500000

	// DefaultInterval is the minimum time a round stays open.
	DefaultInterval = 30 * time.Second
)

// DefaultEntranceFee is 0.01 ether.
var DefaultEntranceFee = big.NewInt(1e16)

// Config holds the parameters a raffle is created with. It is fixed for the
// lifetime of the raffle.
//
// Note: Config contains a *big.Int, use Copy() before handing it to code that
// may keep or mutate it.
type Config struct {
	// EntranceFee is the minimum payment (in wei) accepted by Enter.
	EntranceFee *big.Int

	// Interval is the minimum duration between the start of a round and the
	// moment it may be closed.
	Interval time.Duration

	// RequestConfirmations, NumWords, CallbackGasLimit, GasLane and
	// SubscriptionID are passed through to the randomness provider with every
	// request.
	RequestConfirmations uint16
	NumWords             uint32
	CallbackGasLimit     uint32
	GasLane              common.Hash
	SubscriptionID       uint64
}

// DefaultConfig returns the configuration used by development networks.
func DefaultConfig() Config {
	return Config{
		EntranceFee:          new(big.Int).Set(DefaultEntranceFee),
		Interval:             DefaultInterval,
		RequestConfirmations: DefaultRequestConfirmations,
		NumWords:             DefaultNumWords,
		CallbackGasLimit:     DefaultCallbackGasLimit,
	}
}

// Validate reports whether the configuration can drive a raffle.
func (c Config) Validate() error {
	switch {
	case c.EntranceFee == nil || c.EntranceFee.Sign() <= 0:
		return fmt.Errorf("%w: entrance fee must be positive", ErrInvalidConfig)
	case c.Interval <= 0:
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	case c.NumWords != DefaultNumWords:
		return fmt.Errorf("%w: exactly %d random word per round is supported, have %d", ErrInvalidConfig, DefaultNumWords, c.NumWords)
	case c.CallbackGasLimit == 0:
		return fmt.Errorf("%w: callback gas limit must be positive", ErrInvalidConfig)
	}
	return nil
}

// Copy creates a deep copy of Config.
func (c Config) Copy() Config {
	cp := c
	if c.EntranceFee != nil {
		cp.EntranceFee = new(big.Int).Set(c.EntranceFee)
	}
	return cp
}

// String returns a JSON representation of Config for logging.
func (c Config) String() string {
	b, _ := json.Marshal(&c)
	return string(b)
}
