// Package vrf describes the randomness provider a raffle consumes.
//
// A consumer asks a Coordinator for random words and receives a RequestID
// synchronously. The words arrive later, on a separate call to the consumer's
// FulfillRandomWords, tagged with that same id.
package vrf

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// RequestID correlates a randomness request with its fulfillment. Zero is never
// issued.
type RequestID uint64

// Request carries the parameters of a randomness request.
type Request struct {
	KeyHash              common.Hash // gas lane
	SubID                uint64
	MinimumConfirmations uint16
	CallbackGasLimit     uint32
	NumWords             uint32
}

// Coordinator accepts randomness requests.
//
// Implementations must not call back into the consumer from within
// RequestRandomWords.
type Coordinator interface {
	RequestRandomWords(consumer common.Address, req Request) (RequestID, error)
}

// Consumer receives random words for a request it issued earlier.
type Consumer interface {
	FulfillRandomWords(id RequestID, words []*uint256.Int) error
}

// RandomWordsRequested is emitted for every accepted request.
type RandomWordsRequested struct {
	RequestID RequestID
	Sender    common.Address
	Request   Request
}

// RandomWordsFulfilled is emitted for every delivery attempt.
type RandomWordsFulfilled struct {
	RequestID RequestID
	Success   bool
}
