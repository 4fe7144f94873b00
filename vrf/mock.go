package vrf

import (
	"errors"
	"fmt"
	"math/big"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
)

const (
	// MaxNumWords caps the number of words a single request may ask for.
	MaxNumWords = 500

	// MaxRequestConfirmations caps the confirmations a request may wait for.
	MaxRequestConfirmations = 200
)

var (
	ErrNonexistentRequest   = errors.New("nonexistent request")
	ErrInvalidSubscription  = errors.New("invalid subscription")
	ErrInvalidConsumer      = errors.New("invalid consumer")
	ErrInsufficientBalance  = errors.New("insufficient subscription balance")
	ErrNumWordsTooBig       = errors.New("numWords too big")
	ErrInvalidConfirmations = errors.New("invalid request confirmations")
)

// DefaultBaseFee is what the mock charges a subscription per fulfillment
// (0.25 LINK in juels).
var DefaultBaseFee = new(big.Int).Mul(big.NewInt(25), big.NewInt(1e16))

// wordArgs is the ABI tuple (uint256 requestId, uint256 index) hashed to
// derive each mock random word.
var wordArgs = func() abi.Arguments {
	uint256Ty, err := abi.NewType("uint256", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: uint256Ty}, {Type: uint256Ty}}
}()

type subscription struct {
	balance   *big.Int
	consumers map[common.Address]Consumer
}

type pendingRequest struct {
	sender common.Address
	req    Request
}

// MockCoordinator is an in-process Coordinator for development networks and
// tests. Words are derived deterministically from the request id, so it proves
// nothing about randomness; it only reproduces the request/callback protocol
// and the subscription accounting of a real coordinator.
//
// A request whose callback fails stays pending and can be delivered again.
type MockCoordinator struct {
	baseFee *big.Int

	mu       sync.Mutex
	lastSub  uint64
	lastReq  RequestID
	subs     map[uint64]*subscription
	requests map[RequestID]pendingRequest

	requestedFeed event.Feed
	fulfilledFeed event.Feed
	scope         event.SubscriptionScope

	log log.Logger
}

// NewMockCoordinator creates a coordinator charging baseFee per fulfillment.
func NewMockCoordinator(baseFee *big.Int) *MockCoordinator {
	if baseFee == nil {
		baseFee = DefaultBaseFee
	}
	return &MockCoordinator{
		baseFee:  new(big.Int).Set(baseFee),
		subs:     make(map[uint64]*subscription),
		requests: make(map[RequestID]pendingRequest),
		log:      log.New("module", "vrf"),
	}
}

// CreateSubscription opens an empty subscription and returns its id.
func (c *MockCoordinator) CreateSubscription() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastSub++
	c.subs[c.lastSub] = &subscription{
		balance:   new(big.Int),
		consumers: make(map[common.Address]Consumer),
	}
	c.log.Debug("Subscription created", "sub", c.lastSub)
	return c.lastSub
}

// FundSubscription adds amount to the subscription balance.
func (c *MockCoordinator) FundSubscription(subID uint64, amount *big.Int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subs[subID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidSubscription, subID)
	}
	sub.balance.Add(sub.balance, amount)
	return nil
}

// AddConsumer authorises addr to request words against the subscription;
// consumer receives the callbacks.
func (c *MockCoordinator) AddConsumer(subID uint64, addr common.Address, consumer Consumer) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subs[subID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidSubscription, subID)
	}
	sub.consumers[addr] = consumer
	return nil
}

// RemoveConsumer revokes addr. Requests it already made can no longer be fulfilled.
func (c *MockCoordinator) RemoveConsumer(subID uint64, addr common.Address) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subs[subID]
	if !ok {
		return fmt.Errorf("%w: %d", ErrInvalidSubscription, subID)
	}
	if _, ok := sub.consumers[addr]; !ok {
		return fmt.Errorf("%w: %s", ErrInvalidConsumer, addr.Hex())
	}
	delete(sub.consumers, addr)
	return nil
}

// GetSubscription returns the balance and sorted consumer list of a subscription.
func (c *MockCoordinator) GetSubscription(subID uint64) (*big.Int, []common.Address, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub, ok := c.subs[subID]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidSubscription, subID)
	}
	consumers := make([]common.Address, 0, len(sub.consumers))
	for addr := range sub.consumers {
		consumers = append(consumers, addr)
	}
	sort.Slice(consumers, func(i, j int) bool {
		return consumers[i].Hash().Big().Cmp(consumers[j].Hash().Big()) < 0
	})
	return new(big.Int).Set(sub.balance), consumers, nil
}

// RequestRandomWords implements Coordinator.
func (c *MockCoordinator) RequestRandomWords(consumer common.Address, req Request) (RequestID, error) {
	c.mu.Lock()
	sub, ok := c.subs[req.SubID]
	if !ok {
		c.mu.Unlock()
		return 0, fmt.Errorf("%w: %d", ErrInvalidSubscription, req.SubID)
	}
	if _, ok := sub.consumers[consumer]; !ok {
		c.mu.Unlock()
		return 0, fmt.Errorf("%w: %s", ErrInvalidConsumer, consumer.Hex())
	}
	if req.MinimumConfirmations > MaxRequestConfirmations {
		c.mu.Unlock()
		return 0, fmt.Errorf("%w: have %d max %d", ErrInvalidConfirmations, req.MinimumConfirmations, MaxRequestConfirmations)
	}
	if req.NumWords == 0 || req.NumWords > MaxNumWords {
		c.mu.Unlock()
		return 0, fmt.Errorf("%w: have %d max %d", ErrNumWordsTooBig, req.NumWords, MaxNumWords)
	}
	c.lastReq++
	id := c.lastReq
	c.requests[id] = pendingRequest{sender: consumer, req: req}
	c.mu.Unlock()

	c.log.Debug("Random words requested", "id", id, "sender", consumer, "sub", req.SubID, "words", req.NumWords)
	c.requestedFeed.Send(RandomWordsRequested{RequestID: id, Sender: consumer, Request: req})
	return id, nil
}

// Pending returns the ids of requests not yet successfully fulfilled.
func (c *MockCoordinator) Pending() []RequestID {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]RequestID, 0, len(c.requests))
	for id := range c.requests {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// FulfillRandomWords delivers words derived from the request id.
func (c *MockCoordinator) FulfillRandomWords(id RequestID) error {
	c.mu.Lock()
	pending, ok := c.requests[id]
	c.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %d", ErrNonexistentRequest, id)
	}
	words := make([]*uint256.Int, pending.req.NumWords)
	for i := range words {
		words[i] = DeriveWord(id, uint64(i))
	}
	return c.FulfillRandomWordsWithOverride(id, words)
}

// FulfillRandomWordsWithOverride delivers the given words instead of the
// derived ones. Tests use it to pick the winner.
func (c *MockCoordinator) FulfillRandomWordsWithOverride(id RequestID, words []*uint256.Int) error {
	c.mu.Lock()
	pending, ok := c.requests[id]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNonexistentRequest, id)
	}
	sub, ok := c.subs[pending.req.SubID]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrInvalidSubscription, pending.req.SubID)
	}
	if sub.balance.Cmp(c.baseFee) < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%w: have %v want %v", ErrInsufficientBalance, sub.balance, c.baseFee)
	}
	consumer, ok := sub.consumers[pending.sender]
	if !ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrInvalidConsumer, pending.sender.Hex())
	}
	c.mu.Unlock()

	// The consumer runs without the coordinator lock; it may query the
	// coordinator or request again from inside the callback.
	err := consumer.FulfillRandomWords(id, words)

	c.mu.Lock()
	if err == nil {
		if _, still := c.requests[id]; still {
			delete(c.requests, id)
			sub.balance.Sub(sub.balance, c.baseFee)
		}
	}
	c.mu.Unlock()

	c.fulfilledFeed.Send(RandomWordsFulfilled{RequestID: id, Success: err == nil})
	if err != nil {
		c.log.Warn("Random words callback failed", "id", id, "err", err)
		return fmt.Errorf("fulfill request %d: %w", id, err)
	}
	c.log.Debug("Random words fulfilled", "id", id, "words", len(words))
	return nil
}

// SubscribeRandomWordsRequested registers ch for RandomWordsRequested events.
func (c *MockCoordinator) SubscribeRandomWordsRequested(ch chan<- RandomWordsRequested) event.Subscription {
	return c.scope.Track(c.requestedFeed.Subscribe(ch))
}

// SubscribeRandomWordsFulfilled registers ch for RandomWordsFulfilled events.
func (c *MockCoordinator) SubscribeRandomWordsFulfilled(ch chan<- RandomWordsFulfilled) event.Subscription {
	return c.scope.Track(c.fulfilledFeed.Subscribe(ch))
}

// Close unsubscribes every event subscriber.
func (c *MockCoordinator) Close() {
	c.scope.Close()
}

// DeriveWord returns keccak256(abi.encode(id, index)) as a 256-bit word.
func DeriveWord(id RequestID, index uint64) *uint256.Int {
	packed, err := wordArgs.Pack(new(big.Int).SetUint64(uint64(id)), new(big.Int).SetUint64(index))
	if err != nil {
		panic(err)
	}
	return new(uint256.Int).SetBytes(crypto.Keccak256(packed))
}
