package vrf

import (
	"errors"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/metrics"
)

var (
	fulfilledMeter = metrics.NewRegisteredCounter("vrf/fulfilled", nil)
	failedMeter    = metrics.NewRegisteredCounter("vrf/failed", nil)
)

// ResponderConfig tunes how a Responder answers requests.
type ResponderConfig struct {
	// Delay between a request and its first delivery attempt.
	Delay time.Duration

	// RetryDelay between failed attempts.
	RetryDelay time.Duration

	// MaxAttempts bounds delivery attempts per request. Zero means one attempt.
	MaxAttempts int
}

// DefaultResponderConfig answers after one second and retries a failed callback
// a few times.
func DefaultResponderConfig() ResponderConfig {
	return ResponderConfig{
		Delay:       time.Second,
		RetryDelay:  5 * time.Second,
		MaxAttempts: 5,
	}
}

// fulfiller is the part of MockCoordinator a Responder drives.
type fulfiller interface {
	FulfillRandomWords(id RequestID) error
	SubscribeRandomWordsRequested(ch chan<- RandomWordsRequested) event.Subscription
}

// Responder plays the off-chain oracle for a MockCoordinator: it watches for
// requests and fulfills each one after a delay measured on the given clock.
type Responder struct {
	cfg   ResponderConfig
	coord fulfiller
	clock mclock.Clock

	requests chan RandomWordsRequested
	sub      event.Subscription

	mu     sync.Mutex
	timers map[RequestID]mclock.Timer

	quit chan struct{}
	wg   sync.WaitGroup

	log log.Logger
}

// NewResponder creates a responder; Start must be called before it reacts.
func NewResponder(cfg ResponderConfig, coord fulfiller, clock mclock.Clock) *Responder {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	return &Responder{
		cfg:      cfg,
		coord:    coord,
		clock:    clock,
		requests: make(chan RandomWordsRequested, 16),
		timers:   make(map[RequestID]mclock.Timer),
		quit:     make(chan struct{}),
		log:      log.New("module", "vrf-responder"),
	}
}

// Start subscribes to the coordinator and begins answering requests.
func (r *Responder) Start() {
	r.sub = r.coord.SubscribeRandomWordsRequested(r.requests)
	r.wg.Add(1)
	go r.loop()
}

// Stop cancels scheduled deliveries and waits for the event loop and any
// delivery already in progress to finish.
func (r *Responder) Stop() {
	if r.sub != nil {
		r.sub.Unsubscribe()
	}
	r.mu.Lock()
	close(r.quit)
	r.mu.Unlock()
	r.wg.Wait()

	r.mu.Lock()
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
	r.mu.Unlock()
}

// Scheduled returns how many deliveries are waiting on the clock.
func (r *Responder) Scheduled() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

func (r *Responder) loop() {
	defer r.wg.Done()

	for {
		select {
		case ev := <-r.requests:
			r.schedule(ev.RequestID, 1, r.cfg.Delay)
		case err := <-r.sub.Err():
			if err != nil {
				r.log.Warn("Request subscription failed", "err", err)
			}
			return
		case <-r.quit:
			return
		}
	}
}

func (r *Responder) schedule(id RequestID, attempt int, delay time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	select {
	case <-r.quit:
		return
	default:
	}
	r.timers[id] = r.clock.AfterFunc(delay, func() { r.deliver(id, attempt) })
}

func (r *Responder) deliver(id RequestID, attempt int) {
	r.mu.Lock()
	delete(r.timers, id)
	select {
	case <-r.quit:
		r.mu.Unlock()
		return
	default:
	}
	// Registered under mu so Stop cannot start waiting before the Add.
	r.wg.Add(1)
	r.mu.Unlock()
	defer r.wg.Done()

	err := r.coord.FulfillRandomWords(id)
	switch {
	case err == nil:
		fulfilledMeter.Inc(1)
		r.log.Debug("Delivered random words", "id", id, "attempt", attempt)
	case errors.Is(err, ErrNonexistentRequest):
		// Someone else delivered it first.
		r.log.Trace("Request already fulfilled", "id", id)
	case attempt >= r.cfg.MaxAttempts:
		failedMeter.Inc(1)
		r.log.Error("Giving up on random words delivery", "id", id, "attempts", attempt, "err", err)
	default:
		failedMeter.Inc(1)
		r.log.Warn("Random words delivery failed, retrying", "id", id, "attempt", attempt, "err", err)
		r.schedule(id, attempt+1, r.cfg.RetryDelay)
	}
}
