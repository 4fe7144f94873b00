// Package ledger keeps custody of the value paid into a raffle.
//
// Balances live in a go-ethereum StateDB backed by an in-memory database. The
// StateDB journal gives every group of transfers a snapshot it can be reverted
// to, which is what lets the raffle settle a round all-or-nothing.
package ledger

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/log"
)

var (
	// ErrInsufficientFunds is returned when the sender cannot cover a transfer.
	ErrInsufficientFunds = errors.New("insufficient funds for transfer")

	// ErrTransferRejected is returned when the recipient refuses incoming value.
	ErrTransferRejected = errors.New("transfer rejected by recipient")

	// ErrNegativeAmount is returned for transfers of a negative or nil amount.
	ErrNegativeAmount = errors.New("invalid transfer amount")
)

// Transactor reads balances and moves value between accounts.
type Transactor interface {
	BalanceOf(addr common.Address) *big.Int
	Transfer(from, to common.Address, amount *big.Int) error
}

// Custody is a Transactor whose transfers can be grouped into one unit.
type Custody interface {
	Transactor

	// Atomic runs fn with exclusive access to the ledger. Every transfer made
	// through tx is reverted if fn returns an error.
	Atomic(fn func(tx Transactor) error) error
}

// StateLedger implements Custody on top of a go-ethereum StateDB.
type StateLedger struct {
	mu      sync.Mutex
	statedb *state.StateDB
	refused map[common.Address]bool

	log log.Logger
}

// NewStateLedger creates an empty ledger on an in-memory database.
func NewStateLedger() (*StateLedger, error) {
	statedb, err := state.New(common.Hash{}, state.NewDatabase(rawdb.NewMemoryDatabase()), nil)
	if err != nil {
		return nil, err
	}
	return &StateLedger{
		statedb: statedb,
		refused: make(map[common.Address]bool),
		log:     log.New("module", "ledger"),
	}, nil
}

// BalanceOf returns a copy of the balance held by addr.
func (l *StateLedger) BalanceOf(addr common.Address) *big.Int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.balanceOf(addr)
}

// Transfer moves amount from one account to another.
func (l *StateLedger) Transfer(from, to common.Address, amount *big.Int) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.transfer(from, to, amount); err != nil {
		return err
	}
	l.statedb.Finalise(false)
	return nil
}

// Atomic implements Custody.
func (l *StateLedger) Atomic(fn func(tx Transactor) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	snap := l.statedb.Snapshot()
	if err := fn(ledgerTx{l}); err != nil {
		l.statedb.RevertToSnapshot(snap)
		return err
	}
	l.statedb.Finalise(false)
	return nil
}

// Mint credits addr with newly created value. It is how genesis allocations
// and development faucets put funds into the ledger.
func (l *StateLedger) Mint(addr common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	l.statedb.AddBalance(addr, amount)
	l.statedb.Finalise(false)
	return nil
}

// Refuse makes addr reject (or accept again) every incoming transfer, the way a
// contract without a payable fallback would.
func (l *StateLedger) Refuse(addr common.Address, refuse bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if refuse {
		l.refused[addr] = true
	} else {
		delete(l.refused, addr)
	}
}

// Commit flushes pending changes to the underlying trie database and returns
// the resulting state root.
func (l *StateLedger) Commit() (common.Hash, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	root, err := l.statedb.Commit(true)
	if err != nil {
		return common.Hash{}, err
	}
	if err := l.statedb.Database().TrieDB().Commit(root, false, nil); err != nil {
		return common.Hash{}, err
	}
	return root, nil
}

func (l *StateLedger) balanceOf(addr common.Address) *big.Int {
	return new(big.Int).Set(l.statedb.GetBalance(addr))
}

// transfer validates everything before touching the state, so a failed call
// leaves no journal entries behind.
func (l *StateLedger) transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if l.refused[to] {
		return fmt.Errorf("%w: %s", ErrTransferRejected, to.Hex())
	}
	if have := l.statedb.GetBalance(from); have.Cmp(amount) < 0 {
		return fmt.Errorf("%w: address %s have %v want %v", ErrInsufficientFunds, from.Hex(), have, amount)
	}
	l.statedb.SubBalance(from, amount)
	l.statedb.AddBalance(to, amount)

	l.log.Trace("Transferred value", "from", from, "to", to, "amount", amount)
	return nil
}

// ledgerTx is the view handed to Atomic callbacks; the ledger lock is already held.
type ledgerTx struct {
	l *StateLedger
}

func (tx ledgerTx) BalanceOf(addr common.Address) *big.Int {
	return tx.l.balanceOf(addr)
}

func (tx ledgerTx) Transfer(from, to common.Address, amount *big.Int) error {
	return tx.l.transfer(from, to, amount)
}
