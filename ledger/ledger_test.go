package ledger

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func newFundedLedger(t *testing.T, accounts int, balance int64) *StateLedger {
	t.Helper()
	l, err := NewStateLedger()
	require.NoError(t, err)
	_, err = ApplyFakeGenesis(l, FakeGenesis(accounts, big.NewInt(balance)))
	require.NoError(t, err)
	return l
}

func TestTransfer(t *testing.T) {
	require := require.New(t)
	l := newFundedLedger(t, 2, 100)
	a, b := FakeAccount(0), FakeAccount(1)

	require.NoError(l.Transfer(a, b, big.NewInt(40)))
	require.Equal(big.NewInt(60), l.BalanceOf(a))
	require.Equal(big.NewInt(140), l.BalanceOf(b))

	// Overdraft is refused and nothing moves.
	err := l.Transfer(a, b, big.NewInt(61))
	require.True(errors.Is(err, ErrInsufficientFunds))
	require.Equal(big.NewInt(60), l.BalanceOf(a))

	require.True(errors.Is(l.Transfer(a, b, big.NewInt(-1)), ErrNegativeAmount))
	require.True(errors.Is(l.Transfer(a, b, nil), ErrNegativeAmount))
}

func TestRefuse(t *testing.T) {
	require := require.New(t)
	l := newFundedLedger(t, 2, 100)
	a, b := FakeAccount(0), FakeAccount(1)

	l.Refuse(b, true)
	err := l.Transfer(a, b, big.NewInt(1))
	require.True(errors.Is(err, ErrTransferRejected))
	require.Equal(big.NewInt(100), l.BalanceOf(a))

	l.Refuse(b, false)
	require.NoError(l.Transfer(a, b, big.NewInt(1)))
}

func TestAtomicRevertsOnError(t *testing.T) {
	require := require.New(t)
	l := newFundedLedger(t, 3, 100)
	a, b, c := FakeAccount(0), FakeAccount(1), FakeAccount(2)

	boom := errors.New("boom")
	err := l.Atomic(func(tx Transactor) error {
		require.NoError(tx.Transfer(a, b, big.NewInt(50)))
		require.NoError(tx.Transfer(b, c, big.NewInt(150)))
		require.Equal(big.NewInt(250), tx.BalanceOf(c))
		return boom
	})
	require.Equal(boom, err)
	for _, acc := range []common.Address{a, b, c} {
		require.Equal(big.NewInt(100), l.BalanceOf(acc), acc.Hex())
	}

	err = l.Atomic(func(tx Transactor) error {
		return tx.Transfer(a, c, big.NewInt(100))
	})
	require.NoError(err)
	require.Equal(0, l.BalanceOf(a).Sign())
	require.Equal(big.NewInt(200), l.BalanceOf(c))
}

func TestFakeAccountsAreDeterministic(t *testing.T) {
	require := require.New(t)

	require.Equal(FakeAccount(3), FakeAccount(3))
	require.NotEqual(FakeAccount(3), FakeAccount(4))
	require.Len(FakeAccounts(5), 5)
}

func TestGenesisRootIsStable(t *testing.T) {
	require := require.New(t)

	root1 := MustApplyFakeGenesis(mustLedger(t), FakeGenesis(4, big.NewInt(1e18)))
	root2 := MustApplyFakeGenesis(mustLedger(t), FakeGenesis(4, big.NewInt(1e18)))
	require.Equal(root1, root2)
	require.NotEqual(common.Hash{}, root1)
}

func mustLedger(t *testing.T) *StateLedger {
	l, err := NewStateLedger()
	require.NoError(t, err)
	return l
}
