package ledger

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
)

// ApplyFakeGenesis pre-funds accounts for development networks and tests and
// returns the state root after the allocation is committed.
//
// Example:
//
//	balances := map[common.Address]*big.Int{
//	    ledger.FakeAccount(0): big.NewInt(1e18), // 1 ETH
//	}
//	root, err := ledger.ApplyFakeGenesis(l, balances)
func ApplyFakeGenesis(l *StateLedger, balances map[common.Address]*big.Int) (common.Hash, error) {
	for acc, balance := range balances {
		if err := l.Mint(acc, balance); err != nil {
			return common.Hash{}, err
		}
	}
	return l.Commit()
}

// MustApplyFakeGenesis is ApplyFakeGenesis for callers that cannot continue
// without the allocation.
func MustApplyFakeGenesis(l *StateLedger, balances map[common.Address]*big.Int) common.Hash {
	root, err := ApplyFakeGenesis(l, balances)
	if err != nil {
		log.Crit("ApplyFakeGenesis", "err", err)
	}
	return root
}

// FakeKey returns a deterministic secp256k1 key: the same n always yields the
// same key, so fake accounts are stable across runs.
func FakeKey(n int) *ecdsa.PrivateKey {
	seed := crypto.Keccak256([]byte("raffle-fakenet"), bigendian.Uint64ToBytes(uint64(n)))
	key, err := crypto.ToECDSA(seed)
	if err != nil {
		panic(err)
	}
	return key
}

// FakeAccount returns the address of FakeKey(n).
func FakeAccount(n int) common.Address {
	return crypto.PubkeyToAddress(FakeKey(n).PublicKey)
}

// FakeAccounts returns the first count fake accounts.
func FakeAccounts(count int) []common.Address {
	accs := make([]common.Address, count)
	for i := range accs {
		accs[i] = FakeAccount(i)
	}
	return accs
}

// FakeGenesis funds each of the first count fake accounts with balance.
func FakeGenesis(count int, balance *big.Int) map[common.Address]*big.Int {
	alloc := make(map[common.Address]*big.Int, count)
	for _, acc := range FakeAccounts(count) {
		alloc[acc] = new(big.Int).Set(balance)
	}
	return alloc
}
