package history

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-raffle/vrf"
)

func settlement(round uint64) *Settlement {
	return &Settlement{
		Round:      round,
		RequestID:  vrf.RequestID(round + 10),
		Winner:     common.BytesToAddress([]byte{byte(round)}),
		Payout:     big.NewInt(int64(round) * 1e16),
		Players:    round + 1,
		RandomWord: new(big.Int).Lsh(big.NewInt(1), 200),
		Time:       1700000000 + round,
	}
}

func TestSettlementRLP(t *testing.T) {
	require := require.New(t)

	s := settlement(3)
	enc, err := rlp.EncodeToBytes(s)
	require.NoError(err)

	var got Settlement
	require.NoError(rlp.DecodeBytes(enc, &got))
	require.Equal(s, &got)

	// Nil amounts encode as zero.
	enc, err = rlp.EncodeToBytes(&Settlement{Round: 1})
	require.NoError(err)
	require.NoError(rlp.DecodeBytes(enc, &got))
	require.Equal(0, got.Payout.Sign())
}

func testStore(t *testing.T, store Store) {
	require := require.New(t)

	got, err := store.Get(1)
	require.NoError(err)
	require.Nil(got)
	got, err = store.Last()
	require.NoError(err)
	require.Nil(got)

	for _, r := range []uint64{3, 1, 2, 256} {
		require.NoError(store.Put(settlement(r)))
	}

	got, err = store.Last()
	require.NoError(err)
	require.Equal(settlement(256), got)

	got, err = store.Get(2)
	require.NoError(err)
	require.Equal(settlement(2), got)

	for _, tc := range []struct {
		from   uint64
		limit  int
		rounds []uint64
	}{
		{0, 0, []uint64{1, 2, 3, 256}},
		{2, 0, []uint64{2, 3, 256}},
		{1, 2, []uint64{1, 2}},
		{4, 10, []uint64{256}},
		{300, 0, nil},
	} {
		list, err := store.List(tc.from, tc.limit)
		require.NoError(err)
		rounds := make([]uint64, 0, len(list))
		for _, s := range list {
			rounds = append(rounds, s.Round)
		}
		if tc.rounds == nil {
			require.Empty(rounds)
		} else {
			require.Equal(tc.rounds, rounds, "from %d limit %d", tc.from, tc.limit)
		}
	}

	// Overwrite.
	s := settlement(2)
	s.Winner = common.Address{0xff}
	require.NoError(store.Put(s))
	got, err = store.Get(2)
	require.NoError(err)
	require.Equal(common.Address{0xff}, got.Winner)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testStore(t, store)
}

func TestMemoryStoreCopies(t *testing.T) {
	require := require.New(t)
	store := NewMemoryStore()

	s := settlement(1)
	require.NoError(store.Put(s))
	s.Payout.SetInt64(0)

	got, err := store.Get(1)
	require.NoError(err)
	require.Equal(settlement(1).Payout, got.Payout)
}

func TestBoltStore(t *testing.T) {
	require := require.New(t)
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := OpenBoltStore(path)
	require.NoError(err)
	testStore(t, store)
	require.NoError(store.Close())

	// Records survive a reopen.
	store, err = OpenBoltStore(path)
	require.NoError(err)
	defer store.Close()
	got, err := store.Get(256)
	require.NoError(err)
	require.Equal(settlement(256), got)
	got, err = store.Last()
	require.NoError(err)
	require.Equal(settlement(256), got)
}
