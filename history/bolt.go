package history

import (
	"time"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var settlementsBucket = []byte("settlements")

// BoltStore persists settlements in a bbolt file. Keys are big-endian round
// numbers so a cursor walks rounds in order.
type BoltStore struct {
	db  *bolt.DB
	log log.Logger
}

// OpenBoltStore opens (creating if needed) the database at path.
func OpenBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open history database %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(settlementsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create settlements bucket")
	}
	return &BoltStore{db: db, log: log.New("module", "history", "path", path)}, nil
}

func (b *BoltStore) Put(s *Settlement) error {
	enc, err := rlp.EncodeToBytes(s)
	if err != nil {
		return errors.Wrapf(err, "encode settlement of round %d", s.Round)
	}
	err = b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(settlementsBucket).Put(bigendian.Uint64ToBytes(s.Round), enc)
	})
	if err != nil {
		return errors.Wrapf(err, "store settlement of round %d", s.Round)
	}
	b.log.Trace("Stored settlement", "round", s.Round, "winner", s.Winner)
	return nil
}

func (b *BoltStore) Get(round uint64) (*Settlement, error) {
	var s *Settlement
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(settlementsBucket).Get(bigendian.Uint64ToBytes(round))
		if raw == nil {
			return nil
		}
		s = new(Settlement)
		return rlp.DecodeBytes(raw, s)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "load settlement of round %d", round)
	}
	return s, nil
}

func (b *BoltStore) List(from uint64, limit int) ([]*Settlement, error) {
	var out []*Settlement
	err := b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(settlementsBucket).Cursor()
		for k, v := c.Seek(bigendian.Uint64ToBytes(from)); k != nil; k, v = c.Next() {
			if limit > 0 && len(out) >= limit {
				break
			}
			s := new(Settlement)
			if err := rlp.DecodeBytes(v, s); err != nil {
				return errors.Wrapf(err, "decode settlement of round %d", bigendian.BytesToUint64(k))
			}
			out = append(out, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (b *BoltStore) Last() (*Settlement, error) {
	var s *Settlement
	err := b.db.View(func(tx *bolt.Tx) error {
		k, v := tx.Bucket(settlementsBucket).Cursor().Last()
		if k == nil {
			return nil
		}
		s = new(Settlement)
		return errors.Wrapf(rlp.DecodeBytes(v, s), "decode settlement of round %d", bigendian.BytesToUint64(k))
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (b *BoltStore) Close() error {
	return b.db.Close()
}
