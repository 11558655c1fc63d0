package storage

import (
	"bytes"
	"fmt"

	"github.com/hashicorp/go-hclog"
	bolt "go.etcd.io/bbolt"
)

// bucket holding every key of the storage
var bucket = []byte("state")

// NewBoltDBStorage creates the new storage reference with boltdb
func NewBoltDBStorage(path string, logger hclog.Logger) (*Storage, error) {
	db, err := bolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
			return fmt.Errorf("failed to create bucket=%s: %w", string(bucket), err)
		}

		return nil
	})
	if err != nil {
		_ = db.Close()

		return nil, err
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return NewKeyValueStorage(logger.Named("boltdb"), &boltDBKV{db}), nil
}

// boltDBKV is the boltdb implementation of the kv storage
type boltDBKV struct {
	db *bolt.DB
}

func (b *boltDBKV) Set(p []byte, v []byte) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put(p, v)
	})
}

func (b *boltDBKV) Get(p []byte) ([]byte, bool, error) {
	var (
		data  []byte
		found bool
	)

	err := b.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucket).Get(p); v != nil {
			// v is only valid for the lifetime of the tx, therefore copying
			data = make([]byte, len(v))
			copy(data, v)
			found = true
		}

		return nil
	})

	return data, found, err
}

func (b *boltDBKV) Iterate(prefix []byte, fn func(k, v []byte) bool) error {
	return b.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucket).Cursor()

		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			if fn(append([]byte{}, k...), append([]byte{}, v...)) {
				break
			}
		}

		return nil
	})
}

func (b *boltDBKV) Close() error {
	return b.db.Close()
}
