package storage

import (
	"errors"

	"github.com/hashicorp/go-hclog"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// NewLevelDBStorage creates the new storage reference with leveldb default options
func NewLevelDBStorage(path string, logger hclog.Logger) (*Storage, error) {
	options := &opt.Options{
		BlockCacheCapacity: 8 * opt.MiB,
		WriteBuffer:        opt.DefaultWriteBuffer,
	}

	db, err := leveldb.OpenFile(path, options)
	if err != nil {
		return nil, err
	}

	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return NewKeyValueStorage(logger.Named("leveldb"), &levelDBKV{db}), nil
}

// levelDBKV is the leveldb implementation of the kv storage
type levelDBKV struct {
	db *leveldb.DB
}

func (l *levelDBKV) Set(p []byte, v []byte) error {
	return l.db.Put(p, v, nil)
}

func (l *levelDBKV) Get(p []byte) ([]byte, bool, error) {
	data, err := l.db.Get(p, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, err
	}

	return data, true, nil
}

func (l *levelDBKV) Iterate(prefix []byte, fn func(k, v []byte) bool) error {
	iter := l.db.NewIterator(util.BytesPrefix(prefix), nil)
	defer iter.Release()

	for iter.Next() {
		// the iterator reuses its buffers
		k := append([]byte{}, iter.Key()...)
		v := append([]byte{}, iter.Value()...)

		if fn(k, v) {
			break
		}
	}

	return iter.Error()
}

func (l *levelDBKV) Close() error {
	return l.db.Close()
}
