package storage

import (
	"fmt"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/bssc-evm/state"
	"github.com/0xPolygon/bssc-evm/types"
)

var (
	// ACCOUNT is the prefix for accounts
	ACCOUNT = []byte("a")
)

// KV is a key value storage interface
type KV interface {
	Close() error
	Set(p []byte, v []byte) error
	Get(p []byte) ([]byte, bool, error)

	// Iterate visits every key with the prefix in key order until fn returns true
	Iterate(prefix []byte, fn func(k, v []byte) bool) error
}

// Storage persists the accounts of a contract state on a kv database
type Storage struct {
	logger hclog.Logger
	db     KV
}

// NewKeyValueStorage creates a storage over db
func NewKeyValueStorage(logger hclog.Logger, db KV) *Storage {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return &Storage{logger: logger, db: db}
}

func accountKey(addr types.Address) []byte {
	return append(append([]byte{}, ACCOUNT...), addr.Bytes()...)
}

// WriteAccount stores the account with its code and storage slots
func (s *Storage) WriteAccount(addr types.Address, account *state.Account) error {
	return s.db.Set(accountKey(addr), marshalAccount(account))
}

// ReadAccount returns the account stored at addr
func (s *Storage) ReadAccount(addr types.Address) (*state.Account, bool, error) {
	data, ok, err := s.db.Get(accountKey(addr))
	if err != nil || !ok {
		return nil, false, err
	}

	account, err := unmarshalAccount(data)
	if err != nil {
		return nil, false, fmt.Errorf("account %s: %w", addr, err)
	}

	return account, true, nil
}

// Accounts visits every stored account in address order until fn returns true
func (s *Storage) Accounts(fn func(addr types.Address, account *state.Account) bool) error {
	var decodeErr error

	err := s.db.Iterate(ACCOUNT, func(k, v []byte) bool {
		addr := types.BytesToAddress(k[len(ACCOUNT):])

		account, err := unmarshalAccount(v)
		if err != nil {
			decodeErr = fmt.Errorf("account %s: %w", addr, err)

			return true
		}

		return fn(addr, account)
	})
	if err != nil {
		return err
	}

	return decodeErr
}

// SaveStore writes every account of the store
func (s *Storage) SaveStore(store *state.Store) error {
	var err error

	n := 0

	store.Accounts(func(addr types.Address, account *state.Account) bool {
		if err = s.WriteAccount(addr, account); err != nil {
			return true
		}

		n++

		return false
	})

	if err != nil {
		return err
	}

	s.logger.Debug("saved store", "accounts", n)

	return nil
}

// LoadStore copies every stored account into the store
func (s *Storage) LoadStore(store *state.Store) error {
	n := 0

	err := s.Accounts(func(addr types.Address, account *state.Account) bool {
		store.SetAccount(addr, account)

		n++

		return false
	})
	if err != nil {
		return err
	}

	s.logger.Debug("loaded store", "accounts", n)

	return nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}
