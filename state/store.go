package state

import (
	"errors"
	"fmt"
	"math/big"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/0xPolygon/bssc-evm/crypto"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/types"
)

var ErrSnapshotNotFound = errors.New("snapshot not found")

var _ runtime.Host = (*Store)(nil)

// Store is the in-memory contract state. Accounts live in an immutable
// radix tree keyed by address, a snapshot is a committed root of that tree.
// A Store is not safe for concurrent use, use Copy to hand state to another goroutine.
type Store struct {
	snapshots []*iradix.Tree
	txn       *iradix.Txn
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		snapshots: []*iradix.Tree{},
		txn:       iradix.New().Txn(),
	}
}

// Copy returns an independent store that starts from the current state
func (s *Store) Copy() *Store {
	return &Store{
		snapshots: []*iradix.Tree{},
		txn:       s.txn.CommitOnly().Txn(),
	}
}

// Snapshot takes a snapshot at this point in time
func (s *Store) Snapshot() int {
	t := s.txn.CommitOnly()

	id := len(s.snapshots)
	s.snapshots = append(s.snapshots, t)

	return id
}

// RevertToSnapshot reverts to a given snapshot. Snapshots taken after id are discarded.
func (s *Store) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(s.snapshots) {
		return fmt.Errorf("%w: %d", ErrSnapshotNotFound, id)
	}

	tree := s.snapshots[id]
	s.txn = tree.Txn()
	s.snapshots = s.snapshots[:id]

	return nil
}

// DiscardSnapshot forgets snapshot id and the ones taken after it, the state is kept
func (s *Store) DiscardSnapshot(id int) {
	if id < 0 || id >= len(s.snapshots) {
		return
	}

	// release the trees for the collector
	for i := id; i < len(s.snapshots); i++ {
		s.snapshots[i] = nil
	}

	s.snapshots = s.snapshots[:id]
}

// GetAccount returns a copy of the account
func (s *Store) GetAccount(addr types.Address) (*Account, bool) {
	object, exists := s.getAccount(addr)
	if !exists {
		return nil, false
	}

	return object.Copy(), true
}

func (s *Store) getAccount(addr types.Address) (*Account, bool) {
	val, exists := s.txn.Get(addr.Bytes())
	if !exists {
		return nil, false
	}

	account, ok := val.(*Account)

	return account, ok
}

// upsertAccount applies f to a copy of the account, creating it when missing
func (s *Store) upsertAccount(addr types.Address, f func(account *Account)) {
	account, exists := s.getAccount(addr)
	if exists {
		account = account.Copy()
	} else {
		account = NewAccount()
	}

	f(account)

	s.txn.Insert(addr.Bytes(), account)
}

// SetAccount replaces the whole account
func (s *Store) SetAccount(addr types.Address, account *Account) {
	a := account.Copy()
	a.tree()

	s.txn.Insert(addr.Bytes(), a)
}

// Accounts visits every account in address order until fn returns true
func (s *Store) Accounts(fn func(addr types.Address, account *Account) bool) {
	s.txn.Root().Walk(func(k []byte, v interface{}) bool {
		account, ok := v.(*Account)
		if !ok {
			return false
		}

		return fn(types.BytesToAddress(k), account.Copy())
	})
}

// Len returns the number of accounts
func (s *Store) Len() int {
	n := 0

	s.txn.Root().Walk(func(k []byte, v interface{}) bool {
		n++

		return false
	})

	return n
}

func (s *Store) AccountExists(addr types.Address) bool {
	_, exists := s.getAccount(addr)

	return exists
}

// Balance

func (s *Store) GetBalance(addr types.Address) *big.Int {
	account, exists := s.getAccount(addr)
	if !exists {
		return big.NewInt(0)
	}

	return new(big.Int).Set(account.Balance)
}

func (s *Store) SetBalance(addr types.Address, balance *big.Int) {
	s.upsertAccount(addr, func(account *Account) {
		account.Balance.Set(balance)
	})
}

// AddBalance adds balance
func (s *Store) AddBalance(addr types.Address, balance *big.Int) {
	s.upsertAccount(addr, func(account *Account) {
		account.Balance.Add(account.Balance, balance)
	})
}

// Transfer moves amount from one account to the other, nothing changes on error
func (s *Store) Transfer(from, to types.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return fmt.Errorf("negative transfer amount %s", amount)
	}

	if balance := s.GetBalance(from); balance.Cmp(amount) < 0 {
		return runtime.ErrNotEnoughFunds
	}

	s.upsertAccount(from, func(account *Account) {
		account.Balance.Sub(account.Balance, amount)
	})
	s.AddBalance(to, amount)

	return nil
}

// Nonce

func (s *Store) GetNonce(addr types.Address) uint64 {
	account, exists := s.getAccount(addr)
	if !exists {
		return 0
	}

	return account.Nonce
}

func (s *Store) SetNonce(addr types.Address, nonce uint64) {
	s.upsertAccount(addr, func(account *Account) {
		account.Nonce = nonce
	})
}

// Code

// Deploy registers code at addr. A new account starts with an empty storage,
// slots written by the init code are kept.
func (s *Store) Deploy(addr types.Address, code []byte) {
	s.upsertAccount(addr, func(account *Account) {
		account.Code = append([]byte{}, code...)
		account.CodeHash = crypto.Keccak256Hash(code)
	})
}

func (s *Store) GetCode(addr types.Address) []byte {
	account, exists := s.getAccount(addr)
	if !exists {
		return nil
	}

	return account.Code
}

func (s *Store) GetCodeSize(addr types.Address) int {
	return len(s.GetCode(addr))
}

func (s *Store) GetCodeHash(addr types.Address) types.Hash {
	account, exists := s.getAccount(addr)
	if !exists {
		return types.ZeroHash
	}

	return account.CodeHash
}

// Storage

func (s *Store) GetStorage(addr types.Address, key types.Hash) types.Hash {
	account, exists := s.getAccount(addr)
	if !exists {
		return types.ZeroHash
	}

	return account.GetStorage(key)
}

func (s *Store) SetStorage(addr types.Address, key types.Hash, value types.Hash) {
	s.upsertAccount(addr, func(account *Account) {
		account.SetStorage(key, value)
	})
}
