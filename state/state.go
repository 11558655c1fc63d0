package state

import (
	"fmt"
	"math/big"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/0xPolygon/bssc-evm/crypto"
	"github.com/0xPolygon/bssc-evm/types"
)

var emptyCodeHash = crypto.Keccak256Hash(nil)

// Account is the account reference in the contract state
type Account struct {
	Nonce    uint64
	Balance  *big.Int
	CodeHash types.Hash
	Code     []byte

	// storage slots, key is the slot hash and value a types.Hash.
	// The tree is immutable, every write produces a new root.
	storage *iradix.Tree
}

// NewAccount creates an empty account
func NewAccount() *Account {
	return &Account{
		Balance:  big.NewInt(0),
		CodeHash: emptyCodeHash,
		storage:  iradix.New(),
	}
}

func (a *Account) String() string {
	return fmt.Sprintf("%d %s", a.Nonce, a.Balance.String())
}

// Copy returns a copy of the account that shares the immutable storage tree
func (a *Account) Copy() *Account {
	aa := new(Account)

	aa.Balance = new(big.Int)
	if a.Balance != nil {
		aa.Balance.Set(a.Balance)
	}

	aa.Nonce = a.Nonce
	aa.CodeHash = a.CodeHash
	aa.Code = a.Code
	aa.storage = a.storage

	return aa
}

// Empty reports whether the account has no nonce, balance or code
func (a *Account) Empty() bool {
	return a.Nonce == 0 && a.Balance.Sign() == 0 && a.CodeHash == emptyCodeHash
}

// GetStorage returns the value of a slot, zero when unset
func (a *Account) GetStorage(key types.Hash) types.Hash {
	val, ok := a.tree().Get(key.Bytes())
	if !ok {
		return types.ZeroHash
	}

	h, _ := val.(types.Hash)

	return h
}

// SetStorage writes a slot, zero values delete it
func (a *Account) SetStorage(key, value types.Hash) {
	if value.IsZero() {
		a.storage, _, _ = a.tree().Delete(key.Bytes())
	} else {
		a.storage, _, _ = a.tree().Insert(key.Bytes(), value)
	}
}

// StorageLen returns the number of non zero slots
func (a *Account) StorageLen() int {
	return a.tree().Len()
}

// WalkStorage visits every non zero slot in key order until fn returns true
func (a *Account) WalkStorage(fn func(key, value types.Hash) bool) {
	a.tree().Root().Walk(func(k []byte, v interface{}) bool {
		h, _ := v.(types.Hash)

		return fn(types.BytesToHash(k), h)
	})
}

func (a *Account) tree() *iradix.Tree {
	if a.storage == nil {
		a.storage = iradix.New()
	}

	return a.storage
}
