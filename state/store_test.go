package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/bssc-evm/crypto"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/types"
)

var (
	addr1 = types.StringToAddress("1")
	addr2 = types.StringToAddress("2")

	hash1 = types.StringToHash("1")
	hash2 = types.StringToHash("2")
)

// PreState is the initial state of an account in a test
type PreState struct {
	Nonce   uint64
	Balance uint64
	Code    []byte
	State   map[types.Hash]types.Hash
}

var defaultPreState = map[types.Address]*PreState{
	addr1: {
		State: map[types.Hash]types.Hash{
			hash1: hash1,
		},
	},
}

func newStoreWithPreState(preState map[types.Address]*PreState) *Store {
	s := NewStore()

	for addr, p := range preState {
		if p.Code != nil {
			s.Deploy(addr, p.Code)
		}

		s.SetNonce(addr, p.Nonce)
		s.SetBalance(addr, new(big.Int).SetUint64(p.Balance))

		for k, v := range p.State {
			s.SetStorage(addr, k, v)
		}
	}

	return s
}

func TestStoreDefaults(t *testing.T) {
	t.Parallel()

	s := NewStore()

	assert.False(t, s.AccountExists(addr1))
	assert.Equal(t, big.NewInt(0), s.GetBalance(addr1))
	assert.Equal(t, uint64(0), s.GetNonce(addr1))
	assert.Empty(t, s.GetCode(addr1))
	assert.Equal(t, types.ZeroHash, s.GetStorage(addr1, hash1))
	assert.Equal(t, types.ZeroHash, s.GetCodeHash(addr1))

	// reads never create accounts
	assert.Equal(t, 0, s.Len())
}

func TestStoreDeploy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	code := []byte{0x60, 0x00}

	s.Deploy(addr1, code)

	assert.True(t, s.AccountExists(addr1))
	assert.Equal(t, code, s.GetCode(addr1))
	assert.Equal(t, 2, s.GetCodeSize(addr1))
	assert.Equal(t, crypto.Keccak256Hash(code), s.GetCodeHash(addr1))

	// the stored code is a copy
	code[0] = 0xff
	assert.Equal(t, byte(0x60), s.GetCode(addr1)[0])
}

func TestStoreTransfer(t *testing.T) {
	t.Parallel()

	s := newStoreWithPreState(map[types.Address]*PreState{
		addr1: {Balance: 100},
	})

	require.NoError(t, s.Transfer(addr1, addr2, big.NewInt(40)))
	assert.Equal(t, big.NewInt(60), s.GetBalance(addr1))
	assert.Equal(t, big.NewInt(40), s.GetBalance(addr2))

	err := s.Transfer(addr1, addr2, big.NewInt(61))
	assert.ErrorIs(t, err, runtime.ErrNotEnoughFunds)

	// nothing moved
	assert.Equal(t, big.NewInt(60), s.GetBalance(addr1))
	assert.Equal(t, big.NewInt(40), s.GetBalance(addr2))

	assert.Error(t, s.Transfer(addr1, addr2, big.NewInt(-1)))
}

func TestStoreBalanceIsCopied(t *testing.T) {
	t.Parallel()

	s := newStoreWithPreState(map[types.Address]*PreState{
		addr1: {Balance: 100},
	})

	b := s.GetBalance(addr1)
	b.SetUint64(1)

	assert.Equal(t, big.NewInt(100), s.GetBalance(addr1))
}

func TestSnapshotUpdateData(t *testing.T) {
	t.Parallel()

	s := newStoreWithPreState(defaultPreState)

	assert.Equal(t, hash1, s.GetStorage(addr1, hash1))

	ss := s.Snapshot()
	s.SetStorage(addr1, hash1, hash2)
	assert.Equal(t, hash2, s.GetStorage(addr1, hash1))

	require.NoError(t, s.RevertToSnapshot(ss))
	assert.Equal(t, hash1, s.GetStorage(addr1, hash1))
}

func TestSnapshotNested(t *testing.T) {
	t.Parallel()

	s := NewStore()

	first := s.Snapshot()
	s.SetBalance(addr1, big.NewInt(1))

	second := s.Snapshot()
	s.SetBalance(addr1, big.NewInt(2))
	s.Deploy(addr2, []byte{0x00})

	require.NoError(t, s.RevertToSnapshot(second))
	assert.Equal(t, big.NewInt(1), s.GetBalance(addr1))
	assert.False(t, s.AccountExists(addr2))

	require.NoError(t, s.RevertToSnapshot(first))
	assert.False(t, s.AccountExists(addr1))

	// later snapshots are gone after a revert
	assert.ErrorIs(t, s.RevertToSnapshot(second), ErrSnapshotNotFound)
	assert.ErrorIs(t, s.RevertToSnapshot(-1), ErrSnapshotNotFound)
}

func TestDiscardSnapshot(t *testing.T) {
	t.Parallel()

	s := NewStore()

	first := s.Snapshot()
	s.SetBalance(addr1, big.NewInt(1))

	second := s.Snapshot()
	s.SetBalance(addr1, big.NewInt(2))

	// the inner mark goes, the state stays
	s.DiscardSnapshot(second)
	assert.Equal(t, big.NewInt(2), s.GetBalance(addr1))
	assert.Len(t, s.snapshots, 1)
	assert.ErrorIs(t, s.RevertToSnapshot(second), ErrSnapshotNotFound)

	// unknown ids are ignored
	s.DiscardSnapshot(5)
	s.DiscardSnapshot(-1)

	require.NoError(t, s.RevertToSnapshot(first))
	assert.False(t, s.AccountExists(addr1))
	assert.Empty(t, s.snapshots)
}

func TestStoreZeroValueDeletesSlot(t *testing.T) {
	t.Parallel()

	s := newStoreWithPreState(defaultPreState)

	account, ok := s.GetAccount(addr1)
	require.True(t, ok)
	assert.Equal(t, 1, account.StorageLen())

	s.SetStorage(addr1, hash1, types.ZeroHash)

	account, ok = s.GetAccount(addr1)
	require.True(t, ok)
	assert.Equal(t, 0, account.StorageLen())
}

func TestStoreCopy(t *testing.T) {
	t.Parallel()

	s := newStoreWithPreState(defaultPreState)
	c := s.Copy()

	c.SetStorage(addr1, hash1, hash2)
	c.SetBalance(addr2, big.NewInt(5))

	assert.Equal(t, hash1, s.GetStorage(addr1, hash1))
	assert.False(t, s.AccountExists(addr2))

	assert.Equal(t, hash2, c.GetStorage(addr1, hash1))
	assert.True(t, c.AccountExists(addr2))
}

func TestStoreAccounts(t *testing.T) {
	t.Parallel()

	s := newStoreWithPreState(map[types.Address]*PreState{
		addr2: {Nonce: 2},
		addr1: {Nonce: 1},
	})

	var (
		addrs  []types.Address
		nonces []uint64
	)

	s.Accounts(func(addr types.Address, account *Account) bool {
		addrs = append(addrs, addr)
		nonces = append(nonces, account.Nonce)

		return false
	})

	assert.Equal(t, []types.Address{addr1, addr2}, addrs)
	assert.Equal(t, []uint64{1, 2}, nonces)
	assert.Equal(t, 2, s.Len())
}

func TestAccountWalkStorage(t *testing.T) {
	t.Parallel()

	s := newStoreWithPreState(map[types.Address]*PreState{
		addr1: {
			State: map[types.Hash]types.Hash{
				hash2: hash1,
				hash1: hash2,
			},
		},
	})

	account, ok := s.GetAccount(addr1)
	require.True(t, ok)

	var keys []types.Hash

	account.WalkStorage(func(key, value types.Hash) bool {
		keys = append(keys, key)

		return false
	})

	assert.Equal(t, []types.Hash{hash1, hash2}, keys)
}
