package storage

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/bssc-evm/crypto"
	"github.com/0xPolygon/bssc-evm/state"
	"github.com/0xPolygon/bssc-evm/types"
)

type PlaceholderStorage func(t *testing.T) (*Storage, func())

var (
	addr1 = types.StringToAddress("1")
	addr2 = types.StringToAddress("2")

	hash1 = types.StringToHash("1")
	hash2 = types.StringToHash("2")
)

func newMemory(t *testing.T) (*Storage, func()) {
	t.Helper()

	s, err := NewMemoryStorage(nil)
	require.NoError(t, err)

	return s, func() {}
}

func newLevelDB(t *testing.T) (*Storage, func()) {
	t.Helper()

	s, err := NewLevelDBStorage(t.TempDir(), nil)
	require.NoError(t, err)

	return s, func() {
		require.NoError(t, s.Close())
	}
}

func newBoltDB(t *testing.T) (*Storage, func()) {
	t.Helper()

	s, err := NewBoltDBStorage(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)

	return s, func() {
		require.NoError(t, s.Close())
	}
}

func TestBackends(t *testing.T) {
	t.Parallel()

	backends := map[string]PlaceholderStorage{
		"memory":  newMemory,
		"leveldb": newLevelDB,
		"boltdb":  newBoltDB,
	}

	for name, m := range backends {
		m := m

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			testStorage(t, m)
		})
	}
}

func testStorage(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	t.Run("testAccount", func(t *testing.T) {
		testAccount(t, m)
	})
	t.Run("testMissingAccount", func(t *testing.T) {
		testMissingAccount(t, m)
	})
	t.Run("testAccountsOrder", func(t *testing.T) {
		testAccountsOrder(t, m)
	})
	t.Run("testStoreRoundTrip", func(t *testing.T) {
		testStoreRoundTrip(t, m)
	})
}

func testAccount(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	code := []byte{0x60, 0x2a, 0x00}

	account := state.NewAccount()
	account.Nonce = 3
	account.Balance = big.NewInt(1000)
	account.Code = code
	account.SetStorage(hash1, hash2)
	account.SetStorage(hash2, hash1)

	require.NoError(t, s.WriteAccount(addr1, account))

	found, ok, err := s.ReadAccount(addr1)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, uint64(3), found.Nonce)
	assert.Equal(t, 0, found.Balance.Cmp(big.NewInt(1000)))
	assert.Equal(t, code, found.Code)
	assert.Equal(t, crypto.Keccak256Hash(code), found.CodeHash)
	assert.Equal(t, 2, found.StorageLen())
	assert.Equal(t, hash2, found.GetStorage(hash1))
	assert.Equal(t, hash1, found.GetStorage(hash2))
}

func testMissingAccount(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	account, ok, err := s.ReadAccount(addr1)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, account)
}

func testAccountsOrder(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	for i, addr := range []types.Address{addr2, addr1} {
		account := state.NewAccount()
		account.Nonce = uint64(i)

		require.NoError(t, s.WriteAccount(addr, account))
	}

	var addrs []types.Address

	require.NoError(t, s.Accounts(func(addr types.Address, account *state.Account) bool {
		addrs = append(addrs, addr)

		return false
	}))

	assert.Equal(t, []types.Address{addr1, addr2}, addrs)
}

func testStoreRoundTrip(t *testing.T, m PlaceholderStorage) {
	t.Helper()

	s, closeFn := m(t)
	defer closeFn()

	store := state.NewStore()
	store.Deploy(addr1, []byte{0x00})
	store.SetNonce(addr1, 1)
	store.SetStorage(addr1, hash1, hash2)
	store.SetBalance(addr2, big.NewInt(7))

	require.NoError(t, s.SaveStore(store))

	loaded := state.NewStore()
	require.NoError(t, s.LoadStore(loaded))

	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, []byte{0x00}, loaded.GetCode(addr1))
	assert.Equal(t, store.GetCodeHash(addr1), loaded.GetCodeHash(addr1))
	assert.Equal(t, uint64(1), loaded.GetNonce(addr1))
	assert.Equal(t, hash2, loaded.GetStorage(addr1, hash1))
	assert.Equal(t, uint64(7), loaded.GetBalance(addr2).Uint64())
	assert.Equal(t, store.GetCodeHash(addr2), loaded.GetCodeHash(addr2))
}

func TestFactory(t *testing.T) {
	t.Parallel()

	s, err := Factory(Memory, nil, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	for _, backend := range []Backend{LevelDB, BoltDB} {
		s, err := Factory(backend, map[string]interface{}{"path": t.TempDir()}, nil)
		require.NoError(t, err)
		require.NoError(t, s.Close())

		_, err = Factory(backend, nil, nil)
		assert.Error(t, err)
	}

	_, err = Factory(Memory, map[string]interface{}{"unknown": 1}, nil)
	assert.Error(t, err)

	_, err = Factory("redis", nil, nil)
	assert.ErrorIs(t, err, ErrUnknownBackend)
}

func TestUnmarshalAccountInvalid(t *testing.T) {
	t.Parallel()

	_, err := unmarshalAccount([]byte{0x01})
	assert.Error(t, err)

	// a list with the wrong number of elements
	_, err = unmarshalAccount([]byte{0xc2, 0x01, 0x02})
	assert.Error(t, err)
}
