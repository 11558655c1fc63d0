package storage

import (
	"fmt"
	"math/big"

	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/bssc-evm/crypto"
	"github.com/0xPolygon/bssc-evm/state"
	"github.com/0xPolygon/bssc-evm/types"
)

var accountArenaPool fastrlp.ArenaPool

// marshalAccount encodes the account as [nonce, balance, code, [[key, value]...]]
func marshalAccount(account *state.Account) []byte {
	a := accountArenaPool.Get()
	defer accountArenaPool.Put(a)

	vv := a.NewArray()
	vv.Set(a.NewUint(account.Nonce))
	vv.Set(a.NewBigInt(account.Balance))
	vv.Set(a.NewCopyBytes(account.Code))

	if account.StorageLen() == 0 {
		vv.Set(a.NewNullArray())
	} else {
		slots := a.NewArray()

		account.WalkStorage(func(key, value types.Hash) bool {
			slot := a.NewArray()
			slot.Set(a.NewCopyBytes(key.Bytes()))
			slot.Set(a.NewCopyBytes(value.Bytes()))
			slots.Set(slot)

			return false
		})

		vv.Set(slots)
	}

	return vv.MarshalTo(nil)
}

func unmarshalAccount(input []byte) (*state.Account, error) {
	p := fastrlp.DefaultParserPool.Get()
	defer fastrlp.DefaultParserPool.Put(p)

	v, err := p.Parse(input)
	if err != nil {
		return nil, err
	}

	elems, err := v.GetElems()
	if err != nil {
		return nil, err
	}

	if len(elems) != 4 {
		return nil, fmt.Errorf("incorrect number of elements to decode account, expected 4 but found %d", len(elems))
	}

	account := state.NewAccount()

	if account.Nonce, err = elems[0].GetUint64(); err != nil {
		return nil, err
	}

	account.Balance = new(big.Int)
	if err = elems[1].GetBigInt(account.Balance); err != nil {
		return nil, err
	}

	if account.Code, err = elems[2].GetBytes(nil); err != nil {
		return nil, err
	}

	account.CodeHash = crypto.Keccak256Hash(account.Code)

	slots, err := elems[3].GetElems()
	if err != nil {
		return nil, err
	}

	for _, slot := range slots {
		kv, err := slot.GetElems()
		if err != nil {
			return nil, err
		}

		if len(kv) != 2 {
			return nil, fmt.Errorf("storage slot expected 2 elements but found %d", len(kv))
		}

		key, err := kv[0].GetBytes(nil, types.HashLength)
		if err != nil {
			return nil, err
		}

		value, err := kv[1].GetBytes(nil, types.HashLength)
		if err != nil {
			return nil, err
		}

		account.SetStorage(types.BytesToHash(key), types.BytesToHash(value))
	}

	return account, nil
}
