package crypto

import (
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/bssc-evm/helper/keccak"
	"github.com/0xPolygon/bssc-evm/types"
)

// Keccak256 calculates the Keccak256 of the concatenation of its inputs
func Keccak256(v ...[]byte) []byte {
	return keccak.Keccak256(make([]byte, 0, keccak.Size), v...)
}

// Keccak256Hash calculates the Keccak256 of its inputs as a types.Hash
func Keccak256Hash(v ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(v...))
}

var addressPool fastrlp.ArenaPool

// CreateAddress derives the address of a contract deployed by addr
// with the given nonce: keccak(rlp([addr, nonce]))[12:]
func CreateAddress(addr types.Address, nonce uint64) types.Address {
	a := addressPool.Get()
	defer addressPool.Put(a)

	v := a.NewArray()
	v.Set(a.NewBytes(addr.Bytes()))
	v.Set(a.NewUint(nonce))

	return types.BytesToAddress(keccak.Keccak256Rlp(nil, v)[12:])
}

var create2Prefix = []byte{0xff}

// CreateAddress2 derives a salted contract address that does not depend on the nonce:
// keccak(0xff ++ addr ++ salt ++ keccak(initCode))[12:]
func CreateAddress2(addr types.Address, salt [32]byte, initCode []byte) types.Address {
	return types.BytesToAddress(Keccak256(create2Prefix, addr.Bytes(), salt[:], Keccak256(initCode))[12:])
}
