// Package keccak computes the legacy keccak-256 digest used for
// addresses, code hashes and the SHA3 opcode
package keccak

import (
	"hash"
	"sync"

	"github.com/umbracle/fastrlp"
	"golang.org/x/crypto/sha3"
)

// Size is the length of a digest in bytes
const Size = 32

type hasher struct {
	hash.Hash

	// rlp is the scratch buffer of Keccak256Rlp
	rlp []byte
}

var hashers = sync.Pool{
	New: func() interface{} {
		return &hasher{Hash: sha3.NewLegacyKeccak256()}
	},
}

func acquire() *hasher {
	h, _ := hashers.Get().(*hasher)
	if h == nil {
		h = &hasher{Hash: sha3.NewLegacyKeccak256()}
	}

	return h
}

func release(h *hasher) {
	h.Reset()
	h.rlp = h.rlp[:0]
	hashers.Put(h)
}

// Keccak256 appends the digest of the concatenated src slices to dst
func Keccak256(dst []byte, src ...[]byte) []byte {
	h := acquire()
	defer release(h)

	for _, b := range src {
		_, _ = h.Write(b)
	}

	return h.Sum(dst)
}

// Keccak256Rlp appends the digest of the rlp encoding of v to dst
func Keccak256Rlp(dst []byte, v *fastrlp.Value) []byte {
	h := acquire()
	defer release(h)

	h.rlp = v.MarshalTo(h.rlp[:0])
	_, _ = h.Write(h.rlp)

	return h.Sum(dst)
}
