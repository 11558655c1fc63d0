package keccak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/umbracle/fastrlp"

	"github.com/0xPolygon/bssc-evm/helper/hex"
)

func TestKeccak256(t *testing.T) {
	t.Parallel()

	cases := []struct {
		input    []byte
		expected string
	}{
		{
			nil,
			"0xc5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470",
		},
		{
			[]byte("abc"),
			"0x4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45",
		},
	}

	for _, c := range cases {
		assert.Equal(t, c.expected, hex.EncodeToHex(Keccak256(nil, c.input)))
	}
}

func TestKeccak256_Reuse(t *testing.T) {
	t.Parallel()

	first := Keccak256(nil, []byte("abc"))

	// a released hasher must not leak state into the next digest
	for i := 0; i < 4; i++ {
		assert.Equal(t, first, Keccak256(nil, []byte("abc")))
	}

	// the inputs are concatenated
	assert.Equal(t, first, Keccak256(nil, []byte("a"), []byte("bc")))

	// the digest is appended to dst
	prefixed := Keccak256([]byte{0x01}, []byte("abc"))
	assert.Len(t, prefixed, Size+1)
	assert.Equal(t, first, prefixed[1:])
}

func TestKeccak256Rlp(t *testing.T) {
	t.Parallel()

	a := &fastrlp.Arena{}
	v := a.NewArray()
	v.Set(a.NewUint(1))

	expected := Keccak256(nil, v.MarshalTo(nil))
	assert.Equal(t, expected, Keccak256Rlp(nil, v))
}
