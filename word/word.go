// Package word implements 256-bit word arithmetic over the 32 byte
// big-endian form used for storage keys, storage values and log topics.
// All operations wrap modulo 2^256 and division by zero yields zero.
//
// The interpreter works on uint256 stack items directly and converts
// to words at the storage and log boundary with FromInt. The functions
// here are the same uint256 operations on the word form, the evm tests
// check that every arithmetic instruction agrees with them.
package word

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/bssc-evm/types"
)

var (
	Zero = types.Hash{}
	One  = FromUint64(1)
)

func toInt(w types.Hash) *uint256.Int {
	return new(uint256.Int).SetBytes32(w[:])
}

func fromInt(i *uint256.Int) types.Hash {
	return i.Bytes32()
}

func fromBool(b bool) types.Hash {
	if b {
		return One
	}

	return Zero
}

// FromUint64 returns the word holding n
func FromUint64(n uint64) types.Hash {
	return fromInt(uint256.NewInt(n))
}

// ToInt returns the word as an unsigned uint256 integer
func ToInt(w types.Hash) *uint256.Int {
	return toInt(w)
}

// FromInt returns the word form of i
func FromInt(i *uint256.Int) types.Hash {
	return fromInt(i)
}

// ToBig returns the unsigned big integer value of the word
func ToBig(w types.Hash) *big.Int {
	return new(big.Int).SetBytes(w[:])
}

// FromBig returns the word holding b modulo 2^256. Negative values
// are taken in two's complement, nil is zero.
func FromBig(b *big.Int) types.Hash {
	if b == nil {
		return Zero
	}

	i, _ := uint256.FromBig(b)

	return fromInt(i)
}

func Add(a, b types.Hash) types.Hash {
	return fromInt(new(uint256.Int).Add(toInt(a), toInt(b)))
}

func Sub(a, b types.Hash) types.Hash {
	return fromInt(new(uint256.Int).Sub(toInt(a), toInt(b)))
}

func Mul(a, b types.Hash) types.Hash {
	return fromInt(new(uint256.Int).Mul(toInt(a), toInt(b)))
}

// Div is unsigned integer division, zero when b is zero
func Div(a, b types.Hash) types.Hash {
	return fromInt(new(uint256.Int).Div(toInt(a), toInt(b)))
}

// Mod is the unsigned remainder, zero when b is zero
func Mod(a, b types.Hash) types.Hash {
	return fromInt(new(uint256.Int).Mod(toInt(a), toInt(b)))
}

// SDiv is two's complement signed division, zero when b is zero
func SDiv(a, b types.Hash) types.Hash {
	return fromInt(new(uint256.Int).SDiv(toInt(a), toInt(b)))
}

// SMod is the signed remainder taking the sign of a, zero when b is zero
func SMod(a, b types.Hash) types.Hash {
	return fromInt(new(uint256.Int).SMod(toInt(a), toInt(b)))
}

// AddMod computes (a + b) % m without intermediate overflow
func AddMod(a, b, m types.Hash) types.Hash {
	return fromInt(new(uint256.Int).AddMod(toInt(a), toInt(b), toInt(m)))
}

// MulMod computes (a * b) % m without intermediate overflow
func MulMod(a, b, m types.Hash) types.Hash {
	return fromInt(new(uint256.Int).MulMod(toInt(a), toInt(b), toInt(m)))
}

func Exp(base, exponent types.Hash) types.Hash {
	return fromInt(new(uint256.Int).Exp(toInt(base), toInt(exponent)))
}

func And(a, b types.Hash) types.Hash {
	var r types.Hash
	for i := range r {
		r[i] = a[i] & b[i]
	}

	return r
}

func Or(a, b types.Hash) types.Hash {
	var r types.Hash
	for i := range r {
		r[i] = a[i] | b[i]
	}

	return r
}

func Xor(a, b types.Hash) types.Hash {
	var r types.Hash
	for i := range r {
		r[i] = a[i] ^ b[i]
	}

	return r
}

func Not(a types.Hash) types.Hash {
	var r types.Hash
	for i := range r {
		r[i] = ^a[i]
	}

	return r
}

// Shl shifts value left by shift bits, zero for shifts of 256 or more
func Shl(shift, value types.Hash) types.Hash {
	s := toInt(shift)
	if !s.LtUint64(256) {
		return Zero
	}

	return fromInt(new(uint256.Int).Lsh(toInt(value), uint(s.Uint64())))
}

// Shr logically shifts value right by shift bits, zero for shifts of 256 or more
func Shr(shift, value types.Hash) types.Hash {
	s := toInt(shift)
	if !s.LtUint64(256) {
		return Zero
	}

	return fromInt(new(uint256.Int).Rsh(toInt(value), uint(s.Uint64())))
}

// Lt is unsigned less-than, returned as the word 0 or 1
func Lt(a, b types.Hash) types.Hash {
	return fromBool(toInt(a).Lt(toInt(b)))
}

// Gt is unsigned greater-than, returned as the word 0 or 1
func Gt(a, b types.Hash) types.Hash {
	return fromBool(toInt(a).Gt(toInt(b)))
}

func Eq(a, b types.Hash) types.Hash {
	return fromBool(a == b)
}

func IsZero(a types.Hash) types.Hash {
	return fromBool(a == Zero)
}
