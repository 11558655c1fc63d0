package word

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/0xPolygon/bssc-evm/types"
)

var (
	two256 = new(big.Int).Lsh(big.NewInt(1), 256)
	maxW   = Not(Zero)
)

func drawWord(t *rapid.T, label string) types.Hash {
	return types.BytesToHash(rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(t, label))
}

func TestWord_Examples(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		result   types.Hash
		expected types.Hash
	}{
		{"add", Add(FromUint64(2), FromUint64(3)), FromUint64(5)},
		{"add wraps", Add(maxW, One), Zero},
		{"sub", Sub(FromUint64(10), FromUint64(3)), FromUint64(7)},
		{"sub wraps", Sub(Zero, One), maxW},
		{"mul", Mul(FromUint64(6), FromUint64(7)), FromUint64(42)},
		{"div", Div(FromUint64(42), FromUint64(5)), FromUint64(8)},
		{"div by zero", Div(FromUint64(42), Zero), Zero},
		{"mod", Mod(FromUint64(42), FromUint64(5)), FromUint64(2)},
		{"mod by zero", Mod(FromUint64(42), Zero), Zero},
		{"sdiv", SDiv(Sub(Zero, FromUint64(10)), FromUint64(3)), Sub(Zero, FromUint64(3))},
		{"smod", SMod(Sub(Zero, FromUint64(10)), FromUint64(3)), Sub(Zero, One)},
		{"addmod", AddMod(maxW, FromUint64(2), FromUint64(7)), FromUint64(3)},
		{"mulmod", MulMod(FromUint64(10), FromUint64(10), FromUint64(8)), FromUint64(4)},
		{"exp", Exp(FromUint64(2), FromUint64(10)), FromUint64(1024)},
		{"shl", Shl(FromUint64(4), One), FromUint64(16)},
		{"shl overflow", Shl(FromUint64(256), One), Zero},
		{"shr", Shr(FromUint64(4), FromUint64(16)), One},
		{"and", And(FromUint64(0xf0), FromUint64(0x3c)), FromUint64(0x30)},
		{"or", Or(FromUint64(0xf0), FromUint64(0x0f)), FromUint64(0xff)},
		{"xor", Xor(FromUint64(0xff), FromUint64(0x0f)), FromUint64(0xf0)},
		{"not", Not(Zero), maxW},
		{"lt", Lt(One, FromUint64(2)), One},
		{"lt unsigned", Lt(maxW, One), Zero},
		{"gt", Gt(FromUint64(2), One), One},
		{"eq", Eq(One, One), One},
		{"iszero", IsZero(Zero), One},
		{"iszero false", IsZero(One), Zero},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, c.expected, c.result)
		})
	}
}

func TestWord_Properties(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := drawWord(t, "a")
		b := drawWord(t, "b")

		if Add(a, b) != Add(b, a) {
			t.Fatalf("add is not commutative")
		}

		if Mul(a, b) != Mul(b, a) {
			t.Fatalf("mul is not commutative")
		}

		if Sub(Add(a, b), b) != a {
			t.Fatalf("sub does not undo add")
		}

		if Div(a, Zero) != Zero || Mod(a, Zero) != Zero {
			t.Fatalf("division by zero must yield zero")
		}

		if Not(Not(a)) != a {
			t.Fatalf("not is not an involution")
		}

		if Xor(a, a) != Zero {
			t.Fatalf("xor with itself must be zero")
		}
	})
}

func TestWord_MatchesBigInt(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(t *rapid.T) {
		a := drawWord(t, "a")
		b := drawWord(t, "b")

		ba, bb := ToBig(a), ToBig(b)

		sum := new(big.Int).Add(ba, bb)
		if FromBig(sum.Mod(sum, two256)) != Add(a, b) {
			t.Fatalf("add mismatch")
		}

		prod := new(big.Int).Mul(ba, bb)
		if FromBig(prod.Mod(prod, two256)) != Mul(a, b) {
			t.Fatalf("mul mismatch")
		}

		if bb.Sign() != 0 {
			if FromBig(new(big.Int).Div(ba, bb)) != Div(a, b) {
				t.Fatalf("div mismatch")
			}

			if FromBig(new(big.Int).Mod(ba, bb)) != Mod(a, b) {
				t.Fatalf("mod mismatch")
			}
		}

		if (ba.Cmp(bb) < 0) != (Lt(a, b) == One) {
			t.Fatalf("lt mismatch")
		}
	})
}

func TestWord_BigRoundTrip(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1024", ToBig(FromUint64(1024)).String())
	assert.Equal(t, maxW, FromBig(big.NewInt(-1)))
	assert.Equal(t, Zero, FromBig(nil))
	assert.Equal(t, uint64(7), ToInt(FromInt(ToInt(FromUint64(7)))).Uint64())
}
