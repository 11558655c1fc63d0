// Package hex encodes bytes and big integers the way the commands print them
package hex

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"
)

const prefix = "0x"

// EncodeToHex returns the 0x prefixed hex form of b
func EncodeToHex(b []byte) string {
	return prefix + hex.EncodeToString(b)
}

// EncodeToString returns the hex form of b without a prefix
func EncodeToString(b []byte) string {
	return hex.EncodeToString(b)
}

// DecodeHex parses hex with an optional 0x prefix. Surrounding whitespace
// is ignored and an odd number of digits gets a leading zero
func DecodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}

	if len(s)&1 == 1 {
		s = "0" + s
	}

	return hex.DecodeString(s)
}

// MustDecodeHex is DecodeHex for literals, it panics on invalid input
func MustDecodeHex(s string) []byte {
	b, err := DecodeHex(s)
	if err != nil {
		panic(fmt.Errorf("could not decode hex %q: %w", s, err))
	}

	return b
}

// EncodeBig returns the 0x prefixed hex form of the magnitude of n
func EncodeBig(n *big.Int) string {
	return prefix + new(big.Int).Abs(n).Text(16)
}

// ParseBig parses a non negative decimal or 0x prefixed hex number.
// The empty string is zero
func ParseBig(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return new(big.Int), nil
	}

	base, digits := 10, s
	if strings.HasPrefix(s, prefix) {
		base, digits = 16, s[len(prefix):]
	}

	n, ok := new(big.Int).SetString(digits, base)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid number %q", s)
	}

	return n, nil
}
