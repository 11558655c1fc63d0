package types

import (
	"fmt"

	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/helper/keccak"
)

const (
	HashLength    = 32
	AddressLength = 20
)

var (
	// ZeroAddress is the default address
	ZeroAddress = Address{}

	// ZeroHash is the default hash, and the all-zero Word
	ZeroHash = Hash{}
)

// Hash is a 32 byte big-endian value. Besides hashes it is the byte form
// of a 256-bit word (storage keys, storage values, log topics)
type Hash [HashLength]byte

// Address is a 20 byte account identifier
type Address [AddressLength]byte

// rightAlign copies the tail of src into dst so that the last bytes line up
func rightAlign(dst, src []byte) {
	if len(src) > len(dst) {
		src = src[len(src)-len(dst):]
	}

	copy(dst[len(dst)-len(src):], src)
}

// BytesToHash right-aligns b into a Hash, keeping the last 32 bytes when b is longer
func BytesToHash(b []byte) (h Hash) {
	rightAlign(h[:], b)

	return h
}

func (h Hash) Bytes() []byte {
	return h[:]
}

func (h Hash) String() string {
	return hex.EncodeToHex(h[:])
}

// IsZero reports whether every byte of the hash is zero
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// BytesToAddress right-aligns b into an Address, keeping the last 20 bytes when b is longer
func BytesToAddress(b []byte) (a Address) {
	rightAlign(a[:], b)

	return a
}

// EIP55 returns the mixed case checksum encoding of the address: a hex
// letter is upper cased when the matching nibble of keccak(lowercase hex) is 8 or more
func (a Address) EIP55() string {
	digits := []byte(hex.EncodeToString(a[:]))
	sum := keccak.Keccak256(nil, digits)

	for i, c := range digits {
		if c < 'a' {
			continue
		}

		nibble := sum[i>>1]
		if i&1 == 0 {
			nibble >>= 4
		}

		if nibble&0xf >= 8 {
			digits[i] = c - 'a' + 'A'
		}
	}

	return "0x" + string(digits)
}

func (a Address) String() string {
	return a.EIP55()
}

func (a Address) Bytes() []byte {
	return a[:]
}

// StringToHash decodes a 0x-prefixed (or bare) hex string into a Hash
func StringToHash(str string) Hash {
	return BytesToHash(stringToBytes(str))
}

// StringToAddress decodes a 0x-prefixed (or bare) hex string into an Address
func StringToAddress(str string) Address {
	return BytesToAddress(stringToBytes(str))
}

// stringToBytes is lenient, invalid hex decodes to nothing
func stringToBytes(str string) []byte {
	b, _ := hex.DecodeHex(str)

	return b
}

// UnmarshalText parses a hash in hex syntax.
func (h *Hash) UnmarshalText(input []byte) error {
	*h = BytesToHash(stringToBytes(string(input)))

	return nil
}

// UnmarshalText parses an address in hex syntax.
func (a *Address) UnmarshalText(input []byte) error {
	buf := stringToBytes(string(input))
	if len(buf) != AddressLength {
		return fmt.Errorf("incorrect address length %d", len(buf))
	}

	*a = BytesToAddress(buf)

	return nil
}

func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// HexBytes is a byte slice that marshals as 0x-prefixed hex
type HexBytes []byte

func (h HexBytes) String() string {
	return hex.EncodeToHex(h)
}

func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

func (h *HexBytes) UnmarshalText(input []byte) error {
	buf, err := hex.DecodeHex(string(input))
	if err != nil {
		return err
	}

	*h = buf

	return nil
}

// Log is an entry emitted by the LOG0..LOG4 instructions
type Log struct {
	Address Address  `json:"address"`
	Topics  []Hash   `json:"topics"`
	Data    HexBytes `json:"data"`
}

// Copy returns a deep copy of the log
func (l *Log) Copy() *Log {
	c := &Log{
		Address: l.Address,
		Topics:  make([]Hash, len(l.Topics)),
		Data:    make([]byte, len(l.Data)),
	}

	copy(c.Topics, l.Topics)
	copy(c.Data, l.Data)

	return c
}
