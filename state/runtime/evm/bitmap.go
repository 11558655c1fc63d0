package evm

import "github.com/0xPolygon/bssc-evm/helper/common"

const bitmapSize = 8

// bitmap marks the offsets of a program that hold a real JUMPDEST,
// leaving push immediates unmarked
type bitmap struct {
	buf  []byte
	size uint64
}

func newBitmap(code []byte) *bitmap {
	b := &bitmap{}
	b.setCode(code)

	return b
}

func (b *bitmap) isSet(i uint64) bool {
	return b.buf[i/bitmapSize]&(1<<(i%bitmapSize)) != 0
}

func (b *bitmap) set(i uint64) {
	b.buf[i/bitmapSize] |= 1 << (i % bitmapSize)
}

// validJumpdest reports whether dest is an in-bounds JUMPDEST offset
func (b *bitmap) validJumpdest(dest uint64) bool {
	if dest >= b.size {
		return false
	}

	return b.isSet(dest)
}

func (b *bitmap) setCode(code []byte) {
	codeSize := len(code)
	b.size = uint64(codeSize)
	b.buf = common.ExtendByteSlice(b.buf[:0], codeSize/bitmapSize+1)

	for i := 0; i < codeSize; {
		c := code[i]

		if isPushOp(c) {
			// skip the opcode and its immediate bytes
			i += int(c) - PUSH1 + 2
		} else {
			if c == JUMPDEST {
				b.set(uint64(i))
			}
			i++
		}
	}
}

func isPushOp(i byte) bool {
	// From PUSH1 (0x60) to PUSH32(0x7F)
	return i>>5 == 3
}
