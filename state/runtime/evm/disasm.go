package evm

import (
	"fmt"

	"github.com/0xPolygon/bssc-evm/helper/hex"
)

// Instruction is one decoded instruction of a program
type Instruction struct {
	PC uint64
	Op OpCode

	// Immediate holds the bytes of a push, shorter than the push width when
	// the program ends inside it
	Immediate []byte
}

func (i Instruction) String() string {
	name := i.Op.String()
	if name == "" {
		name = fmt.Sprintf("INVALID(0x%02x)", byte(i.Op))
	}

	if !i.Op.IsPush() {
		return name
	}

	return fmt.Sprintf("%s %s", name, hex.EncodeToHex(i.Immediate))
}

// Disassemble decodes code into its instructions, walking it the way
// the jumpdest analysis does
func Disassemble(code []byte) []Instruction {
	res := []Instruction{}

	for i := 0; i < len(code); {
		op := OpCode(code[i])
		ins := Instruction{PC: uint64(i), Op: op}

		if n := op.PushBytes(); n > 0 {
			end := i + 1 + n
			if end > len(code) {
				end = len(code)
			}

			ins.Immediate = append([]byte{}, code[i+1:end]...)
			i += n + 1
		} else {
			i++
		}

		res = append(res, ins)
	}

	return res
}
