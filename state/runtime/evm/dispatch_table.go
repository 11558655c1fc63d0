package evm

import (
	"fmt"

	"github.com/0xPolygon/bssc-evm/state/runtime"
)

type handler struct {
	inst  instruction
	stack int // items required on the stack
	push  int // items on the stack after the required ones are consumed
	gas   uint64
}

var dispatchTable [256]handler

func register(op OpCode, h handler) {
	if dispatchTable[op].inst != nil {
		panic(fmt.Errorf("instruction %s already registered", op)) //nolint:gocritic
	}

	dispatchTable[op] = h
}

func registerRange(from, to OpCode, factory func(n int) instruction, gas uint64) {
	c := 1
	for i := from; i <= to; i++ {
		register(i, handler{inst: factory(c), stack: 0, push: 1, gas: gas})
		c++
	}
}

// Resolve maps a raw byte to its registered opcode
func Resolve(b byte) (OpCode, error) {
	op := OpCode(b)
	if dispatchTable[op].inst == nil {
		return op, &runtime.InvalidOpcodeError{Op: b}
	}

	return op, nil
}

// StaticGas returns the gas charged before op is dispatched
func StaticGas(op OpCode) uint64 {
	return dispatchTable[op&0xff].gas
}

func init() {
	// unsigned arithmetic operations
	register(STOP, handler{opStop, 0, 0, GasStop})
	register(ADD, handler{opAdd, 2, 1, GasFastestStep})
	register(SUB, handler{opSub, 2, 1, GasFastestStep})
	register(MUL, handler{opMul, 2, 1, GasFastStep})
	register(DIV, handler{opDiv, 2, 1, GasFastStep})
	register(SDIV, handler{opSDiv, 2, 1, GasFastStep})
	register(MOD, handler{opMod, 2, 1, GasFastStep})
	register(SMOD, handler{opSMod, 2, 1, GasFastStep})
	register(EXP, handler{opExp, 2, 1, ExpGas})

	registerRange(PUSH1, PUSH32, opPush, GasFastestStep)

	for i := 0; i < 16; i++ {
		n := i + 1
		register(OpCode(DUP1+i), handler{opDup(n), n, n + 1, GasFastestStep})
		register(OpCode(SWAP1+i), handler{opSwap(n), n + 1, n + 1, GasFastestStep})
	}

	register(ADDMOD, handler{opAddMod, 3, 1, GasMidStep})
	register(MULMOD, handler{opMulMod, 3, 1, GasMidStep})

	register(AND, handler{opAnd, 2, 1, GasFastestStep})
	register(OR, handler{opOr, 2, 1, GasFastestStep})
	register(XOR, handler{opXor, 2, 1, GasFastestStep})
	register(BYTE, handler{opByte, 2, 1, GasFastestStep})

	register(NOT, handler{opNot, 1, 1, GasFastestStep})
	register(ISZERO, handler{opIsZero, 1, 1, GasFastestStep})

	register(EQ, handler{opEq, 2, 1, GasFastestStep})
	register(LT, handler{opLt, 2, 1, GasFastestStep})
	register(GT, handler{opGt, 2, 1, GasFastestStep})
	register(SLT, handler{opSlt, 2, 1, GasFastestStep})
	register(SGT, handler{opSgt, 2, 1, GasFastestStep})

	register(SIGNEXTEND, handler{opSignExtension, 2, 1, GasMidStep})

	register(SHL, handler{opShl, 2, 1, GasFastestStep})
	register(SHR, handler{opShr, 2, 1, GasFastestStep})
	register(SAR, handler{opSar, 2, 1, GasFastestStep})

	register(CREATE, handler{opCreate(CREATE), 3, 1, CreateGas})
	register(CREATE2, handler{opCreate(CREATE2), 4, 1, Create2Gas})

	register(CALL, handler{opCall(CALL), 7, 1, CallGas})
	register(CALLCODE, handler{opCall(CALLCODE), 7, 1, CallGas})
	register(DELEGATECALL, handler{opCall(DELEGATECALL), 6, 1, CallGas})
	register(STATICCALL, handler{opCall(STATICCALL), 6, 1, CallGas})

	register(REVERT, handler{opHalt(REVERT), 2, 0, GasReturn})
	register(RETURN, handler{opHalt(RETURN), 2, 0, GasReturn})

	// memory
	register(MLOAD, handler{opMload, 1, 1, GasFastestStep})
	register(MSTORE, handler{opMStore, 2, 0, GasFastestStep})
	register(MSTORE8, handler{opMStore8, 2, 0, GasFastestStep})

	// store
	register(SLOAD, handler{opSload, 1, 1, SloadGas})
	register(SSTORE, handler{opSStore, 2, 0, SstoreGas})

	// sha3
	register(SHA3, handler{opSha3, 2, 1, Sha3Gas})

	register(POP, handler{opPop, 1, 0, GasQuickStep})

	// context operations
	register(ADDRESS, handler{opAddress, 0, 1, GasQuickStep})
	register(BALANCE, handler{opBalance, 1, 1, BalanceGas})
	register(SELFBALANCE, handler{opSelfBalance, 0, 1, GasQuickStep})
	register(ORIGIN, handler{opOrigin, 0, 1, GasQuickStep})
	register(CALLER, handler{opCaller, 0, 1, GasQuickStep})
	register(CALLVALUE, handler{opCallValue, 0, 1, GasQuickStep})
	register(CALLDATALOAD, handler{opCallDataLoad, 1, 1, GasFastestStep})
	register(CALLDATASIZE, handler{opCallDataSize, 0, 1, GasQuickStep})
	register(CODESIZE, handler{opCodeSize, 0, 1, GasQuickStep})
	register(EXTCODESIZE, handler{opExtCodeSize, 1, 1, ExtcodeSizeGas})
	register(GASPRICE, handler{opGasPrice, 0, 1, GasQuickStep})
	register(RETURNDATASIZE, handler{opReturnDataSize, 0, 1, GasQuickStep})
	register(CHAINID, handler{opChainID, 0, 1, GasQuickStep})
	register(PC, handler{opPC, 0, 1, GasQuickStep})
	register(MSIZE, handler{opMSize, 0, 1, GasQuickStep})
	register(GAS, handler{opGas, 0, 1, GasQuickStep})
	register(EXTCODEHASH, handler{opExtCodeHash, 1, 1, ExtcodeHashGas})

	register(EXTCODECOPY, handler{opExtCodeCopy, 4, 0, ExtcodeCopyGas})
	register(CALLDATACOPY, handler{opCallDataCopy, 3, 0, GasFastestStep})
	register(RETURNDATACOPY, handler{opReturnDataCopy, 3, 0, GasFastestStep})
	register(CODECOPY, handler{opCodeCopy, 3, 0, GasFastestStep})

	// block information
	register(BLOCKHASH, handler{opBlockHash, 1, 1, BlockhashGas})
	register(COINBASE, handler{opCoinbase, 0, 1, GasQuickStep})
	register(TIMESTAMP, handler{opTimestamp, 0, 1, GasQuickStep})
	register(NUMBER, handler{opNumber, 0, 1, GasQuickStep})
	register(DIFFICULTY, handler{opDifficulty, 0, 1, GasQuickStep})
	register(GASLIMIT, handler{opGasLimit, 0, 1, GasQuickStep})
	register(BASEFEE, handler{opBaseFee, 0, 1, GasQuickStep})

	register(SELFDESTRUCT, handler{opSelfDestruct, 1, 0, SelfdestructGas})

	// jumps
	register(JUMP, handler{opJump, 1, 0, GasMidStep})
	register(JUMPI, handler{opJumpi, 2, 0, GasSlowStep})
	register(JUMPDEST, handler{opJumpDest, 0, 0, GasJumpDest})

	// logs
	for i := 0; i < 5; i++ {
		register(OpCode(LOG0+i), handler{opLog(i), i + 2, 0, LogGas + uint64(i)*LogTopicGas})
	}

	register(INVALID, handler{opInvalid, 0, 0, 0})
}
