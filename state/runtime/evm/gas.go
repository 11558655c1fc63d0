package evm

import "math/bits"

// Fixed gas costs
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20
	GasJumpDest    uint64 = 1
	GasReturn      uint64 = 0
	GasStop        uint64 = 0
	MemoryGas      uint64 = 3
	QuadCoeffDiv   uint64 = 512
)

// Sha3 gas prices
const (
	// Sha3Gas once per SHA3 operation.
	Sha3Gas uint64 = 30
	// Sha3WordGas once per word of the SHA3 operation's data
	Sha3WordGas uint64 = 6
)

// Exp gas prices
const (
	ExpGas     uint64 = 10
	ExpByteGas uint64 = 50
)

// State access gas prices
const (
	SloadGas       uint64 = 800
	SstoreGas      uint64 = 20000
	BalanceGas     uint64 = 700
	ExtcodeSizeGas uint64 = 700
	ExtcodeCopyGas uint64 = 700
	ExtcodeHashGas uint64 = 700
	BlockhashGas   uint64 = 20
)

const (
	// CallGas once per CALL, CALLCODE, DELEGATECALL and STATICCALL
	CallGas uint64 = 700
	// CallStipend is the free gas given at beginning of call.
	CallStipend uint64 = 2300
	// CallCreateDepth is the maximum depth of call/create stack.
	CallCreateDepth uint64 = 1024
)

const (
	// LogGas per LOG* operation.
	LogGas uint64 = 375
	// LogTopicGas multiplied by the * of the LOG*, per LOG transaction. e.g. LOG0 incurs 0 * c_txLogTopicGas, LOG4 incurs 4 * c_txLogTopicGas.
	LogTopicGas uint64 = 375
	// LogDataGas is the per byte in a LOG* operation's data.
	LogDataGas uint64 = 8
)

const (
	// CreateGas once per CREATE operation & contract-creation transaction.
	CreateGas uint64 = 32000
	// Create2Gas once per CREATE2 operation
	Create2Gas uint64 = 32000
	// CreateDataGas paid for the return data in a contract-creation
	CreateDataGas uint64 = 200
)

const (
	// MaxCodeSize maximum bytecode to permit for a contract
	MaxCodeSize = 24576
	// SelfdestructGas is charged before the unsupported SELFDESTRUCT fails
	SelfdestructGas uint64 = 5000
	// CopyGas multiplied by the number of words copied
	CopyGas uint64 = 3
)

// toWordSize returns the number of 32 byte words needed for size bytes
func toWordSize(size uint64) uint64 {
	if size > maxUint64-31 {
		return maxUint64/32 + 1
	}

	return (size + 31) / 32
}

const maxUint64 = ^uint64(0)

// maxMemorySize is the largest memory a frame may expand to, anything
// past it is out of gas whatever the gas limit
const maxMemorySize = 0x1FFFFFFFE0

// memoryGasCost is the cumulative cost of a memory of the given number of words.
// It saturates at maxUint64 once the quadratic term no longer fits
func memoryGasCost(words uint64) uint64 {
	hi, square := bits.Mul64(words, words)
	if hi != 0 {
		return maxUint64
	}

	return MemoryGas*words + square/QuadCoeffDiv
}
