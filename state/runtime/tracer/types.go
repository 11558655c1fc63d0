package tracer

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/bssc-evm/types"
)

// Host gives a tracer read access to contract storage
type Host interface {
	GetStorage(addr types.Address, key types.Hash) types.Hash
}

// Halter stops the frame a tracer observes. The frame fails with
// runtime.ErrExecutionCancelled wrapping reason, so its changes are rolled back
type Halter interface {
	Halt(reason error)
}

// Frame is a call frame entered by the interpreter
type Frame struct {
	Depth int // begins from 1
	From  types.Address
	To    types.Address
	Type  int
	Gas   uint64
	Value *big.Int
	Input []byte
}

// Scope is the frame state right before an instruction is dispatched.
// Memory and Stack alias the interpreter and are only valid during the callback.
type Scope struct {
	Address types.Address
	Op      byte
	Memory  []byte
	Stack   []uint256.Int // bottom first
}

// Step is an instruction that ran, or that failed before it could run
type Step struct {
	Address    types.Address
	PC         uint64
	Op         string
	Gas        uint64 // available before the instruction
	Cost       uint64
	Depth      int
	ReturnData []byte
	Err        error
}

type Tracer interface {
	Clear()
	GetResult() (interface{}, error)

	TxStart(gasLimit uint64)
	TxEnd(gasLeft uint64)

	CallStart(frame Frame)
	CallEnd(depth int, output []byte, err error)

	// CaptureState is called before every dispatched instruction
	CaptureState(scope *Scope, host Host, halter Halter)

	// ExecuteState is called once per step, after CaptureState when the
	// instruction got dispatched
	ExecuteState(step *Step, host Host)
}
