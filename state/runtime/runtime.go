package runtime

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/0xPolygon/bssc-evm/types"
)

// TxContext is the block and transaction level part of an execution,
// shared by every frame of one call tree
type TxContext struct {
	Origin        types.Address
	GasPrice      *big.Int
	Coinbase      types.Address
	BlockNumber   uint64
	Timestamp     uint64
	BlockGasLimit uint64
	ChainID       uint64
	Difficulty    types.Hash
	BaseFee       *big.Int

	// GetHash resolves BLOCKHASH lookups, zero hash when nil
	GetHash func(number uint64) types.Hash
}

// ExecutionContext holds the immutable parameters of a single call
type ExecutionContext struct {
	// Address is the executing contract, nil for a deployment
	Address  *types.Address
	Caller   types.Address
	Value    *big.Int
	Input    []byte
	GasLimit uint64

	TxContext
}

// Host is the contract state store the interpreter runs against.
// The interpreter assumes exclusive access to it for the duration of a call.
type Host interface {
	AccountExists(addr types.Address) bool
	GetBalance(addr types.Address) *big.Int
	SetBalance(addr types.Address, balance *big.Int)
	Transfer(from, to types.Address, amount *big.Int) error
	GetNonce(addr types.Address) uint64
	SetNonce(addr types.Address, nonce uint64)
	Deploy(addr types.Address, code []byte)
	GetCode(addr types.Address) []byte
	GetCodeSize(addr types.Address) int
	GetCodeHash(addr types.Address) types.Hash
	GetStorage(addr types.Address, key types.Hash) types.Hash
	SetStorage(addr types.Address, key types.Hash, value types.Hash)

	// Snapshot marks the current state, RevertToSnapshot discards every
	// mutation made after the mark. DiscardSnapshot keeps the current state
	// and forgets the mark; both drop every mark taken after id
	Snapshot() int
	RevertToSnapshot(id int) error
	DiscardSnapshot(id int)
}

// Runtime executes a single call frame against a host
type Runtime interface {
	Run(c *Contract, host Host) *ExecutionResult
	Name() string
}

// CallHook runs nested frames for the CALL and CREATE opcode families.
// Without a hook those opcodes fail with ErrUnsupportedOpcode.
type CallHook interface {
	Call(c *Contract, host Host) *ExecutionResult
	Create(c *Contract, host Host) *ExecutionResult
}

// ExecutionResult includes all output after executing given evm
// message no matter the execution itself is successful or not.
type ExecutionResult struct {
	ReturnValue []byte        // Returned data from the runtime (function result or data supplied with revert opcode)
	GasLeft     uint64        // Total gas left as result of execution
	GasUsed     uint64        // Total gas used as result of execution
	Err         error         // Any error encountered during the execution, listed below
	Logs        []*types.Log  // Logs emitted by the frame and its successful children
	Address     types.Address // Address of the deployed contract for creation frames
}

func (r *ExecutionResult) Succeeded() bool { return r.Err == nil }
func (r *ExecutionResult) Failed() bool    { return r.Err != nil }
func (r *ExecutionResult) Reverted() bool  { return errors.Is(r.Err, ErrExecutionReverted) }

// UpdateGasUsed derives GasUsed from the frame gas limit
func (r *ExecutionResult) UpdateGasUsed(gasLimit uint64) {
	r.GasUsed = gasLimit - r.GasLeft
}

var (
	ErrOutOfGas                 = errors.New("out of gas")
	ErrStackOverflow            = errors.New("stack overflow")
	ErrStackUnderflow           = errors.New("stack underflow")
	ErrInvalidJump              = errors.New("invalid jump destination")
	ErrOpCodeNotFound           = errors.New("opcode not found")
	ErrUnsupportedOpcode        = errors.New("unsupported opcode")
	ErrWriteProtection          = errors.New("write protection")
	ErrReturnDataOutOfBounds    = errors.New("return data out of bounds")
	ErrNotEnoughFunds           = errors.New("not enough funds")
	ErrMaxCodeSizeExceeded      = errors.New("evm: max code size exceeded")
	ErrContractAddressCollision = errors.New("contract address collision")
	ErrDepth                    = errors.New("max call depth exceeded")
	ErrExecutionReverted        = errors.New("execution was reverted")
	ErrCodeStoreOutOfGas        = errors.New("contract creation code storage out of gas")
	ErrExecutionCancelled       = errors.New("execution cancelled")

	// fatal errors, returned before any opcode is dispatched
	ErrNilContext    = errors.New("nil execution context")
	ErrEmptyInitCode = errors.New("empty init code")
)

// StackUnderflowError reports a pop from a stack holding fewer than Required items
type StackUnderflowError struct {
	StackLen int
	Required int
}

func (e *StackUnderflowError) Error() string {
	return fmt.Sprintf("stack underflow (%d <=> %d)", e.StackLen, e.Required)
}

func (e *StackUnderflowError) Unwrap() error { return ErrStackUnderflow }

// StackOverflowError reports a push past the stack limit
type StackOverflowError struct {
	StackLen int
	Limit    int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("stack limit reached %d (%d)", e.StackLen, e.Limit)
}

func (e *StackOverflowError) Unwrap() error { return ErrStackOverflow }

// InvalidOpcodeError reports a byte with no defined instruction
type InvalidOpcodeError struct {
	Op byte
}

func (e *InvalidOpcodeError) Error() string {
	return fmt.Sprintf("invalid opcode: 0x%02x", e.Op)
}

func (e *InvalidOpcodeError) Unwrap() error { return ErrOpCodeNotFound }

type CallType int

const (
	Call CallType = iota
	CallCode
	DelegateCall
	StaticCall
	Create
	Create2
)

func (c CallType) String() string {
	switch c {
	case Call:
		return "CALL"
	case CallCode:
		return "CALLCODE"
	case DelegateCall:
		return "DELEGATECALL"
	case StaticCall:
		return "STATICCALL"
	case Create:
		return "CREATE"
	case Create2:
		return "CREATE2"
	default:
		return fmt.Sprintf("CallType(%d)", int(c))
	}
}

// IsCreate reports whether the frame deploys a contract
func (c CallType) IsCreate() bool {
	return c == Create || c == Create2
}

// Contract is the instance being called
type Contract struct {
	Code        []byte
	Type        CallType
	CodeAddress types.Address
	Address     types.Address
	Origin      types.Address
	Caller      types.Address
	Depth       int
	Value       *big.Int
	Input       []byte
	Gas         uint64
	Static      bool
	Tx          *TxContext
}

func NewContract(
	depth int,
	origin types.Address,
	from types.Address,
	to types.Address,
	value *big.Int,
	gas uint64,
	code []byte,
) *Contract {
	if value == nil {
		value = new(big.Int)
	}

	f := &Contract{
		Caller:      from,
		Origin:      origin,
		CodeAddress: to,
		Address:     to,
		Gas:         gas,
		Value:       value,
		Code:        code,
		Depth:       depth,
	}

	return f
}

func NewContractCreation(
	depth int,
	origin types.Address,
	from types.Address,
	to types.Address,
	value *big.Int,
	gas uint64,
	code []byte,
) *Contract {
	c := NewContract(depth, origin, from, to, value, gas, code)
	c.Type = Create

	return c
}

func NewContractCall(
	depth int,
	origin types.Address,
	from types.Address,
	to types.Address,
	value *big.Int,
	gas uint64,
	code []byte,
	input []byte,
) *Contract {
	c := NewContract(depth, origin, from, to, value, gas, code)
	c.Input = input

	return c
}
