package evm

import (
	"fmt"
	"strings"
	"sync"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/bssc-evm/helper/common"
	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/state/runtime/tracer"
	"github.com/0xPolygon/bssc-evm/types"
	"github.com/0xPolygon/bssc-evm/word"
)

var statePool = sync.Pool{
	New: func() interface{} {
		return new(state)
	},
}

func acquireState() *state {
	s, _ := statePool.Get().(*state)

	return s
}

func releaseState(s *state) {
	s.reset()
	statePool.Put(s)
}

const stackSize = 1024

var emptyTx = &runtime.TxContext{}

// state is the private working set of one call frame
type state struct {
	ip   int
	code []byte
	tmp  []byte

	host runtime.Host
	msg  *runtime.Contract
	tx   *runtime.TxContext
	evm  *EVM

	// memory
	memory      []byte
	lastGasCost uint64

	// stack
	stack []uint256.Int
	sp    int

	err  error
	stop bool

	gas uint64

	bitmap *bitmap

	returnData []byte
	ret        []byte
	logs       []*types.Log
}

func (c *state) reset() {
	c.sp = 0
	c.ip = 0
	c.gas = 0
	c.lastGasCost = 0
	c.stop = false
	c.err = nil

	c.host = nil
	c.msg = nil
	c.tx = nil
	c.evm = nil
	c.bitmap = nil

	// reset memory
	for i := range c.memory {
		c.memory[i] = 0
	}

	c.tmp = c.tmp[:0]
	c.ret = c.ret[:0]
	c.code = nil
	c.returnData = nil
	c.logs = nil
	c.memory = c.memory[:0]
}

func (c *state) init(e *EVM, contract *runtime.Contract, host runtime.Host) {
	if c.stack == nil {
		c.stack = make([]uint256.Int, stackSize)
	}

	c.evm = e
	c.msg = contract
	c.code = contract.Code
	c.gas = contract.Gas
	c.host = host

	c.tx = contract.Tx
	if c.tx == nil {
		c.tx = emptyTx
	}
}

func (c *state) validJumpdest(dest *uint256.Int) bool {
	if !dest.IsUint64() {
		return false
	}

	return c.bitmap.validJumpdest(dest.Uint64())
}

func (c *state) halt() {
	c.stop = true
}

func (c *state) exit(err error) {
	if err == nil {
		panic("cannot stop with none") //nolint:gocritic
	}

	c.stop = true
	c.err = err
}

func (c *state) push(val *uint256.Int) {
	c.push1().Set(val)
}

// push1 grows the stack by one slot and returns it. The dispatch
// loop checks the stack limit before the instruction runs.
func (c *state) push1() *uint256.Int {
	c.sp++

	return &c.stack[c.sp-1]
}

func (c *state) stackAtLeast(n int) bool {
	return c.sp >= n
}

func (c *state) popHash() types.Hash {
	return word.FromInt(c.pop())
}

func (c *state) popAddr() types.Address {
	b := c.pop().Bytes20()

	return types.Address(b)
}

func (c *state) stackSize() int {
	return c.sp
}

func (c *state) top() *uint256.Int {
	return &c.stack[c.sp-1]
}

func (c *state) pop() *uint256.Int {
	c.sp--

	return &c.stack[c.sp]
}

func (c *state) peekAt(n int) *uint256.Int {
	return &c.stack[c.sp-n]
}

func (c *state) swap(n int) {
	c.stack[c.sp-1], c.stack[c.sp-n-1] = c.stack[c.sp-n-1], c.stack[c.sp-1]
}

func (c *state) consumeGas(gas uint64) bool {
	if c.gas < gas {
		c.exit(runtime.ErrOutOfGas)

		return false
	}

	c.gas -= gas

	return true
}

func (c *state) resetReturnData() {
	c.returnData = nil
}

// Run executes the virtual machine
func (c *state) Run() ([]byte, error) {
	var (
		vmerr    error
		op       OpCode
		ip       int
		gasCopy  uint64
		traced   = c.evm.tracer != nil
		codeSize = len(c.code)
	)

	for !c.stop {
		if c.ip >= codeSize {
			c.halt()

			break
		}

		ip = c.ip
		op = OpCode(c.code[c.ip])
		gasCopy = c.gas

		inst := dispatchTable[op]
		if inst.inst == nil {
			c.exit(&runtime.InvalidOpcodeError{Op: byte(op)})
			c.captureExecution(op, ip, gasCopy)

			break
		}

		// consume the static gas of the instruction
		if !c.consumeGas(inst.gas) {
			c.captureExecution(op, ip, gasCopy)

			break
		}

		// check if the depth of the stack is enough for the instruction
		if c.sp < inst.stack {
			c.exit(&runtime.StackUnderflowError{StackLen: c.sp, Required: inst.stack})
			c.captureExecution(op, ip, gasCopy)

			break
		}

		// check if the instruction would grow the stack past its limit
		if c.sp-inst.stack+inst.push > stackSize {
			c.exit(&runtime.StackOverflowError{StackLen: c.sp, Limit: stackSize})
			c.captureExecution(op, ip, gasCopy)

			break
		}

		if traced {
			c.captureState(op)

			// the tracer may stop the frame
			if c.stop {
				break
			}
		}

		// execute the instruction
		inst.inst(c)

		c.captureExecution(op, ip, gasCopy)

		c.ip++
	}

	if err := c.err; err != nil {
		vmerr = err
	}

	return c.ret, vmerr
}

func (c *state) inStaticCall() bool {
	return c.msg.Static
}

func (c *state) Len() int {
	return len(c.memory)
}

// checkMemory expands the memory to cover [offset, offset+size), charging
// the quadratic expansion cost for the words added since the last charge
func (c *state) checkMemory(offset, size *uint256.Int) bool {
	if size.IsZero() {
		return true
	}

	if !offset.IsUint64() || !size.IsUint64() {
		c.exit(runtime.ErrOutOfGas)

		return false
	}

	o := offset.Uint64()
	s := size.Uint64()

	if o > 0xffffffffe0 || s > 0xffffffffe0 {
		c.exit(runtime.ErrOutOfGas)

		return false
	}

	m := uint64(len(c.memory))
	newSize := o + s

	if newSize > maxMemorySize {
		c.exit(runtime.ErrOutOfGas)

		return false
	}

	if m < newSize {
		w := toWordSize(newSize)
		newCost := memoryGasCost(w)
		cost := newCost - c.lastGasCost
		c.lastGasCost = newCost

		if !c.consumeGas(cost) {
			return false
		}

		// resize the memory
		c.memory = common.ExtendByteSlice(c.memory, int(w*32))
	}

	return true
}

// get2 appends the memory range [offset, offset+length) to dst
func (c *state) get2(dst []byte, offset, length *uint256.Int) ([]byte, bool) {
	if length.IsZero() {
		return dst, true
	}

	if !c.checkMemory(offset, length) {
		return nil, false
	}

	o := offset.Uint64()
	l := length.Uint64()

	dst = append(dst, c.memory[o:o+l]...)

	return dst, true
}

// Show returns the memory as hex, 16 bytes per line
func (c *state) Show() string {
	str := []string{}

	for i := 0; i < len(c.memory); i += 16 {
		j := i + 16
		if j > len(c.memory) {
			j = len(c.memory)
		}

		str = append(str, hex.EncodeToHex(c.memory[i:j]))
	}

	return strings.Join(str, "\n")
}

func (c *state) captureState(op OpCode) {
	c.evm.tracer.CaptureState(
		&tracer.Scope{
			Address: c.msg.Address,
			Op:      byte(op),
			Memory:  c.memory,
			Stack:   c.stack[:c.sp],
		},
		c.host,
		c,
	)
}

func (c *state) captureExecution(op OpCode, ip int, gasCopy uint64) {
	if c.evm.tracer == nil {
		return
	}

	c.evm.tracer.ExecuteState(
		&tracer.Step{
			Address:    c.msg.Address,
			PC:         uint64(ip),
			Op:         op.String(),
			Gas:        gasCopy,
			Cost:       gasCopy - c.gas,
			Depth:      c.msg.Depth,
			ReturnData: c.returnData,
			Err:        c.err,
		},
		c.host,
	)
}

// Halt fails the frame on behalf of a tracer
func (c *state) Halt(reason error) {
	if reason == nil {
		c.exit(runtime.ErrExecutionCancelled)

		return
	}

	c.exit(fmt.Errorf("%w: %w", runtime.ErrExecutionCancelled, reason))
}
