package evm

import (
	"math/big"

	"github.com/holiman/uint256"

	"github.com/0xPolygon/bssc-evm/crypto"
	"github.com/0xPolygon/bssc-evm/helper/common"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/types"
	"github.com/0xPolygon/bssc-evm/word"
)

type instruction func(c *state)

var (
	zero     = uint256.NewInt(0)
	one      = uint256.NewInt(1)
	wordSize = uint256.NewInt(32)
)

// binaryOp pops x, and replaces the new top y with f(x, y)
func binaryOp(f func(z, x, y *uint256.Int) *uint256.Int) instruction {
	return func(c *state) {
		x := c.pop()
		y := c.top()

		f(y, x, y)
	}
}

// modOp pops x and y, and replaces the modulus m with f(x, y, m)
func modOp(f func(z, x, y, m *uint256.Int) *uint256.Int) instruction {
	return func(c *state) {
		x := c.pop()
		y := c.pop()
		m := c.top()

		f(m, x, y, m)
	}
}

// compareOp pops x, and replaces the new top y with 1 if f(x, y) holds and 0 otherwise
func compareOp(f func(x, y *uint256.Int) bool) instruction {
	return func(c *state) {
		x := c.pop()
		y := c.top()

		setBool(y, f(x, y))
	}
}

// shiftOp pops the shift, the value on top is shifted in place
func shiftOp(f func(z, x *uint256.Int, n uint) *uint256.Int) instruction {
	return func(c *state) {
		shift := c.pop()
		value := c.top()

		if !shift.LtUint64(256) {
			value.Clear()

			return
		}

		f(value, value, uint(shift.Uint64()))
	}
}

// uint256 defines division and modulus by zero as zero
var (
	opAdd  = binaryOp((*uint256.Int).Add)
	opMul  = binaryOp((*uint256.Int).Mul)
	opSub  = binaryOp((*uint256.Int).Sub)
	opDiv  = binaryOp((*uint256.Int).Div)
	opSDiv = binaryOp((*uint256.Int).SDiv)
	opMod  = binaryOp((*uint256.Int).Mod)
	opSMod = binaryOp((*uint256.Int).SMod)
	opAnd  = binaryOp((*uint256.Int).And)
	opOr   = binaryOp((*uint256.Int).Or)
	opXor  = binaryOp((*uint256.Int).Xor)

	opAddMod = modOp((*uint256.Int).AddMod)
	opMulMod = modOp((*uint256.Int).MulMod)

	opEq  = compareOp((*uint256.Int).Eq)
	opLt  = compareOp((*uint256.Int).Lt)
	opGt  = compareOp((*uint256.Int).Gt)
	opSlt = compareOp((*uint256.Int).Slt)
	opSgt = compareOp((*uint256.Int).Sgt)

	opShl = shiftOp((*uint256.Int).Lsh)
	opShr = shiftOp((*uint256.Int).Rsh)
)

func setBool(v *uint256.Int, b bool) {
	if b {
		v.SetOne()
	} else {
		v.Clear()
	}
}

func opExp(c *state) {
	base := c.pop()
	exp := c.top()

	// every significant byte of the exponent is charged
	if !c.consumeGas(uint64((exp.BitLen()+7)/8) * ExpByteGas) {
		return
	}

	exp.Exp(base, exp)
}

func opByte(c *state) {
	i := c.pop()
	v := c.top()

	v.Byte(i)
}

func opNot(c *state) {
	v := c.top()
	v.Not(v)
}

func opIsZero(c *state) {
	v := c.top()
	setBool(v, v.IsZero())
}

func opSignExtension(c *state) {
	size := c.pop()
	v := c.top()

	v.ExtendSign(v, size)
}

func opSar(c *state) {
	shift := c.pop()
	value := c.top()

	if shift.LtUint64(256) {
		value.SRsh(value, uint(shift.Uint64()))

		return
	}

	// shifting everything out leaves only the sign
	if value.Sign() < 0 {
		value.SetAllOne()
	} else {
		value.Clear()
	}
}

// memory operations

func opMload(c *state) {
	offset := c.top()

	if !c.checkMemory(offset, wordSize) {
		return
	}

	o := offset.Uint64()
	offset.SetBytes32(c.memory[o : o+32])
}

func opMStore(c *state) {
	offset := c.pop()
	val := c.pop()

	if !c.checkMemory(offset, wordSize) {
		return
	}

	o := offset.Uint64()
	val.WriteToSlice(c.memory[o : o+32])
}

func opMStore8(c *state) {
	offset := c.pop()
	val := c.pop()

	if !c.checkMemory(offset, one) {
		return
	}

	c.memory[offset.Uint64()] = byte(val.Uint64() & 0xff)
}

// --- storage ---

func opSload(c *state) {
	loc := c.top()

	val := c.host.GetStorage(c.msg.Address, word.FromInt(loc))
	loc.SetBytes32(val[:])
}

func opSStore(c *state) {
	if c.inStaticCall() {
		c.exit(runtime.ErrWriteProtection)

		return
	}

	key := c.popHash()
	val := c.popHash()

	c.host.SetStorage(c.msg.Address, key, val)
}

func opSha3(c *state) {
	offset := c.pop()
	length := c.top()

	var ok bool
	if c.tmp, ok = c.get2(c.tmp[:0], offset, length); !ok {
		return
	}

	if !c.consumeGas(toWordSize(length.Uint64()) * Sha3WordGas) {
		return
	}

	length.SetBytes32(crypto.Keccak256(c.tmp))
}

func opPop(c *state) {
	c.pop()
}

// context operations

func opAddress(c *state) {
	c.push1().SetBytes20(c.msg.Address.Bytes())
}

func opBalance(c *state) {
	addr := c.popAddr()

	setBig(c.push1(), c.host.GetBalance(addr))
}

func opSelfBalance(c *state) {
	setBig(c.push1(), c.host.GetBalance(c.msg.Address))
}

func opOrigin(c *state) {
	c.push1().SetBytes20(c.msg.Origin.Bytes())
}

func opCaller(c *state) {
	c.push1().SetBytes20(c.msg.Caller.Bytes())
}

func opCallValue(c *state) {
	setBig(c.push1(), c.msg.Value)
}

// setBig stores b in v, zero for a nil value
func setBig(v *uint256.Int, b *big.Int) {
	if b == nil {
		v.Clear()

		return
	}

	v.SetFromBig(b)
}

func opCallDataLoad(c *state) {
	offset := c.top()

	var buf [32]byte

	c.setBytes(buf[:], c.msg.Input, 32, offset)
	offset.SetBytes32(buf[:])
}

func opCallDataSize(c *state) {
	c.push1().SetUint64(uint64(len(c.msg.Input)))
}

func opCodeSize(c *state) {
	c.push1().SetUint64(uint64(len(c.code)))
}

func opExtCodeSize(c *state) {
	addr := c.popAddr()

	c.push1().SetUint64(uint64(c.host.GetCodeSize(addr)))
}

func opGasPrice(c *state) {
	setBig(c.push1(), c.tx.GasPrice)
}

func opReturnDataSize(c *state) {
	c.push1().SetUint64(uint64(len(c.returnData)))
}

func opExtCodeHash(c *state) {
	addr := c.popAddr()

	v := c.push1()
	if !c.host.AccountExists(addr) {
		v.Clear()
	} else {
		h := c.host.GetCodeHash(addr)
		v.SetBytes32(h[:])
	}
}

func opPC(c *state) {
	c.push1().SetUint64(uint64(c.ip))
}

func opMSize(c *state) {
	c.push1().SetUint64(uint64(len(c.memory)))
}

func opGas(c *state) {
	c.push1().SetUint64(c.gas)
}

func opChainID(c *state) {
	c.push1().SetUint64(c.tx.ChainID)
}

// setBytes fills dst[:size] with input[dataOffset:], bytes past the end of input read as zero
func (c *state) setBytes(dst, input []byte, size uint64, dataOffset *uint256.Int) {
	dst = dst[:size]

	n := 0
	if dataOffset.IsUint64() && dataOffset.Uint64() < uint64(len(input)) {
		n = copy(dst, input[dataOffset.Uint64():])
	}

	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// copyToMemory implements the shared body of the *COPY instructions
func (c *state) copyToMemory(src []byte, memOffset, dataOffset, length *uint256.Int) {
	if !c.checkMemory(memOffset, length) {
		return
	}

	size := length.Uint64()
	if !c.consumeGas(toWordSize(size) * CopyGas) {
		return
	}

	if size != 0 {
		c.setBytes(c.memory[memOffset.Uint64():], src, size, dataOffset)
	}
}

func opExtCodeCopy(c *state) {
	address := c.popAddr()
	memOffset := c.pop()
	codeOffset := c.pop()
	length := c.pop()

	c.copyToMemory(c.host.GetCode(address), memOffset, codeOffset, length)
}

func opCallDataCopy(c *state) {
	memOffset := c.pop()
	dataOffset := c.pop()
	length := c.pop()

	c.copyToMemory(c.msg.Input, memOffset, dataOffset, length)
}

func opCodeCopy(c *state) {
	memOffset := c.pop()
	dataOffset := c.pop()
	length := c.pop()

	c.copyToMemory(c.code, memOffset, dataOffset, length)
}

func opReturnDataCopy(c *state) {
	memOffset := c.pop()
	dataOffset := c.pop()
	length := c.pop()

	end, overflow := new(uint256.Int).AddOverflow(dataOffset, length)
	if overflow || !end.IsUint64() || uint64(len(c.returnData)) < end.Uint64() {
		c.exit(runtime.ErrReturnDataOutOfBounds)

		return
	}

	if !c.checkMemory(memOffset, length) {
		return
	}

	size := length.Uint64()
	if !c.consumeGas(toWordSize(size) * CopyGas) {
		return
	}

	if size != 0 {
		copy(c.memory[memOffset.Uint64():], c.returnData[dataOffset.Uint64():end.Uint64()])
	}
}

// block information

func opBlockHash(c *state) {
	num := c.top()

	if !num.IsUint64() || c.tx.GetHash == nil {
		num.Clear()

		return
	}

	n := num.Uint64()
	lastBlock := c.tx.BlockNumber

	// only the 256 most recent complete blocks are visible
	if n >= lastBlock || lastBlock-n > 256 {
		num.Clear()

		return
	}

	h := c.tx.GetHash(n)
	num.SetBytes32(h[:])
}

func opCoinbase(c *state) {
	c.push1().SetBytes20(c.tx.Coinbase.Bytes())
}

func opTimestamp(c *state) {
	c.push1().SetUint64(c.tx.Timestamp)
}

func opNumber(c *state) {
	c.push1().SetUint64(c.tx.BlockNumber)
}

func opDifficulty(c *state) {
	c.push1().SetBytes32(c.tx.Difficulty.Bytes())
}

func opGasLimit(c *state) {
	c.push1().SetUint64(c.tx.BlockGasLimit)
}

func opBaseFee(c *state) {
	setBig(c.push1(), c.tx.BaseFee)
}

// opSelfDestruct fails: balances move only through explicit transfers
func opSelfDestruct(c *state) {
	if c.inStaticCall() {
		c.exit(runtime.ErrWriteProtection)

		return
	}

	c.exit(runtime.ErrUnsupportedOpcode)
}

// jump moves to dest, the dispatcher increments ip after the instruction
func (c *state) jump(dest *uint256.Int) {
	if !c.validJumpdest(dest) {
		c.exit(runtime.ErrInvalidJump)

		return
	}

	c.ip = int(dest.Uint64()) - 1
}

func opJump(c *state) {
	c.jump(c.pop())
}

func opJumpi(c *state) {
	dest := c.pop()

	if cond := c.pop(); !cond.IsZero() {
		c.jump(dest)
	}
}

func opJumpDest(c *state) {
}

func opInvalid(c *state) {
	c.exit(&runtime.InvalidOpcodeError{Op: INVALID})
}

// opPush reads n immediate bytes, missing ones at the end of the code read as zero
func opPush(n int) instruction {
	return func(c *state) {
		var buf [32]byte

		start := c.ip + 1
		if start < len(c.code) {
			copy(buf[:n], c.code[start:])
		}

		c.push1().SetBytes(buf[:n])
		c.ip += n
	}
}

func opDup(n int) instruction {
	return func(c *state) {
		if !c.stackAtLeast(n) {
			c.exit(&runtime.StackUnderflowError{StackLen: c.sp, Required: n})

			return
		}

		c.push(c.peekAt(n))
	}
}

func opSwap(n int) instruction {
	return func(c *state) {
		if !c.stackAtLeast(n + 1) {
			c.exit(&runtime.StackUnderflowError{StackLen: c.sp, Required: n + 1})

			return
		}

		c.swap(n)
	}
}

func opLog(size int) instruction {
	return func(c *state) {
		if c.inStaticCall() {
			c.exit(runtime.ErrWriteProtection)

			return
		}

		mStart := c.pop()
		mSize := c.pop()

		topics := make([]types.Hash, size)
		for i := 0; i < size; i++ {
			topics[i] = c.popHash()
		}

		log := &types.Log{
			Address: c.msg.Address,
			Topics:  topics,
		}

		data, ok := c.get2(nil, mStart, mSize)
		if !ok {
			return
		}

		if !c.consumeGas(mSize.Uint64() * LogDataGas) {
			return
		}

		log.Data = data
		c.logs = append(c.logs, log)
	}
}

func opStop(c *state) {
	c.halt()
}

func opCreate(op OpCode) instruction {
	return func(c *state) {
		if c.inStaticCall() {
			c.exit(runtime.ErrWriteProtection)

			return
		}

		if c.evm.hook == nil {
			c.exit(runtime.ErrUnsupportedOpcode)

			return
		}

		// the return data of the previous call is always cleared
		c.resetReturnData()

		contract := c.buildCreateContract(op)
		if contract == nil {
			return
		}

		result := c.evm.hook.Create(contract, c.host)

		v := c.push1()
		if result.Failed() {
			v.Clear()
		} else {
			v.SetBytes20(contract.Address.Bytes())
			c.logs = append(c.logs, result.Logs...)
		}

		c.gas += result.GasLeft

		if result.Reverted() {
			c.returnData = result.ReturnValue
		}
	}
}

var callTypes = map[OpCode]runtime.CallType{
	CALL:         runtime.Call,
	CALLCODE:     runtime.CallCode,
	DELEGATECALL: runtime.DelegateCall,
	STATICCALL:   runtime.StaticCall,
}

func opCall(op OpCode) instruction {
	return func(c *state) {
		c.resetReturnData()

		if op == CALL && c.inStaticCall() {
			if val := c.peekAt(3); !val.IsZero() {
				c.exit(runtime.ErrWriteProtection)

				return
			}
		}

		if c.evm.hook == nil {
			c.exit(runtime.ErrUnsupportedOpcode)

			return
		}

		contract, offset, size := c.buildCallContract(op)
		if contract == nil {
			return
		}

		contract.Type = callTypes[op]

		result := c.evm.hook.Call(contract, c.host)

		v := c.push1()
		if result.Succeeded() {
			v.SetOne()
			c.logs = append(c.logs, result.Logs...)
		} else {
			v.Clear()
		}

		if result.Succeeded() || result.Reverted() {
			if n := common.Min(size, uint64(len(result.ReturnValue))); n > 0 {
				copy(c.memory[offset:offset+n], result.ReturnValue[:n])
			}
		}

		c.gas += result.GasLeft
		c.returnData = result.ReturnValue
	}
}

// calcMemSize returns the memory size needed to access [off, off+l)
func calcMemSize(off, l *uint256.Int) (*uint256.Int, bool) {
	if l.IsZero() {
		return new(uint256.Int), true
	}

	size, overflow := new(uint256.Int).AddOverflow(off, l)

	return size, !overflow
}

func (c *state) buildCallContract(op OpCode) (*runtime.Contract, uint64, uint64) {
	// Pop input arguments
	initialGas := new(uint256.Int).Set(c.pop())
	addr := c.popAddr()

	var value *big.Int
	if op == CALL || op == CALLCODE {
		value = c.pop().ToBig()
	}

	// input range
	inOffset := c.pop()
	inSize := c.pop()

	// output range
	retOffset := c.pop()
	retSize := c.pop()

	// memory has to cover both the input and the output window
	in, okIn := calcMemSize(inOffset, inSize)
	ret, okRet := calcMemSize(retOffset, retSize)

	if !okIn || !okRet {
		c.exit(runtime.ErrOutOfGas)

		return nil, 0, 0
	}

	needed := in
	if in.Lt(ret) {
		needed = ret
	}

	if !c.checkMemory(zero, needed) {
		return nil, 0, 0
	}

	var args []byte
	if !inSize.IsZero() {
		args = make([]byte, inSize.Uint64())
		copy(args, c.memory[inOffset.Uint64():])
	}

	gas := callGas(c.gas, initialGas)

	if !c.consumeGas(gas) {
		return nil, 0, 0
	}

	transfersValue := value != nil && value.Sign() != 0
	if transfersValue {
		gas += CallStipend
	}

	parent := c.msg

	contract := runtime.NewContractCall(
		parent.Depth+1,
		parent.Origin,
		parent.Address,
		addr,
		value,
		gas,
		c.host.GetCode(addr),
		args,
	)
	contract.Tx = parent.Tx

	if op == STATICCALL || parent.Static {
		contract.Static = true
	}

	if op == CALLCODE || op == DELEGATECALL {
		contract.Address = parent.Address

		if op == DELEGATECALL {
			contract.Value = parent.Value
			contract.Caller = parent.Caller
		}
	}

	// a zero sized output window never touches memory
	var retOff uint64
	if !retSize.IsZero() {
		retOff = retOffset.Uint64()
	}

	return contract, retOff, retSize.Uint64()
}

// callGas forwards at most all but one 64th of the available gas
func callGas(availableGas uint64, requested *uint256.Int) uint64 {
	gas := availableGas - availableGas/64

	if !requested.IsUint64() || gas < requested.Uint64() {
		return gas
	}

	return requested.Uint64()
}

func (c *state) buildCreateContract(op OpCode) *runtime.Contract {
	// Pop input arguments
	value := c.pop().ToBig()
	offset := c.pop()
	length := c.pop()

	var salt types.Hash
	if op == CREATE2 {
		salt = c.popHash()
	}

	// Both CREATE and CREATE2 use memory
	input, ok := c.get2(nil, offset, length)
	if !ok {
		return nil
	}

	if op == CREATE2 {
		// Consume sha3 gas cost
		if !c.consumeGas(toWordSize(length.Uint64()) * Sha3WordGas) {
			return nil
		}
	}

	// Calculate and consume gas for the call
	gas := c.gas
	gas -= gas / 64

	if !c.consumeGas(gas) {
		return nil
	}

	parent := c.msg

	// Calculate address
	var address types.Address
	if op == CREATE {
		address = crypto.CreateAddress(parent.Address, c.host.GetNonce(parent.Address))
	} else {
		address = crypto.CreateAddress2(parent.Address, salt, input)
	}

	contract := runtime.NewContractCreation(parent.Depth+1, parent.Origin, parent.Address, address, value, gas, input)
	contract.Tx = parent.Tx

	if op == CREATE2 {
		contract.Type = runtime.Create2
	}

	return contract
}

func opHalt(op OpCode) instruction {
	return func(c *state) {
		offset := c.pop()
		size := c.pop()

		var ok bool
		c.ret, ok = c.get2(c.ret[:0], offset, size)

		if !ok {
			return
		}

		if op == REVERT {
			c.exit(runtime.ErrExecutionReverted)
		} else {
			c.halt()
		}
	}
}
