package evm

import (
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xPolygon/bssc-evm/crypto"
	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/state/runtime/tracer"
	"github.com/0xPolygon/bssc-evm/types"
)

func newMockContract(value *big.Int, gas uint64, code []byte) *runtime.Contract {
	return runtime.NewContract(
		1,
		types.ZeroAddress,
		types.ZeroAddress,
		types.ZeroAddress,
		value,
		gas,
		code,
	)
}

var _ runtime.Host = &mockHost{}

type mockAccount struct {
	balance *big.Int
	nonce   uint64
	code    []byte
	storage map[types.Hash]types.Hash
}

func (a *mockAccount) copy() *mockAccount {
	c := &mockAccount{
		balance: new(big.Int).Set(a.balance),
		nonce:   a.nonce,
		code:    a.code,
		storage: make(map[types.Hash]types.Hash, len(a.storage)),
	}

	for k, v := range a.storage {
		c.storage[k] = v
	}

	return c
}

// mockHost is a map backed runtime.Host that snapshots by copying every account
type mockHost struct {
	accounts  map[types.Address]*mockAccount
	snapshots []map[types.Address]*mockAccount
}

func newMockHost() *mockHost {
	return &mockHost{
		accounts: make(map[types.Address]*mockAccount),
	}
}

func (m *mockHost) account(addr types.Address) *mockAccount {
	a, ok := m.accounts[addr]
	if !ok {
		a = &mockAccount{
			balance: new(big.Int),
			storage: make(map[types.Hash]types.Hash),
		}
		m.accounts[addr] = a
	}

	return a
}

func (m *mockHost) AccountExists(addr types.Address) bool {
	_, ok := m.accounts[addr]

	return ok
}

func (m *mockHost) GetBalance(addr types.Address) *big.Int {
	if a, ok := m.accounts[addr]; ok {
		return a.balance
	}

	return new(big.Int)
}

func (m *mockHost) SetBalance(addr types.Address, balance *big.Int) {
	m.account(addr).balance = new(big.Int).Set(balance)
}

func (m *mockHost) Transfer(from, to types.Address, amount *big.Int) error {
	if m.GetBalance(from).Cmp(amount) < 0 {
		return runtime.ErrNotEnoughFunds
	}

	m.account(from).balance.Sub(m.account(from).balance, amount)
	m.account(to).balance.Add(m.account(to).balance, amount)

	return nil
}

func (m *mockHost) GetNonce(addr types.Address) uint64 {
	if a, ok := m.accounts[addr]; ok {
		return a.nonce
	}

	return 0
}

func (m *mockHost) SetNonce(addr types.Address, nonce uint64) {
	m.account(addr).nonce = nonce
}

func (m *mockHost) Deploy(addr types.Address, code []byte) {
	m.account(addr).code = code
}

func (m *mockHost) GetCode(addr types.Address) []byte {
	if a, ok := m.accounts[addr]; ok {
		return a.code
	}

	return nil
}

func (m *mockHost) GetCodeSize(addr types.Address) int {
	return len(m.GetCode(addr))
}

func (m *mockHost) GetCodeHash(addr types.Address) types.Hash {
	return crypto.Keccak256Hash(m.GetCode(addr))
}

func (m *mockHost) GetStorage(addr types.Address, key types.Hash) types.Hash {
	if a, ok := m.accounts[addr]; ok {
		return a.storage[key]
	}

	return types.ZeroHash
}

func (m *mockHost) SetStorage(addr types.Address, key types.Hash, value types.Hash) {
	m.account(addr).storage[key] = value
}

func (m *mockHost) Snapshot() int {
	snap := make(map[types.Address]*mockAccount, len(m.accounts))
	for addr, a := range m.accounts {
		snap[addr] = a.copy()
	}

	m.snapshots = append(m.snapshots, snap)

	return len(m.snapshots) - 1
}

func (m *mockHost) DiscardSnapshot(id int) {
	if id >= 0 && id < len(m.snapshots) {
		m.snapshots = m.snapshots[:id]
	}
}

func (m *mockHost) RevertToSnapshot(id int) error {
	if id < 0 || id >= len(m.snapshots) {
		return errors.New("snapshot not found")
	}

	m.accounts = m.snapshots[id]
	m.snapshots = m.snapshots[:id]

	return nil
}

func mustCode(str string) []byte {
	return hex.MustDecodeHex(strings.ReplaceAll(str, " ", ""))
}

func TestRun(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		value    *big.Int
		gas      uint64
		code     []byte
		expected *runtime.ExecutionResult
	}{
		{
			name:  "should succeed because of no codes",
			value: big.NewInt(0),
			gas:   5000,
			code:  []byte{},
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasLeft:     5000,
			},
		},
		{
			name:  "should succeed and return result",
			value: big.NewInt(0),
			gas:   5000,
			code: []byte{
				PUSH1, 0x01, PUSH1, 0x02, ADD,
				PUSH1, 0x00, MSTORE8,
				PUSH1, 0x01, PUSH1, 0x00, RETURN,
			},
			expected: &runtime.ExecutionResult{
				ReturnValue: []uint8{0x03},
				GasLeft:     4976,
				GasUsed:     24,
			},
		},
		{
			name:  "should fail and consume all gas by error",
			value: big.NewInt(0),
			gas:   5000,
			// ADD will be failed by stack underflow
			code: []byte{ADD},
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasLeft:     0,
				GasUsed:     5000,
				Err:         &runtime.StackUnderflowError{StackLen: 0, Required: 2},
			},
		},
		{
			name:  "should fail by REVERT and return remaining gas at that time",
			value: big.NewInt(0),
			gas:   5000,
			// Stack size and offset for return value first
			code: []byte{PUSH1, 0x00, PUSH1, 0x00, REVERT},
			expected: &runtime.ExecutionResult{
				ReturnValue: nil,
				GasUsed:     6,
				// gas consumed for 2 push1 ops
				GasLeft: 4994,
				Err:     runtime.ErrExecutionReverted,
			},
		},
		{
			name:  "should run out of gas on the last instruction",
			value: big.NewInt(0),
			gas:   8,
			code:  []byte{PUSH1, 0x05, PUSH1, 0x03, ADD},
			expected: &runtime.ExecutionResult{
				GasLeft: 0,
				GasUsed: 8,
				Err:     runtime.ErrOutOfGas,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			evm := NewEVM()
			contract := newMockContract(tt.value, tt.gas, tt.code)
			res := evm.Run(contract, newMockHost())
			assert.Equal(t, tt.expected, res)
		})
	}
}

func execute(t *testing.T, code []byte, gas uint64, host runtime.Host) *runtime.ExecutionResult {
	t.Helper()

	addr := types.StringToAddress("0x1001")

	res, err := Execute(code, &runtime.ExecutionContext{
		Address:  &addr,
		Caller:   types.StringToAddress("0x2002"),
		Value:    big.NewInt(0),
		GasLimit: gas,
	}, host)
	require.NoError(t, err)

	return res
}

func TestExecute_AddCost(t *testing.T) {
	t.Parallel()

	// PUSH1 5, PUSH1 3, ADD
	res := execute(t, mustCode("6005 6003 01"), 100, newMockHost())

	require.NoError(t, res.Err)
	assert.Equal(t, uint64(9), res.GasUsed)
	assert.Equal(t, uint64(91), res.GasLeft)
}

func TestExecute_ReturnWord(t *testing.T) {
	t.Parallel()

	// MSTORE(0, 42), RETURN(0, 32)
	res := execute(t, mustCode("602a 6000 52 6020 6000 f3"), 100000, newMockHost())

	require.NoError(t, res.Err)

	expected := make([]byte, 32)
	expected[31] = 0x2a

	assert.Equal(t, expected, res.ReturnValue)
	assert.Equal(t, uint64(18), res.GasUsed)
}

func TestExecute_ConditionalJump(t *testing.T) {
	t.Parallel()

	// JUMPI to the JUMPDEST at offset 10, the fallthrough jumps to 0 and fails
	code := mustCode("6001 600a 57 6000 56 fe fe 5b 602a 6000 52 6020 6000 f3")
	require.Equal(t, byte(JUMPDEST), code[10])

	res := execute(t, code, 100000, newMockHost())
	require.NoError(t, res.Err)

	expected := make([]byte, 32)
	expected[31] = 0x2a
	assert.Equal(t, expected, res.ReturnValue)

	// a zero condition falls through to the invalid jump
	code[1] = 0x00
	res = execute(t, code, 100000, newMockHost())
	assert.ErrorIs(t, res.Err, runtime.ErrInvalidJump)
	assert.Equal(t, uint64(0), res.GasLeft)
}

func TestExecute_InvalidJumps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		code string
		err  error
	}{
		{"into push data", "6004 56 605b", runtime.ErrInvalidJump},
		{"to a non jumpdest", "6000 56", runtime.ErrInvalidJump},
		{"past the code", "60ff 56", runtime.ErrInvalidJump},
		{"to a jumpdest", "6004 56 fe 5b 00", nil},
	}

	for _, c := range cases {
		c := c

		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			res := execute(t, mustCode(c.code), 1000, newMockHost())
			if c.err == nil {
				assert.NoError(t, res.Err)
			} else {
				assert.ErrorIs(t, res.Err, c.err)
			}
		})
	}
}

func TestExecute_StackLimit(t *testing.T) {
	t.Parallel()

	code := mustCode(strings.Repeat("6000", stackSize))

	res := execute(t, code, 1000000, newMockHost())
	require.NoError(t, res.Err)

	code = append(code, PUSH1, 0x00)

	res = execute(t, code, 1000000, newMockHost())

	var overflow *runtime.StackOverflowError

	require.ErrorAs(t, res.Err, &overflow)
	assert.Equal(t, stackSize, overflow.StackLen)
	assert.ErrorIs(t, res.Err, runtime.ErrStackOverflow)
	assert.Equal(t, uint64(0), res.GasLeft)
}

func TestExecute_StackUnderflow(t *testing.T) {
	t.Parallel()

	res := execute(t, []byte{POP}, 1000, newMockHost())

	assert.ErrorIs(t, res.Err, runtime.ErrStackUnderflow)
	assert.Equal(t, &runtime.StackUnderflowError{StackLen: 0, Required: 1}, res.Err)
}

func TestExecute_Storage(t *testing.T) {
	t.Parallel()

	host := newMockHost()

	// SSTORE(1, 42), MSTORE(0, SLOAD(1)), RETURN(0, 32)
	res := execute(t, mustCode("602a 6001 55 6001 54 6000 52 6020 6000 f3"), 100000, host)
	require.NoError(t, res.Err)

	assert.Equal(t, byte(0x2a), res.ReturnValue[31])
	assert.Equal(
		t,
		types.BytesToHash([]byte{0x2a}),
		host.GetStorage(types.StringToAddress("0x1001"), types.BytesToHash([]byte{0x01})),
	)
}

func TestExecute_RevertRollsBack(t *testing.T) {
	t.Parallel()

	host := newMockHost()

	// SSTORE(1, 42), REVERT(0, 0)
	res := execute(t, mustCode("602a 6001 55 6000 6000 fd"), 100000, host)

	assert.True(t, res.Reverted())
	assert.Equal(t, uint64(20012), res.GasUsed)
	assert.Equal(t, uint64(100000-20012), res.GasLeft)
	assert.True(t, host.GetStorage(types.StringToAddress("0x1001"), types.BytesToHash([]byte{0x01})).IsZero())
}

func TestExecute_Logs(t *testing.T) {
	t.Parallel()

	// MSTORE(0, 42), LOG1(0, 32, topic 1)
	code := mustCode("602a 6000 52 6001 6020 6000 a1")

	res := execute(t, code, 100000, newMockHost())
	require.NoError(t, res.Err)
	require.Len(t, res.Logs, 1)

	log := res.Logs[0]
	assert.Equal(t, types.StringToAddress("0x1001"), log.Address)
	assert.Equal(t, []types.Hash{types.BytesToHash([]byte{0x01})}, log.Topics)
	assert.Len(t, log.Data, 32)
	assert.Equal(t, byte(0x2a), log.Data[31])

	// mstore 3+3+6, log1 750 + 8*32
	assert.Equal(t, uint64(3+3+6+3+3+3+750+256), res.GasUsed)

	// the logs are dropped when the frame reverts
	res = execute(t, append(code, mustCode("6000 6000 fd")...), 100000, newMockHost())
	assert.True(t, res.Reverted())
	assert.Empty(t, res.Logs)
}

func TestExecute_Invalid(t *testing.T) {
	t.Parallel()

	res := execute(t, []byte{INVALID}, 1000, newMockHost())

	assert.Equal(t, &runtime.InvalidOpcodeError{Op: 0xfe}, res.Err)
	assert.Equal(t, uint64(1000), res.GasUsed)

	res = execute(t, []byte{0x0c}, 1000, newMockHost())

	assert.ErrorIs(t, res.Err, runtime.ErrOpCodeNotFound)
	assert.Equal(t, &runtime.InvalidOpcodeError{Op: 0x0c}, res.Err)
}

func TestExecute_UnsupportedWithoutHook(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"call":         strings.Repeat("6000", 7) + "f1",
		"staticcall":   strings.Repeat("6000", 6) + "fa",
		"delegatecall": strings.Repeat("6000", 6) + "f4",
		"create":       strings.Repeat("6000", 3) + "f0",
		"create2":      strings.Repeat("6000", 4) + "f5",
		"selfdestruct": "6000 ff",
	}

	for name, code := range cases {
		code := code

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			res := execute(t, mustCode(code), 100000, newMockHost())
			assert.ErrorIs(t, res.Err, runtime.ErrUnsupportedOpcode)
		})
	}
}

func TestExecute_FatalErrors(t *testing.T) {
	t.Parallel()

	_, err := Execute([]byte{STOP}, nil, newMockHost())
	assert.ErrorIs(t, err, runtime.ErrNilContext)

	_, err = Execute(nil, &runtime.ExecutionContext{GasLimit: 100}, newMockHost())
	assert.ErrorIs(t, err, runtime.ErrEmptyInitCode)
}

func TestExecute_InitCode(t *testing.T) {
	t.Parallel()

	res, err := Execute(mustCode("6001 6000 f3"), &runtime.ExecutionContext{GasLimit: 100}, newMockHost())
	require.NoError(t, err)
	require.NoError(t, res.Err)

	// init code runs at the zero address
	assert.Equal(t, types.ZeroAddress, res.Address)
}

func TestStaticWriteProtection(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"sstore":       "6001 6000 55",
		"log0":         "6000 6000 a0",
		"selfdestruct": "6000 ff",
		"create":       "6000 6000 6000 f0",
		"call value":   "6000 6000 6000 6000 6001 6000 6000 f1",
	}

	for name, code := range cases {
		code := code

		t.Run(name, func(t *testing.T) {
			t.Parallel()

			contract := newMockContract(big.NewInt(0), 100000, mustCode(code))
			contract.Static = true

			res := NewEVM(WithCallHook(&mockHook{})).Run(contract, newMockHost())
			assert.ErrorIs(t, res.Err, runtime.ErrWriteProtection)
		})
	}
}

type mockHook struct {
	calls   []*runtime.Contract
	creates []*runtime.Contract
	result  *runtime.ExecutionResult
}

func (m *mockHook) Call(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	m.calls = append(m.calls, c)

	if m.result != nil {
		return m.result
	}

	return &runtime.ExecutionResult{GasLeft: c.Gas}
}

func (m *mockHook) Create(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	m.creates = append(m.creates, c)

	if m.result != nil {
		return m.result
	}

	return &runtime.ExecutionResult{GasLeft: c.Gas, Address: c.Address}
}

func TestCallHook_Call(t *testing.T) {
	t.Parallel()

	hook := &mockHook{
		result: &runtime.ExecutionResult{ReturnValue: []byte{0xaa, 0xbb}},
	}

	// CALL(gas 0xffff, addr 0x10, value 0, in 0:0, out 0:1)
	code := mustCode("6001 6000 6000 6000 6000 6010 61ffff f1")

	s, closeFn := getState()
	defer closeFn()

	s.evm = NewEVM(WithCallHook(hook))
	s.msg = newMockContract(big.NewInt(0), 100000, code)
	s.msg.Address = types.StringToAddress("0x1001")
	s.code = code
	s.gas = 100000
	s.bitmap = newBitmap(code)

	_, err := s.Run()
	require.NoError(t, err)

	require.Len(t, hook.calls, 1)

	called := hook.calls[0]
	assert.Equal(t, runtime.Call, called.Type)
	assert.Equal(t, 2, called.Depth)
	assert.Equal(t, types.StringToAddress("0x10"), called.Address)
	assert.Equal(t, types.StringToAddress("0x1001"), called.Caller)
	assert.Equal(t, uint64(0xffff), called.Gas)

	// success flag on the stack, the output window is one byte wide
	assert.Equal(t, uint64(1), s.top().Uint64())
	assert.Equal(t, byte(0xaa), s.memory[0])
	assert.Equal(t, byte(0x00), s.memory[1])
	assert.Equal(t, []byte{0xaa, 0xbb}, s.returnData)
}

func TestCallHook_CallGasCap(t *testing.T) {
	t.Parallel()

	// requested gas far above what is available is capped at all but 1/64
	assert.Equal(t, uint64(6400-100), callGas(6400, uint256.NewInt(1<<40)))
	assert.Equal(t, uint64(10), callGas(6400, uint256.NewInt(10)))
}

func TestCallHook_Create(t *testing.T) {
	t.Parallel()

	hook := &mockHook{}
	host := newMockHost()

	addr := types.StringToAddress("0x1001")
	host.SetNonce(addr, 3)

	// CREATE(value 0, offset 0, size 0)
	code := mustCode("6000 6000 6000 f0")

	contract := newMockContract(big.NewInt(0), 100000, code)
	contract.Address = addr

	res := NewEVM(WithCallHook(hook)).Run(contract, host)
	require.NoError(t, res.Err)

	require.Len(t, hook.creates, 1)
	assert.Equal(t, crypto.CreateAddress(addr, 3), hook.creates[0].Address)
	assert.Equal(t, runtime.Create, hook.creates[0].Type)
}

// mockTracer records copies of the scopes and steps it is handed
type mockTracer struct {
	scopes []tracer.Scope
	steps  []tracer.Step
	calls  []string
}

var _ tracer.Tracer = &mockTracer{}

func (m *mockTracer) Clear()                          {}
func (m *mockTracer) GetResult() (interface{}, error) { return nil, nil }
func (m *mockTracer) TxStart(uint64)                  {}
func (m *mockTracer) TxEnd(uint64)                    {}
func (m *mockTracer) CallStart(tracer.Frame)          {}
func (m *mockTracer) CallEnd(int, []byte, error)      {}

func (m *mockTracer) CaptureState(scope *tracer.Scope, _ tracer.Host, _ tracer.Halter) {
	c := *scope
	c.Memory = append([]byte{}, scope.Memory...)
	c.Stack = append([]uint256.Int{}, scope.Stack...)

	m.scopes = append(m.scopes, c)
	m.calls = append(m.calls, "CaptureState")
}

func (m *mockTracer) ExecuteState(step *tracer.Step, _ tracer.Host) {
	m.steps = append(m.steps, *step)
	m.calls = append(m.calls, "ExecuteState")
}

func runTraced(t *testing.T, address types.Address, gas uint64, code []byte) *mockTracer {
	t.Helper()

	contract := newMockContract(big.NewInt(0), gas, code)
	contract.Address = address

	tr := &mockTracer{}

	state := acquireState()
	defer releaseState(state)

	state.init(NewEVM(WithTracer(tr)), contract, newMockHost())
	state.bitmap = newBitmap(contract.Code)

	_, _ = state.Run()

	return tr
}

func TestRunWithTracer(t *testing.T) {
	t.Parallel()

	address := types.StringToAddress("1")

	// PUSH1 1, PUSH1 2, ADD
	tr := runTraced(t, address, 5000, []byte{PUSH1, 0x1, PUSH1, 0x2, ADD})

	require.Equal(t, []string{
		"CaptureState", "ExecuteState",
		"CaptureState", "ExecuteState",
		"CaptureState", "ExecuteState",
	}, tr.calls)

	// the scope is taken before the instruction runs
	assert.Equal(t, address, tr.scopes[2].Address)
	assert.Equal(t, byte(ADD), tr.scopes[2].Op)
	assert.Equal(t, []uint256.Int{*uint256.NewInt(1), *uint256.NewInt(2)}, tr.scopes[2].Stack)
	assert.Empty(t, tr.scopes[0].Stack)

	assert.Equal(t, tracer.Step{
		Address: address,
		PC:      4,
		Op:      "ADD",
		Gas:     4994,
		Cost:    3,
		Depth:   1,
	}, tr.steps[2])
}

func TestRunWithTracer_FailedStep(t *testing.T) {
	t.Parallel()

	address := types.StringToAddress("1")

	// the underflow is detected before dispatch, so only the step is reported
	tr := runTraced(t, address, 5000, []byte{POP})

	require.Equal(t, []string{"ExecuteState"}, tr.calls)

	step := tr.steps[0]
	assert.Equal(t, "POP", step.Op)
	assert.Equal(t, uint64(5000), step.Gas)
	assert.Equal(t, uint64(2), step.Cost)
	assert.Equal(t, &runtime.StackUnderflowError{StackLen: 0, Required: 1}, step.Err)
}

func TestAnalysisCache(t *testing.T) {
	t.Parallel()

	code := mustCode("6004 56 fe 5b 00")

	e := NewEVM()
	first := e.codeBitmap(code)
	assert.Same(t, first, e.codeBitmap(code))

	e = NewEVM(WithAnalysisCache(0))
	assert.NotSame(t, e.codeBitmap(code), e.codeBitmap(code))
}
