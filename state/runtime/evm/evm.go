package evm

import (
	"errors"
	"fmt"

	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru"

	"github.com/0xPolygon/bssc-evm/crypto"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/state/runtime/tracer"
	"github.com/0xPolygon/bssc-evm/types"
)

// defaultAnalysisCacheSize is the number of jumpdest bitmaps kept per EVM
const defaultAnalysisCacheSize = 256

// EVM is the ethereum virtual machine
type EVM struct {
	logger hclog.Logger
	tracer tracer.Tracer
	hook   runtime.CallHook

	// jumpdest bitmaps keyed by code hash
	analysis *lru.Cache
}

type Option func(*EVM)

// WithLogger sets the logger
func WithLogger(logger hclog.Logger) Option {
	return func(e *EVM) {
		e.logger = logger.Named("evm")
	}
}

// WithTracer attaches a step tracer to every frame
func WithTracer(t tracer.Tracer) Option {
	return func(e *EVM) {
		e.tracer = t
	}
}

// WithCallHook sets the extension that runs CALL and CREATE sub frames
func WithCallHook(hook runtime.CallHook) Option {
	return func(e *EVM) {
		e.hook = hook
	}
}

// WithAnalysisCache sets the size of the jumpdest analysis cache, zero disables it
func WithAnalysisCache(size int) Option {
	return func(e *EVM) {
		e.analysis = nil

		if size > 0 {
			e.analysis, _ = lru.New(size)
		}
	}
}

// NewEVM creates a new EVM
func NewEVM(opts ...Option) *EVM {
	e := &EVM{
		logger: hclog.NewNullLogger(),
	}

	e.analysis, _ = lru.New(defaultAnalysisCacheSize)

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// SetCallHook replaces the sub frame extension
func (e *EVM) SetCallHook(hook runtime.CallHook) {
	e.hook = hook
}

// Name returns the runtime name
func (e *EVM) Name() string {
	return "evm"
}

func (e *EVM) codeBitmap(code []byte) *bitmap {
	if e.analysis == nil || len(code) == 0 {
		return newBitmap(code)
	}

	key := types.BytesToHash(crypto.Keccak256(code))
	if v, ok := e.analysis.Get(key); ok {
		if b, ok := v.(*bitmap); ok {
			return b
		}
	}

	b := newBitmap(code)
	e.analysis.Add(key, b)

	return b
}

// Run executes a single frame. It never touches snapshots: rolling back
// the host on failure is up to the caller.
func (e *EVM) Run(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	contract := acquireState()
	contract.init(e, c, host)
	contract.bitmap = e.codeBitmap(c.Code)

	if e.tracer != nil {
		e.tracer.CallStart(tracer.Frame{
			Depth: c.Depth,
			From:  c.Caller,
			To:    c.Address,
			Type:  int(c.Type),
			Gas:   c.Gas,
			Value: c.Value,
			Input: c.Input,
		})
	}

	ret, vmerr := contract.Run()

	// the return buffer belongs to the pooled state
	var returnValue []byte
	returnValue = append(returnValue[:0], ret...)

	gasLeft := contract.gas
	logs := contract.logs

	releaseState(contract)

	if vmerr != nil {
		logs = nil

		if !errors.Is(vmerr, runtime.ErrExecutionReverted) {
			gasLeft = 0
		}
	}

	if e.tracer != nil {
		e.tracer.CallEnd(c.Depth, returnValue, vmerr)
	}

	res := &runtime.ExecutionResult{
		ReturnValue: returnValue,
		GasLeft:     gasLeft,
		Err:         vmerr,
		Logs:        logs,
	}
	res.UpdateGasUsed(c.Gas)

	if c.Type.IsCreate() {
		res.Address = c.Address
	}

	if c.Depth <= 1 {
		updateMetrics(res)
	}

	return res
}

// Execute runs code as a single top level call against host. Every state
// mutation is rolled back when the call does not succeed. A nil Address in
// the context runs code as init code.
func (e *EVM) Execute(
	code []byte,
	ctx *runtime.ExecutionContext,
	host runtime.Host,
) (*runtime.ExecutionResult, error) {
	if ctx == nil {
		return nil, runtime.ErrNilContext
	}

	var contract *runtime.Contract

	if ctx.Address == nil {
		if len(code) == 0 {
			return nil, runtime.ErrEmptyInitCode
		}

		contract = runtime.NewContractCreation(
			1, ctx.Origin, ctx.Caller, types.ZeroAddress, ctx.Value, ctx.GasLimit, code,
		)
	} else {
		contract = runtime.NewContractCall(
			1, ctx.Origin, ctx.Caller, *ctx.Address, ctx.Value, ctx.GasLimit, code, ctx.Input,
		)
	}

	contract.Tx = &ctx.TxContext

	if e.tracer != nil {
		e.tracer.TxStart(ctx.GasLimit)
	}

	snapshot := host.Snapshot()

	res := e.Run(contract, host)

	if res.Failed() {
		if err := host.RevertToSnapshot(snapshot); err != nil {
			return nil, fmt.Errorf("failed to revert state: %w", err)
		}

		e.logger.Debug("execution failed", "address", contract.Address, "err", res.Err, "gas", res.GasUsed)
	} else {
		host.DiscardSnapshot(snapshot)
	}

	if e.tracer != nil {
		e.tracer.TxEnd(res.GasLeft)
	}

	return res, nil
}

var defaultEVM = NewEVM()

// Execute runs code against host with a hook-less EVM
func Execute(code []byte, ctx *runtime.ExecutionContext, host runtime.Host) (*runtime.ExecutionResult, error) {
	return defaultEVM.Execute(code, ctx, host)
}
