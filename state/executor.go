package state

import (
	"errors"

	"github.com/hashicorp/go-hclog"

	"github.com/0xPolygon/bssc-evm/crypto"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/state/runtime/evm"
	"github.com/0xPolygon/bssc-evm/types"
)

var ErrMissingAddress = errors.New("call without a target address")

var _ runtime.CallHook = (*callHook)(nil)

// Executor runs top level calls and deployments against a host and
// serves the nested frames of the CALL and CREATE opcodes
type Executor struct {
	logger  hclog.Logger
	host    runtime.Host
	runtime runtime.Runtime
}

// NewExecutor creates an executor over host. The evm options are applied
// to the interpreter the executor drives.
func NewExecutor(host runtime.Host, logger hclog.Logger, opts ...evm.Option) *Executor {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	e := &Executor{
		logger: logger.Named("executor"),
		host:   host,
	}

	opts = append([]evm.Option{evm.WithLogger(logger)}, opts...)
	opts = append(opts, evm.WithCallHook(&callHook{e: e}))

	e.runtime = evm.NewEVM(opts...)

	return e
}

// Call runs code at the context address, the code deployed there when code is nil
func (e *Executor) Call(ctx *runtime.ExecutionContext, code []byte) (*runtime.ExecutionResult, error) {
	if ctx == nil {
		return nil, runtime.ErrNilContext
	}

	if ctx.Address == nil {
		return nil, ErrMissingAddress
	}

	to := *ctx.Address

	if code == nil {
		code = e.host.GetCode(to)
	}

	c := runtime.NewContractCall(1, ctx.Origin, ctx.Caller, to, ctx.Value, ctx.GasLimit, code, ctx.Input)
	c.Tx = txContext(ctx)

	res := e.call(c, e.host)

	e.logger.Debug("call", "to", to, "gas used", res.GasUsed, "err", res.Err)

	return res, nil
}

// Create deploys initCode at the address derived from the caller and its nonce
func (e *Executor) Create(ctx *runtime.ExecutionContext, initCode []byte) (*runtime.ExecutionResult, error) {
	if ctx == nil {
		return nil, runtime.ErrNilContext
	}

	if len(initCode) == 0 {
		return nil, runtime.ErrEmptyInitCode
	}

	address := crypto.CreateAddress(ctx.Caller, e.host.GetNonce(ctx.Caller))

	c := runtime.NewContractCreation(1, ctx.Origin, ctx.Caller, address, ctx.Value, ctx.GasLimit, initCode)
	c.Tx = txContext(ctx)

	res := e.create(c, e.host)

	e.logger.Debug("create", "address", address, "gas used", res.GasUsed, "err", res.Err)

	return res, nil
}

// Create2 deploys initCode at the address derived from the caller, salt and the init code
func (e *Executor) Create2(
	ctx *runtime.ExecutionContext,
	initCode []byte,
	salt types.Hash,
) (*runtime.ExecutionResult, error) {
	if ctx == nil {
		return nil, runtime.ErrNilContext
	}

	if len(initCode) == 0 {
		return nil, runtime.ErrEmptyInitCode
	}

	address := crypto.CreateAddress2(ctx.Caller, salt, initCode)

	c := runtime.NewContractCreation(1, ctx.Origin, ctx.Caller, address, ctx.Value, ctx.GasLimit, initCode)
	c.Type = runtime.Create2
	c.Tx = txContext(ctx)

	res := e.create(c, e.host)

	e.logger.Debug("create2", "address", address, "gas used", res.GasUsed, "err", res.Err)

	return res, nil
}

// callHook runs the nested frames of an executor
type callHook struct {
	e *Executor
}

func (h *callHook) Call(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	return h.e.call(c, host)
}

func (h *callHook) Create(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	return h.e.create(c, host)
}

func txContext(ctx *runtime.ExecutionContext) *runtime.TxContext {
	tx := ctx.TxContext

	return &tx
}

func (e *Executor) call(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	// Check if its too deep
	if c.Depth > int(evm.CallCreateDepth)+1 {
		return &runtime.ExecutionResult{
			GasLeft: c.Gas,
			Err:     runtime.ErrDepth,
		}
	}

	// CALLCODE moves no value but the caller must still hold it
	if c.Type == runtime.CallCode && host.GetBalance(c.Caller).Cmp(c.Value) < 0 {
		return &runtime.ExecutionResult{
			GasLeft: c.Gas,
			Err:     runtime.ErrNotEnoughFunds,
		}
	}

	snapshot := host.Snapshot()

	if c.Type == runtime.Call && c.Value.Sign() != 0 {
		if err := host.Transfer(c.Caller, c.Address, c.Value); err != nil {
			_ = host.RevertToSnapshot(snapshot)

			return &runtime.ExecutionResult{
				GasLeft: c.Gas,
				Err:     err,
			}
		}
	}

	res := e.runtime.Run(c, host)

	if res.Failed() {
		if err := host.RevertToSnapshot(snapshot); err != nil {
			e.logger.Error("failed to revert call", "address", c.Address, "err", err)
		}
	} else {
		host.DiscardSnapshot(snapshot)
	}

	return res
}

func (e *Executor) create(c *runtime.Contract, host runtime.Host) *runtime.ExecutionResult {
	gas := c.Gas

	// Check if its too deep
	if c.Depth > int(evm.CallCreateDepth)+1 {
		return &runtime.ExecutionResult{
			GasLeft: gas,
			Err:     runtime.ErrDepth,
		}
	}

	caller, address, value := c.Caller, c.Address, c.Value

	// Check if the values can be transferred
	if host.GetBalance(caller).Cmp(value) < 0 {
		return &runtime.ExecutionResult{
			GasLeft: gas,
			Err:     runtime.ErrNotEnoughFunds,
		}
	}

	// Increase the nonce of the caller
	host.SetNonce(caller, host.GetNonce(caller)+1)

	// Check for address collisions
	if host.GetNonce(address) != 0 || host.GetCodeSize(address) != 0 {
		return &runtime.ExecutionResult{
			GasUsed: gas,
			Err:     runtime.ErrContractAddressCollision,
		}
	}

	// Take snapshot of the current state
	snapshot := host.Snapshot()

	// the new account starts at nonce one
	host.SetNonce(address, 1)

	// Transfer the value
	if value.Sign() != 0 {
		if err := host.Transfer(caller, address, value); err != nil {
			_ = host.RevertToSnapshot(snapshot)

			return &runtime.ExecutionResult{
				GasLeft: gas,
				Err:     err,
			}
		}
	}

	// run the init code
	res := e.runtime.Run(c, host)

	if res.Succeeded() {
		res.Err = e.deposit(address, res, host)
	}

	if res.Failed() {
		if err := host.RevertToSnapshot(snapshot); err != nil {
			e.logger.Error("failed to revert create", "address", address, "err", err)
		}

		if !res.Reverted() {
			res.GasLeft = 0
		}

		res.Address = types.ZeroAddress
	} else {
		host.DiscardSnapshot(snapshot)
	}

	res.UpdateGasUsed(gas)

	return res
}

// deposit registers the code returned by the init code, charging for every byte
func (e *Executor) deposit(address types.Address, res *runtime.ExecutionResult, host runtime.Host) error {
	code := res.ReturnValue

	if len(code) > evm.MaxCodeSize {
		return runtime.ErrMaxCodeSizeExceeded
	}

	depositGas := uint64(len(code)) * evm.CreateDataGas
	if res.GasLeft < depositGas {
		return runtime.ErrCodeStoreOutOfGas
	}

	res.GasLeft -= depositGas
	host.Deploy(address, code)

	return nil
}
