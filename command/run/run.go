package run

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/bssc-evm/command"
	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/state"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/state/runtime/evm"
	"github.com/0xPolygon/bssc-evm/state/runtime/tracer/structtracer"
)

var errNoCode = errors.New("either the code or the address of a deployed contract is required")

func GetCommand() *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Executes bytecode, or the code deployed at an address, against the contract state",
		Run:   runCommand,
	}

	setFlags(runCmd)

	return runCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.codeRaw,
		codeFlag,
		"",
		"the hex encoded bytecode to execute",
	)

	cmd.Flags().StringVar(
		&params.codeFile,
		codeFileFlag,
		"",
		"the file holding the hex encoded bytecode to execute",
	)

	cmd.Flags().StringVar(
		&params.addressRaw,
		addressFlag,
		"",
		"the address of the executing contract",
	)

	cmd.Flags().StringVar(
		&params.callerRaw,
		callerFlag,
		"",
		"the caller and origin of the call",
	)

	cmd.Flags().StringVar(
		&params.valueRaw,
		valueFlag,
		"0",
		"the value moved from the caller to the contract",
	)

	cmd.Flags().StringVar(
		&params.inputRaw,
		inputFlag,
		"",
		"the hex encoded call data",
	)

	cmd.Flags().Uint64Var(
		&params.gas,
		gasFlag,
		0,
		"the gas limit of the call (defaults to the configured gas limit)",
	)

	cmd.Flags().BoolVar(
		&params.trace,
		traceFlag,
		false,
		"record every executed instruction",
	)

	cmd.MarkFlagsMutuallyExclusive(codeFlag, codeFileFlag)
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	if err := params.init(); err != nil {
		outputter.SetError(err)

		return
	}

	env, err := helper.NewEnv(cmd)
	if err != nil {
		outputter.SetError(err)

		return
	}

	defer func() {
		if err := env.Close(); err != nil {
			env.Logger.Error("failed to close environment", "err", err)
		}
	}()

	result, err := execute(env)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(result)
}

func execute(env *helper.Env) (*RunResult, error) {
	gas := params.gas
	if gas == 0 {
		gas = env.Config.GasLimit
	}

	var (
		opts   []evm.Option
		tracer *structtracer.StructTracer
	)

	if params.trace {
		tracer = structtracer.NewStructTracer(structtracer.Config{
			EnableMemory:     true,
			EnableStack:      true,
			EnableStorage:    true,
			EnableReturnData: true,
		})

		opts = append(opts, evm.WithTracer(tracer))
	}

	executor := state.NewExecutor(env.Store, env.Logger, opts...)

	address := params.address

	ctx := &runtime.ExecutionContext{
		Address:   &address,
		Caller:    params.caller,
		Value:     params.value,
		Input:     params.input,
		GasLimit:  gas,
		TxContext: env.TxContext(params.caller),
	}

	if tracer != nil {
		tracer.TxStart(gas)
	}

	res, err := executor.Call(ctx, params.code)
	if err != nil {
		return nil, err
	}

	result := newRunResult(address, res)

	if tracer != nil {
		tracer.TxEnd(res.GasLeft)

		trace, err := tracer.GetResult()
		if err != nil {
			return nil, fmt.Errorf("failed to collect trace: %w", err)
		}

		if structTrace, ok := trace.(*structtracer.StructTraceResult); ok {
			result.Trace = structTrace.StructLogs
		}
	}

	if err := env.Persist(); err != nil {
		return nil, fmt.Errorf("failed to persist state: %w", err)
	}

	return result, nil
}
