package deploy

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/bssc-evm/command"
	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/state"
	"github.com/0xPolygon/bssc-evm/state/runtime"
)

var errSaltTooLong = errors.New("salt is longer than 32 bytes")

func GetCommand() *cobra.Command {
	deployCmd := &cobra.Command{
		Use:   "deploy",
		Short: "Runs init code and deploys the returned bytecode",
		Run:   runCommand,
	}

	setFlags(deployCmd)

	return deployCmd
}

func setFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(
		&params.codeRaw,
		codeFlag,
		"",
		"the hex encoded init code",
	)

	cmd.Flags().StringVar(
		&params.codeFile,
		codeFileFlag,
		"",
		"the file holding the hex encoded init code",
	)

	cmd.Flags().StringVar(
		&params.fromRaw,
		fromFlag,
		"",
		"the deployer address",
	)

	cmd.Flags().StringVar(
		&params.valueRaw,
		valueFlag,
		"0",
		"the value endowed to the new contract",
	)

	cmd.Flags().StringVar(
		&params.saltRaw,
		saltFlag,
		"",
		"deploy at the salted (CREATE2) address",
	)

	cmd.Flags().Uint64Var(
		&params.gas,
		gasFlag,
		0,
		"the gas limit of the deployment (defaults to the configured gas limit)",
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

	result, err := deploy(env)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(result)
}

func deploy(env *helper.Env) (*DeployResult, error) {
	gas := params.gas
	if gas == 0 {
		gas = env.Config.GasLimit
	}

	ctx := &runtime.ExecutionContext{
		Caller:    params.from,
		Value:     params.value,
		GasLimit:  gas,
		TxContext: env.TxContext(params.from),
	}

	executor := state.NewExecutor(env.Store, env.Logger)

	var (
		res *runtime.ExecutionResult
		err error
	)

	if params.salt != nil {
		res, err = executor.Create2(ctx, params.code, *params.salt)
	} else {
		res, err = executor.Create(ctx, params.code)
	}

	if err != nil {
		return nil, err
	}

	if err := env.Persist(); err != nil {
		return nil, fmt.Errorf("failed to persist state: %w", err)
	}

	result := &DeployResult{
		Address:  res.Address.String(),
		Success:  res.Succeeded(),
		GasUsed:  res.GasUsed,
		GasLeft:  res.GasLeft,
		CodeSize: env.Store.GetCodeSize(res.Address),
	}

	if res.Err != nil {
		result.Error = res.Err.Error()
		result.CodeSize = 0
	}

	return result, nil
}
