package account

import (
	"github.com/spf13/cobra"

	"github.com/0xPolygon/bssc-evm/command"
	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/types"
)

const addressFlag = "address"

var (
	params accountParams
)

type accountParams struct {
	addressRaw string

	address types.Address
}

func GetCommand() *cobra.Command {
	accountCmd := &cobra.Command{
		Use:     "account",
		Short:   "Shows the persisted state of an account",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	accountCmd.Flags().StringVar(
		&params.addressRaw,
		addressFlag,
		"",
		"the account address",
	)

	_ = accountCmd.MarkFlagRequired(addressFlag)

	return accountCmd
}

func runPreRun(_ *cobra.Command, _ []string) (err error) {
	params.address, err = helper.ParseAddress(params.addressRaw)

	return
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

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

	outputter.SetCommandResult(newAccountResult(env, params.address))
}
