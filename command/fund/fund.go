package fund

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/bssc-evm/command"
	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/types"
)

const (
	addressFlag = "address"
	amountFlag  = "amount"
)

var (
	params fundParams
)

type fundParams struct {
	addressRaw string
	amountRaw  string

	address types.Address
	amount  *big.Int
}

// GetCommand returns the fund command
func GetCommand() *cobra.Command {
	fundCmd := &cobra.Command{
		Use:     "fund",
		Short:   "Credits an account with the given amount",
		PreRunE: runPreRun,
		Run:     runCommand,
	}

	fundCmd.Flags().StringVar(
		&params.addressRaw,
		addressFlag,
		"",
		"the address of the funded account",
	)

	fundCmd.Flags().StringVar(
		&params.amountRaw,
		amountFlag,
		"",
		"the credited amount, decimal or 0x prefixed",
	)

	_ = fundCmd.MarkFlagRequired(addressFlag)
	_ = fundCmd.MarkFlagRequired(amountFlag)

	return fundCmd
}

func runPreRun(_ *cobra.Command, _ []string) (err error) {
	if params.address, err = helper.ParseAddress(params.addressRaw); err != nil {
		return
	}

	params.amount, err = helper.ParseAmount(params.amountRaw)

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

	env.Store.AddBalance(params.address, params.amount)

	if err := env.Persist(); err != nil {
		outputter.SetError(fmt.Errorf("failed to persist state: %w", err))

		return
	}

	outputter.SetCommandResult(&FundResult{
		Address: params.address.String(),
		Amount:  hex.EncodeBig(params.amount),
		Balance: hex.EncodeBig(env.Store.GetBalance(params.address)),
	})
}

type FundResult struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
	Balance string `json:"balance"`
}

func (r *FundResult) GetOutput() string {
	return "\n[FUND]\n" + helper.FormatKV([]string{
		fmt.Sprintf("Address|%s", r.Address),
		fmt.Sprintf("Amount|%s", r.Amount),
		fmt.Sprintf("Balance|%s", r.Balance),
	}) + "\n"
}
