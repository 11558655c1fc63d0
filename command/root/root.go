package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/bssc-evm/command/account"
	"github.com/0xPolygon/bssc-evm/command/deploy"
	"github.com/0xPolygon/bssc-evm/command/disasm"
	"github.com/0xPolygon/bssc-evm/command/fund"
	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/command/run"
	"github.com/0xPolygon/bssc-evm/command/version"
)

type RootCommand struct {
	baseCmd *cobra.Command
}

func NewRootCommand() *RootCommand {
	rootCommand := &RootCommand{
		baseCmd: &cobra.Command{
			Use:   "bssc-evm",
			Short: "bssc-evm executes EVM bytecode against a persisted contract state",
		},
	}

	helper.RegisterJSONOutputFlag(rootCommand.baseCmd)
	helper.RegisterEnvFlags(rootCommand.baseCmd)

	rootCommand.registerSubCommands()

	return rootCommand
}

func (rc *RootCommand) registerSubCommands() {
	rc.baseCmd.AddCommand(
		version.GetCommand(),
		run.GetCommand(),
		deploy.GetCommand(),
		account.GetCommand(),
		fund.GetCommand(),
		disasm.GetCommand(),
	)
}

// Command returns the cobra command tree
func (rc *RootCommand) Command() *cobra.Command {
	return rc.baseCmd
}

func (rc *RootCommand) Execute() {
	if err := rc.baseCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)

		os.Exit(1)
	}
}
