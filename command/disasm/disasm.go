package disasm

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xPolygon/bssc-evm/command"
	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/state/runtime/evm"
)

const (
	codeFlag     = "code"
	codeFileFlag = "code-file"
)

var (
	params disasmParams
)

type disasmParams struct {
	codeRaw  string
	codeFile string
}

func GetCommand() *cobra.Command {
	disasmCmd := &cobra.Command{
		Use:   "disasm",
		Short: "Disassembles bytecode into instructions",
		Run:   runCommand,
	}

	disasmCmd.Flags().StringVar(
		&params.codeRaw,
		codeFlag,
		"",
		"the hex encoded bytecode",
	)

	disasmCmd.Flags().StringVar(
		&params.codeFile,
		codeFileFlag,
		"",
		"the file holding the hex encoded bytecode",
	)

	disasmCmd.MarkFlagsMutuallyExclusive(codeFlag, codeFileFlag)

	return disasmCmd
}

func runCommand(cmd *cobra.Command, _ []string) {
	outputter := command.InitializeOutputter(cmd)
	defer outputter.WriteOutput()

	code, err := helper.ReadCode(params.codeRaw, params.codeFile)
	if err != nil {
		outputter.SetError(err)

		return
	}

	outputter.SetCommandResult(newDisasmResult(evm.Disassemble(code)))
}

type InstructionResult struct {
	PC          uint64 `json:"pc"`
	Op          string `json:"op"`
	Instruction string `json:"instruction"`
}

type DisasmResult struct {
	Instructions []InstructionResult `json:"instructions"`
}

func newDisasmResult(instructions []evm.Instruction) *DisasmResult {
	res := &DisasmResult{
		Instructions: make([]InstructionResult, len(instructions)),
	}

	for i, ins := range instructions {
		res.Instructions[i] = InstructionResult{
			PC:          ins.PC,
			Op:          ins.Op.String(),
			Instruction: ins.String(),
		}
	}

	return res
}

func (r *DisasmResult) GetOutput() string {
	var buffer bytes.Buffer

	rows := make([]string, len(r.Instructions)+1)
	rows[0] = "PC|INSTRUCTION"

	for i, ins := range r.Instructions {
		rows[i+1] = fmt.Sprintf("%04x|%s", ins.PC, ins.Instruction)
	}

	buffer.WriteString("\n[DISASSEMBLY]\n")
	buffer.WriteString(helper.FormatList(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
