package deploy

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/bssc-evm/command/helper"
)

type DeployResult struct {
	Address  string `json:"address"`
	Success  bool   `json:"success"`
	Error    string `json:"error,omitempty"`
	GasUsed  uint64 `json:"gasUsed"`
	GasLeft  uint64 `json:"gasLeft"`
	CodeSize int    `json:"codeSize"`
}

func (r *DeployResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[DEPLOY]\n")

	rows := []string{
		fmt.Sprintf("Address|%s", r.Address),
		fmt.Sprintf("Success|%t", r.Success),
		fmt.Sprintf("Gas used|%d", r.GasUsed),
		fmt.Sprintf("Gas left|%d", r.GasLeft),
		fmt.Sprintf("Code size|%d", r.CodeSize),
	}

	if r.Error != "" {
		rows = append(rows, fmt.Sprintf("Error|%s", r.Error))
	}

	buffer.WriteString(helper.FormatKV(rows))
	buffer.WriteString("\n")

	return buffer.String()
}
