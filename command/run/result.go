package run

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/state/runtime/tracer/structtracer"
	"github.com/0xPolygon/bssc-evm/types"
)

type RunResult struct {
	Address     string                      `json:"address"`
	Success     bool                        `json:"success"`
	Reverted    bool                        `json:"reverted"`
	Error       string                      `json:"error,omitempty"`
	ReturnValue string                      `json:"returnValue"`
	GasUsed     uint64                      `json:"gasUsed"`
	GasLeft     uint64                      `json:"gasLeft"`
	Logs        []*types.Log                `json:"logs"`
	Trace       []structtracer.StructLogRes `json:"trace,omitempty"`
}

func newRunResult(address types.Address, res *runtime.ExecutionResult) *RunResult {
	result := &RunResult{
		Address:     address.String(),
		Success:     res.Succeeded(),
		Reverted:    res.Reverted(),
		ReturnValue: hex.EncodeToHex(res.ReturnValue),
		GasUsed:     res.GasUsed,
		GasLeft:     res.GasLeft,
		Logs:        res.Logs,
	}

	if res.Err != nil {
		result.Error = res.Err.Error()
	}

	if result.Logs == nil {
		result.Logs = []*types.Log{}
	}

	return result
}

func (r *RunResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[RUN]\n")

	status := []string{
		fmt.Sprintf("Address|%s", r.Address),
		fmt.Sprintf("Success|%t", r.Success),
		fmt.Sprintf("Reverted|%t", r.Reverted),
		fmt.Sprintf("Return value|%s", r.ReturnValue),
		fmt.Sprintf("Gas used|%d", r.GasUsed),
		fmt.Sprintf("Gas left|%d", r.GasLeft),
	}

	if r.Error != "" {
		status = append(status, fmt.Sprintf("Error|%s", r.Error))
	}

	buffer.WriteString(helper.FormatKV(status))
	buffer.WriteString("\n")

	if len(r.Logs) > 0 {
		buffer.WriteString("\n[LOGS]\n")

		for i, log := range r.Logs {
			topics := make([]string, len(log.Topics))
			for j, topic := range log.Topics {
				topics[j] = topic.String()
			}

			buffer.WriteString(helper.FormatKV([]string{
				fmt.Sprintf("Index|%d", i),
				fmt.Sprintf("Address|%s", log.Address),
				fmt.Sprintf("Topics|%s", strings.Join(topics, ",")),
				fmt.Sprintf("Data|%s", log.Data),
			}))
			buffer.WriteString("\n")
		}
	}

	if len(r.Trace) > 0 {
		buffer.WriteString("\n[TRACE]\n")

		rows := make([]string, len(r.Trace)+1)
		rows[0] = "PC|OP|GAS|COST|DEPTH|ERROR"

		for i, step := range r.Trace {
			rows[i+1] = fmt.Sprintf("%d|%s|%d|%d|%d|%s",
				step.Pc, step.Op, step.Gas, step.GasCost, step.Depth, step.Error)
		}

		buffer.WriteString(helper.FormatList(rows))
		buffer.WriteString("\n")
	}

	return buffer.String()
}
