package evm

import (
	"github.com/armon/go-metrics"

	"github.com/0xPolygon/bssc-evm/state/runtime"
)

const evmMetrics = "evm"

// updateMetrics records the outcome of a top level frame
func updateMetrics(res *runtime.ExecutionResult) {
	metrics.IncrCounter([]string{evmMetrics, "execution"}, 1)
	metrics.AddSample([]string{evmMetrics, "gas_used"}, float32(res.GasUsed))

	switch {
	case res.Reverted():
		metrics.IncrCounter([]string{evmMetrics, "revert"}, 1)
	case res.Failed():
		metrics.IncrCounter([]string{evmMetrics, "failure"}, 1)
	}
}
