package structtracer

import (
	"errors"
	"math/big"
	"sync/atomic"

	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/state/runtime/evm"
	"github.com/0xPolygon/bssc-evm/state/runtime/tracer"
	"github.com/0xPolygon/bssc-evm/types"
)

var _ tracer.Tracer = (*StructTracer)(nil)

// Config selects the parts of the frame copied into every log
type Config struct {
	EnableMemory     bool
	EnableStack      bool
	EnableStorage    bool
	EnableReturnData bool
}

// StructLog is one executed step
type StructLog struct {
	Pc         uint64                    `json:"pc"`
	Op         string                    `json:"op"`
	Gas        uint64                    `json:"gas"`
	GasCost    uint64                    `json:"gasCost"`
	Memory     []byte                    `json:"memory,omitempty"`
	MemorySize int                       `json:"memSize"`
	Stack      []*big.Int                `json:"stack"`
	ReturnData []byte                    `json:"returnData,omitempty"`
	Storage    map[types.Hash]types.Hash `json:"storage"`
	Depth      int                       `json:"depth"`
	Err        error                     `json:"err"`
}

func (l *StructLog) ErrorString() string {
	if l.Err == nil {
		return ""
	}

	return l.Err.Error()
}

// StructTracer collects a StructLog per step of a transaction.
// It is not safe for concurrent use, except for Cancel
type StructTracer struct {
	Config Config

	// cancel holds the error passed to Cancel
	cancel atomic.Value

	logs []StructLog

	// pending is the snapshot taken by CaptureState, it is
	// completed by the ExecuteState of the same step
	pending *StructLog

	// touched slots of every contract seen by SLOAD or SSTORE
	slots map[types.Address]map[types.Hash]types.Hash

	gasLimit uint64
	gasUsed  uint64

	output  []byte
	callErr error
}

type cancelReason struct {
	err error
}

func NewStructTracer(config Config) *StructTracer {
	t := &StructTracer{Config: config}
	t.Clear()

	return t
}

// Cancel stops the traced execution at the next step.
// GetResult returns err afterwards
func (t *StructTracer) Cancel(err error) {
	t.cancel.Store(cancelReason{err: err})
}

func (t *StructTracer) reason() error {
	r, ok := t.cancel.Load().(cancelReason)
	if !ok {
		return nil
	}

	return r.err
}

func (t *StructTracer) Clear() {
	t.cancel.Store(cancelReason{})
	t.logs = nil
	t.pending = nil
	t.slots = map[types.Address]map[types.Hash]types.Hash{}
	t.gasLimit, t.gasUsed = 0, 0
	t.output, t.callErr = nil, nil
}

func (t *StructTracer) TxStart(gasLimit uint64) {
	t.gasLimit = gasLimit
}

func (t *StructTracer) TxEnd(gasLeft uint64) {
	t.gasUsed = t.gasLimit - gasLeft
}

func (t *StructTracer) CallStart(tracer.Frame) {}

func (t *StructTracer) CallEnd(depth int, output []byte, err error) {
	// only the outermost frame decides the result
	if depth != 1 {
		return
	}

	t.output = output
	t.callErr = err
}

func (t *StructTracer) CaptureState(scope *tracer.Scope, host tracer.Host, halter tracer.Halter) {
	if reason := t.reason(); reason != nil {
		halter.Halt(reason)

		return
	}

	log := &StructLog{}

	if t.Config.EnableMemory {
		log.Memory = append(make([]byte, 0, len(scope.Memory)), scope.Memory...)
		log.MemorySize = len(scope.Memory)
	}

	if t.Config.EnableStack {
		log.Stack = make([]*big.Int, len(scope.Stack))
		for i := range scope.Stack {
			log.Stack[i] = scope.Stack[i].ToBig()
		}
	}

	if t.Config.EnableStorage {
		t.touchSlot(scope, host)
	}

	t.pending = log
}

// touchSlot records the slot read by SLOAD or written by SSTORE.
// The stack top is the last element of scope.Stack
func (t *StructTracer) touchSlot(scope *tracer.Scope, host tracer.Host) {
	var (
		n    = len(scope.Stack)
		slot types.Hash
		val  types.Hash
	)

	switch scope.Op {
	case evm.SLOAD:
		if n < 1 {
			return
		}

		slot = scope.Stack[n-1].Bytes32()
		val = host.GetStorage(scope.Address, slot)
	case evm.SSTORE:
		if n < 2 {
			return
		}

		slot = scope.Stack[n-1].Bytes32()
		val = scope.Stack[n-2].Bytes32()
	default:
		return
	}

	slots, ok := t.slots[scope.Address]
	if !ok {
		slots = map[types.Hash]types.Hash{}
		t.slots[scope.Address] = slots
	}

	slots[slot] = val
}

func (t *StructTracer) ExecuteState(step *tracer.Step, _ tracer.Host) {
	// a step that failed before dispatch was never captured
	log := t.pending
	if log == nil {
		log = &StructLog{}
	}

	t.pending = nil

	log.Pc = step.PC
	log.Op = step.Op
	log.Gas = step.Gas
	log.GasCost = step.Cost
	log.Depth = step.Depth
	log.Err = step.Err

	if t.Config.EnableReturnData {
		log.ReturnData = append(make([]byte, 0, len(step.ReturnData)), step.ReturnData...)
	}

	if slots, ok := t.slots[step.Address]; ok && t.Config.EnableStorage {
		log.Storage = make(map[types.Hash]types.Hash, len(slots))
		for k, v := range slots {
			log.Storage[k] = v
		}
	}

	t.logs = append(t.logs, *log)
}

// Logs returns the steps captured so far
func (t *StructTracer) Logs() []StructLog {
	return t.logs
}

type StructTraceResult struct {
	Failed      bool           `json:"failed"`
	Gas         uint64         `json:"gas"`
	ReturnValue string         `json:"returnValue"`
	StructLogs  []StructLogRes `json:"structLogs"`
}

type StructLogRes struct {
	Pc      uint64            `json:"pc"`
	Op      string            `json:"op"`
	Gas     uint64            `json:"gas"`
	GasCost uint64            `json:"gasCost"`
	Depth   int               `json:"depth"`
	Error   string            `json:"error,omitempty"`
	Stack   []string          `json:"stack,omitempty"`
	Memory  []string          `json:"memory,omitempty"`
	Storage map[string]string `json:"storage,omitempty"`
}

func (t *StructTracer) GetResult() (interface{}, error) {
	if err := t.reason(); err != nil {
		return nil, err
	}

	result := &StructTraceResult{
		Failed:     t.callErr != nil,
		Gas:        t.gasUsed,
		StructLogs: make([]StructLogRes, 0, len(t.logs)),
	}

	// a revert keeps its return data, any other failure drops it
	if t.callErr == nil || errors.Is(t.callErr, runtime.ErrExecutionReverted) {
		result.ReturnValue = hex.EncodeToString(t.output)
	}

	for i := range t.logs {
		result.StructLogs = append(result.StructLogs, t.logs[i].format())
	}

	return result, nil
}

func (l *StructLog) format() StructLogRes {
	res := StructLogRes{
		Pc:      l.Pc,
		Op:      l.Op,
		Gas:     l.Gas,
		GasCost: l.GasCost,
		Depth:   l.Depth,
		Error:   l.ErrorString(),
	}

	if l.Stack != nil {
		res.Stack = make([]string, 0, len(l.Stack))
		for _, v := range l.Stack {
			res.Stack = append(res.Stack, hex.EncodeBig(v))
		}
	}

	if l.Memory != nil {
		res.Memory = make([]string, 0, len(l.Memory)/32)
		for off := 0; off+32 <= len(l.Memory); off += 32 {
			res.Memory = append(res.Memory, hex.EncodeToString(l.Memory[off:off+32]))
		}
	}

	if l.Storage != nil {
		res.Storage = make(map[string]string, len(l.Storage))
		for k, v := range l.Storage {
			res.Storage[hex.EncodeToString(k.Bytes())] = hex.EncodeToString(v.Bytes())
		}
	}

	return res
}
