package run

import (
	"math/big"

	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/types"
)

const (
	codeFlag     = "code"
	codeFileFlag = "code-file"
	addressFlag  = "address"
	callerFlag   = "caller"
	valueFlag    = "value"
	inputFlag    = "input"
	gasFlag      = "gas"
	traceFlag    = "trace"
)

var (
	params = &runParams{}
)

type runParams struct {
	codeRaw    string
	codeFile   string
	addressRaw string
	callerRaw  string
	valueRaw   string
	inputRaw   string
	gas        uint64
	trace      bool

	code    []byte
	address types.Address
	caller  types.Address
	value   *big.Int
	input   []byte
}

func (p *runParams) init() (err error) {
	p.code = nil

	if p.codeRaw != "" || p.codeFile != "" {
		if p.code, err = helper.ReadCode(p.codeRaw, p.codeFile); err != nil {
			return
		}
	} else if p.addressRaw == "" {
		return errNoCode
	}

	if p.address, err = helper.ParseAddress(p.addressRaw); err != nil {
		return
	}

	if p.caller, err = helper.ParseAddress(p.callerRaw); err != nil {
		return
	}

	if p.value, err = helper.ParseAmount(p.valueRaw); err != nil {
		return
	}

	if p.input, err = hex.DecodeHex(p.inputRaw); err != nil {
		return
	}

	return
}
