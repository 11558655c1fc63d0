package deploy

import (
	"math/big"

	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/types"
)

const (
	codeFlag     = "code"
	codeFileFlag = "code-file"
	fromFlag     = "from"
	valueFlag    = "value"
	gasFlag      = "gas"
	saltFlag     = "salt"
)

var (
	params = &deployParams{}
)

type deployParams struct {
	codeRaw  string
	codeFile string
	fromRaw  string
	valueRaw string
	saltRaw  string
	gas      uint64

	code  []byte
	from  types.Address
	value *big.Int
	salt  *types.Hash
}

func (p *deployParams) init() (err error) {
	if p.code, err = helper.ReadCode(p.codeRaw, p.codeFile); err != nil {
		return
	}

	if p.from, err = helper.ParseAddress(p.fromRaw); err != nil {
		return
	}

	if p.value, err = helper.ParseAmount(p.valueRaw); err != nil {
		return
	}

	p.salt = nil

	if p.saltRaw != "" {
		raw, err := hex.DecodeHex(p.saltRaw)
		if err != nil {
			return err
		}

		if len(raw) > types.HashLength {
			return errSaltTooLong
		}

		salt := types.BytesToHash(raw)
		p.salt = &salt
	}

	return
}
