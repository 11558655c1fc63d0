package account

import (
	"bytes"
	"fmt"

	"github.com/0xPolygon/bssc-evm/command/helper"
	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/types"
)

type AccountResult struct {
	Address  string `json:"address"`
	Exists   bool   `json:"exists"`
	Balance  string `json:"balance"`
	Nonce    uint64 `json:"nonce"`
	CodeSize int    `json:"codeSize"`
	CodeHash string `json:"codeHash"`
	Slots    int    `json:"slots"`
}

func newAccountResult(env *helper.Env, addr types.Address) *AccountResult {
	result := &AccountResult{
		Address:  addr.String(),
		Exists:   env.Store.AccountExists(addr),
		Balance:  hex.EncodeBig(env.Store.GetBalance(addr)),
		Nonce:    env.Store.GetNonce(addr),
		CodeSize: env.Store.GetCodeSize(addr),
		CodeHash: env.Store.GetCodeHash(addr).String(),
	}

	if account, ok := env.Store.GetAccount(addr); ok {
		result.Slots = account.StorageLen()
	}

	return result
}

func (r *AccountResult) GetOutput() string {
	var buffer bytes.Buffer

	buffer.WriteString("\n[ACCOUNT]\n")
	buffer.WriteString(helper.FormatKV([]string{
		fmt.Sprintf("Address|%s", r.Address),
		fmt.Sprintf("Exists|%t", r.Exists),
		fmt.Sprintf("Balance|%s", r.Balance),
		fmt.Sprintf("Nonce|%d", r.Nonce),
		fmt.Sprintf("Code size|%d", r.CodeSize),
		fmt.Sprintf("Code hash|%s", r.CodeHash),
		fmt.Sprintf("Storage slots|%d", r.Slots),
	}))
	buffer.WriteString("\n")

	return buffer.String()
}
