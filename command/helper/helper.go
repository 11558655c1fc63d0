package helper

import (
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/ryanuber/columnize"
	"github.com/spf13/cobra"

	"github.com/0xPolygon/bssc-evm/command"
	"github.com/0xPolygon/bssc-evm/helper/hex"
	"github.com/0xPolygon/bssc-evm/types"
)

// FormatList formats a list, using a specific blank value replacement
func FormatList(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"

	return columnize.Format(in, columnConf)
}

// FormatKV formats key value pairs:
//
// Key = Value
//
// Key = <none>
func FormatKV(in []string) string {
	columnConf := columnize.DefaultConfig()
	columnConf.Empty = "<none>"
	columnConf.Glue = " = "

	return columnize.Format(in, columnConf)
}

// RegisterJSONOutputFlag registers the --json output setting for all child commands
func RegisterJSONOutputFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(
		command.JSONOutputFlag,
		false,
		"get all outputs in json format (default false)",
	)
}

// RegisterEnvFlags registers the flags that locate the configuration and the persisted state
func RegisterEnvFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(
		command.ConfigFlag,
		"",
		"the path to the CLI config file (hcl, json or yaml)",
	)

	cmd.PersistentFlags().String(
		command.DataDirFlag,
		"",
		"the data directory of the persisted contract state",
	)

	cmd.PersistentFlags().String(
		command.LogLevelFlag,
		"",
		"the log level for console output",
	)
}

// ParseAddress parses a hex address, the zero address when empty
func ParseAddress(raw string) (types.Address, error) {
	if raw == "" {
		return types.ZeroAddress, nil
	}

	buf, err := hex.DecodeHex(raw)
	if err != nil {
		return types.ZeroAddress, fmt.Errorf("invalid address %q: %w", raw, err)
	}

	if len(buf) > types.AddressLength {
		return types.ZeroAddress, fmt.Errorf("invalid address %q: longer than %d bytes", raw, types.AddressLength)
	}

	return types.BytesToAddress(buf), nil
}

// ParseAmount parses a decimal or 0x prefixed amount
func ParseAmount(raw string) (*big.Int, error) {
	return hex.ParseBig(raw)
}

// ReadCode returns the bytecode passed inline or stored in a file
func ReadCode(raw, path string) ([]byte, error) {
	if raw != "" && path != "" {
		return nil, fmt.Errorf("code can be given either inline or as a file")
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		raw = strings.TrimSpace(string(data))
	}

	code, err := hex.DecodeHex(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode: %w", err)
	}

	return code, nil
}
