package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"reflect"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"

	"github.com/0xPolygon/bssc-evm/state/storage"
)

const (
	// DefaultGasLimit is the gas limit of a command when none is given
	DefaultGasLimit uint64 = 10_000_000

	// DefaultChainID is the value of the CHAINID opcode
	DefaultChainID uint64 = 100

	// DefaultLogLevel is the level of the command logger
	DefaultLogLevel = "INFO"
)

var (
	errDiskBackendPath = errors.New("disk storage backends require a data dir or a path param")
	errZeroGasLimit    = errors.New("gas limit must be greater than 0")
)

// Config defines the command configuration params
type Config struct {
	DataDir       string     `json:"data_dir" yaml:"data_dir" hcl:"data_dir"`
	Storage       *Storage   `json:"storage" yaml:"storage" hcl:"storage"`
	LogLevel      string     `json:"log_level" yaml:"log_level" hcl:"log_level"`
	JSONLogFormat bool       `json:"json_log_format" yaml:"json_log_format" hcl:"json_log_format"`
	GasLimit      uint64     `json:"gas_limit" yaml:"gas_limit" hcl:"gas_limit"`
	GasPrice      uint64     `json:"gas_price" yaml:"gas_price" hcl:"gas_price"`
	ChainID       uint64     `json:"chain_id" yaml:"chain_id" hcl:"chain_id"`
	BlockNumber   uint64     `json:"block_number" yaml:"block_number" hcl:"block_number"`
	Timestamp     uint64     `json:"timestamp" yaml:"timestamp" hcl:"timestamp"`
	Telemetry     *Telemetry `json:"telemetry" yaml:"telemetry" hcl:"telemetry"`
}

// Storage selects the persistence backend of the contract state
type Storage struct {
	Backend string                 `json:"backend" yaml:"backend" hcl:"backend"`
	Params  map[string]interface{} `json:"params" yaml:"params" hcl:"params"`
}

// Telemetry holds the config details for metric services.
type Telemetry struct {
	PrometheusAddr string `json:"prometheus_addr" yaml:"prometheus_addr" hcl:"prometheus_addr"`
}

// DefaultConfig returns the default command configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir: "",
		Storage: &Storage{
			Backend: string(storage.Memory),
			Params:  map[string]interface{}{},
		},
		LogLevel:      DefaultLogLevel,
		JSONLogFormat: false,
		GasLimit:      DefaultGasLimit,
		GasPrice:      0,
		ChainID:       DefaultChainID,
		BlockNumber:   0,
		Timestamp:     0,
		Telemetry:     &Telemetry{},
	}
}

// ReadConfigFile reads the config file from the specified path, builds a Config object
// and returns it. Values missing from the file keep their defaults.
//
// Supported file types: .json, .hcl, .yaml, .yml
func ReadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var unmarshalFunc func([]byte, interface{}) error

	switch {
	case strings.HasSuffix(path, ".hcl"):
		unmarshalFunc = unmarshalHCL
	case strings.HasSuffix(path, ".json"):
		unmarshalFunc = json.Unmarshal
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		unmarshalFunc = yaml.Unmarshal
	default:
		return nil, fmt.Errorf("suffix of %s is neither hcl, json, yaml nor yml", path)
	}

	config := DefaultConfig()

	if err := unmarshalFunc(data, config); err != nil {
		return nil, err
	}

	if config.Storage == nil {
		config.Storage = DefaultConfig().Storage
	}

	if config.Telemetry == nil {
		config.Telemetry = &Telemetry{}
	}

	return config, nil
}

// unmarshalHCL decodes hcl through a generic map, hcl cannot decode into uint64 fields
func unmarshalHCL(data []byte, out interface{}) error {
	var raw map[string]interface{}
	if err := hcl.Unmarshal(data, &raw); err != nil {
		return err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       unwrapHCLBlock,
		WeaklyTypedInput: true,
		TagName:          "hcl",
		Result:           out,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(raw)
}

// unwrapHCLBlock turns the single element list hcl yields for a block into its map
func unwrapHCLBlock(_ reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	blocks, ok := data.([]map[string]interface{})
	if !ok || len(blocks) != 1 {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Struct, reflect.Ptr, reflect.Map:
		return blocks[0], nil
	default:
		return data, nil
	}
}

// StorageParams returns the backend params, the data dir is the default path
func (c *Config) StorageParams() map[string]interface{} {
	params := map[string]interface{}{}

	for k, v := range c.Storage.Params {
		params[k] = v
	}

	if _, ok := params["path"]; !ok && c.DataDir != "" {
		params["path"] = c.DataDir
	}

	return params
}

// Validate reports every invalid field of the configuration
func (c *Config) Validate() error {
	var result *multierror.Error

	switch backend := storage.Backend(c.Storage.Backend); backend {
	case storage.Memory:
	case storage.LevelDB, storage.BoltDB:
		if _, ok := c.StorageParams()["path"]; !ok {
			result = multierror.Append(result, errDiskBackendPath)
		}
	default:
		result = multierror.Append(result, fmt.Errorf("%w: %q", storage.ErrUnknownBackend, backend))
	}

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("invalid log level %q", c.LogLevel))
	}

	if c.GasLimit == 0 {
		result = multierror.Append(result, errZeroGasLimit)
	}

	if addr := c.Telemetry.PrometheusAddr; addr != "" {
		if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
			result = multierror.Append(result, fmt.Errorf("invalid prometheus address: %w", err))
		}
	}

	return result.ErrorOrNil()
}
