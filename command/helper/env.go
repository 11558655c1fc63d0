package helper

import (
	"fmt"
	"math/big"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/0xPolygon/bssc-evm/command"
	"github.com/0xPolygon/bssc-evm/config"
	"github.com/0xPolygon/bssc-evm/gasprice"
	"github.com/0xPolygon/bssc-evm/state"
	"github.com/0xPolygon/bssc-evm/state/runtime"
	"github.com/0xPolygon/bssc-evm/state/storage"
	"github.com/0xPolygon/bssc-evm/types"
)

// Env is the configuration, logger and contract state shared by the commands
type Env struct {
	Config  *config.Config
	Logger  hclog.Logger
	Store   *state.Store
	Storage *storage.Storage

	closers []func() error
}

// NewEnv loads the configuration selected by the persistent flags,
// opens the storage backend and loads the persisted state into a fresh store
func NewEnv(cmd *cobra.Command) (*Env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "evm",
		Level:      hclog.LevelFromString(cfg.LogLevel),
		JSONFormat: cfg.JSONLogFormat,
		Output:     cmd.ErrOrStderr(),
	})

	env := &Env{
		Config: cfg,
		Logger: logger,
		Store:  state.NewStore(),
	}

	if addr := cfg.Telemetry.PrometheusAddr; addr != "" {
		closeFn, err := setupTelemetry(addr, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to setup telemetry: %w", err)
		}

		env.closers = append(env.closers, closeFn)
	}

	db, err := storage.Factory(storage.Backend(cfg.Storage.Backend), cfg.StorageParams(), logger)
	if err != nil {
		_ = env.Close()

		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	env.Storage = db
	env.closers = append(env.closers, db.Close)

	if err := db.LoadStore(env.Store); err != nil {
		_ = env.Close()

		return nil, fmt.Errorf("failed to load state: %w", err)
	}

	return env, nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	path, _ := cmd.Flags().GetString(command.ConfigFlag)
	if path != "" {
		var err error

		if cfg, err = config.ReadConfigFile(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	// flags override the file
	if dataDir, _ := cmd.Flags().GetString(command.DataDirFlag); dataDir != "" {
		cfg.DataDir = dataDir

		if cfg.Storage.Backend == string(storage.Memory) {
			cfg.Storage.Backend = string(storage.LevelDB)
		}
	}

	if logLevel, _ := cmd.Flags().GetString(command.LogLevelFlag); logLevel != "" {
		cfg.LogLevel = logLevel
	}

	return cfg, nil
}

// TxContext returns the block and transaction context of a command
func (e *Env) TxContext(origin types.Address) runtime.TxContext {
	var oracle gasprice.Oracle
	if e.Config.GasPrice != 0 {
		oracle = gasprice.NewFixed(new(big.Int).SetUint64(e.Config.GasPrice))
	}

	return runtime.TxContext{
		Origin:        origin,
		GasPrice:      gasprice.Select(oracle),
		BlockNumber:   e.Config.BlockNumber,
		Timestamp:     e.Config.Timestamp,
		BlockGasLimit: e.Config.GasLimit,
		ChainID:       e.Config.ChainID,
		BaseFee:       big.NewInt(0),
	}
}

// Persist writes the store back to the storage backend
func (e *Env) Persist() error {
	return e.Storage.SaveStore(e.Store)
}

// Close releases the storage and the telemetry server
func (e *Env) Close() error {
	var result *multierror.Error

	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}

	e.closers = nil

	return result.ErrorOrNil()
}
