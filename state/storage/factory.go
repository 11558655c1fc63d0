package storage

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/mapstructure"

	"github.com/0xPolygon/bssc-evm/helper/common"
)

// Backend names a storage implementation
type Backend string

const (
	Memory  Backend = "memory"
	LevelDB Backend = "leveldb"
	BoltDB  Backend = "boltdb"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// boltdb keeps the state in a single file inside the data directory
const boltFileName = "state.db"

// Params are the backend parameters
type Params struct {
	// Path is the data directory, required by the disk backends
	Path string `mapstructure:"path"`
}

// Factory opens the backend with the raw params of the configuration
func Factory(backend Backend, raw map[string]interface{}, logger hclog.Logger) (*Storage, error) {
	params, err := decodeParams(raw)
	if err != nil {
		return nil, fmt.Errorf("%s params: %w", backend, err)
	}

	switch backend {
	case Memory:
		return NewMemoryStorage(logger)

	case LevelDB:
		if params.Path == "" {
			return nil, fmt.Errorf("%s: path not found", backend)
		}

		if err := common.SetupDataDir(params.Path); err != nil {
			return nil, err
		}

		return NewLevelDBStorage(params.Path, logger)

	case BoltDB:
		if params.Path == "" {
			return nil, fmt.Errorf("%s: path not found", backend)
		}

		if err := common.SetupDataDir(params.Path); err != nil {
			return nil, err
		}

		return NewBoltDBStorage(filepath.Join(params.Path, boltFileName), logger)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func decodeParams(raw map[string]interface{}) (*Params, error) {
	params := &Params{}
	metadata := &mapstructure.Metadata{}

	dc := &mapstructure.DecoderConfig{
		Result:           params,
		WeaklyTypedInput: true,
		Metadata:         metadata,
	}

	ms, err := mapstructure.NewDecoder(dc)
	if err != nil {
		return nil, err
	}

	if err = ms.Decode(raw); err != nil {
		return nil, err
	}

	if len(metadata.Unused) != 0 {
		return nil, fmt.Errorf("some keys not used: %v", metadata.Unused)
	}

	return params, nil
}
