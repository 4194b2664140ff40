// Package config contains faucet ledger host configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/faucet-ledger/store"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Default values applied by Load.
const (
	DefaultStorageType = store.InMemory
	DefaultLogLevel    = "info"
	DefaultLogEncoding = "console"
	DefaultBoltDBFile  = "./faucet.bolt"
	DefaultLevelDBDir  = "./faucet.db"
)

const (
	encodingConsole = "console"
	encodingJSON    = "json"

	configFileMode = 0600
)

// Config is the top-level host configuration.
type Config struct {
	Storage    dbconfig.DBConfiguration `yaml:"Storage"`
	Logger     Logger                   `yaml:"Logger"`
	ScriptHash string                   `yaml:"ScriptHash"`
	Aliases    map[string]string        `yaml:"Aliases"`
}

// Logger configures the zap logger.
type Logger struct {
	Level    string `yaml:"Level"`
	Encoding string `yaml:"Encoding"`
}

// Default returns configuration with all defaults applied.
func Default() Config {
	var c Config
	c.applyDefaults()
	return c
}

// Load reads YAML configuration from the file, applies defaults and
// validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates the
// result. Unknown fields are rejected.
func Parse(data []byte) (Config, error) {
	var c Config

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(&c)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode YAML config: %w", err)
	}

	c.applyDefaults()

	if err = c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

// Save writes configuration to the file in YAML.
func Save(path string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode YAML config: %w", err)
	}

	err = os.WriteFile(path, data, configFileMode)
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Type == "" {
		c.Storage.Type = DefaultStorageType
	}

	switch c.Storage.Type {
	case store.BoltDB:
		if c.Storage.BoltDBOptions.FilePath == "" {
			c.Storage.BoltDBOptions.FilePath = DefaultBoltDBFile
		}
	case store.LevelDB:
		if c.Storage.LevelDBOptions.DataDirectoryPath == "" {
			c.Storage.LevelDBOptions.DataDirectoryPath = DefaultLevelDBDir
		}
	}

	if c.Logger.Level == "" {
		c.Logger.Level = DefaultLogLevel
	}

	if c.Logger.Encoding == "" {
		c.Logger.Encoding = DefaultLogEncoding
	}
}

// Validate checks configuration consistency.
func (c Config) Validate() error {
	switch c.Storage.Type {
	case store.InMemory, store.BoltDB, store.LevelDB:
	default:
		return fmt.Errorf("unsupported storage type '%s'", c.Storage.Type)
	}

	if _, err := zapcore.ParseLevel(c.Logger.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	switch c.Logger.Encoding {
	case encodingConsole, encodingJSON:
	default:
		return fmt.Errorf("unsupported log encoding '%s'", c.Logger.Encoding)
	}

	if _, err := c.Emitter(); err != nil {
		return err
	}

	return nil
}

// Emitter returns script hash attached to host notifications. Empty
// ScriptHash yields zero hash.
func (c Config) Emitter() (util.Uint160, error) {
	if c.ScriptHash == "" {
		return util.Uint160{}, nil
	}

	h, err := util.Uint160DecodeStringLE(c.ScriptHash)
	if err != nil {
		return util.Uint160{}, fmt.Errorf("invalid ScriptHash '%s': %w", c.ScriptHash, err)
	}

	return h, nil
}

// Build constructs zap logger described by the configuration.
func (l Logger) Build() (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.Level = zap.NewAtomicLevelAt(lvl)
	cc.Encoding = l.Encoding
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	log, err := cc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return log, nil
}
