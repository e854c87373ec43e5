// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"

	"github.com/ava-labs/counterprogram/api/ws"
	"github.com/ava-labs/counterprogram/codec"
	"github.com/ava-labs/counterprogram/pebble"
	"github.com/ava-labs/counterprogram/runtime"
	"github.com/ava-labs/counterprogram/server"
	"github.com/ava-labs/counterprogram/storage"
	"github.com/ava-labs/counterprogram/trace"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "COUNTER_"

const (
	defaultDataDir = ".counter"
	logDir         = "logs"
	indexFile      = "counter.db"
)

var (
	ErrInvalidConfig = errors.New("invalid config")

	// DefaultProgramID is the address the counter program is deployed at
	// unless configured otherwise.
	DefaultProgramID = codec.Address{
		'c', 'o', 'u', 'n', 't', 'e', 'r',
	}
)

type Config struct {
	// DataDir holds the ledger, the index and the logs.
	DataDir string `yaml:"dataDir" env:"DATA_DIR"`

	LogLevel        string `yaml:"logLevel" env:"LOG_LEVEL"`
	LogDisplayLevel string `yaml:"logDisplayLevel" env:"LOG_DISPLAY_LEVEL"`
	// LogDir defaults to <DataDir>/logs.
	LogDir string `yaml:"logDir" env:"LOG_DIR"`

	ProgramID codec.Address `yaml:"programId" env:"PROGRAM_ID"`

	Rent   runtime.Rent  `yaml:"rent" envPrefix:"RENT_"`
	Pebble pebble.Config `yaml:"pebble"`
	HTTP   server.Config `yaml:"http" envPrefix:"HTTP_"`
	Trace  trace.Config  `yaml:"trace" envPrefix:"TRACE_"`
	Index  IndexConfig   `yaml:"index" envPrefix:"INDEX_"`
	WS     ws.Config     `yaml:"websocket"`
}

type IndexConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Path defaults to <DataDir>/index/counter.db.
	Path string `yaml:"path" env:"PATH"`
}

func NewDefaultConfig() Config {
	dataDir := defaultDataDir
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, defaultDataDir)
	}
	return Config{
		DataDir:         dataDir,
		LogLevel:        logging.Info.String(),
		LogDisplayLevel: logging.Off.String(),
		ProgramID:       DefaultProgramID,
		Rent:            runtime.DefaultRent(),
		Pebble:          pebble.NewDefaultConfig(),
		HTTP:            server.NewDefaultConfig(),
		Trace: trace.Config{
			TraceSampleRate: 1,
			Endpoint:        trace.DefaultEndpoint,
			AppName:         "counter",
			Agent:           "counter-cli",
		},
		Index: IndexConfig{Enabled: true},
		WS:    ws.NewDefaultConfig(),
	}
}

// Load reads the YAML file at [path] over the defaults and then applies
// COUNTER_* environment overrides. An empty [path] skips the file.
func Load(path string) (Config, error) {
	c := NewDefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.UnmarshalStrict(b, &c); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
	}
	if err := env.ParseWithOptions(&c, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("%w: parse env: %w", ErrInvalidConfig, err)
	}
	return c, c.Verify()
}

func (c *Config) Verify() error {
	if c.DataDir == "" {
		return fmt.Errorf("%w: empty data dir", ErrInvalidConfig)
	}
	if c.ProgramID == runtime.SystemProgramID {
		return fmt.Errorf("%w: program id collides with the system program", ErrInvalidConfig)
	}
	if _, err := logging.ToLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := logging.ToLevel(c.LogDisplayLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Rent.LamportsPerByteYear == 0 || c.Rent.ExemptionThreshold == 0 {
		return fmt.Errorf("%w: rent must be positive", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) LedgerPath() string {
	return filepath.Join(c.DataDir, storage.LedgerNamespace)
}

func (c *Config) LogPath() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return filepath.Join(c.DataDir, logDir)
}

func (c *Config) IndexPath() string {
	if c.Index.Path != "" {
		return c.Index.Path
	}
	return filepath.Join(c.DataDir, storage.IndexNamespace, indexFile)
}
