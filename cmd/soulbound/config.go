package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/aura-nw/soulbound/agreement"
	"github.com/aura-nw/soulbound/internal/kvstore"
	"github.com/nspcc-dev/neo-go/pkg/core/storage/dbconfig"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config is the application configuration read from YAML.
type Config struct {
	Contract ContractConfig `yaml:"Contract"`
	Storage  kvstore.Config `yaml:"Storage"`
	Logger   LoggerConfig   `yaml:"Logger"`
}

// ContractConfig describes the ledger served by the application.
type ContractConfig struct {
	Name          string `yaml:"Name"`
	Symbol        string `yaml:"Symbol"`
	Minter        string `yaml:"Minter"`
	AddressPrefix string `yaml:"AddressPrefix"`
}

// LoggerConfig configures zap logger.
type LoggerConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"Level"`
	// Encoding is either console or json.
	Encoding string `yaml:"Encoding"`
}

func defaultConfig() Config {
	var cfg Config
	cfg.Contract.AddressPrefix = agreement.DefaultPrefix
	cfg.Storage.Type = dbconfig.InMemoryDB
	cfg.Logger.Level = "info"
	cfg.Logger.Encoding = "console"
	return cfg
}

// loadConfig reads configuration from the file. Empty path results in
// default configuration.
func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err = dec.Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("decode config file '%s': %w", path, err)
	}

	return cfg, nil
}

func newLogger(cfg LoggerConfig) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("logger level: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = lvl
	zc.Encoding = cfg.Encoding
	zc.OutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true
	if cfg.Encoding == "console" {
		zc.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}

	return zc.Build()
}
