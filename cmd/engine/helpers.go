package main

import (
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"bdintel-engine/internal/config"
	"bdintel-engine/internal/dictionary"
	"bdintel-engine/internal/logging"
)

// loadConfig resolves the config path (flag, else <dataDir>/config.yml
// bootstrapped from ./config/config.yml) and validates it.
func loadConfig(dir string) (config.Config, error) {
	path := flagConfig
	if path == "" {
		var err error
		path, err = config.EnsureUserConfig(dir, filepath.Join("config", "config.yml"))
		if err != nil {
			// no shipped default around; run on built-ins
			cfg, res := config.NormalizeAndValidate(config.Default())
			if !res.OK() {
				return cfg, fmt.Errorf("default config invalid: %v", res.Errors)
			}
			return cfg, nil
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("config load (%s): %w", path, err)
	}
	cfg, res := config.NormalizeAndValidate(cfg)
	if !res.OK() {
		return cfg, fmt.Errorf("config invalid (%s): %v", path, res.Errors)
	}
	return cfg, nil
}

func newLogger(cfg config.Config) (*zap.SugaredLogger, error) {
	return logging.New(cfg.Logging.Level, cfg.Logging.Development)
}

func loadDictionary(path string, log *zap.SugaredLogger) (*dictionary.Dictionary, error) {
	dict, err := dictionary.Load(path)
	if err != nil {
		return nil, err
	}
	log.Infof("[dict] loaded programs=%d from %s", dict.Len(), path)
	return dict, nil
}
