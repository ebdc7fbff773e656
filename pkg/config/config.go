// Package config provides functionality for loading and saving configuration
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/uberswe/domaingen/pkg/domain"
)

// DefaultConfigFileName is the default name for the configuration file
const DefaultConfigFileName = "config.json"

// Load builds the configuration from the defaults, the config file, a .env
// file in the working directory and finally the environment.
// A missing config file is not an error.
func Load(configFileName string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	data, err := os.ReadFile(configFileName)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Warn().Str("file", configFileName).Msg("Configuration file not found, using defaults and environment variables")
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := unmarshal(configFileName, data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to read .env file")
	}
	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Save saves the configuration to the config file, as YAML when the file
// name ends in .yaml or .yml and as JSON otherwise
func Save(config *domain.Config, configFileName string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(configFileName) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configFileName, data, 0600)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func unmarshal(name string, data []byte, config *domain.Config) error {
	if isYAML(name) {
		return yaml.Unmarshal(data, config)
	}
	return json.Unmarshal(data, config)
}

func isYAML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".yaml" || ext == ".yml"
}
