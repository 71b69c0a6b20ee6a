package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/maksimkurb/keen-targets/src/internal/log"
)

// LoadConfig reads a TOML configuration file, or a YAML one when the file
// name ends in .yaml or .yml. Missing sections get their defaults and file
// entries are resolved relative to the config file directory.
func LoadConfig(configPath string) (*Config, error) {
	configFile := filepath.Clean(configPath)

	if !filepath.IsAbs(configFile) {
		if path, err := filepath.Abs(configFile); err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %v", err)
		} else {
			configFile = path
		}
	}

	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configFile)
	}

	content, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %v", err)
	}

	config, err := parseConfig(content, configFile)
	if err != nil {
		return nil, err
	}

	config._absConfigFilePath = configFile
	config.ApplyDefaults()
	config.ResolveRelativePaths()

	log.Debugf("Configuration file path: %s", configFile)

	return config, nil
}

func parseConfig(content []byte, configFile string) (*Config, error) {
	var config Config

	switch strings.ToLower(filepath.Ext(configFile)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(content, &config); err != nil {
			var terr *yaml.TypeError
			if errors.As(err, &terr) {
				for _, msg := range terr.Errors {
					log.Errorf("%s", msg)
				}
				return nil, fmt.Errorf("failed to parse config file")
			}
			return nil, fmt.Errorf("failed to parse config file: %v", err)
		}
	default:
		if err := toml.Unmarshal(content, &config); err != nil {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				log.Errorf("%s", derr.String())
				row, col := derr.Position()
				log.Errorf("Error at line %d, column %d", row, col)
				return nil, fmt.Errorf("failed to parse config file")
			}
			return nil, fmt.Errorf("failed to parse config file: %v", err)
		}
	}

	return &config, nil
}
