package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v2"
)

// LoadConfig loads an aideck config file from the specified directory
func LoadConfig(configDir string) (*AideckConfig, error) {
	// configDir should always be a directory path
	if configDir == "" {
		return nil, fmt.Errorf("config directory is required")
	}

	foundFile, err := FindConfigFile(configDir)
	if err != nil {
		return nil, fmt.Errorf("no aideck config file (yaml/toml/json) found in %s", configDir)
	}

	return LoadConfigFile(foundFile)
}

// LoadConfigFile loads a specific aideck config file
func LoadConfigFile(filePath string) (*AideckConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	fileExt := strings.ToLower(filepath.Ext(filePath))

	var config AideckConfig
	switch fileExt {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file %s: %w", filePath, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file %s: %w", filePath, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file %s: %w", filePath, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", fileExt)
	}

	return &config, nil
}

// FindConfigFile searches for aideck config files (yaml/toml/json) in the specified directory
func FindConfigFile(searchPath string) (string, error) {
	if searchPath == "" {
		return "", fmt.Errorf("search path is required")
	}

	for _, configFile := range SupportedAideckConfigFiles {
		fullPath := filepath.Join(searchPath, configFile)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("no aideck config file (yaml/toml/json) found in %s", searchPath)
}

// IsConfigFile checks if the given file path is an aideck config file
func IsConfigFile(filePath string) bool {
	baseName := filepath.Base(filePath)

	for _, configFile := range SupportedAideckConfigFiles {
		if baseName == configFile {
			return true
		}
	}
	return false
}

// SaveConfig saves an aideck.yaml configuration file
func SaveConfig(config *AideckConfig, configPath string) error {
	// If no path specified, save to aideck.yaml in current directory
	if configPath == "" {
		configPath = "aideck.yaml"
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
