package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, AGENTVIZ_CONFIG env, ./config.yaml, /etc/agentviz/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	// Start with defaults.
	cfg := Defaults()

	// Discover and load YAML config file.
	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	// Apply environment variable overrides.
	applyEnvOverrides(&cfg)

	// Resolve _file references.
	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	// Validate.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. AGENTVIZ_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/agentviz/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	// Explicit path takes priority.
	if configPath != "" {
		return configPath
	}

	// Check AGENTVIZ_CONFIG env var.
	if envPath := os.Getenv("AGENTVIZ_CONFIG"); envPath != "" {
		return envPath
	}

	// Check common locations.
	candidates := []string{
		"config.yaml",
		"/etc/agentviz/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps AGENTVIZ_* environment variables to config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AGENTVIZ_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("AGENTVIZ_GROQ_API_KEY"); v != "" {
		cfg.Providers.Groq.APIKey = v
	}
	// GROQ_API_KEY without the prefix is honored too, matching what the
	// Groq SDKs read.
	if cfg.Providers.Groq.APIKey == "" {
		if v := os.Getenv("GROQ_API_KEY"); v != "" {
			cfg.Providers.Groq.APIKey = v
		}
	}
	if v := os.Getenv("AGENTVIZ_GROQ_BASE_URL"); v != "" {
		cfg.Providers.Groq.BaseURL = v
	}
	if v := os.Getenv("AGENTVIZ_OLLAMA_BASE_URL"); v != "" {
		cfg.Providers.Ollama.BaseURL = v
	}
	if v := os.Getenv("AGENTVIZ_MAX_ROUNDS"); v != "" {
		if rounds, err := strconv.Atoi(v); err == nil {
			cfg.Engine.MaxRounds = rounds
		}
	}
	if v := os.Getenv("AGENTVIZ_SANDBOX_MODE"); v != "" {
		cfg.Sandbox.Mode = v
	}
	if v := os.Getenv("AGENTVIZ_SANDBOX_URL"); v != "" {
		cfg.Sandbox.RemoteURL = v
	}
	if v := os.Getenv("AGENTVIZ_PYTHON_BIN"); v != "" {
		cfg.Sandbox.PythonBin = v
	}
	if v := os.Getenv("AGENTVIZ_SANDBOX_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Sandbox.Timeout = d
		}
	}
	if v := os.Getenv("AGENTVIZ_UPLOAD_DIR"); v != "" {
		cfg.Dataset.UploadDir = v
	}
	if v := os.Getenv("AGENTVIZ_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("AGENTVIZ_STORAGE_SIZE"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			cfg.Storage.MaxSize = size
		}
	}
	if v := os.Getenv("AGENTVIZ_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("AGENTVIZ_AUTH_TYPE"); v != "" {
		cfg.Auth.Type = v
	}
	if v := os.Getenv("AGENTVIZ_JWT_SECRET"); v != "" {
		cfg.Auth.JWT.Secret = v
	}

	// AGENTVIZ_API_KEYS: JSON array of API key configs.
	if v := os.Getenv("AGENTVIZ_API_KEYS"); v != "" {
		keys, err := parseAPIKeysJSON(v)
		if err == nil && len(keys) > 0 {
			cfg.Auth.APIKeys = keys
		}
	}
}

// parseAPIKeysJSON parses a JSON array of API key configurations.
func parseAPIKeysJSON(jsonStr string) ([]APIKeyConfig, error) {
	var keys []APIKeyConfig
	if err := json.Unmarshal([]byte(jsonStr), &keys); err != nil {
		return nil, fmt.Errorf("parsing API keys JSON: %w", err)
	}
	return keys, nil
}

// resolveFileReferences reads _file fields and populates the corresponding value fields.
// For each field ending in _file, if the value field is empty and the file field is set,
// the file is read, whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	// providers.groq.api_key_file -> providers.groq.api_key
	if cfg.Providers.Groq.APIKeyFile != "" && cfg.Providers.Groq.APIKey == "" {
		val, err := readSecretFile(cfg.Providers.Groq.APIKeyFile)
		if err != nil {
			return fmt.Errorf("providers.groq.api_key_file: %w", err)
		}
		cfg.Providers.Groq.APIKey = val
	}

	// storage.postgres.dsn_file -> storage.postgres.dsn
	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	// auth.jwt.secret_file -> auth.jwt.secret
	if cfg.Auth.JWT.SecretFile != "" && cfg.Auth.JWT.Secret == "" {
		val, err := readSecretFile(cfg.Auth.JWT.SecretFile)
		if err != nil {
			return fmt.Errorf("auth.jwt.secret_file: %w", err)
		}
		cfg.Auth.JWT.Secret = val
	}

	// auth.api_keys[*].key_file -> auth.api_keys[*].key
	for i := range cfg.Auth.APIKeys {
		if cfg.Auth.APIKeys[i].KeyFile != "" && cfg.Auth.APIKeys[i].Key == "" {
			val, err := readSecretFile(cfg.Auth.APIKeys[i].KeyFile)
			if err != nil {
				return fmt.Errorf("auth.api_keys[%d].key_file: %w", i, err)
			}
			cfg.Auth.APIKeys[i].Key = val
		}
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
