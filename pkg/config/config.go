// Package config provides unified configuration for the agentviz backend.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (AGENTVIZ_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import "time"

// Config holds all configuration for the agentviz backend.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Providers     ProvidersConfig     `yaml:"providers"`
	Engine        EngineConfig        `yaml:"engine"`
	Sandbox       SandboxConfig       `yaml:"sandbox"`
	Dataset       DatasetConfig       `yaml:"dataset"`
	Storage       StorageConfig       `yaml:"storage"`
	Auth          AuthConfig          `yaml:"auth"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         int           `yaml:"port"`          // default: 8080
	ReadTimeout  time.Duration `yaml:"read_timeout"`  // default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"` // default: 300s
}

// ProvidersConfig holds LLM provider connection settings. Groq is the
// primary provider; Ollama is the local fallback used when no Groq API
// key is configured or Groq is unreachable.
type ProvidersConfig struct {
	Groq   GroqConfig   `yaml:"groq"`
	Ollama OllamaConfig `yaml:"ollama"`
}

// GroqConfig holds Groq API settings.
type GroqConfig struct {
	BaseURL    string `yaml:"base_url"`     // default: https://api.groq.com/openai/v1
	APIKey     string `yaml:"api_key"`      // optional
	APIKeyFile string `yaml:"api_key_file"` // _file variant for api_key
}

// OllamaConfig holds local Ollama settings.
type OllamaConfig struct {
	BaseURL string `yaml:"base_url"` // default: http://localhost:11434
}

// EngineConfig holds conversation orchestration settings.
type EngineConfig struct {
	MaxRounds           int    `yaml:"max_rounds"`            // default: 10
	DefaultAnalystModel string `yaml:"default_analyst_model"` // default: llama-3.3-70b-versatile
	DefaultCoderModel   string `yaml:"default_coder_model"`   // default: llama-3.3-70b-versatile
}

// SandboxConfig holds Python code execution settings.
type SandboxConfig struct {
	Mode           string        `yaml:"mode"`            // "local", "remote", or "kubernetes", default: "local"
	PythonBin      string        `yaml:"python_bin"`      // default: "python3"
	Timeout        time.Duration `yaml:"timeout"`         // per-execution wall clock, default: 60s
	RemoteURL      string        `yaml:"remote_url"`      // for mode=remote
	MaxOutputBytes int           `yaml:"max_output_bytes"` // default: 1MB
	Kubernetes     KubernetesSandboxConfig `yaml:"kubernetes"`
}

// KubernetesSandboxConfig holds settings for claim-based sandbox pods.
type KubernetesSandboxConfig struct {
	Namespace    string        `yaml:"namespace"`     // default: "default"
	Template     string        `yaml:"template"`      // SandboxTemplate name
	ReadyTimeout time.Duration `yaml:"ready_timeout"` // default: 120s
}

// DatasetConfig holds dataset upload and parsing settings.
type DatasetConfig struct {
	UploadDir    string `yaml:"upload_dir"`     // default: "./uploads"
	MaxSizeBytes int64  `yaml:"max_size_bytes"` // default: 50MB
}

// StorageConfig holds job persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"`     // "memory" or "postgres", default: "memory"
	MaxSize  int            `yaml:"max_size"` // for memory store, default: 100
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN            string `yaml:"dsn"`
	DSNFile        string `yaml:"dsn_file"`         // _file variant for dsn
	MaxConns       int32  `yaml:"max_conns"`        // default: 25
	MigrateOnStart bool   `yaml:"migrate_on_start"` // default: false
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	Type    string         `yaml:"type"`     // "none", "apikey", or "jwt", default: "none"
	APIKeys []APIKeyConfig `yaml:"api_keys"` // API key entries for type=apikey
	JWT     JWTConfig      `yaml:"jwt"`
}

// APIKeyConfig describes a single API key entry.
type APIKeyConfig struct {
	Key     string `yaml:"key"`
	KeyFile string `yaml:"key_file"` // _file variant for key
	Subject string `yaml:"subject"`
}

// JWTConfig holds JWT validation settings for auth.type=jwt.
type JWTConfig struct {
	Secret     string `yaml:"secret"`
	SecretFile string `yaml:"secret_file"` // _file variant for secret
	Issuer     string `yaml:"issuer"`
}

// Defaults returns a Config with all default values filled in.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 300 * time.Second,
		},
		Providers: ProvidersConfig{
			Groq: GroqConfig{
				BaseURL: "https://api.groq.com/openai/v1",
			},
			Ollama: OllamaConfig{
				BaseURL: "http://localhost:11434",
			},
		},
		Engine: EngineConfig{
			MaxRounds:           10,
			DefaultAnalystModel: "llama-3.3-70b-versatile",
			DefaultCoderModel:   "llama-3.3-70b-versatile",
		},
		Sandbox: SandboxConfig{
			Mode:           "local",
			PythonBin:      "python3",
			Timeout:        60 * time.Second,
			MaxOutputBytes: 1024 * 1024,
			Kubernetes: KubernetesSandboxConfig{
				Namespace:    "default",
				ReadyTimeout: 120 * time.Second,
			},
		},
		Dataset: DatasetConfig{
			UploadDir:    "./uploads",
			MaxSizeBytes: 50 * 1024 * 1024,
		},
		Storage: StorageConfig{
			Type:    "memory",
			MaxSize: 100,
			Postgres: PostgresConfig{
				MaxConns: 25,
			},
		},
		Auth: AuthConfig{
			Type: "none",
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
