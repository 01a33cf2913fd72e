package config

import (
	"errors"
	"fmt"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	// server.port must be positive.
	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// engine.max_rounds must be positive.
	if c.Engine.MaxRounds <= 0 {
		errs = append(errs, fmt.Errorf("engine.max_rounds must be > 0, got %d", c.Engine.MaxRounds))
	}

	// sandbox.mode must be a known value.
	switch c.Sandbox.Mode {
	case "local", "remote", "kubernetes":
		// valid
	default:
		errs = append(errs, fmt.Errorf("sandbox.mode must be \"local\", \"remote\", or \"kubernetes\", got %q", c.Sandbox.Mode))
	}

	// If sandbox.mode is "remote", the URL must be set.
	if c.Sandbox.Mode == "remote" && c.Sandbox.RemoteURL == "" {
		errs = append(errs, fmt.Errorf("sandbox.remote_url is required when sandbox.mode is \"remote\""))
	}

	// If sandbox.mode is "kubernetes", a template must be set.
	if c.Sandbox.Mode == "kubernetes" && c.Sandbox.Kubernetes.Template == "" {
		errs = append(errs, fmt.Errorf("sandbox.kubernetes.template is required when sandbox.mode is \"kubernetes\""))
	}

	if c.Sandbox.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("sandbox.timeout must be > 0, got %s", c.Sandbox.Timeout))
	}

	// storage.type must be a known value.
	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	// If storage.type is "postgres", DSN or DSNFile must be set.
	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// auth.type must be a known value.
	switch c.Auth.Type {
	case "none", "apikey", "jwt":
		// valid
	default:
		errs = append(errs, fmt.Errorf("auth.type must be \"none\", \"apikey\", or \"jwt\", got %q", c.Auth.Type))
	}

	// auth.type=jwt needs a secret to verify signatures with.
	if c.Auth.Type == "jwt" && c.Auth.JWT.Secret == "" && c.Auth.JWT.SecretFile == "" {
		errs = append(errs, fmt.Errorf("auth.jwt.secret or auth.jwt.secret_file is required when auth.type is \"jwt\""))
	}

	return errors.Join(errs...)
}
