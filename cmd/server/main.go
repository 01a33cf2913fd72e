// Command server runs the agentviz visualization backend.
//
// Configuration is layered: built-in defaults, a YAML config file
// (-config flag, AGENTVIZ_CONFIG, ./config.yaml, /etc/agentviz/config.yaml),
// then AGENTVIZ_* environment variable overrides. A .env file in the
// working directory is loaded into the environment first.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"sigs.k8s.io/controller-runtime/pkg/client"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"

	"github.com/agentviz/agentviz/pkg/auth"
	"github.com/agentviz/agentviz/pkg/auth/apikey"
	jwtauth "github.com/agentviz/agentviz/pkg/auth/jwt"
	"github.com/agentviz/agentviz/pkg/auth/noop"
	"github.com/agentviz/agentviz/pkg/config"
	"github.com/agentviz/agentviz/pkg/debug"
	"github.com/agentviz/agentviz/pkg/engine"
	"github.com/agentviz/agentviz/pkg/jobs"
	"github.com/agentviz/agentviz/pkg/provider"
	"github.com/agentviz/agentviz/pkg/provider/groq"
	"github.com/agentviz/agentviz/pkg/provider/ollama"
	"github.com/agentviz/agentviz/pkg/sandbox"
	"github.com/agentviz/agentviz/pkg/sandbox/kubernetes"
	"github.com/agentviz/agentviz/pkg/storage"
	"github.com/agentviz/agentviz/pkg/storage/memory"
	"github.com/agentviz/agentviz/pkg/storage/postgres"
	transporthttp "github.com/agentviz/agentviz/pkg/transport/http"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	// Best effort; a missing .env is not an error.
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	debug.Init("", "")
	logger := slog.Default()

	catalog, err := buildCatalog(cfg, logger)
	if err != nil {
		return err
	}
	defer catalog.Close()

	refreshCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	catalog.Refresh(refreshCtx)
	cancel()

	store, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	executor, err := buildExecutor(cfg, logger)
	if err != nil {
		return err
	}

	registry := jobs.NewRegistry()
	activity := jobs.NewActivityLog(0)

	eng, err := engine.New(catalog, executor, store, registry, activity, logger, engine.Config{
		MaxRounds:           cfg.Engine.MaxRounds,
		DefaultAnalystModel: cfg.Engine.DefaultAnalystModel,
		DefaultCoderModel:   cfg.Engine.DefaultCoderModel,
	})
	if err != nil {
		return fmt.Errorf("creating engine: %w", err)
	}

	authMW, err := buildAuthMiddleware(cfg)
	if err != nil {
		return err
	}

	srv := transporthttp.NewServer(eng, eng, catalog, registry, activity, store,
		transporthttp.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transporthttp.WithUploadDir(cfg.Dataset.UploadDir),
		transporthttp.WithMaxBodySize(cfg.Dataset.MaxSizeBytes),
		transporthttp.WithLogger(logger),
		transporthttp.WithHTTPMiddleware(authMW),
	)

	logger.Info("agentviz backend starting",
		"port", cfg.Server.Port,
		"sandbox_mode", cfg.Sandbox.Mode,
		"storage", cfg.Storage.Type,
		"auth", cfg.Auth.Type,
	)
	return srv.ListenAndServe()
}

func buildCatalog(cfg *config.Config, logger *slog.Logger) (*provider.Catalog, error) {
	var groqProv provider.Provider
	if cfg.Providers.Groq.APIKey != "" {
		p, err := groq.New(groq.Config{
			BaseURL: cfg.Providers.Groq.BaseURL,
			APIKey:  cfg.Providers.Groq.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("creating groq provider: %w", err)
		}
		groqProv = p
	} else {
		logger.Info("no Groq API key configured, using Ollama only")
	}

	ollamaProv, err := ollama.New(ollama.Config{
		BaseURL: cfg.Providers.Ollama.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ollama provider: %w", err)
	}

	return provider.NewCatalog(groqProv, ollamaProv, cfg.Engine.DefaultAnalystModel, logger), nil
}

func buildStore(cfg *config.Config, logger *slog.Logger) (storage.JobStore, error) {
	switch cfg.Storage.Type {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		store, err := postgres.New(ctx, postgres.Config{
			DSN:            cfg.Storage.Postgres.DSN,
			MaxConns:       cfg.Storage.Postgres.MaxConns,
			MigrateOnStart: cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("connecting to postgres: %w", err)
		}
		logger.Info("storage enabled", "type", "postgres")
		return store, nil
	default:
		logger.Info("storage enabled", "type", "memory", "max_size", cfg.Storage.MaxSize)
		return memory.New(cfg.Storage.MaxSize), nil
	}
}

func buildExecutor(cfg *config.Config, logger *slog.Logger) (sandbox.Executor, error) {
	switch cfg.Sandbox.Mode {
	case "remote":
		return sandbox.NewRemoteRunner(cfg.Sandbox.RemoteURL), nil
	case "kubernetes":
		scheme, err := kubernetes.NewScheme()
		if err != nil {
			return nil, err
		}
		restCfg, err := ctrlconfig.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("loading kubeconfig: %w", err)
		}
		cl, err := client.New(restCfg, client.Options{Scheme: scheme})
		if err != nil {
			return nil, fmt.Errorf("creating kubernetes client: %w", err)
		}
		acq := kubernetes.NewClaimAcquirer(cl,
			cfg.Sandbox.Kubernetes.Template,
			cfg.Sandbox.Kubernetes.Namespace,
			cfg.Sandbox.Kubernetes.ReadyTimeout)
		return sandbox.NewAcquiredRunner(acq.Acquire), nil
	default:
		return sandbox.NewRunner(cfg.Sandbox.PythonBin, cfg.Sandbox.Timeout, cfg.Sandbox.MaxOutputBytes, logger), nil
	}
}

func buildAuthMiddleware(cfg *config.Config) (func(http.Handler) http.Handler, error) {
	var authenticators []auth.Authenticator
	switch cfg.Auth.Type {
	case "apikey":
		entries := make([]apikey.RawKeyEntry, 0, len(cfg.Auth.APIKeys))
		for _, k := range cfg.Auth.APIKeys {
			entries = append(entries, apikey.RawKeyEntry{
				Key: k.Key,
				Identity: auth.Identity{
					Subject:     k.Subject,
					ServiceTier: "default",
				},
			})
		}
		authenticators = append(authenticators, apikey.New(entries))
	case "jwt":
		a, err := jwtauth.New(jwtauth.Config{
			Secret: cfg.Auth.JWT.Secret,
			Issuer: cfg.Auth.JWT.Issuer,
		})
		if err != nil {
			return nil, fmt.Errorf("configuring jwt auth: %w", err)
		}
		authenticators = append(authenticators, a)
	default:
		authenticators = append(authenticators, &noop.Authenticator{})
	}

	chain := &auth.AuthChain{
		Authenticators:  authenticators,
		DefaultDecision: auth.No,
	}
	return auth.Middleware(chain, nil, auth.DefaultBypassEndpoints), nil
}
