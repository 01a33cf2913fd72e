package provider

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/agentviz/agentviz/pkg/api"
)

// ollamaPrefix marks model identifiers served by the local runtime.
const ollamaPrefix = "ollama:"

// Catalog merges the models of the hosted backend and the local
// fallback runtime, and routes each completion to the backend that
// serves the chosen model. Either provider may be nil when not
// configured; the catalog degrades to whatever is left.
type Catalog struct {
	groq   Provider
	ollama Provider
	logger *slog.Logger

	mu     sync.RWMutex
	models map[string]ModelInfo
}

// NewCatalog creates a catalog over the configured providers, seeded
// with defaultModel so a completion can be requested before the first
// successful refresh.
func NewCatalog(groq, ollama Provider, defaultModel string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Catalog{
		groq:   groq,
		ollama: ollama,
		logger: logger,
		models: map[string]ModelInfo{},
	}
	if defaultModel != "" {
		c.models[defaultModel] = ModelInfo{
			ID:          defaultModel,
			DisplayName: defaultModel,
			Source:      "groq",
		}
	}
	return c
}

// Refresh re-fetches the model lists from both backends. Embedding
// models are filtered out; they cannot chat. A backend that fails to
// answer contributes nothing but does not fail the refresh, so the
// seeded default survives a fully offline start.
func (c *Catalog) Refresh(ctx context.Context) {
	found := map[string]ModelInfo{}

	if c.groq != nil {
		models, err := c.groq.ListModels(ctx)
		if err != nil {
			c.logger.Warn("fetching hosted models failed", "error", err)
		}
		for _, m := range models {
			if strings.Contains(strings.ToLower(m.ID), "embedding") {
				continue
			}
			found[m.ID] = m
		}
	}

	if c.ollama != nil {
		models, err := c.ollama.ListModels(ctx)
		if err != nil {
			c.logger.Debug("local runtime not available", "error", err)
		}
		for _, m := range models {
			found[m.ID] = m
		}
	}

	if len(found) == 0 {
		c.logger.Warn("no models discovered, keeping current catalog")
		return
	}

	c.mu.Lock()
	c.models = found
	c.mu.Unlock()
	c.logger.Info("model catalog refreshed", "models", len(found))
}

// Models returns the catalog sorted by identifier.
func (c *Catalog) Models() []ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]ModelInfo, 0, len(c.models))
	for _, m := range c.models {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Has reports whether the catalog knows the model identifier.
func (c *Catalog) Has(id string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.models[id]
	return ok
}

// Resolve picks the provider serving the given model identifier and
// the backend-local model name to request from it. Models prefixed
// "ollama:" go to the local runtime. Unprefixed models go to the
// hosted backend when it is configured; without a hosted credential
// the first local model stands in, matching the original fallback.
func (c *Catalog) Resolve(modelID string) (Provider, string, *api.APIError) {
	if strings.HasPrefix(modelID, ollamaPrefix) {
		if c.ollama == nil {
			return nil, "", api.NewModelError("local model requested but no Ollama runtime is configured")
		}
		return c.ollama, strings.TrimPrefix(modelID, ollamaPrefix), nil
	}

	if c.groq != nil {
		return c.groq, modelID, nil
	}

	if c.ollama != nil {
		if fallback := c.firstLocalModel(); fallback != "" {
			c.logger.Warn("no hosted credential, falling back to local model",
				"requested", modelID, "fallback", fallback)
			return c.ollama, strings.TrimPrefix(fallback, ollamaPrefix), nil
		}
	}

	return nil, "", api.NewModelError("no valid API key for Groq and no Ollama models available")
}

func (c *Catalog) firstLocalModel() string {
	for _, m := range c.Models() {
		if strings.HasPrefix(m.ID, ollamaPrefix) {
			return m.ID
		}
	}
	return ""
}

// Close closes both providers.
func (c *Catalog) Close() error {
	if c.groq != nil {
		c.groq.Close()
	}
	if c.ollama != nil {
		c.ollama.Close()
	}
	return nil
}
