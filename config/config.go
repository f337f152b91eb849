// Package config loads the assistant's runtime configuration from a YAML
// file, with environment variables filling in anything the file leaves out.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the file or environment leaves a knob unset.
const (
	DefaultProvider        = "openai"
	DefaultOpenAIModel     = "gpt-4o-mini"
	DefaultAnthropicModel  = "claude-sonnet-4-20250514"
	DefaultCommerceBaseURL = "https://localhost:9002/occ/v2"
	DefaultQdrantURL       = "http://localhost:6333"
	DefaultOllamaURL       = "http://localhost:11434"
	DefaultWindow          = 6
	DefaultMaxSteps        = 100
)

// ModelConfig selects the chat model backing the agents.
type ModelConfig struct {
	// Provider is "openai" or "anthropic". OpenAI-compatible servers
	// (LM Studio, vLLM) use "openai" with a custom BaseURL.
	Provider string `yaml:"provider"`
	Name     string `yaml:"name"`
	BaseURL  string `yaml:"base_url"`
	APIKey   string `yaml:"api_key"`
}

// CommerceConfig points at the storefront's OCC REST API.
type CommerceConfig struct {
	BaseURL string `yaml:"base_url"`
	Site    string `yaml:"site"`
	User    string `yaml:"user"`
	// Insecure skips TLS certificate verification, for self-signed
	// local storefronts.
	Insecure bool `yaml:"insecure"`
}

// VectorSearchConfig points at the product embedding index.
type VectorSearchConfig struct {
	// Enabled gates the vector_search tool; the assistant works without
	// it using keyword search only.
	Enabled    bool   `yaml:"enabled"`
	QdrantURL  string `yaml:"qdrant_url"`
	Collection string `yaml:"collection"`
	OllamaURL  string `yaml:"ollama_url"`
	EmbedModel string `yaml:"embed_model"`
}

// MCPServerConfig describes one external MCP tool server.
type MCPServerConfig struct {
	Name string `yaml:"name"`
	// Endpoint is an SSE URL. Command, when set instead, launches the
	// server as a subprocess speaking stdio.
	Endpoint string   `yaml:"endpoint"`
	Command  string   `yaml:"command"`
	Args     []string `yaml:"args"`
}

// EngineConfig tunes the orchestration loop.
type EngineConfig struct {
	// Window is how many trailing messages each agent sees per model call.
	Window int `yaml:"window"`
	// MaxSteps caps state transitions per turn.
	MaxSteps int `yaml:"max_steps"`
}

// SessionConfig selects where conversation state is checkpointed.
type SessionConfig struct {
	// Dir, when set, stores sessions as JSON files under this directory
	// so conversations survive restarts. Empty keeps them in memory.
	Dir string `yaml:"dir"`
}

// Config is the root document.
type Config struct {
	Model        ModelConfig        `yaml:"model"`
	Commerce     CommerceConfig     `yaml:"commerce"`
	VectorSearch VectorSearchConfig `yaml:"vector_search"`
	MCPServers   []MCPServerConfig  `yaml:"mcp_servers"`
	Engine       EngineConfig       `yaml:"engine"`
	Session      SessionConfig      `yaml:"session"`
}

// Load reads and validates the config at path. An empty path yields the
// defaults, so the binary runs with no file at all.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Provider: DefaultProvider,
		},
		Commerce: CommerceConfig{
			BaseURL: DefaultCommerceBaseURL,
		},
		VectorSearch: VectorSearchConfig{
			QdrantURL: DefaultQdrantURL,
			OllamaURL: DefaultOllamaURL,
		},
		Engine: EngineConfig{
			Window:   DefaultWindow,
			MaxSteps: DefaultMaxSteps,
		},
	}
}

// applyEnv lets environment variables override file values for the
// credentials and endpoints that usually live outside the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" && strings.EqualFold(c.Model.Provider, "openai") && c.Model.APIKey == "" {
		c.Model.APIKey = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" && strings.EqualFold(c.Model.Provider, "anthropic") && c.Model.APIKey == "" {
		c.Model.APIKey = v
	}
	if v := os.Getenv("MODEL_BASE_URL"); v != "" {
		c.Model.BaseURL = v
	}
	if v := os.Getenv("OCC_BASE_URL"); v != "" {
		c.Commerce.BaseURL = v
	}
	if v := os.Getenv("QDRANT_URL"); v != "" {
		c.VectorSearch.QdrantURL = v
	}
	if v := os.Getenv("OLLAMA_URL"); v != "" {
		c.VectorSearch.OllamaURL = v
	}
}

func (c *Config) applyDefaults() {
	if c.Model.Name == "" {
		switch strings.ToLower(c.Model.Provider) {
		case "anthropic":
			c.Model.Name = DefaultAnthropicModel
		default:
			c.Model.Name = DefaultOpenAIModel
		}
	}
	if c.Engine.Window <= 0 {
		c.Engine.Window = DefaultWindow
	}
	if c.Engine.MaxSteps <= 0 {
		c.Engine.MaxSteps = DefaultMaxSteps
	}
	if c.VectorSearch.Collection == "" {
		c.VectorSearch.Collection = "products"
	}
	if c.VectorSearch.EmbedModel == "" {
		c.VectorSearch.EmbedModel = "nomic-embed-text"
	}
}

// Validate enforces minimal structural guarantees.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	switch strings.ToLower(c.Model.Provider) {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown model provider %q", c.Model.Provider)
	}
	if strings.TrimSpace(c.Commerce.BaseURL) == "" {
		return errors.New("commerce base_url is required")
	}
	for i, s := range c.MCPServers {
		if s.Endpoint == "" && s.Command == "" {
			return fmt.Errorf("mcp_servers[%d]: endpoint or command is required", i)
		}
		if s.Endpoint != "" && s.Command != "" {
			return fmt.Errorf("mcp_servers[%d]: endpoint and command are mutually exclusive", i)
		}
	}
	return nil
}
