// Package config handles the .troupe directory and the project
// configuration file. The config value is constructed once at startup and
// passed down; there is no process-wide cache.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// TroupeDir is the per-project state directory.
const TroupeDir = ".troupe"

const defaultConfigYAML = `# troupe project configuration
version: 1

llm:
  # provider: none | openai | ollama
  provider: none
  model: gpt-4o-mini
  base_url: ""
  # Name of the environment variable holding the API key.
  api_key_env: OPENAI_API_KEY

workflow:
  # mode: pipeline | orchestrated
  mode: pipeline
  interrupt_before:
    - executor
  max_steps: 50

skills:
  dir: .troupe/skills

checkpoints:
  path: .troupe/checkpoints.db

gateway:
  enabled: false
  host: 127.0.0.1
  port: 8787
`

// LLMConfig selects the reasoning-engine provider. Provider "none" keeps
// every role on its deterministic fallback.
type LLMConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// APIKey reads the key from the configured environment variable.
func (c LLMConfig) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// WorkflowConfig captures routing and interrupt preferences.
type WorkflowConfig struct {
	Mode            string   `yaml:"mode"`
	InterruptBefore []string `yaml:"interrupt_before"`
	MaxSteps        int      `yaml:"max_steps"`
}

// SkillsConfig locates the rewritable skill sources.
type SkillsConfig struct {
	Dir string `yaml:"dir"`
}

// CheckpointsConfig locates the checkpoint database.
type CheckpointsConfig struct {
	Path string `yaml:"path"`
}

// GatewayConfig controls the approval HTTP surface.
type GatewayConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

// Address renders the listen address.
func (c GatewayConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Config models .troupe/config.yaml.
type Config struct {
	Version     int               `yaml:"version"`
	LLM         LLMConfig         `yaml:"llm"`
	Workflow    WorkflowConfig    `yaml:"workflow"`
	Skills      SkillsConfig      `yaml:"skills"`
	Checkpoints CheckpointsConfig `yaml:"checkpoints"`
	Gateway     GatewayConfig     `yaml:"gateway"`
}

// Default returns the built-in configuration.
func Default() Config {
	var cfg Config
	// The template is the source of truth for defaults.
	if err := yaml.Unmarshal([]byte(defaultConfigYAML), &cfg); err != nil {
		panic(fmt.Sprintf("config: default template invalid: %v", err))
	}
	return cfg
}

// Path returns the config file location for a project directory.
func Path(projectDir string) string {
	return filepath.Join(projectDir, TroupeDir, "config.yaml")
}

// Load reads the project config, falling back to defaults when the file
// does not exist. Present fields override defaults; absent fields keep
// them.
func Load(projectDir string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(Path(projectDir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Init writes the default config file if none exists yet.
func Init(projectDir string) (string, error) {
	path := Path(projectDir)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("config: ensure dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return "", fmt.Errorf("config: write: %w", err)
	}
	return path, nil
}

func (c Config) validate() error {
	switch c.LLM.Provider {
	case "", "none", "openai", "ollama":
	default:
		return fmt.Errorf("config: unknown llm provider %q", c.LLM.Provider)
	}
	switch c.Workflow.Mode {
	case "", "pipeline", "orchestrated":
	default:
		return fmt.Errorf("config: unknown workflow mode %q", c.Workflow.Mode)
	}
	return nil
}
