package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

const (
	DriverPlaywright = "playwright"
	DriverChromedp   = "chromedp"
	DriverRod        = "rod"
)

// Config captures all tunable settings for the agent.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Browser BrowserConfig `yaml:"browser"`
	Prompt  PromptConfig  `yaml:"prompt"`
	Agent   AgentConfig   `yaml:"agent"`
	Log     LogConfig     `yaml:"log"`
}

type LLMConfig struct {
	// Falls back to OPENAI_API_KEY when empty.
	APIKey string `yaml:"api_key"`
	// Optional OpenAI-compatible endpoint.
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`
	// Attempts on HTTP 429 before giving up.
	MaxRetries int `yaml:"max_retries"`
}

// BrowserConfig configures how pages are opened and observed.
type BrowserConfig struct {
	// playwright | chromedp | rod
	Driver   string `yaml:"driver"`
	Headless bool   `yaml:"headless"`
	// Persistent profile directory (playwright only).
	UserDataDir    string `yaml:"user_data_dir"`
	ViewportWidth  int    `yaml:"viewport_width"`
	ViewportHeight int    `yaml:"viewport_height"`
	// Default action/navigation timeout in milliseconds.
	TimeoutMs int `yaml:"timeout_ms"`
}

// PromptConfig controls prompt assembly.
type PromptConfig struct {
	// Directory with *-abs.txt / *-con.txt templates. Empty uses the built-in set.
	Dir string `yaml:"dir"`
	// Approximate token budget for a single prompt (chars/4 estimate).
	MaxTokens int `yaml:"max_tokens"`
	// How many times a prompt may be shrunk while fitting MaxTokens.
	MaxShrinkIterations int `yaml:"max_shrink_iterations"`
	// History window used when encoding a fresh observation.
	EncoderWindow int `yaml:"encoder_window"`
	// none | center | box
	CoordType string `yaml:"coord_type"`
	UseHTML   bool   `yaml:"use_html"`
	// Operating system the browser runs on. Resolved once at startup when empty.
	Platform string `yaml:"platform"`
}

type AgentConfig struct {
	MaxSteps        int `yaml:"max_steps"`
	MaxParseRetries int `yaml:"max_parse_retries"`
	LoopThreshold   int `yaml:"loop_threshold"`
	// Pause between steps in milliseconds.
	StepDelayMs int `yaml:"step_delay_ms"`
	// Ask the world model to predict and score each new strategy before acting on it.
	Lookahead bool `yaml:"lookahead"`
}

type LogConfig struct {
	// development | production
	Mode string `yaml:"mode"`
}

// DefaultConfig provides reasonable defaults for local runs.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Model:       "gpt-4o",
			Temperature: 0,
			MaxTokens:   1500,
			MaxRetries:  5,
		},
		Browser: BrowserConfig{
			Driver:         DriverPlaywright,
			Headless:       false,
			UserDataDir:    ".playwright_data",
			ViewportWidth:  1280,
			ViewportHeight: 720,
			TimeoutMs:      60000,
		},
		Prompt: PromptConfig{
			MaxTokens:           40000,
			MaxShrinkIterations: 20,
			EncoderWindow:       3,
			CoordType:           "none",
		},
		Agent: AgentConfig{
			MaxSteps:        15,
			MaxParseRetries: 3,
			LoopThreshold:   3,
			StepDelayMs:     1000,
		},
		Log: LogConfig{
			Mode: "development",
		},
	}
}

// Load reads YAML config from disk and overlays defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, errors.New("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

// ApplyEnv fills values that may come from the environment and resolves the
// platform when the file left it empty.
func (c *Config) ApplyEnv() {
	if c.LLM.APIKey == "" {
		c.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Prompt.Platform == "" {
		c.Prompt.Platform = runtime.GOOS
	}
}

func (c Config) Validate() error {
	switch c.Browser.Driver {
	case DriverPlaywright, DriverChromedp, DriverRod:
	default:
		return fmt.Errorf("browser.driver must be %q, %q or %q, got %q", DriverPlaywright, DriverChromedp, DriverRod, c.Browser.Driver)
	}
	switch c.Prompt.CoordType {
	case "", "none", "center", "box":
	default:
		return fmt.Errorf("prompt.coord_type must be none, center or box, got %q", c.Prompt.CoordType)
	}
	if c.Prompt.MaxTokens <= 0 {
		return errors.New("prompt.max_tokens must be positive")
	}
	if c.Prompt.MaxShrinkIterations < 0 {
		return errors.New("prompt.max_shrink_iterations must not be negative")
	}
	if c.Prompt.EncoderWindow <= 0 {
		return errors.New("prompt.encoder_window must be positive")
	}
	if c.Agent.MaxSteps <= 0 {
		return errors.New("agent.max_steps must be positive")
	}
	if c.Agent.MaxParseRetries < 0 {
		return errors.New("agent.max_parse_retries must not be negative")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	return nil
}
