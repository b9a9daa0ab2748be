package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Audio     AudioConfig     `yaml:"audio"`
	OpenAI    OpenAIConfig    `yaml:"openai"`
	Refiner   RefinerConfig   `yaml:"refiner"`
	Templates TemplatesConfig `yaml:"templates"`
	Store     StoreConfig     `yaml:"store"`
	Control   ControlConfig   `yaml:"control"`
	Pushover  PushoverConfig  `yaml:"pushover"`
	Log       LogConfig       `yaml:"log"`
}

type AudioConfig struct {
	Source     string `yaml:"source"`
	HTTPAddr   string `yaml:"http_addr"`
	FileDir    string `yaml:"file_dir"`
	SampleRate int    `yaml:"sample_rate"`
	AuthToken  string `yaml:"auth_token"`
}

type OpenAIConfig struct {
	APIKey   string `yaml:"api_key"`
	Language string `yaml:"language"`
	BaseURL  string `yaml:"base_url"`
}

// RefinerConfig selects the model that polishes the finalized form.
type RefinerConfig struct {
	Provider string `yaml:"provider"`
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	Prompt   string `yaml:"prompt"`
	BaseURL  string `yaml:"base_url"`
}

type TemplatesConfig struct {
	Dir     string `yaml:"dir"`
	Default string `yaml:"default"`
	Watch   bool   `yaml:"watch"`
}

type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// ControlConfig is only used when the audio source is not http; otherwise
// the control API shares the audio server.
type ControlConfig struct {
	Addr string `yaml:"addr"`
}

type PushoverConfig struct {
	Token   string `yaml:"token"`
	UserKey string `yaml:"user_key"`
	Enabled bool   `yaml:"enabled"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Audio.Source == "" {
		c.Audio.Source = "http"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./audio"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.Refiner.Provider == "" {
		c.Refiner.Provider = "none"
	}
	if c.Templates.Default == "" {
		c.Templates.Default = "Inspection Summary"
	}
	if c.Store.Dir == "" {
		c.Store.Dir = "./data"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) Validate() error {
	switch c.Audio.Source {
	case "http", "file", "microphone":
	default:
		return fmt.Errorf("unknown audio source %q", c.Audio.Source)
	}

	switch c.Refiner.Provider {
	case "anthropic", "gemini":
		if c.Refiner.APIKey == "" {
			return fmt.Errorf("refiner %s requires api_key", c.Refiner.Provider)
		}
	case "none":
	default:
		return fmt.Errorf("unknown refiner provider %q", c.Refiner.Provider)
	}

	if c.Audio.SampleRate < 0 {
		return fmt.Errorf("sample_rate must be positive, got %d", c.Audio.SampleRate)
	}

	if c.Templates.Watch && c.Templates.Dir == "" {
		return fmt.Errorf("templates.watch requires templates.dir")
	}

	if c.Pushover.Enabled && (c.Pushover.Token == "" || c.Pushover.UserKey == "") {
		return fmt.Errorf("pushover requires token and user_key")
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}

	return nil
}
