// Package config loads chatgate configuration from defaults, an optional TOML
// or YAML file, a .env file, and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/papercomputeco/chatgate/pkg/classifier"
	"github.com/papercomputeco/chatgate/pkg/llm"
)

// Environment variables that override file values.
const (
	EnvAPIKey      = "OPENAI_API_KEY"
	EnvListenAddr  = "CHATGATE_LISTEN"
	EnvGatewayURL  = "CHATGATE_GATEWAY_URL"
	EnvUpstreamURL = "CHATGATE_UPSTREAM_URL"
)

// ErrUnknownFormat is returned for config files that are neither TOML nor YAML.
var ErrUnknownFormat = errors.New("unknown config file format")

// Config is the complete chatgate configuration.
type Config struct {
	Gateway Gateway `toml:"gateway" yaml:"gateway"`
	Client  Client  `toml:"client" yaml:"client"`
}

// Gateway configures the proxy gateway.
type Gateway struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string `toml:"listen" yaml:"listen"`

	// Route the submission endpoint is mounted on.
	Route string `toml:"route" yaml:"route"`

	// UpstreamURL is the provider API base (e.g., "https://api.openai.com/v1").
	UpstreamURL string `toml:"upstream_url" yaml:"upstream_url"`

	// UpstreamTimeout bounds one upstream call; empty or "0" waits forever.
	UpstreamTimeout string `toml:"upstream_timeout" yaml:"upstream_timeout"`

	// APIKey is the server-held credential. Prefer OPENAI_API_KEY over the file.
	APIKey string `toml:"api_key" yaml:"api_key"`

	// DefaultSystemPrompt is used for chat requests that carry none.
	DefaultSystemPrompt string `toml:"default_system_prompt" yaml:"default_system_prompt"`

	// LogFormat is "console" or "json".
	LogFormat string `toml:"log_format" yaml:"log_format"`

	Options llm.Options `toml:"options" yaml:"options"`
}

// Client configures the chat widget.
type Client struct {
	// GatewayURL is the full submission endpoint URL.
	GatewayURL string `toml:"gateway_url" yaml:"gateway_url"`

	ImageTrigger  string               `toml:"image_trigger" yaml:"image_trigger"`
	DefaultPrompt string               `toml:"default_prompt" yaml:"default_prompt"`
	Personas      []classifier.Persona `toml:"personas" yaml:"personas"`

	// DownloadDir is where downloaded images are written.
	DownloadDir string `toml:"download_dir" yaml:"download_dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	rules := classifier.DefaultRules()
	return &Config{
		Gateway: Gateway{
			ListenAddr:          ":8080",
			Route:               "/api",
			UpstreamURL:         "https://api.openai.com/v1",
			DefaultSystemPrompt: classifier.DefaultPersona,
			LogFormat:           "console",
			Options:             llm.DefaultOptions(),
		},
		Client: Client{
			GatewayURL:    "http://localhost:8080/api",
			ImageTrigger:  rules.ImageTrigger,
			DefaultPrompt: rules.DefaultPrompt,
			Personas:      rules.Personas,
			DownloadDir:   ".",
		},
	}
}

// Load builds the configuration. path may be empty, in which case only
// defaults, .env and the environment apply.
func Load(path string) (*Config, error) {
	// A missing .env is normal; real environment variables still win.
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	case ".yaml", ".yml":
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.Gateway.APIKey = v
	}
	if v := os.Getenv(EnvListenAddr); v != "" {
		c.Gateway.ListenAddr = v
	}
	if v := os.Getenv(EnvUpstreamURL); v != "" {
		c.Gateway.UpstreamURL = v
	}
	if v := os.Getenv(EnvGatewayURL); v != "" {
		c.Client.GatewayURL = v
	}
}

// Rules returns the classifier routing table described by the client section.
func (c *Config) Rules() classifier.Rules {
	return classifier.Rules{
		ImageTrigger:  c.Client.ImageTrigger,
		Personas:      c.Client.Personas,
		DefaultPrompt: c.Client.DefaultPrompt,
	}
}

// Timeout parses UpstreamTimeout. Zero means no timeout.
func (g Gateway) Timeout() (time.Duration, error) {
	if g.UpstreamTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(g.UpstreamTimeout)
	if err != nil {
		return 0, fmt.Errorf("upstream_timeout: %w", err)
	}
	return d, nil
}

// Validate reports every structural problem at once. A missing API key is
// not one of them: the gateway answers that per request.
func (c *Config) Validate() error {
	var err error

	if c.Gateway.ListenAddr == "" {
		err = multierr.Append(err, errors.New("gateway.listen must be set"))
	}
	if !strings.HasPrefix(c.Gateway.Route, "/") {
		err = multierr.Append(err, fmt.Errorf("gateway.route %q must start with /", c.Gateway.Route))
	}
	if u, perr := url.Parse(c.Gateway.UpstreamURL); perr != nil || u.Scheme == "" || u.Host == "" {
		err = multierr.Append(err, fmt.Errorf("gateway.upstream_url %q is not an absolute URL", c.Gateway.UpstreamURL))
	}
	if d, terr := c.Gateway.Timeout(); terr != nil {
		err = multierr.Append(err, terr)
	} else if d < 0 {
		err = multierr.Append(err, errors.New("upstream_timeout must not be negative"))
	}
	if c.Gateway.Options.ImageCount < 1 {
		err = multierr.Append(err, errors.New("gateway.options.image_count must be at least 1"))
	}
	for name, v := range map[string]string{
		"chat_model":  c.Gateway.Options.ChatModel,
		"image_model": c.Gateway.Options.ImageModel,
		"edit_model":  c.Gateway.Options.EditModel,
		"image_size":  c.Gateway.Options.ImageSize,
	} {
		if v == "" {
			err = multierr.Append(err, fmt.Errorf("gateway.options.%s must be set", name))
		}
	}
	for i, p := range c.Client.Personas {
		if p.Trigger == "" || p.SystemPrompt == "" {
			err = multierr.Append(err, fmt.Errorf("client.personas[%d] needs both trigger and system_prompt", i))
		}
	}

	return err
}
