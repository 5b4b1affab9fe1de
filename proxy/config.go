package proxy

import (
	"time"

	"github.com/papercomputeco/chatgate/pkg/config"
	"github.com/papercomputeco/chatgate/pkg/llm"
)

// Config is the gateway configuration.
type Config struct {
	// Address to listen on (e.g., ":8080")
	ListenAddr string

	// Route the submission endpoint is mounted on (e.g., "/api")
	Route string

	// Upstream provider API base (e.g., "https://api.openai.com/v1")
	UpstreamURL string

	// UpstreamTimeout bounds a single upstream call. Zero waits indefinitely.
	UpstreamTimeout time.Duration

	// APIKey is the server-held bearer credential. Clients never send it.
	APIKey string

	// DefaultSystemPrompt leads chat requests that carry no system message.
	DefaultSystemPrompt string

	// Options are the fixed model parameters for upstream calls.
	Options llm.Options
}

// FromGateway converts the gateway section of a loaded configuration.
func FromGateway(g config.Gateway) (Config, error) {
	timeout, err := g.Timeout()
	if err != nil {
		return Config{}, err
	}

	return Config{
		ListenAddr:          g.ListenAddr,
		Route:               g.Route,
		UpstreamURL:         g.UpstreamURL,
		UpstreamTimeout:     timeout,
		APIKey:              g.APIKey,
		DefaultSystemPrompt: g.DefaultSystemPrompt,
		Options:             g.Options,
	}, nil
}
