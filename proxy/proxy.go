// Package proxy provides the chatgate gateway: a stateless boundary that takes
// widget submissions, calls the generative-AI provider with the server-held
// credential, and normalizes what comes back.
package proxy

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sync/atomic"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatgate/pkg/imagedata"
)

// Proxy is the gateway server. Requests share nothing but the current
// configuration snapshot, which Reload swaps atomically.
type Proxy struct {
	config     atomic.Pointer[Config]
	logger     *zap.Logger
	httpClient *http.Client
	loader     *imagedata.Loader
	server     *fiber.App
}

// New creates a new Proxy.
func New(config Config, logger *zap.Logger) (*Proxy, error) {
	if config.Route == "" {
		return nil, fmt.Errorf("route must be set")
	}

	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
		// Edit submissions carry whole images as data URLs
		BodyLimit: 32 << 20,
	})

	// No client timeout: a single upstream call may take as long as the
	// provider needs unless UpstreamTimeout says otherwise.
	httpClient := &http.Client{}

	p := &Proxy{
		logger:     logger,
		httpClient: httpClient,
		loader:     imagedata.NewLoader(httpClient),
		server:     app,
	}
	p.config.Store(&config)

	p.registerRoutes(app, config.Route)

	return p, nil
}

func (p *Proxy) registerRoutes(app *fiber.App, route string) {
	app.All(route, p.handleSubmit)

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
}

// Config returns the configuration snapshot new requests will use.
func (p *Proxy) Config() Config {
	return *p.config.Load()
}

// Reload swaps the configuration for subsequent requests. ListenAddr and
// Route only take effect on restart.
func (p *Proxy) Reload(config Config) {
	old := p.config.Load()
	config.ListenAddr = old.ListenAddr
	config.Route = old.Route
	p.config.Store(&config)

	p.logger.Info("gateway configuration reloaded",
		zap.String("upstream", config.UpstreamURL),
		zap.Bool("api_key_set", config.APIKey != ""),
	)
}

// Run starts the gateway on the configured listening address.
func (p *Proxy) Run() error {
	cfg := p.Config()
	p.logger.Info("starting gateway",
		zap.String("listen", cfg.ListenAddr),
		zap.String("route", cfg.Route),
		zap.String("upstream", cfg.UpstreamURL),
	)

	return p.server.Listen(cfg.ListenAddr)
}

// RunWithListener starts the gateway on an existing listener.
func (p *Proxy) RunWithListener(ln net.Listener) error {
	p.logger.Info("starting gateway", zap.String("listen", ln.Addr().String()))
	return p.server.Listener(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (p *Proxy) Shutdown() error {
	return p.server.Shutdown()
}

// HTTPHandler exposes the gateway as a net/http handler for serverless hosts.
func (p *Proxy) HTTPHandler() http.HandlerFunc {
	return adaptor.FiberApp(p.server)
}

// handleSubmit adapts Handle to fiber. Every answer, including errors and
// pre-flight, carries permissive cross-origin headers.
func (p *Proxy) handleSubmit(c *fiber.Ctx) error {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type")

	res := p.Handle(c.UserContext(), c.Method(), c.Body())

	for k, v := range res.Header {
		c.Set(k, v)
	}
	c.Status(res.Status)

	switch body := res.Body.(type) {
	case nil:
		return nil
	case json.RawMessage:
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	default:
		return c.JSON(body)
	}
}
