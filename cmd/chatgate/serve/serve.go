package servecmder

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatgate/pkg/config"
	"github.com/papercomputeco/chatgate/pkg/logger"
	"github.com/papercomputeco/chatgate/proxy"
)

const serveLongDesc string = `Run the chatgate gateway.

The gateway accepts widget submissions on a single route and forwards
them to the generative-AI provider with the server-held API key
(OPENAI_API_KEY). When started with --config, edits to the file are
picked up without a restart; the listen address and route are only
read at startup.

Examples:
  chatgate serve
  chatgate serve --config chatgate.toml --debug
  chatgate serve --listen :9000 --log-format json`

const serveShortDesc string = "Run the gateway"

type serveCommander struct {
	configPath string
	listen     string
	upstream   string
	logFormat  string
	debug      bool
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML or YAML config file")
	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", "", "Address to listen on (overrides config)")
	cmd.Flags().StringVarP(&cmder.upstream, "upstream", "u", "", "Provider API base URL (overrides config)")
	cmd.Flags().StringVar(&cmder.logFormat, "log-format", "", "Log format: console or json (overrides config)")
	cmd.Flags().BoolVarP(&cmder.debug, "debug", "d", false, "Enable debug logging")

	return cmd
}

// apply layers flag values over a loaded configuration.
func (c *serveCommander) apply(cfg *config.Config) {
	if c.listen != "" {
		cfg.Gateway.ListenAddr = c.listen
	}
	if c.upstream != "" {
		cfg.Gateway.UpstreamURL = c.upstream
	}
	if c.logFormat != "" {
		cfg.Gateway.LogFormat = c.logFormat
	}
}

func (c *serveCommander) run(ctx context.Context) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log := logger.New(c.debug, logger.ParseFormat(cfg.Gateway.LogFormat))
	defer log.Sync()

	proxyConfig, err := proxy.FromGateway(cfg.Gateway)
	if err != nil {
		return fmt.Errorf("invalid gateway config: %w", err)
	}

	p, err := proxy.New(proxyConfig, log)
	if err != nil {
		return fmt.Errorf("could not create gateway: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if proxyConfig.APIKey == "" {
		log.Warn("no API key configured; submissions will fail until " + config.EnvAPIKey + " is set")
	}

	if c.configPath != "" {
		go func() {
			err := config.Watch(ctx, c.configPath, log, func(next *config.Config) {
				c.apply(next)
				reloaded, err := proxy.FromGateway(next.Gateway)
				if err != nil {
					log.Warn("ignoring gateway config change", zap.Error(err))
					return
				}
				p.Reload(reloaded)
			})
			if err != nil {
				log.Warn("config watcher stopped", zap.Error(err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- p.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		log.Info("shutting down gateway")
		return p.Shutdown()
	}
}
