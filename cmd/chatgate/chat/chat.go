package chatcmder

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/papercomputeco/chatgate/pkg/client"
	"github.com/papercomputeco/chatgate/pkg/config"
	"github.com/papercomputeco/chatgate/pkg/imagedata"
	"github.com/papercomputeco/chatgate/pkg/logger"
	"github.com/papercomputeco/chatgate/pkg/tui"
	"github.com/papercomputeco/chatgate/pkg/widget"
)

const chatLongDesc string = `Chat with the assistant through a running gateway.

On an interactive terminal this opens a full-screen chat. When input
or output is redirected, lines are read from stdin and each reply is
printed as it arrives.

Start a line with "criar imagem" to generate an image, or use the
slash commands (/image, /edit <file>, /copy, /save, /new, /quit).

Examples:
  chatgate chat
  chatgate chat --gateway http://192.168.1.42:8080/api
  echo "resumir texto: ..." | chatgate chat --no-color`

const chatShortDesc string = "Open the chat widget in the terminal"

type chatCommander struct {
	configPath  string
	gatewayURL  string
	downloadDir string
	noColor     bool
	debug       bool
}

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML or YAML config file")
	cmd.Flags().StringVarP(&cmder.gatewayURL, "gateway", "g", "", "Gateway submission URL (overrides config)")
	cmd.Flags().StringVar(&cmder.downloadDir, "download-dir", "", "Directory /save writes images to (overrides config)")
	cmd.Flags().BoolVar(&cmder.noColor, "no-color", false, "Disable colors")
	cmd.Flags().BoolVarP(&cmder.debug, "debug", "d", false, "Write debug logs to stderr")

	return cmd
}

func (c *chatCommander) run(ctx context.Context, cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if c.gatewayURL != "" {
		cfg.Client.GatewayURL = c.gatewayURL
	}
	if c.downloadDir != "" {
		cfg.Client.DownloadDir = c.downloadDir
	}

	log := zap.NewNop()
	if c.debug {
		log = logger.NewTo(os.Stderr, true, logger.FormatConsole)
	}
	defer log.Sync()

	if c.noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	httpClient := &http.Client{}
	w := widget.New(client.New(cfg.Client.GatewayURL, httpClient, log), cfg.Rules(), log)
	session := &tui.Session{
		Widget:      w,
		Loader:      imagedata.NewLoader(httpClient),
		DownloadDir: cfg.Client.DownloadDir,
		Clipboard:   clipboard.WriteAll,
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		width := 80
		if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 0 {
			width = cols
		}
		return tui.RunLines(ctx, session, tui.NewFormatter(width, !c.noColor), cmd.InOrStdin(), cmd.OutOrStdout())
	}

	program := tea.NewProgram(
		tui.NewModel(ctx, session, !c.noColor),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("chat session failed: %w", err)
	}
	return nil
}
