package sendcmder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatgate/pkg/client"
	"github.com/papercomputeco/chatgate/pkg/config"
	"github.com/papercomputeco/chatgate/pkg/imagedata"
	"github.com/papercomputeco/chatgate/pkg/llm"
	"github.com/papercomputeco/chatgate/pkg/render"
	"github.com/papercomputeco/chatgate/pkg/tui"
	"github.com/papercomputeco/chatgate/pkg/widget"
)

const sendLongDesc string = `Send one message to a running gateway and print the reply.

The message is classified exactly as in the chat widget: a leading
"criar imagem" asks for an image, and persona prefixes such as
"programar" pick the assistant's role. With --edit, the message is
the edit instruction for the given image file.

Examples:
  chatgate send "programar uma função que soma dois números"
  chatgate send --save "criar imagem um farol ao entardecer"
  chatgate send --edit foto.png --save "remova o fundo"`

const sendShortDesc string = "Send a single message"

// ErrReplyFailed is returned when the gateway answered with an error block.
var ErrReplyFailed = errors.New("gateway reported an error")

type sendCommander struct {
	configPath  string
	gatewayURL  string
	editPath    string
	downloadDir string
	save        bool
}

func NewSendCmd() *cobra.Command {
	cmder := &sendCommander{}

	cmd := &cobra.Command{
		Use:   "send <message>",
		Short: sendShortDesc,
		Long:  sendLongDesc,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), cmd, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringVarP(&cmder.configPath, "config", "c", "", "Path to a TOML or YAML config file")
	cmd.Flags().StringVarP(&cmder.gatewayURL, "gateway", "g", "", "Gateway submission URL (overrides config)")
	cmd.Flags().StringVarP(&cmder.editPath, "edit", "e", "", "Image file to edit; the message is the instruction")
	cmd.Flags().StringVar(&cmder.downloadDir, "download-dir", "", "Directory --save writes to (overrides config)")
	cmd.Flags().BoolVar(&cmder.save, "save", false, "Save a generated image")

	return cmd
}

func (c *sendCommander) run(ctx context.Context, cmd *cobra.Command, message string) error {
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

	httpClient := &http.Client{}
	w := widget.New(client.New(cfg.Client.GatewayURL, httpClient, zap.NewNop()), cfg.Rules(), zap.NewNop())

	if c.editPath != "" {
		data, err := os.ReadFile(c.editPath)
		if err != nil {
			return fmt.Errorf("could not read image %s: %w", c.editPath, err)
		}
		w.AttachImage(client.ImageReference(data))
	}

	if err := w.Submit(ctx, message); err != nil {
		return fmt.Errorf("could not send message: %w", err)
	}

	blocks := w.View().Blocks()
	reply := blocks[len(blocks)-1]

	fmt.Fprintln(cmd.OutOrStdout(), tui.NewFormatter(80, false).Block(reply))

	if reply.Kind == render.KindError {
		return ErrReplyFailed
	}

	if c.save && reply.Kind == render.KindImage && reply.Role == llm.RoleAssistant {
		path, err := reply.Download.Save(ctx, imagedata.NewLoader(httpClient), cfg.Client.DownloadDir)
		if err != nil {
			return fmt.Errorf("could not save image: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imagem salva em %s\n", path)
	}

	return nil
}
