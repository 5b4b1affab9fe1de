package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/papercomputeco/chatgate/pkg/classifier"
	"github.com/papercomputeco/chatgate/pkg/client"
	"github.com/papercomputeco/chatgate/pkg/imagedata"
	"github.com/papercomputeco/chatgate/pkg/llm"
	"github.com/papercomputeco/chatgate/pkg/render"
	"github.com/papercomputeco/chatgate/pkg/widget"
)

// Command is a slash command typed into the input line.
type Command int

const (
	// CommandNone means the line is a message.
	CommandNone Command = iota
	CommandImage
	CommandEdit
	CommandFeature
	CommandNew
	CommandCopy
	CommandSave
	CommandHelp
	CommandQuit
	CommandUnknown
)

var commandNames = map[string]Command{
	"/image":   CommandImage,
	"/edit":    CommandEdit,
	"/feature": CommandFeature,
	"/new":     CommandNew,
	"/copy":    CommandCopy,
	"/save":    CommandSave,
	"/help":    CommandHelp,
	"/quit":    CommandQuit,
	"/exit":    CommandQuit,
}

// Features are the welcome-screen shortcuts, in display order.
var Features = []string{
	widget.FeatureCreateImage,
	"Programar",
	"Ajudar a escrever",
	"Resumir texto",
	"Aconselhar",
}

const helpText = `/image [descrição]  criar uma imagem
/edit <arquivo>     enviar uma imagem para editar
/feature <n>        usar um atalho da tela inicial
/copy               copiar o último bloco de código
/save               salvar a última imagem gerada
/new                nova conversa
/quit               sair`

// ParseCommand splits a line into its slash command and argument. Lines that
// do not start with "/" are messages.
func ParseCommand(line string) (Command, string) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return CommandNone, line
	}

	name, arg, _ := strings.Cut(line, " ")
	cmd, ok := commandNames[strings.ToLower(name)]
	if !ok {
		return CommandUnknown, name
	}
	return cmd, strings.TrimSpace(arg)
}

// Outcome reports what a line did beyond updating the conversation view.
type Outcome struct {
	Notice string
	Copied bool
	Quit   bool
}

// Session binds a widget to the terminal-side affordances: the clipboard,
// image downloads and local image files.
type Session struct {
	Widget      *widget.Widget
	Loader      *imagedata.Loader
	DownloadDir string

	// Clipboard receives copied code.
	Clipboard func(string) error
}

// Execute runs one input line, blocking while a message waits for the gateway.
func (s *Session) Execute(ctx context.Context, line string) (Outcome, error) {
	cmd, arg := ParseCommand(line)

	switch cmd {
	case CommandNone:
		err := s.Widget.Submit(ctx, arg)
		if errors.Is(err, classifier.ErrEmptyInput) {
			return Outcome{}, nil
		}
		return Outcome{}, err

	case CommandImage:
		if err := s.Widget.Feature(ctx, widget.FeatureCreateImage); err != nil {
			return Outcome{}, err
		}
		if arg == "" {
			return Outcome{}, nil
		}
		return Outcome{}, s.Widget.Submit(ctx, arg)

	case CommandEdit:
		return s.attach(arg)

	case CommandFeature:
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(Features) {
			return Outcome{}, fmt.Errorf("atalho inválido %q: escolha de 1 a %d", arg, len(Features))
		}
		return Outcome{}, s.Widget.Feature(ctx, Features[n-1])

	case CommandNew:
		s.Widget.NewConversation()
		return Outcome{Notice: "Nova conversa iniciada."}, nil

	case CommandCopy:
		return s.copyLastCode()

	case CommandSave:
		return s.saveLastImage(ctx)

	case CommandHelp:
		return Outcome{Notice: helpText}, nil

	case CommandQuit:
		return Outcome{Quit: true}, nil

	default:
		return Outcome{Notice: fmt.Sprintf("Comando desconhecido %s.\n%s", arg, helpText)}, nil
	}
}

func (s *Session) attach(path string) (Outcome, error) {
	if path == "" {
		return Outcome{}, errors.New("informe o arquivo da imagem: /edit <arquivo>")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Outcome{}, fmt.Errorf("could not read image: %w", err)
	}
	s.Widget.AttachImage(client.ImageReference(data))
	return Outcome{}, nil
}

func (s *Session) copyLastCode() (Outcome, error) {
	blocks := s.Widget.View().Blocks()
	for i := len(blocks) - 1; i >= 0; i-- {
		if blocks[i].Copy == nil {
			continue
		}
		if err := blocks[i].Copy.Copy(s.Clipboard); err != nil {
			return Outcome{}, err
		}
		return Outcome{Copied: true}, nil
	}
	return Outcome{Notice: "Nenhum bloco de código para copiar."}, nil
}

func (s *Session) saveLastImage(ctx context.Context) (Outcome, error) {
	blocks := s.Widget.View().Blocks()
	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		if b.Kind != render.KindImage || b.Role != llm.RoleAssistant || b.Download == nil {
			continue
		}
		path, err := b.Download.Save(ctx, s.Loader, s.DownloadDir)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Notice: "Imagem salva em " + path}, nil
	}
	return Outcome{Notice: "Nenhuma imagem gerada para salvar."}, nil
}
