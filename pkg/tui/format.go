// Package tui is the terminal front end of the chat widget: a bubbletea
// program for interactive terminals and a line-oriented loop for pipes.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/papercomputeco/chatgate/pkg/imagedata"
	"github.com/papercomputeco/chatgate/pkg/llm"
	"github.com/papercomputeco/chatgate/pkg/render"
)

var (
	userStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	assistantStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	actionStyle    = lipgloss.NewStyle().Faint(true)
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("13"))
)

const (
	userLabel      = "Você:"
	assistantLabel = "Assistente:"
	typingText     = "digitando..."

	welcomeTitle = "Olá! Como posso ajudar hoje?"
)

// Formatter turns conversation blocks into terminal text.
type Formatter struct {
	width int
	code  *glamour.TermRenderer
}

// NewFormatter creates a formatter wrapping at width. Without color, code
// blocks use glamour's plain style.
func NewFormatter(width int, color bool) *Formatter {
	if width < 20 {
		width = 20
	}

	style := glamour.WithStandardStyle("notty")
	if color {
		style = glamour.WithAutoStyle()
	}

	// A renderer that fails to build leaves code blocks unhighlighted.
	code, _ := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))

	return &Formatter{width: width, code: code}
}

// Width is the wrap width.
func (f *Formatter) Width() int {
	return f.width
}

// View formats the whole conversation, welcome content first when shown.
func (f *Formatter) View(v *render.View) string {
	var parts []string
	if v.Welcome() {
		parts = append(parts, f.Welcome())
	}
	for _, b := range v.Blocks() {
		parts = append(parts, f.Block(b))
	}
	return strings.Join(parts, "\n\n")
}

// Welcome formats the welcome placeholder with its feature shortcuts.
func (f *Formatter) Welcome() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(welcomeTitle))
	for i, feature := range Features {
		fmt.Fprintf(&b, "\n  %d. %s", i+1, feature)
	}
	b.WriteString("\n")
	b.WriteString(actionStyle.Render("/feature <n> para usar um atalho, /help para os comandos"))
	return b.String()
}

// Block formats one block with its speaker label.
func (f *Formatter) Block(b render.Block) string {
	label := assistantStyle.Render(assistantLabel)
	if b.Role == llm.RoleUser {
		label = userStyle.Render(userLabel)
	}

	switch b.Kind {
	case render.KindTyping:
		return label + " " + actionStyle.Render(typingText)

	case render.KindError:
		return label + " " + errorStyle.Render(f.wrap(b.Text))

	case render.KindCode:
		return label + "\n" + f.codeBlock(b)

	case render.KindImage:
		return label + "\n" + f.imageBlock(b)

	default:
		return label + " " + f.wrap(b.Text)
	}
}

func (f *Formatter) wrap(text string) string {
	return ansi.Wordwrap(text, f.width, "")
}

func (f *Formatter) codeBlock(b render.Block) string {
	var parts []string
	if b.Before != "" {
		parts = append(parts, f.wrap(b.Before))
	}

	fenced := "```" + b.Language + "\n" + b.Code + "\n```"
	code := b.Code
	if f.code != nil {
		if out, err := f.code.Render(fenced); err == nil {
			code = strings.Trim(out, "\n")
		}
	}
	parts = append(parts, code)

	if b.Copy != nil {
		parts = append(parts, actionStyle.Render("["+b.Copy.Label()+"] /copy"))
	}
	if b.After != "" {
		parts = append(parts, f.wrap(b.After))
	}
	return strings.Join(parts, "\n")
}

func (f *Formatter) imageBlock(b render.Block) string {
	line := b.Alt + ": " + displayURL(b.URL)
	if b.Download != nil {
		line += "\n" + actionStyle.Render("[Baixar "+b.Download.Filename+"] /save")
	}
	return line
}

// displayURL keeps inline images from flooding the terminal.
func displayURL(url string) string {
	if !imagedata.IsDataURL(url) {
		return url
	}
	head, data, _ := strings.Cut(url, ",")
	return fmt.Sprintf("%s,… (%d caracteres)", head, len(data))
}
