// Package render turns response envelopes into display blocks and keeps the
// conversation view those blocks live in. Blocks are UI-agnostic; a front end
// decides how to draw them.
package render

import (
	"regexp"
	"strings"

	"github.com/papercomputeco/chatgate/pkg/llm"
)

// Kind is the shape of a rendered block.
type Kind string

const (
	KindText   Kind = "text"
	KindCode   Kind = "code"
	KindImage  Kind = "image"
	KindError  Kind = "error"
	KindTyping Kind = "typing"
)

const (
	assistantImageAlt = "Imagem Gerada por IA"
	userImageAlt      = "Imagem"
	errorPrefix       = "Erro: "
)

// Block is one drawable unit of the conversation.
type Block struct {
	Kind Kind
	Role llm.Role

	// Text is the verbatim content of text and error blocks.
	Text string

	// Code blocks: the fenced content, its language tag, and the text around it.
	Code     string
	Language string
	Before   string
	After    string
	Copy     *CopyAction

	// Image blocks.
	URL      string
	Alt      string
	Download *DownloadAction
}

var (
	fencePattern    = regexp.MustCompile("(?s)```(.*?)```")
	languagePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+#.-]*$`)
)

// Render converts a response envelope into a block authored by role.
func Render(env llm.ResponseEnvelope, role llm.Role) Block {
	switch env.Kind {
	case llm.ResponseImage:
		return Image(env.URL, role)
	case llm.ResponseError:
		return Block{Kind: KindError, Role: role, Text: errorPrefix + env.Message}
	default:
		return Text(env.Text, role)
	}
}

// Text renders text as a code block when it contains a fenced pair, and as
// plain text otherwise. No other markup is interpreted.
func Text(text string, role llm.Role) Block {
	if code, ok := ExtractCode(text); ok {
		code.Role = role
		return code
	}
	return Block{Kind: KindText, Role: role, Text: text}
}

// Image renders an image reference. Assistant images can be downloaded.
func Image(url string, role llm.Role) Block {
	b := Block{Kind: KindImage, Role: role, URL: url, Alt: userImageAlt}
	if role == llm.RoleAssistant {
		b.Alt = assistantImageAlt
		b.Download = NewDownloadAction(url)
	}
	return b
}

// ExtractCode pulls the first fenced code pair out of text. A single-word
// first line is taken as the language tag and dropped from the code.
func ExtractCode(text string) (Block, bool) {
	loc := fencePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return Block{}, false
	}

	content := text[loc[2]:loc[3]]
	var language string
	if first, rest, found := strings.Cut(content, "\n"); found && languagePattern.MatchString(strings.TrimSpace(first)) {
		language = strings.TrimSpace(first)
		content = rest
	}

	content = strings.TrimPrefix(content, "\n")
	content = strings.TrimSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\r")

	return Block{
		Kind:     KindCode,
		Code:     content,
		Language: language,
		Before:   strings.TrimSpace(text[:loc[0]]),
		After:    strings.TrimSpace(text[loc[1]:]),
		Copy:     NewCopyAction(content),
	}, true
}
