// Package classifier turns a raw user utterance into the request envelope for
// one turn: chat with a persona, image generation, or image edit.
package classifier

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/papercomputeco/chatgate/pkg/llm"
)

// ErrEmptyInput is returned for blank utterances. Nothing must be dispatched.
var ErrEmptyInput = errors.New("empty input")

// Mode is the pending state left behind by a previous interaction.
type Mode int

const (
	ModeNone Mode = iota
	ModeAwaitingImagePrompt
	ModeAwaitingEditPrompt
)

func (m Mode) String() string {
	switch m {
	case ModeAwaitingImagePrompt:
		return "awaiting-image-prompt"
	case ModeAwaitingEditPrompt:
		return "awaiting-edit-prompt"
	default:
		return "none"
	}
}

// Pending is the classifier state carried between turns. EditSubject is only
// meaningful while Mode is ModeAwaitingEditPrompt.
type Pending struct {
	Mode        Mode
	EditSubject string
}

// Classify decides the request for raw given the pending state and the
// history so far. It never mutates history; the returned Pending replaces
// the caller's state.
func Classify(rules Rules, raw string, pending Pending, history []llm.Message) (llm.RequestEnvelope, Pending, error) {
	input := strings.TrimSpace(raw)
	if input == "" {
		return llm.RequestEnvelope{}, pending, ErrEmptyInput
	}

	if pending.Mode == ModeAwaitingEditPrompt && pending.EditSubject != "" {
		return llm.RequestEnvelope{
			Type:   llm.RequestImageEdit,
			Prompt: input,
			Image:  pending.EditSubject,
		}, Pending{}, nil
	}

	if rules.ImageTrigger != "" {
		if rest, ok := cutPrefixFold(input, rules.ImageTrigger); ok {
			return llm.RequestEnvelope{
				Type:   llm.RequestImage,
				Prompt: strings.TrimSpace(rest),
			}, Pending{}, nil
		}
	}

	if pending.Mode == ModeAwaitingImagePrompt {
		return llm.RequestEnvelope{
			Type:   llm.RequestImage,
			Prompt: input,
		}, Pending{}, nil
	}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.UserTurn(input))

	return llm.RequestEnvelope{
		Type:          llm.RequestChat,
		Messages:      messages,
		SystemMessage: rules.SystemPromptFor(input),
	}, Pending{}, nil
}

// cutPrefixFold reports whether s begins with prefix under Unicode case
// folding and returns the remainder of s.
func cutPrefixFold(s, prefix string) (string, bool) {
	for _, want := range prefix {
		got, size := utf8.DecodeRuneInString(s)
		if size == 0 || !strings.EqualFold(string(got), string(want)) {
			return "", false
		}
		s = s[size:]
	}
	return s, true
}
