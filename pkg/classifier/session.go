package classifier

import (
	"strings"
	"sync"

	"github.com/papercomputeco/chatgate/pkg/llm"
)

// Session owns the conversation history and pending mode for one user.
// It is safe for concurrent use.
type Session struct {
	mu      sync.Mutex
	rules   Rules
	history []llm.Message
	pending Pending
}

// NewSession creates an empty session using rules.
func NewSession(rules Rules) *Session {
	return &Session{rules: rules}
}

// Classify classifies raw against the session state. On success the user turn
// is appended to history and the pending mode is cleared.
func (s *Session) Classify(raw string) (llm.RequestEnvelope, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	env, next, err := Classify(s.rules, raw, s.pending, s.history)
	if err != nil {
		return llm.RequestEnvelope{}, err
	}

	s.pending = next
	s.history = append(s.history, llm.UserTurn(strings.TrimSpace(raw)))

	return env, nil
}

// RecordReply appends an assistant text reply to history.
func (s *Session) RecordReply(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, llm.AssistantTurn(text))
}

// AwaitImagePrompt makes the next utterance an image description.
func (s *Session) AwaitImagePrompt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = Pending{Mode: ModeAwaitingImagePrompt}
}

// AwaitEditPrompt holds image and makes the next utterance its edit instruction.
func (s *Session) AwaitEditPrompt(image string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = Pending{Mode: ModeAwaitingEditPrompt, EditSubject: image}
}

// Pending returns the current pending state.
func (s *Session) Pending() Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// History returns a copy of the conversation so far, oldest first.
func (s *Session) History() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return llm.CloneTurns(s.history)
}

// Reset starts a new conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.pending = Pending{}
}
