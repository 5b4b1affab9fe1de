// Package widget drives one chat session: it classifies what the user typed,
// dispatches it, and keeps the conversation view in step with the replies.
package widget

import (
	"context"
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/papercomputeco/chatgate/pkg/classifier"
	"github.com/papercomputeco/chatgate/pkg/llm"
	"github.com/papercomputeco/chatgate/pkg/render"
)

// ErrTurnInFlight is returned when a turn is submitted while another one is
// still waiting for the gateway.
var ErrTurnInFlight = errors.New("a turn is already in flight")

const (
	// FeatureCreateImage is the welcome button that asks for an image prompt.
	FeatureCreateImage = "Criar imagem"

	imagePromptQuestion = "Qual imagem você gostaria de criar?"
	editPromptQuestion  = "Como você gostaria de editar esta imagem?"
)

// Dispatcher delivers one request envelope and returns its normalized reply.
type Dispatcher interface {
	Send(ctx context.Context, env llm.RequestEnvelope) llm.ResponseEnvelope
}

// Widget is the client-side controller for a single conversation.
type Widget struct {
	session    *classifier.Session
	view       *render.View
	dispatcher Dispatcher
	logger     *zap.Logger
	inFlight   atomic.Bool
}

// New creates a widget classifying with rules and dispatching through d.
func New(d Dispatcher, rules classifier.Rules, logger *zap.Logger) *Widget {
	return &Widget{
		session:    classifier.NewSession(rules),
		view:       render.NewView(),
		dispatcher: d,
		logger:     logger,
	}
}

// View returns the conversation view the widget keeps up to date.
func (w *Widget) View() *render.View {
	return w.view
}

// Session returns the classifier session holding history and pending mode.
func (w *Widget) Session() *classifier.Session {
	return w.session
}

// Busy reports whether a turn is waiting for the gateway.
func (w *Widget) Busy() bool {
	return w.inFlight.Load()
}

// Submit runs one turn for input and blocks until it is rendered. Blank
// input returns classifier.ErrEmptyInput and dispatches nothing.
func (w *Widget) Submit(ctx context.Context, input string) error {
	if !w.inFlight.CompareAndSwap(false, true) {
		return ErrTurnInFlight
	}
	defer w.inFlight.Store(false)

	env, err := w.session.Classify(input)
	if err != nil {
		return err
	}

	w.view.Append(render.Text(input, llm.RoleUser))
	w.view.ShowTyping()

	w.logger.Debug("submitting turn",
		zap.String("type", string(env.Type)),
		zap.Int("history", len(env.Messages)),
	)

	resp := w.dispatcher.Send(ctx, env)
	w.view.HideTyping()
	w.view.Append(render.Render(resp, llm.RoleAssistant))

	switch resp.Kind {
	case llm.ResponseText:
		w.session.RecordReply(resp.Text)
	case llm.ResponseError:
		w.logger.Warn("turn failed", zap.String("type", string(env.Type)), zap.String("message", resp.Message))
	}

	return nil
}

// Feature handles a welcome-screen feature button. Creating an image asks for
// the prompt first; any other feature is sent as a message.
func (w *Widget) Feature(ctx context.Context, label string) error {
	w.view.DismissWelcome()
	if label == FeatureCreateImage {
		w.session.AwaitImagePrompt()
		w.view.Append(render.Text(imagePromptQuestion, llm.RoleAssistant))
		return nil
	}
	return w.Submit(ctx, label)
}

// AttachImage shows an image picked by the user and makes the next message
// its edit instruction.
func (w *Widget) AttachImage(image string) {
	w.view.Append(render.Image(image, llm.RoleUser))
	w.session.AwaitEditPrompt(image)
	w.view.Append(render.Text(editPromptQuestion, llm.RoleAssistant))
}

// NewConversation forgets history and pending mode and restores the welcome view.
func (w *Widget) NewConversation() {
	w.session.Reset()
	w.view.Reset()
}
