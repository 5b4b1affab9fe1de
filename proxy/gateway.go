package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/chatgate/pkg/imagedata"
	"github.com/papercomputeco/chatgate/pkg/llm"
)

// HeaderKind tells clients what a successful body carries ("text" or "image")
// so they never have to guess from its shape.
const HeaderKind = "X-Chatgate-Kind"

// Result is the outcome of one gateway invocation, independent of the HTTP
// framework serving it.
type Result struct {
	Status int
	Header map[string]string

	// Body is nil (empty response), a json.RawMessage passed through from the
	// upstream, or a value to be encoded as JSON.
	Body any
}

// Handle runs one submission. It is stateless: nothing survives the call
// except log lines.
func (p *Proxy) Handle(ctx context.Context, method string, body []byte) Result {
	switch method {
	case http.MethodOptions:
		return Result{Status: http.StatusOK}
	case http.MethodPost:
	default:
		return Result{
			Status: http.StatusMethodNotAllowed,
			Header: map[string]string{"Allow": http.MethodPost},
			Body:   llm.ErrorResponse{Error: fmt.Sprintf("Method %s Not Allowed", method)},
		}
	}

	logger := p.logger.With(zap.String("request_id", uuid.NewString()))
	cfg := p.Config()

	raw, kind, err := p.dispatch(ctx, cfg, body, logger)
	if err != nil {
		return failure(err, logger)
	}

	return Result{
		Status: http.StatusOK,
		Header: map[string]string{HeaderKind: string(kind)},
		Body:   json.RawMessage(raw),
	}
}

func (p *Proxy) dispatch(ctx context.Context, cfg Config, body []byte, logger *zap.Logger) ([]byte, llm.ResponseKind, error) {
	if cfg.APIKey == "" {
		return nil, "", ConfigurationError{Setting: "OPENAI_API_KEY"}
	}

	var req llm.RequestEnvelope
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, "", TransportError{Op: "decode request", Err: err}
	}

	logger.Debug("received submission",
		zap.String("type", string(req.Type)),
		zap.Int("message_count", len(req.Messages)),
		zap.Bool("has_image", req.Image != ""),
	)

	switch req.Type {
	case llm.RequestChat:
		raw, err := p.chat(ctx, cfg, req)
		return raw, llm.ResponseText, err

	case llm.RequestImage:
		if strings.TrimSpace(req.Prompt) == "" {
			return nil, "", ValidationError{Message: msgPromptRequired}
		}
		raw, err := p.generateImage(ctx, cfg, req)
		return raw, llm.ResponseImage, err

	case llm.RequestImageEdit:
		if req.Image == "" || strings.TrimSpace(req.Prompt) == "" {
			return nil, "", ValidationError{Message: msgEditIncomplete}
		}
		raw, err := p.editImage(ctx, cfg, req)
		return raw, llm.ResponseImage, err

	default:
		return nil, "", ValidationError{Message: msgInvalidType}
	}
}

func (p *Proxy) chat(ctx context.Context, cfg Config, req llm.RequestEnvelope) ([]byte, error) {
	system := req.SystemMessage
	if system == "" {
		system = cfg.DefaultSystemPrompt
	}

	messages := make([]llm.Message, 0, len(req.Messages)+1)
	messages = append(messages, llm.SystemTurn(system))
	messages = append(messages, req.Messages...)

	return p.postJSON(ctx, cfg, "/chat/completions", llm.ChatCompletionRequest{
		Model:    cfg.Options.ChatModel,
		Messages: messages,
	})
}

func (p *Proxy) generateImage(ctx context.Context, cfg Config, req llm.RequestEnvelope) ([]byte, error) {
	return p.postJSON(ctx, cfg, "/images/generations", llm.ImageGenerationRequest{
		Model:  cfg.Options.ImageModel,
		Prompt: req.Prompt,
		N:      cfg.Options.ImageCount,
		Size:   cfg.Options.ImageSize,
	})
}

// editImage sends the edit as a multipart form: the upstream edit endpoint
// does not accept JSON with base64 images.
func (p *Proxy) editImage(ctx context.Context, cfg Config, req llm.RequestEnvelope) ([]byte, error) {
	data, err := p.loader.Load(ctx, req.Image)
	if err != nil {
		if imagedata.IsRemoteURL(req.Image) {
			return nil, TransportError{Op: "fetch edit image", Err: err}
		}
		return nil, ValidationError{Message: msgBadImage}
	}

	pngData, err := imagedata.ToPNG(data)
	if err != nil {
		return nil, ValidationError{Message: msgBadImage}
	}

	raw, err := p.postMultipart(ctx, cfg, "/images/edits", editForm{
		Prompt: req.Prompt,
		Image:  pngData,
		Model:  cfg.Options.EditModel,
		N:      cfg.Options.ImageCount,
		Size:   cfg.Options.ImageSize,
	})

	var upErr UpstreamError
	if errors.As(err, &upErr) && strings.Contains(upstreamMessage(upErr.Details), squarePNGComplaint) {
		upErr.Message = msgSquarePNG
		return nil, upErr
	}

	return raw, err
}

// failure maps a dispatch error onto the gateway's error taxonomy.
func failure(err error, logger *zap.Logger) Result {
	var (
		cfgErr ConfigurationError
		valErr ValidationError
		upErr  UpstreamError
	)

	switch {
	case errors.As(err, &cfgErr):
		logger.Error("gateway misconfigured", zap.String("setting", cfgErr.Setting))
		return Result{
			Status: http.StatusInternalServerError,
			Body:   llm.ErrorResponse{Error: msgMissingAPIKey},
		}

	case errors.As(err, &valErr):
		logger.Info("rejected submission", zap.String("reason", valErr.Message))
		return Result{
			Status: http.StatusBadRequest,
			Body:   llm.ErrorResponse{Error: valErr.Message},
		}

	case errors.As(err, &upErr):
		logger.Error("upstream returned error",
			zap.Int("status", upErr.Status),
			zap.Any("body", upErr.Details),
		)
		return Result{
			Status: upErr.Status,
			Body:   llm.ErrorResponse{Error: upErr.Message, Details: upErr.Details},
		}

	default:
		logger.Error("internal gateway error", zap.Error(err))
		return Result{
			Status: http.StatusInternalServerError,
			Body:   llm.ErrorResponse{Error: msgInternal, Details: err.Error()},
		}
	}
}

// upstreamMessage digs error.message out of a decoded upstream error body.
func upstreamMessage(details any) string {
	body, ok := details.(map[string]any)
	if !ok {
		if s, ok := details.(string); ok {
			return s
		}
		return ""
	}
	inner, ok := body["error"].(map[string]any)
	if !ok {
		return ""
	}
	msg, _ := inner["message"].(string)
	return msg
}
