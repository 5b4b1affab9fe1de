// Package client sends request envelopes to the chatgate gateway and turns the
// replies into response envelopes for the renderer.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/chatgate/pkg/imagedata"
	"github.com/papercomputeco/chatgate/pkg/llm"
)

// ConnectionApology is shown when the gateway cannot be reached or answers
// with something unreadable.
const ConnectionApology = "Desculpe, não consigo me conectar ao servidor. Verifique sua conexão ou tente novamente mais tarde."

// Client talks to a single gateway endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a Client for endpoint. A nil httpClient gets one without a
// timeout: a turn waits for the gateway as long as it takes.
func New(endpoint string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Send dispatches env and waits for the reply. Failures never escape as Go
// errors: they come back as error envelopes so the turn can be rendered.
func (c *Client) Send(ctx context.Context, env llm.RequestEnvelope) llm.ResponseEnvelope {
	status, body, err := c.post(ctx, env)
	if err != nil {
		c.logger.Error("failed to reach gateway", zap.String("type", string(env.Type)), zap.Error(err))
		return llm.ErrorResult(ConnectionApology, err.Error())
	}

	if status < 200 || status > 299 {
		var errResp llm.ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
			c.logger.Error("unreadable gateway error", zap.Int("status", status), zap.String("body", string(body)))
			return llm.ErrorResult(ConnectionApology, string(body))
		}
		c.logger.Warn("gateway returned error",
			zap.Int("status", status),
			zap.String("error", errResp.Error),
		)
		return llm.ErrorResult(errResp.Error, errResp.Details)
	}

	resp, err := Decode(env.Type, body)
	if err != nil {
		c.logger.Error("failed to decode gateway response", zap.Error(err))
		return llm.ErrorResult(ConnectionApology, err.Error())
	}

	return resp
}

func (c *Client) post(ctx context.Context, env llm.RequestEnvelope) (int, []byte, error) {
	reqBody, err := json.Marshal(env)
	if err != nil {
		return 0, nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug("dispatching turn",
		zap.String("type", string(env.Type)),
		zap.Int("message_count", len(env.Messages)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, body, nil
}

// Decode reads a successful gateway body according to the request type that
// produced it.
func Decode(t llm.RequestType, body []byte) (llm.ResponseEnvelope, error) {
	switch t {
	case llm.RequestChat:
		var resp llm.ChatCompletionResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return llm.ResponseEnvelope{}, fmt.Errorf("unmarshal chat response: %w", err)
		}
		if len(resp.Choices) == 0 {
			return llm.ResponseEnvelope{}, fmt.Errorf("chat response has no choices")
		}
		return llm.TextResponse(resp.Choices[0].Message.Content), nil

	case llm.RequestImage, llm.RequestImageEdit:
		var resp llm.ImagesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return llm.ResponseEnvelope{}, fmt.Errorf("unmarshal image response: %w", err)
		}
		if len(resp.Data) == 0 {
			return llm.ResponseEnvelope{}, fmt.Errorf("image response has no data")
		}
		img := resp.Data[0]
		if img.URL != "" {
			return llm.ImageResponse(img.URL), nil
		}
		if img.B64JSON != "" {
			return llm.ImageResponse("data:image/png;base64," + img.B64JSON), nil
		}
		return llm.ResponseEnvelope{}, fmt.Errorf("image response has neither url nor b64_json")

	default:
		return llm.ResponseEnvelope{}, fmt.Errorf("unknown request type %q", t)
	}
}

// ImageReference converts raw image bytes picked by the user into the
// reference format carried by an image-edit envelope.
func ImageReference(data []byte) string {
	return imagedata.DataURL(data)
}
