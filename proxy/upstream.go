package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// editForm is the multipart body of an upstream image edit.
type editForm struct {
	Prompt string
	Image  []byte
	Model  string
	N      int
	Size   string
}

// postJSON sends payload as JSON to the upstream path.
func (p *Proxy) postJSON(ctx context.Context, cfg Config, path string, payload any) ([]byte, error) {
	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	return p.send(ctx, cfg, path, "application/json", reqBody)
}

// postMultipart sends form as multipart/form-data to the upstream path.
func (p *Proxy) postMultipart(ctx context.Context, cfg Config, path string, form editForm) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"prompt", form.Prompt},
		{"model", form.Model},
		{"n", strconv.Itoa(form.N)},
		{"size", form.Size},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, fmt.Errorf("write field %s: %w", f[0], err)
		}
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="image.png"`)
	header.Set("Content-Type", "image/png")
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create image part: %w", err)
	}
	if _, err := part.Write(form.Image); err != nil {
		return nil, fmt.Errorf("write image part: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	return p.send(ctx, cfg, path, w.FormDataContentType(), buf.Bytes())
}

// send performs exactly one upstream call. Non-2xx answers become an
// UpstreamError carrying the decoded upstream body.
func (p *Proxy) send(ctx context.Context, cfg Config, path, contentType string, body []byte) ([]byte, error) {
	if cfg.UpstreamTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.UpstreamTimeout)
		defer cancel()
	}

	upstreamURL := strings.TrimRight(cfg.UpstreamURL, "/") + path
	p.logger.Debug("forwarding request to upstream",
		zap.String("url", upstreamURL),
		zap.Int("body_size", len(body)),
	)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamURL, bytes.NewReader(body))
	if err != nil {
		return nil, TransportError{Op: "create upstream request", Err: err}
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, TransportError{Op: "upstream request", Err: err}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, TransportError{Op: "read upstream response", Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return nil, UpstreamError{
			Status:  httpResp.StatusCode,
			Message: msgUpstreamFailed,
			Details: decodeDetails(respBody),
		}
	}

	if !json.Valid(respBody) {
		return nil, TransportError{Op: "decode upstream response", Err: fmt.Errorf("invalid JSON body (%d bytes)", len(respBody))}
	}

	return respBody, nil
}

// decodeDetails returns the upstream error body as JSON when it is JSON, and
// as text otherwise.
func decodeDetails(body []byte) any {
	var details any
	if err := json.Unmarshal(body, &details); err != nil {
		return string(body)
	}
	return details
}
