// Package imagedata resolves the image references that travel through the
// widget (data URLs, http(s) URLs, raw base64) into bytes, and normalizes
// them to PNG for the upstream edit endpoint.
package imagedata

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"strings"

	"github.com/vincent-petithory/dataurl"
)

// DefaultMaxBytes bounds how much a remote image fetch may read.
const DefaultMaxBytes = 20 << 20

var (
	// ErrEmptySource is returned when there is no image reference at all.
	ErrEmptySource = errors.New("empty image source")

	// ErrUnsupportedImage is returned when bytes cannot be decoded as an image.
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrTooLarge is returned when a fetched image exceeds the loader limit.
	ErrTooLarge = errors.New("image exceeds size limit")
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

// Loader resolves image references into raw bytes.
type Loader struct {
	Client   *http.Client
	MaxBytes int64
}

// NewLoader creates a Loader using the given client, or http.DefaultClient.
func NewLoader(client *http.Client) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Loader{Client: client, MaxBytes: DefaultMaxBytes}
}

// Load returns the bytes behind src. A data URL is decoded in place, an
// http(s) URL is fetched once, anything else is treated as raw base64.
func (l *Loader) Load(ctx context.Context, src string) ([]byte, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, ErrEmptySource
	}

	switch {
	case IsDataURL(src):
		du, err := dataurl.DecodeString(src)
		if err != nil {
			return nil, fmt.Errorf("decode data url: %w", err)
		}
		return du.Data, nil
	case IsRemoteURL(src):
		return l.fetch(ctx, src)
	default:
		data, err := base64.StdEncoding.DecodeString(src)
		if err != nil {
			return nil, fmt.Errorf("decode base64 image: %w", err)
		}
		return data, nil
	}
}

func (l *Loader) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch image: status %d", resp.StatusCode)
	}

	limit := l.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxBytes
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrTooLarge
	}

	return data, nil
}

// IsPNG reports whether data starts with the PNG signature.
func IsPNG(data []byte) bool {
	return bytes.HasPrefix(data, pngSignature)
}

// ToPNG returns data unchanged when it is already a PNG, otherwise decodes it
// (JPEG or GIF) and re-encodes it as PNG.
func ToPNG(data []byte) ([]byte, error) {
	if IsPNG(data) {
		return data, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}

	return buf.Bytes(), nil
}

// PNGDataURL wraps PNG bytes (or raw base64 PNG) in a data URL.
func PNGDataURL(data []byte) string {
	return dataurl.New(data, "image/png").String()
}

// DataURL wraps arbitrary image bytes in a data URL, sniffing the media type.
func DataURL(data []byte) string {
	return dataurl.EncodeBytes(data)
}

// IsDataURL reports whether s is an embedded image reference.
func IsDataURL(s string) bool {
	return hasPrefixFold(s, "data:")
}

// IsRemoteURL reports whether s uses an http or https scheme.
func IsRemoteURL(s string) bool {
	return hasPrefixFold(s, "http://") || hasPrefixFold(s, "https://")
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
