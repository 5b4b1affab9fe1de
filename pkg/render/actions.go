package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/papercomputeco/chatgate/pkg/imagedata"
)

const (
	CopyLabel      = "Copiar"
	CopiedLabel    = "Copiado!"
	CopyResetDelay = 2 * time.Second

	// DefaultDownloadName is the file name every downloaded image is saved as.
	DefaultDownloadName = "imagem_gerada_ia.png"
)

// CopyAction copies code to a clipboard and acknowledges it for a while.
type CopyAction struct {
	Text string

	// ResetDelay is how long the acknowledgement label stays up.
	ResetDelay time.Duration

	mu     sync.Mutex
	copied bool
	gen    uint64
}

// NewCopyAction creates a copy action for text.
func NewCopyAction(text string) *CopyAction {
	return &CopyAction{Text: text, ResetDelay: CopyResetDelay}
}

// Label is the text the affordance currently shows.
func (a *CopyAction) Label() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.copied {
		return CopiedLabel
	}
	return CopyLabel
}

// Copy hands the code to write and flips the label until ResetDelay elapses.
// Copying again restarts the delay.
func (a *CopyAction) Copy(write func(string) error) error {
	if err := write(a.Text); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}

	a.mu.Lock()
	a.copied = true
	a.gen++
	gen := a.gen
	delay := a.ResetDelay
	a.mu.Unlock()

	time.AfterFunc(delay, func() {
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.gen == gen {
			a.copied = false
		}
	})

	return nil
}

// DownloadAction saves an image under a fixed file name.
type DownloadAction struct {
	URL      string
	Filename string
}

// NewDownloadAction creates a download action for url.
func NewDownloadAction(url string) *DownloadAction {
	return &DownloadAction{URL: url, Filename: DefaultDownloadName}
}

// Save resolves the image through loader and writes it into dir, returning
// the written path. An existing file with the same name is overwritten.
func (d *DownloadAction) Save(ctx context.Context, loader *imagedata.Loader, dir string) (string, error) {
	data, err := loader.Load(ctx, d.URL)
	if err != nil {
		return "", fmt.Errorf("load image: %w", err)
	}

	path := filepath.Join(dir, d.Filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}

	return path, nil
}
