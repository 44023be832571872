package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultFile = "ggml-base.en.bin"
	DefaultURL  = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin"
)

var (
	ErrNotReady = errors.New("model not downloaded")
	ErrChecksum = errors.New("model checksum mismatch")
)

// Manager locates the speech model on disk and downloads it on request.
type Manager struct {
	Dir    string
	File   string
	URL    string
	SHA256 string // optional, hex

	Client *http.Client
}

func DefaultDir() string {
	if d, err := os.UserConfigDir(); err == nil {
		return filepath.Join(d, "dictate", "models")
	}
	return filepath.Join(os.TempDir(), "dictate", "models")
}

func New(dir string) *Manager {
	if dir == "" {
		dir = DefaultDir()
	}
	return &Manager{Dir: dir, File: DefaultFile, URL: DefaultURL}
}

// Path is where the model lives or will live once downloaded.
func (m *Manager) Path() string {
	if filepath.IsAbs(m.File) {
		return m.File
	}
	return filepath.Join(m.Dir, m.File)
}

// Location reports the model path and whether a model file exists there.
func (m *Manager) Location() (string, bool) {
	p := m.Path()
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return p, false
	}
	return p, true
}

// Ready reports whether the model file exists and is non-empty.
func (m *Manager) Ready() bool {
	info, err := os.Stat(m.Path())
	return err == nil && !info.IsDir() && info.Size() > 0
}

// Require returns the model path, or ErrNotReady when nothing usable is
// there yet.
func (m *Manager) Require() (string, error) {
	p := m.Path()
	if !m.Ready() {
		return p, fmt.Errorf("%w at %s", ErrNotReady, p)
	}
	return p, nil
}

// Download fetches the model into Dir. The file is written to a temp file
// beside the target and renamed into place only after the checksum (if
// configured) matches, so a partial download never looks ready.
func (m *Manager) Download(ctx context.Context, progress io.Writer) error {
	dst := m.Path()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".dictate-model-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.URL, nil)
	if err != nil {
		tmp.Close()
		return err
	}
	client := m.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("download model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		tmp.Close()
		return fmt.Errorf("download model: %s", resp.Status)
	}

	hasher := sha256.New()
	src := io.Reader(resp.Body)
	if progress != nil && resp.ContentLength > 0 {
		src = &progressReader{r: resp.Body, total: resp.ContentLength, w: progress}
	}
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), src); err != nil {
		tmp.Close()
		return fmt.Errorf("write model: %w", err)
	}
	if progress != nil && resp.ContentLength > 0 {
		fmt.Fprintln(progress)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write model: %w", err)
	}

	if m.SHA256 != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if !strings.EqualFold(got, m.SHA256) {
			return fmt.Errorf("%w: got %s, want %s", ErrChecksum, short(got), short(m.SHA256))
		}
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("install model: %w", err)
	}
	return nil
}

func short(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

type progressReader struct {
	r     io.Reader
	w     io.Writer
	total int64
	read  int64
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	pct := float64(p.read) / float64(p.total) * 100
	fmt.Fprintf(p.w, "\r  %.0f%% (%d / %d MB)", pct, p.read>>20, p.total>>20)
	return n, err
}

// Static is a fixed model location, for tests and the -model flag.
type Static struct {
	Path      string
	Available bool
}

func (s Static) Location() (string, bool) { return s.Path, s.Available }

func (s Static) Ready() bool { return s.Available }
