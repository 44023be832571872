package encoder

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Archive stores each recording as rec-<timestamp>.flac under Dir.
type Archive struct {
	Dir string
	now func() time.Time
}

func NewArchive(dir string) *Archive {
	return &Archive{Dir: dir, now: time.Now}
}

func (a *Archive) Archive(samples []float32) error {
	data, err := EncodeFloat32(samples)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(a.Dir, 0o755); err != nil {
		return fmt.Errorf("create archive dir: %w", err)
	}
	name := "rec-" + a.now().Format("20060102-150405.000") + ".flac"
	return os.WriteFile(filepath.Join(a.Dir, name), data, 0o644)
}
