package etl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ── Destination ────────────────────────────────────────────
// A Destination persists finished artifacts. Artifacts only reach it after
// their dataset exported without a fatal error.

type Destination interface {
	Write(ctx context.Context, a Artifact) error
}

// FileDestination writes each artifact to Dir/OutFile.
type FileDestination struct {
	Dir string
}

func (d *FileDestination) Write(ctx context.Context, a Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if a.OutFile == "" || filepath.Base(a.OutFile) != a.OutFile {
		return fmt.Errorf("invalid output file name %q", a.OutFile)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	// Write to a temp file first so a failed run never leaves half a file.
	path := filepath.Join(d.Dir, a.OutFile)
	tmp, err := os.CreateTemp(d.Dir, "."+a.OutFile+".*")
	if err != nil {
		return fmt.Errorf("create %s: %w", a.OutFile, err)
	}
	if _, err := tmp.WriteString(a.Text); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", a.OutFile, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s: %w", a.OutFile, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename %s: %w", a.OutFile, err)
	}
	return nil
}
