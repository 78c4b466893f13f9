package etl

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/FACorreiaa/statement-etl/internal/domain/transaction"
)

// archiveProcessed moves a successfully ingested file into the processed
// directory under its provenance name, so archive names line up with the
// source_file column.
func (o *Orchestrator) archiveProcessed(path string, records []transaction.Record) error {
	name := filepath.Base(path)
	if len(records) > 0 && records[0].SourceFile != "" {
		name = records[0].SourceFile + filepath.Ext(path)
	}
	return moveFile(path, filepath.Join(o.dirs.Processed, name))
}

// archiveError moves a failed file into the error directory under its
// original name for manual inspection.
func (o *Orchestrator) archiveError(path string) error {
	return moveFile(path, filepath.Join(o.dirs.Error, filepath.Base(path)))
}

// moveFile renames when possible and falls back to copy-and-remove for
// cross-device moves.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying to %s: %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", dst, err)
	}
	return os.Remove(src)
}
