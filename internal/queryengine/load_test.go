package queryengine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/corpuslex/corpuslex/internal/indexbuilder"
	apperrors "github.com/corpuslex/corpuslex/pkg/errors"
)

func TestLoadRejectsMissingFiles(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir); !errors.Is(err, apperrors.ErrIoError) {
		t.Fatalf("Load on empty dir: got %v, want ErrIoError", err)
	}
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	writeMinimalIndex(t, dir)

	// Corrupt the postings magic.
	path := filepath.Join(dir, "postings.bin")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 0xFF
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); !errors.Is(err, apperrors.ErrInvalidFormat) {
		t.Fatalf("Load with bad magic: got %v, want ErrInvalidFormat", err)
	}
}

func TestLoadRejectsBadVersion(t *testing.T) {
	dir := t.TempDir()
	writeMinimalIndex(t, dir)

	path := filepath.Join(dir, "lexicon.bin")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Version is the second u32, bytes 4..8, little-endian.
	data[4] = 99
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); !errors.Is(err, apperrors.ErrInvalidFormat) {
		t.Fatalf("Load with bad version: got %v, want ErrInvalidFormat", err)
	}
}

// writeMinimalIndex builds a tiny valid index directly under dir.
func writeMinimalIndex(t *testing.T, dir string) {
	t.Helper()
	stemmedPath := filepath.Join(dir, "stemmed.txt")
	tsvPath := filepath.Join(dir, "raw.tsv")
	if err := os.WriteFile(stemmedPath, []byte("1\talpha\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tsvPath, []byte("1\ts\thttp://a\tTitle\ttext\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := indexbuilder.Build(stemmedPath, tsvPath, dir, 0); err != nil {
		t.Fatal(err)
	}
}
