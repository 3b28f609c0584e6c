package indexbuilder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/corpuslex/corpuslex/internal/binaryio"
	"github.com/corpuslex/corpuslex/pkg/errors"
)

// WriteTermStats reads the lexicon just written to indexDir and emits a
// term,postings_count CSV to path, sorted in the lexicon's own
// (lexicographic) order. This is a diagnostic aid for operators sizing
// hash_capacity for future builds, not part of the on-disk contract.
func WriteTermStats(path, indexDir string) error {
	data, err := os.ReadFile(filepath.Join(indexDir, "lexicon.bin"))
	if err != nil {
		return fmt.Errorf("%w: opening lexicon.bin: %v", errors.ErrIoError, err)
	}
	r := binaryio.NewReader(data)
	if _, err := r.ReadU32(); err != nil { // magic
		return err
	}
	if _, err := r.ReadU32(); err != nil { // version
		return err
	}
	count, err := r.ReadU32()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", errors.ErrIoError, path, err)
	}
	defer f.Close()

	if _, err := f.WriteString("term,postings_count\n"); err != nil {
		return fmt.Errorf("%w: writing %s: %v", errors.ErrIoError, path, err)
	}
	for i := uint32(0); i < count; i++ {
		term, err := r.ReadString()
		if err != nil {
			return err
		}
		if _, err := r.ReadU64(); err != nil { // offset, unused here
			return err
		}
		postingsCount, err := r.ReadU32()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(f, "%s,%d\n", term, postingsCount); err != nil {
			return fmt.Errorf("%w: writing %s: %v", errors.ErrIoError, path, err)
		}
	}
	return nil
}
