// Package queryengine loads a postings/lexicon/forward index built by
// indexbuilder and evaluates boolean queries against it. The engine is
// immutable once loaded: Load either succeeds and returns a Ready
// engine, or fails outright, there is no partially loaded state.
package queryengine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/corpuslex/corpuslex/internal/binaryio"
	"github.com/corpuslex/corpuslex/pkg/errors"
)

const (
	postingsMagic uint32 = 0x504F5354
	lexiconMagic  uint32 = 0x4C455849
	forwardMagic  uint32 = 0x46575244
	fileVersion   uint32 = 1
)

// lexiconEntry is a decoded (term, offset, count) tuple, kept in the
// file's native ascending-term order so lookups binary search it.
type lexiconEntry struct {
	term    string
	offset  uint64
	count   uint32
}

// DocMeta carries the human-facing fields for one document.
type DocMeta struct {
	Title string
	URL   string
}

// Engine is a loaded, immutable index ready to evaluate queries. There
// is no mutation after Load: all fields are read-only for the lifetime
// of the value, so concurrent evaluation from multiple goroutines is
// safe without locking.
type Engine struct {
	postings    []byte // payload only, header stripped
	lexicon     []lexiconEntry
	metasByID   map[uint32]DocMeta
	universeIDs []uint32
	maxDocID    uint32
}

// Load opens postings.bin, lexicon.bin and forward.bin under dir,
// validates their magics and versions, and builds the in-memory
// structures the evaluator needs. Any validation failure aborts the
// load; there is no partial result.
func Load(dir string) (*Engine, error) {
	var (
		postings    []byte
		lexicon     []lexiconEntry
		metas       map[uint32]DocMeta
		universeIDs []uint32
		maxDocID    uint32
	)

	g, _ := errgroup.WithContext(context.Background())
	g.Go(func() error {
		p, err := loadPostings(filepath.Join(dir, "postings.bin"))
		postings = p
		return err
	})
	g.Go(func() error {
		l, err := loadLexicon(filepath.Join(dir, "lexicon.bin"))
		lexicon = l
		return err
	})
	g.Go(func() error {
		m, ids, max, err := loadForward(filepath.Join(dir, "forward.bin"))
		metas, universeIDs, maxDocID = m, ids, max
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Engine{
		postings:    postings,
		lexicon:     lexicon,
		metasByID:   metas,
		universeIDs: universeIDs,
		maxDocID:    maxDocID,
	}, nil
}

func loadPostings(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", errors.ErrIoError, path, err)
	}
	r := binaryio.NewReader(data)
	magic, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if magic != postingsMagic {
		return nil, fmt.Errorf("%w: %s has magic %x, want %x", errors.ErrInvalidFormat, path, magic, postingsMagic)
	}
	version, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if version != fileVersion {
		return nil, fmt.Errorf("%w: %s has version %d, want %d", errors.ErrInvalidFormat, path, version, fileVersion)
	}
	total, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	payload, err := r.ReadBytes(r.Remaining())
	if err != nil {
		return nil, err
	}
	if uint64(len(payload)) != total*4 {
		return nil, fmt.Errorf("%w: %s declares %d postings but payload is %d bytes", errors.ErrInvalidFormat, path, total, len(payload))
	}
	return payload, nil
}

func loadLexicon(path string) ([]lexiconEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", errors.ErrIoError, path, err)
	}
	r := binaryio.NewReader(data)
	magic, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if magic != lexiconMagic {
		return nil, fmt.Errorf("%w: %s has magic %x, want %x", errors.ErrInvalidFormat, path, magic, lexiconMagic)
	}
	version, err := r.ReadU32()
	if err != nil {
		return nil, err
	}
	if version != fileVersion {
		return nil, fmt.Errorf("%w: %s has version %d, want %d", errors.ErrInvalidFormat, path, version, fileVersion)
	}
	count, err := r.ReadU32()
	if err != nil {
		return nil, err
	}

	entries := make([]lexiconEntry, count)
	for i := uint32(0); i < count; i++ {
		term, err := r.ReadString()
		if err != nil {
			return nil, err
		}
		offset, err := r.ReadU64()
		if err != nil {
			return nil, err
		}
		postingsCount, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		entries[i] = lexiconEntry{term: term, offset: offset, count: postingsCount}
	}
	return entries, nil
}

func loadForward(path string) (map[uint32]DocMeta, []uint32, uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("%w: opening %s: %v", errors.ErrIoError, path, err)
	}
	r := binaryio.NewReader(data)
	magic, err := r.ReadU32()
	if err != nil {
		return nil, nil, 0, err
	}
	if magic != forwardMagic {
		return nil, nil, 0, fmt.Errorf("%w: %s has magic %x, want %x", errors.ErrInvalidFormat, path, magic, forwardMagic)
	}
	version, err := r.ReadU32()
	if err != nil {
		return nil, nil, 0, err
	}
	if version != fileVersion {
		return nil, nil, 0, fmt.Errorf("%w: %s has version %d, want %d", errors.ErrInvalidFormat, path, version, fileVersion)
	}
	docsWithMeta, err := r.ReadU32()
	if err != nil {
		return nil, nil, 0, err
	}
	maxDocID, err := r.ReadU32()
	if err != nil {
		return nil, nil, 0, err
	}

	metas := make(map[uint32]DocMeta, docsWithMeta)
	ids := make([]uint32, 0, docsWithMeta)
	for i := uint32(0); i < docsWithMeta; i++ {
		docID, err := r.ReadU32()
		if err != nil {
			return nil, nil, 0, err
		}
		titleLen, err := r.ReadU16()
		if err != nil {
			return nil, nil, 0, err
		}
		urlLen, err := r.ReadU16()
		if err != nil {
			return nil, nil, 0, err
		}
		titleBytes, err := r.ReadBytes(int(titleLen))
		if err != nil {
			return nil, nil, 0, err
		}
		urlBytes, err := r.ReadBytes(int(urlLen))
		if err != nil {
			return nil, nil, 0, err
		}
		metas[docID] = DocMeta{Title: string(titleBytes), URL: string(urlBytes)}
		ids = append(ids, docID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return metas, ids, maxDocID, nil
}

// postingsFor returns the posting list for term, or nil if the term is
// absent from the lexicon.
func (e *Engine) postingsFor(term string) []uint32 {
	i := sort.Search(len(e.lexicon), func(i int) bool { return e.lexicon[i].term >= term })
	if i >= len(e.lexicon) || e.lexicon[i].term != term {
		return nil
	}
	entry := e.lexicon[i]
	start := entry.offset
	end := start + uint64(entry.count)*4
	raw := e.postings[start:end]
	out := make([]uint32, entry.count)
	for j := range out {
		out[j] = leU32(raw[j*4:])
	}
	return out
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}

// Universe returns the ascending list of doc_ids with forward metadata,
// the domain over which NOT is defined.
func (e *Engine) Universe() []uint32 { return e.universeIDs }

// Meta returns the human-facing fields for docID, if present.
func (e *Engine) Meta(docID uint32) (DocMeta, bool) {
	m, ok := e.metasByID[docID]
	return m, ok
}
