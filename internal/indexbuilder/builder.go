// Package indexbuilder constructs the on-disk postings/lexicon/forward
// index from a stemmed token stream and a raw document TSV, grounded on
// the original source's single-pass hash-table build.
package indexbuilder

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/corpuslex/corpuslex/internal/binaryio"
	"github.com/corpuslex/corpuslex/pkg/errors"
)

const (
	postingsMagic uint32 = 0x504F5354 // "POST"
	lexiconMagic  uint32 = 0x4C455849 // "LEXI"
	forwardMagic  uint32 = 0x46575244 // "FWRD"
	fileVersion   uint32 = 1
)

// docMeta is the forward-index entry for one document.
type docMeta struct {
	docID uint32
	title string
	url   string
}

// Stats summarizes a completed build, echoed by the CLI as key=value
// lines and carried in the worker's BuildCompleted event.
type Stats struct {
	DocumentsIndexed uint64
	TokensSeen       uint64
	UniqueTerms      uint64
	TotalPostings    uint64
	DocsWithMeta     uint64
}

// Build reads stemmedPath (doc_id\ttoken tokens...) and tsvPath
// (doc_id\tsource\turl\ttitle\ttext), and writes postings.bin,
// lexicon.bin and forward.bin under outDir. hashCapacity is rounded up
// to the next power of two with a floor of 1024; pass 0 to use the
// floor.
func Build(stemmedPath, tsvPath, outDir string, hashCapacity uint32) (Stats, error) {
	var stats Stats

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return stats, fmt.Errorf("%w: creating output directory %s: %v", errors.ErrIoError, outDir, err)
	}

	table := newHashTable(hashCapacity)

	var lastDocID uint32
	sawAnyDoc := false

	stemmedFile, err := os.Open(stemmedPath)
	if err != nil {
		return stats, fmt.Errorf("%w: opening %s: %v", errors.ErrIoError, stemmedPath, err)
	}
	defer stemmedFile.Close()

	scanner := bufio.NewScanner(stemmedFile)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		tab := strings.IndexByte(line, '\t')
		if tab < 0 {
			continue // best-effort line parsing: malformed lines are skipped
		}
		idStr, body := line[:tab], line[tab+1:]
		docID64, err := strconv.ParseUint(idStr, 10, 32)
		if err != nil {
			continue
		}
		docID := uint32(docID64)

		if sawAnyDoc && docID < lastDocID {
			return stats, fmt.Errorf("%w: doc_id %d follows %d", errors.ErrUnorderedDocIDs, docID, lastDocID)
		}
		if docID != lastDocID || !sawAnyDoc {
			stats.DocumentsIndexed++
		}
		lastDocID = docID
		sawAnyDoc = true

		if body == "" {
			continue
		}
		for _, tok := range strings.Fields(body) {
			stats.TokensSeen++
			if err := table.insert(tok, docID); err != nil {
				return stats, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("%w: reading %s: %v", errors.ErrIoError, stemmedPath, err)
	}

	metas, maxDocID, err := readForwardMetadata(tsvPath)
	if err != nil {
		return stats, err
	}
	stats.DocsWithMeta = uint64(len(metas))

	entries := table.entries()
	stats.UniqueTerms = uint64(len(entries))
	for _, e := range entries {
		stats.TotalPostings += uint64(len(e.postings))
	}

	if err := writePostingsAndLexicon(outDir, entries); err != nil {
		return stats, err
	}
	if err := writeForward(outDir, metas, maxDocID); err != nil {
		return stats, err
	}

	return stats, nil
}

// readForwardMetadata parses the raw TSV, keeping only doc_id, url and
// title, first-wins on duplicate doc_id.
func readForwardMetadata(tsvPath string) (map[uint32]docMeta, uint32, error) {
	f, err := os.Open(tsvPath)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: opening %s: %v", errors.ErrIoError, tsvPath, err)
	}
	defer f.Close()

	metas := make(map[uint32]docMeta)
	var maxDocID uint32

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		cols := strings.SplitN(line, "\t", 5)
		if len(cols) < 5 {
			continue // best-effort: wrong column count is MalformedLine, silently skipped
		}
		docID64, err := strconv.ParseUint(cols[0], 10, 32)
		if err != nil {
			continue
		}
		docID := uint32(docID64)
		if docID == 0 {
			continue
		}
		if _, exists := metas[docID]; exists {
			continue // first wins on duplicate doc_id, see design notes
		}
		metas[docID] = docMeta{docID: docID, url: cols[2], title: cols[3]}
		if docID > maxDocID {
			maxDocID = docID
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: reading %s: %v", errors.ErrIoError, tsvPath, err)
	}
	return metas, maxDocID, nil
}

func writePostingsAndLexicon(outDir string, entries []termEntry) error {
	postingsPath := filepath.Join(outDir, "postings.bin")
	pf, err := os.Create(postingsPath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", errors.ErrIoError, postingsPath, err)
	}
	defer pf.Close()

	pw := binaryio.NewWriter(pf)
	if err := pw.WriteU32(postingsMagic); err != nil {
		return err
	}
	if err := pw.WriteU32(fileVersion); err != nil {
		return err
	}
	if err := pw.WriteU64(0); err != nil { // placeholder, rewritten below
		return err
	}

	lexiconPath := filepath.Join(outDir, "lexicon.bin")
	lf, err := os.Create(lexiconPath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", errors.ErrIoError, lexiconPath, err)
	}
	defer lf.Close()

	lw := binaryio.NewWriter(lf)
	if err := lw.WriteU32(lexiconMagic); err != nil {
		return err
	}
	if err := lw.WriteU32(fileVersion); err != nil {
		return err
	}
	if err := lw.WriteU32(uint32(len(entries))); err != nil {
		return err
	}

	var totalPostings uint64
	var offset uint64
	for _, e := range entries {
		if err := lw.WriteString(e.term); err != nil {
			return err
		}
		if err := lw.WriteU64(offset); err != nil {
			return err
		}
		if err := lw.WriteU32(uint32(len(e.postings))); err != nil {
			return err
		}
		for _, docID := range e.postings {
			if err := pw.WriteU32(docID); err != nil {
				return err
			}
		}
		offset += uint64(len(e.postings)) * 4
		totalPostings += uint64(len(e.postings))
	}
	if err := lw.Flush(); err != nil {
		return err
	}
	if err := pw.Flush(); err != nil {
		return err
	}

	// rewrite the total_posting_count header field now that the payload
	// has been streamed.
	if _, err := pf.Seek(8, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seeking %s: %v", errors.ErrIoError, postingsPath, err)
	}
	var countBuf [8]byte
	putLE64(countBuf[:], totalPostings)
	if _, err := pf.Write(countBuf[:]); err != nil {
		return fmt.Errorf("%w: rewriting header of %s: %v", errors.ErrIoError, postingsPath, err)
	}
	return nil
}

func writeForward(outDir string, metas map[uint32]docMeta, maxDocID uint32) error {
	forwardPath := filepath.Join(outDir, "forward.bin")
	ff, err := os.Create(forwardPath)
	if err != nil {
		return fmt.Errorf("%w: creating %s: %v", errors.ErrIoError, forwardPath, err)
	}
	defer ff.Close()

	fw := binaryio.NewWriter(ff)
	if err := fw.WriteU32(forwardMagic); err != nil {
		return err
	}
	if err := fw.WriteU32(fileVersion); err != nil {
		return err
	}
	if err := fw.WriteU32(uint32(len(metas))); err != nil {
		return err
	}
	if err := fw.WriteU32(maxDocID); err != nil {
		return err
	}

	for docID := uint32(1); docID <= maxDocID; docID++ {
		m, ok := metas[docID]
		if !ok {
			continue
		}
		if err := fw.WriteU32(m.docID); err != nil {
			return err
		}
		if err := fw.WriteU16(uint16(len(m.title))); err != nil {
			return err
		}
		if err := fw.WriteU16(uint16(len(m.url))); err != nil {
			return err
		}
		if err := fw.WriteBytes([]byte(m.title)); err != nil {
			return err
		}
		if err := fw.WriteBytes([]byte(m.url)); err != nil {
			return err
		}
	}
	return fw.Flush()
}

func putLE64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}
