package indexbuilder

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corpuslex/corpuslex/internal/binaryio"
)

func writeTempFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestBuildRoundTrip(t *testing.T) {
	dir := t.TempDir()
	stemmed := writeTempFile(t, dir, "stemmed.txt",
		"1\talpha beta\n"+
			"2\talpha\n"+
			"3\tbeta gamma\n")
	tsv := writeTempFile(t, dir, "raw.tsv",
		"1\tsrc\thttp://a\tTitle A\ttext\n"+
			"2\tsrc\thttp://b\tTitle B\ttext\n"+
			"3\tsrc\thttp://c\tTitle C\ttext\n")
	outDir := filepath.Join(dir, "out")

	stats, err := Build(stemmed, tsv, outDir, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.DocumentsIndexed != 3 {
		t.Errorf("DocumentsIndexed = %d, want 3", stats.DocumentsIndexed)
	}
	if stats.UniqueTerms != 3 {
		t.Errorf("UniqueTerms = %d, want 3", stats.UniqueTerms)
	}
	if stats.TotalPostings != 5 {
		t.Errorf("TotalPostings = %d, want 5", stats.TotalPostings)
	}
	if stats.DocsWithMeta != 3 {
		t.Errorf("DocsWithMeta = %d, want 3", stats.DocsWithMeta)
	}

	lexData, err := os.ReadFile(filepath.Join(outDir, "lexicon.bin"))
	if err != nil {
		t.Fatalf("reading lexicon.bin: %v", err)
	}
	lr := binaryio.NewReader(lexData)
	magic, _ := lr.ReadU32()
	if magic != lexiconMagic {
		t.Fatalf("lexicon magic = %x, want %x", magic, lexiconMagic)
	}
	version, _ := lr.ReadU32()
	if version != fileVersion {
		t.Fatalf("lexicon version = %d, want %d", version, fileVersion)
	}
	termCount, _ := lr.ReadU32()
	if termCount != 3 {
		t.Fatalf("term_count = %d, want 3", termCount)
	}

	var terms []string
	for i := uint32(0); i < termCount; i++ {
		term, err := lr.ReadString()
		if err != nil {
			t.Fatalf("reading term %d: %v", i, err)
		}
		if _, err := lr.ReadU64(); err != nil {
			t.Fatalf("reading offset %d: %v", i, err)
		}
		if _, err := lr.ReadU32(); err != nil {
			t.Fatalf("reading count %d: %v", i, err)
		}
		terms = append(terms, term)
	}
	want := []string{"alpha", "beta", "gamma"}
	for i, w := range want {
		if terms[i] != w {
			t.Errorf("terms[%d] = %q, want %q (lexicon not sorted)", i, terms[i], w)
		}
	}

	postData, err := os.ReadFile(filepath.Join(outDir, "postings.bin"))
	if err != nil {
		t.Fatalf("reading postings.bin: %v", err)
	}
	pr := binaryio.NewReader(postData)
	pMagic, _ := pr.ReadU32()
	if pMagic != postingsMagic {
		t.Fatalf("postings magic = %x, want %x", pMagic, postingsMagic)
	}
	pr.ReadU32() // version
	total, _ := pr.ReadU64()
	if total != 5 {
		t.Fatalf("total_posting_count = %d, want 5", total)
	}
}

func TestBuildSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	stemmed := writeTempFile(t, dir, "stemmed.txt", "1\talpha\nnotabtab\n2\tbeta\n")
	tsv := writeTempFile(t, dir, "raw.tsv", "1\ts\tu\tt\ttext\nmissingcols\n2\ts\tu\tt2\ttext\n")
	outDir := filepath.Join(dir, "out")

	stats, err := Build(stemmed, tsv, outDir, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.DocumentsIndexed != 2 {
		t.Errorf("DocumentsIndexed = %d, want 2", stats.DocumentsIndexed)
	}
}

func TestBuildRejectsUnorderedDocIDs(t *testing.T) {
	dir := t.TempDir()
	stemmed := writeTempFile(t, dir, "stemmed.txt", "2\talpha\n1\tbeta\n")
	tsv := writeTempFile(t, dir, "raw.tsv", "1\ts\tu\tt\ttext\n2\ts\tu\tt\ttext\n")
	outDir := filepath.Join(dir, "out")

	if _, err := Build(stemmed, tsv, outDir, 0); err == nil {
		t.Fatal("expected ErrUnorderedDocIDs")
	}
}

func TestBuildDuplicateDocIDFirstWins(t *testing.T) {
	dir := t.TempDir()
	stemmed := writeTempFile(t, dir, "stemmed.txt", "1\talpha\n")
	tsv := writeTempFile(t, dir, "raw.tsv", "1\ts\tu\tFirst\ttext\n1\ts\tu\tSecond\ttext\n")
	outDir := filepath.Join(dir, "out")

	stats, err := Build(stemmed, tsv, outDir, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.DocsWithMeta != 1 {
		t.Fatalf("DocsWithMeta = %d, want 1", stats.DocsWithMeta)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "forward.bin"))
	if err != nil {
		t.Fatalf("reading forward.bin: %v", err)
	}
	r := binaryio.NewReader(data)
	r.ReadU32() // magic
	r.ReadU32() // version
	r.ReadU32() // docs_with_meta
	r.ReadU32() // max_doc_id
	r.ReadU32() // doc_id
	titleLen, _ := r.ReadU16()
	r.ReadU16() // url_len
	title, _ := r.ReadBytes(int(titleLen))
	if string(title) != "First" {
		t.Errorf("title = %q, want %q (first-wins duplicate doc_id)", title, "First")
	}
}

func TestBuildForwardMetaColumnMapping(t *testing.T) {
	dir := t.TempDir()
	stemmed := writeTempFile(t, dir, "stemmed.txt", "1\talpha\n")
	tsv := writeTempFile(t, dir, "raw.tsv", "1\tsrc\thttp://example.com\tExample Title\ttext\n")
	outDir := filepath.Join(dir, "out")

	if _, err := Build(stemmed, tsv, outDir, 0); err != nil {
		t.Fatalf("Build: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "forward.bin"))
	if err != nil {
		t.Fatalf("reading forward.bin: %v", err)
	}
	r := binaryio.NewReader(data)
	r.ReadU32() // magic
	r.ReadU32() // version
	r.ReadU32() // docs_with_meta
	r.ReadU32() // max_doc_id
	r.ReadU32() // doc_id
	titleLen, _ := r.ReadU16()
	urlLen, _ := r.ReadU16()
	title, _ := r.ReadBytes(int(titleLen))
	url, _ := r.ReadBytes(int(urlLen))
	if string(title) != "Example Title" {
		t.Errorf("title = %q, want %q (column 3, not source)", title, "Example Title")
	}
	if string(url) != "http://example.com" {
		t.Errorf("url = %q, want %q (column 2, not source)", url, "http://example.com")
	}
}

func TestBuildToleratesTabsInTextColumn(t *testing.T) {
	dir := t.TempDir()
	stemmed := writeTempFile(t, dir, "stemmed.txt", "1\talpha\n")
	tsv := writeTempFile(t, dir, "raw.tsv", "1\tsrc\thttp://a\tTitle A\ttext\twith\tembedded\ttabs\n")
	outDir := filepath.Join(dir, "out")

	stats, err := Build(stemmed, tsv, outDir, 0)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if stats.DocsWithMeta != 1 {
		t.Errorf("DocsWithMeta = %d, want 1 (a tab-bearing text column should not evict the document)", stats.DocsWithMeta)
	}
}
