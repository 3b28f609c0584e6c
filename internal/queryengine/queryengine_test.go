package queryengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/corpuslex/corpuslex/internal/indexbuilder"
)

func buildTestIndex(t *testing.T, stemmed, tsv string) *Engine {
	t.Helper()
	dir := t.TempDir()
	stemmedPath := filepath.Join(dir, "stemmed.txt")
	tsvPath := filepath.Join(dir, "raw.tsv")
	outDir := filepath.Join(dir, "index")

	writeFile(t, stemmedPath, stemmed)
	writeFile(t, tsvPath, tsv)

	if _, err := indexbuilder.Build(stemmedPath, tsvPath, outDir, 0); err != nil {
		t.Fatalf("Build: %v", err)
	}
	engine, err := Load(outDir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return engine
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func TestS1EmptyQuery(t *testing.T) {
	e := buildTestIndex(t, "1\talpha\n", "1\ts\tu\tt\ttext\n")
	res, err := e.Search("")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.DocIDs) != 0 {
		t.Fatalf("expected empty result, got %v", res.DocIDs)
	}
}

func TestS2SingleTerm(t *testing.T) {
	e := buildTestIndex(t,
		"1\talpha\n2\tother\n3\talpha\n4\tother\n5\talpha\n",
		"1\ts\tu\tt1\ttext\n2\ts\tu\tt2\ttext\n3\ts\tu\tt3\ttext\n4\ts\tu\tt4\ttext\n5\ts\tu\tt5\ttext\n")
	res, err := e.Search("alpha")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	page := res.Paginate(0, 10)
	if page.Total != 3 {
		t.Fatalf("Total = %d, want 3", page.Total)
	}
	want := []uint32{1, 3, 5}
	for i, w := range want {
		if page.DocIDs[i] != w {
			t.Errorf("DocIDs[%d] = %d, want %d", i, page.DocIDs[i], w)
		}
	}
}

func TestS3Intersection(t *testing.T) {
	e := buildTestIndex(t,
		"1\talpha\n2\talpha beta\n3\talpha beta\n4\tbeta\n",
		"1\ts\tu\tt1\ttext\n2\ts\tu\tt2\ttext\n3\ts\tu\tt3\ttext\n4\ts\tu\tt4\ttext\n")
	res, err := e.Search("alpha && beta")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	page := res.Paginate(0, 10)
	if page.Total != 2 {
		t.Fatalf("Total = %d, want 2", page.Total)
	}
	if page.DocIDs[0] != 2 || page.DocIDs[1] != 3 {
		t.Fatalf("DocIDs = %v, want [2 3]", page.DocIDs)
	}
}

func TestS4ImplicitAndWithNot(t *testing.T) {
	e := buildTestIndex(t,
		"1\talpha\n2\talpha beta\n3\talpha beta\n4\tbeta\n",
		"1\ts\tu\tt1\ttext\n2\ts\tu\tt2\ttext\n3\ts\tu\tt3\ttext\n4\ts\tu\tt4\ttext\n")
	res, err := e.Search("alpha !beta")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	page := res.Paginate(0, 10)
	if page.Total != 1 || page.DocIDs[0] != 1 {
		t.Fatalf("got total=%d docs=%v, want total=1 docs=[1]", page.Total, page.DocIDs)
	}
}

func TestS5ParenthesizedOrInsideAnd(t *testing.T) {
	e := buildTestIndex(t,
		"1\talpha gamma\n2\talpha beta\n3\talpha beta\n4\tbeta\n5\tgamma\n",
		"1\ts\tu\tt1\ttext\n2\ts\tu\tt2\ttext\n3\ts\tu\tt3\ttext\n4\ts\tu\tt4\ttext\n5\ts\tu\tt5\ttext\n")
	res, err := e.Search("alpha && (beta || gamma)")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	page := res.Paginate(0, 10)
	if page.Total != 3 {
		t.Fatalf("Total = %d, want 3", page.Total)
	}
	want := []uint32{1, 2, 3}
	for i, w := range want {
		if page.DocIDs[i] != w {
			t.Errorf("DocIDs[%d] = %d, want %d", i, page.DocIDs[i], w)
		}
	}
}

func TestS6StemmingAtQueryTime(t *testing.T) {
	e := buildTestIndex(t, "7\trunn\n", "7\ts\tu\tt7\ttext\n")
	res, err := e.Search("running")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	page := res.Paginate(0, 10)
	if page.Total != 1 || page.DocIDs[0] != 7 {
		t.Fatalf("got total=%d docs=%v, want total=1 docs=[7]", page.Total, page.DocIDs)
	}
}

func TestUnbalancedParentheses(t *testing.T) {
	e := buildTestIndex(t, "1\talpha\n", "1\ts\tu\tt\ttext\n")
	if _, err := e.Search("(alpha"); err == nil {
		t.Fatal("expected unbalanced parentheses error")
	}
	if _, err := e.Search("alpha)"); err == nil {
		t.Fatal("expected unbalanced parentheses error")
	}
}

func TestImplicitAndIdempotent(t *testing.T) {
	got := tokenize("a b c")
	want := tokenize("a && b && c")
	if len(got) != len(want) {
		t.Fatalf("token stream lengths differ: %d vs %d", len(got), len(want))
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("token %d: %+v != %+v", i, got[i], want[i])
		}
	}
}

func TestPaginateOffsetBeyondCount(t *testing.T) {
	res := Result{DocIDs: []uint32{1, 2, 3}}
	page := res.Paginate(10, 5)
	if page.Total != 3 || len(page.DocIDs) != 0 {
		t.Fatalf("got %+v, want Total=3 empty DocIDs", page)
	}
}
