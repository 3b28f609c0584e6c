package searchserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/corpuslex/corpuslex/internal/indexbuilder"
	"github.com/corpuslex/corpuslex/internal/queryengine"
)

func buildEngine(t *testing.T) *queryengine.Engine {
	t.Helper()
	dir := t.TempDir()
	stemmed := filepath.Join(dir, "stemmed.txt")
	tsv := filepath.Join(dir, "raw.tsv")
	outDir := filepath.Join(dir, "index")
	if err := os.WriteFile(stemmed, []byte("1\talpha\n2\talpha beta\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tsv, []byte("1\ts\thttp://a\tTitle A\ttext\n2\ts\thttp://b\tTitle B\ttext\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := indexbuilder.Build(stemmed, tsv, outDir, 0); err != nil {
		t.Fatal(err)
	}
	engine, err := queryengine.Load(outDir)
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func TestHandlerSearchNoCache(t *testing.T) {
	engine := buildEngine(t)
	ref := NewEngineRef(engine)
	h := New(ref, nil, nil, 50, 500, 0)

	req := httptest.NewRequest(http.MethodGet, "/search?q=alpha", nil)
	w := httptest.NewRecorder()
	h.Search(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp searchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Total != 2 {
		t.Fatalf("Total = %d, want 2", resp.Total)
	}
}

func TestHandlerSearchInvalidLimit(t *testing.T) {
	engine := buildEngine(t)
	ref := NewEngineRef(engine)
	h := New(ref, nil, nil, 50, 500, 0)

	req := httptest.NewRequest(http.MethodGet, "/search?q=alpha&limit=-1", nil)
	w := httptest.NewRecorder()
	h.Search(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
