package searchserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/corpuslex/corpuslex/internal/indexbuilder"
	"github.com/corpuslex/corpuslex/internal/queryengine"
)

func buildIndexDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
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
	return dir
}

func TestReloadHandlerSwapsOnSuccess(t *testing.T) {
	oldDir := buildIndexDir(t)
	oldEngine, err := queryengine.Load(oldDir)
	if err != nil {
		t.Fatal(err)
	}
	ref := NewEngineRef(oldEngine)

	newDir := buildIndexDir(t)
	invalidated := false
	handler := ReloadHandler(ref, func(context.Context) error {
		invalidated = true
		return nil
	})

	event := buildCompleted{BuildID: "b1", OutputDir: newDir, Success: true}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	if err := handler(context.Background(), nil, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Get() == oldEngine {
		t.Fatal("expected engine to be swapped")
	}
	if !invalidated {
		t.Fatal("expected cache invalidation to run after a successful reload")
	}
}

func TestReloadHandlerSkipsUnsuccessfulBuild(t *testing.T) {
	oldDir := buildIndexDir(t)
	oldEngine, err := queryengine.Load(oldDir)
	if err != nil {
		t.Fatal(err)
	}
	ref := NewEngineRef(oldEngine)
	handler := ReloadHandler(ref, nil)

	event := buildCompleted{BuildID: "b2", OutputDir: "/does/not/matter", Success: false}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	if err := handler(context.Background(), nil, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Get() != oldEngine {
		t.Fatal("expected engine to remain unchanged for an unsuccessful build")
	}
}

func TestReloadHandlerKeepsCurrentEngineOnLoadFailure(t *testing.T) {
	oldDir := buildIndexDir(t)
	oldEngine, err := queryengine.Load(oldDir)
	if err != nil {
		t.Fatal(err)
	}
	ref := NewEngineRef(oldEngine)
	handler := ReloadHandler(ref, nil)

	event := buildCompleted{BuildID: "b3", OutputDir: t.TempDir(), Success: true}
	payload, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}
	if err := handler(context.Background(), nil, payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Get() != oldEngine {
		t.Fatal("expected engine to remain unchanged when the rebuilt index fails to load")
	}
}

func TestReloadHandlerIgnoresMalformedEvent(t *testing.T) {
	oldDir := buildIndexDir(t)
	oldEngine, err := queryengine.Load(oldDir)
	if err != nil {
		t.Fatal(err)
	}
	ref := NewEngineRef(oldEngine)
	handler := ReloadHandler(ref, nil)

	if err := handler(context.Background(), nil, []byte("not json")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Get() != oldEngine {
		t.Fatal("expected engine to remain unchanged for a malformed event")
	}
}
