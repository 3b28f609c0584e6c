package indexbuilder

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/corpuslex/corpuslex/pkg/errors"
)

func TestNextPowerOfTwoFloorsAtMinCapacity(t *testing.T) {
	cases := []struct {
		requested uint32
		want      uint32
	}{
		{0, minHashCapacity},
		{1, minHashCapacity},
		{minHashCapacity, minHashCapacity},
		{minHashCapacity + 1, minHashCapacity * 2},
		{5000, 8192},
	}
	for _, c := range cases {
		if got := nextPowerOfTwo(c.requested); got != c.want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", c.requested, got, c.want)
		}
	}
}

func TestInsertDedupesRepeatedDocID(t *testing.T) {
	ht := newHashTable(0)
	if err := ht.insert("alpha", 1); err != nil {
		t.Fatal(err)
	}
	if err := ht.insert("alpha", 1); err != nil {
		t.Fatal(err)
	}
	entries := ht.entries()
	if len(entries) != 1 || len(entries[0].postings) != 1 {
		t.Fatalf("expected one deduped posting, got %+v", entries)
	}
}

func TestInsertGrowsDistinctDocIDs(t *testing.T) {
	ht := newHashTable(0)
	for _, id := range []uint32{1, 2, 3} {
		if err := ht.insert("alpha", id); err != nil {
			t.Fatal(err)
		}
	}
	entries := ht.entries()
	if len(entries) != 1 || len(entries[0].postings) != 3 {
		t.Fatalf("expected 3 postings, got %+v", entries)
	}
}

func TestInsertFullTableReturnsErrHashTableFull(t *testing.T) {
	ht := newHashTable(minHashCapacity)
	var full bool
	for i := uint32(0); i < minHashCapacity+1; i++ {
		term := fmt.Sprintf("term%d", i)
		if err := ht.insert(term, 1); err != nil {
			if !errors.Is(err, apperrors.ErrHashTableFull) {
				t.Fatalf("unexpected error: %v", err)
			}
			full = true
			break
		}
	}
	if !full {
		t.Fatal("expected ErrHashTableFull once distinct terms exceed capacity")
	}
}

func TestEntriesSortedLexicographically(t *testing.T) {
	ht := newHashTable(0)
	for _, term := range []string{"zebra", "apple", "mango"} {
		if err := ht.insert(term, 1); err != nil {
			t.Fatal(err)
		}
	}
	entries := ht.entries()
	want := []string{"apple", "mango", "zebra"}
	for i, w := range want {
		if entries[i].term != w {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].term, w)
		}
	}
}
