package indexbuilder

import (
	"sort"

	"github.com/corpuslex/corpuslex/pkg/errors"
)

// djb2 is the hash function used to bucket terms, matching the original
// builder's probe sequence bit for bit so capacity-sizing advice stays
// accurate across reimplementations.
func djb2(b []byte) uint32 {
	var h uint32 = 5381
	for _, c := range b {
		h = h*33 + uint32(c)
	}
	return h
}

// termEntry is one hash-table bucket: a term and its growable posting
// list, plus the last doc_id appended so dedupe-on-insert is O(1).
type termEntry struct {
	term       string
	postings   []uint32
	lastDocID  uint32
	used       bool
}

// hashTable is an open-addressed, linearly-probed table keyed by term
// bytes. Capacity is fixed at construction; probing that wraps all the
// way around without finding a free or matching slot fails with
// ErrHashTableFull.
type hashTable struct {
	slots    []termEntry
	capacity uint32
	size     int
}

const minHashCapacity = 1024

// nextPowerOfTwo rounds n up to the nearest power of two, floored at
// minHashCapacity.
func nextPowerOfTwo(n uint32) uint32 {
	if n < minHashCapacity {
		n = minHashCapacity
	}
	p := uint32(1)
	for p < n {
		p <<= 1
	}
	return p
}

func newHashTable(requestedCapacity uint32) *hashTable {
	cap := nextPowerOfTwo(requestedCapacity)
	return &hashTable{
		slots:    make([]termEntry, cap),
		capacity: cap,
	}
}

// insert appends docID to term's posting list, allocating the bucket on
// first sight and deduping against the bucket's last_doc_id exactly as
// the reference builder does. docID must be presented in non-decreasing
// order per term; callers enforce global monotonicity separately.
func (h *hashTable) insert(term string, docID uint32) error {
	mask := h.capacity - 1
	idx := djb2([]byte(term)) & mask
	for probes := uint32(0); probes < h.capacity; probes++ {
		slot := &h.slots[idx]
		if !slot.used {
			slot.used = true
			slot.term = term
			slot.postings = append(slot.postings, docID)
			slot.lastDocID = docID
			h.size++
			return nil
		}
		if slot.term == term {
			if slot.lastDocID == docID {
				return nil
			}
			slot.postings = append(slot.postings, docID)
			slot.lastDocID = docID
			return nil
		}
		idx = (idx + 1) & mask
	}
	return errors.ErrHashTableFull
}

// entries returns all populated buckets sorted lexicographically by
// term, ready for serialization.
func (h *hashTable) entries() []termEntry {
	out := make([]termEntry, 0, h.size)
	for i := range h.slots {
		if h.slots[i].used {
			out = append(out, h.slots[i])
		}
	}
	sortTermEntries(out)
	return out
}

func sortTermEntries(entries []termEntry) {
	sort.Slice(entries, func(i, j int) bool { return entries[i].term < entries[j].term })
}
