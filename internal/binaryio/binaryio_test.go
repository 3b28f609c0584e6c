package binaryio

import (
	"bytes"
	"errors"
	"testing"

	coreerrors "github.com/corpuslex/corpuslex/pkg/errors"
)

func TestWriteReadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteU32(0x504F5354); err != nil {
		t.Fatalf("WriteU32: %v", err)
	}
	if err := w.WriteU64(1234567890123); err != nil {
		t.Fatalf("WriteU64: %v", err)
	}
	if err := w.WriteString("hello"); err != nil {
		t.Fatalf("WriteString: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReader(buf.Bytes())
	magic, err := r.ReadU32()
	if err != nil || magic != 0x504F5354 {
		t.Fatalf("ReadU32 = %x, %v", magic, err)
	}
	n, err := r.ReadU64()
	if err != nil || n != 1234567890123 {
		t.Fatalf("ReadU64 = %d, %v", n, err)
	}
	s, err := r.ReadString()
	if err != nil || s != "hello" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	if r.Remaining() != 0 {
		t.Fatalf("expected no remaining bytes, got %d", r.Remaining())
	}
}

func TestReadTruncated(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02})
	if _, err := r.ReadU32(); !errors.Is(err, coreerrors.ErrTruncatedFile) {
		t.Fatalf("expected ErrTruncatedFile, got %v", err)
	}
}

func TestReadStringTruncatedPayload(t *testing.T) {
	// length prefix claims 10 bytes, but only 2 follow.
	data := []byte{10, 0, 'h', 'i'}
	r := NewReader(data)
	if _, err := r.ReadString(); !errors.Is(err, coreerrors.ErrTruncatedFile) {
		t.Fatalf("expected ErrTruncatedFile, got %v", err)
	}
}

func TestReadU32Slice(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range []uint32{1, 3, 5, 9} {
		if err := w.WriteU32(v); err != nil {
			t.Fatalf("WriteU32: %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	r := NewReader(buf.Bytes())
	got, err := r.ReadU32Slice(4)
	if err != nil {
		t.Fatalf("ReadU32Slice: %v", err)
	}
	want := []uint32{1, 3, 5, 9}
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestWriteStringTooLong(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	huge := make([]byte, 0x10000)
	if err := w.WriteString(string(huge)); err == nil {
		t.Fatal("expected error for string exceeding u16 length prefix")
	}
}

func TestSeek(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5})
	if err := r.Seek(3); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if r.Remaining() != 2 {
		t.Fatalf("Remaining() = %d, want 2", r.Remaining())
	}
	if err := r.Seek(6); err == nil {
		t.Fatal("expected error seeking past end")
	}
}
