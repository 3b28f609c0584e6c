// Package binaryio provides fixed-width little-endian readers and writers
// for the u16/u32/u64 integers and length-prefixed byte strings used by
// the index's on-disk container formats.
package binaryio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/corpuslex/corpuslex/pkg/errors"
)

// Writer buffers little-endian writes to an underlying io.Writer. Callers
// must call Flush before closing the underlying file.
type Writer struct {
	buf *bufio.Writer
	w   io.Writer
}

// NewWriter wraps w with a buffered little-endian Writer.
func NewWriter(w io.Writer) *Writer {
	return &Writer{buf: bufio.NewWriter(w), w: w}
}

func (w *Writer) WriteU16(v uint16) error {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	_, err := w.buf.Write(b[:])
	return wrapIOErr(err)
}

func (w *Writer) WriteU32(v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	_, err := w.buf.Write(b[:])
	return wrapIOErr(err)
}

func (w *Writer) WriteU64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	_, err := w.buf.Write(b[:])
	return wrapIOErr(err)
}

// WriteString writes a u16 length prefix followed by the raw bytes of s.
// s must be at most 65535 bytes.
func (w *Writer) WriteString(s string) error {
	if len(s) > 0xFFFF {
		return fmt.Errorf("%w: string of %d bytes exceeds u16 length prefix", errors.ErrInvalidFormat, len(s))
	}
	if err := w.WriteU16(uint16(len(s))); err != nil {
		return err
	}
	_, err := w.buf.WriteString(s)
	return wrapIOErr(err)
}

// WriteBytes writes raw bytes with no length prefix.
func (w *Writer) WriteBytes(b []byte) error {
	_, err := w.buf.Write(b)
	return wrapIOErr(err)
}

// Flush flushes the internal buffer to the underlying writer. Callers must
// invoke this before relying on the data having reached the underlying
// writer (e.g. before a subsequent WriteAt on the same file).
func (w *Writer) Flush() error {
	return wrapIOErr(w.buf.Flush())
}

// Reader reads little-endian fixed-width integers and length-prefixed
// strings from an in-memory byte slice, failing with ErrTruncatedFile on
// short reads instead of panicking.
type Reader struct {
	data []byte
	pos  int
}

// NewReader wraps data for sequential little-endian reads.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Pos returns the current read offset into the underlying buffer.
func (r *Reader) Pos() int { return r.pos }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.data) - r.pos }

func (r *Reader) need(n int) error {
	if r.Remaining() < n {
		return fmt.Errorf("%w: need %d bytes, have %d", errors.ErrTruncatedFile, n, r.Remaining())
	}
	return nil
}

func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *Reader) ReadU64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

// ReadString reads a u16 length prefix followed by that many raw bytes and
// returns them as a freshly allocated string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadU16()
	if err != nil {
		return "", err
	}
	if err := r.need(int(n)); err != nil {
		return "", err
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadBytes reads n raw bytes with no length prefix.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU32Slice reads count consecutive little-endian u32s.
func (r *Reader) ReadU32Slice(count int) ([]uint32, error) {
	if err := r.need(count * 4); err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := 0; i < count; i++ {
		out[i] = binary.LittleEndian.Uint32(r.data[r.pos : r.pos+4])
		r.pos += 4
	}
	return out, nil
}

// Seek repositions the reader at an absolute byte offset within data.
func (r *Reader) Seek(offset int) error {
	if offset < 0 || offset > len(r.data) {
		return fmt.Errorf("%w: seek offset %d out of range [0,%d]", errors.ErrTruncatedFile, offset, len(r.data))
	}
	r.pos = offset
	return nil
}

func wrapIOErr(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", errors.ErrIoError, err)
}
