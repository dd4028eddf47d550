// Package binread provides a bounds-checked big-endian cursor over an
// in-memory buffer. Every read past the end of the buffer fails with an error
// matching services.ErrDecodeTruncated; nothing is zero-filled.
package binread

import (
	"encoding/binary"
	"fmt"

	"discsplit/internal/services"
)

// Reader is a seekable cursor over an owned byte slice.
type Reader struct {
	buf []byte
	pos int64
}

// New returns a Reader positioned at offset zero. The buffer is not copied.
func New(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Len reports the total buffer length.
func (r *Reader) Len() int64 { return int64(len(r.buf)) }

// Offset reports the current cursor position.
func (r *Reader) Offset() int64 { return r.pos }

// Seek moves the cursor to an absolute offset. Seeking to exactly Len() is
// allowed; the next read then fails.
func (r *Reader) Seek(offset int64) error {
	if offset < 0 || offset > r.Len() {
		return r.truncated(offset, 0)
	}
	r.pos = offset
	return nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int64) error {
	if n < 0 {
		return fmt.Errorf("binread: negative skip %d", n)
	}
	if _, err := r.take(n); err != nil {
		return err
	}
	return nil
}

// U8 reads one byte.
func (r *Reader) U8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// U16 reads a big-endian uint16.
func (r *Reader) U16() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// U32 reads a big-endian uint32.
func (r *Reader) U32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int64) ([]byte, error) {
	return r.take(n)
}

func (r *Reader) take(n int64) ([]byte, error) {
	end := r.pos + n
	if n < 0 || end > r.Len() {
		return nil, r.truncated(r.pos, n)
	}
	out := r.buf[r.pos:end]
	r.pos = end
	return out, nil
}

func (r *Reader) truncated(offset, width int64) error {
	return services.Wrap(
		services.ErrDecodeTruncated,
		"decode",
		"read",
		fmt.Sprintf("need %d byte(s) at offset 0x%X, buffer holds 0x%X", width, offset, r.Len()),
		nil,
	)
}
