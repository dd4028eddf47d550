package binread

import (
	"errors"
	"testing"

	"discsplit/internal/services"
)

func TestReaderBigEndianPrimitives(t *testing.T) {
	r := New([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0xFF})

	b, err := r.U8()
	if err != nil || b != 0x01 {
		t.Fatalf("U8 = %#x, %v", b, err)
	}
	h, err := r.U16()
	if err != nil || h != 0x0203 {
		t.Fatalf("U16 = %#x, %v", h, err)
	}
	w, err := r.U32()
	if err != nil || w != 0x04050607 {
		t.Fatalf("U32 = %#x, %v", w, err)
	}
	if r.Offset() != 7 {
		t.Fatalf("expected offset 7, got %d", r.Offset())
	}
	if err := r.Skip(1); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if _, err := r.U8(); !errors.Is(err, services.ErrDecodeTruncated) {
		t.Fatalf("expected truncation at end, got %v", err)
	}
}

func TestReaderSeek(t *testing.T) {
	r := New([]byte{0xAA, 0xBB, 0xCC, 0xDD})
	if err := r.Seek(2); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	h, err := r.U16()
	if err != nil || h != 0xCCDD {
		t.Fatalf("U16 after seek = %#x, %v", h, err)
	}
	if err := r.Seek(4); err != nil {
		t.Fatalf("Seek to end should succeed: %v", err)
	}
	if err := r.Seek(5); !errors.Is(err, services.ErrDecodeTruncated) {
		t.Fatalf("expected truncation seeking past end, got %v", err)
	}
}

func TestReaderPartialReadDoesNotAdvance(t *testing.T) {
	r := New([]byte{0x00, 0x01, 0x02})
	if err := r.Skip(1); err != nil {
		t.Fatalf("Skip: %v", err)
	}
	if _, err := r.U32(); !errors.Is(err, services.ErrDecodeTruncated) {
		t.Fatalf("expected truncation, got %v", err)
	}
	if r.Offset() != 1 {
		t.Fatalf("failed read moved cursor to %d", r.Offset())
	}
	if err := r.Skip(-1); err == nil {
		t.Fatal("expected error for negative skip")
	}
}
