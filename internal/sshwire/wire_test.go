/*
Copyright © 2025 Logicos Software

wire_test.go contains unit tests for the SSH wire Reader and Writer.
*/
package sshwire

import (
	"bytes"
	"errors"
	"testing"
)

func TestReaderPrimitives(t *testing.T) {
	w := NewWriter()
	w.WriteNullTerminatedString("openssh-key-v1")
	w.WriteUint32(0xdeadbeef)
	w.WriteChunk([]byte{1, 2, 3})
	w.WriteEmptyChunk()
	w.WriteLengthPrefixedString("none")

	r := NewReader(w.Bytes())

	magic, err := r.ReadNullTerminatedString()
	if err != nil || magic != "openssh-key-v1" {
		t.Fatalf("ReadNullTerminatedString() = %q, %v", magic, err)
	}
	v, err := r.ReadUint32()
	if err != nil || v != 0xdeadbeef {
		t.Fatalf("ReadUint32() = %x, %v", v, err)
	}
	c, err := r.ReadChunk()
	if err != nil || !bytes.Equal(c, []byte{1, 2, 3}) {
		t.Fatalf("ReadChunk() = %x, %v", c, err)
	}
	empty, err := r.ReadEmptyChunk()
	if err != nil || !empty {
		t.Fatalf("ReadEmptyChunk() = %v, %v", empty, err)
	}
	s, err := r.ReadLengthPrefixedString()
	if err != nil || s != "none" {
		t.Fatalf("ReadLengthPrefixedString() = %q, %v", s, err)
	}
	if !r.IsAtEnd() || r.Remaining() != 0 {
		t.Errorf("cursor not at end: remaining %d", r.Remaining())
	}
}

func TestReaderUnderflow(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		read func(r *Reader) error
	}{
		{"read past end", []byte{1, 2}, func(r *Reader) error { _, err := r.Read(3); return err }},
		{"short uint32", []byte{0, 0, 1}, func(r *Reader) error { _, err := r.ReadUint32(); return err }},
		{"chunk longer than data", []byte{0, 0, 0, 9, 1}, func(r *Reader) error { _, err := r.ReadChunk(); return err }},
		{"huge chunk length", []byte{0xff, 0xff, 0xff, 0xff}, func(r *Reader) error { _, err := r.ReadChunk(); return err }},
		{"unterminated cstring", []byte("abc"), func(r *Reader) error { _, err := r.ReadNullTerminatedString(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			err := tt.read(r)
			if !errors.Is(err, ErrBufferUnderflow) {
				t.Fatalf("error = %v, want ErrBufferUnderflow", err)
			}
			if ClassOf(err) != ClassConsistency {
				t.Errorf("class = %v, want consistency", ClassOf(err))
			}
			if r.Offset() != 0 {
				t.Errorf("cursor moved to %d on failure", r.Offset())
			}
		})
	}
}

func TestReadAllChunks(t *testing.T) {
	in := [][]byte{[]byte("ssh-ed25519"), {}, bytes.Repeat([]byte{0xaa}, 32)}
	got, err := ChunksFromData(ChunksToData(in))
	if err != nil {
		t.Fatalf("ChunksFromData failed: %v", err)
	}
	if len(got) != len(in) {
		t.Fatalf("got %d chunks, want %d", len(got), len(in))
	}
	for i := range in {
		if !bytes.Equal(got[i], in[i]) {
			t.Errorf("chunk %d = %x, want %x", i, got[i], in[i])
		}
	}
}

func TestPadding(t *testing.T) {
	for n := 0; n < 24; n++ {
		w := NewWriter()
		w.Write(bytes.Repeat([]byte{0xee}, n))
		w.WritePadding()

		if w.Len()%BlockSize != 0 {
			t.Fatalf("n=%d: padded length %d not aligned", n, w.Len())
		}
		pad := w.Bytes()[n:]
		for i, b := range pad {
			if b != byte(i+1) {
				t.Fatalf("n=%d: padding %x not sequential", n, pad)
			}
		}

		r := NewReader(w.Bytes())
		if _, err := r.Read(n); err != nil {
			t.Fatal(err)
		}
		if err := r.ExpectPadding(); err != nil {
			t.Fatalf("n=%d: ExpectPadding failed: %v", n, err)
		}
		if err := r.ExpectEnd("padding"); err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
	}
}

func TestExpectPaddingMismatch(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"wrong sequence", []byte{0, 0, 0, 0, 0, 1, 3, 3}},
		{"missing padding", []byte{0, 0, 0, 0, 0}},
		{"truncated", []byte{0, 0, 0, 0, 0, 1, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			if _, err := r.Read(5); err != nil {
				t.Fatal(err)
			}
			if err := r.ExpectPadding(); !errors.Is(err, ErrInvalidPadding) {
				t.Errorf("ExpectPadding() = %v, want ErrInvalidPadding", err)
			}
		})
	}
}

func TestExpectEnd(t *testing.T) {
	r := NewReader([]byte{1})
	err := r.ExpectEnd("blob")
	if !errors.Is(err, ErrTrailingData) {
		t.Fatalf("ExpectEnd() = %v, want ErrTrailingData", err)
	}
}

func TestErrorFormatting(t *testing.T) {
	err := FormatError(ErrMagicMismatch, "got %q", "nope")
	if err.Error() != `magic mismatch: got "nope"` {
		t.Errorf("Error() = %q", err.Error())
	}
	if ClassOf(err) != ClassFormat {
		t.Errorf("ClassOf() = %v, want format", ClassOf(err))
	}
	if ClassOf(errors.New("plain")) != 0 {
		t.Error("ClassOf(plain) should be 0")
	}
	if ClassLength.String() != "length" {
		t.Errorf("ClassLength.String() = %q", ClassLength.String())
	}
}

func BenchmarkReadChunk(b *testing.B) {
	data := ChunksToData([][]byte{bytes.Repeat([]byte{1}, 256), bytes.Repeat([]byte{2}, 256)})
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r := NewReader(data)
		_, _ = r.ReadAllChunks()
	}
}
