/*
Copyright © 2025 Logicos Software

writer.go implements the write side of the SSH wire encoding.
It mirrors Reader: every Reader primitive has a Writer counterpart
producing exactly the bytes the Reader consumes.
*/
package sshwire

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer accumulates SSH wire-encoded data.
type Writer struct {
	buf bytes.Buffer
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Write appends raw bytes.
func (w *Writer) Write(b []byte) {
	w.buf.Write(b)
}

// WriteUint32 appends a big-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// WriteChunk appends a length-prefixed byte string.
func (w *Writer) WriteChunk(b []byte) {
	if uint64(len(b)) > math.MaxUint32 {
		panic("sshwire: chunk too large")
	}
	w.WriteUint32(uint32(len(b)))
	w.buf.Write(b)
}

// WriteEmptyChunk appends a zero-length chunk.
func (w *Writer) WriteEmptyChunk() {
	w.WriteUint32(0)
}

// WriteChunks appends each chunk in order.
func (w *Writer) WriteChunks(chunks [][]byte) {
	for _, c := range chunks {
		w.WriteChunk(c)
	}
}

// WriteNullTerminatedString appends s followed by a 0x00 byte.
func (w *Writer) WriteNullTerminatedString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// WriteLengthPrefixedString appends s as a chunk.
func (w *Writer) WriteLengthPrefixedString(s string) {
	w.WriteChunk([]byte(s))
}

// WritePadding appends 1, 2, 3, ... until the length is a multiple of BlockSize.
func (w *Writer) WritePadding() {
	w.buf.Write(padding[:PaddingLen(w.buf.Len())])
}

// Len reports the number of bytes written so far.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Bytes returns a copy of the accumulated data.
func (w *Writer) Bytes() []byte {
	return bytes.Clone(w.buf.Bytes())
}

// ChunksToData encodes chunks as consecutive length-prefixed fields.
func ChunksToData(chunks [][]byte) []byte {
	w := NewWriter()
	w.WriteChunks(chunks)
	return w.Bytes()
}

// ChunksFromData decodes consecutive length-prefixed fields.
func ChunksFromData(data []byte) ([][]byte, error) {
	return NewReader(data).ReadAllChunks()
}
