/*
Copyright © 2025 Logicos Software

reader.go implements the read cursor for the SSH wire encoding.

The SSH wire format (RFC 4251 section 5) is built from a handful of
primitives, all using 4-byte big-endian unsigned integers:

  - uint32: four bytes, big-endian
  - chunk:  uint32 length followed by that many bytes
  - string: a chunk holding UTF-8 text
  - cstring: bytes terminated by 0x00 (only used by the openssh-key-v1 magic)

OpenSSH additionally pads its private key section with the deterministic
sequence 1, 2, 3, ... up to the next 8-byte boundary.
*/
package sshwire

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// BlockSize is the alignment of the OpenSSH private key section.
const BlockSize = 8

// padding is the deterministic OpenSSH padding sequence.
var padding = []byte{1, 2, 3, 4, 5, 6, 7}

// PaddingLen returns how many padding bytes follow n bytes of data.
func PaddingLen(n int) int {
	return (BlockSize - n%BlockSize) % BlockSize
}

// Reader is a cursor over an immutable byte slice.
// Every read that would run past the end fails with ErrBufferUnderflow
// and leaves the cursor where it was.
type Reader struct {
	data  []byte
	index int
}

// NewReader returns a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Read returns the next n bytes as an owned copy.
func (r *Reader) Read(n int) ([]byte, error) {
	if n < 0 || n > r.Remaining() {
		return nil, ConsistencyError(ErrBufferUnderflow, "need %d bytes at offset %d, have %d", n, r.index, r.Remaining())
	}
	b := make([]byte, n)
	copy(b, r.data[r.index:r.index+n])
	r.index += n
	return b, nil
}

// ReadUint32 reads a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.Remaining() < 4 {
		return 0, ConsistencyError(ErrBufferUnderflow, "need 4 bytes at offset %d, have %d", r.index, r.Remaining())
	}
	v := binary.BigEndian.Uint32(r.data[r.index:])
	r.index += 4
	return v, nil
}

// ReadChunk reads a length-prefixed byte string.
func (r *Reader) ReadChunk() ([]byte, error) {
	start := r.index
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if uint64(n) > uint64(r.Remaining()) {
		r.index = start
		return nil, ConsistencyError(ErrBufferUnderflow, "chunk of %d bytes at offset %d, have %d", n, start, r.Remaining())
	}
	return r.Read(int(n))
}

// ReadAllChunks reads chunks until the cursor is exhausted.
func (r *Reader) ReadAllChunks() ([][]byte, error) {
	var chunks [][]byte
	for !r.IsAtEnd() {
		c, err := r.ReadChunk()
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

// ReadNullTerminatedString reads bytes up to (and consuming) a 0x00 byte.
func (r *Reader) ReadNullTerminatedString() (string, error) {
	i := bytes.IndexByte(r.data[r.index:], 0)
	if i < 0 {
		return "", ConsistencyError(ErrBufferUnderflow, "no terminator after offset %d", r.index)
	}
	b := r.data[r.index : r.index+i]
	if !utf8.Valid(b) {
		return "", FormatError(ErrInvalidUTF8, "at offset %d", r.index)
	}
	r.index += i + 1
	return string(b), nil
}

// ReadLengthPrefixedString reads a chunk and decodes it as UTF-8.
func (r *Reader) ReadLengthPrefixedString() (string, error) {
	start := r.index
	b, err := r.ReadChunk()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", FormatError(ErrInvalidUTF8, "at offset %d", start)
	}
	return string(b), nil
}

// ReadEmptyChunk reads a chunk and requires it to carry no data.
// The returned flag is false (with a nil error) when the chunk was
// present but non-empty, so the caller can pick the error kind.
func (r *Reader) ReadEmptyChunk() (bool, error) {
	b, err := r.ReadChunk()
	if err != nil {
		return false, err
	}
	return len(b) == 0, nil
}

// ExpectPadding consumes the padding that aligns the cursor to BlockSize
// and verifies it is the sequence 1, 2, 3, ...
func (r *Reader) ExpectPadding() error {
	n := PaddingLen(r.index)
	got, err := r.Read(n)
	if err != nil {
		return ConsistencyError(ErrInvalidPadding, "want %d padding bytes, have %d", n, r.Remaining())
	}
	if !bytes.Equal(got, padding[:n]) {
		return ConsistencyError(ErrInvalidPadding, "got %x", got)
	}
	return nil
}

// ExpectEnd fails with ErrTrailingData unless the cursor is exhausted.
func (r *Reader) ExpectEnd(what string) error {
	if !r.IsAtEnd() {
		return ConsistencyError(ErrTrailingData, "%d bytes after %s", r.Remaining(), what)
	}
	return nil
}

// Remaining reports the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.index
}

// IsAtEnd reports whether every byte has been consumed.
func (r *Reader) IsAtEnd() bool {
	return r.index == len(r.data)
}

// Offset reports the current cursor position.
func (r *Reader) Offset() int {
	return r.index
}
