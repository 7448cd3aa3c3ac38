/*
Copyright © 2025 Logicos Software

publickey.go implements the per-type public key field sets.

Wire layout after the type string:

	ssh-rsa:          e, n
	ssh-dss:          p, q, g, y
	ecdsa-sha2-<c>:   string curve, point
	ssh-ed25519:      point (32 bytes)

The hash image of a key, which fingerprints are computed from, is the
type string followed by these chunks: exactly the public key blob.
*/
package sshkey

import (
	"bytes"
	"encoding/hex"

	"sshenv/internal/sshwire"
)

// PublicKey is the public half of an SSH key. The set of implementations
// is closed: *RSAPublicKey, *DSAPublicKey, *ECDSAPublicKey and
// *Ed25519PublicKey. Values are immutable once constructed.
type PublicKey interface {
	// Type returns the key type.
	Type() KeyType
	// Chunks returns the wire fields that follow the type string.
	Chunks() [][]byte
	// KeySize returns the nominal key size in bits.
	KeySize() int

	isPublicKey()
}

// RSAPublicKey holds the RSA public exponent and modulus as SSH mpints.
type RSAPublicKey struct {
	E []byte
	N []byte
}

func (*RSAPublicKey) Type() KeyType      { return TypeRSA }
func (k *RSAPublicKey) Chunks() [][]byte { return [][]byte{k.E, k.N} }
func (k *RSAPublicKey) KeySize() int     { return evenLen(k.N) * 8 }
func (*RSAPublicKey) isPublicKey()       {}

// DSAPublicKey holds the DSA domain parameters and public value.
type DSAPublicKey struct {
	P, Q, G, Y []byte
}

func (*DSAPublicKey) Type() KeyType      { return TypeDSA }
func (k *DSAPublicKey) Chunks() [][]byte { return [][]byte{k.P, k.Q, k.G, k.Y} }
func (k *DSAPublicKey) KeySize() int     { return evenLen(k.P) * 8 }
func (*DSAPublicKey) isPublicKey()       {}

// ECDSAPublicKey holds an uncompressed SEC1 point on Curve.
type ECDSAPublicKey struct {
	Curve Curve
	Point []byte
}

func (k *ECDSAPublicKey) Type() KeyType { return ECDSAType(k.Curve) }
func (k *ECDSAPublicKey) Chunks() [][]byte {
	return [][]byte{[]byte(k.Curve.String()), k.Point}
}
func (k *ECDSAPublicKey) KeySize() int { return k.Curve.KeySize() }
func (*ECDSAPublicKey) isPublicKey()   {}

// Ed25519PublicKey holds the 32-byte Ed25519 point.
type Ed25519PublicKey struct {
	Point []byte
}

func (*Ed25519PublicKey) Type() KeyType      { return TypeEd25519 }
func (k *Ed25519PublicKey) Chunks() [][]byte { return [][]byte{k.Point} }
func (*Ed25519PublicKey) KeySize() int       { return 256 }
func (*Ed25519PublicKey) isPublicKey()       {}

// evenLen rounds an mpint length down to even, dropping the sign byte
// that precedes a high-bit-set magnitude.
func evenLen(b []byte) int {
	return len(b) - len(b)%2
}

// ReadPublicKey reads a type string and the fields that follow it.
// If expected is valid, the type string must match it exactly.
func ReadPublicKey(r *sshwire.Reader, expected KeyType) (PublicKey, error) {
	s, err := r.ReadLengthPrefixedString()
	if err != nil {
		return nil, err
	}
	if expected.IsValid() && s != expected.String() {
		return nil, sshwire.FormatError(sshwire.ErrKeyTypeMismatch, "got %q, want %q", s, expected)
	}
	t, err := ParseKeyType(s)
	if err != nil {
		return nil, err
	}
	return readPublicFields(r, t)
}

// readPublicFields reads the fields of a key of type t.
func readPublicFields(r *sshwire.Reader, t KeyType) (PublicKey, error) {
	switch t.Algorithm() {
	case AlgorithmRSA:
		e, err := r.ReadChunk()
		if err != nil {
			return nil, err
		}
		n, err := r.ReadChunk()
		if err != nil {
			return nil, err
		}
		return &RSAPublicKey{E: e, N: n}, nil

	case AlgorithmDSA:
		var f [4][]byte
		for i := range f {
			c, err := r.ReadChunk()
			if err != nil {
				return nil, err
			}
			f[i] = c
		}
		return &DSAPublicKey{P: f[0], Q: f[1], G: f[2], Y: f[3]}, nil

	case AlgorithmECDSA:
		curve, _ := t.Curve()
		name, err := r.ReadLengthPrefixedString()
		if err != nil {
			return nil, err
		}
		if name != curve.String() {
			return nil, sshwire.FormatError(sshwire.ErrCurveMismatch, "key type %s carries curve %q", t, name)
		}
		point, err := r.ReadChunk()
		if err != nil {
			return nil, err
		}
		return &ECDSAPublicKey{Curve: curve, Point: point}, nil

	case AlgorithmEd25519:
		point, err := r.ReadChunk()
		if err != nil {
			return nil, err
		}
		return &Ed25519PublicKey{Point: point}, nil

	default:
		return nil, sshwire.FormatError(sshwire.ErrUnknownKeyType, "%s", t)
	}
}

// ParsePublicKeyBlob parses a complete public key blob, which must be
// consumed exactly.
func ParsePublicKeyBlob(blob []byte) (PublicKey, error) {
	r := sshwire.NewReader(blob)
	k, err := ReadPublicKey(r, KeyType{})
	if err != nil {
		return nil, err
	}
	if err := r.ExpectEnd("public key blob"); err != nil {
		return nil, err
	}
	return k, nil
}

// writePublicKey appends the type string and fields of k.
func writePublicKey(w *sshwire.Writer, k PublicKey) {
	w.WriteLengthPrefixedString(k.Type().String())
	w.WriteChunks(k.Chunks())
}

// MarshalPublicKey returns the wire blob of k: type string then fields.
func MarshalPublicKey(k PublicKey) []byte {
	w := sshwire.NewWriter()
	writePublicKey(w, k)
	return w.Bytes()
}

// HashImage returns the canonical byte sequence fingerprints are taken over.
func HashImage(k PublicKey) []byte {
	return MarshalPublicKey(k)
}

// PublicKeysEqual reports whether a and b are the same key, byte for byte.
func PublicKeysEqual(a, b PublicKey) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	return chunksEqual(a.Chunks(), b.Chunks())
}

func chunksEqual(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// KeyData renders the public fields as hex for diagnostics.
func KeyData(k PublicKey) string {
	switch k := k.(type) {
	case *RSAPublicKey:
		return "(publicExponent: " + hexString(k.E) + ", modulus: " + hexString(k.N) + ")"
	case *DSAPublicKey:
		return "(p: " + hexString(k.P) + ", q: " + hexString(k.Q) + ", g: " + hexString(k.G) + ", y: " + hexString(k.Y) + ")"
	case *ECDSAPublicKey:
		return hexString(k.Point)
	case *Ed25519PublicKey:
		return hexString(k.Point)
	default:
		return ""
	}
}

func hexString(b []byte) string {
	return hex.EncodeToString(b)
}
