/*
Copyright © 2025 Logicos Software

privatekey.go implements the per-type private key field sets found inside
the private blob of an OpenSSH key container.

Every private section restates the key type string. What follows depends
on the type:

	ssh-rsa:         n, e, d, iqmp, p, q
	ssh-dss:         p, q, g, y, x
	ecdsa-sha2-<c>:  curve, point, d
	ssh-ed25519:     point, seed || point

RSA restates n and e in private-key order rather than the public e, n
layout. The other types restate their full public fields, which must equal
the outer public key.
*/
package sshkey

import (
	"bytes"

	"sshenv/internal/sshwire"
)

const (
	ed25519SeedSize   = 32
	ed25519PointSize  = 32
	ed25519SecretSize = ed25519SeedSize + ed25519PointSize
)

// PrivateFields is the secret half of an SSH key. The set of
// implementations is closed: *RSAPrivateFields, *DSAPrivateFields,
// *ECDSAPrivateFields and *Ed25519PrivateFields.
type PrivateFields interface {
	// Type returns the key type the fields belong to.
	Type() KeyType
	// Chunks returns the secret wire fields that follow the restated
	// public data.
	Chunks() [][]byte

	isPrivateFields()
}

// RSAPrivateFields holds the full RSA private key as SSH mpints.
type RSAPrivateFields struct {
	N, E, D, Iqmp, P, Q []byte
}

func (*RSAPrivateFields) Type() KeyType { return TypeRSA }
func (k *RSAPrivateFields) Chunks() [][]byte {
	return [][]byte{k.N, k.E, k.D, k.Iqmp, k.P, k.Q}
}
func (*RSAPrivateFields) isPrivateFields() {}

// DSAPrivateFields holds the DSA private value x.
type DSAPrivateFields struct {
	X []byte
}

func (*DSAPrivateFields) Type() KeyType      { return TypeDSA }
func (k *DSAPrivateFields) Chunks() [][]byte { return [][]byte{k.X} }
func (*DSAPrivateFields) isPrivateFields()   {}

// ECDSAPrivateFields holds the ECDSA private scalar d.
type ECDSAPrivateFields struct {
	Curve Curve
	D     []byte
}

func (k *ECDSAPrivateFields) Type() KeyType    { return ECDSAType(k.Curve) }
func (k *ECDSAPrivateFields) Chunks() [][]byte { return [][]byte{k.D} }
func (*ECDSAPrivateFields) isPrivateFields()   {}

// Ed25519PrivateFields holds the 32-byte seed and the duplicated public point.
type Ed25519PrivateFields struct {
	Seed  []byte
	Point []byte
}

func (*Ed25519PrivateFields) Type() KeyType { return TypeEd25519 }

// Chunks returns the 64-byte seed || point secret as a single chunk.
func (k *Ed25519PrivateFields) Chunks() [][]byte {
	secret := make([]byte, 0, ed25519SecretSize)
	secret = append(secret, k.Seed...)
	secret = append(secret, k.Point...)
	return [][]byte{secret}
}
func (*Ed25519PrivateFields) isPrivateFields() {}

// readPrivateFields reads the private section for pub from r.
func readPrivateFields(r *sshwire.Reader, pub PublicKey) (PrivateFields, error) {
	t := pub.Type()
	s, err := r.ReadLengthPrefixedString()
	if err != nil {
		return nil, err
	}
	if s != t.String() {
		return nil, sshwire.FormatError(sshwire.ErrKeyTypeMismatch, "private section is %q, public key is %s", s, t)
	}

	switch t.Algorithm() {
	case AlgorithmRSA:
		var f [6][]byte
		for i := range f {
			if f[i], err = r.ReadChunk(); err != nil {
				return nil, err
			}
		}
		k := &RSAPrivateFields{N: f[0], E: f[1], D: f[2], Iqmp: f[3], P: f[4], Q: f[5]}
		rp := pub.(*RSAPublicKey)
		if !bytes.Equal(k.N, rp.N) || !bytes.Equal(k.E, rp.E) {
			return nil, sshwire.ConsistencyError(sshwire.ErrPublicKeyMismatch, "RSA modulus or exponent differs")
		}
		return k, nil

	case AlgorithmDSA:
		if err := expectRestatedPublic(r, pub); err != nil {
			return nil, err
		}
		x, err := r.ReadChunk()
		if err != nil {
			return nil, err
		}
		return &DSAPrivateFields{X: x}, nil

	case AlgorithmECDSA:
		if err := expectRestatedPublic(r, pub); err != nil {
			return nil, err
		}
		d, err := r.ReadChunk()
		if err != nil {
			return nil, err
		}
		curve, _ := t.Curve()
		return &ECDSAPrivateFields{Curve: curve, D: d}, nil

	case AlgorithmEd25519:
		if err := expectRestatedPublic(r, pub); err != nil {
			return nil, err
		}
		secret, err := r.ReadChunk()
		if err != nil {
			return nil, err
		}
		if len(secret) != ed25519SecretSize {
			return nil, sshwire.LengthError(sshwire.ErrInvalidKeyLength, "ed25519 secret is %d bytes, want %d", len(secret), ed25519SecretSize)
		}
		k := &Ed25519PrivateFields{Seed: secret[:ed25519SeedSize], Point: secret[ed25519SeedSize:]}
		if !bytes.Equal(k.Point, pub.(*Ed25519PublicKey).Point) {
			return nil, sshwire.ConsistencyError(sshwire.ErrPublicKeyMismatch, "ed25519 secret carries a different public point")
		}
		return k, nil

	default:
		return nil, sshwire.FormatError(sshwire.ErrUnknownKeyType, "%s", t)
	}
}

// expectRestatedPublic reads the public fields restated in the private
// section and requires them to equal pub.
func expectRestatedPublic(r *sshwire.Reader, pub PublicKey) error {
	restated, err := readPublicFields(r, pub.Type())
	if err != nil {
		return err
	}
	if !PublicKeysEqual(restated, pub) {
		return sshwire.ConsistencyError(sshwire.ErrPublicKeyMismatch, "%s private section restates a different public key", pub.Type())
	}
	return nil
}

// writePrivateFields writes the private section for the pair.
func writePrivateFields(w *sshwire.Writer, pub PublicKey, priv PrivateFields) {
	w.WriteLengthPrefixedString(pub.Type().String())
	if pub.Type().Algorithm() != AlgorithmRSA {
		w.WriteChunks(pub.Chunks())
	}
	w.WriteChunks(priv.Chunks())
}
