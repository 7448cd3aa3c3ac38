/*
Copyright © 2025 Logicos Software

keytype.go implements the key type model.

A KeyType is one of RSA, DSA, Ed25519 or ECDSA; ECDSA always carries
one of the three NIST curves and the other algorithms never do. The
zero KeyType is invalid.
*/
package sshkey

import (
	"strings"

	"sshenv/internal/sshwire"
)

// Algorithm identifies a public key algorithm.
type Algorithm uint8

const (
	AlgorithmRSA Algorithm = iota + 1
	AlgorithmDSA
	AlgorithmEd25519
	AlgorithmECDSA
)

// Curve identifies a NIST curve used with ECDSA.
type Curve uint8

const (
	NISTP256 Curve = iota + 1
	NISTP384
	NISTP521
)

// String returns the SSH curve identifier (e.g. "nistp256").
func (c Curve) String() string {
	switch c {
	case NISTP256:
		return "nistp256"
	case NISTP384:
		return "nistp384"
	case NISTP521:
		return "nistp521"
	default:
		return "unknown"
	}
}

// KeySize returns the fixed bit size of the curve.
func (c Curve) KeySize() int {
	switch c {
	case NISTP256:
		return 256
	case NISTP384:
		return 384
	case NISTP521:
		return 521
	default:
		return 0
	}
}

// ParseCurve parses an SSH curve identifier.
func ParseCurve(s string) (Curve, error) {
	switch s {
	case "nistp256":
		return NISTP256, nil
	case "nistp384":
		return NISTP384, nil
	case "nistp521":
		return NISTP521, nil
	default:
		return 0, sshwire.FormatError(sshwire.ErrUnknownCurve, "%q", s)
	}
}

const ecdsaPrefix = "ecdsa-sha2-"

// KeyType is an algorithm plus, for ECDSA, its curve.
type KeyType struct {
	alg   Algorithm
	curve Curve
}

// Fixed key types.
var (
	TypeRSA     = KeyType{alg: AlgorithmRSA}
	TypeDSA     = KeyType{alg: AlgorithmDSA}
	TypeEd25519 = KeyType{alg: AlgorithmEd25519}
)

// ECDSAType returns the ECDSA key type over curve c.
func ECDSAType(c Curve) KeyType {
	return KeyType{alg: AlgorithmECDSA, curve: c}
}

// ParseKeyType parses a canonical SSH key type string.
func ParseKeyType(s string) (KeyType, error) {
	switch s {
	case "ssh-rsa":
		return TypeRSA, nil
	case "ssh-dss":
		return TypeDSA, nil
	case "ssh-ed25519":
		return TypeEd25519, nil
	}
	if rest, ok := strings.CutPrefix(s, ecdsaPrefix); ok {
		c, err := ParseCurve(rest)
		if err != nil {
			return KeyType{}, err
		}
		return ECDSAType(c), nil
	}
	return KeyType{}, sshwire.FormatError(sshwire.ErrUnknownKeyType, "%q", s)
}

// Algorithm returns the key algorithm.
func (t KeyType) Algorithm() Algorithm {
	return t.alg
}

// Curve returns the ECDSA curve; ok is false for other algorithms.
func (t KeyType) Curve() (c Curve, ok bool) {
	return t.curve, t.alg == AlgorithmECDSA
}

// IsValid reports whether t is a usable key type.
func (t KeyType) IsValid() bool {
	switch t.alg {
	case AlgorithmRSA, AlgorithmDSA, AlgorithmEd25519:
		return t.curve == 0
	case AlgorithmECDSA:
		return t.curve.KeySize() != 0
	default:
		return false
	}
}

// String returns the canonical SSH type string.
func (t KeyType) String() string {
	switch t.alg {
	case AlgorithmRSA:
		return "ssh-rsa"
	case AlgorithmDSA:
		return "ssh-dss"
	case AlgorithmEd25519:
		return "ssh-ed25519"
	case AlgorithmECDSA:
		return ecdsaPrefix + t.curve.String()
	default:
		return "unknown"
	}
}

// HashName is the name ssh-keygen prints after a fingerprint, e.g. "ED25519".
func (t KeyType) HashName() string {
	switch t.alg {
	case AlgorithmRSA:
		return "RSA"
	case AlgorithmDSA:
		return "DSA"
	case AlgorithmEd25519:
		return "ED25519"
	case AlgorithmECDSA:
		return "ECDSA"
	default:
		return "UNKNOWN"
	}
}
