/*
Copyright © 2025 Logicos Software

errors.go defines the error taxonomy shared by every SSH codec package.

Each failure carries a Class (what went wrong structurally) and a Kind
sentinel (the specific sub-kind), so callers can branch with errors.Is
on the kind or errors.As on *Error to read the class.
*/
package sshwire

import (
	"errors"
	"fmt"
)

// Class groups parse failures by their nature.
type Class int

const (
	// ClassFormat covers magic/header mismatches, unsupported ciphers, KDFs,
	// versions, key counts, type mismatches and non-empty reserved fields.
	ClassFormat Class = iota + 1
	// ClassConsistency covers cross-field disagreements inside a structure.
	ClassConsistency
	// ClassLength covers fixed-size fields of the wrong size.
	ClassLength
)

// String returns a human-readable class name.
func (c Class) String() string {
	switch c {
	case ClassFormat:
		return "format"
	case ClassConsistency:
		return "consistency"
	case ClassLength:
		return "length"
	default:
		return "unknown"
	}
}

// Format error kinds.
var (
	ErrMagicMismatch          = errors.New("magic mismatch")
	ErrHeaderFooterMismatch   = errors.New("PEM header and footer do not match")
	ErrInvalidArmor           = errors.New("invalid PEM armor")
	ErrUnexpectedLabel        = errors.New("unexpected PEM label")
	ErrUnsupportedCipher      = errors.New("unsupported cipher")
	ErrUnsupportedKdf         = errors.New("unsupported KDF")
	ErrMultiKeyUnsupported    = errors.New("multiple keys unsupported")
	ErrUnknownKeyType         = errors.New("unknown key type")
	ErrUnknownCurve           = errors.New("unknown curve")
	ErrKeyTypeMismatch        = errors.New("key type mismatch")
	ErrCurveMismatch          = errors.New("curve mismatch")
	ErrUnsupportedVersion     = errors.New("unsupported version")
	ErrReservedNotEmpty       = errors.New("reserved field not empty")
	ErrInvalidPublicKeyLine   = errors.New("invalid public key line")
	ErrMalformedFingerprint   = errors.New("malformed fingerprint")
	ErrUnknownHashAlgorithm   = errors.New("unknown hash algorithm")
	ErrInvalidUTF8            = errors.New("invalid UTF-8 string")
	ErrInvalidComment         = errors.New("comment may not contain whitespace")
	ErrUnsupportedKeyMaterial = errors.New("unsupported key material")
)

// Consistency error kinds.
var (
	ErrBufferUnderflow          = errors.New("buffer underflow")
	ErrInvalidPadding           = errors.New("invalid padding")
	ErrTrailingData             = errors.New("trailing data")
	ErrCheckMismatch            = errors.New("check integers do not match")
	ErrPublicKeyMismatch        = errors.New("embedded public key mismatch")
	ErrSignatureKeyTypeMismatch = errors.New("signature key type mismatch")
)

// Length error kinds.
var (
	ErrInvalidKeyLength    = errors.New("invalid key length")
	ErrInvalidDigestLength = errors.New("invalid digest length")
)

// Error is a classified codec failure.
type Error struct {
	Class  Class
	Kind   error
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail == "" {
		return e.Kind.Error()
	}
	return e.Kind.Error() + ": " + e.Detail
}

// Unwrap exposes the kind sentinel to errors.Is.
func (e *Error) Unwrap() error {
	return e.Kind
}

// Errorf builds a classified error. The detail is formatted with fmt.Sprintf.
func Errorf(class Class, kind error, format string, args ...any) error {
	return &Error{Class: class, Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// FormatError returns a ClassFormat error of the given kind.
func FormatError(kind error, format string, args ...any) error {
	return Errorf(ClassFormat, kind, format, args...)
}

// ConsistencyError returns a ClassConsistency error of the given kind.
func ConsistencyError(kind error, format string, args ...any) error {
	return Errorf(ClassConsistency, kind, format, args...)
}

// LengthError returns a ClassLength error of the given kind.
func LengthError(kind error, format string, args ...any) error {
	return Errorf(ClassLength, kind, format, args...)
}

// ClassOf reports the class of err, or 0 if err is not a classified error.
func ClassOf(err error) Class {
	var e *Error
	if errors.As(err, &e) {
		return e.Class
	}
	return 0
}
