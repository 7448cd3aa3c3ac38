/*
Copyright © 2025 Logicos Software

engine.go defines the sign/verify protocol shared by the native engine and
the ssh-keygen reference engine.
*/
package sshsig

import (
	"context"
	"errors"
	"fmt"

	"sshenv/internal/sshkey"
)

// ErrSigningFailed matches every error returned by Engine.Sign.
var ErrSigningFailed = errors.New("signing failed")

// Reasons a signature is rejected.
var (
	ErrNamespaceMismatch = errors.New("namespace mismatch")
	ErrKeyMismatch       = errors.New("signature was made by a different key")
	ErrBadSignature      = errors.New("signature does not verify")
)

// SigningError wraps the cause of a signing failure.
type SigningError struct {
	Cause error
}

// Error implements the error interface.
func (e *SigningError) Error() string {
	if e.Cause == nil {
		return ErrSigningFailed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrSigningFailed, e.Cause)
}

// Unwrap returns the cause.
func (e *SigningError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrSigningFailed.
func (e *SigningError) Is(target error) bool {
	return target == ErrSigningFailed
}

func signingFailed(err error) error {
	var se *SigningError
	if errors.As(err, &se) {
		return err
	}
	return &SigningError{Cause: err}
}

// Status is the outcome of a verification.
type Status int

const (
	// StatusVerified means the signature is valid for the message, key and
	// namespace.
	StatusVerified Status = iota + 1
	// StatusRejected means the signature does not hold.
	StatusRejected
	// StatusError means verification could not be carried out.
	StatusError
)

// String returns a lower-case status name.
func (s Status) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusRejected:
		return "rejected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result is a verification outcome. Err is nil only when verified.
type Result struct {
	Status Status
	Err    error
}

// OK reports whether the signature verified.
func (r Result) OK() bool {
	return r.Status == StatusVerified
}

func verified() Result                   { return Result{Status: StatusVerified} }
func rejected(err error) Result          { return Result{Status: StatusRejected, Err: err} }
func verificationError(err error) Result { return Result{Status: StatusError, Err: err} }

// Engine signs and verifies messages.
type Engine interface {
	// Sign signs message with key under namespace. Errors match
	// ErrSigningFailed.
	Sign(ctx context.Context, message []byte, key *sshkey.PrivateKey, namespace string) (*Signature, error)
	// Verify checks sig over message against key and namespace.
	Verify(ctx context.Context, message []byte, sig *Signature, key *sshkey.PublicKeyLine, namespace string) Result
}

func namespaceOrDefault(ns string) string {
	if ns == "" {
		return DefaultNamespace
	}
	return ns
}

// Sign signs message with the native engine.
func Sign(ctx context.Context, message []byte, key *sshkey.PrivateKey, namespace string) (*Signature, error) {
	return Native{}.Sign(ctx, message, key, namespace)
}

// Verify checks sig with the native engine and reports only whether it
// verified.
func Verify(ctx context.Context, message []byte, sig *Signature, key *sshkey.PublicKeyLine, namespace string) bool {
	return Native{}.Verify(ctx, message, sig, key, namespace).OK()
}
