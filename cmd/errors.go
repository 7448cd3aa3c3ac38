/*
Copyright © 2025 Logicos Software

errors.go implements structured error types for better UX.

This module provides:
  - Categorized error types (YubiKey, File, Crypto, Input, Format)
  - User-friendly error messages with troubleshooting hints
  - Classification of codec, signing and file errors from the library packages
  - Retry suggestions for transient errors
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"sshenv/internal/fsutil"
	"sshenv/internal/pivkey"
	"sshenv/internal/sshsig"
	"sshenv/internal/sshwire"
)

// ErrorCategory represents the type of error for classification.
type ErrorCategory int

const (
	// ErrCategoryUnknown for unclassified errors.
	ErrCategoryUnknown ErrorCategory = iota
	// ErrCategoryYubiKey for YubiKey-related errors.
	ErrCategoryYubiKey
	// ErrCategoryFile for file system errors.
	ErrCategoryFile
	// ErrCategoryCrypto for signing and verification errors.
	ErrCategoryCrypto
	// ErrCategoryInput for user input validation errors.
	ErrCategoryInput
	// ErrCategoryFormat for malformed SSH objects.
	ErrCategoryFormat
)

// String returns a human-readable category name.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryYubiKey:
		return "YubiKey"
	case ErrCategoryFile:
		return "File"
	case ErrCategoryCrypto:
		return "Cryptographic"
	case ErrCategoryInput:
		return "Input"
	case ErrCategoryFormat:
		return "Format"
	default:
		return "Unknown"
	}
}

// SSHEnvError is a structured error with category, message, and hints.
type SSHEnvError struct {
	Category    ErrorCategory
	Message     string
	Hint        string
	Cause       error
	IsRetryable bool
}

// Error implements the error interface.
func (e *SSHEnvError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause for error chain inspection.
func (e *SSHEnvError) Unwrap() error {
	return e.Cause
}

// FullError returns the error with hint if available.
func (e *SSHEnvError) FullError() string {
	var b strings.Builder
	b.WriteString(e.Error())
	if e.Hint != "" {
		b.WriteString("\n\nHint: ")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// Common error constructors for YubiKey errors.

// ErrYubiKeyNotFound indicates no YubiKey was detected.
func ErrYubiKeyNotFound() *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryYubiKey,
		Message:  "no YubiKey detected",
		Hint:     "Make sure your YubiKey is plugged in. On Linux, ensure pcscd is running: 'sudo systemctl start pcscd'",
	}
}

// ErrYubiKeyTouchTimeout indicates the user didn't touch in time.
func ErrYubiKeyTouchTimeout(cause error) *SSHEnvError {
	return &SSHEnvError{
		Category:    ErrCategoryYubiKey,
		Message:     "YubiKey touch timeout",
		Hint:        "After entering your PIN, the YubiKey blinks waiting for you to touch it. Try again and touch it promptly.",
		Cause:       cause,
		IsRetryable: true,
	}
}

// ErrYubiKeyWrongPIN indicates incorrect PIN with remaining retries.
func ErrYubiKeyWrongPIN(retries int, cause error) *SSHEnvError {
	hint := fmt.Sprintf("Wrong PIN! You have %d attempts remaining before the PIN is blocked.", retries)
	if retries <= 1 {
		hint = "Wrong PIN! This is your LAST attempt. If you enter the wrong PIN again, it will be blocked and you'll need the PUK to reset it."
	}
	return &SSHEnvError{
		Category:    ErrCategoryYubiKey,
		Message:     fmt.Sprintf("PIN verification failed (%d retries remaining)", retries),
		Hint:        hint,
		Cause:       cause,
		IsRetryable: true,
	}
}

// ErrYubiKeyPINBlocked indicates the PIN is blocked.
func ErrYubiKeyPINBlocked(cause error) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryYubiKey,
		Message:  "PIN is blocked",
		Hint:     "Use YubiKey Manager or 'ykman piv access unblock-pin' with your PUK to reset it.",
		Cause:    cause,
	}
}

// ErrYubiKeySlotEmpty indicates no key exists in the slot.
func ErrYubiKeySlotEmpty(slot string, cause error) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryYubiKey,
		Message:  fmt.Sprintf("no key in slot %s", slot),
		Hint:     "Generate a key in the slot first, e.g. 'ykman piv keys generate 9c -', or pick another slot with --slot.",
		Cause:    cause,
	}
}

// Common error constructors for File errors.

// ErrFileNotFound indicates the file doesn't exist.
func ErrFileNotFound(path string, cause error) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryFile,
		Message:  fmt.Sprintf("file not found: %s", path),
		Hint:     "Check that the file path is correct and the file exists.",
		Cause:    cause,
	}
}

// ErrFilePermission indicates permission denied.
func ErrFilePermission(path string, cause error) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryFile,
		Message:  fmt.Sprintf("permission denied: %s", path),
		Hint:     "Check that you have read/write permissions for this file and its directory.",
		Cause:    cause,
	}
}

// ErrFileAlreadyExists indicates the output file already exists.
func ErrFileAlreadyExists(path string) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryFile,
		Message:  fmt.Sprintf("output file already exists: %s", path),
		Hint:     "Use a different output path, delete the existing file first, or pass --force.",
	}
}

// Common error constructors for Crypto errors.

// ErrSigning indicates a signature could not be produced.
func ErrSigning(cause error) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryCrypto,
		Message:  "could not sign message",
		Hint:     "Check that the private key is unencrypted and, with --engine ssh-keygen, that ssh-keygen is installed.",
		Cause:    cause,
	}
}

// ErrSignatureRejected indicates the signature does not hold for the
// message, key and namespace.
func ErrSignatureRejected(cause error) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryCrypto,
		Message:  "signature rejected",
		Hint:     "The message, the signer's public key or the namespace differ from what was signed.",
		Cause:    cause,
	}
}

// ErrVerificationFailed indicates verification could not be carried out.
func ErrVerificationFailed(cause error) *SSHEnvError {
	return &SSHEnvError{
		Category:    ErrCategoryCrypto,
		Message:     "could not verify signature",
		Cause:       cause,
		IsRetryable: true,
	}
}

// ErrFingerprintMismatch indicates a key other than the expected one.
func ErrFingerprintMismatch(want, got string) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryCrypto,
		Message:  fmt.Sprintf("fingerprint mismatch: expected %s, got %s", want, got),
		Hint:     "This is not the key you expected. Check where it came from before trusting it.",
	}
}

// Common error constructors for Format errors.

// ErrMalformedObject indicates an SSH object that does not decode.
func ErrMalformedObject(cause error) *SSHEnvError {
	hint := "The input is not an unencrypted OpenSSH private key, public key line or SSH signature."
	switch {
	case errors.Is(cause, sshwire.ErrUnsupportedCipher), errors.Is(cause, sshwire.ErrUnsupportedKdf):
		hint = "Passphrase-protected keys are not supported. Remove the passphrase with 'ssh-keygen -p -N \"\" -f <key>' on a copy of the key."
	case errors.Is(cause, sshwire.ErrMultiKeyUnsupported):
		hint = "The file holds more than one key. Split it into one key per file."
	case errors.Is(cause, sshwire.ErrUnknownKeyType), errors.Is(cause, sshwire.ErrUnknownCurve):
		hint = "Supported key types: ssh-rsa, ssh-dss, ecdsa-sha2-nistp256/384/521 and ssh-ed25519."
	case errors.Is(cause, sshwire.ErrUnexpectedLabel):
		hint = "The PEM block is of a different kind than this command expects."
	}
	return &SSHEnvError{
		Category: ErrCategoryFormat,
		Message:  "malformed SSH object",
		Hint:     hint,
		Cause:    cause,
	}
}

// ErrUnrecognizedObject indicates input that is no kind of SSH object.
func ErrUnrecognizedObject(cause error) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryFormat,
		Message:  "unrecognized input",
		Hint:     "Expected an armored SSH signature, a public key line or an unencrypted OpenSSH private key.",
		Cause:    cause,
	}
}

// ErrCorruptObject indicates an SSH object whose parts disagree.
func ErrCorruptObject(cause error) *SSHEnvError {
	hint := "The object decodes but its parts disagree. It may be truncated or corrupted."
	if errors.Is(cause, sshwire.ErrCheckMismatch) {
		hint = "The check integers differ. The key is corrupted or was decrypted with the wrong passphrase."
	}
	return &SSHEnvError{
		Category: ErrCategoryFormat,
		Message:  "corrupt SSH object",
		Hint:     hint,
		Cause:    cause,
	}
}

// ErrInvalidLength indicates a key or digest of the wrong size.
func ErrInvalidLength(cause error) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryFormat,
		Message:  "invalid length",
		Cause:    cause,
	}
}

// Common error constructors for Input errors.

// ErrMissingInput indicates a required input was not given.
func ErrMissingInput(what, flags string) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryInput,
		Message:  fmt.Sprintf("no %s given", what),
		Hint:     fmt.Sprintf("Pass the %s with %s or on standard input.", what, flags),
	}
}

// ErrConflictingInputs indicates two inputs claim the same source.
func ErrConflictingInputs(details string) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryInput,
		Message:  "conflicting inputs",
		Hint:     details,
	}
}

// ErrTerminalInput indicates standard input is an interactive terminal.
func ErrTerminalInput(what string) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryInput,
		Message:  fmt.Sprintf("refusing to read the %s from a terminal", what),
		Hint:     "Pipe the input in, or pass it with a flag.",
	}
}

// ErrUnknownEngine indicates an unsupported engine setting.
func ErrUnknownEngine(name string) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryInput,
		Message:  fmt.Sprintf("unknown engine %q", name),
		Hint:     fmt.Sprintf("Use %q or %q.", EngineNative, EngineSSHKeygen),
	}
}

// ErrInvalidSetting indicates a bad flag or config value.
func ErrInvalidSetting(key, value, hint string) *SSHEnvError {
	return &SSHEnvError{
		Category: ErrCategoryInput,
		Message:  fmt.Sprintf("invalid %s %q", key, value),
		Hint:     hint,
	}
}

// ClassifyError categorizes an error into an SSHEnvError. Typed errors
// from the library packages are recognized first, then known message
// patterns from the piv-go library.
func ClassifyError(err error) *SSHEnvError {
	if err == nil {
		return nil
	}

	var se *SSHEnvError
	if errors.As(err, &se) {
		return se
	}

	if errors.Is(err, sshsig.ErrSigningFailed) {
		return ErrSigning(err)
	}

	var we *sshwire.Error
	if errors.As(err, &we) {
		switch we.Class {
		case sshwire.ClassConsistency:
			return ErrCorruptObject(err)
		case sshwire.ClassLength:
			return ErrInvalidLength(err)
		default:
			return ErrMalformedObject(err)
		}
	}

	var pathErr *os.PathError
	path := ""
	if errors.As(err, &pathErr) {
		path = pathErr.Path
	}
	switch {
	case errors.Is(err, fsutil.ErrExists):
		return ErrFileAlreadyExists(path)
	case errors.Is(err, os.ErrNotExist):
		return ErrFileNotFound(path, err)
	case errors.Is(err, os.ErrPermission):
		return ErrFilePermission(path, err)
	case errors.Is(err, pivkey.ErrNoToken):
		return ErrYubiKeyNotFound()
	case errors.Is(err, pivkey.ErrUnsupportedSlot):
		return &SSHEnvError{
			Category: ErrCategoryInput,
			Message:  err.Error(),
			Hint:     "Slots 9a, 9c, 9d and 9e can hold signing keys.",
		}
	}

	errStr := err.Error()
	errLower := strings.ToLower(errStr)

	// Smart card status words from piv-go.
	if strings.Contains(errLower, "yubikey") || strings.Contains(errLower, "smart card") || strings.Contains(errLower, "piv") {
		if strings.Contains(errStr, "6982") || strings.Contains(errLower, "security status not satisfied") {
			return ErrYubiKeyTouchTimeout(err)
		}

		if strings.Contains(errStr, "63c") {
			retries := 3
			for i := 0; i <= 9; i++ {
				if strings.Contains(errStr, fmt.Sprintf("63c%d", i)) {
					retries = i
					break
				}
			}
			return ErrYubiKeyWrongPIN(retries, err)
		}

		if strings.Contains(errStr, "6983") || strings.Contains(errLower, "authentication method blocked") {
			return ErrYubiKeyPINBlocked(err)
		}

		if strings.Contains(errStr, "6a82") || strings.Contains(errLower, "data object or application not found") {
			return ErrYubiKeySlotEmpty("unknown", err)
		}

		if strings.Contains(errLower, "no yubikey") || strings.Contains(errLower, "no reader") {
			return ErrYubiKeyNotFound()
		}
	}

	return &SSHEnvError{
		Category: ErrCategoryUnknown,
		Message:  err.Error(),
	}
}

// printClassifiedError writes a classified error with its hint to w.
func printClassifiedError(w io.Writer, err error) {
	fmt.Fprintln(w, paint(w, color.FgRed, color.Bold).Sprint("error:"), ClassifyError(err).FullError())
}

// ExitWithClassifiedError prints a classified error with hints and exits.
func ExitWithClassifiedError(err error) {
	if err == nil {
		return
	}
	printClassifiedError(os.Stderr, err)
	os.Exit(1)
}
