/*
Copyright © 2025 Logicos Software

errors_test.go contains unit tests for error classification and handling.
*/
package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"sshenv/internal/fsutil"
	"sshenv/internal/pivkey"
	"sshenv/internal/sshsig"
	"sshenv/internal/sshwire"
)

func TestSSHEnvError(t *testing.T) {
	tests := []struct {
		name     string
		err      *SSHEnvError
		wantMsg  string
		wantHint string
	}{
		{
			name:     "simple error",
			err:      &SSHEnvError{Category: ErrCategoryYubiKey, Message: "test error"},
			wantMsg:  "test error",
			wantHint: "",
		},
		{
			name: "error with cause",
			err: &SSHEnvError{
				Category: ErrCategoryFile,
				Message:  "file error",
				Cause:    errors.New("underlying error"),
			},
			wantMsg: "file error: underlying error",
		},
		{
			name: "error with hint",
			err: &SSHEnvError{
				Category: ErrCategoryCrypto,
				Message:  "crypto error",
				Hint:     "Try again",
			},
			wantMsg:  "crypto error",
			wantHint: "Try again",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if got != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got, tt.wantMsg)
			}

			if tt.wantHint != "" {
				full := tt.err.FullError()
				if !strings.Contains(full, "\n\nHint: "+tt.wantHint) {
					t.Errorf("FullError() = %q, want to contain %q", full, tt.wantHint)
				}
			}
		})
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &SSHEnvError{
		Message: "wrapper",
		Cause:   cause,
	}

	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name         string
		input        error
		wantCategory ErrorCategory
		wantRetry    bool
	}{
		{
			name:         "touch timeout 6982",
			input:        errors.New("smart card error 6982: security status not satisfied"),
			wantCategory: ErrCategoryYubiKey,
			wantRetry:    true,
		},
		{
			name:         "wrong PIN 63c2",
			input:        errors.New("smart card error 63c2: verification failed"),
			wantCategory: ErrCategoryYubiKey,
			wantRetry:    true,
		},
		{
			name:         "PIN blocked 6983",
			input:        errors.New("smart card error 6983: authentication method blocked"),
			wantCategory: ErrCategoryYubiKey,
		},
		{
			name:         "slot empty 6a82",
			input:        errors.New("smart card error 6a82: data object or application not found"),
			wantCategory: ErrCategoryYubiKey,
		},
		{
			name:         "no yubikey",
			input:        pivkey.ErrNoToken,
			wantCategory: ErrCategoryYubiKey,
		},
		{
			name:         "unsupported slot",
			input:        fmt.Errorf("%w %q", pivkey.ErrUnsupportedSlot, "9b"),
			wantCategory: ErrCategoryInput,
		},
		{
			name:         "file not found",
			input:        &os.PathError{Op: "open", Path: "/nope", Err: os.ErrNotExist},
			wantCategory: ErrCategoryFile,
		},
		{
			name:         "permission denied",
			input:        &os.PathError{Op: "open", Path: "/root", Err: os.ErrPermission},
			wantCategory: ErrCategoryFile,
		},
		{
			name:         "output exists",
			input:        fmt.Errorf("%w: out.sig", fsutil.ErrExists),
			wantCategory: ErrCategoryFile,
		},
		{
			name:         "signing failed",
			input:        &sshsig.SigningError{Cause: errors.New("boom")},
			wantCategory: ErrCategoryCrypto,
		},
		{
			name:         "format error",
			input:        sshwire.FormatError(sshwire.ErrMagicMismatch, "x"),
			wantCategory: ErrCategoryFormat,
		},
		{
			name:         "consistency error",
			input:        sshwire.ConsistencyError(sshwire.ErrCheckMismatch, "x"),
			wantCategory: ErrCategoryFormat,
		},
		{
			name:         "length error",
			input:        sshwire.LengthError(sshwire.ErrInvalidKeyLength, "x"),
			wantCategory: ErrCategoryFormat,
		},
		{
			name:         "already SSHEnvError",
			input:        ErrTerminalInput("message"),
			wantCategory: ErrCategoryInput,
		},
		{
			name:         "verification failed",
			input:        ErrVerificationFailed(nil),
			wantCategory: ErrCategoryCrypto,
			wantRetry:    true,
		},
		{
			name:         "unknown error",
			input:        errors.New("something else"),
			wantCategory: ErrCategoryUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ClassifyError(tt.input)
			if result == nil {
				t.Fatal("ClassifyError() returned nil for non-nil input")
			}

			if result.Category != tt.wantCategory {
				t.Errorf("Category = %v, want %v", result.Category, tt.wantCategory)
			}

			if result.IsRetryable != tt.wantRetry {
				t.Errorf("IsRetryable = %v, want %v", result.IsRetryable, tt.wantRetry)
			}
		})
	}

	if ClassifyError(nil) != nil {
		t.Error("ClassifyError(nil) should be nil")
	}
}

func TestClassifyErrorHints(t *testing.T) {
	tests := []struct {
		name     string
		input    error
		wantHint string
	}{
		{"encrypted key", sshwire.FormatError(sshwire.ErrUnsupportedCipher, "aes256-ctr"), "ssh-keygen -p"},
		{"multiple keys", sshwire.FormatError(sshwire.ErrMultiKeyUnsupported, "2"), "one key per file"},
		{"unknown key type", sshwire.FormatError(sshwire.ErrUnknownKeyType, "ssh-foo"), "Supported key types"},
		{"check mismatch", sshwire.ConsistencyError(sshwire.ErrCheckMismatch, "1 != 2"), "check integers"},
		{"output exists", fmt.Errorf("%w: x", fsutil.ErrExists), "--force"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.input).Hint
			if !strings.Contains(got, tt.wantHint) {
				t.Errorf("Hint = %q, want to contain %q", got, tt.wantHint)
			}
		})
	}
}

func TestErrorConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *SSHEnvError
		category ErrorCategory
	}{
		{"YubiKeyNotFound", ErrYubiKeyNotFound(), ErrCategoryYubiKey},
		{"YubiKeyTouchTimeout", ErrYubiKeyTouchTimeout(nil), ErrCategoryYubiKey},
		{"YubiKeyWrongPIN", ErrYubiKeyWrongPIN(2, nil), ErrCategoryYubiKey},
		{"YubiKeyPINBlocked", ErrYubiKeyPINBlocked(nil), ErrCategoryYubiKey},
		{"YubiKeySlotEmpty", ErrYubiKeySlotEmpty("9c", nil), ErrCategoryYubiKey},
		{"FileNotFound", ErrFileNotFound("/path", nil), ErrCategoryFile},
		{"FilePermission", ErrFilePermission("/path", nil), ErrCategoryFile},
		{"FileAlreadyExists", ErrFileAlreadyExists("/path"), ErrCategoryFile},
		{"Signing", ErrSigning(nil), ErrCategoryCrypto},
		{"SignatureRejected", ErrSignatureRejected(nil), ErrCategoryCrypto},
		{"VerificationFailed", ErrVerificationFailed(nil), ErrCategoryCrypto},
		{"FingerprintMismatch", ErrFingerprintMismatch("a", "b"), ErrCategoryCrypto},
		{"MalformedObject", ErrMalformedObject(nil), ErrCategoryFormat},
		{"UnrecognizedObject", ErrUnrecognizedObject(nil), ErrCategoryFormat},
		{"CorruptObject", ErrCorruptObject(nil), ErrCategoryFormat},
		{"InvalidLength", ErrInvalidLength(nil), ErrCategoryFormat},
		{"MissingInput", ErrMissingInput("key", "--key"), ErrCategoryInput},
		{"ConflictingInputs", ErrConflictingInputs("x"), ErrCategoryInput},
		{"TerminalInput", ErrTerminalInput("message"), ErrCategoryInput},
		{"UnknownEngine", ErrUnknownEngine("gpg"), ErrCategoryInput},
		{"InvalidSetting", ErrInvalidSetting("hash", "md5", "x"), ErrCategoryInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Fatal("Error constructor returned nil")
			}
			if tt.err.Category != tt.category {
				t.Errorf("Category = %v, want %v", tt.err.Category, tt.category)
			}
			if tt.err.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestErrorCategoryString(t *testing.T) {
	tests := []struct {
		cat  ErrorCategory
		want string
	}{
		{ErrCategoryUnknown, "Unknown"},
		{ErrCategoryYubiKey, "YubiKey"},
		{ErrCategoryFile, "File"},
		{ErrCategoryCrypto, "Cryptographic"},
		{ErrCategoryInput, "Input"},
		{ErrCategoryFormat, "Format"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := tt.cat.String()
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrongPINRetries(t *testing.T) {
	tests := []struct {
		errStr  string
		retries int
	}{
		{"smart card error 63c3: failed", 3},
		{"smart card error 63c2: failed", 2},
		{"smart card error 63c1: failed", 1},
		{"smart card error 63c0: failed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.errStr, func(t *testing.T) {
			err := ClassifyError(errors.New(tt.errStr))
			want := fmt.Sprintf("(%d retries remaining)", tt.retries)
			if !strings.Contains(err.Message, want) {
				t.Errorf("Message %q should contain %q", err.Message, want)
			}
		})
	}
}

func TestPrintClassifiedError(t *testing.T) {
	var buf bytes.Buffer
	printClassifiedError(&buf, ErrFileAlreadyExists("out.sig"))
	want := "error: output file already exists: out.sig\n\nHint: "
	if !strings.HasPrefix(buf.String(), want) {
		t.Errorf("output = %q, want prefix %q", buf.String(), want)
	}
}
