/*
Copyright © 2025 Logicos Software

keygen.go implements the sign/verify protocol by running "ssh-keygen -Y".

Each call works in its own private temporary directory. The private key,
allowed_signers file and signature are written there with owner-only
permissions and securely erased before the call returns, on every path.
*/
package sshsig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"

	"sshenv/internal/fsutil"
	"sshenv/internal/sshkey"
)

// DefaultKeygenProgram is the program Keygen runs when none is set.
const DefaultKeygenProgram = "ssh-keygen"

// Keygen signs and verifies by running ssh-keygen.
type Keygen struct {
	// Program is the ssh-keygen executable; empty means DefaultKeygenProgram.
	Program string
	// Logger receives debug output; nil means slog.Default().
	Logger *slog.Logger
}

func (k Keygen) program() string {
	if k.Program == "" {
		return DefaultKeygenProgram
	}
	return k.Program
}

func (k Keygen) logger() *slog.Logger {
	if k.Logger == nil {
		return slog.Default()
	}
	return k.Logger
}

// run executes the program with message on stdin and returns stdout.
func (k Keygen) run(ctx context.Context, message []byte, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, k.program(), args...)
	cmd.Stdin = bytes.NewReader(message)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	k.logger().Debug("running ssh-keygen", "program", k.program(), "args", args)
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", k.program(), err, msg)
		}
		return nil, fmt.Errorf("%s: %w", k.program(), err)
	}
	return stdout.Bytes(), nil
}

// writeSecret writes a temporary file. The returned cleanup securely
// erases it and must be deferred even when writing fails.
func (k Keygen) writeSecret(path string, data []byte) (cleanup func(), err error) {
	cleanup = func() { fsutil.SecureDelete(path, k.logger()) }
	return cleanup, fsutil.WriteSecret(path, data)
}

// Sign implements Engine.
func (k Keygen) Sign(ctx context.Context, message []byte, key *sshkey.PrivateKey, namespace string) (*Signature, error) {
	namespace = namespaceOrDefault(namespace)

	var sig *Signature
	err := fsutil.WithTempDir("sshenv-sign-", func(dir string) error {
		keyPath := filepath.Join(dir, "id")
		cleanup, err := k.writeSecret(keyPath, []byte(key.PEM()))
		defer cleanup()
		if err != nil {
			return err
		}

		out, err := k.run(ctx, message, "-Y", "sign", "-f", keyPath, "-n", namespace)
		if err != nil {
			return err
		}
		sig, err = Parse(string(out))
		return err
	})
	if err != nil {
		return nil, signingFailed(err)
	}
	return sig, nil
}

// Verify implements Engine. ssh-keygen exits non-zero both for bad
// signatures and for its own failures; any non-zero exit is reported as
// StatusRejected carrying the program's message, while failing to run the
// program at all is StatusError.
func (k Keygen) Verify(ctx context.Context, message []byte, sig *Signature, key *sshkey.PublicKeyLine, namespace string) Result {
	namespace = namespaceOrDefault(namespace)

	var exitErr *exec.ExitError
	var res Result
	err := fsutil.WithTempDir("sshenv-verify-", func(dir string) error {
		signersPath := filepath.Join(dir, "allowed_signers")
		cleanupSigners, err := k.writeSecret(signersPath, []byte(key.AllowedSignersLine()+"\n"))
		defer cleanupSigners()
		if err != nil {
			return err
		}

		sigPath := filepath.Join(dir, "message.sig")
		cleanupSig, err := k.writeSecret(sigPath, []byte(sig.PEM()))
		defer cleanupSig()
		if err != nil {
			return err
		}

		_, err = k.run(ctx, message,
			"-Y", "verify",
			"-f", signersPath,
			"-I", key.Identity(),
			"-n", namespace,
			"-s", sigPath)
		switch {
		case err == nil:
			res = verified()
		case errors.As(err, &exitErr) && ctx.Err() == nil:
			res = rejected(fmt.Errorf("%w: %v", ErrBadSignature, err))
		default:
			return err
		}
		return nil
	})
	if err != nil {
		return verificationError(err)
	}
	return res
}
