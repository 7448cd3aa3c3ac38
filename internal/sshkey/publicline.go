/*
Copyright © 2025 Logicos Software

publicline.go implements the single-line OpenSSH public key format
"<type> <base64 blob> [<comment>]" used by authorized_keys and .pub files.
*/
package sshkey

import (
	"encoding/base64"
	"fmt"
	"strings"
	"unicode"

	"sshenv/internal/sshwire"
)

// defaultIdentity is the allowed_signers principal used for keys without
// a comment.
const defaultIdentity = "identity"

// PublicKeyLine is a public key with its optional comment.
type PublicKeyLine struct {
	Key     PublicKey
	Comment string
}

// ParsePublicKeyLine parses a public key line. Tokens after the base64
// blob are joined with single spaces to form the comment. The declared
// type must match the type inside the blob.
func ParsePublicKeyLine(line string) (*PublicKeyLine, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.ContainsAny(line, "\r\n") {
		return nil, sshwire.FormatError(sshwire.ErrInvalidPublicKeyLine, "must be exactly one line")
	}
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return nil, sshwire.FormatError(sshwire.ErrInvalidPublicKeyLine, "want \"<type> <base64> [<comment>]\"")
	}

	declared, err := ParseKeyType(parts[0])
	if err != nil {
		return nil, err
	}
	blob, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, sshwire.FormatError(sshwire.ErrInvalidPublicKeyLine, "key body: %v", err)
	}

	r := sshwire.NewReader(blob)
	key, err := ReadPublicKey(r, declared)
	if err != nil {
		return nil, err
	}
	if err := r.ExpectEnd("public key blob"); err != nil {
		return nil, err
	}

	return &PublicKeyLine{Key: key, Comment: strings.Join(parts[2:], " ")}, nil
}

// Type returns the key type.
func (l *PublicKeyLine) Type() KeyType {
	return l.Key.Type()
}

// Base64 returns the base64-encoded public key blob.
func (l *PublicKeyLine) Base64() string {
	return base64.StdEncoding.EncodeToString(MarshalPublicKey(l.Key))
}

// String renders the line. The comment section is omitted when empty.
func (l *PublicKeyLine) String() string {
	s := l.Type().String() + " " + l.Base64()
	if l.Comment != "" {
		s += " " + l.Comment
	}
	return s
}

// SetComment replaces the comment. Comments may not contain whitespace.
func (l *PublicKeyLine) SetComment(comment string) error {
	if err := CheckComment(comment); err != nil {
		return err
	}
	l.Comment = comment
	return nil
}

// Identity returns the first word of the comment, or "identity" when
// there is none. Principals in allowed_signers cannot contain spaces.
func (l *PublicKeyLine) Identity() string {
	fields := strings.Fields(l.Comment)
	if len(fields) == 0 {
		return defaultIdentity
	}
	return fields[0]
}

// AllowedSignersLine renders the key as an allowed_signers entry:
// "<identity> <type> <base64>".
func (l *PublicKeyLine) AllowedSignersLine() string {
	return l.Identity() + " " + l.Type().String() + " " + l.Base64()
}

// Fingerprint returns the fingerprint of the key under alg.
func (l *PublicKeyLine) Fingerprint(alg HashAlgorithm) (Fingerprint, error) {
	return FingerprintOf(l.Key, alg)
}

// HashString renders the key the way "ssh-keygen -l" does, e.g.
// "256 SHA256:... user@host (ED25519)".
func (l *PublicKeyLine) HashString(alg HashAlgorithm) (string, error) {
	fp, err := l.Fingerprint(alg)
	if err != nil {
		return "", err
	}
	comment := l.Comment
	if comment == "" {
		comment = "no comment"
	}
	return fmt.Sprintf("%d %s %s (%s)", l.Key.KeySize(), fp, comment, l.Type().HashName()), nil
}

// Equal reports whether l and o carry the same key and comment.
func (l *PublicKeyLine) Equal(o *PublicKeyLine) bool {
	if l == nil || o == nil {
		return l == o
	}
	return l.Comment == o.Comment && PublicKeysEqual(l.Key, o.Key)
}

// CheckComment rejects comments containing whitespace.
func CheckComment(comment string) error {
	if strings.IndexFunc(comment, unicode.IsSpace) >= 0 {
		return sshwire.FormatError(sshwire.ErrInvalidComment, "%q", comment)
	}
	return nil
}
