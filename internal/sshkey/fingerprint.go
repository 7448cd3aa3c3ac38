/*
Copyright © 2025 Logicos Software

fingerprint.go implements SHA256 and MD5 key fingerprints.
*/
package sshkey

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strings"

	"sshenv/internal/sshwire"
)

// HashAlgorithm selects the fingerprint digest.
type HashAlgorithm uint8

const (
	SHA256 HashAlgorithm = iota + 1
	MD5
)

// String returns the fingerprint prefix, "SHA256" or "MD5".
func (a HashAlgorithm) String() string {
	switch a {
	case SHA256:
		return "SHA256"
	case MD5:
		return "MD5"
	default:
		return "unknown"
	}
}

// Size returns the digest length in bytes.
func (a HashAlgorithm) Size() int {
	switch a {
	case SHA256:
		return sha256.Size
	case MD5:
		return md5.Size
	default:
		return 0
	}
}

// ParseHashAlgorithm parses "SHA256" or "MD5", case-insensitively.
func ParseHashAlgorithm(s string) (HashAlgorithm, error) {
	switch strings.ToUpper(s) {
	case "SHA256":
		return SHA256, nil
	case "MD5":
		return MD5, nil
	default:
		return 0, sshwire.FormatError(sshwire.ErrUnknownHashAlgorithm, "%q", s)
	}
}

// Fingerprint is a digest of a key's hash image.
type Fingerprint struct {
	alg    HashAlgorithm
	digest []byte
}

// NewFingerprint wraps digest, which must have the length alg produces.
func NewFingerprint(alg HashAlgorithm, digest []byte) (Fingerprint, error) {
	size := alg.Size()
	if size == 0 {
		return Fingerprint{}, sshwire.FormatError(sshwire.ErrUnknownHashAlgorithm, "%d", alg)
	}
	if len(digest) != size {
		return Fingerprint{}, sshwire.LengthError(sshwire.ErrInvalidDigestLength, "%s digest is %d bytes, want %d", alg, len(digest), size)
	}
	return Fingerprint{alg: alg, digest: append([]byte(nil), digest...)}, nil
}

// FingerprintFromHashImage digests image with alg.
func FingerprintFromHashImage(image []byte, alg HashAlgorithm) (Fingerprint, error) {
	switch alg {
	case SHA256:
		sum := sha256.Sum256(image)
		return NewFingerprint(alg, sum[:])
	case MD5:
		sum := md5.Sum(image)
		return NewFingerprint(alg, sum[:])
	default:
		return Fingerprint{}, sshwire.FormatError(sshwire.ErrUnknownHashAlgorithm, "%d", alg)
	}
}

// FingerprintOf returns the fingerprint of k.
func FingerprintOf(k PublicKey, alg HashAlgorithm) (Fingerprint, error) {
	return FingerprintFromHashImage(HashImage(k), alg)
}

// ParseFingerprint is the inverse of Fingerprint.String.
func ParseFingerprint(s string) (Fingerprint, error) {
	prefix, encoded, ok := strings.Cut(s, ":")
	if !ok {
		return Fingerprint{}, sshwire.FormatError(sshwire.ErrMalformedFingerprint, "%q has no algorithm prefix", s)
	}

	switch prefix {
	case "SHA256":
		if len(encoded) != base64.RawStdEncoding.EncodedLen(sha256.Size) {
			return Fingerprint{}, sshwire.FormatError(sshwire.ErrMalformedFingerprint, "SHA256 body is %d characters", len(encoded))
		}
		digest, err := base64.RawStdEncoding.Strict().DecodeString(encoded)
		if err != nil {
			return Fingerprint{}, sshwire.FormatError(sshwire.ErrMalformedFingerprint, "%v", err)
		}
		return NewFingerprint(SHA256, digest)

	case "MD5":
		pairs := strings.Split(encoded, ":")
		if len(pairs) != md5.Size {
			return Fingerprint{}, sshwire.FormatError(sshwire.ErrMalformedFingerprint, "MD5 has %d byte groups", len(pairs))
		}
		digest := make([]byte, 0, md5.Size)
		for _, p := range pairs {
			if len(p) != 2 || strings.ToLower(p) != p {
				return Fingerprint{}, sshwire.FormatError(sshwire.ErrMalformedFingerprint, "bad byte group %q", p)
			}
			b, err := hex.DecodeString(p)
			if err != nil {
				return Fingerprint{}, sshwire.FormatError(sshwire.ErrMalformedFingerprint, "%v", err)
			}
			digest = append(digest, b...)
		}
		return NewFingerprint(MD5, digest)

	default:
		return Fingerprint{}, sshwire.FormatError(sshwire.ErrUnknownHashAlgorithm, "%q", prefix)
	}
}

// Algorithm returns the digest algorithm.
func (f Fingerprint) Algorithm() HashAlgorithm { return f.alg }

// Digest returns a copy of the digest bytes.
func (f Fingerprint) Digest() []byte { return append([]byte(nil), f.digest...) }

// String renders "SHA256:<unpadded base64>" or "MD5:<aa:bb:...>".
func (f Fingerprint) String() string {
	switch f.alg {
	case SHA256:
		return "SHA256:" + base64.RawStdEncoding.EncodeToString(f.digest)
	case MD5:
		pairs := make([]string, len(f.digest))
		for i, b := range f.digest {
			pairs[i] = hex.EncodeToString([]byte{b})
		}
		return "MD5:" + strings.Join(pairs, ":")
	default:
		return ""
	}
}

// Equal reports whether f and o are the same fingerprint.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.alg == o.alg && string(f.digest) == string(o.digest)
}
