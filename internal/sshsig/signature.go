/*
Copyright © 2025 Logicos Software

Package sshsig implements OpenSSH detached signatures ("SSH SIGNATURE",
the format written by "ssh-keygen -Y sign") and the sign/verify protocol
around them.

Body layout after base64 decoding:

	byte[6] "SSHSIG"
	uint32  version (1)
	string  public key blob
	string  namespace
	string  reserved (empty)
	string  hash algorithm ("sha256" or "sha512")
	string  signature:
	            string signature algorithm
	            string signature bytes

The signature covers:

	byte[6] "SSHSIG"
	string  namespace
	string  reserved (empty)
	string  hash algorithm
	string  H(message)
*/
package sshsig

import (
	"crypto/sha256"
	"crypto/sha512"

	"sshenv/internal/armor"
	"sshenv/internal/sshkey"
	"sshenv/internal/sshwire"
)

const (
	magic   = "SSHSIG"
	version = 1
)

// Hash algorithm names.
const (
	HashSHA256 = "sha256"
	HashSHA512 = "sha512"
)

// DefaultHashAlgorithm is the message digest used when signing.
const DefaultHashAlgorithm = HashSHA512

// DefaultNamespace is used when no namespace is given.
const DefaultNamespace = "file"

// Signature is a parsed SSH signature.
type Signature struct {
	// PublicKey is the signer's key.
	PublicKey sshkey.PublicKey
	// Namespace scopes what the signature asserts.
	Namespace string
	// HashAlgorithm names the message digest.
	HashAlgorithm string
	// Algorithm is the inner signature algorithm, e.g. "ssh-ed25519" or
	// "rsa-sha2-512".
	Algorithm string
	// Blob holds the raw signature bytes.
	Blob []byte
}

// Parse parses an armored SSH SIGNATURE.
func Parse(text string) (*Signature, error) {
	data, err := armor.DecodeLabel(text, armor.LabelSignature)
	if err != nil {
		return nil, err
	}
	return ParseBody(data)
}

// ParseBody parses the decoded body of an SSH signature.
func ParseBody(data []byte) (*Signature, error) {
	r := sshwire.NewReader(data)

	m, err := r.Read(len(magic))
	if err != nil {
		return nil, err
	}
	if string(m) != magic {
		return nil, sshwire.FormatError(sshwire.ErrMagicMismatch, "got %q", m)
	}

	v, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if v != version {
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedVersion, "signature version %d", v)
	}

	pubBlob, err := r.ReadChunk()
	if err != nil {
		return nil, err
	}
	pub, err := sshkey.ParsePublicKeyBlob(pubBlob)
	if err != nil {
		return nil, err
	}

	namespace, err := r.ReadLengthPrefixedString()
	if err != nil {
		return nil, err
	}
	empty, err := r.ReadEmptyChunk()
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, sshwire.FormatError(sshwire.ErrReservedNotEmpty, "signature reserved field")
	}
	hashAlg, err := r.ReadLengthPrefixedString()
	if err != nil {
		return nil, err
	}

	sigBlob, err := r.ReadChunk()
	if err != nil {
		return nil, err
	}
	if err := r.ExpectEnd("signature"); err != nil {
		return nil, err
	}

	sr := sshwire.NewReader(sigBlob)
	alg, err := sr.ReadLengthPrefixedString()
	if err != nil {
		return nil, err
	}
	if !algorithmMatches(pub.Type(), alg) {
		return nil, sshwire.ConsistencyError(sshwire.ErrSignatureKeyTypeMismatch, "%s signature from %s key", alg, pub.Type())
	}
	raw, err := sr.ReadChunk()
	if err != nil {
		return nil, err
	}
	if err := sr.ExpectEnd("signature bytes"); err != nil {
		return nil, err
	}

	return &Signature{
		PublicKey:     pub,
		Namespace:     namespace,
		HashAlgorithm: hashAlg,
		Algorithm:     alg,
		Blob:          raw,
	}, nil
}

// algorithmMatches reports whether a signature algorithm belongs to keys
// of type t. RSA keys sign with SHA-1 or SHA-2 variants; every other type
// uses its key type string.
func algorithmMatches(t sshkey.KeyType, alg string) bool {
	if t.Algorithm() == sshkey.AlgorithmRSA {
		switch alg {
		case "ssh-rsa", "rsa-sha2-256", "rsa-sha2-512":
			return true
		}
		return false
	}
	return alg == t.String()
}

// algorithm returns the inner algorithm, defaulting to the key type.
func (s *Signature) algorithm() string {
	if s.Algorithm == "" {
		return s.PublicKey.Type().String()
	}
	return s.Algorithm
}

// Marshal returns the decoded signature body.
func (s *Signature) Marshal() []byte {
	inner := sshwire.NewWriter()
	inner.WriteLengthPrefixedString(s.algorithm())
	inner.WriteChunk(s.Blob)

	w := sshwire.NewWriter()
	w.Write([]byte(magic))
	w.WriteUint32(version)
	w.WriteChunk(sshkey.MarshalPublicKey(s.PublicKey))
	w.WriteLengthPrefixedString(s.Namespace)
	w.WriteEmptyChunk()
	w.WriteLengthPrefixedString(s.HashAlgorithm)
	w.WriteChunk(inner.Bytes())
	return w.Bytes()
}

// PEM returns the armored signature, wrapped as ssh-keygen does.
func (s *Signature) PEM() string {
	return armor.EncodeWidth(armor.LabelSignature, s.Marshal(), armor.OpenSSHLineWidth)
}

// String returns the PEM text.
func (s *Signature) String() string {
	return s.PEM()
}

// Equal reports whether s and o are the same signature.
func (s *Signature) Equal(o *Signature) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Namespace == o.Namespace &&
		s.HashAlgorithm == o.HashAlgorithm &&
		s.algorithm() == o.algorithm() &&
		string(s.Blob) == string(o.Blob) &&
		sshkey.PublicKeysEqual(s.PublicKey, o.PublicKey)
}

// hashMessage digests message with the named algorithm.
func hashMessage(alg string, message []byte) ([]byte, error) {
	switch alg {
	case HashSHA256:
		sum := sha256.Sum256(message)
		return sum[:], nil
	case HashSHA512:
		sum := sha512.Sum512(message)
		return sum[:], nil
	default:
		return nil, sshwire.FormatError(sshwire.ErrUnknownHashAlgorithm, "%q", alg)
	}
}

// SignedData returns the bytes a signature over message covers.
func SignedData(namespace, hashAlg string, message []byte) ([]byte, error) {
	digest, err := hashMessage(hashAlg, message)
	if err != nil {
		return nil, err
	}
	w := sshwire.NewWriter()
	w.Write([]byte(magic))
	w.WriteLengthPrefixedString(namespace)
	w.WriteEmptyChunk()
	w.WriteLengthPrefixedString(hashAlg)
	w.WriteChunk(digest)
	return w.Bytes(), nil
}
