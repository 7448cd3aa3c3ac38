/*
Copyright © 2025 Logicos Software

container.go implements the unencrypted "openssh-key-v1" private key
container.

Body layout after base64 decoding:

	"openssh-key-v1\0"
	string  cipher name ("none")
	string  kdf name ("none")
	string  kdf options (empty)
	uint32  number of keys (1)
	string  public key blob
	string  private blob:
	            uint32 check, uint32 check
	            private section
	            string comment
	            padding 1, 2, 3, ... to a multiple of 8
*/
package sshkey

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"sshenv/internal/armor"
	"sshenv/internal/sshwire"
)

const (
	privateKeyMagic = "openssh-key-v1"
	cipherNone      = "none"
	kdfNone         = "none"
)

// PrivateKey is a parsed OpenSSH private key container. The comment is the
// only attribute that may change after construction.
type PrivateKey struct {
	public  PublicKey
	private PrivateFields
	check   uint32
	comment string
}

// NewPrivateKeyFromFields assembles a container from its parts. The public
// and private halves must be of the same key type.
func NewPrivateKeyFromFields(pub PublicKey, priv PrivateFields, check uint32, comment string) (*PrivateKey, error) {
	if pub == nil || priv == nil {
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedKeyMaterial, "missing public or private fields")
	}
	if pub.Type() != priv.Type() {
		return nil, sshwire.FormatError(sshwire.ErrKeyTypeMismatch, "public %s, private %s", pub.Type(), priv.Type())
	}
	return &PrivateKey{public: pub, private: priv, check: check, comment: comment}, nil
}

// ParsePrivateKey parses an armored OPENSSH PRIVATE KEY.
func ParsePrivateKey(text string) (*PrivateKey, error) {
	data, err := armor.DecodeLabel(text, armor.LabelPrivateKey)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKeyBody(data)
}

// ParsePrivateKeyBody parses the decoded body of a private key container.
func ParsePrivateKeyBody(data []byte) (*PrivateKey, error) {
	r := sshwire.NewReader(data)

	magic, err := r.ReadNullTerminatedString()
	if err != nil {
		return nil, err
	}
	if magic != privateKeyMagic {
		return nil, sshwire.FormatError(sshwire.ErrMagicMismatch, "got %q", magic)
	}

	cipher, err := r.ReadLengthPrefixedString()
	if err != nil {
		return nil, err
	}
	if cipher != cipherNone {
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedCipher, "%q (encrypted keys are not supported)", cipher)
	}

	kdf, err := r.ReadLengthPrefixedString()
	if err != nil {
		return nil, err
	}
	if kdf != kdfNone {
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedKdf, "%q", kdf)
	}
	empty, err := r.ReadEmptyChunk()
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedKdf, "kdf options must be empty")
	}

	count, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if count != 1 {
		return nil, sshwire.FormatError(sshwire.ErrMultiKeyUnsupported, "container holds %d keys", count)
	}

	pubBlob, err := r.ReadChunk()
	if err != nil {
		return nil, err
	}
	pub, err := ParsePublicKeyBlob(pubBlob)
	if err != nil {
		return nil, err
	}

	privBlob, err := r.ReadChunk()
	if err != nil {
		return nil, err
	}
	if err := r.ExpectEnd("private blob"); err != nil {
		return nil, err
	}

	return parsePrivateBlob(privBlob, pub)
}

// parsePrivateBlob parses the private blob. Padding is measured from the
// start of the blob.
func parsePrivateBlob(blob []byte, pub PublicKey) (*PrivateKey, error) {
	r := sshwire.NewReader(blob)

	check1, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	check2, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	if check1 != check2 {
		return nil, sshwire.ConsistencyError(sshwire.ErrCheckMismatch, "%08x != %08x", check1, check2)
	}

	priv, err := readPrivateFields(r, pub)
	if err != nil {
		return nil, err
	}

	var comment string
	if r.Remaining() >= 4 {
		if comment, err = r.ReadLengthPrefixedString(); err != nil {
			return nil, err
		}
	}

	if err := r.ExpectPadding(); err != nil {
		return nil, err
	}
	if err := r.ExpectEnd("padding"); err != nil {
		return nil, err
	}

	return &PrivateKey{public: pub, private: priv, check: check1, comment: comment}, nil
}

// Public returns the public half.
func (k *PrivateKey) Public() PublicKey { return k.public }

// Private returns the secret fields.
func (k *PrivateKey) Private() PrivateFields { return k.private }

// Type returns the key type.
func (k *PrivateKey) Type() KeyType { return k.public.Type() }

// Check returns the check integer.
func (k *PrivateKey) Check() uint32 { return k.check }

// Comment returns the key comment, possibly empty.
func (k *PrivateKey) Comment() string { return k.comment }

// SetComment replaces the comment. Comments may not contain whitespace.
func (k *PrivateKey) SetComment(comment string) error {
	if err := CheckComment(comment); err != nil {
		return err
	}
	k.comment = comment
	return nil
}

// Marshal returns the decoded container body.
func (k *PrivateKey) Marshal() []byte {
	priv := sshwire.NewWriter()
	priv.WriteUint32(k.check)
	priv.WriteUint32(k.check)
	writePrivateFields(priv, k.public, k.private)
	priv.WriteLengthPrefixedString(k.comment)
	priv.WritePadding()

	w := sshwire.NewWriter()
	w.WriteNullTerminatedString(privateKeyMagic)
	w.WriteLengthPrefixedString(cipherNone)
	w.WriteLengthPrefixedString(kdfNone)
	w.WriteEmptyChunk()
	w.WriteUint32(1)
	w.WriteChunk(MarshalPublicKey(k.public))
	w.WriteChunk(priv.Bytes())
	return w.Bytes()
}

// PEM returns the armored container, wrapped as ssh-keygen does.
func (k *PrivateKey) PEM() string {
	return armor.EncodeWidth(armor.LabelPrivateKey, k.Marshal(), armor.OpenSSHLineWidth)
}

// String returns the PEM text.
func (k *PrivateKey) String() string {
	return k.PEM()
}

// Equal reports whether k and o hold identical fields.
func (k *PrivateKey) Equal(o *PrivateKey) bool {
	if k == nil || o == nil {
		return k == o
	}
	if k.check != o.check || k.comment != o.comment || !PublicKeysEqual(k.public, o.public) {
		return false
	}
	return chunksEqual(k.private.Chunks(), o.private.Chunks())
}

// PublicKeyLine derives the public key line, carrying the comment across.
func (k *PrivateKey) PublicKeyLine() *PublicKeyLine {
	return &PublicKeyLine{Key: k.public, Comment: k.comment}
}

// randomCheck draws a check integer from rand.
func randomCheck(rnd io.Reader) (uint32, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	var b [4]byte
	if _, err := io.ReadFull(rnd, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
