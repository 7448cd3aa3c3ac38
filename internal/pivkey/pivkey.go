/*
Copyright © 2025 Logicos Software

pivkey.go exposes keys held in a YubiKey PIV slot as SSH keys.

The private key never leaves the token. The public key is read from the
slot certificate, falling back to an attestation certificate when the slot
has none, and signing goes through the token with a PIN prompt when the
slot's PIN policy asks for one.
*/
package pivkey

import (
	"crypto"
	"crypto/x509"
	"errors"
	"fmt"
	"strings"

	"github.com/go-piv/piv-go/v2/piv"
	"golang.org/x/crypto/ssh"

	"sshenv/internal/sshkey"
)

var (
	// ErrNoToken is returned when no YubiKey reader can be opened.
	ErrNoToken = errors.New("no yubikey reader found")
	// ErrUnsupportedSlot is returned for slot names ParseSlot does not know.
	ErrUnsupportedSlot = errors.New("unsupported slot")
)

// DefaultSlot is the slot used when none is given.
const DefaultSlot = "9c"

// Token is an open YubiKey.
type Token struct {
	yk   *piv.YubiKey
	card string
}

// Open connects to a YubiKey. If reader is non-empty that reader is opened,
// otherwise the first reader with "yubikey" in its name.
func Open(reader string) (*Token, error) {
	if reader != "" {
		yk, err := piv.Open(reader)
		if err != nil {
			return nil, fmt.Errorf("open %q: %w", reader, err)
		}
		return &Token{yk: yk, card: reader}, nil
	}

	cards, err := piv.Cards()
	if err != nil {
		return nil, err
	}
	for _, c := range cards {
		if !strings.Contains(strings.ToLower(c), "yubikey") {
			continue
		}
		yk, err := piv.Open(c)
		if err != nil {
			continue
		}
		return &Token{yk: yk, card: c}, nil
	}
	return nil, ErrNoToken
}

// Card returns the name of the reader the token was opened on.
func (t *Token) Card() string { return t.card }

// Close releases the connection.
func (t *Token) Close() error {
	return t.yk.Close()
}

// certificate returns the slot certificate, or an attestation of the slot
// key when no certificate is stored.
func (t *Token) certificate(slot piv.Slot) (*x509.Certificate, error) {
	cert, err := t.yk.Certificate(slot)
	if err == nil {
		return cert, nil
	}
	cert, aerr := t.yk.Attest(slot)
	if aerr != nil {
		return nil, fmt.Errorf("slot %s: no certificate (%v) and attestation failed: %w", SlotName(slot), err, aerr)
	}
	return cert, nil
}

// PublicKey returns the public key of the key in slot.
func (t *Token) PublicKey(slot piv.Slot) (crypto.PublicKey, error) {
	cert, err := t.certificate(slot)
	if err != nil {
		return nil, err
	}
	return cert.PublicKey, nil
}

// PublicKeyLine returns the slot key as an SSH public key line.
func (t *Token) PublicKeyLine(slot piv.Slot, comment string) (*sshkey.PublicKeyLine, error) {
	pub, err := t.PublicKey(slot)
	if err != nil {
		return nil, err
	}
	return publicKeyLine(pub, comment)
}

// Signer returns an SSH signer backed by the key in slot. prompt is called
// for the PIN only when the token needs it.
func (t *Token) Signer(slot piv.Slot, prompt func() (string, error)) (ssh.Signer, error) {
	pub, err := t.PublicKey(slot)
	if err != nil {
		return nil, err
	}
	priv, err := t.yk.PrivateKey(slot, pub, piv.KeyAuth{PINPrompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("slot %s: %w", SlotName(slot), err)
	}
	return signerFrom(priv)
}

func publicKeyLine(pub crypto.PublicKey, comment string) (*sshkey.PublicKeyLine, error) {
	key, err := sshkey.NewPublicKey(pub)
	if err != nil {
		return nil, err
	}
	return &sshkey.PublicKeyLine{Key: key, Comment: comment}, nil
}

func signerFrom(priv crypto.PrivateKey) (ssh.Signer, error) {
	cs, ok := priv.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("token key %T cannot sign", priv)
	}
	return ssh.NewSignerFromSigner(cs)
}

// ParseSlot converts a slot id or name to a piv.Slot.
//
// Supported slots:
//   - 9a / auth / authentication: PIV Authentication
//   - 9c / sig / signature: Digital Signature
//   - 9d / km / keymgmt / keymanagement: Key Management
//   - 9e / cardauth / cardauthentication: Card Authentication
func ParseSlot(s string) (piv.Slot, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "9a", "auth", "authentication":
		return piv.SlotAuthentication, nil
	case "9c", "sig", "signature":
		return piv.SlotSignature, nil
	case "9d", "km", "keymgmt", "keymanagement":
		return piv.SlotKeyManagement, nil
	case "9e", "cardauth", "cardauthentication":
		return piv.SlotCardAuthentication, nil
	default:
		return piv.Slot{}, fmt.Errorf("%w %q (use 9a, 9c, 9d, or 9e)", ErrUnsupportedSlot, s)
	}
}

// SlotName returns the hex id of slot, e.g. "9c".
func SlotName(slot piv.Slot) string {
	return fmt.Sprintf("%02x", slot.Key)
}
