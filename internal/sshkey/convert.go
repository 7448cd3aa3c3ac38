/*
Copyright © 2025 Logicos Software

convert.go bridges SSH key containers and the standard library crypto key
types, and generates new keys.

Public keys round-trip through golang.org/x/crypto/ssh, which validates
points and moduli on the way in.
*/
package sshkey

import (
	"bytes"
	"crypto"
	"crypto/dsa"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"io"
	"math/big"

	"golang.org/x/crypto/ssh"

	"sshenv/internal/sshwire"
)

// DefaultRSABits is the RSA modulus size used when none is requested.
const DefaultRSABits = 3072

// MinRSABits is the smallest RSA modulus GenerateKey accepts.
const MinRSABits = 2048

// mpint encodes a non-negative integer as an SSH mpint body.
func mpint(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) > 0 && b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	return b
}

// SSHPublicKey converts k to an x/crypto/ssh public key.
func SSHPublicKey(k PublicKey) (ssh.PublicKey, error) {
	pk, err := ssh.ParsePublicKey(MarshalPublicKey(k))
	if err != nil {
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedKeyMaterial, "%s: %v", k.Type(), err)
	}
	return pk, nil
}

// NewPublicKey converts a Go public key (*rsa.PublicKey, *dsa.PublicKey,
// *ecdsa.PublicKey, ed25519.PublicKey) or an ssh.PublicKey.
func NewPublicKey(key any) (PublicKey, error) {
	pk, ok := key.(ssh.PublicKey)
	if !ok {
		var err error
		if pk, err = ssh.NewPublicKey(key); err != nil {
			return nil, sshwire.FormatError(sshwire.ErrUnsupportedKeyMaterial, "%T: %v", key, err)
		}
	}
	return ParsePublicKeyBlob(pk.Marshal())
}

// NewPrivateKey wraps a Go private key in a container with a fresh check
// integer.
func NewPrivateKey(key crypto.PrivateKey, comment string) (*PrivateKey, error) {
	return newPrivateKey(key, comment, rand.Reader)
}

func newPrivateKey(key crypto.PrivateKey, comment string, rnd io.Reader) (*PrivateKey, error) {
	if err := CheckComment(comment); err != nil {
		return nil, err
	}

	var (
		pub  PublicKey
		priv PrivateFields
		err  error
	)
	switch k := key.(type) {
	case *rsa.PrivateKey:
		if len(k.Primes) != 2 {
			return nil, sshwire.FormatError(sshwire.ErrUnsupportedKeyMaterial, "RSA key with %d primes", len(k.Primes))
		}
		if pub, err = NewPublicKey(&k.PublicKey); err != nil {
			return nil, err
		}
		p, q := k.Primes[0], k.Primes[1]
		priv = &RSAPrivateFields{
			N:    mpint(k.N),
			E:    mpint(big.NewInt(int64(k.E))),
			D:    mpint(k.D),
			Iqmp: mpint(new(big.Int).ModInverse(q, p)),
			P:    mpint(p),
			Q:    mpint(q),
		}

	case *dsa.PrivateKey:
		if pub, err = NewPublicKey(&k.PublicKey); err != nil {
			return nil, err
		}
		priv = &DSAPrivateFields{X: mpint(k.X)}

	case *ecdsa.PrivateKey:
		if pub, err = NewPublicKey(&k.PublicKey); err != nil {
			return nil, err
		}
		curve, _ := pub.Type().Curve()
		priv = &ECDSAPrivateFields{Curve: curve, D: mpint(k.D)}

	case *ed25519.PrivateKey:
		return newPrivateKey(*k, comment, rnd)

	case ed25519.PrivateKey:
		if len(k) != ed25519.PrivateKeySize {
			return nil, sshwire.LengthError(sshwire.ErrInvalidKeyLength, "ed25519 key is %d bytes", len(k))
		}
		point := []byte(k.Public().(ed25519.PublicKey))
		pub = &Ed25519PublicKey{Point: point}
		priv = &Ed25519PrivateFields{Seed: k.Seed(), Point: point}

	default:
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedKeyMaterial, "%T", key)
	}

	check, err := randomCheck(rnd)
	if err != nil {
		return nil, err
	}
	return NewPrivateKeyFromFields(pub, priv, check, comment)
}

// CryptoPrivateKey converts the container to a Go private key:
// *rsa.PrivateKey, *dsa.PrivateKey, *ecdsa.PrivateKey or ed25519.PrivateKey.
func (k *PrivateKey) CryptoPrivateKey() (crypto.PrivateKey, error) {
	sshPub, err := SSHPublicKey(k.public)
	if err != nil {
		return nil, err
	}
	cpub := sshPub.(ssh.CryptoPublicKey).CryptoPublicKey()

	switch priv := k.private.(type) {
	case *RSAPrivateFields:
		key := &rsa.PrivateKey{
			PublicKey: *cpub.(*rsa.PublicKey),
			D:         new(big.Int).SetBytes(priv.D),
			Primes:    []*big.Int{new(big.Int).SetBytes(priv.P), new(big.Int).SetBytes(priv.Q)},
		}
		if err := key.Validate(); err != nil {
			return nil, sshwire.ConsistencyError(sshwire.ErrPublicKeyMismatch, "RSA: %v", err)
		}
		key.Precompute()
		return key, nil

	case *DSAPrivateFields:
		return &dsa.PrivateKey{PublicKey: *cpub.(*dsa.PublicKey), X: new(big.Int).SetBytes(priv.X)}, nil

	case *ECDSAPrivateFields:
		return &ecdsa.PrivateKey{PublicKey: *cpub.(*ecdsa.PublicKey), D: new(big.Int).SetBytes(priv.D)}, nil

	case *Ed25519PrivateFields:
		if len(priv.Seed) != ed25519.SeedSize {
			return nil, sshwire.LengthError(sshwire.ErrInvalidKeyLength, "ed25519 seed is %d bytes", len(priv.Seed))
		}
		key := ed25519.NewKeyFromSeed(priv.Seed)
		if !bytes.Equal(key.Public().(ed25519.PublicKey), cpub.(ed25519.PublicKey)) {
			return nil, sshwire.ConsistencyError(sshwire.ErrPublicKeyMismatch, "ed25519 seed does not derive the public key")
		}
		return key, nil

	default:
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedKeyMaterial, "%T", priv)
	}
}

// Signer returns an ssh.Signer for the key.
func (k *PrivateKey) Signer() (ssh.Signer, error) {
	key, err := k.CryptoPrivateKey()
	if err != nil {
		return nil, err
	}
	s, err := ssh.NewSignerFromKey(key)
	if err != nil {
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedKeyMaterial, "%s: %v", k.Type(), err)
	}
	return s, nil
}

func ellipticCurve(c Curve) elliptic.Curve {
	switch c {
	case NISTP256:
		return elliptic.P256()
	case NISTP384:
		return elliptic.P384()
	case NISTP521:
		return elliptic.P521()
	default:
		return nil
	}
}

// GenerateKey creates a new key of type t. bits applies to RSA only; zero
// selects DefaultRSABits. A nil rnd uses crypto/rand.
func GenerateKey(t KeyType, bits int, comment string, rnd io.Reader) (*PrivateKey, error) {
	if rnd == nil {
		rnd = rand.Reader
	}
	if err := CheckComment(comment); err != nil {
		return nil, err
	}

	var key crypto.PrivateKey
	var err error
	switch t.Algorithm() {
	case AlgorithmEd25519:
		_, key, err = ed25519.GenerateKey(rnd)
	case AlgorithmECDSA:
		c, _ := t.Curve()
		key, err = ecdsa.GenerateKey(ellipticCurve(c), rnd)
	case AlgorithmRSA:
		if bits == 0 {
			bits = DefaultRSABits
		}
		if bits < MinRSABits {
			return nil, sshwire.LengthError(sshwire.ErrInvalidKeyLength, "RSA keys need at least %d bits, got %d", MinRSABits, bits)
		}
		key, err = rsa.GenerateKey(rnd, bits)
	case AlgorithmDSA:
		return nil, sshwire.FormatError(sshwire.ErrUnsupportedKeyMaterial, "DSA key generation is not supported")
	default:
		return nil, sshwire.FormatError(sshwire.ErrUnknownKeyType, "%s", t)
	}
	if err != nil {
		return nil, err
	}
	return newPrivateKey(key, comment, rnd)
}
