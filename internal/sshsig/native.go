/*
Copyright © 2025 Logicos Software

native.go implements the sign/verify protocol in process with
golang.org/x/crypto/ssh. RSA keys sign with rsa-sha2-512, as ssh-keygen
does.
*/
package sshsig

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"golang.org/x/crypto/ssh"

	"sshenv/internal/sshkey"
)

// Native signs and verifies without external programs.
type Native struct {
	// Rand is the entropy source for signing; nil means crypto/rand.
	Rand io.Reader
	// HashAlgorithm is the message digest for new signatures; empty means
	// DefaultHashAlgorithm.
	HashAlgorithm string
}

func (n Native) random() io.Reader {
	if n.Rand == nil {
		return rand.Reader
	}
	return n.Rand
}

func (n Native) hashAlgorithm() string {
	if n.HashAlgorithm == "" {
		return DefaultHashAlgorithm
	}
	return n.HashAlgorithm
}

// Sign implements Engine.
func (n Native) Sign(ctx context.Context, message []byte, key *sshkey.PrivateKey, namespace string) (*Signature, error) {
	signer, err := key.Signer()
	if err != nil {
		return nil, signingFailed(err)
	}
	return n.SignWith(ctx, message, signer, namespace)
}

// SignWith signs message with any ssh.Signer, including hardware-backed
// keys wrapped with ssh.NewSignerFromSigner.
func (n Native) SignWith(ctx context.Context, message []byte, signer ssh.Signer, namespace string) (*Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, signingFailed(err)
	}
	namespace = namespaceOrDefault(namespace)

	pub, err := sshkey.ParsePublicKeyBlob(signer.PublicKey().Marshal())
	if err != nil {
		return nil, signingFailed(err)
	}

	hashAlg := n.hashAlgorithm()
	data, err := SignedData(namespace, hashAlg, message)
	if err != nil {
		return nil, signingFailed(err)
	}

	var sig *ssh.Signature
	if pub.Type().Algorithm() == sshkey.AlgorithmRSA {
		as, ok := signer.(ssh.AlgorithmSigner)
		if !ok {
			return nil, signingFailed(fmt.Errorf("RSA signer does not support %s", ssh.KeyAlgoRSASHA512))
		}
		sig, err = as.SignWithAlgorithm(n.random(), data, ssh.KeyAlgoRSASHA512)
	} else {
		sig, err = signer.Sign(n.random(), data)
	}
	if err != nil {
		return nil, signingFailed(err)
	}

	return &Signature{
		PublicKey:     pub,
		Namespace:     namespace,
		HashAlgorithm: hashAlg,
		Algorithm:     sig.Format,
		Blob:          sig.Blob,
	}, nil
}

// Verify implements Engine.
func (n Native) Verify(ctx context.Context, message []byte, sig *Signature, key *sshkey.PublicKeyLine, namespace string) Result {
	if err := ctx.Err(); err != nil {
		return verificationError(err)
	}
	namespace = namespaceOrDefault(namespace)

	if sig.Namespace != namespace {
		return rejected(fmt.Errorf("%w: signed for %q, expected %q", ErrNamespaceMismatch, sig.Namespace, namespace))
	}
	if !sshkey.PublicKeysEqual(sig.PublicKey, key.Key) {
		return rejected(ErrKeyMismatch)
	}
	if sig.algorithm() == ssh.KeyAlgoRSA {
		return rejected(fmt.Errorf("%w: RSA-SHA1 signatures are not accepted", ErrBadSignature))
	}

	data, err := SignedData(sig.Namespace, sig.HashAlgorithm, message)
	if err != nil {
		return verificationError(err)
	}
	pub, err := sshkey.SSHPublicKey(key.Key)
	if err != nil {
		return verificationError(err)
	}
	if err := pub.Verify(data, &ssh.Signature{Format: sig.algorithm(), Blob: sig.Blob}); err != nil {
		return rejected(fmt.Errorf("%w: %v", ErrBadSignature, err))
	}
	return verified()
}
