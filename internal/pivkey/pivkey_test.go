/*
Copyright © 2025 Logicos Software

pivkey_test.go contains unit tests for slot parsing and the conversion of
token keys. Nothing here needs a YubiKey.
*/
package pivkey

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/go-piv/piv-go/v2/piv"

	"sshenv/internal/sshkey"
	"sshenv/internal/sshsig"
)

func TestParseSlot(t *testing.T) {
	tests := []struct {
		input string
		want  piv.Slot
	}{
		{"9a", piv.SlotAuthentication},
		{"auth", piv.SlotAuthentication},
		{"9c", piv.SlotSignature},
		{" SIG ", piv.SlotSignature},
		{"signature", piv.SlotSignature},
		{"9d", piv.SlotKeyManagement},
		{"keymgmt", piv.SlotKeyManagement},
		{"9e", piv.SlotCardAuthentication},
		{"cardauth", piv.SlotCardAuthentication},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseSlot(tt.input)
			if err != nil {
				t.Fatalf("ParseSlot(%q) failed: %v", tt.input, err)
			}
			if got.Key != tt.want.Key {
				t.Errorf("ParseSlot(%q) = %x, want %x", tt.input, got.Key, tt.want.Key)
			}
		})
	}

	for _, bad := range []string{"", "9b", "82", "slot"} {
		if _, err := ParseSlot(bad); !errors.Is(err, ErrUnsupportedSlot) {
			t.Errorf("ParseSlot(%q) error = %v, want ErrUnsupportedSlot", bad, err)
		}
	}
}

func TestSlotName(t *testing.T) {
	for _, name := range []string{"9a", "9c", "9d", "9e"} {
		slot, err := ParseSlot(name)
		if err != nil {
			t.Fatal(err)
		}
		if got := SlotName(slot); got != name {
			t.Errorf("SlotName = %q, want %q", got, name)
		}
	}
}

// selfSignedCert returns a certificate for pub like the ones stored in a
// provisioned slot.
func selfSignedCert(t *testing.T, priv *ecdsa.PrivateKey) *x509.Certificate {
	t.Helper()
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "sshenv 9C"},
		NotBefore:    time.Now().Add(-5 * time.Minute),
		NotAfter:     time.Now().AddDate(1, 0, 0),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &priv.PublicKey, priv)
	if err != nil {
		t.Fatal(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatal(err)
	}
	return cert
}

func TestPublicKeyLineFromCertificate(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	cert := selfSignedCert(t, priv)

	line, err := publicKeyLine(cert.PublicKey, "yubikey")
	if err != nil {
		t.Fatalf("publicKeyLine failed: %v", err)
	}
	if line.Type() != sshkey.ECDSAType(sshkey.NISTP256) {
		t.Errorf("Type = %s", line.Type())
	}
	if line.Comment != "yubikey" {
		t.Errorf("Comment = %q", line.Comment)
	}

	reparsed, err := sshkey.ParsePublicKeyLine(line.String())
	if err != nil {
		t.Fatalf("ParsePublicKeyLine failed: %v", err)
	}
	if !reparsed.Equal(line) {
		t.Error("line does not survive a round trip")
	}
}

func TestSignerFeedsNativeEngine(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	signer, err := signerFrom(priv)
	if err != nil {
		t.Fatalf("signerFrom failed: %v", err)
	}
	line, err := publicKeyLine(&priv.PublicKey, "")
	if err != nil {
		t.Fatal(err)
	}

	ctx := context.Background()
	sig, err := sshsig.Native{}.SignWith(ctx, []byte("hello"), signer, "")
	if err != nil {
		t.Fatalf("SignWith failed: %v", err)
	}
	if res := (sshsig.Native{}).Verify(ctx, []byte("hello"), sig, line, ""); !res.OK() {
		t.Errorf("Verify = %v (%v)", res.Status, res.Err)
	}
}

func TestSignerFromNonSigner(t *testing.T) {
	if _, err := signerFrom(struct{}{}); err == nil {
		t.Error("signerFrom accepted a key that cannot sign")
	}
}
