/*
Copyright © 2025 Logicos Software

engine_test.go contains sign/verify tests for the native and ssh-keygen
engines.
*/
package sshsig

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"sshenv/internal/sshkey"
)

type testKey struct {
	name string
	key  *sshkey.PrivateKey
}

// fixtureKeys returns the ssh-keygen generated keys in testdata, one per
// key type.
func fixtureKeys(t *testing.T) []testKey {
	t.Helper()
	var keys []testKey
	for _, name := range []string{"ed25519", "rsa", "dsa", "ecdsa"} {
		k, err := sshkey.ParsePrivateKey(readFixture(t, "id_"+name))
		if err != nil {
			t.Fatalf("ParsePrivateKey(id_%s) failed: %v", name, err)
		}
		keys = append(keys, testKey{"fixture " + name, k})
	}
	return keys
}

func testKeys(t *testing.T) []testKey {
	t.Helper()
	keys := fixtureKeys(t)

	types := []struct {
		name    string
		keyType sshkey.KeyType
		bits    int
	}{
		{"ed25519", sshkey.TypeEd25519, 0},
		{"nistp256", sshkey.ECDSAType(sshkey.NISTP256), 0},
		{"nistp384", sshkey.ECDSAType(sshkey.NISTP384), 0},
		{"nistp521", sshkey.ECDSAType(sshkey.NISTP521), 0},
	}
	if !testing.Short() {
		types = append(types, struct {
			name    string
			keyType sshkey.KeyType
			bits    int
		}{"rsa", sshkey.TypeRSA, 2048})
	}
	for _, tt := range types {
		k, err := sshkey.GenerateKey(tt.keyType, tt.bits, "test@sshenv", nil)
		if err != nil {
			t.Fatalf("GenerateKey(%s) failed: %v", tt.name, err)
		}
		keys = append(keys, testKey{tt.name, k})
	}
	return keys
}

func TestNativeSignVerify(t *testing.T) {
	ctx := context.Background()
	message := []byte("hello")
	other, err := sshkey.GenerateKey(sshkey.TypeEd25519, 0, "", nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, tk := range testKeys(t) {
		t.Run(tk.name, func(t *testing.T) {
			var engine Native
			pub := tk.key.PublicKeyLine()

			sig, err := engine.Sign(ctx, message, tk.key, "")
			if err != nil {
				t.Fatalf("Sign failed: %v", err)
			}
			if sig.Namespace != DefaultNamespace || sig.HashAlgorithm != DefaultHashAlgorithm {
				t.Errorf("Namespace/HashAlgorithm = %q/%q", sig.Namespace, sig.HashAlgorithm)
			}
			if tk.key.Type() == sshkey.TypeRSA && sig.Algorithm != "rsa-sha2-512" {
				t.Errorf("RSA Algorithm = %q, want rsa-sha2-512", sig.Algorithm)
			}

			parsed, err := Parse(sig.PEM())
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}

			if res := engine.Verify(ctx, message, parsed, pub, DefaultNamespace); !res.OK() {
				t.Errorf("Verify = %v (%v), want verified", res.Status, res.Err)
			}

			res := engine.Verify(ctx, []byte("wrong_message"), parsed, pub, "")
			if res.Status != StatusRejected || !errors.Is(res.Err, ErrBadSignature) {
				t.Errorf("wrong message: %v (%v)", res.Status, res.Err)
			}

			res = engine.Verify(ctx, message, parsed, pub, "git")
			if res.Status != StatusRejected || !errors.Is(res.Err, ErrNamespaceMismatch) {
				t.Errorf("wrong namespace: %v (%v)", res.Status, res.Err)
			}

			res = engine.Verify(ctx, message, parsed, other.PublicKeyLine(), "")
			if res.Status != StatusRejected || !errors.Is(res.Err, ErrKeyMismatch) {
				t.Errorf("wrong key: %v (%v)", res.Status, res.Err)
			}
		})
	}
}

func TestNativeSHA256AndNamespace(t *testing.T) {
	ctx := context.Background()
	key, err := sshkey.GenerateKey(sshkey.ECDSAType(sshkey.NISTP256), 0, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	engine := Native{HashAlgorithm: HashSHA256}
	sig, err := engine.Sign(ctx, []byte("m"), key, "envelope")
	if err != nil {
		t.Fatal(err)
	}
	if sig.HashAlgorithm != "sha256" || sig.Namespace != "envelope" {
		t.Errorf("HashAlgorithm/Namespace = %q/%q", sig.HashAlgorithm, sig.Namespace)
	}
	if !Verify(ctx, []byte("m"), sig, key.PublicKeyLine(), "envelope") {
		t.Error("Verify = false")
	}
	if Verify(ctx, []byte("m"), sig, key.PublicKeyLine(), "") {
		t.Error("Verify under the default namespace should fail")
	}
}

func TestTamperedSignature(t *testing.T) {
	ctx := context.Background()
	key, err := sshkey.ParsePrivateKey(readFixture(t, "id_ed25519"))
	if err != nil {
		t.Fatal(err)
	}
	sig, err := Sign(ctx, []byte("hello"), key, "")
	if err != nil {
		t.Fatal(err)
	}
	sig.Blob[0] ^= 0xff
	if Verify(ctx, []byte("hello"), sig, key.PublicKeyLine(), "") {
		t.Error("tampered signature verified")
	}

	sig.HashAlgorithm = "md5"
	if res := (Native{}).Verify(ctx, []byte("hello"), sig, key.PublicKeyLine(), ""); res.Status != StatusError {
		t.Errorf("unknown hash: %v, want error", res.Status)
	}
}

func TestCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	key, err := sshkey.ParsePrivateKey(readFixture(t, "id_ed25519"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Sign(ctx, []byte("m"), key, "")
	if !errors.Is(err, ErrSigningFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("Sign error = %v, want ErrSigningFailed wrapping context.Canceled", err)
	}

	sig, err := Sign(context.Background(), []byte("m"), key, "")
	if err != nil {
		t.Fatal(err)
	}
	res := (Native{}).Verify(ctx, []byte("m"), sig, key.PublicKeyLine(), "")
	if res.Status != StatusError || !errors.Is(res.Err, context.Canceled) {
		t.Errorf("Verify = %v (%v), want error", res.Status, res.Err)
	}
}

func TestSigningError(t *testing.T) {
	cause := errors.New("boom")
	err := signingFailed(cause)
	if !errors.Is(err, ErrSigningFailed) {
		t.Error("errors.Is(err, ErrSigningFailed) = false")
	}
	if !errors.Is(err, cause) {
		t.Error("cause is not reachable")
	}
	if err.Error() != "signing failed: boom" {
		t.Errorf("Error() = %q", err.Error())
	}
	if signingFailed(err) != err {
		t.Error("signingFailed wrapped a SigningError twice")
	}
}

func TestStatusString(t *testing.T) {
	for s, want := range map[Status]string{StatusVerified: "verified", StatusRejected: "rejected", StatusError: "error", 0: "unknown"} {
		if s.String() != want {
			t.Errorf("Status(%d).String() = %q, want %q", s, s.String(), want)
		}
	}
}

func requireSSHKeygen(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath(DefaultKeygenProgram); err != nil {
		t.Skip("ssh-keygen not found in PATH")
	}
}

func TestKeygenInterop(t *testing.T) {
	requireSSHKeygen(t)
	ctx := context.Background()
	message := []byte("hello")
	keygen := Keygen{}
	other, err := sshkey.GenerateKey(sshkey.TypeEd25519, 0, "other@sshenv", nil)
	if err != nil {
		t.Fatal(err)
	}

	for _, tk := range fixtureKeys(t) {
		t.Run(tk.name, func(t *testing.T) {
			key := tk.key
			pub := key.PublicKeyLine()

			sig, err := keygen.Sign(ctx, message, key, "")
			if err != nil {
				if key.Type() == sshkey.TypeDSA {
					t.Skipf("ssh-keygen cannot sign with DSA keys: %v", err)
				}
				t.Fatalf("keygen Sign failed: %v", err)
			}
			if res := (Native{}).Verify(ctx, message, sig, pub, ""); !res.OK() {
				t.Errorf("native Verify of keygen signature = %v (%v)", res.Status, res.Err)
			}

			native, err := Sign(ctx, message, key, "")
			if err != nil {
				t.Fatal(err)
			}
			if key.Type() == sshkey.TypeEd25519 && !native.Equal(sig) {
				t.Error("ed25519 signatures from both engines should be identical")
			}
			if res := keygen.Verify(ctx, message, native, pub, ""); !res.OK() {
				t.Errorf("keygen Verify of native signature = %v (%v)", res.Status, res.Err)
			}
			if res := keygen.Verify(ctx, []byte("wrong_message"), native, pub, ""); res.Status != StatusRejected {
				t.Errorf("wrong message: %v, want rejected", res.Status)
			}
			if res := keygen.Verify(ctx, message, native, pub, "git"); res.Status != StatusRejected {
				t.Errorf("wrong namespace: %v, want rejected", res.Status)
			}
			if res := keygen.Verify(ctx, message, native, other.PublicKeyLine(), ""); res.Status != StatusRejected {
				t.Errorf("wrong key: %v, want rejected", res.Status)
			}
		})
	}
}

func TestKeygenVerifyMultiWordComment(t *testing.T) {
	requireSSHKeygen(t)
	ctx := context.Background()

	key, err := sshkey.ParsePrivateKey(readFixture(t, "id_ed25519"))
	if err != nil {
		t.Fatal(err)
	}
	pub, err := sshkey.ParsePublicKeyLine(key.PublicKeyLine().String() + " laptop key")
	if err != nil {
		t.Fatal(err)
	}
	sig, err := Sign(ctx, []byte("hello"), key, "")
	if err != nil {
		t.Fatal(err)
	}

	if res := (Native{}).Verify(ctx, []byte("hello"), sig, pub, ""); !res.OK() {
		t.Errorf("native Verify = %v (%v)", res.Status, res.Err)
	}
	if res := (Keygen{}).Verify(ctx, []byte("hello"), sig, pub, ""); !res.OK() {
		t.Errorf("keygen Verify = %v (%v)", res.Status, res.Err)
	}
}

func TestKeygenMissingProgram(t *testing.T) {
	ctx := context.Background()
	key, err := sshkey.ParsePrivateKey(readFixture(t, "id_ed25519"))
	if err != nil {
		t.Fatal(err)
	}
	keygen := Keygen{Program: "/nonexistent/ssh-keygen"}

	if _, err := keygen.Sign(ctx, []byte("m"), key, ""); !errors.Is(err, ErrSigningFailed) {
		t.Errorf("Sign error = %v, want ErrSigningFailed", err)
	}

	sig, err := Sign(ctx, []byte("m"), key, "")
	if err != nil {
		t.Fatal(err)
	}
	if res := keygen.Verify(ctx, []byte("m"), sig, key.PublicKeyLine(), ""); res.Status != StatusError {
		t.Errorf("Verify = %v, want error", res.Status)
	}
}
