/*
Copyright © 2025 Logicos Software

keytype_test.go contains unit tests for the key type model.
*/
package sshkey

import (
	"errors"
	"testing"

	"sshenv/internal/sshwire"
)

func TestParseKeyType(t *testing.T) {
	tests := []struct {
		in      string
		want    KeyType
		size    int
		hash    string
		isECDSA bool
	}{
		{"ssh-rsa", TypeRSA, 0, "RSA", false},
		{"ssh-dss", TypeDSA, 0, "DSA", false},
		{"ssh-ed25519", TypeEd25519, 0, "ED25519", false},
		{"ecdsa-sha2-nistp256", ECDSAType(NISTP256), 256, "ECDSA", true},
		{"ecdsa-sha2-nistp384", ECDSAType(NISTP384), 384, "ECDSA", true},
		{"ecdsa-sha2-nistp521", ECDSAType(NISTP521), 521, "ECDSA", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKeyType(tt.in)
			if err != nil {
				t.Fatalf("ParseKeyType(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseKeyType(%q) = %v, want %v", tt.in, got, tt.want)
			}
			if got.String() != tt.in {
				t.Errorf("String() = %q, want %q", got.String(), tt.in)
			}
			if !got.IsValid() {
				t.Error("IsValid() = false")
			}
			if got.HashName() != tt.hash {
				t.Errorf("HashName() = %q, want %q", got.HashName(), tt.hash)
			}
			c, ok := got.Curve()
			if ok != tt.isECDSA {
				t.Fatalf("Curve() ok = %v, want %v", ok, tt.isECDSA)
			}
			if ok && c.KeySize() != tt.size {
				t.Errorf("KeySize() = %d, want %d", c.KeySize(), tt.size)
			}
		})
	}
}

func TestParseKeyTypeErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"ssh-foo", sshwire.ErrUnknownKeyType},
		{"", sshwire.ErrUnknownKeyType},
		{"SSH-RSA", sshwire.ErrUnknownKeyType},
		{"ecdsa-sha2-nistp999", sshwire.ErrUnknownCurve},
		{"ecdsa-sha2-", sshwire.ErrUnknownCurve},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := ParseKeyType(tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseKeyType(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestZeroKeyTypeInvalid(t *testing.T) {
	var zero KeyType
	if zero.IsValid() {
		t.Error("zero KeyType should be invalid")
	}
	if zero.String() != "unknown" {
		t.Errorf("String() = %q", zero.String())
	}
	if ECDSAType(0).IsValid() {
		t.Error("ECDSA without a curve should be invalid")
	}
}
