/*
Copyright © 2025 Logicos Software

inspect.go implements the 'inspect' command.

Any SSH object (signature, public key line or private key) is detected
and described as YAML. Secret key material is never printed.
*/
package cmd

import (
	"errors"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"sshenv/internal/sshkey"
	"sshenv/internal/sshsig"
)

// errUnrecognizedObject is returned when no object kind parses. The
// per-kind errors are joined onto it.
var errUnrecognizedObject = errors.New("not an SSH signature, public key line or private key")

// Object kinds reported by inspect.
const (
	kindSignature  = "signature"
	kindPublicKey  = "public-key"
	kindPrivateKey = "private-key"
)

// sshObject is one of *sshsig.Signature, *sshkey.PublicKeyLine or
// *sshkey.PrivateKey.
type sshObject any

// importObject parses text as a signature, a public key line or a private
// key, in that order, and returns the first that succeeds.
func importObject(text string) (sshObject, error) {
	sig, sigErr := sshsig.Parse(text)
	if sigErr == nil {
		return sig, nil
	}
	line, lineErr := sshkey.ParsePublicKeyLine(text)
	if lineErr == nil {
		return line, nil
	}
	key, keyErr := sshkey.ParsePrivateKey(text)
	if keyErr == nil {
		return key, nil
	}
	return nil, errors.Join(errUnrecognizedObject, sigErr, lineErr, keyErr)
}

type fingerprintReport struct {
	SHA256 string `yaml:"sha256"`
	MD5    string `yaml:"md5"`
}

type keyReport struct {
	Type         string            `yaml:"type"`
	Bits         int               `yaml:"bits"`
	Fingerprints fingerprintReport `yaml:"fingerprints"`
	Data         string            `yaml:"data"`
}

type objectReport struct {
	Kind      string    `yaml:"kind"`
	Tag       int       `yaml:"tag"`
	Key       keyReport `yaml:"key"`
	Comment   string    `yaml:"comment,omitempty"`
	PublicKey string    `yaml:"public_key,omitempty"`

	Check *uint32 `yaml:"check,omitempty"`

	Namespace          string `yaml:"namespace,omitempty"`
	HashAlgorithm      string `yaml:"hash_algorithm,omitempty"`
	SignatureAlgorithm string `yaml:"signature_algorithm,omitempty"`
	SignatureBytes     int    `yaml:"signature_bytes,omitempty"`
}

func describeKey(k sshkey.PublicKey) (keyReport, error) {
	sha, err := sshkey.FingerprintOf(k, sshkey.SHA256)
	if err != nil {
		return keyReport{}, err
	}
	md, err := sshkey.FingerprintOf(k, sshkey.MD5)
	if err != nil {
		return keyReport{}, err
	}
	return keyReport{
		Type:         k.Type().String(),
		Bits:         k.KeySize(),
		Fingerprints: fingerprintReport{SHA256: sha.String(), MD5: md.String()},
		Data:         sshkey.KeyData(k),
	}, nil
}

// describe builds the report for obj.
func describe(obj sshObject) (*objectReport, error) {
	var r objectReport
	var pub sshkey.PublicKey

	switch o := obj.(type) {
	case *sshsig.Signature:
		r.Kind = kindSignature
		r.Tag = sshkey.TagSignature
		r.Namespace = o.Namespace
		r.HashAlgorithm = o.HashAlgorithm
		r.SignatureAlgorithm = o.Algorithm
		r.SignatureBytes = len(o.Blob)
		pub = o.PublicKey
	case *sshkey.PublicKeyLine:
		r.Kind = kindPublicKey
		r.Tag = sshkey.TagPublicKey
		r.Comment = o.Comment
		pub = o.Key
	case *sshkey.PrivateKey:
		r.Kind = kindPrivateKey
		r.Tag = sshkey.TagPrivateKey
		r.Comment = o.Comment()
		check := o.Check()
		r.Check = &check
		r.PublicKey = o.PublicKeyLine().String()
		pub = o.Public()
	default:
		return nil, errUnrecognizedObject
	}

	key, err := describeKey(pub)
	if err != nil {
		return nil, err
	}
	r.Key = key
	return &r, nil
}

func newInspectCmd(a *app) *cobra.Command {
	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Describe an SSH key or signature as YAML",
		Example: `  sshenv inspect < message.sig
  sshenv inspect -K ~/.ssh/id_ed25519`,
		Args: cobra.NoArgs,
		RunE: a.runInspect,
	}
	keyInput.addFlags(inspectCmd, "k", "K", "Signature, public key line or private key")
	return inspectCmd
}

func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	data, err := keyInput.read(a, cmd, true)
	if err != nil {
		return err
	}
	obj, err := importObject(string(data))
	if err != nil {
		return ErrUnrecognizedObject(err)
	}
	report, err := describe(obj)
	if err != nil {
		return err
	}

	enc := yaml.NewEncoder(a.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
