/*
Copyright © 2025 Logicos Software

generate.go implements the 'generate' command for creating new keys.

The key is written as an unencrypted OpenSSH private key, byte-compatible
with what ssh-keygen produces. With --out the public key line is written
next to it with a ".pub" suffix, as ssh-keygen does.
*/
package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"sshenv/internal/sshkey"
)

func newGenerateCmd(a *app) *cobra.Command {
	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a new OpenSSH private key",
		Long: `Generate a new unencrypted OpenSSH private key.

Supported types are ed25519 (default), ecdsa-p256, ecdsa-p384, ecdsa-p521
and rsa. Full OpenSSH type names such as ecdsa-sha2-nistp256 are accepted too.`,
		Example: `  # Ed25519 key to id_ed25519 and id_ed25519.pub
  sshenv generate -o id_ed25519 -C alice@example.com

  # 4096-bit RSA key on stdout
  sshenv generate -t rsa -b 4096`,
		Args: cobra.NoArgs,
		RunE: a.runGenerate,
	}

	generateCmd.Flags().StringP("type", "t", "ed25519", "Key type: ed25519, ecdsa-p256, ecdsa-p384, ecdsa-p521 or rsa")
	generateCmd.Flags().IntP("bits", "b", 0, "RSA modulus size (default 3072)")
	generateCmd.Flags().StringP("comment", "C", "", "Key comment")
	generateCmd.Flags().StringP("out", "o", "", "Write the private key here and the public key to <out>.pub (default: stdout)")
	generateCmd.Flags().BoolP("force", "f", false, "Overwrite existing files")
	return generateCmd
}

// parseGenerateType maps short names and OpenSSH names to key types.
func parseGenerateType(s string) (sshkey.KeyType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ed25519":
		return sshkey.TypeEd25519, nil
	case "ecdsa", "ecdsa-p256", "p256":
		return sshkey.ECDSAType(sshkey.NISTP256), nil
	case "ecdsa-p384", "p384":
		return sshkey.ECDSAType(sshkey.NISTP384), nil
	case "ecdsa-p521", "p521":
		return sshkey.ECDSAType(sshkey.NISTP521), nil
	case "rsa":
		return sshkey.TypeRSA, nil
	}
	return sshkey.ParseKeyType(s)
}

func (a *app) runGenerate(cmd *cobra.Command, args []string) error {
	typeStr, _ := cmd.Flags().GetString("type")
	bits, _ := cmd.Flags().GetInt("bits")
	comment, _ := cmd.Flags().GetString("comment")
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	keyType, err := parseGenerateType(typeStr)
	if err != nil {
		return err
	}
	if err := sshkey.CheckComment(comment); err != nil {
		return err
	}

	if out == "" && isTerminal(a.stdout) {
		a.logger.Warn("writing an unencrypted private key to the terminal")
	}

	a.logger.Debug("generating key", "type", keyType, "bits", bits)
	key, err := sshkey.GenerateKey(keyType, bits, comment, nil)
	if err != nil {
		return err
	}

	if err := a.writeOutput(out, []byte(key.PEM()), secretFileMode, force); err != nil {
		return err
	}
	if out == "" {
		return nil
	}
	return a.writeOutput(out+".pub", []byte(key.PublicKeyLine().String()+"\n"), publicFileMode, force)
}
