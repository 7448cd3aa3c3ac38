/*
Copyright © 2025 Logicos Software

fingerprint.go implements the 'fingerprint' command.

Output matches "ssh-keygen -l": bits, fingerprint, comment and key type.
With --bare only the fingerprint is printed. --check compares the key
against an expected fingerprint and fails when they differ.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sshenv/internal/sshkey"
)

func newFingerprintCmd(a *app) *cobra.Command {
	fingerprintCmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print the fingerprint of a key",
		Example: `  sshenv fingerprint -K ~/.ssh/id_ed25519.pub
  sshenv fingerprint -E md5 --bare < id_rsa
  sshenv fingerprint -K id_ed25519.pub --check SHA256:Dw7c...`,
		Args: cobra.NoArgs,
		RunE: a.runFingerprint,
	}

	keyInput.addFlags(fingerprintCmd, "k", "K", "Private key or public key line")
	fingerprintCmd.Flags().StringP("algorithm", "E", "sha256", "Fingerprint hash: sha256 or md5")
	fingerprintCmd.Flags().Bool("bare", false, "Print only the fingerprint")
	fingerprintCmd.Flags().String("check", "", "Fail unless the key has this fingerprint")
	return fingerprintCmd
}

func (a *app) runFingerprint(cmd *cobra.Command, args []string) error {
	algStr, _ := cmd.Flags().GetString("algorithm")
	bare, _ := cmd.Flags().GetBool("bare")
	check, _ := cmd.Flags().GetString("check")

	alg, err := sshkey.ParseHashAlgorithm(algStr)
	if err != nil {
		return err
	}
	line, err := a.readPublicKeyLine(cmd, keyInput, true)
	if err != nil {
		return err
	}

	if check != "" {
		want, err := sshkey.ParseFingerprint(check)
		if err != nil {
			return err
		}
		// Compare under the expected fingerprint's algorithm.
		alg = want.Algorithm()
		got, err := line.Fingerprint(alg)
		if err != nil {
			return err
		}
		if !got.Equal(want) {
			return ErrFingerprintMismatch(want.String(), got.String())
		}
	}

	if bare {
		fp, err := line.Fingerprint(alg)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.stdout, fp)
		return err
	}
	s, err := line.HashString(alg)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.stdout, s)
	return err
}
