/*
Copyright © 2025 Logicos Software

verify.go implements the 'verify' command.

Verification succeeds only if the signature was made by the given public
key, under the given namespace, over exactly the given message. A rejected
signature and a failed verification both exit non-zero with different
messages.
*/
package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sshenv/internal/sshkey"
	"sshenv/internal/sshsig"
)

func newVerifyCmd(a *app) *cobra.Command {
	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a message signature",
		Example: `  sshenv verify -P id_ed25519.pub -S release.tar.gz.sig < release.tar.gz
  sshenv verify -p "$(cat id_ed25519.pub)" -S msg.sig -M msg -n git --silent`,
		Args: cobra.NoArgs,
		RunE: a.runVerify,
	}

	signerInput.addFlags(verifyCmd, "p", "P", "Signer's public key line")
	signatureInput.addFlags(verifyCmd, "s", "S", "Armored SSH signature")
	messageInput.addFlags(verifyCmd, "m", "M", "Signed message")
	addProtocolFlags(verifyCmd)
	verifyCmd.Flags().BoolP("quiet", "q", false, "Print nothing on success")
	verifyCmd.Flags().Bool("silent", false, "Alias for --quiet")
	return verifyCmd
}

func (a *app) runVerify(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	silent, _ := cmd.Flags().GetBool("silent")

	signer, err := a.readPublicKeyLine(cmd, signerInput, false)
	if err != nil {
		return err
	}
	sigText, err := signatureInput.read(a, cmd, true)
	if err != nil {
		return err
	}
	sig, err := sshsig.Parse(string(sigText))
	if err != nil {
		return err
	}
	message, err := messageInput.read(a, cmd, true)
	if err != nil {
		return err
	}

	a.logger.Debug("verifying", "engine", a.cfg.Engine, "namespace", a.cfg.Namespace, "bytes", len(message))
	res := a.engine().Verify(cmd.Context(), message, sig, signer, a.cfg.Namespace)
	switch res.Status {
	case sshsig.StatusVerified:
	case sshsig.StatusRejected:
		return ErrSignatureRejected(res.Err)
	default:
		return ErrVerificationFailed(res.Err)
	}

	if quiet || silent {
		return nil
	}
	fp, err := signer.Fingerprint(sshkey.SHA256)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "%s %q signature for %s with %s key %s\n",
		paint(a.stdout, color.FgGreen).Sprint("Good"), a.cfg.Namespace, signer.Identity(), signer.Type().HashName(), fp)
	return err
}
