/*
Copyright © 2025 Logicos Software

sign.go implements the 'sign' command.

The message is signed under a namespace and the armored SSH signature is
written to stdout or --out. The key comes from --key/--key-path/stdin, or
from a YubiKey PIV slot with --piv-slot. Only one of the key and the
message can be read from stdin.
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"sshenv/internal/pivkey"
	"sshenv/internal/sshsig"
)

// addProtocolFlags registers the flags shared by sign and verify. They
// override the matching config settings.
func addProtocolFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("namespace", "n", sshsig.DefaultNamespace, "Signature namespace")
	cmd.Flags().String("engine", EngineNative, "Engine: native or ssh-keygen")
	cmd.Flags().String("ssh-keygen", sshsig.DefaultKeygenProgram, "ssh-keygen program used by the ssh-keygen engine")
}

func newSignCmd(a *app) *cobra.Command {
	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a message",
		Long: `Sign a message with an OpenSSH private key.

The signature is the armored SSHSIG format of "ssh-keygen -Y sign".`,
		Example: `  # Sign a file, key from disk, message from stdin
  sshenv sign -K ~/.ssh/id_ed25519 < release.tar.gz > release.tar.gz.sig

  # Sign with the key in YubiKey slot 9c under the "git" namespace
  sshenv sign --piv-slot 9c -n git -M commit.txt -o commit.txt.sig`,
		Args: cobra.NoArgs,
		RunE: a.runSign,
	}

	keyInput.addFlags(signCmd, "k", "K", "OpenSSH private key")
	messageInput.addFlags(signCmd, "m", "M", "Message to sign")
	addProtocolFlags(signCmd)
	signCmd.Flags().String("hash", sshsig.DefaultHashAlgorithm, "Message hash: sha512 or sha256 (native engine)")
	signCmd.Flags().String("piv-slot", "", "Sign with the key in this YubiKey PIV slot instead of --key")
	signCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	signCmd.Flags().BoolP("force", "f", false, "Overwrite an existing output file")
	signCmd.MarkFlagsMutuallyExclusive("piv-slot", keyInput.valueFlag)
	signCmd.MarkFlagsMutuallyExclusive("piv-slot", keyInput.pathFlag)
	return signCmd
}

func (a *app) runSign(cmd *cobra.Command, args []string) error {
	pivSlot, _ := cmd.Flags().GetString("piv-slot")
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	var (
		sig *sshsig.Signature
		err error
	)
	if pivSlot != "" {
		sig, err = a.signWithToken(cmd, pivSlot)
	} else {
		sig, err = a.signWithKey(cmd)
	}
	if err != nil {
		return err
	}
	return a.writeOutput(out, []byte(sig.PEM()), publicFileMode, force)
}

func (a *app) signWithKey(cmd *cobra.Command) (*sshsig.Signature, error) {
	key, err := a.readPrivateKey(cmd)
	if err != nil {
		return nil, err
	}
	message, err := messageInput.read(a, cmd, true)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("signing", "engine", a.cfg.Engine, "type", key.Type(), "namespace", a.cfg.Namespace, "bytes", len(message))
	return a.engine().Sign(cmd.Context(), message, key, a.cfg.Namespace)
}

func (a *app) signWithToken(cmd *cobra.Command, slotName string) (*sshsig.Signature, error) {
	if a.cfg.Engine != EngineNative {
		return nil, ErrInvalidSetting("engine", a.cfg.Engine, "YubiKey signing always uses the native engine.")
	}
	slot, err := pivkey.ParseSlot(slotName)
	if err != nil {
		return nil, err
	}

	// Read the message before the PIN prompt can touch stdin.
	message, err := messageInput.read(a, cmd, true)
	if err != nil {
		return nil, err
	}

	token, err := pivkey.Open(a.cfg.Reader)
	if err != nil {
		return nil, err
	}
	defer token.Close()
	a.logger.Debug("opened token", "card", token.Card(), "slot", pivkey.SlotName(slot))

	signer, err := token.Signer(slot, func() (string, error) {
		return PromptHidden(fmt.Sprintf("PIN for slot %s: ", pivkey.SlotName(slot)))
	})
	if err != nil {
		return nil, err
	}
	return a.native().SignWith(cmd.Context(), message, signer, a.cfg.Namespace)
}
