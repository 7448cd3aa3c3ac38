/*
Copyright © 2025 Logicos Software

piv.go implements the 'piv-public' command for exporting the public key
of a YubiKey PIV slot as an SSH public key line.

The line can be added to authorized_keys or an allowed_signers file, and
it verifies signatures made with "sshenv sign --piv-slot".
*/
package cmd

import (
	"github.com/spf13/cobra"

	"sshenv/internal/pivkey"
)

func newPIVPublicCmd(a *app) *cobra.Command {
	pivPublicCmd := &cobra.Command{
		Use:   "piv-public",
		Short: "Export the public key of a YubiKey PIV slot",
		Long: `Export the public key of a YubiKey PIV slot as an SSH public key line.

The public key is read from the slot certificate, falling back to
attestation if no certificate is present.`,
		Example: `  # Export the signature slot (9c)
  sshenv piv-public -C yubikey > yubikey.pub

  # Export from a specific slot and reader
  sshenv piv-public --slot 9a --reader "Yubico YubiKey OTP+FIDO+CCID 01"`,
		Args: cobra.NoArgs,
		RunE: a.runPIVPublic,
	}

	pivPublicCmd.Flags().String("slot", pivkey.DefaultSlot, `PIV slot: 9a, 9c, 9d, 9e (default: 9c "Digital Signature")`)
	pivPublicCmd.Flags().StringP("comment", "C", "", "Comment for the public key line")
	pivPublicCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	pivPublicCmd.Flags().BoolP("force", "f", false, "Overwrite an existing output file")
	return pivPublicCmd
}

func (a *app) runPIVPublic(cmd *cobra.Command, args []string) error {
	slotStr, _ := cmd.Flags().GetString("slot")
	comment, _ := cmd.Flags().GetString("comment")
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	slot, err := pivkey.ParseSlot(slotStr)
	if err != nil {
		return err
	}

	token, err := pivkey.Open(a.cfg.Reader)
	if err != nil {
		return err
	}
	defer token.Close()

	line, err := token.PublicKeyLine(slot, "")
	if err != nil {
		return err
	}
	if err := line.SetComment(comment); err != nil {
		return err
	}
	return a.writeOutput(out, []byte(line.String()+"\n"), publicFileMode, force)
}
