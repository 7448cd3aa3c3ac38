/*
Copyright © 2025 Logicos Software

public.go implements the 'public' command.

Given a private key it derives the public key line; given a public key
line it prints it in normalized form. The comment can be replaced.
*/
package cmd

import (
	"github.com/spf13/cobra"
)

func newPublicCmd(a *app) *cobra.Command {
	publicCmd := &cobra.Command{
		Use:   "public",
		Short: "Print the public key line of a key",
		Example: `  # Derive id_ed25519.pub again
  sshenv public -K id_ed25519 -o id_ed25519.pub

  # Replace the comment of a public key line
  sshenv public -C bob@example.com < id_ed25519.pub`,
		Args: cobra.NoArgs,
		RunE: a.runPublic,
	}

	keyInput.addFlags(publicCmd, "k", "K", "Private key or public key line")
	publicCmd.Flags().StringP("comment", "C", "", "Replace the comment")
	publicCmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")
	publicCmd.Flags().BoolP("force", "f", false, "Overwrite an existing output file")
	return publicCmd
}

func (a *app) runPublic(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	force, _ := cmd.Flags().GetBool("force")

	line, err := a.readPublicKeyLine(cmd, keyInput, true)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("comment") {
		comment, _ := cmd.Flags().GetString("comment")
		if err := line.SetComment(comment); err != nil {
			return err
		}
	}
	return a.writeOutput(out, []byte(line.String()+"\n"), publicFileMode, force)
}
