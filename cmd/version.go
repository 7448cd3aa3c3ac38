/*
Copyright © 2025 Logicos Software

version.go implements the 'version' command.

Version information is embedded at build time via ldflags:

	go build -ldflags "-X sshenv/cmd.Version=1.0.0 \
	                   -X sshenv/cmd.GitCommit=$(git rev-parse HEAD) \
	                   -X sshenv/cmd.BuildTime=$(date -Iseconds) \
	                   -X sshenv/cmd.GoVersion=$(go version)"
*/
package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Long:  `Print the version information for sshenv.`,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := a.stdout
			fmt.Fprintln(w, "sshenv - OpenSSH key and signature tool")
			fmt.Fprintf(w, "Version:    %s\n", Version)
			fmt.Fprintf(w, "Git Commit: %s\n", GitCommit)
			fmt.Fprintf(w, "Built:      %s\n", BuildTime)
			fmt.Fprintf(w, "Go Version: %s\n", GoVersion)
			fmt.Fprintln(w)
			fmt.Fprintf(w, "Copyright © 2024-%d Logicos Software\n", time.Now().Year())
			fmt.Fprintln(w, "Licensed under the MIT License")
		},
	}
}
