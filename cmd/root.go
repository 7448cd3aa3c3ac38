/*
Copyright © 2025 Logicos Software

Package cmd implements all CLI commands for sshenv using the Cobra library.

This package provides:
  - generate: Create a new OpenSSH private key
  - public: Derive or normalize a public key line
  - fingerprint: Print SHA256 or MD5 fingerprints
  - sign/verify: Sign and verify messages with SSH signatures
  - inspect: Dump any SSH object as YAML
  - piv-public: Export the public key of a YubiKey PIV slot
  - version: Display version information

Signatures use the OpenSSH SSHSIG format and interoperate with
"ssh-keygen -Y sign" and "ssh-keygen -Y verify".
*/
package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree around a.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sshenv",
		Short: "Sign and verify messages with OpenSSH keys",
		Long: `sshenv reads and writes OpenSSH private keys, public key lines and
SSH signatures, and signs and verifies messages with them.

Signatures are compatible with ssh-keygen -Y sign / -Y verify.

Quick usage:
  sshenv generate -o id_ed25519          # New Ed25519 key (+ id_ed25519.pub)
  sshenv sign -K id_ed25519 < msg > msg.sig
  sshenv verify -P id_ed25519.pub -S msg.sig < msg
  sshenv fingerprint -K id_ed25519.pub`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd)
		},
	}
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default: $XDG_CONFIG_HOME/sshenv/sshenv.yaml or ./sshenv.yaml)")
	flags.BoolP("verbose", "v", false, "Log debug output to stderr")
	flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	flags.String("reader", "", "PC/SC reader name (default: first YubiKey found)")

	rootCmd.AddCommand(
		newGenerateCmd(a),
		newPublicCmd(a),
		newFingerprintCmd(a),
		newSignCmd(a),
		newVerifyCmd(a),
		newInspectCmd(a),
		newPIVPublicCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

// configure loads settings and installs the logger for cmd.
func (a *app) configure(cmd *cobra.Command) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := LoadConfig(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := slog.LevelWarn
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return ErrInvalidSetting("log-level", cfg.LogLevel, "use debug, info, warn or error")
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
	a.logger.Debug("configured", "engine", cfg.Engine, "hash", cfg.Hash, "namespace", cfg.Namespace)
	return nil
}

// run executes the command line args against the given streams.
func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	rootCmd := newRootCmd(newApp(stdin, stdout, stderr))
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// Execute runs the command selected by os.Args. This is called by
// main.main(). Errors are printed with their hint and exit with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	if err != nil {
		ExitWithClassifiedError(err)
	}
}
