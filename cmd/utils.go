/*
Package cmd implements the sshenv command-line interface.

This file contains:
  - Version information variables (set via ldflags)
  - Input helpers for SSH objects and messages (flag, file or stdin)
  - Output helpers writing files atomically
  - Terminal detection, colored output and hidden PIN prompts
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sshenv/internal/fsutil"
	"sshenv/internal/sshkey"
)

// Version information variables.
// These are set via ldflags during the build process:
//
//	go build -ldflags "-X sshenv/cmd.Version=1.0.0 -X sshenv/cmd.GitCommit=abc123 ..."
var (
	Version   = "dev"     // Semantic version (e.g., "1.0.0")
	BuildTime = "unknown" // Build timestamp
	GitCommit = "unknown" // Git commit hash
	GoVersion = "unknown" // Go compiler version
)

// File modes for written outputs.
const (
	secretFileMode = 0o600
	publicFileMode = 0o644
)

// app carries what every command needs: settings, logger and streams.
type app struct {
	cfg    Config
	logger *slog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// stdinUsed is set once a command has consumed stdin.
	stdinUsed bool
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}
}

// isTerminal reports whether v is an interactive terminal.
func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// paint returns a color for w, plain unless w is a terminal.
func paint(w io.Writer, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if !isTerminal(w) {
		c.DisableColor()
	}
	return c
}

// readStdin reads all of stdin once. what names the input for errors.
func (a *app) readStdin(what string) ([]byte, error) {
	if a.stdinUsed {
		return nil, ErrConflictingInputs(fmt.Sprintf("Standard input is already used; pass the %s with a flag.", what))
	}
	if isTerminal(a.stdin) {
		return nil, ErrTerminalInput(what)
	}
	a.stdinUsed = true
	return io.ReadAll(a.stdin)
}

// inputSource names the flags that can carry one input.
type inputSource struct {
	what      string // e.g. "key"
	valueFlag string // inline value
	pathFlag  string // file path
}

func (s inputSource) flags() string {
	return fmt.Sprintf("--%s or --%s", s.valueFlag, s.pathFlag)
}

// addFlags registers the inline and path flags on cmd.
func (s inputSource) addFlags(cmd *cobra.Command, valueShort, pathShort, usage string) {
	cmd.Flags().StringP(s.valueFlag, valueShort, "", usage)
	cmd.Flags().StringP(s.pathFlag, pathShort, "", "Read the "+s.what+" from this file")
	cmd.MarkFlagsMutuallyExclusive(s.valueFlag, s.pathFlag)
}

// read returns the input from the inline flag, the path flag or stdin, in
// that order. With allowStdin false a missing input is an error.
func (s inputSource) read(a *app, cmd *cobra.Command, allowStdin bool) ([]byte, error) {
	if v, _ := cmd.Flags().GetString(s.valueFlag); v != "" {
		return []byte(v), nil
	}
	if p, _ := cmd.Flags().GetString(s.pathFlag); p != "" {
		a.logger.Debug("reading input", "what", s.what, "path", p)
		return os.ReadFile(p)
	}
	if !allowStdin {
		return nil, ErrMissingInput(s.what, s.flags())
	}
	return a.readStdin(s.what)
}

var (
	keyInput       = inputSource{what: "key", valueFlag: "key", pathFlag: "key-path"}
	messageInput   = inputSource{what: "message", valueFlag: "message", pathFlag: "message-path"}
	signatureInput = inputSource{what: "signature", valueFlag: "signature", pathFlag: "signature-path"}
	signerInput    = inputSource{what: "public key", valueFlag: "public-key", pathFlag: "public-key-path"}
)

// readPrivateKey reads and parses an OpenSSH private key.
func (a *app) readPrivateKey(cmd *cobra.Command) (*sshkey.PrivateKey, error) {
	data, err := keyInput.read(a, cmd, true)
	if err != nil {
		return nil, err
	}
	return sshkey.ParsePrivateKey(string(data))
}

// readPublicKeyLine reads a public key line from src, or derives it from a
// private key when the input is one.
func (a *app) readPublicKeyLine(cmd *cobra.Command, src inputSource, allowStdin bool) (*sshkey.PublicKeyLine, error) {
	data, err := src.read(a, cmd, allowStdin)
	if err != nil {
		return nil, err
	}
	return publicKeyLineOf(string(data))
}

func publicKeyLineOf(text string) (*sshkey.PublicKeyLine, error) {
	if strings.HasPrefix(strings.TrimSpace(text), "-----BEGIN ") {
		key, err := sshkey.ParsePrivateKey(text)
		if err != nil {
			return nil, err
		}
		return key.PublicKeyLine(), nil
	}
	return sshkey.ParsePublicKeyLine(text)
}

// writeOutput writes data to path atomically, or to stdout when path is
// empty.
func (a *app) writeOutput(path string, data []byte, perm os.FileMode, overwrite bool) error {
	if path == "" {
		_, err := a.stdout.Write(data)
		return err
	}
	if err := fsutil.WriteFileAtomic(path, data, perm, overwrite); err != nil {
		if errors.Is(err, fsutil.ErrExists) {
			return ErrFileAlreadyExists(path)
		}
		return err
	}
	a.logger.Debug("wrote output", "path", path, "bytes", len(data))
	return nil
}

// PromptHidden prompts the user for input without echoing to the terminal.
// This is used for PIN entry.
//
// If stdin is a terminal, uses term.ReadPassword for secure input.
// Falls back to normal reading if not a terminal (e.g., piped input).
func PromptHidden(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
