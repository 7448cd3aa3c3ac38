/*
Copyright © 2025 Logicos Software

Package armor implements the ASCII armor used around OpenSSH binary
objects:

	-----BEGIN <LABEL>-----
	<base64 body, hard-wrapped>
	-----END <LABEL>-----

The body carries no PEM headers. The BEGIN and END labels must match.
*/
package armor

import (
	"encoding/base64"
	"strings"

	"sshenv/internal/sshwire"
)

// Labels used by OpenSSH objects.
const (
	LabelPrivateKey = "OPENSSH PRIVATE KEY"
	LabelSignature  = "SSH SIGNATURE"
)

// Line widths.
const (
	// DefaultLineWidth is the conventional PEM body width.
	DefaultLineWidth = 64
	// OpenSSHLineWidth is the width ssh-keygen uses for keys and signatures.
	OpenSSHLineWidth = 70
)

const (
	beginPrefix = "-----BEGIN "
	endPrefix   = "-----END "
	dashes      = "-----"
)

// Block is a decoded armored object.
type Block struct {
	Label string
	Data  []byte
}

// Decode parses armored text. Blank lines and surrounding whitespace are
// ignored; the first and last remaining lines must be the BEGIN and END
// markers carrying the same label.
func Decode(text string) (Block, error) {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) < 2 {
		return Block{}, sshwire.FormatError(sshwire.ErrInvalidArmor, "missing BEGIN/END lines")
	}

	header, footer := lines[0], lines[len(lines)-1]
	if !strings.HasPrefix(header, beginPrefix) || !strings.HasSuffix(header, dashes) || len(header) < len(beginPrefix)+len(dashes) {
		return Block{}, sshwire.FormatError(sshwire.ErrInvalidArmor, "invalid header %q", header)
	}
	if !strings.HasPrefix(footer, endPrefix) || !strings.HasSuffix(footer, dashes) || len(footer) < len(endPrefix)+len(dashes) {
		return Block{}, sshwire.FormatError(sshwire.ErrInvalidArmor, "invalid footer %q", footer)
	}

	label := header[len(beginPrefix) : len(header)-len(dashes)]
	footerLabel := footer[len(endPrefix) : len(footer)-len(dashes)]
	if label != footerLabel {
		return Block{}, sshwire.FormatError(sshwire.ErrHeaderFooterMismatch, "%q vs %q", label, footerLabel)
	}

	body := strings.Join(strings.Fields(strings.Join(lines[1:len(lines)-1], "")), "")
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return Block{}, sshwire.FormatError(sshwire.ErrInvalidArmor, "body: %v", err)
	}
	return Block{Label: label, Data: data}, nil
}

// DecodeLabel parses armored text and requires a specific label.
func DecodeLabel(text, label string) ([]byte, error) {
	b, err := Decode(text)
	if err != nil {
		return nil, err
	}
	if b.Label != label {
		return nil, sshwire.FormatError(sshwire.ErrUnexpectedLabel, "got %q, want %q", b.Label, label)
	}
	return b.Data, nil
}

// Encode armors data under label using DefaultLineWidth.
func Encode(label string, data []byte) string {
	return EncodeWidth(label, data, DefaultLineWidth)
}

// EncodeWidth armors data under label, wrapping the body at width columns.
// The result always ends with a newline.
func EncodeWidth(label string, data []byte, width int) string {
	if width <= 0 {
		width = DefaultLineWidth
	}
	body := base64.StdEncoding.EncodeToString(data)

	var b strings.Builder
	b.WriteString(beginPrefix + label + dashes + "\n")
	for len(body) > width {
		b.WriteString(body[:width])
		b.WriteByte('\n')
		body = body[width:]
	}
	if body != "" {
		b.WriteString(body)
		b.WriteByte('\n')
	}
	b.WriteString(endPrefix + label + dashes + "\n")
	return b.String()
}
