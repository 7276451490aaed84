package hacktrack

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Sanitize makes backend text safe to print to a terminal. It strips ANSI
// escape sequences (CSI, OSC, DCS) and drops every control character except
// tab and newline. CRLF and lone CR become LF.
func Sanitize(s string) string {
	s = ansi.Strip(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\t' || r == '\n':
			b.WriteRune(r)
		case r < 0x20, r == 0x7f, r >= 0x80 && r <= 0x9f:
			// C0, DEL and C1 controls.
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
