// Package goldmark renders assistant replies, written in markdown, as styled
// terminal text. Parsing is done by goldmark and styling by lipgloss.
//
// Replies come from the backend and are untrusted. The source is sanitized
// before parsing, raw HTML is shown literally, and nothing in the output can
// become an interactive control: the renderer produces a string only.
package goldmark

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/hacktrack"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const defaultWidth = 80

// Renderer renders markdown with a fixed theme. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	styles styles
}

type styles struct {
	heading lipgloss.Style
	strong  lipgloss.Style
	em      lipgloss.Style
	strike  lipgloss.Style
	code    lipgloss.Style
	link    lipgloss.Style
	muted   lipgloss.Style
}

// New creates a [Renderer] for theme.
func New(theme hacktrack.Theme) *Renderer {
	return &Renderer{
		md: goldmark.New(goldmark.WithExtensions(
			extension.Linkify,
			extension.Strikethrough,
		)),
		styles: styles{
			heading: lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
			strong:  lipgloss.NewStyle().Bold(true),
			em:      lipgloss.NewStyle().Italic(true),
			strike:  lipgloss.NewStyle().Strikethrough(true),
			code:    lipgloss.NewStyle().Foreground(ansiColor(theme.EventCard)),
			link:    lipgloss.NewStyle().Underline(true),
			muted:   lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		},
	}
}

// Render renders source wrapped to width. A width of zero or less means 80.
func (r *Renderer) Render(source string, width int) string {
	source = hacktrack.Sanitize(source)
	if strings.TrimSpace(source) == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	src := []byte(source)
	doc := r.md.Parser().Parse(text.NewReader(src))
	w := &writer{styles: &r.styles, source: src}
	w.blocks(doc, width, "")
	return strings.TrimRight(w.buf.String(), "\n")
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// prefixLines prepends first to the first line of s and rest to the others.
func prefixLines(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	var b bytes.Buffer
	for i, line := range lines {
		if i == 0 {
			b.WriteString(first)
		} else {
			b.WriteString(rest)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
