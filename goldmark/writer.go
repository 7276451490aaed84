package goldmark

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
)

// writer walks one parsed document. prefix is the gutter applied to every
// line of the current block (blockquotes nest by extending it).
type writer struct {
	styles *styles
	source []byte
	buf    bytes.Buffer
}

func (w *writer) blocks(parent ast.Node, width int, prefix string) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.block(n, width, prefix)
		if n.NextSibling() != nil {
			w.buf.WriteString(strings.TrimRight(prefix, " ") + "\n")
		}
	}
}

func (w *writer) block(n ast.Node, width int, prefix string) {
	inner := width - lipgloss.Width(prefix)
	if inner < 10 {
		inner = 10
	}
	switch n := n.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		w.wrapped(w.inlines(n), inner, prefix)

	case *ast.Heading:
		w.wrapped(w.styles.heading.Render(w.inlines(n)), inner, prefix)

	case *ast.FencedCodeBlock:
		if lang := string(n.Language(w.source)); lang != "" {
			w.buf.WriteString(prefix + w.styles.muted.Render(lang) + "\n")
		}
		w.codeLines(n, prefix)

	case *ast.CodeBlock:
		w.codeLines(n, prefix)

	case *ast.Blockquote:
		w.blocks(n, width, prefix+w.styles.muted.Render("│")+" ")

	case *ast.List:
		w.list(n, width, prefix)

	case *ast.ThematicBreak:
		w.buf.WriteString(prefix + w.styles.muted.Render(strings.Repeat("─", min(inner, 40))) + "\n")

	case *ast.HTMLBlock:
		// Shown as literal text; never interpreted.
		for i := 0; i < n.Lines().Len(); i++ {
			line := n.Lines().At(i)
			w.buf.WriteString(prefix + w.styles.muted.Render(strings.TrimRight(string(line.Value(w.source)), "\n")) + "\n")
		}

	default:
		w.blocks(n, width, prefix)
	}
}

func (w *writer) wrapped(s string, width int, prefix string) {
	out := lipgloss.NewStyle().Width(width).Render(s)
	w.buf.WriteString(prefixLines(trimLineEnds(out), prefix, prefix))
}

// codeLines writes code verbatim behind a gutter, without reflow.
func (w *writer) codeLines(n ast.Node, prefix string) {
	gutter := prefix + w.styles.muted.Render("│") + " "
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		w.buf.WriteString(gutter + w.styles.code.Render(strings.TrimRight(string(line.Value(w.source)), "\n")) + "\n")
	}
}

func (w *writer) list(l *ast.List, width int, prefix string) {
	num := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		hang := strings.Repeat(" ", runewidth.StringWidth(marker))
		first := true
		for c := item.FirstChild(); c != nil; c = c.NextSibling() {
			if sub, ok := c.(*ast.List); ok {
				w.list(sub, width, prefix+hang)
				continue
			}
			var sub writer
			sub.styles, sub.source = w.styles, w.source
			sub.block(c, width-lipgloss.Width(prefix)-len(hang), "")
			body := strings.TrimRight(sub.buf.String(), "\n")
			if first {
				w.buf.WriteString(prefixLines(body, prefix+marker, prefix+hang))
				first = false
			} else {
				w.buf.WriteString(prefixLines(body, prefix+hang, prefix+hang))
			}
		}
	}
}

func (w *writer) inlines(parent ast.Node) string {
	var b bytes.Buffer
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		w.inline(n, &b)
	}
	return b.String()
}

func (w *writer) inline(n ast.Node, b *bytes.Buffer) {
	switch n := n.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(w.source))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}

	case *ast.String:
		b.Write(n.Value)

	case *ast.Emphasis:
		if n.Level >= 2 {
			b.WriteString(w.styles.strong.Render(w.inlines(n)))
		} else {
			b.WriteString(w.styles.em.Render(w.inlines(n)))
		}

	case *east.Strikethrough:
		b.WriteString(w.styles.strike.Render(w.inlines(n)))

	case *ast.CodeSpan:
		b.WriteString(w.styles.code.Render(w.inlines(n)))

	case *ast.Link:
		label := w.inlines(n)
		dest := string(n.Destination)
		b.WriteString(w.styles.link.Render(label))
		if dest != "" && dest != label {
			b.WriteString(" " + w.styles.muted.Render("<"+dest+">"))
		}

	case *ast.AutoLink:
		b.WriteString(w.styles.link.Render(string(n.URL(w.source))))

	case *ast.Image:
		b.WriteString(w.styles.muted.Render("[image: "+w.inlines(n)+"]") + " " + w.styles.link.Render(string(n.Destination)))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(w.source))
		}

	default:
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			w.inline(c, b)
		}
	}
}

// trimLineEnds removes the trailing padding lipgloss adds to wrapped lines.
func trimLineEnds(s string) string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " ")
	}
	return strings.Join(lines, "\n")
}
