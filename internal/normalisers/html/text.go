package html

import (
	"io"
	"regexp"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Elements whose content is never shown.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Svg:      true,
	atom.Template: true,
}

// Elements that break the text flow.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Li: true, atom.Tr: true, atom.Blockquote: true, atom.Pre: true,
	atom.Table: true, atom.Section: true, atom.Article: true,
}

var multiSpaces = regexp.MustCompile(`[ \t\x{00a0}]+`)

// Text returns the visible text of content, one block per line.
func Text(content string) string {
	if !strings.ContainsAny(content, "<&") {
		return strings.TrimSpace(content)
	}

	var (
		b     strings.Builder
		depth int
	)
	z := xhtml.NewTokenizer(strings.NewReader(content))
	for {
		tt := z.Next()
		switch tt {
		case xhtml.ErrorToken:
			if z.Err() == io.EOF {
				return collapse(b.String())
			}
			return collapse(b.String())
		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skipped[a] && tt == xhtml.StartTagToken {
				depth++
			}
			if blocks[a] {
				b.WriteByte('\n')
			}
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if skipped[a] && depth > 0 {
				depth--
			}
			if blocks[a] {
				b.WriteByte('\n')
			}
		case xhtml.TextToken:
			if depth == 0 {
				b.Write(z.Text())
			}
		}
	}
}

// Title returns the document <title>, or "" when there is none.
func Title(content string) string {
	z := xhtml.NewTokenizer(strings.NewReader(content))
	inTitle := false
	for {
		switch z.Next() {
		case xhtml.ErrorToken:
			return ""
		case xhtml.StartTagToken:
			name, _ := z.TagName()
			inTitle = atom.Lookup(name) == atom.Title
		case xhtml.EndTagToken:
			name, _ := z.TagName()
			if atom.Lookup(name) == atom.Title {
				return ""
			}
		case xhtml.TextToken:
			if inTitle {
				if t := strings.TrimSpace(string(z.Text())); t != "" {
					return t
				}
			}
		}
	}
}

// Escape escapes text for inclusion in an HTML body.
func Escape(s string) string {
	return xhtml.EscapeString(s)
}

// collapse trims every line and drops empty ones.
func collapse(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(multiSpaces.ReplaceAllString(line, " "))
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
