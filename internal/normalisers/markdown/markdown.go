// Package markdown turns Markdown notebook pages into plain text.
package markdown

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	codeBlock    = regexp.MustCompile("(?s)```[^\n]*\n(.*?)```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	stars        = regexp.MustCompile(`\*{1,2}([^*\n]+)\*{1,2}`)
	underscores  = regexp.MustCompile(`(?m)(^|\W)_{1,2}([^_\n]+)_{1,2}(\W|$)`)
	blockquote   = regexp.MustCompile(`(?m)^>\s?`)
	rule         = regexp.MustCompile(`(?m)^\s*([-*_]\s*){3,}$`)
	bullets      = regexp.MustCompile(`(?m)^\s*[-*+]\s+(\[[ xX]\]\s+)?`)
	numbered     = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	frontMatter  = regexp.MustCompile(`(?s)\A---\n.*?\n---\n`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// Title returns the first level-one heading, or a name derived from the
// file name when the document has none.
func Title(content, filename string) string {
	for _, line := range strings.Split(stripFrontMatter(content), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return TitleFromFilename(filename)
}

// TitleFromFilename drops the extension and turns separators into spaces.
func TitleFromFilename(filename string) string {
	name := filepath.Base(filename)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}

// Text strips Markdown syntax and keeps the readable text, including the
// contents of code blocks.
func Text(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = stripFrontMatter(content)
	content = codeBlock.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = rule.ReplaceAllString(content, "")
	content = bullets.ReplaceAllString(content, "")
	content = numbered.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = stars.ReplaceAllString(content, "$1")
	content = underscores.ReplaceAllString(content, "$1$2$3")
	content = multiNewline.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}

// Body returns the readable text without the level-one heading Title
// would pick.
func Body(content string) string {
	content = stripFrontMatter(strings.ReplaceAll(content, "\r\n", "\n"))
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "# ") {
			lines = append(lines[:i:i], lines[i+1:]...)
			break
		}
	}
	return Text(strings.Join(lines, "\n"))
}

// Document renders a title and body as a Markdown page.
func Document(title, body string) string {
	var b strings.Builder
	if title != "" {
		b.WriteString("# ")
		b.WriteString(strings.TrimSpace(title))
		b.WriteString("\n\n")
	}
	b.WriteString(strings.TrimSpace(body))
	b.WriteString("\n")
	return b.String()
}

func stripFrontMatter(content string) string {
	return frontMatter.ReplaceAllString(content, "")
}
