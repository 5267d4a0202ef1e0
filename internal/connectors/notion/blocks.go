package notion

import (
	"strings"

	"github.com/jomei/notionapi"
)

// plainText joins the plain text of a rich text array.
func plainText(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, r := range rt {
		switch {
		case r.PlainText != "":
			b.WriteString(r.PlainText)
		case r.Text != nil:
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

// blockText returns the text of one block. Unsupported block types
// (images, embeds, tables) yield "".
func blockText(block notionapi.Block) string {
	switch b := block.(type) {
	case *notionapi.ParagraphBlock:
		return plainText(b.Paragraph.RichText)
	case *notionapi.Heading1Block:
		return plainText(b.Heading1.RichText)
	case *notionapi.Heading2Block:
		return plainText(b.Heading2.RichText)
	case *notionapi.Heading3Block:
		return plainText(b.Heading3.RichText)
	case *notionapi.BulletedListItemBlock:
		return "- " + plainText(b.BulletedListItem.RichText)
	case *notionapi.NumberedListItemBlock:
		return "- " + plainText(b.NumberedListItem.RichText)
	case *notionapi.ToDoBlock:
		mark := "[ ] "
		if b.ToDo.Checked {
			mark = "[x] "
		}
		return mark + plainText(b.ToDo.RichText)
	case *notionapi.QuoteBlock:
		return plainText(b.Quote.RichText)
	case *notionapi.CalloutBlock:
		return plainText(b.Callout.RichText)
	case *notionapi.ToggleBlock:
		return plainText(b.Toggle.RichText)
	case *notionapi.CodeBlock:
		return plainText(b.Code.RichText)
	default:
		return ""
	}
}

// blocksText renders blocks one per line, skipping empty ones.
func blocksText(blocks []notionapi.Block) string {
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if text := strings.TrimSpace(blockText(b)); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n")
}

// paragraphs builds paragraph blocks from text split on blank lines.
// Notion caps a rich text item at 2000 characters.
func paragraphs(content string) []notionapi.Block {
	var blocks []notionapi.Block
	for _, para := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		var rt []notionapi.RichText
		for _, chunk := range chunks(para, 2000) {
			rt = append(rt, notionapi.RichText{Text: &notionapi.Text{Content: chunk}})
		}
		blocks = append(blocks, &notionapi.ParagraphBlock{
			BasicBlock: notionapi.BasicBlock{Object: notionapi.ObjectTypeBlock, Type: notionapi.BlockTypeParagraph},
			Paragraph:  notionapi.Paragraph{RichText: rt},
		})
	}
	return blocks
}

// chunks splits s into pieces of at most n runes.
func chunks(s string, n int) []string {
	runes := []rune(s)
	var out []string
	for len(runes) > n {
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return append(out, string(runes))
}
