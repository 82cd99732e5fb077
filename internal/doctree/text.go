package doctree

import "strings"

// FlattenInline returns the concatenated text of a sequence of inlines.
// In-paragraph line breaks become newlines.
func FlattenInline(inline []Inline) string {
	var sb strings.Builder
	writeInline(&sb, inline)
	return sb.String()
}

func writeInline(sb *strings.Builder, inline []Inline) {
	for _, n := range inline {
		switch n.Kind {
		case InlineText:
			sb.WriteString(n.Text)
		case InlineBreak:
			sb.WriteByte('\n')
		case InlineSpan:
			writeInline(sb, n.Children)
		}
	}
}

// HasText reports whether the inlines contain any non-whitespace text.
func HasText(inline []Inline) bool {
	return strings.TrimSpace(FlattenInline(inline)) != ""
}

// PlainText flattens all text content of the block, including nested
// structural children, into a single string.
func (b *Block) PlainText() string {
	var sb strings.Builder
	writeInline(&sb, b.Inline)
	for _, c := range b.Children {
		t := c.PlainText()
		if t == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(t)
	}
	return sb.String()
}

// PlainText flattens all text content of the document.
func (d *Document) PlainText() string {
	var sb strings.Builder
	for _, b := range d.Blocks {
		t := b.PlainText()
		if t == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(t)
	}
	return sb.String()
}

// Empty reports whether the block carries no meaningful content: no
// non-whitespace text anywhere, no images, and no non-empty children.
func (b *Block) Empty() bool {
	if len(b.Images) > 0 {
		return false
	}
	if HasText(b.Inline) {
		return false
	}
	for _, c := range b.Children {
		if !c.Empty() {
			return false
		}
	}
	return true
}
