package codec

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docnorm/internal/doctree"
	"golang.org/x/net/html"
)

// EncodeHTML renders a document back into the editor's HTML form. It is
// the inverse of DecodeHTML for canonical trees.
func EncodeHTML(doc *doctree.Document) string {
	var sb strings.Builder
	for _, b := range doc.Blocks {
		encodeBlock(&sb, b)
	}
	return sb.String()
}

func encodeBlock(sb *strings.Builder, b *doctree.Block) {
	switch b.Kind {
	case doctree.KindParagraph:
		sb.WriteString("<div>")
		for _, img := range b.Images {
			encodeImage(sb, img)
		}
		encodeInlines(sb, b.Inline)
		for _, c := range b.Children {
			encodeStructural(sb, c)
		}
		sb.WriteString("</div>")
	case doctree.KindHeading:
		level := b.Level
		if level < 1 || level > 6 {
			level = 1
		}
		fmt.Fprintf(sb, "<h%d>", level)
		encodeInlines(sb, b.Inline)
		fmt.Fprintf(sb, "</h%d>", level)
	case doctree.KindImageGroup:
		sb.WriteString(`<figure class="image-group">`)
		for _, img := range b.Images {
			encodeImage(sb, img)
		}
		sb.WriteString("</figure>")
	}
}

func encodeStructural(sb *strings.Builder, b *doctree.Block) {
	switch b.Kind {
	case doctree.KindBulletList, doctree.KindOrderedList:
		tag := "ul"
		if b.Kind == doctree.KindOrderedList {
			tag = "ol"
		}
		fmt.Fprintf(sb, "<%s>", tag)
		for _, item := range b.Children {
			sb.WriteString("<li>")
			encodeInlines(sb, item.Inline)
			sb.WriteString("</li>")
		}
		fmt.Fprintf(sb, "</%s>", tag)
	case doctree.KindQuote:
		sb.WriteString("<blockquote>")
		encodeInlines(sb, b.Inline)
		for _, c := range b.Children {
			sb.WriteString("<div>")
			encodeInlines(sb, c.Inline)
			sb.WriteString("</div>")
		}
		sb.WriteString("</blockquote>")
	case doctree.KindCodeBlock:
		sb.WriteString("<pre>")
		sb.WriteString(html.EscapeString(doctree.FlattenInline(b.Inline)))
		sb.WriteString("</pre>")
	}
}

func encodeInlines(sb *strings.Builder, inline []doctree.Inline) {
	for _, n := range inline {
		switch n.Kind {
		case doctree.InlineText:
			sb.WriteString(html.EscapeString(n.Text))
		case doctree.InlineBreak:
			sb.WriteString("<br>")
		case doctree.InlineSpan:
			open, closing := markTags(n)
			sb.WriteString(open)
			encodeInlines(sb, n.Children)
			sb.WriteString(closing)
		}
	}
}

func markTags(n doctree.Inline) (string, string) {
	switch n.Mark {
	case doctree.MarkStrong:
		return "<strong>", "</strong>"
	case doctree.MarkEm:
		return "<em>", "</em>"
	case doctree.MarkUnderline:
		return "<u>", "</u>"
	case doctree.MarkStrike:
		return "<s>", "</s>"
	case doctree.MarkCode:
		return "<code>", "</code>"
	case doctree.MarkLink:
		return fmt.Sprintf(`<a href="%s">`, html.EscapeString(n.Href)), "</a>"
	}
	return "", ""
}

func encodeImage(sb *strings.Builder, img doctree.ImageRef) {
	fmt.Fprintf(sb, `<img data-image-id="%s" data-caption="%s" class="%s">`,
		html.EscapeString(img.ID), html.EscapeString(img.Caption), img.Layout)
}
