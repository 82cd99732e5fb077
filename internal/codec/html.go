package codec

import (
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docnorm/internal/doctree"
	"golang.org/x/net/html"
)

// DecodeHTML parses an editor-emitted HTML fragment into a document tree.
// The result is whatever the editing surface produced, usually a
// non-canonical intermediate tree, and is meant to be normalized next.
// Elements outside the sanitizer allowlist decode into blocks with their
// tag name as the kind, which the normalizer then rejects.
func DecodeHTML(r io.Reader) (*doctree.Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc := &doctree.Document{}
	body := findBody(root)
	if body == nil {
		body = root
	}

	// Loose inline content between block elements accumulates into a
	// transient text run; the line-break pass wraps or drops it later.
	var run *doctree.Block
	flush := func() {
		if run != nil {
			doc.Blocks = append(doc.Blocks, run)
			run = nil
		}
	}
	addInline := func(in []doctree.Inline, imgs []doctree.ImageRef) {
		if len(in) == 0 && len(imgs) == 0 {
			return
		}
		if run == nil {
			run = &doctree.Block{Kind: doctree.KindTextRun}
		}
		run.Inline = append(run.Inline, in...)
		run.Images = append(run.Images, imgs...)
	}

	for c := body.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				addInline([]doctree.Inline{doctree.Text(c.Data)}, nil)
			}
		case html.ElementNode:
			if c.Data == "br" {
				flush()
				doc.Blocks = append(doc.Blocks, &doctree.Block{Kind: doctree.KindLineBreak})
				continue
			}
			if isInlineTag(c.Data) || c.Data == "img" {
				in, imgs := decodeInline(c)
				addInline(in, imgs)
				continue
			}
			flush()
			doc.Blocks = append(doc.Blocks, decodeBlock(c))
		}
	}
	flush()
	return doc, nil
}

func decodeBlock(n *html.Node) *doctree.Block {
	switch n.Data {
	case "p", "div":
		return decodeParagraph(n)
	case "h1", "h2", "h3", "h4", "h5", "h6":
		in, _ := decodeChildrenInline(n)
		return &doctree.Block{Kind: doctree.KindHeading, Level: headingLevel(n.Data), Inline: in}
	case "ul":
		return wrapStructural(decodeList(n, doctree.KindBulletList))
	case "ol":
		return wrapStructural(decodeList(n, doctree.KindOrderedList))
	case "blockquote":
		return wrapStructural(decodeQuote(n))
	case "pre":
		return wrapStructural(decodeCode(n))
	case "figure":
		imgs := decodeImages(n)
		return &doctree.Block{Kind: doctree.KindImageGroup, Images: imgs}
	default:
		// Not on the allowlist. Surface the tag for the normalizer's
		// unrecognized-node failure path.
		return &doctree.Block{Kind: doctree.Kind(n.Data)}
	}
}

// wrapStructural puts a structural block into its paragraph container, the
// only place the grammar admits one. A bare top-level list in the markup
// is the same block-group the editor would have wrapped.
func wrapStructural(s *doctree.Block) *doctree.Block {
	return &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{s}}
}

func decodeParagraph(n *html.Node) *doctree.Block {
	b := &doctree.Block{Kind: doctree.KindParagraph}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if c.Data != "" {
				b.Inline = append(b.Inline, doctree.Text(c.Data))
			}
		case html.ElementNode:
			switch {
			case c.Data == "br":
				b.Inline = append(b.Inline, doctree.Inline{Kind: doctree.InlineBreak})
			case c.Data == "img":
				b.Images = append(b.Images, decodeImage(c))
			case isInlineTag(c.Data):
				in, imgs := decodeInline(c)
				b.Inline = append(b.Inline, in...)
				b.Images = append(b.Images, imgs...)
			default:
				b.Children = append(b.Children, decodeBlock(c))
			}
		}
	}
	return b
}

func decodeList(n *html.Node, kind doctree.Kind) *doctree.Block {
	list := &doctree.Block{Kind: kind}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "li":
			in, _ := decodeChildrenInline(c)
			list.Children = append(list.Children, &doctree.Block{Kind: doctree.KindListItem, Inline: in})
		case "h1", "h2", "h3", "h4", "h5", "h6":
			// A heading the editor let slip inside the list. Keep it in
			// place; the heading pass lifts it out.
			in, _ := decodeChildrenInline(c)
			list.Children = append(list.Children, &doctree.Block{Kind: doctree.KindHeading, Level: headingLevel(c.Data), Inline: in})
		}
	}
	return list
}

func decodeQuote(n *html.Node) *doctree.Block {
	quote := &doctree.Block{Kind: doctree.KindQuote}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			if strings.TrimSpace(c.Data) != "" {
				quote.Inline = append(quote.Inline, doctree.Text(c.Data))
			}
		case html.ElementNode:
			switch {
			case c.Data == "p" || c.Data == "div":
				in, _ := decodeChildrenInline(c)
				quote.Children = append(quote.Children, &doctree.Block{Kind: doctree.KindParagraph, Inline: in})
			case headingLevel(c.Data) > 0:
				in, _ := decodeChildrenInline(c)
				quote.Children = append(quote.Children, &doctree.Block{Kind: doctree.KindHeading, Level: headingLevel(c.Data), Inline: in})
			case c.Data == "br":
				quote.Inline = append(quote.Inline, doctree.Inline{Kind: doctree.InlineBreak})
			case isInlineTag(c.Data):
				in, _ := decodeInline(c)
				quote.Inline = append(quote.Inline, in...)
			}
		}
	}
	return quote
}

func decodeCode(n *html.Node) *doctree.Block {
	return &doctree.Block{
		Kind:   doctree.KindCodeBlock,
		Inline: []doctree.Inline{doctree.Text(textContent(n))},
	}
}

// decodeInline converts an inline element (or subtree) into inline nodes,
// collecting any images found along the way.
func decodeInline(n *html.Node) ([]doctree.Inline, []doctree.ImageRef) {
	if n.Type == html.TextNode {
		if n.Data == "" {
			return nil, nil
		}
		return []doctree.Inline{doctree.Text(n.Data)}, nil
	}
	if n.Type != html.ElementNode {
		return nil, nil
	}
	switch n.Data {
	case "img":
		return nil, []doctree.ImageRef{decodeImage(n)}
	case "br":
		return []doctree.Inline{{Kind: doctree.InlineBreak}}, nil
	}

	children, imgs := decodeChildrenInline(n)
	mark, ok := inlineMark(n.Data)
	if !ok {
		// Transparent wrapper (span and friends): keep the content.
		return children, imgs
	}
	span := doctree.Inline{Kind: doctree.InlineSpan, Mark: mark, Children: children}
	if mark == doctree.MarkLink {
		span.Href = attr(n, "href")
	}
	return []doctree.Inline{span}, imgs
}

func decodeChildrenInline(n *html.Node) ([]doctree.Inline, []doctree.ImageRef) {
	var in []doctree.Inline
	var imgs []doctree.ImageRef
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		ci, cimgs := decodeInline(c)
		in = append(in, ci...)
		imgs = append(imgs, cimgs...)
	}
	return in, imgs
}

func decodeImage(n *html.Node) doctree.ImageRef {
	ref := doctree.ImageRef{
		ID:      attr(n, "data-image-id"),
		Caption: attr(n, "data-caption"),
		Layout:  doctree.LayoutFloatRight,
	}
	if ref.ID == "" {
		ref.ID = attr(n, "src")
	}
	if ref.Caption == "" {
		ref.Caption = attr(n, "alt")
	}
	if strings.Contains(attr(n, "class"), string(doctree.LayoutFullWidth)) {
		ref.Layout = doctree.LayoutFullWidth
	}
	return ref
}

func decodeImages(n *html.Node) []doctree.ImageRef {
	var imgs []doctree.ImageRef
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "img" {
			img := decodeImage(n)
			img.Layout = doctree.LayoutFullWidth
			imgs = append(imgs, img)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return imgs
}

func isInlineTag(tag string) bool {
	switch tag {
	case "b", "strong", "i", "em", "u", "s", "strike", "del", "code", "a", "span":
		return true
	}
	return false
}

func inlineMark(tag string) (doctree.Mark, bool) {
	switch tag {
	case "b", "strong":
		return doctree.MarkStrong, true
	case "i", "em":
		return doctree.MarkEm, true
	case "u":
		return doctree.MarkUnderline, true
	case "s", "strike", "del":
		return doctree.MarkStrike, true
	case "code":
		return doctree.MarkCode, true
	case "a":
		return doctree.MarkLink, true
	}
	return "", false
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
