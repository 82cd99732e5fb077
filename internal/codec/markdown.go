package codec

import (
	"bytes"
	"strings"

	"github.com/dgallion1/docnorm/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// DecodeMarkdown converts pasted markdown into an intermediate document
// tree. The tree is not canonical (a markdown document can nest in ways
// the block grammar forbids); callers hand it to the normalizer next.
func DecodeMarkdown(src []byte) (*doctree.Document, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(src))

	doc := &doctree.Document{}
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		if b := mdBlock(n, src); b != nil {
			doc.Blocks = append(doc.Blocks, b)
		}
	}
	return doc, nil
}

func mdBlock(n ast.Node, src []byte) *doctree.Block {
	switch node := n.(type) {
	case *ast.Heading:
		in, _ := mdInlines(node, src)
		return &doctree.Block{Kind: doctree.KindHeading, Level: node.Level, Inline: in}

	case *ast.Paragraph, *ast.TextBlock:
		in, imgs := mdInlines(n, src)
		return &doctree.Block{Kind: doctree.KindParagraph, Inline: in, Images: imgs}

	case *ast.List:
		kind := doctree.KindBulletList
		if node.IsOrdered() {
			kind = doctree.KindOrderedList
		}
		list := &doctree.Block{Kind: kind}
		for item := node.FirstChild(); item != nil; item = item.NextSibling() {
			var in []doctree.Inline
			for c := item.FirstChild(); c != nil; c = c.NextSibling() {
				ci, _ := mdInlines(c, src)
				if len(in) > 0 && len(ci) > 0 {
					in = append(in, doctree.Inline{Kind: doctree.InlineBreak})
				}
				in = append(in, ci...)
			}
			list.Children = append(list.Children, &doctree.Block{Kind: doctree.KindListItem, Inline: in})
		}
		return &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{list}}

	case *ast.Blockquote:
		quote := &doctree.Block{Kind: doctree.KindQuote}
		var hoisted []doctree.ImageRef
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			b := mdBlock(c, src)
			if b == nil {
				continue
			}
			switch {
			case b.Kind == doctree.KindHeading:
				// The heading pass lifts it back out of the quote.
				quote.Children = append(quote.Children, b)
			case b.Kind == doctree.KindParagraph && len(b.Children) == 0:
				hoisted = append(hoisted, b.Images...)
				b.Images = nil
				quote.Children = append(quote.Children, b)
			default:
				// Deeper nesting than the quote grammar allows; keep the
				// text, hoist the images.
				hoisted = append(hoisted, collectImages(b)...)
				if t := b.PlainText(); t != "" {
					quote.Children = append(quote.Children, doctree.Paragraph(doctree.Text(t)))
				}
			}
		}
		return &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{quote}, Images: hoisted}

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		code := &doctree.Block{
			Kind:   doctree.KindCodeBlock,
			Inline: []doctree.Inline{doctree.Text(blockLines(n, src))},
		}
		return &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{code}}

	case *ast.ThematicBreak:
		return nil

	default:
		// Anything else degrades to its plain text.
		if t := strings.TrimSpace(blockLines(n, src)); t != "" {
			return &doctree.Block{Kind: doctree.KindParagraph, Inline: []doctree.Inline{doctree.Text(t)}}
		}
		return nil
	}
}

// mdInlines converts the inline children of a node, collecting images
// separately since the block grammar keeps image refs out of inline runs.
func mdInlines(n ast.Node, src []byte) ([]doctree.Inline, []doctree.ImageRef) {
	var in []doctree.Inline
	var imgs []doctree.ImageRef
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			in = append(in, doctree.Text(string(node.Value(src))))
			if node.HardLineBreak() || node.SoftLineBreak() {
				in = append(in, doctree.Inline{Kind: doctree.InlineBreak})
			}
		case *ast.Emphasis:
			mark := doctree.MarkEm
			if node.Level >= 2 {
				mark = doctree.MarkStrong
			}
			children, childImgs := mdInlines(c, src)
			in = append(in, doctree.Span(mark, children...))
			imgs = append(imgs, childImgs...)
		case *ast.CodeSpan:
			children, _ := mdInlines(c, src)
			in = append(in, doctree.Span(doctree.MarkCode, children...))
		case *ast.Link:
			children, childImgs := mdInlines(c, src)
			span := doctree.Span(doctree.MarkLink, children...)
			span.Href = string(node.Destination)
			in = append(in, span)
			imgs = append(imgs, childImgs...)
		case *ast.AutoLink:
			url := string(node.URL(src))
			span := doctree.Span(doctree.MarkLink, doctree.Text(url))
			span.Href = url
			in = append(in, span)
		case *ast.Image:
			imgs = append(imgs, doctree.ImageRef{
				ID:      string(node.Destination),
				Caption: mdAltText(c, src),
				Layout:  doctree.LayoutFloatRight,
			})
		default:
			children, childImgs := mdInlines(c, src)
			in = append(in, children...)
			imgs = append(imgs, childImgs...)
		}
	}
	return in, imgs
}

func collectImages(b *doctree.Block) []doctree.ImageRef {
	imgs := append([]doctree.ImageRef(nil), b.Images...)
	for _, c := range b.Children {
		imgs = append(imgs, collectImages(c)...)
	}
	return imgs
}

func mdAltText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
		}
	}
	return buf.String()
}

func blockLines(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	return buf.String()
}
