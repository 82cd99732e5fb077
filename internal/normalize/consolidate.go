package normalize

import "github.com/dgallion1/docnorm/internal/doctree"

// consolidateBlocks splits any paragraph that accumulated more than one
// paragraph-equivalent unit (nested paragraphs after a merging paste,
// several structural children, or inline text mixed with a structural
// child) into one block per unit, preserving order. Float images on the
// original paragraph attach only to the first resulting block.
func consolidateBlocks(doc *doctree.Document) bool {
	changed := false
	out := make([]*doctree.Block, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		// Structural blocks and list items that surfaced at top level get
		// their containers back before anything else.
		if doctree.Structural(b.Kind) {
			out = append(out, &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{b}})
			changed = true
			continue
		}
		if b.Kind == doctree.KindListItem {
			out = append(out, &doctree.Block{
				Kind:     doctree.KindParagraph,
				Inline:   b.Inline,
				Images:   b.Images,
				Children: b.Children,
			})
			changed = true
			continue
		}
		if b.Kind != doctree.KindParagraph {
			out = append(out, b)
			continue
		}
		for _, c := range b.Children {
			if !doctree.Structural(c.Kind) {
				continue
			}
			hoisted, c2 := tidyStructural(c)
			if len(hoisted) > 0 {
				b.Images = append(b.Images, hoisted...)
			}
			if c2 {
				changed = true
			}
		}
		pieces, c := splitParagraph(b)
		changed = changed || c
		out = append(out, pieces...)
	}
	if changed {
		doc.Blocks = out
	}
	return changed
}

// splitParagraph returns the replacement blocks for p and whether p needed
// splitting at all.
func splitParagraph(p *doctree.Block) ([]*doctree.Block, bool) {
	if len(p.Children) == 0 {
		return []*doctree.Block{p}, false
	}
	if len(p.Children) == 1 && doctree.Structural(p.Children[0].Kind) && !doctree.HasText(p.Inline) {
		// Canonical block-group paragraph.
		return []*doctree.Block{p}, false
	}

	var units []*doctree.Block
	if doctree.HasText(p.Inline) {
		units = append(units, &doctree.Block{Kind: doctree.KindParagraph, Inline: p.Inline})
	}
	for _, c := range p.Children {
		switch {
		case c.Kind == doctree.KindParagraph:
			sub, _ := splitParagraph(c)
			units = append(units, sub...)
		case doctree.Structural(c.Kind):
			units = append(units, &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{c}})
		default:
			// Headings and image groups surface as their own top-level
			// blocks; the heading pass normally gets there first.
			units = append(units, c)
		}
	}

	if len(units) == 0 {
		// Whitespace only. Keep one empty paragraph for the pruner to judge.
		units = []*doctree.Block{{Kind: doctree.KindParagraph}}
	}
	if len(p.Images) > 0 {
		units = attachImages(units, p.Images)
	}
	return units, true
}

// tidyStructural repairs the inside of a structural block so it satisfies
// its own grammar: stray nesting flattens into text, and image refs that
// have no legal home inside the block are hoisted out for the enclosing
// paragraph to carry. Nested headings are left alone everywhere; the
// heading pass runs first and splits the block around them.
func tidyStructural(s *doctree.Block) ([]doctree.ImageRef, bool) {
	switch s.Kind {
	case doctree.KindBulletList, doctree.KindOrderedList:
		return tidyList(s)
	case doctree.KindQuote:
		return tidyQuote(s)
	case doctree.KindCodeBlock:
		return tidyCode(s)
	}
	return nil, false
}

func tidyList(s *doctree.Block) ([]doctree.ImageRef, bool) {
	changed := false
	var hoisted []doctree.ImageRef

	// List text outside any item becomes the first item.
	if doctree.HasText(s.Inline) {
		item := &doctree.Block{Kind: doctree.KindListItem, Inline: s.Inline}
		s.Children = append([]*doctree.Block{item}, s.Children...)
		s.Inline = nil
		changed = true
	} else if len(s.Inline) > 0 {
		s.Inline = nil
		changed = true
	}
	if len(s.Images) > 0 {
		hoisted = append(hoisted, s.Images...)
		s.Images = nil
		changed = true
	}

	out := make([]*doctree.Block, 0, len(s.Children))
	for _, c := range s.Children {
		if c.Kind == doctree.KindHeading {
			out = append(out, c)
			continue
		}
		if c.Kind != doctree.KindListItem {
			// Whatever else ended up in the list degrades to an item.
			hoisted = append(hoisted, blockImages(c)...)
			if t := c.PlainText(); t != "" {
				out = append(out, &doctree.Block{
					Kind:   doctree.KindListItem,
					Inline: []doctree.Inline{doctree.Text(t)},
				})
			}
			changed = true
			continue
		}
		if itemHasHeading(c) {
			out = append(out, c)
			continue
		}
		if len(c.Children) > 0 {
			for _, n := range c.Children {
				hoisted = append(hoisted, blockImages(n)...)
				if t := n.PlainText(); t != "" {
					if len(c.Inline) > 0 {
						c.Inline = append(c.Inline, doctree.Inline{Kind: doctree.InlineBreak})
					}
					c.Inline = append(c.Inline, doctree.Text(t))
				}
			}
			c.Children = nil
			changed = true
		}
		if len(c.Images) > 0 {
			hoisted = append(hoisted, c.Images...)
			c.Images = nil
			changed = true
		}
		out = append(out, c)
	}
	s.Children = out
	return hoisted, changed
}

func tidyQuote(s *doctree.Block) ([]doctree.ImageRef, bool) {
	changed := false
	var hoisted []doctree.ImageRef
	if len(s.Images) > 0 {
		hoisted = append(hoisted, s.Images...)
		s.Images = nil
		changed = true
	}
	out := make([]*doctree.Block, 0, len(s.Children))
	for _, c := range s.Children {
		if c.Kind == doctree.KindHeading {
			out = append(out, c)
			continue
		}
		if c.Kind == doctree.KindParagraph && len(c.Children) == 0 && len(c.Images) == 0 {
			out = append(out, c)
			continue
		}
		// Deeper nesting than the quote grammar allows.
		hoisted = append(hoisted, blockImages(c)...)
		if t := c.PlainText(); t != "" {
			out = append(out, doctree.Paragraph(doctree.Text(t)))
		}
		changed = true
	}
	s.Children = out
	return hoisted, changed
}

func tidyCode(s *doctree.Block) ([]doctree.ImageRef, bool) {
	changed := false
	var hoisted []doctree.ImageRef
	if len(s.Children) > 0 {
		for _, c := range s.Children {
			hoisted = append(hoisted, blockImages(c)...)
			if t := c.PlainText(); t != "" {
				if len(s.Inline) > 0 {
					s.Inline = append(s.Inline, doctree.Inline{Kind: doctree.InlineBreak})
				}
				s.Inline = append(s.Inline, doctree.Text(t))
			}
		}
		s.Children = nil
		changed = true
	}
	if len(s.Images) > 0 {
		hoisted = append(hoisted, s.Images...)
		s.Images = nil
		changed = true
	}
	return hoisted, changed
}

func itemHasHeading(item *doctree.Block) bool {
	for _, n := range item.Children {
		if n.Kind == doctree.KindHeading {
			return true
		}
	}
	return false
}

func blockImages(b *doctree.Block) []doctree.ImageRef {
	imgs := append([]doctree.ImageRef(nil), b.Images...)
	for _, c := range b.Children {
		imgs = append(imgs, blockImages(c)...)
	}
	return imgs
}
