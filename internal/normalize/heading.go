package normalize

import "github.com/dgallion1/docnorm/internal/doctree"

// splitHeadings extracts headings that ended up nested inside a paragraph,
// or inside a paragraph's structural child, into standalone top-level
// siblings. Content before and after a heading stays behind in paragraphs
// of its own, in source order; a paragraph that held nothing but the
// heading unwraps to just the heading. Float images on the enclosing
// paragraph travel with the first resulting sibling only.
func splitHeadings(doc *doctree.Document) bool {
	changed := false
	out := make([]*doctree.Block, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		switch {
		case b.Kind == doctree.KindHeading:
			repl, c := repairHeading(b)
			changed = changed || c
			out = append(out, repl...)
		case b.Kind == doctree.KindParagraph && paragraphHasHeading(b):
			changed = true
			out = append(out, liftHeadings(b)...)
		default:
			out = append(out, b)
		}
	}
	if changed {
		doc.Blocks = out
	}
	return changed
}

// repairHeading fixes up a top-level heading in place: the level is
// clamped into range, in-heading line breaks become spaces, and content a
// heading cannot hold (images, nested blocks) moves out behind it. Images
// land in an image-only paragraph for the converter pass; structural
// blocks get their paragraph container back.
func repairHeading(h *doctree.Block) ([]*doctree.Block, bool) {
	changed := false
	if h.Level < 1 {
		h.Level = 1
		changed = true
	}
	if h.Level > 6 {
		h.Level = 6
		changed = true
	}
	for i, n := range h.Inline {
		if n.Kind == doctree.InlineBreak {
			h.Inline[i] = doctree.Text(" ")
			changed = true
		}
	}

	out := []*doctree.Block{h}
	if len(h.Images) > 0 {
		out = append(out, &doctree.Block{Kind: doctree.KindParagraph, Images: h.Images})
		h.Images = nil
		changed = true
	}
	for _, c := range h.Children {
		if doctree.Structural(c.Kind) {
			c = &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{c}}
		}
		out = append(out, c)
	}
	if len(h.Children) > 0 {
		h.Children = nil
		changed = true
	}
	return out, changed
}

func paragraphHasHeading(p *doctree.Block) bool {
	for _, c := range p.Children {
		if c.Kind == doctree.KindHeading {
			return true
		}
		if doctree.Structural(c.Kind) && structuralHasHeading(c) {
			return true
		}
	}
	return false
}

func structuralHasHeading(s *doctree.Block) bool {
	for _, c := range s.Children {
		if c.Kind == doctree.KindHeading {
			return true
		}
		if c.Kind == doctree.KindListItem {
			for _, n := range c.Children {
				if n.Kind == doctree.KindHeading {
					return true
				}
			}
		}
	}
	return false
}

// liftHeadings returns the top-level siblings that replace paragraph p.
func liftHeadings(p *doctree.Block) []*doctree.Block {
	// Flatten p into an ordered sequence of units, splitting structural
	// children that contain headings of their own.
	var units []*doctree.Block
	if len(p.Inline) > 0 {
		units = append(units, &doctree.Block{Kind: doctree.KindParagraph, Inline: p.Inline})
	}
	for _, c := range p.Children {
		if doctree.Structural(c.Kind) && structuralHasHeading(c) {
			units = append(units, splitStructural(c)...)
			continue
		}
		units = append(units, c)
	}

	// Group maximal runs of non-heading units back into paragraphs.
	var result []*doctree.Block
	var run []*doctree.Block
	flush := func() {
		if len(run) == 0 {
			return
		}
		result = append(result, wrapUnits(run))
		run = nil
	}
	for _, u := range units {
		if u.Kind == doctree.KindHeading {
			flush()
			result = append(result, u)
			continue
		}
		run = append(run, u)
	}
	flush()

	if len(p.Images) > 0 {
		result = attachImages(result, p.Images)
	}
	return result
}

// splitStructural cuts a structural child at each directly nested heading,
// producing structural segments interleaved with the headings.
func splitStructural(s *doctree.Block) []*doctree.Block {
	var out []*doctree.Block
	segInline := s.Inline // leading quote/code text belongs to the first segment
	var seg []*doctree.Block
	flush := func() {
		if len(seg) == 0 && !doctree.HasText(segInline) {
			segInline = nil
			return
		}
		out = append(out, &doctree.Block{Kind: s.Kind, Inline: segInline, Children: seg})
		segInline = nil
		seg = nil
	}
	for _, c := range s.Children {
		if c.Kind == doctree.KindHeading {
			flush()
			out = append(out, c)
			continue
		}
		if c.Kind == doctree.KindListItem && len(c.Children) > 0 {
			// A heading buried inside a list item splits the list there
			// too; the item keeps its own text.
			if doctree.HasText(c.Inline) {
				seg = append(seg, &doctree.Block{Kind: doctree.KindListItem, Inline: c.Inline})
			}
			for _, n := range c.Children {
				if n.Kind == doctree.KindHeading {
					flush()
					out = append(out, n)
					continue
				}
				if t := n.PlainText(); t != "" {
					seg = append(seg, &doctree.Block{Kind: doctree.KindListItem, Inline: []doctree.Inline{doctree.Text(t)}})
				}
			}
			continue
		}
		seg = append(seg, c)
	}
	flush()
	return out
}

func wrapUnits(run []*doctree.Block) *doctree.Block {
	if len(run) == 1 && run[0].Kind == doctree.KindParagraph {
		return run[0]
	}
	return &doctree.Block{Kind: doctree.KindParagraph, Children: run}
}

// attachImages puts float images on the first paragraph among blocks. When
// the split left no paragraph to carry them (a bare heading unwrap), a new
// image-only paragraph is prepended; the converter pass reclassifies it.
func attachImages(blocks []*doctree.Block, images []doctree.ImageRef) []*doctree.Block {
	for _, b := range blocks {
		if b.Kind == doctree.KindParagraph {
			b.Images = append(append([]doctree.ImageRef(nil), images...), b.Images...)
			return blocks
		}
	}
	carrier := &doctree.Block{Kind: doctree.KindParagraph, Images: images}
	return append([]*doctree.Block{carrier}, blocks...)
}
