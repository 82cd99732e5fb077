package normalize

import "github.com/dgallion1/docnorm/internal/doctree"

// pruneEmptyBlocks removes blocks with no meaningful content and maintains
// the cursor placeholder: the document always ends with a plain paragraph
// an editing surface can put a cursor into, and never more than one empty
// one.
func pruneEmptyBlocks(doc *doctree.Document) bool {
	changed := false
	out := make([]*doctree.Block, 0, len(doc.Blocks))
	for i, b := range doc.Blocks {
		// A structural child with no content is dropped first; this is
		// what turns a paragraph wrapping only an empty list back into a
		// plain (or image-only) paragraph.
		if b.Kind == doctree.KindParagraph && len(b.Children) > 0 {
			kept := b.Children[:0]
			for _, c := range b.Children {
				if doctree.Structural(c.Kind) && c.Empty() {
					changed = true
					continue
				}
				kept = append(kept, c)
			}
			b.Children = kept
			if len(kept) == 0 {
				b.Children = nil
			}
		}
		if !prunable(b) {
			out = append(out, b)
			continue
		}
		// A trailing empty plain paragraph is the placeholder; keep it when
		// the blocks before it offer no insertion point.
		if i == len(doc.Blocks)-1 && plainParagraph(b) && placeholderNeeded(out) {
			out = append(out, b)
			continue
		}
		changed = true
	}
	if placeholderNeeded(out) {
		out = append(out, &doctree.Block{Kind: doctree.KindParagraph})
		changed = true
	}
	if changed {
		doc.Blocks = out
	}
	return changed
}

func prunable(b *doctree.Block) bool {
	switch b.Kind {
	case doctree.KindParagraph:
		return b.Empty()
	case doctree.KindHeading:
		return b.Empty()
	case doctree.KindImageGroup:
		// A group with images is never prunable; a degenerate one with
		// nothing in it holds no content to preserve.
		return len(b.Images) == 0 && b.Empty()
	}
	return b.Empty()
}

func plainParagraph(b *doctree.Block) bool {
	return b.Kind == doctree.KindParagraph && len(b.Children) == 0 && len(b.Images) == 0
}

// placeholderNeeded reports whether the document, as pruned so far, ends
// without a paragraph for cursor placement. Plain and block-group
// paragraphs both carry an insertion point; headings and image groups do
// not.
func placeholderNeeded(blocks []*doctree.Block) bool {
	if len(blocks) == 0 {
		return true
	}
	return blocks[len(blocks)-1].Kind != doctree.KindParagraph
}
