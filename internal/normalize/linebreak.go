package normalize

import "github.com/dgallion1/docnorm/internal/doctree"

// resolveLineBreaks collapses top-level line-break markers into paragraph
// boundaries in a single left-to-right scan. Markers inside an existing
// paragraph are internal line breaks and are not touched.
//
// Every marker is removed. A maximal run of unwrapped text between markers
// (or between a marker and a block boundary) becomes one paragraph, so a
// run of consecutive markers acts as a single separator and never produces
// an empty paragraph. Whitespace-only runs are dropped with their markers.
func resolveLineBreaks(doc *doctree.Document) bool {
	changed := false
	out := make([]*doctree.Block, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		switch b.Kind {
		case doctree.KindLineBreak:
			changed = true
		case doctree.KindTextRun:
			changed = true
			if doctree.HasText(b.Inline) || len(b.Images) > 0 {
				out = append(out, &doctree.Block{
					Kind:   doctree.KindParagraph,
					Inline: b.Inline,
					Images: b.Images,
				})
			}
		default:
			out = append(out, b)
		}
	}
	if changed {
		doc.Blocks = out
	}
	return changed
}
