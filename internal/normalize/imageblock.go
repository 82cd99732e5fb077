package normalize

import "github.com/dgallion1/docnorm/internal/doctree"

// convertImageBlocks reclassifies paragraphs whose only content is float
// images (no text, no structural child) as full-width image groups. It
// also repairs layout drift: paragraphs that kept their text carry only
// float-right images, capped at two (images beyond the cap move into a
// full-width group right after the paragraph rather than being dropped),
// and image groups carry only full-width images. Inline text or nested
// blocks that somehow ended up inside an image group are relocated to
// blocks after it.
func convertImageBlocks(doc *doctree.Document) bool {
	changed := false
	out := make([]*doctree.Block, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		switch b.Kind {
		case doctree.KindImageGroup:
			for i := range b.Images {
				if b.Images[i].Layout != doctree.LayoutFullWidth {
					b.Images[i].Layout = doctree.LayoutFullWidth
					changed = true
				}
			}
			var trailing []*doctree.Block
			if doctree.HasText(b.Inline) {
				trailing = append(trailing, &doctree.Block{Kind: doctree.KindParagraph, Inline: b.Inline})
			}
			if len(b.Inline) > 0 {
				b.Inline = nil
				changed = true
			}
			for _, c := range b.Children {
				if doctree.Structural(c.Kind) {
					c = &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{c}}
				}
				trailing = append(trailing, c)
			}
			if len(b.Children) > 0 {
				b.Children = nil
				changed = true
			}
			out = append(out, b)
			out = append(out, trailing...)
			continue

		case doctree.KindParagraph:
			if len(b.Images) == 0 {
				out = append(out, b)
				continue
			}

			if !doctree.HasText(b.Inline) && len(b.Children) == 0 {
				out = append(out, &doctree.Block{
					Kind:   doctree.KindImageGroup,
					Images: fullWidth(b.Images),
				})
				changed = true
				continue
			}

			for i := range b.Images {
				if b.Images[i].Layout != doctree.LayoutFloatRight {
					b.Images[i].Layout = doctree.LayoutFloatRight
					changed = true
				}
			}
			if len(b.Images) > maxFloatImages {
				overflow := b.Images[maxFloatImages:]
				b.Images = b.Images[:maxFloatImages:maxFloatImages]
				out = append(out, b, &doctree.Block{
					Kind:   doctree.KindImageGroup,
					Images: fullWidth(overflow),
				})
				changed = true
				continue
			}
			out = append(out, b)
			continue
		}
		out = append(out, b)
	}
	if changed {
		doc.Blocks = out
	}
	return changed
}

func fullWidth(images []doctree.ImageRef) []doctree.ImageRef {
	out := make([]doctree.ImageRef, len(images))
	for i, img := range images {
		img.Layout = doctree.LayoutFullWidth
		out[i] = img
	}
	return out
}
