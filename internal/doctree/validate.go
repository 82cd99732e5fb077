package doctree

import "fmt"

// Validate checks the document against the canonical grammar: every
// top-level block is a paragraph, heading or image group, and each
// satisfies its own invariants. Transient kinds are violations here.
func (d *Document) Validate() error {
	for i, b := range d.Blocks {
		last := i == len(d.Blocks)-1
		if err := validateTopLevel(b, last); err != nil {
			return fmt.Errorf("block %d: %w", i, err)
		}
	}
	return nil
}

func validateTopLevel(b *Block, last bool) error {
	switch b.Kind {
	case KindParagraph:
		return validateParagraph(b, last)
	case KindHeading:
		return validateHeading(b)
	case KindImageGroup:
		return validateImageGroup(b)
	default:
		return fmt.Errorf("kind %q not allowed at top level", b.Kind)
	}
}

func validateParagraph(b *Block, last bool) error {
	if len(b.Images) > 2 {
		return fmt.Errorf("paragraph holds %d float images, max 2", len(b.Images))
	}
	for _, img := range b.Images {
		if img.Layout != LayoutFloatRight {
			return fmt.Errorf("paragraph image %q has layout %q, want %q", img.ID, img.Layout, LayoutFloatRight)
		}
	}

	switch len(b.Children) {
	case 0:
		if !HasText(b.Inline) && len(b.Images) == 0 {
			// The single trailing empty paragraph is the cursor placeholder.
			if last {
				return nil
			}
			return fmt.Errorf("empty paragraph before end of document")
		}
		if !HasText(b.Inline) && len(b.Images) > 0 {
			return fmt.Errorf("paragraph with images but no text should be an image group")
		}
		return nil
	case 1:
		child := b.Children[0]
		if !Structural(child.Kind) {
			return fmt.Errorf("paragraph child kind %q is not a structural kind", child.Kind)
		}
		if HasText(b.Inline) {
			return fmt.Errorf("block-group paragraph also carries inline text")
		}
		return validateStructural(child)
	default:
		return fmt.Errorf("paragraph holds %d structural children, max 1", len(b.Children))
	}
}

func validateStructural(b *Block) error {
	switch b.Kind {
	case KindBulletList, KindOrderedList:
		if len(b.Children) == 0 {
			return fmt.Errorf("%s has no items", b.Kind)
		}
		for i, item := range b.Children {
			if item.Kind != KindListItem {
				return fmt.Errorf("%s child %d has kind %q, want %q", b.Kind, i, item.Kind, KindListItem)
			}
			if len(item.Children) > 0 {
				return fmt.Errorf("%s item %d contains nested blocks", b.Kind, i)
			}
		}
	case KindQuote:
		if len(b.Children) == 0 && !HasText(b.Inline) {
			return fmt.Errorf("quote has no content")
		}
		for i, c := range b.Children {
			if c.Kind != KindParagraph {
				return fmt.Errorf("quote child %d has kind %q, want %q", i, c.Kind, KindParagraph)
			}
			if len(c.Children) > 0 || len(c.Images) > 0 {
				return fmt.Errorf("quote paragraph %d is not plain", i)
			}
		}
	case KindCodeBlock:
		if !HasText(b.Inline) {
			return fmt.Errorf("code block has no content")
		}
		if len(b.Children) > 0 {
			return fmt.Errorf("code block contains nested blocks")
		}
	default:
		return fmt.Errorf("unexpected structural kind %q", b.Kind)
	}
	return nil
}

func validateHeading(b *Block) error {
	if b.Level < 1 || b.Level > 6 {
		return fmt.Errorf("heading level %d out of range", b.Level)
	}
	if !HasText(b.Inline) {
		return fmt.Errorf("heading has no content")
	}
	if len(b.Children) > 0 || len(b.Images) > 0 {
		return fmt.Errorf("heading contains non-inline content")
	}
	for _, n := range b.Inline {
		if n.Kind == InlineBreak {
			return fmt.Errorf("heading contains a line break")
		}
	}
	return nil
}

func validateImageGroup(b *Block) error {
	if len(b.Images) == 0 {
		return fmt.Errorf("image group is empty")
	}
	for _, img := range b.Images {
		if img.Layout != LayoutFullWidth {
			return fmt.Errorf("image group image %q has layout %q, want %q", img.ID, img.Layout, LayoutFullWidth)
		}
	}
	if len(b.Inline) > 0 || len(b.Children) > 0 {
		return fmt.Errorf("image group contains non-image content")
	}
	return nil
}
