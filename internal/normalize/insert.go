package normalize

import (
	"fmt"

	"github.com/dgallion1/docnorm/internal/doctree"
)

// maxFloatImages is the float-image cap per paragraph.
const maxFloatImages = 2

// PlacementMode selects one of the three drag/drop strategies. Which
// strategy applies to a given pointer position is the caller's call; the
// engine takes the resolved target as a precondition.
type PlacementMode string

const (
	// PlaceInBlock floats the image at the start of an existing paragraph.
	PlaceInBlock PlacementMode = "block"
	// PlaceInGroup appends the image to an existing image group.
	PlaceInGroup PlacementMode = "group"
	// PlaceAtGap starts a new image group between two top-level blocks.
	PlaceAtGap PlacementMode = "gap"
)

// Placement is a resolved drop target: a mode plus a block index (for
// PlaceAtGap, the gap index, where 0 is before the first block).
type Placement struct {
	Mode  PlacementMode `json:"mode"`
	Index int           `json:"index"`
}

// InsertImage applies a drag/drop placement to the document and reports
// whether the image was inserted. A paragraph already holding two float
// images rejects the drop without error and without touching the tree.
// The result is an intermediate tree; callers normalize it afterwards.
func InsertImage(doc *doctree.Document, p Placement, ref doctree.ImageRef) (bool, error) {
	switch p.Mode {
	case PlaceInBlock:
		b, err := blockAt(doc, p.Index)
		if err != nil {
			return false, err
		}
		if b.Kind != doctree.KindParagraph {
			return false, fmt.Errorf("block %d has kind %q, drop target must be a paragraph", p.Index, b.Kind)
		}
		if len(b.Images) >= maxFloatImages {
			return false, nil
		}
		ref.Layout = doctree.LayoutFloatRight
		b.Images = append([]doctree.ImageRef{ref}, b.Images...)
		return true, nil

	case PlaceInGroup:
		b, err := blockAt(doc, p.Index)
		if err != nil {
			return false, err
		}
		if b.Kind != doctree.KindImageGroup {
			return false, fmt.Errorf("block %d has kind %q, drop target must be an image group", p.Index, b.Kind)
		}
		ref.Layout = doctree.LayoutFullWidth
		b.Images = append(b.Images, ref)
		return true, nil

	case PlaceAtGap:
		if p.Index < 0 || p.Index > len(doc.Blocks) {
			return false, fmt.Errorf("gap index %d out of range [0,%d]", p.Index, len(doc.Blocks))
		}
		ref.Layout = doctree.LayoutFullWidth
		group := &doctree.Block{Kind: doctree.KindImageGroup, Images: []doctree.ImageRef{ref}}
		doc.Blocks = append(doc.Blocks[:p.Index], append([]*doctree.Block{group}, doc.Blocks[p.Index:]...)...)
		return true, nil

	default:
		return false, fmt.Errorf("unknown placement mode %q", p.Mode)
	}
}

func blockAt(doc *doctree.Document, i int) (*doctree.Block, error) {
	if i < 0 || i >= len(doc.Blocks) {
		return nil, fmt.Errorf("block index %d out of range [0,%d)", i, len(doc.Blocks))
	}
	return doc.Blocks[i], nil
}
