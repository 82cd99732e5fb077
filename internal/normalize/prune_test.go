package normalize

import (
	"testing"

	"github.com/dgallion1/docnorm/internal/doctree"
)

func TestPruneEmptyDocumentGetsPlaceholder(t *testing.T) {
	doc := &doctree.Document{}
	if !pruneEmptyBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	b := doc.Blocks[0]
	if b.Kind != doctree.KindParagraph || doctree.HasText(b.Inline) || len(b.Children) != 0 {
		t.Errorf("placeholder = %+v, want an empty paragraph", b)
	}
}

func TestPruneDropsEmptyBlocks(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Paragraph(doctree.Text("   ")),
		doctree.Heading(2, doctree.Text(" \t ")),
		doctree.Paragraph(doctree.Text("kept")),
	}}
	if !pruneEmptyBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	if got := doctree.FlattenInline(doc.Blocks[0].Inline); got != "kept" {
		t.Errorf("surviving text = %q, want %q", got, "kept")
	}
}

func TestPruneKeepsPlaceholderAfterHeading(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Heading(1, doctree.Text("Title")),
		doctree.Paragraph(),
	}}
	if pruneEmptyBlocks(doc) {
		t.Fatal("placeholder after a heading should be stable")
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
}

func TestPruneAddsPlaceholderAfterImageGroup(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:   doctree.KindImageGroup,
		Images: []doctree.ImageRef{{ID: "img-1", Layout: doctree.LayoutFullWidth}},
	}}}
	if !pruneEmptyBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
	if doc.Blocks[1].Kind != doctree.KindParagraph {
		t.Errorf("trailing block = %+v, want paragraph", doc.Blocks[1])
	}
}

func TestPruneDropsRedundantTrailingEmpty(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Paragraph(doctree.Text("body")),
		doctree.Paragraph(),
	}}
	if !pruneEmptyBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
}

func TestPruneCollapsesRepeatedEmpties(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Paragraph(),
		doctree.Paragraph(),
		doctree.Paragraph(),
	}}
	if !pruneEmptyBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
}

func TestPruneKeepsNonEmptyGroups(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		{Kind: doctree.KindParagraph, Children: []*doctree.Block{bulletList("x")}},
	}}
	if pruneEmptyBlocks(doc) {
		t.Fatal("block group with content should be stable")
	}
}

func TestPruneDropsEmptyStructuralChildren(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:   doctree.KindParagraph,
		Inline: []doctree.Inline{doctree.Text("kept")},
		Children: []*doctree.Block{
			{Kind: doctree.KindQuote},
		},
	}}}
	if !pruneEmptyBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	b := doc.Blocks[0]
	if len(b.Children) != 0 {
		t.Errorf("empty quote survived: %+v", b.Children)
	}
	if got := doctree.FlattenInline(b.Inline); got != "kept" {
		t.Errorf("text = %q, want %q", got, "kept")
	}
}

func TestPruneIsIdempotent(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Heading(1, doctree.Text("Title")),
		doctree.Paragraph(),
		doctree.Paragraph(doctree.Text("middle")),
		doctree.Paragraph(),
	}}
	pruneEmptyBlocks(doc)
	if pruneEmptyBlocks(doc) {
		t.Fatalf("second prune changed the document: %+v", doc.Blocks)
	}
}
