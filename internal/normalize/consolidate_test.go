package normalize

import (
	"testing"

	"github.com/dgallion1/docnorm/internal/doctree"
)

func TestConsolidateSplitsMergedParagraphs(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind: doctree.KindParagraph,
		Children: []*doctree.Block{
			doctree.Paragraph(doctree.Text("First paragraph.")),
			doctree.Paragraph(doctree.Text("Second paragraph.")),
		},
	}}}
	if !consolidateBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
	for i, want := range []string{"First paragraph.", "Second paragraph."} {
		b := doc.Blocks[i]
		if b.Kind != doctree.KindParagraph || len(b.Children) != 0 {
			t.Errorf("block %d not a plain paragraph: %+v", i, b)
		}
		if got := doctree.FlattenInline(b.Inline); got != want {
			t.Errorf("block %d text = %q, want %q", i, got, want)
		}
	}
}

func TestConsolidateSplitsMultipleStructuralChildren(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind: doctree.KindParagraph,
		Children: []*doctree.Block{
			bulletList("one"),
			{Kind: doctree.KindQuote, Children: []*doctree.Block{doctree.Paragraph(doctree.Text("said"))}},
		},
	}}}
	if !consolidateBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
	if doc.Blocks[0].Children[0].Kind != doctree.KindBulletList {
		t.Errorf("first group = %+v, want list", doc.Blocks[0])
	}
	if doc.Blocks[1].Children[0].Kind != doctree.KindQuote {
		t.Errorf("second group = %+v, want quote", doc.Blocks[1])
	}
}

func TestConsolidateSplitsInlineTextFromStructuralChild(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:     doctree.KindParagraph,
		Inline:   []doctree.Inline{doctree.Text("lead-in")},
		Children: []*doctree.Block{bulletList("one")},
	}}}
	if !consolidateBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
	if got := doctree.FlattenInline(doc.Blocks[0].Inline); got != "lead-in" {
		t.Errorf("first block text = %q, want %q", got, "lead-in")
	}
	if doc.Blocks[1].Children[0].Kind != doctree.KindBulletList {
		t.Errorf("second block = %+v, want list group", doc.Blocks[1])
	}
}

func TestConsolidateImagesStayWithFirstBlock(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:   doctree.KindParagraph,
		Images: []doctree.ImageRef{{ID: "img-1", Layout: doctree.LayoutFloatRight}},
		Children: []*doctree.Block{
			doctree.Paragraph(doctree.Text("a")),
			doctree.Paragraph(doctree.Text("b")),
		},
	}}}
	consolidateBlocks(doc)
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
	if len(doc.Blocks[0].Images) != 1 {
		t.Errorf("first block has %d images, want 1", len(doc.Blocks[0].Images))
	}
	if len(doc.Blocks[1].Images) != 0 {
		t.Errorf("second block has %d images, want 0", len(doc.Blocks[1].Images))
	}
}

func TestConsolidateRecursesNestedParagraphs(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind: doctree.KindParagraph,
		Children: []*doctree.Block{{
			Kind:   doctree.KindParagraph,
			Inline: []doctree.Inline{doctree.Text("outer")},
			Children: []*doctree.Block{
				doctree.Paragraph(doctree.Text("inner")),
			},
		}},
	}}}
	consolidateBlocks(doc)
	if len(doc.Blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(doc.Blocks))
	}
	for i, want := range []string{"outer", "inner"} {
		if got := doctree.FlattenInline(doc.Blocks[i].Inline); got != want {
			t.Errorf("block %d text = %q, want %q", i, got, want)
		}
	}
}

func TestConsolidateFlattensListItemBlocks(t *testing.T) {
	list := bulletList("one")
	list.Children[0].Children = []*doctree.Block{
		doctree.Paragraph(doctree.Text("stray")),
	}
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:     doctree.KindParagraph,
		Children: []*doctree.Block{list},
	}}}
	if !consolidateBlocks(doc) {
		t.Fatal("expected a change")
	}
	item := doc.Blocks[0].Children[0].Children[0]
	if len(item.Children) != 0 {
		t.Fatalf("item still holds nested blocks: %+v", item)
	}
	if got := item.PlainText(); got != "one\nstray" && got != "onestray" {
		t.Errorf("item text = %q, want the merged text", got)
	}
}

func TestConsolidateWrapsTopLevelStructural(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{bulletList("one")}}
	if !consolidateBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(doc.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Blocks))
	}
	b := doc.Blocks[0]
	if b.Kind != doctree.KindParagraph || len(b.Children) != 1 || b.Children[0].Kind != doctree.KindBulletList {
		t.Errorf("block = %+v, want list wrapped in a paragraph", b)
	}
}

func TestConsolidateConvertsTopLevelListItem(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:   doctree.KindListItem,
		Inline: []doctree.Inline{doctree.Text("stray item")},
	}}}
	if !consolidateBlocks(doc) {
		t.Fatal("expected a change")
	}
	b := doc.Blocks[0]
	if b.Kind != doctree.KindParagraph {
		t.Fatalf("kind = %q, want paragraph", b.Kind)
	}
	if got := doctree.FlattenInline(b.Inline); got != "stray item" {
		t.Errorf("text = %q, want %q", got, "stray item")
	}
}

func TestConsolidateFlattensQuoteNesting(t *testing.T) {
	quote := &doctree.Block{Kind: doctree.KindQuote, Children: []*doctree.Block{
		doctree.Paragraph(doctree.Text("plain")),
		{
			Kind:   doctree.KindParagraph,
			Inline: []doctree.Inline{doctree.Text("pictured")},
			Images: []doctree.ImageRef{{ID: "img-1", Layout: doctree.LayoutFloatRight}},
		},
	}}
	group := &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{quote}}
	doc := &doctree.Document{Blocks: []*doctree.Block{group}}
	if !consolidateBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(quote.Children) != 2 {
		t.Fatalf("quote has %d children, want 2", len(quote.Children))
	}
	second := quote.Children[1]
	if len(second.Images) != 0 {
		t.Errorf("quote paragraph still carries images: %+v", second.Images)
	}
	if got := doctree.FlattenInline(second.Inline); got != "pictured" {
		t.Errorf("quote paragraph text = %q, want %q", got, "pictured")
	}
	if len(group.Images) != 1 || group.Images[0].ID != "img-1" {
		t.Errorf("enclosing paragraph images = %+v, want the hoisted img-1", group.Images)
	}
}

func TestConsolidateDegradesStrayListChild(t *testing.T) {
	list := bulletList("one")
	list.Children = append(list.Children, doctree.Paragraph(doctree.Text("loose")))
	list.Children[0].Images = []doctree.ImageRef{{ID: "img-2", Layout: doctree.LayoutFloatRight}}
	group := &doctree.Block{Kind: doctree.KindParagraph, Children: []*doctree.Block{list}}
	doc := &doctree.Document{Blocks: []*doctree.Block{group}}
	if !consolidateBlocks(doc) {
		t.Fatal("expected a change")
	}
	if len(list.Children) != 2 {
		t.Fatalf("list has %d children, want 2", len(list.Children))
	}
	for i, want := range []string{"one", "loose"} {
		c := list.Children[i]
		if c.Kind != doctree.KindListItem {
			t.Errorf("child %d kind = %q, want list_item", i, c.Kind)
		}
		if got := doctree.FlattenInline(c.Inline); got != want {
			t.Errorf("child %d text = %q, want %q", i, got, want)
		}
		if len(c.Images) != 0 {
			t.Errorf("child %d still carries images: %+v", i, c.Images)
		}
	}
	if len(group.Images) != 1 || group.Images[0].ID != "img-2" {
		t.Errorf("enclosing paragraph images = %+v, want the hoisted img-2", group.Images)
	}
}

func TestConsolidateLeavesCanonicalAlone(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Paragraph(doctree.Text("plain")),
		{Kind: doctree.KindParagraph, Children: []*doctree.Block{bulletList("x")}},
	}}
	if consolidateBlocks(doc) {
		t.Fatal("canonical document should not change")
	}
}
