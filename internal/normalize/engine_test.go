package normalize

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dgallion1/docnorm/internal/doctree"
)

// messyDoc piles up every repair the pipeline performs: unwrapped text
// runs with break markers, a heading buried between two lists, a merged
// paragraph, an image-only paragraph and a stray empty block.
func messyDoc() *doctree.Document {
	return &doctree.Document{Blocks: []*doctree.Block{
		textRun("Hello"),
		breakMarker(),
		breakMarker(),
		textRun("World"),
		{
			Kind: doctree.KindParagraph,
			Children: []*doctree.Block{
				bulletList("alpha"),
				doctree.Heading(2, doctree.Text("Section")),
				bulletList("beta"),
			},
		},
		{
			Kind: doctree.KindParagraph,
			Children: []*doctree.Block{
				doctree.Paragraph(doctree.Text("First")),
				doctree.Paragraph(doctree.Text("Second")),
			},
		},
		{
			Kind: doctree.KindParagraph,
			Images: []doctree.ImageRef{
				{ID: "img-1", Caption: "a chart", Layout: doctree.LayoutFloatRight},
			},
		},
		doctree.Paragraph(doctree.Text("  ")),
	}}
}

func TestNormalizeProducesCanonicalTree(t *testing.T) {
	e := New(nil)
	got, changed, err := e.Normalize(messyDoc())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !changed {
		t.Fatal("expected changed=true")
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("result is not canonical: %v", err)
	}

	kinds := make([]doctree.Kind, len(got.Blocks))
	for i, b := range got.Blocks {
		kinds[i] = b.Kind
	}
	want := []doctree.Kind{
		doctree.KindParagraph, // Hello
		doctree.KindParagraph, // World
		doctree.KindParagraph, // list alpha
		doctree.KindHeading,   // Section
		doctree.KindParagraph, // list beta
		doctree.KindParagraph, // First
		doctree.KindParagraph, // Second
		doctree.KindImageGroup,
		doctree.KindParagraph, // cursor placeholder
	}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("block kinds = %v, want %v", kinds, want)
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	e := New(nil)
	once, _, err := e.Normalize(messyDoc())
	if err != nil {
		t.Fatalf("first Normalize: %v", err)
	}
	twice, changed, err := e.Normalize(once)
	if err != nil {
		t.Fatalf("second Normalize: %v", err)
	}
	if changed {
		t.Error("second pass reported changed=true")
	}
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second pass altered the tree:\nfirst  %+v\nsecond %+v", once, twice)
	}
}

func TestNormalizePreservesText(t *testing.T) {
	e := New(nil)
	got, _, err := e.Normalize(messyDoc())
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	text := got.PlainText()
	for _, w := range []string{"Hello", "World", "alpha", "Section", "beta", "First", "Second"} {
		if !strings.Contains(text, w) {
			t.Errorf("output text missing %q: %q", w, text)
		}
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	in := messyDoc()
	saved := in.Clone()
	if _, _, err := New(nil).Normalize(in); err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !reflect.DeepEqual(in, saved) {
		t.Error("input document was mutated")
	}
}

func TestNormalizeCanonicalUnchanged(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Heading(1, doctree.Text("Title")),
		doctree.Paragraph(doctree.Text("body")),
		{Kind: doctree.KindParagraph, Children: []*doctree.Block{bulletList("x")}},
	}}
	got, changed, err := New(nil).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if changed {
		t.Error("canonical input reported changed=true")
	}
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("canonical input was rewritten: %+v", got.Blocks)
	}
}

func TestNormalizeRejectsUnknownKind(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Paragraph(doctree.Text("fine")),
		{Kind: doctree.Kind("table")},
	}}
	got, changed, err := New(nil).Normalize(doc)
	if !errors.Is(err, ErrUnrecognizedNode) {
		t.Fatalf("err = %v, want ErrUnrecognizedNode", err)
	}
	if changed {
		t.Error("failed call reported changed=true")
	}
	if got != doc {
		t.Error("failed call did not return the input document")
	}
}

func TestNormalizeRejectsNestedUnknownKind(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:     doctree.KindParagraph,
		Children: []*doctree.Block{{Kind: doctree.Kind("embed")}},
	}}}
	if _, _, err := New(nil).Normalize(doc); !errors.Is(err, ErrUnrecognizedNode) {
		t.Fatalf("err = %v, want ErrUnrecognizedNode", err)
	}
}

func TestNormalizeEmptyDocument(t *testing.T) {
	got, changed, err := New(nil).Normalize(&doctree.Document{})
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !changed {
		t.Error("expected changed=true for the added placeholder")
	}
	if len(got.Blocks) != 1 || got.Blocks[0].Kind != doctree.KindParagraph {
		t.Fatalf("blocks = %+v, want a single placeholder paragraph", got.Blocks)
	}
}

func TestNormalizeRepairsImageParagraphWithEmptyList(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:     doctree.KindParagraph,
		Images:   []doctree.ImageRef{{ID: "img-1", Caption: "cap", Layout: doctree.LayoutFloatRight}},
		Children: []*doctree.Block{{Kind: doctree.KindBulletList}},
	}}}
	got, changed, err := New(nil).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("result is not canonical: %v", err)
	}
	if len(got.Blocks) != 2 || got.Blocks[0].Kind != doctree.KindImageGroup {
		t.Fatalf("blocks = %+v, want image group plus placeholder", got.Blocks)
	}
	img := got.Blocks[0].Images[0]
	if img.ID != "img-1" || img.Caption != "cap" || img.Layout != doctree.LayoutFullWidth {
		t.Errorf("image = %+v", img)
	}
}

func TestNormalizeRepairsHeadingLineBreak(t *testing.T) {
	doc := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Heading(1,
			doctree.Text("a"),
			doctree.Inline{Kind: doctree.InlineBreak},
			doctree.Text("b"),
		),
	}}
	got, changed, err := New(nil).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("result is not canonical: %v", err)
	}
	if text := doctree.FlattenInline(got.Blocks[0].Inline); text != "a b" {
		t.Errorf("heading text = %q, want %q", text, "a b")
	}
}

func TestNormalizeRelocatesHeadingImages(t *testing.T) {
	heading := doctree.Heading(2, doctree.Text("Title"))
	heading.Images = []doctree.ImageRef{{ID: "img-1", Caption: "cap", Layout: doctree.LayoutFloatRight}}
	doc := &doctree.Document{Blocks: []*doctree.Block{heading}}

	got, changed, err := New(nil).Normalize(doc)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !changed {
		t.Error("expected changed=true")
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("result is not canonical: %v", err)
	}
	if len(got.Blocks) != 3 {
		t.Fatalf("got %d blocks, want heading, group and placeholder: %+v", len(got.Blocks), got.Blocks)
	}
	if got.Blocks[0].Kind != doctree.KindHeading || len(got.Blocks[0].Images) != 0 {
		t.Errorf("heading = %+v, want images gone", got.Blocks[0])
	}
	group := got.Blocks[1]
	if group.Kind != doctree.KindImageGroup || len(group.Images) != 1 || group.Images[0].Caption != "cap" {
		t.Errorf("relocated group = %+v", group)
	}
}

func TestTextFingerprintIgnoresOrderAndWhitespace(t *testing.T) {
	a := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Paragraph(doctree.Text("ab c")),
		doctree.Paragraph(doctree.Text("d")),
	}}
	b := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Paragraph(doctree.Text("d c")),
		doctree.Paragraph(doctree.Text("ba")),
	}}
	if textFingerprint(a) != textFingerprint(b) {
		t.Error("fingerprints differ for the same rune multiset")
	}
	c := &doctree.Document{Blocks: []*doctree.Block{
		doctree.Paragraph(doctree.Text("abc")),
	}}
	if textFingerprint(a) == textFingerprint(c) {
		t.Error("fingerprints match despite missing text")
	}
}

func TestTextFingerprintIncludesCaptions(t *testing.T) {
	with := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:   doctree.KindImageGroup,
		Images: []doctree.ImageRef{{ID: "i", Caption: "cap", Layout: doctree.LayoutFullWidth}},
	}}}
	without := &doctree.Document{Blocks: []*doctree.Block{{
		Kind:   doctree.KindImageGroup,
		Images: []doctree.ImageRef{{ID: "i", Layout: doctree.LayoutFullWidth}},
	}}}
	if textFingerprint(with) == textFingerprint(without) {
		t.Error("caption text not part of the fingerprint")
	}
}
