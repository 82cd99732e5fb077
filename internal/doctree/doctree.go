package doctree

// Kind identifies a block node type.
type Kind string

const (
	// Canonical top-level blocks.
	KindParagraph  Kind = "paragraph"
	KindHeading    Kind = "heading"
	KindImageGroup Kind = "image_group"

	// Structural children of a block-group paragraph.
	KindBulletList  Kind = "bullet_list"
	KindOrderedList Kind = "ordered_list"
	KindQuote       Kind = "quote"
	KindCodeBlock   Kind = "code_block"

	// KindListItem appears only inside a list block.
	KindListItem Kind = "list_item"

	// Transient kinds emitted by the editing surface between normalization
	// calls. They never survive into a canonical document.
	KindLineBreak Kind = "line_break" // a top-level <br> marker
	KindTextRun   Kind = "text_run"   // unwrapped inline content at top level
)

// Layout is the placement mode of an image reference.
type Layout string

const (
	LayoutFloatRight Layout = "float-right"
	LayoutFullWidth  Layout = "full-width"
)

// InlineKind identifies an inline node type.
type InlineKind string

const (
	InlineText  InlineKind = "text"
	InlineSpan  InlineKind = "span"
	InlineBreak InlineKind = "break" // a line break inside a paragraph
)

// Mark is an inline formatting kind carried by a span.
type Mark string

const (
	MarkStrong    Mark = "strong"
	MarkEm        Mark = "em"
	MarkUnderline Mark = "underline"
	MarkStrike    Mark = "strike"
	MarkCode      Mark = "code"
	MarkLink      Mark = "link"
)

// Document is the root of a document: an ordered sequence of blocks.
type Document struct {
	Blocks []*Block `json:"blocks"`
}

// Block is a node in the document tree. Which fields are populated depends
// on Kind: paragraphs carry Inline, float Images and structural Children;
// headings carry Level and Inline; image groups carry Images; lists carry
// list-item Children; quotes carry paragraph Children; code blocks carry
// Inline. Non-canonical trees produced by the editing surface may populate
// any combination; normalization sorts that out.
type Block struct {
	Kind     Kind       `json:"kind"`
	Level    int        `json:"level,omitempty"`
	Inline   []Inline   `json:"inline,omitempty"`
	Images   []ImageRef `json:"images,omitempty"`
	Children []*Block   `json:"children,omitempty"`
}

// Inline is a run of text, a formatting span, or an in-paragraph line break.
type Inline struct {
	Kind     InlineKind `json:"kind"`
	Text     string     `json:"text,omitempty"`
	Mark     Mark       `json:"mark,omitempty"`
	Href     string     `json:"href,omitempty"`
	Children []Inline   `json:"children,omitempty"`
}

// ImageRef points at an asset owned by the external asset subsystem.
// Only the identifier, caption and layout mode live in the tree.
type ImageRef struct {
	ID      string `json:"id"`
	Caption string `json:"caption,omitempty"`
	Layout  Layout `json:"layout"`
}

// Structural reports whether k is one of the four block-group child kinds.
func Structural(k Kind) bool {
	switch k {
	case KindBulletList, KindOrderedList, KindQuote, KindCodeBlock:
		return true
	}
	return false
}

// Known reports whether k is part of the declared grammar, canonical or
// transient. Anything else is an unrecoverable anomaly for the normalizer.
func Known(k Kind) bool {
	switch k {
	case KindParagraph, KindHeading, KindImageGroup,
		KindBulletList, KindOrderedList, KindQuote, KindCodeBlock,
		KindListItem, KindLineBreak, KindTextRun:
		return true
	}
	return false
}

// Text creates a plain text inline.
func Text(s string) Inline {
	return Inline{Kind: InlineText, Text: s}
}

// Span creates a formatting span wrapping the given inlines.
func Span(mark Mark, children ...Inline) Inline {
	return Inline{Kind: InlineSpan, Mark: mark, Children: children}
}

// Paragraph creates a plain paragraph holding the given inlines.
func Paragraph(inline ...Inline) *Block {
	return &Block{Kind: KindParagraph, Inline: inline}
}

// Heading creates a heading block at the given level.
func Heading(level int, inline ...Inline) *Block {
	return &Block{Kind: KindHeading, Level: level, Inline: inline}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	out := &Document{Blocks: make([]*Block, len(d.Blocks))}
	for i, b := range d.Blocks {
		out.Blocks[i] = b.Clone()
	}
	return out
}

// Clone returns a deep copy of the block.
func (b *Block) Clone() *Block {
	out := &Block{Kind: b.Kind, Level: b.Level}
	if len(b.Inline) > 0 {
		out.Inline = cloneInlines(b.Inline)
	}
	if len(b.Images) > 0 {
		out.Images = append([]ImageRef(nil), b.Images...)
	}
	if len(b.Children) > 0 {
		out.Children = make([]*Block, len(b.Children))
		for i, c := range b.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

func cloneInlines(in []Inline) []Inline {
	out := make([]Inline, len(in))
	for i, n := range in {
		out[i] = n
		if len(n.Children) > 0 {
			out[i].Children = cloneInlines(n.Children)
		}
	}
	return out
}
