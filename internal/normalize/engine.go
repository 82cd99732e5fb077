// Package normalize rewrites freeform editor-produced document trees into
// the canonical block structure. The engine runs a fixed pipeline of
// rewrite passes to a fixed point and guarantees that no pass discards
// user-authored text.
package normalize

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"unicode"

	"github.com/dgallion1/docnorm/internal/doctree"
)

// ErrUnrecognizedNode indicates a node kind outside the declared grammar.
// No pass knows how to reclassify such a node, so the whole call fails and
// the caller's tree is returned unmodified.
var ErrUnrecognizedNode = errors.New("unrecognized node kind")

// TextLossError reports that a pass would have discarded non-whitespace
// content. This is a defect in a pass, not a property of the input.
type TextLossError struct {
	Before int // non-whitespace runes before normalization
	After  int // non-whitespace runes after
}

func (e *TextLossError) Error() string {
	return fmt.Sprintf("normalization would lose text content (%d -> %d non-whitespace runes)", e.Before, e.After)
}

// Engine is the normalization orchestrator. It holds no cross-call state;
// every call is independent and idempotent.
type Engine struct {
	log *slog.Logger
}

// New creates an Engine logging through the given logger.
func New(log *slog.Logger) *Engine {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Engine{log: log}
}

type pass struct {
	name string
	fn   func(*doctree.Document) bool
}

// Pass order is a contract: line breaks resolve before headings split,
// headings split before blocks consolidate, and pruning always runs last so
// the placeholder decision sees the final shape.
func passes() []pass {
	return []pass{
		{"line_breaks", resolveLineBreaks},
		{"headings", splitHeadings},
		{"consolidate", consolidateBlocks},
		{"image_blocks", convertImageBlocks},
		{"prune", pruneEmptyBlocks},
	}
}

// Normalize rewrites doc into canonical form and reports whether anything
// changed. The input document is never mutated: on success the returned
// tree is a fresh canonical copy, on failure the input is returned as-is.
func (e *Engine) Normalize(doc *doctree.Document) (*doctree.Document, bool, error) {
	if err := checkKnown(doc); err != nil {
		return doc, false, err
	}

	before := textFingerprint(doc)
	work := doc.Clone()
	changed := false

	// Each pass is idempotent but an earlier pass can expose work for a
	// later one, so loop the pipeline to a fixed point. The bound is
	// generous; hitting it means a pass oscillates, which is a defect.
	limit := 3 + nodeCount(doc)
	for round := 0; ; round++ {
		if round >= limit {
			return doc, false, fmt.Errorf("normalization did not converge after %d rounds", round)
		}
		roundChanged := false
		for _, p := range passes() {
			if p.fn(work) {
				roundChanged = true
				changed = true
				e.log.Debug("pass changed document", "pass", p.name, "round", round)
			}
		}
		if !roundChanged {
			break
		}
	}

	if err := work.Validate(); err != nil {
		return doc, false, fmt.Errorf("normalized tree violates grammar: %w", err)
	}
	if after := textFingerprint(work); after != before {
		return doc, false, &TextLossError{Before: len([]rune(before)), After: len([]rune(after))}
	}
	return work, changed, nil
}

func checkKnown(d *doctree.Document) error {
	var walk func(b *doctree.Block) error
	walk = func(b *doctree.Block) error {
		if !doctree.Known(b.Kind) {
			return fmt.Errorf("%w: %q", ErrUnrecognizedNode, b.Kind)
		}
		for _, c := range b.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	for _, b := range d.Blocks {
		if err := walk(b); err != nil {
			return err
		}
	}
	return nil
}

func nodeCount(d *doctree.Document) int {
	n := 0
	var walk func(b *doctree.Block)
	walk = func(b *doctree.Block) {
		n++
		for _, c := range b.Children {
			walk(c)
		}
	}
	for _, b := range d.Blocks {
		walk(b)
	}
	return n
}

// textFingerprint is an order-independent multiset of all non-whitespace
// runes in the document, including image captions. Passes may relocate
// text freely but may never change this fingerprint.
func textFingerprint(d *doctree.Document) string {
	var runes []rune
	collect := func(s string) {
		for _, r := range s {
			if !unicode.IsSpace(r) {
				runes = append(runes, r)
			}
		}
	}
	var walk func(b *doctree.Block)
	walk = func(b *doctree.Block) {
		collect(doctree.FlattenInline(b.Inline))
		for _, img := range b.Images {
			collect(img.Caption)
		}
		for _, c := range b.Children {
			walk(c)
		}
	}
	for _, b := range d.Blocks {
		walk(b)
	}
	sort.Slice(runes, func(i, j int) bool { return runes[i] < runes[j] })
	return string(runes)
}
