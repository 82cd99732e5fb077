package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dgallion1/docnorm/internal/codec"
	"github.com/dgallion1/docnorm/internal/doctree"
)

type pasteRequest struct {
	Format  string `json:"format"` // "markdown" or "html"
	Content string `json:"content"`
}

type pasteResponse struct {
	Document *doctree.Document `json:"document"`
}

// handlePaste converts pasted content into canonical blocks ready for
// insertion into a document.
func (s *Server) handlePaste(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req pasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var doc *doctree.Document
	var err error
	switch req.Format {
	case "markdown":
		doc, err = codec.DecodeMarkdown([]byte(req.Content))
	case "html":
		doc, err = codec.DecodeHTML(strings.NewReader(req.Content))
	default:
		jsonError(w, "format must be \"markdown\" or \"html\"", http.StatusBadRequest)
		return
	}
	if err != nil {
		jsonError(w, "decode "+req.Format+": "+err.Error(), http.StatusBadRequest)
		return
	}

	normalized, _, err := s.engine.Normalize(doc)
	if err != nil {
		s.writeNormalizeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pasteResponse{Document: normalized})
}
