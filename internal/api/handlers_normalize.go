package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dgallion1/docnorm/internal/codec"
	"github.com/dgallion1/docnorm/internal/doctree"
	"github.com/dgallion1/docnorm/internal/normalize"
)

type normalizeRequest struct {
	// Exactly one of Document (the tree form) or HTML (the editor's wire
	// form) must be set.
	Document *doctree.Document `json:"document,omitempty"`
	HTML     string            `json:"html,omitempty"`
}

type normalizeResponse struct {
	Document *doctree.Document `json:"document"`
	HTML     string            `json:"html,omitempty"`
	Changed  bool              `json:"changed"`
}

// handleNormalize is the engine's main entry point: the editing surface
// calls it after structural edits, after paste, and before saves.
func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req normalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	doc := req.Document
	fromHTML := false
	switch {
	case doc != nil && req.HTML != "":
		jsonError(w, "provide either document or html, not both", http.StatusBadRequest)
		return
	case req.HTML != "":
		var err error
		doc, err = codec.DecodeHTML(strings.NewReader(req.HTML))
		if err != nil {
			jsonError(w, "decode html: "+err.Error(), http.StatusBadRequest)
			return
		}
		fromHTML = true
	case doc == nil:
		jsonError(w, "document or html is required", http.StatusBadRequest)
		return
	}

	normalized, changed, err := s.engine.Normalize(doc)
	if err != nil {
		s.writeNormalizeError(w, err)
		return
	}

	resp := normalizeResponse{Document: normalized, Changed: changed}
	if fromHTML {
		resp.HTML = codec.EncodeHTML(normalized)
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeNormalizeError maps the engine's failure taxonomy to status codes:
// a tree the grammar cannot account for is the caller's defect (422), a
// text-loss detection is ours (500).
func (s *Server) writeNormalizeError(w http.ResponseWriter, err error) {
	var lossErr *normalize.TextLossError
	switch {
	case errors.Is(err, normalize.ErrUnrecognizedNode):
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.As(err, &lossErr):
		s.log.Error("text loss detected", "error", err)
		jsonError(w, err.Error(), http.StatusInternalServerError)
	default:
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
	}
}
