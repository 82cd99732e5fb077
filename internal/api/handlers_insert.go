package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docnorm/internal/doctree"
	"github.com/dgallion1/docnorm/internal/normalize"
)

type insertRequest struct {
	Document  *doctree.Document   `json:"document"`
	Placement normalize.Placement `json:"placement"`
	Image     doctree.ImageRef    `json:"image"`
}

type insertResponse struct {
	Document *doctree.Document `json:"document"`
	Inserted bool              `json:"inserted"`
	Changed  bool              `json:"changed"`
}

// handleInsertImage applies a drag/drop image placement and immediately
// normalizes the result. A drop rejected by the float cap reports
// inserted=false and leaves the target block alone.
func (s *Server) handleInsertImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req insertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Document == nil {
		jsonError(w, "document is required", http.StatusBadRequest)
		return
	}
	if req.Image.ID == "" {
		jsonError(w, "image id is required", http.StatusBadRequest)
		return
	}

	inserted, err := normalize.InsertImage(req.Document, req.Placement, req.Image)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	normalized, changed, err := s.engine.Normalize(req.Document)
	if err != nil {
		s.writeNormalizeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, insertResponse{
		Document: normalized,
		Inserted: inserted,
		Changed:  changed || inserted,
	})
}
