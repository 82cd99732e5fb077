package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dgallion1/docnorm/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

type migrateRequest struct {
	// DocIDs limits the batch; when empty the store is asked for every
	// document normalized under an earlier rule version.
	DocIDs []string `json:"doc_ids,omitempty"`
}

// handleMigrate queues a batch re-normalization of stored documents.
func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)

	var req migrateRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
			return
		}
	}

	now := time.Now()
	seed := fmt.Sprintf("%s-%d", strings.Join(req.DocIDs, ","), now.UnixNano())
	job := &pipeline.Job{
		ID:        pipeline.ContentHashHex([]byte(seed))[:20],
		Status:    pipeline.StatusQueued,
		Phase:     "queued",
		DocIDs:    req.DocIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.orchestrator.Submit(job); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusAccepted, job.Snapshot())
}

// handleMigrateStatus reports progress for a migration job.
func (s *Server) handleMigrateStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found: "+jobID, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}
