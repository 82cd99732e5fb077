package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"
)

// JobStatus represents the state of a migration job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusListing   JobStatus = "listing"
	StatusMigrating JobStatus = "migrating"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
	StatusPartial   JobStatus = "partial"
)

// Job tracks one batch re-normalization of stored documents.
type Job struct {
	mu sync.Mutex

	ID string `json:"job_id"`

	Status JobStatus `json:"status"`
	Phase  string    `json:"phase"`

	// DocIDs is the explicit batch; when empty the worker asks the store
	// for documents normalized under an earlier rule version.
	DocIDs []string `json:"doc_ids,omitempty"`

	Progress Progress `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	errors []string
}

// Progress tracks per-document outcomes within a job.
type Progress struct {
	TotalDocs     int      `json:"total_docs"`
	DocsProcessed int      `json:"docs_processed"`
	DocsChanged   int      `json:"docs_changed"`
	DocsSkipped   int      `json:"docs_skipped"`
	Errors        []string `json:"errors"`
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		if now.Sub(job.UpdatedAt) > s.ttl {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records a per-document error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalDocs records the batch size once known.
func (j *Job) SetTotalDocs(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalDocs = n
	j.UpdatedAt = time.Now()
}

// DocDone records the outcome for a single document.
func (j *Job) DocDone(changed, skipped bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocsProcessed++
	if changed {
		j.Progress.DocsChanged++
	}
	if skipped {
		j.Progress.DocsSkipped++
	}
	j.UpdatedAt = time.Now()
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID       string    `json:"job_id"`
	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := j.Progress.Errors
	if errs == nil {
		errs = []string{}
	}
	return JobSnapshot{
		ID:     j.ID,
		Status: j.Status,
		Phase:  j.Phase,
		Progress: Progress{
			TotalDocs:     j.Progress.TotalDocs,
			DocsProcessed: j.Progress.DocsProcessed,
			DocsChanged:   j.Progress.DocsChanged,
			DocsSkipped:   j.Progress.DocsSkipped,
			Errors:        errs,
		},
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
