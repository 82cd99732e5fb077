package pipeline

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dgallion1/docnorm/internal/docstore"
)

func TestContentHashHexConsistency(t *testing.T) {
	a := ContentHashHex([]byte("doc-1|doc-2"))
	b := ContentHashHex([]byte("doc-1|doc-2"))
	if a != b {
		t.Errorf("same input hashed differently: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("hash length = %d, want 64", len(a))
	}
	if c := ContentHashHex([]byte("doc-1|doc-3")); c == a {
		t.Error("different inputs collided")
	}
}

func TestJobProgressTracking(t *testing.T) {
	job := &Job{ID: "j1", Status: StatusQueued, CreatedAt: time.Now(), UpdatedAt: time.Now()}

	job.SetStatus(StatusMigrating, "migrating documents")
	job.SetTotalDocs(3)
	job.DocDone(true, false)
	job.DocDone(false, true)
	job.AddError("doc-3: fetch failed")
	job.DocDone(false, false)

	snap := job.Snapshot()
	if snap.Status != StatusMigrating {
		t.Errorf("status = %q, want %q", snap.Status, StatusMigrating)
	}
	if snap.Progress.TotalDocs != 3 || snap.Progress.DocsProcessed != 3 {
		t.Errorf("progress = %+v, want 3 total / 3 processed", snap.Progress)
	}
	if snap.Progress.DocsChanged != 1 || snap.Progress.DocsSkipped != 1 {
		t.Errorf("progress = %+v, want 1 changed / 1 skipped", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 {
		t.Errorf("errors = %v, want 1 entry", snap.Progress.Errors)
	}
}

func TestJobSnapshotErrorsNeverNil(t *testing.T) {
	job := &Job{ID: "j1", Status: StatusQueued}
	if errs := job.Snapshot().Progress.Errors; errs == nil {
		t.Error("snapshot errors slice is nil")
	}
}

func TestJobStoreCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	stale := &Job{ID: "stale", UpdatedAt: time.Now().Add(-time.Minute)}
	fresh := &Job{ID: "fresh", UpdatedAt: time.Now()}
	store.Put(stale)
	store.Put(fresh)

	store.Cleanup()
	if store.Get("stale") != nil {
		t.Error("expired job survived cleanup")
	}
	if store.Get("fresh") == nil {
		t.Error("fresh job evicted")
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := &docstore.RetryableError{StatusCode: 503, Message: "unavailable"}
	if !IsRetryable(retryable) {
		t.Error("RetryableError not recognized")
	}
	if !IsRetryable(fmt.Errorf("fetch doc: %w", retryable)) {
		t.Error("wrapped RetryableError not recognized")
	}
	if IsRetryable(errors.New("parse failure")) {
		t.Error("plain error treated as retryable")
	}
}

func TestBackoffGrowsAndCaps(t *testing.T) {
	prevMax := time.Duration(0)
	for attempt := 0; attempt < 8; attempt++ {
		d := Backoff(attempt)
		if d < time.Second {
			t.Errorf("attempt %d backoff %v below base", attempt, d)
		}
		if d > 45*time.Second {
			t.Errorf("attempt %d backoff %v exceeds cap with jitter", attempt, d)
		}
		if d > prevMax {
			prevMax = d
		}
	}
}
