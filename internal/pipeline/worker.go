package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/docnorm/internal/codec"
	"github.com/dgallion1/docnorm/internal/docstore"
	"github.com/dgallion1/docnorm/internal/normalize"
)

// Worker runs one migration job: fetch each stored document, normalize it
// under the current rules, and write it back when anything changed.
type Worker struct {
	engine *normalize.Engine
	store  *docstore.Client
	log    *slog.Logger

	normVersion       int
	batchLimit        int
	maxConcurrentDocs int
}

func NewWorker(engine *normalize.Engine, store *docstore.Client, log *slog.Logger, normVersion, batchLimit, maxConcurrent int) *Worker {
	return &Worker{
		engine:            engine,
		store:             store,
		log:               log,
		normVersion:       normVersion,
		batchLimit:        batchLimit,
		maxConcurrentDocs: maxConcurrent,
	}
}

// Process runs the full migration for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)

	ids := job.DocIDs
	if len(ids) == 0 {
		job.SetStatus(StatusListing, "listing")
		var err error
		ids, err = w.listWithRetry(ctx)
		if err != nil {
			log.Error("listing documents failed", "error", err)
			job.AddError(fmt.Sprintf("list: %s", err))
			job.SetStatus(StatusFailed, "listing")
			return
		}
	}
	job.SetTotalDocs(len(ids))
	if len(ids) == 0 {
		job.SetStatus(StatusCompleted, "done")
		return
	}

	job.SetStatus(StatusMigrating, "migrating")
	log.Info("migrating documents", "docs", len(ids))

	// Documents are independent of each other; normalization itself stays
	// serialized per document.
	sem := make(chan struct{}, w.maxConcurrentDocs)
	var wg sync.WaitGroup
	for _, id := range ids {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			job.AddError(ctx.Err().Error())
			job.SetStatus(StatusFailed, "migrating")
			return
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			defer func() { <-sem }()
			changed, skipped, err := w.migrateDoc(ctx, id)
			if err != nil {
				log.Error("document migration failed", "doc_id", id, "error", err)
				job.AddError(fmt.Sprintf("%s: %s", id, err))
			}
			job.DocDone(changed, skipped)
		}(id)
	}
	wg.Wait()

	snap := job.Snapshot()
	switch {
	case len(snap.Progress.Errors) == 0:
		job.SetStatus(StatusCompleted, "done")
	case snap.Progress.DocsChanged > 0 || snap.Progress.DocsSkipped > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "migrating")
	}
	log.Info("migration complete", "changed", snap.Progress.DocsChanged, "skipped", snap.Progress.DocsSkipped, "errors", len(snap.Progress.Errors))
}

// migrateDoc normalizes a single stored document. skipped is true when the
// document is gone or already current and unchanged.
func (w *Worker) migrateDoc(ctx context.Context, id string) (changed, skipped bool, err error) {
	doc, err := w.getWithRetry(ctx, id)
	if err != nil {
		return false, false, err
	}
	if doc == nil {
		return false, true, nil
	}

	tree, err := codec.DecodeHTML(strings.NewReader(doc.Content))
	if err != nil {
		return false, false, fmt.Errorf("decode: %w", err)
	}
	normalized, treeChanged, err := w.engine.Normalize(tree)
	if err != nil {
		return false, false, fmt.Errorf("normalize: %w", err)
	}
	if !treeChanged && doc.NormVersion == w.normVersion {
		return false, true, nil
	}

	doc.Content = codec.EncodeHTML(normalized)
	doc.NormVersion = w.normVersion
	if err := w.putWithRetry(ctx, doc); err != nil {
		return false, false, err
	}
	return true, false, nil
}

func (w *Worker) getWithRetry(ctx context.Context, id string) (*docstore.StoredDocument, error) {
	var doc *docstore.StoredDocument
	err := w.withRetry(ctx, func() error {
		var err error
		doc, err = w.store.GetDocument(ctx, id)
		return err
	})
	return doc, err
}

func (w *Worker) putWithRetry(ctx context.Context, doc *docstore.StoredDocument) error {
	return w.withRetry(ctx, func() error {
		return w.store.PutDocument(ctx, doc)
	})
}

func (w *Worker) listWithRetry(ctx context.Context) ([]string, error) {
	var ids []string
	err := w.withRetry(ctx, func() error {
		var err error
		ids, err = w.store.ListDocumentIDs(ctx, w.normVersion, w.batchLimit)
		return err
	})
	return ids, err
}

func (w *Worker) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := range MaxRetries {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}
