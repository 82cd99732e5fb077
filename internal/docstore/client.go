// Package docstore is the HTTP client for the document store that
// persists editor documents. The store itself is an external service;
// this engine only reads documents for re-normalization and writes the
// canonical result back.
package docstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client communicates with the document store HTTP API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// StoredDocument is a persisted document as the store returns it. Content
// is the editor HTML form; NormVersion records which rule version last
// normalized it.
type StoredDocument struct {
	ID          string `json:"doc_id"`
	Title       string `json:"title,omitempty"`
	Content     string `json:"content"`
	NormVersion int    `json:"norm_version"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// RetryableError indicates a transient store failure worth retrying.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable docstore error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

// GetDocument fetches a document by id. A missing document returns nil.
func (c *Client) GetDocument(ctx context.Context, id string) (*StoredDocument, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/documents/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err := checkStatus(resp, "get document "+id); err != nil {
		return nil, err
	}

	var doc StoredDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id, err)
	}
	return &doc, nil
}

// PutDocument stores or updates a document.
func (c *Client) PutDocument(ctx context.Context, doc *StoredDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/documents/"+doc.ID, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	defer resp.Body.Close()
	return checkStatus(resp, "put document "+doc.ID)
}

// ListDocumentIDs returns ids of documents last normalized before the
// given rule version, up to limit.
func (c *Client) ListDocumentIDs(ctx context.Context, beforeVersion, limit int) ([]string, error) {
	url := fmt.Sprintf("%s/documents?norm_version_lt=%d&limit=%d", c.baseURL, beforeVersion, limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "list documents"); err != nil {
		return nil, err
	}

	var out struct {
		IDs []string `json:"doc_ids"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode document list: %w", err)
	}
	return out.IDs, nil
}

func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{StatusCode: resp.StatusCode, Message: string(body)}
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(body))
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
