// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package s2 fetches paper records from the Semantic Scholar Graph API in
// bounded batches, with rate-limit pacing and retry on transient failure.
package s2

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/citetree/internal/httputil"
	"github.com/pdiddy/citetree/pkg/types"
)

// batchAPIBase is the Semantic Scholar paper batch endpoint. Declared as a
// var so tests can substitute an httptest server.
var batchAPIBase = "https://api.semanticscholar.org/graph/v1/paper/batch"

// DefaultFields is the field selector used when the configuration does not
// name one. references.paperId keeps responses small while still carrying
// the outgoing citation edges the traversal needs.
const DefaultFields = "citationCount,title,paperId,abstract,references.paperId,year,authors"

const (
	maxBatchSize        = 500
	defaultRequestDelay = 1500 * time.Millisecond
	defaultMaxRetries   = 3
	apiKeyHeader        = "x-api-key"
)

// batchRequest is the POST body of a batch fetch.
type batchRequest struct {
	IDs []string `json:"ids"`
}

// Client issues batched paper lookups against the Semantic Scholar API.
// The zero value is not usable; construct with NewClient. A Client owns no
// shared state beyond its http.Client, so a single instance can back an
// entire build.
type Client struct {
	httpClient *http.Client
	apiKey     string
	userAgent  string
	fields     string
	batchSize  int
	maxRetries int
	limiter    *rate.Limiter
	progress   io.Writer
}

// NewClient builds a Client from cfg. When httpClient is nil a client with
// cfg.Timeout is created. Progress messages are written to progress;
// pass nil (or io.Discard) for a silent client.
func NewClient(cfg types.ClientConfig, httpClient *http.Client, progress io.Writer) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	if progress == nil {
		progress = io.Discard
	}

	fields := cfg.Fields
	if fields == "" {
		fields = DefaultFields
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 || batchSize > maxBatchSize {
		batchSize = maxBatchSize
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	delay := cfg.RequestDelay
	if delay <= 0 {
		delay = defaultRequestDelay
	}

	return &Client{
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		fields:     fields,
		batchSize:  batchSize,
		maxRetries: maxRetries,
		limiter:    rate.NewLimiter(rate.Every(delay), 1),
		progress:   progress,
	}
}

// FetchBatch fetches the records for ids, splitting the request into batches
// of at most the configured batch size and pacing consecutive batches with
// the configured inter-request delay. Not-found entries (null in the
// response) and records without an identifier are silently dropped, so the
// result may be smaller than ids.
func (c *Client) FetchBatch(ctx context.Context, ids []string) ([]types.PaperRecord, error) {
	var all []types.PaperRecord

	for start := 0; start < len(ids); start += c.batchSize {
		end := start + c.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[start:end]

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		fmt.Fprintf(c.progress, "fetching batch %d: %d papers...\n", start/c.batchSize+1, len(batch))

		records, err := c.fetchOne(ctx, batch)
		if err != nil {
			return nil, err
		}
		all = append(all, records...)

		fmt.Fprintf(c.progress, "fetched %d papers\n", len(records))
	}

	return all, nil
}

// FetchPaper fetches a single paper record. It returns nil when the paper
// is not found.
func (c *Client) FetchPaper(ctx context.Context, id string) (*types.PaperRecord, error) {
	records, err := c.FetchBatch(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// fetchOne issues one batch request with retry handling and decodes the
// response. ids must already respect the batch size limit.
func (c *Client) fetchOne(ctx context.Context, ids []string) ([]types.PaperRecord, error) {
	body, err := json.Marshal(batchRequest{IDs: ids})
	if err != nil {
		return nil, fmt.Errorf("encoding batch request: %w", err)
	}

	reqURL := batchAPIBase + "?fields=" + url.QueryEscape(c.fields)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating batch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, c.maxRetries)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v (after %d attempts)", ErrRequestFailed, err, c.maxRetries)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w after %d attempts", ErrRateLimited, c.maxRetries)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}

	// Not-found ids come back as null entries, so decode into pointers.
	var raw []*types.PaperRecord
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: parsing batch response: %v", ErrRequestFailed, err)
	}

	records := make([]types.PaperRecord, 0, len(raw))
	for _, r := range raw {
		if r == nil || r.PaperID == "" {
			continue
		}
		records = append(records, *r)
	}
	return records, nil
}
