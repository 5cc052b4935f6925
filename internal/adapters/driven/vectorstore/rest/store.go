// Package rest provides a vector store client for managed vector
// services that expose a JSON HTTP API. The service owns ranking; this
// client only translates between the wire format and the domain types.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/lore-cli/internal/core/domain"
	"github.com/custodia-labs/lore-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

const defaultTimeout = 30 * time.Second

// Store talks to a remote vector collection over HTTPS.
type Store struct {
	baseURL    string
	apiKey     string
	collection string
	client     *http.Client
}

// NewStore creates a client for the collection at baseURL. The API key
// is sent as a Bearer token when set.
func NewStore(baseURL, apiKey, collection string) (*Store, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: vector service base URL is empty", domain.ErrConfiguration)
	}
	if collection == "" {
		return nil, fmt.Errorf("%w: vector service collection is empty", domain.ErrConfiguration)
	}
	return &Store{
		baseURL:    baseURL,
		apiKey:     apiKey,
		collection: collection,
		client:     &http.Client{Timeout: defaultTimeout},
	}, nil
}

type wireChunk struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Title      string    `json:"title,omitempty"`
	Section    string    `json:"section,omitempty"`
	SourcePath string    `json:"source_path,omitempty"`
	Hash       string    `json:"hash"`
	CreatedAt  time.Time `json:"created_at,omitempty"`
}

type upsertRequest struct {
	Chunk  wireChunk `json:"chunk"`
	Vector []float32 `json:"vector"`
}

type searchRequest struct {
	Vector   []float32 `json:"vector"`
	TopK     int       `json:"top_k"`
	MinScore float64   `json:"min_score"`
}

type searchResponse struct {
	Hits []struct {
		Chunk wireChunk `json:"chunk"`
		Score float64   `json:"score"`
	} `json:"hits"`
}

type countResponse struct {
	Count int `json:"count"`
}

func toWire(c domain.Chunk) wireChunk {
	return wireChunk{
		ID:         c.ID,
		Text:       c.Text,
		Title:      c.Title,
		Section:    c.Section,
		SourcePath: c.SourcePath,
		Hash:       c.Hash,
		CreatedAt:  c.CreatedAt,
	}
}

func fromWire(w wireChunk) domain.Chunk {
	return domain.Chunk{
		ID:         w.ID,
		Text:       w.Text,
		Title:      w.Title,
		Section:    w.Section,
		SourcePath: w.SourcePath,
		Hash:       w.Hash,
		CreatedAt:  w.CreatedAt,
	}
}

// Upsert stores a chunk and its vector in the remote collection.
func (s *Store) Upsert(ctx context.Context, chunk domain.Chunk, embedding domain.Embedding) error {
	if chunk.ID == "" {
		return fmt.Errorf("%w: chunk ID is empty", domain.ErrInvalidInput)
	}
	if len(embedding.Vector) == 0 {
		return fmt.Errorf("%w: embedding vector is empty", domain.ErrInvalidInput)
	}
	return s.do(ctx, http.MethodPut, s.chunkPath(chunk.ID),
		upsertRequest{Chunk: toWire(chunk), Vector: embedding.Vector}, nil)
}

// GetByID retrieves a chunk from the remote collection.
func (s *Store) GetByID(ctx context.Context, id string) (*domain.Chunk, error) {
	var w wireChunk
	if err := s.do(ctx, http.MethodGet, s.chunkPath(id), nil, &w); err != nil {
		return nil, err
	}
	chunk := fromWire(w)
	return &chunk, nil
}

// Search asks the service for the topK most similar chunks above
// minScore.
func (s *Store) Search(ctx context.Context, query []float32, topK int, minScore float64) ([]driven.SearchHit, error) {
	var resp searchResponse
	err := s.do(ctx, http.MethodPost, s.collectionPath("search"),
		searchRequest{Vector: query, TopK: topK, MinScore: minScore}, &resp)
	if err != nil {
		return nil, err
	}

	hits := make([]driven.SearchHit, len(resp.Hits))
	for i, h := range resp.Hits {
		hits[i] = driven.SearchHit{Chunk: fromWire(h.Chunk), Score: h.Score}
	}
	return hits, nil
}

// Count returns the number of chunks in the remote collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var resp countResponse
	if err := s.do(ctx, http.MethodGet, s.collectionPath("count"), nil, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Delete removes a chunk from the remote collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.do(ctx, http.MethodDelete, s.chunkPath(id), nil, nil)
}

// Clear removes every chunk in the remote collection.
func (s *Store) Clear(ctx context.Context) error {
	return s.do(ctx, http.MethodDelete, s.collectionPath(""), nil, nil)
}

// Close releases resources. The HTTP client holds none worth closing.
func (s *Store) Close() error {
	return nil
}

func (s *Store) collectionPath(suffix string) string {
	p := fmt.Sprintf("%s/v1/collections/%s", s.baseURL, url.PathEscape(s.collection))
	if suffix != "" {
		p += "/" + suffix
	}
	return p
}

func (s *Store) chunkPath(id string) string {
	return s.collectionPath("chunks") + "/" + url.PathEscape(id)
}

// do executes one JSON request against the service and decodes the
// response into out when non-nil.
func (s *Store) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.ErrNotFound
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, readError(resp.Body))
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: service returned %d: %s",
			domain.ErrStoreUnavailable, resp.StatusCode, readError(resp.Body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("vector service returned %d: %s", resp.StatusCode, readError(resp.Body))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// readError extracts a short error message from a failed response.
func readError(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no response body"
	}
	var wire struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &wire) == nil && wire.Error != "" {
		return wire.Error
	}
	return string(raw)
}
