// package testing contains shared test doubles and helpers
package testing

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/teamhub/wunschbox/internal/providers"
	"github.com/teamhub/wunschbox/internal/search"
	"github.com/teamhub/wunschbox/internal/shared"
)

// ScriptedRoundTripper replays a fixed sequence of responses/errors, one per
// request, and records every request it sees. The last step repeats once the
// script is exhausted.
type ScriptedRoundTripper struct {
	mu       sync.Mutex
	steps    []ScriptStep
	Requests []*http.Request
}

type ScriptStep struct {
	Response *http.Response
	Err      error
}

func NewScriptedRoundTripper(steps ...ScriptStep) *ScriptedRoundTripper {
	return &ScriptedRoundTripper{steps: steps}
}

func (s *ScriptedRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)
	idx := len(s.Requests) - 1
	if idx >= len(s.steps) {
		idx = len(s.steps) - 1
	}
	step := s.steps[idx]
	return step.Response, step.Err
}

func (s *ScriptedRoundTripper) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Requests)
}

// JSONResponse builds an *http.Response with the given status and body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

// FakeProvider is a test double for [providers.Client] returning canned
// results and counting search invocations.
type FakeProvider struct {
	ProviderTag     providers.Tag
	Results         []providers.SearchResult
	RecResults      []providers.SearchResult
	Err             error
	SearchCalls     int
}

func (f *FakeProvider) Tag() providers.Tag {
	return f.ProviderTag
}

func (f *FakeProvider) Search(ctx context.Context, parsed search.ParsedQuery, limit int) ([]providers.SearchResult, error) {
	f.SearchCalls++
	if f.Err != nil {
		return nil, f.Err
	}
	if limit < len(f.Results) {
		return f.Results[:limit], nil
	}
	return f.Results, nil
}

func (f *FakeProvider) Track(ctx context.Context, id string) (*providers.SearchResult, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	for i := range f.Results {
		if f.Results[i].ID == id {
			return &f.Results[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (f *FakeProvider) Recommendations(ctx context.Context, seedID string, limit int) ([]providers.SearchResult, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if limit < len(f.RecResults) {
		return f.RecResults[:limit], nil
	}
	return f.RecResults, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// OpenTestDB opens an in-memory database with all migrations applied and
// closes it when the test finishes.
func OpenTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// A pooled second connection would see a fresh empty in-memory database.
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// MustSecretBox builds a SecretBox with a fixed test key.
func MustSecretBox(t *testing.T) *shared.SecretBox {
	t.Helper()

	key := bytes.Repeat([]byte{0x42}, 32)
	box, err := shared.NewSecretBox(key)
	if err != nil {
		t.Fatalf("Failed to create secret box: %v", err)
	}
	return box
}
