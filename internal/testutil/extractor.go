package testutil

import (
	"context"
	"sync"

	"photosort/internal/photosort"
)

// StubExtractor returns canned metadata keyed by absolute path. Paths with
// no entry are left out of the result.
type StubExtractor struct {
	mu       sync.Mutex
	results  map[string]*photosort.ExtractedMetadata
	batchErr error
	calls    [][]string
}

func NewStubExtractor() *StubExtractor {
	return &StubExtractor{results: make(map[string]*photosort.ExtractedMetadata)}
}

// Set registers the metadata returned for path.
func (s *StubExtractor) Set(path string, m *photosort.ExtractedMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[path] = m
}

// FailBatches makes every Extract call return err.
func (s *StubExtractor) FailBatches(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batchErr = err
}

// Calls returns the path lists passed to Extract, in call order.
func (s *StubExtractor) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]string(nil), s.calls...)
}

func (s *StubExtractor) Version() string {
	return "stub 1.0"
}

func (s *StubExtractor) Extract(ctx context.Context, paths []string) (map[string]*photosort.ExtractedMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, append([]string(nil), paths...))
	if s.batchErr != nil {
		return nil, s.batchErr
	}

	out := make(map[string]*photosort.ExtractedMetadata, len(paths))
	for _, p := range paths {
		if m, ok := s.results[p]; ok {
			out[p] = m
		}
	}
	return out, nil
}

var _ photosort.MetadataExtractor = (*StubExtractor)(nil)
