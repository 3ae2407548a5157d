package testutil

import (
	"testing"

	"photosort/internal/photosort"
)

// ServiceHarness bundles a PhotosortService with the fakes behind it.
type ServiceHarness struct {
	Service   *photosort.PhotosortService
	Database  photosort.Database
	FS        *MockFilesystemManager
	Extractor *StubExtractor
	Clock     *StubClock
	IDs       *StubIDGenerator
}

// NewServiceHarness builds a service over an in-memory catalog, a mock
// filesystem and a stub extractor, using settings.
func NewServiceHarness(t *testing.T, settings photosort.Settings) *ServiceHarness {
	t.Helper()

	h := &ServiceHarness{
		Database:  NewTestDatabase(t),
		FS:        NewMockFilesystemManager(),
		Extractor: NewStubExtractor(),
		Clock:     FixedClock(),
		IDs:       NewStubIDGenerator("run"),
	}
	h.Service = photosort.NewPhotosortService(h.Database, h.FS, h.Extractor,
		photosort.NewNopLogger(), h.Clock, h.IDs, settings)
	return h
}
