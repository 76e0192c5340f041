package guidelines_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/JaimeStill/guidesync/internal/auth"
	"github.com/JaimeStill/guidesync/internal/guidelines"
	"github.com/JaimeStill/guidesync/pkg/lifecycle"
	"github.com/JaimeStill/guidesync/pkg/pagination"
	"github.com/JaimeStill/guidesync/pkg/storage"
)

var (
	adminCaller = auth.Authenticated(auth.Identity{
		ID: "admin-1", Email: "admin@guidelinesync.com", Role: auth.RoleAdmin,
	})
	clinicianCaller = auth.Authenticated(auth.Identity{
		ID: "clin-1", Email: "clinician@stgeorges.nhs.uk", Role: auth.RoleClinician,
	})
	anonymous = auth.Anonymous()
)

var testPagination = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

const maxUpload = 1 << 20

var pdfBytes = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\n%%EOF\n")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeFiles is an in-memory storage.System.
type fakeFiles struct {
	mu         sync.Mutex
	objects    map[string][]byte
	deleted    []string
	failUpload bool
	failGet    bool
}

func newFakeFiles() *fakeFiles {
	return &fakeFiles{objects: make(map[string][]byte)}
}

func (f *fakeFiles) Start(*lifecycle.Coordinator) error { return nil }

func (f *fakeFiles) Upload(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failUpload {
		return "", errors.New("bucket unavailable")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.objects[key] = data
	return "https://files.test/" + key, nil
}

func (f *fakeFiles) Download(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGet {
		return nil, errors.New("bucket unavailable")
	}
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeFiles) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeFiles) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeFiles) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// failingStore wraps a Store and fails writes on demand.
type failingStore struct {
	guidelines.Store
	failInsert bool
}

func (s *failingStore) Insert(ctx context.Context, g guidelines.Guideline) error {
	if s.failInsert {
		return errors.New("database unavailable")
	}
	return s.Store.Insert(ctx, g)
}

// clock returns a time source that advances one second per call.
func clock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

type fixture struct {
	sys   guidelines.System
	store guidelines.Store
	files *fakeFiles
}

func newFixture() *fixture {
	return newFixtureWith(guidelines.NewMemoryStore())
}

func newFixtureWith(store guidelines.Store) *fixture {
	files := newFakeFiles()
	return &fixture{
		sys: guidelines.New(
			store, files, discardLogger(), testPagination, maxUpload,
			guidelines.WithClock(clock()),
		),
		store: store,
		files: files,
	}
}

func textRequest(title, trust string, sp guidelines.Speciality, text string, tags ...string) guidelines.CreateRequest {
	return guidelines.CreateRequest{
		TrustName:         trust,
		Title:             title,
		MedicalSpeciality: string(sp),
		Content:           text,
		Tags:              tags,
	}
}
