package guidelines

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/guidesync/internal/auth"
	"github.com/JaimeStill/guidesync/pkg/pagination"
	"github.com/JaimeStill/guidesync/pkg/storage"
)

type operation string

const (
	opList     operation = "list"
	opSearch   operation = "search"
	opFind     operation = "find"
	opDownload operation = "download"
	opTrusts   operation = "trusts"
	opCreate   operation = "create"
	opUpdate   operation = "update"
	opDelete   operation = "delete"
)

// policy is the caller class each operation requires.
var policy = map[operation]auth.Class{
	opList:     auth.ClassAnonymous,
	opSearch:   auth.ClassAnonymous,
	opFind:     auth.ClassAnonymous,
	opDownload: auth.ClassAnonymous,
	opTrusts:   auth.ClassAnonymous,
	opCreate:   auth.ClassAdmin,
	opUpdate:   auth.ClassAdmin,
	opDelete:   auth.ClassAdmin,
}

type service struct {
	store         Store
	files         storage.System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
	now           func() time.Time
}

// Option configures a guideline System.
type Option func(*service)

// WithClock overrides the time source used for timestamps and storage keys.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// New creates a guideline System over the given store and object storage.
func New(
	store Store,
	files storage.System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
	opts ...Option,
) System {
	s := &service{
		store:         store,
		files:         files,
		logger:        logger.With("system", "guidelines"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination, s.maxUploadSize)
}

func (s *service) List(
	ctx context.Context,
	filters Filters,
	page pagination.PageRequest,
	caller auth.Caller,
) (*pagination.PageResult[Guideline], error) {
	if err := authorize(opList, caller); err != nil {
		return nil, err
	}
	return s.list(ctx, filters, page)
}

func (s *service) Search(
	ctx context.Context,
	search string,
	filters Filters,
	page pagination.PageRequest,
	caller auth.Caller,
) (*SearchResult, error) {
	if err := authorize(opSearch, caller); err != nil {
		return nil, err
	}

	search = strings.TrimSpace(search)
	if search == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrValidation)
	}
	filters.Search = &search

	result, err := s.list(ctx, filters, page)
	if err != nil {
		return nil, err
	}

	return &SearchResult{PageResult: *result, Query: search}, nil
}

func (s *service) list(
	ctx context.Context,
	filters Filters,
	page pagination.PageRequest,
) (*pagination.PageResult[Guideline], error) {
	page.Normalize(s.pagination)
	q := BuildQuery(filters, page)

	items, total, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list guidelines: %w", err)
	}

	result := pagination.NewPageResult(items, total, q.Page, q.Limit)
	return &result, nil
}

func (s *service) Find(ctx context.Context, id string, caller auth.Caller) (*Guideline, error) {
	if err := authorize(opFind, caller); err != nil {
		return nil, err
	}
	g, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *service) Create(ctx context.Context, req CreateRequest, caller auth.Caller) (*Guideline, error) {
	if err := authorize(opCreate, caller); err != nil {
		return nil, err
	}

	cmd, err := req.Parse()
	if err != nil {
		return nil, err
	}

	now := s.timestamp()
	g := Guideline{
		ID:          uuid.New(),
		TrustName:   cmd.TrustName,
		Title:       cmd.Title,
		Description: cmd.Description,
		Speciality:  cmd.Speciality,
		Tags:        cmd.Tags,
		IsActive:    true,
		CreatedBy:   caller.Subject(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if cmd.File != nil {
		remote, pages, err := s.upload(ctx, g.ID, cmd.File, now)
		if err != nil {
			return nil, err
		}
		g.Content, g.PageCount = remote, pages
	} else {
		g.Content = Inline{Text: cmd.Text}
	}

	if err := s.store.Insert(ctx, g); err != nil {
		s.discard(ctx, storageKey(g.Content), "compensating blob delete failed")
		return nil, fmt.Errorf("insert guideline: %w", err)
	}

	s.logger.Info(
		"guideline created",
		"id", g.ID,
		"title", g.Title,
		"file_type", g.Content.FileType(),
		"created_by", g.CreatedBy,
	)
	return &g, nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateRequest, caller auth.Caller) (*Guideline, error) {
	if err := authorize(opUpdate, caller); err != nil {
		return nil, err
	}

	cmd, err := req.Parse()
	if err != nil {
		return nil, err
	}

	g, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	previousKey := storageKey(g.Content)
	now := s.timestamp()

	switch {
	case cmd.File != nil:
		remote, pages, err := s.upload(ctx, g.ID, cmd.File, now)
		if err != nil {
			return nil, err
		}
		g.Content, g.PageCount = remote, pages
	case cmd.Text != nil:
		g.Content, g.PageCount = Inline{Text: *cmd.Text}, nil
	}

	cmd.apply(&g)
	subject := caller.Subject()
	g.UpdatedBy = &subject
	g.UpdatedAt = now

	currentKey := storageKey(g.Content)

	if err := s.store.Update(ctx, g); err != nil {
		if currentKey != previousKey {
			s.discard(ctx, currentKey, "compensating blob delete failed")
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update guideline: %w", err)
	}

	if previousKey != currentKey {
		s.discard(ctx, previousKey, "replaced blob delete failed")
	}

	s.logger.Info("guideline updated", "id", g.ID, "updated_by", subject)
	return &g, nil
}

func (s *service) Delete(ctx context.Context, id string, caller auth.Caller) error {
	if err := authorize(opDelete, caller); err != nil {
		return err
	}

	g, err := s.find(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, g.ID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete guideline: %w", err)
	}

	s.discard(ctx, storageKey(g.Content), "blob delete failed after guideline delete")

	s.logger.Info("guideline deleted", "id", g.ID, "deleted_by", caller.Subject())
	return nil
}

func (s *service) Download(ctx context.Context, id string, caller auth.Caller) (*Download, error) {
	if err := authorize(opDownload, caller); err != nil {
		return nil, err
	}

	g, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	key := storageKey(g.Content)
	if key == "" {
		return nil, fmt.Errorf("%w: guideline has no stored file", ErrNotFound)
	}

	body, err := s.files.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%w: stored file missing", ErrNotFound)
		}
		s.logger.Error("file download failed", "key", key, "error", err)
		return nil, ErrStorageFailure
	}

	return &Download{
		Body:        body,
		Filename:    downloadFilename(key),
		ContentType: pdfContentType,
	}, nil
}

func (s *service) Trusts(ctx context.Context, caller auth.Caller) ([]string, error) {
	if err := authorize(opTrusts, caller); err != nil {
		return nil, err
	}

	trusts, err := s.store.Trusts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trusts: %w", err)
	}
	return trusts, nil
}

func (s *service) Specialities() []SpecialityOption {
	return SpecialityOptions()
}

func authorize(op operation, caller auth.Caller) error {
	return auth.Authorize(policy[op], caller)
}

func (s *service) find(ctx context.Context, id string) (Guideline, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return Guideline{}, ErrNotFound
	}

	g, err := s.store.Find(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Guideline{}, err
		}
		return Guideline{}, fmt.Errorf("find guideline: %w", err)
	}
	return g, nil
}

// upload validates and stores a file, returning its remote content and page count.
// Storage errors are logged and reported as ErrStorageFailure.
func (s *service) upload(ctx context.Context, id uuid.UUID, f *File, at time.Time) (Remote, *int, error) {
	if err := checkFile(f, s.maxUploadSize); err != nil {
		return Remote{}, nil, err
	}

	key := buildStorageKey(id, at, f.Filename)

	ref, err := s.files.Upload(ctx, key, bytes.NewReader(f.Data), pdfContentType)
	if err != nil {
		s.logger.Error("file upload failed", "key", key, "error", err)
		return Remote{}, nil, ErrStorageFailure
	}

	return Remote{URL: ref, StorageKey: key}, extractPageCount(s.logger, f.Data), nil
}

// discard deletes a stored object, logging rather than returning failures.
func (s *service) discard(ctx context.Context, key, msg string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn(msg, "key", key, "error", err)
	}
}

// timestamp returns the current time at the precision PostgreSQL stores.
func (s *service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
