package submission

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"project-service/internal/domain/project"
	"project-service/internal/form"
	"project-service/internal/slug"
	"project-service/internal/storage"
	apperrors "project-service/pkg/errors"
	"project-service/pkg/validator"
)

// ProjectStore is the persistence the orchestrator writes through.
type ProjectStore interface {
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, p *project.Project) (*project.Project, error)
	Update(ctx context.Context, id uuid.UUID, p *project.Project) (*project.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (*project.Project, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*project.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// FilePlacer writes and removes stored project files.
type FilePlacer interface {
	Place(ctx context.Context, upload *storage.Upload, folder, stem string) (string, error)
	Remove(ctx context.Context, relPath string) error
}

// Logger is satisfied by echo.Logger and gommon's *log.Logger.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Submission is one multipart create or update request: flat form fields and
// the files grouped by the field they were posted under.
type Submission struct {
	Fields map[string]string
	Files  map[storage.Role][]*storage.Upload
}

type Options struct {
	MaxFileSize        int64
	MaxFilesPerRequest int
	RollbackTimeout    time.Duration
}

type Service struct {
	store  ProjectStore
	files  FilePlacer
	slugs  *slug.Generator
	logger Logger
	opts   Options
}

func NewService(store ProjectStore, files FilePlacer, logger Logger, opts Options) *Service {
	return &Service{
		store:  store,
		files:  files,
		slugs:  slug.NewGenerator(store),
		logger: logger,
		opts:   opts,
	}
}

// Create validates the submission, writes its files and inserts the project.
// When anything after the first file write fails, every file written by this
// call is removed before the error is returned.
func (s *Service) Create(ctx context.Context, sub Submission) (p *project.Project, err error) {
	defer func() { observe(operationCreate, err) }()

	draft := form.Normalize(sub.Fields)
	pl := buildPlan(&project.Project{IsActive: true}, nil, draft, sub.Files)

	if issues := append(pl.issues, s.validate(pl.project, sub.Files)...); len(issues) > 0 {
		return nil, apperrors.ValidationFailed(issues)
	}

	resolved, err := s.resolveSlug(ctx, draft.Slug(), pl.project.Title, "", nil)
	if err != nil {
		return nil, err
	}
	pl.project.Slug = resolved
	normalizeContacts(pl.project)
	s.warnIgnored(operationCreate, pl)

	ws := NewWriteSet()
	if err := s.placeFiles(ctx, pl, slug.Folder(pl.project.Title), ws); err != nil {
		s.rollback(ctx, operationCreate, ws)
		return nil, apperrors.FileWriteFailed(errMsgStoreFiles, err)
	}

	created, err := s.store.Create(ctx, pl.project)
	if err != nil {
		s.rollback(ctx, operationCreate, ws)
		return nil, storeError(errMsgSaveProject, err)
	}

	return created, nil
}

// Update merges the submission onto the stored project. Fields and records
// that arrive without a new file keep their stored path. Previous files are
// removed only after the update is persisted, and only those replaced by
// this call.
func (s *Service) Update(ctx context.Context, id uuid.UUID, sub Submission) (p *project.Project, err error) {
	defer func() { observe(operationUpdate, err) }()

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(errMsgLoadProject, err)
	}

	draft := form.Normalize(sub.Fields)
	pl := buildPlan(existing.Clone(), existing, draft, sub.Files)

	if issues := append(pl.issues, s.validate(pl.project, sub.Files)...); len(issues) > 0 {
		return nil, apperrors.ValidationFailed(issues)
	}

	resolved, err := s.resolveSlug(ctx, draft.Slug(), pl.project.Title, existing.Slug, &id)
	if err != nil {
		return nil, err
	}
	pl.project.Slug = resolved
	normalizeContacts(pl.project)
	s.warnIgnored(operationUpdate, pl)

	ws := NewWriteSet()
	if err := s.placeFiles(ctx, pl, slug.Folder(pl.project.Title), ws); err != nil {
		s.rollback(ctx, operationUpdate, ws)
		return nil, apperrors.FileWriteFailed(errMsgStoreFiles, err)
	}

	updated, err := s.store.Update(ctx, id, pl.project)
	if err != nil {
		s.rollback(ctx, operationUpdate, ws)
		return nil, storeError(errMsgSaveProject, err)
	}

	s.removeSuperseded(ctx, pl.superseded())
	return updated, nil
}

// Delete soft-deletes by default. A permanent delete removes every file the
// project references and then the record itself.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, permanent bool) (p *project.Project, err error) {
	defer func() { observe(operationDelete, err) }()

	if !permanent {
		deleted, err := s.store.SoftDelete(ctx, id)
		if err != nil {
			return nil, storeError(errMsgDeleteProject, err)
		}
		return deleted, nil
	}

	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(errMsgLoadProject, err)
	}

	for _, path := range existing.FilePaths() {
		if err := s.files.Remove(ctx, path); err != nil {
			s.logger.Warnf(logSweepFailedFmt, path, id, err)
		}
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return nil, storeError(errMsgDeleteProject, err)
	}

	return existing, nil
}

// SetStatus flips the active flag without touching any file.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, active bool) (p *project.Project, err error) {
	defer func() { observe(operationStatus, err) }()

	updated, err := s.store.SetActive(ctx, id, active)
	if err != nil {
		return nil, storeError(errMsgUpdateStatus, err)
	}
	return updated, nil
}

// resolveSlug keeps current unless a different slug is requested. With no
// current slug it derives one from the title.
func (s *Service) resolveSlug(ctx context.Context, requested, title, current string, excludeID *uuid.UUID) (string, error) {
	var (
		resolved string
		err      error
	)

	switch {
	case requested != "" && (current == "" || slug.Slugify(requested) != current):
		resolved, err = s.slugs.Ensure(ctx, requested, excludeID)
	case current != "":
		return current, nil
	default:
		resolved, err = s.slugs.Unique(ctx, title, excludeID)
	}

	if err != nil {
		if errors.Is(err, slug.ErrEmptySlug) {
			return "", apperrors.ValidationFailed([]apperrors.FieldError{{Field: form.FieldSlug, Message: msgSlugEmpty}})
		}
		if errors.Is(err, apperrors.ErrSlugConflict) {
			return "", err
		}
		return "", apperrors.PersistenceFailed(errMsgCheckSlug, err)
	}

	return resolved, nil
}

// placeFiles writes every pending upload concurrently. Paths are assigned to
// the project only once all writes succeed. Writes are detached from request
// cancellation.
func (s *Service) placeFiles(ctx context.Context, pl *plan, folder string, ws *WriteSet) error {
	if len(pl.placements) == 0 {
		return nil
	}

	paths := make([]string, len(pl.placements))
	g, gctx := errgroup.WithContext(context.WithoutCancel(ctx))
	g.SetLimit(maxParallelWrites)

	for i, pm := range pl.placements {
		g.Go(func() error {
			path, err := s.files.Place(gctx, pm.upload, folder, pm.stem)
			if err != nil {
				return fmt.Errorf(errPlaceFileFmt, pm.role, err)
			}
			ws.Add(path)
			paths[i] = path
			filesPlacedTotal.WithLabelValues(string(pm.role)).Inc()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for i, pm := range pl.placements {
		*pm.target = paths[i]
	}
	return nil
}

// rollback runs on a fresh bounded context; the request context may already
// be cancelled.
func (s *Service) rollback(ctx context.Context, operation string, ws *WriteSet) {
	if ws.Len() == 0 {
		return
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.RollbackTimeout)
	defer cancel()

	written := ws.Paths()
	removed, err := ws.Rollback(cleanupCtx, s.files)
	rollbackFilesTotal.WithLabelValues("removed").Add(float64(removed))
	if err != nil {
		rollbackFilesTotal.WithLabelValues("failed").Add(float64(ws.Len()))
		s.logger.Errorf(logRollbackIncompleteFmt, operation, err)
		return
	}
	s.logger.Warnf(logRollbackFmt, operation, removed, written)
}

func (s *Service) removeSuperseded(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}

	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.RollbackTimeout)
	defer cancel()

	for _, path := range paths {
		if err := s.files.Remove(cleanupCtx, path); err != nil {
			s.logger.Warnf(logSupersededFailedFmt, path, err)
		}
	}
}

func (s *Service) warnIgnored(operation string, pl *plan) {
	if pl.ignored > 0 {
		s.logger.Infof(logIgnoredUploadsFmt, operation, pl.ignored)
	}
}

// normalizeContacts stores phone numbers as +91 followed by ten digits.
func normalizeContacts(p *project.Project) {
	p.Number1 = phonePrefix + validator.NormalizePhone(p.Number1)
	if p.Number2 != "" {
		p.Number2 = phonePrefix + validator.NormalizePhone(p.Number2)
	}
}

// storeError passes NotFound and SlugConflict through and files everything
// else under PersistenceFailed.
func storeError(msg string, err error) error {
	if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrSlugConflict) {
		return err
	}
	return apperrors.PersistenceFailed(msg, err)
}
