package submission

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"project-service/internal/domain/project"
	apperrors "project-service/pkg/errors"
)

// memStore is an in-memory ProjectStore with failure injection.
type memStore struct {
	mu        sync.Mutex
	projects  map[uuid.UUID]*project.Project
	createErr error
	updateErr error
}

func newMemStore() *memStore {
	return &memStore{projects: make(map[uuid.UUID]*project.Project)}
}

func (m *memStore) SlugExists(_ context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slugTaken(slug, excludeID), nil
}

func (m *memStore) slugTaken(slug string, excludeID *uuid.UUID) bool {
	for id, p := range m.projects {
		if p.Slug == slug && (excludeID == nil || *excludeID != id) {
			return true
		}
	}
	return false
}

func (m *memStore) Create(_ context.Context, p *project.Project) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}
	if m.slugTaken(p.Slug, nil) {
		return nil, apperrors.SlugConflict(p.Slug)
	}

	stored := p.Clone()
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.projects[stored.ID] = stored
	return stored.Clone(), nil
}

func (m *memStore) Update(_ context.Context, id uuid.UUID, p *project.Project) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateErr != nil {
		return nil, m.updateErr
	}
	existing, ok := m.projects[id]
	if !ok {
		return nil, apperrors.NotFound("project not found")
	}
	if m.slugTaken(p.Slug, &id) {
		return nil, apperrors.SlugConflict(p.Slug)
	}

	stored := p.Clone()
	stored.ID = id
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	m.projects[id] = stored
	return stored.Clone(), nil
}

func (m *memStore) GetByID(_ context.Context, id uuid.UUID) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.NotFound("project not found")
	}
	return p.Clone(), nil
}

func (m *memStore) SoftDelete(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return m.SetActive(ctx, id, false)
}

func (m *memStore) SetActive(_ context.Context, id uuid.UUID, active bool) (*project.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.projects[id]
	if !ok {
		return nil, apperrors.NotFound("project not found")
	}
	p.IsActive = active
	return p.Clone(), nil
}

func (m *memStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return apperrors.NotFound("project not found")
	}
	delete(m.projects, id)
	return nil
}

func (m *memStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.projects)
}

// staleChecker reports every slug as free, the view of a request whose
// availability check ran before a concurrent insert committed.
type staleChecker struct{}

func (staleChecker) SlugExists(context.Context, string, *uuid.UUID) (bool, error) {
	return false, nil
}
