package repository

import (
	"context"

	"github.com/google/uuid"

	"project-service/internal/domain/project"
)

// ProjectRepository is everything the service stores about projects. The
// write half is what the submission orchestrator consumes; the read half
// backs the public listing endpoints.
type ProjectRepository interface {
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	Create(ctx context.Context, p *project.Project) (*project.Project, error)
	Update(ctx context.Context, id uuid.UUID, p *project.Project) (*project.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (*project.Project, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (*project.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error

	GetBySlug(ctx context.Context, slug string) (*project.Project, error)
	List(ctx context.Context, filter project.ListFilter) (*project.Page, error)
	Stats(ctx context.Context) (*project.Stats, error)
}
