package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"project-service/internal/audit"
	"project-service/internal/domain/project"
	"project-service/internal/submission"
)

// Consumer-side interfaces defined by handlers

type ProjectService interface {
	Create(ctx context.Context, sub submission.Submission) (*project.Project, error)
	Update(ctx context.Context, id uuid.UUID, sub submission.Submission) (*project.Project, error)
	Delete(ctx context.Context, id uuid.UUID, permanent bool) (*project.Project, error)
	SetStatus(ctx context.Context, id uuid.UUID, active bool) (*project.Project, error)
}

type ProjectReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error)
	GetBySlug(ctx context.Context, slug string) (*project.Project, error)
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, filter project.ListFilter) (*project.Page, error)
	Stats(ctx context.Context) (*project.Stats, error)
}

type ProjectCache interface {
	Get(ctx context.Context, slug string) (*project.Project, bool)
	Set(ctx context.Context, p *project.Project)
	Invalidate(ctx context.Context, slugs ...string)
}

type AuditLogger interface {
	LogFromContext(c echo.Context, resourceID *uuid.UUID, action audit.Action, metadata map[string]any)
	LogError(c echo.Context, resourceID *uuid.UUID, action audit.Action, err error)
}

type AuditReader interface {
	Query(ctx context.Context, filter audit.QueryFilter) ([]*audit.Event, error)
}
