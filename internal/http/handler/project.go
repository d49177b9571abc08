package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"project-service/internal/audit"
	"project-service/internal/domain/project"
	"project-service/internal/slug"
	apperrors "project-service/pkg/errors"
)

type Options struct {
	MaxFileSize int64
	PageSize    int
	MaxPageSize int
}

type ProjectHandler struct {
	service     ProjectService
	reader      ProjectReader
	cache       ProjectCache
	auditLogger AuditLogger
	auditReader AuditReader
	opts        Options
}

func NewProjectHandler(
	service ProjectService,
	reader ProjectReader,
	cache ProjectCache,
	auditLogger AuditLogger,
	auditReader AuditReader,
	opts Options,
) *ProjectHandler {
	return &ProjectHandler{
		service:     service,
		reader:      reader,
		cache:       cache,
		auditLogger: auditLogger,
		auditReader: auditReader,
		opts:        opts,
	}
}

type statusRequest struct {
	IsActive *bool `json:"isActive"`
}

type slugAvailability struct {
	Slug      string `json:"slug"`
	Available bool   `json:"available"`
}

func (h *ProjectHandler) CreateProject(c echo.Context) error {
	sub, err := decodeSubmission(c, h.opts.MaxFileSize)
	if err != nil {
		return err
	}

	p, err := h.service.Create(c.Request().Context(), sub)
	if err != nil {
		h.auditLogger.LogError(c, nil, audit.ActionCreate, err)
		return err
	}

	h.auditLogger.LogFromContext(c, &p.ID, audit.ActionCreate, map[string]any{"slug": p.Slug})
	return respondMessage(c, http.StatusCreated, msgProjectCreated, p)
}

func (h *ProjectHandler) UpdateProject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	previous, err := h.reader.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}

	sub, err := decodeSubmission(c, h.opts.MaxFileSize)
	if err != nil {
		return err
	}

	p, err := h.service.Update(c.Request().Context(), id, sub)
	if err != nil {
		h.auditLogger.LogError(c, &id, audit.ActionUpdate, err)
		return err
	}

	h.cache.Invalidate(c.Request().Context(), previous.Slug, p.Slug)
	h.auditLogger.LogFromContext(c, &p.ID, audit.ActionUpdate, map[string]any{
		"slug":         p.Slug,
		"previousSlug": previous.Slug,
	})
	return respondMessage(c, http.StatusOK, msgProjectUpdated, p)
}

// DeleteProject deactivates by default; ?permanent=true removes the record
// and its files.
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	permanent := false
	if v := c.QueryParam(queryPermanent); v != "" {
		permanent, err = strconv.ParseBool(v)
		if err != nil {
			return apperrors.BadRequest(msgInvalidPermanent)
		}
	}

	action, message := audit.ActionDelete, msgProjectDeactivated
	if permanent {
		action, message = audit.ActionPurge, msgProjectDeleted
	}

	p, err := h.service.Delete(c.Request().Context(), id, permanent)
	if err != nil {
		h.auditLogger.LogError(c, &id, action, err)
		return err
	}

	h.cache.Invalidate(c.Request().Context(), p.Slug)
	h.auditLogger.LogFromContext(c, &id, action, map[string]any{"slug": p.Slug})
	return respondMessage(c, http.StatusOK, message, p)
}

func (h *ProjectHandler) SetProjectStatus(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req statusRequest
	if err := bindStrictJSON(c, &req); err != nil {
		return err
	}
	if req.IsActive == nil {
		return apperrors.ValidationFailed([]apperrors.FieldError{{Field: "isActive", Message: msgIsActiveRequired}})
	}

	p, err := h.service.SetStatus(c.Request().Context(), id, *req.IsActive)
	if err != nil {
		h.auditLogger.LogError(c, &id, audit.ActionStatus, err)
		return err
	}

	h.cache.Invalidate(c.Request().Context(), p.Slug)
	h.auditLogger.LogFromContext(c, &id, audit.ActionStatus, map[string]any{"isActive": p.IsActive})

	message := msgProjectDeactivated
	if p.IsActive {
		message = msgProjectActivated
	}
	return respondMessage(c, http.StatusOK, message, p)
}

func (h *ProjectHandler) ListProjects(c echo.Context) error {
	filter, err := parseListFilter(c, h.opts.PageSize, h.opts.MaxPageSize)
	if err != nil {
		return err
	}

	page, err := h.reader.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return respondPage(c, http.StatusOK, page)
}

func (h *ProjectHandler) SearchProjects(c echo.Context) error {
	term := strings.TrimSpace(c.QueryParam(querySearchQ))
	if len([]rune(term)) < minSearchLength {
		return apperrors.BadRequest(msgSearchTermTooShort)
	}

	filter, err := parseListFilter(c, h.opts.PageSize, h.opts.MaxPageSize)
	if err != nil {
		return err
	}
	filter.Search = term

	page, err := h.reader.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       page.Projects,
		Pagination: &page.Pagination,
		SearchTerm: term,
	})
}

func (h *ProjectHandler) ListByState(c echo.Context) error {
	state := project.State(strings.ToLower(c.Param(paramState)))
	if err := state.Validate(); err != nil {
		return apperrors.BadRequest(err.Error())
	}

	filter, err := parseListFilter(c, h.opts.PageSize, h.opts.MaxPageSize)
	if err != nil {
		return err
	}
	filter.State = state

	page, err := h.reader.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return respondPage(c, http.StatusOK, page)
}

func (h *ProjectHandler) ListByType(c echo.Context) error {
	projectType := project.Type(strings.ToLower(c.Param(paramType)))
	if err := projectType.Validate(); err != nil {
		return apperrors.BadRequest(err.Error())
	}

	filter, err := parseListFilter(c, h.opts.PageSize, h.opts.MaxPageSize)
	if err != nil {
		return err
	}
	filter.Type = projectType

	page, err := h.reader.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}

	return respondPage(c, http.StatusOK, page)
}

func (h *ProjectHandler) GetStats(c echo.Context) error {
	stats, err := h.reader.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, stats)
}

func (h *ProjectHandler) GetProject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	p, err := h.reader.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respondData(c, http.StatusOK, p)
}

// GetProjectBySlug is the public detail page lookup and is served through
// the project cache.
func (h *ProjectHandler) GetProjectBySlug(c echo.Context) error {
	s := strings.TrimSpace(c.Param(paramSlug))
	if s == "" {
		return apperrors.BadRequest(msgSlugRequired)
	}

	ctx := c.Request().Context()
	if p, ok := h.cache.Get(ctx, s); ok {
		return respondData(c, http.StatusOK, p)
	}

	p, err := h.reader.GetBySlug(ctx, s)
	if err != nil {
		return err
	}

	h.cache.Set(ctx, p)
	return respondData(c, http.StatusOK, p)
}

func (h *ProjectHandler) CheckSlugAvailable(c echo.Context) error {
	normalized := slug.Slugify(c.QueryParam(paramSlug))
	if normalized == "" {
		return apperrors.BadRequest(msgSlugRequired)
	}

	var excludeID *uuid.UUID
	if v := c.QueryParam(queryExclude); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return apperrors.BadRequest(msgInvalidProjectID)
		}
		excludeID = &id
	}

	exists, err := h.reader.SlugExists(c.Request().Context(), normalized, excludeID)
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, slugAvailability{Slug: normalized, Available: !exists})
}

// ProjectHistory lists the audit trail of one project, newest first.
func (h *ProjectHandler) ProjectHistory(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	filter, err := parseListFilter(c, h.opts.PageSize, h.opts.MaxPageSize)
	if err != nil {
		return err
	}

	events, err := h.auditReader.Query(c.Request().Context(), audit.QueryFilter{
		ResourceID: &id,
		Limit:      filter.Limit,
		Offset:     filter.Offset(),
	})
	if err != nil {
		return err
	}

	return respondData(c, http.StatusOK, events)
}
