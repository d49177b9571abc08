package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"project-service/internal/domain/project"
	"project-service/internal/repository"
	apperrors "project-service/pkg/errors"
)

var projectColumns = []string{
	"id", "slug", "title", "state", "short_address", "status_percentage",
	"about_us_descriptions", "about_us_detail", "floor_plans", "project_images", "amenities",
	"youtube_url", "updated_images_title", "updated_images",
	"location_title", "location_title_text", "location_area",
	"number1", "number2", "email1", "email2", "map_iframe_url",
	"card_location", "card_area_ft", "card_project_type", "card_house", "rera_number",
	"brochure", "card_image", "is_active", "created_at", "updated_at",
}

var sortColumns = map[project.SortField]string{
	project.SortCreatedAt:        "created_at",
	project.SortUpdatedAt:        "updated_at",
	project.SortTitle:            "title",
	project.SortStatusPercentage: "status_percentage",
}

var _ repository.ProjectRepository = (*ProjectRepository)(nil)

type ProjectRepository struct {
	db   *DB
	psql sq.StatementBuilderType
}

func NewProjectRepository(db *DB) *ProjectRepository {
	return &ProjectRepository{
		db:   db,
		psql: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) (*project.Project, error) {
	values, err := projectValues(p)
	if err != nil {
		return nil, err
	}
	values["id"] = uuid.New()
	values["is_active"] = true

	query, args, err := r.psql.Insert(projectsTable).
		SetMap(values).
		Suffix(returningProjectColumns()).
		ToSql()
	if err != nil {
		return nil, errFailedBuildQuery(err)
	}

	created, err := scanProject(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if isSlugViolation(err) {
			return nil, apperrors.SlugConflict(p.Slug)
		}
		return nil, errFailedCreateProject(err)
	}

	return created, nil
}

func (r *ProjectRepository) Update(ctx context.Context, id uuid.UUID, p *project.Project) (*project.Project, error) {
	values, err := projectValues(p)
	if err != nil {
		return nil, err
	}
	values["updated_at"] = sq.Expr("NOW()")

	query, args, err := r.psql.Update(projectsTable).
		SetMap(values).
		Where(sq.Eq{"id": id}).
		Suffix(returningProjectColumns()).
		ToSql()
	if err != nil {
		return nil, errFailedBuildQuery(err)
	}

	updated, err := scanProject(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		if isSlugViolation(err) {
			return nil, apperrors.SlugConflict(p.Slug)
		}
		return nil, errFailedUpdateProject(err)
	}

	return updated, nil
}

func (r *ProjectRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) (*project.Project, error) {
	p, err := r.setActive(ctx, id, active)
	if err != nil && !isNotFound(err) {
		return nil, errFailedSetProjectStatus(err)
	}
	return p, err
}

func (r *ProjectRepository) SoftDelete(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	p, err := r.setActive(ctx, id, false)
	if err != nil && !isNotFound(err) {
		return nil, errFailedSoftDeleteProject(err)
	}
	return p, err
}

func (r *ProjectRepository) setActive(ctx context.Context, id uuid.UUID, active bool) (*project.Project, error) {
	query, args, err := r.psql.Update(projectsTable).
		Set("is_active", active).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		Suffix(returningProjectColumns()).
		ToSql()
	if err != nil {
		return nil, errFailedBuildQuery(err)
	}

	p, err := scanProject(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (r *ProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.psql.Delete(projectsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return errFailedBuildQuery(err)
	}

	result, err := r.db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return errFailedDeleteProject(err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound(errProjectNotFound)
	}

	return nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*project.Project, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetBySlug only resolves active projects; inactive ones are admin-only.
func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*project.Project, error) {
	return r.getOne(ctx, sq.Eq{"slug": slug, "is_active": true})
}

func (r *ProjectRepository) getOne(ctx context.Context, where sq.Eq) (*project.Project, error) {
	query, args, err := r.psql.Select(projectColumns...).From(projectsTable).Where(where).ToSql()
	if err != nil {
		return nil, errFailedBuildQuery(err)
	}

	p, err := scanProject(r.db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound(errProjectNotFound)
		}
		return nil, errFailedGetProject(err)
	}

	return p, nil
}

// SlugExists checks every row, active or not, because the unique index does.
func (r *ProjectRepository) SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	inner := r.psql.Select("1").From(projectsTable).Where(sq.Eq{"slug": slug})
	if excludeID != nil {
		inner = inner.Where(sq.NotEq{"id": *excludeID})
	}

	query, args, err := r.psql.Select().Column(sq.Expr("EXISTS(?)", inner)).ToSql()
	if err != nil {
		return false, errFailedBuildQuery(err)
	}

	var exists bool
	if err := r.db.Pool.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, errFailedCheckSlug(err)
	}

	return exists, nil
}

func (r *ProjectRepository) List(ctx context.Context, filter project.ListFilter) (*project.Page, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	where := listConditions(filter)

	countQuery, countArgs, err := r.psql.Select("COUNT(*)").From(projectsTable).Where(where).ToSql()
	if err != nil {
		return nil, errFailedBuildQuery(err)
	}

	var total int
	if err := r.db.Pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, errFailedCountProjects(err)
	}

	query, args, err := r.psql.Select(projectColumns...).
		From(projectsTable).
		Where(where).
		OrderBy(orderClause(filter)...).
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset())).
		ToSql()
	if err != nil {
		return nil, errFailedBuildQuery(err)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, errFailedListProjects(err)
	}
	defer rows.Close()

	projects := make([]*project.Project, 0, filter.Limit)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, errFailedScanProject(err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errIterateProjects(err)
	}

	return &project.Page{
		Projects:   projects,
		Pagination: project.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

func (r *ProjectRepository) Stats(ctx context.Context) (*project.Stats, error) {
	query, args, err := r.psql.Select("COUNT(*)").
		Column(sq.Expr("COUNT(*) FILTER (WHERE state = ?)", project.StateOnGoing)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE state = ?)", project.StateCompleted)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE card_project_type = ?)", project.TypeResidential)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE card_project_type = ?)", project.TypeCommercial)).
		Column(sq.Expr("COUNT(*) FILTER (WHERE card_project_type = ?)", project.TypePlot)).
		From(projectsTable).
		Where(sq.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return nil, errFailedBuildQuery(err)
	}

	s := &project.Stats{}
	err = r.db.Pool.QueryRow(ctx, query, args...).Scan(
		&s.Total,
		&s.ByState.OnGoing, &s.ByState.Completed,
		&s.ByType.Residential, &s.ByType.Commercial, &s.ByType.Plot,
	)
	if err != nil {
		return nil, errFailedProjectStats(err)
	}

	return s, nil
}

func listConditions(filter project.ListFilter) sq.And {
	where := sq.And{}
	if !filter.IncludeInactive {
		where = append(where, sq.Eq{"is_active": true})
	}
	if filter.State != "" {
		where = append(where, sq.Eq{"state": filter.State})
	}
	if filter.Type != "" {
		where = append(where, sq.Eq{"card_project_type": filter.Type})
	}
	if filter.Search != "" {
		pattern := containsPattern(filter.Search)
		where = append(where, sq.Or{
			sq.ILike{"title": pattern},
			sq.ILike{"short_address": pattern},
			sq.ILike{"card_location": pattern},
			sq.ILike{"location_area": pattern},
			sq.ILike{"rera_number": pattern},
		})
	}
	return where
}

func orderClause(filter project.ListFilter) []string {
	column, ok := sortColumns[filter.Sort]
	if !ok {
		column = sortColumns[project.SortCreatedAt]
	}
	direction := " ASC"
	if filter.Descending {
		direction = " DESC"
	}
	// id breaks ties so pages never overlap.
	return []string{column + direction, "id" + direction}
}

func returningProjectColumns() string {
	return "RETURNING " + strings.Join(projectColumns, ", ")
}

func projectValues(p *project.Project) (map[string]any, error) {
	p.EnsureSequences()

	descriptions, err := json.Marshal(p.AboutUsDescriptions)
	if err != nil {
		return nil, errFailedEncodeProject(err)
	}
	about, err := json.Marshal(p.AboutUs)
	if err != nil {
		return nil, errFailedEncodeProject(err)
	}
	floorPlans, err := json.Marshal(p.FloorPlans)
	if err != nil {
		return nil, errFailedEncodeProject(err)
	}
	images, err := json.Marshal(p.ProjectImages)
	if err != nil {
		return nil, errFailedEncodeProject(err)
	}
	amenities, err := json.Marshal(p.Amenities)
	if err != nil {
		return nil, errFailedEncodeProject(err)
	}
	updatedImages, err := json.Marshal(p.UpdatedImages)
	if err != nil {
		return nil, errFailedEncodeProject(err)
	}

	return map[string]any{
		"slug":                  p.Slug,
		"title":                 p.Title,
		"state":                 string(p.State),
		"short_address":         p.ShortAddress,
		"status_percentage":     p.StatusPercentage,
		"about_us_descriptions": descriptions,
		"about_us_detail":       about,
		"floor_plans":           floorPlans,
		"project_images":        images,
		"amenities":             amenities,
		"youtube_url":           p.YoutubeURL,
		"updated_images_title":  p.UpdatedImagesTitle,
		"updated_images":        updatedImages,
		"location_title":        p.LocationTitle,
		"location_title_text":   p.LocationTitleText,
		"location_area":         p.LocationArea,
		"number1":               p.Number1,
		"number2":               p.Number2,
		"email1":                p.Email1,
		"email2":                p.Email2,
		"map_iframe_url":        p.MapIframeURL,
		"card_location":         p.CardLocation,
		"card_area_ft":          p.CardAreaFt,
		"card_project_type":     string(p.CardProjectType),
		"card_house":            p.CardHouse,
		"rera_number":           p.ReraNumber,
		"brochure":              p.Brochure,
		"card_image":            p.CardImage,
	}, nil
}

func scanProject(row pgx.Row) (*project.Project, error) {
	p := &project.Project{}
	var descriptions, about, floorPlans, images, amenities, updatedImages []byte

	err := row.Scan(
		&p.ID, &p.Slug, &p.Title, &p.State, &p.ShortAddress, &p.StatusPercentage,
		&descriptions, &about, &floorPlans, &images, &amenities,
		&p.YoutubeURL, &p.UpdatedImagesTitle, &updatedImages,
		&p.LocationTitle, &p.LocationTitleText, &p.LocationArea,
		&p.Number1, &p.Number2, &p.Email1, &p.Email2, &p.MapIframeURL,
		&p.CardLocation, &p.CardAreaFt, &p.CardProjectType, &p.CardHouse, &p.ReraNumber,
		&p.Brochure, &p.CardImage, &p.IsActive, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	targets := []struct {
		raw []byte
		dst any
	}{
		{descriptions, &p.AboutUsDescriptions},
		{about, &p.AboutUs},
		{floorPlans, &p.FloorPlans},
		{images, &p.ProjectImages},
		{amenities, &p.Amenities},
		{updatedImages, &p.UpdatedImages},
	}
	for _, t := range targets {
		if len(t.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(t.raw, t.dst); err != nil {
			return nil, errFailedDecodeProject(err)
		}
	}
	p.EnsureSequences()

	return p, nil
}

func isNotFound(err error) bool {
	return apperrors.CodeOf(err) == apperrors.CodeNotFound
}
