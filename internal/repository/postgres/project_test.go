package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"project-service/internal/config"
	"project-service/internal/domain/project"
	apperrors "project-service/pkg/errors"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("skipping integration test: TEST_INTEGRATION not set")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("projects_test"),
		postgres.WithUsername("projects"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	portNum, err := strconv.Atoi(port.Port())
	require.NoError(t, err)

	cfg := &config.DatabaseConfig{
		Host:     host,
		Port:     portNum,
		Database: "projects_test",
		User:     "projects",
		Password: "test-password",
		SSLMode:  "disable",
		MaxConns: 5,
		MinConns: 1,
	}

	version, err := Migrate(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	db, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	return db
}

func sampleProject(title, slug string) *project.Project {
	return &project.Project{
		Slug:             slug,
		Title:            title,
		State:            project.StateOnGoing,
		ShortAddress:     "Sector 21, Pune",
		StatusPercentage: 40,
		AboutUsDescriptions: []project.Description{
			{ID: "d0", Text: "Riverside towers"},
		},
		AboutUs: project.AboutUsDetail{
			Description1: "first",
			Image:        project.AboutImage{URL: "projects/x/about_1.png", Alt: "about"},
		},
		FloorPlans:      []project.FloorPlan{{Title: "2BHK", Alt: "plan", Image: "projects/x/floorplan_0.png"}},
		ProjectImages:   []project.Image{{Alt: "front", Image: "projects/x/project_0.png"}},
		Amenities:       []project.Amenity{{Title: "Pool", Alt: "pool", Icon: "projects/x/amenity_0.svg"}},
		Number1:         "+919876543210",
		Email1:          "sales@example.com",
		CardLocation:    "Baner",
		CardProjectType: project.TypeResidential,
	}
}

func TestProjectRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleProject("Skyline Heights", "skyline-heights"))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.True(t, created.IsActive)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Skyline Heights", got.Title)
	assert.Equal(t, created.FloorPlans, got.FloorPlans)
	assert.Equal(t, "projects/x/about_1.png", got.AboutUs.Image.URL)
	assert.Empty(t, got.UpdatedImages)
	assert.NotNil(t, got.UpdatedImages)

	bySlug, err := repo.GetBySlug(ctx, "skyline-heights")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestProjectRepository_SlugUniqueness(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, sampleProject("Green Acres", "green-acres"))
	require.NoError(t, err)

	exists, err := repo.SlugExists(ctx, "green-acres", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SlugExists(ctx, "green-acres", &first.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = repo.Create(ctx, sampleProject("Green Acres", "green-acres"))
	assert.ErrorIs(t, err, apperrors.ErrSlugConflict)

	// Deactivated projects still hold their slug.
	_, err = repo.SoftDelete(ctx, first.ID)
	require.NoError(t, err)
	exists, err = repo.SlugExists(ctx, "green-acres", nil)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestProjectRepository_UpdateAndStatus(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, sampleProject("Lake View", "lake-view"))
	require.NoError(t, err)

	changed := created.Clone()
	changed.State = project.StateCompleted
	changed.StatusPercentage = 100
	changed.UpdatedImages = []project.Image{{Alt: "handover", Image: "projects/x/updated_0.png"}}

	updated, err := repo.Update(ctx, created.ID, changed)
	require.NoError(t, err)
	assert.Equal(t, project.StateCompleted, updated.State)
	assert.Len(t, updated.UpdatedImages, 1)
	assert.False(t, updated.UpdatedAt.Before(created.UpdatedAt))

	inactive, err := repo.SetActive(ctx, created.ID, false)
	require.NoError(t, err)
	assert.False(t, inactive.IsActive)

	_, err = repo.GetBySlug(ctx, "lake-view")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = repo.Update(ctx, uuid.New(), changed)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, repo.Delete(ctx, created.ID))
	assert.ErrorIs(t, repo.Delete(ctx, created.ID), apperrors.ErrNotFound)
}

func TestProjectRepository_ListAndStats(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProjectRepository(db)
	ctx := context.Background()

	a := sampleProject("Alpha Residency", "alpha-residency")
	b := sampleProject("Beta Plaza", "beta-plaza")
	b.CardProjectType = project.TypeCommercial
	b.State = project.StateCompleted
	c := sampleProject("Gamma 100% Plots", "gamma-plots")
	c.CardProjectType = project.TypePlot

	for _, p := range []*project.Project{a, b, c} {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	page, err := repo.List(ctx, project.ListFilter{Sort: project.SortTitle, Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Projects, 2)
	assert.Equal(t, "Alpha Residency", page.Projects[0].Title)
	assert.Equal(t, 3, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)
	assert.True(t, page.Pagination.HasNext)

	page, err = repo.List(ctx, project.ListFilter{State: project.StateCompleted})
	require.NoError(t, err)
	require.Len(t, page.Projects, 1)
	assert.Equal(t, "Beta Plaza", page.Projects[0].Title)

	page, err = repo.List(ctx, project.ListFilter{Type: project.TypePlot})
	require.NoError(t, err)
	require.Len(t, page.Projects, 1)

	// Wildcards in the search term match literally.
	page, err = repo.List(ctx, project.ListFilter{Search: "100%"})
	require.NoError(t, err)
	require.Len(t, page.Projects, 1)
	assert.Equal(t, "gamma-plots", page.Projects[0].Slug)

	page, err = repo.List(ctx, project.ListFilter{Search: "baner"})
	require.NoError(t, err)
	assert.Len(t, page.Projects, 3)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.ByState.OnGoing)
	assert.Equal(t, 1, stats.ByState.Completed)
	assert.Equal(t, 1, stats.ByType.Residential)
	assert.Equal(t, 1, stats.ByType.Commercial)
	assert.Equal(t, 1, stats.ByType.Plot)
}

func TestOrderClause(t *testing.T) {
	assert.Equal(t, []string{"created_at ASC", "id ASC"}, orderClause(project.ListFilter{}))
	assert.Equal(t, []string{"title DESC", "id DESC"},
		orderClause(project.ListFilter{Sort: project.SortTitle, Descending: true}))
	assert.Equal(t, []string{"created_at ASC", "id ASC"},
		orderClause(project.ListFilter{Sort: project.SortField("password")}))
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, `%50\%\_off\\%`, containsPattern(`50%_off\`))
	assert.Equal(t, "%lakeview%", containsPattern("lakeview"))
}

func TestIsSlugViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"slug index", &pgconn.PgError{Code: "23505", ConstraintName: "projects_slug_key"}, true},
		{"wrapped", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "projects_slug_key"}), true},
		{"other unique index", &pgconn.PgError{Code: "23505", ConstraintName: "projects_pkey"}, false},
		{"not null", &pgconn.PgError{Code: "23502", ConstraintName: "projects_slug_key"}, false},
		{"plain", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isSlugViolation(tt.err))
		})
	}
}
