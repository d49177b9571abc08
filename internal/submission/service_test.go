package submission

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"project-service/internal/domain/project"
	"project-service/internal/slug"
	"project-service/internal/storage"
	apperrors "project-service/pkg/errors"
)

type fixture struct {
	svc   *Service
	store *memStore
	root  string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend, err := storage.NewLocalBackend(t.TempDir())
	require.NoError(t, err)

	store := newMemStore()
	engine := storage.NewEngine(backend, log.New("test"))

	return &fixture{
		svc:   NewService(store, engine, log.New("test"), testOptions()),
		store: store,
		root:  backend.Root(),
	}
}

func testOptions() Options {
	return Options{
		MaxFileSize:        1024,
		MaxFilesPerRequest: 20,
		RollbackTimeout:    5 * time.Second,
	}
}

// failingPlacer fails every placement whose stem has the given prefix.
type failingPlacer struct {
	FilePlacer
	failStem string
}

func (f *failingPlacer) Place(ctx context.Context, upload *storage.Upload, folder, stem string) (string, error) {
	if strings.HasPrefix(stem, f.failStem) {
		return "", errors.New("disk quota exceeded")
	}
	return f.FilePlacer.Place(ctx, upload, folder, stem)
}

func validFields() map[string]string {
	return map[string]string{
		"projectTitle":            "Shilp Lakeview",
		"projectState":            "on-going",
		"shortAddress":            "SG Highway, Ahmedabad",
		"projectStatusPercentage": "40",
		"cardProjectType":         "residential",
		"number1":                 "919812345678",
		"email1":                  "sales@shilp.in",
		"floorPlans[0][title]":    "2 BHK",
		"floorPlans[0][alt]":      "2 BHK plan",
		"projectImages[0][alt]":   "Front elevation",
		"amenities[0][title]":     "Pool",
	}
}

func png(name string) *storage.Upload {
	data := []byte("png:" + name)
	return &storage.Upload{Filename: name, MimeType: "image/png", Size: int64(len(data)), Data: data}
}

func pdf(name string) *storage.Upload {
	data := []byte("%PDF-" + name)
	return &storage.Upload{Filename: name, MimeType: "application/pdf", Size: int64(len(data)), Data: data}
}

func (f *fixture) exists(t *testing.T, rel string) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(f.root, filepath.FromSlash(rel)))
	if errors.Is(err, fs.ErrNotExist) {
		return false
	}
	require.NoError(t, err)
	return true
}

func (f *fixture) fileCount(t *testing.T) int {
	t.Helper()
	count := 0
	err := filepath.WalkDir(f.root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			count++
		}
		return nil
	})
	require.NoError(t, err)
	return count
}

func (f *fixture) create(t *testing.T, files map[storage.Role][]*storage.Upload) *project.Project {
	t.Helper()
	p, err := f.svc.Create(context.Background(), Submission{Fields: validFields(), Files: files})
	require.NoError(t, err)
	return p
}

func TestCreate_StoresFilesUnderProjectFolder(t *testing.T) {
	f := newFixture(t)

	p := f.create(t, map[storage.Role][]*storage.Upload{
		storage.RoleFloorPlanImages: {png("plan.png")},
		storage.RoleProjectImages:   {png("front.png")},
	})

	assert.Equal(t, "shilp-lakeview", p.Slug)
	assert.True(t, p.IsActive)
	require.Len(t, p.FloorPlans, 1)
	require.Len(t, p.ProjectImages, 1)
	assert.True(t, strings.HasPrefix(p.FloorPlans[0].Image, "projects/shilp-lakeview/floorplan_1_"))
	assert.True(t, strings.HasPrefix(p.ProjectImages[0].Image, "projects/shilp-lakeview/project_1_"))
	assert.True(t, f.exists(t, p.FloorPlans[0].Image))
	assert.True(t, f.exists(t, p.ProjectImages[0].Image))
	assert.Equal(t, 2, f.fileCount(t))
	assert.Equal(t, 1, f.store.count())
}

func TestCreate_NormalizesPhones(t *testing.T) {
	f := newFixture(t)
	fields := validFields()
	fields["number2"] = "+91 70123 45678"

	p, err := f.svc.Create(context.Background(), Submission{Fields: fields})
	require.NoError(t, err)

	assert.Equal(t, "+919812345678", p.Number1)
	assert.Equal(t, "+917012345678", p.Number2)
}

func TestCreate_PersistenceFailureRemovesWrittenFiles(t *testing.T) {
	f := newFixture(t)
	f.store.createErr = errors.New("connection reset by peer")

	_, err := f.svc.Create(context.Background(), Submission{
		Fields: validFields(),
		Files: map[storage.Role][]*storage.Upload{
			storage.RoleFloorPlanImages: {png("plan.png")},
			storage.RoleProjectImages:   {png("front.png")},
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.Equal(t, apperrors.CodePersistenceFailed, apperrors.CodeOf(err))
	assert.Equal(t, 0, f.fileCount(t))
	assert.Equal(t, 0, f.store.count())
}

func TestCreate_FileWriteFailureRollsBack(t *testing.T) {
	f := newFixture(t)
	f.svc.files = &failingPlacer{FilePlacer: f.svc.files, failStem: "project_"}

	_, err := f.svc.Create(context.Background(), Submission{
		Fields: validFields(),
		Files: map[storage.Role][]*storage.Upload{
			storage.RoleBrochure:        {pdf("brochure.pdf")},
			storage.RoleFloorPlanImages: {png("plan.png")},
			storage.RoleProjectImages:   {png("front.png")},
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrFileWrite)
	assert.Equal(t, 0, f.fileCount(t))
	assert.Equal(t, 0, f.store.count())
}

func TestCreate_ValidationCollectsEveryViolation(t *testing.T) {
	f := newFixture(t)
	fields := validFields()
	delete(fields, "projectTitle")
	fields["number1"] = "1234567890"
	fields["email1"] = "not-an-email"
	fields["projectState"] = "paused"
	delete(fields, "amenities[0][title]")

	_, err := f.svc.Create(context.Background(), Submission{
		Fields: fields,
		Files: map[storage.Role][]*storage.Upload{
			storage.RoleBrochure:      {png("brochure.png")},
			storage.RoleProjectImages: {png("front.png")},
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	fieldsWithIssues := map[string]bool{}
	for _, fe := range apperrors.FieldsOf(err) {
		fieldsWithIssues[fe.Field] = true
	}
	for _, field := range []string{"projectTitle", "number1", "email1", "projectState", "amenities", "brochure[0]"} {
		assert.True(t, fieldsWithIssues[field], "expected a violation for %s", field)
	}

	assert.Equal(t, 0, f.fileCount(t))
	_, statErr := os.Stat(filepath.Join(f.root, storage.ProjectsDir))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "no directory may be created before validation passes")
}

func TestCreate_RejectsPhoneOutsideMobileRange(t *testing.T) {
	f := newFixture(t)
	fields := validFields()
	fields["number1"] = "1234567890"

	_, err := f.svc.Create(context.Background(), Submission{Fields: fields})
	require.Error(t, err)
	assert.Equal(t, []apperrors.FieldError{{Field: "number1", Message: "phone number must be a 10-digit mobile number starting with 6-9"}}, apperrors.FieldsOf(err))
}

func TestCreate_UploadLimits(t *testing.T) {
	f := newFixture(t)
	big := png("huge.png")
	big.Size = 4096

	_, err := f.svc.Create(context.Background(), Submission{
		Fields: validFields(),
		Files: map[storage.Role][]*storage.Upload{
			storage.RoleProjectImages: {png("1.png"), png("2.png"), png("3.png"), png("4.png"), png("5.png"), png("6.png")},
			storage.RoleCardImage:     {big},
			storage.Role("resume"):    {pdf("cv.pdf")},
		},
	})

	require.Error(t, err)
	fields := map[string]bool{}
	for _, fe := range apperrors.FieldsOf(err) {
		fields[fe.Field] = true
	}
	assert.True(t, fields["projectImageFiles"])
	assert.True(t, fields["cardImage[0]"])
	assert.True(t, fields["resume"])
	assert.Equal(t, 0, f.fileCount(t))
}

func TestCreate_SlugSequence(t *testing.T) {
	f := newFixture(t)

	first := f.create(t, nil)
	second := f.create(t, nil)
	third := f.create(t, nil)

	assert.Equal(t, "shilp-lakeview", first.Slug)
	assert.Equal(t, "shilp-lakeview-1", second.Slug)
	assert.Equal(t, "shilp-lakeview-2", third.Slug)
}

func TestCreate_ExplicitSlugConflict(t *testing.T) {
	f := newFixture(t)
	f.create(t, nil)

	fields := validFields()
	fields["projectTitle"] = "Another Project"
	fields["slug"] = "Shilp Lakeview"

	_, err := f.svc.Create(context.Background(), Submission{
		Fields: fields,
		Files:  map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card.png")}},
	})

	assert.ErrorIs(t, err, apperrors.ErrSlugConflict)
	assert.Equal(t, 0, f.fileCount(t))
}

func TestCreate_StoreSlugConflictRollsBack(t *testing.T) {
	f := newFixture(t)
	existing := f.create(t, map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card.png")}})
	f.svc.slugs = slug.NewGenerator(staleChecker{})
	before := f.fileCount(t)

	_, err := f.svc.Create(context.Background(), Submission{
		Fields: validFields(),
		Files: map[storage.Role][]*storage.Upload{
			storage.RoleBrochure:  {pdf("brochure.pdf")},
			storage.RoleCardImage: {png("card-2.png")},
		},
	})

	assert.ErrorIs(t, err, apperrors.ErrSlugConflict)
	assert.Equal(t, apperrors.CodeSlugConflict, apperrors.CodeOf(err))
	assert.Equal(t, before, f.fileCount(t))
	assert.True(t, f.exists(t, existing.CardImage))
	assert.Equal(t, 1, f.store.count())
}

func TestCreate_ExcessFilesAreNotWritten(t *testing.T) {
	f := newFixture(t)

	p := f.create(t, map[storage.Role][]*storage.Upload{
		storage.RoleFloorPlanImages: {png("a.png"), png("b.png"), png("c.png")},
	})

	require.Len(t, p.FloorPlans, 1)
	assert.NotEmpty(t, p.FloorPlans[0].Image)
	assert.Equal(t, 1, f.fileCount(t))
}

func TestCreate_RecordWithOnlyAFileIsKept(t *testing.T) {
	f := newFixture(t)
	fields := validFields()
	fields["projectImages[1][alt]"] = ""

	p, err := f.svc.Create(context.Background(), Submission{
		Fields: fields,
		Files:  map[storage.Role][]*storage.Upload{storage.RoleProjectImages: {png("a.png"), png("b.png")}},
	})
	require.NoError(t, err)

	require.Len(t, p.ProjectImages, 2)
	assert.Equal(t, "", p.ProjectImages[1].Alt)
	assert.Contains(t, p.ProjectImages[1].Image, "project_2_")
}

func TestUpdate_ReplacingCardImageKeepsBrochure(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, map[storage.Role][]*storage.Upload{
		storage.RoleBrochure:  {pdf("brochure.pdf")},
		storage.RoleCardImage: {png("card-old.png")},
	})

	after, err := f.svc.Update(context.Background(), before.ID, Submission{
		Files: map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card-new.png")}},
	})
	require.NoError(t, err)

	assert.NotEqual(t, before.CardImage, after.CardImage)
	assert.True(t, f.exists(t, after.CardImage))
	assert.False(t, f.exists(t, before.CardImage))
	assert.Equal(t, before.Brochure, after.Brochure)
	assert.True(t, f.exists(t, after.Brochure))
}

func TestUpdate_PersistenceFailureKeepsPreviousFiles(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card-old.png")}})
	f.store.updateErr = errors.New("deadlock detected")

	_, err := f.svc.Update(context.Background(), before.ID, Submission{
		Files: map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card-new.png")}},
	})

	assert.ErrorIs(t, err, apperrors.ErrPersistence)
	assert.True(t, f.exists(t, before.CardImage))
	assert.Equal(t, 1, f.fileCount(t))

	stored, err := f.store.GetByID(context.Background(), before.ID)
	require.NoError(t, err)
	assert.Equal(t, before.CardImage, stored.CardImage)
}

func TestUpdate_SequenceKeepsPreviousPathsByPosition(t *testing.T) {
	f := newFixture(t)
	fields := validFields()
	fields["floorPlans[1][title]"] = "3 BHK"

	before, err := f.svc.Create(context.Background(), Submission{
		Fields: fields,
		Files:  map[storage.Role][]*storage.Upload{storage.RoleFloorPlanImages: {png("a.png"), png("b.png")}},
	})
	require.NoError(t, err)
	require.Len(t, before.FloorPlans, 2)

	after, err := f.svc.Update(context.Background(), before.ID, Submission{
		Fields: map[string]string{
			"floorPlans[0][title]": "2 BHK Deluxe",
			"floorPlans[1][title]": "3 BHK",
		},
		Files: map[storage.Role][]*storage.Upload{storage.RoleFloorPlanImages: {png("a2.png")}},
	})
	require.NoError(t, err)

	require.Len(t, after.FloorPlans, 2)
	assert.Equal(t, "2 BHK Deluxe", after.FloorPlans[0].Title)
	assert.NotEqual(t, before.FloorPlans[0].Image, after.FloorPlans[0].Image)
	assert.Equal(t, before.FloorPlans[1].Image, after.FloorPlans[1].Image)
	assert.False(t, f.exists(t, before.FloorPlans[0].Image))
	assert.True(t, f.exists(t, after.FloorPlans[0].Image))
	assert.True(t, f.exists(t, after.FloorPlans[1].Image))
}

func TestUpdate_ScalarsOnlyTouchPostedFields(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, nil)

	after, err := f.svc.Update(context.Background(), before.ID, Submission{
		Fields: map[string]string{"projectStatusPercentage": "75", "reraNumber": "PR/GJ/AHMEDABAD/123"},
	})
	require.NoError(t, err)

	assert.Equal(t, 75, after.StatusPercentage)
	assert.Equal(t, "PR/GJ/AHMEDABAD/123", after.ReraNumber)
	assert.Equal(t, before.Title, after.Title)
	assert.Equal(t, before.Slug, after.Slug)
	assert.Equal(t, "+919812345678", after.Number1)
}

func TestUpdate_ExplicitSlug(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, nil)
	second := f.create(t, nil)

	_, err := f.svc.Update(context.Background(), second.ID, Submission{Fields: map[string]string{"slug": first.Slug}})
	assert.ErrorIs(t, err, apperrors.ErrSlugConflict)

	renamed, err := f.svc.Update(context.Background(), second.ID, Submission{Fields: map[string]string{"slug": "Lakeview Phase 2"}})
	require.NoError(t, err)
	assert.Equal(t, "lakeview-phase-2", renamed.Slug)

	same, err := f.svc.Update(context.Background(), second.ID, Submission{Fields: map[string]string{"slug": "lakeview-phase-2"}})
	require.NoError(t, err)
	assert.Equal(t, "lakeview-phase-2", same.Slug)
}

func TestUpdate_StoreSlugConflictRollsBack(t *testing.T) {
	f := newFixture(t)
	first := f.create(t, nil)
	second := f.create(t, map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card-old.png")}})
	f.svc.slugs = slug.NewGenerator(staleChecker{})
	before := f.fileCount(t)

	_, err := f.svc.Update(context.Background(), second.ID, Submission{
		Fields: map[string]string{"slug": first.Slug},
		Files:  map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card-new.png")}},
	})

	assert.ErrorIs(t, err, apperrors.ErrSlugConflict)
	assert.Equal(t, before, f.fileCount(t))
	assert.True(t, f.exists(t, second.CardImage))

	stored, err := f.store.GetByID(context.Background(), second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.Slug, stored.Slug)
	assert.Equal(t, second.CardImage, stored.CardImage)
}

func TestUpdate_DeleteAboutImage(t *testing.T) {
	f := newFixture(t)
	before := f.create(t, map[storage.Role][]*storage.Upload{storage.RoleAboutUsImage: {png("about.png")}})
	require.NotEmpty(t, before.AboutUs.Image.URL)

	after, err := f.svc.Update(context.Background(), before.ID, Submission{
		Fields: map[string]string{"deleteAboutImage": "true"},
	})
	require.NoError(t, err)

	assert.Empty(t, after.AboutUs.Image.URL)
	assert.False(t, f.exists(t, before.AboutUs.Image.URL))
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Update(context.Background(), uuid.New(), Submission{
		Files: map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card.png")}},
	})

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Equal(t, 0, f.fileCount(t))
}

func TestDelete_SoftKeepsFiles(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, map[storage.Role][]*storage.Upload{
		storage.RoleBrochure:  {pdf("brochure.pdf")},
		storage.RoleCardImage: {png("card.png")},
	})

	deleted, err := f.svc.Delete(context.Background(), p.ID, false)
	require.NoError(t, err)

	assert.False(t, deleted.IsActive)
	assert.True(t, f.exists(t, p.Brochure))
	assert.True(t, f.exists(t, p.CardImage))
	assert.Equal(t, 1, f.store.count())
}

func TestDelete_HardRemovesEveryReferencedFile(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, map[storage.Role][]*storage.Upload{
		storage.RoleBrochure:        {pdf("brochure.pdf")},
		storage.RoleCardImage:       {png("card.png")},
		storage.RoleAboutUsImage:    {png("about.png")},
		storage.RoleFloorPlanImages: {png("plan.png")},
		storage.RoleProjectImages:   {png("front.png")},
		storage.RoleAmenityFiles:    {png("pool.png")},
	})
	require.Equal(t, 6, f.fileCount(t))

	_, err := f.svc.Delete(context.Background(), p.ID, true)
	require.NoError(t, err)

	assert.Equal(t, 0, f.fileCount(t))
	assert.Equal(t, 0, f.store.count())
}

func TestDelete_HardTolerateMissingFiles(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card.png")}})
	require.NoError(t, os.Remove(filepath.Join(f.root, filepath.FromSlash(p.CardImage))))

	_, err := f.svc.Delete(context.Background(), p.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.count())
}

func TestDelete_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Delete(context.Background(), uuid.New(), false)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = f.svc.Delete(context.Background(), uuid.New(), true)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	p := f.create(t, map[storage.Role][]*storage.Upload{storage.RoleCardImage: {png("card.png")}})

	off, err := f.svc.SetStatus(context.Background(), p.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsActive)

	on, err := f.svc.SetStatus(context.Background(), p.ID, true)
	require.NoError(t, err)
	assert.True(t, on.IsActive)
	assert.True(t, f.exists(t, p.CardImage))
}
