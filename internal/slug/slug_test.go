package slug

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "project-service/pkg/errors"
)

type fakeChecker struct {
	taken   map[string]uuid.UUID
	queries []string
	err     error
}

func (f *fakeChecker) SlugExists(_ context.Context, slug string, excludeID *uuid.UUID) (bool, error) {
	f.queries = append(f.queries, slug)
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.taken[slug]
	if !ok {
		return false, nil
	}
	return excludeID == nil || *excludeID != owner, nil
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Shilp Group — Lakeview Residency!", "shilp-group-lakeview-residency"},
		{"  Sky   Towers  ", "sky-towers"},
		{"A--B", "a-b"},
		{"---", ""},
		{"Phase 2 / Block_C", "phase-2-blockc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestFolder(t *testing.T) {
	assert.Equal(t, "shilp-lakeview", Folder("Shilp Lakeview"))
	assert.Equal(t, "untitled", Folder("!!!"))

	long := Folder(strings.Repeat("abcd ", 20))
	assert.LessOrEqual(t, len(long), 50)
	assert.False(t, strings.HasSuffix(long, "-"))
}

func TestUnique_Sequence(t *testing.T) {
	checker := &fakeChecker{taken: map[string]uuid.UUID{}}
	gen := NewGenerator(checker)
	ctx := context.Background()

	first, err := gen.Unique(ctx, "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "x", first)
	checker.taken[first] = uuid.New()

	second, err := gen.Unique(ctx, "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "x-1", second)
	checker.taken[second] = uuid.New()

	third, err := gen.Unique(ctx, "x", nil)
	require.NoError(t, err)
	assert.Equal(t, "x-2", third)
	assert.Equal(t, []string{"x", "x", "x-1", "x", "x-1", "x-2"}, checker.queries)
}

func TestUnique_ExcludesSelf(t *testing.T) {
	self := uuid.New()
	checker := &fakeChecker{taken: map[string]uuid.UUID{"lakeview": self}}

	got, err := NewGenerator(checker).Unique(context.Background(), "Lakeview", &self)
	require.NoError(t, err)
	assert.Equal(t, "lakeview", got)
}

func TestUnique_EmptyTitle(t *testing.T) {
	_, err := NewGenerator(&fakeChecker{}).Unique(context.Background(), "!!!", nil)
	assert.ErrorIs(t, err, ErrEmptySlug)
}

func TestUnique_StoreError(t *testing.T) {
	boom := errors.New("db down")
	_, err := NewGenerator(&fakeChecker{err: boom}).Unique(context.Background(), "x", nil)
	assert.ErrorIs(t, err, boom)
}

func TestEnsure(t *testing.T) {
	checker := &fakeChecker{taken: map[string]uuid.UUID{"lakeview": uuid.New()}}
	gen := NewGenerator(checker)

	got, err := gen.Ensure(context.Background(), "Sky Towers", nil)
	require.NoError(t, err)
	assert.Equal(t, "sky-towers", got)

	_, err = gen.Ensure(context.Background(), "Lakeview", nil)
	assert.ErrorIs(t, err, apperrors.ErrSlugConflict)

	_, err = gen.Ensure(context.Background(), "  ", nil)
	assert.ErrorIs(t, err, ErrEmptySlug)
}
