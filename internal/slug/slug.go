package slug

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	apperrors "project-service/pkg/errors"
)

const (
	maxFolderLength     = 50
	fallbackFolder      = "untitled"
	defaultMaxAttempts  = 1000
	errSlugCheckFmt     = "failed to check slug %q: %w"
	errSlugExhaustedFmt = "no free slug for %q after %d attempts"
)

var (
	ErrEmptySlug = errors.New("slug is empty after normalization")

	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	hyphens    = regexp.MustCompile(`-+`)
)

// Slugify lowercases s, strips everything but letters, digits, whitespace and
// hyphens, then joins the words with single hyphens.
func Slugify(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = hyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// Folder names the per-project storage directory. It never returns "".
func Folder(title string) string {
	name := Slugify(title)
	if len(name) > maxFolderLength {
		name = strings.TrimRight(name[:maxFolderLength], "-")
	}
	if name == "" {
		return fallbackFolder
	}
	return name
}

// Checker is the part of the project store the generator needs.
type Checker interface {
	SlugExists(ctx context.Context, slug string, excludeID *uuid.UUID) (bool, error)
}

// Generator resolves slugs against persisted projects. It holds no state
// between calls; every attempt is a fresh store query.
type Generator struct {
	checker     Checker
	maxAttempts int
}

func NewGenerator(checker Checker) *Generator {
	return &Generator{checker: checker, maxAttempts: defaultMaxAttempts}
}

// Unique returns Slugify(title), or the first of title-1, title-2, ... that
// no other project uses. Inactive projects keep their slug, so they count as
// users too.
func (g *Generator) Unique(ctx context.Context, title string, excludeID *uuid.UUID) (string, error) {
	base := Slugify(title)
	if base == "" {
		return "", ErrEmptySlug
	}

	candidate := base
	for n := 1; n <= g.maxAttempts; n++ {
		taken, err := g.checker.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf(errSlugCheckFmt, candidate, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}

	return "", fmt.Errorf(errSlugExhaustedFmt, base, g.maxAttempts)
}

// Ensure normalizes an explicitly requested slug and fails with a slug
// conflict when another project already holds it.
func (g *Generator) Ensure(ctx context.Context, requested string, excludeID *uuid.UUID) (string, error) {
	candidate := Slugify(requested)
	if candidate == "" {
		return "", ErrEmptySlug
	}

	taken, err := g.checker.SlugExists(ctx, candidate, excludeID)
	if err != nil {
		return "", fmt.Errorf(errSlugCheckFmt, candidate, err)
	}
	if taken {
		return "", apperrors.SlugConflict(candidate)
	}

	return candidate, nil
}
