package storage

import (
	"context"
	"fmt"

	"project-service/pkg/validator"
)

// Backend stores opaque blobs under slash-separated keys relative to its root.
type Backend interface {
	Write(ctx context.Context, key string, data []byte, contentType string) error
	// Remove fails with an error wrapping fs.ErrNotExist when key is absent.
	Remove(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// Upload is one file received with a submission.
type Upload struct {
	Filename string
	MimeType string
	Size     int64
	Data     []byte
}

// Role is the multipart field a file arrived under. It decides the stored
// filename stem, how many files the field accepts, and which media it takes.
type Role string

const (
	RoleBrochure        Role = "brochure"
	RoleAboutUsImage    Role = "aboutUsImage"
	RoleCardImage       Role = "cardImage"
	RoleFloorPlanImages Role = "floorPlanImages"
	RoleProjectImages   Role = "projectImageFiles"
	RoleAmenityFiles    Role = "amenityFiles"
	RoleUpdatedImages   Role = "updatedImageFiles"
)

type roleSpec struct {
	stem       string
	maxCount   int
	kind       validator.MediaKind
	positional bool
}

var roleSpecs = map[Role]roleSpec{
	RoleBrochure:        {stem: "brochure", maxCount: 1, kind: validator.MediaPDF},
	RoleAboutUsImage:    {stem: "about", maxCount: 1, kind: validator.MediaImage},
	RoleCardImage:       {stem: "card", maxCount: 1, kind: validator.MediaImage},
	RoleFloorPlanImages: {stem: "floorplan", maxCount: 10, kind: validator.MediaImage, positional: true},
	RoleProjectImages:   {stem: "project", maxCount: 5, kind: validator.MediaImage, positional: true},
	RoleAmenityFiles:    {stem: "amenity", maxCount: 20, kind: validator.MediaImage, positional: true},
	RoleUpdatedImages:   {stem: "updated", maxCount: 3, kind: validator.MediaImage, positional: true},
}

// Roles lists every accepted role in a stable order.
func Roles() []Role {
	return []Role{
		RoleBrochure,
		RoleAboutUsImage,
		RoleCardImage,
		RoleFloorPlanImages,
		RoleProjectImages,
		RoleAmenityFiles,
		RoleUpdatedImages,
	}
}

func (r Role) Valid() bool {
	_, ok := roleSpecs[r]
	return ok
}

func (r Role) MaxCount() int {
	return roleSpecs[r].maxCount
}

func (r Role) Kind() validator.MediaKind {
	return roleSpecs[r].kind
}

// Stem is the filename prefix for the file at the given 1-based position.
// Single-file roles ignore position.
func (r Role) Stem(position int) string {
	spec := roleSpecs[r]
	if !spec.positional {
		return spec.stem
	}
	return fmt.Sprintf("%s_%d", spec.stem, position)
}
