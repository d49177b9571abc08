package submission

import (
	"project-service/internal/domain/project"
	"project-service/internal/form"
	"project-service/internal/storage"
	apperrors "project-service/pkg/errors"
)

// placement is one upload waiting to be written; its path lands in target.
type placement struct {
	role     storage.Role
	upload   *storage.Upload
	stem     string
	target   *string
	previous string
}

// plan is the merged project before any file is written, plus the writes
// that will fill in its paths.
type plan struct {
	project    *project.Project
	placements []*placement
	cleared    []string
	ignored    int
	issues     []apperrors.FieldError
}

// buildPlan merges the draft onto base. previous is nil on create. Nth upload
// of a role goes to the Nth record; uploads beyond the record count are not
// placed, records beyond the upload count keep their previous path.
func buildPlan(base, previous *project.Project, d *form.Draft, files map[storage.Role][]*storage.Upload) *plan {
	pl := &plan{project: base}
	if previous == nil {
		previous = &project.Project{}
	}

	pl.issues = d.Apply(base)

	base.FloorPlans = planSequence(pl, storage.RoleFloorPlanImages,
		d.HasSequence(form.PrefixFloorPlans), d.FloorPlans, previous.FloorPlans, files[storage.RoleFloorPlanImages],
		func(r *project.FloorPlan) *string { return &r.Image },
		func(r project.FloorPlan) bool { return r.Title != "" },
	)
	base.ProjectImages = planSequence(pl, storage.RoleProjectImages,
		d.HasSequence(form.PrefixProjectImages), d.ProjectImages, previous.ProjectImages, files[storage.RoleProjectImages],
		imagePath, imageHasText,
	)
	base.Amenities = planSequence(pl, storage.RoleAmenityFiles,
		d.HasSequence(form.PrefixAmenities), d.Amenities, previous.Amenities, files[storage.RoleAmenityFiles],
		func(r *project.Amenity) *string { return &r.Icon },
		func(r project.Amenity) bool { return r.Title != "" },
	)
	base.UpdatedImages = planSequence(pl, storage.RoleUpdatedImages,
		d.HasSequence(form.PrefixUpdatedImages), d.UpdatedImages, previous.UpdatedImages, files[storage.RoleUpdatedImages],
		imagePath, imageHasText,
	)

	pl.single(storage.RoleBrochure, files[storage.RoleBrochure], &base.Brochure)
	pl.single(storage.RoleCardImage, files[storage.RoleCardImage], &base.CardImage)
	pl.single(storage.RoleAboutUsImage, files[storage.RoleAboutUsImage], &base.AboutUs.Image.URL)

	if d.DeleteAboutImage() && len(files[storage.RoleAboutUsImage]) == 0 && base.AboutUs.Image.URL != "" {
		pl.cleared = append(pl.cleared, base.AboutUs.Image.URL)
		base.AboutUs.Image.URL = ""
	}

	base.EnsureSequences()
	return pl
}

func imagePath(r *project.Image) *string { return &r.Image }

func imageHasText(r project.Image) bool { return r.Alt != "" }

type pendingSlot struct {
	position int
	upload   *storage.Upload
}

// planSequence returns the records for one file-bearing sequence. A posted
// sequence replaces the previous one and inherits its paths by position; an
// absent one keeps the previous records. Records with no text, no path and no
// incoming upload are dropped.
func planSequence[T any](pl *plan, role storage.Role, posted bool, records, previous []T, uploads []*storage.Upload, image func(*T) *string, hasText func(T) bool) []T {
	var base []T
	if posted {
		base = append([]T(nil), records...)
		for i := range base {
			if i < len(previous) {
				*image(&base[i]) = *image(&previous[i])
			}
		}
	} else {
		base = append([]T(nil), previous...)
	}

	if len(uploads) > len(base) {
		pl.ignored += len(uploads) - len(base)
	}

	kept := make([]T, 0, len(base))
	var pending []pendingSlot
	for i := range base {
		var upload *storage.Upload
		if i < len(uploads) {
			upload = uploads[i]
		}
		if upload == nil && !hasText(base[i]) && *image(&base[i]) == "" {
			continue
		}
		kept = append(kept, base[i])
		if upload != nil {
			pending = append(pending, pendingSlot{position: len(kept) - 1, upload: upload})
		}
	}

	for _, slot := range pending {
		target := image(&kept[slot.position])
		pl.placements = append(pl.placements, &placement{
			role:     role,
			upload:   slot.upload,
			stem:     role.Stem(slot.position + 1),
			target:   target,
			previous: *target,
		})
	}

	return kept
}

func (pl *plan) single(role storage.Role, uploads []*storage.Upload, target *string) {
	if len(uploads) == 0 {
		return
	}
	pl.ignored += len(uploads) - 1
	pl.placements = append(pl.placements, &placement{
		role:     role,
		upload:   uploads[0],
		stem:     role.Stem(1),
		target:   target,
		previous: *target,
	})
}

// superseded lists previous paths replaced by this attempt that the merged
// project no longer references.
func (pl *plan) superseded() []string {
	inUse := make(map[string]bool)
	for _, path := range pl.project.FilePaths() {
		inUse[path] = true
	}

	var paths []string
	seen := make(map[string]bool)
	add := func(path string) {
		if path == "" || inUse[path] || seen[path] {
			return
		}
		seen[path] = true
		paths = append(paths, path)
	}

	for _, pm := range pl.placements {
		add(pm.previous)
	}
	for _, path := range pl.cleared {
		add(path)
	}

	return paths
}
