package submission

import (
	"fmt"

	"project-service/internal/domain/project"
	"project-service/internal/form"
	"project-service/internal/storage"
	apperrors "project-service/pkg/errors"
	"project-service/pkg/validator"
)

const (
	maxProjectImages = 5
	maxUpdatedImages = 3
)

// validate collects every violation in the merged project and the uploads.
// It never stops at the first one.
func (s *Service) validate(p *project.Project, files map[storage.Role][]*storage.Upload) []apperrors.FieldError {
	var issues []apperrors.FieldError
	add := func(field, msg string) {
		issues = append(issues, apperrors.FieldError{Field: field, Message: msg})
	}

	if p.Title == "" {
		add(form.FieldTitle, msgRequired)
	}

	if p.State == "" {
		add(form.FieldState, msgRequired)
	} else if err := p.State.Validate(); err != nil {
		add(form.FieldState, msgInvalidState)
	}

	if p.ShortAddress == "" {
		add(form.FieldShortAddress, msgRequired)
	}

	if p.CardProjectType == "" {
		add(form.FieldCardProjectType, msgRequired)
	} else if err := p.CardProjectType.Validate(); err != nil {
		add(form.FieldCardProjectType, msgInvalidType)
	}

	if err := validator.Percentage(p.StatusPercentage); err != nil {
		add(form.FieldStatusPercentage, err.Error())
	}

	if p.Number1 == "" {
		add(form.FieldNumber1, msgRequired)
	} else if err := validator.Phone(p.Number1); err != nil {
		add(form.FieldNumber1, err.Error())
	}
	if p.Number2 != "" {
		if err := validator.Phone(p.Number2); err != nil {
			add(form.FieldNumber2, err.Error())
		}
	}

	if p.Email1 == "" {
		add(form.FieldEmail1, msgRequired)
	} else if err := validator.Email(p.Email1); err != nil {
		add(form.FieldEmail1, err.Error())
	}
	if p.Email2 != "" {
		if err := validator.Email(p.Email2); err != nil {
			add(form.FieldEmail2, err.Error())
		}
	}

	if len(p.FloorPlans) == 0 {
		add(form.PrefixFloorPlans, msgMinFloorPlans)
	}
	if len(p.ProjectImages) == 0 {
		add(form.PrefixProjectImages, msgMinProjectImages)
	} else if len(p.ProjectImages) > maxProjectImages {
		add(form.PrefixProjectImages, fmt.Sprintf(msgMaxProjectImagesFmt, maxProjectImages))
	}
	if len(p.Amenities) == 0 {
		add(form.PrefixAmenities, msgMinAmenities)
	}
	if len(p.UpdatedImages) > maxUpdatedImages {
		add(form.PrefixUpdatedImages, fmt.Sprintf(msgMaxUpdatedImagesFmt, maxUpdatedImages))
	}

	return append(issues, s.validateUploads(files)...)
}

func (s *Service) validateUploads(files map[storage.Role][]*storage.Upload) []apperrors.FieldError {
	var issues []apperrors.FieldError
	add := func(field, msg string) {
		issues = append(issues, apperrors.FieldError{Field: field, Message: msg})
	}

	total := 0
	for role := range files {
		if !role.Valid() {
			add(string(role), msgUnexpectedFileField)
		}
	}

	for _, role := range storage.Roles() {
		uploads := files[role]
		total += len(uploads)

		if len(uploads) > role.MaxCount() {
			add(string(role), fmt.Sprintf(msgTooManyFilesFmt, role.MaxCount()))
		}

		for i, upload := range uploads {
			field := fmt.Sprintf("%s[%d]", role, i)
			if err := validator.FileSize(upload.Size, s.opts.MaxFileSize); err != nil {
				add(field, err.Error())
			}
			if err := validator.Upload(upload.Filename, upload.MimeType, role.Kind()); err != nil {
				add(field, err.Error())
			}
		}
	}

	if total > s.opts.MaxFilesPerRequest {
		add(fieldFiles, fmt.Sprintf(msgTooManyRequestFmt, s.opts.MaxFilesPerRequest))
	}

	return issues
}
