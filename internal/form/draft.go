package form

import (
	"sort"
	"strconv"
	"strings"

	"project-service/internal/domain/project"
	apperrors "project-service/pkg/errors"
)

// Draft is a submission's fields after normalization. Sequence records carry
// text only; image paths are attached later when files are placed.
type Draft struct {
	values    map[string]string
	about     map[string]string
	sequences map[string]bool

	FloorPlans    []project.FloorPlan
	ProjectImages []project.Image
	Amenities     []project.Amenity
	UpdatedImages []project.Image
	Descriptions  []project.Description
}

type slot map[string]string

// Normalize groups bracket-indexed fields into one record per distinct index,
// ordered by index. Every sequence is non-nil in the result.
func Normalize(fields map[string]string) *Draft {
	d := &Draft{
		values:    make(map[string]string),
		about:     make(map[string]string),
		sequences: make(map[string]bool),
	}

	groups := make(map[string]map[int]slot)
	var bareDescriptions string

	for raw, value := range fields {
		value = strings.TrimSpace(value)
		key := ParseKey(raw)

		switch key.Kind {
		case KindIndexed:
			if !sequencePrefixes[key.Prefix] {
				d.values[raw] = value
				continue
			}
			d.sequences[key.Prefix] = true
			if groups[key.Prefix] == nil {
				groups[key.Prefix] = make(map[int]slot)
			}
			s := groups[key.Prefix][key.Index]
			if s == nil {
				s = make(slot)
				groups[key.Prefix][key.Index] = s
			}
			s[key.Subfield] = value
		case KindNamed:
			if key.Prefix != PrefixAboutUsDetail {
				d.values[raw] = value
				continue
			}
			d.about[strings.Join(key.Path, ".")] = value
		case KindBare:
			d.sequences[key.Prefix] = true
			if key.Prefix == PrefixAboutUsDescriptions {
				bareDescriptions = value
			}
		default:
			d.values[raw] = value
		}
	}

	d.FloorPlans = []project.FloorPlan{}
	for _, s := range ordered(groups[PrefixFloorPlans]) {
		d.FloorPlans = append(d.FloorPlans, project.FloorPlan{
			Title: s.primary(subfieldTitle),
			Alt:   s[subfieldAlt],
		})
	}

	d.ProjectImages = imageRecords(groups[PrefixProjectImages])
	d.UpdatedImages = imageRecords(groups[PrefixUpdatedImages])

	d.Amenities = []project.Amenity{}
	for _, s := range ordered(groups[PrefixAmenities]) {
		d.Amenities = append(d.Amenities, project.Amenity{
			Title: s.primary(subfieldTitle),
			Alt:   s[subfieldAlt],
		})
	}

	d.Descriptions = []project.Description{}
	for _, s := range ordered(groups[PrefixAboutUsDescriptions]) {
		text := s.primary(subfieldText)
		if text == "" {
			continue
		}
		d.Descriptions = append(d.Descriptions, project.Description{ID: s[subfieldID], Text: text})
	}
	if len(groups[PrefixAboutUsDescriptions]) == 0 && bareDescriptions != "" {
		d.Descriptions = append(d.Descriptions, project.Description{Text: bareDescriptions})
	}

	return d
}

func imageRecords(group map[int]slot) []project.Image {
	records := []project.Image{}
	for _, s := range ordered(group) {
		records = append(records, project.Image{Alt: s.primary(subfieldAlt)})
	}
	return records
}

// ordered returns the slots sorted by index; gaps are closed.
func ordered(group map[int]slot) []slot {
	indexes := make([]int, 0, len(group))
	for i := range group {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	slots := make([]slot, 0, len(indexes))
	for _, i := range indexes {
		slots = append(slots, group[i])
	}
	return slots
}

// primary reads name, falling back to a value posted without a subfield.
func (s slot) primary(name string) string {
	if v, ok := s[name]; ok {
		return v
	}
	return s[""]
}

// Has reports whether the scalar key was posted.
func (d *Draft) Has(key string) bool {
	_, ok := d.values[key]
	return ok
}

func (d *Draft) Value(key string) string {
	return d.values[key]
}

// HasSequence reports whether any key with the prefix was posted.
func (d *Draft) HasSequence(prefix string) bool {
	return d.sequences[prefix]
}

func (d *Draft) Slug() string {
	return d.values[FieldSlug]
}

func (d *Draft) DeleteAboutImage() bool {
	v, err := strconv.ParseBool(d.values[FieldDeleteAboutImage])
	return err == nil && v
}

// Apply overlays every posted scalar and the about-us block onto p. Keys that
// were not posted leave p untouched. File-bearing sequences are left to the
// caller.
func (d *Draft) Apply(p *project.Project) []apperrors.FieldError {
	var issues []apperrors.FieldError

	for key, set := range stringSetters {
		if v, ok := d.values[key]; ok {
			set(p, v)
		}
	}

	if v, ok := d.values[FieldState]; ok {
		p.State = project.State(strings.ToLower(v))
	}
	if v, ok := d.values[FieldCardProjectType]; ok {
		p.CardProjectType = project.Type(strings.ToLower(v))
	}
	if v, ok := d.values[FieldStatusPercentage]; ok {
		if v == "" {
			p.StatusPercentage = 0
		} else if n, err := strconv.Atoi(v); err == nil {
			p.StatusPercentage = n
		} else {
			issues = append(issues, apperrors.FieldError{Field: FieldStatusPercentage, Message: errPercentageNotNumberFmt})
		}
	}

	if d.HasSequence(PrefixAboutUsDescriptions) {
		p.AboutUsDescriptions = d.Descriptions
	}
	d.applyAbout(&p.AboutUs)

	return issues
}

func (d *Draft) applyAbout(detail *project.AboutUsDetail) {
	targets := [4]*string{&detail.Description1, &detail.Description2, &detail.Description3, &detail.Description4}
	for i, key := range aboutDescriptionKeys {
		if v, ok := d.about[key]; ok {
			*targets[i] = v
			continue
		}
		if d.HasSequence(PrefixAboutUsDescriptions) {
			*targets[i] = ""
			if i < len(d.Descriptions) {
				*targets[i] = d.Descriptions[i].Text
			}
		}
	}

	if v, ok := d.about[aboutImage+"."+aboutAlt]; ok {
		detail.Image.Alt = v
	}
	if v, ok := d.values[FieldAboutUsAlt]; ok {
		detail.Image.Alt = v
	}
}

var stringSetters = map[string]func(*project.Project, string){
	FieldTitle:              func(p *project.Project, v string) { p.Title = v },
	FieldShortAddress:       func(p *project.Project, v string) { p.ShortAddress = v },
	FieldYoutubeURL:         func(p *project.Project, v string) { p.YoutubeURL = v },
	FieldUpdatedImagesTitle: func(p *project.Project, v string) { p.UpdatedImagesTitle = v },
	FieldLocationTitle:      func(p *project.Project, v string) { p.LocationTitle = v },
	FieldLocationTitleText:  func(p *project.Project, v string) { p.LocationTitleText = v },
	FieldLocationArea:       func(p *project.Project, v string) { p.LocationArea = v },
	FieldNumber1:            func(p *project.Project, v string) { p.Number1 = v },
	FieldNumber2:            func(p *project.Project, v string) { p.Number2 = v },
	FieldEmail1:             func(p *project.Project, v string) { p.Email1 = v },
	FieldEmail2:             func(p *project.Project, v string) { p.Email2 = v },
	FieldMapIframeURL:       func(p *project.Project, v string) { p.MapIframeURL = v },
	FieldCardLocation:       func(p *project.Project, v string) { p.CardLocation = v },
	FieldCardAreaFt:         func(p *project.Project, v string) { p.CardAreaFt = v },
	FieldCardHouse:          func(p *project.Project, v string) { p.CardHouse = v },
	FieldReraNumber:         func(p *project.Project, v string) { p.ReraNumber = v },
}
