package project

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type State string

const (
	StateOnGoing   State = "on-going"
	StateCompleted State = "completed"
)

func (s State) Validate() error {
	switch s {
	case StateOnGoing, StateCompleted:
		return nil
	default:
		return fmt.Errorf(errInvalidStateFmt, s)
	}
}

type Type string

const (
	TypeResidential Type = "residential"
	TypeCommercial  Type = "commercial"
	TypePlot        Type = "plot"
)

func (t Type) Validate() error {
	switch t {
	case TypeResidential, TypeCommercial, TypePlot:
		return nil
	default:
		return fmt.Errorf(errInvalidTypeFmt, t)
	}
}

const (
	errInvalidStateFmt = "invalid project state: %q"
	errInvalidTypeFmt  = "invalid project type: %q"
)

type Description struct {
	ID   string `json:"id,omitempty"`
	Text string `json:"text"`
}

type AboutImage struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

type AboutUsDetail struct {
	Description1 string     `json:"description1"`
	Description2 string     `json:"description2"`
	Description3 string     `json:"description3"`
	Description4 string     `json:"description4"`
	Image        AboutImage `json:"image"`
}

type FloorPlan struct {
	Title string `json:"title"`
	Alt   string `json:"alt"`
	Image string `json:"image"`
}

type Image struct {
	Alt   string `json:"alt"`
	Image string `json:"image"`
}

type Amenity struct {
	Title string `json:"title"`
	Alt   string `json:"alt"`
	Icon  string `json:"svgOrImage"`
}

// Project is one real-estate listing. File fields hold paths relative to the
// storage root.
type Project struct {
	ID                  uuid.UUID     `json:"id"`
	Slug                string        `json:"slug"`
	Title               string        `json:"projectTitle"`
	State               State         `json:"projectState"`
	ShortAddress        string        `json:"shortAddress"`
	StatusPercentage    int           `json:"projectStatusPercentage"`
	AboutUsDescriptions []Description `json:"aboutUsDescriptions"`
	AboutUs             AboutUsDetail `json:"aboutUsDetail"`
	FloorPlans          []FloorPlan   `json:"floorPlans"`
	ProjectImages       []Image       `json:"projectImages"`
	Amenities           []Amenity     `json:"amenities"`
	YoutubeURL          string        `json:"youtubeUrl"`
	UpdatedImagesTitle  string        `json:"updatedImagesTitle"`
	UpdatedImages       []Image       `json:"updatedImages"`
	LocationTitle       string        `json:"locationTitle"`
	LocationTitleText   string        `json:"locationTitleText"`
	LocationArea        string        `json:"locationArea"`
	Number1             string        `json:"number1"`
	Number2             string        `json:"number2"`
	Email1              string        `json:"email1"`
	Email2              string        `json:"email2"`
	MapIframeURL        string        `json:"mapIframeUrl"`
	CardLocation        string        `json:"cardLocation"`
	CardAreaFt          string        `json:"cardAreaFt"`
	CardProjectType     Type          `json:"cardProjectType"`
	CardHouse           string        `json:"cardHouse"`
	ReraNumber          string        `json:"reraNumber"`
	Brochure            string        `json:"brochure"`
	CardImage           string        `json:"cardImage"`
	IsActive            bool          `json:"isActive"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

// Clone returns a deep copy; the sequences are not shared with p.
func (p *Project) Clone() *Project {
	c := *p
	c.AboutUsDescriptions = append([]Description(nil), p.AboutUsDescriptions...)
	c.FloorPlans = append([]FloorPlan(nil), p.FloorPlans...)
	c.ProjectImages = append([]Image(nil), p.ProjectImages...)
	c.Amenities = append([]Amenity(nil), p.Amenities...)
	c.UpdatedImages = append([]Image(nil), p.UpdatedImages...)
	return &c
}

// FilePaths lists every stored file the project references, in field order.
func (p *Project) FilePaths() []string {
	var paths []string
	add := func(path string) {
		if path != "" {
			paths = append(paths, path)
		}
	}

	add(p.Brochure)
	add(p.CardImage)
	add(p.AboutUs.Image.URL)
	for _, fp := range p.FloorPlans {
		add(fp.Image)
	}
	for _, img := range p.ProjectImages {
		add(img.Image)
	}
	for _, a := range p.Amenities {
		add(a.Icon)
	}
	for _, img := range p.UpdatedImages {
		add(img.Image)
	}

	return paths
}

// EnsureSequences replaces nil sequences with empty ones so they encode as [].
func (p *Project) EnsureSequences() {
	if p.AboutUsDescriptions == nil {
		p.AboutUsDescriptions = []Description{}
	}
	if p.FloorPlans == nil {
		p.FloorPlans = []FloorPlan{}
	}
	if p.ProjectImages == nil {
		p.ProjectImages = []Image{}
	}
	if p.Amenities == nil {
		p.Amenities = []Amenity{}
	}
	if p.UpdatedImages == nil {
		p.UpdatedImages = []Image{}
	}
}

type SortField string

const (
	SortCreatedAt        SortField = "createdAt"
	SortUpdatedAt        SortField = "updatedAt"
	SortTitle            SortField = "projectTitle"
	SortStatusPercentage SortField = "projectStatusPercentage"
)

func (s SortField) Valid() bool {
	switch s {
	case SortCreatedAt, SortUpdatedAt, SortTitle, SortStatusPercentage:
		return true
	default:
		return false
	}
}

// ListFilter narrows List queries. Zero values mean "no filter".
type ListFilter struct {
	State           State
	Type            Type
	Search          string
	Sort            SortField
	Descending      bool
	Page            int
	Limit           int
	IncludeInactive bool
}

func (f ListFilter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit
}

type Pagination struct {
	Current int  `json:"current"`
	Pages   int  `json:"pages"`
	Total   int  `json:"total"`
	HasNext bool `json:"hasNext"`
	HasPrev bool `json:"hasPrev"`
}

func NewPagination(page, limit, total int) Pagination {
	if page < 1 {
		page = 1
	}
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Current: page,
		Pages:   pages,
		Total:   total,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

type Page struct {
	Projects   []*Project `json:"projects"`
	Pagination Pagination `json:"pagination"`
}

type StateCounts struct {
	OnGoing   int `json:"onGoing"`
	Completed int `json:"completed"`
}

type TypeCounts struct {
	Residential int `json:"residential"`
	Commercial  int `json:"commercial"`
	Plot        int `json:"plot"`
}

type Stats struct {
	Total   int         `json:"total"`
	ByState StateCounts `json:"byState"`
	ByType  TypeCounts  `json:"byType"`
}
