package form

// Scalar field names as posted by the admin panel.
const (
	FieldTitle              = "projectTitle"
	FieldSlug               = "slug"
	FieldState              = "projectState"
	FieldShortAddress       = "shortAddress"
	FieldStatusPercentage   = "projectStatusPercentage"
	FieldAboutUsAlt         = "aboutUsAlt"
	FieldYoutubeURL         = "youtubeUrl"
	FieldUpdatedImagesTitle = "updatedImagesTitle"
	FieldLocationTitle      = "locationTitle"
	FieldLocationTitleText  = "locationTitleText"
	FieldLocationArea       = "locationArea"
	FieldNumber1            = "number1"
	FieldNumber2            = "number2"
	FieldEmail1             = "email1"
	FieldEmail2             = "email2"
	FieldMapIframeURL       = "mapIframeUrl"
	FieldCardLocation       = "cardLocation"
	FieldCardAreaFt         = "cardAreaFt"
	FieldCardProjectType    = "cardProjectType"
	FieldCardHouse          = "cardHouse"
	FieldReraNumber         = "reraNumber"
	FieldDeleteAboutImage   = "deleteAboutImage"
)

// Sequence prefixes.
const (
	PrefixFloorPlans          = "floorPlans"
	PrefixProjectImages       = "projectImages"
	PrefixAmenities           = "amenities"
	PrefixUpdatedImages       = "updatedImages"
	PrefixAboutUsDescriptions = "aboutUsDescriptions"
	PrefixAboutUsDetail       = "aboutUsDetail"
)

const (
	subfieldTitle = "title"
	subfieldAlt   = "alt"
	subfieldText  = "text"
	subfieldID    = "id"

	aboutImage = "image"
	aboutAlt   = "alt"

	maxIndex = 9999

	errPercentageNotNumberFmt = "must be a whole number"
)

var sequencePrefixes = map[string]bool{
	PrefixFloorPlans:          true,
	PrefixProjectImages:       true,
	PrefixAmenities:           true,
	PrefixUpdatedImages:       true,
	PrefixAboutUsDescriptions: true,
}

var aboutDescriptionKeys = [4]string{"description1", "description2", "description3", "description4"}
