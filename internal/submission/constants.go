package submission

const (
	phonePrefix       = "+91"
	maxParallelWrites = 4

	operationCreate = "create"
	operationUpdate = "update"
	operationDelete = "delete"
	operationStatus = "status"

	msgRequired            = "is required"
	msgInvalidState        = "must be one of: on-going, completed"
	msgInvalidType         = "must be one of: residential, commercial, plot"
	msgMinFloorPlans       = "at least one floor plan is required"
	msgMinProjectImages    = "at least one project image is required"
	msgMinAmenities        = "at least one amenity is required"
	msgMaxProjectImagesFmt = "at most %d project images are allowed"
	msgMaxUpdatedImagesFmt = "at most %d updated images are allowed"
	msgUnexpectedFileField = "unexpected file field"
	msgTooManyFilesFmt     = "at most %d files are allowed"
	msgTooManyRequestFmt   = "at most %d files are allowed per request"
	msgSlugEmpty           = "must contain at least one letter or digit"

	fieldFiles = "files"

	errPlaceFileFmt     = "failed to store %s file: %w"
	errRollbackFileFmt  = "failed to remove %s: %w"
	errMsgStoreFiles    = "failed to store uploaded files"
	errMsgSaveProject   = "failed to save project"
	errMsgLoadProject   = "failed to load project"
	errMsgCheckSlug     = "failed to check slug availability"
	errMsgDeleteProject = "failed to delete project"
	errMsgUpdateStatus  = "failed to update project status"

	logRollbackFmt           = "submission: %s rolled back %d file(s) after failure: %v"
	logRollbackIncompleteFmt = "submission: %s rollback incomplete, files left behind: %v"
	logSupersededFailedFmt   = "submission: failed to remove superseded file %s: %v"
	logSweepFailedFmt        = "submission: failed to remove %s while deleting project %s: %v"
	logIgnoredUploadsFmt     = "submission: %s ignored %d upload(s) without a matching record"
)
