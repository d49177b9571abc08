package handler

import (
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"project-service/internal/domain/project"
	"project-service/internal/storage"
	"project-service/internal/submission"
	apperrors "project-service/pkg/errors"
)

const maxStrictBodyBytes int64 = 1 << 20

func bindStrictJSON(c echo.Context, dst interface{}) error {
	if !strings.HasPrefix(strings.ToLower(c.Request().Header.Get(echo.HeaderContentType)), echo.MIMEApplicationJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, msgContentTypeJSONRequired)
	}

	body := io.LimitReader(c.Request().Body, maxStrictBodyBytes)
	decoder := json.NewDecoder(body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return apperrors.BadRequest(msgInvalidRequestBody)
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return apperrors.BadRequest(msgInvalidRequestBody)
	}

	return nil
}

// decodeSubmission flattens a multipart body into a submission: the first
// value of every text field, and files grouped by field name. A trailing
// "[]" on a file field is ignored.
func decodeSubmission(c echo.Context, maxFileSize int64) (submission.Submission, error) {
	req := c.Request()
	if !strings.HasPrefix(strings.ToLower(req.Header.Get(echo.HeaderContentType)), echo.MIMEMultipartForm) {
		return submission.Submission{}, apperrors.BadRequest(msgInvalidMultipart)
	}
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		return submission.Submission{}, apperrors.BadRequest(msgInvalidMultipart)
	}
	form := req.MultipartForm
	defer func() {
		if err := form.RemoveAll(); err != nil {
			c.Logger().Warnf("failed to remove multipart temp files: %v", err)
		}
	}()

	sub := submission.Submission{
		Fields: make(map[string]string, len(form.Value)),
		Files:  make(map[storage.Role][]*storage.Upload, len(form.File)),
	}
	for key, values := range form.Value {
		if len(values) > 0 {
			sub.Fields[key] = values[0]
		}
	}
	for field, headers := range form.File {
		role := storage.Role(strings.TrimSuffix(field, fileFieldSuffix))
		for _, fh := range headers {
			upload, err := readUpload(fh, maxFileSize)
			if err != nil {
				return submission.Submission{}, err
			}
			sub.Files[role] = append(sub.Files[role], upload)
		}
	}

	return sub, nil
}

// readUpload buffers one file. Oversized files are not read; their declared
// size is kept so validation reports them.
func readUpload(fh *multipart.FileHeader, maxFileSize int64) (*storage.Upload, error) {
	upload := &storage.Upload{
		Filename: fh.Filename,
		MimeType: fh.Header.Get(echo.HeaderContentType),
		Size:     fh.Size,
	}
	if maxFileSize > 0 && fh.Size > maxFileSize {
		return upload, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.BadRequest(msgFileUnreadable)
	}
	defer f.Close()

	reader := io.Reader(f)
	if maxFileSize > 0 {
		reader = io.LimitReader(f, maxFileSize+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, apperrors.BadRequest(msgFileUnreadable)
	}

	upload.Data = data
	upload.Size = int64(len(data))
	return upload, nil
}

func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(paramID))
	if err != nil {
		return uuid.Nil, apperrors.BadRequest(msgInvalidProjectID)
	}
	return id, nil
}

// parseListFilter reads the listing query parameters. Sorting defaults to
// newest first.
func parseListFilter(c echo.Context, pageSize, maxPageSize int) (project.ListFilter, error) {
	filter := project.ListFilter{
		Sort:       project.SortCreatedAt,
		Descending: true,
		Page:       1,
		Limit:      pageSize,
	}

	if v := c.QueryParam(queryPage); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, apperrors.BadRequest(msgInvalidPage)
		}
		filter.Page = page
	}
	if v := c.QueryParam(queryLimit); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, apperrors.BadRequest(msgInvalidLimit)
		}
		filter.Limit = min(limit, maxPageSize)
	}
	if v := c.QueryParam(querySort); v != "" {
		filter.Sort = project.SortField(v)
		if !filter.Sort.Valid() {
			return filter, apperrors.BadRequest(msgInvalidSort)
		}
	}
	if strings.EqualFold(c.QueryParam(queryOrder), orderAsc) {
		filter.Descending = false
	}
	if v := c.QueryParam(queryState); v != "" {
		filter.State = project.State(strings.ToLower(v))
		if err := filter.State.Validate(); err != nil {
			return filter, apperrors.BadRequest(err.Error())
		}
	}
	if v := c.QueryParam(queryType); v != "" {
		filter.Type = project.Type(strings.ToLower(v))
		if err := filter.Type.Validate(); err != nil {
			return filter, apperrors.BadRequest(err.Error())
		}
	}
	filter.Search = strings.TrimSpace(c.QueryParam(querySearch))

	return filter, nil
}
