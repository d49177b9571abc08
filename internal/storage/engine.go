package storage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"path"
	"path/filepath"
	"strings"
	"time"

	apperrors "project-service/pkg/errors"
	"project-service/pkg/validator"
)

const (
	ProjectsDir = "projects"

	randomLength   = 6
	randomAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	maxNameRetries = 3

	errFailedRandomFmt    = "failed to generate file token: %w"
	errFailedCheckNameFmt = "failed to check %s: %w"
	errNameCollisionFmt   = "could not find a free name for %s after %d attempts"
	errInvalidFolderFmt   = "invalid project folder %q: %w"
	logRemoveMissingFmt   = "storage: %s already absent, nothing to remove"
	logFileWrittenFmt     = "storage: wrote %s (%d bytes)"
	defaultContentType    = "application/octet-stream"
)

// Logger is satisfied by echo.Logger and gommon's *log.Logger.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Engine names and places uploaded files under projects/<folder>/ on a
// Backend.
type Engine struct {
	backend Backend
	logger  Logger
	now     func() time.Time
	token   func() (string, error)
}

func NewEngine(backend Backend, logger Logger) *Engine {
	return &Engine{
		backend: backend,
		logger:  logger,
		now:     time.Now,
		token:   randomToken,
	}
}

// Place writes upload as projects/<folder>/<stem>_<epochMillis>_<token><ext>
// and returns that relative path.
func (e *Engine) Place(ctx context.Context, upload *Upload, folder, stem string) (string, error) {
	if err := validator.RelativePath(folder); err != nil || strings.Contains(folder, "/") {
		return "", fmt.Errorf(errInvalidFolderFmt, folder, apperrors.ErrPathTraversal)
	}

	ext := strings.ToLower(filepath.Ext(upload.Filename))

	for attempt := 0; attempt < maxNameRetries; attempt++ {
		token, err := e.token()
		if err != nil {
			return "", fmt.Errorf(errFailedRandomFmt, err)
		}

		name := fmt.Sprintf("%s_%d_%s%s", stem, e.now().UnixMilli(), token, ext)
		key := path.Join(ProjectsDir, folder, name)

		exists, err := e.backend.Exists(ctx, key)
		if err != nil {
			return "", fmt.Errorf(errFailedCheckNameFmt, key, err)
		}
		if exists {
			continue
		}

		contentType := upload.MimeType
		if contentType == "" {
			contentType = defaultContentType
		}

		if err := e.backend.Write(ctx, key, upload.Data, contentType); err != nil {
			return "", err
		}

		e.logger.Debugf(logFileWrittenFmt, key, len(upload.Data))
		return key, nil
	}

	return "", fmt.Errorf(errNameCollisionFmt, stem, maxNameRetries)
}

// Remove deletes a stored file. A file that is already gone is not an error.
func (e *Engine) Remove(ctx context.Context, relPath string) error {
	if err := e.backend.Remove(ctx, relPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			e.logger.Warnf(logRemoveMissingFmt, relPath)
			return nil
		}
		return err
	}
	return nil
}

func randomToken() (string, error) {
	max := big.NewInt(int64(len(randomAlphabet)))
	buf := make([]byte, randomLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = randomAlphabet[n.Int64()]
	}
	return string(buf), nil
}
