package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "project-service/pkg/errors"
	"project-service/pkg/validator"
)

const (
	dirPerm                 = 0o755
	filePerm                = 0o644
	tempPattern             = ".upload-*"
	errFailedCreateRootFmt  = "failed to create storage root %s: %w"
	errFailedResolveRootFmt = "failed to resolve storage root %s: %w"
	errInvalidKeyFmt        = "invalid storage key %q: %v: %w"
	errFailedCreateDirFmt   = "failed to create directory %s: %w"
	errFailedCreateTempFmt  = "failed to create temp file in %s: %w"
	errFailedWriteFileFmt   = "failed to write %s: %w"
	errFailedSyncFileFmt    = "failed to sync %s: %w"
	errFailedCloseFileFmt   = "failed to close %s: %w"
	errFailedRenameFileFmt  = "failed to move %s into place: %w"
	errFailedRemoveFileFmt  = "failed to remove %s: %w"
	errFailedStatFileFmt    = "failed to stat %s: %w"
)

// LocalBackend writes files beneath a root directory on local disk.
type LocalBackend struct {
	root string
}

func NewLocalBackend(root string) (*LocalBackend, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf(errFailedResolveRootFmt, root, err)
	}

	if err := os.MkdirAll(abs, dirPerm); err != nil {
		return nil, fmt.Errorf(errFailedCreateRootFmt, abs, err)
	}

	return &LocalBackend{root: abs}, nil
}

func (b *LocalBackend) Root() string {
	return b.root
}

// Write lands data through a temp file in the target directory, fsyncs it and
// renames it over key, so readers never see a partial file.
func (b *LocalBackend) Write(ctx context.Context, key string, data []byte, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	fullPath, err := b.resolve(key)
	if err != nil {
		return err
	}

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf(errFailedCreateDirFmt, dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf(errFailedCreateTempFmt, dir, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf(errFailedWriteFileFmt, key, err)
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf(errFailedSyncFileFmt, key, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf(errFailedCloseFileFmt, key, err)
	}

	if err := os.Chmod(tmpPath, filePerm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf(errFailedWriteFileFmt, key, err)
	}

	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf(errFailedRenameFileFmt, key, err)
	}

	return nil
}

func (b *LocalBackend) Remove(_ context.Context, key string) error {
	fullPath, err := b.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf(errFailedRemoveFileFmt, key, err)
	}

	return nil
}

func (b *LocalBackend) Exists(_ context.Context, key string) (bool, error) {
	fullPath, err := b.resolve(key)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(fullPath); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf(errFailedStatFileFmt, key, err)
	}

	return true, nil
}

func (b *LocalBackend) resolve(key string) (string, error) {
	if err := validator.RelativePath(key); err != nil {
		return "", fmt.Errorf(errInvalidKeyFmt, key, err, apperrors.ErrPathTraversal)
	}

	fullPath := filepath.Join(b.root, filepath.FromSlash(key))
	if !strings.HasPrefix(fullPath, b.root+string(filepath.Separator)) {
		return "", fmt.Errorf(errInvalidKeyFmt, key, "outside storage root", apperrors.ErrPathTraversal)
	}

	return fullPath, nil
}
