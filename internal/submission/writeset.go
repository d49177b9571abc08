package submission

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Remover deletes one stored file; deleting an absent file succeeds.
type Remover interface {
	Remove(ctx context.Context, relPath string) error
}

// WriteSet records every file written during one create or update attempt.
// It is safe for concurrent Add calls.
type WriteSet struct {
	mu    sync.Mutex
	paths []string
}

func NewWriteSet() *WriteSet {
	return &WriteSet{}
}

func (w *WriteSet) Add(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.paths = append(w.paths, path)
}

func (w *WriteSet) Paths() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.paths...)
}

func (w *WriteSet) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.paths)
}

// Rollback removes every recorded file and returns how many were removed.
// Paths that could not be removed stay recorded, so calling Rollback again
// retries only those.
func (w *WriteSet) Rollback(ctx context.Context, remover Remover) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var (
		failed  []string
		errs    []error
		removed int
	)
	for _, path := range w.paths {
		if err := remover.Remove(ctx, path); err != nil {
			failed = append(failed, path)
			errs = append(errs, fmt.Errorf(errRollbackFileFmt, path, err))
			continue
		}
		removed++
	}
	w.paths = failed

	return removed, errors.Join(errs...)
}
