package gitrepo

import (
	"errors"
	"fmt"
)

// ErrNoChanges indicates the working tree is clean after staging, so
// there is nothing to commit.
var ErrNoChanges = errors.New("no changes detected")

// CloneExhaustedError reports that every clone attempt failed. It wraps
// the last underlying cause; the per-attempt detail is in the logs.
type CloneExhaustedError struct {
	Attempts int
	Err      error
}

func (e *CloneExhaustedError) Error() string {
	return fmt.Sprintf("clone failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *CloneExhaustedError) Unwrap() error {
	return e.Err
}
