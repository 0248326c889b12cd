package firestore

import "fmt"

// notFoundError reports a missing entity for lookups that cannot rely on a
// Firestore NotFound status, e.g. empty query results.
type notFoundError struct {
	entity string
	key    string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s %s: not found", e.entity, e.key)
}

func (e notFoundError) IsNotFound() bool    { return true }
func (e notFoundError) IsConflict() bool    { return false }
func (e notFoundError) IsUnavailable() bool { return false }
