package posts

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound   = errors.New("post not found")
	ErrInvalidID  = errors.New("invalid post id")
	ErrValidation = errors.New("validation failed")
)

// ValidationError lists the failing fields with a message each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
