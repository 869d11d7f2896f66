package service

import (
	"fmt"
	"sort"
	"strings"

	"windowlog/internal/domain"
)

// ValidationError carries per-field rejection reasons. It unwraps to
// domain.ErrValidation so callers can branch with errors.Is while still
// reaching the field map for display.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, msg))
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return domain.ErrValidation
}
