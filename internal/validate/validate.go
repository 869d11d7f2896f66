// Package validate holds the pure form-level checks applied to raw user input
// before anything reaches the store. All functions are side-effect free and
// return a human-readable reason on rejection.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"windowlog/internal/domain"
)

const (
	NameMinLength = 1
	NameMaxLength = 100

	HeightMinMm = 400
	HeightMaxMm = 2600
	WidthMinMm  = 400
	WidthMaxMm  = 6000

	NotesMaxLength = 500

	MaxPhotoCount = domain.MaxPhotosPerMeasurement
)

// Result is the outcome of a single field check.
type Result struct {
	Valid bool
	Error string
}

func ok() Result {
	return Result{Valid: true}
}

func fail(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// Name checks the measurement name after trimming surrounding whitespace.
// The length bound counts characters, not bytes, so names with Polish
// diacritics are measured the way the user sees them.
func Name(name string) Result {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fail("name is required")
	}
	if utf8.RuneCountInString(trimmed) > NameMaxLength {
		return fail("name must be at most %d characters", NameMaxLength)
	}
	return ok()
}

// Height parses value as an integer number of millimeters and checks range.
func Height(value string) Result {
	return dimension(value, "height", HeightMinMm, HeightMaxMm)
}

// Width parses value as an integer number of millimeters and checks range.
func Width(value string) Result {
	return dimension(value, "width", WidthMinMm, WidthMaxMm)
}

func dimension(value, field string, min, max int) Result {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fail("%s must be a number", field)
	}
	if n < min {
		return fail("%s must be at least %d mm", field, min)
	}
	if n > max {
		return fail("%s must be at most %d mm", field, max)
	}
	return ok()
}

// HeightMm and WidthMm check already-parsed values, used at the service
// boundary where input arrives numerically.
func HeightMm(n int) Result {
	return dimension(strconv.Itoa(n), "height", HeightMinMm, HeightMaxMm)
}

func WidthMm(n int) Result {
	return dimension(strconv.Itoa(n), "width", WidthMinMm, WidthMaxMm)
}

// Notes rejects notes longer than NotesMaxLength.
func Notes(notes string) Result {
	if utf8.RuneCountInString(notes) > NotesMaxLength {
		return fail("notes must be at most %d characters", NotesMaxLength)
	}
	return ok()
}

// PhotoCount rejects counts above the per-measurement cap.
func PhotoCount(count int) Result {
	if count > MaxPhotoCount {
		return fail("at most %d photos are allowed", MaxPhotoCount)
	}
	return ok()
}

// HandlePosition checks the enum value.
func HandlePosition(value string) Result {
	if !domain.HandlePosition(value).Valid() {
		return fail("handle position must be left or right")
	}
	return ok()
}

// OpeningType checks the enum value.
func OpeningType(value string) Result {
	if !domain.OpeningType(value).Valid() {
		return fail("opening type must be tilt, swing or fixed")
	}
	return ok()
}

// FormInput is the raw, string-typed form as entered by the user. PhotoCount
// is checked only when non-negative.
type FormInput struct {
	Name           string
	Height         string
	Width          string
	HandlePosition string
	OpeningType    string
	Notes          string
	PhotoCount     int
}

// Form runs every applicable check independently and returns a field→message
// map. Every field is evaluated even when an earlier one fails, so the caller
// can surface all errors at once. An empty map means the form is valid.
func Form(in FormInput) map[string]string {
	errs := make(map[string]string)

	if r := Name(in.Name); !r.Valid {
		errs["name"] = r.Error
	}
	if r := Height(in.Height); !r.Valid {
		errs["height"] = r.Error
	}
	if r := Width(in.Width); !r.Valid {
		errs["width"] = r.Error
	}
	if r := HandlePosition(in.HandlePosition); !r.Valid {
		errs["handle_position"] = r.Error
	}
	if r := OpeningType(in.OpeningType); !r.Valid {
		errs["opening_type"] = r.Error
	}
	if in.Notes != "" {
		if r := Notes(in.Notes); !r.Valid {
			errs["notes"] = r.Error
		}
	}
	if in.PhotoCount >= 0 {
		if r := PhotoCount(in.PhotoCount); !r.Valid {
			errs["photos"] = r.Error
		}
	}

	return errs
}

// HasErrors reports whether a Form result contains any rejection.
func HasErrors(errs map[string]string) bool {
	return len(errs) > 0
}
