package domain

import "time"

type HandlePosition string

const (
	HandleLeft  HandlePosition = "left"
	HandleRight HandlePosition = "right"
)

func (p HandlePosition) Valid() bool {
	return p == HandleLeft || p == HandleRight
}

type OpeningType string

const (
	OpeningTilt  OpeningType = "tilt"
	OpeningSwing OpeningType = "swing"
	OpeningFixed OpeningType = "fixed"
)

func (o OpeningType) Valid() bool {
	return o == OpeningTilt || o == OpeningSwing || o == OpeningFixed
}

// Measurement is a single recorded window: dimensions in millimeters plus
// hardware attributes and free-form notes.
type Measurement struct {
	ID             int64
	Name           string
	Width          int
	Height         int
	HandlePosition HandlePosition
	OpeningType    OpeningType
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Photo is an image attached to a measurement. URI is the key into the photo
// byte store, not the bytes themselves. OrderIndex is the display position,
// 0..7, unique per measurement.
type Photo struct {
	ID            int64
	MeasurementID int64
	URI           string
	OrderIndex    int
	CreatedAt     time.Time
}

type MeasurementWithPhotos struct {
	Measurement
	Photos []*Photo
}

// MeasurementUpdate carries a partial update; nil fields are left untouched.
// updated_at is refreshed regardless of which fields are set.
type MeasurementUpdate struct {
	Name           *string
	Width          *int
	Height         *int
	HandlePosition *HandlePosition
	OpeningType    *OpeningType
	Notes          *string
}

// MaxPhotosPerMeasurement caps how many photos a measurement may carry; order
// indexes live in [0, MaxPhotosPerMeasurement).
const MaxPhotosPerMeasurement = 8
