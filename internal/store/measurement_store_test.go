package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"windowlog/internal/db"
	"windowlog/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	return d
}

func validMeasurement() *domain.Measurement {
	return &domain.Measurement{
		Name:           "Salon",
		Width:          1200,
		Height:         1500,
		HandlePosition: domain.HandleLeft,
		OpeningType:    domain.OpeningTilt,
		Notes:          "parapet do wymiany",
	}
}

func TestMeasurementStoreCreateRoundTrip(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))
	ctx := context.Background()

	created, err := s.Create(ctx, validMeasurement())
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.False(t, created.UpdatedAt.IsZero())

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Salon", got.Name)
	assert.Equal(t, 1200, got.Width)
	assert.Equal(t, 1500, got.Height)
	assert.Equal(t, domain.HandleLeft, got.HandlePosition)
	assert.Equal(t, domain.OpeningTilt, got.OpeningType)
	assert.Equal(t, "parapet do wymiany", got.Notes)
}

func TestMeasurementStoreCreateTrimsName(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))

	m := validMeasurement()
	m.Name = "  Kuchnia  "
	created, err := s.Create(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, "Kuchnia", created.Name)
}

func TestMeasurementStoreCreateRejectsConstraintViolations(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*domain.Measurement)
	}{
		{"empty name", func(m *domain.Measurement) { m.Name = "   " }},
		{"width too small", func(m *domain.Measurement) { m.Width = 399 }},
		{"width too large", func(m *domain.Measurement) { m.Width = 6001 }},
		{"height too small", func(m *domain.Measurement) { m.Height = 399 }},
		{"height too large", func(m *domain.Measurement) { m.Height = 2601 }},
		{"bad handle position", func(m *domain.Measurement) { m.HandlePosition = "top" }},
		{"bad opening type", func(m *domain.Measurement) { m.OpeningType = "sliding" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validMeasurement()
			tc.mutate(m)
			_, err := s.Create(ctx, m)
			assert.ErrorIs(t, err, domain.ErrConstraint)
		})
	}
}

func TestMeasurementStoreGetByIDMissing(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))

	got, err := s.GetByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMeasurementStoreListNewestFirst(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))
	ctx := context.Background()

	first, err := s.Create(ctx, validMeasurement())
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	m := validMeasurement()
	m.Name = "Sypialnia"
	second, err := s.Create(ctx, m)
	require.NoError(t, err)

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestMeasurementStoreSearchCaseInsensitive(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))
	ctx := context.Background()

	_, err := s.Create(ctx, validMeasurement())
	require.NoError(t, err)

	m := validMeasurement()
	m.Name = "Balkon wschodni"
	_, err = s.Create(ctx, m)
	require.NoError(t, err)

	found, err := s.Search(ctx, "SALON")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Salon", found[0].Name)

	found, err = s.Search(ctx, "on")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = s.Search(ctx, "piwnica")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestMeasurementStoreCount(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))
	ctx := context.Background()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = s.Create(ctx, validMeasurement())
	require.NoError(t, err)

	count, err = s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMeasurementStoreUpdatePartial(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))
	ctx := context.Background()

	created, err := s.Create(ctx, validMeasurement())
	require.NoError(t, err)

	newWidth := 2000
	err = s.Update(ctx, created.ID, domain.MeasurementUpdate{Width: &newWidth})
	require.NoError(t, err)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2000, got.Width)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Height, got.Height)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestMeasurementStoreEmptyUpdateAdvancesUpdatedAt(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))
	ctx := context.Background()

	created, err := s.Create(ctx, validMeasurement())
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	err = s.Update(ctx, created.ID, domain.MeasurementUpdate{})
	require.NoError(t, err)

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt.After(created.UpdatedAt))
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
}

func TestMeasurementStoreUpdateRejectsBadValues(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))
	ctx := context.Background()

	created, err := s.Create(ctx, validMeasurement())
	require.NoError(t, err)

	badHeight := 3000
	err = s.Update(ctx, created.ID, domain.MeasurementUpdate{Height: &badHeight})
	assert.ErrorIs(t, err, domain.ErrConstraint)

	// The failed write must not have partially applied.
	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1500, got.Height)
}

func TestMeasurementStoreUpdateMissing(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))

	err := s.Update(context.Background(), 42, domain.MeasurementUpdate{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMeasurementStoreDelete(t *testing.T) {
	s := NewMeasurementStore(openTestDB(t))
	ctx := context.Background()

	created, err := s.Create(ctx, validMeasurement())
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.ID))

	got, err := s.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	err = s.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMeasurementStoreDeleteCascadesToPhotos(t *testing.T) {
	d := openTestDB(t)
	measurements := NewMeasurementStore(d)
	photos := NewPhotoStore(d)
	ctx := context.Background()

	created, err := measurements.Create(ctx, validMeasurement())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := photos.Add(ctx, &domain.Photo{MeasurementID: created.ID, URI: "p.jpg", OrderIndex: i})
		require.NoError(t, err)
	}

	require.NoError(t, measurements.Delete(ctx, created.ID))

	remaining, err := photos.ListByMeasurement(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}
