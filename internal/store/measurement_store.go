package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"windowlog/internal/domain"
)

type MeasurementStore struct {
	db *sql.DB
}

func NewMeasurementStore(db *sql.DB) *MeasurementStore {
	return &MeasurementStore{db: db}
}

const measurementColumns = "id, name, width, height, handle_position, opening_type, notes, created_at, updated_at"

func scanMeasurement(row interface{ Scan(...any) error }) (*domain.Measurement, error) {
	m := &domain.Measurement{}
	var notes sql.NullString
	var createdAt, updatedAt string

	err := row.Scan(&m.ID, &m.Name, &m.Width, &m.Height, &m.HandlePosition, &m.OpeningType, &notes, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	m.Notes = notes.String
	if m.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if m.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return m, nil
}

// Create inserts a new measurement and returns it with id and timestamps
// populated. Name and notes are stored trimmed. Range, enum and non-empty
// constraints are re-enforced by the schema; violations fail the write.
func (s *MeasurementStore) Create(ctx context.Context, m *domain.Measurement) (*domain.Measurement, error) {
	now := time.Now().UTC()

	var notes any
	if trimmed := strings.TrimSpace(m.Notes); trimmed != "" {
		notes = trimmed
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO measurements (name, width, height, handle_position, opening_type, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, strings.TrimSpace(m.Name), m.Width, m.Height, string(m.HandlePosition), string(m.OpeningType), notes, formatTime(now), formatTime(now))
	if err != nil {
		return nil, wrapConstraint(err, "failed to create measurement")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID returns the measurement or nil when the id does not exist.
func (s *MeasurementStore) GetByID(ctx context.Context, id int64) (*domain.Measurement, error) {
	m, err := scanMeasurement(s.db.QueryRowContext(ctx, `
		SELECT `+measurementColumns+` FROM measurements WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get measurement: %w", err)
	}
	return m, nil
}

// GetWithPhotos returns the measurement plus its photos ordered by
// order_index ascending, or nil when the id does not exist.
func (s *MeasurementStore) GetWithPhotos(ctx context.Context, id int64) (*domain.MeasurementWithPhotos, error) {
	m, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, nil
	}

	photos, err := NewPhotoStore(s.db).ListByMeasurement(ctx, id)
	if err != nil {
		return nil, err
	}

	return &domain.MeasurementWithPhotos{Measurement: *m, Photos: photos}, nil
}

// List returns all measurements, newest first.
func (s *MeasurementStore) List(ctx context.Context) ([]*domain.Measurement, error) {
	return s.query(ctx, `
		SELECT `+measurementColumns+` FROM measurements ORDER BY created_at DESC
	`)
}

// Search returns measurements whose name contains term, case-insensitively,
// newest first.
func (s *MeasurementStore) Search(ctx context.Context, term string) ([]*domain.Measurement, error) {
	pattern := "%" + strings.ToLower(term) + "%"
	return s.query(ctx, `
		SELECT `+measurementColumns+` FROM measurements
		WHERE LOWER(name) LIKE ?
		ORDER BY created_at DESC
	`, pattern)
}

func (s *MeasurementStore) query(ctx context.Context, query string, args ...any) ([]*domain.Measurement, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list measurements: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var measurements []*domain.Measurement
	for rows.Next() {
		m, err := scanMeasurement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		measurements = append(measurements, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating measurements: %w", err)
	}
	return measurements, nil
}

// Count returns the total number of measurements.
func (s *MeasurementStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM measurements`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count measurements: %w", err)
	}
	return count, nil
}

// Update applies the non-nil fields of upd and always refreshes updated_at,
// even when upd is empty. Returns domain.ErrNotFound if the id is absent.
func (s *MeasurementStore) Update(ctx context.Context, id int64, upd domain.MeasurementUpdate) error {
	fields := []string{"updated_at = ?"}
	values := []any{formatTime(time.Now().UTC())}

	if upd.Name != nil {
		fields = append(fields, "name = ?")
		values = append(values, strings.TrimSpace(*upd.Name))
	}
	if upd.Width != nil {
		fields = append(fields, "width = ?")
		values = append(values, *upd.Width)
	}
	if upd.Height != nil {
		fields = append(fields, "height = ?")
		values = append(values, *upd.Height)
	}
	if upd.HandlePosition != nil {
		fields = append(fields, "handle_position = ?")
		values = append(values, string(*upd.HandlePosition))
	}
	if upd.OpeningType != nil {
		fields = append(fields, "opening_type = ?")
		values = append(values, string(*upd.OpeningType))
	}
	if upd.Notes != nil {
		fields = append(fields, "notes = ?")
		if trimmed := strings.TrimSpace(*upd.Notes); trimmed != "" {
			values = append(values, trimmed)
		} else {
			values = append(values, nil)
		}
	}

	values = append(values, id)

	result, err := s.db.ExecContext(ctx, `
		UPDATE measurements SET `+strings.Join(fields, ", ")+` WHERE id = ?
	`, values...)
	if err != nil {
		return wrapConstraint(err, "failed to update measurement")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("measurement %d: %w", id, domain.ErrNotFound)
	}
	return nil
}

// Delete removes the measurement; its photos go with it via ON DELETE CASCADE.
// Returns domain.ErrNotFound if the id is absent.
func (s *MeasurementStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM measurements WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete measurement: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("measurement %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
