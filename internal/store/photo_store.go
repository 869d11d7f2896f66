package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"windowlog/internal/domain"
)

type PhotoStore struct {
	db *sql.DB
}

func NewPhotoStore(db *sql.DB) *PhotoStore {
	return &PhotoStore{db: db}
}

const photoColumns = "id, measurement_id, uri, order_index, created_at"

func scanPhoto(row interface{ Scan(...any) error }) (*domain.Photo, error) {
	p := &domain.Photo{}
	var createdAt string

	err := row.Scan(&p.ID, &p.MeasurementID, &p.URI, &p.OrderIndex, &createdAt)
	if err != nil {
		return nil, err
	}

	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return p, nil
}

// Add inserts one photo. It fails with domain.ErrPhotoLimit when the owning
// measurement already has the maximum number of photos, and with
// domain.ErrConstraint on a duplicate (measurement_id, order_index) pair.
func (s *PhotoStore) Add(ctx context.Context, p *domain.Photo) (*domain.Photo, error) {
	count, err := s.CountByMeasurement(ctx, p.MeasurementID)
	if err != nil {
		return nil, err
	}
	if count >= domain.MaxPhotosPerMeasurement {
		return nil, fmt.Errorf("measurement %d: %w", p.MeasurementID, domain.ErrPhotoLimit)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO photos (measurement_id, uri, order_index, created_at)
		VALUES (?, ?, ?, ?)
	`, p.MeasurementID, p.URI, p.OrderIndex, formatTime(time.Now().UTC()))
	if err != nil {
		return nil, wrapConstraint(err, "failed to add photo")
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// AddBatch inserts all photos in a single transaction: either every photo is
// committed or none is. It fails before any write when the batch alone, or
// the batch plus the photos already stored, would exceed the cap.
func (s *PhotoStore) AddBatch(ctx context.Context, measurementID int64, photos []*domain.Photo) ([]*domain.Photo, error) {
	if len(photos) == 0 {
		return nil, nil
	}
	if len(photos) > domain.MaxPhotosPerMeasurement {
		return nil, fmt.Errorf("batch of %d photos: %w", len(photos), domain.ErrPhotoLimit)
	}

	count, err := s.CountByMeasurement(ctx, measurementID)
	if err != nil {
		return nil, err
	}
	if count+len(photos) > domain.MaxPhotosPerMeasurement {
		return nil, fmt.Errorf("measurement %d has %d photos, adding %d: %w",
			measurementID, count, len(photos), domain.ErrPhotoLimit)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	now := formatTime(time.Now().UTC())
	ids := make([]int64, 0, len(photos))
	for _, p := range photos {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO photos (measurement_id, uri, order_index, created_at)
			VALUES (?, ?, ?, ?)
		`, measurementID, p.URI, p.OrderIndex, now)
		if err != nil {
			return nil, wrapConstraint(err, "failed to add photo in batch")
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to get last insert id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit photo batch: %w", err)
	}

	added := make([]*domain.Photo, 0, len(ids))
	for _, id := range ids {
		p, err := s.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		added = append(added, p)
	}
	return added, nil
}

// GetByID returns the photo or nil when the id does not exist.
func (s *PhotoStore) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	p, err := scanPhoto(s.db.QueryRowContext(ctx, `
		SELECT `+photoColumns+` FROM photos WHERE id = ?
	`, id))

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}
	return p, nil
}

// ListByMeasurement returns the measurement's photos ordered by order_index
// ascending.
func (s *PhotoStore) ListByMeasurement(ctx context.Context, measurementID int64) ([]*domain.Photo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+photoColumns+` FROM photos
		WHERE measurement_id = ? ORDER BY order_index ASC
	`, measurementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list photos: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var photos []*domain.Photo
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}
	return photos, nil
}

// CountByMeasurement returns how many photos the measurement has.
func (s *PhotoStore) CountByMeasurement(ctx context.Context, measurementID int64) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM photos WHERE measurement_id = ?
	`, measurementID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count photos: %w", err)
	}
	return count, nil
}

// Delete removes one photo and re-compacts the remaining order indexes of its
// measurement to a contiguous 0..n-1 range, all in one transaction. Returns
// the deleted photo so the caller can clean up the stored bytes.
func (s *PhotoStore) Delete(ctx context.Context, id int64) (*domain.Photo, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer rollback(tx)

	photo, err := scanPhoto(tx.QueryRowContext(ctx, `
		SELECT `+photoColumns+` FROM photos WHERE id = ?
	`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("photo %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get photo: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM photos WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete photo: %w", err)
	}

	// Re-compact: walking remaining photos in ascending order only ever
	// moves an index down into a slot already vacated, so the UNIQUE
	// constraint cannot trip mid-update.
	rows, err := tx.QueryContext(ctx, `
		SELECT id, order_index FROM photos
		WHERE measurement_id = ? ORDER BY order_index ASC
	`, photo.MeasurementID)
	if err != nil {
		return nil, fmt.Errorf("failed to list remaining photos: %w", err)
	}

	type slot struct {
		id    int64
		index int
	}
	var remaining []slot
	for rows.Next() {
		var sl slot
		if err := rows.Scan(&sl.id, &sl.index); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan photo: %w", err)
		}
		remaining = append(remaining, sl)
	}
	if err := rows.Close(); err != nil {
		return nil, fmt.Errorf("failed to close rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	for rank, sl := range remaining {
		if sl.index == rank {
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE photos SET order_index = ? WHERE id = ?
		`, rank, sl.id); err != nil {
			return nil, wrapConstraint(err, "failed to re-compact photo order")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit photo delete: %w", err)
	}
	return photo, nil
}

// DeleteByMeasurement removes all photos of a measurement and returns the
// deleted records for file cleanup.
func (s *PhotoStore) DeleteByMeasurement(ctx context.Context, measurementID int64) ([]*domain.Photo, error) {
	photos, err := s.ListByMeasurement(ctx, measurementID)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `
		DELETE FROM photos WHERE measurement_id = ?
	`, measurementID); err != nil {
		return nil, fmt.Errorf("failed to delete photos: %w", err)
	}
	return photos, nil
}

func rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		slog.Error("failed to roll back transaction", "error", err)
	}
}
