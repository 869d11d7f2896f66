package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"windowlog/internal/domain"
	"windowlog/internal/export"
	"windowlog/internal/imageproc"
	"windowlog/internal/photostore"
	"windowlog/internal/validate"
)

// measurementRepository is the subset of store.MeasurementStore that
// MeasurementService requires.
type measurementRepository interface {
	Create(ctx context.Context, m *domain.Measurement) (*domain.Measurement, error)
	GetByID(ctx context.Context, id int64) (*domain.Measurement, error)
	GetWithPhotos(ctx context.Context, id int64) (*domain.MeasurementWithPhotos, error)
	List(ctx context.Context) ([]*domain.Measurement, error)
	Search(ctx context.Context, term string) ([]*domain.Measurement, error)
	Count(ctx context.Context) (int, error)
	Update(ctx context.Context, id int64, upd domain.MeasurementUpdate) error
	Delete(ctx context.Context, id int64) error
}

// photoRepository is the subset of store.PhotoStore that MeasurementService
// requires.
type photoRepository interface {
	AddBatch(ctx context.Context, measurementID int64, photos []*domain.Photo) ([]*domain.Photo, error)
	GetByID(ctx context.Context, id int64) (*domain.Photo, error)
	ListByMeasurement(ctx context.Context, measurementID int64) ([]*domain.Photo, error)
	CountByMeasurement(ctx context.Context, measurementID int64) (int, error)
	Delete(ctx context.Context, id int64) (*domain.Photo, error)
}

type MeasurementService struct {
	measurements measurementRepository
	photos       photoRepository
	photoStg     photostore.PhotoStore
	generator    *export.Generator
	exportDir    string
	logger       *slog.Logger
}

func NewMeasurementService(
	measurements measurementRepository,
	photos photoRepository,
	photoStg photostore.PhotoStore,
	generator *export.Generator,
	exportDir string,
	logger *slog.Logger,
) *MeasurementService {
	return &MeasurementService{
		measurements: measurements,
		photos:       photos,
		photoStg:     photoStg,
		generator:    generator,
		exportDir:    exportDir,
		logger:       logger,
	}
}

// CreateInput is the raw measurement form as submitted by the UI. Dimensions
// arrive as strings because that is what the form produces.
type CreateInput struct {
	Name           string
	Width          string
	Height         string
	HandlePosition string
	OpeningType    string
	Notes          string
}

// CreateMeasurement validates the form and commits it. Validation failures
// surface as *ValidationError before any write is attempted.
func (s *MeasurementService) CreateMeasurement(ctx context.Context, in CreateInput) (*domain.Measurement, error) {
	errs := validate.Form(validate.FormInput{
		Name:           in.Name,
		Height:         in.Height,
		Width:          in.Width,
		HandlePosition: in.HandlePosition,
		OpeningType:    in.OpeningType,
		Notes:          in.Notes,
	})
	if validate.HasErrors(errs) {
		return nil, &ValidationError{Fields: errs}
	}

	width, _ := strconv.Atoi(in.Width)
	height, _ := strconv.Atoi(in.Height)

	created, err := s.measurements.Create(ctx, &domain.Measurement{
		Name:           in.Name,
		Width:          width,
		Height:         height,
		HandlePosition: domain.HandlePosition(in.HandlePosition),
		OpeningType:    domain.OpeningType(in.OpeningType),
		Notes:          in.Notes,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("measurement created", "id", created.ID, "name", created.Name)
	return created, nil
}

// GetMeasurement returns the measurement with its photos ordered by display
// position.
func (s *MeasurementService) GetMeasurement(ctx context.Context, id int64) (*domain.MeasurementWithPhotos, error) {
	m, err := s.measurements.GetWithPhotos(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("measurement %d: %w", id, domain.ErrNotFound)
	}
	return m, nil
}

func (s *MeasurementService) ListMeasurements(ctx context.Context) ([]*domain.Measurement, error) {
	return s.measurements.List(ctx)
}

func (s *MeasurementService) SearchMeasurements(ctx context.Context, term string) ([]*domain.Measurement, error) {
	return s.measurements.Search(ctx, term)
}

func (s *MeasurementService) CountMeasurements(ctx context.Context) (int, error) {
	return s.measurements.Count(ctx)
}

// UpdateInput mirrors domain.MeasurementUpdate with raw string dimensions.
type UpdateInput struct {
	Name           *string
	Width          *string
	Height         *string
	HandlePosition *string
	OpeningType    *string
	Notes          *string
}

// UpdateMeasurement validates and applies the supplied fields only;
// updated_at is refreshed regardless.
func (s *MeasurementService) UpdateMeasurement(ctx context.Context, id int64, in UpdateInput) (*domain.Measurement, error) {
	errs := make(map[string]string)
	upd := domain.MeasurementUpdate{}

	if in.Name != nil {
		if r := validate.Name(*in.Name); !r.Valid {
			errs["name"] = r.Error
		} else {
			upd.Name = in.Name
		}
	}
	if in.Width != nil {
		if r := validate.Width(*in.Width); !r.Valid {
			errs["width"] = r.Error
		} else {
			w, _ := strconv.Atoi(*in.Width)
			upd.Width = &w
		}
	}
	if in.Height != nil {
		if r := validate.Height(*in.Height); !r.Valid {
			errs["height"] = r.Error
		} else {
			h, _ := strconv.Atoi(*in.Height)
			upd.Height = &h
		}
	}
	if in.HandlePosition != nil {
		if r := validate.HandlePosition(*in.HandlePosition); !r.Valid {
			errs["handle_position"] = r.Error
		} else {
			pos := domain.HandlePosition(*in.HandlePosition)
			upd.HandlePosition = &pos
		}
	}
	if in.OpeningType != nil {
		if r := validate.OpeningType(*in.OpeningType); !r.Valid {
			errs["opening_type"] = r.Error
		} else {
			typ := domain.OpeningType(*in.OpeningType)
			upd.OpeningType = &typ
		}
	}
	if in.Notes != nil {
		if r := validate.Notes(*in.Notes); !r.Valid {
			errs["notes"] = r.Error
		} else {
			upd.Notes = in.Notes
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if err := s.measurements.Update(ctx, id, upd); err != nil {
		return nil, err
	}

	s.logger.Info("measurement updated", "id", id)
	return s.measurements.GetByID(ctx, id)
}

// DeleteMeasurement removes the measurement, its photo rows (via cascade) and
// the stored photo files. File cleanup failures are logged, not fatal: the
// records are already gone.
func (s *MeasurementService) DeleteMeasurement(ctx context.Context, id int64) error {
	photos, err := s.photos.ListByMeasurement(ctx, id)
	if err != nil {
		return err
	}

	if err := s.measurements.Delete(ctx, id); err != nil {
		return err
	}

	for _, p := range photos {
		if err := s.photoStg.Delete(ctx, p.URI); err != nil {
			s.logger.Error("failed to delete photo file", "storage_key", p.URI, "error", err)
		}
	}

	s.logger.Info("measurement deleted", "id", id, "photos_removed", len(photos))
	return nil
}

// AttachPhotos normalizes each image, saves the bytes, and records all photos
// in one atomic batch appended after the measurement's existing photos.
// onProgress, when non-nil, is invoked after each image is normalized. If the
// batch insert fails, the saved files are rolled back.
func (s *MeasurementService) AttachPhotos(ctx context.Context, measurementID int64, images [][]byte, onProgress func(current, total int)) ([]*domain.Photo, error) {
	m, err := s.measurements.GetByID(ctx, measurementID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("measurement %d: %w", measurementID, domain.ErrNotFound)
	}

	existing, err := s.photos.CountByMeasurement(ctx, measurementID)
	if err != nil {
		return nil, err
	}
	if r := validate.PhotoCount(existing + len(images)); !r.Valid {
		return nil, fmt.Errorf("%s: %w", r.Error, domain.ErrPhotoLimit)
	}

	s.logger.Info("photo attach started", "measurement_id", measurementID, "count", len(images))

	results, err := imageproc.NormalizeBatch(images, onProgress)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("measurement_%d", measurementID)
	keys := make([]string, 0, len(results))
	for _, res := range results {
		key, err := s.photoStg.Save(ctx, prefix, bytes.NewReader(res.Data))
		if err != nil {
			s.rollbackFiles(ctx, keys)
			return nil, fmt.Errorf("failed to save photo: %w", err)
		}
		keys = append(keys, key)
	}

	batch := make([]*domain.Photo, 0, len(keys))
	for i, key := range keys {
		batch = append(batch, &domain.Photo{
			MeasurementID: measurementID,
			URI:           key,
			OrderIndex:    existing + i,
		})
	}

	added, err := s.photos.AddBatch(ctx, measurementID, batch)
	if err != nil {
		s.rollbackFiles(ctx, keys)
		return nil, err
	}

	s.logger.Info("photo attach complete", "measurement_id", measurementID, "added", len(added))
	return added, nil
}

func (s *MeasurementService) rollbackFiles(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.photoStg.Delete(ctx, key); err != nil {
			s.logger.Error("failed to roll back photo file", "storage_key", key, "error", err)
		}
	}
}

// GetPhotoBytes returns the photo record and its stored JPEG bytes.
func (s *MeasurementService) GetPhotoBytes(ctx context.Context, photoID int64) (*domain.Photo, []byte, error) {
	photo, err := s.photos.GetByID(ctx, photoID)
	if err != nil {
		return nil, nil, err
	}
	if photo == nil {
		return nil, nil, fmt.Errorf("photo %d: %w", photoID, domain.ErrNotFound)
	}

	rc, err := s.photoStg.Get(ctx, photo.URI)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read photo bytes: %w", err)
	}
	defer func() {
		if err := rc.Close(); err != nil {
			s.logger.Error("failed to close photo reader", "storage_key", photo.URI, "error", err)
		}
	}()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read photo bytes: %w", err)
	}
	return photo, data, nil
}

// GetPhotoThumbnail returns the photo record and a square thumbnail of the
// stored image, suitable for list views.
func (s *MeasurementService) GetPhotoThumbnail(ctx context.Context, photoID int64, size int) (*domain.Photo, []byte, error) {
	photo, data, err := s.GetPhotoBytes(ctx, photoID)
	if err != nil {
		return nil, nil, err
	}

	thumb, err := imageproc.Thumbnail(data, size)
	if err != nil {
		return nil, nil, err
	}
	return photo, thumb, nil
}

// RemovePhoto deletes the photo row (re-compacting display positions) and the
// stored file.
func (s *MeasurementService) RemovePhoto(ctx context.Context, photoID int64) error {
	photo, err := s.photos.Delete(ctx, photoID)
	if err != nil {
		return err
	}

	if err := s.photoStg.Delete(ctx, photo.URI); err != nil {
		s.logger.Error("failed to delete photo file", "storage_key", photo.URI, "error", err)
	}

	s.logger.Info("photo removed", "id", photoID, "measurement_id", photo.MeasurementID)
	return nil
}

// ExportResult is a rendered document plus the filename the external renderer
// should save it under (with a .pdf extension, since that is the final form).
type ExportResult struct {
	Filename string
	HTML     []byte
}

// Export renders the given measurements into one document. A photo whose
// bytes cannot be read is logged and skipped; the section itself still
// renders.
func (s *MeasurementService) Export(ctx context.Context, ids []int64, title string) (*ExportResult, error) {
	records := make([]export.Record, 0, len(ids))
	for _, id := range ids {
		m, err := s.GetMeasurement(ctx, id)
		if err != nil {
			return nil, err
		}

		images := make([][]byte, len(m.Photos))
		for i, p := range m.Photos {
			rc, err := s.photoStg.Get(ctx, p.URI)
			if err != nil {
				s.logger.Error("failed to read photo for export", "storage_key", p.URI, "error", err)
				continue
			}
			data, err := io.ReadAll(rc)
			if cerr := rc.Close(); cerr != nil {
				s.logger.Error("failed to close photo reader", "storage_key", p.URI, "error", cerr)
			}
			if err != nil {
				s.logger.Error("failed to read photo for export", "storage_key", p.URI, "error", err)
				continue
			}
			images[i] = data
		}

		records = append(records, export.Record{MeasurementWithPhotos: m, Images: images})
	}

	var buf bytes.Buffer
	if err := s.generator.Render(&buf, title, records); err != nil {
		return nil, err
	}

	filename := fmt.Sprintf("pomiary-%s.pdf", time.Now().Format("2006-01-02"))
	if len(records) == 1 {
		filename = export.Filename(&records[0].Measurement)
	}

	s.logger.Info("export rendered", "measurements", len(records), "filename", filename)
	return &ExportResult{Filename: filename, HTML: buf.Bytes()}, nil
}

// ExportToFile renders the document and writes the HTML into the configured
// export directory, returning the file path. The external renderer picks the
// file up from there.
func (s *MeasurementService) ExportToFile(ctx context.Context, ids []int64, title string) (string, *ExportResult, error) {
	result, err := s.Export(ctx, ids, title)
	if err != nil {
		return "", nil, err
	}

	if err := os.MkdirAll(s.exportDir, 0755); err != nil {
		return "", nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	htmlName := result.Filename[:len(result.Filename)-len(".pdf")] + ".html"
	path := filepath.Join(s.exportDir, htmlName)
	if err := os.WriteFile(path, result.HTML, 0644); err != nil {
		return "", nil, fmt.Errorf("failed to write export file: %w", err)
	}

	s.logger.Info("export written", "path", path)
	return path, result, nil
}
