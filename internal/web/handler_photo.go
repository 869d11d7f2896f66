package web

import (
	"io"
	"net/http"
	"strconv"

	"windowlog/internal/validate"
)

// maxUploadSize caps a whole multipart photo upload.
const maxUploadSize = 100 * 1024 * 1024

// allowedImageTypes is the set of MIME types accepted for uploaded photos,
// matching the formats the normalization pipeline can decode.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/bmp":  true,
}

func (s *Server) handleAttachPhotos(w http.ResponseWriter, r *http.Request) {
	measurementID, err := parseID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid measurement id"})
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to parse form"})
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one photo file is required"})
		return
	}

	images := make([][]byte, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to open uploaded file"})
			return
		}
		data, err := io.ReadAll(f)
		if cerr := f.Close(); cerr != nil {
			s.logger.Error("failed to close upload file", "error", cerr)
		}
		if err != nil {
			s.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to read file"})
			s.logger.Error("read upload failed", "measurement_id", measurementID, "error", err)
			return
		}
		if !allowedImageTypes[http.DetectContentType(data)] {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported image format"})
			return
		}
		s.logger.Debug("photo received", "measurement_id", measurementID,
			"filename", fh.Filename, "size", validate.FormatFileSize(int64(len(data))))
		images = append(images, data)
	}

	added, err := s.service.AttachPhotos(r.Context(), measurementID, images, func(current, total int) {
		s.logger.Debug("photo normalized", "measurement_id", measurementID, "current", current, "total", total)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]*photoJSON, 0, len(added))
	for _, p := range added {
		resp = append(resp, toPhotoJSON(p))
	}
	s.writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid photo id"})
		return
	}

	_, data, err := s.service.GetPhotoBytes(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write photo response", "photo_id", id, "error", err)
	}
}

// defaultThumbnailSize is the square thumbnail edge used when the client does
// not ask for a size.
const defaultThumbnailSize = 300

func (s *Server) handleGetPhotoThumbnail(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid photo id"})
		return
	}

	size := defaultThumbnailSize
	if v := r.URL.Query().Get("size"); v != "" {
		size, err = strconv.Atoi(v)
		if err != nil || size < 1 || size > 1024 {
			s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "size must be between 1 and 1024"})
			return
		}
	}

	_, data, err := s.service.GetPhotoThumbnail(r.Context(), id, size)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	if _, err := w.Write(data); err != nil {
		s.logger.Error("failed to write thumbnail response", "photo_id", id, "error", err)
	}
}

func (s *Server) handleDeletePhoto(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid photo id"})
		return
	}

	if err := s.service.RemovePhoto(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
