package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"windowlog/internal/db"
	"windowlog/internal/export"
	"windowlog/internal/photostore/local"
	"windowlog/internal/service"
	"windowlog/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	photoStg, err := local.NewLocalPhotoStore(t.TempDir())
	require.NoError(t, err)

	gen, err := export.NewGenerator()
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewMeasurementService(
		store.NewMeasurementStore(d),
		store.NewPhotoStore(d),
		photoStg,
		gen,
		t.TempDir(),
		logger,
	)
	return NewServer(svc, logger)
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func createMeasurement(t *testing.T, srv *Server) int64 {
	t.Helper()
	rec := doJSON(t, srv, http.MethodPost, "/measurements", map[string]any{
		"name":            "Salon",
		"width":           1200,
		"height":          1500,
		"handle_position": "left",
		"opening_type":    "tilt",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &resp)
	return resp.ID
}

func testJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func uploadPhotos(t *testing.T, srv *Server, measurementID int64, images ...[]byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for i, data := range images {
		fw, err := mw.CreateFormFile("photos", fmt.Sprintf("photo%d.jpg", i))
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/measurements/%d/photos", measurementID), &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndGetMeasurement(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/measurements/%d", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Name           string `json:"name"`
		Width          int    `json:"width"`
		Height         int    `json:"height"`
		HandlePosition string `json:"handle_position"`
		OpeningType    string `json:"opening_type"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, "Salon", resp.Name)
	assert.Equal(t, 1200, resp.Width)
	assert.Equal(t, 1500, resp.Height)
	assert.Equal(t, "left", resp.HandlePosition)
	assert.Equal(t, "tilt", resp.OpeningType)
}

func TestCreateMeasurementValidationErrors(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/measurements", map[string]any{
		"name":            "",
		"width":           100,
		"height":          9999,
		"handle_position": "middle",
		"opening_type":    "tilt",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp struct {
		Errors map[string]string `json:"errors"`
	}
	decodeBody(t, rec, &resp)
	assert.Contains(t, resp.Errors, "name")
	assert.Contains(t, resp.Errors, "width")
	assert.Contains(t, resp.Errors, "height")
	assert.Contains(t, resp.Errors, "handle_position")
}

func TestGetMeasurementNotFound(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/measurements/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateMeasurement(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	rec := doJSON(t, srv, http.MethodPatch, fmt.Sprintf("/measurements/%d", id), map[string]any{
		"width": 2400,
		"notes": "wymiana parapetu",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Width int    `json:"width"`
		Notes string `json:"notes"`
		Name  string `json:"name"`
	}
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2400, resp.Width)
	assert.Equal(t, "wymiana parapetu", resp.Notes)
	assert.Equal(t, "Salon", resp.Name)
}

func TestDeleteMeasurement(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	rec := doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/measurements/%d", id), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/measurements/%d", id), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearch(t *testing.T) {
	srv := newTestServer(t)
	createMeasurement(t, srv)

	rec := doJSON(t, srv, http.MethodGet, "/search?q=sal", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp []struct {
		Name string `json:"name"`
	}
	decodeBody(t, rec, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, "Salon", resp[0].Name)

	rec = doJSON(t, srv, http.MethodGet, "/search?q=piwnica", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeBody(t, rec, &resp)
	assert.Empty(t, resp)
}

func TestUploadAndServePhotos(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	rec := uploadPhotos(t, srv, id, testJPEG(t, 64, 48), testJPEG(t, 32, 32))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var photos []struct {
		ID         int64 `json:"id"`
		OrderIndex int   `json:"order_index"`
	}
	decodeBody(t, rec, &photos)
	require.Len(t, photos, 2)
	assert.Equal(t, 0, photos[0].OrderIndex)
	assert.Equal(t, 1, photos[1].OrderIndex)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/photos/%d", photos[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestGetPhotoThumbnail(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	rec := uploadPhotos(t, srv, id, testJPEG(t, 400, 300))
	require.Equal(t, http.StatusCreated, rec.Code)

	var photos []struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &photos)
	require.Len(t, photos, 1)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/photos/%d/thumbnail?size=64", photos[0].ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))

	thumb, err := jpeg.Decode(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 64, thumb.Bounds().Dx())
	assert.Equal(t, 64, thumb.Bounds().Dy())

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/photos/%d/thumbnail?size=9999", photos[0].ID), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsNonImage(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	rec := uploadPhotos(t, srv, id, []byte("plain text, not an image"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadOverPhotoCap(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	img := testJPEG(t, 16, 16)
	rec := uploadPhotos(t, srv, id, img, img, img, img, img, img, img, img)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = uploadPhotos(t, srv, id, img)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDeletePhoto(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	rec := uploadPhotos(t, srv, id, testJPEG(t, 32, 32), testJPEG(t, 32, 32))
	require.Equal(t, http.StatusCreated, rec.Code)

	var photos []struct {
		ID int64 `json:"id"`
	}
	decodeBody(t, rec, &photos)

	rec = doJSON(t, srv, http.MethodDelete, fmt.Sprintf("/photos/%d", photos[0].ID), nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, fmt.Sprintf("/measurements/%d", id), nil)
	var m struct {
		Photos []struct {
			OrderIndex int `json:"order_index"`
		} `json:"photos"`
	}
	decodeBody(t, rec, &m)
	require.Len(t, m.Photos, 1)
	assert.Equal(t, 0, m.Photos[0].OrderIndex)
}

func TestExportMeasurement(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	rec := doJSON(t, srv, http.MethodGet, fmt.Sprintf("/measurements/%d/export", id), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "salon-")

	html := rec.Body.String()
	assert.Contains(t, html, "Salon")
	assert.Contains(t, html, "150.0 cm")
}

func TestExportToFile(t *testing.T) {
	srv := newTestServer(t)
	id := createMeasurement(t, srv)

	rec := doJSON(t, srv, http.MethodPost, "/exports", map[string]any{
		"ids":   []int64{id},
		"title": "Oferta",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Path     string `json:"path"`
		Filename string `json:"filename"`
	}
	decodeBody(t, rec, &resp)
	assert.True(t, strings.HasSuffix(resp.Path, ".html"))
	assert.True(t, strings.HasSuffix(resp.Filename, ".pdf"))
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/measurements", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}
