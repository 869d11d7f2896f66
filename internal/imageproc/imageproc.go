// Package imageproc normalizes captured images before they are stored:
// bounded dimensions, JPEG recompression, bounded byte size. CPU-bound and
// strictly sequential; batches report progress after each image.
package imageproc

import (
	"bytes"
	"fmt"
	"io"

	"github.com/disintegration/imaging"

	"windowlog/internal/domain"
)

const (
	// MaxDimension bounds the longer side of a normalized image.
	MaxDimension = 1920

	// MaxOutputBytes bounds the encoded size of a normalized image.
	MaxOutputBytes = 5 * 1024 * 1024

	// jpegQuality is the starting encode quality; it steps down by 10 until
	// the output fits MaxOutputBytes, never below minQuality.
	jpegQuality = 80
	minQuality  = 30

	thumbnailQuality = 70
)

// Result describes a normalized image.
type Result struct {
	Data   []byte
	Width  int
	Height int
	Size   int64
}

// Normalize decodes r, scales it down so the longer dimension does not exceed
// MaxDimension (aspect ratio preserved), and re-encodes as JPEG within
// MaxOutputBytes. Corrupt or unsupported input fails with
// domain.ErrProcessing.
func Normalize(r io.Reader) (*Result, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProcessing, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > MaxDimension || bounds.Dy() > MaxDimension {
		if bounds.Dx() >= bounds.Dy() {
			img = imaging.Resize(img, MaxDimension, 0, imaging.Lanczos)
		} else {
			img = imaging.Resize(img, 0, MaxDimension, imaging.Lanczos)
		}
	}

	for quality := jpegQuality; quality >= minQuality; quality -= 10 {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, fmt.Errorf("%w: encode: %v", domain.ErrProcessing, err)
		}
		if buf.Len() <= MaxOutputBytes {
			bounds = img.Bounds()
			return &Result{
				Data:   buf.Bytes(),
				Width:  bounds.Dx(),
				Height: bounds.Dy(),
				Size:   int64(buf.Len()),
			}, nil
		}
	}

	return nil, fmt.Errorf("%w: image exceeds %d bytes at minimum quality", domain.ErrProcessing, MaxOutputBytes)
}

// NormalizeBatch processes images one at a time, invoking onProgress with
// (processed, total) after each. On failure it returns the results completed
// so far and an error identifying the failing image by index; the caller
// decides whether to abort or skip.
func NormalizeBatch(images [][]byte, onProgress func(current, total int)) ([]*Result, error) {
	results := make([]*Result, 0, len(images))
	for i, data := range images {
		res, err := Normalize(bytes.NewReader(data))
		if err != nil {
			return results, fmt.Errorf("image %d of %d: %w", i+1, len(images), err)
		}
		results = append(results, res)
		if onProgress != nil {
			onProgress(i+1, len(images))
		}
	}
	return results, nil
}

// Thumbnail produces a square, center-cropped JPEG thumbnail of size px.
func Thumbnail(data []byte, size int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrProcessing, err)
	}

	thumb := imaging.Thumbnail(img, size, size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbnailQuality)); err != nil {
		return nil, fmt.Errorf("%w: encode: %v", domain.ErrProcessing, err)
	}
	return buf.Bytes(), nil
}
