package validate

import (
	"fmt"
	"math"
)

// MmToCm converts millimeters to centimeters.
func MmToCm(mm int) float64 {
	return float64(mm) / 10
}

// FormatFileSize renders a byte count in a human-readable unit, e.g. "2.50 MB".
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 B"
	}
	const k = 1024
	sizes := []string{"B", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(k)))
	if i >= len(sizes) {
		i = len(sizes) - 1
	}
	return fmt.Sprintf("%.2f %s", float64(bytes)/math.Pow(k, float64(i)), sizes[i])
}
