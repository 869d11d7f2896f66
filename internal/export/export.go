// Package export renders measurements into a paginated HTML document. The
// HTML is the hand-off format: turning it into a PDF and sharing the file are
// the job of an external renderer.
package export

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io"
	"regexp"
	"strings"
	"time"

	"windowlog/internal/domain"
	"windowlog/internal/validate"
)

//go:embed templates/document.html
var templatesFS embed.FS

// HandleLabels and OpeningLabels map enum values to the display labels used
// in exported documents.
var HandleLabels = map[domain.HandlePosition]string{
	domain.HandleLeft:  "Lewa",
	domain.HandleRight: "Prawa",
}

var OpeningLabels = map[domain.OpeningType]string{
	domain.OpeningTilt:  "Uchylne",
	domain.OpeningSwing: "Rozwierane",
	domain.OpeningFixed: "Stałe",
}

// dateLayout renders timestamps as DD.MM.YYYY HH:MM.
const dateLayout = "02.01.2006 15:04"

// DefaultTitle is used when the caller does not name the document.
const DefaultTitle = "Pomiary Okien"

// Record pairs a measurement with the bytes of its photos, parallel to
// Photos. A nil entry renders the section without that image.
type Record struct {
	*domain.MeasurementWithPhotos
	Images [][]byte
}

type photoView struct {
	DataURI template.URL
	Caption string
}

type sectionView struct {
	Name         string
	CreatedAt    string
	UpdatedAt    string
	WidthMm      int
	HeightMm     int
	WidthCm      string
	HeightCm     string
	HandleLabel  string
	OpeningLabel string
	Notes        string
	Photos       []photoView
}

type documentView struct {
	Title       string
	GeneratedAt string
	Sections    []sectionView
	Count       int
}

type Generator struct {
	tmpl *template.Template
}

func NewGenerator() (*Generator, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/document.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse document template: %w", err)
	}
	return &Generator{tmpl: tmpl}, nil
}

// Render writes the full document to w: a titled header, one self-contained
// section per record with a forced page break before the next, and a footer
// with the record count.
func (g *Generator) Render(w io.Writer, title string, records []Record) error {
	if title == "" {
		title = DefaultTitle
	}

	view := documentView{
		Title:       title,
		GeneratedAt: time.Now().Format(dateLayout),
		Count:       len(records),
	}

	for _, rec := range records {
		view.Sections = append(view.Sections, buildSection(rec))
	}

	if err := g.tmpl.Execute(w, view); err != nil {
		return fmt.Errorf("failed to render document: %w", err)
	}
	return nil
}

func buildSection(rec Record) sectionView {
	s := sectionView{
		Name:         rec.Name,
		CreatedAt:    rec.CreatedAt.Format(dateLayout),
		UpdatedAt:    rec.UpdatedAt.Format(dateLayout),
		WidthMm:      rec.Width,
		HeightMm:     rec.Height,
		WidthCm:      fmt.Sprintf("%.1f", validate.MmToCm(rec.Width)),
		HeightCm:     fmt.Sprintf("%.1f", validate.MmToCm(rec.Height)),
		HandleLabel:  HandleLabels[rec.HandlePosition],
		OpeningLabel: OpeningLabels[rec.OpeningType],
		Notes:        rec.Notes,
	}

	for i := range rec.Photos {
		var data []byte
		if i < len(rec.Images) {
			data = rec.Images[i]
		}
		if data == nil {
			continue
		}
		s.Photos = append(s.Photos, photoView{
			DataURI: template.URL("data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)),
			Caption: fmt.Sprintf("Zdjęcie %d", i+1),
		})
	}

	return s
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// Filename derives a filesystem-safe document name from the measurement:
// every non-alphanumeric character replaced with a hyphen, lowercased, with
// the creation date appended.
func Filename(m *domain.Measurement) string {
	safeName := strings.ToLower(unsafeFilenameChars.ReplaceAllString(m.Name, "-"))
	return fmt.Sprintf("%s-%s.pdf", safeName, m.CreatedAt.Format("2006-01-02"))
}
