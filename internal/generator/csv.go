package generator

import (
	"bytes"
	"encoding/csv"
	"strings"

	"github.com/goliatone/go-awesome-pages/internal/domain"
)

var csvHeader = []string{"id", "title", "url", "sectionId", "sectionTitle", "description", "tags"}

func renderCSV(d *domain.Domain) ([]byte, error) {
	titles := make(map[string]string, len(d.Sections))
	for _, section := range d.Sections {
		if _, ok := titles[section.ID]; !ok {
			titles[section.ID] = section.Title
		}
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, item := range d.Items {
		record := []string{
			item.ID,
			item.Title,
			item.URL,
			item.SectionID,
			titles[item.SectionID],
			deref(item.Description),
			strings.Join(item.Tags, "|"),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
