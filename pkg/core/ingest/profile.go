// Package ingest profiles uploaded tabular files and converts non-CSV
// formats into CSV the analysis passes can consume. Profiles are captured
// once at upload time and treated as read-only afterward.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Montabos/Quantis/pkg/models"
)

// maxSampleRows bounds how many data rows feed dtype inference.
const maxSampleRows = 50

var totalRowKeywords = []string{"total", "subtotal", "somme", "cumul"}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006-01",
	"2006/01/02",
	"Jan 2006",
	"January 2006",
}

// ProfileCSV reads a CSV stream and captures its column-level metadata.
// The first record is treated as the header row.
func ProfileCSV(fileID, name string, r io.Reader) (*models.FileColumnProfile, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file %s is empty", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", name, err)
	}

	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}

	profile := &models.FileColumnProfile{
		FileID:  fileID,
		Name:    name,
		Columns: columns,
		Dtypes:  make(map[string]string, len(columns)),
	}

	samples := make([][]string, 0, maxSampleRows)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are counted but not sampled.
			profile.NumRows++
			continue
		}
		profile.NumRows++
		if isTotalRow(record) {
			profile.HasTotalRows = true
		}
		if len(samples) < maxSampleRows {
			samples = append(samples, record)
		}
	}

	for i, col := range columns {
		profile.Dtypes[col] = inferDtype(samples, i)
	}
	if len(samples) > 5 {
		samples = samples[:5]
	}
	profile.SampleRows = samples

	return profile, nil
}

// ProfileCSVFile is ProfileCSV over a file on disk, using the base name as
// the display name.
func ProfileCSVFile(fileID, path string) (*models.FileColumnProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	name := path
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		name = path[idx+1:]
	}
	return ProfileCSV(fileID, name, f)
}

func isTotalRow(record []string) bool {
	for _, cell := range record {
		lowered := strings.ToLower(strings.TrimSpace(cell))
		for _, kw := range totalRowKeywords {
			if strings.HasPrefix(lowered, kw) {
				return true
			}
		}
	}
	return false
}

// inferDtype classifies a column as date, number, or text by majority vote
// over the sampled rows. Empty cells don't vote.
func inferDtype(samples [][]string, col int) string {
	var dates, numbers, texts int
	for _, row := range samples {
		if col >= len(row) {
			continue
		}
		value := strings.TrimSpace(row[col])
		if value == "" {
			continue
		}
		switch {
		case looksLikeDate(value):
			dates++
		case looksLikeNumber(value):
			numbers++
		default:
			texts++
		}
	}
	switch {
	case dates >= numbers && dates >= texts && dates > 0:
		return "date"
	case numbers >= texts && numbers > 0:
		return "number"
	default:
		return "text"
	}
}

func looksLikeDate(value string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, value); err == nil {
			return true
		}
	}
	return false
}

func looksLikeNumber(value string) bool {
	cleaned := strings.NewReplacer(" ", "", " ", "", "€", "", "$", "", "%", "", ",", ".").Replace(value)
	cleaned = strings.TrimSuffix(strings.ToLower(cleaned), "k")
	if cleaned == "" || cleaned == "-" || cleaned == "+" {
		return false
	}
	_, err := strconv.ParseFloat(cleaned, 64)
	return err == nil
}
