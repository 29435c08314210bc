// Package export writes human-readable views of a generated batch: a plain
// list of codes and a CSV table. Exports are write-only; nothing reads them
// back.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cardkey/cardkey/internal/model"
)

const (
	CodesFileName = "keys.txt"
	CSVFileName   = "keys.csv"

	// TimeFormat matches the ISO-8601 form used in keys.json.
	TimeFormat = "2006-01-02T15:04:05.000Z07:00"
)

// CSVHeader is the fixed header row of the CSV export.
var CSVHeader = []string{"Key", "Hash", "Created At", "Used", "Used At"}

// Files lists the paths written by WriteFiles.
type Files struct {
	Codes string
	CSV   string
}

// WriteCodes writes one bare code per line, without a trailing newline.
func WriteCodes(w io.Writer, records []model.KeyRecord) error {
	for i, r := range records {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, r.Code); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV writes the records as a CSV table with CSVHeader.
func WriteCSV(w io.Writer, records []model.KeyRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		usedAt := ""
		if r.UsedAt != nil {
			usedAt = formatTime(*r.UsedAt)
		}
		row := []string{
			r.Code,
			r.Hash,
			formatTime(r.CreatedAt),
			strconv.FormatBool(r.Used),
			usedAt,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFiles writes keys.txt and keys.csv for records into dir, replacing
// any previous export.
func WriteFiles(dir string, records []model.KeyRecord) (Files, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Files{}, fmt.Errorf("create export dir: %w", err)
	}

	files := Files{
		Codes: filepath.Join(dir, CodesFileName),
		CSV:   filepath.Join(dir, CSVFileName),
	}

	var buf bytes.Buffer
	if err := WriteCodes(&buf, records); err != nil {
		return Files{}, fmt.Errorf("render key list: %w", err)
	}
	if err := os.WriteFile(files.Codes, buf.Bytes(), 0644); err != nil {
		return Files{}, fmt.Errorf("write key list: %w", err)
	}

	buf.Reset()
	if err := WriteCSV(&buf, records); err != nil {
		return Files{}, fmt.Errorf("render csv: %w", err)
	}
	if err := os.WriteFile(files.CSV, buf.Bytes(), 0644); err != nil {
		return Files{}, fmt.Errorf("write csv: %w", err)
	}
	return files, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}
