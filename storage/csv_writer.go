package storage

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"phone-scrubber/models"
)

// CSVWriter writes tables to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	return &CSVWriter{file: f, writer: csv.NewWriter(f)}, nil
}

// WriteTable writes the header row followed by every row of t.
func (c *CSVWriter) WriteTable(t *models.Table) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return writeTable(c.writer, t)
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		_ = c.file.Close()
		return err
	}
	return c.file.Close()
}

// EncodeTable renders t as CSV bytes.
func EncodeTable(t *models.Table) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTable(csv.NewWriter(&buf), t); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTable(w *csv.Writer, t *models.Table) error {
	if t == nil {
		t = &models.Table{}
	}
	if len(t.Columns) > 0 {
		if err := w.Write(t.Columns); err != nil {
			return fmt.Errorf("csv: write header: %w", err)
		}
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

// WriteRemovalSet saves the matched phone numbers, sorted, one per row.
func WriteRemovalSet(path string, set models.RemovalSet) error {
	w, err := NewCSVWriter(path)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, set.Len())
	for _, p := range set.Sorted() {
		rows = append(rows, []string{p})
	}
	if err := w.WriteTable(models.NewTable([]string{"phone"}, rows)); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}
