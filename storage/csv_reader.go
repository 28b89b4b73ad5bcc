package storage

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"phone-scrubber/models"
)

// DefaultEncodings is the order in which CSV input encodings are tried.
var DefaultEncodings = []string{"utf-8", "utf-16", "windows-1252", "iso-8859-1"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadTable loads a CSV file, trying each encoding in turn until one
// decodes the bytes. It returns the table and the encoding that worked.
func ReadTable(path string, encodings []string) (*models.Table, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("csv: read %q: %w", path, err)
	}
	t, enc, err := DecodeTable(data, encodings)
	if err != nil {
		return nil, "", fmt.Errorf("csv: %q: %w", path, err)
	}
	return t, enc, nil
}

// DecodeTable parses CSV bytes with the first encoding that accepts them.
func DecodeTable(data []byte, encodings []string) (*models.Table, string, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}

	var errs []error
	for _, enc := range encodings {
		text, err := decode(data, enc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", enc, err))
			continue
		}
		t, err := parseCSV(text)
		if err != nil {
			return nil, enc, err
		}
		return t, enc, nil
	}
	return nil, "", fmt.Errorf("no encoding could decode input: %w", errors.Join(errs...))
}

func decode(data []byte, enc string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(enc)) {
	case "utf-8", "utf8":
		data = bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(data) {
			return "", errors.New("invalid UTF-8")
		}
		return string(data), nil
	case "utf-16", "utf16":
		out, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case "windows-1252", "cp1252":
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case "iso-8859-1", "latin-1", "latin1":
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	}
	return "", fmt.Errorf("unsupported encoding %q", enc)
}

func parseCSV(text string) (*models.Table, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("parse: no header row")
	}
	return models.NewTable(records[0], records[1:]), nil
}
