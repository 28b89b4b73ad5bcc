package storage

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// BuildZip packs every artifact as a CSV entry at the archive root.
func BuildZip(artifacts []Artifact) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, a := range artifacts {
		data, err := EncodeTable(a.Table)
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("zip: encode %s: %w", a.Name, err)
		}
		w, err := zw.Create(a.Name)
		if err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("zip: create entry %s: %w", a.Name, err)
		}
		if _, err := w.Write(data); err != nil {
			_ = zw.Close()
			return nil, fmt.Errorf("zip: write entry %s: %w", a.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: finalize: %w", err)
	}
	return buf.Bytes(), nil
}
