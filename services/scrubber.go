package services

import (
	"errors"
	"fmt"
	"strings"

	"phone-scrubber/models"
	"phone-scrubber/utils"
)

// CapturePolicy controls how many removed records a row can produce.
type CapturePolicy int

const (
	// CaptureFirstPerRow keeps one removed record per row: the first
	// matching phone column wins.
	CaptureFirstPerRow CapturePolicy = iota
	// CapturePerColumn keeps one removed record per matched cell.
	CapturePerColumn
)

func (p CapturePolicy) String() string {
	switch p {
	case CaptureFirstPerRow:
		return "row"
	case CapturePerColumn:
		return "column"
	default:
		return fmt.Sprintf("CapturePolicy(%d)", int(p))
	}
}

// ParseCapturePolicy accepts "row" (default when empty) or "column".
func ParseCapturePolicy(s string) (CapturePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "row", "first":
		return CaptureFirstPerRow, nil
	case "column", "cell":
		return CapturePerColumn, nil
	}
	return 0, fmt.Errorf("unknown capture policy %q", s)
}

// Scrubber blanks removal-set phones in a log dataset and builds the
// matching removed-records dataset.
type Scrubber struct {
	logger         *utils.Logger
	classifier     ColumnClassifier
	policy         CapturePolicy
	numericTextAll bool
}

// NewScrubber creates a Scrubber. A nil classifier means the default
// substring heuristic.
func NewScrubber(logger *utils.Logger, classifier ColumnClassifier, policy CapturePolicy, numericTextAll bool) *Scrubber {
	if classifier == nil {
		classifier = NewSubstringClassifier()
	}
	return &Scrubber{
		logger:         logger,
		classifier:     classifier,
		policy:         policy,
		numericTextAll: numericTextAll,
	}
}

// Scrub processes one log dataset. The input table is not modified.
func (s *Scrubber) Scrub(name string, log *models.Table, removal models.RemovalSet) (models.LogResult, error) {
	if log == nil {
		return models.LogResult{}, errors.New("log dataset is nil")
	}

	work := s.ingest(log)
	phoneCols := PhoneColumns(s.classifier, work.Columns)
	result := models.LogResult{Name: name, Scrubbed: work}

	if len(phoneCols) == 0 {
		s.logger.Warn("[scrubber] %s: no phone columns found, passing through", name)
		result.Removed = &models.Table{Columns: append([]string(nil), work.Columns...)}
		return result, nil
	}

	for _, col := range phoneCols {
		result.PhoneColumns = append(result.PhoneColumns, work.Columns[col])
	}
	s.logger.Debug("[scrubber] %s: phone columns %v", name, result.PhoneColumns)

	var records [][]string
	captured := make(map[int]bool)

	for _, col := range phoneCols {
		for i, row := range work.Rows {
			original := NumberToText(row[col])
			row[col] = original
			if !removal.Contains(NormalizePhone(original)) {
				continue
			}

			if s.policy == CapturePerColumn || !captured[i] {
				rec := append([]string(nil), row...)
				for _, pc := range phoneCols {
					rec[pc] = ""
				}
				rec[col] = original
				records = append(records, rec)
				result.RemovedRows = append(result.RemovedRows, i)
				captured[i] = true
			}

			row[col] = ""
			result.CellsCleared++
		}
	}

	result.Removed = models.NewTable(work.Columns, records)
	clearNullLike(result.Scrubbed)
	clearNullLike(result.Removed)

	s.logger.Info("[scrubber] %s: cleared %d cells, %d removed records",
		name, result.CellsCleared, len(records))
	return result, nil
}

// ingest copies the table with trimmed, lowercased column names.
func (s *Scrubber) ingest(log *models.Table) *models.Table {
	work := log.Clone()
	for i, c := range work.Columns {
		work.Columns[i] = strings.ToLower(strings.TrimSpace(c))
	}
	if s.numericTextAll {
		for _, row := range work.Rows {
			for j, v := range row {
				row[j] = NumberToText(v)
			}
		}
	}
	return work
}

func clearNullLike(t *models.Table) {
	for _, row := range t.Rows {
		for j, v := range row {
			if IsNullLike(v) {
				row[j] = ""
			}
		}
	}
}
