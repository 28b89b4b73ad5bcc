package models

import "sort"

// OccurrenceColumn is appended to the list dataset by aggregation.
const OccurrenceColumn = "occurrence"

// Condition selects list phones of one category seen at least Threshold times.
type Condition struct {
	Category  string `validate:"required"`
	Threshold int    `validate:"min=1"`
}

// AggregatedList is the list dataset after phone normalization with the
// occurrence column joined onto every row.
type AggregatedList struct {
	Table           *Table
	CategoryIndex   int
	PhoneIndex      int
	OccurrenceIndex int
	Occurrences     []int
}

// RemovalSet is the frozen set of normalized phone numbers to scrub.
// It is never mutated after construction, so it is safe to share
// across goroutines.
type RemovalSet struct {
	phones map[string]struct{}
}

// NewRemovalSet builds a set from phones, skipping empty strings.
func NewRemovalSet(phones []string) RemovalSet {
	m := make(map[string]struct{}, len(phones))
	for _, p := range phones {
		if p != "" {
			m[p] = struct{}{}
		}
	}
	return RemovalSet{phones: m}
}

// Contains reports whether phone is slated for removal.
func (s RemovalSet) Contains(phone string) bool {
	_, ok := s.phones[phone]
	return ok
}

// Len returns the number of distinct phones.
func (s RemovalSet) Len() int { return len(s.phones) }

// Sorted returns the phones in ascending order.
func (s RemovalSet) Sorted() []string {
	out := make([]string, 0, len(s.phones))
	for p := range s.phones {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// LogInput is one log dataset handed to the pipeline. Err carries an
// upstream ingestion failure; such logs are reported, not scrubbed.
type LogInput struct {
	Name  string
	Table *Table
	Err   error
}

// LogResult is the outcome for one log dataset.
type LogResult struct {
	Name         string
	Scrubbed     *Table
	Removed      *Table
	PhoneColumns []string

	// RemovedRows[i] is the Scrubbed row index that Removed row i came from.
	RemovedRows []int

	// CellsCleared counts blanked phone cells, which can exceed
	// len(RemovedRows) when a row matches in several columns.
	CellsCleared int

	Err error
}

// RunResult is everything produced by one pipeline run.
type RunResult struct {
	RunID           string
	UpdatedList     *Table
	RemovedFromList *Table
	RemovalSet      RemovalSet
	Logs            []LogResult
	Failures        []error
}

// LogSummary condenses one LogResult for reporting.
type LogSummary struct {
	Name           string
	Rows           int
	PhoneColumns   int
	RecordsRemoved int
	CellsCleared   int
	Failed         bool
	FailureMessage string
}

// RunSummary holds the user-visible totals of a run.
type RunSummary struct {
	RunID           string
	NumbersMatched  int
	ListRowsKept    int
	ListRowsRemoved int
	LogsTotal       int
	LogsSucceeded   int
	LogsFailed      int
	RecordsRemoved  int
	CellsCleared    int
	Logs            []LogSummary
}
