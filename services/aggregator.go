package services

import (
	"strconv"

	"phone-scrubber/models"
)

type occurrenceKey struct {
	category string
	phone    string
}

// Aggregate normalizes the list's phone column and joins an occurrence
// count onto every row. The count is the raw multiplicity of the row's
// (category, phone) pair, duplicates included. The input is not modified.
func Aggregate(list *models.Table, categoryColumn, phoneColumn string) (*models.AggregatedList, error) {
	if list == nil {
		list = &models.Table{}
	}

	catIdx := list.ColumnIndex(categoryColumn)
	if catIdx < 0 {
		return nil, &SchemaError{Field: categoryColumn, Columns: list.Columns}
	}
	phoneIdx := list.ColumnIndex(phoneColumn)
	if phoneIdx < 0 {
		return nil, &SchemaError{Field: phoneColumn, Columns: list.Columns}
	}

	work := list.Clone()
	counts := make(map[occurrenceKey]int)
	for _, row := range work.Rows {
		row[phoneIdx] = NormalizePhone(row[phoneIdx])
		counts[occurrenceKey{row[catIdx], row[phoneIdx]}]++
	}

	occIdx := work.ColumnIndex(models.OccurrenceColumn)
	if occIdx < 0 {
		work.Columns = append(work.Columns, models.OccurrenceColumn)
		occIdx = len(work.Columns) - 1
		for i := range work.Rows {
			work.Rows[i] = append(work.Rows[i], "")
		}
	}

	occurrences := make([]int, len(work.Rows))
	for i, row := range work.Rows {
		n := counts[occurrenceKey{row[catIdx], row[phoneIdx]}]
		occurrences[i] = n
		row[occIdx] = strconv.Itoa(n)
	}

	return &models.AggregatedList{
		Table:           work,
		CategoryIndex:   catIdx,
		PhoneIndex:      phoneIdx,
		OccurrenceIndex: occIdx,
		Occurrences:     occurrences,
	}, nil
}

// SplitList separates list rows whose phone is in removal from the rest.
// With dropDuplicates, identical kept rows collapse to their first instance.
func SplitList(agg *models.AggregatedList, removal models.RemovalSet, dropDuplicates bool) (kept, removed *models.Table) {
	kept = &models.Table{Columns: append([]string(nil), agg.Table.Columns...)}
	removed = &models.Table{Columns: append([]string(nil), agg.Table.Columns...)}

	seen := make(map[string]struct{})
	for _, row := range agg.Table.Rows {
		if removal.Contains(row[agg.PhoneIndex]) {
			removed.AppendRow(row)
			continue
		}
		if dropDuplicates {
			key := rowKey(row)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
		}
		kept.AppendRow(row)
	}
	return kept, removed
}

func rowKey(row []string) string {
	n := 0
	for _, v := range row {
		n += len(v) + 1
	}
	b := make([]byte, 0, n)
	for _, v := range row {
		b = append(b, v...)
		b = append(b, 0x1f)
	}
	return string(b)
}
