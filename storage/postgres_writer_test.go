package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemovedRecordRows(t *testing.T) {
	r := sampleResult()

	rows, err := removedRecordRows(r)
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, r.RunID, rows[0].RunID)
	assert.Equal(t, "calls", rows[0].LogName)
	assert.Equal(t, 0, rows[0].RowIndex)
	assert.JSONEq(t, `{"name":"A","phone":"5551112222"}`, rows[0].Record)
}

func TestRemovedRecordRowsWithoutSourceIndex(t *testing.T) {
	r := sampleResult()
	r.Logs[0].RemovedRows = nil

	rows, err := removedRecordRows(r)
	require.NoError(t, err)
	assert.Equal(t, -1, rows[0].RowIndex)
}
