package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateExcel(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)

	fileName, err := GenerateExcel(dir, "Bursary Applications", []string{"Reference", "Status"}, [][]interface{}{
		{"abc", "approved"},
		{"def", "pending"},
	}, now)
	require.NoError(t, err)
	assert.Equal(t, "Bursary_Applications_2026-05-04_10-30-00.xlsx", fileName)

	f, err := excelize.OpenFile(filepath.Join(dir, fileName))
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Sheet1", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Status", header)

	last, err := f.GetCellValue("Sheet1", "A3")
	require.NoError(t, err)
	assert.Equal(t, "def", last)
}
