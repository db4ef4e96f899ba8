package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/buildscope/assetmatch/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleResults() []model.AssetMatch {
	return []model.AssetMatch{
		{
			Row: model.UploadedAssetRow{AssetType: "AHU UNIT-02", Brand: "Carrier", Model: "39M", Quantity: 3, RowIndex: 2},
			SuggestedMatch: &model.CanonicalAssetRecord{
				ID:           "ahu-1",
				StandardCode: "AHU-001",
				AssetName:    "Air Handling Unit",
				Category:     "HVAC",
			},
			Confidence:  88,
			Explanation: model.MatchExplanation{Method: model.MethodScored},
		},
		{
			Row:         model.UploadedAssetRow{AssetType: "Mystery Widget", Quantity: 1, RowIndex: 3},
			Explanation: model.MatchExplanation{Method: model.MethodNone},
		},
	}
}

func TestExportRow(t *testing.T) {
	results := sampleResults()

	matched := exportRow(results[0])
	assert.Equal(t, []string{"2", "AHU UNIT-02", "Carrier", "39M", "3", "Air Handling Unit", "AHU-001", "HVAC", "88", "SCORED"}, matched)

	unmatched := exportRow(results[1])
	assert.Equal(t, "", unmatched[5], "unmatched rows export blank asset columns")
	assert.Equal(t, "0", unmatched[8])
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")

	require.NoError(t, exportResults(path, sampleResults()))

	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "Air Handling Unit", rows[1][5])
	assert.Equal(t, "Mystery Widget", rows[2][1])
}

func TestExportXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.xlsx")

	require.NoError(t, exportResults(path, sampleResults()))

	workbook, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = workbook.Close() }()

	rows, err := workbook.GetRows(workbook.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Asset Type", rows[0][1])
	assert.Equal(t, "AHU-001", rows[1][6])
}

func TestExportUnsupportedFormat(t *testing.T) {
	err := exportResults(filepath.Join(t.TempDir(), "results.pdf"), sampleResults())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported export format")
}
