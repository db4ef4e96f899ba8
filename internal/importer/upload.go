// Package importer parses uploaded inventory files and catalog seed files
// from CSV and XLSX into the model types.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/buildscope/assetmatch/internal/model"
	"github.com/xuri/excelize/v2"
)

// Result holds the parsed upload rows plus the count of rows that were
// skipped as malformed.
type Result struct {
	Rows    []model.UploadedAssetRow
	Skipped int
}

// Column header synonyms, matched case-insensitively after trimming.
var (
	assetTypeHeaders = []string{"asset type", "asset description", "asset", "description", "item", "name", "type"}
	brandHeaders     = []string{"brand", "make", "manufacturer"}
	modelHeaders     = []string{"model", "model no", "model number", "model_no"}
	quantityHeaders  = []string{"quantity", "qty", "count", "units"}
)

type uploadColumns struct {
	assetType int
	brand     int
	model     int
	quantity  int
}

// ReadUpload parses an uploaded inventory file. The format is chosen from
// the file extension: .csv, or .xlsx/.xlsm via excelize.
func ReadUpload(path string) (Result, error) {
	rows, err := readRows(path)
	if err != nil {
		return Result{}, err
	}
	return parseUpload(rows)
}

func readRows(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q: expected .csv or .xlsx", filepath.Ext(path))
	}
}

func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		rows = append(rows, record)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	sheetName := file.GetSheetName(0)
	if sheetName == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := file.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}
	return rows, nil
}

func parseUpload(rows [][]string) (Result, error) {
	if len(rows) == 0 {
		return Result{}, fmt.Errorf("file is empty")
	}

	columns, err := mapUploadColumns(rows[0])
	if err != nil {
		return Result{}, err
	}

	result := Result{Rows: []model.UploadedAssetRow{}}
	for i, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}

		// File row number, counting the header as row 1.
		rowIndex := i + 2

		assetType := cell(row, columns.assetType)
		if assetType == "" {
			result.Skipped++
			continue
		}

		quantity, ok := parseQuantity(cell(row, columns.quantity))
		if !ok {
			result.Skipped++
			continue
		}

		result.Rows = append(result.Rows, model.UploadedAssetRow{
			AssetType: assetType,
			Brand:     cell(row, columns.brand),
			Model:     cell(row, columns.model),
			Quantity:  quantity,
			RowIndex:  rowIndex,
		})
	}

	return result, nil
}

func mapUploadColumns(header []string) (uploadColumns, error) {
	columns := uploadColumns{
		assetType: findColumn(header, assetTypeHeaders),
		brand:     findColumn(header, brandHeaders),
		model:     findColumn(header, modelHeaders),
		quantity:  findColumn(header, quantityHeaders),
	}
	if columns.assetType == -1 {
		return columns, fmt.Errorf("no asset type column found in header: %v", header)
	}
	return columns, nil
}

// findColumn returns the index of the first header matching one of the
// candidates, preferring earlier candidates over earlier columns.
func findColumn(header []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, name := range header {
			if strings.EqualFold(strings.TrimSpace(name), candidate) {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, index int) string {
	if index < 0 || index >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[index])
}

// parseQuantity interprets a quantity cell. Blank defaults to 1; anything
// that is not a non-negative integer marks the row malformed.
func parseQuantity(value string) (int, bool) {
	if value == "" {
		return 1, true
	}
	quantity, err := strconv.Atoi(value)
	if err != nil || quantity < 0 {
		return 0, false
	}
	return quantity, true
}

func isEmptyRow(row []string) bool {
	for _, value := range row {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}
