package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/buildscope/assetmatch/internal/model"
)

var (
	idHeaders          = []string{"id", "asset id", "asset_id"}
	codeHeaders        = []string{"standard code", "code", "standard_code"}
	catalogNameHeaders = []string{"asset name", "name", "asset"}
	categoryHeaders    = []string{"category", "discipline", "trade"}
	descriptionHeaders = []string{"description", "notes", "details"}
)

type catalogColumns struct {
	id          int
	code        int
	name        int
	category    int
	description int
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// ReadCatalog parses a catalog seed file into canonical asset records.
// Rows missing an asset name are skipped and counted. Records without an
// explicit ID get one derived from the standard code or the asset name.
func ReadCatalog(path string) ([]model.CanonicalAssetRecord, int, error) {
	rows, err := readRows(path)
	if err != nil {
		return nil, 0, err
	}
	if len(rows) == 0 {
		return nil, 0, fmt.Errorf("file is empty")
	}

	columns, err := mapCatalogColumns(rows[0])
	if err != nil {
		return nil, 0, err
	}

	var records []model.CanonicalAssetRecord
	skipped := 0
	for _, row := range rows[1:] {
		if isEmptyRow(row) {
			continue
		}

		name := cell(row, columns.name)
		if name == "" {
			skipped++
			continue
		}

		record := model.CanonicalAssetRecord{
			ID:           cell(row, columns.id),
			StandardCode: cell(row, columns.code),
			AssetName:    name,
			Category:     cell(row, columns.category),
			Description:  cell(row, columns.description),
		}
		if record.ID == "" {
			record.ID = slugify(record.StandardCode)
		}
		if record.ID == "" {
			record.ID = slugify(record.AssetName)
		}

		records = append(records, record)
	}

	return records, skipped, nil
}

func mapCatalogColumns(header []string) (catalogColumns, error) {
	columns := catalogColumns{
		id:          findColumn(header, idHeaders),
		code:        findColumn(header, codeHeaders),
		name:        findColumn(header, catalogNameHeaders),
		category:    findColumn(header, categoryHeaders),
		description: findColumn(header, descriptionHeaders),
	}
	if columns.name == -1 {
		return columns, fmt.Errorf("no asset name column found in header: %v", header)
	}
	return columns, nil
}

func slugify(value string) string {
	slug := slugPattern.ReplaceAllString(strings.ToLower(value), "-")
	return strings.Trim(slug, "-")
}
