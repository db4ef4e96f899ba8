package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/buildscope/assetmatch/internal/cli"
	"github.com/buildscope/assetmatch/internal/common"
	"github.com/buildscope/assetmatch/internal/engine"
	"github.com/buildscope/assetmatch/internal/importer"
	"github.com/buildscope/assetmatch/internal/model"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

func resolveCmd() *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "resolve <upload-file>",
		Short: "Resolve an uploaded inventory against the catalog",
		Long: `Parse an uploaded CSV or XLSX inventory and resolve every row against
the canonical asset catalog. Results show the suggested match, a confidence
score and how the match was made.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			upload, err := importer.ReadUpload(args[0])
			if err != nil {
				return fmt.Errorf("failed to read upload: %w", err)
			}
			if len(upload.Rows) == 0 {
				return fmt.Errorf("%w in %s (%d skipped)", common.ErrNoRows, args[0], upload.Skipped)
			}
			if upload.Skipped > 0 {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("Skipped %d malformed row(s)", upload.Skipped)))
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			bar := resolveProgressBar(len(upload.Rows))
			cfg := engine.DefaultConfig()
			cfg.Progress = func(_, _ int) { _ = bar.Add(1) }
			eng := engine.NewWithConfig(store, cfg)

			results, err := eng.MatchBatch(ctx, upload.Rows, organizationID())
			if err != nil {
				return err
			}
			_ = bar.Finish()

			printResults(results)

			if exportPath != "" {
				if err := exportResults(exportPath, results); err != nil {
					return fmt.Errorf("failed to export results: %w", err)
				}
				fmt.Println(cli.FormatSuccess("Exported results to " + exportPath))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write results to a .csv or .xlsx file")

	return cmd
}

func resolveProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Resolving assets...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func printResults(results []model.AssetMatch) {
	fmt.Println(cli.FormatTitle("Resolution Results"))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.TableHeaderStyle.Render("Row"),
		cli.TableHeaderStyle.Render("Uploaded"),
		cli.TableHeaderStyle.Render("Suggested"),
		cli.TableHeaderStyle.Render("Code"),
		cli.TableHeaderStyle.Render("Confidence"),
		cli.TableHeaderStyle.Render("Method"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 4),
		strings.Repeat("-", 30),
		strings.Repeat("-", 30),
		strings.Repeat("-", 10),
		strings.Repeat("-", 10),
		strings.Repeat("-", 8))

	matched := 0
	for _, result := range results {
		if !result.Matched() {
			fmt.Fprintf(w, "%d\t%s\t%s\t\t%s\t%s\n",
				result.Row.RowIndex,
				result.Row.AssetType,
				cli.SubtleStyle.Render("(no match)"),
				cli.ErrorStyle.Render("0%"),
				string(result.Explanation.Method))
			continue
		}
		matched++

		confidence := cli.ConfidenceStyle(result.Confidence).Render(strconv.Itoa(result.Confidence) + "%")
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			result.Row.RowIndex,
			result.Row.AssetType,
			result.SuggestedMatch.AssetName,
			result.SuggestedMatch.StandardCode,
			confidence,
			string(result.Explanation.Method))
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(cli.FormatInfo(fmt.Sprintf("Matched %d of %d rows", matched, len(results))))
}

var exportHeader = []string{
	"Row", "Asset Type", "Brand", "Model", "Quantity",
	"Matched Asset", "Standard Code", "Category", "Confidence", "Method",
}

func exportResults(path string, results []model.AssetMatch) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return exportCSV(path, results)
	case ".xlsx":
		return exportXLSX(path, results)
	default:
		return fmt.Errorf("unsupported export format %q: expected .csv or .xlsx", filepath.Ext(path))
	}
}

func exportRow(result model.AssetMatch) []string {
	row := []string{
		strconv.Itoa(result.Row.RowIndex),
		result.Row.AssetType,
		result.Row.Brand,
		result.Row.Model,
		strconv.Itoa(result.Row.Quantity),
		"", "", "",
		strconv.Itoa(result.Confidence),
		string(result.Explanation.Method),
	}
	if result.Matched() {
		row[5] = result.SuggestedMatch.AssetName
		row[6] = result.SuggestedMatch.StandardCode
		row[7] = result.SuggestedMatch.Category
	}
	return row
}

func exportCSV(path string, results []model.AssetMatch) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)
	if err := writer.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write(exportRow(result)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func exportXLSX(path string, results []model.AssetMatch) error {
	workbook := excelize.NewFile()
	defer func() { _ = workbook.Close() }()

	sheet := workbook.GetSheetName(0)

	header := make([]any, len(exportHeader))
	for i, name := range exportHeader {
		header[i] = name
	}
	if err := workbook.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, result := range results {
		values := exportRow(result)
		row := make([]any, len(values))
		for j, value := range values {
			row[j] = value
		}

		cellRef, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to compute cell reference: %w", err)
		}
		if err := workbook.SetSheetRow(sheet, cellRef, &row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	return workbook.SaveAs(path)
}
