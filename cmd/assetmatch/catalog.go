package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/buildscope/assetmatch/internal/cli"
	"github.com/buildscope/assetmatch/internal/importer"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the canonical asset catalog",
		Long:  `List or seed the canonical asset records that uploads resolve against.`,
	}

	cmd.AddCommand(listCatalogCmd())
	cmd.AddCommand(importCatalogCmd())

	return cmd
}

func listCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all catalog assets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			catalog, err := store.FetchCatalog(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch catalog: %w", err)
			}

			if len(catalog) == 0 {
				fmt.Println(cli.FormatInfo("Catalog is empty. Use 'assetmatch catalog import' to seed it."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("ID"),
				cli.TableHeaderStyle.Render("Code"),
				cli.TableHeaderStyle.Render("Name"),
				cli.TableHeaderStyle.Render("Category"),
				cli.TableHeaderStyle.Render("Tasks"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 12),
				strings.Repeat("-", 10),
				strings.Repeat("-", 30),
				strings.Repeat("-", 12),
				strings.Repeat("-", 5))

			for _, record := range catalog {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
					record.ID, record.StandardCode, record.AssetName, record.Category, len(record.Tasks))
			}

			_ = w.Flush()

			categories, err := store.FetchCategories(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch categories: %w", err)
			}

			fmt.Println()
			fmt.Println(cli.FormatInfo(fmt.Sprintf("%d asset(s) across %d categor(ies): %s",
				len(catalog), len(categories), strings.Join(categories, ", "))))
			return nil
		},
	}
}

func importCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import catalog assets from a CSV or XLSX file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			records, skipped, err := importer.ReadCatalog(args[0])
			if err != nil {
				return fmt.Errorf("failed to read catalog file: %w", err)
			}
			if len(records) == 0 {
				return fmt.Errorf("no usable records in %s (%d skipped)", args[0], skipped)
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SaveAssets(ctx, records); err != nil {
				return fmt.Errorf("failed to save catalog: %w", err)
			}

			count, err := store.CountAssets(ctx)
			if err != nil {
				return fmt.Errorf("failed to count assets: %w", err)
			}

			if skipped > 0 {
				fmt.Println(cli.FormatWarning(fmt.Sprintf("Skipped %d malformed row(s)", skipped)))
			}
			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Imported %d asset(s); catalog now holds %d", len(records), count)))
			return nil
		},
	}
}
