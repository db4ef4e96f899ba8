package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/buildscope/assetmatch/internal/cli"
	"github.com/spf13/cobra"
)

func correctionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrections",
		Short: "Inspect per-organization learning memory",
	}

	cmd.AddCommand(listCorrectionsCmd())

	return cmd
}

func listCorrectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <org>",
		Short: "List an organization's recorded corrections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			org := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			corrections, err := store.LoadCorrections(ctx, org)
			if err != nil {
				return fmt.Errorf("failed to load corrections: %w", err)
			}

			if len(corrections) == 0 {
				fmt.Println(cli.FormatInfo(fmt.Sprintf("No corrections recorded for %q yet.", org)))
				return nil
			}

			total, err := store.CorrectionCount(ctx, org)
			if err != nil {
				return fmt.Errorf("failed to count corrections: %w", err)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.TableHeaderStyle.Render("Uploaded Text"),
				cli.TableHeaderStyle.Render("Normalized"),
				cli.TableHeaderStyle.Render("Asset"),
				cli.TableHeaderStyle.Render("Frequency"),
				cli.TableHeaderStyle.Render("Last Used"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 25),
				strings.Repeat("-", 25),
				strings.Repeat("-", 12),
				strings.Repeat("-", 9),
				strings.Repeat("-", 16))

			for _, correction := range corrections {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					correction.UploadedText,
					correction.NormalizedText,
					correction.AssetID,
					correction.Frequency,
					correction.LastUsed.Format("2006-01-02 15:04"))
			}

			_ = w.Flush()
			fmt.Println()
			fmt.Println(cli.FormatInfo(fmt.Sprintf("Showing %d of %d correction(s)", len(corrections), total)))
			return nil
		},
	}
}
