package main

import (
	"fmt"

	"github.com/buildscope/assetmatch/internal/cli"
	"github.com/buildscope/assetmatch/internal/common"
	"github.com/spf13/cobra"
)

func teachCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "teach <org> <uploaded-text> <asset-id>",
		Short: "Record a human correction",
		Long: `Teach the engine that an uploaded description maps to a specific
catalog asset. Repeating the same correction reinforces it; future
resolutions for the organization return the corrected asset at full
confidence.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			org, uploadedText, assetID := args[0], args[1], args[2]

			eng, store, err := initEngine(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			// Corrections must point at a real catalog record.
			records, err := store.FetchByIDs(ctx, []string{assetID})
			if err != nil {
				return fmt.Errorf("failed to look up asset: %w", err)
			}
			record, ok := records[assetID]
			if !ok {
				return fmt.Errorf("asset %q: %w", assetID, common.ErrNotFound)
			}

			if err := eng.RecordCorrection(ctx, org, uploadedText, assetID); err != nil {
				return err
			}

			fmt.Println(cli.FormatSuccess(fmt.Sprintf("Learned: %q → %s (%s)", uploadedText, record.AssetName, assetID)))
			return nil
		},
	}
}
