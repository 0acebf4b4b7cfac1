package main

import (
	"github.com/opsdeck/cheatsheets/api"
	"github.com/opsdeck/cheatsheets/blob"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/utils"
	"github.com/spf13/cobra"
)

// newValidateCmd creates the 'validate' subcommand. It loads the library
// without opening storage and exits non-zero when any file is skipped.
func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   constants.CmdValidate,
		Short: constants.DescValidate,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			var store blob.BlobStore
			if cfg.Content.Source == constants.ContentSourceSnapshot {
				if store, err = blob.NewDefaultBlobStore(ctx, &cfg.Blob); err != nil {
					return err
				}
			}
			loader, err := api.NewLoader(ctx, cfg, store)
			if err != nil {
				return err
			}
			c, report, err := loader.Load(ctx)
			if err != nil {
				return err
			}

			for _, name := range report.MissingCategories {
				utils.User("missing category directory: %s", name)
			}
			for _, skip := range report.Skipped {
				utils.User(constants.MsgSkippedFile, skip.Path, skip.Reason)
			}
			if !report.OK() {
				utils.User("Validation failed: %d file(s) skipped", len(report.Skipped))
				exit(2)
				return nil
			}
			utils.User(constants.MsgValidationOK, c.Len(), len(c.Categories()))
			return nil
		},
	}
}
