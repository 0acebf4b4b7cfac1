package main

import (
	"github.com/opsdeck/cheatsheets/blob"
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/exporter"
	"github.com/opsdeck/cheatsheets/markdown"
	"github.com/opsdeck/cheatsheets/utils"
	"github.com/spf13/cobra"
)

// newExportCmd creates the 'export' subcommand, which writes the metadata
// and content documents to the configured blob store.
func newExportCmd(sess *session) *cobra.Command {
	var rendered bool
	var outDir string
	cmd := &cobra.Command{
		Use:   constants.CmdExport,
		Short: constants.DescExport,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := sess.dependencies(cmd)
			if err != nil {
				return err
			}
			store := deps.Blob
			if outDir != "" {
				if store, err = blob.NewFilesystemBlobStore(outDir); err != nil {
					return err
				}
			}
			if store == nil {
				return utils.Errorf("no blob store configured for export")
			}
			c, err := deps.Store.Current()
			if err != nil {
				return err
			}

			var renderer *markdown.Renderer
			if rendered {
				renderer = deps.Renderer
			}
			res, err := exporter.Export(cmd.Context(), c, store, renderer)
			if err != nil {
				return err
			}
			utils.User("Exported %d cheatsheets", res.Count)
			for _, url := range res.URLs {
				utils.User(constants.MsgExportWritten, url)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rendered, "rendered", false, "also write the rendered HTML document")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write to this directory instead of the configured blob store")
	return cmd
}
