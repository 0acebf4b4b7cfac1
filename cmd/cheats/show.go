package main

import (
	"github.com/opsdeck/cheatsheets/constants"
	"github.com/opsdeck/cheatsheets/markdown"
	"github.com/opsdeck/cheatsheets/utils"
	"github.com/spf13/cobra"
)

// newShowCmd creates the 'show' subcommand, which prints a cheatsheet
// styled for the terminal.
func newShowCmd(sess *session) *cobra.Command {
	var width int
	var style string
	cmd := &cobra.Command{
		Use:   constants.CmdShow + " <category> <slug>",
		Short: constants.DescShow,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := sess.dependencies(cmd)
			if err != nil {
				return err
			}
			c, err := deps.Store.Current()
			if err != nil {
				return err
			}
			sheet, err := c.Get(args[0], args[1])
			if err != nil {
				return utils.Errorf("cheatsheet %s/%s: %w", args[0], args[1], err)
			}
			if !cmd.Flags().Changed("width") {
				width = deps.Config.Render.TerminalWidth
			}
			out, err := markdown.RenderTerminal(sheet, markdown.TerminalOptions{Width: width, Style: style})
			if err != nil {
				return err
			}
			utils.User("%s", out)
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 0, "word wrap width (defaults to render.terminal_width)")
	cmd.Flags().StringVar(&style, "style", "", "glamour style: dark, light, notty or ascii (default: auto)")
	return cmd
}
