package markdown

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/opsdeck/cheatsheets/model"
)

// TerminalOptions controls terminal rendering. An empty Style picks a style
// from the terminal background.
type TerminalOptions struct {
	Width int
	Style string
}

// RenderTerminal formats a cheatsheet for a terminal, with a title block
// followed by the styled body.
func RenderTerminal(sheet *model.Cheatsheet, opts TerminalOptions) (string, error) {
	styleOpt := glamour.WithAutoStyle()
	if opts.Style != "" {
		styleOpt = glamour.WithStandardStyle(opts.Style)
	}
	termOpts := []glamour.TermRendererOption{styleOpt}
	if opts.Width > 0 {
		termOpts = append(termOpts, glamour.WithWordWrap(opts.Width))
	}
	r, err := glamour.NewTermRenderer(termOpts...)
	if err != nil {
		return "", fmt.Errorf("terminal renderer: %w", err)
	}

	var doc strings.Builder
	fmt.Fprintf(&doc, "# %s %s\n\n", sheet.Icon, sheet.Title)
	if sheet.Description != "" {
		fmt.Fprintf(&doc, "%s\n\n", sheet.Description)
	}
	fmt.Fprintf(&doc, "*%s · %s", sheet.Category, sheet.Difficulty)
	if len(sheet.Tags) > 0 {
		fmt.Fprintf(&doc, " · %s", strings.Join(sheet.Tags, ", "))
	}
	doc.WriteString("*\n\n")
	doc.WriteString(sheet.Content)

	return r.Render(doc.String())
}
