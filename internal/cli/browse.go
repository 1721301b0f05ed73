package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/siteview/pkg/generate"
	"github.com/matzehuels/siteview/pkg/observability"
	"github.com/matzehuels/siteview/pkg/render/cells"
)

// browseCommand creates the interactive terminal browser.
func (c *CLI) browseCommand() *cobra.Command {
	var (
		noGenerate bool
		cols, rows int
	)

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Page through generated layouts in the terminal",
		Long: `Page through generated layouts in the terminal.

Keys:
  g          request a new set of layouts
  ←/→, h/l   previous / next layout
  1-9        jump to a layout
  enter/esc  dismiss an error
  q          quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			tag, err := c.localeTag()
			if err != nil {
				return err
			}

			// Log output would tear the alternate screen.
			observability.Reset()

			var opts []generate.Option
			rec, closeStore, err := c.recorderOptions(ctx)
			if err != nil {
				loggerFromContext(ctx).Warn("history disabled", "err", err)
			} else {
				defer closeStore()
				opts = append(opts, rec...)
			}

			grid := cells.New(cells.WithSize(cols, rows))
			m := newBrowseModel(ctx, c.newClient(), tag, grid, opts...)
			m.autostart = !noGenerate

			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().BoolVar(&noGenerate, "no-generate", false, "start empty instead of requesting layouts immediately")
	cmd.Flags().IntVar(&cols, "cols", cells.DefaultCols, "site view width in terminal columns")
	cmd.Flags().IntVar(&rows, "rows", cells.DefaultRows, "site view height in terminal rows")

	return cmd
}
