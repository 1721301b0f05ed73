package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/siteview/pkg/errors"
	"github.com/matzehuels/siteview/pkg/render"
	"github.com/matzehuels/siteview/pkg/store"
)

// historyCommand creates the history command for stored candidate sets.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded candidate sets",
	}

	cmd.AddCommand(c.historyListCommand())
	cmd.AddCommand(c.historyShowCommand())

	return cmd
}

func (c *CLI) historyListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded candidate sets, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			sets, err := st.List(ctx, limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sets) == 0 {
				printInfo(out, "No candidate sets recorded yet")
				printNextStep(out, "Record one with", appName+" render")
				return nil
			}
			fmt.Fprintln(out, historyTable(sets, time.Now()))
			printNextStep(out, "Replay a set with", appName+" render --set <id>")
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum number of sets to list")

	return cmd
}

func (c *CLI) historyShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the layouts of one recorded candidate set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := errors.ValidateSetID(args[0]); err != nil {
				return err
			}
			st, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			return c.showSet(ctx, cmd.OutOrStdout(), st, args[0])
		},
	}
}

func (c *CLI) showSet(ctx context.Context, w io.Writer, st store.Store, id string) error {
	set, err := st.Get(ctx, id)
	if err != nil {
		return err
	}
	tag, err := c.localeTag()
	if err != nil {
		return err
	}
	p := render.NewPrinter(tag)

	fmt.Fprintln(w, StyleTitle.Render("Candidate set "+set.ID))
	printKeyValue(w, "Recorded", set.CreatedAt.Local().Format(time.DateTime))
	printKeyValue(w, "Source", set.Source)
	printKeyValue(w, "Layouts", strconv.Itoa(len(set.Layouts)))
	fmt.Fprintln(w)
	for i := range set.Layouts {
		l := &set.Layouts[i]
		printLayoutLine(w, l.Title(i), render.StatsFor(p, l), false)
		if rules := rulesSummary(l); rules != "" {
			printDetail(w, "  %s", rules)
		}
	}
	return nil
}

// historyTable renders set summaries as a bordered table.
func historyTable(sets []store.Summary, now time.Time) string {
	rows := make([][]string, len(sets))
	for i, s := range sets {
		rows[i] = []string{s.ID, formatAge(now.Sub(s.CreatedAt)), strconv.Itoa(s.Count), s.Source}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("ID", "Recorded", "Layouts", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			default:
				return lipgloss.NewStyle().Foreground(colorGray)
			}
		})
	return t.Render()
}

// formatAge renders d as a coarse relative age ("5m ago", "3d ago").
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
