package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/store"
)

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the most recent input actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			st, err := c.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			records, err := st.Actions().ListRecent(limit)
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			return printHistory(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of actions to show")
	return cmd
}

func printHistory(out io.Writer, records []*store.ActionRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "No actions recorded yet")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tGESTURE\tACTION\tKEY")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime),
			r.Gesture,
			kindColor(r.Kind).Sprint(r.Kind),
			r.Key,
		)
	}
	return w.Flush()
}

func kindColor(kind string) *color.Color {
	switch control.ActionKind(kind) {
	case control.ActionKeyTap:
		return color.New(color.FgCyan)
	case control.ActionKeyDown, control.ActionMouseDown:
		return color.New(color.FgGreen)
	default:
		return color.New(color.Faint)
	}
}
