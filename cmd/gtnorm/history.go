package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var (
		limit    int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded normalization runs",
		Long: `List runs recorded with --history (or history.enabled in the config),
newest first. The history lives in a DuckDB file, ~/.gtnorm/history.duckdb by
default.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearAll {
				return a.runHistoryClear()
			}
			return a.runHistoryList(limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all recorded runs")

	return cmd
}

func (a *app) runHistoryList(limit int) error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "No runs recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFINISHED\tSTATUS\tRECORDS\tNO_CALLS\tINPUT\tDETAIL")
	for _, r := range runs {
		detail := "-"
		if !r.OK() {
			detail = r.ErrorKind
			if r.ErrorLine > 0 {
				detail = fmt.Sprintf("%s at line %d", r.ErrorKind, r.ErrorLine)
			}
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%s\t%s\n",
			r.ID, r.FinishedAt.Local().Format(time.DateTime), r.Status,
			r.Records, r.NoCalls, r.Input.Path, detail)
	}
	return tw.Flush()
}

func (a *app) runHistoryClear() error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ClearRuns(); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	fmt.Fprintln(a.stdout, "History cleared.")
	return nil
}
