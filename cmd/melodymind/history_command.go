package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/dcschmid/melodymind-podcast-pipeline/internal/journal"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent render runs from the journal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !cfg.Journal.Enabled {
				fmt.Fprintln(out, "Run journal is disabled in configuration.")
				return nil
			}

			store, err := journal.Open(cfg.Journal.Path)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer store.Close()

			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid run id %q", args[0])
				}
				return printRunDetail(cmd, store, id)
			}

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					strconv.FormatInt(run.ID, 10),
					run.Decade,
					string(run.Status),
					strconv.Itoa(run.SegmentsTotal),
					strconv.Itoa(run.Fallbacks),
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					runResult(run),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Decade", "Status", "Segments", "Fallbacks", "Started", "Result"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum runs to display")

	return cmd
}

func printRunDetail(cmd *cobra.Command, store *journal.Store, id int64) error {
	run, err := store.GetRun(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("load run %d: %w", id, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %d: %s (%s)\n", run.ID, run.Title, run.Status)
	fmt.Fprintf(out, "Started: %s", run.StartedAt.Local().Format("2006-01-02 15:04:05"))
	if run.FinishedAt != nil {
		fmt.Fprintf(out, "  Elapsed: %s", run.FinishedAt.Sub(run.StartedAt).Round(time.Second))
	}
	fmt.Fprintln(out)
	if run.EpisodePath != "" {
		fmt.Fprintf(out, "Episode: %s\n", run.EpisodePath)
	}
	if run.ErrorMessage != "" {
		fmt.Fprintf(out, "Error: %s\n", run.ErrorMessage)
	}

	records, err := store.Segments(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("load segments for run %d: %w", id, err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "No segment records.")
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		note := ""
		switch {
		case rec.Skipped:
			note = "cached"
		case rec.Fallback:
			note = "fallback"
			if rec.Degraded != "" {
				note += " (dropped: " + rec.Degraded + ")"
			}
		}
		rows = append(rows, []string{rec.Name, rec.Speaker, rec.Encoder, note})
	}
	fmt.Fprintln(out, renderTable([]string{"Segment", "Speaker", "Encoder", "Notes"}, rows, nil))
	return nil
}

func runResult(run journal.Run) string {
	if run.EpisodePath != "" {
		return run.EpisodePath
	}
	if run.ErrorMessage != "" {
		return run.ErrorMessage
	}
	return "-"
}
