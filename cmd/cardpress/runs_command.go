package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"cardpress/internal/runstore"
)

func newRunsCommand(cmdCtx *commandContext) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect past export runs",
	}
	runsCmd.AddCommand(newRunsListCommand(cmdCtx))
	runsCmd.AddCommand(newRunsShowCommand(cmdCtx))
	return runsCmd
}

func openRunStore(cmdCtx *commandContext) (*runstore.Store, error) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return nil, err
	}
	return runstore.Open(filepath.Join(cfg.Paths.LogDir, "cardpress.db"))
}

func newRunsListCommand(cmdCtx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openRunStore(cmdCtx)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				finished := "running"
				if run.FinishedAt != nil {
					finished = run.FinishedAt.Local().Format("2006-01-02 15:04:05")
				}
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					finished,
					strconv.Itoa(run.SuccessCount),
					strconv.Itoa(run.FailureCount),
					run.ManifestPath,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Run", "Started", "Finished", "Exported", "Failed", "Manifest"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func newRunsShowCommand(cmdCtx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show per-card outcomes for one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openRunStore(cmdCtx)
			if err != nil {
				return err
			}
			defer store.Close()

			cards, err := store.CardsForRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(cards) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No card results for run %s\n", args[0])
				return nil
			}

			rows := make([][]string, 0, len(cards))
			for _, card := range cards {
				rows = append(rows, []string{
					card.Key,
					string(card.Status),
					card.Stage,
					card.Message,
					card.Artifact,
					formatElapsed(card.Elapsed),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Card", "Status", "Stage", "Message", "Artifact", "Elapsed"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}
