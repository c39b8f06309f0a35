package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newHistoryCommand() *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded engine runs",
		Long: `Show the run history recorded in the history database.

History recording is enabled by setting history_db in the config file.
With --run the drift items and operations of a single run are shown.`,
		Example: `  # List the most recent runs
  strukt history --config strukt.yaml

  # Show more runs
  strukt history --limit 50

  # Inspect one run in detail
  strukt history --run 6e7f1a2b-...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			if cfg.HistoryDB == "" {
				return fmt.Errorf("no history database configured: set history_db in the config file")
			}

			store, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				run, err := store.GetRun(ctx, runID)
				if err != nil {
					return err
				}
				items, err := store.ListDriftItems(ctx, runID)
				if err != nil {
					return err
				}
				records, err := store.ListOperations(ctx, runID)
				if err != nil {
					return err
				}

				if jsonOutput {
					return printJSON(map[string]interface{}{
						"run":         run,
						"drift_items": items,
						"operations":  records,
					})
				}

				fmt.Printf("Run %s\n", run.ID)
				fmt.Printf("  command:   %s\n", run.Command)
				fmt.Printf("  document:  %s\n", run.DocumentPath)
				fmt.Printf("  base:      %s\n", run.BasePath)
				fmt.Printf("  status:    %s\n", run.Status)
				fmt.Printf("  started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
				fmt.Printf("  summary:   %s\n", run.Summary)
				for _, item := range items {
					fmt.Printf("  drift: %-18s %s/%s\n", item.Kind, item.Directory, item.Name)
				}
				for _, rec := range records {
					fmt.Printf("  op %3d: %-16s %-8s %s\n", rec.Seq, rec.Kind, rec.Status, rec.Path)
				}
				return nil
			}

			runs, err := store.ListRuns(ctx, limit, 0)
			if err != nil {
				return err
			}

			if jsonOutput {
				return printJSON(runs)
			}

			if len(runs) == 0 {
				fmt.Println("No runs recorded.")
				return nil
			}
			for _, run := range runs {
				fmt.Printf("%s  %-6s %-10s %s  %s\n",
					run.StartedAt.Format("2006-01-02 15:04:05"),
					run.Command, run.Status, run.ID, run.Summary)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of runs to list")
	cmd.Flags().StringVar(&runID, "run", "", "show details for a single run")

	return cmd
}
