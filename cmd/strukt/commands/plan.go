package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/strukt/strukt/pkg/executor"
	"github.com/strukt/strukt/pkg/planner"
	"github.com/strukt/strukt/pkg/stores"
	"github.com/strukt/strukt/pkg/structure"
)

func newPlanCommand() *cobra.Command {
	var (
		outFile string
		readmes bool
	)

	cmd := &cobra.Command{
		Use:   "plan [document]",
		Short: "Generate the filesystem operation plan",
		Long: `Generate the ordered list of filesystem operations a document implies.

Every parent directory appears in the plan before anything inside it, so
executing the plan top to bottom never fails on a missing parent.`,
		Example: `  # Show the plan for the default document
  strukt plan

  # Save the plan to a file
  strukt plan --out plan.json

  # Include generated READMEs for top-level directories
  strukt plan --readmes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			docPath := resolveDocument(args, cfg)

			parser := structure.NewParser(cliLogger())
			model, err := parser.ParseFile(docPath)
			if err != nil {
				return err
			}

			p := planner.New(planner.Options{Readmes: readmes || cfg.Readmes})
			plan := p.BuildPlan(model)

			log.Info().
				Str("plan_id", plan.ID).
				Int("directories", plan.Summary.Directories).
				Int("files", plan.Summary.Files).
				Msg("Plan generated")

			if err := recordPlan(cmd.Context(), cfg, docPath, plan); err != nil {
				return err
			}

			if outFile != "" {
				data, err := json.MarshalIndent(plan, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode plan: %w", err)
				}
				if err := executor.WriteFileAtomic(outFile, append(data, '\n'), 0644); err != nil {
					return fmt.Errorf("failed to write plan file: %w", err)
				}
				fmt.Printf("Plan written to %s\n", outFile)
				return nil
			}

			if jsonOutput {
				return printJSON(plan)
			}

			fmt.Printf("Plan %s for project %q (%d directories, %d files):\n",
				plan.ID, plan.Project, plan.Summary.Directories, plan.Summary.Files)
			for i, op := range plan.Operations {
				fmt.Printf("  %3d. %-16s %s\n", i+1, op.Kind, op.Path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outFile, "out", "o", "", "write the plan to a JSON file")
	cmd.Flags().BoolVar(&readmes, "readmes", false, "add generated READMEs to top-level directories")

	return cmd
}

// recordPlan persists the planning run and its operations when a history
// store is configured.
func recordPlan(ctx context.Context, cfg cliConfig, docPath string, plan *planner.Plan) error {
	store, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	defer store.Close()

	started := time.Now()
	run := &stores.Run{
		ID:           plan.ID,
		Command:      stores.RunCommandPlan,
		DocumentPath: docPath,
		Status:       stores.RunStatusRunning,
		StartedAt:    started,
		CreatedAt:    started,
	}
	if err := store.CreateRun(ctx, run); err != nil {
		return err
	}

	records := make([]stores.OperationRecord, 0, len(plan.Operations))
	for i, op := range plan.Operations {
		records = append(records, stores.OperationRecord{
			RunID:  plan.ID,
			Seq:    i,
			Kind:   string(op.Kind),
			Path:   op.Path,
			Status: "planned",
		})
	}
	if err := store.RecordOperations(ctx, records); err != nil {
		return err
	}

	summary := fmt.Sprintf("directories=%d files=%d", plan.Summary.Directories, plan.Summary.Files)
	return store.CompleteRun(ctx, plan.ID, stores.RunStatusCompleted, nil, summary)
}
