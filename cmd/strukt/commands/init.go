package commands

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/strukt/strukt/pkg/executor"
	"github.com/strukt/strukt/pkg/planner"
	"github.com/strukt/strukt/pkg/stores"
	"github.com/strukt/strukt/pkg/structure"
	"github.com/strukt/strukt/pkg/telemetry"
)

func newInitCommand() *cobra.Command {
	var (
		basePath string
		dryRun   bool
		readmes  bool
	)

	cmd := &cobra.Command{
		Use:   "init [document]",
		Short: "Create the declared structure on disk",
		Long: `Create the directories and files a structure document declares.

The command is idempotent: existing directories are left alone and existing
files are never truncated. Failures on individual operations are collected
and reported at the end instead of aborting the run.`,
		Example: `  # Initialize the tree in the current directory
  strukt init

  # Initialize under a different base directory
  strukt init --base ./myproject

  # Show what would be created without touching the filesystem
  strukt init --dry-run

  # Generate README files for top-level directories
  strukt init --readmes`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			docPath := resolveDocument(args, cfg)
			basePath = resolveBase(nil, basePath, cfg)

			parser := structure.NewParser(cliLogger())
			model, err := parser.ParseFile(docPath)
			if err != nil {
				return err
			}

			p := planner.New(planner.Options{Readmes: readmes || cfg.Readmes})
			plan := p.BuildPlan(model)

			metrics, tracer, err := initTelemetry(cfg, cliVersion)
			if err != nil {
				return err
			}
			defer tracer.Shutdown(ctx)
			for _, op := range plan.Operations {
				metrics.RecordOperationPlanned(string(op.Kind))
			}

			log.Info().
				Str("document", docPath).
				Str("base", basePath).
				Str("plan_id", plan.ID).
				Bool("dry_run", dryRun).
				Msg("Applying structure")

			store, err := openHistory(ctx, cfg)
			if err != nil {
				return err
			}
			runID := uuid.New().String()
			started := time.Now()
			if store != nil {
				defer store.Close()
				run := &stores.Run{
					ID:           runID,
					Command:      stores.RunCommandApply,
					DocumentPath: docPath,
					BasePath:     basePath,
					Status:       stores.RunStatusRunning,
					StartedAt:    started,
					CreatedAt:    started,
				}
				if err := store.CreateRun(ctx, run); err != nil {
					return err
				}
			}

			spanCtx, span := tracer.StartRunSpan(ctx, runID, string(stores.RunCommandApply))
			span.SetAttributes(
				telemetry.AttrDocumentPath.String(docPath),
				telemetry.AttrBasePath.String(basePath),
			)

			exec := executor.New(dryRun, cliLogger())
			result := exec.Apply(spanCtx, basePath, plan.Operations)

			failedPaths := map[string]string{}
			for _, f := range result.Failures {
				failedPaths[f.Operation.Path] = f.Message
			}
			for _, op := range plan.Operations {
				status := "applied"
				if _, ok := failedPaths[op.Path]; ok {
					status = "failed"
				}
				metrics.RecordOperationApplied(string(op.Kind), status)
			}
			if result.Ok() {
				telemetry.RecordSuccess(span)
			} else {
				telemetry.RecordError(span, fmt.Errorf("%d operation(s) failed", len(result.Failures)))
			}
			span.End()
			runStatus := "completed"
			if !result.Ok() {
				runStatus = "failed"
			}
			metrics.RecordRun(string(stores.RunCommandApply), runStatus, time.Since(started))

			if store != nil {
				records := make([]stores.OperationRecord, 0, len(plan.Operations))
				for i, op := range plan.Operations {
					rec := stores.OperationRecord{
						RunID:  runID,
						Seq:    i,
						Kind:   string(op.Kind),
						Path:   op.Path,
						Status: "applied",
					}
					if msg, ok := failedPaths[op.Path]; ok {
						rec.Status = "failed"
						e := msg
						rec.Error = &e
					}
					records = append(records, rec)
				}
				if err := store.RecordOperations(ctx, records); err != nil {
					return err
				}

				status := stores.RunStatusCompleted
				var errMsg *string
				if !result.Ok() {
					status = stores.RunStatusFailed
					m := fmt.Sprintf("%d operation(s) failed", len(result.Failures))
					errMsg = &m
				}
				summary := fmt.Sprintf("created=%d skipped=%d failed=%d",
					result.Created, result.Skipped, len(result.Failures))
				if err := store.CompleteRun(ctx, runID, status, errMsg, summary); err != nil {
					return err
				}
			}

			if jsonOutput {
				if err := printJSON(result); err != nil {
					return err
				}
			} else {
				fmt.Printf("Created: %d  Skipped: %d  Failed: %d\n",
					result.Created, result.Skipped, len(result.Failures))
				for _, f := range result.Failures {
					fmt.Printf("  failed %s %s: %s\n", f.Operation.Kind, f.Operation.Path, f.Message)
				}
			}

			if !result.Ok() {
				return fmt.Errorf("%d operation(s) failed", len(result.Failures))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&basePath, "base", "b", "", "base directory to create the structure in")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "show what would be done without executing")
	cmd.Flags().BoolVar(&readmes, "readmes", false, "add generated READMEs to top-level directories")

	return cmd
}
