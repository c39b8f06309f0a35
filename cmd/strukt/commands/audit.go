package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/strukt/strukt/pkg/auditor"
	"github.com/strukt/strukt/pkg/executor"
	"github.com/strukt/strukt/pkg/stores"
	"github.com/strukt/strukt/pkg/structure"
	"github.com/strukt/strukt/pkg/telemetry"
)

// countFiles sums the per-directory file lists of a drift collection.
func countFiles(byDir map[string][]string) int {
	n := 0
	for _, files := range byDir {
		n += len(files)
	}
	return n
}

func newAuditCommand() *cobra.Command {
	var (
		basePath        string
		caseInsensitive bool
		reportFile      string
	)

	cmd := &cobra.Command{
		Use:   "audit [document]",
		Short: "Audit a directory tree against a structure document",
		Long: `Audit a directory tree for drift from its structure document.

The audit is read-only. It reports directories and files that are declared
but missing, and directories and files that exist but are not declared.
Dot-prefixed entries on disk are ignored. Exits non-zero when drift is
found.`,
		Example: `  # Audit the current directory
  strukt audit

  # Audit a different base directory
  strukt audit --base ./myproject

  # Match names case-insensitively (e.g. on macOS default filesystems)
  strukt audit --case-insensitive

  # Write the drift report to a file
  strukt audit --report drift.json`,
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

			a := auditor.New(auditor.Options{
				CaseInsensitive: caseInsensitive || cfg.CaseInsensitive,
			}, cliLogger())

			metrics, tracer, err := initTelemetry(cfg, cliVersion)
			if err != nil {
				return err
			}
			defer tracer.Shutdown(ctx)

			log.Info().
				Str("document", docPath).
				Str("base", basePath).
				Msg("Auditing directory tree")

			started := time.Now()
			_, span := tracer.StartRunSpan(ctx, uuid.New().String(), string(stores.RunCommandAudit))
			span.SetAttributes(
				telemetry.AttrDocumentPath.String(docPath),
				telemetry.AttrBasePath.String(basePath),
			)

			report, err := a.Audit(model, basePath)
			if err != nil {
				telemetry.RecordError(span, err)
				span.End()
				return err
			}
			telemetry.RecordSuccess(span)
			span.End()

			metrics.SetDriftItems(string(stores.DriftMissingDirectory), float64(len(report.MissingDirs)))
			metrics.SetDriftItems(string(stores.DriftMissingFile), float64(countFiles(report.MissingFiles)))
			metrics.SetDriftItems(string(stores.DriftExtraDirectory), float64(len(report.ExtraDirs)))
			metrics.SetDriftItems(string(stores.DriftExtraFile), float64(countFiles(report.ExtraFiles)))
			metrics.RecordRun(string(stores.RunCommandAudit), "completed", time.Since(started))

			if err := recordAudit(ctx, cfg, docPath, basePath, report); err != nil {
				return err
			}

			if reportFile != "" {
				data, err := json.MarshalIndent(report, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode report: %w", err)
				}
				if err := executor.WriteFileAtomic(reportFile, append(data, '\n'), 0644); err != nil {
					return fmt.Errorf("failed to write report file: %w", err)
				}
			}

			if jsonOutput {
				if err := printJSON(report); err != nil {
					return err
				}
			} else {
				printReport(report)
			}

			if !report.Compliant {
				return fmt.Errorf("drift detected: %d item(s)", report.DriftCount())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&basePath, "base", "b", "", "base directory to audit")
	cmd.Flags().BoolVar(&caseInsensitive, "case-insensitive", false, "fold case when matching names")
	cmd.Flags().StringVar(&reportFile, "report", "", "drift report output file")

	return cmd
}

func printReport(report *auditor.Report) {
	if report.Compliant {
		fmt.Println("Tree matches the declared structure.")
		return
	}
	fmt.Printf("Drift detected (%d items):\n", report.DriftCount())
	for _, d := range report.MissingDirs {
		fmt.Printf("  missing directory: %s\n", d)
	}
	for dir, files := range report.MissingFiles {
		for _, f := range files {
			fmt.Printf("  missing file:      %s/%s\n", dir, f)
		}
	}
	for _, d := range report.ExtraDirs {
		fmt.Printf("  extra directory:   %s\n", d)
	}
	for dir, files := range report.ExtraFiles {
		for _, f := range files {
			fmt.Printf("  extra file:        %s/%s\n", dir, f)
		}
	}
}

// recordAudit persists the audit run and its drift items when a history
// store is configured.
func recordAudit(ctx context.Context, cfg cliConfig, docPath, basePath string, report *auditor.Report) error {
	store, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return nil
	}
	defer store.Close()

	runID := uuid.New().String()
	started := time.Now()
	run := &stores.Run{
		ID:           runID,
		Command:      stores.RunCommandAudit,
		DocumentPath: docPath,
		BasePath:     basePath,
		Status:       stores.RunStatusRunning,
		StartedAt:    started,
		CreatedAt:    started,
	}
	if err := store.CreateRun(ctx, run); err != nil {
		return err
	}

	items := []stores.DriftItem{}
	for _, d := range report.MissingDirs {
		items = append(items, stores.DriftItem{RunID: runID, Kind: stores.DriftMissingDirectory, Directory: d})
	}
	for dir, files := range report.MissingFiles {
		for _, f := range files {
			items = append(items, stores.DriftItem{RunID: runID, Kind: stores.DriftMissingFile, Directory: dir, Name: f})
		}
	}
	for _, d := range report.ExtraDirs {
		items = append(items, stores.DriftItem{RunID: runID, Kind: stores.DriftExtraDirectory, Directory: d})
	}
	for dir, files := range report.ExtraFiles {
		for _, f := range files {
			items = append(items, stores.DriftItem{RunID: runID, Kind: stores.DriftExtraFile, Directory: dir, Name: f})
		}
	}
	if err := store.RecordDriftItems(ctx, items); err != nil {
		return err
	}

	summary := fmt.Sprintf("drift=%d compliant=%t", report.DriftCount(), report.Compliant)
	return store.CompleteRun(ctx, runID, stores.RunStatusCompleted, nil, summary)
}
