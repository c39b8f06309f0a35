package commands

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/strukt/strukt/pkg/auditor"
	"github.com/strukt/strukt/pkg/structure"
	"github.com/strukt/strukt/pkg/telemetry"
)

func newWatchCommand() *cobra.Command {
	var (
		metricsAddr string
		basePath    string
	)

	cmd := &cobra.Command{
		Use:   "watch [document]",
		Short: "Watch a structure document and revalidate on change",
		Long: `Watch a structure document and re-parse it whenever it changes on disk.

Each change invalidates the parse cache and reports the validation
outcome. Editors that save via rename are handled. Runs until
interrupted.

With --base the tree under that directory is re-audited after each
successful reload. With --metrics-addr a Prometheus endpoint is served
at /metrics exposing parse and cache counters.`,
		Example: `  # Watch the default document
  strukt watch

  # Watch a specific document
  strukt watch ./structure.json

  # Re-audit a tree after every change
  strukt watch --base ./myproject

  # Expose parse metrics while watching
  strukt watch --metrics-addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadCLIConfig()
			if err != nil {
				return err
			}
			docPath := resolveDocument(args, cfg)
			if metricsAddr == "" {
				metricsAddr = cfg.MetricsAddr
			}
			if basePath == "" {
				basePath = cfg.Base
			}

			metrics, tracer, err := initTelemetry(cfg, cliVersion)
			if err != nil {
				return err
			}
			defer tracer.Shutdown(cmd.Context())

			if metricsAddr != "" {
				mux := http.NewServeMux()
				mux.Handle("/metrics", metrics.Handler())
				go func() {
					log.Info().Str("addr", metricsAddr).Msg("Serving metrics")
					if err := http.ListenAndServe(metricsAddr, mux); err != nil {
						log.Error().Err(err).Msg("Metrics server stopped")
					}
				}()
			}

			logger := cliLogger()
			cache := structure.NewCache(structure.NewParser(logger))
			err = metrics.RegisterCacheStats(
				func() float64 { return float64(cache.Stats().Hits) },
				func() float64 { return float64(cache.Stats().Misses) },
			)
			if err != nil {
				return err
			}

			// Initial parse so a broken document is reported immediately.
			timer := telemetry.NewTimer()
			if _, err := cache.GetOrParse(docPath); err != nil {
				metrics.RecordParse("invalid", timer.Duration())
				log.Warn().Err(err).Msg("Document is currently invalid")
			} else {
				metrics.RecordParse("ok", timer.Duration())
				log.Info().Str("document", docPath).Msg("Document is valid")
			}

			fmt.Printf("Watching %s (ctrl-c to stop)\n", docPath)

			a := auditor.New(auditor.Options{
				CaseInsensitive: cfg.CaseInsensitive,
			}, logger)

			watcher := structure.NewWatcher(cache, logger)
			return watcher.Watch(cmd.Context(), docPath, func(model *structure.Model, err error) {
				if err != nil {
					metrics.RecordParse("invalid", 0)
					log.Error().Err(err).Msg("Document became invalid")
					return
				}
				metrics.RecordParse("ok", 0)
				log.Info().
					Str("project", model.ProjectName()).
					Int("directories", len(model.Directories())).
					Msg("Document reloaded")

				if basePath == "" {
					return
				}
				report, auditErr := a.Audit(model, basePath)
				if auditErr != nil {
					log.Error().Err(auditErr).Msg("Audit failed")
					return
				}
				if report.Compliant {
					log.Info().Str("base", basePath).Msg("Tree matches the declared structure")
					return
				}
				log.Warn().
					Str("base", basePath).
					Int("drift_items", report.DriftCount()).
					Msg("Drift detected")
			})
		},
	}

	cmd.Flags().StringVarP(&basePath, "base", "b", "", "directory tree to re-audit after each reload")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	return cmd
}
