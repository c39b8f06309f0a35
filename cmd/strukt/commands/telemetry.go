package commands

import (
	"fmt"

	"github.com/strukt/strukt/pkg/telemetry"
)

// initTelemetry builds the metrics collector and tracer for a command run.
// Tracing stays off unless the config file asks for an exporter.
func initTelemetry(cfg cliConfig, version string) (*telemetry.Metrics, *telemetry.Tracer, error) {
	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	if verbose {
		tcfg.Logging.Level = "debug"
	}
	if cfg.TraceExporter != "" {
		tcfg.Tracing.Enabled = true
		tcfg.Tracing.Exporter = cfg.TraceExporter
	}
	if err := tcfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid telemetry configuration: %w", err)
	}

	metrics, err := telemetry.NewMetrics(tcfg.Metrics)
	if err != nil {
		return nil, nil, err
	}
	tracer, err := telemetry.NewTracer(tcfg.Tracing, tcfg.ServiceName, tcfg.ServiceVersion, tcfg.Environment)
	if err != nil {
		return nil, nil, err
	}
	return metrics, tracer, nil
}
