package telemetry

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "default config is valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "missing service name",
			mutate:  func(c *Config) { c.ServiceName = "" },
			wantErr: true,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "bad log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name: "bad trace exporter",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "jaeger"
			},
			wantErr: true,
		},
		{
			name:    "sampling rate out of range",
			mutate:  func(c *Config) { c.Tracing.SamplingRate = 1.5 },
			wantErr: true,
		},
		{
			name: "stdout exporter accepted",
			mutate: func(c *Config) {
				c.Tracing.Enabled = true
				c.Tracing.Exporter = "stdout"
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_FieldHelpers(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{zlog: zerolog.New(&buf)}

	base.WithDocument("structure.json").
		WithRunID("run-123").
		Info("parsing")

	out := buf.String()
	for _, want := range []string{"structure.json", "run-123", "parsing"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLogger_WithOperation(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{zlog: zerolog.New(&buf)}

	base.WithOperation("create_file", "src/main.py").Info("applied")

	out := buf.String()
	if !strings.Contains(out, "create_file") || !strings.Contains(out, "src/main.py") {
		t.Errorf("log output missing operation fields: %s", out)
	}
}

func TestLogger_ComponentLogger(t *testing.T) {
	var buf bytes.Buffer
	base := &Logger{zlog: zerolog.New(&buf)}

	base.NewComponentLogger("planner").Info("ready")

	if !strings.Contains(buf.String(), "planner") {
		t.Errorf("log output missing component field: %s", buf.String())
	}
}

func TestLogger_Context(t *testing.T) {
	logger := &Logger{zlog: zerolog.New(nil)}
	ctx := logger.WithContext(context.Background())

	if got := FromContext(ctx); got != logger {
		t.Error("FromContext should return the stored logger")
	}
	if got := FromContext(context.Background()); got == nil {
		t.Error("FromContext should fall back to a default logger")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"fatal", zerolog.FatalLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLogLevel(tt.input); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestMetrics_Enabled(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: true, Namespace: "strukt"})
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	m.RecordParse("ok", 10*time.Millisecond)
	m.RecordOperationPlanned("create_directory")
	m.RecordOperationApplied("create_directory", "applied")
	m.RecordRun("apply", "completed", time.Second)
	m.SetDriftItems("missing_file", 3)

	if m.Handler() == nil {
		t.Error("Handler() should not be nil when metrics are enabled")
	}
}

func TestMetrics_Disabled(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	// All record methods must be safe no-ops.
	m.RecordParse("ok", time.Millisecond)
	m.RecordOperationPlanned("create_file")
	m.RecordOperationApplied("create_file", "failed")
	m.RecordRun("audit", "completed", time.Second)
	m.SetDriftItems("extra_directory", 1)

	if err := m.RegisterCacheStats(func() float64 { return 1 }, func() float64 { return 2 }); err != nil {
		t.Errorf("RegisterCacheStats should be a no-op when disabled: %v", err)
	}
}

func TestMetrics_CacheStatsFromSource(t *testing.T) {
	m, err := NewMetrics(MetricsConfig{Enabled: true, Namespace: "strukt"})
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}

	var hits, misses float64 = 2, 5
	err = m.RegisterCacheStats(
		func() float64 { return hits },
		func() float64 { return misses },
	)
	if err != nil {
		t.Fatalf("RegisterCacheStats() error = %v", err)
	}

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("failed to scrape metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read metrics body: %v", err)
	}

	out := string(body)
	if !strings.Contains(out, "strukt_cache_hits_total 2") {
		t.Errorf("scrape missing cache hits from the source counters:\n%s", out)
	}
	if !strings.Contains(out, "strukt_cache_misses_total 5") {
		t.Errorf("scrape missing cache misses from the source counters:\n%s", out)
	}

	// The counters must track the source, not a copy taken at
	// registration time.
	misses = 6
	resp2, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("failed to scrape metrics: %v", err)
	}
	defer resp2.Body.Close()
	body, err = io.ReadAll(resp2.Body)
	if err != nil {
		t.Fatalf("failed to read metrics body: %v", err)
	}
	if !strings.Contains(string(body), "strukt_cache_misses_total 6") {
		t.Errorf("scrape should reflect updated source counters:\n%s", body)
	}
}

func TestTracer_Disabled(t *testing.T) {
	tracer, err := NewTracer(TracingConfig{Enabled: false}, "strukt", "test", "test")
	if err != nil {
		t.Fatalf("NewTracer() error = %v", err)
	}
	defer tracer.Shutdown(context.Background())

	_, span := tracer.StartRunSpan(context.Background(), "run-1", "apply")
	RecordSuccess(span)
	span.End()

	_, span = tracer.StartParseSpan(context.Background(), "structure.json")
	RecordError(span, context.DeadlineExceeded)
	span.End()
}
