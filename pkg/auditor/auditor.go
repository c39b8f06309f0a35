// Package auditor compares a structure model against a real directory tree
// and reports drift in both directions. The audit is strictly read-only.
package auditor

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/strukt/strukt/pkg/structure"
)

// Options tunes the comparison.
type Options struct {
	// CaseInsensitive folds case when matching declared paths against the
	// filesystem. Comparisons are case-sensitive by default; set this on
	// filesystems that are not.
	CaseInsensitive bool
}

// Report aggregates the drift between the declared structure and the
// actual tree. Compliant is true iff all four collections are empty.
// Undeclared files sitting directly in the base directory are keyed ".".
type Report struct {
	MissingDirs  []string            `json:"missing_directories"`
	MissingFiles map[string][]string `json:"missing_files"`
	ExtraDirs    []string            `json:"extra_directories"`
	ExtraFiles   map[string][]string `json:"extra_files"`
	Compliant    bool                `json:"compliant"`
}

// DriftCount returns the total number of drift entries in the report.
func (r *Report) DriftCount() int {
	n := len(r.MissingDirs) + len(r.ExtraDirs)
	for _, files := range r.MissingFiles {
		n += len(files)
	}
	for _, files := range r.ExtraFiles {
		n += len(files)
	}
	return n
}

// Auditor walks a base path and diffs it against a structure model.
type Auditor struct {
	opts   Options
	logger zerolog.Logger
}

// New creates an auditor.
func New(opts Options, logger zerolog.Logger) *Auditor {
	return &Auditor{
		opts:   opts,
		logger: logger.With().Str("component", "auditor").Logger(),
	}
}

// Audit computes the drift report for basePath. Entries whose name begins
// with a dot are never walked and never reported; hidden and
// version-control artifacts are not drift.
func (a *Auditor) Audit(model *structure.Model, basePath string) (*Report, error) {
	info, err := os.Stat(basePath)
	if err != nil {
		return nil, fmt.Errorf("audit base path: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("audit base path %s: not a directory", basePath)
	}

	// Snapshot the actual tree. Keys are folded for comparison; values keep
	// the on-disk spelling for reporting.
	actualDirs := map[string]string{}
	actualFiles := map[string][]string{}
	if err := a.walk(basePath, "", actualDirs, actualFiles); err != nil {
		return nil, err
	}

	report := &Report{
		MissingFiles: map[string][]string{},
		ExtraFiles:   map[string][]string{},
	}

	declaredDirs := map[string]bool{}
	for _, dir := range model.Directories() {
		declaredDirs[a.fold(dir)] = true
		if _, onDisk := actualDirs[a.fold(dir)]; !onDisk {
			report.MissingDirs = append(report.MissingDirs, dir)
		}
	}

	declaredFiles := map[string]map[string]bool{}
	for dir, files := range model.AllFiles() {
		set := map[string]bool{}
		for _, f := range files {
			set[a.fold(f)] = true
		}
		declaredFiles[a.fold(dir)] = set

		present := map[string]bool{}
		for _, f := range actualFiles[a.fold(dir)] {
			present[a.fold(f)] = true
		}
		for _, f := range files {
			if !present[a.fold(f)] {
				report.MissingFiles[dir] = append(report.MissingFiles[dir], f)
			}
		}
	}

	for folded, actual := range actualDirs {
		if !declaredDirs[folded] {
			report.ExtraDirs = append(report.ExtraDirs, actual)
		}
	}
	sort.Strings(report.ExtraDirs)

	for folded, files := range actualFiles {
		declared := declaredFiles[folded]
		dir := folded
		if actual, ok := actualDirs[folded]; ok {
			dir = actual
		} else if folded == "" {
			dir = "."
		}
		for _, f := range files {
			if !declared[a.fold(f)] {
				report.ExtraFiles[dir] = append(report.ExtraFiles[dir], f)
			}
		}
		sort.Strings(report.ExtraFiles[dir])
		if len(report.ExtraFiles[dir]) == 0 {
			delete(report.ExtraFiles, dir)
		}
	}

	report.Compliant = len(report.MissingDirs) == 0 &&
		len(report.MissingFiles) == 0 &&
		len(report.ExtraDirs) == 0 &&
		len(report.ExtraFiles) == 0

	a.logger.Debug().
		Str("base", basePath).
		Bool("compliant", report.Compliant).
		Int("drift_items", report.DriftCount()).
		Msg("audit complete")

	return report, nil
}

// walk records every visible directory and file beneath dir, depth-first,
// directories before files, alphabetical within each level (os.ReadDir
// sorts). rel is the slash-joined path relative to the base.
func (a *Auditor) walk(dir, rel string, dirs map[string]string, files map[string][]string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("audit walk %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		childRel := name
		if rel != "" {
			childRel = rel + "/" + name
		}

		if entry.IsDir() {
			dirs[a.fold(childRel)] = childRel
			if err := a.walk(filepath.Join(dir, name), childRel, dirs, files); err != nil {
				return err
			}
			continue
		}

		parent := a.fold(rel)
		files[parent] = append(files[parent], name)
	}

	return nil
}

// fold normalizes a path for comparison.
func (a *Auditor) fold(s string) string {
	if a.opts.CaseInsensitive {
		return strings.ToLower(s)
	}
	return s
}
