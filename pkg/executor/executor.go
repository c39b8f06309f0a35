// Package executor applies planned filesystem operations against a base
// directory. Execution is idempotent: re-running the same plan is a
// sequence of no-ops and never clobbers existing content.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/strukt/strukt/pkg/planner"
)

// OperationError pairs a failed operation with its cause.
type OperationError struct {
	Operation planner.Operation `json:"operation"`
	Err       error             `json:"-"`
	Message   string            `json:"error"`
}

// Error implements the error interface.
func (e OperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation.Kind, e.Operation.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e OperationError) Unwrap() error { return e.Err }

// Result aggregates the outcome of applying a plan. A failed operation
// never aborts the remaining operations; every failure is collected here.
type Result struct {
	Created  int              `json:"created"`
	Skipped  int              `json:"skipped"`
	Failures []OperationError `json:"failures,omitempty"`
}

// Ok reports whether every operation succeeded.
func (r *Result) Ok() bool { return len(r.Failures) == 0 }

// Executor applies operations. In dry-run mode each operation is logged
// and nothing on disk is touched.
type Executor struct {
	dryRun bool
	logger zerolog.Logger
}

// New creates an executor.
func New(dryRun bool, logger zerolog.Logger) *Executor {
	return &Executor{
		dryRun: dryRun,
		logger: logger.With().Str("component", "executor").Logger(),
	}
}

// Apply runs the operation list against basePath in order. Directory
// creation on an existing directory and file creation on an existing file
// are both no-ops; existing files are never truncated or overwritten.
func (e *Executor) Apply(ctx context.Context, basePath string, ops []planner.Operation) *Result {
	result := &Result{}

	for _, op := range ops {
		select {
		case <-ctx.Done():
			result.Failures = append(result.Failures, OperationError{
				Operation: op,
				Err:       ctx.Err(),
				Message:   ctx.Err().Error(),
			})
			return result
		default:
		}

		target := filepath.Join(basePath, filepath.FromSlash(op.Path))

		if e.dryRun {
			e.logger.Info().
				Str("kind", string(op.Kind)).
				Str("path", op.Path).
				Msg("dry run: would apply")
			result.Skipped++
			continue
		}

		created, err := e.apply(op, target)
		if err != nil {
			e.logger.Warn().Err(err).
				Str("kind", string(op.Kind)).
				Str("path", op.Path).
				Msg("operation failed")
			result.Failures = append(result.Failures, OperationError{
				Operation: op,
				Err:       err,
				Message:   err.Error(),
			})
			continue
		}

		if created {
			result.Created++
		} else {
			result.Skipped++
		}
	}

	return result
}

// apply performs a single operation and reports whether it created
// anything.
func (e *Executor) apply(op planner.Operation, target string) (bool, error) {
	switch op.Kind {
	case planner.OpCreateDirectory:
		if info, err := os.Stat(target); err == nil {
			if !info.IsDir() {
				return false, fmt.Errorf("%s exists and is not a directory", target)
			}
			return false, nil
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return false, err
		}
		return true, nil

	case planner.OpCreateFile:
		f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err != nil {
			if errors.Is(err, fs.ErrExist) {
				return false, nil
			}
			return false, err
		}
		defer f.Close()
		if op.Content != "" {
			if _, err := f.WriteString(op.Content); err != nil {
				return false, err
			}
		}
		return true, nil

	default:
		return false, fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// WriteFileAtomic replaces path with data via a temp file and rename, so a
// failed write never leaves a half-written document behind. The temp file
// lives in the target directory to keep the rename atomic on POSIX.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, ".strukt-tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	success = true
	return nil
}
