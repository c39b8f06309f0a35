// Package planner converts a structure model into an ordered, idempotent
// list of filesystem operations. The planner itself performs no filesystem
// access; executing the list is the executor's job.
package planner

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/strukt/strukt/pkg/structure"
)

// OperationKind identifies the unit of work an operation performs.
type OperationKind string

const (
	// OpCreateDirectory creates a directory (and, under the executor's
	// contract, is a no-op when it already exists).
	OpCreateDirectory OperationKind = "create_directory"

	// OpCreateFile creates a file if absent; it never truncates or
	// overwrites an existing file.
	OpCreateFile OperationKind = "create_file"
)

// Operation is one atomic unit of planned work. Operations are data, not
// actions: a separate executor interprets them.
type Operation struct {
	Kind OperationKind `json:"kind"`

	// Path is relative to the executor's base directory, slash-joined.
	Path string `json:"path"`

	// Content is optional file content; empty for placeholder files.
	Content string `json:"content,omitempty"`
}

// Summary counts the operations in a plan by kind.
type Summary struct {
	Directories int `json:"directories"`
	Files       int `json:"files"`
}

// Plan is an ordered operation list with identity and provenance. Executing
// it top to bottom never references a path whose parent has not yet been
// created.
type Plan struct {
	ID         string      `json:"id"`
	Project    string      `json:"project"`
	CreatedAt  time.Time   `json:"created_at"`
	Operations []Operation `json:"operations"`
	Summary    Summary     `json:"summary"`
}

// Options tunes plan generation.
type Options struct {
	// Readmes adds a generated README.md to each top-level directory that
	// does not already declare one.
	Readmes bool
}

// Planner walks a structure model and emits filesystem operations.
type Planner struct {
	opts Options
}

// New creates a planner.
func New(opts Options) *Planner {
	return &Planner{opts: opts}
}

// BuildPlan emits one create_directory operation per declared directory in
// pre-order, with each directory's file operations placed after its
// create_directory and before any deeper subdirectory's operations. The
// function is pure: calling it repeatedly on the same model yields the
// same operation sequence (plan ID and timestamp aside).
func (p *Planner) BuildPlan(model *structure.Model) *Plan {
	plan := &Plan{
		ID:        uuid.New().String(),
		Project:   model.ProjectName(),
		CreatedAt: time.Now(),
	}

	p.walk(model, model.Tree(), "", plan)

	plan.Summary = summarize(plan.Operations)
	return plan
}

func (p *Planner) walk(model *structure.Model, node *structure.Node, prefix string, plan *Plan) {
	for _, name := range node.ChildNames() {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}

		plan.Operations = append(plan.Operations, Operation{
			Kind: OpCreateDirectory,
			Path: path,
		})

		child := node.Child(name)
		switch child.Kind {
		case structure.KindFileList:
			for _, file := range child.Files() {
				plan.Operations = append(plan.Operations, Operation{
					Kind: OpCreateFile,
					Path: path + "/" + file,
				})
			}
		case structure.KindDirectory:
			if p.opts.Readmes && prefix == "" {
				plan.Operations = append(plan.Operations, Operation{
					Kind:    OpCreateFile,
					Path:    path + "/README.md",
					Content: readmeContent(model, name),
				})
			}
			p.walk(model, child, path, plan)
		}
	}
}

func summarize(ops []Operation) Summary {
	var s Summary
	for _, op := range ops {
		switch op.Kind {
		case OpCreateDirectory:
			s.Directories++
		case OpCreateFile:
			s.Files++
		}
	}
	return s
}

// readmeContent generates the README body for a top-level directory,
// listing the files declared anywhere beneath it.
func readmeContent(model *structure.Model, dir string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", titleCase(dir))
	fmt.Fprintf(&b, "This directory is part of the **%s** repository structure.\n", model.ProjectName())

	var declared []string
	for sub, files := range model.AllFiles() {
		if sub == dir || strings.HasPrefix(sub, dir+"/") {
			for _, f := range files {
				declared = append(declared, sub+"/"+f)
			}
		}
	}
	sort.Strings(declared)

	if len(declared) > 0 {
		b.WriteString("\n## Declared files\n\n")
		for _, f := range declared {
			fmt.Fprintf(&b, "- `%s`\n", f)
		}
	}

	fmt.Fprintf(&b, "\n---\n\n*Generated from the structure definition (version %s).*\n", model.Version())
	return b.String()
}

// titleCase turns a kebab-case directory name into a heading.
func titleCase(name string) string {
	words := strings.Split(strings.ReplaceAll(name, "-", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
