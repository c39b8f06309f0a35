package auditor

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"github.com/strukt/strukt/pkg/structure"
)

const testDocJSON = `{
	"metadata": {
		"project_name": "demo",
		"github_username": "octocat",
		"version": "1.0.0",
		"schema_version": "2.0.0"
	},
	"structure": {
		"a": {
			"b": ["f.txt"]
		},
		"docs": ["readme.md"]
	}
}`

func testModel(t *testing.T) *structure.Model {
	t.Helper()
	model, err := structure.NewParser(zerolog.Nop()).ParseBytes([]byte(testDocJSON))
	if err != nil {
		t.Fatalf("failed to parse test document: %v", err)
	}
	return model
}

func mkdirs(t *testing.T, base string, dirs ...string) {
	t.Helper()
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(base, filepath.FromSlash(d)), 0755); err != nil {
			t.Fatalf("mkdir %s: %v", d, err)
		}
	}
}

func touch(t *testing.T, base string, files ...string) {
	t.Helper()
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(base, filepath.FromSlash(f)), nil, 0644); err != nil {
			t.Fatalf("touch %s: %v", f, err)
		}
	}
}

func TestAuditor_Audit_Compliant(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "a/b", "docs")
	touch(t, base, "a/b/f.txt", "docs/readme.md")

	report, err := New(Options{}, zerolog.Nop()).Audit(testModel(t), base)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	if !report.Compliant {
		t.Errorf("expected compliant report, got %+v", report)
	}
	if report.DriftCount() != 0 {
		t.Errorf("expected zero drift, got %d", report.DriftCount())
	}
}

func TestAuditor_Audit_MissingTree(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "docs")
	touch(t, base, "docs/readme.md")

	report, err := New(Options{}, zerolog.Nop()).Audit(testModel(t), base)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	if report.Compliant {
		t.Fatalf("expected drift")
	}
	if !reflect.DeepEqual(report.MissingDirs, []string{"a", "a/b"}) {
		t.Errorf("expected missing dirs [a a/b], got %v", report.MissingDirs)
	}
	if !reflect.DeepEqual(report.MissingFiles["a/b"], []string{"f.txt"}) {
		t.Errorf("expected f.txt missing under a/b, got %v", report.MissingFiles)
	}
}

func TestAuditor_Audit_PartialTree(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "a", "docs")
	touch(t, base, "docs/readme.md")

	report, err := New(Options{}, zerolog.Nop()).Audit(testModel(t), base)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	if !reflect.DeepEqual(report.MissingDirs, []string{"a/b"}) {
		t.Errorf("expected only a/b missing, got %v", report.MissingDirs)
	}
	if !reflect.DeepEqual(report.MissingFiles["a/b"], []string{"f.txt"}) {
		t.Errorf("expected f.txt missing under a/b, got %v", report.MissingFiles)
	}
	if len(report.ExtraDirs) != 0 || len(report.ExtraFiles) != 0 {
		t.Errorf("nothing should be extra, got %+v", report)
	}
	if report.Compliant {
		t.Errorf("partial tree must not be compliant")
	}
}

func TestAuditor_Audit_ExtraEntries(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "a/b", "docs", "vendor")
	touch(t, base, "a/b/f.txt", "a/unexpected.txt", "docs/readme.md", "stray.txt")

	report, err := New(Options{}, zerolog.Nop()).Audit(testModel(t), base)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	if report.Compliant {
		t.Fatalf("expected drift")
	}
	if !reflect.DeepEqual(report.ExtraDirs, []string{"vendor"}) {
		t.Errorf("expected extra dir vendor, got %v", report.ExtraDirs)
	}
	if !reflect.DeepEqual(report.ExtraFiles["a"], []string{"unexpected.txt"}) {
		t.Errorf("expected unexpected.txt under a, got %v", report.ExtraFiles)
	}
	if !reflect.DeepEqual(report.ExtraFiles["."], []string{"stray.txt"}) {
		t.Errorf("root-level extras should be keyed \".\", got %v", report.ExtraFiles)
	}
	if len(report.MissingDirs) != 0 || len(report.MissingFiles) != 0 {
		t.Errorf("nothing should be missing, got %+v", report)
	}
}

func TestAuditor_Audit_IgnoresDotEntries(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "a/b", "docs", ".git")
	touch(t, base, "a/b/f.txt", "docs/readme.md", ".hidden", "a/.secret")

	report, err := New(Options{}, zerolog.Nop()).Audit(testModel(t), base)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	if !report.Compliant {
		t.Errorf("dot entries must not count as drift, got %+v", report)
	}
}

func TestAuditor_Audit_CaseInsensitive(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "A/B", "Docs")
	touch(t, base, "A/B/F.TXT", "Docs/README.md")

	sensitive, err := New(Options{}, zerolog.Nop()).Audit(testModel(t), base)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if sensitive.Compliant {
		t.Errorf("case-sensitive audit should report drift")
	}

	insensitive, err := New(Options{CaseInsensitive: true}, zerolog.Nop()).Audit(testModel(t), base)
	if err != nil {
		t.Fatalf("audit failed: %v", err)
	}
	if !insensitive.Compliant {
		t.Errorf("case-insensitive audit should match, got %+v", insensitive)
	}
}

func TestAuditor_Audit_BasePathNotDirectory(t *testing.T) {
	base := t.TempDir()
	touch(t, base, "file.txt")

	_, err := New(Options{}, zerolog.Nop()).Audit(testModel(t), filepath.Join(base, "file.txt"))
	if err == nil {
		t.Fatalf("expected error for non-directory base path")
	}
}

func TestAuditor_Audit_ReadOnly(t *testing.T) {
	base := t.TempDir()
	mkdirs(t, base, "docs")
	touch(t, base, "docs/readme.md")

	if _, err := New(Options{}, zerolog.Nop()).Audit(testModel(t), base); err != nil {
		t.Fatalf("audit failed: %v", err)
	}

	// The audit must not have created the missing entries.
	if _, err := os.Stat(filepath.Join(base, "a")); !os.IsNotExist(err) {
		t.Errorf("audit created a missing directory")
	}
}
