package structure

import (
	"errors"
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
}

func TestMigrator_IsLegacy(t *testing.T) {
	m := NewMigrator()

	legacy, err := DecodeDocument([]byte(`{"project_name": "demo", "structure": {"src": []}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !m.IsLegacy(legacy) {
		t.Errorf("document without schema_version should be legacy")
	}

	current, err := DecodeDocument([]byte(`{"metadata": {"schema_version": "2.0.0"}, "structure": {"src": []}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if m.IsLegacy(current) {
		t.Errorf("document with schema_version should not be legacy")
	}
}

func TestMigrator_Migrate_HoistsLegacyFields(t *testing.T) {
	raw, err := DecodeDocument([]byte(`{
		"project_name": "demo",
		"github_username": "octocat",
		"version": "1.2.3",
		"created_date": "2020-01-01",
		"structure": {"src": ["main.py"]}
	}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	m := NewMigratorWithClock(fixedClock)
	doc, err := m.Migrate(raw)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	if doc.Metadata.ProjectName != "demo" {
		t.Errorf("project_name not hoisted: %q", doc.Metadata.ProjectName)
	}
	if doc.Metadata.GithubUsername != "octocat" {
		t.Errorf("github_username not hoisted: %q", doc.Metadata.GithubUsername)
	}
	if doc.Metadata.Version != "1.2.3" {
		t.Errorf("version not hoisted: %q", doc.Metadata.Version)
	}
	if doc.Metadata.SchemaVersion != CurrentSchemaVersion {
		t.Errorf("expected schema version %s, got %q", CurrentSchemaVersion, doc.Metadata.SchemaVersion)
	}
	if doc.Metadata.CreatedDate != "2020-01-01" {
		t.Errorf("created_date should be preserved, got %q", doc.Metadata.CreatedDate)
	}
	if doc.Metadata.UpdatedDate != "2025-03-14" {
		t.Errorf("updated_date should be stamped from the clock, got %q", doc.Metadata.UpdatedDate)
	}
}

func TestMigrator_Migrate_Deterministic(t *testing.T) {
	raw, err := DecodeDocument([]byte(`{"project_name": "demo", "structure": {"src": []}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	m := NewMigratorWithClock(fixedClock)
	first, err := m.Migrate(raw)
	if err != nil {
		t.Fatalf("first migrate failed: %v", err)
	}
	second, err := m.Migrate(raw)
	if err != nil {
		t.Fatalf("second migrate failed: %v", err)
	}

	if first.Metadata != second.Metadata {
		t.Errorf("migration is not deterministic:\n first:  %+v\n second: %+v", first.Metadata, second.Metadata)
	}
	if !first.Structure.Equal(second.Structure) {
		t.Errorf("migrated trees differ between runs")
	}
}

func TestMigrator_Migrate_CurrentDocumentUnchanged(t *testing.T) {
	raw, err := DecodeDocument([]byte(`{
		"metadata": {
			"project_name": "demo",
			"github_username": "octocat",
			"version": "1.0.0",
			"schema_version": "2.0.0",
			"created_date": "2024-06-01",
			"updated_date": "2024-06-02"
		},
		"structure": {"src": ["main.py"]}
	}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	m := NewMigratorWithClock(fixedClock)
	doc, err := m.Migrate(raw)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	if doc.Metadata != *raw.Metadata {
		t.Errorf("current-schema metadata should pass through unchanged, got %+v", doc.Metadata)
	}
	if doc.Metadata.UpdatedDate != "2024-06-02" {
		t.Errorf("updated_date must not be restamped for current documents")
	}
}

func TestMigrator_Migrate_NoStructure(t *testing.T) {
	raw, err := DecodeDocument([]byte(`{"project_name": "demo"}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	m := NewMigrator()
	_, err = m.Migrate(raw)
	if err == nil {
		t.Fatalf("expected migration error for document without structure")
	}

	var migErr *MigrationError
	if !errors.As(err, &migErr) {
		t.Errorf("expected *MigrationError, got %T", err)
	}
}

func TestMigrator_Migrate_PartialNestedMetadata(t *testing.T) {
	// An unversioned document with a metadata block keeps nested fields that
	// the root level does not override.
	raw, err := DecodeDocument([]byte(`{
		"project_name": "root-name",
		"metadata": {"github_username": "nested-user", "version": "3.0.0"},
		"structure": {"src": []}
	}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	m := NewMigratorWithClock(fixedClock)
	doc, err := m.Migrate(raw)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	if doc.Metadata.ProjectName != "root-name" {
		t.Errorf("root-level field should win, got %q", doc.Metadata.ProjectName)
	}
	if doc.Metadata.GithubUsername != "nested-user" {
		t.Errorf("nested field should survive, got %q", doc.Metadata.GithubUsername)
	}
	if doc.Metadata.Version != "3.0.0" {
		t.Errorf("nested version should survive, got %q", doc.Metadata.Version)
	}
}

func TestMigrator_Migrate_InputNotMutated(t *testing.T) {
	raw, err := DecodeDocument([]byte(`{"project_name": "demo", "structure": {"src": ["a.go"]}}`))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	m := NewMigratorWithClock(fixedClock)
	doc, err := m.Migrate(raw)
	if err != nil {
		t.Fatalf("migrate failed: %v", err)
	}

	doc.Structure.AddChild("mutant", NewFileList("x.go"))

	if len(raw.Structure.ChildNames()) != 1 {
		t.Errorf("mutating the migrated tree changed the input: %v", raw.Structure.ChildNames())
	}
}
