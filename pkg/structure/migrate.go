package structure

import "time"

// Migrator rewrites legacy (unversioned) documents into the current schema
// shape. It runs strictly before validation, so error messages never mix
// "missing because legacy" with "missing because invalid".
type Migrator struct {
	// now supplies the migration timestamp; fixed in tests so migrating the
	// same legacy document twice yields identical output.
	now func() time.Time
}

// NewMigrator creates a migrator using the wall clock.
func NewMigrator() *Migrator {
	return &Migrator{now: time.Now}
}

// NewMigratorWithClock creates a migrator with an injected clock.
func NewMigratorWithClock(now func() time.Time) *Migrator {
	return &Migrator{now: now}
}

// IsLegacy reports whether the raw document lacks a declared schema
// version and therefore needs migration. Unknown (non-empty) versions are
// not legacy; they are rejected later by validation.
func (m *Migrator) IsLegacy(raw RawDocument) bool {
	return raw.Metadata == nil || raw.Metadata.SchemaVersion == ""
}

// Migrate converts a raw document into current-schema shape. It is a pure
// function: the input is never mutated and the returned document owns a
// deep copy of the tree. Documents that already declare a schema version
// pass through unchanged.
//
// A MigrationError is returned only when the input is not even shaped like
// a legacy document, i.e. it declares no structure tree at all.
func (m *Migrator) Migrate(raw RawDocument) (Document, error) {
	if raw.Structure == nil {
		return Document{}, newMigrationError("document has no structure tree; not a structure document")
	}

	if !m.IsLegacy(raw) {
		return Document{
			Metadata:  *raw.Metadata,
			Structure: raw.Structure.Clone(),
		}, nil
	}

	today := m.now().Format("2006-01-02")

	meta := Metadata{
		ProjectName:    raw.ProjectName,
		GithubUsername: raw.GithubUsername,
		Version:        raw.Version,
		SchemaVersion:  CurrentSchemaVersion,
		CreatedDate:    raw.CreatedDate,
		UpdatedDate:    today,
	}

	// A partially nested legacy document (metadata object present but
	// unversioned) keeps whatever nested fields it already set.
	if raw.Metadata != nil {
		if meta.ProjectName == "" {
			meta.ProjectName = raw.Metadata.ProjectName
		}
		if meta.GithubUsername == "" {
			meta.GithubUsername = raw.Metadata.GithubUsername
		}
		if meta.Version == "" {
			meta.Version = raw.Metadata.Version
		}
		if meta.CreatedDate == "" {
			meta.CreatedDate = raw.Metadata.CreatedDate
		}
	}

	if meta.CreatedDate == "" {
		meta.CreatedDate = today
	}

	return Document{
		Metadata:  meta,
		Structure: raw.Structure.Clone(),
	}, nil
}
