package structure

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// CurrentSchemaVersion is the schema version stamped onto migrated
// documents and declared by newly generated ones.
const CurrentSchemaVersion = "2.0.0"

// knownSchemaVersions is the fixed set of schema versions the engine
// accepts. An unknown value is a hard validation error; an absent value
// marks a legacy document and triggers migration instead.
var knownSchemaVersions = map[string]bool{
	CurrentSchemaVersion: true,
}

// Metadata carries the document-level fields of a structure document.
// The validate tags drive the metadata portion of schema validation; the
// tree portion is checked recursively because its keys are dynamic.
type Metadata struct {
	ProjectName    string `json:"project_name" validate:"required,dirname"`
	GithubUsername string `json:"github_username" validate:"required"`
	Version        string `json:"version" validate:"required,semver"`
	SchemaVersion  string `json:"schema_version" validate:"required,schemaversion"`
	CreatedDate    string `json:"created_date,omitempty"`
	UpdatedDate    string `json:"updated_date,omitempty"`
}

// Document is a structure document in current-schema shape: nested
// metadata plus the declared tree. It is the transient form between
// migration and model construction.
type Document struct {
	Metadata  Metadata `json:"metadata"`
	Structure *Node    `json:"structure"`
}

// RawDocument accepts both the current shape and the legacy shape, where
// the metadata fields sit at the document root. The migrator decides which
// one it is looking at.
type RawDocument struct {
	Metadata *Metadata `json:"metadata"`

	// Legacy root-level fields.
	ProjectName    string `json:"project_name"`
	GithubUsername string `json:"github_username"`
	CreatedDate    string `json:"created_date"`
	UpdatedDate    string `json:"updated_date"`
	Version        string `json:"version"`

	Structure *Node `json:"structure"`
}

// DecodeDocument deserializes a raw structure document. JSON syntax errors
// are returned unwrapped so callers keep the decoder's offset detail.
func DecodeDocument(data []byte) (RawDocument, error) {
	var raw RawDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return RawDocument{}, err
	}
	return raw, nil
}

// ReadDocument loads and deserializes a structure document from disk.
// File-not-found and parse errors are surfaced with the underlying error
// preserved in the chain.
func ReadDocument(path string) (RawDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RawDocument{}, fmt.Errorf("read structure document: %w", err)
	}
	raw, err := DecodeDocument(data)
	if err != nil {
		return RawDocument{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return raw, nil
}

// Encode serializes the document to pretty-printed JSON, preserving the
// declaration order of the tree.
func (d Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
