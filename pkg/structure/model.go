package structure

// Model is the immutable, validated form of a structure document. It is
// constructed exactly once per document and never mutated afterwards;
// every query is a pure read, so concurrent readers need no locking.
type Model struct {
	meta Metadata
	root *Node

	// Flattened views, precomputed at construction.
	dirs  []string
	files map[string][]string
}

// NewModel builds a model from a migrated document. The constructor is the
// single point where validated JSON becomes a queryable domain object: it
// re-asserts the schema invariants and refuses documents that fail them.
func NewModel(doc Document) (*Model, error) {
	result := NewValidator().Validate(doc)
	if err := result.Err(); err != nil {
		return nil, err
	}

	m := &Model{
		meta:  doc.Metadata,
		root:  doc.Structure.Clone(),
		files: map[string][]string{},
	}
	m.flatten(m.root, "")
	return m, nil
}

// flatten precomputes the pre-order directory list and the per-directory
// file lists.
func (m *Model) flatten(node *Node, prefix string) {
	for _, name := range node.ChildNames() {
		path := name
		if prefix != "" {
			path = prefix + "/" + name
		}
		m.dirs = append(m.dirs, path)

		child := node.Child(name)
		switch child.Kind {
		case KindFileList:
			m.files[path] = child.Files()
		case KindDirectory:
			m.flatten(child, path)
		}
	}
}

// ProjectName returns the declared project name.
func (m *Model) ProjectName() string { return m.meta.ProjectName }

// GithubUsername returns the declared GitHub username.
func (m *Model) GithubUsername() string { return m.meta.GithubUsername }

// Version returns the declared document version.
func (m *Model) Version() string { return m.meta.Version }

// SchemaVersion returns the declared schema version.
func (m *Model) SchemaVersion() string { return m.meta.SchemaVersion }

// CreatedDate returns the declared creation date (YYYY-MM-DD).
func (m *Model) CreatedDate() string { return m.meta.CreatedDate }

// Directories returns every directory path in the tree, root-relative and
// slash-joined, in pre-order depth-first declaration order.
func (m *Model) Directories() []string {
	out := make([]string, len(m.dirs))
	copy(out, m.dirs)
	return out
}

// TopLevelDirectories returns the names of the root's immediate children.
func (m *Model) TopLevelDirectories() []string {
	return m.root.ChildNames()
}

// HasDirectory reports whether the exact directory path is declared.
func (m *Model) HasDirectory(path string) bool {
	for _, d := range m.dirs {
		if d == path {
			return true
		}
	}
	return false
}

// FilesFor returns the declared file names for an exact directory path.
// A declared directory with no file list yields an empty slice; asking for
// an undeclared path is a caller error and also yields an empty slice.
func (m *Model) FilesFor(path string) []string {
	files := m.files[path]
	out := make([]string, len(files))
	copy(out, files)
	return out
}

// AllFiles returns every declared (directory, files) pair.
func (m *Model) AllFiles() map[string][]string {
	out := make(map[string][]string, len(m.files))
	for dir, files := range m.files {
		cp := make([]string, len(files))
		copy(cp, files)
		out[dir] = cp
	}
	return out
}

// Tree returns the declared directory tree for callers needing the raw
// shape (e.g. documentation generation). The returned tree is a deep copy;
// mutating it cannot affect the model.
func (m *Model) Tree() *Node {
	return m.root.Clone()
}

// Export rebuilds the current-schema document this model was constructed
// from, for serialization back to disk.
func (m *Model) Export() Document {
	return Document{Metadata: m.meta, Structure: m.root.Clone()}
}
