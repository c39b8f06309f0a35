package structure

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeKind discriminates the two shapes a tree node can take.
type NodeKind string

const (
	// KindDirectory is a mapping from child name to another node.
	KindDirectory NodeKind = "directory"

	// KindFileList is an ordered list of file names that are leaves under
	// the enclosing directory path.
	KindFileList NodeKind = "files"
)

// Node is one node of the declared directory tree. The shape is resolved
// exactly once, from the JSON token type at parse time: an object becomes a
// directory, an array becomes a file list. Downstream consumers switch on
// Kind instead of re-inspecting raw JSON.
type Node struct {
	Kind NodeKind

	// names holds the child names of a directory node in declaration order.
	names    []string
	children map[string]*Node

	// files holds the entries of a file-list node in declaration order.
	files []string
}

// NewDirectory builds an empty directory node.
func NewDirectory() *Node {
	return &Node{Kind: KindDirectory, children: map[string]*Node{}}
}

// NewFileList builds a file-list node with the given entries.
func NewFileList(files ...string) *Node {
	n := &Node{Kind: KindFileList}
	n.files = append(n.files, files...)
	return n
}

// AddChild appends a child to a directory node, preserving insertion order.
// Adding a duplicate name replaces the existing child in place.
func (n *Node) AddChild(name string, child *Node) {
	if n.Kind != KindDirectory {
		return
	}
	if _, exists := n.children[name]; !exists {
		n.names = append(n.names, name)
	}
	n.children[name] = child
}

// ChildNames returns the child names of a directory node in declaration
// order. File-list nodes have no children.
func (n *Node) ChildNames() []string {
	out := make([]string, len(n.names))
	copy(out, n.names)
	return out
}

// Child returns the named child of a directory node, or nil.
func (n *Node) Child(name string) *Node {
	return n.children[name]
}

// Files returns the entries of a file-list node in declaration order.
func (n *Node) Files() []string {
	out := make([]string, len(n.files))
	copy(out, n.files)
	return out
}

// Clone returns a deep copy of the node.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind}
	if n.Kind == KindFileList {
		out.files = append(out.files, n.files...)
		return out
	}
	out.children = make(map[string]*Node, len(n.children))
	out.names = append(out.names, n.names...)
	for name, child := range n.children {
		out.children[name] = child.Clone()
	}
	return out
}

// Equal reports whether two nodes describe the same tree, including child
// order.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind {
		return false
	}
	if n.Kind == KindFileList {
		if len(n.files) != len(other.files) {
			return false
		}
		for i, f := range n.files {
			if other.files[i] != f {
				return false
			}
		}
		return true
	}
	if len(n.names) != len(other.names) {
		return false
	}
	for i, name := range n.names {
		if other.names[i] != name {
			return false
		}
		if !n.children[name].Equal(other.children[name]) {
			return false
		}
	}
	return true
}

// UnmarshalJSON resolves the node shape from the leading JSON token. Any
// value that is not an object or an array of strings is rejected here, so
// the rest of the engine never sees an untagged node.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return fmt.Errorf("structure node must be an object or an array, got %v", tok)
	}

	switch delim {
	case '{':
		n.Kind = KindDirectory
		n.children = map[string]*Node{}
		n.names = nil
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return err
			}
			name := keyTok.(string)

			var child Node
			var raw json.RawMessage
			if err := dec.Decode(&raw); err != nil {
				return err
			}
			if err := json.Unmarshal(raw, &child); err != nil {
				return fmt.Errorf("invalid node %q: %w", name, err)
			}
			n.AddChild(name, &child)
		}
		// consume closing '}'
		_, err = dec.Token()
		return err

	case '[':
		n.Kind = KindFileList
		n.files = nil
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return err
			}
			name, ok := tok.(string)
			if !ok {
				return fmt.Errorf("file list entries must be strings, got %v", tok)
			}
			n.files = append(n.files, name)
		}
		_, err = dec.Token()
		return err

	default:
		return fmt.Errorf("unexpected JSON delimiter %q in structure node", delim)
	}
}

// MarshalJSON serializes the node back to its wire shape, preserving the
// declaration order of directory children and file entries.
func (n *Node) MarshalJSON() ([]byte, error) {
	if n.Kind == KindFileList {
		files := n.files
		if files == nil {
			files = []string{}
		}
		return json.Marshal(files)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range n.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(n.children[name])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
