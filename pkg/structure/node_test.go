package structure

import (
	"encoding/json"
	"testing"
)

func TestNode_UnmarshalJSON_Directory(t *testing.T) {
	data := []byte(`{"src": {"api": ["main.py"]}, "docs": ["readme.md"]}`)

	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if n.Kind != KindDirectory {
		t.Fatalf("expected directory kind, got %s", n.Kind)
	}

	names := n.ChildNames()
	if len(names) != 2 || names[0] != "src" || names[1] != "docs" {
		t.Errorf("expected declaration order [src docs], got %v", names)
	}

	src := n.Child("src")
	if src == nil || src.Kind != KindDirectory {
		t.Fatalf("expected src to be a directory node")
	}

	api := src.Child("api")
	if api == nil || api.Kind != KindFileList {
		t.Fatalf("expected api to be a file list")
	}
	files := api.Files()
	if len(files) != 1 || files[0] != "main.py" {
		t.Errorf("expected [main.py], got %v", files)
	}
}

func TestNode_UnmarshalJSON_FileList(t *testing.T) {
	data := []byte(`["b.txt", "a.txt", "c.txt"]`)

	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if n.Kind != KindFileList {
		t.Fatalf("expected file list kind, got %s", n.Kind)
	}

	files := n.Files()
	if len(files) != 3 || files[0] != "b.txt" || files[1] != "a.txt" || files[2] != "c.txt" {
		t.Errorf("expected declaration order [b.txt a.txt c.txt], got %v", files)
	}
}

func TestNode_UnmarshalJSON_RejectsScalars(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"string", `"not a node"`},
		{"number", `42`},
		{"bool", `true`},
		{"null", `null`},
		{"non-string file entry", `[1, 2]`},
		{"nested scalar", `{"src": 42}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var n Node
			if err := json.Unmarshal([]byte(tc.data), &n); err == nil {
				t.Errorf("expected unmarshal of %s to fail", tc.data)
			}
		})
	}
}

func TestNode_MarshalJSON_PreservesOrder(t *testing.T) {
	data := []byte(`{"zeta":["z.txt"],"alpha":["a.txt"],"mid":{"inner":["i.go"]}}`)

	var n Node
	if err := json.Unmarshal(data, &n); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	out, err := json.Marshal(&n)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if string(out) != string(data) {
		t.Errorf("round trip changed the document:\n in:  %s\n out: %s", data, out)
	}
}

func TestNode_Clone_Independent(t *testing.T) {
	orig := NewDirectory()
	orig.AddChild("src", NewFileList("a.go"))

	clone := orig.Clone()
	clone.AddChild("extra", NewFileList("b.go"))

	if len(orig.ChildNames()) != 1 {
		t.Errorf("mutating the clone changed the original: %v", orig.ChildNames())
	}
	if !orig.Child("src").Equal(clone.Child("src")) {
		t.Errorf("clone lost the src subtree")
	}
}

func TestNode_Equal(t *testing.T) {
	a := NewDirectory()
	a.AddChild("src", NewFileList("a.go", "b.go"))

	b := NewDirectory()
	b.AddChild("src", NewFileList("a.go", "b.go"))

	if !a.Equal(b) {
		t.Errorf("identical trees reported unequal")
	}

	c := NewDirectory()
	c.AddChild("src", NewFileList("b.go", "a.go"))
	if a.Equal(c) {
		t.Errorf("trees with different file order reported equal")
	}
}
