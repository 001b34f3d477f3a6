package record

import (
	"sort"
	"strconv"

	"lazyddb/internal/models"
)

// Row is one visible row of the flattened record tree.
type Row struct {
	Key         string // object key, array index, or "$" for the root
	Value       any
	Depth       int
	Path        Path
	HasChildren bool
	Expanded    bool
}

// Tree flattens a structured record into visible rows, honoring a per-path
// expand/collapse memory. Rows are ephemeral; the memory is keyed by path
// string and survives every rebuild, so switching to a structurally
// different record simply leaves unmatched paths collapsed.
type Tree struct {
	root     any
	valid    bool
	expanded map[string]bool
	rows     []Row
}

// NewTree returns an empty tree with a fresh expansion memory.
func NewTree() *Tree {
	return &Tree{expanded: make(map[string]bool)}
}

// SetRecord replaces the record the tree is built from. Expansion memory is
// kept. A record with a nil Value (unparseable) yields zero rows.
func (t *Tree) SetRecord(rec models.Record) {
	t.root = rec.Value
	t.valid = rec.Value != nil
	t.rebuild()
}

// Rows returns the current visible rows.
func (t *Tree) Rows() []Row {
	return t.rows
}

// Toggle flips the remembered expansion state for the exact path and
// rebuilds. Toggling a scalar row is a no-op at build time (scalars never
// have children), so callers may pass any row's path.
func (t *Tree) Toggle(path Path) {
	key := path.String()
	t.expanded[key] = !t.isExpanded(path)
	t.rebuild()
}

// isExpanded consults the memory; paths never seen before are collapsed,
// except the root, which starts expanded.
func (t *Tree) isExpanded(path Path) bool {
	if v, ok := t.expanded[path.String()]; ok {
		return v
	}
	return path.IsRoot()
}

func (t *Tree) rebuild() {
	t.rows = t.rows[:0]
	if !t.valid {
		return
	}
	t.walk("$", t.root, 0, Path{})
}

func (t *Tree) walk(key string, value any, depth int, path Path) {
	switch v := value.(type) {
	case map[string]any:
		expanded := t.isExpanded(path)
		t.rows = append(t.rows, Row{
			Key: key, Value: v, Depth: depth, Path: path,
			HasChildren: true, Expanded: expanded,
		})
		if !expanded {
			return
		}
		// Object keys are emitted in sorted order so rebuilds are
		// deterministic across map iterations.
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.walk(k, v[k], depth+1, path.Child(k))
		}
	case []any:
		expanded := t.isExpanded(path)
		t.rows = append(t.rows, Row{
			Key: key, Value: v, Depth: depth, Path: path,
			HasChildren: true, Expanded: expanded,
		})
		if !expanded {
			return
		}
		for i, item := range v {
			t.walk(strconv.Itoa(i), item, depth+1, path.Element(i))
		}
	default:
		t.rows = append(t.rows, Row{Key: key, Value: v, Depth: depth, Path: path})
	}
}
