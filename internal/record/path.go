package record

import "strconv"

// Path is the ordered sequence of object keys and array indices from the
// record root down to a node.
type Path struct {
	parts []part
}

// part is one step of a path. Object keys and array indices are kept
// distinct so that a numeric key like "0" never collides with element 0 of
// an array in the expansion memory.
type part struct {
	key     string
	index   int
	isIndex bool
}

// String returns the path in $.key[idx] notation. The root path is "$".
// This string form is also the key of the expansion memory.
func (p Path) String() string {
	result := "$"
	for _, seg := range p.parts {
		if seg.isIndex {
			result += "[" + strconv.Itoa(seg.index) + "]"
		} else {
			result += "." + seg.key
		}
	}
	return result
}

// IsRoot reports whether this is the record root.
func (p Path) IsRoot() bool {
	return len(p.parts) == 0
}

// Child returns a new path extended by an object key. The receiver is not
// modified; rows built from a shared prefix must not alias each other.
func (p Path) Child(key string) Path {
	return p.extend(part{key: key})
}

// Element returns a new path extended by an array index.
func (p Path) Element(index int) Path {
	return p.extend(part{index: index, isIndex: true})
}

func (p Path) extend(seg part) Path {
	parts := make([]part, 0, len(p.parts)+1)
	parts = append(parts, p.parts...)
	parts = append(parts, seg)
	return Path{parts: parts}
}
