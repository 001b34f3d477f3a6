package models

import "encoding/json"

// Record is one item from a collection. Raw is the canonical display
// serialization; Value is the parsed structure. Value is nil when the stored
// representation is not valid structured data — such records never match a
// filter and render an empty tree.
type Record struct {
	Raw   string
	Value any
}

// NewRecord parses raw into a Record. A parse failure is not an error here;
// it yields a Record with a nil Value.
func NewRecord(raw string) Record {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return Record{Raw: raw}
	}
	return Record{Raw: raw, Value: value}
}

// RecordFromValue builds a Record from an already-decoded structure.
func RecordFromValue(value any) Record {
	raw, err := json.Marshal(value)
	if err != nil {
		return Record{}
	}
	return Record{Raw: string(raw), Value: value}
}

// KeyAttribute is one attribute of a table's primary key.
// Type is the DynamoDB attribute type ("S", "N" or "B").
type KeyAttribute struct {
	Name string
	Type string
}

// KeySchema holds the partition and optional sort key of a collection.
// A zero KeySchema means key discovery failed or the table definition is not
// supported; key-based querying is disabled in that case.
type KeySchema struct {
	Partition *KeyAttribute
	Sort      *KeyAttribute
}

// Supported reports whether key-based querying is possible: a partition key
// must exist and every key attribute must have an encodable type.
func (k KeySchema) Supported() bool {
	if k.Partition == nil || !k.Partition.Encodable() {
		return false
	}
	if k.Sort != nil && !k.Sort.Encodable() {
		return false
	}
	return true
}

// Encodable reports whether user-typed text can be converted into this
// attribute's type.
func (a KeyAttribute) Encodable() bool {
	switch a.Type {
	case "S", "N", "B":
		return true
	}
	return false
}
