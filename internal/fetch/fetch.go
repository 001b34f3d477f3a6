// Package fetch decouples the interactive loop from blocking store calls.
// The loop submits typed requests on a bounded channel and drains typed
// responses from another; a single worker goroutine owns the store client in
// between. Requests are processed strictly in arrival order.
package fetch

import (
	"lazyddb/internal/dynamo"
	"lazyddb/internal/models"
)

// Request is a typed fetch request. Scan and query requests carry the table
// name and a session generation so stale responses can be recognized and
// dropped after the user switches collections mid-fetch.
type Request interface{ isRequest() }

// ListTablesRequest asks for the complete collection listing.
type ListTablesRequest struct{}

// ScanPageRequest asks for one bounded page of a table scan. Continuation
// distinguishes lazy-load pages from the first page of a fresh selection.
type ScanPageRequest struct {
	Table        string
	Generation   uint64
	Cursor       dynamo.Cursor
	Continuation bool
}

// CountRequest asks for the approximate item count of a table.
type CountRequest struct {
	Table string
}

// KeySchemaRequest asks for a table's partition/sort key attributes.
type KeySchemaRequest struct {
	Table string
}

// QueryRequest asks for an equality key lookup. Sort is nil for a
// partition-key-only query.
type QueryRequest struct {
	Table          string
	Generation     uint64
	Partition      models.KeyAttribute
	PartitionValue string
	Sort           *models.KeyAttribute
	SortValue      string
}

func (ListTablesRequest) isRequest() {}
func (ScanPageRequest) isRequest()   {}
func (CountRequest) isRequest()      {}
func (KeySchemaRequest) isRequest()  {}
func (QueryRequest) isRequest()      {}

// Response is a typed fetch result. Store-communication failures never
// surface here; the worker logs them and collapses the payload to its empty
// value, so the UI degrades to "no data" instead of crashing.
type Response interface{ isResponse() }

// TablesResponse carries the full collection listing.
type TablesResponse struct {
	Tables []string
}

// PageResponse carries one page of scan results plus the continuation state.
type PageResponse struct {
	Table        string
	Generation   uint64
	Continuation bool
	Records      []models.Record
	Cursor       dynamo.Cursor
	HasMore      bool
}

// CountResponse carries the approximate item count.
type CountResponse struct {
	Table string
	Count int64
}

// KeySchemaResponse carries the discovered key schema. A zero schema means
// discovery failed or the table definition is unsupported.
type KeySchemaResponse struct {
	Table  string
	Schema models.KeySchema
}

// QueryResponse carries the complete result of a key lookup.
type QueryResponse struct {
	Table      string
	Generation uint64
	Records    []models.Record
}

func (TablesResponse) isResponse()    {}
func (PageResponse) isResponse()      {}
func (CountResponse) isResponse()     {}
func (KeySchemaResponse) isResponse() {}
func (QueryResponse) isResponse()     {}

// TrySend submits a request without blocking. A full channel drops the
// request; the pagination controller's in-flight flag prevents redundant
// submissions under normal operation, and callers clear it on a drop so a
// later selection advance can retry.
func TrySend(ch chan<- Request, req Request) bool {
	select {
	case ch <- req:
		return true
	default:
		return false
	}
}
