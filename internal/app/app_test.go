package app

import (
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lazyddb/internal/config"
	"lazyddb/internal/dynamo"
	"lazyddb/internal/fetch"
	"lazyddb/internal/models"
)

func fakeCursor() dynamo.Cursor {
	return dynamo.Cursor{"id": &types.AttributeValueMemberN{Value: "99"}}
}

func newTestApp(t *testing.T) (*App, chan fetch.Request, chan fetch.Response) {
	t.Helper()
	requests := make(chan fetch.Request, 16)
	responses := make(chan fetch.Response, 16)
	a := New(config.GetDefaults(), "eu-west-1", requests, responses, nil)
	a.width = 120
	a.height = 40
	a.layout()
	return a, requests, responses
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func drainRequests(requests chan fetch.Request) []fetch.Request {
	var out []fetch.Request
	for {
		select {
		case req := <-requests:
			out = append(out, req)
		default:
			return out
		}
	}
}

func pageOfRecords(n int) []models.Record {
	records := make([]models.Record, n)
	for i := range records {
		records[i] = models.NewRecord(fmt.Sprintf(`{"id":%d}`, i))
	}
	return records
}

func TestTablesResponsePopulatesCollections(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users", "orders"}}})

	assert.False(t, a.loading)
	assert.Equal(t, 2, a.collections.Len())
}

func TestSelectingTableStartsScanSession(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"orders", "users"}}})

	a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ModeSelectingRecord, a.mode)
	assert.Equal(t, "orders", a.table)
	assert.Equal(t, uint64(1), a.generation)
	assert.True(t, a.loading)

	reqs := drainRequests(requests)
	require.Len(t, reqs, 3)
	scan, ok := reqs[0].(fetch.ScanPageRequest)
	require.True(t, ok)
	assert.Equal(t, "orders", scan.Table)
	assert.Equal(t, uint64(1), scan.Generation)
	assert.False(t, scan.Continuation)
	assert.IsType(t, fetch.CountRequest{}, reqs[1])
	assert.IsType(t, fetch.KeySchemaRequest{}, reqs[2])
}

func TestPageResponseFillsRecords(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)

	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:      "users",
		Generation: a.generation,
		Records:    pageOfRecords(10),
	}})

	assert.False(t, a.loading)
	assert.Equal(t, 10, a.records.RawLen())
	_, ok := a.records.SelectedRecord()
	assert.True(t, ok, "first row selected after the initial page")
}

func TestStaleGenerationDropped(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)

	// A re-scan retires the previous generation.
	a.Update(keyRune('r'))
	drainRequests(requests)
	require.Equal(t, uint64(2), a.generation)

	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:      "users",
		Generation: 1,
		Records:    pageOfRecords(10),
	}})
	assert.Zero(t, a.records.RawLen(), "stale page must not land")

	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:      "other",
		Generation: 2,
		Records:    pageOfRecords(10),
	}})
	assert.Zero(t, a.records.RawLen(), "page for another table must not land")
}

func TestLazyLoadDispatchNearEnd(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)

	cursor := fakeCursor()
	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:      "users",
		Generation: a.generation,
		Records:    pageOfRecords(100),
		Cursor:     cursor,
		HasMore:    true,
	}})
	require.Empty(t, drainRequests(requests), "selection at row 0 is nowhere near the end")

	// Jump to the end; remaining pages are wanted.
	a.Update(keyRune('G'))

	reqs := drainRequests(requests)
	require.Len(t, reqs, 1)
	scan, ok := reqs[0].(fetch.ScanPageRequest)
	require.True(t, ok)
	assert.True(t, scan.Continuation)
	assert.Equal(t, cursor, scan.Cursor)

	// While that request is outstanding, navigation sends nothing more.
	a.Update(keyRune('j'))
	a.Update(keyRune('k'))
	assert.Empty(t, drainRequests(requests))
}

func TestContinuationPageAppends(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)

	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:      "users",
		Generation: a.generation,
		Records:    pageOfRecords(100),
		Cursor:     fakeCursor(),
		HasMore:    true,
	}})
	a.Update(keyRune('G'))
	drainRequests(requests)

	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:        "users",
		Generation:   a.generation,
		Continuation: true,
		Records:      pageOfRecords(50),
	}})

	assert.Equal(t, 150, a.records.RawLen())
	assert.False(t, a.pager.HasMore(), "no cursor on the final page")

	// The selection made by G is preserved, not reset.
	i, ok := a.records.SelectedIndex()
	require.True(t, ok)
	assert.Equal(t, 99, i)
}

func TestFinalPageStopsLazyLoading(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)

	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:      "users",
		Generation: a.generation,
		Records:    pageOfRecords(20),
	}})

	a.Update(keyRune('G'))
	assert.Empty(t, drainRequests(requests), "complete dataset never refetches")
}

func TestQuerySubmitBumpsGeneration(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)

	a.Update(fetchMsg{resp: fetch.KeySchemaResponse{
		Table:  "users",
		Schema: models.KeySchema{Partition: &models.KeyAttribute{Name: "pk", Type: "S"}},
	}})

	a.Update(keyRune('s'))
	require.Equal(t, ModeQueryingRecords, a.mode)

	for _, r := range "user-1" {
		a.Update(keyRune(r))
	}
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, ModeSelectingRecord, a.mode)
	require.Equal(t, uint64(2), a.generation)

	reqs := drainRequests(requests)
	require.Len(t, reqs, 1)
	query, ok := reqs[0].(fetch.QueryRequest)
	require.True(t, ok)
	assert.Equal(t, "user-1", query.PartitionValue)
	assert.Nil(t, query.Sort)

	a.Update(fetchMsg{resp: fetch.QueryResponse{
		Table:      "users",
		Generation: 2,
		Records:    pageOfRecords(3),
	}})
	assert.Equal(t, 3, a.records.RawLen())
	assert.False(t, a.pager.HasMore(), "query results bypass pagination")
}

func TestQueryWithoutSchemaIsUnavailable(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)

	a.Update(keyRune('s'))
	assert.Equal(t, ModeSelectingRecord, a.mode)
}

func TestEscNavigatesBack(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)
	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:      "users",
		Generation: a.generation,
		Records:    pageOfRecords(5),
	}})

	// Into the detail view and back.
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeViewingDetail, a.mode)
	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Equal(t, ModeSelectingRecord, a.mode)

	// With a filter active, esc clears it first.
	a.Update(keyRune('/'))
	require.Equal(t, ModeFilteringRecords, a.mode)
	a.Update(keyRune('4'))
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, ModeSelectingRecord, a.mode)
	require.Equal(t, 1, a.records.Len())

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeSelectingRecord, a.mode)
	assert.Equal(t, 5, a.records.Len())

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, ModeSelectingCollection, a.mode)
}

func TestFilterNarrowsWithoutLosingData(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)
	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:      "users",
		Generation: a.generation,
		Records:    pageOfRecords(30),
	}})

	a.Update(keyRune('/'))
	a.Update(keyRune('2'))
	a.Update(keyRune('9'))

	assert.Equal(t, 1, a.records.Len())
	assert.Equal(t, 30, a.records.RawLen(), "raw buffer intact behind the filter")

	rec, ok := a.records.SelectedRecord()
	require.True(t, ok)
	assert.Equal(t, `{"id":29}`, rec.Raw)
}

func TestStartupTableAutoSelected(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.SetStartupTable("orders")

	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users", "orders"}}})

	assert.Equal(t, ModeSelectingRecord, a.mode)
	assert.Equal(t, "orders", a.table)

	reqs := drainRequests(requests)
	require.NotEmpty(t, reqs)
	scan, ok := reqs[0].(fetch.ScanPageRequest)
	require.True(t, ok)
	assert.Equal(t, "orders", scan.Table)

	// A later listing refresh must not re-trigger the selection.
	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users", "orders"}}})
	assert.Equal(t, ModeSelectingCollection, a.mode)
}

func TestStartupTableUnknownIsIgnored(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.SetStartupTable("missing")

	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})

	assert.Equal(t, ModeSelectingCollection, a.mode)
	assert.Empty(t, a.table)
	assert.Empty(t, drainRequests(requests))
}

func TestEmptyPageWithMoreKeepsFetching(t *testing.T) {
	a, requests, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})
	a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drainRequests(requests)

	// A page can legitimately carry zero items but a continuation cursor.
	// Nothing is selectable, so only the page-arrival check can keep the
	// scan moving.
	cursor := fakeCursor()
	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:      "users",
		Generation: a.generation,
		Records:    nil,
		Cursor:     cursor,
		HasMore:    true,
	}})

	reqs := drainRequests(requests)
	require.Len(t, reqs, 1)
	scan, ok := reqs[0].(fetch.ScanPageRequest)
	require.True(t, ok)
	assert.True(t, scan.Continuation)
	assert.Equal(t, cursor, scan.Cursor)

	// The final page ends the chase.
	a.Update(fetchMsg{resp: fetch.PageResponse{
		Table:        "users",
		Generation:   a.generation,
		Continuation: true,
		Records:      pageOfRecords(2),
	}})
	assert.Equal(t, 2, a.records.RawLen())
	assert.Empty(t, drainRequests(requests))
}

func TestStatusBarIsRuneSafe(t *testing.T) {
	a, _, _ := newTestApp(t)

	a.width = 10 // 6 usable cells after padding
	assert.Equal(t, "日本語", a.formatStatusBar("日本語テキスト", ""))

	a.width = 20
	out := a.formatStatusBar("ab", "cd")
	assert.Equal(t, "ab            cd", out)
}

func TestHelpOverlayToggles(t *testing.T) {
	a, _, _ := newTestApp(t)
	a.Update(fetchMsg{resp: fetch.TablesResponse{Tables: []string{"users"}}})

	a.Update(keyRune('?'))
	assert.True(t, a.showHelp)

	// Navigation is swallowed while help is up.
	a.Update(keyRune('j'))
	assert.True(t, a.showHelp)

	a.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, a.showHelp)
}
