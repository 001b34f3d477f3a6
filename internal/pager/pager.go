// Package pager tracks the lazy-load state of the active collection session:
// whether more pages exist, whether a fetch is already in flight, and the
// opaque cursor the next page request must carry.
package pager

import "lazyddb/internal/dynamo"

// DefaultWindow is how close (in rows) the selection must get to the end of
// the raw buffer before the next page is fetched.
const DefaultWindow = 5

// Controller is the per-session pagination state machine. It enforces the
// at-most-one-in-flight invariant; the fetch worker only guarantees request
// ordering.
type Controller struct {
	window   int
	hasMore  bool
	inFlight bool
	cursor   dynamo.Cursor
}

// New returns a Controller with the given proximity window.
func New(window int) Controller {
	if window <= 0 {
		window = DefaultWindow
	}
	c := Controller{window: window}
	c.Reset()
	return c
}

// Reset prepares the controller for a fresh collection selection. has-more
// starts true (unknown) so the first page is always fetched.
func (c *Controller) Reset() {
	c.hasMore = true
	c.inFlight = false
	c.cursor = nil
}

// HasMore reports whether further pages may exist.
func (c *Controller) HasMore() bool { return c.hasMore }

// InFlight reports whether a fetch has been dispatched and not yet answered.
func (c *Controller) InFlight() bool { return c.inFlight }

// Cursor returns the stored resume point for the next page request.
func (c *Controller) Cursor() dynamo.Cursor { return c.cursor }

// MarkInFlight claims the single in-flight slot. It returns false if a
// fetch is already outstanding; callers must not dispatch in that case.
func (c *Controller) MarkInFlight() bool {
	if c.inFlight {
		return false
	}
	c.inFlight = true
	return true
}

// ClearInFlight releases the in-flight slot without applying a page, e.g.
// when a request was dropped on a full channel.
func (c *Controller) ClearInFlight() {
	c.inFlight = false
}

// ApplyPage records a page result: stores the next cursor verbatim, derives
// has-more from its presence, and releases the in-flight slot.
func (c *Controller) ApplyPage(cursor dynamo.Cursor) {
	c.cursor = cursor
	c.hasMore = len(cursor) > 0
	c.inFlight = false
}

// Exhaust marks the session as fully loaded. Query-mode results bypass
// pagination entirely.
func (c *Controller) Exhaust() {
	c.cursor = nil
	c.hasMore = false
	c.inFlight = false
}

// ShouldFetch reports whether a selection advance to index selected, with
// rawLen rows loaded, must trigger a lazy load. The proximity test is
// against the raw buffer, not the filtered view.
func (c *Controller) ShouldFetch(selected, rawLen int) bool {
	return c.hasMore && !c.inFlight && selected >= rawLen-c.window
}

// ShouldFetchAtEnd reports whether jumping to the last row must trigger a
// load: the user intends to reach the true end, which is not yet
// materialized while has-more holds.
func (c *Controller) ShouldFetchAtEnd() bool {
	return c.hasMore && !c.inFlight
}
