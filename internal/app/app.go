package app

import (
	"fmt"
	"slices"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"go.uber.org/zap"

	"lazyddb/internal/config"
	"lazyddb/internal/fetch"
	"lazyddb/internal/models"
	"lazyddb/internal/pager"
	"lazyddb/internal/ui/components"
	"lazyddb/internal/ui/help"
	"lazyddb/internal/ui/theme"
)

// Mode is the interactive state the key handler dispatches on.
type Mode int

const (
	ModeSelectingCollection Mode = iota
	ModeFilteringCollections
	ModeSelectingRecord
	ModeFilteringRecords
	ModeQueryingRecords
	ModeViewingDetail
)

// App is the main application model. All store access goes through the
// request/response channel pair; Update never blocks on the network.
type App struct {
	cfg    *config.Config
	theme  theme.Theme
	log    *zap.Logger
	region string

	requests  chan<- fetch.Request
	responses <-chan fetch.Response

	mode     Mode
	showHelp bool
	width    int
	height   int

	collections *components.CollectionsView
	records     *components.RecordsView
	queryForm   *components.QueryForm
	detail      *components.DetailView

	loading        bool
	loadingMessage string

	// Table to open as soon as the listing arrives (--table flag).
	startupTable string

	// Per-table session. Generation increments whenever the dataset is
	// restarted (table switch, re-scan, query) so late responses from the
	// previous dataset can be recognized and dropped.
	table       string
	generation  uint64
	pager       pager.Controller
	schema      models.KeySchema
	schemaKnown bool
}

// fetchMsg delivers one worker response into the update loop.
type fetchMsg struct {
	resp fetch.Response
}

// New creates the application model.
func New(cfg *config.Config, region string, requests chan<- fetch.Request, responses <-chan fetch.Response, log *zap.Logger) *App {
	if log == nil {
		log = zap.NewNop()
	}
	th := theme.GetTheme(cfg.UI.Theme)

	return &App{
		cfg:         cfg,
		theme:       th,
		log:         log,
		region:      region,
		requests:    requests,
		responses:   responses,
		mode:        ModeSelectingCollection,
		collections: components.NewCollectionsView(th),
		records:     components.NewRecordsView(th),
		queryForm:   components.NewQueryForm(th),
		detail:      components.NewDetailView(th),
		pager:       pager.New(cfg.Data.LazyLoadWindow),
	}
}

// SetStartupTable makes the app open the named table as soon as the table
// listing arrives. Must be called before the program starts.
func (a *App) SetStartupTable(name string) {
	a.startupTable = name
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	a.loading = true
	a.loadingMessage = "Loading tables..."
	a.collections.Focused = true
	fetch.TrySend(a.requests, fetch.ListTablesRequest{})
	return a.awaitFetch()
}

// awaitFetch blocks on the response channel inside a command, keeping the
// update loop itself non-blocking.
func (a *App) awaitFetch() tea.Cmd {
	return func() tea.Msg {
		resp, ok := <-a.responses
		if !ok {
			return nil
		}
		return fetchMsg{resp: resp}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		return a, nil

	case fetchMsg:
		a.apply(msg.resp)
		// Drain whatever else the worker buffered before re-arming, so a
		// burst of responses lands in a single frame.
	drain:
		for {
			select {
			case resp, ok := <-a.responses:
				if !ok {
					break drain
				}
				a.apply(resp)
			default:
				break drain
			}
		}
		return a, a.awaitFetch()

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

// apply folds one worker response into the model. Responses tagged with a
// stale table or generation are dropped.
func (a *App) apply(resp fetch.Response) {
	switch resp := resp.(type) {
	case fetch.TablesResponse:
		a.collections.SetCollections(resp.Tables)
		a.loading = false
		if a.startupTable != "" {
			name := a.startupTable
			a.startupTable = ""
			if slices.Contains(resp.Tables, name) {
				a.selectTable(name)
			} else {
				a.log.Warn("startup table not found", zap.String("table", name))
			}
		}

	case fetch.PageResponse:
		if resp.Table != a.table || resp.Generation != a.generation {
			a.log.Debug("dropping stale page",
				zap.String("table", resp.Table),
				zap.Uint64("generation", resp.Generation))
			return
		}
		a.pager.ApplyPage(resp.Cursor)
		if resp.Continuation {
			a.records.Append(resp.Records)
		} else {
			a.records.Replace(resp.Records)
		}
		a.loading = false
		// The selection can still sit inside the lazy-load window after a
		// page lands, e.g. when a filter thins the view out.
		a.maybeFetchNext()

	case fetch.CountResponse:
		if resp.Table == a.table {
			a.records.SetApproximateCount(resp.Count)
		}

	case fetch.KeySchemaResponse:
		if resp.Table == a.table {
			a.schema = resp.Schema
			a.schemaKnown = true
		}

	case fetch.QueryResponse:
		if resp.Table != a.table || resp.Generation != a.generation {
			return
		}
		a.pager.Exhaust()
		a.records.Replace(resp.Records)
		a.loading = false
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.showHelp {
		switch key {
		case "?", "esc", "q":
			a.showHelp = false
		}
		return a, nil
	}

	switch a.mode {
	case ModeSelectingCollection:
		return a.handleCollectionKeys(key)
	case ModeFilteringCollections:
		return a.handleCollectionFilterKeys(msg)
	case ModeSelectingRecord:
		return a.handleRecordKeys(key)
	case ModeFilteringRecords:
		return a.handleRecordFilterKeys(msg)
	case ModeQueryingRecords:
		return a.handleQueryKeys(msg)
	case ModeViewingDetail:
		return a.handleDetailKeys(key)
	}
	return a, nil
}

func (a *App) handleCollectionKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
	case "j", "down":
		a.collections.Next()
	case "k", "up":
		a.collections.Previous()
	case "g":
		a.collections.First()
	case "G":
		a.collections.Last()
	case "ctrl+d":
		a.collections.ScrollDown(a.cfg.Data.ScrollStep)
	case "ctrl+u":
		a.collections.ScrollUp(a.cfg.Data.ScrollStep)
	case "/":
		a.mode = ModeFilteringCollections
		a.collections.Filtering = true
		a.collections.Input.Focus()
	case "esc":
		a.collections.ResetFilter()
	case "r":
		a.loading = true
		a.loadingMessage = "Loading tables..."
		fetch.TrySend(a.requests, fetch.ListTablesRequest{})
	case "enter":
		if name, ok := a.collections.SelectedName(); ok {
			a.selectTable(name)
		}
	}
	return a, nil
}

func (a *App) handleCollectionFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.collections.ResetFilter()
		a.leaveCollectionFilter()
	case "enter":
		a.leaveCollectionFilter()
	default:
		return a, a.collections.UpdateInput(msg)
	}
	return a, nil
}

func (a *App) leaveCollectionFilter() {
	a.mode = ModeSelectingCollection
	a.collections.Filtering = false
	a.collections.Input.Blur()
}

func (a *App) handleRecordKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
	case "j", "down":
		a.records.Next()
		a.maybeFetchNext()
	case "k", "up":
		a.records.Previous()
	case "g":
		a.records.First()
	case "G":
		a.records.Last()
		a.maybeFetchAtEnd()
	case "ctrl+d":
		a.records.ScrollDown(a.cfg.Data.ScrollStep)
		a.maybeFetchNext()
	case "ctrl+u":
		a.records.ScrollUp(a.cfg.Data.ScrollStep)
	case "/":
		a.mode = ModeFilteringRecords
		a.records.Filtering = true
		a.records.Input.Focus()
	case "s":
		if a.schemaKnown {
			a.queryForm.SetSchema(a.schema)
			a.mode = ModeQueryingRecords
		}
	case "r":
		a.selectTable(a.table)
	case "y":
		if rec, ok := a.records.SelectedRecord(); ok {
			a.copyToClipboard(rec.Raw)
		}
	case "enter":
		if rec, ok := a.records.SelectedRecord(); ok {
			a.detail.SetRecord(rec)
			a.mode = ModeViewingDetail
		}
	case "esc":
		if a.records.Input.Value() != "" {
			a.records.ResetFilter()
		} else {
			a.mode = ModeSelectingCollection
			a.collections.Focused = true
			a.records.Focused = false
		}
	}
	return a, nil
}

func (a *App) handleRecordFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.records.ResetFilter()
		a.leaveRecordFilter()
	case "enter":
		a.leaveRecordFilter()
	default:
		cmd := a.records.UpdateInput(msg)
		a.maybeFetchNext()
		return a, cmd
	}
	return a, nil
}

func (a *App) leaveRecordFilter() {
	a.mode = ModeSelectingRecord
	a.records.Filtering = false
	a.records.Input.Blur()
}

func (a *App) handleQueryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.mode = ModeSelectingRecord
	case "tab":
		a.queryForm.ToggleFocus()
	case "enter":
		a.submitQuery()
	default:
		return a, a.queryForm.Update(msg)
	}
	return a, nil
}

func (a *App) handleDetailKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.showHelp = true
	case "j", "down":
		a.detail.Next()
	case "k", "up":
		a.detail.Previous()
	case "g":
		a.detail.First()
	case "G":
		a.detail.Last()
	case "ctrl+d":
		a.detail.ScrollDown(a.cfg.Data.ScrollStep)
	case "ctrl+u":
		a.detail.ScrollUp(a.cfg.Data.ScrollStep)
	case "enter":
		a.detail.Toggle()
	case "y":
		if rec, ok := a.records.SelectedRecord(); ok {
			a.copyToClipboard(rec.Raw)
		}
	case "esc":
		a.mode = ModeSelectingRecord
	}
	return a, nil
}

// selectTable starts a fresh scan session for a table. Everything from the
// previous session is reset and its generation retired.
func (a *App) selectTable(name string) {
	a.table = name
	a.generation++
	a.pager.Reset()
	a.schema = models.KeySchema{}
	a.schemaKnown = false
	a.records.Clear()
	a.records.Title = name

	a.loading = true
	a.loadingMessage = fmt.Sprintf("Scanning %s...", name)

	if a.pager.MarkInFlight() {
		if !fetch.TrySend(a.requests, fetch.ScanPageRequest{Table: name, Generation: a.generation}) {
			a.pager.ClearInFlight()
			a.loading = false
		}
	}
	fetch.TrySend(a.requests, fetch.CountRequest{Table: name})
	fetch.TrySend(a.requests, fetch.KeySchemaRequest{Table: name})

	a.mode = ModeSelectingRecord
	a.collections.Focused = false
	a.records.Focused = true
}

// maybeFetchNext requests the next page when the selection is close enough
// to the end of the raw buffer. At most one page request is ever in flight.
// With nothing selected the check runs as if row zero were selected, so a
// page of zero items with a continuation cursor keeps pulling instead of
// stranding the session with no selection to advance.
func (a *App) maybeFetchNext() {
	selected, ok := a.records.SelectedIndex()
	if !ok {
		selected = 0
	}
	if !a.pager.ShouldFetch(selected, a.records.RawLen()) {
		return
	}
	a.dispatchContinuation()
}

// maybeFetchAtEnd covers a jump-to-last: the selection is as deep as it can
// get, so any remaining pages are wanted regardless of the proximity window.
func (a *App) maybeFetchAtEnd() {
	if !a.pager.ShouldFetchAtEnd() {
		return
	}
	a.dispatchContinuation()
}

func (a *App) dispatchContinuation() {
	if !a.pager.MarkInFlight() {
		return
	}
	req := fetch.ScanPageRequest{
		Table:        a.table,
		Generation:   a.generation,
		Cursor:       a.pager.Cursor(),
		Continuation: true,
	}
	if !fetch.TrySend(a.requests, req) {
		// Give the request back; the next navigation step retries.
		a.pager.ClearInFlight()
		a.log.Debug("request channel full, deferring page fetch",
			zap.String("table", a.table))
		return
	}
	a.loading = true
	a.loadingMessage = "Loading More Data..."
}

func (a *App) submitQuery() {
	if !a.queryForm.Supported() {
		return
	}
	schema := a.queryForm.Schema()
	if schema.Partition == nil {
		return
	}
	partitionValue, sortValue := a.queryForm.Values()
	if partitionValue == "" {
		return
	}

	a.generation++
	req := fetch.QueryRequest{
		Table:          a.table,
		Generation:     a.generation,
		Partition:      *schema.Partition,
		PartitionValue: partitionValue,
	}
	if schema.Sort != nil && sortValue != "" {
		req.Sort = schema.Sort
		req.SortValue = sortValue
	}

	if fetch.TrySend(a.requests, req) {
		a.loading = true
		a.loadingMessage = fmt.Sprintf("Querying %s...", a.table)
		a.mode = ModeSelectingRecord
	}
}

func (a *App) copyToClipboard(text string) {
	if err := clipboard.WriteAll(text); err != nil {
		a.log.Warn("clipboard write failed", zap.Error(err))
	}
}

// View implements tea.Model
func (a *App) View() string {
	if a.width <= 0 || a.height <= 0 {
		return ""
	}

	if a.showHelp {
		return help.Render(a.width, a.height)
	}

	base := a.renderMain()

	if a.mode == ModeQueryingRecords {
		a.queryForm.Width = a.width / 2
		return a.placeOverlay(a.queryForm.View())
	}
	if a.loading {
		overlay := components.Loading{Theme: a.theme, Width: a.width / 3, Message: a.loadingMessage}
		return a.placeOverlay(overlay.View())
	}
	return base
}

func (a *App) renderMain() string {
	topBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.BorderFocused).
		Foreground(lipgloss.Color("230")).
		Padding(0, 2).
		Render(a.formatStatusBar("lazyddb", a.region))

	bottomBar := lipgloss.NewStyle().
		Width(a.width).
		Background(a.theme.Selection).
		Foreground(a.theme.Foreground).
		Padding(0, 2).
		Render(a.formatStatusBar(a.keyHints(), "? Help"))

	var body string
	if a.mode == ModeViewingDetail {
		a.detail.Width = a.width - 2
		a.detail.Height = a.height - 2
		body = a.detail.View()
	} else {
		body = lipgloss.JoinHorizontal(
			lipgloss.Top,
			a.collections.View(),
			a.records.View(),
		)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		topBar,
		body,
		bottomBar,
	)
}

// keyHints picks the bottom-bar summary for the active mode.
func (a *App) keyHints() string {
	switch a.mode {
	case ModeSelectingCollection:
		return "[enter] Open | [/] Filter | [q] Quit"
	case ModeFilteringCollections, ModeFilteringRecords:
		return "[enter] Apply | [esc] Clear"
	case ModeSelectingRecord:
		return "[enter] Detail | [/] Filter | [s] Query | [r] Re-scan | [y] Copy"
	case ModeQueryingRecords:
		return "[enter] Run | [tab] Field | [esc] Cancel"
	case ModeViewingDetail:
		return "[enter] Expand/Collapse | [y] Copy | [esc] Back"
	}
	return "[q] Quit"
}

func (a *App) placeOverlay(overlay string) string {
	return lipgloss.Place(
		a.width, a.height,
		lipgloss.Center, lipgloss.Center,
		overlay,
	)
}

// layout distributes the window between the two panels, reserving one line
// each for the top and bottom bars.
func (a *App) layout() {
	contentHeight := a.height - 2
	if contentHeight < 5 {
		contentHeight = 5
	}

	leftWidth := a.width * 30 / 100
	if leftWidth < 20 {
		leftWidth = 20
	}
	rightWidth := a.width - leftWidth
	if rightWidth < 20 {
		rightWidth = 20
	}

	a.collections.Width = leftWidth
	a.collections.Height = contentHeight
	a.records.Width = rightWidth
	a.records.Height = contentHeight
}

// formatStatusBar formats a status bar with left and right aligned content.
// Widths are display-cell widths, so multibyte content never gets split.
func (a *App) formatStatusBar(left, right string) string {
	availableWidth := a.width - 4
	if availableWidth < 0 {
		availableWidth = 0
	}

	leftWidth := runewidth.StringWidth(left)
	rightWidth := runewidth.StringWidth(right)

	if leftWidth+rightWidth > availableWidth {
		if availableWidth > rightWidth {
			return runewidth.Truncate(left, availableWidth-rightWidth, "") + right
		}
		return runewidth.Truncate(left, availableWidth, "")
	}

	spacing := availableWidth - leftWidth - rightWidth
	return left + strings.Repeat(" ", spacing) + right
}
