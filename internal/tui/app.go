// Package tui is the terminal front end: a bubbletea program that renders
// the virtual result list and feeds input, timers and engine results through
// a finder.Controller.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pders01/mifind/internal/config"
	"github.com/pders01/mifind/internal/debuglog"
	"github.com/pders01/mifind/internal/finder"
	"github.com/pders01/mifind/internal/opener"
	"github.com/pders01/mifind/internal/search"
	"github.com/pders01/mifind/internal/storage"
)

// chromeLines is everything but the result rows: header, framed input,
// separator and status bar. The column header is counted separately.
const chromeLines = 6

// Deps wires an App. Store, Expander, Opener and Changes may be nil.
type Deps struct {
	Context  context.Context
	Config   *config.Config
	Store    *storage.Store
	Client   search.Client
	Expander finder.Expander
	Opener   *opener.Opener
	Changes  <-chan struct{}
	// Indexed is the number of indexed files shown on the empty screen,
	// or -1 when unknown.
	Indexed int
}

var _ finder.Presenter = (*App)(nil)

type App struct {
	config     *config.Config
	store      *storage.Store
	opener     *opener.Opener
	controller *finder.Controller
	keyHandler *KeyHandler

	input        textinput.Model
	helpViewport viewport.Model
	view         View

	ctx            context.Context
	changes        <-chan struct{}
	now            func() time.Time
	clipboardWrite func(string) error

	total      uint32
	cursor     int
	offset     int
	refreshGen uint64
	status     string
	title      string
	notice     string
	noticeKind StatusKind
	err        error
	recent     []string
	historyPos int
	indexed    int
	width      int
	height     int
	pending    []tea.Cmd
}

func NewApp(d Deps) *App {
	cfg := d.Config

	ti := textinput.New()
	ti.Placeholder = "Search file names..."
	ti.Prompt = "› "
	ti.Focus()

	ctx := d.Context
	if ctx == nil {
		ctx = context.Background()
	}

	app := &App{
		config:         cfg,
		store:          d.Store,
		opener:         d.Opener,
		input:          ti,
		helpViewport:   viewport.New(0, 0),
		view:           ViewSearch,
		ctx:            ctx,
		changes:        d.Changes,
		now:            time.Now,
		clipboardWrite: writeClipboard,
		historyPos:     -1,
		indexed:        d.Indexed,
	}
	app.controller = finder.New(d.Client, d.Expander, app, finder.Options{
		TextDelay:   cfg.Search.TextDebounce,
		ToggleDelay: cfg.Search.ToggleDebounce,
	})
	app.status = app.controller.Status()
	app.title = app.controller.Title()
	app.keyHandler = NewKeyHandler(app, cfg)
	app.restoreState()

	return app
}

// restoreState applies the default mode, then the remembered toggles and
// recent searches.
func (a *App) restoreState() {
	regex := a.config.Search.DefaultMode == config.ModeRegex
	migemo := a.config.Search.DefaultMode == config.ModeMigemo

	if a.store != nil {
		ui, err := a.store.GetUIState()
		if err != nil {
			debuglog.Warnf("tui: loading ui state: %v", err)
		} else {
			a.recent = ui.RecentTerms
			if a.config.Search.RememberModes && (ui.Regex || ui.Migemo) {
				regex, migemo = ui.Regex, ui.Migemo
			}
		}
	}
	a.controller.RestoreModes(regex, migemo)
}

// Controller exposes the search core.
func (a *App) Controller() *finder.Controller { return a.controller }

func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle(a.title),
		textinput.Blink,
		a.waitForChanges(),
	)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		inputWidth := msg.Width - 10
		if inputWidth < 10 {
			inputWidth = 10
		}
		a.input.Width = inputWidth
		a.helpViewport.Width = msg.Width
		a.helpViewport.Height = msg.Height - 2
		a.scrollIntoView()
		cmds = append(cmds, a.ensureVisible())
		if a.view == ViewHelp {
			cmds = append(cmds, a.renderHelpCmd())
		}

	case tea.KeyMsg:
		model, cmd := a.keyHandler.HandleKey(msg)
		return model, tea.Batch(cmd, a.flush())

	case fireMsg:
		cmds = append(cmds, a.submitCmd(a.controller.Fire(msg.seq)))

	case submitDoneMsg:
		res := msg.res
		if a.controller.ApplySubmit(res) && res.Err == nil {
			if res.Gen == a.refreshGen {
				a.clampCursor()
			} else {
				a.cursor, a.offset = 0, 0
				a.rememberTerm(res.State.Term)
				cmds = append(cmds, a.addRecentCmd(res.State.Term))
			}
			cmds = append(cmds, a.ensureVisible())
		}

	case pageLoadedMsg:
		// No refetch after a failed page: the next scroll or query retries.
		if a.controller.ApplyFetch(msg.res) {
			cmds = append(cmds, a.ensureVisible())
		}

	case indexChangedMsg:
		if _, pending := a.controller.Debouncer().Pending(); !pending {
			if req := a.controller.Refresh(); req != nil {
				a.refreshGen = req.Gen
				cmds = append(cmds, a.submitCmd(req))
			}
		}
		cmds = append(cmds, a.waitForChanges())

	case helpRenderedMsg:
		a.helpViewport.SetContent(msg.content)
		a.helpViewport.GotoTop()

	case statusMsg:
		a.notice = msg.text
		a.noticeKind = msg.kind
		a.err = nil

	case errorMsg:
		a.err = msg.err
		debuglog.Warnf("tui: %v", msg.err)

	default:
		input, cmd := a.input.Update(msg)
		a.input = input
		cmds = append(cmds, cmd)
	}

	cmds = append(cmds, a.flush())
	return a, tea.Batch(cmds...)
}

// flush hands over commands queued by Presenter callbacks.
func (a *App) flush() tea.Cmd {
	if len(a.pending) == 0 {
		return nil
	}
	cmds := a.pending
	a.pending = nil
	return tea.Batch(cmds...)
}

// TotalCountChanged implements finder.Presenter.
func (a *App) TotalCountChanged(total uint32) {
	a.total = total
	a.clampCursor()
}

// RowsInvalidated implements finder.Presenter. Rows are drawn from the page
// cache on every View, so there is nothing to mark.
func (a *App) RowsInvalidated(finder.RowRange) {}

// StatusTextChanged implements finder.Presenter.
func (a *App) StatusTextChanged(text string) {
	a.status = text
	a.notice = ""
}

// TitleChanged implements finder.Presenter.
func (a *App) TitleChanged(text string) {
	if text == a.title {
		return
	}
	a.title = text
	a.pending = append(a.pending, tea.SetWindowTitle(text))
}

func (a *App) setTerm(term string) tea.Cmd {
	a.clearNotice()
	return tickCmd(a.controller.SetTerm(term, a.now()))
}

func (a *App) clearNotice() {
	a.notice = ""
	a.err = nil
}

func (a *App) listHeight() int {
	h := a.height - chromeLines - 1
	if h < 1 {
		return 1
	}
	return h
}

func (a *App) moveCursor(delta int) tea.Cmd {
	if a.total == 0 {
		return nil
	}
	a.cursor += delta
	a.clampCursor()
	return a.ensureVisible()
}

func (a *App) clampCursor() {
	last := int(a.total) - 1
	if a.cursor > last {
		a.cursor = last
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
	a.scrollIntoView()
}

func (a *App) scrollIntoView() {
	h := a.listHeight()
	if a.cursor < a.offset {
		a.offset = a.cursor
	}
	if a.cursor >= a.offset+h {
		a.offset = a.cursor - h + 1
	}
	if maxOffset := int(a.total) - h; a.offset > maxOffset {
		a.offset = maxOffset
	}
	if a.offset < 0 {
		a.offset = 0
	}
}

// ensureVisible requests the pages behind the visible rows. Pages already
// cached or in flight produce no job.
func (a *App) ensureVisible() tea.Cmd {
	if a.total == 0 {
		return nil
	}
	var cmds []tea.Cmd
	end := a.offset + a.listHeight()
	if end > int(a.total) {
		end = int(a.total)
	}
	for i := a.offset; i < end; i++ {
		if _, job := a.controller.Row(uint32(i)); job != nil {
			cmds = append(cmds, a.fetchCmd(*job))
		}
	}
	return tea.Batch(cmds...)
}

func (a *App) selectedPath() (string, bool) {
	if a.total == 0 {
		return "", false
	}
	item := a.controller.Peek(uint32(a.cursor))
	if item == nil {
		return "", false
	}
	return item.Path(), true
}

func (a *App) nextRecent() (string, bool) {
	if len(a.recent) == 0 {
		return "", false
	}
	a.historyPos = (a.historyPos + 1) % len(a.recent)
	return a.recent[a.historyPos], true
}

// rememberTerm mirrors AddRecentTerm in memory. It is skipped while cycling
// so the positions stay stable.
func (a *App) rememberTerm(term string) {
	if a.historyPos >= 0 || term == "" {
		return
	}
	terms := []string{term}
	for _, t := range a.recent {
		if t != term {
			terms = append(terms, t)
		}
	}
	if len(terms) > storage.MaxRecentTerms {
		terms = terms[:storage.MaxRecentTerms]
	}
	a.recent = terms
}

func (a *App) View() string {
	if a.view == ViewHelp {
		return lipgloss.JoinVertical(lipgloss.Left,
			a.helpViewport.View(),
			renderSeparator(a.width),
			a.statusBar(),
		)
	}

	state := a.controller.State()
	header := renderSplit(LogoStyle.Render(CompactLogo), renderModes(state.Regex, state.Migemo), a.width)
	input := renderInputFrame(a.input.View(), true, a.width-4)

	var body string
	if a.total == 0 && state.Term == "" {
		body = renderCentered(a.width, a.listHeight()+1, GetWelcomeMessage(a.indexed))
	} else {
		cols := layoutColumns(a.width, a.config.UI.Columns)
		lines := []string{renderColumnHeader(cols)}
		end := a.offset + a.listHeight()
		if end > int(a.total) {
			end = int(a.total)
		}
		for i := a.offset; i < end; i++ {
			item := a.controller.Peek(uint32(i))
			lines = append(lines, renderRow(item, i == a.cursor, cols, a.config.UI.DateFormat))
		}
		body = padLines(lines, a.listHeight()+1)
	}

	return strings.Join([]string{header, input, body, renderSeparator(a.width), a.statusBar()}, "\n")
}

func (a *App) statusBar() string {
	text := a.status
	kind := statusKindFor(a.status)
	switch {
	case a.err != nil:
		text = "✗ " + a.err.Error()
		kind = StatusError
	case a.notice != "":
		text = a.notice
		kind = a.noticeKind
	}

	width := a.width - 2
	left := statusStyle(kind).Render(truncateEnd(text, width))
	right := renderMuted(strings.Join(a.keyHandler.GetHelpForCurrentView(), " • "))
	return StatusBarStyle.Render(renderSplit(left, right, width))
}

func statusKindFor(text string) StatusKind {
	if text == finder.StatusReady || strings.HasSuffix(text, " items found") {
		return StatusInfo
	}
	return StatusError
}
