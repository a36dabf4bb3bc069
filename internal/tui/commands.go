package tui

import (
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/mifind/internal/debuglog"
	"github.com/pders01/mifind/internal/finder"
	"github.com/pders01/mifind/internal/storage"
)

// tickCmd arms the timer for a debounce ticket.
func tickCmd(t finder.Ticket) tea.Cmd {
	seq := t.Seq
	return tea.Tick(t.Delay, func(time.Time) tea.Msg { return fireMsg{seq: seq} })
}

func (a *App) submitCmd(req *finder.SubmitRequest) tea.Cmd {
	if req == nil {
		return nil
	}
	r := *req
	ctx := a.ctx
	return func() tea.Msg {
		return submitDoneMsg{res: a.controller.Submit(ctx, r)}
	}
}

func (a *App) fetchCmd(job finder.FetchJob) tea.Cmd {
	ctx := a.ctx
	return func() tea.Msg {
		return pageLoadedMsg{res: a.controller.Fetch(ctx, job)}
	}
}

// waitForChanges blocks until the watcher reports applied changes.
func (a *App) waitForChanges() tea.Cmd {
	if a.changes == nil {
		return nil
	}
	ch := a.changes
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return indexChangedMsg{}
	}
}

func (a *App) openCmd(path string) tea.Cmd {
	if a.opener == nil {
		return notice(MsgNoOpener, StatusWarn)
	}
	o := a.opener
	return func() tea.Msg {
		if err := o.Open(path); err != nil {
			return errorMsg{err: wrapErr("open", err)}
		}
		return statusMsg{text: MsgOpened(path), kind: StatusSuccess}
	}
}

func (a *App) revealCmd(path string) tea.Cmd {
	if a.opener == nil {
		return notice(MsgNoOpener, StatusWarn)
	}
	o := a.opener
	return func() tea.Msg {
		if err := o.Reveal(path); err != nil {
			return errorMsg{err: wrapErr("reveal", err)}
		}
		return statusMsg{text: MsgRevealed(path), kind: StatusSuccess}
	}
}

func (a *App) copyCmd(path string) tea.Cmd {
	write := a.clipboardWrite
	return func() tea.Msg {
		if err := write(path); err != nil {
			return errorMsg{err: wrapErr("copy path", err)}
		}
		return statusMsg{text: MsgCopied(path), kind: StatusSuccess}
	}
}

// saveModesCmd persists the toggles, keeping the recent terms.
func (a *App) saveModesCmd() tea.Cmd {
	if a.store == nil || !a.config.Search.RememberModes {
		return nil
	}
	store := a.store
	state := a.controller.State()
	return func() tea.Msg {
		err := store.UpdateUIState(func(ui *storage.UIState) {
			ui.Regex = state.Regex
			ui.Migemo = state.Migemo
		})
		if err != nil {
			debuglog.Warnf("tui: saving ui state: %v", err)
		}
		return nil
	}
}

func (a *App) addRecentCmd(term string) tea.Cmd {
	if a.store == nil || term == "" {
		return nil
	}
	store := a.store
	return func() tea.Msg {
		if err := store.AddRecentTerm(term); err != nil {
			debuglog.Warnf("tui: saving recent term: %v", err)
		}
		return nil
	}
}

func (a *App) renderHelpCmd() tea.Cmd {
	width := a.width
	doc := a.helpMarkdown()
	return func() tea.Msg {
		r, err := newRenderer(width)
		if err != nil {
			return helpRenderedMsg{content: doc}
		}
		out, err := r.Render(doc)
		if err != nil {
			return helpRenderedMsg{content: doc}
		}
		return helpRenderedMsg{content: out}
	}
}

func notice(text string, kind StatusKind) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, kind: kind} }
}

func writeClipboard(text string) error {
	return clipboard.WriteAll(text)
}
