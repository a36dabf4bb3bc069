package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/pders01/mifind/internal/config"
)

// keyMap holds the resolved key strings for the configured bindings.
type keyMap struct {
	quit         string
	toggleRegex  string
	toggleMigemo string
	open         string
	reveal       string
	copyPath     string
	clear        string
	help         string
	history      string
}

func resolveKeys(k config.KeyConfig) keyMap {
	b := k.Bindings
	return keyMap{
		quit:         k.Key(b.Quit),
		toggleRegex:  k.Key(b.ToggleRegex),
		toggleMigemo: k.Key(b.ToggleMigemo),
		open:         k.Key(b.Open),
		reveal:       k.Key(b.Reveal),
		copyPath:     k.Key(b.CopyPath),
		clear:        k.Key(b.Clear),
		help:         k.Key(b.Help),
		history:      k.Key(b.History),
	}
}

type KeyHandler struct {
	app         *App
	config      *config.Config
	modifierKey string
	keys        keyMap
}

func NewKeyHandler(app *App, cfg *config.Config) *KeyHandler {
	modifierKey := cfg.Keys.Modifier + "+"
	return &KeyHandler{app: app, config: cfg, modifierKey: modifierKey, keys: resolveKeys(cfg.Keys)}
}

func (kh *KeyHandler) HandleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return kh.app, tea.Quit
	}

	if kh.app.view == ViewHelp {
		return kh.handleHelpKey(msg)
	}

	if model, cmd, handled := kh.handleCustomKeys(key); handled {
		return model, cmd
	}

	return kh.delegateToTextInput(msg)
}

func (kh *KeyHandler) handleHelpKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", kh.keys.help, kh.keys.quit:
		kh.app.view = ViewSearch
		return kh.app, nil
	}
	vp, cmd := kh.app.helpViewport.Update(msg)
	kh.app.helpViewport = vp
	return kh.app, cmd
}

func (kh *KeyHandler) handleCustomKeys(key string) (tea.Model, tea.Cmd, bool) {
	a := kh.app

	switch key {
	case kh.keys.quit:
		return a, tea.Quit, true

	case kh.keys.toggleRegex:
		ticket := a.controller.ToggleRegex(a.now())
		a.clearNotice()
		return a, tea.Batch(tickCmd(ticket), a.saveModesCmd()), true

	case kh.keys.toggleMigemo:
		ticket := a.controller.ToggleMigemo(a.now())
		a.clearNotice()
		return a, tea.Batch(tickCmd(ticket), a.saveModesCmd()), true

	case kh.keys.open:
		if path, ok := a.selectedPath(); ok {
			return a, a.openCmd(path), true
		}
		return a, notice(MsgNoSelection, StatusWarn), true

	case kh.keys.reveal:
		if path, ok := a.selectedPath(); ok {
			return a, a.revealCmd(path), true
		}
		return a, notice(MsgNoSelection, StatusWarn), true

	case kh.keys.copyPath:
		if path, ok := a.selectedPath(); ok {
			return a, a.copyCmd(path), true
		}
		return a, notice(MsgNoSelection, StatusWarn), true

	case kh.keys.clear:
		if a.input.Value() == "" {
			return a, nil, true
		}
		a.input.SetValue("")
		a.historyPos = -1
		return a, a.setTerm(""), true

	case kh.keys.history:
		term, ok := a.nextRecent()
		if !ok {
			return a, notice(MsgNoHistory, StatusInfo), true
		}
		a.input.SetValue(term)
		a.input.CursorEnd()
		return a, a.setTerm(term), true

	case kh.keys.help:
		a.view = ViewHelp
		return a, a.renderHelpCmd(), true

	case "up":
		return a, a.moveCursor(-1), true
	case "down":
		return a, a.moveCursor(1), true
	case "pgup":
		return a, a.moveCursor(-a.listHeight()), true
	case "pgdown":
		return a, a.moveCursor(a.listHeight()), true
	}

	return a, nil, false
}

// delegateToTextInput passes the key to the query input and schedules a
// search when the text changed.
func (kh *KeyHandler) delegateToTextInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a := kh.app
	prev := a.input.Value()
	input, cmd := a.input.Update(msg)
	a.input = input
	if value := a.input.Value(); value != prev {
		a.historyPos = -1
		return a, tea.Batch(cmd, a.setTerm(value))
	}
	return a, cmd
}

// GetHelpForCurrentView returns the short key hints for the status bar.
func (kh *KeyHandler) GetHelpForCurrentView() []string {
	if kh.app.view == ViewHelp {
		return []string{"↑↓: scroll", "esc: back"}
	}
	return []string{
		kh.keys.toggleRegex + ": RE",
		kh.keys.toggleMigemo + ": Mi",
		kh.keys.open + ": open",
		kh.keys.help + ": help",
	}
}
