package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/rangepick/internal/calendar"
	"github.com/jask/rangepick/internal/dateadapter"
	"github.com/jask/rangepick/internal/picker"
	"github.com/jask/rangepick/internal/popup"
	"github.com/jask/rangepick/internal/presets"
	"github.com/jask/rangepick/internal/theme"
)

// App hosts one picker next to a filterable list of presets.
type App struct {
	ctx     context.Context
	adapter *dateadapter.Adapter
	store   *presets.Store
	picker  *picker.Picker
	styles  theme.Styles
	keys    KeyMap

	builtins []presets.Preset
	saved    []presets.Preset
	visible  []presets.Preset
	cursor   int
	filter   textinput.Model
	name     textinput.Model

	pane          pane
	status        string
	applied       string
	width, height int
}

type pane string

const (
	panePicker  pane = "picker"
	panePresets pane = "presets"
	paneSave    pane = "save"
)

var errNoRange = errors.New("pick a complete range before saving")

type presetsMsg []presets.Preset
type savedMsg presets.Preset
type errMsg struct{ err error }

// KeyMap holds the app-level bindings. Keys not listed here go to the
// focused pane.
type KeyMap struct {
	Quit    key.Binding
	Exit    key.Binding
	Presets key.Binding
	Save    key.Binding
	Up      key.Binding
	Down    key.Binding
	Apply   key.Binding
	Delete  key.Binding
	Cancel  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
		Exit:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "done")),
		Presets: key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "presets")),
		Save:    key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save range")),
		Up:      key.NewBinding(key.WithKeys("up", "ctrl+k")),
		Down:    key.NewBinding(key.WithKeys("down", "ctrl+j")),
		Apply:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "apply")),
		Delete:  key.NewBinding(key.WithKeys("ctrl+d"), key.WithHelp("ctrl+d", "delete")),
		Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	}
}

type Option func(*App)

// WithCursorMode sets the caret mode of the filter and name inputs.
func WithCursorMode(mode cursor.Mode) Option {
	return func(a *App) {
		a.filter.Cursor.SetMode(mode)
		a.name.Cursor.SetMode(mode)
	}
}

func WithStyles(s theme.Styles) Option { return func(a *App) { a.styles = s } }

// New builds the app. store may be nil, in which case only the built-in
// presets are offered and saving is disabled.
func New(ctx context.Context, adapter *dateadapter.Adapter, store *presets.Store, p *picker.Picker, opts ...Option) *App {
	filter := textinput.New()
	filter.Prompt = "/ "
	filter.Placeholder = "filter presets"
	name := textinput.New()
	name.Prompt = "name: "
	name.CharLimit = 40

	a := &App{
		ctx:      ctx,
		adapter:  adapter,
		store:    store,
		picker:   p,
		styles:   theme.Default(),
		keys:     DefaultKeyMap(),
		builtins: presets.Builtins(adapter),
		filter:   filter,
		name:     name,
		pane:     panePicker,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.refilter()
	return a
}

// Selection returns the picker's current range as text.
func (a *App) Selection() string {
	return a.picker.Input().Format(a.picker.Value())
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.picker.Init(), a.loadPresets())
}

func (a *App) loadPresets() tea.Cmd {
	return func() tea.Msg {
		if a.store == nil {
			return presetsMsg(nil)
		}
		list, err := a.store.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return presetsMsg(list)
	}
}

func (a *App) savePreset(name string) tea.Cmd {
	sel := a.picker.Value()
	return func() tea.Msg {
		if sel.From == nil || sel.To == nil {
			return errMsg{errNoRange}
		}
		p, err := a.store.Save(a.ctx, presets.Preset{Name: name, From: *sel.From, To: *sel.To})
		if err != nil {
			return errMsg{err}
		}
		return savedMsg(p)
	}
}

func (a *App) touchPreset(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.store.Touch(a.ctx, id, time.Now()); err != nil {
			return errMsg{err}
		}
		return a.loadPresets()()
	}
}

func (a *App) deletePreset(id string) tea.Cmd {
	return func() tea.Msg {
		if err := a.store.Delete(a.ctx, id); err != nil {
			return errMsg{err}
		}
		return a.loadPresets()()
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		_, cmd := a.picker.Update(m)
		return a, cmd
	case presetsMsg:
		a.saved = m
		a.refilter()
		return a, nil
	case savedMsg:
		a.status = fmt.Sprintf("Saved %q", m.Name)
		a.pane = panePicker
		a.name.Blur()
		return a, tea.Batch(a.loadPresets(), a.picker.Focus())
	case errMsg:
		a.status = "Error: " + m.err.Error()
		return a, nil
	case picker.ChangedMsg:
		text := a.picker.Input().Format(m.Selection)
		a.status = "Range: " + text
		if a.applied != "" {
			a.status = fmt.Sprintf("Applied %q: %s", a.applied, text)
			a.applied = ""
		}
		return a, nil
	case popup.OpenedMsg, popup.ClosedMsg, calendar.PickedMsg:
		_, cmd := a.picker.Update(m)
		return a, cmd
	case tea.KeyMsg:
		if key.Matches(m, a.keys.Quit) {
			return a, tea.Quit
		}
		switch a.pane {
		case panePresets:
			return a, a.handlePresetsKey(m)
		case paneSave:
			return a, a.handleSaveKey(m)
		default:
			return a, a.handlePickerKey(m)
		}
	}

	// Cursor blinks and other internal messages go to every input; each
	// one ignores what is not addressed to it.
	cmds := make([]tea.Cmd, 0, 2)
	_, cmd := a.picker.Update(msg)
	cmds = append(cmds, cmd)
	switch a.pane {
	case panePresets:
		a.filter, cmd = a.filter.Update(msg)
		cmds = append(cmds, cmd)
	case paneSave:
		a.name, cmd = a.name.Update(msg)
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

func (a *App) handlePickerKey(m tea.KeyMsg) tea.Cmd {
	if !a.picker.Popup().IsOpen() {
		switch {
		case key.Matches(m, a.keys.Exit):
			return tea.Quit
		case key.Matches(m, a.keys.Presets):
			a.picker.Blur()
			a.pane = panePresets
			a.filter.SetValue("")
			a.cursor = 0
			a.refilter()
			return a.filter.Focus()
		case key.Matches(m, a.keys.Save):
			if a.store == nil {
				a.status = "Saving needs a database"
				return nil
			}
			a.picker.Blur()
			a.pane = paneSave
			a.name.SetValue("")
			return a.name.Focus()
		}
	}
	_, cmd := a.picker.Update(m)
	return cmd
}

func (a *App) handlePresetsKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Cancel), key.Matches(m, a.keys.Presets):
		return a.backToPicker()
	case key.Matches(m, a.keys.Up):
		if a.cursor > 0 {
			a.cursor--
		}
		return nil
	case key.Matches(m, a.keys.Down):
		if a.cursor < len(a.visible)-1 {
			a.cursor++
		}
		return nil
	case key.Matches(m, a.keys.Apply):
		if len(a.visible) == 0 {
			return nil
		}
		return a.apply(a.visible[a.cursor])
	case key.Matches(m, a.keys.Delete):
		if len(a.visible) == 0 || a.store == nil {
			return nil
		}
		p := a.visible[a.cursor]
		if p.Builtin {
			a.status = "Built-in presets cannot be deleted"
			return nil
		}
		a.status = fmt.Sprintf("Deleted %q", p.Name)
		return a.deletePreset(p.ID)
	}
	var cmd tea.Cmd
	a.filter, cmd = a.filter.Update(m)
	a.refilter()
	return cmd
}

func (a *App) handleSaveKey(m tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(m, a.keys.Cancel):
		a.name.Blur()
		return a.backToPicker()
	case key.Matches(m, a.keys.Apply):
		name := strings.TrimSpace(a.name.Value())
		if name == "" {
			a.status = "Error: " + presets.ErrEmptyName.Error()
			return nil
		}
		return a.savePreset(name)
	}
	var cmd tea.Cmd
	a.name, cmd = a.name.Update(m)
	return cmd
}

func (a *App) backToPicker() tea.Cmd {
	a.filter.Blur()
	a.pane = panePicker
	return a.picker.Focus()
}

// apply writes p into the picker. The status is set when the picker's
// change message comes back.
func (a *App) apply(p presets.Preset) tea.Cmd {
	a.applied = p.Name
	cmds := []tea.Cmd{a.picker.SetValue(p.Selection()), a.backToPicker()}
	if !p.Builtin && a.store != nil {
		cmds = append(cmds, a.touchPreset(p.ID))
	}
	return tea.Batch(cmds...)
}

func (a *App) refilter() {
	all := make([]presets.Preset, 0, len(a.saved)+len(a.builtins))
	all = append(all, a.saved...)
	all = append(all, a.builtins...)
	a.visible = presets.Match(all, a.filter.Value())
	if a.cursor >= len(a.visible) {
		a.cursor = max(0, len(a.visible)-1)
	}
}

func (a *App) View() string {
	var b strings.Builder
	b.WriteString(a.styles.Header.Render("Date range"))
	b.WriteString("\n")
	b.WriteString(a.picker.View())
	b.WriteString("\n\n")

	switch a.pane {
	case paneSave:
		b.WriteString(a.styles.Header.Render("Save current range"))
		b.WriteString("\n")
		b.WriteString(a.name.View())
		b.WriteString("\n")
	default:
		b.WriteString(a.presetsView())
	}

	if a.status != "" {
		b.WriteString("\n")
		style := a.styles.Hint
		if strings.HasPrefix(a.status, "Error:") {
			style = a.styles.Error
		}
		b.WriteString(style.Render(a.status))
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Hint.Render(a.helpLine()))
	return b.String()
}

func (a *App) presetsView() string {
	var b strings.Builder
	header := a.styles.Header
	if a.pane != panePresets {
		header = a.styles.Weekday
	}
	b.WriteString(header.Render("Presets"))
	b.WriteString("\n")
	if a.pane == panePresets {
		b.WriteString(a.filter.View())
		b.WriteString("\n")
	}
	if len(a.visible) == 0 {
		b.WriteString(a.styles.Disabled.Render("  no matches"))
		b.WriteString("\n")
		return b.String()
	}
	nameW := 0
	for _, p := range a.visible {
		nameW = max(nameW, lipgloss.Width(p.Name))
	}
	for i, p := range a.visible {
		prefix := "  "
		style := a.styles.Day
		if a.pane == panePresets && i == a.cursor {
			prefix = "> "
			style = a.styles.Selected
		}
		marker := " "
		if !p.Builtin {
			marker = "*"
		}
		line := fmt.Sprintf("%s%-*s %s %s", marker, nameW, p.Name, a.adapter.Format(p.From), a.adapter.Format(p.To))
		b.WriteString(prefix + style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (a *App) helpLine() string {
	var bindings []key.Binding
	switch a.pane {
	case panePresets:
		bindings = []key.Binding{a.keys.Apply, a.keys.Delete, a.keys.Cancel}
	case paneSave:
		bindings = []key.Binding{a.keys.Apply, a.keys.Cancel}
	default:
		bindings = []key.Binding{a.picker.KeyMap().Toggle, a.keys.Presets, a.keys.Save, a.keys.Exit}
	}
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}
