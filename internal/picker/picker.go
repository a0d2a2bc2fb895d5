// Package picker composes the range model, text field, popup and form control
// into one Bubble Tea component.
package picker

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/rangepick/internal/calendar"
	"github.com/jask/rangepick/internal/dateadapter"
	"github.com/jask/rangepick/internal/daterange"
	"github.com/jask/rangepick/internal/form"
	"github.com/jask/rangepick/internal/popup"
	"github.com/jask/rangepick/internal/textfield"
	"github.com/jask/rangepick/internal/theme"
)

var (
	ErrMissingDateAdapter = errors.New("no date adapter provided; a date range picker needs one to compare and format dates")
	ErrInputAlreadyBound  = textfield.ErrInputAlreadyBound
)

// ChangedMsg carries the normalized selection after it changed.
type ChangedMsg struct {
	Selection form.Selection
}

type focusTarget int

const (
	focusInput focusTarget = iota
	focusButton
	focusNone
)

type KeyMap struct {
	Toggle key.Binding
	Next   key.Binding
	Prev   key.Binding
	Press  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Toggle: key.NewBinding(key.WithKeys("ctrl+o", "alt+down"), key.WithHelp("ctrl+o", "open calendar")),
		Next:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next")),
		Prev:   key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev")),
		Press:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open calendar")),
	}
}

type settings struct {
	input         *textfield.Field
	fieldOpts     []textfield.Option
	styles        theme.Styles
	closeOnToPick bool
	validators    []form.Validator
	label         string
	initial       form.Selection
}

// Option configures a Picker.
type Option func(*settings)

// WithInput binds f instead of a default text field.
func WithInput(f *textfield.Field) Option { return func(s *settings) { s.input = f } }

// WithFieldOptions configures the default text field.
func WithFieldOptions(opts ...textfield.Option) Option {
	return func(s *settings) { s.fieldOpts = append(s.fieldOpts, opts...) }
}

func WithStyles(st theme.Styles) Option { return func(s *settings) { s.styles = st } }

func WithCloseOnToPick(v bool) Option { return func(s *settings) { s.closeOnToPick = v } }

func WithValidators(v ...form.Validator) Option {
	return func(s *settings) { s.validators = append(s.validators, v...) }
}

func WithLabel(l string) Option { return func(s *settings) { s.label = l } }

// WithInitial selects sel when the picker is built.
func WithInitial(sel form.Selection) Option { return func(s *settings) { s.initial = sel } }

// Picker is a text input plus a toggle button that opens a two-calendar popup.
type Picker struct {
	adapter *dateadapter.Adapter
	model   *daterange.Model[time.Time]
	input   *textfield.Field
	popup   *popup.Controller
	control *form.Control
	styles  theme.Styles
	keys    KeyMap
	label   string

	focus         focusTarget
	width, height int
	changed       bool
}

// New builds a picker around adapter. It fails when adapter is nil.
func New(adapter *dateadapter.Adapter, opts ...Option) (*Picker, error) {
	if adapter == nil {
		return nil, fmt.Errorf("picker: %w", ErrMissingDateAdapter)
	}
	s := settings{styles: theme.Default(), closeOnToPick: true}
	for _, opt := range opts {
		opt(&s)
	}

	model := daterange.New[time.Time](adapter)
	p := &Picker{
		adapter: adapter,
		model:   model,
		styles:  s.styles,
		keys:    DefaultKeyMap(),
		label:   s.label,
	}
	p.popup = popup.New(model, adapter, popup.WithStyles(s.styles), popup.WithCloseOnToPick(s.closeOnToPick))
	p.control = form.NewControl(model, s.validators...)
	model.Subscribe(func(form.Selection) { p.changed = true })

	field := s.input
	if field == nil {
		field = textfield.New(adapter, s.fieldOpts...)
	}
	if err := p.BindInput(field); err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	if !s.initial.Empty() {
		model.Select(s.initial, false)
		p.input.SetSelection(model.Current())
	}
	p.changed = false
	return p, nil
}

// BindInput attaches f as the picker's text input. A picker accepts one input
// and a field can serve one picker.
func (p *Picker) BindInput(f *textfield.Field) error {
	if p.input != nil {
		return ErrInputAlreadyBound
	}
	if err := f.Attach(p.model); err != nil {
		return err
	}
	p.input = f
	return nil
}

// Release drops every subscription the picker holds on its model.
func (p *Picker) Release() {
	p.popup.Release()
	p.control.Release()
	p.model.Close()
}

func (p *Picker) Model() *daterange.Model[time.Time] { return p.model }
func (p *Picker) Control() *form.Control             { return p.control }
func (p *Picker) Popup() *popup.Controller           { return p.popup }
func (p *Picker) Input() *textfield.Field            { return p.input }
func (p *Picker) KeyMap() KeyMap                     { return p.keys }

// Value returns the current normalized selection.
func (p *Picker) Value() form.Selection { return p.model.Current() }

// SetValue writes sel through the form control and refreshes the text. The
// returned command reports the change as a ChangedMsg.
func (p *Picker) SetValue(sel form.Selection) tea.Cmd {
	p.control.SetValue(sel)
	p.input.SetSelection(p.model.Current())
	return p.flushChange()
}

// Focused reports whether the text input has focus.
func (p *Picker) Focused() bool { return p.input.Focused() }

func (p *Picker) Init() tea.Cmd { return p.input.Focus() }

// Focus returns focus to the text input.
func (p *Picker) Focus() tea.Cmd {
	p.focus = focusInput
	return p.input.Focus()
}

// Blur takes focus away from the input and the button. Keys then reach only
// an open popup.
func (p *Picker) Blur() {
	p.leaveInput()
	p.focus = focusNone
}

func (p *Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width, p.height = msg.Width, msg.Height
	case popup.ClosedMsg:
		p.input.Commit()
		if msg.RestoreFocus {
			p.focus = focusInput
			cmd = p.input.Focus()
		}
	case calendar.PickedMsg:
		cmd = p.popup.Update(msg)
		p.input.SetSelection(p.model.Current())
	case tea.KeyMsg:
		if !p.control.Disabled() {
			cmd = p.handleKey(msg)
		}
	default:
		cmd = p.input.Update(msg)
	}
	return p, tea.Batch(cmd, p.flushChange())
}

func (p *Picker) handleKey(msg tea.KeyMsg) tea.Cmd {
	if p.popup.IsOpen() {
		return p.popup.Update(msg)
	}
	switch {
	case key.Matches(msg, p.keys.Toggle):
		return p.openPopup()
	case key.Matches(msg, p.keys.Next), key.Matches(msg, p.keys.Prev):
		if p.focus == focusInput {
			p.leaveInput()
			p.focus = focusButton
			return nil
		}
		p.focus = focusInput
		return p.input.Focus()
	case p.focus == focusButton && key.Matches(msg, p.keys.Press):
		return p.openPopup()
	case p.focus == focusInput:
		return p.input.Update(msg)
	}
	return nil
}

func (p *Picker) leaveInput() {
	if p.input.Focused() {
		p.input.Blur()
		p.control.MarkTouched()
	}
}

func (p *Picker) openPopup() tea.Cmd {
	p.leaveInput()
	cmd := p.popup.Open()
	p.input.SetSelection(p.model.Current())
	return cmd
}

func (p *Picker) flushChange() tea.Cmd {
	if !p.changed {
		return nil
	}
	p.changed = false
	msg := ChangedMsg{Selection: p.model.Current()}
	return func() tea.Msg { return msg }
}

func (p *Picker) fieldView() string {
	inputStyle := p.styles.Input
	if p.input.Focused() || p.popup.IsOpen() {
		inputStyle = p.styles.InputFocused
	}
	buttonStyle := p.styles.Button
	if p.focus == focusButton && !p.popup.IsOpen() {
		buttonStyle = p.styles.ButtonFocused
	}
	glyph := "▾"
	if p.popup.IsOpen() {
		glyph = "▴"
	}
	row := lipgloss.JoinHorizontal(lipgloss.Center, inputStyle.Render(p.input.View()), buttonStyle.Render(glyph))
	if p.label != "" {
		row = lipgloss.JoinVertical(lipgloss.Left, p.styles.Header.Render(p.label), row)
	}
	return row
}

func (p *Picker) View() string {
	field := p.fieldView()
	anchor := popup.Anchor{Width: lipgloss.Width(field), Height: lipgloss.Height(field)}
	base := field
	if p.control.Touched() {
		if err := p.control.Errors(); err != nil {
			base = lipgloss.JoinVertical(lipgloss.Left, field, p.styles.Error.Render(err.Error()))
		}
	}
	return p.popup.Render(base, anchor, p.width, p.height)
}
