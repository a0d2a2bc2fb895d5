// Package textfield binds a text input holding "<from> - <to>" to a range
// selection model.
package textfield

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/rangepick/internal/daterange"
)

// DefaultSeparator splits the two dates in the input text.
const DefaultSeparator = " - "

// ErrInputAlreadyBound is returned when a field or widget already has a binding.
var ErrInputAlreadyBound = errors.New("input is already bound to a date range picker")

// Codec formats and parses single dates.
type Codec interface {
	Format(time.Time) string
	Parse(string) (time.Time, error)
	IsValid(time.Time) bool
}

// Selection is the concrete selection type the field works with.
type Selection = daterange.Selection[time.Time]

// Field is a text input bound to a range model.
type Field struct {
	input     textinput.Model
	codec     Codec
	separator string
	model     *daterange.Model[time.Time]
}

// Option configures a Field.
type Option func(*Field)

func WithSeparator(sep string) Option {
	return func(f *Field) {
		if sep != "" {
			f.separator = sep
		}
	}
}

func WithPlaceholder(p string) Option {
	return func(f *Field) { f.input.Placeholder = p }
}

func WithWidth(w int) Option {
	return func(f *Field) { f.input.Width = w }
}

// WithCursorMode sets the caret mode; cursor.CursorStatic disables blinking.
func WithCursorMode(mode cursor.Mode) Option {
	return func(f *Field) { f.input.Cursor.SetMode(mode) }
}

func New(codec Codec, opts ...Option) *Field {
	inp := textinput.New()
	inp.Prompt = ""
	inp.CharLimit = 64
	f := &Field{input: inp, codec: codec, separator: DefaultSeparator}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Attach binds the field to model. A field can be attached once.
func (f *Field) Attach(model *daterange.Model[time.Time]) error {
	if f.model != nil {
		return ErrInputAlreadyBound
	}
	f.model = model
	return nil
}

// Parse splits s on the separator. Segments that fail to parse, or parse to an
// invalid date, come back nil.
func (f *Field) Parse(s string) Selection {
	parts := strings.SplitN(s, f.separator, 2)
	var sel Selection
	sel.From = f.parseOne(parts[0])
	if len(parts) == 2 {
		sel.To = f.parseOne(parts[1])
	}
	return sel
}

func (f *Field) parseOne(s string) *time.Time {
	t, err := f.codec.Parse(s)
	if err != nil || !f.codec.IsValid(t) {
		return nil
	}
	return &t
}

// Format renders sel as "<from><sep><to>". Absent ends render empty.
func (f *Field) Format(sel Selection) string {
	if sel.Empty() {
		return ""
	}
	var from, to string
	if sel.From != nil {
		from = f.codec.Format(*sel.From)
	}
	if sel.To != nil {
		to = f.codec.Format(*sel.To)
	}
	return from + f.separator + to
}

// SetSelection rewrites the text without touching the model.
func (f *Field) SetSelection(sel Selection) {
	f.input.SetValue(f.Format(sel))
	f.input.CursorEnd()
}

// Commit rewrites the text from the model's normalized value.
func (f *Field) Commit() {
	if f.model == nil {
		return
	}
	f.SetSelection(f.model.Current())
}

func (f *Field) Value() string { return f.input.Value() }

// SetValue replaces the text and pushes the parsed result into the model.
func (f *Field) SetValue(s string) {
	f.input.SetValue(s)
	f.push()
}

func (f *Field) Focus() tea.Cmd { return f.input.Focus() }

// Blur drops focus and normalizes the text.
func (f *Field) Blur() {
	f.input.Blur()
	f.Commit()
}

func (f *Field) Focused() bool { return f.input.Focused() }

// Update forwards msg to the text input and re-selects when the text changed.
func (f *Field) Update(msg tea.Msg) tea.Cmd {
	before := f.input.Value()
	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	if f.input.Value() != before {
		f.push()
	}
	return cmd
}

func (f *Field) push() {
	if f.model == nil {
		return
	}
	f.model.Select(f.Parse(f.input.Value()), false)
}

func (f *Field) View() string { return f.input.View() }
