// Package calendar renders one navigable month grid for the range popup.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/rangepick/internal/dateadapter"
	"github.com/jask/rangepick/internal/daterange"
	"github.com/jask/rangepick/internal/theme"
)

// gridWidth is seven two-character cells separated by single spaces.
const gridWidth = 7*2 + 6

// PickedMsg is sent when the user picks an enabled day.
type PickedMsg struct {
	Side daterange.Side
	Date time.Time
}

type KeyMap struct {
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	PrevMonth  key.Binding
	NextMonth  key.Binding
	MonthStart key.Binding
	MonthEnd   key.Binding
	Pick       key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev day")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next day")),
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "prev week")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "next week")),
		PrevMonth:  key.NewBinding(key.WithKeys("pgup", "["), key.WithHelp("[", "prev month")),
		NextMonth:  key.NewBinding(key.WithKeys("pgdown", "]"), key.WithHelp("]", "next month")),
		MonthStart: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "month start")),
		MonthEnd:   key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "month end")),
		Pick:       key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "pick")),
	}
}

// Model is a single month calendar for one side of the range.
type Model struct {
	side    daterange.Side
	adapter *dateadapter.Adapter
	styles  theme.Styles
	keys    KeyMap

	cursor   time.Time
	min      *time.Time
	filter   func(time.Time) bool
	selected daterange.Selection[time.Time]
	focused  bool
}

func New(side daterange.Side, adapter *dateadapter.Adapter, styles theme.Styles) *Model {
	return &Model{
		side:    side,
		adapter: adapter,
		styles:  styles,
		keys:    DefaultKeyMap(),
		cursor:  adapter.Today(),
	}
}

func (m *Model) Side() daterange.Side { return m.side }
func (m *Model) Cursor() time.Time    { return m.cursor }
func (m *Model) KeyMap() KeyMap       { return m.keys }

// Month returns the first day of the visible month.
func (m *Model) Month() time.Time { return m.adapter.StartOfMonth(m.cursor) }

func (m *Model) SetCursor(t time.Time) { m.cursor = m.adapter.Day(t) }

// SetMinDate disables every day before bound. nil clears it.
func (m *Model) SetMinDate(bound *time.Time) {
	if bound == nil {
		m.min = nil
		return
	}
	d := m.adapter.Day(*bound)
	m.min = &d
}

// SetFilter disables days for which fn returns false.
func (m *Model) SetFilter(fn func(time.Time) bool) { m.filter = fn }

// SetSelection sets the range highlighted in the grid.
func (m *Model) SetSelection(sel daterange.Selection[time.Time]) { m.selected = sel }

func (m *Model) Focus()        { m.focused = true }
func (m *Model) Blur()         { m.focused = false }
func (m *Model) Focused() bool { return m.focused }

// Enabled reports whether d may be picked.
func (m *Model) Enabled(d time.Time) bool {
	if m.min != nil && m.adapter.Compare(d, *m.min) < 0 {
		return false
	}
	if m.filter != nil && !m.filter(d) {
		return false
	}
	return true
}

// Update handles navigation keys while focused. It returns a command carrying
// PickedMsg when an enabled day is picked.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	km, ok := msg.(tea.KeyMsg)
	if !ok || !m.focused {
		return nil
	}
	switch {
	case key.Matches(km, m.keys.Left):
		m.cursor = m.adapter.AddDays(m.cursor, -1)
	case key.Matches(km, m.keys.Right):
		m.cursor = m.adapter.AddDays(m.cursor, 1)
	case key.Matches(km, m.keys.Up):
		m.cursor = m.adapter.AddDays(m.cursor, -7)
	case key.Matches(km, m.keys.Down):
		m.cursor = m.adapter.AddDays(m.cursor, 7)
	case key.Matches(km, m.keys.PrevMonth):
		m.cursor = m.adapter.AddMonths(m.cursor, -1)
	case key.Matches(km, m.keys.NextMonth):
		m.cursor = m.adapter.AddMonths(m.cursor, 1)
	case key.Matches(km, m.keys.MonthStart):
		m.cursor = m.Month()
	case key.Matches(km, m.keys.MonthEnd):
		start := m.Month()
		m.cursor = m.adapter.AddDays(start, m.adapter.DaysInMonth(start)-1)
	case key.Matches(km, m.keys.Pick):
		if !m.Enabled(m.cursor) {
			return nil
		}
		picked := PickedMsg{Side: m.side, Date: m.cursor}
		return func() tea.Msg { return picked }
	}
	return nil
}

func (m *Model) title() string {
	label := "From"
	if m.side == daterange.SideTo {
		label = "To"
	}
	return fmt.Sprintf("%s · %s", label, m.Month().Format("Jan 2006"))
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(lipgloss.PlaceHorizontal(gridWidth, lipgloss.Center, m.title())))
	b.WriteByte('\n')

	names := make([]string, 0, 7)
	for _, wd := range m.adapter.WeekdayOrder() {
		names = append(names, wd.String()[:2])
	}
	b.WriteString(m.styles.Weekday.Render(strings.Join(names, " ")))

	start := m.Month()
	blanks := m.adapter.LeadingBlanks(start)
	days := m.adapter.DaysInMonth(start)
	cells := make([]string, 0, 42)
	for i := 0; i < blanks; i++ {
		cells = append(cells, "  ")
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, m.renderDay(m.adapter.AddDays(start, day-1)))
	}
	for i := 0; i < len(cells); i += 7 {
		end := min(i+7, len(cells))
		b.WriteByte('\n')
		b.WriteString(strings.Join(cells[i:end], " "))
	}
	// Keep the height stable across months.
	for rows := (len(cells) + 6) / 7; rows < 6; rows++ {
		b.WriteByte('\n')
		b.WriteString(strings.Repeat(" ", gridWidth))
	}
	return b.String()
}

func (m *Model) renderDay(d time.Time) string {
	label := fmt.Sprintf("%2d", d.Day())
	style := m.styles.Day
	switch {
	case !m.Enabled(d):
		style = m.styles.Disabled
	case m.isEndpoint(d):
		style = m.styles.Selected
	case m.inRange(d):
		style = m.styles.InRange
	case m.adapter.IsSameDay(d, m.adapter.Today()):
		style = m.styles.Today
	}
	if m.focused && m.adapter.IsSameDay(d, m.cursor) {
		style = style.Inherit(m.styles.Cursor)
	}
	return style.Render(label)
}

func (m *Model) isEndpoint(d time.Time) bool {
	if m.selected.From != nil && m.adapter.IsSameDay(d, *m.selected.From) {
		return true
	}
	return m.selected.To != nil && m.adapter.IsSameDay(d, *m.selected.To)
}

func (m *Model) inRange(d time.Time) bool {
	if m.selected.From == nil || m.selected.To == nil {
		return false
	}
	return m.adapter.Compare(d, *m.selected.From) > 0 && m.adapter.Compare(d, *m.selected.To) < 0
}
