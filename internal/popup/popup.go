// Package popup hosts the two calendars of the range picker and owns their
// open/close lifecycle, focus and on-screen placement.
package popup

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jask/rangepick/internal/calendar"
	"github.com/jask/rangepick/internal/dateadapter"
	"github.com/jask/rangepick/internal/daterange"
	"github.com/jask/rangepick/internal/theme"
)

// OpenedMsg is sent when the popup opens.
type OpenedMsg struct{}

// ClosedMsg is sent when the popup closes. RestoreFocus tells the owner to
// hand focus back to the text input.
type ClosedMsg struct {
	RestoreFocus bool
}

type KeyMap struct {
	Close key.Binding
	Next  key.Binding
	Prev  key.Binding
	Today key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Close: key.NewBinding(key.WithKeys("esc", "alt+up"), key.WithHelp("esc", "close")),
		Next:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next calendar")),
		Prev:  key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev calendar")),
		Today: key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "today")),
	}
}

// Controller drives the from/to calendars against a range model.
type Controller struct {
	model   *daterange.Model[time.Time]
	adapter *dateadapter.Adapter
	styles  theme.Styles
	keys    KeyMap

	from   *calendar.Model
	to     *calendar.Model
	active daterange.Side
	open   bool

	closeOnToPick bool
	unsubscribe   daterange.Unsubscribe
}

// Option configures a Controller.
type Option func(*Controller)

// WithCloseOnToPick closes the popup once the "to" side is picked.
func WithCloseOnToPick(v bool) Option {
	return func(c *Controller) { c.closeOnToPick = v }
}

func WithStyles(s theme.Styles) Option {
	return func(c *Controller) { c.styles = s }
}

func New(model *daterange.Model[time.Time], adapter *dateadapter.Adapter, opts ...Option) *Controller {
	c := &Controller{
		model:         model,
		adapter:       adapter,
		styles:        theme.Default(),
		keys:          DefaultKeyMap(),
		closeOnToPick: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.from = calendar.New(daterange.SideFrom, adapter, c.styles)
	c.to = calendar.New(daterange.SideTo, adapter, c.styles)
	c.unsubscribe = model.Subscribe(func(daterange.Selection[time.Time]) { c.sync() })
	c.sync()
	return c
}

// Release detaches the controller from its model.
func (c *Controller) Release() {
	if c.unsubscribe != nil {
		c.unsubscribe()
	}
}

func (c *Controller) IsOpen() bool             { return c.open }
func (c *Controller) Active() daterange.Side   { return c.active }
func (c *Controller) From() *calendar.Model    { return c.from }
func (c *Controller) To() *calendar.Model      { return c.to }
func (c *Controller) KeyMap() KeyMap           { return c.keys }
func (c *Controller) CloseOnToPick(v bool)     { c.closeOnToPick = v }
func (c *Controller) Styles() theme.Styles     { return c.styles }

// Open reselects the current value with a forced notification, so an empty
// selection becomes today, then shows the popup with the cursors on it and
// focus on the "from" calendar.
func (c *Controller) Open() tea.Cmd {
	if c.open {
		return nil
	}
	c.open = true
	cur := c.model.Select(c.model.Current(), true)
	c.setCursors(cur)
	c.sync()
	c.focus(daterange.SideFrom)
	return func() tea.Msg { return OpenedMsg{} }
}

// Close hides the popup.
func (c *Controller) Close() tea.Cmd {
	if !c.open {
		return nil
	}
	c.open = false
	c.from.Blur()
	c.to.Blur()
	return func() tea.Msg { return ClosedMsg{RestoreFocus: true} }
}

// Toggle opens a closed popup and closes an open one.
func (c *Controller) Toggle() tea.Cmd {
	if c.open {
		return c.Close()
	}
	return c.Open()
}

// SelectToday selects today on both sides and moves the cursors there.
func (c *Controller) SelectToday() {
	today := c.adapter.Today()
	cur := c.model.Select(daterange.Of(today, today), false)
	c.setCursors(cur)
	c.sync()
}

func (c *Controller) setCursors(cur daterange.Selection[time.Time]) {
	if cur.From != nil {
		c.from.SetCursor(*cur.From)
	}
	if cur.To != nil {
		c.to.SetCursor(*cur.To)
	}
}

func (c *Controller) focus(side daterange.Side) {
	c.active = side
	if side == daterange.SideTo {
		c.from.Blur()
		c.to.Focus()
		return
	}
	c.to.Blur()
	c.from.Focus()
}

// Update routes keys to the focused calendar and applies picks to the model.
func (c *Controller) Update(msg tea.Msg) tea.Cmd {
	if !c.open {
		return nil
	}
	switch msg := msg.(type) {
	case calendar.PickedMsg:
		return c.accept(msg)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, c.keys.Close):
			return c.Close()
		case key.Matches(msg, c.keys.Today):
			c.SelectToday()
			return nil
		case key.Matches(msg, c.keys.Next), key.Matches(msg, c.keys.Prev):
			if c.active == daterange.SideFrom {
				c.focus(daterange.SideTo)
			} else {
				c.focus(daterange.SideFrom)
			}
			return nil
		}
		if c.active == daterange.SideTo {
			return c.to.Update(msg)
		}
		return c.from.Update(msg)
	}
	return nil
}

func (c *Controller) accept(msg calendar.PickedMsg) tea.Cmd {
	c.model.AcceptCalendarPick(msg.Side, msg.Date)
	c.sync()
	if msg.Side == daterange.SideFrom {
		cur := c.model.Current()
		if cur.To != nil {
			c.to.SetCursor(*cur.To)
		}
		c.focus(daterange.SideTo)
		return nil
	}
	if c.closeOnToPick {
		return c.Close()
	}
	return nil
}

// sync copies the model's derived bounds into the calendars.
func (c *Controller) sync() {
	cur := c.model.Current()
	c.from.SetSelection(cur)
	c.to.SetSelection(cur)
	c.to.SetMinDate(c.model.MinToDate())
	c.to.SetFilter(c.model.ToDateFilter())
}

func (c *Controller) View() string {
	fromStyle, toStyle := c.styles.Calendar, c.styles.Calendar
	if c.active == daterange.SideTo {
		toStyle = c.styles.CalendarActive
	} else {
		fromStyle = c.styles.CalendarActive
	}
	grids := lipgloss.JoinHorizontal(lipgloss.Top,
		fromStyle.Render(c.from.View()),
		" ",
		toStyle.Render(c.to.View()),
	)
	hint := c.styles.Hint.Render("tab switch · enter pick · [ ] month · t today · esc close")
	return c.styles.Popup.Render(lipgloss.JoinVertical(lipgloss.Left, grids, hint))
}

// Render places the popup over base next to anchor when open; otherwise it
// returns base unchanged.
func (c *Controller) Render(base string, anchor Anchor, viewW, viewH int) string {
	if !c.open {
		return base
	}
	return Place(base, c.View(), anchor, viewW, viewH)
}
