package tui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/jask/rangepick/internal/database"
	"github.com/jask/rangepick/internal/dateadapter"
	"github.com/jask/rangepick/internal/daterange"
	"github.com/jask/rangepick/internal/picker"
	"github.com/jask/rangepick/internal/presets"
	"github.com/jask/rangepick/internal/textfield"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

func testAdapter() *dateadapter.Adapter {
	now := time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)
	return dateadapter.New(
		dateadapter.WithLocation(time.UTC),
		dateadapter.WithClock(func() time.Time { return now }),
	)
}

func newTestStore(t *testing.T) *presets.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))
	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return presets.NewStore(db, time.UTC)
}

func newTestApp(t *testing.T, store *presets.Store) *App {
	t.Helper()
	a := testAdapter()
	p, err := picker.New(a, picker.WithFieldOptions(textfield.WithCursorMode(cursor.CursorStatic)))
	require.NoError(t, err)
	t.Cleanup(p.Release)
	app := New(context.Background(), a, store, p, WithCursorMode(cursor.CursorStatic))
	send(app, nil, app.Init())
	return app
}

// send feeds msg to app and then every message its commands produce. A quit
// command stops the loop and is reported.
func send(app *App, msg tea.Msg, initial ...tea.Cmd) (quit bool) {
	queue := append([]tea.Cmd(nil), initial...)
	if msg != nil {
		_, cmd := app.Update(msg)
		queue = append(queue, cmd)
	}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch m := c().(type) {
		case nil:
		case tea.QuitMsg:
			quit = true
		case tea.BatchMsg:
			queue = append(queue, m...)
		default:
			_, next := app.Update(m)
			queue = append(queue, next)
		}
	}
	return quit
}

func typeText(app *App, s string) {
	for _, r := range s {
		send(app, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func ctrl(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func TestStartsOnPickerWithBuiltins(t *testing.T) {
	app := newTestApp(t, nil)
	require.Equal(t, panePicker, app.pane)
	require.True(t, app.picker.Focused())
	require.Len(t, app.visible, len(presets.Builtins(testAdapter())))
	require.Empty(t, app.Selection())
}

func TestTypingRangeUpdatesStatus(t *testing.T) {
	app := newTestApp(t, nil)
	typeText(app, "2026-10-01 - 2026-10-05")
	require.Equal(t, "Range: 2026-10-01 - 2026-10-05", app.status)
	require.Equal(t, "2026-10-01 - 2026-10-05", app.Selection())
}

func TestApplyBuiltinPreset(t *testing.T) {
	app := newTestApp(t, nil)
	send(app, ctrl(tea.KeyCtrlP))
	require.Equal(t, panePresets, app.pane)
	require.False(t, app.picker.Focused())

	typeText(app, "last m")
	require.Equal(t, "Last month", app.visible[0].Name)

	send(app, ctrl(tea.KeyEnter))
	require.Equal(t, panePicker, app.pane)
	require.True(t, app.picker.Focused())
	require.Equal(t, "2026-09-01 - 2026-09-30", app.Selection())
	require.Equal(t, "2026-09-01 - 2026-09-30", app.picker.Input().Value())
	require.Equal(t, `Applied "Last month": 2026-09-01 - 2026-09-30`, app.status)
}

func TestReapplyingSamePresetReportsChange(t *testing.T) {
	app := newTestApp(t, nil)
	for i := 0; i < 2; i++ {
		app.status = ""
		send(app, ctrl(tea.KeyCtrlP))
		typeText(app, "today")
		send(app, ctrl(tea.KeyEnter))
		require.Equal(t, `Applied "Today": 2026-10-16 - 2026-10-16`, app.status)
		require.Empty(t, app.applied)
	}
}

func TestBlinkMessagesReachFocusedInput(t *testing.T) {
	a := testAdapter()
	p, err := picker.New(a, picker.WithFieldOptions(textfield.WithCursorMode(cursor.CursorBlink)))
	require.NoError(t, err)
	t.Cleanup(p.Release)
	app := New(context.Background(), a, nil, p, WithCursorMode(cursor.CursorBlink))

	blink := p.Init()()
	require.IsType(t, cursor.BlinkMsg{}, blink)
	_, next := app.Update(blink)
	require.NotNil(t, next, "picker caret keeps blinking")

	_, focus := app.Update(ctrl(tea.KeyCtrlP))
	require.Equal(t, panePresets, app.pane)
	require.NotNil(t, focus)
	blink = focus()
	require.IsType(t, cursor.BlinkMsg{}, blink)
	_, next = app.Update(blink)
	require.NotNil(t, next, "filter caret keeps blinking")
}

func TestPresetsCursorAndEscape(t *testing.T) {
	app := newTestApp(t, nil)
	send(app, ctrl(tea.KeyCtrlP))
	send(app, ctrl(tea.KeyUp))
	require.Equal(t, 0, app.cursor)
	send(app, ctrl(tea.KeyDown))
	send(app, ctrl(tea.KeyDown))
	require.Equal(t, 2, app.cursor)

	send(app, ctrl(tea.KeyEsc))
	require.Equal(t, panePicker, app.pane)
	require.Empty(t, app.Selection())
}

func TestFilterWithoutMatches(t *testing.T) {
	app := newTestApp(t, nil)
	send(app, ctrl(tea.KeyCtrlP))
	typeText(app, "qqqqqq")
	require.Empty(t, app.visible)
	require.Contains(t, app.View(), "no matches")
	send(app, ctrl(tea.KeyEnter))
	require.Equal(t, panePresets, app.pane)
}

func TestSaveRequiresStore(t *testing.T) {
	app := newTestApp(t, nil)
	send(app, ctrl(tea.KeyCtrlS))
	require.Equal(t, panePicker, app.pane)
	require.Equal(t, "Saving needs a database", app.status)
}

func TestSaveApplyAndDeletePreset(t *testing.T) {
	store := newTestStore(t)
	app := newTestApp(t, store)
	ctx := context.Background()

	typeText(app, "2026-07-01 - 2026-09-30")
	send(app, ctrl(tea.KeyCtrlS))
	require.Equal(t, paneSave, app.pane)
	typeText(app, "Q3")
	send(app, ctrl(tea.KeyEnter))

	require.Equal(t, panePicker, app.pane)
	require.Equal(t, `Saved "Q3"`, app.status)
	saved, err := store.ByName(ctx, "q3")
	require.NoError(t, err)
	require.NotNil(t, saved)
	require.Len(t, app.saved, 1)

	send(app, nil, app.picker.SetValue(daterange.Of(testAdapter().Date(2026, 1, 1), testAdapter().Date(2026, 1, 2))))
	require.Equal(t, "2026-01-01 - 2026-01-02", app.Selection())
	send(app, ctrl(tea.KeyCtrlP))
	typeText(app, "q3")
	require.Equal(t, "Q3", app.visible[0].Name)
	send(app, ctrl(tea.KeyEnter))
	require.Equal(t, "2026-07-01 - 2026-09-30", app.Selection())

	touched, err := store.ByName(ctx, "Q3")
	require.NoError(t, err)
	require.Equal(t, 1, touched.UseCount)
	require.NotNil(t, touched.LastUsedAt)

	send(app, ctrl(tea.KeyCtrlP))
	typeText(app, "q3")
	send(app, ctrl(tea.KeyCtrlD))
	gone, err := store.ByName(ctx, "Q3")
	require.NoError(t, err)
	require.Nil(t, gone)
	require.Empty(t, app.saved)
}

func TestSaveWithoutRangeReportsError(t *testing.T) {
	app := newTestApp(t, newTestStore(t))
	send(app, ctrl(tea.KeyCtrlS))
	typeText(app, "empty")
	send(app, ctrl(tea.KeyEnter))
	require.Equal(t, paneSave, app.pane)
	require.Equal(t, "Error: "+errNoRange.Error(), app.status)

	send(app, ctrl(tea.KeyEsc))
	require.Equal(t, panePicker, app.pane)
}

func TestBuiltinCannotBeDeleted(t *testing.T) {
	app := newTestApp(t, newTestStore(t))
	send(app, ctrl(tea.KeyCtrlP))
	send(app, ctrl(tea.KeyCtrlD))
	require.Equal(t, "Built-in presets cannot be deleted", app.status)
}

func TestQuitKeys(t *testing.T) {
	app := newTestApp(t, nil)
	require.True(t, send(app, ctrl(tea.KeyCtrlC)))
	require.True(t, send(app, ctrl(tea.KeyEsc)))

	send(app, ctrl(tea.KeyCtrlO))
	require.True(t, app.picker.Popup().IsOpen())
	require.False(t, send(app, ctrl(tea.KeyEsc)), "escape closes the popup first")
	require.False(t, app.picker.Popup().IsOpen())
}

func TestViewShowsPanes(t *testing.T) {
	app := newTestApp(t, nil)
	view := app.View()
	require.Contains(t, view, "Date range")
	require.Contains(t, view, "Presets")
	require.Contains(t, view, "ctrl+p presets")

	send(app, ctrl(tea.KeyCtrlP))
	view = app.View()
	require.Contains(t, view, "> ")
	require.Contains(t, view, "enter apply")

	lines := strings.Split(view, "\n")
	var today string
	for _, l := range lines {
		if strings.Contains(l, "Today") {
			today = l
		}
	}
	require.Contains(t, today, "2026-10-16 2026-10-16")
}
