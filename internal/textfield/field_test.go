package textfield

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/jask/rangepick/internal/dateadapter"
	"github.com/jask/rangepick/internal/daterange"
)

func testAdapter() *dateadapter.Adapter {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	return dateadapter.New(
		dateadapter.WithLocation(time.UTC),
		dateadapter.WithClock(func() time.Time { return now }),
	)
}

func formatted(a *dateadapter.Adapter, sel Selection) [2]string {
	var out [2]string
	if sel.From != nil {
		out[0] = a.Format(*sel.From)
	}
	if sel.To != nil {
		out[1] = a.Format(*sel.To)
	}
	return out
}

func TestParse(t *testing.T) {
	a := testAdapter()
	f := New(a)
	tests := []struct {
		name  string
		input string
		want  [2]string
	}{
		{"both", "2026-03-01 - 2026-03-09", [2]string{"2026-03-01", "2026-03-09"}},
		{"from only", "2026-03-01", [2]string{"2026-03-01", ""}},
		{"dangling separator", "2026-03-01 - ", [2]string{"2026-03-01", ""}},
		{"bad from", "garbage - 2026-03-09", [2]string{"", "2026-03-09"}},
		{"bad both", "x - y", [2]string{"", ""}},
		{"empty", "", [2]string{"", ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, formatted(a, f.Parse(tt.input)))
		})
	}
}

func TestFormat(t *testing.T) {
	a := testAdapter()
	f := New(a, WithSeparator(" to "))
	require.Equal(t, "", f.Format(Selection{}))
	require.Equal(t, "2026-03-01 to 2026-03-04", f.Format(daterange.Of(a.Date(2026, 3, 1), a.Date(2026, 3, 4))))
	from := a.Date(2026, 3, 1)
	require.Equal(t, "2026-03-01 to ", f.Format(Selection{From: &from}))
}

func TestAttachTwiceFails(t *testing.T) {
	a := testAdapter()
	f := New(a)
	require.NoError(t, f.Attach(daterange.New[time.Time](a)))
	require.ErrorIs(t, f.Attach(daterange.New[time.Time](a)), ErrInputAlreadyBound)
}

func TestSetValuePushesIntoModel(t *testing.T) {
	a := testAdapter()
	m := daterange.New[time.Time](a)
	f := New(a)
	require.NoError(t, f.Attach(m))

	f.SetValue("2026-03-10 - 2026-03-03")
	require.Equal(t, [2]string{"2026-03-10", "2026-03-10"}, formatted(a, m.Current()))
	require.Equal(t, "2026-03-10 - 2026-03-03", f.Value(), "text is left as typed until blur")

	f.Blur()
	require.False(t, f.Focused())
	require.Equal(t, "2026-03-10 - 2026-03-10", f.Value())
}

func TestUnparsableTextSelectsToday(t *testing.T) {
	a := testAdapter()
	m := daterange.New[time.Time](a)
	f := New(a)
	require.NoError(t, f.Attach(m))

	f.SetValue("soon")
	require.Equal(t, [2]string{"2026-10-16", "2026-10-16"}, formatted(a, m.Current()))
}

func TestTypingUpdatesModel(t *testing.T) {
	a := testAdapter()
	m := daterange.New[time.Time](a)
	f := New(a)
	require.NoError(t, f.Attach(m))
	f.Focus()

	var events int
	m.Subscribe(func(Selection) { events++ })

	for _, r := range "2026-01-05" {
		f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	require.Equal(t, "2026-01-05", f.Value())
	require.Equal(t, [2]string{"2026-01-05", "2026-01-05"}, formatted(a, m.Current()))
	require.Positive(t, events)
}

func TestUnfocusedFieldIgnoresKeys(t *testing.T) {
	a := testAdapter()
	m := daterange.New[time.Time](a)
	f := New(a)
	require.NoError(t, f.Attach(m))

	f.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	require.Equal(t, "", f.Value())
	require.True(t, m.Current().Empty())
}
