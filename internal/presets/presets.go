// Package presets provides named date ranges: relative quick ranges computed
// from today, and user ranges saved in sqlite or imported from TOML.
package presets

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/agnivade/levenshtein"
	"github.com/google/uuid"

	"github.com/jask/rangepick/internal/dateadapter"
	"github.com/jask/rangepick/internal/daterange"
)

// Preset is a named inclusive range.
type Preset struct {
	ID         string
	Name       string
	From       time.Time
	To         time.Time
	Builtin    bool
	UseCount   int
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// Selection returns the preset as a picker selection.
func (p Preset) Selection() daterange.Selection[time.Time] {
	return daterange.Of(p.From, p.To)
}

func builtinID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("preset:"+name)).String()
}

// Builtins returns the relative ranges anchored on a.Today().
func Builtins(a *dateadapter.Adapter) []Preset {
	today := a.Today()
	month := a.StartOfMonth(today)
	lastMonth := a.AddMonths(month, -1)
	year := a.Date(today.Year(), time.January, 1)

	mk := func(name string, from, to time.Time) Preset {
		return Preset{ID: builtinID(name), Name: name, From: from, To: to, Builtin: true}
	}
	return []Preset{
		mk("Today", today, today),
		mk("Yesterday", a.AddDays(today, -1), a.AddDays(today, -1)),
		mk("Last 7 days", a.AddDays(today, -6), today),
		mk("Last 30 days", a.AddDays(today, -29), today),
		mk("This month", month, a.AddDays(month, a.DaysInMonth(month)-1)),
		mk("Last month", lastMonth, a.AddDays(month, -1)),
		mk("Last 3 months", a.AddMonths(today, -3), today),
		mk("Year to date", year, today),
		mk("Last year", a.Date(today.Year()-1, time.January, 1), a.Date(today.Year()-1, time.December, 31)),
	}
}

// Match ranks presets against query. Names containing the query come first
// (prefix before infix), then names within a small edit distance; everything
// else is dropped. An empty query returns items unchanged.
func Match(items []Preset, query string) []Preset {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Preset(nil), items...)
	}
	type scored struct {
		p     Preset
		score int
	}
	var hits []scored
	for _, p := range items {
		name := strings.ToLower(p.Name)
		switch idx := strings.Index(name, q); {
		case idx == 0:
			hits = append(hits, scored{p, 0})
		case idx > 0:
			hits = append(hits, scored{p, 1})
		default:
			if d := distance(q, name); d <= maxDistance(q) {
				hits = append(hits, scored{p, 2 + d})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score < hits[j].score })
	out := make([]Preset, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.p)
	}
	return out
}

// distance is the smallest edit distance between q and either the start of
// name or any whole word of it.
func distance(q, name string) int {
	best := levenshtein.ComputeDistance(q, truncateRunes(name, len([]rune(q))))
	for _, w := range strings.Fields(name) {
		best = min(best, levenshtein.ComputeDistance(q, w))
	}
	return best
}

// maxDistance allows one typo per four characters, at least one.
func maxDistance(q string) int {
	return max(1, len([]rune(q))/4)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

type presetFile struct {
	Preset []struct {
		Name string `toml:"name"`
		From string `toml:"from"`
		To   string `toml:"to"`
	} `toml:"preset"`
}

// LoadFile reads [[preset]] tables (name, from, to) from a TOML file, parsing
// dates with the adapter's layout.
func LoadFile(path string, a *dateadapter.Adapter) ([]Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets file: %w", err)
	}
	var f presetFile
	if _, err := toml.Decode(string(raw), &f); err != nil {
		return nil, fmt.Errorf("decode presets file %s: %w", path, err)
	}
	out := make([]Preset, 0, len(f.Preset))
	for i, entry := range f.Preset {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, fmt.Errorf("preset %d: %w", i+1, ErrEmptyName)
		}
		from, err := a.Parse(entry.From)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		to, err := a.Parse(entry.To)
		if err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		if a.Compare(from, to) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrInvertedRange, name)
		}
		out = append(out, Preset{Name: name, From: from, To: to})
	}
	return out, nil
}
