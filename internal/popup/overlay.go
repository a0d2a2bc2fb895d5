package popup

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Anchor is the on-screen box the popup attaches to, in cells.
type Anchor struct {
	X, Y          int
	Width, Height int
}

// Position computes the popup's top-left cell. The popup goes below the
// anchor when it fits, above when it fits there, and otherwise below clamped
// to the viewport. x is clamped so the popup stays on screen.
func Position(anchor Anchor, popupW, popupH, viewW, viewH int) (x, y int) {
	x = anchor.X
	if viewW > 0 && x+popupW > viewW {
		x = viewW - popupW
	}
	if x < 0 {
		x = 0
	}

	below := anchor.Y + anchor.Height
	above := anchor.Y - popupH
	switch {
	case viewH <= 0 || below+popupH <= viewH:
		return x, below
	case above >= 0:
		return x, above
	}
	y = viewH - popupH
	if y < 0 {
		y = 0
	}
	return x, y
}

// Place composites popup over base next to anchor.
func Place(base, popup string, anchor Anchor, viewW, viewH int) string {
	lines := splitLines(popup)
	popupW := maxLineWidth(lines)
	x, y := Position(anchor, popupW, len(lines), viewW, viewH)
	baseLines := splitLines(base)
	if viewW <= 0 {
		viewW = max(maxLineWidth(baseLines), x+popupW)
	}
	if viewH <= 0 {
		viewH = max(len(baseLines), y+len(lines))
	}
	return overlayAt(base, popup, x, y, viewW, viewH)
}

// overlayAt draws overlay on top of base at cell (x, y). Base rows are
// extended as needed so the overlay is never dropped for a short base.
func overlayAt(base, overlay string, x, y, width, height int) string {
	baseLines := splitLines(base)
	overlayLines := splitLines(overlay)
	for len(baseLines) < min(y+len(overlayLines), height) {
		baseLines = append(baseLines, "")
	}
	overlayWidth := maxLineWidth(overlayLines)
	for i, line := range overlayLines {
		row := y + i
		if row < 0 || row >= len(baseLines) || row >= height {
			continue
		}
		target := padRight(baseLines[row], width)
		left := ansi.Truncate(target, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		overlayLine := padRight(line, overlayWidth)
		pos := x + ansi.StringWidth(overlayLine)
		right := ""
		if width > 0 {
			right = ansi.TruncateLeft(target, pos, "")
		}
		baseLines[row] = left + overlayLine + right
	}
	return strings.Join(baseLines, "\n")
}

func splitLines(s string) []string {
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}

func maxLineWidth(lines []string) int {
	m := 0
	for _, line := range lines {
		if w := ansi.StringWidth(line); w > m {
			m = w
		}
	}
	return m
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
