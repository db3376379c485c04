package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/output"
	"github.com/srivarshini-21/india-vaccination-dashboard/panels"
	"github.com/srivarshini-21/india-vaccination-dashboard/placement"
)

// TooltipLines is the text of a region's tooltip.
func TooltipLines(rec dataset.Record, c *classify.Classifier, pinned bool) []string {
	tier, _ := c.Region(rec.ID)
	lines := []string{
		rec.Name,
		fmt.Sprintf("Total doses: %s", output.FormatNumber(rec.Overall)),
		fmt.Sprintf("Coverage:    %s", tier),
	}
	for _, s := range panels.Breakdown(rec) {
		lines = append(lines, fmt.Sprintf("%-21s %s", s.Label+":", output.FormatNumber(s.Value)))
	}
	if pinned {
		lines = append(lines, "[pinned] Esc or click outside to close")
	}
	return lines
}

// tooltipSize is the size of the box around lines, border included.
func tooltipSize(lines []string) placement.Size {
	w := 0
	for _, l := range lines {
		if n := len([]rune(l)); n > w {
			w = n
		}
	}
	return placement.Size{W: w + 4, H: len(lines) + 2}
}

// drawTooltip draws lines in a bordered box filling r.
func drawTooltip(screen tcell.Screen, r placement.Rect, lines []string) {
	if r.W < 2 || r.H < 2 {
		return
	}
	style := tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	border := style.Foreground(tcell.GetColor("#1e40af"))

	right, bottom := r.X+r.W-1, r.Y+r.H-1
	for y := r.Y; y <= bottom; y++ {
		for x := r.X; x <= right; x++ {
			ch, st := ' ', style
			switch {
			case (x == r.X || x == right) && (y == r.Y || y == bottom):
				ch, st = cornerRune(x == r.X, y == r.Y), border
			case y == r.Y || y == bottom:
				ch, st = '─', border
			case x == r.X || x == right:
				ch, st = '│', border
			}
			screen.SetContent(x, y, ch, nil, st)
		}
	}

	for i, line := range lines {
		y := r.Y + 1 + i
		if y >= bottom {
			break
		}
		lineStyle := style
		if i == 0 {
			lineStyle = style.Bold(true)
		}
		x := r.X + 2
		for _, ch := range line {
			if x >= right-1 {
				break
			}
			screen.SetContent(x, y, ch, nil, lineStyle)
			x++
		}
	}
}

func cornerRune(left, top bool) rune {
	switch {
	case left && top:
		return '┌'
	case top:
		return '┐'
	case left:
		return '└'
	default:
		return '┘'
	}
}
