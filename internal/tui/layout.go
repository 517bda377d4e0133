package tui

import (
	"strings"
	"time"

	"charm.land/lipgloss/v2"
)

// clamp bounds v to [minV, maxV]; an empty range yields minV.
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// visibleWindow returns the [start, end) slice of n rows that keeps selected in view.
func visibleWindow(n, selected, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := clamp(selected-rows+1, 0, n-rows)
	return start, start + rows
}

// fitLines pads or cuts content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay on top of base.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centered := lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, overlay)
	overlayLayer := lipgloss.NewLayer(centered).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}

// formatTimestamp renders a stored timestamp in local time.
func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
