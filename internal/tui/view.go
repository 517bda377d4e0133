package tui

import (
	"fmt"
	"image/color"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/evanschultz/stack/internal/board"
	"github.com/evanschultz/stack/internal/domain"
	"github.com/mattn/go-runewidth"
)

var (
	accentColor = lipgloss.Color("62")
	mutedColor  = lipgloss.Color("241")
	dimColor    = lipgloss.Color("239")
	textColor   = lipgloss.Color("252")
	errorColor  = lipgloss.Color("203")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(textColor)
	mutedStyle    = lipgloss.NewStyle().Foreground(mutedColor)
	statusStyle   = lipgloss.NewStyle().Foreground(dimColor)
	errorStyle    = lipgloss.NewStyle().Bold(true).Foreground(errorColor)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	headingStyle  = lipgloss.NewStyle().Bold(true).Foreground(accentColor)
)

// priorityColors maps priorities to their card marker colors.
var priorityColors = map[domain.Priority]color.Color{
	domain.PriorityCritical: lipgloss.Color("196"),
	domain.PriorityHigh:     lipgloss.Color("220"),
	domain.PriorityMedium:   lipgloss.Color("39"),
	domain.PriorityLow:      lipgloss.Color("244"),
}

// epicColors maps named epic color tags to terminal colors.
var epicColors = map[string]string{
	"white":   "255",
	"gray":    "244",
	"grey":    "244",
	"red":     "196",
	"green":   "42",
	"yellow":  "220",
	"blue":    "33",
	"magenta": "201",
	"purple":  "135",
	"cyan":    "51",
	"orange":  "208",
}

// View renders the current state.
func (m Model) View() tea.View {
	if !m.ready {
		v := tea.NewView("loading...")
		v.AltScreen = true
		return v
	}
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render composes header, the mode body, overlays, and footer into one frame.
func (m Model) render() string {
	s := m.state
	header := m.renderHeader()
	footer := m.renderFooter()

	bodyHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if m.height <= 0 {
		bodyHeight = 0
	}

	var body string
	switch s.Mode.Base().Kind() {
	case board.ModeDetail:
		body = m.renderDetail(bodyHeight)
	case board.ModeEpicList:
		body = m.renderEpicList()
	default:
		body = m.renderBoard(bodyHeight)
	}
	if bodyHeight > 0 {
		body = fitLines(body, bodyHeight)
	}

	if overlay := m.renderOverlay(); overlay != "" {
		body = overlayOnContent(body, overlay, max(1, m.width), max(1, bodyHeight))
	}
	return header + "\n" + body + "\n" + footer
}

// epicLabel names the active filter: All Epics, the epic title, or Unknown when the epic is gone.
func (m Model) epicLabel() string {
	s := m.state
	if s.EpicFilter == nil {
		return "All Epics"
	}
	if epic, ok := s.EpicByID(*s.EpicFilter); ok {
		return epic.Title
	}
	return "Unknown"
}

// renderHeader renders the title bar.
func (m Model) renderHeader() string {
	header := titleStyle.Render(" Stack") + mutedStyle.Render(" │ ") + m.epicLabel()
	if !m.now.IsZero() && m.width > 0 {
		clock := statusStyle.Render(m.now.Local().Format("15:04"))
		gap := m.width - lipgloss.Width(header) - lipgloss.Width(clock) - 1
		if gap > 0 {
			header += strings.Repeat(" ", gap) + clock
		}
	}
	return header
}

// renderFooter renders the status line and the help bar.
func (m Model) renderFooter() string {
	lines := make([]string, 0, 2)
	if msg := m.state.StatusMessage; msg != "" {
		style := statusStyle
		if strings.HasPrefix(msg, "Error") {
			style = errorStyle
		}
		lines = append(lines, " "+style.Render(runewidth.Truncate(msg, max(1, m.width-2), "…")))
	}
	helpLine := lipgloss.NewStyle().
		Foreground(mutedColor).
		BorderTop(true).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(m.help.View(modeHelp{keys: m.keys, mode: m.state.Mode}))
	lines = append(lines, helpLine)
	return strings.Join(lines, "\n")
}

// columnWidth returns the inner width of one board column.
func (m Model) columnWidth() int {
	// Per-column overhead: border (2), horizontal padding (2), margin-right (1).
	const colOverhead = 5
	w := (m.width - board.ColumnCount*colOverhead) / board.ColumnCount
	return max(w, 12)
}

// renderBoard renders the four status columns and the optional preview pane.
func (m Model) renderBoard(height int) string {
	s := m.state
	colWidth := m.columnWidth()

	preview := ""
	if m.showPreview {
		preview = m.renderPreview(colWidth)
	}
	// Column border (2) plus heading (1) and its spacer (1).
	cardRows := height - 4
	if preview != "" {
		cardRows -= lipgloss.Height(preview)
	}
	cardRows = max(cardRows, 3)

	baseColStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		MarginRight(1).
		Width(colWidth + 2)

	views := make([]string, 0, board.ColumnCount)
	for i, status := range domain.Statuses() {
		stories := s.Columns[i]
		lines := []string{headingStyle.Render(fmt.Sprintf("%s (%d)", status.Label(), len(stories))), ""}
		if len(stories) == 0 {
			lines = append(lines, mutedStyle.Render("(empty)"))
		}
		start, end := visibleWindow(len(stories), s.SelectedCard[i], cardRows)
		for idx := start; idx < end; idx++ {
			selected := i == s.SelectedColumn && idx == s.SelectedCard[i]
			lines = append(lines, renderCard(stories[idx], colWidth, selected))
		}
		style := baseColStyle
		if i == s.SelectedColumn {
			style = style.BorderForeground(accentColor)
		}
		views = append(views, style.Render(strings.Join(lines, "\n")))
	}
	out := lipgloss.JoinHorizontal(lipgloss.Top, views...)
	if preview != "" {
		out += "\n" + preview
	}
	return out
}

// renderCard renders one story line: colored priority initial then the truncated title.
func renderCard(story domain.Story, width int, selected bool) string {
	marker := lipgloss.NewStyle().Bold(true).Foreground(priorityColor(story.Priority)).Render(story.Priority.Initial())
	title := runewidth.Truncate(story.Title, max(1, width-2), "…")
	if selected {
		return marker + " " + selectedStyle.Render(title)
	}
	return marker + " " + title
}

// renderPreview renders the selected story description under the board.
func (m Model) renderPreview(colWidth int) string {
	width := max(20, min(m.width-4, (colWidth+5)*board.ColumnCount-3))
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(0, 1).
		Width(width)
	story, ok := m.state.SelectedStory()
	if !ok {
		return style.Render(mutedStyle.Render("No story selected"))
	}
	body := strings.TrimSpace(story.Description)
	if body == "" {
		return style.Render(titleStyle.Render(story.Title) + "\n" + mutedStyle.Render("(no description)"))
	}
	lines := strings.Split(body, "\n")
	if len(lines) > 3 {
		lines = append(lines[:3], "…")
	}
	for i, line := range lines {
		lines[i] = runewidth.Truncate(line, max(1, width-2), "…")
	}
	return style.Render(titleStyle.Render(story.Title) + "\n" + strings.Join(lines, "\n"))
}

// renderDetail renders the open story, scrolled by the state's scroll offset.
func (m Model) renderDetail(height int) string {
	s := m.state
	story := s.CurrentStory
	if story == nil {
		return mutedStyle.Render("No story selected")
	}
	width := max(24, m.width-4)

	epic := "none"
	if story.EpicID != nil {
		epic = "Unknown"
		if e, ok := s.EpicByID(*story.EpicID); ok {
			epic = e.Title
		}
	}
	lines := []string{
		titleStyle.Render(story.Title),
		fmt.Sprintf("%s  %s  %s",
			mutedStyle.Render("Status: ")+story.Status.Label(),
			mutedStyle.Render("Priority: ")+lipgloss.NewStyle().Foreground(priorityColor(story.Priority)).Render(story.Priority.Label()),
			mutedStyle.Render("Epic: ")+epic,
		),
		statusStyle.Render(fmt.Sprintf("Created %s · Updated %s", formatTimestamp(story.CreatedAt), formatTimestamp(story.UpdatedAt))),
		"",
	}
	if body := m.markdown.render(story.Description, width); body != "" {
		lines = append(lines, strings.Split(body, "\n")...)
	} else {
		lines = append(lines, mutedStyle.Render("(no description)"))
	}

	lines = append(lines, "", headingStyle.Render(fmt.Sprintf("Tasks (%d/%d)", domain.CountDone(s.Tasks), len(s.Tasks))))
	if len(s.Tasks) == 0 {
		lines = append(lines, mutedStyle.Render("  no tasks; press a to add one"))
	}
	for i, task := range s.Tasks {
		mark := "[ ]"
		if task.Done {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, runewidth.Truncate(task.Title, max(1, width-6), "…"))
		if i == s.SelectedTask {
			lines = append(lines, selectedStyle.Render("› "+line))
			continue
		}
		lines = append(lines, "  "+line)
	}

	offset := s.ScrollOffset
	if height > 0 {
		offset = min(offset, max(0, len(lines)-height))
	}
	offset = clamp(offset, 0, max(0, len(lines)-1))
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(lines[offset:], "\n"))
}

// renderEpicList renders the All Epics row followed by one row per epic.
func (m Model) renderEpicList() string {
	s := m.state
	rows := []string{headingStyle.Render("Epics"), ""}
	rows = append(rows, epicRow("All Epics", nil, s.ListSelection == 0, s.EpicFilter == nil))
	for i, epic := range s.Epics {
		active := s.EpicFilter != nil && *s.EpicFilter == epic.ID
		swatch := lipgloss.NewStyle().Foreground(epicColor(epic.Color))
		rows = append(rows, epicRow(epic.Title, &swatch, s.ListSelection == i+1, active))
	}
	if len(s.Epics) == 0 {
		rows = append(rows, "", mutedStyle.Render("  no epics yet; press n to create one"))
	}
	return lipgloss.NewStyle().Padding(0, 1).Render(strings.Join(rows, "\n"))
}

// epicRow renders one epic list row with cursor, swatch, and active-filter marker.
func epicRow(title string, swatch *lipgloss.Style, selected, active bool) string {
	cursor := "  "
	if selected {
		cursor = "› "
	}
	dot := " "
	if swatch != nil {
		dot = swatch.Render("●")
	}
	label := title
	if selected {
		label = selectedStyle.Render(title)
	}
	if active {
		label += mutedStyle.Render(" (active)")
	}
	return cursor + dot + " " + label
}

// renderOverlay renders the Input or Confirm dialog, if any.
func (m Model) renderOverlay() string {
	s := m.state
	width := max(24, min(m.width-8, 72))
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accentColor).
		Padding(0, 1).
		Width(width)
	if target, ok := s.Mode.InputTarget(); ok {
		lines := []string{
			headingStyle.Render("Input (Enter to confirm, Esc to cancel)"),
			mutedStyle.Render(target.Label()),
			s.InputBuffer + "█",
		}
		return box.Render(strings.Join(lines, "\n"))
	}
	if action, ok := s.Mode.ConfirmAction(); ok {
		return box.BorderForeground(errorColor).Render(errorStyle.Render(action.Prompt()))
	}
	return ""
}

// priorityColor returns the marker color for p.
func priorityColor(p domain.Priority) color.Color {
	if c, ok := priorityColors[p]; ok {
		return c
	}
	return mutedColor
}

// epicColor maps a color tag to a terminal color; hex and ANSI codes pass through.
func epicColor(tag string) color.Color {
	if code, ok := epicColors[strings.ToLower(tag)]; ok {
		return lipgloss.Color(code)
	}
	if tag != "" {
		return lipgloss.Color(tag)
	}
	return lipgloss.Color(epicColors[domain.DefaultEpicColor])
}
