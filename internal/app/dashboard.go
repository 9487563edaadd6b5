package app

import (
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ubhkeys/Mindcalls1/internal/api"
	"github.com/ubhkeys/Mindcalls1/internal/ui"
)

func (m Model) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.filtering {
		return m.handleFilterKey(msg)
	}
	if m.chatOpen {
		return m.handleChatKey(msg)
	}

	switch msg.String() {
	case KeyQuit:
		return m, tea.Quit

	case KeyLogout:
		return m.forceLogout()

	case KeyRetry:
		if m.loadError != "" {
			m.loading = true
			m.loadError = ""
			return m, m.fetchBatchCmd(false)
		}
		return m, nil

	case KeyFilter:
		m.filtering = true
		m.focusedPanel = FocusInterviews
		m.filterInput.SetValue(m.filter)
		m.filterInput.Focus()
		if !m.supermarketsLoaded {
			// Fetched once; the names hint at what the filter can match.
			return m, supermarketsCmd(m.client)
		}
		return m, nil

	case KeyChat:
		m.chatOpen = true
		m.chatInput.Focus()
		return m, nil

	case KeyTab:
		if m.focusedPanel == FocusThemes {
			m.focusedPanel = FocusInterviews
		} else {
			m.focusedPanel = FocusThemes
		}
		return m, nil

	case KeyJ, KeyDown:
		if m.focusedPanel == FocusThemes {
			if m.selectedTheme < len(m.themes)-1 {
				m.selectedTheme++
			}
		} else {
			if m.selectedInterview < len(m.filteredInterviews())-1 {
				m.selectedInterview++
			}
		}
		return m, nil

	case KeyK, KeyUp:
		if m.focusedPanel == FocusThemes {
			if m.selectedTheme > 0 {
				m.selectedTheme--
			}
		} else {
			if m.selectedInterview > 0 {
				m.selectedInterview--
			}
		}
		return m, nil

	case KeyEnter:
		if m.focusedPanel == FocusThemes {
			if m.selectedTheme < len(m.themes) {
				m.themes[m.selectedTheme].Expanded = !m.themes[m.selectedTheme].Expanded
			}
			return m, nil
		}
		return m.openSelectedInterview()
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEnter:
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case KeyEsc:
		m.filtering = false
		m.filter = ""
		m.filterInput.SetValue("")
		m.filterInput.Blur()
		m.selectedInterview = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.filter = m.filterInput.Value()
	if m.selectedInterview >= len(m.filteredInterviews()) {
		m.selectedInterview = max(0, len(m.filteredInterviews())-1)
	}
	return m, cmd
}

func (m Model) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeyEsc:
		m.chatOpen = false
		m.chatInput.Blur()
		return m, nil
	case KeyEnter:
		question := strings.TrimSpace(m.chatInput.Value())
		if question == "" || m.chatBusy {
			return m, nil
		}
		m.chatBusy = true
		m.chatInput.SetValue("")
		m.chatLog = append(m.chatLog, chatEntry{Question: question, Pending: true})
		return m, chatCmd(m.client, question)
	}

	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m Model) openSelectedInterview() (tea.Model, tea.Cmd) {
	list := m.filteredInterviews()
	if m.selectedInterview >= len(list) {
		return m, nil
	}
	id := list[m.selectedInterview].ID

	m.view = viewDetail
	m.detail = nil
	m.detailLoading = true
	m.detailError = ""
	m.selectedSegment = 0
	m.editingSegment = ""
	m.savingEdit = false
	m.tagPanels = map[string]*tagPanel{}

	cmds := []tea.Cmd{detailCmd(m.client, id)}
	if !m.vocabFetched {
		// Theme vocabulary is fetched once per editor mount.
		cmds = append(cmds, vocabCmd(m.client))
	}
	return m, tea.Batch(cmds...)
}

// filteredInterviews applies the client-side supermarket substring filter.
func (m Model) filteredInterviews() []api.Interview {
	if m.filter == "" {
		return m.interviews
	}
	needle := strings.ToLower(m.filter)
	var out []api.Interview
	for _, iv := range m.interviews {
		if strings.Contains(strings.ToLower(iv.Supermarket), needle) {
			out = append(out, iv)
		}
	}
	return out
}

func (m Model) viewDashboard() string {
	var sections []string

	sections = append(sections, m.renderDashboardHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch {
	case m.loading:
		sections = append(sections, "")
		sections = append(sections, ui.DimStyle.Render("  Loading dashboard..."))
	case m.loadError != "":
		sections = append(sections, "")
		sections = append(sections, ui.ErrorStyle.Render("  "+m.loadError))
		sections = append(sections, ui.DimStyle.Render("  Press r to retry."))
	case m.chatOpen:
		sections = append(sections, m.renderChat())
	default:
		sections = append(sections, m.renderStatStrip())
		sections = append(sections, "")
		sections = append(sections, m.renderRatingsPanel())
		sections = append(sections, "")
		sections = append(sections, m.renderThemesPanel())
		sections = append(sections, "")
		sections = append(sections, m.renderInterviewsPanel())
	}

	if m.statusError != "" {
		sections = append(sections, ui.ErrorStyle.Render("Error: ")+ui.ErrorTextStyle.Render(m.statusError))
	}
	sections = append(sections, m.renderDashboardFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderDashboardHeader() string {
	title := ui.TitleStyle.Render("MINDCALLS")

	var assistant string
	if m.overview.AssistantName != "" {
		assistant = ui.DimStyle.Render(" — " + m.overview.AssistantName)
	}

	var who string
	if m.sess != nil {
		who = ui.DimStyle.Render(fmt.Sprintf("  %s [%s]", m.sess.Email, m.sess.Level))
	}

	return title + assistant + who
}

func (m Model) renderStatStrip() string {
	o := m.overview

	trendStyle := ui.TrendUpStyle
	trendMark := "▲"
	if o.TrendPercentage < 0 {
		trendStyle = ui.TrendDownStyle
		trendMark = "▼"
	}

	parts := []string{
		ui.StatLabelStyle.Render("Interviews ") + ui.StatValueStyle.Render(fmt.Sprintf("%d", o.TotalInterviews)),
		ui.StatLabelStyle.Render("Active ") + ui.StatValueStyle.Render(fmt.Sprintf("%d", o.ActiveInterviews)),
		ui.StatLabelStyle.Render("Avg duration ") + ui.StatValueStyle.Render(formatDuration(int(o.AvgDuration))),
		ui.StatLabelStyle.Render("Trend ") + trendStyle.Render(fmt.Sprintf("%s %.1f%%", trendMark, o.TrendPercentage)),
	}
	return "  " + strings.Join(parts, "   ")
}

func (m Model) renderRatingsPanel() string {
	var lines []string
	lines = append(lines, ui.PanelTitleStyle.Render("  RATINGS"))

	if len(m.ratings) == 0 {
		lines = append(lines, ui.DimStyle.Render("    No ratings yet"))
		return strings.Join(lines, "\n")
	}

	labelWidth := 0
	for _, r := range m.ratings {
		if w := lipgloss.Width(r.Label); w > labelWidth {
			labelWidth = w
		}
	}

	barWidth := 20
	for _, key := range sortedRatingKeys(m.ratings) {
		r := m.ratings[key]
		label := padRight(r.Label, labelWidth)
		bar := ui.RatingBar(r.Average, barWidth, r.Color)
		avg := ui.RatingStyle(r.Color).Render(fmt.Sprintf("%4.1f", r.Average))
		lines = append(lines, fmt.Sprintf("    %s  %s %s", label, bar, avg))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderThemesPanel() string {
	var lines []string

	title := "  THEMES"
	if m.focusedPanel == FocusThemes {
		lines = append(lines, ui.PanelTitleActiveStyle.Render(title))
	} else {
		lines = append(lines, ui.PanelTitleStyle.Render(title))
	}

	if len(m.themes) == 0 {
		lines = append(lines, ui.DimStyle.Render("    No themes yet"))
		return strings.Join(lines, "\n")
	}

	barWidth := 20
	for i, row := range m.themes {
		th := row.Theme
		b := th.SentimentBreakdown

		marker := "▸"
		if row.Expanded {
			marker = "▾"
		}

		name := th.Name
		if th.IsNew {
			name += " " + ui.NewBadgeStyle.Render("NEW")
		}

		prefix := "    "
		if i == m.selectedTheme && m.focusedPanel == FocusThemes {
			prefix = ui.SelectedStyle.Render("  > ")
			name = ui.SelectedStyle.Render(th.Name)
			if th.IsNew {
				name += " " + ui.NewBadgeStyle.Render("NEW")
			}
		}

		bar := ui.SentimentBar(b.Positive, b.Neutral, b.Negative, barWidth)
		pcts := fmt.Sprintf("%d%%/%d%%/%d%%",
			ui.Percent(b.Positive, th.TotalMentions),
			ui.Percent(b.Neutral, th.TotalMentions),
			ui.Percent(b.Negative, th.TotalMentions))

		lines = append(lines, fmt.Sprintf("%s%s %s  %s %s %s",
			prefix, marker, name, bar,
			ui.DimStyle.Render(fmt.Sprintf("%d mentions", th.TotalMentions)),
			ui.DimStyle.Render(pcts)))

		if row.Expanded {
			lines = append(lines, m.renderSampleQuotes(th)...)
		}
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSampleQuotes(th api.Theme) []string {
	var lines []string
	for _, sentiment := range []string{api.SentimentPositive, api.SentimentNeutral, api.SentimentNegative} {
		for _, q := range th.SampleQuotes[sentiment] {
			mark := ui.SentimentStyle(sentiment).Render("●")
			text := q.Text
			meta := ui.DimStyle.Render(fmt.Sprintf(" — %s, %s", q.Supermarket, formatTimestamp(q.Timestamp)))
			for j, wl := range wrapText(text, max(20, m.width-16)) {
				if j == 0 {
					lines = append(lines, "      "+mark+" "+wl)
				} else {
					lines = append(lines, "        "+wl)
				}
			}
			if len(lines) > 0 {
				lines[len(lines)-1] += meta
			}
		}
	}
	return lines
}

func (m Model) renderInterviewsPanel() string {
	var lines []string

	list := m.filteredInterviews()
	title := fmt.Sprintf("  RESPONSES (%d)", len(list))
	if m.focusedPanel == FocusInterviews {
		lines = append(lines, ui.PanelTitleActiveStyle.Render(title))
	} else {
		lines = append(lines, ui.PanelTitleStyle.Render(title))
	}

	if m.filtering {
		lines = append(lines, "    "+m.filterInput.View())
		if len(m.supermarkets) > 0 {
			lines = append(lines, ui.DimStyle.Render("    known: "+strings.Join(m.supermarkets, ", ")))
		}
	} else if m.filter != "" {
		lines = append(lines, ui.DimStyle.Render("    filter: "+m.filter))
	}

	if len(list) == 0 {
		lines = append(lines, ui.DimStyle.Render("    No interviews"))
		return strings.Join(lines, "\n")
	}

	visible := 10
	start, end := visibleRange(m.selectedInterview, len(list), visible)
	for i := start; i < end; i++ {
		iv := list[i]

		overall := ""
		if v, ok := iv.Ratings["samlet_karakter"]; ok {
			overall = fmt.Sprintf("  %.0f/10", v)
		}

		status := iv.Status
		if status == "active" {
			status = ui.TrendUpStyle.Render(status)
		} else {
			status = ui.DimStyle.Render(status)
		}

		line := fmt.Sprintf("%s  %s  %s  %s%s",
			formatTimestamp(iv.Timestamp),
			padRight(iv.Supermarket, 24),
			formatDuration(iv.Duration),
			status,
			ui.DimStyle.Render(overall))

		if i == m.selectedInterview && m.focusedPanel == FocusInterviews {
			lines = append(lines, ui.SelectedStyle.Render("  > ")+line)
		} else {
			lines = append(lines, "    "+line)
		}
	}
	if end < len(list) {
		lines = append(lines, ui.DimStyle.Render(fmt.Sprintf("    ... %d more", len(list)-end)))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderChat() string {
	var lines []string
	lines = append(lines, ui.PanelTitleActiveStyle.Render("  ASK THE DATA"))
	lines = append(lines, "")

	for _, entry := range m.chatLog {
		lines = append(lines, ui.SelectedStyle.Render("  You: ")+entry.Question)
		if entry.Pending {
			lines = append(lines, ui.DimStyle.Render("  ...thinking"))
		} else {
			for _, wl := range wrapText(entry.Answer, max(20, m.width-8)) {
				lines = append(lines, "  "+wl)
			}
		}
		lines = append(lines, "")
	}

	lines = append(lines, "  "+m.chatInput.View())
	return strings.Join(lines, "\n")
}

func (m Model) renderDashboardFooter() string {
	var parts []string

	if m.chatOpen {
		parts = append(parts,
			ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Ask"),
			ui.FooterKeyStyle.Render("Esc")+ui.FooterDescStyle.Render(" Close"))
	} else if m.filtering {
		parts = append(parts,
			ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Apply"),
			ui.FooterKeyStyle.Render("Esc")+ui.FooterDescStyle.Render(" Clear"))
	} else {
		parts = append(parts,
			ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Panel"),
			ui.FooterKeyStyle.Render("j/k")+ui.FooterDescStyle.Render(" Nav"),
			ui.FooterKeyStyle.Render("Enter")+ui.FooterDescStyle.Render(" Open"),
			ui.FooterKeyStyle.Render("/")+ui.FooterDescStyle.Render(" Filter"),
			ui.FooterKeyStyle.Render("c")+ui.FooterDescStyle.Render(" Chat"),
			ui.FooterKeyStyle.Render("ctrl+l")+ui.FooterDescStyle.Render(" Logout"),
			ui.FooterKeyStyle.Render("q")+ui.FooterDescStyle.Render(" Quit"))
	}

	return strings.Join(parts, "  ")
}

func sortedRatingKeys(ratings map[string]api.Rating) []string {
	keys := make([]string, 0, len(ratings))
	for k := range ratings {
		keys = append(keys, k)
	}
	// Overall rating last, rest alphabetical.
	sort.Slice(keys, func(i, j int) bool {
		return ratingKeyLess(keys[i], keys[j])
	})
	return keys
}

func ratingKeyLess(a, b string) bool {
	const overall = "samlet_karakter"
	if a == overall {
		return false
	}
	if b == overall {
		return true
	}
	return a < b
}

func formatDuration(seconds int) string {
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}
	return fmt.Sprintf("%dm%02ds", seconds/60, seconds%60)
}

func formatTimestamp(ts string) string {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return t.Format("02 Jan 15:04")
}

// visibleRange windows a list of total items around the selection.
func visibleRange(selected, total, visible int) (int, int) {
	if total <= visible {
		return 0, total
	}
	start := selected - visible/2
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > total {
		end = total
		start = end - visible
	}
	return start, end
}

// Helpers

func padRight(s string, width int) string {
	// Display cells, not bytes: Danish names hold multi-byte runes.
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
