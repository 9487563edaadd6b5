package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ubhkeys/Mindcalls1/internal/api"
	"github.com/ubhkeys/Mindcalls1/internal/ui"
)

// Tag panel field focus order.
const (
	tagFocusSentiment = iota
	tagFocusTheme
	tagFocusNotes
)

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingSegment != "" {
		return m.handleEditKey(msg)
	}
	if panel, ok := m.tagPanels[m.selectedSegmentID()]; ok {
		// Navigation still moves the selection while a panel is open, so
		// further panels can be opened on other segments. Only the notes
		// field claims these keys as input.
		if panel.focus != tagFocusNotes {
			switch msg.String() {
			case KeyJ, KeyDown:
				return m.moveSegment(1)
			case KeyK, KeyUp:
				return m.moveSegment(-1)
			}
		}
		return m.handleTagPanelKey(msg, panel)
	}

	switch msg.String() {
	case KeyQuit:
		return m, tea.Quit

	case KeyLogout:
		return m.forceLogout()

	case KeyEsc:
		m.view = viewDashboard
		m.detail = nil
		m.detailError = ""
		m.editingSegment = ""
		m.tagPanels = map[string]*tagPanel{}
		return m, nil

	case KeyRetry:
		if m.detailError != "" && m.detail == nil {
			// Retry needs the id; it lives in the dashboard selection.
			return m.openSelectedInterview()
		}
		return m, nil

	case KeyJ, KeyDown:
		return m.moveSegment(1)

	case KeyK, KeyUp:
		return m.moveSegment(-1)

	case KeyEdit:
		return m.startEdit()

	case KeyTag:
		return m.toggleTagPanel()
	}

	return m, nil
}

func (m Model) moveSegment(delta int) (tea.Model, tea.Cmd) {
	if m.detail == nil {
		return m, nil
	}
	next := m.selectedSegment + delta
	if next >= 0 && next < len(m.detail.Segments) {
		m.selectedSegment = next
	}
	return m, nil
}

// selectedSegmentID returns the id of the selected segment, or "".
func (m Model) selectedSegmentID() string {
	if m.detail == nil || m.selectedSegment >= len(m.detail.Segments) {
		return ""
	}
	return m.detail.Segments[m.selectedSegment].ID
}

// startEdit moves the selected segment into the editing slot. Only one
// segment app-wide may be editing: any previous edit buffer is discarded.
func (m Model) startEdit() (tea.Model, tea.Cmd) {
	if m.detail == nil || m.selectedSegment >= len(m.detail.Segments) {
		return m, nil
	}
	seg := m.detail.Segments[m.selectedSegment]
	if !seg.Editable || !m.canEdit() {
		return m, nil
	}
	// Tagging and editing are mutually exclusive per segment.
	if _, open := m.tagPanels[seg.ID]; open {
		return m, nil
	}

	ta := textarea.New()
	ta.SetValue(seg.DisplayText())
	ta.SetWidth(max(30, m.width-12))
	ta.SetHeight(4)
	ta.Focus()

	m.editingSegment = seg.ID
	m.editBuffer = ta
	m.savingEdit = false
	return m, textarea.Blink
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case KeySave:
		if m.savingEdit || m.detail == nil {
			return m, nil
		}
		m.savingEdit = true
		return m, saveEditCmd(m.client, m.detail.ID, m.editingSegment, m.editBuffer.Value())

	case KeyEsc:
		// Cancel discards the buffer with no network call.
		m.editingSegment = ""
		m.savingEdit = false
		return m, nil
	}

	var cmd tea.Cmd
	m.editBuffer, cmd = m.editBuffer.Update(msg)
	return m, cmd
}

// toggleTagPanel opens or closes the tagging panel for the selected
// segment. Panels are per-segment state; several may be open at once.
func (m Model) toggleTagPanel() (tea.Model, tea.Cmd) {
	if m.detail == nil || m.selectedSegment >= len(m.detail.Segments) {
		return m, nil
	}
	seg := m.detail.Segments[m.selectedSegment]
	if !seg.Editable || !m.canEdit() {
		return m, nil
	}
	if seg.ID == m.editingSegment {
		return m, nil
	}

	if _, open := m.tagPanels[seg.ID]; open {
		delete(m.tagPanels, seg.ID)
		return m, nil
	}

	panel := &tagPanel{sentiment: api.SentimentUnset, themeIdx: -1}
	notes := textinput.New()
	notes.Placeholder = "notes"
	notes.CharLimit = 256
	if seg.Tags != nil {
		if seg.Tags.Sentiment != "" {
			panel.sentiment = seg.Tags.Sentiment
		}
		for i, th := range m.availableThemes {
			if th == seg.Tags.Theme {
				panel.themeIdx = i
				break
			}
		}
		notes.SetValue(seg.Tags.Notes)
	}
	panel.notes = notes
	m.tagPanels[seg.ID] = panel
	return m, nil
}

func (m Model) handleTagPanelKey(msg tea.KeyMsg, panel *tagPanel) (tea.Model, tea.Cmd) {
	segID := m.selectedSegmentID()

	switch msg.String() {
	case KeyEsc:
		// Cancel: close without submitting, existing tags untouched.
		delete(m.tagPanels, segID)
		return m, nil

	case KeySave:
		if panel.saving || m.detail == nil {
			return m, nil
		}
		panel.saving = true
		theme := ""
		if panel.themeIdx >= 0 && panel.themeIdx < len(m.availableThemes) {
			theme = m.availableThemes[panel.themeIdx]
		}
		return m, saveTagCmd(m.client, m.detail.ID, segID, panel.sentiment, theme, panel.notes.Value())

	case KeyTab:
		panel.focus = (panel.focus + 1) % 3
		if panel.focus == tagFocusNotes {
			panel.notes.Focus()
		} else {
			panel.notes.Blur()
		}
		return m, nil

	case KeyTag:
		if panel.focus != tagFocusNotes {
			delete(m.tagPanels, segID)
			return m, nil
		}

	case KeyLeft, KeyRight, KeySpace:
		switch panel.focus {
		case tagFocusSentiment:
			if msg.String() == KeyLeft {
				panel.sentiment = prevSentiment(panel.sentiment)
			} else {
				panel.sentiment = nextSentiment(panel.sentiment)
			}
			return m, nil
		case tagFocusTheme:
			if len(m.availableThemes) == 0 {
				return m, nil
			}
			if msg.String() == KeyLeft {
				panel.themeIdx--
				if panel.themeIdx < -1 {
					panel.themeIdx = len(m.availableThemes) - 1
				}
			} else {
				panel.themeIdx++
				if panel.themeIdx >= len(m.availableThemes) {
					panel.themeIdx = -1
				}
			}
			return m, nil
		}
	}

	if panel.focus == tagFocusNotes {
		var cmd tea.Cmd
		panel.notes, cmd = panel.notes.Update(msg)
		return m, cmd
	}
	return m, nil
}

var sentimentCycle = []string{
	api.SentimentPositive,
	api.SentimentNeutral,
	api.SentimentNegative,
	api.SentimentUnset,
}

func nextSentiment(s string) string {
	for i, v := range sentimentCycle {
		if v == s {
			return sentimentCycle[(i+1)%len(sentimentCycle)]
		}
	}
	return sentimentCycle[0]
}

func prevSentiment(s string) string {
	for i, v := range sentimentCycle {
		if v == s {
			return sentimentCycle[(i+len(sentimentCycle)-1)%len(sentimentCycle)]
		}
	}
	return sentimentCycle[0]
}

func (m Model) viewDetail() string {
	var sections []string

	sections = append(sections, m.renderDetailHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	switch {
	case m.detailLoading:
		sections = append(sections, ui.DimStyle.Render("  Loading transcript..."))
	case m.detailError != "":
		sections = append(sections, ui.ErrorStyle.Render("  "+m.detailError))
		sections = append(sections, ui.DimStyle.Render("  Press r to retry, Esc to go back."))
	case m.detail == nil:
		sections = append(sections, ui.DimStyle.Render("  No transcript"))
	case len(m.detail.Segments) == 0:
		sections = append(sections, m.renderFlatTranscript())
	default:
		sections = append(sections, m.renderSegments())
	}

	if m.statusError != "" {
		sections = append(sections, ui.ErrorStyle.Render("Error: ")+ui.ErrorTextStyle.Render(m.statusError))
	}
	sections = append(sections, m.renderDetailFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderDetailHeader() string {
	if m.detail == nil {
		return ui.TitleStyle.Render("INTERVIEW")
	}
	d := m.detail
	return ui.TitleStyle.Render("INTERVIEW") +
		ui.DimStyle.Render(fmt.Sprintf(" — %s  %s  %s  %s",
			d.Supermarket, formatTimestamp(d.Timestamp), formatDuration(d.Duration), d.Status))
}

// renderFlatTranscript handles interviews that only carry a flat
// transcript, which cannot be edited segment by segment.
func (m Model) renderFlatTranscript() string {
	var lines []string
	if m.detail.Transcript == "" {
		return ui.DimStyle.Render("  No transcript available")
	}
	for _, wl := range wrapText(m.detail.Transcript, max(20, m.width-4)) {
		lines = append(lines, "  "+wl)
	}
	lines = append(lines, "")
	lines = append(lines, ui.DimStyle.Render("  This interview has no segmented transcript; editing is unavailable."))
	return strings.Join(lines, "\n")
}

func (m Model) renderSegments() string {
	var lines []string

	textWidth := max(20, m.width-14)
	visible := 8
	start, end := visibleRange(m.selectedSegment, len(m.detail.Segments), visible)

	for i := start; i < end; i++ {
		seg := m.detail.Segments[i]
		selected := i == m.selectedSegment

		prefix := "  "
		if selected {
			prefix = ui.SelectedStyle.Render("> ")
		}

		speaker := ui.SpeakerCustomerStyle.Render(padRight("KUNDE", 6))
		if seg.Speaker == "AI" {
			speaker = ui.SpeakerAIStyle.Render(padRight("AI", 6))
		}

		var mark string
		if seg.EditedText != "" {
			mark = " " + ui.EditedMarkStyle.Render("(edited)")
		}

		if seg.ID == m.editingSegment {
			lines = append(lines, prefix+speaker+ui.EditingStyle.Render("editing")+mark)
			lines = append(lines, indentLines(m.editBuffer.View(), "      ")...)
			if m.savingEdit {
				lines = append(lines, ui.DimStyle.Render("      Saving..."))
			}
		} else {
			wrapped := wrapText(seg.DisplayText(), textWidth)
			lines = append(lines, prefix+speaker+wrapped[0]+mark)
			for _, wl := range wrapped[1:] {
				lines = append(lines, "        "+wl)
			}
			if chips := renderTagChips(seg); chips != "" {
				lines = append(lines, "        "+chips)
			}
		}

		if panel, ok := m.tagPanels[seg.ID]; ok {
			lines = append(lines, m.renderTagPanel(panel, selected)...)
		}
	}

	if start > 0 {
		lines = append([]string{ui.DimStyle.Render(fmt.Sprintf("  ... %d earlier", start))}, lines...)
	}
	if end < len(m.detail.Segments) {
		lines = append(lines, ui.DimStyle.Render(fmt.Sprintf("  ... %d more", len(m.detail.Segments)-end)))
	}

	return strings.Join(lines, "\n")
}

func renderTagChips(seg api.Segment) string {
	if seg.Tags == nil {
		return ""
	}
	var chips []string
	if seg.Tags.Sentiment != "" && seg.Tags.Sentiment != api.SentimentUnset {
		chips = append(chips, ui.SentimentStyle(seg.Tags.Sentiment).Render("["+seg.Tags.Sentiment+"]"))
	}
	if seg.Tags.Theme != "" {
		chips = append(chips, ui.TagChipStyle.Render(" "+seg.Tags.Theme+" "))
	}
	if seg.Tags.Notes != "" {
		chips = append(chips, ui.DimStyle.Render("✎ "+seg.Tags.Notes))
	}
	return strings.Join(chips, " ")
}

func (m Model) renderTagPanel(panel *tagPanel, active bool) []string {
	marker := func(focus int) string {
		if active && panel.focus == focus {
			return ui.SelectedStyle.Render("›")
		}
		return " "
	}

	theme := "(none)"
	if panel.themeIdx >= 0 && panel.themeIdx < len(m.availableThemes) {
		theme = m.availableThemes[panel.themeIdx]
	}

	lines := []string{
		"      " + ui.PanelTitleStyle.Render("TAGS"),
		"      " + marker(tagFocusSentiment) + " sentiment: " + ui.SentimentStyle(panel.sentiment).Render(panel.sentiment),
		"      " + marker(tagFocusTheme) + " theme:     " + theme,
		"      " + marker(tagFocusNotes) + " notes:     " + panel.notes.View(),
	}
	if panel.saving {
		lines = append(lines, ui.DimStyle.Render("      Saving..."))
	}
	return lines
}

func (m Model) renderDetailFooter() string {
	var parts []string

	switch {
	case m.editingSegment != "":
		parts = append(parts,
			ui.FooterKeyStyle.Render("ctrl+s")+ui.FooterDescStyle.Render(" Save"),
			ui.FooterKeyStyle.Render("Esc")+ui.FooterDescStyle.Render(" Cancel"))

	case m.tagPanels[m.selectedSegmentID()] != nil:
		parts = append(parts,
			ui.FooterKeyStyle.Render("Tab")+ui.FooterDescStyle.Render(" Field"),
			ui.FooterKeyStyle.Render("←/→")+ui.FooterDescStyle.Render(" Change"),
			ui.FooterKeyStyle.Render("ctrl+s")+ui.FooterDescStyle.Render(" Save tags"),
			ui.FooterKeyStyle.Render("Esc")+ui.FooterDescStyle.Render(" Cancel"))

	default:
		parts = append(parts,
			ui.FooterKeyStyle.Render("j/k")+ui.FooterDescStyle.Render(" Nav"))
		if m.canEdit() {
			parts = append(parts,
				ui.FooterKeyStyle.Render("e")+ui.FooterDescStyle.Render(" Edit"),
				ui.FooterKeyStyle.Render("t")+ui.FooterDescStyle.Render(" Tags"))
		}
		parts = append(parts,
			ui.FooterKeyStyle.Render("Esc")+ui.FooterDescStyle.Render(" Back"),
			ui.FooterKeyStyle.Render("q")+ui.FooterDescStyle.Render(" Quit"))
	}

	return strings.Join(parts, "  ")
}

func indentLines(s, indent string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		out = append(out, indent+l)
	}
	return out
}
