package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ubhkeys/Mindcalls1/internal/api"
	"github.com/ubhkeys/Mindcalls1/internal/session"
)

func testDetail() *api.InterviewDetail {
	return &api.InterviewDetail{
		ID:       "int-7",
		Editable: true,
		Segments: []api.Segment{
			{ID: "seg-1", Speaker: "AI", Text: "Hvordan var dit besøg?", Editable: false},
			{ID: "seg-2", Speaker: "customer", Text: "Fint nok", Editable: true},
			{ID: "seg-3", Speaker: "customer", Text: "Lidt dyrt", EditedText: "Noget dyrt", Editable: true},
		},
	}
}

// detailModel builds a model sitting on the detail view.
func detailModel(t *testing.T, level session.AccessLevel) Model {
	t.Helper()
	m, _ := newTestModel(t, &session.Session{Token: "tok", Email: "a@b.dk", Level: level})
	m.view = viewDetail
	m.detail = testDetail()
	m.availableThemes = []string{"Service", "Priser", "Udvalg"}
	m.vocabFetched = true
	return m
}

func TestStartEditRequiresPremium(t *testing.T) {
	m := detailModel(t, session.Standard)
	m.selectedSegment = 1 // editable segment

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})

	if m.editingSegment != "" {
		t.Error("Standard users must never enter edit mode")
	}
}

func TestStartEditRequiresEditableSegment(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 0 // AI segment, not editable

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})

	if m.editingSegment != "" {
		t.Error("non-editable segments must not enter edit mode")
	}
}

func TestStartEditCapturesDisplayText(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 2 // has edited_text

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})

	if m.editingSegment != "seg-3" {
		t.Fatalf("editingSegment = %q", m.editingSegment)
	}
	if m.editBuffer.Value() != "Noget dyrt" {
		t.Errorf("buffer = %q, want the edited text, not the original", m.editBuffer.Value())
	}
}

func TestExclusiveEditSlot(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	if m.editingSegment != "seg-2" {
		t.Fatalf("editingSegment = %q", m.editingSegment)
	}

	// Starting a second edit replaces the slot; segment A's buffer is gone.
	m.selectedSegment = 2
	updated, _ := m.startEdit()
	m = updated.(Model)

	if m.editingSegment != "seg-3" {
		t.Errorf("editingSegment = %q, want seg-3 only", m.editingSegment)
	}
	if m.editBuffer.Value() != "Noget dyrt" {
		t.Errorf("buffer = %q, want seg-3's display text", m.editBuffer.Value())
	}
}

func TestEditCancelDiscardsBuffer(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})

	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.editingSegment != "" {
		t.Error("cancel should leave edit mode")
	}
	if cmd != nil {
		t.Error("cancel must not issue any network call")
	}
	if m.detail.Segments[1].Text != "Fint nok" {
		t.Error("cancel must not touch segment data")
	}
}

func TestEditSaveSubmitsThenRefetches(t *testing.T) {
	var mu sync.Mutex
	var requests []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests = append(requests, r.Method+" "+r.URL.Path)
		mu.Unlock()

		if r.URL.Path == "/interview/edit" {
			var body api.EditRequest
			json.NewDecoder(r.Body).Decode(&body)
			if body.InterviewID != "int-7" || body.SegmentID != "seg-2" || body.EditedText != "Bedre end forventet" {
				t.Errorf("edit body = %+v", body)
			}
			w.Write([]byte(`{}`))
			return
		}
		json.NewEncoder(w).Encode(testDetail())
	})

	m, _ := newServerModel(t, premiumSession(), handler)
	m.view = viewDetail
	m.detail = testDetail()
	m.vocabFetched = true
	m.selectedSegment = 1

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m.editBuffer.SetValue("Bedre end forventet")

	// Save: runs the POST...
	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeyCtrlS})
	if !m.savingEdit {
		t.Error("save should mark saving")
	}
	if cmd == nil {
		t.Fatal("save should issue the edit command")
	}
	msg := cmd()
	saved, ok := msg.(EditSavedMsg)
	if !ok {
		t.Fatalf("msg = %T", msg)
	}
	if saved.Err != nil {
		t.Fatalf("save: %v", saved.Err)
	}

	// ...and the success message triggers exactly one re-fetch.
	m, cmd = applyUpdate(m, saved)
	if m.editingSegment != "" {
		t.Error("successful save should leave edit mode")
	}
	if cmd == nil {
		t.Fatal("successful save should re-fetch the detail")
	}
	loaded, ok := cmd().(DetailLoadedMsg)
	if !ok || loaded.Err != nil {
		t.Fatalf("re-fetch failed: %+v", loaded)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"POST /interview/edit", "GET /interview/int-7"}
	if len(requests) != len(want) {
		t.Fatalf("requests = %v, want %v", requests, want)
	}
	for i := range want {
		if requests[i] != want[i] {
			t.Errorf("requests[%d] = %q, want %q", i, requests[i], want[i])
		}
	}
}

func TestEditSaveFailureKeepsEditState(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m.savingEdit = true

	m, cmd := applyUpdate(m, EditSavedMsg{InterviewID: "int-7", SegmentID: "seg-2", Err: errors.New("503")})

	if m.editingSegment != "seg-2" {
		t.Error("failed save should stay in edit mode so the user can retry")
	}
	if m.statusError == "" {
		t.Error("failed save should surface a transient error")
	}
	if cmd == nil {
		t.Error("transient error should schedule its own clear")
	}
}

func TestStaleEditResultLeavesNewEditAlone(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m.savingEdit = true

	// Cancel the in-flight save and start editing another segment.
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})
	m.selectedSegment = 2
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})
	m.editBuffer.SetValue("ny tekst")

	m, cmd := applyUpdate(m, EditSavedMsg{InterviewID: "int-7", SegmentID: "seg-2"})

	if m.editingSegment != "seg-3" {
		t.Errorf("editingSegment = %q, stale result must not clear the new slot", m.editingSegment)
	}
	if m.editBuffer.Value() != "ny tekst" {
		t.Errorf("buffer = %q, stale result must not discard the new buffer", m.editBuffer.Value())
	}
	if cmd == nil {
		t.Error("the accepted save should still re-fetch the detail")
	}
}

func TestTagPanelToggle(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.tagPanels["seg-2"] == nil {
		t.Fatal("t should open the tag panel")
	}

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.tagPanels["seg-2"] != nil {
		t.Error("t again should close the panel")
	}
}

func TestTagPanelsIndependentPerSegment(t *testing.T) {
	m := detailModel(t, session.Premium)

	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	m.selectedSegment = 2
	updated, _ := m.toggleTagPanel()
	m = updated.(Model)

	if m.tagPanels["seg-2"] == nil || m.tagPanels["seg-3"] == nil {
		t.Error("tag panels are per-segment; both should be open")
	}
}

func TestSecondTagPanelReachableByKeys(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})

	// j moves the selection past the open panel to the next segment.
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	if m.selectedSegment != 2 {
		t.Fatalf("selectedSegment = %d, navigation should work with a panel open", m.selectedSegment)
	}

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	if m.tagPanels["seg-2"] == nil || m.tagPanels["seg-3"] == nil {
		t.Error("both panels should be open after key-driven navigation")
	}
}

func TestTagPanelNotesClaimsNavKeys(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})

	// Tab twice lands on the notes field; j is now text, not navigation.
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyTab})
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})

	if m.selectedSegment != 1 {
		t.Errorf("selectedSegment = %d, typing in notes must not move the selection", m.selectedSegment)
	}
	if m.tagPanels["seg-2"].notes.Value() != "j" {
		t.Errorf("notes = %q, want the typed rune", m.tagPanels["seg-2"].notes.Value())
	}
}

func TestTagPanelRequiresPremium(t *testing.T) {
	m := detailModel(t, session.Standard)
	m.selectedSegment = 1

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})

	if len(m.tagPanels) != 0 {
		t.Error("Standard users must never open the tag panel")
	}
}

func TestTagPanelBlockedWhileEditing(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'e'}})

	updated, _ := m.toggleTagPanel()
	m = updated.(Model)

	if len(m.tagPanels) != 0 {
		t.Error("a segment being edited cannot open its tag panel")
	}
}

func TestTagPanelPrefillsExistingTags(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.detail.Segments[1].Tags = &api.SegmentTags{
		Sentiment: api.SentimentPositive,
		Theme:     "Priser",
		Notes:     "god pris",
	}
	m.selectedSegment = 1

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})

	panel := m.tagPanels["seg-2"]
	if panel == nil {
		t.Fatal("panel should open")
	}
	if panel.sentiment != api.SentimentPositive {
		t.Errorf("sentiment = %q", panel.sentiment)
	}
	if panel.themeIdx != 1 {
		t.Errorf("themeIdx = %d, want index of Priser", panel.themeIdx)
	}
	if panel.notes.Value() != "god pris" {
		t.Errorf("notes = %q", panel.notes.Value())
	}
}

func TestTagCancelLeavesTagsUntouched(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.detail.Segments[1].Tags = &api.SegmentTags{Sentiment: api.SentimentNegative}
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})

	m, cmd := applyUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.tagPanels["seg-2"] != nil {
		t.Error("esc should close the panel")
	}
	if cmd != nil {
		t.Error("cancel must not submit")
	}
	if m.detail.Segments[1].Tags.Sentiment != api.SentimentNegative {
		t.Error("cancel must not mutate existing tags")
	}
}

func TestTagSaveClosesPanelAndRefetches(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})

	m, cmd := applyUpdate(m, TagSavedMsg{InterviewID: "int-7", SegmentID: "seg-2"})

	if m.tagPanels["seg-2"] != nil {
		t.Error("successful tag save should close the panel")
	}
	if cmd == nil {
		t.Error("successful tag save should re-fetch the detail")
	}
}

func TestTagSaveFailureKeepsPanel(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 1
	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'t'}})
	m.tagPanels["seg-2"].saving = true

	m, cmd := applyUpdate(m, TagSavedMsg{InterviewID: "int-7", SegmentID: "seg-2", Err: errors.New("503")})

	panel := m.tagPanels["seg-2"]
	if panel == nil {
		t.Fatal("failed save should keep the panel open")
	}
	if panel.saving {
		t.Error("failed save should clear saving")
	}
	if m.statusError == "" {
		t.Error("failed save should surface a transient error")
	}
	if cmd == nil {
		t.Error("transient error should schedule its own clear")
	}
}

func TestSentimentCycle(t *testing.T) {
	order := []string{
		api.SentimentPositive,
		api.SentimentNeutral,
		api.SentimentNegative,
		api.SentimentUnset,
	}
	for i, s := range order {
		if got := nextSentiment(s); got != order[(i+1)%len(order)] {
			t.Errorf("nextSentiment(%q) = %q", s, got)
		}
		if got := prevSentiment(s); got != order[(i+len(order)-1)%len(order)] {
			t.Errorf("prevSentiment(%q) = %q", s, got)
		}
	}
}

func TestDetailLoadedReplacesState(t *testing.T) {
	m := detailModel(t, session.Premium)
	m.selectedSegment = 2
	m.tagPanels["gone-segment"] = &tagPanel{}

	fresh := *testDetail()
	fresh.Segments = fresh.Segments[:2]
	m, _ = applyUpdate(m, DetailLoadedMsg{Detail: fresh})

	if len(m.detail.Segments) != 2 {
		t.Errorf("segments = %d", len(m.detail.Segments))
	}
	if m.selectedSegment != 1 {
		t.Errorf("selection should clamp, got %d", m.selectedSegment)
	}
	if m.tagPanels["gone-segment"] != nil {
		t.Error("panels for vanished segments should be dropped")
	}
}

func TestDetailUnauthorizedLogsOut(t *testing.T) {
	m := detailModel(t, session.Premium)

	m, _ = applyUpdate(m, DetailLoadedMsg{Err: api.ErrUnauthorized})

	if m.view != viewLogin {
		t.Error("401 on detail fetch should log out")
	}
}

func TestEscReturnsToDashboard(t *testing.T) {
	m := detailModel(t, session.Premium)

	m, _ = applyUpdate(m, tea.KeyMsg{Type: tea.KeyEsc})

	if m.view != viewDashboard {
		t.Error("esc should return to the dashboard")
	}
}

func TestDetailViewRenders(t *testing.T) {
	m := detailModel(t, session.Premium)
	if m.View() == "" {
		t.Error("detail view should render")
	}
}
