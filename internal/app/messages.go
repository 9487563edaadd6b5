package app

import (
	"github.com/ubhkeys/Mindcalls1/internal/api"
	"github.com/ubhkeys/Mindcalls1/internal/session"
)

// LoginResultMsg carries the outcome of a login attempt. On success the
// session is already persisted.
type LoginResultMsg struct {
	Sess session.Session
	Err  error
}

// BatchResultMsg carries the outcome of the four-call dashboard fetch.
// All four requests have settled by the time this message exists; a
// partial batch is never delivered.
type BatchResultMsg struct {
	Overview   api.Overview
	Themes     []api.Theme
	Ratings    map[string]api.Rating
	Interviews []api.Interview
	Err        error
	Silent     bool
}

// RefreshTickMsg drives the periodic background refresh. Gen ties the
// tick to the login generation that scheduled it; stale ticks are dropped.
type RefreshTickMsg struct {
	Gen int
}

// DetailLoadedMsg carries a fetched interview detail.
type DetailLoadedMsg struct {
	Detail api.InterviewDetail
	Err    error
}

// ThemeVocabularyMsg carries the tagging theme vocabulary, fetched once
// per editor mount.
type ThemeVocabularyMsg struct {
	Themes []string
	Err    error
}

// EditSavedMsg carries the outcome of a segment text edit. SegmentID is
// matched against the editing slot so a stale result cannot tear down an
// edit started after the save was cancelled.
type EditSavedMsg struct {
	InterviewID string
	SegmentID   string
	Err         error
}

// TagSavedMsg carries the outcome of a segment tag save.
type TagSavedMsg struct {
	InterviewID string
	SegmentID   string
	Err         error
}

// SupermarketsMsg carries the known supermarket names, fetched once the
// first time the filter prompt opens.
type SupermarketsMsg struct {
	Names []string
	Err   error
}

// ChatAnswerMsg carries the assistant's answer to a chat question.
type ChatAnswerMsg struct {
	Question string
	Answer   string
	Err      error
}

// ClearStatusErrorMsg clears a transient status-bar error after a timeout.
type ClearStatusErrorMsg struct{}
