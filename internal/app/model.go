package app

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ubhkeys/Mindcalls1/internal/api"
	"github.com/ubhkeys/Mindcalls1/internal/config"
	"github.com/ubhkeys/Mindcalls1/internal/session"
)

// view identifies the top-level screen.
type view int

const (
	viewLogin view = iota
	viewDashboard
	viewDetail
)

// PanelFocus tracks which dashboard panel has keyboard focus.
type PanelFocus int

const (
	FocusThemes PanelFocus = iota
	FocusInterviews
)

// themeRow wraps a theme aggregate with its expansion state.
type themeRow struct {
	Theme    api.Theme
	Expanded bool
}

// chatEntry is one question/answer pair in the chat overlay.
type chatEntry struct {
	Question string
	Answer   string
	Pending  bool
}

// tagPanel is the per-segment tagging state. Panels are independent
// across segments; any number may be open at once.
type tagPanel struct {
	sentiment string // positive, neutral, negative or unset
	themeIdx  int    // index into the vocabulary, -1 = none
	notes     textinput.Model
	focus     int // 0 sentiment, 1 theme, 2 notes
	saving    bool
}

// Model is the root bubbletea model for the MindCalls dashboard.
type Model struct {
	cfg      config.Config
	client   *api.Client
	sessions *session.Store
	logger   *logrus.Logger

	view          view
	width, height int

	// Auth
	sess    *session.Session
	authGen int // bumped on logout so stale refresh ticks die

	// Login form
	emailInput textinput.Model
	codeInput  textinput.Model
	loginFocus int
	loginBusy  bool
	loginError string

	// Dashboard data
	loading    bool
	loadError  string
	overview   api.Overview
	themes     []themeRow
	ratings    map[string]api.Rating
	interviews []api.Interview
	fetchedAt  time.Time

	// Dashboard UI
	focusedPanel       PanelFocus
	selectedTheme      int
	selectedInterview  int
	filter             string
	filtering          bool
	filterInput        textinput.Model
	supermarkets       []string
	supermarketsLoaded bool

	// Chat overlay
	chatOpen  bool
	chatInput textinput.Model
	chatBusy  bool
	chatLog   []chatEntry

	// Transient status error
	statusError string

	// Detail view / transcript editor
	detail          *api.InterviewDetail
	detailLoading   bool
	detailError     string
	availableThemes []string
	vocabFetched    bool
	selectedSegment int

	// The app-wide exclusive edit slot: id of the segment being edited,
	// "" when none. Modeled as a single field, never per-segment flags.
	editingSegment string
	editBuffer     textarea.Model
	savingEdit     bool

	tagPanels map[string]*tagPanel
}

// New creates the root model. sess may be nil (logged out); a stored
// session is trusted until the first 401.
func New(cfg config.Config, client *api.Client, sessions *session.Store, logger *logrus.Logger, sess *session.Session) Model {
	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128
	email.Focus()

	code := textinput.New()
	code.Placeholder = "access code"
	code.CharLimit = 64
	code.EchoMode = textinput.EchoPassword

	filter := textinput.New()
	filter.Placeholder = "filter by supermarket"
	filter.CharLimit = 64

	chat := textinput.New()
	chat.Placeholder = "ask about the data"
	chat.CharLimit = 256

	m := Model{
		cfg:         cfg,
		client:      client,
		sessions:    sessions,
		logger:      logger,
		sess:        sess,
		emailInput:  email,
		codeInput:   code,
		filterInput: filter,
		chatInput:   chat,
		tagPanels:   map[string]*tagPanel{},
	}
	if sess != nil {
		m.view = viewDashboard
		m.loading = true
	}
	return m
}

// Init fires the first fetch batch when a stored session exists and
// starts the refresh tick chain.
func (m Model) Init() tea.Cmd {
	if m.sess == nil {
		return textinput.Blink
	}
	return tea.Batch(
		m.fetchBatchCmd(false),
		refreshTickCmd(m.authGen, m.cfg.Refresh),
	)
}

// fetchBatchCmd issues the four dashboard calls concurrently and delivers
// a single message once all of them have settled.
func (m Model) fetchBatchCmd(silent bool) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		var (
			overview   api.Overview
			themes     []api.Theme
			ratings    map[string]api.Rating
			interviews []api.Interview
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			overview, err = client.Overview(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			themes, err = client.Themes(gctx, 0)
			return err
		})
		g.Go(func() error {
			var err error
			ratings, err = client.Ratings(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			interviews, err = client.Interviews(gctx, api.InterviewsOptions{Limit: 50})
			return err
		})

		if err := g.Wait(); err != nil {
			return BatchResultMsg{Err: err, Silent: silent}
		}
		return BatchResultMsg{
			Overview:   overview,
			Themes:     themes,
			Ratings:    ratings,
			Interviews: interviews,
			Silent:     silent,
		}
	}
}

// refreshTickCmd schedules the next background refresh.
func refreshTickCmd(gen int, every time.Duration) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return RefreshTickMsg{Gen: gen}
	})
}

// loginCmd exchanges credentials for a session and persists it.
func loginCmd(client *api.Client, store *session.Store, email, code string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		sess, err := client.Login(ctx, email, code)
		if err != nil {
			return LoginResultMsg{Err: err}
		}
		if err := store.Save(sess); err != nil {
			return LoginResultMsg{Err: err}
		}
		return LoginResultMsg{Sess: sess}
	}
}

// detailCmd fetches the full record for one interview.
func detailCmd(client *api.Client, id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		detail, err := client.InterviewDetail(ctx, id)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}

// supermarketsCmd fetches the known supermarket names for the filter hint.
func supermarketsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		names, err := client.Supermarkets(ctx)
		return SupermarketsMsg{Names: names, Err: err}
	}
}

// vocabCmd fetches the tagging theme vocabulary.
func vocabCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		themes, err := client.AvailableThemes(ctx)
		return ThemeVocabularyMsg{Themes: themes, Err: err}
	}
}

// saveEditCmd submits a segment text edit.
func saveEditCmd(client *api.Client, interviewID, segmentID, text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := client.EditSegment(ctx, interviewID, segmentID, text)
		return EditSavedMsg{InterviewID: interviewID, SegmentID: segmentID, Err: err}
	}
}

// saveTagCmd submits segment annotations.
func saveTagCmd(client *api.Client, interviewID, segmentID, sentiment, theme, notes string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := client.TagSegment(ctx, interviewID, segmentID, sentiment, theme, notes)
		return TagSavedMsg{InterviewID: interviewID, SegmentID: segmentID, Err: err}
	}
}

// chatCmd asks the assistant a question.
func chatCmd(client *api.Client, question string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		answer, err := client.Chat(ctx, question)
		return ChatAnswerMsg{Question: question, Answer: answer, Err: err}
	}
}

// clearStatusErrorCmd fires after a delay to clear transient status errors.
func clearStatusErrorCmd() tea.Cmd {
	return tea.Tick(5*time.Second, func(time.Time) tea.Msg {
		return ClearStatusErrorMsg{}
	})
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case LoginResultMsg:
		return m.handleLoginResult(msg)

	case BatchResultMsg:
		return m.handleBatchResult(msg)

	case RefreshTickMsg:
		if msg.Gen != m.authGen || m.sess == nil {
			// A tick from before logout; let the chain die.
			return m, nil
		}
		return m, tea.Batch(
			m.fetchBatchCmd(true),
			refreshTickCmd(m.authGen, m.cfg.Refresh),
		)

	case DetailLoadedMsg:
		return m.handleDetailLoaded(msg)

	case SupermarketsMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				return m.forceLogout()
			}
			// The filter works without the hint.
			m.logger.WithError(msg.Err).Warn("fetch supermarkets")
			return m, nil
		}
		m.supermarkets = msg.Names
		m.supermarketsLoaded = true
		return m, nil

	case ThemeVocabularyMsg:
		if msg.Err != nil {
			if errors.Is(msg.Err, api.ErrUnauthorized) {
				return m.forceLogout()
			}
			m.logger.WithError(msg.Err).Error("fetch theme vocabulary")
			return m, nil
		}
		m.availableThemes = msg.Themes
		m.vocabFetched = true
		return m, nil

	case EditSavedMsg:
		return m.handleEditSaved(msg)

	case TagSavedMsg:
		return m.handleTagSaved(msg)

	case ChatAnswerMsg:
		return m.handleChatAnswer(msg)

	case ClearStatusErrorMsg:
		m.statusError = ""
		return m, nil
	}

	return m, nil
}

func (m Model) handleLoginResult(msg LoginResultMsg) (tea.Model, tea.Cmd) {
	m.loginBusy = false
	if msg.Err != nil {
		m.loginError = loginErrorText(msg.Err)
		m.logger.WithError(msg.Err).Warn("login failed")
		return m, nil
	}

	sess := msg.Sess
	m.sess = &sess
	m.loginError = ""
	m.view = viewDashboard
	m.loading = true
	m.loadError = ""
	m.logger.WithField("email", sess.Email).Info("logged in")

	return m, tea.Batch(
		m.fetchBatchCmd(false),
		refreshTickCmd(m.authGen, m.cfg.Refresh),
	)
}

func (m Model) handleBatchResult(msg BatchResultMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			return m.forceLogout()
		}
		m.logger.WithError(msg.Err).Error("dashboard fetch failed")
		if msg.Silent {
			// Background refresh: keep showing the previous data.
			return m, nil
		}
		m.loading = false
		m.loadError = fetchErrorText(msg.Err)
		return m, nil
	}

	m.loading = false
	m.loadError = ""
	m.overview = msg.Overview
	m.ratings = msg.Ratings
	m.interviews = msg.Interviews
	m.fetchedAt = time.Now()

	// Preserve expansion state across refreshes by theme name.
	expanded := map[string]bool{}
	for _, row := range m.themes {
		if row.Expanded {
			expanded[row.Theme.Name] = true
		}
	}
	m.themes = m.themes[:0]
	for _, th := range msg.Themes {
		m.themes = append(m.themes, themeRow{Theme: th, Expanded: expanded[th.Name]})
	}
	if m.selectedTheme >= len(m.themes) {
		m.selectedTheme = max(0, len(m.themes)-1)
	}
	if m.selectedInterview >= len(m.filteredInterviews()) {
		m.selectedInterview = max(0, len(m.filteredInterviews())-1)
	}
	return m, nil
}

func (m Model) handleDetailLoaded(msg DetailLoadedMsg) (tea.Model, tea.Cmd) {
	m.detailLoading = false
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			return m.forceLogout()
		}
		m.logger.WithError(msg.Err).Error("fetch interview detail")
		m.detailError = fetchErrorText(msg.Err)
		return m, nil
	}

	detail := msg.Detail
	m.detail = &detail
	m.detailError = ""
	if m.selectedSegment >= len(detail.Segments) {
		m.selectedSegment = max(0, len(detail.Segments)-1)
	}

	// The server is authoritative after a mutation: drop panels for
	// segments that no longer exist.
	known := map[string]bool{}
	for _, seg := range detail.Segments {
		known[seg.ID] = true
	}
	for id := range m.tagPanels {
		if !known[id] {
			delete(m.tagPanels, id)
		}
	}
	return m, nil
}

func (m Model) handleEditSaved(msg EditSavedMsg) (tea.Model, tea.Cmd) {
	// The slot may already belong to another segment when the user
	// cancelled a slow save and moved on; a stale result must not touch it.
	current := m.editingSegment == msg.SegmentID
	if current {
		m.savingEdit = false
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			return m.forceLogout()
		}
		m.logger.WithError(msg.Err).Error("save segment edit")
		m.statusError = "Could not save edit"
		return m, clearStatusErrorCmd()
	}

	// Save accepted: leave edit mode and re-derive everything from the
	// server. Exactly one re-fetch, never an optimistic patch.
	if current {
		m.editingSegment = ""
	}
	return m, detailCmd(m.client, msg.InterviewID)
}

func (m Model) handleTagSaved(msg TagSavedMsg) (tea.Model, tea.Cmd) {
	if panel, ok := m.tagPanels[msg.SegmentID]; ok {
		panel.saving = false
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			return m.forceLogout()
		}
		m.logger.WithError(msg.Err).Error("save segment tags")
		m.statusError = "Could not save tags"
		return m, clearStatusErrorCmd()
	}

	delete(m.tagPanels, msg.SegmentID)
	return m, detailCmd(m.client, msg.InterviewID)
}

func (m Model) handleChatAnswer(msg ChatAnswerMsg) (tea.Model, tea.Cmd) {
	m.chatBusy = false
	for i := range m.chatLog {
		if m.chatLog[i].Pending && m.chatLog[i].Question == msg.Question {
			m.chatLog[i].Pending = false
			if msg.Err != nil {
				m.chatLog[i].Answer = "(no answer: " + fetchErrorText(msg.Err) + ")"
			} else {
				m.chatLog[i].Answer = msg.Answer
			}
			break
		}
	}
	if msg.Err != nil {
		if errors.Is(msg.Err, api.ErrUnauthorized) {
			return m.forceLogout()
		}
		m.logger.WithError(msg.Err).Error("chat question")
	}
	return m, nil
}

// forceLogout tears down all authenticated state and returns to the
// login view. The session store is cleared here as well; after a 401 the
// gateway client has already done it, and Clear is idempotent.
func (m Model) forceLogout() (tea.Model, tea.Cmd) {
	if err := m.sessions.Clear(); err != nil {
		m.logger.WithError(err).Error("clear session")
	}
	m.logger.Info("logged out")

	m.sess = nil
	m.authGen++
	m.view = viewLogin

	m.loading = false
	m.loadError = ""
	m.overview = api.Overview{}
	m.themes = nil
	m.ratings = nil
	m.interviews = nil
	m.filter = ""
	m.filtering = false
	m.filterInput.SetValue("")
	m.supermarkets = nil
	m.supermarketsLoaded = false
	m.chatOpen = false
	m.chatBusy = false
	m.chatLog = nil
	m.statusError = ""

	m.detail = nil
	m.detailError = ""
	m.availableThemes = nil
	m.vocabFetched = false
	m.selectedSegment = 0
	m.editingSegment = ""
	m.savingEdit = false
	m.tagPanels = map[string]*tagPanel{}

	m.loginBusy = false
	m.loginError = ""
	m.loginFocus = 0
	m.emailInput.SetValue("")
	m.codeInput.SetValue("")
	m.emailInput.Focus()
	m.codeInput.Blur()

	return m, textinput.Blink
}

// canEdit reports whether the current user may edit or tag segments.
func (m Model) canEdit() bool {
	return m.sess != nil && m.sess.Level.CanEdit()
}

// handleKey routes key presses to the active view.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == KeyCtrlC {
		return m, tea.Quit
	}

	switch m.view {
	case viewLogin:
		return m.handleLoginKey(msg)
	case viewDashboard:
		return m.handleDashboardKey(msg)
	case viewDetail:
		return m.handleDetailKey(msg)
	}
	return m, nil
}

// View renders the active screen.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	switch m.view {
	case viewLogin:
		return m.viewLogin()
	case viewDetail:
		return m.viewDetail()
	default:
		return m.viewDashboard()
	}
}

func loginErrorText(err error) string {
	if errors.Is(err, api.ErrNoBaseURL) {
		return "No API configured. Set MINDCALLS_API_BASE_URL and restart."
	}
	// A 401 on the login call itself means the credentials were rejected,
	// not that an old session expired.
	if errors.Is(err, api.ErrUnauthorized) {
		return "Login rejected. Check your email and access code."
	}
	var apiErr *api.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 {
		return "Login rejected. Check your email and access code."
	}
	return "Could not reach the service. Try again."
}

func fetchErrorText(err error) string {
	if errors.Is(err, api.ErrNoBaseURL) {
		return "No API configured. Set MINDCALLS_API_BASE_URL and restart."
	}
	return "Could not load data from the service."
}
