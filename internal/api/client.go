package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ubhkeys/Mindcalls1/internal/session"
)

const clientTimeout = 30 * time.Second

// ErrUnauthorized is returned when the service rejects the bearer token.
// By the time a caller sees it, the stored session is already gone.
var ErrUnauthorized = errors.New("unauthorized")

// ErrNoBaseURL is returned when no API base URL is configured.
var ErrNoBaseURL = errors.New("no API base URL configured")

// APIError is a non-2xx application response, kept with its body text
// for logging.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// Client talks to the MindCalls service. All requests carry the bearer
// token from the session store when one exists; a 401 on any call clears
// the stored session before the error propagates.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *session.Store
	logger   *logrus.Logger
}

// New creates a client for the given base URL (no trailing slash).
func New(baseURL string, sessions *session.Store, logger *logrus.Logger) *Client {
	return &Client{
		baseURL:  baseURL,
		http:     &http.Client{Timeout: clientTimeout},
		sessions: sessions,
		logger:   logger,
	}
}

// Call performs one request against the service. Default JSON headers are
// merged with the caller's overrides (caller wins). No retries.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any, headers map[string]string) ([]byte, error) {
	if c.baseURL == "" {
		return nil, ErrNoBaseURL
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	if sess, err := c.sessions.Load(); err == nil && sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		// The one cross-cutting rule: token rejected means the whole
		// session is gone, before anyone else sees the error.
		if err := c.sessions.Clear(); err != nil {
			c.logger.WithError(err).Error("clear session after 401")
		}
		return nil, ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out any) error {
	data, err := c.Call(ctx, http.MethodGet, endpoint, nil, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	data, err := c.Call(ctx, http.MethodPost, endpoint, body, nil)
	if err != nil {
		return err
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("unmarshal %s: %w", endpoint, err)
		}
	}
	return nil
}

// Login exchanges an email and access code for a session. The returned
// session is not stored; that is the caller's decision.
func (c *Client) Login(ctx context.Context, email, accessCode string) (session.Session, error) {
	var resp LoginResponse
	if err := c.post(ctx, "auth/login", LoginRequest{Email: email, AccessCode: accessCode}, &resp); err != nil {
		return session.Session{}, err
	}
	return session.Session{
		Token: resp.AccessToken,
		Email: resp.Email,
		Level: session.ParseAccessLevel(resp.AccessLevel),
	}, nil
}

// Overview fetches the dashboard headline numbers.
func (c *Client) Overview(ctx context.Context) (Overview, error) {
	var out Overview
	err := c.get(ctx, "overview", &out)
	return out, err
}

// Themes fetches the theme aggregates for the given look-back window.
// days <= 0 uses the service default.
func (c *Client) Themes(ctx context.Context, days int) ([]Theme, error) {
	endpoint := "themes"
	if days > 0 {
		endpoint += "?days=" + strconv.Itoa(days)
	}
	var out themesResponse
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out.Themes, nil
}

// Ratings fetches the averaged rating categories.
func (c *Client) Ratings(ctx context.Context) (map[string]Rating, error) {
	var out ratingsResponse
	if err := c.get(ctx, "ratings", &out); err != nil {
		return nil, err
	}
	return out.Ratings, nil
}

// InterviewsOptions filter the interview list server-side.
type InterviewsOptions struct {
	Limit       int
	Supermarket string
	Days        int
}

// Interviews fetches interview summaries, newest first.
func (c *Client) Interviews(ctx context.Context, opts InterviewsOptions) ([]Interview, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Supermarket != "" {
		q.Set("supermarket", opts.Supermarket)
	}
	if opts.Days > 0 {
		q.Set("days", strconv.Itoa(opts.Days))
	}
	endpoint := "interviews"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}
	var out interviewsResponse
	if err := c.get(ctx, endpoint, &out); err != nil {
		return nil, err
	}
	return out.Interviews, nil
}

// InterviewDetail fetches the full record for one interview.
func (c *Client) InterviewDetail(ctx context.Context, id string) (InterviewDetail, error) {
	var out InterviewDetail
	err := c.get(ctx, "interview/"+url.PathEscape(id), &out)
	return out, err
}

// EditSegment submits a corrected segment text.
func (c *Client) EditSegment(ctx context.Context, interviewID, segmentID, newText string) error {
	return c.post(ctx, "interview/edit", EditRequest{
		InterviewID: interviewID,
		SegmentID:   segmentID,
		EditedText:  newText,
	}, nil)
}

// TagSegment submits segment annotations.
func (c *Client) TagSegment(ctx context.Context, interviewID, segmentID, sentiment, theme, notes string) error {
	return c.post(ctx, "interview/tag", TagRequest{
		InterviewID: interviewID,
		SegmentID:   segmentID,
		Sentiment:   sentiment,
		Theme:       theme,
		Notes:       notes,
	}, nil)
}

// AvailableThemes fetches the theme vocabulary for the tagging panel.
func (c *Client) AvailableThemes(ctx context.Context) ([]string, error) {
	var out availableThemesResponse
	if err := c.get(ctx, "themes/available", &out); err != nil {
		return nil, err
	}
	return out.Themes, nil
}

// Supermarkets fetches the known supermarket names for filtering.
func (c *Client) Supermarkets(ctx context.Context) ([]string, error) {
	var out supermarketsResponse
	if err := c.get(ctx, "supermarkets", &out); err != nil {
		return nil, err
	}
	return out.Supermarkets, nil
}

// Chat asks the service a free-form question about the data.
func (c *Client) Chat(ctx context.Context, question string) (string, error) {
	var out ChatResponse
	if err := c.post(ctx, "chat", ChatRequest{Question: question}, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}
