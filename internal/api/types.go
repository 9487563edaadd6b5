// Package api provides the HTTP client for the MindCalls interview
// analytics service, including the wire types it speaks.
package api

// Sentiment values used in theme breakdowns and segment tags.
const (
	SentimentPositive = "positive"
	SentimentNeutral  = "neutral"
	SentimentNegative = "negative"
	SentimentUnset    = "unset"
)

// LoginRequest is the body for auth/login.
type LoginRequest struct {
	Email      string `json:"email"`
	AccessCode string `json:"access_code"`
}

// LoginResponse carries the issued session.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Email       string `json:"email"`
	AccessLevel string `json:"access_level"`
}

// Overview holds the dashboard headline numbers.
type Overview struct {
	TotalInterviews  int     `json:"total_interviews"`
	ActiveInterviews int     `json:"active_interviews"`
	AvgDuration      float64 `json:"avg_duration"`
	TrendPercentage  float64 `json:"trend_percentage"`
	AssistantName    string  `json:"assistant_name"`
	AccessLevel      string  `json:"access_level,omitempty"`
}

// SentimentBreakdown counts theme mentions per sentiment bucket.
type SentimentBreakdown struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// Quote is a sample mention attached to a theme.
type Quote struct {
	Text        string `json:"text"`
	Timestamp   string `json:"timestamp"`
	Supermarket string `json:"supermarket"`
}

// Theme is a server-computed topic with its sentiment distribution.
// The client never mutates these.
type Theme struct {
	Name               string             `json:"name"`
	TotalMentions      int                `json:"total_mentions"`
	SentimentBreakdown SentimentBreakdown `json:"sentiment_breakdown"`
	SampleQuotes       map[string][]Quote `json:"sample_quotes"`
	IsNew              bool               `json:"is_new"`
}

// Rating is one averaged rating category.
type Rating struct {
	Label   string  `json:"label"`
	Average float64 `json:"average"`
	Color   string  `json:"color"`
}

// SegmentTags holds the optional manual annotations on a segment.
type SegmentTags struct {
	Sentiment string `json:"sentiment,omitempty"`
	Theme     string `json:"theme,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// Segment is one speaker turn within an interview transcript.
type Segment struct {
	ID         string       `json:"id"`
	Speaker    string       `json:"speaker"`
	Text       string       `json:"text"`
	EditedText string       `json:"edited_text,omitempty"`
	Editable   bool         `json:"editable"`
	Tags       *SegmentTags `json:"tags,omitempty"`
}

// DisplayText returns the edited text when present, else the original.
// Never both.
func (s Segment) DisplayText() string {
	if s.EditedText != "" {
		return s.EditedText
	}
	return s.Text
}

// Interview is the summary form used in list views.
type Interview struct {
	ID          string             `json:"id"`
	Timestamp   string             `json:"timestamp"`
	Duration    int                `json:"duration"`
	Supermarket string             `json:"supermarket"`
	Status      string             `json:"status"`
	Ratings     map[string]float64 `json:"ratings,omitempty"`
	Transcript  string             `json:"transcript,omitempty"`
	Themes      []string           `json:"themes,omitempty"`
}

// InterviewDetail is the full interview record. Segments may be empty
// when the service only holds a flat transcript.
type InterviewDetail struct {
	ID          string             `json:"id"`
	Timestamp   string             `json:"timestamp"`
	Duration    int                `json:"duration"`
	Supermarket string             `json:"supermarket"`
	Status      string             `json:"status"`
	Ratings     map[string]float64 `json:"ratings,omitempty"`
	Transcript  string             `json:"transcript,omitempty"`
	Segments    []Segment          `json:"segments,omitempty"`
	Editable    bool               `json:"editable"`
}

// EditRequest is the body for interview/edit.
type EditRequest struct {
	InterviewID string `json:"interview_id"`
	SegmentID   string `json:"segment_id"`
	EditedText  string `json:"edited_text"`
}

// TagRequest is the body for interview/tag.
type TagRequest struct {
	InterviewID string `json:"interview_id"`
	SegmentID   string `json:"segment_id"`
	Sentiment   string `json:"sentiment"`
	Theme       string `json:"theme"`
	Notes       string `json:"notes"`
}

// ChatRequest is the body for chat.
type ChatRequest struct {
	Question string `json:"question"`
}

// ChatResponse carries the assistant's answer.
type ChatResponse struct {
	Answer string `json:"answer"`
}

type themesResponse struct {
	Themes []Theme `json:"themes"`
}

type ratingsResponse struct {
	Ratings map[string]Rating `json:"ratings"`
}

type interviewsResponse struct {
	Interviews []Interview `json:"interviews"`
	Total      int         `json:"total"`
}

type availableThemesResponse struct {
	Themes []string `json:"themes"`
}

type supermarketsResponse struct {
	Supermarkets []string `json:"supermarkets"`
}
