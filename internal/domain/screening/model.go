package screening

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// testIDPrefix tags display-facing test identifiers. The display id is
// always derived from the storage surrogate key, never generated
// independently, so a returned id can round-trip through lookup.
const testIDPrefix = "t_"

// Question is immutable reference data: one screening question with its
// options in position order. Option scores are the option positions (0-3).
type Question struct {
	ID       int64    `json:"id"`
	Sequence int      `json:"-"`
	Text     string   `json:"text"`
	Options  []Option `json:"options"`
}

// Option is one selectable answer for a question.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Score int    `json:"score"`
}

// Answer is a single (question, selected option) pair within a submission.
// Answers are transient; they exist for the duration of one request and are
// retained only in the answer log for provenance.
type Answer struct {
	QuestionID     int64  `json:"questionId"`
	SelectedOption string `json:"selectedOption"`
}

// Submission is the input to a screening test: a test-type tag and the
// ordered answers. SuffererID identifies the subject when the caller is not
// authenticated; an authenticated identity takes precedence.
type Submission struct {
	TestType   string   `json:"testType"`
	Answers    []Answer `json:"answers"`
	SuffererID int64    `json:"sufferer_id,omitempty"`
}

// Result is the outcome of one screening test as returned to the caller.
type Result struct {
	TestID          string    `json:"testId"`
	TestType        string    `json:"testType"`
	TotalScore      int       `json:"totalScore"`
	Severity        string    `json:"severity"`
	TakenAt         time.Time `json:"takenAt"`
	Recommendations []string  `json:"recommendations"`
}

// LogEntry maps to the screening_log table: the persisted, append-only form
// of a Result. Rows are created once and never updated.
type LogEntry struct {
	ID             int64     `json:"id"`
	SuffererID     int64     `json:"sufferer_id"`
	TestType       string    `json:"test_type"`
	Score          int       `json:"score"`
	Classification string    `json:"classification"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryItem is one row of a subject's screening history.
type HistoryItem struct {
	TestID     string    `json:"testId"`
	TestType   string    `json:"testType"`
	TotalScore int       `json:"totalScore"`
	Severity   string    `json:"severity"`
	TakenAt    time.Time `json:"takenAt"`
}

// HistoryPage is the paginated history response. Total is the full count of
// matching rows, not the page size.
type HistoryPage struct {
	SuffererID int64         `json:"suffererId"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int           `json:"total"`
	History    []HistoryItem `json:"history"`
}

// FormatTestID derives the display id from a storage surrogate key.
func FormatTestID(id int64) string {
	return fmt.Sprintf("%s%d", testIDPrefix, id)
}

// ParseTestID accepts a display id with or without the prefix and returns
// the storage surrogate key.
func ParseTestID(s string) (int64, error) {
	s = strings.TrimPrefix(s, testIDPrefix)
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid test id %q", s)
	}
	return id, nil
}
