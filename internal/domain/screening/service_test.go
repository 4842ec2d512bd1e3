package screening

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sereno/sereno/internal/platform/auth"
	"github.com/sereno/sereno/internal/platform/httperr"
	"github.com/sereno/sereno/pkg/pagination"
)

type mockQuestionRepo struct {
	questions []*Question
	err       error
}

func (m *mockQuestionRepo) List(ctx context.Context) ([]*Question, error) {
	return m.questions, m.err
}

type mockLogRepo struct {
	entries   []*LogEntry
	answers   map[int64][]Answer
	nextID    int64
	now       time.Time
	insertErr error
	listErr   error
}

func newMockLogRepo() *mockLogRepo {
	return &mockLogRepo{
		answers: make(map[int64][]Answer),
		nextID:  1,
		now:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (m *mockLogRepo) Insert(ctx context.Context, entry *LogEntry, answers []Answer) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	entry.ID = m.nextID
	m.now = m.now.Add(time.Minute)
	entry.CreatedAt = m.now
	m.nextID++
	stored := *entry
	m.entries = append(m.entries, &stored)
	m.answers[entry.ID] = answers
	return nil
}

func (m *mockLogRepo) byID(id int64) *LogEntry {
	for _, e := range m.entries {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (m *mockLogRepo) GetByID(ctx context.Context, id int64) (*LogEntry, error) {
	if e := m.byID(id); e != nil {
		return e, nil
	}
	return nil, ErrNotFound
}

// ListBySufferer returns matches newest first, matching the storage query's
// created_at DESC ordering.
func (m *mockLogRepo) ListBySufferer(ctx context.Context, suffererID int64, testType string, limit, offset int) ([]*LogEntry, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	var matched []*LogEntry
	for i := len(m.entries) - 1; i >= 0; i-- {
		e := m.entries[i]
		if e.SuffererID != suffererID {
			continue
		}
		if testType != "" && testType != "all" && e.TestType != testType {
			continue
		}
		matched = append(matched, e)
	}
	total := len(matched)
	if offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, total, nil
}

func newTestService(logs *mockLogRepo, emptyAsError bool) *Service {
	return NewService(&mockQuestionRepo{}, logs, DefaultScorer(), emptyAsError)
}

func authedCtx(userID int64) context.Context {
	ctx := context.WithValue(context.Background(), auth.UserIDKey, userID)
	return context.WithValue(ctx, auth.UserMobileKey, "9876543210")
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var he *httperr.Error
	if !errors.As(err, &he) {
		t.Fatalf("error = %v, want *httperr.Error", err)
	}
	if he.Code != code {
		t.Errorf("code = %q, want %q", he.Code, code)
	}
}

func TestSubmitScoresAndPersists(t *testing.T) {
	logs := newMockLogRepo()
	svc := newTestService(logs, true)

	result, err := svc.Submit(authedCtx(7), &Submission{
		TestType: "anxiety",
		Answers:  answersOf("often", "often", "often", "often", "sometimes"),
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if result.TestID != "t_1" {
		t.Errorf("testId = %q, want t_1", result.TestID)
	}
	if result.TotalScore != 13 || result.Severity != SeverityModerate {
		t.Errorf("score = %d/%s, want 13/%s", result.TotalScore, result.Severity, SeverityModerate)
	}
	if result.TakenAt.IsZero() {
		t.Error("takenAt not set")
	}

	entry := logs.byID(1)
	if entry == nil {
		t.Fatal("log entry not persisted")
	}
	if entry.SuffererID != 7 {
		t.Errorf("suffererID = %d, want 7", entry.SuffererID)
	}
	if len(logs.answers[1]) != 5 {
		t.Errorf("persisted %d answers, want 5", len(logs.answers[1]))
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService(newMockLogRepo(), true)

	cases := []struct {
		name string
		sub  *Submission
	}{
		{"missing testType", &Submission{Answers: []Answer{}}},
		{"blank testType", &Submission{TestType: "  ", Answers: []Answer{}}},
		{"nil answers", &Submission{TestType: "anxiety"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Submit(authedCtx(1), tc.sub)
			assertCode(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestSubmitEmptyAnswersIsMild(t *testing.T) {
	svc := newTestService(newMockLogRepo(), true)

	result, err := svc.Submit(authedCtx(1), &Submission{TestType: "anxiety", Answers: []Answer{}})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.TotalScore != 0 || result.Severity != SeverityMild {
		t.Errorf("score = %d/%s, want 0/%s", result.TotalScore, result.Severity, SeverityMild)
	}
}

func TestSubmitAnonymousUsesExplicitSufferer(t *testing.T) {
	logs := newMockLogRepo()
	svc := newTestService(logs, true)

	_, err := svc.Submit(context.Background(), &Submission{
		TestType:   "anxiety",
		Answers:    []Answer{},
		SuffererID: 42,
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if logs.byID(1).SuffererID != 42 {
		t.Errorf("suffererID = %d, want 42", logs.byID(1).SuffererID)
	}
}

func TestSubmitAnonymousWithoutSuffererFails(t *testing.T) {
	svc := newTestService(newMockLogRepo(), true)

	_, err := svc.Submit(context.Background(), &Submission{TestType: "anxiety", Answers: []Answer{}})
	assertCode(t, err, "VALIDATION_ERROR")
}

func TestSubmitAuthWinsOverBody(t *testing.T) {
	logs := newMockLogRepo()
	svc := newTestService(logs, true)

	_, err := svc.Submit(authedCtx(7), &Submission{TestType: "anxiety", Answers: []Answer{}, SuffererID: 99})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if logs.byID(1).SuffererID != 7 {
		t.Errorf("suffererID = %d, want authenticated 7", logs.byID(1).SuffererID)
	}
}

func TestSubmitStorageError(t *testing.T) {
	logs := newMockLogRepo()
	logs.insertErr = errors.New("boom")
	svc := newTestService(logs, true)

	_, err := svc.Submit(authedCtx(1), &Submission{TestType: "anxiety", Answers: []Answer{}})
	assertCode(t, err, "DB_ERROR")
}

func TestGetResult(t *testing.T) {
	logs := newMockLogRepo()
	svc := newTestService(logs, true)

	if _, err := svc.Submit(authedCtx(1), &Submission{TestType: "anxiety", Answers: answersOf("often")}); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	for _, id := range []string{"t_1", "1"} {
		result, err := svc.GetResult(context.Background(), id)
		if err != nil {
			t.Fatalf("GetResult(%q): %v", id, err)
		}
		if result.TestID != "t_1" || result.TotalScore != 3 {
			t.Errorf("GetResult(%q) = %s/%d, want t_1/3", id, result.TestID, result.TotalScore)
		}
		if len(result.Recommendations) == 0 {
			t.Error("expected recommendations on fetched result")
		}
	}
}

func TestGetResultNotFound(t *testing.T) {
	svc := newTestService(newMockLogRepo(), true)

	for _, id := range []string{"t_99", "garbage", "t_-1", ""} {
		_, err := svc.GetResult(context.Background(), id)
		assertCode(t, err, "NOT_FOUND")
	}
}

func TestHistoryPagination(t *testing.T) {
	logs := newMockLogRepo()
	svc := newTestService(logs, true)

	for i := 0; i < 3; i++ {
		if _, err := svc.Submit(authedCtx(5), &Submission{TestType: "anxiety", Answers: []Answer{}}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	page, err := svc.History(context.Background(), 5, "all", pagination.Params{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if page.Total != 3 || len(page.History) != 2 {
		t.Errorf("total/page = %d/%d, want 3/2", page.Total, len(page.History))
	}
	if page.SuffererID != 5 || page.Page != 1 || page.Limit != 2 {
		t.Errorf("page meta = %+v", page)
	}
	// First page holds the two most recent submissions, newest first.
	if page.History[0].TestID != "t_3" || page.History[1].TestID != "t_2" {
		t.Errorf("page order = %s, %s, want t_3, t_2", page.History[0].TestID, page.History[1].TestID)
	}
}

func TestHistoryTypeFilter(t *testing.T) {
	logs := newMockLogRepo()
	svc := newTestService(logs, true)

	for _, tt := range []string{"anxiety", "anxiety", "depression"} {
		if _, err := svc.Submit(authedCtx(5), &Submission{TestType: tt, Answers: []Answer{}}); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}

	page, err := svc.History(context.Background(), 5, "anxiety", pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("total = %d, want 2", page.Total)
	}
}

func TestHistoryEmpty(t *testing.T) {
	t.Run("as error", func(t *testing.T) {
		svc := newTestService(newMockLogRepo(), true)
		_, err := svc.History(context.Background(), 5, "all", pagination.Params{Page: 1, Limit: 10})
		assertCode(t, err, "NOT_FOUND")
	})

	t.Run("as empty page", func(t *testing.T) {
		svc := newTestService(newMockLogRepo(), false)
		page, err := svc.History(context.Background(), 5, "all", pagination.Params{Page: 1, Limit: 10})
		if err != nil {
			t.Fatalf("History: %v", err)
		}
		if page.Total != 0 || len(page.History) != 0 {
			t.Errorf("page = %+v, want empty", page)
		}
	})
}

func TestHistoryStorageError(t *testing.T) {
	logs := newMockLogRepo()
	logs.listErr = errors.New("boom")
	svc := newTestService(logs, true)

	_, err := svc.History(context.Background(), 5, "all", pagination.Params{Page: 1, Limit: 10})
	assertCode(t, err, "SERVER_ERROR")
}
