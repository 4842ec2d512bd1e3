package screening

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sereno/sereno/internal/platform/httperr"
	"github.com/sereno/sereno/internal/platform/middleware"
	"github.com/sereno/sereno/pkg/pagination"
)

func newTestHandler(questions *mockQuestionRepo, logs *mockLogRepo) *Handler {
	return NewHandler(NewService(questions, logs, DefaultScorer(), true))
}

func TestHandlerListQuestions(t *testing.T) {
	h := newTestHandler(&mockQuestionRepo{questions: []*Question{
		{ID: 1, Text: "Do you worry about your health?", Options: []Option{
			{Value: "never", Label: "Never", Score: 0},
			{Value: "often", Label: "Often", Score: 3},
		}},
	}}, newMockLogRepo())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test/questions", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListQuestions(c); err != nil {
		t.Fatalf("ListQuestions: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	if !strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "[") {
		t.Errorf("body = %s, want a bare JSON list", rec.Body.String())
	}
	var questions []*Question
	if err := json.Unmarshal(rec.Body.Bytes(), &questions); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(questions) != 1 || questions[0].Text == "" {
		t.Errorf("questions = %+v", questions)
	}
}

func TestHandlerListQuestionsError(t *testing.T) {
	h := newTestHandler(&mockQuestionRepo{err: errors.New("boom")}, newMockLogRepo())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test/questions", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.ListQuestions(c)
	assertCode(t, err, "SERVER_ERROR")
}

func TestHandlerSubmit(t *testing.T) {
	logs := newMockLogRepo()
	h := newTestHandler(&mockQuestionRepo{}, logs)

	body := `{"testType":"anxiety","sufferer_id":3,"answers":[{"questionId":1,"selectedOption":"often"}]}`
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/test/submit", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Submit(c); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}

	var result Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.TestID != "t_1" || result.TotalScore != 3 {
		t.Errorf("result = %+v", result)
	}
	if logs.byID(1).SuffererID != 3 {
		t.Errorf("suffererID = %d, want 3", logs.byID(1).SuffererID)
	}
}

func TestHandlerSubmitBadBody(t *testing.T) {
	h := newTestHandler(&mockQuestionRepo{}, newMockLogRepo())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/test/submit", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.Submit(c)
	assertCode(t, err, "VALIDATION_ERROR")
}

func TestHandlerSubmitOversizedBody(t *testing.T) {
	h := newTestHandler(&mockQuestionRepo{}, newMockLogRepo())

	e := echo.New()
	e.HTTPErrorHandler = httperr.Handler(zerolog.Nop())
	e.POST("/test/submit", h.Submit, middleware.BodyLimit("1K"))

	body := `{"testType":"anxiety","answers":[{"questionId":1,"selectedOption":"` +
		strings.Repeat("x", 2048) + `"}]}`
	req := httptest.NewRequest(http.MethodPost, "/test/submit", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
	var env struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if env.Error.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %s, want VALIDATION_ERROR", env.Error.Code)
	}
}

func TestHandlerGetResult(t *testing.T) {
	logs := newMockLogRepo()
	h := newTestHandler(&mockQuestionRepo{}, logs)

	if err := logs.Insert(authedCtx(1), &LogEntry{SuffererID: 1, TestType: "anxiety", Score: 13, Classification: SeverityModerate}, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/test/results/:testId")
	c.SetParamNames("testId")
	c.SetParamValues("t_1")

	if err := h.GetResult(c); err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var result Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if result.Severity != SeverityModerate || result.TotalScore != 13 {
		t.Errorf("result = %+v", result)
	}
}

func TestHandlerGetResultNotFound(t *testing.T) {
	h := newTestHandler(&mockQuestionRepo{}, newMockLogRepo())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetParamNames("testId")
	c.SetParamValues("t_99")

	err := h.GetResult(c)
	assertCode(t, err, "NOT_FOUND")
}

func TestHandlerHistory(t *testing.T) {
	logs := newMockLogRepo()
	h := newTestHandler(&mockQuestionRepo{}, logs)

	for i := 0; i < 3; i++ {
		if err := logs.Insert(authedCtx(5), &LogEntry{SuffererID: 5, TestType: "anxiety", Classification: SeverityMild}, nil); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test/history?sufferer_id=5&page=1&limit=2", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.History(c); err != nil {
		t.Fatalf("History: %v", err)
	}

	var page HistoryPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.Total != 3 || len(page.History) != 2 || page.SuffererID != 5 {
		t.Errorf("page = %+v", page)
	}
}

func TestHandlerHistoryValidation(t *testing.T) {
	h := newTestHandler(&mockQuestionRepo{}, newMockLogRepo())

	cases := []struct {
		name  string
		query string
	}{
		{"missing sufferer_id", ""},
		{"non-numeric sufferer_id", "sufferer_id=abc"},
		{"non-positive sufferer_id", "sufferer_id=0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/test/history?"+tc.query, nil)
			c := e.NewContext(req, httptest.NewRecorder())

			err := h.History(c)
			assertCode(t, err, "VALIDATION_ERROR")
		})
	}
}

func TestHandlerHistoryDefaultsPagination(t *testing.T) {
	logs := newMockLogRepo()
	h := newTestHandler(&mockQuestionRepo{}, logs)

	if err := logs.Insert(authedCtx(5), &LogEntry{SuffererID: 5, TestType: "anxiety", Classification: SeverityMild}, nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test/history?sufferer_id=5", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.History(c); err != nil {
		t.Fatalf("History: %v", err)
	}

	var page HistoryPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if page.Page != pagination.DefaultPage || page.Limit != pagination.DefaultLimit {
		t.Errorf("page/limit = %d/%d, want defaults", page.Page, page.Limit)
	}
}
