package screening

import (
	"context"
	"errors"
	"strings"

	"github.com/sereno/sereno/internal/platform/auth"
	"github.com/sereno/sereno/internal/platform/httperr"
	"github.com/sereno/sereno/pkg/pagination"
)

// Service orchestrates screening sessions: question listing, submission
// validation and scoring, result lookup, and history pagination.
type Service struct {
	questions QuestionRepository
	logs      LogRepository
	scorer    *Scorer

	// emptyHistoryAsError preserves the documented default of answering an
	// empty history page with NOT_FOUND instead of an empty list.
	emptyHistoryAsError bool
}

func NewService(questions QuestionRepository, logs LogRepository, scorer *Scorer, emptyHistoryAsError bool) *Service {
	if scorer == nil {
		scorer = DefaultScorer()
	}
	return &Service{
		questions:           questions,
		logs:                logs,
		scorer:              scorer,
		emptyHistoryAsError: emptyHistoryAsError,
	}
}

// ListQuestions returns the question set in sequence order.
func (s *Service) ListQuestions(ctx context.Context) ([]*Question, error) {
	questions, err := s.questions.List(ctx)
	if err != nil {
		return nil, httperr.Server("Failed to fetch questions", err)
	}
	if questions == nil {
		questions = []*Question{}
	}
	return questions, nil
}

// Submit validates a submission, scores it, and persists one append-only log
// row for the subject. The subject is the authenticated identity when
// present, otherwise the explicit sufferer_id in the submission; it is never
// defaulted silently.
func (s *Service) Submit(ctx context.Context, sub *Submission) (*Result, error) {
	if strings.TrimSpace(sub.TestType) == "" || sub.Answers == nil {
		return nil, httperr.Validation("Missing required fields")
	}

	suffererID := auth.UserIDFromContext(ctx)
	if suffererID == 0 {
		suffererID = sub.SuffererID
	}
	if suffererID <= 0 {
		return nil, httperr.Validation("Missing sufferer_id")
	}

	outcome := s.scorer.Score(sub.Answers)

	entry := &LogEntry{
		SuffererID:     suffererID,
		TestType:       sub.TestType,
		Score:          outcome.Total,
		Classification: outcome.Severity,
	}
	if err := s.logs.Insert(ctx, entry, sub.Answers); err != nil {
		return nil, httperr.DB("Failed to save test result", err)
	}

	return &Result{
		TestID:          FormatTestID(entry.ID),
		TestType:        entry.TestType,
		TotalScore:      outcome.Total,
		Severity:        outcome.Severity,
		TakenAt:         entry.CreatedAt,
		Recommendations: outcome.Recommendations,
	}, nil
}

// GetResult looks up a persisted result by its display id. The id may carry
// the display prefix or be the raw surrogate key.
func (s *Service) GetResult(ctx context.Context, rawID string) (*Result, error) {
	id, err := ParseTestID(rawID)
	if err != nil {
		return nil, httperr.NotFound("Test result not found")
	}

	entry, err := s.logs.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, httperr.NotFound("Test result not found")
	}
	if err != nil {
		return nil, httperr.DB("Failed to fetch test result", err)
	}

	return &Result{
		TestID:          FormatTestID(entry.ID),
		TestType:        entry.TestType,
		TotalScore:      entry.Score,
		Severity:        entry.Classification,
		TakenAt:         entry.CreatedAt,
		Recommendations: s.scorer.RecommendationsFor(entry.Classification),
	}, nil
}

// History returns one page of a subject's screening history, newest first.
func (s *Service) History(ctx context.Context, suffererID int64, testType string, p pagination.Params) (*HistoryPage, error) {
	entries, total, err := s.logs.ListBySufferer(ctx, suffererID, testType, p.Limit, p.Offset())
	if err != nil {
		return nil, httperr.Server("Failed to fetch test history", err)
	}

	if len(entries) == 0 && s.emptyHistoryAsError {
		return nil, httperr.NotFound("No test history found")
	}

	history := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		history = append(history, HistoryItem{
			TestID:     FormatTestID(e.ID),
			TestType:   e.TestType,
			TotalScore: e.Score,
			Severity:   e.Classification,
			TakenAt:    e.CreatedAt,
		})
	}

	return &HistoryPage{
		SuffererID: suffererID,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		History:    history,
	}, nil
}
