package screening

// Severity labels, ordered Mild < Moderate < Severe.
const (
	SeverityMild     = "Mild"
	SeverityModerate = "Moderate"
	SeveritySevere   = "Severe"
)

// baseRecommendation is returned for every severity.
const baseRecommendation = "Practice deep breathing daily."

// Outcome is the result of scoring one submission.
type Outcome struct {
	Total           int
	Severity        string
	Recommendations []string
}

// Scorer converts an answer sequence into a total score, a severity
// classification, and a recommendation list. It is a total function: any
// input, including an empty one, has a defined outcome and no error path.
//
// Weights maps an answer's selected option to its score contribution;
// options absent from the map contribute zero. Thresholds are evaluated in
// descending order. All fields are configuration; DefaultScorer gives the
// calibrated defaults.
type Scorer struct {
	Weights         map[string]int
	SevereAt        int
	ModerateAt      int
	Recommendations map[string][]string
}

// DefaultScorer returns a Scorer with the default answer weights
// (often=3, sometimes=1), thresholds (severe at 15, moderate at 10), and
// per-severity recommendations.
func DefaultScorer() *Scorer {
	return &Scorer{
		Weights: map[string]int{
			"often":     3,
			"sometimes": 1,
		},
		SevereAt:   15,
		ModerateAt: 10,
		Recommendations: map[string][]string{
			SeverityMild: {baseRecommendation},
			SeverityModerate: {
				baseRecommendation,
				"Follow module 2 videos this week.",
			},
			SeveritySevere: {
				baseRecommendation,
				"Follow module 2 videos this week.",
				"Schedule a session with your therapist.",
			},
		},
	}
}

// Score computes the outcome for an answer sequence.
func (s *Scorer) Score(answers []Answer) Outcome {
	total := 0
	for _, ans := range answers {
		total += s.Weights[ans.SelectedOption]
	}

	severity := s.Classify(total)
	return Outcome{
		Total:           total,
		Severity:        severity,
		Recommendations: s.RecommendationsFor(severity),
	}
}

// Classify maps a total score to its severity label.
func (s *Scorer) Classify(total int) string {
	switch {
	case total >= s.SevereAt:
		return SeveritySevere
	case total >= s.ModerateAt:
		return SeverityModerate
	default:
		return SeverityMild
	}
}

// RecommendationsFor returns a copy of the recommendation list for the given
// severity. The list is never empty: unknown severities fall back to the
// base recommendation.
func (s *Scorer) RecommendationsFor(severity string) []string {
	recs, ok := s.Recommendations[severity]
	if !ok || len(recs) == 0 {
		return []string{baseRecommendation}
	}
	out := make([]string, len(recs))
	copy(out, recs)
	return out
}
