package profile

import (
	"context"
	"strings"

	"go-autoapply/internal/models"
)

// Provider returns the persona snapshot used to fill application forms.
// Treated as a black box: callers tolerate missing values field by field.
type Provider interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// StaticAnswers answers custom form questions from configured defaults.
// Matching is by case-insensitive fragment, so a "years of experience"
// entry answers "How many years of experience do you have?".
type StaticAnswers struct {
	answers map[string]string
}

func NewStaticAnswers(answers map[string]string) *StaticAnswers {
	normalized := make(map[string]string, len(answers))
	for fragment, answer := range answers {
		normalized[strings.ToLower(strings.TrimSpace(fragment))] = answer
	}
	return &StaticAnswers{answers: normalized}
}

// AnswerQuestion returns the configured answer whose fragment appears in
// the question, or "" when nothing matches. An empty answer is recorded
// by the filler as an unanswered field, never an abort.
func (s *StaticAnswers) AnswerQuestion(ctx context.Context, jobID, question string) (string, error) {
	q := strings.ToLower(question)
	for fragment, answer := range s.answers {
		if fragment != "" && strings.Contains(q, fragment) {
			return answer, nil
		}
	}
	return "", nil
}
