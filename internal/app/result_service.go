package app

import (
	"context"

	"secure-quiz-service/internal/domain"
)

// ResultService exposes graded results to the student who owns them.
type ResultService struct {
	results ResultRepository
	codec   Codec
	retry   Retrier
}

func NewResultService(results ResultRepository, codec Codec, retry Retrier) *ResultService {
	return &ResultService{results: results, codec: codec, retry: retry}
}

// ResultView is a result with its review decrypted. Review is nil once dismissed.
type ResultView struct {
	Score           int                 `json:"score"`
	TotalQuestions  int                 `json:"totalQuestions"`
	Percentage      float64             `json:"percentage"`
	Grade           string              `json:"grade"`
	ReviewDismissed bool                `json:"reviewDismissed"`
	Review          []domain.ReviewItem `json:"review,omitempty"`
}

// GetResult returns ErrResultNotFound unless both the assignment and the student match.
func (s *ResultService) GetResult(ctx context.Context, assignmentID, studentID string) (ResultView, error) {
	result, err := retryValue(ctx, s.retry, "get result", func() (domain.Result, error) {
		return s.results.GetResult(ctx, assignmentID, studentID)
	})
	if err != nil {
		return ResultView{}, err
	}

	view := ResultView{
		Score:           result.Score,
		TotalQuestions:  result.TotalQuestions,
		Percentage:      result.Percentage,
		Grade:           domain.Grade(result.Percentage),
		ReviewDismissed: result.ReviewDismissed,
	}
	if result.ReviewDismissed {
		return view, nil
	}

	view.Review = make([]domain.ReviewItem, 0, len(result.Review))
	for _, item := range result.Review {
		view.Review = append(view.Review, domain.ReviewItem{
			QuestionText:   s.codec.Decrypt(item.QuestionText),
			Options:        s.codec.DecryptAll(item.Options),
			CorrectAnswer:  s.codec.Decrypt(item.CorrectAnswer),
			SelectedAnswer: s.codec.Decrypt(item.SelectedAnswer),
			IsCorrect:      item.IsCorrect,
		})
	}
	return view, nil
}

// DismissReview hides the review from later GetResult calls. Repeating it is a no-op.
func (s *ResultService) DismissReview(ctx context.Context, assignmentID, studentID string) error {
	return s.retry.do(ctx, "dismiss review", func() error {
		return s.results.DismissReview(ctx, assignmentID, studentID)
	})
}
