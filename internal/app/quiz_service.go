package app

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"secure-quiz-service/internal/domain"
)

// QuizService contains the core quiz-taking use cases: serving an assignment's
// questions on its scheduled day and grading the single submission.
type QuizService struct {
	store     Store
	codec     Codec
	retry     Retrier
	timeLimit time.Duration
	now       func() time.Time
	shuffle   func(n int, swap func(i, j int))
}

// QuizServiceOption customizes a QuizService.
type QuizServiceOption func(*QuizService)

// WithClock replaces time.Now, for deterministic scheduling in tests.
func WithClock(now func() time.Time) QuizServiceOption {
	return func(s *QuizService) { s.now = now }
}

// WithRetrier sets the store retry policy.
func WithRetrier(r Retrier) QuizServiceOption {
	return func(s *QuizService) { s.retry = r }
}

// WithTimeLimit sets the countdown advertised to clients.
func WithTimeLimit(d time.Duration) QuizServiceOption {
	return func(s *QuizService) { s.timeLimit = d }
}

func NewQuizService(store Store, codec Codec, opts ...QuizServiceOption) *QuizService {
	s := &QuizService{
		store:     store,
		codec:     codec,
		retry:     NoRetry,
		timeLimit: time.Hour,
		now:       time.Now,
		shuffle:   rand.Shuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServedQuestion is a decrypted question without its answer.
type ServedQuestion struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"questionText"`
	Options      []string `json:"options"`
}

// QuizPaper is what a student sees when starting an attempt.
type QuizPaper struct {
	QuizTitle        string           `json:"quizTitle"`
	Terms            []string         `json:"terms"`
	TimeLimitSeconds int              `json:"timeLimitSeconds"`
	Questions        []ServedQuestion `json:"questions"`
}

// Score is the immediate grading summary returned by Submit.
type Score struct {
	Score          int     `json:"score"`
	TotalQuestions int     `json:"totalQuestions"`
	Percentage     float64 `json:"percentage"`
}

// TimeLimit is the attempt duration advertised to clients.
func (s *QuizService) TimeLimit() time.Duration { return s.timeLimit }

// Now exposes the service clock so transports agree with eligibility checks.
func (s *QuizService) Now() time.Time { return s.now() }

// Deadline is when an attempt started at started runs out: the time limit,
// or the end of the scheduled day if that comes first.
func (s *QuizService) Deadline(assignment domain.Assignment, started time.Time) time.Time {
	deadline := started.Add(s.timeLimit)
	y, m, d := assignment.TestDate.Date()
	endOfDay := time.Date(y, m, d+1, 0, 0, 0, 0, started.Location())
	if endOfDay.Before(deadline) {
		return endOfDay
	}
	return deadline
}

// ListAssignments returns the student's assignments ordered by test date.
func (s *QuizService) ListAssignments(ctx context.Context, studentID string) ([]domain.AssignmentView, error) {
	return retryValue(ctx, s.retry, "list assignments", func() ([]domain.AssignmentView, error) {
		return s.store.ListAssignmentsByStudent(ctx, studentID)
	})
}

// Eligible returns the assignment if studentID may take it right now.
func (s *QuizService) Eligible(ctx context.Context, assignmentID, studentID string) (domain.Assignment, error) {
	assignment, err := retryValue(ctx, s.retry, "get assignment", func() (domain.Assignment, error) {
		return s.store.GetAssignment(ctx, assignmentID)
	})
	if err != nil {
		return domain.Assignment{}, err
	}
	if assignment.StudentID != studentID {
		return domain.Assignment{}, domain.ErrNotAssignee
	}
	if assignment.Completed {
		return domain.Assignment{}, domain.ErrAlreadyCompleted
	}
	if !assignment.ScheduledOn(s.now()) {
		return domain.Assignment{}, domain.ErrNotScheduledToday
	}
	return assignment, nil
}

// ServeQuestions returns the quiz's questions in a fresh random order, decrypted,
// without correct answers. It never writes, so it can be called repeatedly.
func (s *QuizService) ServeQuestions(ctx context.Context, assignmentID, studentID string) (QuizPaper, error) {
	assignment, err := s.Eligible(ctx, assignmentID, studentID)
	if err != nil {
		return QuizPaper{}, err
	}

	var (
		quiz      domain.Quiz
		questions []domain.Question
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q, err := retryValue(gctx, s.retry, "get quiz", func() (domain.Quiz, error) {
			return s.store.GetQuiz(gctx, assignment.QuizID)
		})
		quiz = q
		return err
	})
	g.Go(func() error {
		qs, err := retryValue(gctx, s.retry, "list questions", func() ([]domain.Question, error) {
			return s.store.ListQuestions(gctx, assignment.QuizID)
		})
		questions = qs
		return err
	})
	if err := g.Wait(); err != nil {
		return QuizPaper{}, err
	}

	s.shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	served := make([]ServedQuestion, 0, len(questions))
	for _, q := range questions {
		served = append(served, ServedQuestion{
			ID:           q.ID,
			QuestionText: s.codec.Decrypt(q.QuestionText),
			Options:      s.codec.DecryptAll(q.Options),
		})
	}
	terms := quiz.Terms
	if terms == nil {
		terms = []string{}
	}
	return QuizPaper{
		QuizTitle:        quiz.Title,
		Terms:            terms,
		TimeLimitSeconds: int(s.timeLimit / time.Second),
		Questions:        served,
	}, nil
}

// Submit grades answers against the stored questions and completes the assignment.
// Only the first submission succeeds; the completion flip and the result insert are one write.
func (s *QuizService) Submit(ctx context.Context, assignmentID, studentID string, answers []domain.AnswerSubmission) (Score, error) {
	assignment, err := retryValue(ctx, s.retry, "get assignment", func() (domain.Assignment, error) {
		return s.store.GetAssignment(ctx, assignmentID)
	})
	if err != nil {
		if domain.Permanent(err) {
			return Score{}, domain.ErrSubmitNotAllowed
		}
		return Score{}, err
	}
	if assignment.StudentID != studentID {
		return Score{}, domain.ErrSubmitNotAllowed
	}
	if assignment.Completed {
		return Score{}, domain.ErrAlreadySubmitted
	}

	questions, err := retryValue(ctx, s.retry, "list questions", func() ([]domain.Question, error) {
		return s.store.ListQuestions(ctx, assignment.QuizID)
	})
	if err != nil {
		return Score{}, err
	}

	result, err := s.grade(questions, answers)
	if err != nil {
		return Score{}, err
	}
	result.ID = uuid.NewString()
	result.AssignmentID = assignment.ID
	result.StudentID = studentID
	result.QuizID = assignment.QuizID
	result.SubmittedAt = s.now()

	attempts := 0
	err = s.retry.do(ctx, "complete assignment", func() error {
		attempts++
		return s.store.CompleteAssignment(ctx, assignment.ID, studentID, result)
	})
	if errors.Is(err, domain.ErrAlreadySubmitted) && attempts > 1 && s.landed(ctx, assignment.ID, result.ID) {
		err = nil
	}
	if err != nil {
		return Score{}, err
	}

	return Score{
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
	}, nil
}

// landed reports whether an earlier attempt whose acknowledgement was lost did commit resultID.
func (s *QuizService) landed(ctx context.Context, assignmentID, resultID string) bool {
	stored, err := retryValue(ctx, s.retry, "get assignment", func() (domain.Assignment, error) {
		return s.store.GetAssignment(ctx, assignmentID)
	})
	return err == nil && stored.ResultID == resultID
}

// grade walks questions in stored order. A missing answer counts as an empty selection.
// Comparison is exact string equality against the decrypted correct answer.
func (s *QuizService) grade(questions []domain.Question, answers []domain.AnswerSubmission) (domain.Result, error) {
	if len(questions) == 0 {
		return domain.Result{}, domain.ErrNoQuestions
	}

	selected := make(map[string]string, len(answers))
	for _, a := range answers {
		if _, seen := selected[a.QuestionID]; !seen {
			selected[a.QuestionID] = a.SelectedAnswer
		}
	}

	score := 0
	review := make([]domain.ReviewItem, 0, len(questions))
	for _, q := range questions {
		choice := selected[q.ID]
		correct := s.codec.Decrypt(q.CorrectAnswer)
		// An undecryptable key must not match an empty selection.
		isCorrect := correct != "" && choice == correct
		if isCorrect {
			score++
		}

		choiceToken, err := s.codec.Encrypt(choice)
		if err != nil {
			return domain.Result{}, err
		}
		review = append(review, domain.ReviewItem{
			QuestionText:   q.QuestionText,
			Options:        append([]string(nil), q.Options...),
			CorrectAnswer:  q.CorrectAnswer,
			SelectedAnswer: choiceToken,
			IsCorrect:      isCorrect,
		})
	}

	total := len(questions)
	return domain.Result{
		Score:          score,
		TotalQuestions: total,
		Percentage:     100 * float64(score) / float64(total),
		Review:         review,
	}, nil
}
