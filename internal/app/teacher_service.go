package app

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"secure-quiz-service/internal/domain"
)

// TeacherService covers quiz authoring and result review.
type TeacherService struct {
	store Store
	codec Codec
	retry Retrier
	now   func() time.Time
}

func NewTeacherService(store Store, codec Codec, retry Retrier) *TeacherService {
	return &TeacherService{store: store, codec: codec, retry: retry, now: time.Now}
}

// NewQuiz is the authoring input for a quiz.
type NewQuiz struct {
	Title   string
	Subject string
	Terms   []string
}

// NewQuestion is the plaintext authoring input for a question.
type NewQuestion struct {
	QuizID        string
	QuestionText  string
	Options       []string
	CorrectAnswer string
	Explanation   string
}

func (s *TeacherService) CreateQuiz(ctx context.Context, teacherID string, in NewQuiz) (domain.Quiz, error) {
	if strings.TrimSpace(in.Title) == "" {
		return domain.Quiz{}, domain.Invalid("please enter a quiz title")
	}
	if len(in.Terms) > domain.MaxTerms {
		return domain.Quiz{}, domain.Invalid("a quiz has at most 10 terms")
	}
	terms := append([]string{}, in.Terms...)
	quiz := domain.Quiz{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Subject:   in.Subject,
		CreatedBy: teacherID,
		Terms:     terms,
		CreatedAt: s.now(),
	}
	if err := s.retry.do(ctx, "create quiz", func() error {
		return s.store.CreateQuiz(ctx, quiz)
	}); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// AddQuestion encrypts every text field before it reaches the store.
func (s *TeacherService) AddQuestion(ctx context.Context, in NewQuestion) (domain.Question, error) {
	if err := validateQuestion(in); err != nil {
		return domain.Question{}, err
	}

	text, err := s.codec.Encrypt(in.QuestionText)
	if err != nil {
		return domain.Question{}, err
	}
	options, err := s.codec.EncryptAll(in.Options)
	if err != nil {
		return domain.Question{}, err
	}
	correct, err := s.codec.Encrypt(in.CorrectAnswer)
	if err != nil {
		return domain.Question{}, err
	}
	explanation, err := s.codec.Encrypt(in.Explanation)
	if err != nil {
		return domain.Question{}, err
	}

	question := domain.Question{
		ID:            uuid.NewString(),
		QuizID:        in.QuizID,
		QuestionText:  text,
		Options:       options,
		CorrectAnswer: correct,
		Explanation:   explanation,
	}
	return retryValue(ctx, s.retry, "add question", func() (domain.Question, error) {
		return s.store.AddQuestion(ctx, question)
	})
}

func validateQuestion(in NewQuestion) error {
	if in.QuizID == "" || in.QuestionText == "" || in.CorrectAnswer == "" {
		return domain.Invalid("please provide all fields")
	}
	if len(in.Options) != domain.OptionCount {
		return domain.Invalid("please provide 4 options")
	}
	match := false
	for _, opt := range in.Options {
		if opt == "" {
			return domain.Invalid("options must not be empty")
		}
		if opt == in.CorrectAnswer {
			match = true
		}
	}
	if !match {
		return domain.Invalid("correct answer must be one of the options")
	}
	return nil
}

func (s *TeacherService) ListQuizzes(ctx context.Context, teacherID string) ([]domain.Quiz, error) {
	return retryValue(ctx, s.retry, "list quizzes", func() ([]domain.Quiz, error) {
		return s.store.ListQuizzesByTeacher(ctx, teacherID)
	})
}

// DeleteQuiz removes an unassigned quiz together with its questions.
func (s *TeacherService) DeleteQuiz(ctx context.Context, quizID string) error {
	return s.retry.do(ctx, "delete quiz", func() error {
		return s.store.DeleteQuiz(ctx, quizID)
	})
}

// QuizResults lists every submitted result for a quiz.
func (s *TeacherService) QuizResults(ctx context.Context, quizID string) ([]domain.ResultSummary, error) {
	if _, err := retryValue(ctx, s.retry, "get quiz", func() (domain.Quiz, error) {
		return s.store.GetQuiz(ctx, quizID)
	}); err != nil {
		return nil, err
	}
	return retryValue(ctx, s.retry, "list results", func() ([]domain.ResultSummary, error) {
		return s.store.ListResultsByQuiz(ctx, quizID)
	})
}
