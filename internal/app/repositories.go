package app

import (
	"context"
	"time"

	"secure-quiz-service/internal/domain"
)

// QuizRepository is the content store for quizzes and their encrypted questions.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	ListQuizzesByTeacher(ctx context.Context, teacherID string) ([]domain.Quiz, error)
	// AddQuestion appends the question after the quiz's last one and bumps the quiz's
	// question count in the same write.
	AddQuestion(ctx context.Context, question domain.Question) (domain.Question, error)
	// ListQuestions returns questions in authoring order.
	ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	// DeleteQuiz removes a quiz and its questions, or fails with ErrQuizInUse while
	// assignments reference it.
	DeleteQuiz(ctx context.Context, quizID string) error
}

// AssignmentRepository is the ledger binding quizzes to students.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment domain.Assignment) error
	GetAssignment(ctx context.Context, assignmentID string) (domain.Assignment, error)
	ListAssignmentsByStudent(ctx context.Context, studentID string) ([]domain.AssignmentView, error)
	// CompleteAssignment flips completed to true only if it is still false and stores
	// result in the same transaction. A lost race returns ErrAlreadySubmitted and writes nothing.
	CompleteAssignment(ctx context.Context, assignmentID, studentID string, result domain.Result) error
}

// ResultRepository reads graded results. Lookups always match both assignment and student.
type ResultRepository interface {
	GetResult(ctx context.Context, assignmentID, studentID string) (domain.Result, error)
	DismissReview(ctx context.Context, assignmentID, studentID string) error
	ListResultsByQuiz(ctx context.Context, quizID string) ([]domain.ResultSummary, error)
}

// UserRepository stores provisioned accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user domain.User) error
	GetUser(ctx context.Context, userID string) (domain.User, error)
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// Store is the single shared persistent store every service works against.
type Store interface {
	QuizRepository
	AssignmentRepository
	ResultRepository
	UserRepository
}

// TokenDenylist remembers logged-out token ids until they would have expired anyway.
type TokenDenylist interface {
	Revoke(ctx context.Context, tokenID string, until time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Codec encrypts question content for storage.
type Codec interface {
	Encrypt(plaintext string) (string, error)
	EncryptAll(plaintexts []string) ([]string, error)
	Decrypt(token string) string
	DecryptAll(tokens []string) []string
}
