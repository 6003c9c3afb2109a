package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"secure-quiz-service/internal/domain"
)

// BcryptCost matches the cost used for provisioned accounts.
const BcryptCost = 12

// MinPasswordLength applies to provisioned accounts.
const MinPasswordLength = 6

// AdminService provisions accounts and schedules quizzes for students.
type AdminService struct {
	store Store
	retry Retrier
	cost  int
	now   func() time.Time
}

func NewAdminService(store Store, retry Retrier) *AdminService {
	return &AdminService{store: store, retry: retry, cost: BcryptCost, now: time.Now}
}

// NewUser is the provisioning input for an account.
type NewUser struct {
	Username string
	Password string
	Role     domain.Role
}

// NewAssignment schedules a quiz for a student. Only the date part of TestDate is kept.
type NewAssignment struct {
	QuizID    string
	StudentID string
	TestDate  time.Time
}

func (s *AdminService) CreateUser(ctx context.Context, in NewUser) (domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" || in.Password == "" || in.Role == "" {
		return domain.User{}, domain.Invalid("please provide username, password, and role")
	}
	if !in.Role.Valid() {
		return domain.User{}, domain.Invalid("role must be admin, teacher, or student")
	}
	if len(in.Password) < MinPasswordLength {
		return domain.User{}, domain.Invalid("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         in.Role,
		CreatedAt:    s.now(),
	}
	if err := s.retry.do(ctx, "create user", func() error {
		return s.store.CreateUser(ctx, user)
	}); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// ListUsers returns all users, or only those with role when it is set.
func (s *AdminService) ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error) {
	return retryValue(ctx, s.retry, "list users", func() ([]domain.User, error) {
		return s.store.ListUsers(ctx, role)
	})
}

func (s *AdminService) AssignQuiz(ctx context.Context, in NewAssignment) (domain.Assignment, error) {
	student, err := retryValue(ctx, s.retry, "get user", func() (domain.User, error) {
		return s.store.GetUser(ctx, in.StudentID)
	})
	if errors.Is(err, domain.ErrNotFound) || (err == nil && student.Role != domain.RoleStudent) {
		return domain.Assignment{}, domain.ErrStudentNotFound
	}
	if err != nil {
		return domain.Assignment{}, err
	}
	if _, err := retryValue(ctx, s.retry, "get quiz", func() (domain.Quiz, error) {
		return s.store.GetQuiz(ctx, in.QuizID)
	}); err != nil {
		return domain.Assignment{}, err
	}

	y, m, d := in.TestDate.Date()
	assignment := domain.Assignment{
		ID:        uuid.NewString(),
		QuizID:    in.QuizID,
		StudentID: in.StudentID,
		TestDate:  time.Date(y, m, d, 0, 0, 0, 0, time.Local),
		CreatedAt: s.now(),
	}
	if err := s.retry.do(ctx, "create assignment", func() error {
		return s.store.CreateAssignment(ctx, assignment)
	}); err != nil {
		return domain.Assignment{}, err
	}
	return assignment, nil
}
