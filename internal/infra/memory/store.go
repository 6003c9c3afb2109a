package memory

import (
	"context"
	"sort"
	"sync"

	"secure-quiz-service/internal/domain"
)

// Store is an in-memory implementation of app.Store (useful for tests/demos).
// One lock guards every collection so multi-entity writes are atomic.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	quizzes     map[string]domain.Quiz
	questions   map[string][]domain.Question
	assignments map[string]domain.Assignment
	results     map[string]domain.Result // keyed by assignment id
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		quizzes:     make(map[string]domain.Quiz),
		questions:   make(map[string][]domain.Question),
		assignments: make(map[string]domain.Assignment),
		results:     make(map[string]domain.Result),
	}
}

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Username == user.Username {
			return domain.ErrUsernameTaken
		}
	}
	s.users[user.ID] = user
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

func (s *Store) ListUsers(_ context.Context, role domain.Role) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.users))
	for _, user := range s.users {
		if role == "" || user.Role == role {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}
