package memory

import (
	"context"
	"sort"

	"secure-quiz-service/internal/domain"
)

func (s *Store) CreateQuiz(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = cloneQuiz(quiz)
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return cloneQuiz(quiz), nil
}

func (s *Store) ListQuizzesByTeacher(_ context.Context, teacherID string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Quiz, 0)
	for _, quiz := range s.quizzes {
		if quiz.CreatedBy == teacherID {
			out = append(out, cloneQuiz(quiz))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AddQuestion(_ context.Context, question domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[question.QuizID]
	if !ok {
		return domain.Question{}, domain.ErrQuizNotFound
	}
	question.Position = len(s.questions[quiz.ID])
	stored := question
	stored.Options = append([]string(nil), question.Options...)
	s.questions[quiz.ID] = append(s.questions[quiz.ID], stored)
	quiz.TotalQuestions++
	s.quizzes[quiz.ID] = quiz
	return question, nil
}

func (s *Store) ListQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.questions[quizID]
	out := make([]domain.Question, len(stored))
	for i, q := range stored {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out, nil
}

func (s *Store) DeleteQuiz(_ context.Context, quizID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return domain.ErrQuizNotFound
	}
	for _, a := range s.assignments {
		if a.QuizID == quizID {
			return domain.ErrQuizInUse
		}
	}
	delete(s.quizzes, quizID)
	delete(s.questions, quizID)
	return nil
}

func cloneQuiz(q domain.Quiz) domain.Quiz {
	q.Terms = append([]string{}, q.Terms...)
	return q
}
