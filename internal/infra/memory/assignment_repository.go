package memory

import (
	"context"
	"sort"

	"secure-quiz-service/internal/domain"
)

func (s *Store) CreateAssignment(_ context.Context, assignment domain.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.assignments {
		if existing.QuizID == assignment.QuizID && existing.StudentID == assignment.StudentID {
			return domain.ErrAlreadyAssigned
		}
	}
	s.assignments[assignment.ID] = assignment
	return nil
}

func (s *Store) GetAssignment(_ context.Context, assignmentID string) (domain.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	assignment, ok := s.assignments[assignmentID]
	if !ok {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	return assignment, nil
}

func (s *Store) ListAssignmentsByStudent(_ context.Context, studentID string) ([]domain.AssignmentView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.AssignmentView, 0)
	for _, a := range s.assignments {
		if a.StudentID != studentID {
			continue
		}
		quiz := s.quizzes[a.QuizID]
		result, hasResult := s.results[a.ID]
		out = append(out, domain.AssignmentView{
			Assignment:      a,
			QuizTitle:       quiz.Title,
			TotalQuestions:  quiz.TotalQuestions,
			ReviewAvailable: hasResult && !result.ReviewDismissed,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TestDate.Before(out[j].TestDate) })
	return out, nil
}

// CompleteAssignment holds the write lock across the check and both writes.
func (s *Store) CompleteAssignment(_ context.Context, assignmentID, studentID string, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	assignment, ok := s.assignments[assignmentID]
	if !ok || assignment.StudentID != studentID {
		return domain.ErrSubmitNotAllowed
	}
	if assignment.Completed {
		return domain.ErrAlreadySubmitted
	}
	if _, exists := s.results[assignmentID]; exists {
		return domain.ErrAlreadySubmitted
	}
	assignment.Completed = true
	assignment.ResultID = result.ID
	s.assignments[assignmentID] = assignment
	s.results[assignmentID] = result
	return nil
}

func (s *Store) GetResult(_ context.Context, assignmentID, studentID string) (domain.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result, ok := s.results[assignmentID]
	if !ok || result.StudentID != studentID {
		return domain.Result{}, domain.ErrResultNotFound
	}
	return result, nil
}

func (s *Store) DismissReview(_ context.Context, assignmentID, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.results[assignmentID]
	if !ok || result.StudentID != studentID {
		return domain.ErrResultNotFound
	}
	result.ReviewDismissed = true
	s.results[assignmentID] = result
	return nil
}

func (s *Store) ListResultsByQuiz(_ context.Context, quizID string) ([]domain.ResultSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ResultSummary, 0)
	for _, r := range s.results {
		if r.QuizID != quizID {
			continue
		}
		out = append(out, domain.ResultSummary{
			StudentID:      r.StudentID,
			StudentName:    s.users[r.StudentID].Username,
			Score:          r.Score,
			TotalQuestions: r.TotalQuestions,
			Percentage:     r.Percentage,
			SubmittedAt:    r.SubmittedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}
