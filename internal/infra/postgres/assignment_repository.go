package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"secure-quiz-service/internal/domain"
)

// dateLayout is how test dates cross into the DATE column. Only the calendar day is kept.
const dateLayout = "2006-01-02"

func (s *Store) CreateAssignment(ctx context.Context, assignment domain.Assignment) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO assignments (id, quiz_id, student_id, test_date, completed, created_at)
		 VALUES ($1, $2, $3, $4::date, false, $5)`,
		assignment.ID, assignment.QuizID, assignment.StudentID,
		assignment.TestDate.Format(dateLayout), assignment.CreatedAt)
	switch pgCode(err) {
	case uniqueViolation:
		return domain.ErrAlreadyAssigned
	case foreignKeyViolation:
		return domain.ErrQuizNotFound
	}
	if err != nil {
		return fmt.Errorf("insert assignment: %w", err)
	}
	return nil
}

func (s *Store) GetAssignment(ctx context.Context, assignmentID string) (domain.Assignment, error) {
	var (
		a        domain.Assignment
		testDate string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, quiz_id, student_id, to_char(test_date, 'YYYY-MM-DD'), completed, COALESCE(result_id, ''), created_at
		 FROM assignments WHERE id = $1`, assignmentID).
		Scan(&a.ID, &a.QuizID, &a.StudentID, &testDate, &a.Completed, &a.ResultID, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, domain.ErrAssignmentNotFound
	}
	if err != nil {
		return domain.Assignment{}, fmt.Errorf("load assignment: %w", err)
	}
	if a.TestDate, err = parseDate(testDate); err != nil {
		return domain.Assignment{}, err
	}
	return a, nil
}

func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse test date %q: %w", s, err)
	}
	return t, nil
}

func (s *Store) ListAssignmentsByStudent(ctx context.Context, studentID string) ([]domain.AssignmentView, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT a.id, a.quiz_id, a.student_id, to_char(a.test_date, 'YYYY-MM-DD'), a.completed,
		        COALESCE(a.result_id, ''), a.created_at, q.title, q.total_questions,
		        (r.id IS NOT NULL AND NOT r.review_dismissed)
		 FROM assignments a
		 JOIN quizzes q ON q.id = a.quiz_id
		 LEFT JOIN results r ON r.assignment_id = a.id
		 WHERE a.student_id = $1
		 ORDER BY a.test_date, a.created_at`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	views := make([]domain.AssignmentView, 0)
	for rows.Next() {
		var (
			v        domain.AssignmentView
			testDate string
		)
		if err := rows.Scan(&v.ID, &v.QuizID, &v.StudentID, &testDate, &v.Completed, &v.ResultID, &v.CreatedAt,
			&v.QuizTitle, &v.TotalQuestions, &v.ReviewAvailable); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		if v.TestDate, err = parseDate(testDate); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// CompleteAssignment flips the completion flag and stores the result in one transaction.
// The conditional update is the guard: of two racing submissions only one sees a row.
func (s *Store) CompleteAssignment(ctx context.Context, assignmentID, studentID string, result domain.Result) error {
	review, err := json.Marshal(result.Review)
	if err != nil {
		return fmt.Errorf("marshal review: %w", err)
	}
	return s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE assignments SET completed = true, result_id = $3
			 WHERE id = $1 AND student_id = $2 AND completed = false`,
			assignmentID, studentID, result.ID)
		if err != nil {
			return fmt.Errorf("complete assignment: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var owned bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM assignments WHERE id = $1 AND student_id = $2)`,
				assignmentID, studentID).Scan(&owned); err != nil {
				return fmt.Errorf("check assignment: %w", err)
			}
			if !owned {
				return domain.ErrSubmitNotAllowed
			}
			return domain.ErrAlreadySubmitted
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO results (id, assignment_id, student_id, quiz_id, score, total_questions, percentage, review, review_dismissed, submitted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, false, $9)`,
			result.ID, assignmentID, studentID, result.QuizID, result.Score, result.TotalQuestions,
			result.Percentage, string(review), result.SubmittedAt)
		if pgCode(err) == uniqueViolation {
			return domain.ErrAlreadySubmitted
		}
		if err != nil {
			return fmt.Errorf("insert result: %w", err)
		}
		return nil
	})
}

func (s *Store) GetResult(ctx context.Context, assignmentID, studentID string) (domain.Result, error) {
	var (
		r   domain.Result
		raw []byte
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, assignment_id, student_id, quiz_id, score, total_questions, percentage, review, review_dismissed, submitted_at
		 FROM results WHERE assignment_id = $1 AND student_id = $2`, assignmentID, studentID).
		Scan(&r.ID, &r.AssignmentID, &r.StudentID, &r.QuizID, &r.Score, &r.TotalQuestions, &r.Percentage,
			&raw, &r.ReviewDismissed, &r.SubmittedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Result{}, domain.ErrResultNotFound
	}
	if err != nil {
		return domain.Result{}, fmt.Errorf("load result: %w", err)
	}
	if err := json.Unmarshal(raw, &r.Review); err != nil {
		return domain.Result{}, fmt.Errorf("unmarshal review: %w", err)
	}
	return r, nil
}

func (s *Store) DismissReview(ctx context.Context, assignmentID, studentID string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE results SET review_dismissed = true WHERE assignment_id = $1 AND student_id = $2`,
		assignmentID, studentID)
	if err != nil {
		return fmt.Errorf("dismiss review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrResultNotFound
	}
	return nil
}

func (s *Store) ListResultsByQuiz(ctx context.Context, quizID string) ([]domain.ResultSummary, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT r.student_id, COALESCE(u.username, ''), r.score, r.total_questions, r.percentage, r.submitted_at
		 FROM results r
		 LEFT JOIN users u ON u.id = r.student_id
		 WHERE r.quiz_id = $1
		 ORDER BY r.submitted_at`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ResultSummary, 0)
	for rows.Next() {
		var rs domain.ResultSummary
		if err := rows.Scan(&rs.StudentID, &rs.StudentName, &rs.Score, &rs.TotalQuestions, &rs.Percentage, &rs.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		out = append(out, rs)
	}
	return out, rows.Err()
}
