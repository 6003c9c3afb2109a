package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"secure-quiz-service/internal/domain"
)

const quizColumns = `id, title, subject, created_by, terms, total_questions, created_at`

func scanQuiz(row pgx.Row) (domain.Quiz, error) {
	var (
		q   domain.Quiz
		raw []byte
	)
	if err := row.Scan(&q.ID, &q.Title, &q.Subject, &q.CreatedBy, &raw, &q.TotalQuestions, &q.CreatedAt); err != nil {
		return domain.Quiz{}, err
	}
	if err := json.Unmarshal(raw, &q.Terms); err != nil {
		return domain.Quiz{}, fmt.Errorf("unmarshal terms: %w", err)
	}
	return q, nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	terms := quiz.Terms
	if terms == nil {
		terms = []string{}
	}
	raw, err := json.Marshal(terms)
	if err != nil {
		return fmt.Errorf("marshal terms: %w", err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, title, subject, created_by, terms, total_questions, created_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, 0, $6)`,
		quiz.ID, quiz.Title, quiz.Subject, quiz.CreatedBy, string(raw), quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := scanQuiz(s.pool.QueryRow(ctx, `SELECT `+quizColumns+` FROM quizzes WHERE id = $1`, quizID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("load quiz: %w", err)
	}
	return quiz, nil
}

func (s *Store) ListQuizzesByTeacher(ctx context.Context, teacherID string) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE created_by = $1 ORDER BY created_at DESC`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

// AddQuestion bumps the quiz's question count and inserts the question at the next position.
// The count update locks the quiz row, so concurrent adds get distinct positions.
func (s *Store) AddQuestion(ctx context.Context, question domain.Question) (domain.Question, error) {
	options, err := json.Marshal(question.Options)
	if err != nil {
		return domain.Question{}, fmt.Errorf("marshal options: %w", err)
	}
	err = s.inTx(ctx, func(tx pgx.Tx) error {
		var total int
		err := tx.QueryRow(ctx,
			`UPDATE quizzes SET total_questions = total_questions + 1 WHERE id = $1 RETURNING total_questions`,
			question.QuizID).Scan(&total)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrQuizNotFound
		}
		if err != nil {
			return fmt.Errorf("count question: %w", err)
		}
		question.Position = total - 1

		_, err = tx.Exec(ctx,
			`INSERT INTO questions (id, quiz_id, position, question_text, options, correct_answer, explanation)
			 VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7)`,
			question.ID, question.QuizID, question.Position, question.QuestionText, string(options),
			question.CorrectAnswer, question.Explanation)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
		return nil
	})
	if err != nil {
		return domain.Question{}, err
	}
	return question, nil
}

func (s *Store) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, position, question_text, options, correct_answer, explanation
		 FROM questions WHERE quiz_id = $1 ORDER BY position`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var (
			q   domain.Question
			raw []byte
		)
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Position, &q.QuestionText, &raw, &q.CorrectAnswer, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal(raw, &q.Options); err != nil {
			return nil, fmt.Errorf("unmarshal options: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// DeleteQuiz refuses quizzes that have assignments, otherwise removes the quiz and its questions.
func (s *Store) DeleteQuiz(ctx context.Context, quizID string) error {
	return s.inTx(ctx, func(tx pgx.Tx) error {
		var id string
		err := tx.QueryRow(ctx, `SELECT id FROM quizzes WHERE id = $1 FOR UPDATE`, quizID).Scan(&id)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrQuizNotFound
		}
		if err != nil {
			return fmt.Errorf("lock quiz: %w", err)
		}

		var assigned bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM assignments WHERE quiz_id = $1)`, quizID).Scan(&assigned); err != nil {
			return fmt.Errorf("check assignments: %w", err)
		}
		if assigned {
			return domain.ErrQuizInUse
		}

		if _, err := tx.Exec(ctx, `DELETE FROM questions WHERE quiz_id = $1`, quizID); err != nil {
			return fmt.Errorf("delete questions: %w", err)
		}
		_, err = tx.Exec(ctx, `DELETE FROM quizzes WHERE id = $1`, quizID)
		if pgCode(err) == foreignKeyViolation {
			return domain.ErrQuizInUse
		}
		if err != nil {
			return fmt.Errorf("delete quiz: %w", err)
		}
		return nil
	})
}
