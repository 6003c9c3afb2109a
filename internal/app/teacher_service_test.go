package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"secure-quiz-service/internal/app"
	"secure-quiz-service/internal/domain"
)

func TestCreateQuizValidation(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)

	if _, err := w.teacher.CreateQuiz(ctx, w.teacherID, app.NewQuiz{Title: "  "}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("blank title: expected invalid input, got %v", err)
	}
	terms := make([]string, domain.MaxTerms+1)
	if _, err := w.teacher.CreateQuiz(ctx, w.teacherID, app.NewQuiz{Title: "t", Terms: terms}); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("too many terms: expected invalid input, got %v", err)
	}

	quizzes, err := w.teacher.ListQuizzes(ctx, w.teacherID)
	if err != nil || len(quizzes) != 1 || quizzes[0].TotalQuestions != 0 {
		t.Fatalf("unexpected quizzes: %+v %v", quizzes, err)
	}
}

func TestAddQuestionValidation(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	valid := app.NewQuestion{
		QuizID:        w.quizID,
		QuestionText:  "Capital of France?",
		Options:       []string{"Paris", "Rome", "Oslo", "Bern"},
		CorrectAnswer: "Paris",
	}

	cases := map[string]func(*app.NewQuestion){
		"missing text":       func(q *app.NewQuestion) { q.QuestionText = "" },
		"three options":      func(q *app.NewQuestion) { q.Options = q.Options[:3] },
		"empty option":       func(q *app.NewQuestion) { q.Options = []string{"Paris", "", "Oslo", "Bern"} },
		"answer not offered": func(q *app.NewQuestion) { q.CorrectAnswer = "Madrid" },
		"missing quiz id":    func(q *app.NewQuestion) { q.QuizID = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			in.Options = append([]string(nil), valid.Options...)
			mutate(&in)
			if _, err := w.teacher.AddQuestion(ctx, in); !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected invalid input, got %v", err)
			}
		})
	}

	missing := valid
	missing.QuizID = "nope"
	if _, err := w.teacher.AddQuestion(ctx, missing); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown quiz: expected not found, got %v", err)
	}
}

func TestAddQuestionEncryptsAtRest(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.addQuestions(t, "Paris", "Rome")

	stored, err := w.store.ListQuestions(ctx, w.quizID)
	if err != nil || len(stored) != 2 {
		t.Fatalf("list questions: %v %d", err, len(stored))
	}
	for i, q := range stored {
		if q.Position != i {
			t.Fatalf("question %d has position %d", i, q.Position)
		}
		if strings.Contains(q.QuestionText, "question") || q.CorrectAnswer == "Paris" || q.Options[0] == "Paris" {
			t.Fatalf("plaintext reached the store: %+v", q)
		}
		if w.codec.Decrypt(q.Explanation) != "because" {
			t.Fatalf("explanation did not round trip")
		}
	}
	if got := w.codec.Decrypt(stored[0].CorrectAnswer); got != "Paris" {
		t.Fatalf("expected Paris, got %q", got)
	}

	quiz, err := w.store.GetQuiz(ctx, w.quizID)
	if err != nil || quiz.TotalQuestions != 2 {
		t.Fatalf("total questions not incremented: %+v %v", quiz, err)
	}
}

func TestDeleteQuizRestrictsThenCascades(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.addQuestions(t, "A", "B")

	draft, err := w.teacher.CreateQuiz(ctx, w.teacherID, app.NewQuiz{Title: "Draft"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := w.teacher.AddQuestion(ctx, app.NewQuestion{
		QuizID: draft.ID, QuestionText: "q", Options: []string{"a", "b", "c", "d"}, CorrectAnswer: "a",
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	w.assign(t, w.studentID, w.now)
	if err := w.teacher.DeleteQuiz(ctx, w.quizID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("assigned quiz: expected conflict, got %v", err)
	}
	if qs, _ := w.store.ListQuestions(ctx, w.quizID); len(qs) != 2 {
		t.Fatalf("questions of a restricted quiz must survive, got %d", len(qs))
	}

	if err := w.teacher.DeleteQuiz(ctx, draft.ID); err != nil {
		t.Fatalf("delete draft: %v", err)
	}
	if _, err := w.store.GetQuiz(ctx, draft.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("quiz should be gone, got %v", err)
	}
	if qs, _ := w.store.ListQuestions(ctx, draft.ID); len(qs) != 0 {
		t.Fatalf("questions should be gone, got %d", len(qs))
	}
	if err := w.teacher.DeleteQuiz(ctx, draft.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second delete: expected not found, got %v", err)
	}
}

func TestQuizResults(t *testing.T) {
	ctx := context.Background()
	w := newWorld(t)
	w.addQuestions(t, "A", "B")

	if _, err := w.teacher.QuizResults(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("unknown quiz: expected not found, got %v", err)
	}

	id := w.assign(t, w.studentID, w.now)
	if _, err := w.quizzes.Submit(ctx, id, w.studentID, answers(w.questionIDs, "A", "B")); err != nil {
		t.Fatalf("submit: %v", err)
	}
	rows, err := w.teacher.QuizResults(ctx, w.quizID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(rows) != 1 || rows[0].StudentName != "student" || rows[0].Percentage != 100 {
		t.Fatalf("unexpected rows: %+v", rows)
	}
	if !rows[0].SubmittedAt.Equal(fixedNow) {
		t.Fatalf("submittedAt should come from the service clock, got %v", rows[0].SubmittedAt.Format(time.RFC3339))
	}
}
