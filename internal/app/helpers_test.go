package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"secure-quiz-service/internal/app"
	"secure-quiz-service/internal/crypto"
	"secure-quiz-service/internal/domain"
	"secure-quiz-service/internal/infra/memory"
)

const testSecret = "app-test-secret-0123456789"

func newCodec(t *testing.T) *crypto.Codec {
	t.Helper()
	codec, err := crypto.New(testSecret)
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return codec
}

// world is a teacher's quiz assigned to one student, scheduled on the day of now.
type world struct {
	store        *memory.Store
	codec        *crypto.Codec
	teacher      *app.TeacherService
	quizzes      *app.QuizService
	results      *app.ResultService
	now          time.Time
	teacherID    string
	studentID    string
	quizID       string
	assignmentID string
	questionIDs  []string
}

var fixedNow = time.Date(2026, 10, 17, 10, 0, 0, 0, time.Local)

func newWorld(t *testing.T) *world {
	t.Helper()
	store := memory.NewStore()
	codec := newCodec(t)
	w := &world{
		store:   store,
		codec:   codec,
		teacher: app.NewTeacherService(store, codec, app.NoRetry),
		quizzes: app.NewQuizService(store, codec, app.WithClock(func() time.Time { return fixedNow })),
		results: app.NewResultService(store, codec, app.NoRetry),
		now:     fixedNow,
	}
	w.teacherID = w.addUser(t, "teacher", domain.RoleTeacher)
	w.studentID = w.addUser(t, "student", domain.RoleStudent)

	quiz, err := w.teacher.CreateQuiz(context.Background(), w.teacherID, app.NewQuiz{
		Title: "Letters", Subject: "English", Terms: []string{"One attempt only"},
	})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}
	w.quizID = quiz.ID
	return w
}

// addUser bypasses bcrypt; these tests never log in.
func (w *world) addUser(t *testing.T, username string, role domain.Role) string {
	t.Helper()
	id := uuid.NewString()
	if err := w.store.CreateUser(context.Background(), domain.User{ID: id, Username: username, Role: role}); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

// addQuestions adds one question per correct answer, each with that answer among four options.
func (w *world) addQuestions(t *testing.T, correct ...string) {
	t.Helper()
	for i, answer := range correct {
		q, err := w.teacher.AddQuestion(context.Background(), app.NewQuestion{
			QuizID:        w.quizID,
			QuestionText:  "question " + answer,
			Options:       []string{answer, "W" + answer, "Y" + answer, "Z" + answer},
			CorrectAnswer: answer,
			Explanation:   "because",
		})
		if err != nil {
			t.Fatalf("add question %d: %v", i, err)
		}
		w.questionIDs = append(w.questionIDs, q.ID)
	}
}

func (w *world) assign(t *testing.T, studentID string, testDate time.Time) string {
	t.Helper()
	a := domain.Assignment{
		ID:        uuid.NewString(),
		QuizID:    w.quizID,
		StudentID: studentID,
		TestDate:  testDate,
		CreatedAt: w.now,
	}
	if err := w.store.CreateAssignment(context.Background(), a); err != nil {
		t.Fatalf("create assignment: %v", err)
	}
	w.assignmentID = a.ID
	return a.ID
}

func answers(ids []string, choices ...string) []domain.AnswerSubmission {
	out := make([]domain.AnswerSubmission, 0, len(choices))
	for i, c := range choices {
		out = append(out, domain.AnswerSubmission{QuestionID: ids[i], SelectedAnswer: c})
	}
	return out
}
