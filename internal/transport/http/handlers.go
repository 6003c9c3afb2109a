package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"secure-quiz-service/internal/app"
	"secure-quiz-service/internal/domain"
)

// Services are the use cases the HTTP surface exposes.
type Services struct {
	Auth    *app.AuthService
	Admin   *app.AdminService
	Teacher *app.TeacherService
	Quizzes *app.QuizService
	Results *app.ResultService
}

// Handlers adapts Services to JSON over HTTP.
type Handlers struct {
	svc Services
}

func NewHandlers(svc Services) *Handlers {
	return &Handlers{svc: svc}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	session, err := h.svc.Auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Auth.Logout(r.Context(), claimsFrom(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}

// --- admin ---

type createUserRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin teacher student"`
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := h.svc.Admin.CreateUser(r.Context(), app.NewUser{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(r.URL.Query().Get("role"))
	if role != "" && !role.Valid() {
		writeError(w, domain.Invalid("unknown role"))
		return
	}
	users, err := h.svc.Admin.ListUsers(r.Context(), role)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

type assignQuizRequest struct {
	QuizID    string `json:"quizId" validate:"required"`
	StudentID string `json:"studentId" validate:"required"`
	TestDate  string `json:"testDate" validate:"required,datetime=2006-01-02"`
}

func (h *Handlers) AssignQuiz(w http.ResponseWriter, r *http.Request) {
	var req assignQuizRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	testDate, err := time.ParseInLocation("2006-01-02", req.TestDate, time.Local)
	if err != nil {
		writeError(w, domain.Invalid("testDate must be YYYY-MM-DD"))
		return
	}
	assignment, err := h.svc.Admin.AssignQuiz(r.Context(), app.NewAssignment{
		QuizID:    req.QuizID,
		StudentID: req.StudentID,
		TestDate:  testDate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, assignment)
}

// --- teacher ---

type createQuizRequest struct {
	Title   string   `json:"title" validate:"required"`
	Subject string   `json:"subject"`
	Terms   []string `json:"terms" validate:"max=10"`
}

func (h *Handlers) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	quiz, err := h.svc.Teacher.CreateQuiz(r.Context(), claimsFrom(r.Context()).Subject, app.NewQuiz{
		Title:   req.Title,
		Subject: req.Subject,
		Terms:   req.Terms,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handlers) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.svc.Teacher.ListQuizzes(r.Context(), claimsFrom(r.Context()).Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handlers) DeleteQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Teacher.DeleteQuiz(r.Context(), chi.URLParam(r, "quizID")); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "quiz deleted")
}

type addQuestionRequest struct {
	QuizID        string   `json:"quizId" validate:"required"`
	QuestionText  string   `json:"questionText" validate:"required"`
	Options       []string `json:"options" validate:"required,len=4,dive,required"`
	CorrectAnswer string   `json:"correctAnswer" validate:"required"`
	Explanation   string   `json:"explanation"`
}

type addQuestionResponse struct {
	ID       string `json:"id"`
	QuizID   string `json:"quizId"`
	Position int    `json:"position"`
}

// AddQuestion answers with identifiers only; stored fields are ciphertext.
func (h *Handlers) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var req addQuestionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	question, err := h.svc.Teacher.AddQuestion(r.Context(), app.NewQuestion{
		QuizID:        req.QuizID,
		QuestionText:  req.QuestionText,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		Explanation:   req.Explanation,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, addQuestionResponse{ID: question.ID, QuizID: question.QuizID, Position: question.Position})
}

func (h *Handlers) QuizResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.svc.Teacher.QuizResults(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// --- student ---

func (h *Handlers) ListAssignments(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.svc.Quizzes.ListAssignments(r.Context(), claimsFrom(r.Context()).Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *Handlers) ServeQuestions(w http.ResponseWriter, r *http.Request) {
	paper, err := h.svc.Quizzes.ServeQuestions(r.Context(), chi.URLParam(r, "assignmentID"), claimsFrom(r.Context()).Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, paper)
}

type answer struct {
	QuestionID     string `json:"questionId" validate:"required"`
	SelectedAnswer string `json:"selectedAnswer"`
}

type submitRequest struct {
	Answers []answer `json:"answers" validate:"required,dive"`
}

func (h *Handlers) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	answers := make([]domain.AnswerSubmission, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, domain.AnswerSubmission{QuestionID: a.QuestionID, SelectedAnswer: a.SelectedAnswer})
	}
	score, err := h.svc.Quizzes.Submit(r.Context(), chi.URLParam(r, "assignmentID"), claimsFrom(r.Context()).Subject, answers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (h *Handlers) GetResult(w http.ResponseWriter, r *http.Request) {
	view, err := h.svc.Results.GetResult(r.Context(), chi.URLParam(r, "assignmentID"), claimsFrom(r.Context()).Subject)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handlers) DismissReview(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Results.DismissReview(r.Context(), chi.URLParam(r, "assignmentID"), claimsFrom(r.Context()).Subject); err != nil {
		writeError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "review dismissed")
}
