package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// RequestTimeout bounds every non-streaming request.
const RequestTimeout = 30 * time.Second

// NewRouter mounts the REST API and the clock websocket.
func NewRouter(svc Services, clock *ClockHandler, corsOrigins []string) http.Handler {
	if len(corsOrigins) == 0 {
		corsOrigins = []string{"http://localhost:3000"}
	}
	h := NewHandlers(svc)

	r := chi.NewRouter()
	r.Use(StashQueryToken)
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(RequestTimeout))
		api.Post("/api/auth/login", h.Login)

		api.Group(func(pr chi.Router) {
			pr.Use(Authenticated(svc.Auth))
			pr.Post("/api/auth/logout", h.Logout)

			pr.With(Require("users:create")).Post("/api/admin/users", h.CreateUser)
			pr.With(Require("users:list")).Get("/api/admin/users", h.ListUsers)
			pr.With(Require("assignment:create")).Post("/api/admin/assignments", h.AssignQuiz)

			pr.With(Require("quiz:create")).Post("/api/teacher/quizzes", h.CreateQuiz)
			pr.With(Require("quiz:list")).Get("/api/teacher/quizzes", h.ListQuizzes)
			pr.With(Require("quiz:delete")).Delete("/api/teacher/quizzes/{quizID}", h.DeleteQuiz)
			pr.With(Require("question:create")).Post("/api/teacher/questions", h.AddQuestion)
			pr.With(Require("results:view")).Get("/api/teacher/results/{quizID}", h.QuizResults)

			pr.With(Require("assignment:view-own")).Get("/api/student/quizzes", h.ListAssignments)
			pr.With(Require("attempt:take")).Get("/api/student/quiz/{assignmentID}", h.ServeQuestions)
			pr.With(Require("attempt:submit")).Post("/api/student/quiz/{assignmentID}", h.Submit)
			pr.With(Require("result:view-own")).Get("/api/student/quiz/{assignmentID}/results", h.GetResult)
			pr.With(Require("result:view-own")).Post("/api/student/quiz/{assignmentID}/results/dismiss", h.DismissReview)
		})
	})

	// The clock is long-lived, so it stays outside the request timeout.
	r.Group(func(ws chi.Router) {
		ws.Use(AuthenticatedWS(svc.Auth))
		ws.With(Require("attempt:take")).Get("/api/student/quiz/{assignmentID}/clock", clock.ServeWS)
	})
	return r
}
