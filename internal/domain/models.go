package domain

import "time"

// Role is the account type carried in auth tokens.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

// User is an account provisioned by an admin.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Quiz groups questions authored by a teacher.
type Quiz struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Subject        string    `json:"subject"`
	CreatedBy      string    `json:"createdBy"`
	Terms          []string  `json:"terms"`
	TotalQuestions int       `json:"totalQuestions"`
	CreatedAt      time.Time `json:"createdAt"`
}

// OptionCount is the number of options every question carries.
const OptionCount = 4

// MaxTerms bounds the instructional terms shown before a quiz starts.
const MaxTerms = 10

// Question holds ciphertext tokens only; plaintext never reaches the store.
type Question struct {
	ID            string   `json:"id"`
	QuizID        string   `json:"quizId"`
	Position      int      `json:"position"`
	QuestionText  string   `json:"questionText"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation,omitempty"`
}

// Assignment binds one quiz to one student on a scheduled day.
// Completed only ever moves from false to true.
type Assignment struct {
	ID        string    `json:"id"`
	QuizID    string    `json:"quizId"`
	StudentID string    `json:"studentId"`
	TestDate  time.Time `json:"testDate"`
	Completed bool      `json:"completed"`
	ResultID  string    `json:"resultId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScheduledOn reports whether the assignment's test date falls on the calendar day of now.
// Only the year, month and day of TestDate are considered.
func (a Assignment) ScheduledOn(now time.Time) bool {
	y1, m1, d1 := a.TestDate.Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// AssignmentView is an assignment joined with the quiz fields a student dashboard shows.
type AssignmentView struct {
	Assignment
	QuizTitle       string `json:"quizTitle"`
	TotalQuestions  int    `json:"totalQuestions"`
	ReviewAvailable bool   `json:"reviewAvailable"`
}

// ReviewItem is one graded question. Text fields hold ciphertext tokens while stored.
type ReviewItem struct {
	QuestionText   string   `json:"questionText"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correctAnswer"`
	SelectedAnswer string   `json:"selectedAnswer"`
	IsCorrect      bool     `json:"isCorrect"`
}

// Result is the immutable outcome of one submitted attempt.
type Result struct {
	ID              string       `json:"id"`
	AssignmentID    string       `json:"assignmentId"`
	StudentID       string       `json:"studentId"`
	QuizID          string       `json:"quizId"`
	Score           int          `json:"score"`
	TotalQuestions  int          `json:"totalQuestions"`
	Percentage      float64      `json:"percentage"`
	Review          []ReviewItem `json:"review"`
	ReviewDismissed bool         `json:"reviewDismissed"`
	SubmittedAt     time.Time    `json:"submittedAt"`
}

// ResultSummary is a teacher-facing row of a quiz's results.
type ResultSummary struct {
	StudentID      string    `json:"studentId"`
	StudentName    string    `json:"studentName"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     float64   `json:"percentage"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// AnswerSubmission is a student's selection for one question.
type AnswerSubmission struct {
	QuestionID     string
	SelectedAnswer string
}

// Grade buckets a percentage: 75 and above is Excellent, 40 and above is Good.
func Grade(percentage float64) string {
	switch {
	case percentage >= 75:
		return "Excellent"
	case percentage >= 40:
		return "Good"
	default:
		return "Poor / Needs to Improve"
	}
}
