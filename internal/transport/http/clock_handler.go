package http

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"secure-quiz-service/internal/app"
)

// ClockHandler streams the attempt countdown over a websocket. It is advisory
// only and never writes to the store.
type ClockHandler struct {
	quizzes  *app.QuizService
	upgrader  websocket.Upgrader
	interval  time.Duration
	writeWait time.Duration
}

func NewClockHandler(quizzes *app.QuizService) *ClockHandler {
	return &ClockHandler{
		quizzes: quizzes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		interval:  time.Second,
		writeWait: 10 * time.Second,
	}
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type tickPayload struct {
	SecondsLeft int `json:"secondsLeft"`
}

// ServeWS runs the same eligibility checks as serving questions, then upgrades.
func (h *ClockHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	claims := claimsFrom(r.Context())
	assignment, err := h.quizzes.Eligible(r.Context(), chi.URLParam(r, "assignmentID"), claims.Subject)
	if err != nil {
		writeError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	deadline := h.quizzes.Deadline(assignment, h.quizzes.Now())

	// Client messages are ignored; reading only surfaces the close.
	peerGone := make(chan struct{})
	go func() {
		defer close(peerGone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	for {
		left := secondsLeft(deadline, h.quizzes.Now())
		if left <= 0 {
			if err := h.send(conn, outboundMessage{Type: "expired"}); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "time is up"),
				time.Now().Add(h.writeWait))
			return
		}
		if err := h.send(conn, outboundMessage{Type: "tick", Payload: tickPayload{SecondsLeft: left}}); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
		select {
		case <-ticker.C:
		case <-peerGone:
			return
		}
	}
}

type jsonWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteJSON(v any) error
}

// send bounds every write so a client that stops reading cannot pin the handler.
func (h *ClockHandler) send(conn jsonWriter, msg outboundMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(h.writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}

// secondsLeft rounds up so the client never sees 0 before expiry.
func secondsLeft(deadline, now time.Time) int {
	d := deadline.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
