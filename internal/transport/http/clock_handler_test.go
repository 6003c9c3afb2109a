package http

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func dialClock(t *testing.T, env *testEnv, assignmentID, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	u := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/student/quiz/" + assignmentID + "/clock?access_token=" + token
	return websocket.DefaultDialer.Dial(u, nil)
}

func TestClockCountsDownThenExpires(t *testing.T) {
	env := newTestEnv(t)
	f := env.setup()

	conn, _, err := dialClock(t, env, f.assignmentID, f.studentToken)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var msg struct {
		Type    string `json:"type"`
		Payload struct {
			SecondsLeft int `json:"secondsLeft"`
		} `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read first tick: %v", err)
	}
	if msg.Type != "tick" || msg.Payload.SecondsLeft != 1 {
		t.Fatalf("expected tick with 1 second left, got %+v", msg)
	}

	for {
		msg.Type = ""
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("connection ended before expiry: %v", err)
		}
		if msg.Type == "expired" {
			break
		}
		if msg.Type != "tick" {
			t.Fatalf("unexpected message type %q", msg.Type)
		}
	}

	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
		t.Fatalf("expected normal close after expiry, got %v", err)
	}
}

func TestClockRejectsIneligibleAttempt(t *testing.T) {
	env := newTestEnv(t)
	f := env.setup()

	env.expect(http.StatusOK, http.MethodPost, "/api/student/quiz/"+f.assignmentID, f.studentToken,
		map[string]any{"answers": []any{}}, nil)

	_, resp, err := dialClock(t, env, f.assignmentID, f.studentToken)
	if err == nil {
		t.Fatalf("expected handshake to fail for a completed attempt")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %+v", resp)
	}
}

func TestClockRequiresToken(t *testing.T) {
	env := newTestEnv(t)
	f := env.setup()

	_, resp, err := dialClock(t, env, f.assignmentID, "")
	if err == nil || resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 handshake failure, got err=%v resp=%+v", err, resp)
	}
}

func TestSecondsLeftRoundsUp(t *testing.T) {
	now := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)
	if got := secondsLeft(now.Add(1500*time.Millisecond), now); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := secondsLeft(now, now); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if got := secondsLeft(now.Add(-time.Second), now); got != 0 {
		t.Fatalf("expected 0 after deadline, got %d", got)
	}
}

type recordingWriter struct {
	calls    []string
	deadline time.Time
}

func (r *recordingWriter) SetWriteDeadline(t time.Time) error {
	r.calls = append(r.calls, "deadline")
	r.deadline = t
	return nil
}

func (r *recordingWriter) WriteJSON(any) error {
	r.calls = append(r.calls, "write")
	return nil
}

func TestClockSendSetsWriteDeadline(t *testing.T) {
	h := &ClockHandler{writeWait: 2 * time.Second}
	conn := &recordingWriter{}

	before := time.Now()
	for i := 0; i < 2; i++ {
		if err := h.send(conn, outboundMessage{Type: "tick"}); err != nil {
			t.Fatalf("send: %v", err)
		}
	}
	if strings.Join(conn.calls, ",") != "deadline,write,deadline,write" {
		t.Fatalf("every write must be preceded by a deadline, got %v", conn.calls)
	}
	if conn.deadline.Before(before.Add(2*time.Second)) || conn.deadline.After(time.Now().Add(2*time.Second)) {
		t.Fatalf("unexpected deadline %v", conn.deadline)
	}
}

func TestClockAcceptsHeaderToken(t *testing.T) {
	env := newTestEnv(t)
	f := env.setup()

	u := "ws" + strings.TrimPrefix(env.server.URL, "http") + "/api/student/quiz/" + f.assignmentID + "/clock"
	conn, _, err := websocket.DefaultDialer.Dial(u, http.Header{"Authorization": {"Bearer " + f.studentToken}})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	conn.Close()
}
