package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/application"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  8 * 1024,
	WriteBufferSize: 8 * 1024,
	// Access control happens via the auth token; kiosk clients connect
	// without an Origin header at all.
	CheckOrigin: func(_ *http.Request) bool { return true },
}

type recordControl struct {
	Action   string `json:"action"`
	Filename string `json:"filename"`
}

type recordResult struct {
	Status     string           `json:"status"`
	Transcript string           `json:"transcript,omitempty"`
	Complete   bool             `json:"complete"`
	Question   *questionPayload `json:"question,omitempty"`
	Error      string           `json:"error,omitempty"`
}

// handleRecord accepts live recording frames over a websocket. Binary
// messages are appended to the session's capture buffer as they arrive; a
// text control message ends the attempt:
//
//	{"action":"stop","filename":"answer.wav"} — flush, transcribe, answer
//	{"action":"cancel"}                       — discard buffered frames
//
// The transcription result (or error) is reported back on the same socket.
func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	session, ok := s.session(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	s.logger.Info("recording stream connected", "session_id", session.ID)

	for {
		msgType, msg, err := conn.ReadMessage()
		if err != nil {
			// Client went away mid-recording; drop whatever was buffered so
			// the next attempt starts clean.
			session.Capture.Flush()
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			session.Capture.Append(msg)

		case websocket.TextMessage:
			var ctl recordControl
			if err := json.Unmarshal(msg, &ctl); err != nil {
				s.writeRecordResult(conn, recordResult{Status: "error", Error: "invalid control message"})
				continue
			}

			switch ctl.Action {
			case "cancel":
				session.Capture.Flush()
				s.writeRecordResult(conn, recordResult{Status: "cancelled"})

			case "stop":
				s.finishStream(r, session, conn, ctl.Filename)
				return

			default:
				s.writeRecordResult(conn, recordResult{Status: "error", Error: "unknown action: " + ctl.Action})
			}
		}
	}
}

func (s *Server) finishStream(r *http.Request, session *application.Session, conn *websocket.Conn, filename string) {
	if filename == "" {
		filename = "recording.wav"
	}

	transcript, _, err := s.interviewer.FinishRecording(r.Context(), session, filename)
	if err != nil {
		s.logger.Warn("recording transcription failed", "session_id", session.ID, "error", err)
		s.writeRecordResult(conn, recordResult{Status: "error", Error: err.Error()})
		return
	}

	result := recordResult{Status: "ok", Transcript: transcript}
	if q, ok := session.CurrentQuestion(); ok {
		result.Question = &questionPayload{
			ID:    q.ID,
			Text:  q.Text,
			Step:  session.Cursor() + 1,
			Total: s.sessions.Catalog().Len(),
		}
	} else {
		result.Complete = true
	}
	s.writeRecordResult(conn, result)
}

func (s *Server) writeRecordResult(conn *websocket.Conn, result recordResult) {
	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(result); err != nil {
		s.logger.Warn("writing recording result", "error", err)
	}
}
