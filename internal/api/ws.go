package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API is meant for lab use behind a firewall; browsers on any
	// origin may connect.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsError is sent when a cycle fails; the connection stays open.
type wsError struct {
	Error string `json:"error"`
}

// handleWebSocket serves an interactive chat channel. Each JSON frame
// is a ChatRequest; each reply a ChatResponse. A connection without an
// explicit session id gets a fresh one, so two browser tabs never
// share history by accident.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connSession := "ws-" + uuid.NewString()
	s.logger.Info("websocket connected", "remote", r.RemoteAddr, "session", connSession)

	for {
		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		if req.Question == "" {
			if err := conn.WriteJSON(wsError{Error: "question is required"}); err != nil {
				return
			}
			continue
		}

		sessionID := req.SessionID
		if sessionID == "" {
			sessionID = connSession
		}

		result, err := s.loop.Ask(r.Context(), sessionID, req.Question)
		if err != nil {
			s.logger.Error("question cycle failed", "session", sessionID, "error", err)
			if err := conn.WriteJSON(wsError{Error: "completion backend error"}); err != nil {
				return
			}
			continue
		}

		resp := ChatResponse{
			Answer:    result.Answer,
			SessionID: sessionID,
			Action:    string(result.Decision.Action),
			Tool:      result.Decision.ToolName,
			RequestID: result.Decision.RequestID,
		}
		if err := conn.WriteJSON(resp); err != nil {
			s.logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}
