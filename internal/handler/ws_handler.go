package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/eduassess/eduassess-backend/internal/exam"
	"github.com/eduassess/eduassess-backend/internal/middleware"
	ws "github.com/eduassess/eduassess-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the exam countdown to the student.
type WSHandler struct {
	sessions *exam.SessionManager
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *exam.SessionManager, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ExamTickStream godoc
// WS /ws/v1/student/exam/stream
// Upgrades to WebSocket and pushes one tick per second until the session
// ends. The stream closes after submission.
func (h *WSHandler) ExamTickStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	studentID, err := uuid.Parse(claims.Subject)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	events, err := h.sessions.Subscribe(studentID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active exam session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("student_id", studentID.String()).Logger()
	wsLog.Info().Msg("Student connected to tick stream")

	// Read pump: answers pings and detects the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg ws.RequestEnvelope
			if err := ws.ReadJSON(conn, &msg); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					wsLog.Warn().Err(err).Msg("Unexpected close")
				} else {
					wsLog.Debug().Msg("Connection closed")
				}
				return
			}
			if msg.Action == ws.ActionPing {
				ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			}
		}
	}()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Session finished; the submission succeeded.
				return
			}
			if ev.AutoSubmitted {
				ws.WriteTyped(conn, ws.AutoSubmittedResponse{Event: ws.EventAutoSubmitted})
				continue
			}
			if ev.SubmitFailed {
				ws.WriteTyped(conn, ws.AutoSubmitFailedResponse{Event: ws.EventAutoSubmitFailed})
				continue
			}
			if err := ws.WriteTyped(conn, ws.TickResponse{Event: ws.EventTick, TimeLeft: ev.TimeLeft}); err != nil {
				wsLog.Debug().Err(err).Msg("Tick write failed")
				return
			}
		case <-done:
			return
		}
	}
}
