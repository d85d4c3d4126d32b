package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/kharazdev/joke-factory/internal/orchestrator"
	"github.com/kharazdev/joke-factory/pkg/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// registerTimeout bounds how long a client may sit registered before the
// connection is dropped. Jobs finish in minutes; an unanswered registration
// means the job id was bogus or the job aborted (aborted jobs publish
// nothing).
const registerTimeout = 10 * time.Minute

type registerMessage struct {
	Type  string `json:"type"`
	JobID string `json:"jobId"`
}

// WSHandler delivers job-completion payloads to clients registered by job id.
type WSHandler struct {
	bus *orchestrator.EventBus
}

func NewWSHandler(bus *orchestrator.EventBus) *WSHandler {
	return &WSHandler{bus: bus}
}

// Handle upgrades the connection, waits for a single REGISTER message, then
// pushes the matching job's completion event and closes. One registration per
// connection.
func (h *WSHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnw("websocket upgrade failed", "error", err.Error())
		return
	}
	defer conn.Close()

	var reg registerMessage
	if err := conn.ReadJSON(&reg); err != nil {
		log.Warnw("failed to read websocket registration", "error", err.Error())
		return
	}
	if reg.Type != "REGISTER" || reg.JobID == "" {
		_ = conn.WriteJSON(gin.H{"type": "ERROR", "message": "expected a REGISTER message with a jobId"})
		return
	}

	events := h.bus.Subscribe(reg.JobID)
	defer h.bus.Unsubscribe(reg.JobID)
	log.Infow("websocket client registered", "job_id", reg.JobID)

	// Drain reads so we notice the client going away while we wait.
	disconnected := make(chan struct{})
	go func() {
		defer close(disconnected)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case evt := <-events:
		if err := conn.WriteJSON(gin.H{"type": "JOB_COMPLETE", "payload": evt.Results}); err != nil {
			log.Warnw("failed to push job completion", "job_id", reg.JobID, "error", err.Error())
			return
		}
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job complete"))
	case <-disconnected:
		log.Infow("websocket client disconnected before job completion", "job_id", reg.JobID)
	case <-time.After(registerTimeout):
		log.Warnw("websocket registration timed out", "job_id", reg.JobID)
	}
}
