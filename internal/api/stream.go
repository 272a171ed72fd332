package api

import (
	"context"
	"net/http"
	"time"

	"github.com/factchecker/veracity/internal/models"
	"github.com/factchecker/veracity/internal/verify"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	requestWait    = 30 * time.Second
	maxMessageSize = maxRequestBody
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stream message types.
const (
	MessageStage  = "stage"
	MessageReport = "report"
	MessageError  = "error"
)

// StreamMessage is a server-to-client message on the analysis stream.
type StreamMessage struct {
	Type    string                 `json:"type"`
	Stage   string                 `json:"stage,omitempty"`
	Percent int                    `json:"percent,omitempty"`
	Report  *models.AnalysisReport `json:"report,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// AnalyzeStream upgrades to a websocket, reads one analyze request and streams
// a stage message as each pipeline stage completes, then the report or an error.
// Closing the socket early cancels the analysis.
func (h *Handler) AnalyzeStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(requestWait))

	var req models.AnalyzeRequest
	if err := conn.ReadJSON(&req); err != nil {
		h.send(conn, StreamMessage{Type: MessageError, Error: "Invalid request message"})
		return
	}
	conn.SetReadDeadline(time.Time{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Any further read error means the client went away.
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				cancel()
				return
			}
		}
	}()
	defer func() {
		conn.Close()
		<-readerDone
	}()

	key := verify.DocumentHash(req.Text)
	report, err := h.engine.Analyze(ctx, req.Text, func(stage verify.Stage, percent int) {
		if err := h.send(conn, StreamMessage{Type: MessageStage, Stage: string(stage), Percent: percent}); err != nil {
			cancel()
		}
	})
	if err != nil {
		_, message := analysisErrorStatus(err)
		h.send(conn, StreamMessage{Type: MessageError, Error: message})
		return
	}

	h.reports.SetDefault(key, report)
	if err := h.send(conn, StreamMessage{Type: MessageReport, Report: report}); err != nil {
		return
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func (h *Handler) send(conn *websocket.Conn, msg StreamMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(msg); err != nil {
		log.Debug().Err(err).Str("type", msg.Type).Msg("WebSocket write failed")
		return err
	}
	return nil
}
