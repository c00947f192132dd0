package sessions

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"resume-builder/internal/editor"
	"resume-builder/internal/shared/telemetry"
)

const (
	wsWriteWait  = 10 * time.Second
	wsReadWait   = 60 * time.Second
	wsPingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsMessage struct {
	Type string `json:"type"`
	editor.PreviewEvent
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

// previewSocket pushes the rendered preview after every session change.
// The current preview is sent first.
func (h *Handler) previewSocket(c *gin.Context) {
	sessionID := c.Param("id")
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	current, events, unsubscribe, err := h.Svc.Subscribe(ctx, sessionID)
	if err != nil {
		writeError(c, err)
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote the response
		return
	}
	defer conn.Close()
	wc := &wsConn{c: conn}

	telemetry.Info("preview.ws_open", map[string]any{"session_id": sessionID})
	defer telemetry.Info("preview.ws_closed", map[string]any{"session_id": sessionID})

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		_ = conn.SetReadDeadline(time.Now().Add(wsReadWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsReadWait))
		})
		for {
			// client messages are ignored
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := wc.writeJSON(wsMessage{Type: "preview", PreviewEvent: current}); err != nil {
		return
	}
	lastRevision := current.Revision

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-readDone:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := wc.ping(); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				_ = wc.writeJSON(wsMessage{Type: "closed", PreviewEvent: editor.PreviewEvent{SessionID: sessionID}})
				return
			}
			if ev.Revision <= lastRevision {
				continue
			}
			lastRevision = ev.Revision
			if err := wc.writeJSON(wsMessage{Type: "preview", PreviewEvent: ev}); err != nil {
				return
			}
		}
	}
}
