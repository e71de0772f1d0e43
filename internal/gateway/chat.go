package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
)

const chatWriteTimeout = 10 * time.Second

type chatError struct {
	Error string `json:"error"`
}

// handleChat upgrades the request to a websocket and runs a prompt/response
// loop: each text frame is treated as a prompt and answered with the JSON
// assistant response. The connection stays open until the client closes it.
func (g *Gateway) handleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		g.logger.Error("websocket accept failed", "error", err)
		return
	}
	defer func() {
		_ = conn.Close(websocket.StatusInternalError, "unexpected close")
	}()

	g.logger.Info("chat session opened", "remote", r.RemoteAddr)

	for {
		_, data, err := conn.Read(r.Context())
		if err != nil {
			// Reading fails once the client closes; finish the handshake
			// cleanly rather than reporting an internal error.
			g.logger.Info("chat session closed", "remote", r.RemoteAddr)
			_ = conn.Close(websocket.StatusNormalClosure, "")
			return
		}

		prompt := strings.TrimSpace(string(data))
		resp, err := g.assistant.HandlePrompt(r.Context(), prompt)
		if err != nil {
			g.writeChat(r.Context(), conn, chatError{Error: err.Error()})
			continue
		}
		g.writeChat(r.Context(), conn, resp)
	}
}

func (g *Gateway) writeChat(ctx context.Context, conn *websocket.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		g.logger.Error("chat response marshal failed", "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(ctx, chatWriteTimeout)
	defer cancel()
	if err := conn.Write(writeCtx, websocket.MessageText, data); err != nil {
		g.logger.Error("chat write failed", "error", err)
	}
}
