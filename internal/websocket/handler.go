package websocket

import (
	"net/http"

	ws "github.com/coder/websocket"
)

// HandleWebSocket upgrades requests to WebSocket and keeps each connection as
// a listen-only hub client. originPatterns limits which browser origins may
// connect; an empty list accepts any origin.
func HandleWebSocket(hub *Hub, originPatterns []string) http.HandlerFunc {
	opts := &ws.AcceptOptions{OriginPatterns: originPatterns}
	if len(originPatterns) == 0 {
		opts.InsecureSkipVerify = true
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, opts)
		if err != nil {
			hub.logger.Warn("accept websocket", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.CloseNow()

		hub.logger.Debug("websocket connected", "remote", r.RemoteAddr)
		NewClient(hub, conn).Run(r.Context())
		hub.logger.Debug("websocket disconnected", "remote", r.RemoteAddr)
	}
}
