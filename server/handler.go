package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// NewHandler creates the HTTP handler with all routes. Static assets are
// served from staticDir.
func NewHandler(hub *Hub, staticDir string) http.Handler {
	mux := http.NewServeMux()

	// Serve static files.
	fs := http.FileServer(http.Dir(staticDir))
	mux.Handle("/", fs)

	// WebSocket endpoint.
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.log.Warn("websocket upgrade error", zap.Error(err))
			return
		}
		client := newClient(hub, conn)
		go client.WritePump()
		go client.ReadPump()
	})

	mux.HandleFunc("GET /documents", func(w http.ResponseWriter, r *http.Request) {
		docs, err := hub.Documents(r.Context())
		if err != nil {
			hub.log.Error("list documents", zap.Error(err))
			http.Error(w, "failed to list documents", http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(docs)
	})

	return mux
}
