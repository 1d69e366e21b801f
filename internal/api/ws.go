package api

import (
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	"github.com/mzalewski-wsm/studium/internal/server"
)

// serveWs upgrades the connection and hands it to the realtime
// dispatcher. Connections start anonymous; identity arrives over the
// socket itself.
func (s *StudiumApp) serveWs(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				// non-browser clients send no origin header
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(conn, s.rtc, s.log)

	s.rtc.RegisterClient(client)
	go client.Write()
	go client.Read()
}
