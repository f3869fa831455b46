package server

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/chatlyhq/chatly/realtime"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// cross-origin clients are allowed; auth happens in Authorize
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) handleWebSocket() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("websocket upgrade failed: %v", err)
			return
		}

		client := realtime.NewClient(s.Hub, conn, userID)
		go client.Serve()
	}
}
