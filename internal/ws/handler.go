package ws

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"polls-service/internal/ports/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// SnapshotFunc returns the current tally of a question
type SnapshotFunc func(ctx context.Context, questionID uint) (*models.QuestionResults, error)

// ServeResults upgrades the request and streams the question's tally,
// starting with the current snapshot.
func ServeResults(hub *Hub, snapshot SnapshotFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Code: http.StatusNotFound, Message: "Question not found"})
			return
		}

		results, err := snapshot(c.Request.Context(), uint(id))
		if err != nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Code: http.StatusNotFound, Message: "Question not found"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Debug("Websocket upgrade failed", "error", err)
			return
		}

		client := &Client{
			questionID: uint(id),
			conn:       conn,
			send:       make(chan *models.QuestionResults, 16),
		}
		client.send <- results

		if !hub.Register(client) {
			conn.Close()
			return
		}
		go client.WritePump()
		go client.ReadPump(hub)
	}
}
