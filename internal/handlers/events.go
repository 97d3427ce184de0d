package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"wavy/internal/events"
)

const keepAliveInterval = 25 * time.Second

// Events handles GET /events as a Server-Sent-Events stream of the caller's
// collection changes. Events missed while disconnected are not replayed.
func (h *Handler) Events(c *gin.Context) {
	owner := ownerID(c)
	sub := h.bus.Subscribe(h.eventBuffer, events.ForOwner(owner))
	defer sub.Close()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	// send headers now so clients see the stream before the first event
	c.Status(http.StatusOK)
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, ok := <-sub.C():
			if !ok {
				return false
			}
			c.SSEvent("collection-changed", ev)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
