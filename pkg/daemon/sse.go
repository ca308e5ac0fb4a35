package daemon

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// getEvents streams hub events to the caller as server-sent events. The
// LED-feedback sink and `touchctl watch` both sit on this endpoint.
func (d *Daemon) getEvents(c *gin.Context) {
	ch := d.hub.Subscribe()
	defer d.hub.Unsubscribe(ch)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			// Payloads are already JSON; write the frame by hand so they
			// are not re-encoded.
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
