package monitor

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kbukum/streamkit/logger"
)

// ServeSSE handles one SSE connection: it registers a client with the
// hub, streams broadcast data until the peer goes away, and unregisters
// on return.
func ServeSSE(hub *Hub, w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	clientID := uuid.NewString()

	// SSE connections are long-lived; the server's WriteTimeout must not
	// tear them down.
	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil {
		logger.Warn("could not disable write deadline", logger.Fields(
			"client_id", clientID,
			"error", err.Error(),
		))
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	client := NewClient(clientID)
	hub.Register(client)
	defer hub.Unregister(client)

	_, _ = fmt.Fprintf(w, "event: connected\ndata: {\"client_id\":%q}\n\n", clientID)
	flusher.Flush()

	logger.Debug("sse client connected", logger.Fields(
		"client_id", clientID,
		"remote_addr", r.RemoteAddr,
	))

	// Keep-alive interval stays under typical proxy timeouts.
	keepAlive := time.NewTicker(30 * time.Second)
	defer keepAlive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			logger.Debug("sse client disconnected", logger.Fields(
				"client_id", clientID,
			))
			return

		case data, ok := <-client.Events():
			if !ok {
				return
			}
			_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()

		case <-keepAlive.C:
			_, _ = fmt.Fprintf(w, ": keepalive %d\n\n", time.Now().Unix())
			flusher.Flush()
		}
	}
}
