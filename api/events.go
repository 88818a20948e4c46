package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/garnizeh/cpdtrack/internal/session"
)

type EventsHandler struct {
	broker    *session.Broker
	heartbeat time.Duration
}

func NewEventsHandler(broker *session.Broker) *EventsHandler {
	return &EventsHandler{broker: broker, heartbeat: 15 * time.Second}
}

// Stream sends the caller's session events as server-sent events until the
// client disconnects.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sess := mustSession(r)
	rc := http.NewResponseController(w)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := h.broker.Subscribe(sess.UserID)
	defer h.broker.Unsubscribe(sub)

	// Streams outlive the server write timeout.
	_ = rc.SetWriteDeadline(time.Time{})

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	if err := rc.Flush(); err != nil {
		logger.Error("streaming unsupported", slog.Any("err", err))
		return
	}

	heartbeat := time.NewTicker(h.heartbeat)
	defer heartbeat.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			if err := rc.Flush(); err != nil {
				return
			}
		case ev, ok := <-sub.C:
			if !ok {
				return
			}
			b, err := json.Marshal(ev)
			if err != nil {
				logger.Warn("failed to marshal session event", slog.Any("err", err))
				continue
			}
			fmt.Fprintf(w, "event: session\ndata: %s\n\n", b)
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}
