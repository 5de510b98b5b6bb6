package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/p-n-ai/pai-quiz/internal/engine"
)

const (
	streamBuffer       = 16
	streamWriteTimeout = 5 * time.Second
)

// handleUnlocks streams the user's UnlockEvents over a WebSocket until the
// client disconnects. Events are dropped when the client falls behind.
func (s *Server) handleUnlocks(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	events := make(chan engine.UnlockEvent, streamBuffer)
	unsubscribe := s.engine.Subscribe(func(ev engine.UnlockEvent) {
		if ev.UserID != userID {
			return
		}
		select {
		case events <- ev:
		default:
			slog.Warn("unlock stream full, dropping event", "user_id", userID, "topic", ev.Topic)
		}
	})
	defer unsubscribe()

	// The server's write timeout would otherwise cut long-lived streams.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		slog.Warn("websocket accept failed", "user_id", userID, "error", err)
		return
	}
	defer conn.CloseNow()

	slog.Info("unlock stream opened", "user_id", userID)
	ctx := conn.CloseRead(r.Context())

	for {
		select {
		case <-ctx.Done():
			slog.Info("unlock stream closed", "user_id", userID)
			return
		case ev := <-events:
			if err := writeEvent(ctx, conn, ev); err != nil {
				slog.Warn("unlock stream write failed", "user_id", userID, "error", err)
				return
			}
		}
	}
}

func writeEvent(ctx context.Context, conn *websocket.Conn, ev engine.UnlockEvent) error {
	ctx, cancel := context.WithTimeout(ctx, streamWriteTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, ev)
}
