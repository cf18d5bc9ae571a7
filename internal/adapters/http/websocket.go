package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/kunaldubey10/Agrishield/internal/core/domain"
	"github.com/kunaldubey10/Agrishield/internal/pkg/metrics"
)

const (
	wsPingInterval  = 30 * time.Second
	wsSessionLocal  = "ws_session_id"
	wsMaxMessageLen = 64 << 10
)

// WebSocketUpgrade admits upgrade requests for an open session, given as ?session=<id>.
func WebSocketUpgrade(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		id := c.Query("session")
		if id == "" {
			return errBadRequest(c, "session query parameter is required")
		}
		if _, err := deps.Sessions.Get(id); err != nil {
			return errFromDomain(c, err)
		}
		c.Locals(wsSessionLocal, id)
		return c.Next()
	}
}

// WebSocketHandler streams a session's draw gestures in and its boundary and
// analysis events out.
//
// Clients send draw event envelopes, e.g. {"type":"deleted","ids":["a"]}.
// Events published for the session are relayed verbatim.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		sessionID, _ := c.Locals(wsSessionLocal).(string)
		log := slog.Default().With("session_id", sessionID, "remote", c.RemoteAddr().String())
		log.Info("ws client connected")
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		c.SetReadLimit(wsMaxMessageLen)

		var mu sync.Mutex
		write := func(messageType int, data []byte) error {
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(messageType, data)
		}
		writeJSON := func(v any) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			return write(websocket.TextMessage, data)
		}

		if deps.Events != nil {
			unsubscribe, err := deps.Events.SubscribeSession(sessionID, func(data []byte) {
				_ = write(websocket.TextMessage, data)
			})
			if err != nil {
				log.Error("ws subscribe failed", "error", err)
				_ = writeJSON(fiber.Map{"error": "event relay unavailable"})
				return
			}
			defer unsubscribe()
		}

		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(wsPingInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := write(websocket.PingMessage, nil); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}
			ev, err := domain.ParseDrawEvent(msg)
			if err != nil {
				_ = writeJSON(fiber.Map{"error": err.Error()})
				continue
			}
			if err := deps.Sessions.Stream(sessionID, ev); err != nil {
				_ = writeJSON(fiber.Map{"error": err.Error()})
				if sessionGone(err) {
					break
				}
				continue
			}
			_ = writeJSON(fiber.Map{"status": "accepted"})
		}

		log.Info("ws client disconnected")
	}
}

// sessionGone reports whether the session behind a socket no longer exists.
func sessionGone(err error) bool {
	return errors.Is(err, domain.ErrSessionNotFound) || errors.Is(err, domain.ErrCanvasClosed)
}
