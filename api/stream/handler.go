// Package stream pushes run, override and schedule events to websocket
// clients as they happen.
//
// Messages have the form {"type": "<kind>", "data": {...}} where kind is
// run, override or schedule. Clients may send {"type":"ping"} and receive
// {"type":"pong"}. ?kinds=run,override restricts the kinds delivered.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/d1vyadharsh1n1/MetroX/core/events"
	"github.com/d1vyadharsh1n1/MetroX/core/logger"
	"github.com/d1vyadharsh1n1/MetroX/internal/eventbus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Message is one frame sent to clients.
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type conn struct {
	ws *websocket.Conn
	mu sync.Mutex
}

func (c *conn) write(msg any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(msg)
}

func (c *conn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

// NewHandler serves GET /api/stream.
func NewHandler(bus *eventbus.TypedBus[events.Event], lg logger.Logger) http.Handler {
	if lg == nil {
		lg = logger.Nop{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kinds := parseKinds(r.URL.Query().Get("kinds"))
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			lg.Warnf("websocket upgrade: %v", err)
			return
		}
		defer ws.Close()
		c := &conn{ws: ws}

		sub := bus.Subscribe()
		defer bus.Unsubscribe(sub)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go readPump(c, cancel, lg)

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			case ev, ok := <-sub:
				if !ok {
					_ = c.write(Message{Type: "closed"})
					return
				}
				if len(kinds) > 0 && !kinds[ev.Kind()] {
					continue
				}
				if err := c.write(Message{Type: ev.Kind(), Data: ev}); err != nil {
					lg.Debugf("websocket write: %v", err)
					return
				}
			}
		}
	})
}

func readPump(c *conn, cancel context.CancelFunc, lg logger.Logger) {
	defer cancel()
	c.ws.SetReadLimit(512)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, raw, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				lg.Debugf("websocket read: %v", err)
			}
			return
		}
		var msg Message
		if json.Unmarshal(raw, &msg) == nil && msg.Type == "ping" {
			if err := c.write(Message{Type: "pong"}); err != nil {
				return
			}
		}
	}
}

func parseKinds(v string) map[string]bool {
	if v == "" {
		return nil
	}
	out := map[string]bool{}
	for _, k := range strings.Split(v, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out[k] = true
		}
	}
	return out
}
