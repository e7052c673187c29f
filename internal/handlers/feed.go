package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	feedPingInterval = 30 * time.Second
	feedWriteWait    = 10 * time.Second
	feedPongWait     = 60 * time.Second
)

var feedUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS is enforced at the HTTP layer; the session token gates the feed.
		return true
	},
}

// feedConn serialises writes; gorilla connections allow one concurrent writer.
type feedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *feedConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
	return c.conn.WriteJSON(v)
}

func (c *feedConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(feedWriteWait))
}

func (c *feedConn) Close() error {
	return c.conn.Close()
}

// DoctorFeed pushes review and message notifications to the signed-in doctor.
func (h *Handler) DoctorFeed(w http.ResponseWriter, r *http.Request) {
	id, ok := doctorID(w, r)
	if !ok {
		return
	}

	conn, err := feedUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	fc := &feedConn{conn: conn}
	unregister := h.Hub.Register(id, fc)
	defer func() {
		unregister()
		fc.Close()
	}()
	h.Logger.Debug("doctor feed connected", zap.Int64("doctor_id", id))

	conn.SetReadDeadline(time.Now().Add(feedPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(feedPongWait))
		return nil
	})

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(feedPingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := fc.ping(); err != nil {
					return
				}
			}
		}
	}()
	defer close(done)

	// the feed is server-push only; reads just detect the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Debug("doctor feed closed", zap.Int64("doctor_id", id), zap.Error(err))
			}
			return
		}
	}
}
