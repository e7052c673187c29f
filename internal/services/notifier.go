package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/AnshRaj112/lebdoc-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const notifyChannelPrefix = "notify:doctor:"

// Notifier tells a doctor about new reviews and messages.
type Notifier interface {
	Notify(ctx context.Context, n models.Notification) error
}

// FeedConn is the minimal interface our WebSocket implementation must satisfy.
type FeedConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub tracks connected doctor feeds on this instance.
type Hub struct {
	mu     sync.RWMutex
	conns  map[int64]map[FeedConn]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{conns: make(map[int64]map[FeedConn]struct{}), logger: logger}
}

// Register adds a connection for doctorID and returns the function that removes it.
func (h *Hub) Register(doctorID int64, c FeedConn) func() {
	h.mu.Lock()
	if h.conns[doctorID] == nil {
		h.conns[doctorID] = make(map[FeedConn]struct{})
	}
	h.conns[doctorID][c] = struct{}{}
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.conns[doctorID], c)
		if len(h.conns[doctorID]) == 0 {
			delete(h.conns, doctorID)
		}
		h.mu.Unlock()
	}
}

// Connections reports how many feeds are open for a doctor.
func (h *Hub) Connections(doctorID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[doctorID])
}

// FanOut writes n to every local connection of the doctor.
func (h *Hub) FanOut(n models.Notification) {
	h.mu.RLock()
	targets := make([]FeedConn, 0, len(h.conns[n.DoctorID]))
	for c := range h.conns[n.DoctorID] {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		if err := c.WriteJSON(n); err != nil {
			h.logger.Debug("error writing notification to websocket", zap.Int64("doctor_id", n.DoctorID), zap.Error(err))
		}
	}
}

// LocalNotifier delivers straight to the in-process hub (single instance deployments).
type LocalNotifier struct {
	hub *Hub
}

func NewLocalNotifier(hub *Hub) *LocalNotifier {
	return &LocalNotifier{hub: hub}
}

func (n *LocalNotifier) Notify(ctx context.Context, note models.Notification) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	n.hub.FanOut(note)
	return nil
}

// RedisNotifier publishes on notify:doctor:<id>; every instance subscribes once and fans
// out to its own connections.
type RedisNotifier struct {
	client  *redis.Client
	hub     *Hub
	logger  *zap.Logger
	started sync.Once
}

func NewRedisNotifier(client *redis.Client, hub *Hub, logger *zap.Logger) *RedisNotifier {
	return &RedisNotifier{client: client, hub: hub, logger: logger}
}

func (n *RedisNotifier) Notify(ctx context.Context, note models.Notification) error {
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now().UTC()
	}
	data, err := json.Marshal(note)
	if err != nil {
		return err
	}
	return n.client.Publish(ctx, notifyChannelPrefix+strconv.FormatInt(note.DoctorID, 10), data).Err()
}

// Start launches the shared subscriber. Safe to call more than once.
func (n *RedisNotifier) Start(ctx context.Context) {
	n.started.Do(func() {
		go n.run(ctx)
	})
}

func (n *RedisNotifier) run(ctx context.Context) {
	backoff := time.Second
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pubsub := n.client.PSubscribe(ctx, notifyChannelPrefix+"*")
		n.logger.Info("notification subscriber started", zap.String("pattern", notifyChannelPrefix+"*"))
		for {
			msg, err := pubsub.ReceiveMessage(ctx)
			if err != nil {
				pubsub.Close()
				if ctx.Err() != nil {
					return
				}
				n.logger.Warn("notification subscriber error", zap.Error(err), zap.Duration("retry_in", backoff))
				time.Sleep(backoff)
				backoff *= 2
				if backoff > 30*time.Second {
					backoff = 30 * time.Second
				}
				break
			}
			backoff = time.Second

			var note models.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &note); err != nil {
				n.logger.Warn("failed to decode notification", zap.Error(err))
				continue
			}
			if note.DoctorID == 0 {
				note.DoctorID, _ = strconv.ParseInt(strings.TrimPrefix(msg.Channel, notifyChannelPrefix), 10, 64)
			}
			n.hub.FanOut(note)
		}
	}
}
