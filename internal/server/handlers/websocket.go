// internal/server/handlers/websocket.go

package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"livejourney/internal/domain/hotplace"
	"livejourney/internal/logging"
	"livejourney/internal/metrics"
)

// RankingFeed delivers published ranking payloads to a callback
type RankingFeed interface {
	Subscribe(handler func(data []byte)) (unsubscribe func(), err error)
}

// NATSFeed implements RankingFeed on a NATS subject
type NATSFeed struct {
	conn    *nats.Conn
	subject string
}

// NewNATSFeed creates a feed for the given subject
func NewNATSFeed(conn *nats.Conn, subject string) *NATSFeed {
	return &NATSFeed{
		conn:    conn,
		subject: subject,
	}
}

// Subscribe forwards every message on the feed subject to handler
func (f *NATSFeed) Subscribe(handler func(data []byte)) (func(), error) {
	sub, err := f.conn.Subscribe(f.subject, func(msg *nats.Msg) {
		handler(msg.Data)
	})
	if err != nil {
		return nil, err
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// WebSocketConfig contains configuration for WebSocket connections
type WebSocketConfig struct {
	// Time allowed to write a message to the peer
	WriteWait time.Duration

	// Time allowed to read the next pong message from the peer
	PongWait time.Duration

	// Send pings to peer with this period
	PingPeriod time.Duration

	// Maximum message size allowed from peer
	MaxMessageSize int64

	// Outbound messages buffered per client before new ones are dropped
	SendBuffer int
}

// DefaultWebSocketConfig returns the default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteWait:      10 * time.Second,
		PongWait:       60 * time.Second,
		PingPeriod:     (60 * time.Second * 9) / 10,
		MaxMessageSize: 4 * 1024,
		SendBuffer:     16,
	}
}

// FeedMessage is the envelope of every message written to feed clients
type FeedMessage struct {
	Type      string              `json:"type"`
	Time      time.Time           `json:"time"`
	HotPlaces []hotplace.HotPlace `json:"hotPlaces,omitempty"`
	Data      json.RawMessage     `json:"data,omitempty"`
}

// Feed message types
const (
	FeedSnapshot = "snapshot"
	FeedRanked   = "ranked"
)

// feedClient represents a connected WebSocket client
type feedClient struct {
	conn        *websocket.Conn
	config      WebSocketConfig
	send        chan []byte
	done        chan struct{}
	closeOnce   sync.Once
	mu          sync.Mutex
	closed      bool
	unsubscribe func()
	logger      zerolog.Logger
}

// newUpgrader allows the configured origins; "*" allows any origin
func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowAll := len(allowedOrigins) == 0
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if allowAll || origin == "" {
				return true
			}
			_, ok := allowed[origin]
			return ok
		},
	}
}

// HotPlaceWebSocketHandler streams ranking updates to WebSocket clients. A
// snapshot of the current ranking is sent on connect.
func HotPlaceWebSocketHandler(detector hotplace.Detector, feed RankingFeed, allowedOrigins []string, config WebSocketConfig) http.HandlerFunc {
	upgrader := newUpgrader(allowedOrigins)

	return func(w http.ResponseWriter, r *http.Request) {
		places, err := detector.GetHotPlaces(r.Context(), hotplace.Filter{})
		if err != nil {
			respondWithError(w, http.StatusInternalServerError, "Failed to get hot places", err)
			return
		}

		// Upgrade HTTP connection to WebSocket
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logging.Warn().Err(err).Msg("Failed to upgrade to WebSocket")
			return
		}

		client := &feedClient{
			conn:   conn,
			config: config,
			send:   make(chan []byte, config.SendBuffer),
			done:   make(chan struct{}),
			logger: logging.With().Str("component", "hotplace_feed").Str("remote", r.RemoteAddr).Logger(),
		}
		metrics.TrackFeedClient(true)

		go client.writePump()
		go client.readPump()

		snapshot, _ := json.Marshal(FeedMessage{Type: FeedSnapshot, Time: time.Now().UTC(), HotPlaces: places})
		client.enqueue(snapshot)

		unsubscribe, err := feed.Subscribe(func(data []byte) {
			msg, err := json.Marshal(FeedMessage{Type: FeedRanked, Time: time.Now().UTC(), Data: data})
			if err != nil {
				client.logger.Error().Err(err).Msg("Failed to encode feed message")
				return
			}
			client.enqueue(msg)
		})
		if err != nil {
			client.logger.Error().Err(err).Msg("Failed to subscribe to ranking feed")
			client.closeConnection()
			return
		}
		client.setUnsubscribe(unsubscribe)

		client.logger.Debug().Msg("New WebSocket feed connection")
	}
}

// enqueue queues a message, dropping it if the client is gone or too slow
func (c *feedClient) enqueue(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.logger.Warn().Msg("Feed client too slow, dropping message")
	}
}

func (c *feedClient) setUnsubscribe(unsubscribe func()) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		unsubscribe()
		return
	}
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
}

// readPump discards client messages and keeps the read deadline alive
func (c *feedClient) readPump() {
	defer c.closeConnection()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.PongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug().Err(err).Msg("WebSocket error")
			}
			return
		}
	}
}

// writePump pumps queued messages to the WebSocket connection
func (c *feedClient) writePump() {
	ticker := time.NewTicker(c.config.PingPeriod)
	defer func() {
		ticker.Stop()
		c.closeConnection()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// closeConnection closes the WebSocket connection and cleans up resources
func (c *feedClient) closeConnection() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		unsubscribe := c.unsubscribe
		c.mu.Unlock()

		close(c.done)
		if unsubscribe != nil {
			unsubscribe()
		}
		_ = c.conn.Close()
		metrics.TrackFeedClient(false)
		c.logger.Debug().Msg("WebSocket feed connection closed")
	})
}
