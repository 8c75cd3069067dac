package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hoenas/econosim/internal/engine"
	"github.com/hoenas/econosim/internal/market"
)

const (
	feedWriteWait  = 10 * time.Second
	feedPongWait   = 60 * time.Second
	feedPingPeriod = 30 * time.Second
	feedBufferSize = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// TickUpdate is one clearing summary pushed to feed subscribers.
type TickUpdate struct {
	Tick   uint64       `json:"tick"`
	Trades []FeedTrade  `json:"trades"`
	Stats  market.Stats `json:"stats"`
}

// FeedTrade is a settlement with owner handles resolved to names.
type FeedTrade struct {
	Resource     string  `json:"resource"`
	Amount       float64 `json:"amount"`
	PricePerUnit float64 `json:"price_per_unit"`
	Buyer        string  `json:"buyer"`
	Seller       string  `json:"seller"`
}

// feedClient is one subscribed websocket connection. Messages are queued
// on a buffered channel; slow consumers drop updates instead of stalling
// the tick loop.
type feedClient struct {
	id     uint64
	conn   *websocket.Conn
	sendCh chan []byte

	done      chan struct{}
	closeOnce sync.Once

	dropped uint64
}

func (c *feedClient) send(data []byte) {
	select {
	case c.sendCh <- data:
	default:
		atomic.AddUint64(&c.dropped, 1)
	}
}

func (c *feedClient) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// Feed fans per-tick clearing summaries out to websocket subscribers.
type Feed struct {
	mu      sync.RWMutex
	clients map[uint64]*feedClient
	nextID  uint64
}

// NewFeed creates an empty feed with no subscribers.
func NewFeed() *Feed {
	return &Feed{clients: make(map[uint64]*feedClient)}
}

// ServeHTTP upgrades the connection and subscribes it to the feed.
func (f *Feed) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("feed upgrade failed", "error", err)
		return
	}

	c := &feedClient{
		conn:   conn,
		sendCh: make(chan []byte, feedBufferSize),
		done:   make(chan struct{}),
	}

	f.mu.Lock()
	f.nextID++
	c.id = f.nextID
	f.clients[c.id] = c
	f.mu.Unlock()

	slog.Info("feed client connected", "client", c.id, "addr", conn.RemoteAddr())

	go f.writePump(c)
	go f.readPump(c)
}

// Broadcast pushes one tick's clearing summary to every subscriber.
// Safe to call from the tick loop; never blocks.
func (f *Feed) Broadcast(world *engine.World, tick uint64, trades []market.Trade, stats market.Stats) {
	f.mu.RLock()
	idle := len(f.clients) == 0
	f.mu.RUnlock()
	if idle {
		return
	}

	update := TickUpdate{Tick: tick, Trades: make([]FeedTrade, len(trades)), Stats: stats}
	for i, t := range trades {
		update.Trades[i] = FeedTrade{
			Resource:     world.Resources.Name(t.Resource),
			Amount:       t.Amount,
			PricePerUnit: t.PricePerUnit,
			Buyer:        ownerLabel(world, t.Buyer),
			Seller:       ownerLabel(world, t.Seller),
		}
	}

	data, err := json.Marshal(update)
	if err != nil {
		slog.Error("feed encode failed", "error", err)
		return
	}

	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range f.clients {
		c.send(data)
	}
}

func (f *Feed) unregister(c *feedClient) {
	f.mu.Lock()
	delete(f.clients, c.id)
	f.mu.Unlock()

	c.close()
	slog.Info("feed client disconnected", "client", c.id, "dropped", atomic.LoadUint64(&c.dropped))
}

// readPump discards client messages and keeps the pong deadline fresh.
func (f *Feed) readPump(c *feedClient) {
	defer f.unregister(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("feed read error", "client", c.id, "error", err)
			}
			return
		}
	}
}

func (f *Feed) writePump(c *feedClient) {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case data := <-c.sendCh:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
