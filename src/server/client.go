package server

import (
	"sync"
	"time"

	"nba-stats-explorer/src/analysis"
	"nba-stats-explorer/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	writeWait      = 2 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 64
)

// -----------------------------------------------------------------------------
// Client Structure
// -----------------------------------------------------------------------------

// Client is one dashboard session with its own reactive pipeline.
type Client struct {
	hub      *DashboardServer
	conn     *websocket.Conn
	id       string
	pipeline *analysis.Pipeline

	send      chan interface{}
	refresh   chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	selection  models.MFilterSelection
	withCharts bool
	selected   bool
}

// -----------------------------------------------------------------------------

func newClient(hub *DashboardServer, conn *websocket.Conn, id string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		id:       id,
		pipeline: hub.Analysis.NewPipeline(hub.Cache, hub.Charts.Render),
		send:     make(chan interface{}, sendBuffer),
		refresh:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// -----------------------------------------------------------------------------

// trySend queues message without blocking. It reports false when the
// buffer is full or the session is closed.
func (c *Client) trySend(message interface{}) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Client) queueRefresh() {
	select {
	case c.refresh <- struct{}{}:
	default:
	}
}

func (c *Client) remember(sel models.MFilterSelection, withCharts bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selection = sel
	c.withCharts = withCharts
	c.selected = true
}

// -----------------------------------------------------------------------------
// readPump - handles incoming messages from client
// Act as a Watchdog for the connection
// -----------------------------------------------------------------------------

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
		c.close()
		c.conn.Close()
		c.hub.Logger.Info("Session %s disconnected", c.id)
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.Logger.Info("WebSocket error: %v", err)
			}
			break
		}
		// Selection commands run the pipeline on this goroutine
		c.hub.HandleClientMessage(c, message)
	}
}

// -----------------------------------------------------------------------------
// refreshLoop - re-runs the last selection after its season was evicted
// -----------------------------------------------------------------------------

func (c *Client) refreshLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.refresh:
			c.mu.Lock()
			sel, withCharts, ok := c.selection, c.withCharts, c.selected
			c.mu.Unlock()
			if ok {
				c.hub.updateSession(c, sel, withCharts)
			}
		}
	}
}

// -----------------------------------------------------------------------------
// writePump - sends messages to client
// -----------------------------------------------------------------------------

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			// Write JSON message
			if err := c.conn.WriteJSON(message); err != nil {
				c.hub.Logger.Info("Write error: %v", err)
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
