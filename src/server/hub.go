package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nba-stats-explorer/src/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types sent to sessions
const (
	MessageState       = "STATE"
	MessageError       = "ERROR"
	MessageInvalidated = "INVALIDATED"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
// -----------------------------------------------------------------------------

func (s *DashboardServer) startHub() {
	s.hubOnce.Do(func() {
		go s.handleWebsockets()
	})
}

// handleWebsockets is the main Hub loop
func (s *DashboardServer) handleWebsockets() {
	for {
		select {
		case <-s.quit:
			for client := range s.clients {
				delete(s.clients, client)
				client.close()
			}
			s.connections.Store(0)
			return

		case client := <-s.register:
			s.clients[client] = struct{}{}
			s.connections.Store(int64(len(s.clients)))
			s.Logger.Info("Session %s connected (%d open)", client.id, len(s.clients))

		case client := <-s.unregister:
			if _, ok := s.clients[client]; ok {
				delete(s.clients, client)
				client.close()
			}
			s.connections.Store(int64(len(s.clients)))

		case message := <-s.broadcast:
			event, isEvent := message.(models.MCacheEvent)

			for client := range s.clients {
				if !client.trySend(message) {
					// Client too slow, disconnect to prevent Hub blocking
					delete(s.clients, client)
					client.close()
					continue
				}
				// The event is queued before the reloaded state
				if isEvent && event.Type == MessageInvalidated && client.pipeline.Season() == event.Season {
					client.pipeline.Invalidate()
					client.queueRefresh()
				}
			}
			s.connections.Store(int64(len(s.clients)))
		}
	}
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast queues payload for every session. An MCacheEvent of type
// INVALIDATED also makes the sessions showing that season reload it.
func (s *DashboardServer) Broadcast(payload interface{}) {
	select {
	case s.broadcast <- payload:
	case <-s.quit:
	}
}

// InvalidateSeason tells every session that season was evicted.
func (s *DashboardServer) InvalidateSeason(season int) {
	s.Broadcast(models.MCacheEvent{Type: MessageInvalidated, Season: season})
}

// -----------------------------------------------------------------------------
// WebSocket Handlers
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *DashboardServer) handleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := newClient(s, conn, uuid.NewString())

	select {
	case s.register <- client:
	case <-s.quit:
		conn.Close()
		return
	}

	// Start goroutines for reading/writing
	go client.writePump()
	go client.refreshLoop()
	go client.readPump()
}

// -----------------------------------------------------------------------------
// Client Message Handling
// -----------------------------------------------------------------------------

func (s *DashboardServer) HandleClientMessage(client *Client, message []byte) {
	var cmd models.MSelectionCommand
	if err := json.Unmarshal(message, &cmd); err != nil {
		s.Logger.Info("Failed to parse client command: %v, disconnecting client", err)
		client.conn.Close()
		return
	}

	switch cmd.Command {
	case "select":
	case "refresh":
		client.pipeline.Invalidate()
	default:
		client.trySend(&models.MDashboardState{
			Type:      MessageError,
			SessionID: client.id,
			Error:     "unknown command " + cmd.Command,
			Timestamp: time.Now().Unix(),
		})
		return
	}

	sel := models.MFilterSelection{
		Season:    cmd.Season,
		Teams:     cmd.Teams,
		Positions: cmd.Positions,
		ShowTable: cmd.ShowTable,
	}
	if sel.Season == 0 {
		sel.Season = s.Config.Source.DefaultSeason
	}
	client.remember(sel, cmd.Charts)
	s.updateSession(client, sel, cmd.Charts)
}

// -----------------------------------------------------------------------------

// updateSession runs the session pipeline and sends the resulting state.
func (s *DashboardServer) updateSession(client *Client, sel models.MFilterSelection, withCharts bool) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.Config.Network.RequestTimeout+5)*time.Second)
	defer cancel()

	result, err := client.pipeline.Update(ctx, sel)
	if err != nil {
		s.ErrorHandler.Handle(err, "session "+client.id)
		client.trySend(&models.MDashboardState{
			Type:      MessageError,
			SessionID: client.id,
			Season:    sel.Season,
			Selection: sel,
			Error:     err.Error(),
			Timestamp: time.Now().Unix(),
		})
		return
	}

	state := s.stateFrom(result, sel.ShowTable)
	state.SessionID = client.id
	state.Selection.ShowTable = sel.ShowTable
	if !withCharts {
		state.Charts = nil
	}
	client.trySend(state)
}
