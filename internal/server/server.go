package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/mzalewski-wsm/studium/internal/database"
	"github.com/mzalewski-wsm/studium/internal/stats"
)

// RtcServer is the connection dispatcher: it owns every live websocket
// connection, the in-process fan-out rooms and the registry of identified
// connections, and routes each inbound signal to its handler.
type RtcServer struct {
	log   *log.Logger
	db    database.StudiumRepository
	stats stats.StatsProvider

	clients map[*Client]struct{}
	// registry maps a user id to its live identified connection. Entries
	// are inserted on user-connected and removed on disconnect, never
	// iterated.
	registry map[string]*Client
	rooms    map[string]map[*Client]struct{}
	mu       sync.RWMutex

	wg sync.WaitGroup
}

func NewRtcServer(logger *log.Logger, db database.StudiumRepository, su stats.StatsProvider) (*RtcServer, error) {
	rtc := &RtcServer{
		log:      logger,
		db:       db,
		stats:    su,
		clients:  make(map[*Client]struct{}),
		registry: make(map[string]*Client),
		rooms:    make(map[string]map[*Client]struct{}),
	}

	su.RegisterMetric("NumActiveConnections")
	su.RegisterMetric("NumActiveRooms")
	su.RegisterMetric("MessagesSent")
	su.RegisterMetric("EventsRelayed")

	return rtc, nil
}

func (rtc *RtcServer) RegisterClient(c *Client) {
	rtc.mu.Lock()
	defer rtc.mu.Unlock()

	rtc.clients[c] = struct{}{}
	rtc.wg.Add(1)
	rtc.stats.Incr("NumActiveConnections")
	rtc.log.Printf("connection %q registered", c.id)
}

// DeregisterClient runs the full disconnect path: durable state is
// reconciled first, then all room memberships and the registry entry are
// dropped with the connection.
func (rtc *RtcServer) DeregisterClient(c *Client) {
	rtc.ReconcileDisconnect(c)

	rtc.mu.Lock()
	if _, ok := rtc.clients[c]; ok {
		delete(rtc.clients, c)
		for key, room := range rtc.rooms {
			if _, ok := room[c]; ok {
				rtc.removeFromRoom(c, key)
			}
		}
		rtc.stats.Decr("NumActiveConnections")
		rtc.wg.Done()
	}
	rtc.mu.Unlock()

	c.stopClient()
	rtc.log.Printf("connection %q deregistered", c.id)
}

// Dispatch routes one inbound signal. Unknown signal names are dropped
// without a response; known signals with an undecodable payload get an
// invalid-signal response.
func (rtc *RtcServer) Dispatch(c *Client, sig *ClientSignal) {
	switch sig.Signal {
	case SignalJoinCall:
		var p CallPayload
		if !decode(c, sig, &p) || p.EventId == "" || p.UserId == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.handleErr(c, sig.Id, rtc.JoinCall(p.EventId, p.UserId))
	case SignalLeaveCall:
		var p CallPayload
		if !decode(c, sig, &p) || p.EventId == "" || p.UserId == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.handleErr(c, sig.Id, rtc.LeaveCall(p.EventId, p.UserId))
	case SignalLeaveAll:
		var p LeaveAllPayload
		if !decode(c, sig, &p) || p.UserId == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.handleErr(c, sig.Id, rtc.LeaveAll(p.UserId))
	case SignalUserConnected:
		var userId string
		if !decode(c, sig, &userId) || userId == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.RegisterConnection(c, userId)
	case SignalJoinConversation:
		var conversationId string
		if !decode(c, sig, &conversationId) || conversationId == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.handleErr(c, sig.Id, rtc.JoinConversation(c, conversationId))
	case SignalLeaveConversation:
		var p LeaveConversationPayload
		if !decode(c, sig, &p) || p.Conversation == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.LeaveRoom(c, p.Conversation)
	case SignalSendMessage:
		var p SendMessagePayload
		if !decode(c, sig, &p) || p.Conversation == "" || p.Sender == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.handleErr(c, sig.Id, rtc.SendMessage(p.Conversation, p.Sender, p.Text))
	case SignalNewEvent:
		var p NewEventPayload
		if !decode(c, sig, &p) || p.Course == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.BroadcastEvent(p.Course, sig.Data)
	case SignalJoinCourse:
		var courseId string
		if !decode(c, sig, &courseId) || courseId == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.JoinRoom(c, courseId)
	case SignalLeaveCourse:
		var courseId string
		if !decode(c, sig, &courseId) || courseId == "" {
			c.queueSignal(ErrInvalidSignal(sig.Id))
			return
		}
		rtc.LeaveRoom(c, courseId)
	default:
		rtc.log.Printf("ignoring unknown signal %q from connection %q", sig.Signal, c.id)
	}
}

func decode(c *Client, sig *ClientSignal, v any) bool {
	if len(sig.Data) == 0 {
		return false
	}
	if err := json.Unmarshal(sig.Data, v); err != nil {
		c.log.Printf("malformed %q payload: %v", sig.Signal, err)
		return false
	}
	return true
}

// handleErr reports a handler failure back to the originating connection.
// Handler failures never fan out to other members.
func (rtc *RtcServer) handleErr(c *Client, id int, err error) {
	switch {
	case err == nil:
	case errors.Is(err, database.ErrNotFound):
		c.queueSignal(ErrNotFoundSignal(id))
	default:
		c.queueSignal(ErrInternalError(id))
	}
}

// JoinRoom adds the connection to a fan-out room. Joining twice is the
// same as joining once.
func (rtc *RtcServer) JoinRoom(c *Client, key string) {
	rtc.mu.Lock()
	defer rtc.mu.Unlock()

	room, ok := rtc.rooms[key]
	if !ok {
		room = make(map[*Client]struct{})
		rtc.rooms[key] = room
		rtc.stats.Incr("NumActiveRooms")
	}
	room[c] = struct{}{}
}

// LeaveRoom removes the connection from a room, a no-op when absent.
func (rtc *RtcServer) LeaveRoom(c *Client, key string) {
	rtc.mu.Lock()
	defer rtc.mu.Unlock()
	rtc.removeFromRoom(c, key)
}

// removeFromRoom requires rtc.mu to be held.
func (rtc *RtcServer) removeFromRoom(c *Client, key string) {
	room, ok := rtc.rooms[key]
	if !ok {
		return
	}

	delete(room, c)
	if len(room) == 0 {
		delete(rtc.rooms, key)
		rtc.stats.Decr("NumActiveRooms")
	}
}

func (rtc *RtcServer) broadcastToRoom(key string, sig *ServerSignal) {
	rtc.mu.RLock()
	defer rtc.mu.RUnlock()

	for client := range rtc.rooms[key] {
		client.queueSignal(sig)
	}
}

func (rtc *RtcServer) roomSize(key string) int {
	rtc.mu.RLock()
	defer rtc.mu.RUnlock()
	return len(rtc.rooms[key])
}

// Shutdown stops every client connection and waits for their read pumps
// to finish reconciling, or until the context expires.
func (rtc *RtcServer) Shutdown(ctx context.Context) error {
	rtc.mu.RLock()
	for c := range rtc.clients {
		c.stopClient()
		c.conn.Close()
	}
	rtc.mu.RUnlock()

	done := make(chan struct{})
	go func() {
		rtc.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
