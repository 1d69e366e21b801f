package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxSignalSize  = 8192
	sendBufferSize = 256
)

// Client is one live websocket connection. Its id is the transient
// connection handle persisted on the user record by user-connected.
type Client struct {
	id       string
	conn     *websocket.Conn
	rtc      *RtcServer
	log      *log.Logger
	send     chan *ServerSignal
	stop     chan struct{}
	stopOnce sync.Once

	// userId is set once the connection registers an identity, empty
	// for anonymous connections.
	userId   string
	userLock sync.RWMutex
}

func NewClient(conn *websocket.Conn, rtc *RtcServer, l *log.Logger) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		rtc:  rtc,
		log:  l,
		send: make(chan *ServerSignal, sendBufferSize),
		stop: make(chan struct{}),
	}
}

func (c *Client) Id() string {
	return c.id
}

func (c *Client) setUserId(id string) {
	c.userLock.Lock()
	defer c.userLock.Unlock()
	c.userId = id
}

func (c *Client) getUserId() string {
	c.userLock.RLock()
	defer c.userLock.RUnlock()
	return c.userId
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case sig, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(sig)
			if err != nil {
				c.log.Println("failed to serialize signal:", err)
				continue
			}

			if !c.writeMessage(websocket.TextMessage, bytes) {
				return
			}
		case <-c.stop:
			return
		case <-ticker.C:
			if !c.writeMessage(websocket.PingMessage, nil) {
				return
			}
		}
	}
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.rtc.DeregisterClient(c)
	}()

	c.conn.SetReadLimit(maxSignalSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var sig ClientSignal
		if err := json.Unmarshal(raw, &sig); err != nil {
			c.log.Println("error parsing signal:", err)
			c.queueSignal(ErrInvalidSignal(0))
			continue
		}

		c.rtc.Dispatch(c, &sig)
	}
}

func (c *Client) queueSignal(sig *ServerSignal) bool {
	select {
	case c.send <- sig:
	default:
		c.log.Printf("send buffer full on connection %q, dropping signal", c.id)
		return false
	}

	return true
}

func (c *Client) writeMessage(msgType int, msg []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))

	if err := c.conn.WriteMessage(msgType, msg); err != nil {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
			websocket.CloseNormalClosure) {
			c.log.Printf("write message: %s", err)
		}
		return false
	}

	return true
}

func (c *Client) stopClient() {
	c.stopOnce.Do(func() { close(c.stop) })
}
