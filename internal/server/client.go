package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingInterval   = (pongWait * 9) / 10
	maxMessageSize = 1 << 16
)

// Client is one websocket connection bound to a single room. The id is
// the per-connection identity; clientId is the client-chosen stable
// identity used for signaling and share attribution.
type Client struct {
	id       string
	clientId string
	isSub    bool

	conn *websocket.Conn
	room *Room
	log  *log.Logger

	send      chan *ServerEvent
	stop      chan struct{}
	closeOnce sync.Once
}

func NewClient(id, clientId string, isSub bool, conn *websocket.Conn, room *Room, l *log.Logger) *Client {
	return &Client{
		id:       id,
		clientId: clientId,
		isSub:    isSub,
		conn:     conn,
		room:     room,
		log:      l,
		send:     make(chan *ServerEvent, 256),
		stop:     make(chan struct{}),
	}
}

func (c *Client) Write() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case ev, ok := <-c.send:
			if !ok {
				return
			}

			bytes, err := json.Marshal(ev)
			if err != nil {
				c.log.Println("failed to serialize event:", err)
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

func (c *Client) writeMessage(messageType int, data []byte) bool {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(messageType, data); err != nil {
		c.log.Println("ws: write:", err)
		return false
	}
	return true
}

func (c *Client) Read() {
	defer func() {
		c.conn.Close()
		c.close()
		c.leaveRoom()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(appData string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.log.Printf("ws: read: %v", err)
			}
			break
		}

		var cmd ClientCommand
		if err := json.Unmarshal(raw, &cmd); err != nil {
			c.log.Println("error parsing command:", err)
			continue
		}
		cmd.client = c

		select {
		case c.room.cmdChan <- &cmd:
		default:
			c.log.Printf("command channel full for room %q, dropping command from %q", c.room.name, c.id)
		}
	}
}

func (c *Client) queueEvent(ev *ServerEvent) bool {
	select {
	case c.send <- ev:
		return true
	default:
		c.log.Printf("send buffer full for %q, dropping event", c.id)
		return false
	}
}

// close is safe to call from any goroutine, including the room loop
// (kick) and the read pump (disconnect).
func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.stop)
		if c.conn != nil {
			c.conn.Close()
		}
	})
}

func (c *Client) leaveRoom() {
	select {
	case c.room.leaveChan <- c:
	case <-c.room.done:
	}
}
