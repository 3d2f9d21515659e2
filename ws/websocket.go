// Package ws is the websocket transport for the OCPP-J engine, built on
// gorilla/websocket: a server accepting charge point connections on a
// configurable listen path, a client dialer for the charge point role, and
// the Channel both hand to a session as its transport.
package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Subprotocol negotiated on every OCPP 1.6 connection.
const Subprotocol = "ocpp1.6"

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// Channel is one open websocket connection. It implements the engine's
// Transport capability: Send writes a text frame, Receive suspends until the
// next text frame or a connection failure, Close unblocks a pending Receive.
type Channel struct {
	conn     *websocket.Conn
	id       string
	writeMu  sync.Mutex
	closedMu sync.Mutex
	closed   bool
	pingDone chan struct{}
	log      *logrus.Entry
}

func newChannel(conn *websocket.Conn, id string, logger *logrus.Logger) *Channel {
	channel := &Channel{
		conn:     conn,
		id:       id,
		pingDone: make(chan struct{}),
		log:      logger.WithField("client", id),
	}
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	return channel
}

func (c *Channel) ID() string {
	return c.id
}

func (c *Channel) Send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Receive blocks until the next text frame. Control and binary frames are
// skipped; OCPP-J traffic is text only.
func (c *Channel) Receive() ([]byte, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if messageType == websocket.TextMessage {
			return data, nil
		}
		c.log.Debugf("skipping non-text frame of type %v", messageType)
	}
}

func (c *Channel) Close() error {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return nil
	}
	c.closed = true
	close(c.pingDone)
	c.closedMu.Unlock()
	return c.conn.Close()
}

// startPing keeps the connection alive; the peer's pong extends the read
// deadline set in newChannel.
func (c *Channel) startPing() {
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(writeWait)
				if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					c.log.Debugf("ping failed: %v", err)
					return
				}
			case <-c.pingDone:
				return
			}
		}
	}()
}
