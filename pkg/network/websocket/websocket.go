// Package websocket is the server side websocket transport of the relay.
package websocket

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// PingTime is how often the server should ping, it must
	// come before the peer's pong deadline runs out.
	PingTime  = pongTime * 9 / 10
	pongTime  = 60 * time.Second
	writeWait = 10 * time.Second

	CloseNormal    = websocket.CloseNormalClosure
	CloseGoingAway = websocket.CloseGoingAway
)

// Conn is a server side websocket connection with ping/pong keepalive.
// Reads must come from a single goroutine, writes may come from any.
type Conn struct {
	sock *websocket.Conn
	wmu  sync.Mutex
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	WriteBufferPool: &sync.Pool{},
	// origin checks belong to the middleware in front of the relay
	CheckOrigin: func(*http.Request) bool { return true },
}

func IsUpgrade(r *http.Request) bool { return websocket.IsWebSocketUpgrade(r) }

// Upgrade switches the request to the websocket protocol.
// Incoming frames bigger than maxMessageSize fail the read.
func Upgrade(w http.ResponseWriter, r *http.Request, maxMessageSize int64) (*Conn, error) {
	sock, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, err
	}
	if maxMessageSize > 0 {
		sock.SetReadLimit(maxMessageSize)
	}
	alive := func(string) error { return sock.SetReadDeadline(time.Now().Add(pongTime)) }
	_ = alive("")
	sock.SetPongHandler(alive)
	return &Conn{sock: sock}, nil
}

// Read blocks until the next data frame arrives.
func (c *Conn) Read() ([]byte, error) {
	_, data, err := c.sock.ReadMessage()
	return data, err
}

// Write sends one text frame. Gorilla allows a single writer at a time,
// so data frames are serialized here.
func (c *Conn) Write(message []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.sock.WriteMessage(websocket.TextMessage, message)
}

// control frames may be written concurrently with Write
func (c *Conn) control(kind int, data []byte) error {
	return c.sock.WriteControl(kind, data, time.Now().Add(writeWait))
}

func (c *Conn) Ping() error { return c.control(websocket.PingMessage, nil) }

// CloseWith sends a close frame with the given code and reason.
func (c *Conn) CloseWith(code int, reason string) error {
	return c.control(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason))
}

func (c *Conn) Close() error { return c.sock.Close() }

// IsUnexpectedClose reports read errors other than a normal client goodbye.
func IsUnexpectedClose(err error) bool {
	return websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure)
}
