package websocketPkg

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrPeerClosed = errors.New("websocket peer closed")

// Conn is the subset shared by gorilla and gofiber websocket connections.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

type IPeer interface {
	Send(v interface{}) error
	Receive() ([]byte, error)
	KeepAlive(ctx context.Context, interval time.Duration)
	Close() error
}

type Peer struct {
	conn         Conn
	mu           sync.Mutex
	closed       bool
	writeTimeout time.Duration
}

func NewPeer(conn Conn) *Peer {
	return &Peer{
		conn:         conn,
		writeTimeout: 5 * time.Second,
	}
}

// Dial opens a client connection, sending token as a bearer credential when set.
func Dial(ctx context.Context, url, token string) (*Peer, error) {
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, err
	}

	return NewPeer(conn), nil
}

// Send writes v as one JSON text frame. Safe for concurrent use.
func (p *Peer) Send(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPeerClosed
	}

	if err := p.conn.SetWriteDeadline(time.Now().Add(p.writeTimeout)); err != nil {
		return err
	}
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Receive blocks until the next text or binary frame arrives.
func (p *Peer) Receive() ([]byte, error) {
	for {
		messageType, data, err := p.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (p *Peer) KeepAlive(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.mu.Lock()
			if p.closed {
				p.mu.Unlock()
				return
			}
			err := p.conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(p.writeTimeout))
			p.mu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (p *Peer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	_ = p.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return p.conn.Close()
}
