package websocket

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/frogstop/payments/internal/domain"
)

var ErrClientInactive = errors.New("client is inactive")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

type Client struct {
	id        string
	conn      *websocket.Conn
	send      chan *domain.PaymentUpdate
	done      chan struct{}
	closeOnce sync.Once
}

func NewClient(conn *websocket.Conn) *Client {
	client := &Client{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan *domain.PaymentUpdate, 256),
		done: make(chan struct{}),
	}

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) ID() string {
	return c.id
}

// Send queues a message for the client. A full queue drops the message to
// keep the broadcaster from blocking on a slow consumer.
func (c *Client) Send(update *domain.PaymentUpdate) error {
	select {
	case <-c.done:
		return ErrClientInactive
	default:
	}

	select {
	case c.send <- update:
		return nil
	case <-c.done:
		return ErrClientInactive
	default:
		log.Warn().Str("client_id", c.id).Msg("WebSocket client send channel full, dropping message")
		return errors.New("send channel full")
	}
}

func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.done)
		if c.conn != nil {
			err = c.conn.Close()
		}
	})
	return err
}

// Wait blocks until the connection is closed.
func (c *Client) Wait() {
	<-c.done
}

func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("client_id", c.id).Msg("Unexpected WebSocket close error")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case update := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			data, err := json.Marshal(update)
			if err != nil {
				log.Error().Err(err).Str("client_id", c.id).Msg("Failed to marshal WebSocket message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
