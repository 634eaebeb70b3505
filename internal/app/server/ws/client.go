package ws

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// RuntimeClient is one live connection. Writes go through a buffered
// channel and a single writer goroutine so broadcasts never block on a
// slow socket; a full buffer drops the connection instead.
type RuntimeClient struct {
	ctx    context.Context
	cancel context.CancelFunc
	ws     *WebSocket
	id     string
	userID string
	out    chan []byte
	once   sync.Once

	mu     sync.Mutex
	closed bool
}

func NewClient(parent context.Context, ws *WebSocket, userID string) *RuntimeClient {
	ctx, cancel := context.WithCancel(parent)
	c := &RuntimeClient{
		ctx:    ctx,
		cancel: cancel,
		ws:     ws,
		id:     uuid.NewString(),
		userID: userID,
		out:    make(chan []byte, 256),
	}
	go c.writeLoop()
	return c
}

func (c *RuntimeClient) ID() string     { return c.id }
func (c *RuntimeClient) UserID() string { return c.userID }

// Send enqueues one frame. The closed check and the enqueue happen
// under the same lock; the out channel itself is never closed, so a
// broadcast racing a disconnect gets an error instead of a panic.
func (c *RuntimeClient) Send(ctx context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("client closed")
	}
	select {
	case c.out <- data:
		return nil
	default:
		go c.Close()
		return errors.New("client send buffer full")
	}
}

func (c *RuntimeClient) Close() {
	c.once.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()
		c.cancel()
		c.ws.Close()
	})
}

func (c *RuntimeClient) writeLoop() {
	defer c.Close()
	for {
		select {
		case <-c.ctx.Done():
			return
		case data := <-c.out:
			_ = c.ws.WriteMessage(data)
		}
	}
}
