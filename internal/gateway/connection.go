package gateway

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/wordcraft/internal/model"
)

// connection is one live websocket. Only its writePump writes to the
// socket; everything else goes through the send queue.
type connection struct {
	id          string
	ws          *websocket.Conn
	send        chan []byte
	connectedAt time.Time

	closeOnce   sync.Once
	closing     chan struct{}
	closeCode   model.CloseCode
	closeReason string

	done chan struct{} // closed once the writer has exited
}

func newConnection(id string, ws *websocket.Conn, buffer int) *connection {
	return &connection{
		id:          id,
		ws:          ws,
		send:        make(chan []byte, buffer),
		connectedAt: time.Now(),
		closing:     make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// enqueue queues data for writing, reporting false if the buffer is full
// or the connection is closing
func (c *connection) enqueue(data []byte) bool {
	select {
	case <-c.closing:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close asks the writer to flush queued messages and then send a close
// frame with the given status
func (c *connection) close(code model.CloseCode, reason string) {
	c.closeOnce.Do(func() {
		c.closeCode = code
		c.closeReason = reason
		close(c.closing)
	})
}

func (c *connection) writePump(cfg Config, logger *slog.Logger) {
	ticker := time.NewTicker(cfg.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
		close(c.done)
	}()

	write := func(data []byte) error {
		_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
		return c.ws.WriteMessage(websocket.TextMessage, data)
	}

	for {
		select {
		case data := <-c.send:
			if err := write(data); err != nil {
				logger.Debug("write failed",
					slog.String("conn_id", c.id),
					slog.String("error", err.Error()))
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(cfg.WriteWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.closing:
			// Only this goroutine receives, so a non-empty queue never blocks
			for len(c.send) > 0 {
				if err := write(<-c.send); err != nil {
					return
				}
			}
			frame := websocket.FormatCloseMessage(int(c.closeCode), c.closeReason)
			_ = c.ws.WriteControl(websocket.CloseMessage, frame, time.Now().Add(cfg.WriteWait))
			return
		}
	}
}
