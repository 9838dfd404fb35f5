package transport

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ErrSendQueueFull is returned when a slow peer falls too far behind
var ErrSendQueueFull = errors.New("send queue full")

const (
	sendQueueSize = 64
	writeWait     = 5 * time.Second
)

// Conn is a websocket with a codec and a single writer goroutine.
// Send never blocks the caller on the network.
type Conn struct {
	ws    *websocket.Conn
	codec Codec
	log   logrus.FieldLogger

	out       chan interface{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewConn wraps ws and starts its write loop
func NewConn(ws *websocket.Conn, codec Codec, log logrus.FieldLogger) *Conn {
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Conn{
		ws:    ws,
		codec: codec,
		log:   log.WithField("codec", codec.Name()),
		out:   make(chan interface{}, sendQueueSize),
		done:  make(chan struct{}),
	}
	c.wg.Add(1)
	go c.writeLoop()
	return c
}

// Codec returns the frame codec
func (c *Conn) Codec() Codec {
	return c.codec
}

// Send queues v for writing
func (c *Conn) Send(v interface{}) error {
	select {
	case <-c.done:
		return websocket.ErrCloseSent
	default:
	}
	select {
	case c.out <- v:
		return nil
	default:
		return ErrSendQueueFull
	}
}

// Read blocks for the next frame and decodes it into v
func (c *Conn) Read(v interface{}) error {
	_, r, err := c.ws.NextReader()
	if err != nil {
		return err
	}
	return c.codec.Decode(r, v)
}

// Close stops the write loop, flushing what was queued, and closes the socket
func (c *Conn) Close() error {
	c.closeOnce.Do(func() { close(c.done) })
	c.wg.Wait()
	return c.ws.Close()
}

// writeLoop is the only writer on the socket. After Close it drains the
// queue before returning.
func (c *Conn) writeLoop() {
	defer c.wg.Done()
	for {
		select {
		case v := <-c.out:
			if err := c.write(v); err != nil {
				c.log.WithError(err).Debug("Write failed")
				return
			}
		case <-c.done:
			for {
				select {
				case v := <-c.out:
					if err := c.write(v); err != nil {
						return
					}
				default:
					_ = c.ws.WriteControl(websocket.CloseMessage,
						websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
						time.Now().Add(writeWait))
					return
				}
			}
		}
	}
}

func (c *Conn) write(v interface{}) error {
	c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	w, err := c.ws.NextWriter(c.codec.MessageType())
	if err != nil {
		return err
	}
	if err := c.codec.Encode(w, v); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
