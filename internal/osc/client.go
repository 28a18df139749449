package osc

import (
	"fmt"
	"net"
	"sync"
)

// Renderer-side addresses.
const (
	AddrImport = "/dolly/Import"
	AddrPlay   = "/dolly/Play"
)

// Client sends fire-and-forget messages to a single UDP destination.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
}

func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &Client{conn: conn}, nil
}

// Send encodes and writes one message.
func (c *Client) Send(addr string, args ...any) error {
	b, err := Encode(addr, args...)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.conn.Write(b); err != nil {
		return fmt.Errorf("send %s: %w", addr, err)
	}
	return nil
}

// Import asks the renderer to load the waypoint file at path.
func (c *Client) Import(path string) error {
	return c.Send(AddrImport, path)
}

// Play starts playback of the imported path.
func (c *Client) Play() error {
	return c.Send(AddrPlay, int32(1))
}

func (c *Client) Close() error {
	return c.conn.Close()
}
