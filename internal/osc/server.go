package osc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/dispatcher"
)

const maxPacket = 65536

// Router is the part of the dispatcher the server needs.
type Router interface {
	HasHandler(address string) bool
	Dispatch(e dispatcher.Event) (any, error)
}

// Server receives OSC packets on a UDP socket and hands each message to
// the router on the receiving goroutine, in arrival order.
type Server struct {
	conn   net.PacketConn
	router Router
	logger *slog.Logger
}

// Listen binds a UDP socket on addr.
func Listen(addr string, router Router, logger *slog.Logger) (*Server, error) {
	conn, err := net.ListenPacket("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{conn: conn, router: router, logger: logger}, nil
}

// Addr returns the bound address.
func (s *Server) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Serve reads packets until ctx is cancelled or the socket is closed.
// Malformed packets and unhandled addresses are dropped.
func (s *Server) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.conn.Close()
	})
	defer stop()

	buf := make([]byte, maxPacket)
	for {
		n, _, err := s.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		s.handlePacket(buf[:n], time.Now())
	}
}

func (s *Server) handlePacket(data []byte, at time.Time) {
	msgs, err := DecodePacket(data)
	if err != nil {
		s.logger.Debug("dropping malformed packet", "size", len(data), "error", err)
	}
	for _, m := range msgs {
		if !s.router.HasHandler(m.Address) {
			continue
		}
		if _, err := s.router.Dispatch(dispatcher.Event{Address: m.Address, Args: m.Args, Timestamp: at}); err != nil {
			s.logger.Debug("message not handled", "address", m.Address, "error", err)
		}
	}
}

// Close releases the socket.
func (s *Server) Close() error {
	err := s.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
