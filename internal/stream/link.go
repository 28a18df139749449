package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	ws "github.com/gorilla/websocket"
)

const (
	outboxSize     = 1024
	ackBuffer      = 16
	redialAttempts = 10
	firstBackoff   = time.Second
	maxBackoff     = 30 * time.Second
	writeWait      = 10 * time.Second
	ackTimeout     = 5 * time.Second
)

var errLinkClosed = errors.New("stream link closed")

// link owns one WebSocket at a time. A single supervisor goroutine writes
// to it, redials when it breaks and replays the hello on the new socket.
type link struct {
	log    *slog.Logger
	dialer ws.Dialer
	target string

	outbox  chan []byte
	acks    chan AckMessage
	quit    chan struct{}
	stopped chan struct{}

	mu      sync.Mutex
	hello   []byte
	closing bool
	running bool
}

func newLink(log *slog.Logger) *link {
	return &link{
		log:     log,
		dialer:  ws.Dialer{HandshakeTimeout: writeWait},
		outbox:  make(chan []byte, outboxSize),
		acks:    make(chan AckMessage, ackBuffer),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// withSecret adds the shared secret as a query parameter.
func withSecret(rawURL, secret string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("stream url %q: %w", rawURL, err)
	}
	if secret != "" {
		q := u.Query()
		q.Set("secret", secret)
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

// open dials once and hands the socket to the supervisor. Later failures
// are retried in the background.
func (l *link) open(rawURL, secret string) error {
	target, err := withSecret(rawURL, secret)
	if err != nil {
		return err
	}
	conn, _, err := l.dialer.Dial(target, nil)
	if err != nil {
		return fmt.Errorf("stream dial %s: %w", rawURL, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closing {
		_ = conn.Close()
		return errLinkClosed
	}
	l.target = target
	l.running = true
	go l.supervise(conn)
	return nil
}

func (l *link) setHello(data []byte) {
	l.mu.Lock()
	l.hello = data
	l.mu.Unlock()
}

func (l *link) supervise(conn *ws.Conn) {
	defer close(l.stopped)
	for conn != nil {
		err := l.serve(conn)
		if err == nil {
			return
		}
		l.log.Warn("Stream connection lost", "error", err)
		conn = l.redial()
	}
}

// serve pumps the outbox onto conn and acks off it until the socket fails
// or the link is closed. A nil error means closed.
func (l *link) serve(conn *ws.Conn) error {
	defer conn.Close()

	readErr := make(chan error, 1)
	go func() { readErr <- l.readAcks(conn) }()

	for {
		select {
		case <-l.quit:
			_ = conn.WriteControl(ws.CloseMessage,
				ws.FormatCloseMessage(ws.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return nil
		case err := <-readErr:
			return err
		case data := <-l.outbox:
			if err := write(conn, data); err != nil {
				return err
			}
		}
	}
}

func write(conn *ws.Conn, data []byte) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteMessage(ws.TextMessage, data)
}

// readAcks forwards acks and ignores everything else the server sends.
func (l *link) readAcks(conn *ws.Conn) error {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ack AckMessage
		if json.Unmarshal(msg, &ack) != nil || ack.Type != TypeAck {
			l.log.Debug("Ignoring stream message", "raw", string(msg))
			continue
		}
		select {
		case l.acks <- ack:
		default:
			l.log.Debug("Ack buffer full", "for", ack.For)
		}
	}
}

// redial returns nil when the link is closed or every attempt failed.
func (l *link) redial() *ws.Conn {
	backoff := firstBackoff
	for attempt := 1; attempt <= redialAttempts; attempt++ {
		select {
		case <-l.quit:
			return nil
		case <-time.After(backoff):
		}

		conn, _, err := l.dialer.Dial(l.target, nil)
		if err != nil {
			l.log.Warn("Stream redial failed", "attempt", attempt, "error", err)
			backoff = min(2*backoff, maxBackoff)
			continue
		}

		l.mu.Lock()
		hello := l.hello
		l.mu.Unlock()
		if hello != nil {
			if err := write(conn, hello); err != nil {
				l.log.Warn("Stream hello replay failed", "error", err)
			}
		}
		l.log.Info("Stream reconnected", "attempt", attempt)
		return conn
	}
	l.log.Error("Stream gave up reconnecting", "attempts", redialAttempts)
	return nil
}

// send queues data without blocking and reports whether it fit.
func (l *link) send(data []byte) bool {
	select {
	case l.outbox <- data:
		return true
	default:
		return false
	}
}

// sendAndWait queues data and waits for the server to ack a message of
// type ackFor.
func (l *link) sendAndWait(data []byte, ackFor string, timeout time.Duration) error {
	if !l.send(data) {
		return fmt.Errorf("stream buffer full, dropped %s", ackFor)
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	for {
		select {
		case ack := <-l.acks:
			if ack.For == ackFor {
				return nil
			}
		case <-timer.C:
			return fmt.Errorf("no ack for %s after %s", ackFor, timeout)
		case <-l.quit:
			return errLinkClosed
		}
	}
}

// close sends a close frame and waits for the supervisor to exit. Safe to
// call more than once, and before open.
func (l *link) close() error {
	l.mu.Lock()
	if l.closing {
		l.mu.Unlock()
		return nil
	}
	l.closing = true
	running := l.running
	close(l.quit)
	l.mu.Unlock()

	if running {
		<-l.stopped
	}
	return nil
}
