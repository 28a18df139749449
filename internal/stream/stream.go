// Package stream publishes the live dolly path to a WebSocket server, for
// overlays and remote viewers that want to follow what the camera will do.
package stream

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Changa-Husky/VrChatDollyController/internal/footprint"
	"github.com/Changa-Husky/VrChatDollyController/internal/model"
)

// Message types.
const (
	TypeHello  = "hello"
	TypePath   = "path"
	TypeStatus = "status"
	TypeAck    = "ack"
)

// Config holds stream configuration.
type Config struct {
	URL    string
	Secret string
}

// Envelope wraps every message sent over the WebSocket.
type Envelope struct {
	Type    string          `json:"type"`
	Session string          `json:"session"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload"`
}

// AckMessage is the server's acknowledgement response.
type AckMessage struct {
	Type string `json:"type"` // always "ack"
	For  string `json:"for"`  // the message type being acknowledged
}

// HelloPayload opens a session.
type HelloPayload struct {
	Client string `json:"client"`
}

// PathPayload is one exported path.
type PathPayload struct {
	Mode      string              `json:"mode"`
	Points    int                 `json:"points"`
	Duration  float64             `json:"duration"`
	Footprint footprint.Footprint `json:"footprint"`
	Waypoints []model.Waypoint    `json:"waypoints"`
}

// StatusPayload carries one status line.
type StatusPayload struct {
	Line string `json:"line"`
}

// Publisher sends path and status updates for one session.
type Publisher struct {
	link    *link
	cfg     Config
	session string
	now     func() time.Time
}

// New creates a publisher. logger may be nil.
func New(cfg Config, session string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		link:    newLink(logger.With("component", "stream")),
		cfg:     cfg,
		session: session,
		now:     time.Now,
	}
}

// Init connects to the server and announces the session. The server must
// acknowledge the hello.
func (p *Publisher) Init() error {
	data, err := p.marshal(TypeHello, HelloPayload{Client: "dollyctl"})
	if err != nil {
		return err
	}
	if err := p.link.open(p.cfg.URL, p.cfg.Secret); err != nil {
		return err
	}
	p.link.setHello(data)

	if err := p.link.sendAndWait(data, TypeHello, ackTimeout); err != nil {
		_ = p.link.close()
		return err
	}
	return nil
}

// Close disconnects from the server.
func (p *Publisher) Close() error {
	return p.link.close()
}

// Session returns the session id stamped on every envelope.
func (p *Publisher) Session() string {
	return p.session
}

// PublishPath queues an exported path. The message is dropped if the send
// buffer is full.
func (p *Publisher) PublishPath(mode model.Mode, wps []model.Waypoint) error {
	if wps == nil {
		wps = []model.Waypoint{}
	}
	payload := PathPayload{
		Mode:      mode.String(),
		Points:    len(wps),
		Duration:  TotalDuration(wps),
		Footprint: footprint.Of(wps),
		Waypoints: wps,
	}
	return p.publish(TypePath, payload)
}

// PublishStatus queues a status line.
func (p *Publisher) PublishStatus(line string) error {
	return p.publish(TypeStatus, StatusPayload{Line: line})
}

func (p *Publisher) publish(msgType string, payload any) error {
	data, err := p.marshal(msgType, payload)
	if err != nil {
		return err
	}
	if !p.link.send(data) {
		return fmt.Errorf("stream buffer full, dropped %s", msgType)
	}
	return nil
}

func (p *Publisher) marshal(msgType string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", msgType, err)
	}
	env := Envelope{Type: msgType, Session: p.session, Time: p.now().UTC(), Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("marshal %s envelope: %w", msgType, err)
	}
	return data, nil
}

// TotalDuration sums the waypoint durations.
func TotalDuration(wps []model.Waypoint) float64 {
	var d float64
	for _, w := range wps {
		d += w.Duration
	}
	return model.Round(d, 3)
}
