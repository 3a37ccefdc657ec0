package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"

	"github.com/matzehuels/mondrian/pkg/errors"
)

// NATSConfig configures the NATS connection.
type NATSConfig struct {
	URL           string
	Token         string
	SubjectPrefix string

	MaxReconnects int // -1 = unlimited
	ReconnectWait time.Duration
	Timeout       time.Duration
}

// DefaultNATSConfig returns the settings used when only a URL is configured.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		URL:           nats.DefaultURL,
		SubjectPrefix: "mondrian.events",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
		Timeout:       5 * time.Second,
	}
}

// NATSPublisher publishes events as JSON on core NATS. The message id is
// also sent as the Nats-Msg-Id header so a JetStream stream on the same
// subjects deduplicates redeliveries.
type NATSPublisher struct {
	conn   *nats.Conn
	prefix string
	nodeID string
}

// NewNATSPublisher connects to cfg.URL. Disconnects and reconnects after
// that are logged and handled by the client.
func NewNATSPublisher(cfg NATSConfig, logger *log.Logger) (*NATSPublisher, error) {
	if logger == nil {
		logger = log.Default()
	}
	opts := []nats.Option{
		nats.Name("mondrian"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.Timeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "connect to nats at %s", cfg.URL)
	}
	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = DefaultNATSConfig().SubjectPrefix
	}
	return &NATSPublisher{conn: nc, prefix: prefix, nodeID: NodeID()}, nil
}

// Subject returns the subject an event type is published on.
func (p *NATSPublisher) Subject(t Type) string { return subject(p.prefix, t) }

func subject(prefix string, t Type) string { return prefix + "." + string(t) }

func (p *NATSPublisher) Publish(_ context.Context, ev Event) error {
	msg, err := encode(p.prefix, stamp(ev, p.nodeID))
	if err != nil {
		return err
	}
	return p.conn.PublishMsg(msg)
}

func encode(prefix string, ev Event) (*nats.Msg, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", ev.Type, err)
	}
	msg := nats.NewMsg(subject(prefix, ev.Type))
	msg.Data = data
	msg.Header.Set(nats.MsgIdHdr, ev.MessageID)
	return msg, nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() error { return p.conn.Drain() }

var _ Publisher = (*NATSPublisher)(nil)
