package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"walletScope/internal/model"
)

const (
	DefaultSubject = "wallet.snapshots"
	clientName     = "wallet-watcher"
)

// NATSConfig controls the NATS publisher.
type NATSConfig struct {
	URL            string
	Subject        string
	ConnectTimeout time.Duration
}

// NATSMessage is the JSON body published for each change.
type NATSMessage struct {
	model.Notification
	SentAt time.Time `json:"sent_at"`
}

// NATS publishes notifications on a core NATS subject.
type NATS struct {
	conn    *nats.Conn
	subject string
	logger  *zap.Logger
	now     func() time.Time
}

// NewNATS connects to the server and returns a publisher.
func NewNATS(cfg NATSConfig, logger *zap.Logger) (*NATS, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("nats")
	if cfg.Subject == "" {
		cfg.Subject = DefaultSubject
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = defaultTimeout
	}

	opts := []nats.Option{
		nats.Name(clientName),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	logger.Info("nats connected", zap.String("url", conn.ConnectedUrl()), zap.String("subject", cfg.Subject))

	return &NATS{
		conn:    conn,
		subject: cfg.Subject,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}, nil
}

// SendNotification publishes n and flushes so delivery errors surface here.
func (p *NATS) SendNotification(ctx context.Context, n model.Notification) error {
	data, err := encodeMessage(n, p.now())
	if err != nil {
		return err
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", p.subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flush nats: %w", err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATS) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}

func encodeMessage(n model.Notification, sentAt time.Time) ([]byte, error) {
	data, err := json.Marshal(NATSMessage{Notification: n, SentAt: sentAt})
	if err != nil {
		return nil, fmt.Errorf("encode nats message: %w", err)
	}
	return data, nil
}
