package nats

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const StreamName = "EVENTS"

// Conn is a JetStream connection shared by the publisher and subscriber.
type Conn struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func Connect(url string) (*Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("jobmatch-be"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &Conn{nc: nc, js: js}, nil
}

// EnsureStream creates the shared stream when missing. Several services
// consume the same subjects, so retention is limits based.
func (c *Conn) EnsureStream(ctx context.Context, maxAge time.Duration) error {
	_, err := c.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"events.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.LimitsPolicy,
		MaxAge:    maxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to ensure stream %s: %w", StreamName, err)
	}
	return nil
}

func (c *Conn) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}
