package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBus provides a lightweight event bus using NATS core subjects. Each
// event type maps to its own subject under a common prefix so collaborators
// subscribe only to what they handle.
type NATSBus struct {
	nc     *nats.Conn
	prefix string
}

type NATSConfig struct {
	URL    string
	Prefix string
}

func NewNATSBus(cfg NATSConfig) (*NATSBus, error) {
	url := cfg.URL
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("jarvis-eventbus"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "jarvis.events"
	}
	return &NATSBus{nc: nc, prefix: prefix}, nil
}

func (b *NATSBus) subject(eventType string) string {
	return b.prefix + "." + eventType
}

func (b *NATSBus) Publish(ctx context.Context, evt Event) error {
	if !evt.MinimalValidate() {
		return fmt.Errorf("invalid event: missing required fields")
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return b.nc.Publish(b.subject(evt.Type), data)
}

// Subscribe delivers events of one type to handler until ctx is done.
func (b *NATSBus) Subscribe(ctx context.Context, eventType string, handler func(Event)) (*nats.Subscription, error) {
	sub, err := b.nc.Subscribe(b.subject(eventType), func(msg *nats.Msg) {
		var evt Event
		if err := json.Unmarshal(msg.Data, &evt); err == nil {
			handler(evt)
		}
	})
	if err != nil {
		return nil, err
	}
	go func() {
		<-ctx.Done()
		_ = sub.Drain()
	}()
	return sub, nil
}

// Close drains the underlying connection.
func (b *NATSBus) Close() {
	if b != nil && b.nc != nil {
		b.nc.Close()
	}
}
