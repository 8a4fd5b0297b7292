// Package notify publishes generation events to NATS JetStream so other services
// can react to a site being rebuilt.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/flatsite/internal/enginecache"
	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/logfields"
	"git.home.luguber.info/inful/flatsite/internal/retry"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "flatsite.generations"

const publishTimeout = 5 * time.Second

var _ enginecache.Listener = (*Publisher)(nil)

// Options configures the connection.
type Options struct {
	URL     string
	Subject string
	// Stream, when set, is created or updated to capture Subject.
	Stream string
	// Retry applies to each publish.
	Retry retry.Policy
}

// Message is the JSON body published for each generation.
type Message struct {
	Kind       string    `json:"kind"`
	Root       string    `json:"root"`
	EntryPoint string    `json:"entry_point,omitempty"`
	Generation string    `json:"generation,omitempty"`
	Entries    int       `json:"entries"`
	DurationMS int64     `json:"duration_ms"`
	Error      string    `json:"error,omitempty"`
	At         time.Time `json:"at"`
}

type jetStreamPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// Publisher sends generation events to a JetStream subject.
type Publisher struct {
	conn    *nats.Conn
	js      jetStreamPublisher
	subject string
	retry   retry.Policy
}

// Connect dials NATS and prepares the JetStream context.
func Connect(ctx context.Context, opts Options) (*Publisher, error) {
	if opts.URL == "" {
		return nil, errors.ConfigError("notify: nats url is required").Build()
	}
	subject := opts.Subject
	if subject == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(opts.URL, nats.Name("flatsite"))
	if err != nil {
		return nil, errors.NetworkError("failed to connect to NATS").
			WithCause(err).
			WithContext("url", opts.URL).
			Build()
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, errors.NetworkError("failed to create JetStream context").WithCause(err).Build()
	}

	if opts.Stream != "" {
		if _, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:        opts.Stream,
			Description: "flatsite generation events",
			Subjects:    []string{subject},
			MaxAge:      7 * 24 * time.Hour,
		}); err != nil {
			conn.Close()
			return nil, errors.NetworkError("failed to ensure JetStream stream").
				WithCause(err).
				WithContext("stream", opts.Stream).
				Build()
		}
	}

	slog.Info("NATS publisher initialized", logfields.URL(opts.URL), logfields.Subject(subject))
	return &Publisher{conn: conn, js: js, subject: subject, retry: opts.Retry}, nil
}

func newPublisher(js jetStreamPublisher, subject string, policy retry.Policy) *Publisher {
	return &Publisher{js: js, subject: subject, retry: policy}
}

// Subject returns the subject events are published on.
func (p *Publisher) Subject() string { return p.subject }

// Publish sends one generation event.
func (p *Publisher) Publish(ctx context.Context, ev enginecache.Event) error {
	msg := Message{
		Kind:       string(ev.Kind),
		Root:       ev.Root,
		EntryPoint: ev.EntryPoint,
		Generation: ev.Generation,
		Entries:    ev.Entries,
		DurationMS: ev.Duration.Milliseconds(),
		At:         ev.At,
	}
	if ev.Err != nil {
		msg.Error = ev.Err.Error()
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return errors.InternalError("failed to marshal generation message").WithCause(err).Build()
	}

	var opts []jetstream.PublishOpt
	if ev.Generation != "" {
		opts = append(opts, jetstream.WithMsgID(ev.Generation))
	}
	// Generations outlive the request that triggered them.
	ctx = context.WithoutCancel(ctx)
	err = retry.Do(ctx, p.retry, "notify.publish", func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, publishTimeout)
		defer cancel()
		if _, err := p.js.Publish(ctx, p.subject, data, opts...); err != nil {
			return errors.NetworkError("failed to publish generation event").
				WithCause(err).
				WithContext("subject", p.subject).
				Build()
		}
		return nil
	})
	if err != nil {
		return err
	}
	slog.Debug("Published generation event", logfields.Subject(p.subject), logfields.Root(ev.Root), logfields.Generation(ev.Generation))
	return nil
}

// OnGeneration publishes ev and logs failures.
func (p *Publisher) OnGeneration(ctx context.Context, ev enginecache.Event) {
	if err := p.Publish(ctx, ev); err != nil {
		slog.Warn("Generation notification failed", logfields.Root(ev.Root), logfields.Error(err))
	}
}

// Close drains and closes the NATS connection.
func (p *Publisher) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Drain()
}
