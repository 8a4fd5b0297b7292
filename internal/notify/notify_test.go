package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/flatsite/internal/enginecache"
	"git.home.luguber.info/inful/flatsite/internal/foundation/errors"
	"git.home.luguber.info/inful/flatsite/internal/retry"
)

type published struct {
	subject string
	data    []byte
	opts    int
}

type fakeJetStream struct {
	sent     []published
	err      error
	failures int // fail this many calls before succeeding
	calls    int
}

func (f *fakeJetStream) Publish(_ context.Context, subject string, payload []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls <= f.failures {
		return nil, stderrors.New("timeout")
	}
	f.sent = append(f.sent, published{subject: subject, data: payload, opts: len(opts)})
	return &jetstream.PubAck{Stream: "FLATSITE", Sequence: uint64(len(f.sent))}, nil
}

func TestPublisher_Publish(t *testing.T) {
	js := &fakeJetStream{}
	p := newPublisher(js, DefaultSubject, retry.Policy{})
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	p.OnGeneration(t.Context(), enginecache.Event{
		Kind: enginecache.GenerationBuilt, Root: "/srv/site", Generation: "g1",
		Entries: 4, Duration: 1500 * time.Millisecond, At: at,
	})
	p.OnGeneration(t.Context(), enginecache.Event{
		Kind: enginecache.GenerationFailed, Root: "/srv/site", Err: stderrors.New("bad yaml"), At: at,
	})

	require.Len(t, js.sent, 2)
	assert.Equal(t, DefaultSubject, js.sent[0].subject)
	assert.Equal(t, 1, js.sent[0].opts, "built generations carry a message id")
	assert.Equal(t, 0, js.sent[1].opts)

	var msg Message
	require.NoError(t, json.Unmarshal(js.sent[0].data, &msg))
	assert.Equal(t, "GenerationBuilt", msg.Kind)
	assert.Equal(t, int64(1500), msg.DurationMS)
	assert.Equal(t, 4, msg.Entries)

	require.NoError(t, json.Unmarshal(js.sent[1].data, &msg))
	assert.Equal(t, "bad yaml", msg.Error)
}

func TestPublisher_PublishErrorIsNetwork(t *testing.T) {
	p := newPublisher(&fakeJetStream{err: stderrors.New("no responders")}, "s", retry.Policy{})
	err := p.Publish(t.Context(), enginecache.Event{Kind: enginecache.GenerationBuilt, Root: "/r"})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNetwork))
	require.NoError(t, p.Close())
}

func TestPublisher_RetriesTransientFailures(t *testing.T) {
	js := &fakeJetStream{failures: 2}
	p := newPublisher(js, "s", retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 2))

	require.NoError(t, p.Publish(t.Context(), enginecache.Event{Kind: enginecache.GenerationBuilt, Root: "/r", Generation: "g"}))
	assert.Equal(t, 3, js.calls)
	assert.Len(t, js.sent, 1)

	js = &fakeJetStream{failures: 5}
	p = newPublisher(js, "s", retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, 1))
	require.Error(t, p.Publish(t.Context(), enginecache.Event{Kind: enginecache.GenerationBuilt, Root: "/r"}))
	assert.Equal(t, 2, js.calls)
}

func TestConnect_RequiresURL(t *testing.T) {
	_, err := Connect(t.Context(), Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}
