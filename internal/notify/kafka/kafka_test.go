package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hruthwik-68/MyVyaya-sub000/internal/notify"
)

type fakeWriter struct {
	msgs []kafka.Message
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs []kafka.Message
}

func (f *fakeReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := f.msgs[0]
	f.msgs = f.msgs[1:]
	return msg, nil
}

func (f *fakeReader) Close() error { return nil }

type recordingHub struct {
	events []notify.Event
	done   chan struct{}
	want   int
}

func (r *recordingHub) Deliver(event notify.Event) {
	r.events = append(r.events, event)
	if len(r.events) == r.want {
		close(r.done)
	}
}

func TestPublisher_EncodesEvent(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w, origin: "node-1"}

	event := notify.Event{
		Kind:       notify.PaymentCreated,
		FromUser:   "bob",
		ToUser:     "alice",
		TrackerIDs: []string{"g1"},
		OccurredAt: time.Unix(1700000000, 0).UTC(),
	}
	require.NoError(t, p.Publish(context.Background(), event))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, "alice", string(w.msgs[0].Key))

	got, origin, err := decode(w.msgs[0])
	require.NoError(t, err)
	assert.Equal(t, "node-1", origin)
	assert.Equal(t, event, got)
}

func TestNewPublisher_FlushesPromptly(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "ledger.changes", "node-1")
	t.Cleanup(func() { _ = p.Close() })

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "ledger.changes", w.Topic)
	assert.LessOrEqual(t, w.BatchTimeout, 10*time.Millisecond)
	assert.Positive(t, w.BatchTimeout)
}

func TestConsumer_SkipsOwnAndMalformedEvents(t *testing.T) {
	own, err := encode(notify.Event{Kind: notify.PaymentCreated, FromUser: "x", ToUser: "y"}, "node-1")
	require.NoError(t, err)
	remote, err := encode(notify.Event{Kind: notify.PaymentConfirmed, FromUser: "bob", ToUser: "alice"}, "node-2")
	require.NoError(t, err)

	reader := &fakeReader{msgs: []kafka.Message{
		own,
		{Value: []byte("{not json")},
		remote,
	}}
	c := &Consumer{reader: reader, origin: "node-1"}
	hub := &recordingHub{done: make(chan struct{}), want: 1}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx, hub) }()

	select {
	case <-hub.done:
	case <-time.After(time.Second):
		t.Fatal("remote event was not delivered")
	}
	cancel()
	require.NoError(t, <-errCh)

	require.Len(t, hub.events, 1)
	assert.Equal(t, notify.PaymentConfirmed, hub.events[0].Kind)
	assert.Equal(t, "bob", hub.events[0].FromUser)
}

type failingReader struct{}

func (failingReader) ReadMessage(context.Context) (kafka.Message, error) {
	return kafka.Message{}, errors.New("broker unreachable")
}

func (failingReader) Close() error { return nil }

func TestConsumer_ReturnsReadErrors(t *testing.T) {
	c := &Consumer{reader: failingReader{}, origin: "node-1"}
	err := c.Run(context.Background(), &recordingHub{done: make(chan struct{})})
	assert.ErrorContains(t, err, "broker unreachable")
}
