package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	kafka_config "groupstay/pkg/kafka/config"
	"groupstay/pkg/logger"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *fakeWriter) written() []kafka.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]kafka.Message(nil), w.msgs...)
}

// fakeReader serves a fixed list of messages, then blocks until the
// context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
	fetchErrs []error
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.fetchErrs) > 0 {
		err := r.fetchErrs[0]
		r.fetchErrs = r.fetchErrs[1:]
		r.mu.Unlock()
		return kafka.Message{}, err
	}
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Output: io.Discard})
}

func mustBuild(t *testing.T, b *MessageBuilder) Message {
	t.Helper()
	msg, err := b.Build()
	require.NoError(t, err)
	return msg
}

// ─── Message ────────────────────────────────────────────────────────────

func TestMessageBuilder(t *testing.T) {
	msg := mustBuild(t, NewMessage().
		WithKey("gala").
		WithValue(map[string]int{"used": 9}).
		WithEventType("alert.raised").
		WithScopeID("gala").
		WithSource("inventory"))

	assert.Equal(t, "gala", msg.Key)
	assert.JSONEq(t, `{"used":9}`, string(msg.Value))
	assert.NotEmpty(t, msg.GetEventID())
	assert.Equal(t, "alert.raised", msg.GetEventType())
	assert.Equal(t, "gala", msg.GetScopeID())
	assert.NotEmpty(t, msg.Headers[HeaderTimestamp])

	var decoded map[string]int
	require.NoError(t, msg.DecodeValue(&decoded))
	assert.Equal(t, 9, decoded["used"])
}

func TestMessageBuilder_UnencodableValue(t *testing.T) {
	_, err := NewMessage().WithKey("k").WithValue(make(chan int)).Build()
	require.Error(t, err)
	assert.Equal(t, ErrorTypePermanent, ClassifyError(err))
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{}
	assert.Equal(t, 0, msg.GetRetryCount())
	for range 12 {
		msg.IncrementRetryCount()
	}
	assert.Equal(t, 12, msg.GetRetryCount())
	assert.Equal(t, "12", msg.Headers[HeaderRetryCount])

	msg.Headers[HeaderRetryCount] = "garbage"
	assert.Equal(t, 0, msg.GetRetryCount())
}

// ─── Errors ─────────────────────────────────────────────────────────────

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeUnknown},
		{"tagged transient", NewTransientError("x", nil), ErrorTypeTransient},
		{"wrapped permanent", errors.Join(errors.New("ctx"), NewPermanentError("x", nil)), ErrorTypePermanent},
		{"network", errors.New("dial tcp: Connection Refused"), ErrorTypeTransient},
		{"deadline", context.DeadlineExceeded, ErrorTypeTransient},
		{"cancelled", context.Canceled, ErrorTypePermanent},
		{"other", errors.New("bad payload"), ErrorTypePermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestShouldRetry(t *testing.T) {
	transient := NewTransientError("broker down", nil)
	assert.True(t, ShouldRetry(transient, 0, 3))
	assert.False(t, ShouldRetry(transient, 3, 3))
	assert.False(t, ShouldRetry(NewPermanentError("bad", nil), 0, 3))
	assert.False(t, ShouldRetry(nil, 0, 3))
}

// ─── Producer ───────────────────────────────────────────────────────────

func TestNewProducer_Validation(t *testing.T) {
	_, err := NewProducer(nil, "t", "", nil)
	assert.Error(t, err)
	_, err = NewProducer(&kafka_config.Config{}, "t", "", nil)
	assert.Error(t, err)
	_, err = NewProducer(&kafka_config.Config{Brokers: []string{"localhost:9092"}}, "", "", nil)
	assert.Error(t, err)

	p, err := NewProducer(&kafka_config.Config{Brokers: []string{"localhost:9092"}, ProducerMaxAttempts: 1}, "alerts", "alerts.dlq", testLogger())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestProducer_PublishRunsMiddlewareInOrder(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "alerts", "", testLogger())

	var order []string
	for _, name := range []string{"outer", "inner"} {
		p.Use(func(ctx context.Context, msg Message, next func(context.Context, Message) error) error {
			order = append(order, name)
			return next(ctx, msg)
		})
	}

	msg := mustBuild(t, NewMessage().WithKey("gala").WithValue("hello"))
	require.NoError(t, p.Publish(context.Background(), msg))

	assert.Equal(t, []string{"outer", "inner"}, order)
	written := w.written()
	require.Len(t, written, 1)
	assert.Equal(t, "gala", string(written[0].Key))
}

func TestProducer_RejectsInvalidMessages(t *testing.T) {
	p := newProducer(&fakeWriter{}, nil, "alerts", "", testLogger())
	ctx := context.Background()

	assert.ErrorIs(t, p.Publish(ctx, Message{Value: []byte("x")}), ErrEmptyKey)
	assert.ErrorIs(t, p.Publish(ctx, Message{Key: "k"}), ErrEmptyValue)
	assert.ErrorIs(t, p.PublishBatch(ctx, []Message{{Key: "k"}}), ErrInvalidMessage)
}

func TestProducer_FailedWriteGoesToDLQ(t *testing.T) {
	cause := errors.New("leader not available")
	w := &fakeWriter{err: cause}
	dlq := &fakeWriter{}
	p := newProducer(w, dlq, "alerts", "alerts.dlq", testLogger())

	msg := mustBuild(t, NewMessage().WithKey("gala").WithValue("x"))
	err := p.Publish(context.Background(), msg)
	assert.ErrorIs(t, err, cause)

	dead := dlq.written()
	require.Len(t, dead, 1)
	headers := fromKafkaMessage(dead[0]).Headers
	assert.Equal(t, "alerts", headers[HeaderOriginalTopic])
	assert.Equal(t, cause.Error(), headers[HeaderDLQError])
	assert.NotContains(t, msg.Headers, HeaderDLQError, "caller's message must not be mutated")
}

func TestProducer_Closed(t *testing.T) {
	w := &fakeWriter{}
	p := newProducer(w, nil, "alerts", "", testLogger())
	require.NoError(t, p.Close())
	require.NoError(t, p.Close())

	assert.True(t, w.closed)
	assert.ErrorIs(t, p.Publish(context.Background(), Message{Key: "k", Value: []byte("v")}), ErrProducerClosed)
}

// ─── Consumer ───────────────────────────────────────────────────────────

func runConsumer(t *testing.T, c *Consumer, until func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Start(ctx) }()

	assert.Eventually(t, until, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	require.NoError(t, c.Close())
}

func TestConsumer_HandlesAndCommits(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{
		{Key: []byte("a"), Value: []byte(`1`), Headers: []kafka.Header{{Key: HeaderEventID, Value: []byte("e1")}}},
		{Key: []byte("b"), Value: []byte(`2`)},
	}}

	var mu sync.Mutex
	var seen []string
	c := newConsumer(reader, nil, "alerts", "relay", "", func(_ context.Context, msg Message) error {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, msg.Key)
		return nil
	}, testLogger())

	runConsumer(t, c, func() bool { return reader.commits() == 2 })
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestConsumer_RetriesTransientThenDeadLetters(t *testing.T) {
	reader := &fakeReader{
		fetchErrs: []error{errors.New("connection reset")},
		queue:     []kafka.Message{{Key: []byte("a"), Value: []byte(`1`)}},
	}
	dlq := &fakeWriter{}

	var mu sync.Mutex
	attempts := 0
	c := newConsumer(reader, dlq, "alerts", "relay", "alerts.dlq", func(context.Context, Message) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		return NewTransientError("downstream unavailable", nil)
	}, testLogger())
	c.maxRetries = 2
	c.fetchBackoff = time.Millisecond

	runConsumer(t, c, func() bool { return reader.commits() == 1 })

	assert.Equal(t, 3, attempts)
	dead := dlq.written()
	require.Len(t, dead, 1)
	headers := fromKafkaMessage(dead[0]).Headers
	assert.Equal(t, "2", headers[HeaderRetryCount])
	assert.Equal(t, "relay", headers[HeaderDLQGroup])
}

func TestConsumer_PermanentErrorIsNotRetried(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{Key: []byte("a"), Value: []byte(`1`)}}}
	attempts := 0
	c := newConsumer(reader, nil, "alerts", "relay", "", func(context.Context, Message) error {
		attempts++
		return NewPermanentError("bad payload", nil)
	}, testLogger())
	c.maxRetries = 5

	runConsumer(t, c, func() bool { return reader.commits() == 1 })
	assert.Equal(t, 1, attempts)
}

func TestConsumer_StartAfterClose(t *testing.T) {
	c := newConsumer(&fakeReader{}, nil, "alerts", "relay", "", func(context.Context, Message) error { return nil }, testLogger())
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Start(context.Background()), ErrConsumerClosed)
}
