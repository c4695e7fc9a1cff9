package event

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type published struct {
	exchange string
	key      string
	msg      amqp.Publishing
}

type fakeChannel struct {
	sent   []published
	err    error
	closed bool
}

func (c *fakeChannel) Publish(exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, published{exchange: exchange, key: key, msg: msg})
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestPublishWrapsPayloadInEnvelope(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "quiz.events", nil)
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	require.NoError(t, p.Publish("score.submitted", map[string]any{"testCode": "MATH7", "rank": 2}))
	require.Len(t, ch.sent, 1)

	sent := ch.sent[0]
	assert.Equal(t, "quiz.events", sent.exchange)
	assert.Equal(t, "score.submitted", sent.key)
	assert.Equal(t, "application/json", sent.msg.ContentType)
	assert.Equal(t, amqp.Persistent, sent.msg.DeliveryMode)
	assert.NotEmpty(t, sent.msg.MessageId)

	var env struct {
		Type       string         `json:"type"`
		Payload    map[string]any `json:"payload"`
		OccurredAt time.Time      `json:"occurredAt"`
	}
	require.NoError(t, json.Unmarshal(sent.msg.Body, &env))
	assert.Equal(t, "score.submitted", env.Type)
	assert.Equal(t, "MATH7", env.Payload["testCode"])
	assert.EqualValues(t, 2, env.Payload["rank"])
	assert.True(t, env.OccurredAt.Equal(fixed))
}

func TestPublishReturnsChannelError(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	p := newPublisher(ch, "quiz.events", nil)

	assert.EqualError(t, p.Publish("score.submitted", nil), "channel closed")
}

func TestPublishRejectsUnencodablePayload(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "quiz.events", nil)

	assert.Error(t, p.Publish("score.submitted", make(chan int)))
	assert.Empty(t, ch.sent)
}

func TestCloseClosesChannel(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "quiz.events", nil)
	p.Close()
	assert.True(t, ch.closed)
}
