package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingPublisher struct {
	topics []string
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ any) error {
	p.topics = append(p.topics, topic)
	return p.err
}

func TestMulti_FansOutAndJoinsErrors(t *testing.T) {
	ok := &recordingPublisher{}
	broken := &recordingPublisher{err: errors.New("broker down")}

	err := Multi{broken, nil, ok}.Publish(context.Background(), "tool_call", "payload")

	assert.ErrorContains(t, err, "broker down")
	assert.Equal(t, []string{"tool_call"}, ok.topics)
	assert.Equal(t, []string{"tool_call"}, broken.topics)

	assert.NoError(t, Multi{ok}.Publish(context.Background(), "call_summary", "payload"))
	assert.NoError(t, NewLogPublisher(zap.NewNop()).Publish(context.Background(), "tool_call", "payload"))
}

type fakeChannel struct {
	exchange  string
	key       string
	published []amqp.Publishing
	err       error
	closed    bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	if c.err != nil {
		return c.err
	}
	c.exchange = exchange
	c.key = key
	c.published = append(c.published, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := NewAMQPPublisherWithChannel(ch, "appointment.events", zap.NewNop())

	require.NoError(t, p.Publish(context.Background(), "call_summary", map[string]string{"summary": "done"}))

	require.Len(t, ch.published, 1)
	assert.Equal(t, "appointment.events", ch.exchange)
	assert.Equal(t, "call_summary", ch.key)
	assert.Equal(t, "application/json", ch.published[0].ContentType)

	var body map[string]string
	require.NoError(t, json.Unmarshal(ch.published[0].Body, &body))
	assert.Equal(t, "done", body["summary"])

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishError(t *testing.T) {
	ch := &fakeChannel{err: amqp.ErrClosed}
	p := NewAMQPPublisherWithChannel(ch, "appointment.events", zap.NewNop())

	err := p.Publish(context.Background(), "tool_call", "x")
	assert.ErrorIs(t, err, amqp.ErrClosed)

	assert.Error(t, p.Publish(context.Background(), "tool_call", func() {}), "unmarshalable payload")
}
