package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/audit"
	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	exchange, key string
	msg           amqp.Publishing
	err           error
}

func (f *fakeChannel) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func TestPublishSendsPersistentJSON(t *testing.T) {
	ch := &fakeChannel{}
	p := NewRabbitMQPublisher(ch)

	err := p.Publish(context.Background(), gateway.LifecycleExchange, "transaction.created", gateway.Event{EventID: "evt-1"})
	require.NoError(t, err)

	assert.Equal(t, gateway.LifecycleExchange, ch.exchange)
	assert.Equal(t, "transaction.created", ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, uint8(amqp.Persistent), ch.msg.DeliveryMode)

	var got gateway.Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, "evt-1", got.EventID)
}

func TestPublishWrapsBrokerError(t *testing.T) {
	p := NewRabbitMQPublisher(&fakeChannel{err: errors.New("boom")})
	err := p.Publish(context.Background(), gateway.LifecycleExchange, "offer.created", gateway.Event{})
	assert.ErrorContains(t, err, "failed to publish message")
}

type fakeDelivery struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (d *fakeDelivery) Ack(bool) error { d.acked = true; return nil }

func (d *fakeDelivery) Nack(_, requeue bool) error {
	d.nacked, d.requeue = true, requeue
	return nil
}

func TestSettle(t *testing.T) {
	d := &fakeDelivery{}
	Settle(d, audit.Ack)
	assert.True(t, d.acked)

	d = &fakeDelivery{}
	Settle(d, audit.Requeue)
	assert.True(t, d.nacked)
	assert.True(t, d.requeue)

	d = &fakeDelivery{}
	Settle(d, audit.Drop)
	assert.True(t, d.nacked)
	assert.False(t, d.requeue)
}
