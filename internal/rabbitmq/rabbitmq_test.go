package rabbitmq

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChannel struct {
	published  []amqp.Publishing
	keys       []string
	pubErr     error
	deliveries chan amqp.Delivery
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	if f.pubErr != nil {
		return f.pubErr
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Consume(string, string, bool, bool, bool, bool, amqp.Table) (<-chan amqp.Delivery, error) {
	return f.deliveries, nil
}

func (f *fakeChannel) Close() error { return nil }

type acker struct{ acked []uint64 }

func (a *acker) Ack(tag uint64, _ bool) error {
	a.acked = append(a.acked, tag)
	return nil
}

func (a *acker) Nack(uint64, bool, bool) error { return nil }

func (a *acker) Reject(uint64, bool) error { return nil }

func TestPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, "ticket-confirmation", nil)

	err := p.Publish(context.Background(), domain.TicketBookedEvent{Email: "a@x.com", PNR: "ABCD1234", FlightID: 7, Seats: 2})

	require.NoError(t, err)
	require.Len(t, ch.published, 1)
	assert.Equal(t, "ticket-confirmation", ch.keys[0])
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.Equal(t, "ABCD1234", ch.published[0].MessageId)
	assert.JSONEq(t, `{"email":"a@x.com","pnr":"ABCD1234","flightId":7,"seats":2}`, string(ch.published[0].Body))
}

func TestPublisher_PublishError(t *testing.T) {
	p := newPublisher(&fakeChannel{pubErr: errors.New("channel closed")}, "q", nil)

	assert.ErrorContains(t, p.Publish(context.Background(), domain.TicketBookedEvent{}), "channel closed")
}

func TestConsumer_AcksEvenWhenHandlerFails(t *testing.T) {
	ack := &acker{}
	deliveries := make(chan amqp.Delivery, 2)
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte("{broken")}
	deliveries <- amqp.Delivery{Acknowledger: ack, DeliveryTag: 2, Body: []byte(`{"pnr":"ABCD1234"}`)}
	close(deliveries)
	var buf bytes.Buffer
	c := &Consumer{ch: &fakeChannel{deliveries: deliveries}, queue: "ticket-confirmation", log: logger.NewWithWriter("email", &buf)}

	var bodies []string
	err := c.Consume(context.Background(), func(_ context.Context, body []byte) error {
		bodies = append(bodies, string(body))
		return errors.New("send failed")
	})

	assert.ErrorContains(t, err, "deliveries channel closed")
	assert.Equal(t, []uint64{1, 2}, ack.acked)
	assert.Len(t, bodies, 2)
	assert.Contains(t, buf.String(), "[RABBITMQ] handle delivery 1: send failed")
	assert.Contains(t, buf.String(), "[RABBITMQ] handle delivery 2: send failed")
}

func TestConsumer_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := &Consumer{ch: &fakeChannel{deliveries: make(chan amqp.Delivery)}, queue: "q"}

	assert.NoError(t, c.Consume(ctx, func(context.Context, []byte) error { return nil }))
}
