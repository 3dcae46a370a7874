package rabbit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/models"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/internal/domain/types"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/feed"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger"
	wrap "github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/logger/wrapper"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/metrics"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/rabbit"
	"github.com/sarvjeetrawat/PahadiRaah-sub001/pkg/uuid"
)

const (
	FeedExchange = "feed_topic"

	serviceName = "pahadiraah"
)

// Topic routing keys. One key per entity, so a subscription binds to
// exactly the stream it asked for.
func DriverTopic(driverID uuid.UUID) string    { return fmt.Sprintf("driver.%s", driverID) }
func PassengerTopic(passengerID uuid.UUID) string { return fmt.Sprintf("passenger.%s", passengerID) }
func TripTopic(tripID uuid.UUID) string        { return fmt.Sprintf("trip.%s", tripID) }

// FeedBroker is the change-feed transport: services publish domain events
// into one topic exchange, WebSocket sessions subscribe per topic through
// TopicSource.
type FeedBroker struct {
	client   *rabbit.RabbitMQ
	exchange string

	l logger.Logger
}

func NewFeedBroker(client *rabbit.RabbitMQ, log logger.Logger) *FeedBroker {
	return &FeedBroker{
		client:   client,
		exchange: FeedExchange,

		l: log,
	}
}

// Setup declares the topic exchange. Idempotent, called once at startup.
func (b *FeedBroker) Setup(ctx context.Context) error {
	if err := b.client.EnsureConnection(ctx); err != nil {
		return wrap.Error(ctx, err)
	}

	if err := b.client.Channel.ExchangeDeclare(
		b.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to declare feed exchange: %w", err))
	}

	return nil
}

func (b *FeedBroker) publish(ctx context.Context, key, kind string, payload any) error {
	if err := b.client.EnsureConnection(ctx); err != nil {
		b.l.Error(ctx, "ensure connection failed", err)
		return wrap.Error(ctx, err)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to marshal message: %w", err))
	}

	err = retry(5, time.Second, func() error {
		return b.client.Channel.PublishWithContext(
			ctx,
			b.exchange, // exchange
			key,        // routing key
			false,      // mandatory
			false,      // immediate
			amqp091.Publishing{
				ContentType: "application/json",
				Type:        kind,
				Body:        body,
				Timestamp:   time.Now(),
			},
		)
	})
	metrics.RecordRabbitMQPublish(serviceName, key, err)
	if err != nil {
		return wrap.Error(ctx, fmt.Errorf("failed to publish with context: %w", err))
	}

	return nil
}

// PublishBookingRequested notifies the driver topic about a new booking
// on one of their routes.
func (b *FeedBroker) PublishBookingRequested(ctx context.Context, driverID uuid.UUID, msg models.BookingRequestedMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_booking_requested")
	return b.publish(ctx, DriverTopic(driverID), types.KindBookingRequested, msg)
}

// PublishBookingStatus notifies the passenger topic that their booking
// changed state.
func (b *FeedBroker) PublishBookingStatus(ctx context.Context, passengerID uuid.UUID, msg models.BookingStatusMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_booking_status")
	return b.publish(ctx, PassengerTopic(passengerID), types.KindBookingStatus, msg)
}

// PublishTripLocation mirrors the latest reported position onto the trip
// topic.
func (b *FeedBroker) PublishTripLocation(ctx context.Context, msg models.TripLocationMessage) error {
	ctx = wrap.WithAction(ctx, "rabbitmq_publish_trip_location")
	return b.publish(ctx, TripTopic(msg.TripID), types.KindTripLocation, msg)
}

// TopicSource returns a feed source bound to one routing key. Each Open
// gets its own channel and an exclusive auto-delete queue, so delivery
// starts at subscription time and the queue disappears with the consumer.
// Broker hiccups resubscribe silently; the stream only ends when ctx does.
func (b *FeedBroker) TopicSource(topic string) feed.Source {
	return feed.SourceFunc(func(ctx context.Context) (<-chan feed.Event, error) {
		if err := b.client.EnsureConnection(ctx); err != nil {
			return nil, wrap.Error(ctx, err)
		}

		events := make(chan feed.Event)
		go b.consumeTopic(ctx, topic, events)
		return events, nil
	})
}

// Per-entity source constructors used by websocket sessions.
func (b *FeedBroker) DriverSource(driverID uuid.UUID) feed.Source {
	return b.TopicSource(DriverTopic(driverID))
}

func (b *FeedBroker) PassengerSource(passengerID uuid.UUID) feed.Source {
	return b.TopicSource(PassengerTopic(passengerID))
}

func (b *FeedBroker) TripSource(tripID uuid.UUID) feed.Source {
	return b.TopicSource(TripTopic(tripID))
}

func (b *FeedBroker) consumeTopic(ctx context.Context, topic string, events chan<- feed.Event) {
	ctx = wrap.WithAction(ctx, "rabbitmq_consume_feed_topic")
	defer close(events)

	for {
		if ctx.Err() != nil {
			b.l.Debug(ctx, "feed topic consumer stopped by context", "topic", topic)
			return
		}

		if err := b.client.EnsureConnection(ctx); err != nil {
			b.l.Error(ctx, "ensure connection failed", err)
			time.Sleep(2 * time.Second)
			continue
		}

		msgs, teardown, err := b.openTopicQueue(topic)
		if err != nil {
			b.l.Error(ctx, "feed topic subscribe failed", err, "topic", topic)
			time.Sleep(2 * time.Second)
			continue
		}

		b.l.Debug(ctx, "feed topic subscribed", "topic", topic)

	consumeLoop:
		for {
			select {
			case <-ctx.Done():
				teardown()
				return

			case d, ok := <-msgs:
				if !ok {
					b.l.Warn(ctx, "feed delivery channel closed, resubscribing...", "topic", topic)
					teardown()
					time.Sleep(2 * time.Second)
					break consumeLoop
				}

				metrics.RecordRabbitMQConsume(serviceName, topic, nil)

				event := feed.Event{
					Kind:  d.Type,
					Topic: topic,
					Body:  json.RawMessage(d.Body),
					At:    d.Timestamp,
				}

				select {
				case events <- event:
				case <-ctx.Done():
					teardown()
					return
				}
			}
		}
	}
}

// openTopicQueue binds a fresh exclusive queue to the topic on its own
// channel. The returned teardown closes that channel; the queue is
// auto-delete and follows it down.
func (b *FeedBroker) openTopicQueue(topic string) (<-chan amqp091.Delivery, func(), error) {
	ch, err := b.client.Conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open channel: %w", err)
	}

	queue, err := ch.QueueDeclare(
		"",    // server-named
		false, // durable
		true,  // auto-delete
		true,  // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(queue.Name, topic, b.exchange, false, nil); err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	// auto-ack: the feed is fire-and-forget, a dropped reader just misses
	// events the same way a late subscriber does
	msgs, err := ch.Consume(queue.Name, "", true, true, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, nil, fmt.Errorf("failed to consume: %w", err)
	}

	return msgs, func() { _ = ch.Close() }, nil
}
