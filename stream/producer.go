package stream

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/streamkit/logger"
)

// DeliverFunc receives one sample and its metadata.
type DeliverFunc[T any] func(sample T, md Metadata)

// Subscription is the handle returned when a callback set is registered
// with a producer. Cancel removes the registration; it is safe to call
// concurrently with in-flight deliveries and safe to call twice.
type Subscription struct {
	id     uuid.UUID
	cancel func()
}

// ID returns the unique identifier of this subscription.
func (s Subscription) ID() uuid.UUID { return s.id }

// Cancel severs the subscription on the producer side. The consumer's own
// bookkeeping is not touched; use Link.Sever or DisconnectAndFlush for a
// full teardown.
func (s Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// endpoint is the callback set registered per subscription: sample
// delivery, flush notification, and disconnect notification.
type endpoint[T any] struct {
	deliver    DeliverFunc[T]
	flush      func()
	disconnect func()
}

// Producer is the embeddable fan-out base for anything samples flow out of.
// Concrete producers embed *Producer[T] and drive Emit from their own
// generation loop. The zero value is not usable; construct with NewProducer.
type Producer[T any] struct {
	mu     sync.RWMutex
	subs   map[uuid.UUID]*endpoint[T]
	closed bool
	name   string
}

// NewProducer creates a producer base with no subscribers.
func NewProducer[T any](opts ...ProducerOption) *Producer[T] {
	cfg := applyProducerOptions(opts)
	return &Producer[T]{
		subs: make(map[uuid.UUID]*endpoint[T]),
		name: cfg.name,
	}
}

// ProducerOption configures a Producer.
type ProducerOption func(*producerConfig)

type producerConfig struct {
	name string
}

// WithProducerName tags the producer for logging.
func WithProducerName(name string) ProducerOption {
	return func(c *producerConfig) { c.name = name }
}

func applyProducerOptions(opts []ProducerOption) producerConfig {
	var cfg producerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = "producer"
	}
	return cfg
}

// source lets Producer satisfy Source[T]. Embedding *Producer[T] promotes
// the method, so concrete producers in other packages satisfy Source[T]
// without implementing anything themselves.
func (p *Producer[T]) source() *Producer[T] { return p }

// Emit synchronously invokes every currently registered delivery callback
// with the sample and metadata. Per-sample invocation order across
// subscribers is unspecified. Safe to call concurrently from multiple
// goroutines; a producer with no subscribers discards the sample.
func (p *Producer[T]) Emit(sample T, md Metadata) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ep := range p.subs {
		ep.deliver(sample, md)
	}
}

// Connect registers a delivery callback plus flush and disconnect
// notifications, returning a cancelable subscription handle. flush and
// disconnect may be nil. Connecting to a closed producer returns an inert
// handle that will never see a delivery.
func (p *Producer[T]) Connect(deliver DeliverFunc[T], flush, disconnect func()) Subscription {
	id := uuid.New()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		logger.Debug("connect to closed producer ignored", logger.Fields(
			logger.FieldStage, p.name,
		))
		return Subscription{id: id}
	}
	p.subs[id] = &endpoint[T]{deliver: deliver, flush: flush, disconnect: disconnect}
	total := len(p.subs)
	p.mu.Unlock()

	logger.Debug("subscriber connected", logger.Fields(
		logger.FieldStage, p.name,
		logger.FieldSubscription, id.String(),
		logger.FieldSubscribers, total,
	))

	return Subscription{
		id:     id,
		cancel: func() { p.unsubscribe(id) },
	}
}

// unsubscribe removes one subscription without invoking its disconnect
// notification; the severing side already knows.
func (p *Producer[T]) unsubscribe(id uuid.UUID) {
	p.mu.Lock()
	delete(p.subs, id)
	p.mu.Unlock()
}

// Flush notifies every subscriber to drain its deferred work. It returns
// once all flush notifications have completed, which in turn block until
// the respective consumers have drained.
func (p *Producer[T]) Flush() {
	p.mu.RLock()
	flushes := make([]func(), 0, len(p.subs))
	for _, ep := range p.subs {
		if ep.flush != nil {
			flushes = append(flushes, ep.flush)
		}
	}
	p.mu.RUnlock()

	for _, flush := range flushes {
		flush()
	}
}

// Close severs all subscriptions and notifies each subscriber so it can
// drop its own bookkeeping. No delivery can start once Close has returned.
// Idempotent; Emit after Close is a silent no-op.
func (p *Producer[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	disconnects := make([]func(), 0, len(p.subs))
	for _, ep := range p.subs {
		if ep.disconnect != nil {
			disconnects = append(disconnects, ep.disconnect)
		}
	}
	p.subs = make(map[uuid.UUID]*endpoint[T])
	p.mu.Unlock()

	for _, disconnect := range disconnects {
		disconnect()
	}

	logger.Debug("producer closed", logger.Fields(
		logger.FieldStage, p.name,
		logger.FieldSubscribers, len(disconnects),
	))
}

// SubscriberCount returns the number of live subscriptions.
func (p *Producer[T]) SubscriberCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.subs)
}
