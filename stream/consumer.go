package stream

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/streamkit/fault"
	"github.com/kbukum/streamkit/logger"
)

// Handler receives delivered samples. Concrete consumers implement Consume;
// whether concurrent invocations are possible depends on the consumer's
// mode and on how many upstream producers emit concurrently, so handlers
// guard their own state.
type Handler[T any] interface {
	Consume(sample T, md Metadata)
}

// HandlerFunc adapts a plain function to a Handler.
type HandlerFunc[T any] func(sample T, md Metadata)

// Consume calls f.
func (f HandlerFunc[T]) Consume(sample T, md Metadata) { f(sample, md) }

// Mode selects how a consumer processes deliveries.
type Mode int

const (
	// Synchronous runs Consume inline on the emitting goroutine.
	Synchronous Mode = iota
	// Asynchronous hands each delivery to a fire-and-forget task, bounded
	// by the consumer's queue size. Completion order is unspecified.
	Asynchronous
)

func (m Mode) String() string {
	switch m {
	case Synchronous:
		return "sync"
	case Asynchronous:
		return "async"
	default:
		return "unknown"
	}
}

// Link is the consumer-side handle for one subscription. Sever removes the
// subscription from both sides; it is safe to call concurrently with
// in-flight deliveries and safe to call twice.
type Link struct {
	sever func()
}

// Sever disconnects this one subscription.
func (l Link) Sever() {
	if l.sever != nil {
		l.sever()
	}
}

// record ties a producer-side subscription to the consumer's bookkeeping.
type record[T any] struct {
	id  uuid.UUID
	sub Subscription
}

// Consumer is the embeddable delivery base for anything samples flow into.
// It owns the subscription bookkeeping, the processing mode, and the
// deferred-work tracking needed for Flush and DisconnectAndFlush.
// Construct with NewConsumer; the zero value is not usable.
type Consumer[T any] struct {
	handler Handler[T]
	name    string

	// mu guards subs and the mode fields. Deliveries run under the read
	// lock so they proceed concurrently with each other, while a
	// disconnect takes the write lock and therefore strictly orders
	// against every in-flight delivery.
	mu        sync.RWMutex
	subs      map[*Producer[T]][]record[T]
	mode      Mode
	queueSize int
	sem       chan struct{}

	// pendMu guards the deferred-work counter; drained is signaled every
	// time the counter returns to zero.
	pendMu  sync.Mutex
	pending int
	drained *sync.Cond

	// afterFlush, when set, runs after every drain; filters use it to
	// propagate a flush downstream.
	afterFlush func()
}

// NewConsumer creates a consumer base around handler. The default mode is
// Synchronous.
func NewConsumer[T any](handler Handler[T], opts ...ConsumerOption) *Consumer[T] {
	cfg := applyConsumerOptions(opts)
	c := &Consumer[T]{
		handler: handler,
		name:    cfg.name,
		subs:    make(map[*Producer[T]][]record[T]),
	}
	c.drained = sync.NewCond(&c.pendMu)
	if cfg.modeSet {
		c.SetMode(cfg.mode, cfg.queueSize)
	}
	return c
}

// ConsumerOption configures a Consumer at construction time.
type ConsumerOption func(*consumerConfig)

type consumerConfig struct {
	name      string
	mode      Mode
	queueSize int
	modeSet   bool
}

// WithName tags the consumer for logging.
func WithName(name string) ConsumerOption {
	return func(c *consumerConfig) { c.name = name }
}

// WithMode sets the processing mode at construction, equivalent to calling
// SetMode before any subscription exists.
func WithMode(mode Mode, queueSize int) ConsumerOption {
	return func(c *consumerConfig) {
		c.mode = mode
		c.queueSize = queueSize
		c.modeSet = true
	}
}

func applyConsumerOptions(opts []ConsumerOption) consumerConfig {
	var cfg consumerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.name == "" {
		cfg.name = "consumer"
	}
	return cfg
}

// sink lets Consumer satisfy Sink[T] via embedding, mirroring
// Producer.source.
func (c *Consumer[T]) sink() *Consumer[T] { return c }

// SetMode configures the processing mode. queueSize bounds the number of
// outstanding deferred units in Asynchronous mode and is ignored in
// Synchronous mode. Reconfiguring while any subscription exists is a
// precondition violation and panics with a fault.
func (c *Consumer[T]) SetMode(mode Mode, queueSize int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	fault.Checkf(len(c.subs) == 0, fault.CodeModeLocked,
		"consumer %q: mode cannot change while subscriptions exist", c.name)
	if mode == Asynchronous {
		fault.Checkf(queueSize >= 1, fault.CodeInvalidQueueSize,
			"consumer %q: asynchronous mode requires queue size >= 1, got %d", c.name, queueSize)
		c.sem = make(chan struct{}, queueSize)
	} else {
		queueSize = 0
		c.sem = nil
	}
	c.mode = mode
	c.queueSize = queueSize

	logger.Debug("consumer mode set", logger.Fields(
		logger.FieldStage, c.name,
		logger.FieldMode, mode.String(),
		logger.FieldQueueSize, queueSize,
	))
}

// Mode returns the current processing mode.
func (c *Consumer[T]) Mode() Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

// ConnectTo subscribes this consumer to src. A consumer may hold several
// simultaneous subscriptions, including more than one to the same producer.
// The returned Link severs just this subscription; DisconnectAndFlush
// severs them all.
//
// A sample emitted concurrently with ConnectTo may or may not be delivered.
func (c *Consumer[T]) ConnectTo(src Source[T]) Link {
	p := src.source()

	sub := p.Connect(c.deliver, c.Flush, func() { c.dropProducer(p) })

	c.mu.Lock()
	c.subs[p] = append(c.subs[p], record[T]{id: sub.ID(), sub: sub})
	c.mu.Unlock()

	return Link{sever: func() {
		c.removeRecord(p, sub.ID())
		sub.Cancel()
	}}
}

// deliver is the callback registered with every upstream producer. It
// checks, at the moment it actually runs, whether the subscription set is
// still non-empty; a delivery that lost the race against a disconnect is
// silently discarded.
func (c *Consumer[T]) deliver(sample T, md Metadata) {
	c.mu.RLock()
	if len(c.subs) == 0 {
		c.mu.RUnlock()
		return
	}
	if c.mode == Synchronous {
		// Inline on the emitting goroutine, under the read lock: parallel
		// deliveries don't serialize, a disconnect waits for us.
		c.handler.Consume(sample, md)
		c.mu.RUnlock()
		return
	}
	sem := c.sem
	c.registerPending()
	c.mu.RUnlock()

	// Admission control happens outside every lock: when the queue is at
	// capacity this blocks the emitting goroutine until work drains.
	sem <- struct{}{}

	go func() {
		defer func() {
			<-sem
			c.completePending()
		}()
		c.mu.RLock()
		defer c.mu.RUnlock()
		if len(c.subs) == 0 {
			return
		}
		c.handler.Consume(sample, md)
	}()
}

func (c *Consumer[T]) registerPending() {
	c.pendMu.Lock()
	c.pending++
	c.pendMu.Unlock()
}

func (c *Consumer[T]) completePending() {
	c.pendMu.Lock()
	c.pending--
	if c.pending == 0 {
		c.drained.Broadcast()
	}
	c.pendMu.Unlock()
}

// Pending reports the number of deferred units that have been issued but
// not yet completed.
func (c *Consumer[T]) Pending() int {
	c.pendMu.Lock()
	defer c.pendMu.Unlock()
	return c.pending
}

// SubscriptionCount returns the number of live subscriptions.
func (c *Consumer[T]) SubscriptionCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, recs := range c.subs {
		n += len(recs)
	}
	return n
}

// Flush blocks until every deferred unit of work issued so far has
// completed. It does not stop new deliveries; pair it with
// DisconnectAndFlush for teardown.
func (c *Consumer[T]) Flush() {
	c.pendMu.Lock()
	for c.pending > 0 {
		c.drained.Wait()
	}
	c.pendMu.Unlock()

	if c.afterFlush != nil {
		c.afterFlush()
	}
}

// DisconnectAndFlush atomically severs every current subscription, so no
// new delivery can start, then drains all outstanding deferred work. Once
// it returns, no call into the handler is active or pending. Every
// concrete consumer must arrange for this before discarding handler state.
// Idempotent.
//
// Must not be called from inside the handler itself.
func (c *Consumer[T]) DisconnectAndFlush() {
	c.mu.Lock()
	severed := c.subs
	c.subs = make(map[*Producer[T]][]record[T])
	c.mu.Unlock()

	n := 0
	for _, recs := range severed {
		for _, rec := range recs {
			rec.sub.Cancel()
			n++
		}
	}
	c.Flush()

	if n > 0 {
		logger.Debug("consumer disconnected", logger.Fields(
			logger.FieldStage, c.name,
			logger.FieldSubscribers, n,
		))
	}
}

// dropProducer clears bookkeeping for a producer that closed from its side.
func (c *Consumer[T]) dropProducer(p *Producer[T]) {
	c.mu.Lock()
	delete(c.subs, p)
	c.mu.Unlock()
}

// removeRecord drops a single subscription record.
func (c *Consumer[T]) removeRecord(p *Producer[T], id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	recs := c.subs[p]
	for i, rec := range recs {
		if rec.id == id {
			recs = append(recs[:i], recs[i+1:]...)
			break
		}
	}
	if len(recs) == 0 {
		delete(c.subs, p)
	} else {
		c.subs[p] = recs
	}
}
