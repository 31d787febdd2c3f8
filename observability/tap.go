package observability

import (
	"context"
	"time"

	"github.com/kbukum/streamkit/stream"
)

// Tap is a pass-through stage that meters the samples flowing through
// it. Samples and metadata are forwarded unchanged, so a Tap can be
// spliced into any edge of a chain.
type Tap[T any] struct {
	*stream.Producer[T]
	*stream.Consumer[T]
}

// NewTap creates a metered pass-through stage. stage names the tap in
// metric attributes. A nil metrics disables recording; the tap still
// forwards samples.
func NewTap[T any](stage string, metrics *PipelineMetrics, opts ...stream.ConsumerOption) *Tap[T] {
	ctx := context.Background()
	t := &Tap[T]{Producer: stream.NewProducer[T](stream.WithProducerName(stage))}
	t.Consumer = stream.NewConsumer[T](stream.HandlerFunc[T](func(sample T, md stream.Metadata) {
		start := time.Now()
		t.Producer.Emit(sample, md)
		if metrics != nil {
			metrics.RecordSample(ctx, stage, time.Since(start))
		}
	}), append(opts, stream.WithName(stage))...)
	return t
}

// Flush drains the tap's own deferred work and then flushes downstream.
func (t *Tap[T]) Flush() {
	t.Consumer.Flush()
	t.Producer.Flush()
}

// Close severs upstream subscriptions, drains in-flight work, and
// closes the producer side. Idempotent.
func (t *Tap[T]) Close() {
	t.Consumer.DisconnectAndFlush()
	t.Producer.Close()
}
