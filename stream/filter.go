package stream

// Transformer maps an incoming sample to zero or one outgoing samples.
// Returning ok=false drops the sample. A transformer that produces output
// builds fresh Metadata (or extends the incoming one via With); it must
// never mutate the incoming Metadata.
//
// Transform is subject to the same concurrency rules as Handler.Consume:
// it may run concurrently with itself when the filter's mode or multiple
// upstream producers allow concurrent delivery.
type Transformer[In, Out any] interface {
	Transform(sample In, md Metadata) (Out, Metadata, bool)
}

// TransformerFunc adapts a plain function to a Transformer.
type TransformerFunc[In, Out any] func(sample In, md Metadata) (Out, Metadata, bool)

// Transform calls f.
func (f TransformerFunc[In, Out]) Transform(sample In, md Metadata) (Out, Metadata, bool) {
	return f(sample, md)
}

// Filter is a consumer of In that is simultaneously a producer of Out.
// Its consume side is implemented once, generically: every delivered
// sample is passed to the Transformer and, if an output is produced, that
// output is re-emitted downstream.
type Filter[In, Out any] struct {
	*Producer[Out]
	*Consumer[In]
}

// NewFilter builds a filter around tr. Consumer options (name, mode) apply
// to the filter's receiving side.
func NewFilter[In, Out any](tr Transformer[In, Out], opts ...ConsumerOption) *Filter[In, Out] {
	f := &Filter[In, Out]{}
	f.Producer = NewProducer[Out]()
	f.Consumer = NewConsumer[In](HandlerFunc[In](func(sample In, md Metadata) {
		if out, outMD, ok := tr.Transform(sample, md); ok {
			f.Producer.Emit(out, outMD)
		}
	}), opts...)
	// An upstream flush drains this filter's own deferred work first, then
	// continues downstream.
	f.Consumer.afterFlush = f.Producer.Flush
	return f
}

// Flush drains the filter's own deferred work and then flushes downstream.
func (f *Filter[In, Out]) Flush() {
	f.Consumer.Flush()
}

// Close severs the filter's upstream subscriptions, drains in-flight work,
// and then closes its producer side so downstream consumers drop their
// bookkeeping. Idempotent.
func (f *Filter[In, Out]) Close() {
	f.Consumer.DisconnectAndFlush()
	f.Producer.Close()
}
