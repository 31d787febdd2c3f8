package stream

import "sync"

// Source is anything samples flow out of: a Producer, a Filter, or a
// compound whose right end is open. It is satisfied by embedding
// *Producer[T]; it cannot be implemented from scratch outside this
// package.
type Source[T any] interface {
	source() *Producer[T]
}

// Sink is anything samples flow into: a Consumer, a Filter, or a compound
// whose left end is open. It is satisfied by embedding *Consumer[T].
type Sink[T any] interface {
	sink() *Consumer[T]
}

// Stage is a pipeline segment open on both ends: it consumes In and
// produces Out. Filters and StageChains are Stages.
type Stage[In, Out any] interface {
	Sink[In]
	Source[Out]
}

// ChainOption configures ownership of a combinator's operands.
type ChainOption func(*chainConfig)

type chainConfig struct {
	ownLeft  bool
	ownRight bool
}

// OwnLeft makes the compound responsible for closing its left operand.
func OwnLeft() ChainOption {
	return func(c *chainConfig) { c.ownLeft = true }
}

// OwnRight makes the compound responsible for closing its right operand.
func OwnRight() ChainOption {
	return func(c *chainConfig) { c.ownRight = true }
}

// OwnBoth makes the compound responsible for closing both operands.
func OwnBoth() ChainOption {
	return func(c *chainConfig) { c.ownLeft = true; c.ownRight = true }
}

func applyChainOptions(opts []ChainOption) chainConfig {
	var cfg chainConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// flusher is satisfied by every stage and compound in this package.
type flusher interface{ Flush() }

// teardownOf picks the right teardown for an owned operand: full Close for
// producers, filters and compounds, DisconnectAndFlush for plain consumers.
func teardownOf(op any) func() {
	if c, ok := op.(interface{ Close() }); ok {
		return c.Close
	}
	if d, ok := op.(interface{ DisconnectAndFlush() }); ok {
		return d.DisconnectAndFlush
	}
	return func() {}
}

// chain carries the wiring shared by all four compound kinds.
type chain struct {
	link    Link
	left    any
	right   any
	closers []func()
	once    sync.Once
}

func newChain(link Link, left, right any, cfg chainConfig) chain {
	var closers []func()
	if cfg.ownLeft {
		closers = append(closers, teardownOf(left))
	}
	if cfg.ownRight {
		closers = append(closers, teardownOf(right))
	}
	return chain{link: link, left: left, right: right, closers: closers}
}

// Flush drains the compound left to right: upstream deferred work first so
// its output lands downstream, then the downstream side.
func (c *chain) Flush() {
	if fl, ok := c.left.(flusher); ok {
		fl.Flush()
	}
	if fl, ok := c.right.(flusher); ok {
		fl.Flush()
	}
}

// Close severs the internal wiring between the two operands, then closes
// any owned operand. Referenced (non-owned) operands are left untouched
// and keep any other connections they hold. Idempotent and safe to call
// concurrently with in-flight deliveries: a sample racing the severing is
// silently discarded downstream.
func (c *chain) Close() {
	c.once.Do(func() {
		c.link.Sever()
		for _, closeOp := range c.closers {
			closeOp()
		}
	})
}

// Chain is a terminal pipeline segment: a producer wired into a consumer,
// with no open ends.
type Chain struct {
	chain
}

// SourceChain is a compound producer: a producer wired through a stage,
// open on the right.
type SourceChain[Out any] struct {
	chain
	out *Producer[Out]
}

func (sc *SourceChain[Out]) source() *Producer[Out] { return sc.out }

// SinkChain is a compound consumer: a stage wired into a consumer, open on
// the left.
type SinkChain[In any] struct {
	chain
	in *Consumer[In]
}

func (sc *SinkChain[In]) sink() *Consumer[In] { return sc.in }

// StageChain is a compound filter: two stages fused back to back, open on
// both ends.
type StageChain[In, Out any] struct {
	chain
	in  *Consumer[In]
	out *Producer[Out]
}

func (sc *StageChain[In, Out]) sink() *Consumer[In]    { return sc.in }
func (sc *StageChain[In, Out]) source() *Producer[Out] { return sc.out }

// Pipe wires src into dst and returns the resulting terminal segment.
// Construction subscribes dst to src immediately; samples flow as soon as
// src emits. Compile-time case: producer + consumer.
func Pipe[T any](src Source[T], dst Sink[T], opts ...ChainOption) *Chain {
	cfg := applyChainOptions(opts)
	link := dst.sink().ConnectTo(src)
	return &Chain{chain: newChain(link, src, dst, cfg)}
}

// Through wires src into st and returns a compound producer whose output
// is st's output. Compile-time case: producer + filter.
func Through[T, Out any](src Source[T], st Stage[T, Out], opts ...ChainOption) *SourceChain[Out] {
	cfg := applyChainOptions(opts)
	link := st.sink().ConnectTo(src)
	return &SourceChain[Out]{
		chain: newChain(link, src, st, cfg),
		out:   st.source(),
	}
}

// Into wires st into dst and returns a compound consumer whose input is
// st's input. Compile-time case: filter + consumer.
func Into[In, T any](st Stage[In, T], dst Sink[T], opts ...ChainOption) *SinkChain[In] {
	cfg := applyChainOptions(opts)
	link := dst.sink().ConnectTo(st)
	return &SinkChain[In]{
		chain: newChain(link, st, dst, cfg),
		in:    st.sink(),
	}
}

// Fuse wires left into right and returns a compound stage spanning left's
// input to right's output. Compile-time case: filter + filter.
func Fuse[In, M, Out any](left Stage[In, M], right Stage[M, Out], opts ...ChainOption) *StageChain[In, Out] {
	cfg := applyChainOptions(opts)
	link := right.sink().ConnectTo(left)
	return &StageChain[In, Out]{
		chain: newChain(link, left, right, cfg),
		in:    left.sink(),
		out:   right.source(),
	}
}
