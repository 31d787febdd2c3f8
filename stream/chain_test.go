package stream

import (
	"reflect"
	"sync/atomic"
	"testing"
)

func doubler() *Filter[int, int] {
	return NewFilter[int, int](TransformerFunc[int, int](
		func(sample int, md Metadata) (int, Metadata, bool) {
			return sample * 2, md, true
		}))
}

func plusOne() *Filter[int, int] {
	return NewFilter[int, int](TransformerFunc[int, int](
		func(sample int, md Metadata) (int, Metadata, bool) {
			return sample + 1, md, true
		}))
}

func collector() (*Consumer[int], *[]int) {
	var got []int
	c := NewConsumer[int](HandlerFunc[int](func(sample int, _ Metadata) {
		got = append(got, sample)
	}))
	return c, &got
}

func TestPipeDeliversEndToEnd(t *testing.T) {
	src := NewProducer[int]()
	dst, got := collector()

	ch := Pipe[int](src, dst)
	defer ch.Close()

	src.Emit(1, NewMetadata())
	src.Emit(2, NewMetadata())

	if want := []int{1, 2}; !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
}

func TestThroughProducesCompoundSource(t *testing.T) {
	src := NewProducer[int]()
	compound := Through[int, int](src, doubler(), OwnRight())

	dst, got := collector()
	dst.ConnectTo(compound)

	src.Emit(3, NewMetadata())
	if want := []int{6}; !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
	compound.Close()
}

func TestIntoProducesCompoundSink(t *testing.T) {
	src := NewProducer[int]()
	dst, got := collector()

	compound := Into[int, int](plusOne(), dst, OwnLeft())
	compound.sink().ConnectTo(src)

	src.Emit(9, NewMetadata())
	if want := []int{10}; !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
	compound.Close()
}

func TestFuseProducesCompoundStage(t *testing.T) {
	src := NewProducer[int]()
	stage := Fuse[int, int, int](doubler(), plusOne(), OwnBoth())

	dst, got := collector()
	stage.sink().ConnectTo(src)
	dst.ConnectTo(stage)

	src.Emit(5, NewMetadata())
	if want := []int{11}; !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
	stage.Close()
}

// The three groupings of src -> x2 -> +1 -> sink must behave identically.
func TestChainGroupingsAgree(t *testing.T) {
	input := []int{1, 2, 3, 4, 5}
	want := []int{3, 5, 7, 9, 11}

	t.Run("left to right", func(t *testing.T) {
		src := NewProducer[int]()
		dst, got := collector()

		s1 := Through[int, int](src, doubler(), OwnRight())
		s2 := Through[int, int](s1, plusOne(), OwnBoth())
		end := Pipe[int](s2, dst, OwnBoth())

		for _, v := range input {
			src.Emit(v, NewMetadata())
		}
		if !reflect.DeepEqual(*got, want) {
			t.Errorf("expected %v, got %v", want, *got)
		}
		end.Close()
	})

	t.Run("stages fused first", func(t *testing.T) {
		src := NewProducer[int]()
		dst, got := collector()

		fused := Fuse[int, int, int](doubler(), plusOne(), OwnBoth())
		s := Through[int, int](src, fused, OwnRight())
		end := Pipe[int](s, dst, OwnBoth())

		for _, v := range input {
			src.Emit(v, NewMetadata())
		}
		if !reflect.DeepEqual(*got, want) {
			t.Errorf("expected %v, got %v", want, *got)
		}
		end.Close()
	})

	t.Run("right to left", func(t *testing.T) {
		src := NewProducer[int]()
		dst, got := collector()

		tail := Into[int, int](plusOne(), dst, OwnBoth())
		head := Into[int, int](doubler(), tail, OwnBoth())
		end := Pipe[int](src, head, OwnBoth())

		for _, v := range input {
			src.Emit(v, NewMetadata())
		}
		if !reflect.DeepEqual(*got, want) {
			t.Errorf("expected %v, got %v", want, *got)
		}
		end.Close()
	})
}

func TestCloseWithoutOwnershipLeavesOperandsUsable(t *testing.T) {
	src := NewProducer[int]()
	dst, got := collector()

	ch := Pipe[int](src, dst)
	src.Emit(1, NewMetadata())
	ch.Close()

	// The operands survive the compound: reconnect and keep going.
	src.Emit(2, NewMetadata()) // discarded, no subscriber
	dst.ConnectTo(src)
	src.Emit(3, NewMetadata())

	if want := []int{1, 3}; !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
}

func TestCloseWithOwnershipTearsOperandsDown(t *testing.T) {
	src := NewProducer[int]()
	dst, got := collector()

	ch := Pipe[int](src, dst, OwnBoth())
	src.Emit(1, NewMetadata())
	ch.Close()

	// The producer is closed: further emits are silent no-ops.
	src.Emit(2, NewMetadata())
	if want := []int{1}; !reflect.DeepEqual(*got, want) {
		t.Errorf("expected %v, got %v", want, *got)
	}
	if dst.SubscriptionCount() != 0 {
		t.Errorf("expected consumer bookkeeping cleared, got %d", dst.SubscriptionCount())
	}

	// Close is idempotent.
	ch.Close()
}

func TestChainFlushDrainsLeftToRight(t *testing.T) {
	src := NewProducer[int]()
	f := NewFilter[int, int](TransformerFunc[int, int](
		func(sample int, md Metadata) (int, Metadata, bool) {
			return sample, md, true
		}), WithMode(Asynchronous, 4))

	var count atomic.Int64
	dst := NewConsumer[int](HandlerFunc[int](func(int, Metadata) {
		count.Add(1)
	}), WithMode(Asynchronous, 4))

	s := Through[int, int](src, f, OwnRight())
	end := Pipe[int](s, dst, OwnBoth())

	for v := 0; v < 50; v++ {
		src.Emit(v, NewMetadata())
	}
	end.Flush()

	if count.Load() != 50 {
		t.Errorf("expected 50 after chain flush, got %d", count.Load())
	}
	end.Close()
}
