package stream

import (
	"sync"
	"testing"
)

func TestEmitReachesEverySubscriber(t *testing.T) {
	p := NewProducer[int]()

	const subscribers = 5
	var mu sync.Mutex
	got := make([][]int, subscribers)
	for i := 0; i < subscribers; i++ {
		i := i
		p.Connect(func(sample int, _ Metadata) {
			mu.Lock()
			got[i] = append(got[i], sample)
			mu.Unlock()
		}, nil, nil)
	}

	for v := 1; v <= 4; v++ {
		p.Emit(v, NewMetadata())
	}

	for i, seq := range got {
		if len(seq) != 4 {
			t.Fatalf("subscriber %d saw %d samples, want 4", i, len(seq))
		}
		for j, v := range seq {
			if v != j+1 {
				t.Errorf("subscriber %d order broken: %v", i, seq)
				break
			}
		}
	}
}

func TestEmitWithoutSubscribersDiscards(t *testing.T) {
	p := NewProducer[string]()
	// Must not panic or block.
	p.Emit("nobody home", NewMetadata())
	if p.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", p.SubscriberCount())
	}
}

func TestSubscriptionCancel(t *testing.T) {
	p := NewProducer[int]()

	var count int
	sub := p.Connect(func(int, Metadata) { count++ }, nil, nil)

	p.Emit(1, NewMetadata())
	sub.Cancel()
	p.Emit(2, NewMetadata())

	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}
	// Cancel twice is safe.
	sub.Cancel()
	if p.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", p.SubscriberCount())
	}
}

func TestCloseNotifiesSubscribersAndIgnoresFurtherEmits(t *testing.T) {
	p := NewProducer[int]()

	var delivered, disconnected int
	p.Connect(func(int, Metadata) { delivered++ }, nil, func() { disconnected++ })

	p.Emit(1, NewMetadata())
	p.Close()
	p.Emit(2, NewMetadata())

	if delivered != 1 {
		t.Errorf("expected 1 delivery, got %d", delivered)
	}
	if disconnected != 1 {
		t.Errorf("expected 1 disconnect notification, got %d", disconnected)
	}

	// Idempotent.
	p.Close()
	if disconnected != 1 {
		t.Errorf("second Close must not re-notify, got %d", disconnected)
	}
}

func TestConnectToClosedProducerIsInert(t *testing.T) {
	p := NewProducer[int]()
	p.Close()

	var called bool
	sub := p.Connect(func(int, Metadata) { called = true }, nil, nil)
	p.Emit(1, NewMetadata())

	if called {
		t.Error("inert subscription must never see a delivery")
	}
	sub.Cancel() // must not panic
}

func TestFlushNotifiesSubscribers(t *testing.T) {
	p := NewProducer[int]()

	var flushes int
	p.Connect(func(int, Metadata) {}, func() { flushes++ }, nil)
	p.Connect(func(int, Metadata) {}, nil, nil) // nil flush is fine

	p.Flush()
	if flushes != 1 {
		t.Errorf("expected 1 flush notification, got %d", flushes)
	}
}

func TestConcurrentEmit(t *testing.T) {
	p := NewProducer[int]()

	var mu sync.Mutex
	total := 0
	p.Connect(func(int, Metadata) {
		mu.Lock()
		total++
		mu.Unlock()
	}, nil, nil)

	const goroutines = 8
	const perGoroutine = 200
	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				p.Emit(i, NewMetadata())
			}
		}()
	}
	wg.Wait()

	if total != goroutines*perGoroutine {
		t.Errorf("expected %d deliveries, got %d", goroutines*perGoroutine, total)
	}
}
