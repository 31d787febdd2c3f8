package monitor

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/kbukum/streamkit/logger"
)

// Snapshot is one point-in-time view of the pipeline's estimators,
// broadcast to SSE clients as JSON.
type Snapshot struct {
	Timestamp time.Time            `json:"timestamp"`
	Samples   int                  `json:"samples"`
	Values    map[string]float64   `json:"values,omitempty"`
	Vectors   map[string][]float64 `json:"vectors,omitempty"`
}

// SnapshotFunc produces the current snapshot. It is called from the
// publisher goroutine and must be safe to call concurrently with the
// pipeline.
type SnapshotFunc func() Snapshot

// Publisher periodically samples a SnapshotFunc and broadcasts the JSON
// encoding through a Hub.
type Publisher struct {
	hub      *Hub
	interval time.Duration
	snapshot SnapshotFunc

	mu      sync.Mutex
	done    chan struct{}
	wg      sync.WaitGroup
	started bool
}

// NewPublisher creates a publisher that broadcasts every interval.
func NewPublisher(hub *Hub, interval time.Duration, snapshot SnapshotFunc) *Publisher {
	return &Publisher{
		hub:      hub,
		interval: interval,
		snapshot: snapshot,
		done:     make(chan struct{}),
	}
}

// Start launches the publishing loop in a background goroutine.
func (p *Publisher) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				p.publish()
			}
		}
	}()
}

// Stop halts the publishing loop and waits for it to return. Safe to
// call multiple times. A stopped publisher cannot be restarted.
func (p *Publisher) Stop() {
	p.mu.Lock()
	if p.started {
		p.started = false
		close(p.done)
	}
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Publisher) publish() {
	snap := p.snapshot()
	data, err := json.Marshal(snap)
	if err != nil {
		logger.Error("snapshot marshal failed", logger.Fields("error", err.Error()))
		return
	}
	p.hub.Broadcast(data)
}
