package observability

import "context"

// HealthStatus represents the health state of a component or pipeline.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of an individual component.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// PipelineHealth describes the overall health of a pipeline and its
// stages.
type PipelineHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker is implemented by components that can report their
// health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// NewPipelineHealth creates a PipelineHealth with status up.
func NewPipelineHealth(service, version string) *PipelineHealth {
	return &PipelineHealth{
		Service: service,
		Status:  HealthStatusUp,
		Version: version,
	}
}

// AddComponent adds a component health result and degrades overall
// status if needed.
func (ph *PipelineHealth) AddComponent(ch Health) {
	ph.Components = append(ph.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		ph.Status = HealthStatusDown
	case HealthStatusDegraded:
		if ph.Status != HealthStatusDown {
			ph.Status = HealthStatusDegraded
		}
	}
}
