package main

import (
	"github.com/kbukum/streamkit/config"
	"github.com/kbukum/streamkit/monitor"
	"github.com/kbukum/streamkit/validation"
)

// Config is the full mcpipe configuration.
type Config struct {
	config.AppConfig `yaml:",inline" mapstructure:",squash"`

	Sampler   SamplerConfig   `yaml:"sampler" mapstructure:"sampler"`
	Chain     ChainConfig     `yaml:"chain" mapstructure:"chain"`
	Histogram HistogramConfig `yaml:"histogram" mapstructure:"histogram"`
	Monitor   monitor.Config  `yaml:"monitor" mapstructure:"monitor"`
	Metrics   MetricsConfig   `yaml:"metrics" mapstructure:"metrics"`
}

// SamplerConfig selects and tunes the MCMC kernel.
type SamplerConfig struct {
	Algorithm string  `yaml:"algorithm" mapstructure:"algorithm" validate:"omitempty,oneof=rwmh drmh"`
	Target    string  `yaml:"target" mapstructure:"target" validate:"omitempty,oneof=gaussian banana"`
	Dimension int     `yaml:"dimension" mapstructure:"dimension" validate:"omitempty,min=1,max=64"`
	StepSize  float64 `yaml:"step_size" mapstructure:"step_size" validate:"omitempty,gt=0"`
	Shrink    float64 `yaml:"shrink" mapstructure:"shrink" validate:"omitempty,gt=0,lte=1"`
	Seed      int64   `yaml:"seed" mapstructure:"seed"`
}

// ChainConfig controls the pipeline topology.
type ChainConfig struct {
	Steps     int  `yaml:"steps" mapstructure:"steps" validate:"omitempty,min=1"`
	BurnIn    int  `yaml:"burn_in" mapstructure:"burn_in" validate:"omitempty,min=0"`
	Thin      int  `yaml:"thin" mapstructure:"thin" validate:"omitempty,min=1"`
	MaxLag    int  `yaml:"max_lag" mapstructure:"max_lag" validate:"omitempty,min=0"`
	Async     bool `yaml:"async" mapstructure:"async"`
	QueueSize int  `yaml:"queue_size" mapstructure:"queue_size" validate:"omitempty,min=1"`
}

// HistogramConfig controls the scalar histogram estimator.
type HistogramConfig struct {
	Component int     `yaml:"component" mapstructure:"component" validate:"omitempty,min=0"`
	Min       float64 `yaml:"min" mapstructure:"min"`
	Max       float64 `yaml:"max" mapstructure:"max"`
	Bins      int     `yaml:"bins" mapstructure:"bins" validate:"omitempty,min=1"`
}

// MetricsConfig controls OpenTelemetry export.
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled" mapstructure:"enabled"`
	Endpoint     string `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure     bool   `yaml:"insecure" mapstructure:"insecure"`
	IntervalSecs int    `yaml:"interval_secs" mapstructure:"interval_secs" validate:"omitempty,min=1"`
}

// ApplyDefaults fills unset fields with sensible development values.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "mcpipe"
	}
	c.AppConfig.ApplyDefaults()

	if c.Sampler.Algorithm == "" {
		c.Sampler.Algorithm = "rwmh"
	}
	if c.Sampler.Target == "" {
		c.Sampler.Target = "gaussian"
	}
	if c.Sampler.Dimension == 0 {
		c.Sampler.Dimension = 2
	}
	if c.Sampler.StepSize == 0 {
		c.Sampler.StepSize = 0.5
	}
	if c.Sampler.Shrink == 0 {
		c.Sampler.Shrink = 0.2
	}

	if c.Chain.Steps == 0 {
		c.Chain.Steps = 10000
	}
	if c.Chain.BurnIn == 0 {
		c.Chain.BurnIn = 1000
	}
	if c.Chain.Thin == 0 {
		c.Chain.Thin = 2
	}
	if c.Chain.MaxLag == 0 {
		c.Chain.MaxLag = 50
	}
	if c.Chain.QueueSize == 0 {
		c.Chain.QueueSize = 64
	}

	if c.Histogram.Bins == 0 {
		c.Histogram.Bins = 40
	}
	if c.Histogram.Min == 0 && c.Histogram.Max == 0 {
		c.Histogram.Min = -5
		c.Histogram.Max = 5
	}

	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = "localhost:4318"
		c.Metrics.Insecure = true
	}
	if c.Metrics.IntervalSecs == 0 {
		c.Metrics.IntervalSecs = 15
	}

	c.Monitor.ApplyDefaults()
}

// Validate checks the full configuration.
func (c *Config) Validate() error {
	if err := c.AppConfig.Validate(); err != nil {
		return err
	}
	if err := validation.Validate(c); err != nil {
		return err
	}

	v := validation.New()
	v.Custom(c.Chain.BurnIn < c.Chain.Steps, "chain.burn_in", "must be smaller than chain.steps")
	v.Custom(c.Histogram.Min < c.Histogram.Max, "histogram.min", "must be smaller than histogram.max")
	v.Custom(c.Histogram.Component < c.Sampler.Dimension, "histogram.component", "must index an existing coordinate")
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
