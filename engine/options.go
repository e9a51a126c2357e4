package engine

import "go.uber.org/zap"

// Config holds the tunables for a New Engine, all defaulted by
// NewDefaultConfig and overridable through Option.
type Config struct {
	FillBufferSize  int
	WorkerQueueSize int
	Logger          *zap.Logger
}

// NewDefaultConfig returns the defaults applied before Options run.
func NewDefaultConfig() Config {
	return Config{
		FillBufferSize:  4096,
		WorkerQueueSize: 65536,
		Logger:          zap.NewNop(),
	}
}

// Option customizes an Engine's Config at construction.
type Option func(*Config)

// WithLogger sets the structured logger used for matcher warnings and
// worker task failures.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Config) { c.Logger = logger }
}

// WithFillBuffer sets the capacity of the channel returned by
// Engine's underlying matcher Fills().
func WithFillBuffer(size int) Option {
	return func(c *Config) { c.FillBufferSize = size }
}

// WithWorkerQueueSize sets the capacity of the FIFO match-task queue.
func WithWorkerQueueSize(size int) Option {
	return func(c *Config) { c.WorkerQueueSize = size }
}
