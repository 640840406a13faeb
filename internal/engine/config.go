package engine

import "github.com/kjbaird/oscbank/internal/bank"

// Config collects the engine's tunable constants: bank size, sample
// rate, and queue capacities. Option values let callers (the demo
// commands, tests) override individual fields without exposing a
// config file or flag-parsing dependency from this package.
type Config struct {
	BankCapacity     int
	SampleRate       float32
	RequestQueueCap  int
	ResponseQueueCap int
	AsyncCallerCap   int
}

// DefaultConfig returns the reference defaults.
func DefaultConfig() Config {
	return Config{
		BankCapacity:     bank.DefaultCapacity,
		SampleRate:       44100,
		RequestQueueCap:  32,
		ResponseQueueCap: 32,
		AsyncCallerCap:   512,
	}
}

// Option customizes a Config before an Engine is constructed.
type Option func(*Config)

// WithBankCapacity overrides the number of oscillator slots.
func WithBankCapacity(n int) Option {
	return func(c *Config) { c.BankCapacity = n }
}

// WithSampleRate overrides the device sample rate.
func WithSampleRate(hz float32) Option {
	return func(c *Config) { c.SampleRate = hz }
}

// WithQueueCapacities overrides the request and response queue sizes.
func WithQueueCapacities(request, response int) Option {
	return func(c *Config) {
		c.RequestQueueCap = request
		c.ResponseQueueCap = response
	}
}

// WithAsyncCallerCapacity overrides the deferred-work queue size.
func WithAsyncCallerCapacity(n int) Option {
	return func(c *Config) { c.AsyncCallerCap = n }
}
