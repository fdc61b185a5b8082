package corun

import "go.uber.org/zap"

// Option configures a Manager.
type Option func(*config)

type config struct {
	logger   *zap.Logger
	capacity int
	maxTasks int
}

func defaultConfig() config {
	return config{
		logger: zap.NewNop(),
	}
}

// WithLogger sets the logger used for scheduling events. A nil logger
// keeps the default no-op logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCapacity preallocates room for n tasks.
func WithCapacity(n int) Option {
	if n < 0 {
		panic("corun: capacity cannot be negative")
	}

	return func(c *config) {
		c.capacity = n
	}
}

// WithMaxTasks fixes the registry size: pushes beyond n fail with
// ErrFull. 0 means unlimited.
func WithMaxTasks(n int) Option {
	if n < 0 {
		panic("corun: max tasks cannot be negative")
	}

	return func(c *config) {
		c.maxTasks = n
		if n > c.capacity {
			c.capacity = n
		}
	}
}
