package billy

import "os"

const defaultEventBuffer = 128

// Option configures host creation.
type Option func(*config)

type config struct {
	eventBuffer int
	tempDir     string
}

func newConfig(defaultTemp string, opts []Option) config {
	cfg := config{
		eventBuffer: defaultEventBuffer,
		tempDir:     defaultTemp,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// WithEventBuffer sets the capacity of watcher event channels.
// Events that do not fit are dropped and reported as core.ErrEventOverflow.
func WithEventBuffer(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.eventBuffer = n
		}
	}
}

// WithTempDir sets the directory used by TempFile and TempDir when they are
// called with an empty dir.
func WithTempDir(dir string) Option {
	return func(c *config) {
		c.tempDir = dir
	}
}

func defaultLocalTempDir() string {
	return os.TempDir()
}
