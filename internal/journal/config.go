package journal

import (
	"time"

	"exchangeclient/pkg/exception"

	"github.com/yanun0323/errors"
)

const (
	defaultQueueSize     = 4096
	defaultBatchSize     = 128
	defaultFlushInterval = time.Second
	defaultSaveTimeout   = 5 * time.Second
)

// Config controls the journal writer.
type Config struct {
	QueueSize     int
	BatchSize     int
	FlushInterval time.Duration
	SaveTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.QueueSize == 0 {
		c.QueueSize = defaultQueueSize
	}
	if c.BatchSize == 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.FlushInterval == 0 {
		c.FlushInterval = defaultFlushInterval
	}
	if c.SaveTimeout == 0 {
		c.SaveTimeout = defaultSaveTimeout
	}
	return c
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.QueueSize < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "journal: queue size must be positive")
	}
	if c.BatchSize < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "journal: batch size must be positive")
	}
	if c.FlushInterval < 0 {
		return errors.Wrap(exception.ErrInvalidConfig, "journal: flush interval must be positive")
	}
	return nil
}
