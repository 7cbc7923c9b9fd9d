package sse

import (
	"log/slog"
	"time"
)

// KeepAliveWriter writes a keep-alive message on an open stream
type KeepAliveWriter interface {
	WriteKeepAlive() error
}

// TickerKeepAlive sends keep-alive comments at a fixed interval until it is
// stopped or a write fails.
type TickerKeepAlive struct {
	interval time.Duration
	done     chan struct{}
}

// NewTickerKeepAlive creates a keep-alive ticker
func NewTickerKeepAlive(interval time.Duration) *TickerKeepAlive {
	return &TickerKeepAlive{
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start begins sending keep-alive pings. The returned channel closes when
// the loop exits, either on Stop or on a failed write.
func (k *TickerKeepAlive) Start(writer KeepAliveWriter, logger *slog.Logger) <-chan struct{} {
	ticker := time.NewTicker(k.interval)
	exited := make(chan struct{})

	go func() {
		defer close(exited)
		defer ticker.Stop()

		for {
			select {
			case <-k.done:
				return
			case <-ticker.C:
				if err := writer.WriteKeepAlive(); err != nil {
					logger.Debug("keep-alive write failed, stopping", "error", err)
					return
				}
			}
		}
	}()

	return exited
}

// Stop terminates the loop; safe to call more than once
func (k *TickerKeepAlive) Stop() {
	select {
	case <-k.done:
	default:
		close(k.done)
	}
}
