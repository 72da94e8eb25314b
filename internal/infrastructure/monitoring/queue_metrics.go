package monitoring

import (
	"context"
	"time"
)

type queueDepther interface {
	Depth(ctx context.Context) (int, error)
}

// QueueMetricsCollector keeps the offline queue depth gauge current so a
// dashboard shows a terminal silently accumulating unsynced sales.
type QueueMetricsCollector struct {
	queue queueDepther
}

func NewQueueMetricsCollector(queue queueDepther) *QueueMetricsCollector {
	return &QueueMetricsCollector{
		queue: queue,
	}
}

func (c *QueueMetricsCollector) StartCollecting(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.collect(ctx)
			}
		}
	}()
}

func (c *QueueMetricsCollector) collect(ctx context.Context) {
	depth, err := c.queue.Depth(ctx)
	if err != nil {
		return
	}
	UpdateQueueDepth(depth)
}
