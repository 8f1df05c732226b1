package app

import (
	"time"

	"github.com/zeusync/arena/internal/core/events/bus"
	"github.com/zeusync/arena/internal/core/observability/log"
)

// slowDelivery is the handler time past which a delivery is logged.
const slowDelivery = 5 * time.Millisecond

// logObserver reports failing and slow event deliveries.
type logObserver struct {
	logger log.Log
}

var _ bus.EventBusObserver = (*logObserver)(nil)

func newLogObserver(logger log.Log) *logObserver {
	return &logObserver{logger: logger.With(log.String("component", "events"))}
}

func (o *logObserver) OnPublish(string, bus.Event) {}

func (o *logObserver) OnDelivered(eventType string, handlers int, err error, duration time.Duration) {
	switch {
	case err != nil:
		o.logger.Warn("event delivery failed",
			log.String("event", eventType),
			log.Int("handlers", handlers),
			log.Error(err))
	case duration > slowDelivery:
		o.logger.Debug("slow event delivery",
			log.String("event", eventType),
			log.Int("handlers", handlers),
			log.Duration("duration", duration))
	}
}
