package dispatcher

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Changa-Husky/VrChatDollyController/internal/dispatcher"

type stats struct {
	handledCount metric.Int64Counter
	droppedCount metric.Int64Counter
}

// newStats registers the route counters and an inbox depth gauge fed by
// depths. Instruments come from the global meter provider.
func newStats(depths func(observe func(address string, depth int))) (*stats, error) {
	m := otel.Meter(instrumentationName)

	gauge, err := m.Int64ObservableGauge("dispatcher.inbox.depth",
		metric.WithDescription("Events waiting in a buffered route"))
	if err != nil {
		return nil, fmt.Errorf("inbox depth gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		depths(func(address string, depth int) {
			o.ObserveInt64(gauge, int64(depth), addressAttr(address))
		})
		return nil
	}, gauge)
	if err != nil {
		return nil, fmt.Errorf("inbox depth callback: %w", err)
	}

	var s stats
	if s.handledCount, err = m.Int64Counter("dispatcher.events.handled",
		metric.WithDescription("Events processed by buffered routes")); err != nil {
		return nil, fmt.Errorf("handled counter: %w", err)
	}
	if s.droppedCount, err = m.Int64Counter("dispatcher.events.dropped",
		metric.WithDescription("Events dropped on a full inbox")); err != nil {
		return nil, fmt.Errorf("dropped counter: %w", err)
	}
	return &s, nil
}

func addressAttr(address string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("address", address))
}

func (s *stats) handled(address string) {
	s.handledCount.Add(context.Background(), 1, addressAttr(address))
}

func (s *stats) dropped(address string) {
	s.droppedCount.Add(context.Background(), 1, addressAttr(address))
}
