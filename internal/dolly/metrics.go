package dolly

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Changa-Husky/VrChatDollyController/internal/dolly"

type metrics struct {
	regenerations metric.Int64Counter
	exports       metric.Int64Counter
	rejected      metric.Int64Counter
}

// newMetrics uses the global meter, which is a no-op until an OTel
// provider is installed.
func newMetrics() (*metrics, error) {
	m := otel.Meter(instrumentationName)
	var (
		out metrics
		err error
	)

	out.regenerations, err = m.Int64Counter(
		"dolly.path.regenerations",
		metric.WithDescription("Total path regenerations"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating regenerations counter: %w", err)
	}

	out.exports, err = m.Int64Counter(
		"dolly.path.exports",
		metric.WithDescription("Total paths sent to the renderer"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating exports counter: %w", err)
	}

	out.rejected, err = m.Int64Counter(
		"dolly.capture.rejected",
		metric.WithDescription("Captures ignored because no camera pose was known"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating rejected counter: %w", err)
	}

	return &out, nil
}
