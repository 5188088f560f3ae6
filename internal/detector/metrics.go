package detector

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/OCAP2/wallscan/internal/detector"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

type metrics struct {
	ticks         metric.Int64Counter
	pairs         metric.Int64Counter
	detections    metric.Int64Counter
	flushFailures metric.Int64Counter
}

// newMetrics uses the global OTel meter (no-op if not configured).
func newMetrics() (*metrics, error) {
	m := meter()
	var (
		out metrics
		err error
	)

	out.ticks, err = m.Int64Counter(
		"scanner.ticks.scanned",
		metric.WithDescription("Ticks evaluated after warm-up"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	out.pairs, err = m.Int64Counter(
		"scanner.pairs.evaluated",
		metric.WithDescription("Observer/target pairs run through the gate"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating pairs counter: %w", err)
	}

	out.detections, err = m.Int64Counter(
		"scanner.detections",
		metric.WithDescription("Ticks flagged as aiming through an obstruction"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating detections counter: %w", err)
	}

	out.flushFailures, err = m.Int64Counter(
		"scanner.flush.failures",
		metric.WithDescription("Failed writes of the detection set"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating flush failure counter: %w", err)
	}

	return &out, nil
}
