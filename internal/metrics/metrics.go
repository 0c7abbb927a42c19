package metrics

import (
	"context"
	"sync"

	"github.com/Svg70/crypto-booking/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var (
	// Catalog counters
	EventsCreated  *telemetry.Counter
	EventsUpdated  *telemetry.Counter
	EventsDeclined *telemetry.Counter

	// Settlement counters
	PaymentsSettled *telemetry.Counter
	PaymentsFailed  *telemetry.Counter
	TicketsSold     *telemetry.Counter

	// Error tracking
	ErrorsTotal *telemetry.Counter

	// Histograms
	SettlementDuration *telemetry.Histogram

	// Gauges
	ActiveEvents *telemetry.UpDownCounter

	initOnce sync.Once
	initErr  error
)

// Init initializes all engine metrics
func Init() error {
	initOnce.Do(func() {
		initErr = initMetrics()
	})
	return initErr
}

func initMetrics() error {
	var err error

	EventsCreated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "engine_events_created_total",
		Description: "Total number of events created",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsUpdated, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "engine_events_updated_total",
		Description: "Total number of event updates",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	EventsDeclined, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "engine_events_declined_total",
		Description: "Total number of events declined",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PaymentsSettled, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "engine_payments_settled_total",
		Description: "Total number of settled payments",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	PaymentsFailed, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "engine_payments_failed_total",
		Description: "Total number of failed payments by reason",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	TicketsSold, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "engine_tickets_sold_total",
		Description: "Total number of tickets sold",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	ErrorsTotal, err = telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "engine_errors_total",
		Description: "Total number of errors by type",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	SettlementDuration, err = telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "engine_settlement_duration_seconds",
		Description: "Duration of the settlement path including the fund pull",
		Unit:        "s",
	}, []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})
	if err != nil {
		return err
	}

	ActiveEvents, err = telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "engine_active_events",
		Description: "Current number of bookable events",
		Unit:        "1",
	})
	if err != nil {
		return err
	}

	return nil
}

// RecordEventCreated records an event creation
func RecordEventCreated(ctx context.Context, eventID string) {
	if EventsCreated != nil {
		EventsCreated.Inc(ctx, attribute.String("event_id", eventID))
	}
	if ActiveEvents != nil {
		ActiveEvents.Inc(ctx)
	}
}

// RecordEventUpdated records an event update
func RecordEventUpdated(ctx context.Context, eventID string) {
	if EventsUpdated != nil {
		EventsUpdated.Inc(ctx, attribute.String("event_id", eventID))
	}
}

// RecordEventDeclined records an event decline
func RecordEventDeclined(ctx context.Context, eventID string) {
	if EventsDeclined != nil {
		EventsDeclined.Inc(ctx, attribute.String("event_id", eventID))
	}
	if ActiveEvents != nil {
		ActiveEvents.Dec(ctx)
	}
}

// RecordSettlement records a successful payment settlement
func RecordSettlement(ctx context.Context, eventID string, tickets uint64, durationSeconds float64) {
	if PaymentsSettled != nil {
		PaymentsSettled.Inc(ctx, attribute.String("event_id", eventID))
	}
	if TicketsSold != nil {
		TicketsSold.Add(ctx, int64(tickets), attribute.String("event_id", eventID))
	}
	if SettlementDuration != nil {
		SettlementDuration.Record(ctx, durationSeconds, attribute.String("event_id", eventID))
	}
}

// RecordPaymentFailure records a failed payment by reason
func RecordPaymentFailure(ctx context.Context, eventID, reason string) {
	if PaymentsFailed != nil {
		PaymentsFailed.Inc(ctx,
			attribute.String("event_id", eventID),
			attribute.String("reason", reason),
		)
	}
}

// RecordError records an error by type and operation
func RecordError(ctx context.Context, errorType, operation string) {
	if ErrorsTotal != nil {
		ErrorsTotal.Inc(ctx,
			attribute.String("error_type", errorType),
			attribute.String("operation", operation),
		)
	}
}
