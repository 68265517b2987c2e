package coordinator

import (
	"errors"

	"go.opentelemetry.io/otel/metric"
)

type instruments struct {
	sessionsStarted     metric.Int64Counter
	batchesServed       metric.Int64Counter
	recipesServed       metric.Int64Counter
	generationAttempts  metric.Int64Counter
	generationFailures  metric.Int64Counter
	generatedAccepted   metric.Int64Counter
	generatedReused     metric.Int64Counter
	generatedRejected   metric.Int64Counter
	generatedDuplicates metric.Int64Counter
	alertsPosted        metric.Int64Counter
	generationDuration  metric.Float64Histogram
}

func newInstruments(m metric.Meter) (*instruments, error) {
	var (
		in   instruments
		errs []error
	)
	counter := func(name, desc string) metric.Int64Counter {
		c, err := m.Int64Counter(name, metric.WithDescription(desc))
		errs = append(errs, err)
		return c
	}

	in.sessionsStarted = counter("pagination_sessions_started_total",
		"Total number of pagination sessions started")
	in.batchesServed = counter("pagination_batches_served_total",
		"Total number of batches returned to clients")
	in.recipesServed = counter("pagination_recipes_served_total",
		"Total number of recipes served, by origin")
	in.generationAttempts = counter("generation_attempts_total",
		"Total number of generator calls")
	in.generationFailures = counter("generation_failures_total",
		"Total number of generator calls that returned an error")
	in.generatedAccepted = counter("generated_recipes_accepted_total",
		"Total number of generated recipes persisted to the catalog")
	in.generatedReused = counter("generated_recipes_reused_total",
		"Total number of generated titles resolved to an existing catalog recipe")
	in.generatedRejected = counter("generated_recipes_rejected_total",
		"Total number of generated recipes that failed validation")
	in.generatedDuplicates = counter("generated_recipes_duplicate_total",
		"Total number of generated recipes dropped as duplicates")
	in.alertsPosted = counter("alerts_posted_total",
		"Total number of operational alerts posted")

	h, err := m.Float64Histogram("generation_duration_seconds",
		metric.WithDescription("Duration of individual generator calls in seconds"),
		metric.WithUnit("s"))
	errs = append(errs, err)
	in.generationDuration = h

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &in, nil
}
