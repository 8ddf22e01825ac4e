package telegram

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type telegramMetricsCollection struct {
	interactions     metric.Int64Counter
	generateDuration metric.Float64Histogram
}

var metrics telegramMetricsCollection

func init() {
	const name = "postcraft/telegram"
	meter := otel.Meter(name)

	interactions, err := meter.Int64Counter(
		"telegram/interactions",
		metric.WithDescription("Handled chat interactions by trigger and outcome"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create interactions metric: %w", err))
	}

	generateDuration, err := meter.Float64Histogram(
		"telegram/generate_duration_seconds",
		metric.WithDescription("Time spent answering /generate"),
		metric.WithUnit("s"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create generate duration metric: %w", err))
	}

	metrics = telegramMetricsCollection{
		interactions:     interactions,
		generateDuration: generateDuration,
	}
}

func recordInteraction(ctx context.Context, trigger, outcome string) {
	metrics.interactions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("outcome", outcome),
	))
}

func recordGenerateDuration(ctx context.Context, start time.Time, outcome string) {
	metrics.generateDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("outcome", outcome),
	))
}
