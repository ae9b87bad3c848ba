package mediator

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	labelKind       = "kind"
	labelOutcome    = "outcome"
	labelSubscriber = "subscriber"

	outcomeOK    = "ok"
	outcomeError = "error"
)

type Metrics struct {
	Dispatched         *prometheus.CounterVec
	Latency            *prometheus.HistogramVec
	SubscriberFailures *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Dispatched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_dispatch_total",
				Help: "Queries and commands dispatched",
			},
			[]string{labelKind, labelOutcome},
		),
		Latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "catalog_dispatch_duration_seconds",
				Help: "Handler latency",
			},
			[]string{labelKind},
		),
		SubscriberFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "catalog_subscriber_failures_total",
				Help: "Notification subscribers that returned an error",
			},
			[]string{labelKind, labelSubscriber},
		),
	}

	reg.MustRegister(m.Dispatched, m.Latency, m.SubscriberFailures)
	return m
}

func (m *Metrics) Middleware() Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg Message) (any, error) {
			start := time.Now()
			res, err := next(ctx, msg)

			m.Latency.WithLabelValues(msg.Kind()).Observe(time.Since(start).Seconds())

			outcome := outcomeOK
			if err != nil {
				outcome = outcomeError
			}
			m.Dispatched.WithLabelValues(msg.Kind(), outcome).Inc()

			return res, err
		}
	}
}

// Logging logs failed sends at error level and successful ones at debug.
func Logging(log *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, msg Message) (any, error) {
			start := time.Now()
			res, err := next(ctx, msg)

			if err != nil {
				log.Error("dispatch failed",
					zap.String("kind", msg.Kind()),
					zap.Duration("duration", time.Since(start)),
					zap.Error(err),
				)
				return res, err
			}

			log.Debug("dispatch",
				zap.String("kind", msg.Kind()),
				zap.Duration("duration", time.Since(start)),
			)
			return res, nil
		}
	}
}
