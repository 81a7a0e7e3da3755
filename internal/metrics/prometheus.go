// Package metrics exports upload outcomes to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"zippybox-server/internal/upload"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "zippybox"

// Batch outcomes.
const (
	OutcomeComplete = "complete"
	OutcomePartial  = "partial"
	OutcomeRejected = "rejected"
)

// Prometheus implements upload.Observer.
type Prometheus struct {
	fileDuration *prometheus.HistogramVec
	bytes        prometheus.Counter
	errors       *prometheus.CounterVec
	batches      *prometheus.CounterVec
}

var _ upload.Observer = (*Prometheus)(nil)

// NewPrometheus registers the upload metrics on reg. A nil reg means the
// default registerer. Registering twice on the same registry reuses the
// collectors already there.
func NewPrometheus(namespace string, reg prometheus.Registerer) (*Prometheus, error) {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	fileDuration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "upload",
		Name:      "file_duration_seconds",
		Help:      "Time spent storing and cataloging one file.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}
	bytes, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upload",
		Name:      "bytes_total",
		Help:      "Bytes of successfully stored files.",
	}))
	if err != nil {
		return nil, err
	}
	errs, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upload",
		Name:      "errors_total",
		Help:      "Failed file uploads by error kind.",
	}, []string{"kind"}))
	if err != nil {
		return nil, err
	}
	batches, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "upload",
		Name:      "batches_total",
		Help:      "Folder uploads by outcome.",
	}, []string{"outcome"}))
	if err != nil {
		return nil, err
	}

	return &Prometheus{fileDuration: fileDuration, bytes: bytes, errors: errs, batches: batches}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register upload metric: %w", err)
	}
	return c, nil
}

// RecordFile tracks one file attempt.
func (p *Prometheus) RecordFile(duration time.Duration, size int64, err error) {
	if p == nil {
		return
	}
	if err != nil {
		p.fileDuration.WithLabelValues("error").Observe(duration.Seconds())
		p.errors.WithLabelValues(string(upload.KindOf(err))).Inc()
		return
	}
	p.fileDuration.WithLabelValues("ok").Observe(duration.Seconds())
	p.bytes.Add(float64(size))
}

// RecordBatch tracks one folder upload.
func (p *Prometheus) RecordBatch(total, succeeded int, err error) {
	if p == nil {
		return
	}
	p.batches.WithLabelValues(batchOutcome(err)).Inc()
}

func batchOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeComplete
	case upload.KindOf(err) == upload.KindPartialBatchFailure:
		return OutcomePartial
	default:
		return OutcomeRejected
	}
}
