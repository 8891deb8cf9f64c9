package union

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exports member lifecycle events as Prometheus collectors.
// A nil *Metrics records nothing.
type Metrics struct {
	created  *prometheus.CounterVec
	rejected *prometheus.CounterVec
	finished *prometheus.CounterVec
	active   *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates and registers the union collectors.
//
// Collectors already registered with reg are reused, so several unions may
// share one registry. On error, collectors registered by this call are
// unregistered again.
func NewMetrics(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	if namespace == "" {
		namespace = "union"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	createdVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "members_created_total",
		Help:      "Total number of members created.",
	}, []string{"union"})
	rejectedVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "members_rejected_total",
		Help:      "Total number of member creations rejected after shutdown.",
	}, []string{"union"})
	finishedVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "members_finished_total",
		Help:      "Total number of terminated members by outcome.",
	}, []string{"union", "outcome"})
	activeVec := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "members_active",
		Help:      "Number of started members that have not terminated.",
	}, []string{"union"})
	durationVec := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "member_duration_seconds",
		Help:      "Member run time in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"union"})

	var (
		err   error
		fresh []prometheus.Collector
	)
	rollback := func(err error) (*Metrics, error) {
		for _, c := range fresh {
			reg.Unregister(c)
		}
		return nil, err
	}

	if createdVec, err = registerCollector(reg, createdVec, &fresh); err != nil {
		return rollback(err)
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec, &fresh); err != nil {
		return rollback(err)
	}
	if finishedVec, err = registerCollector(reg, finishedVec, &fresh); err != nil {
		return rollback(err)
	}
	if activeVec, err = registerCollector(reg, activeVec, &fresh); err != nil {
		return rollback(err)
	}
	if durationVec, err = registerCollector(reg, durationVec, &fresh); err != nil {
		return rollback(err)
	}

	return &Metrics{
		created:  createdVec,
		rejected: rejectedVec,
		finished: finishedVec,
		active:   activeVec,
		duration: durationVec,
	}, nil
}

func (m *Metrics) memberCreated(union string) {
	if m == nil {
		return
	}
	m.created.WithLabelValues(union).Inc()
}

func (m *Metrics) memberRejected(union string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(union).Inc()
}

func (m *Metrics) memberStarted(union string) {
	if m == nil {
		return
	}
	m.active.WithLabelValues(union).Inc()
}

func (m *Metrics) memberFinished(union string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.active.WithLabelValues(union).Dec()
	m.finished.WithLabelValues(union, outcomeLabel(err)).Inc()
	m.duration.WithLabelValues(union).Observe(elapsed.Seconds())
}

func outcomeLabel(err error) string {
	if err != nil {
		return StateFailed.String()
	}
	return StateCompleted.String()
}

// registerCollector registers collector, or returns the equivalent one already
// in reg. Newly registered collectors are appended to fresh.
func registerCollector[T prometheus.Collector](reg prometheus.Registerer, collector T, fresh *[]prometheus.Collector) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		*fresh = append(*fresh, collector)
		return collector, nil
	}

	var alreadyRegistered prometheus.AlreadyRegisteredError
	if errors.As(err, &alreadyRegistered) {
		existing, ok := alreadyRegistered.ExistingCollector.(T)
		if !ok {
			return collector, errors.Errorf("union: collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, errors.Wrap(err, "union: register collector")
}
