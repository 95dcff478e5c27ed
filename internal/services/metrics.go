package services

import (
	"time"

	"github.com/localnerve/plansdb/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcileTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plans",
		Subsystem: "reconcile",
		Name:      "total",
		Help:      "Total number of assignment reconciliations broken down by outcome.",
	}, []string{"outcome"})

	reconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "plans",
		Subsystem: "reconcile",
		Name:      "duration_seconds",
		Help:      "Duration of assignment reconciliations, lock wait included.",
		Buckets:   prometheus.DefBuckets,
	})

	assignmentChanges = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "plans",
		Subsystem: "assignments",
		Name:      "changes_total",
		Help:      "Assigned user rows changed by reconciliation broken down by action.",
	}, []string{"action"})
)

func observeReconcile(result ReconcileResult, err error, elapsed time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = string(types.KindOf(err))
	}
	reconcileTotal.WithLabelValues(outcome).Inc()
	reconcileDuration.Observe(elapsed.Seconds())

	if err == nil {
		assignmentChanges.WithLabelValues("removed").Add(float64(result.Removed))
		assignmentChanges.WithLabelValues("added").Add(float64(result.Added))
	}
}
