package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	monitorEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lease_monitor_expired_events_total",
		Help: "Expired-key events handled by the monitor, by timer kind.",
	}, []string{"timer"})

	monitorEventErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lease_monitor_event_errors_total",
		Help: "Expired-key events whose handling failed.",
	})

	monitorResubscribesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "lease_monitor_resubscribes_total",
		Help: "Times the monitor lost the expiration stream and resubscribed.",
	})
)
