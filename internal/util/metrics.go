package util

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SupplyOrdersCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supply_orders_created_total",
		Help: "Total number of supply orders created",
	})

	SupplyOrdersCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supply_orders_cancelled_total",
		Help: "Total number of supply orders cancelled",
	})

	SupplyOrdersDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supply_orders_deleted_total",
		Help: "Total number of supply orders deleted",
	})

	SupplyOrdersCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supply_orders_completed_total",
		Help: "Total number of supply orders that reached completed",
	})

	ReturnsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supply_returns_processed_total",
		Help: "Total number of return events processed",
	})

	AcceptancesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supply_acceptances_processed_total",
		Help: "Total number of acceptance events processed",
	})

	PaymentsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supply_payments_recorded_total",
		Help: "Total number of payments recorded",
	})

	MutationsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "supply_mutations_rejected_total",
		Help: "Total number of rejected mutations",
	}, []string{"reason"})

	OrderTxContentionTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "supply_order_tx_contention_total",
		Help: "Total number of per-order transactions that exhausted the lock retry budget",
	})

	OrderTxLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "supply_order_tx_latency_seconds",
		Help:    "Latency of per-order transactional mutations",
		Buckets: prometheus.DefBuckets,
	})

	StockCreditsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_credits_total",
		Help: "Total number of stock credits applied to inventory",
	})

	StockCreditsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_credits_failed_total",
		Help: "Total number of failed stock credit attempts",
	}, []string{"reason"})

	StockCreditOutboxPending = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stock_credit_outbox_pending",
		Help: "Stock credit outbox rows awaiting delivery at the last sweep",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
