package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	// Ledger operations
	OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operations by outcome",
		},
		[]string{"op", "status"}, // deposit|withdraw|transfer x ok|err
	)

	// Store size, refreshed in the background
	AccountsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "accounts_total",
			Help: "Number of accounts in the store",
		},
	)
)

// /metrics endpoint handler
var Handler = promhttp.Handler

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(OperationsTotal)
	prometheus.MustRegister(AccountsTotal)
}
