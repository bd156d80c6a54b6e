package obs

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// InvoiceSavesTotal counts invoice save outcomes.
	InvoiceSavesTotal *prometheus.CounterVec
	// InventoryTransactionsTotal counts recorded ledger transactions by type.
	InventoryTransactionsTotal *prometheus.CounterVec
	// BackupImportsTotal counts backup import outcomes.
	BackupImportsTotal *prometheus.CounterVec
	// StockAlertsActive tracks the size of the current derived alert set.
	StockAlertsActive prometheus.Gauge
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		InvoiceSavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_saves_total",
			Help:      "Count of invoice save outcomes.",
		}, []string{"result"})
		InventoryTransactionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inventory_transactions_total",
			Help:      "Count of recorded inventory ledger transactions by type.",
		}, []string{"type"})
		BackupImportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_imports_total",
			Help:      "Count of backup import outcomes.",
		}, []string{"result"})
		StockAlertsActive = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "stock_alerts_active",
			Help:      "Number of alerts in the current derived stock alert set.",
		})

		mustRegisterCollector(reg, InvoiceSavesTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InvoiceSavesTotal = v
			}
		})
		mustRegisterCollector(reg, InventoryTransactionsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				InventoryTransactionsTotal = v
			}
		})
		mustRegisterCollector(reg, BackupImportsTotal, func(existing prometheus.Collector) {
			if v, ok := existing.(*prometheus.CounterVec); ok {
				BackupImportsTotal = v
			}
		})
		mustRegisterCollector(reg, StockAlertsActive, func(existing prometheus.Collector) {
			if v, ok := existing.(prometheus.Gauge); ok {
				StockAlertsActive = v
			}
		})
	})
}

func mustRegisterCollector(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register domain metric: %w", err))
	}
}
