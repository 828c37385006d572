package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BeaconMetrics 定义链状态监控指标
// nil 指针上的方法都是空操作，测试里可以直接传 nil
type BeaconMetrics struct {
	NodeHeight         *prometheus.GaugeVec
	NodeQueryFailures  *prometheus.CounterVec
	HeightSkew         prometheus.Gauge
	ForkDetected       prometheus.Gauge
	BestHeight         prometheus.Gauge
	AlertsSent         *prometheus.CounterVec
	AlertsSuppressed   *prometheus.CounterVec
	DeliveryFailures   prometheus.Counter
	CycleDuration      prometheus.Histogram
	CyclesSkippedTotal prometheus.Counter
}

// NewBeaconMetrics 在给定 Registerer 上注册指标
func NewBeaconMetrics(reg prometheus.Registerer) *BeaconMetrics {
	f := promauto.With(reg)
	return &BeaconMetrics{
		NodeHeight: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "beacon_node_height",
			Help: "Last chain height reported by each node",
		}, []string{"node"}),
		NodeQueryFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_node_query_failures_total",
			Help: "Number of failed node queries",
		}, []string{"node"}),
		HeightSkew: f.NewGauge(prometheus.GaugeOpts{
			Name: "beacon_height_skew",
			Help: "Difference between highest and lowest reported height",
		}),
		ForkDetected: f.NewGauge(prometheus.GaugeOpts{
			Name: "beacon_fork_detected",
			Help: "1 when nodes disagree on the hash at a shared height",
		}),
		BestHeight: f.NewGauge(prometheus.GaugeOpts{
			Name: "beacon_best_height",
			Help: "Highest chain height ever observed",
		}),
		AlertsSent: f.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_alerts_sent_total",
			Help: "Number of alerts handed to the notifier",
		}, []string{"subject"}),
		AlertsSuppressed: f.NewCounterVec(prometheus.CounterOpts{
			Name: "beacon_alerts_suppressed_total",
			Help: "Number of alerts dropped as duplicates",
		}, []string{"subject"}),
		DeliveryFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "beacon_delivery_failures_total",
			Help: "Number of failed per-recipient deliveries",
		}),
		CycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "beacon_cycle_duration_seconds",
			Help:    "Duration of detection cycles",
			Buckets: []float64{0.1, 0.3, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0},
		}),
		CyclesSkippedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "beacon_cycles_skipped_total",
			Help: "Cycles skipped because no node could be synced",
		}),
	}
}

func (m *BeaconMetrics) ObserveNode(node string, height uint64) {
	if m == nil {
		return
	}
	m.NodeHeight.WithLabelValues(node).Set(float64(height))
}

func (m *BeaconMetrics) NodeFailed(node string) {
	if m == nil {
		return
	}
	m.NodeQueryFailures.WithLabelValues(node).Inc()
}

func (m *BeaconMetrics) ObserveAnalysis(skew uint64, fork bool, best uint64) {
	if m == nil {
		return
	}
	m.HeightSkew.Set(float64(skew))
	if fork {
		m.ForkDetected.Set(1)
	} else {
		m.ForkDetected.Set(0)
	}
	m.BestHeight.Set(float64(best))
}

func (m *BeaconMetrics) AlertSent(subject string) {
	if m == nil {
		return
	}
	m.AlertsSent.WithLabelValues(subject).Inc()
}

func (m *BeaconMetrics) AlertSuppressed(subject string) {
	if m == nil {
		return
	}
	m.AlertsSuppressed.WithLabelValues(subject).Inc()
}

func (m *BeaconMetrics) DeliveryFailed() {
	if m == nil {
		return
	}
	m.DeliveryFailures.Inc()
}

func (m *BeaconMetrics) CycleDone(d time.Duration) {
	if m == nil {
		return
	}
	m.CycleDuration.Observe(d.Seconds())
}

func (m *BeaconMetrics) CycleSkipped() {
	if m == nil {
		return
	}
	m.CyclesSkippedTotal.Inc()
}
