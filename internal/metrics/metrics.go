// Package metrics exposes chart service counters in Prometheus format.
package metrics

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgnsrekt/gas_chart/internal/chart"
	"github.com/dgnsrekt/gas_chart/internal/dashboard"
)

// Metrics owns its registry so several instances can coexist in tests.
type Metrics struct {
	reg *prometheus.Registry

	renders        *prometheus.CounterVec
	renderDuration prometheus.Summary
	markers        prometheus.Gauge
	selections     *prometheus.CounterVec
	clicks         *prometheus.CounterVec
	refreshes      *prometheus.CounterVec
	sessions       prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{reg: prometheus.NewRegistry()}
	m.renders = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gas_chart",
		Name:      "renders_total",
		Help:      "Full chart render passes by reason",
	}, []string{"reason"})
	m.renderDuration = prometheus.NewSummary(prometheus.SummaryOpts{
		Namespace: "gas_chart",
		Name:      "render_duration_seconds",
		Help:      "Time spent building a chart scene",
	})
	m.markers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gas_chart",
		Name:      "markers_drawn",
		Help:      "Markers drawn by the most recent render",
	})
	m.selections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gas_chart",
		Name:      "selection_changes_total",
		Help:      "Selection transitions by origin",
	}, []string{"origin"})
	m.clicks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gas_chart",
		Name:      "event_clicks_total",
		Help:      "Marker clicks by event category",
	}, []string{"category"})
	m.refreshes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gas_chart",
		Name:      "refreshes_total",
		Help:      "Data refreshes by outcome",
	}, []string{"status"})
	m.sessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gas_chart",
		Name:      "sessions_active",
		Help:      "Open dashboard sessions",
	})
	m.reg.MustRegister(
		m.renders, m.renderDuration, m.markers,
		m.selections, m.clicks, m.refreshes, m.sessions,
	)
	return m
}

// Handler serves the registry for scraping.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveRender is a chart.Config.OnRender hook.
func (m *Metrics) ObserveRender(s chart.RenderStats) {
	m.renders.WithLabelValues(s.Reason).Inc()
	m.renderDuration.Observe(s.Duration.Seconds())
	m.markers.Set(float64(s.Markers))
}

// Observe is a dashboard observer.
func (m *Metrics) Observe(n dashboard.Notification) {
	switch n.Kind {
	case dashboard.KindSelection:
		m.selections.WithLabelValues(string(n.Origin)).Inc()
	case dashboard.KindEventClicked:
		if n.Event != nil {
			m.clicks.WithLabelValues(chart.NormalizeCategory(n.Event.Category)).Inc()
		}
	case dashboard.KindData:
		m.refreshes.WithLabelValues("ok").Inc()
	case dashboard.KindStatus:
		if strings.HasPrefix(n.Status, "Error:") {
			m.refreshes.WithLabelValues("error").Inc()
		}
	}
}

func (m *Metrics) SessionOpened() { m.sessions.Inc() }
func (m *Metrics) SessionClosed() { m.sessions.Dec() }
