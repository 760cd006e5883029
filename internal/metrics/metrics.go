// Package metrics は Web サーバーの Prometheus メトリクスを提供します。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ログイン結果のラベル値
const (
	LoginSucceeded = "success"
	LoginRejected  = "invalid_credentials"
	LoginLocked    = "locked"
	LoginFailed    = "error"
)

// Metrics は Web サーバーのメトリクスです。nil のまま使うと何も記録しません。
type Metrics struct {
	LoginsTotal    *prometheus.CounterVec
	LogoutsTotal   *prometheus.CounterVec
	FormLoadsTotal *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New は専用のレジストリにメトリクスを登録します。
// activeSessions を渡すとメモリ上の訪問者数をゲージとして公開します。
func New(activeSessions func() int) *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Metrics{
		LoginsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rabatino_web_logins_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"}),
		LogoutsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rabatino_web_logouts_total",
			Help: "Total number of logout requests by resulting state",
		}, []string{"state"}),
		FormLoadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rabatino_web_form_loads_total",
			Help: "Total number of form resolutions by form and outcome",
		}, []string{"form", "outcome"}),
		gatherer: reg,
	}
	if activeSessions != nil {
		factory.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "rabatino_web_active_sessions",
			Help: "Current number of visitor sessions held in memory",
		}, func() float64 { return float64(activeSessions()) })
	}
	return m
}

// ObserveLogin はログイン結果を記録します。
func (m *Metrics) ObserveLogin(outcome string) {
	if m == nil {
		return
	}
	m.LoginsTotal.WithLabelValues(outcome).Inc()
}

// ObserveLogout はログアウト後の認証状態を記録します。
func (m *Metrics) ObserveLogout(state string) {
	if m == nil {
		return
	}
	m.LogoutsTotal.WithLabelValues(state).Inc()
}

// ObserveFormLoad はフォーム定義の解決結果を記録します。
func (m *Metrics) ObserveFormLoad(form string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.FormLoadsTotal.WithLabelValues(form, outcome).Inc()
}

// Handler は /metrics 用のハンドラーを返します。
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
