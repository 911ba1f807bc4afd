// Package metricsx exposes the gate's Prometheus counters.
package metricsx

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is what the pipeline stages report to.
type Recorder interface {
	AuthDecision(stage, outcome string)
	UserSync(policy, result string)
	ErrorResponse(code string, status string)
	Compensation(result string)
}

// Auth decision stages and outcomes
const (
	StageAuthenticate = "authenticate"
	StageRole         = "role"
	StageRecency      = "recency"

	OutcomeAllowed = "allowed"
	OutcomeDenied  = "denied"
	OutcomeFailed  = "failed"
)

// Collector implements Recorder on Prometheus counters.
type Collector struct {
	authDecisions  *prometheus.CounterVec
	userSync       *prometheus.CounterVec
	errorResponses *prometheus.CounterVec
	compensations  *prometheus.CounterVec
}

// NewCollector creates the counters and registers them on reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_auth_decisions_total",
			Help: "Authentication and authorization decisions by stage and outcome.",
		}, []string{"stage", "outcome"}),
		userSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_user_sync_total",
			Help: "Local user record resolutions by sync policy and result.",
		}, []string{"policy", "result"}),
		errorResponses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_error_responses_total",
			Help: "Error responses rendered, by error code and status label.",
		}, []string{"code", "status"}),
		compensations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gatekeeper_profile_compensations_total",
			Help: "Provider profile rollbacks after a failed local update.",
		}, []string{"result"}),
	}

	reg.MustRegister(c.authDecisions, c.userSync, c.errorResponses, c.compensations)
	return c
}

func (c *Collector) AuthDecision(stage, outcome string) {
	c.authDecisions.WithLabelValues(stage, outcome).Inc()
}

func (c *Collector) UserSync(policy, result string) {
	c.userSync.WithLabelValues(policy, result).Inc()
}

func (c *Collector) ErrorResponse(code, status string) {
	c.errorResponses.WithLabelValues(code, status).Inc()
}

func (c *Collector) Compensation(result string) {
	c.compensations.WithLabelValues(result).Inc()
}

// Handler serves the metrics gathered by g
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Nop discards every observation
type Nop struct{}

func (Nop) AuthDecision(string, string)  {}
func (Nop) UserSync(string, string)      {}
func (Nop) ErrorResponse(string, string) {}
func (Nop) Compensation(string)          {}
