package metrics

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Maanisha27/MediTriage/pkg/circuitbreaker"
)

var (
	TriageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meditriage_triage_duration_seconds",
			Help:    "Triage ranking duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"weights"},
	)

	TriagePatients = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meditriage_triage_patients",
			Help:    "Number of patients ranked per triage run",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 500},
		},
	)

	RoutingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "meditriage_routing_duration_seconds",
			Help:    "Specialist routing duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"load_balanced"},
	)

	RoutingTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meditriage_routing_total",
			Help: "Total routing requests by outcome",
		},
		[]string{"status"},
	)

	RoutingCandidates = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "meditriage_routing_candidates",
			Help:    "Number of specialists considered per routing request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	DatasetFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meditriage_dataset_fallbacks_total",
			Help: "Times a live store failed and the bundled dataset was used",
		},
		[]string{"source"},
	)

	TriageAgreement = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "meditriage_triage_spearman_rho",
			Help: "Spearman correlation of TOPSIS and PROMETHEE rankings in the last triage run",
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meditriage_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	RetryAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meditriage_retry_attempts_total",
			Help: "Retries of calls to backing services",
		},
		[]string{"operation"},
	)

	BreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "meditriage_circuit_breaker_state",
			Help: "Circuit breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	PatientsIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "meditriage_patients_ingested_total",
			Help: "Patients accepted through intake",
		},
		[]string{"source"},
	)
)

func Init() {
	prometheus.MustRegister(TriageDuration)
	prometheus.MustRegister(TriagePatients)
	prometheus.MustRegister(RoutingDuration)
	prometheus.MustRegister(RoutingTotal)
	prometheus.MustRegister(RoutingCandidates)
	prometheus.MustRegister(DatasetFallbacks)
	prometheus.MustRegister(TriageAgreement)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(RetryAttempts)
	prometheus.MustRegister(BreakerState)
	prometheus.MustRegister(PatientsIngested)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

// Recorder feeds engine callbacks into the collectors above.
type Recorder struct{}

func (Recorder) ObserveTriage(patients int, d time.Duration, dynamic bool) {
	weights := "default"
	if dynamic {
		weights = "dynamic"
	}
	TriageDuration.WithLabelValues(weights).Observe(d.Seconds())
	TriagePatients.Observe(float64(patients))
}

func (Recorder) ObserveRouting(candidates, recommended int, d time.Duration, loadBalanced bool) {
	balanced := "false"
	if loadBalanced {
		balanced = "true"
	}
	RoutingDuration.WithLabelValues(balanced).Observe(d.Seconds())
	RoutingCandidates.Observe(float64(candidates))

	status := "recommended"
	if recommended == 0 {
		status = "empty"
	}
	RoutingTotal.WithLabelValues(status).Inc()
}

func (Recorder) ObserveFallback(source string) {
	DatasetFallbacks.WithLabelValues(source).Inc()
}

func (Recorder) ObserveTokens(model string, prompt, completion int) {
	LLMTokensUsed.WithLabelValues(model, "prompt").Add(float64(prompt))
	LLMTokensUsed.WithLabelValues(model, "completion").Add(float64(completion))
}

// RecordMetric mirrors the agreement score into a gauge. It lets the
// recorder sit in front of the SQLite metric store.
func (Recorder) RecordMetric(name string, value float64, _ map[string]string) error {
	if name == "triage_spearman_rho" {
		TriageAgreement.Set(value)
	}
	return nil
}

func (Recorder) ObserveRetry(name string, _ int, _ error) {
	RetryAttempts.WithLabelValues(name).Inc()
}

func (Recorder) ObserveBreaker(name string, _, to circuitbreaker.State) {
	BreakerState.WithLabelValues(name).Set(float64(to))
}

func (Recorder) ObserveIntake(source string) {
	PatientsIngested.WithLabelValues(source).Inc()
}
