package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusMetrics struct {
	analysesTotal          *prometheus.CounterVec
	analysisDuration       prometheus.Histogram
	stageDuration          *prometheus.HistogramVec
	extractionStrategy     *prometheus.CounterVec
	transactionsExtracted  prometheus.Histogram
	categorizationAssigned *prometheus.CounterVec
	validationFindings     *prometheus.CounterVec
	agentRequests          *prometheus.CounterVec
	agentDuration          *prometheus.HistogramVec
	agentFallbacks         *prometheus.CounterVec
	ocrRequests            *prometheus.CounterVec
	lastTransactionCount   prometheus.Gauge
}

func NewPrometheusMetrics() MetricsRecorderInterface {
	return &PrometheusMetrics{
		analysesTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analyses_total",
				Help: "Total number of statement analyses by final status",
			},
			[]string{"status"},
		),
		analysisDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "analysis_duration_milliseconds",
				Help:    "End to end analysis duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
		),
		stageDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pipeline_stage_duration_milliseconds",
				Help:    "Per stage pipeline duration in milliseconds",
				Buckets: prometheus.ExponentialBuckets(1, 2, 12),
			},
			[]string{"stage"},
		),
		extractionStrategy: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "extraction_strategy_total",
				Help: "Total number of extractions by winning strategy",
			},
			[]string{"strategy"},
		),
		transactionsExtracted: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transactions_extracted",
				Help:    "Number of transactions recovered per statement",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
		categorizationAssigned: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "categorization_assigned_total",
				Help: "Total number of category assignments",
			},
			[]string{"category"},
		),
		validationFindings: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validation_findings_total",
				Help: "Total number of advisory validation findings by check",
			},
			[]string{"check"},
		),
		agentRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_requests_total",
				Help: "Total number of reasoning agent runs by agent and outcome",
			},
			[]string{"agent", "outcome"},
		),
		agentDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agent_duration_milliseconds",
				Help:    "Reasoning agent completion latency in milliseconds",
				Buckets: prometheus.ExponentialBuckets(10, 2, 12),
			},
			[]string{"agent"},
		),
		agentFallbacks: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agent_fallbacks_total",
				Help: "Total number of agent runs served by the deterministic fallback",
			},
			[]string{"agent"},
		),
		ocrRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_extraction_total",
				Help: "Total number of document extractions by method and status",
			},
			[]string{"method", "status"},
		),
		lastTransactionCount: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "last_analysis_transaction_count",
				Help: "Transaction count of the most recent analysis",
			},
		),
	}
}

func (m *PrometheusMetrics) IncrementCounter(name string, tags map[string]string) {
	switch name {
	case "analysis.completed":
		m.analysesTotal.WithLabelValues("completed").Inc()
	case "analysis.degraded":
		m.analysesTotal.WithLabelValues("degraded").Inc()
	case "analysis.failed":
		m.analysesTotal.WithLabelValues("failed").Inc()
	case "extraction.strategy":
		if strategy := tags["strategy"]; strategy != "" {
			m.extractionStrategy.WithLabelValues(strategy).Inc()
		}
	case "categorization.assigned":
		if category := tags["category"]; category != "" {
			m.categorizationAssigned.WithLabelValues(category).Inc()
		}
	case "validation.finding":
		if check := tags["check"]; check != "" {
			m.validationFindings.WithLabelValues(check).Inc()
		}
	case "agent.completed":
		if agent := tags["agent"]; agent != "" {
			m.agentRequests.WithLabelValues(agent, "success").Inc()
		}
	case "agent.fallback":
		if agent := tags["agent"]; agent != "" {
			m.agentRequests.WithLabelValues(agent, "fallback").Inc()
			m.agentFallbacks.WithLabelValues(agent).Inc()
		}
	case "document.extracted":
		m.ocrRequests.WithLabelValues(tags["method"], "success").Inc()
	case "document.extraction_failed":
		m.ocrRequests.WithLabelValues(tags["method"], "failed").Inc()
	}
}

func (m *PrometheusMetrics) RecordProcessingTime(name string, duration time.Duration) {
	switch name {
	case "analysis.pipeline":
		m.analysisDuration.Observe(float64(duration.Milliseconds()))
	case "stage.extraction", "stage.categorization", "stage.metrics", "stage.validation", "stage.agents", "stage.persistence":
		m.stageDuration.WithLabelValues(name[len("stage."):]).Observe(float64(duration.Milliseconds()))
	case "agent.debt", "agent.savings", "agent.budget", "agent.risk":
		m.agentDuration.WithLabelValues(name[len("agent."):]).Observe(float64(duration.Milliseconds()))
	}
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, tags map[string]string) {
	switch name {
	case "analysis.transaction_count":
		m.lastTransactionCount.Set(value)
		m.transactionsExtracted.Observe(value)
	}
}
