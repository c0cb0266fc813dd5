// Package metrics exposes Prometheus collectors for the tokenization pipeline.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "lyric_tokenizer"

	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Metrics reports pipeline activity. A nil *Metrics is valid and records nothing.
type Metrics struct {
	chunks          *prometheus.CounterVec
	tokens          prometheus.Counter
	documents       prometheus.Counter
	chunkChars      prometheus.Histogram
	analyzeDuration prometheus.Histogram
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// Default returns the metrics registered with the global Prometheus registry.
// Collectors are created once so repeated pipelines don't panic on registration.
func Default() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs Metrics on reg. Collectors already registered
// under the same name are reused; any other registration error panics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		chunks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chunks_total",
				Help:      "Chunks handed to the analyzer, by outcome.",
			},
			[]string{"status"},
		),
		tokens: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tokens_total",
			Help:      "Tokens emitted after filtering.",
		}),
		documents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Texts run through the pipeline.",
		}),
		chunkChars: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunk_chars",
			Help:      "Chunk length in characters.",
			Buckets:   []float64{50, 100, 250, 500, 1000, 2000, 3000, 4000},
		}),
		analyzeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analyze_duration_seconds",
			Help:      "Time spent in the analyzer per call.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	m.chunks = register(reg, m.chunks)
	m.tokens = register(reg, m.tokens)
	m.documents = register(reg, m.documents)
	m.chunkChars = register(reg, m.chunkChars)
	m.analyzeDuration = register(reg, m.analyzeDuration)
	return m
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// ObserveChunk records one analyzed chunk.
func (m *Metrics) ObserveChunk(chars int, failed bool) {
	if m == nil {
		return
	}
	status := StatusOK
	if failed {
		status = StatusFailed
	}
	m.chunks.WithLabelValues(status).Inc()
	m.chunkChars.Observe(float64(chars))
}

// ObserveAnalyze records the duration of one analyzer call.
func (m *Metrics) ObserveAnalyze(d time.Duration) {
	if m == nil {
		return
	}
	m.analyzeDuration.Observe(d.Seconds())
}

// AddTokens counts emitted tokens.
func (m *Metrics) AddTokens(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tokens.Add(float64(n))
}

// IncDocuments counts one pipeline run.
func (m *Metrics) IncDocuments() {
	if m == nil {
		return
	}
	m.documents.Inc()
}
