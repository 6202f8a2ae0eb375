package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "coursebuilder"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once            sync.Once
	stageDuration   *prom.HistogramVec
	batchDuration   prom.Histogram
	courseResults   *prom.CounterVec
	documents       *prom.CounterVec
	syncObjects     *prom.CounterVec
	syncDuration    prom.Histogram
	syncConcurrency prom.Gauge
}

// NewPrometheusRecorder constructs and registers the metrics on reg. A nil
// registry gets a private one.
func NewPrometheusRecorder(reg prom.Registerer) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual course build stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.batchDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_duration_seconds",
			Help:      "Duration of a whole conversion batch",
			Buckets:   prom.DefBuckets,
		})
		pr.courseResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "course_results_total",
			Help:      "Course conversions by outcome",
		}, []string{"result"})
		pr.documents = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents emitted, by whether they were written or left unchanged",
		}, []string{"state"})
		pr.syncObjects = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "sync_objects_total",
			Help:      "Listed mirror objects by action",
		}, []string{"result"})
		pr.syncDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_course_duration_seconds",
			Help:      "Duration of mirroring one course",
			Buckets:   prom.DefBuckets,
		})
		pr.syncConcurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "sync_concurrency",
			Help:      "Configured fetch concurrency of the last mirror run",
		})
		reg.MustRegister(pr.stageDuration, pr.batchDuration, pr.courseResults, pr.documents,
			pr.syncObjects, pr.syncDuration, pr.syncConcurrency)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBatchDuration(d time.Duration) {
	if p == nil || p.batchDuration == nil {
		return
	}
	p.batchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCourseResult(result ResultLabel) {
	if p == nil || p.courseResults == nil {
		return
	}
	p.courseResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) AddDocuments(written, unchanged int) {
	if p == nil || p.documents == nil {
		return
	}
	p.documents.WithLabelValues("written").Add(float64(written))
	p.documents.WithLabelValues("unchanged").Add(float64(unchanged))
}

func (p *PrometheusRecorder) IncSyncObject(result ObjectLabel) {
	if p == nil || p.syncObjects == nil {
		return
	}
	p.syncObjects.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveSyncDuration(d time.Duration) {
	if p == nil || p.syncDuration == nil {
		return
	}
	p.syncDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetSyncConcurrency(n int) {
	if p == nil || p.syncConcurrency == nil {
		return
	}
	p.syncConcurrency.Set(float64(n))
}
