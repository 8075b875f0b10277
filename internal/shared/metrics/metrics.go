package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	evaluationCompletedTotal atomic.Uint64
	evaluationFailedTotal    atomic.Uint64

	draftGeneratedTotal        atomic.Uint64
	draftCacheHitTotal         atomic.Uint64
	draftGenerationFailedTotal atomic.Uint64
	draftAppliedTotal          atomic.Uint64

	workerJobReceivedTotal  atomic.Uint64
	workerJobProcessedTotal atomic.Uint64
	workerJobFailedTotal    atomic.Uint64
	workerJobDiscardedTotal atomic.Uint64

	evaluationDuration = newHistogram([]float64{1, 5, 10, 25, 50, 100, 250, 500, 1000})
	generationDuration = newHistogram([]float64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000})
)

// IncEvaluationCompleted increments the completed evaluation counter.
func IncEvaluationCompleted() {
	evaluationCompletedTotal.Add(1)
}

// IncEvaluationFailed increments the failed evaluation counter.
func IncEvaluationFailed() {
	evaluationFailedTotal.Add(1)
}

// ObserveEvaluationDurationMs records an evaluation duration in milliseconds.
func ObserveEvaluationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	evaluationDuration.Observe(value)
}

// IncDraftGenerated increments the generated draft counter.
func IncDraftGenerated() {
	draftGeneratedTotal.Add(1)
}

// IncDraftCacheHit increments the counter for drafts served from the work-key cache.
func IncDraftCacheHit() {
	draftCacheHitTotal.Add(1)
}

// IncDraftGenerationFailed increments the failed generation counter.
func IncDraftGenerationFailed() {
	draftGenerationFailedTotal.Add(1)
}

// IncDraftApplied increments the applied draft counter.
func IncDraftApplied() {
	draftAppliedTotal.Add(1)
}

// IncWorkerJobReceived increments the received worker job counter.
func IncWorkerJobReceived() {
	workerJobReceivedTotal.Add(1)
}

// IncWorkerJobDiscarded increments the counter for unrecoverable jobs
// deleted without processing.
func IncWorkerJobDiscarded() {
	workerJobDiscardedTotal.Add(1)
}

// IncWorkerJobProcessed increments the worker job counter.
func IncWorkerJobProcessed() {
	workerJobProcessedTotal.Add(1)
}

// IncWorkerJobFailed increments the failed worker job counter.
func IncWorkerJobFailed() {
	workerJobFailedTotal.Add(1)
}

// ObserveGenerationDurationMs records an AI generation duration in milliseconds.
func ObserveGenerationDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	generationDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "evaluation_completed_total", "Total readiness evaluations completed", evaluationCompletedTotal.Load())
	writeCounter(&buf, "evaluation_failed_total", "Total readiness evaluations failed", evaluationFailedTotal.Load())
	writeCounter(&buf, "draft_generated_total", "Total fix drafts generated", draftGeneratedTotal.Load())
	writeCounter(&buf, "draft_cache_hit_total", "Total fix drafts served from the work-key cache", draftCacheHitTotal.Load())
	writeCounter(&buf, "draft_generation_failed_total", "Total fix draft generations failed", draftGenerationFailedTotal.Load())
	writeCounter(&buf, "draft_applied_total", "Total fix drafts applied", draftAppliedTotal.Load())
	writeCounter(&buf, "worker_job_received_total", "Total worker jobs received", workerJobReceivedTotal.Load())
	writeCounter(&buf, "worker_job_processed_total", "Total worker jobs processed", workerJobProcessedTotal.Load())
	writeCounter(&buf, "worker_job_failed_total", "Total worker jobs failed", workerJobFailedTotal.Load())
	writeCounter(&buf, "worker_job_discarded_total", "Total unrecoverable worker jobs discarded", workerJobDiscardedTotal.Load())
	writeHistogram(&buf, "evaluation_duration_ms", "Evaluation duration in milliseconds", evaluationDuration.Snapshot())
	writeHistogram(&buf, "generation_duration_ms", "AI generation duration in milliseconds", generationDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
