package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	analysisStarted   atomic.Uint64
	analysisCompleted atomic.Uint64
	analysisFailed    atomic.Uint64

	uploadsRejected = newLabeledCounter("reason")
	documentsStored = newLabeledCounter("mime_type")

	analysisDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000})
	uploadSize       = newHistogram([]float64{1 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20, 10 << 20})
)

// Rejection reasons for IncUploadsRejected.
const (
	ReasonTooLarge     = "too_large"
	ReasonInvalidInput = "invalid_input"
)

// IncAnalysisStarted counts an upload entering the pipeline.
func IncAnalysisStarted() { analysisStarted.Add(1) }

// IncAnalysisCompleted counts an upload whose analysis was stored.
func IncAnalysisCompleted() { analysisCompleted.Add(1) }

// IncAnalysisFailed counts a pipeline failure after validation.
func IncAnalysisFailed() { analysisFailed.Add(1) }

// IncUploadsRejected counts an upload refused before any write.
func IncUploadsRejected(reason string) { uploadsRejected.Inc(reason) }

// IncDocumentsStored counts a persisted document by detected mime type.
func IncDocumentsStored(mimeType string) { documentsStored.Inc(mimeType) }

// ObserveAnalysisDurationMs records the upload-to-analysis time.
func ObserveAnalysisDurationMs(value float64) {
	analysisDuration.Observe(clamp(value))
}

// ObserveUploadBytes records the raw size of an accepted upload.
func ObserveUploadBytes(n int) {
	uploadSize.Observe(clamp(float64(n)))
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
	writeCounter(&buf, "analysis_started_total", "Uploads that entered the pipeline", analysisStarted.Load())
	writeCounter(&buf, "analysis_completed_total", "Uploads with a stored analysis", analysisCompleted.Load())
	writeCounter(&buf, "analysis_failed_total", "Uploads that failed after validation", analysisFailed.Load())
	writeLabeled(&buf, "uploads_rejected_total", "Uploads rejected before analysis", uploadsRejected)
	writeLabeled(&buf, "documents_stored_total", "Documents persisted by mime type", documentsStored)
	writeHistogram(&buf, "analysis_duration_ms", "Upload-to-analysis duration in milliseconds", analysisDuration.Snapshot())
	writeHistogram(&buf, "upload_size_bytes", "Raw upload size in bytes", uploadSize.Snapshot())
	return buf.String()
}

// SinceMillis returns the milliseconds elapsed since start.
func SinceMillis(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000.0
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

type labeledCounter struct {
	label  string
	mu     sync.Mutex
	values map[string]uint64
}

func newLabeledCounter(label string) *labeledCounter {
	return &labeledCounter{label: label, values: make(map[string]uint64)}
}

func (l *labeledCounter) Inc(value string) {
	if value == "" {
		value = "unknown"
	}
	l.mu.Lock()
	l.values[value]++
	l.mu.Unlock()
}

func (l *labeledCounter) Get(value string) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.values[value]
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
	return &histogram{buckets: buckets, counts: make([]uint64, len(buckets))}
}

// Observe counts value in the first bucket whose bound holds it.
// writeHistogram accumulates the buckets.
func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	if i := sort.SearchFloat64s(h.buckets, value); i < len(h.buckets) {
		h.counts[i]++
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
}

func writeHeader(buf *bytes.Buffer, name, help, kind string) {
	fmt.Fprintf(buf, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	writeHeader(buf, name, help, "counter")
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeLabeled(buf *bytes.Buffer, name, help string, l *labeledCounter) {
	writeHeader(buf, name, help, "counter")
	l.mu.Lock()
	keys := make([]string, 0, len(l.values))
	for k := range l.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, l.label, k, l.values[k])
	}
	l.mu.Unlock()
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	writeHeader(buf, name, help, "histogram")
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
