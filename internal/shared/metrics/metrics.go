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

var durationBuckets = []float64{50, 100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000}

var (
	exportStarted   = newCounterVec("format")
	exportCompleted = newCounterVec("format")
	exportFailed    = newCounterVec("format")
	exportDuration  = newHistogramVec("format", durationBuckets)

	masterSavedTotal   atomic.Uint64
	previewPushedTotal atomic.Uint64
)

// IncExportStarted counts an export attempt for format.
func IncExportStarted(format string) {
	exportStarted.Inc(format)
}

// IncExportCompleted counts a successful export for format.
func IncExportCompleted(format string) {
	exportCompleted.Inc(format)
}

// IncExportFailed counts a failed export for format.
func IncExportFailed(format string) {
	exportFailed.Inc(format)
}

// ObserveExportDuration records how long one export of format took.
func ObserveExportDuration(format string, d time.Duration) {
	ms := float64(d.Microseconds()) / 1000.0
	if ms < 0 {
		ms = 0
	}
	exportDuration.Observe(format, ms)
}

// IncMasterSaved counts backend saves that were not replays.
func IncMasterSaved() {
	masterSavedTotal.Add(1)
}

// IncPreviewPushed counts preview events handed to the hub.
func IncPreviewPushed() {
	previewPushedTotal.Add(1)
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
	exportStarted.write(&buf, "export_started_total", "Total exports started")
	exportCompleted.write(&buf, "export_completed_total", "Total exports completed")
	exportFailed.write(&buf, "export_failed_total", "Total exports failed")
	writeCounter(&buf, "master_saved_total", "Total master resume saves", masterSavedTotal.Load())
	writeCounter(&buf, "preview_pushed_total", "Total preview events published", previewPushedTotal.Load())
	exportDuration.write(&buf, "export_duration_ms", "Export duration in milliseconds")
	return buf.String()
}

type counterVec struct {
	label  string
	mu     sync.Mutex
	values map[string]uint64
}

func newCounterVec(label string) *counterVec {
	return &counterVec{label: label, values: map[string]uint64{}}
}

func (v *counterVec) Inc(value string) {
	v.mu.Lock()
	v.values[value]++
	v.mu.Unlock()
}

func (v *counterVec) Get(value string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.values[value]
}

func (v *counterVec) write(buf *bytes.Buffer, name, help string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	for _, key := range sortedKeys(v.values) {
		fmt.Fprintf(buf, "%s{%s=%q} %d\n", name, v.label, key, v.values[key])
	}
}

type histogramVec struct {
	label   string
	buckets []float64
	mu      sync.Mutex
	series  map[string]*histogram
}

func newHistogramVec(label string, buckets []float64) *histogramVec {
	return &histogramVec{label: label, buckets: buckets, series: map[string]*histogram{}}
}

func (v *histogramVec) Observe(value string, sample float64) {
	v.mu.Lock()
	h, ok := v.series[value]
	if !ok {
		h = newHistogram(v.buckets)
		v.series[value] = h
	}
	v.mu.Unlock()
	h.Observe(sample)
}

func (v *histogramVec) write(buf *bytes.Buffer, name, help string) {
	v.mu.Lock()
	keys := sortedKeys(v.series)
	snaps := make([]histogramSnapshot, len(keys))
	for i, key := range keys {
		snaps[i] = v.series[key].Snapshot()
	}
	v.mu.Unlock()

	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	for i, key := range keys {
		label := fmt.Sprintf("%s=%q", v.label, key)
		snap := snaps[i]
		// counts are already cumulative
		for j, bound := range snap.buckets {
			fmt.Fprintf(buf, "%s_bucket{%s,le=\"%s\"} %d\n", name, label, formatFloat(bound), snap.counts[j])
		}
		fmt.Fprintf(buf, "%s_bucket{%s,le=\"+Inf\"} %d\n", name, label, snap.count)
		fmt.Fprintf(buf, "%s_sum{%s} %s\n", name, label, formatFloat(snap.sum))
		fmt.Fprintf(buf, "%s_count{%s} %d\n", name, label, snap.count)
	}
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
		}
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

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
