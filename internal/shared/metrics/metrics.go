// Package metrics keeps process-wide counters and a delivery latency
// histogram, exposed in the Prometheus text format at /metrics.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

type counter struct {
	name, help string
	v          atomic.Uint64
}

// labeledCounter is a counter family split by a single label.
type labeledCounter struct {
	name, help, label string

	mu     sync.Mutex
	values map[string]uint64
}

func (l *labeledCounter) inc(value string) {
	if value == "" {
		value = "unknown"
	}
	l.mu.Lock()
	l.values[value]++
	l.mu.Unlock()
}

func (l *labeledCounter) snapshot() map[string]uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]uint64, len(l.values))
	for k, v := range l.values {
		out[k] = v
	}
	return out
}

func newCounter(name, help string) *counter {
	return &counter{name: name, help: help}
}

func newLabeled(name, help, label string) *labeledCounter {
	return &labeledCounter{name: name, help: help, label: label, values: map[string]uint64{}}
}

var (
	applicationsSubmitted = newCounter("applications_submitted_total", "Total applications submitted")
	statusChanges         = newLabeled("application_status_changes_total", "Application status changes by new status", "status")
	companyReviews        = newLabeled("company_reviews_total", "Company approval decisions by outcome", "status")
	notificationsSent     = newCounter("notifications_sent_total", "Total notifications delivered")
	notificationsFailed   = newCounter("notifications_failed_total", "Total notifications that failed delivery")
	jobsExpired           = newCounter("jobs_expired_total", "Total jobs closed after their deadline")
	queueReceived         = newCounter("notify_jobs_received_total", "Notification queue messages received")
	queueDropped          = newCounter("notify_jobs_dropped_total", "Notification queue messages dropped as unrecoverable")

	notificationDuration = newHistogram([]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000})

	counters = []*counter{applicationsSubmitted, notificationsSent, notificationsFailed, jobsExpired, queueReceived, queueDropped}
	families = []*labeledCounter{statusChanges, companyReviews}
)

func IncApplicationsSubmitted() { applicationsSubmitted.v.Add(1) }

// IncStatusChanges counts a recorded transition into status.
func IncStatusChanges(status string) { statusChanges.inc(status) }

// IncCompanyReviews counts an admin decision moving a company to status.
func IncCompanyReviews(status string) { companyReviews.inc(status) }

func IncNotificationsSent()   { notificationsSent.v.Add(1) }
func IncNotificationsFailed() { notificationsFailed.v.Add(1) }

// AddJobsExpired adds the number of jobs closed by one expiry sweep.
func AddJobsExpired(n int) {
	if n > 0 {
		jobsExpired.v.Add(uint64(n))
	}
}

func IncNotifyJobsReceived() { queueReceived.v.Add(1) }

// IncNotifyJobsDropped counts queue messages deleted without delivery.
func IncNotifyJobsDropped() { queueDropped.v.Add(1) }

// ObserveNotificationDurationMs records how long one delivery took.
func ObserveNotificationDurationMs(ms float64) {
	notificationDuration.Observe(max(ms, 0))
}

func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render writes every metric in exposition order.
func Render() string {
	var b strings.Builder
	for _, c := range counters {
		header(&b, c.name, c.help, "counter")
		fmt.Fprintf(&b, "%s %d\n", c.name, c.v.Load())
	}
	for _, f := range families {
		writeFamily(&b, f)
	}
	writeHistogram(&b, "notification_duration_ms", "Notification delivery duration in milliseconds", notificationDuration.Snapshot())
	return b.String()
}

func header(w io.Writer, name, help, kind string) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, help, name, kind)
}

func writeFamily(w io.Writer, f *labeledCounter) {
	header(w, f.name, f.help, "counter")
	values := f.snapshot()
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s{%s=%q} %d\n", f.name, f.label, k, values[k])
	}
}

type histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []uint64
	sum    float64
	total  uint64
}

type histogramSnapshot struct {
	bounds []float64
	counts []uint64
	sum    float64
	total  uint64
}

func newHistogram(bounds []float64) *histogram {
	return &histogram{bounds: bounds, counts: make([]uint64, len(bounds))}
}

// Observe adds v to the first bucket whose upper bound covers it.
func (h *histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.total++
	h.sum += v
	if i := sort.SearchFloat64s(h.bounds, v); i < len(h.bounds) {
		h.counts[i]++
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return histogramSnapshot{
		bounds: append([]float64(nil), h.bounds...),
		counts: append([]uint64(nil), h.counts...),
		sum:    h.sum,
		total:  h.total,
	}
}

func writeHistogram(w io.Writer, name, help string, s histogramSnapshot) {
	header(w, name, help, "histogram")
	var running uint64
	for i, bound := range s.bounds {
		running += s.counts[i]
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", name, formatFloat(bound), running)
	}
	fmt.Fprintf(w, "%s_bucket{le=\"+Inf\"} %d\n", name, s.total)
	fmt.Fprintf(w, "%s_sum %s\n%s_count %d\n", name, formatFloat(s.sum), name, s.total)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
