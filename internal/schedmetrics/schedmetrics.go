// Package schedmetrics exports a job.Scheduler's Metrics snapshot as
// Prometheus gauges and counters, the real-instrumentation analogue of
// Guti2010-Proyecto-SO's Pool.metrics() map
// (internal/sched/sched.go), grounded on
// therealutkarshpriyadarshi-log/internal/metrics.Collector's
// registry-per-component pattern.
package schedmetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nova-engine/jobrt/internal/job"
)

const namespace = "jobrt"
const subsystem = "scheduler"

// Exporter implements prometheus.Collector over a job.Scheduler's Metrics
// snapshot, read fresh on every scrape rather than mirrored into separate
// gauge/counter state.
type Exporter struct {
	sched *job.Scheduler

	readyQueued   *prometheus.Desc
	readyCapacity *prometheus.Desc
	waitParked    *prometheus.Desc
	waitCapacity  *prometheus.Desc
	workersBusy   *prometheus.Desc
	workersTotal  *prometheus.Desc
	submitted     *prometheus.Desc
	completed     *prometheus.Desc
	leaked        *prometheus.Desc
	rejected      *prometheus.Desc
}

// NewExporter builds an Exporter over sched. It must be registered with a
// *prometheus.Registry (or the default registerer) before it is scraped.
func NewExporter(sched *job.Scheduler) *Exporter {
	desc := func(name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, nil)
	}
	return &Exporter{
		sched:         sched,
		readyQueued:   desc("ready_queued", "Jobs currently in the ready queue"),
		readyCapacity: desc("ready_capacity", "Fixed capacity of the ready queue"),
		waitParked:    desc("wait_parked", "Jobs currently parked in the wait list"),
		waitCapacity:  desc("wait_capacity", "Fixed capacity of the wait list"),
		workersBusy:   desc("workers_busy", "Workers currently resuming a job"),
		workersTotal:  desc("workers_total", "Configured worker thread count"),
		submitted:     desc("jobs_submitted_total", "Total jobs submitted"),
		completed:     desc("jobs_completed_total", "Total jobs that yielded Done"),
		leaked:        desc("jobs_leaked_total", "Total jobs that returned without Done"),
		rejected:      desc("jobs_rejected_total", "Total jobs rejected because the ready queue was full"),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	ch <- e.readyQueued
	ch <- e.readyCapacity
	ch <- e.waitParked
	ch <- e.waitCapacity
	ch <- e.workersBusy
	ch <- e.workersTotal
	ch <- e.submitted
	ch <- e.completed
	ch <- e.leaked
	ch <- e.rejected
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	m := e.sched.Metrics()
	ch <- prometheus.MustNewConstMetric(e.readyQueued, prometheus.GaugeValue, float64(m.ReadyQueued))
	ch <- prometheus.MustNewConstMetric(e.readyCapacity, prometheus.GaugeValue, float64(m.ReadyCapacity))
	ch <- prometheus.MustNewConstMetric(e.waitParked, prometheus.GaugeValue, float64(m.WaitParked))
	ch <- prometheus.MustNewConstMetric(e.waitCapacity, prometheus.GaugeValue, float64(m.WaitCapacity))
	ch <- prometheus.MustNewConstMetric(e.workersBusy, prometheus.GaugeValue, float64(m.WorkersBusy))
	ch <- prometheus.MustNewConstMetric(e.workersTotal, prometheus.GaugeValue, float64(m.WorkersTotal))
	ch <- prometheus.MustNewConstMetric(e.submitted, prometheus.CounterValue, float64(m.Submitted))
	ch <- prometheus.MustNewConstMetric(e.completed, prometheus.CounterValue, float64(m.Completed))
	ch <- prometheus.MustNewConstMetric(e.leaked, prometheus.CounterValue, float64(m.Leaked))
	ch <- prometheus.MustNewConstMetric(e.rejected, prometheus.CounterValue, float64(m.Rejected))
}

// NewRegistry builds a dedicated registry with sched's exporter registered,
// mirroring the teacher metrics package's per-collector registry instead of
// using prometheus's global default registerer.
func NewRegistry(sched *job.Scheduler) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := reg.Register(NewExporter(sched)); err != nil {
		return nil, err
	}
	return reg, nil
}

// Handler returns an http.Handler serving reg's metrics in the Prometheus
// exposition format, for mounting on the engine's optional metrics
// listener (engineconfig.MetricsConfig.Address).
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
