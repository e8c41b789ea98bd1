// metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Job holds the metrics of one run-to-completion command. Each Job owns a
// private registry so nothing leaks into the process-wide default one, and
// the whole set can be written to a node_exporter textfile on exit.
type Job struct {
	registry *prometheus.Registry

	collectionsCreated prometheus.Counter
	collectionsExisted prometheus.Counter
	indexesEnsured     *prometheus.CounterVec
	duration           prometheus.Gauge
	lastSuccess        prometheus.Gauge
	failed             prometheus.Gauge
}

// NewJob registers the job metrics, labelled with the command and database.
func NewJob(command, database string) *Job {
	labels := prometheus.Labels{"command": command, "database": database}
	j := &Job{
		registry: prometheus.NewRegistry(),
		collectionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "marketplace_init_collections_created_total",
			Help:        "Collections created by the initializer.",
			ConstLabels: labels,
		}),
		collectionsExisted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "marketplace_init_collections_existing_total",
			Help:        "Planned collections that already existed.",
			ConstLabels: labels,
		}),
		indexesEnsured: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "marketplace_init_indexes_ensured_total",
			Help:        "Indexes ensured by the initializer, by collection.",
			ConstLabels: labels,
		}, []string{"collection"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "marketplace_init_duration_seconds",
			Help:        "Wall time of the last run.",
			ConstLabels: labels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "marketplace_init_last_success_timestamp_seconds",
			Help:        "Unix time of the last successful run.",
			ConstLabels: labels,
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "marketplace_init_failed",
			Help:        "1 if the last run failed, 0 otherwise.",
			ConstLabels: labels,
		}),
	}
	j.registry.MustRegister(
		j.collectionsCreated,
		j.collectionsExisted,
		j.indexesEnsured,
		j.duration,
		j.lastSuccess,
		j.failed,
	)
	return j
}

// Registry exposes the job's registry, mainly for tests.
func (j *Job) Registry() *prometheus.Registry { return j.registry }

// CollectionsCreated adds n created collections.
func (j *Job) CollectionsCreated(n int) { j.collectionsCreated.Add(float64(n)) }

// CollectionsExisting adds n collections that were already present.
func (j *Job) CollectionsExisting(n int) { j.collectionsExisted.Add(float64(n)) }

// IndexEnsured counts one index on collection.
func (j *Job) IndexEnsured(collection string) { j.indexesEnsured.WithLabelValues(collection).Inc() }

// Finish records the outcome of the run.
func (j *Job) Finish(elapsed time.Duration, err error) {
	j.duration.Set(elapsed.Seconds())
	if err != nil {
		j.failed.Set(1)
		return
	}
	j.failed.Set(0)
	j.lastSuccess.SetToCurrentTime()
}

// WriteTextfile writes the metrics in Prometheus text format. The write goes
// through a temp file and rename, so a scraper never sees a partial file.
// An empty path is a no-op.
func (j *Job) WriteTextfile(path string, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, j.registry); err != nil {
		return err
	}
	if logger != nil {
		logger.Debug("metrics written", zap.String("file", path))
	}
	return nil
}
