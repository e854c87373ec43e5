// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pebble"

type metrics struct {
	stallStart time.Time
	writeStall prometheus.Counter

	getLatency   prometheus.Histogram
	batchLatency prometheus.Histogram
	batchOps     prometheus.Histogram

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge
}

// newMetrics registers the write path metrics and gauges that sample the
// pebble metrics of [db] on every scrape.
func newMetrics(db *Database) (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	m := &metrics{
		writeStall: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_stall_seconds",
			Help:      "time spent waiting for disk write",
		}),
		getLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "read_latency_seconds",
			Help:      "time spent waiting for db get",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		batchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_write_seconds",
			Help:      "time spent committing a batch",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		batchOps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_ops",
			Help:      "puts and deletes per committed batch",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compactions",
			Help:      "number of compactions by input level",
		}, []string{"level"}),
		activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_compactions",
			Help:      "number of active compactions",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.writeStall),
		r.Register(m.getLatency),
		r.Register(m.batchLatency),
		r.Register(m.batchOps),
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
		r.Register(db.sampled("tombstone_count", "approximate count of internal tombstones", func(m *pebble.Metrics) uint64 {
			return m.Keys.TombstoneCount
		})),
		r.Register(db.sampled("obsolete_table_size", "number of bytes present in tables no longer referenced by the db", func(m *pebble.Metrics) uint64 {
			return m.Table.ObsoleteSize
		})),
		r.Register(db.sampled("disk_space_usage", "bytes used by the db on disk", func(m *pebble.Metrics) uint64 {
			return m.DiskSpaceUsage()
		})),
	)
	return r, m, errs.Err
}

// sampled reads [f] from the pebble metrics at scrape time. A closed
// database reports zero.
func (db *Database) sampled(name string, help string, f func(*pebble.Metrics) uint64) prometheus.GaugeFunc {
	return prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      name,
		Help:      help,
	}, func() float64 {
		db.l.RLock()
		defer db.l.RUnlock()
		if db.db == nil {
			return 0
		}
		return float64(f(db.db.Metrics()))
	})
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	level := "l1+"
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		level = "l0"
	}
	db.metrics.compactions.WithLabelValues(level).Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.stallStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Add(time.Since(db.metrics.stallStart).Seconds())
}
