// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	txsProcessed  *prometheus.CounterVec
	txLatency     prometheus.Histogram
	waitSignature prometheus.Histogram
	instructions  *prometheus.CounterVec

	airdrops          prometheus.Counter
	airdroppedAmounts prometheus.Counter
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	m := &metrics{
		txsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "txs_processed",
			Help:      "number of processed transactions by outcome",
		}, []string{"kind"}),
		txLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "runtime",
			Name:      "tx_latency_seconds",
			Help:      "time spent executing and committing a transaction",
			Buckets:   prometheus.DefBuckets,
		}),
		waitSignature: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "runtime",
			Name:      "wait_signatures_seconds",
			Help:      "time spent verifying the signatures of a batch",
			Buckets:   prometheus.DefBuckets,
		}),
		instructions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "instructions",
			Help:      "number of executed instructions by name",
		}, []string{"instruction"}),
		airdrops: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "airdrops",
			Help:      "number of airdrops",
		}),
		airdroppedAmounts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "airdropped_lamports",
			Help:      "lamports minted by airdrops",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.txsProcessed),
		r.Register(m.txLatency),
		r.Register(m.waitSignature),
		r.Register(m.instructions),
		r.Register(m.airdrops),
		r.Register(m.airdroppedAmounts),
	)
	return r, m, errs.Err
}
