// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

type runtimeMetrics struct {
	transactions *prometheus.CounterVec
	invocations  *prometheus.CounterVec
	duration     prometheus.Histogram
	lockWait     prometheus.Histogram
}

func (r *Runtime) initMetrics(promRegistry prometheus.Registerer) {
	promautoFactory := promauto.With(promRegistry)
	r.metrics = &runtimeMetrics{
		transactions: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_transactions_total",
				Help: "executed transactions by result",
			},
			[]string{"result"},
		),
		invocations: promautoFactory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledger_invocations_total",
				Help: "program invocations, including cross-program calls, by program and result",
			},
			[]string{"program", "result"},
		),
		duration: promautoFactory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_transaction_duration_seconds",
				Help:    "transaction execution time",
				Buckets: prometheus.DefBuckets,
			},
		),
		lockWait: promautoFactory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ledger_account_lock_wait_seconds",
				Help:    "time spent waiting for account locks",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
		),
	}
}

func resultLabel(err error) string {
	if err != nil {
		return resultFailure
	}
	return resultSuccess
}

func (m *runtimeMetrics) recordTransaction(err error, elapsed time.Duration) {
	m.transactions.WithLabelValues(resultLabel(err)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *runtimeMetrics) recordInvocation(program string, err error) {
	m.invocations.WithLabelValues(program, resultLabel(err)).Inc()
}
