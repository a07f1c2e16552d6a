// Copyright © 2025 Sealed Bid Labs.
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

package main

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sealedbid/auctiond/services/metrics"
	"go.uber.org/atomic"
)

var (
	releaseMetric *prometheus.GaugeVec
	readyMetric   prometheus.Gauge

	// ready reports service readiness independent of the metrics presenter.
	ready = atomic.NewBool(false)
)

func registerMetrics(ctx context.Context, monitor metrics.Service) error {
	if monitor == nil {
		// No monitor.
		return nil
	}
	if monitor.Presenter() == "prometheus" {
		return registerPrometheusMetrics(ctx)
	}

	return nil
}

func registerPrometheusMetrics(_ context.Context) error {
	releaseMetric = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "auctiond",
		Name:      "release",
		Help:      "The release of this auctiond instance",
	}, []string{"version"})
	if err := prometheus.Register(releaseMetric); err != nil {
		return err
	}

	readyMetric = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "auctiond",
		Name:      "ready",
		Help:      "1 if auctiond is ready to serve requests, otherwise 0",
	})

	return prometheus.Register(readyMetric)
}

func setRelease(_ context.Context, version string) {
	if releaseMetric != nil {
		releaseMetric.WithLabelValues(version).Set(1)
	}
}

func setReady(_ context.Context, state bool) {
	if ready.Swap(state) != state {
		log.Debug().Bool("ready", state).Msg("Readiness changed")
	}
	if readyMetric != nil {
		if state {
			readyMetric.Set(1)
		} else {
			readyMetric.Set(0)
		}
	}
}
