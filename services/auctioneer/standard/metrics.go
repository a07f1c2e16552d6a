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

package standard

import (
	"context"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sealedbid/auctiond/services/metrics"
)

var metricsNamespace = "auctiond"

var latestTime prometheus.Gauge
var auctionsCreated prometheus.Counter
var bidsAccepted prometheus.Counter
var auctionsEnded prometheus.Counter
var auctionsSettled prometheus.Counter
var auctionsCancelled prometheus.Counter

func registerMetrics(ctx context.Context, monitor metrics.Service) error {
	if latestTime != nil {
		// Already registered.
		return nil
	}
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
	latestTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Subsystem: "auctioneer",
		Name:      "latest_ts",
		Help:      "Timestamp of last state change",
	})
	if err := prometheus.Register(latestTime); err != nil {
		return errors.Wrap(err, "failed to register latest timestamp")
	}
	auctionsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "auctioneer",
		Name:      "auctions_created_total",
		Help:      "Number of auctions created",
	})
	if err := prometheus.Register(auctionsCreated); err != nil {
		return errors.Wrap(err, "failed to register auctions created")
	}
	bidsAccepted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "auctioneer",
		Name:      "bids_accepted_total",
		Help:      "Number of bids accepted",
	})
	if err := prometheus.Register(bidsAccepted); err != nil {
		return errors.Wrap(err, "failed to register bids accepted")
	}
	auctionsEnded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "auctioneer",
		Name:      "auctions_ended_total",
		Help:      "Number of auctions ended",
	})
	if err := prometheus.Register(auctionsEnded); err != nil {
		return errors.Wrap(err, "failed to register auctions ended")
	}
	auctionsSettled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "auctioneer",
		Name:      "auctions_settled_total",
		Help:      "Number of auctions settled",
	})
	if err := prometheus.Register(auctionsSettled); err != nil {
		return errors.Wrap(err, "failed to register auctions settled")
	}
	auctionsCancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "auctioneer",
		Name:      "auctions_cancelled_total",
		Help:      "Number of auctions cancelled",
	})
	if err := prometheus.Register(auctionsCancelled); err != nil {
		return errors.Wrap(err, "failed to register auctions cancelled")
	}

	return nil
}

func monitorAuctionCreated() {
	if auctionsCreated != nil {
		auctionsCreated.Inc()
		latestTime.SetToCurrentTime()
	}
}

func monitorBidAccepted() {
	if bidsAccepted != nil {
		bidsAccepted.Inc()
		latestTime.SetToCurrentTime()
	}
}

func monitorAuctionEnded() {
	if auctionsEnded != nil {
		auctionsEnded.Inc()
		latestTime.SetToCurrentTime()
	}
}

func monitorAuctionSettled() {
	if auctionsSettled != nil {
		auctionsSettled.Inc()
		latestTime.SetToCurrentTime()
	}
}

func monitorAuctionCancelled() {
	if auctionsCancelled != nil {
		auctionsCancelled.Inc()
		latestTime.SetToCurrentTime()
	}
}
