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

var requestsRelayed prometheus.Counter
var requestsFailed prometheus.Counter

func registerMetrics(ctx context.Context, monitor metrics.Service) error {
	if requestsRelayed != nil {
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
	requestsRelayed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "oracle",
		Name:      "requests_relayed_total",
		Help:      "Number of decryption requests relayed to settlement",
	})
	if err := prometheus.Register(requestsRelayed); err != nil {
		return errors.Wrap(err, "failed to register requests relayed")
	}
	requestsFailed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Subsystem: "oracle",
		Name:      "requests_failed_total",
		Help:      "Number of decryption request relay failures",
	})
	if err := prometheus.Register(requestsFailed); err != nil {
		return errors.Wrap(err, "failed to register requests failed")
	}

	return nil
}

func monitorRequestRelayed() {
	if requestsRelayed != nil {
		requestsRelayed.Inc()
	}
}

func monitorRequestFailed() {
	if requestsFailed != nil {
		requestsFailed.Inc()
	}
}
