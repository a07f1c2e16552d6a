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

// Package null is a metrics service that drops all metrics.
package null

import (
	"context"
)

// Service is a metrics service that drops all metrics.
type Service struct{}

// New creates a new metrics service.
func New(_ context.Context) *Service {
	return &Service{}
}

// Presenter provides the name of the presenter for the metrics.
func (*Service) Presenter() string {
	return "null"
}
