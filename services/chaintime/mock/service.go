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

package mock

import (
	"time"

	"github.com/sasha-s/go-deadlock"
)

// Service provides a settable clock for tests.
type Service struct {
	mu  deadlock.RWMutex
	now time.Time
}

// New creates a mock chain time service reporting the given time.
func New(now time.Time) *Service {
	return &Service{now: now}
}

// Now provides the current time.
func (s *Service) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.now
}

// SetNow moves the clock to the given time.
func (s *Service) SetNow(now time.Time) {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
}

// Advance moves the clock forwards by the given duration.
func (s *Service) Advance(d time.Duration) {
	s.mu.Lock()
	s.now = s.now.Add(d)
	s.mu.Unlock()
}
