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
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/sealedbid/auctiond/services/metrics"
	"github.com/sealedbid/auctiond/services/oracle"
)

type parameters struct {
	logLevel                   zerolog.Level
	monitor                    metrics.Service
	decryptor                  oracle.PublicDecryptor
	decryptionRequestsProvider auctiondb.DecryptionRequestsProvider
	settler                    auctioneer.Settler
	interval                   time.Duration
}

// Parameter is the interface for service parameters.
type Parameter interface {
	apply(p *parameters)
}

type parameterFunc func(*parameters)

func (f parameterFunc) apply(p *parameters) {
	f(p)
}

// WithLogLevel sets the log level for the module.
func WithLogLevel(logLevel zerolog.Level) Parameter {
	return parameterFunc(func(p *parameters) {
		p.logLevel = logLevel
	})
}

// WithMonitor sets the monitor for the module.
func WithMonitor(monitor metrics.Service) Parameter {
	return parameterFunc(func(p *parameters) {
		p.monitor = monitor
	})
}

// WithDecryptor sets the public decryptor.
func WithDecryptor(decryptor oracle.PublicDecryptor) Parameter {
	return parameterFunc(func(p *parameters) {
		p.decryptor = decryptor
	})
}

// WithDecryptionRequestsProvider sets the decryption requests provider.
func WithDecryptionRequestsProvider(provider auctiondb.DecryptionRequestsProvider) Parameter {
	return parameterFunc(func(p *parameters) {
		p.decryptionRequestsProvider = provider
	})
}

// WithSettler sets the settlement engine to relay results into.
func WithSettler(settler auctioneer.Settler) Parameter {
	return parameterFunc(func(p *parameters) {
		p.settler = settler
	})
}

// WithInterval sets the interval between relay attempts.
func WithInterval(interval time.Duration) Parameter {
	return parameterFunc(func(p *parameters) {
		p.interval = interval
	})
}

// parseAndCheckParameters parses and checks parameters to ensure that mandatory parameters are present and correct.
func parseAndCheckParameters(params ...Parameter) (*parameters, error) {
	parameters := parameters{
		logLevel: zerolog.GlobalLevel(),
	}
	for _, p := range params {
		if params != nil {
			p.apply(&parameters)
		}
	}

	if parameters.decryptor == nil {
		return nil, errors.New("no decryptor specified")
	}
	if parameters.decryptionRequestsProvider == nil {
		return nil, errors.New("no decryption requests provider specified")
	}
	if parameters.settler == nil {
		return nil, errors.New("no settler specified")
	}
	if parameters.interval <= 0 {
		return nil, errors.New("no interval specified")
	}

	return &parameters, nil
}
