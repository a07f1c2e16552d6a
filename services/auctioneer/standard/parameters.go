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
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/sealedbid/auctiond/services/chaintime"
	"github.com/sealedbid/auctiond/services/fhe"
	"github.com/sealedbid/auctiond/services/metrics"
)

type parameters struct {
	logLevel                   zerolog.Level
	monitor                    metrics.Service
	instance                   []byte
	chainTime                  chaintime.Service
	encryptor                  fhe.Service
	decryptionVerifier         fhe.DecryptionVerifier
	auctionsProvider           auctiondb.AuctionsProvider
	auctionsSetter             auctiondb.AuctionsSetter
	bidsProvider               auctiondb.BidsProvider
	bidsSetter                 auctiondb.BidsSetter
	decryptionRequestsProvider auctiondb.DecryptionRequestsProvider
	decryptionRequestsSetter   auctiondb.DecryptionRequestsSetter
	createdHandlers            []auctioneer.CreatedHandler
	bidSubmittedHandlers       []auctioneer.BidSubmittedHandler
	endedHandlers              []auctioneer.EndedHandler
	settledHandlers            []auctioneer.SettledHandler
	cancelledHandlers          []auctioneer.CancelledHandler
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

// WithInstance sets the deployment identity that inbound ciphertexts must
// be bound to.
func WithInstance(instance []byte) Parameter {
	return parameterFunc(func(p *parameters) {
		p.instance = instance
	})
}

// WithChainTime sets the chain time service.
func WithChainTime(chainTime chaintime.Service) Parameter {
	return parameterFunc(func(p *parameters) {
		p.chainTime = chainTime
	})
}

// WithEncryptor sets the homomorphic encryption capability.
func WithEncryptor(encryptor fhe.Service) Parameter {
	return parameterFunc(func(p *parameters) {
		p.encryptor = encryptor
	})
}

// WithDecryptionVerifier sets the verifier for oracle decryption proofs.
func WithDecryptionVerifier(verifier fhe.DecryptionVerifier) Parameter {
	return parameterFunc(func(p *parameters) {
		p.decryptionVerifier = verifier
	})
}

// WithAuctionsProvider sets the auctions provider.
func WithAuctionsProvider(provider auctiondb.AuctionsProvider) Parameter {
	return parameterFunc(func(p *parameters) {
		p.auctionsProvider = provider
	})
}

// WithAuctionsSetter sets the auctions setter.
func WithAuctionsSetter(setter auctiondb.AuctionsSetter) Parameter {
	return parameterFunc(func(p *parameters) {
		p.auctionsSetter = setter
	})
}

// WithBidsProvider sets the bids provider.
func WithBidsProvider(provider auctiondb.BidsProvider) Parameter {
	return parameterFunc(func(p *parameters) {
		p.bidsProvider = provider
	})
}

// WithBidsSetter sets the bids setter.
func WithBidsSetter(setter auctiondb.BidsSetter) Parameter {
	return parameterFunc(func(p *parameters) {
		p.bidsSetter = setter
	})
}

// WithDecryptionRequestsProvider sets the decryption requests provider.
func WithDecryptionRequestsProvider(provider auctiondb.DecryptionRequestsProvider) Parameter {
	return parameterFunc(func(p *parameters) {
		p.decryptionRequestsProvider = provider
	})
}

// WithDecryptionRequestsSetter sets the decryption requests setter.
func WithDecryptionRequestsSetter(setter auctiondb.DecryptionRequestsSetter) Parameter {
	return parameterFunc(func(p *parameters) {
		p.decryptionRequestsSetter = setter
	})
}

// WithCreatedHandlers sets the handlers for created auctions.
func WithCreatedHandlers(handlers []auctioneer.CreatedHandler) Parameter {
	return parameterFunc(func(p *parameters) {
		p.createdHandlers = handlers
	})
}

// WithBidSubmittedHandlers sets the handlers for accepted bids.
func WithBidSubmittedHandlers(handlers []auctioneer.BidSubmittedHandler) Parameter {
	return parameterFunc(func(p *parameters) {
		p.bidSubmittedHandlers = handlers
	})
}

// WithEndedHandlers sets the handlers for ended auctions.
func WithEndedHandlers(handlers []auctioneer.EndedHandler) Parameter {
	return parameterFunc(func(p *parameters) {
		p.endedHandlers = handlers
	})
}

// WithSettledHandlers sets the handlers for settled auctions.
func WithSettledHandlers(handlers []auctioneer.SettledHandler) Parameter {
	return parameterFunc(func(p *parameters) {
		p.settledHandlers = handlers
	})
}

// WithCancelledHandlers sets the handlers for cancelled auctions.
func WithCancelledHandlers(handlers []auctioneer.CancelledHandler) Parameter {
	return parameterFunc(func(p *parameters) {
		p.cancelledHandlers = handlers
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

	if parameters.chainTime == nil {
		return nil, errors.New("no chain time specified")
	}
	if parameters.encryptor == nil {
		return nil, errors.New("no encryptor specified")
	}
	if parameters.decryptionVerifier == nil {
		return nil, errors.New("no decryption verifier specified")
	}
	if parameters.auctionsProvider == nil {
		return nil, errors.New("no auctions provider specified")
	}
	if parameters.auctionsSetter == nil {
		return nil, errors.New("no auctions setter specified")
	}
	if parameters.bidsProvider == nil {
		return nil, errors.New("no bids provider specified")
	}
	if parameters.bidsSetter == nil {
		return nil, errors.New("no bids setter specified")
	}
	if parameters.decryptionRequestsProvider == nil {
		return nil, errors.New("no decryption requests provider specified")
	}
	if parameters.decryptionRequestsSetter == nil {
		return nil, errors.New("no decryption requests setter specified")
	}

	return &parameters, nil
}
