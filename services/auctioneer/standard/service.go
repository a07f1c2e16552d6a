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
	"github.com/rs/zerolog"
	zerologger "github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/sealedbid/auctiond/services/chaintime"
	"github.com/sealedbid/auctiond/services/fhe"
)

// Service is the sealed-bid auction engine.
//
// All state-changing calls are applied atomically and totally ordered; the
// mutex is the serialising execution environment the lifecycle guards
// assume.  The only asynchrony is the external round trip to the decryption
// oracle, which arrives as a separate SettleAuction call.
type Service struct {
	mu deadlock.Mutex

	instance           []byte
	chainTime          chaintime.Service
	encryptor          fhe.Service
	decryptionVerifier fhe.DecryptionVerifier

	auctionsProvider           auctiondb.AuctionsProvider
	auctionsSetter             auctiondb.AuctionsSetter
	bidsProvider               auctiondb.BidsProvider
	bidsSetter                 auctiondb.BidsSetter
	decryptionRequestsProvider auctiondb.DecryptionRequestsProvider
	decryptionRequestsSetter   auctiondb.DecryptionRequestsSetter

	createdHandlers      []auctioneer.CreatedHandler
	bidSubmittedHandlers []auctioneer.BidSubmittedHandler
	endedHandlers        []auctioneer.EndedHandler
	settledHandlers      []auctioneer.SettledHandler
	cancelledHandlers    []auctioneer.CancelledHandler
}

// module-wide log.
var log zerolog.Logger

// New creates a new auction engine.
func New(ctx context.Context, params ...Parameter) (*Service, error) {
	parameters, err := parseAndCheckParameters(params...)
	if err != nil {
		return nil, errors.Wrap(err, "problem with parameters")
	}

	// Set logging.
	log = zerologger.With().Str("service", "auctioneer").Str("impl", "standard").Logger().Level(parameters.logLevel)

	if err := registerMetrics(ctx, parameters.monitor); err != nil {
		return nil, errors.Wrap(err, "failed to register metrics")
	}

	s := &Service{
		instance:                   parameters.instance,
		chainTime:                  parameters.chainTime,
		encryptor:                  parameters.encryptor,
		decryptionVerifier:         parameters.decryptionVerifier,
		auctionsProvider:           parameters.auctionsProvider,
		auctionsSetter:             parameters.auctionsSetter,
		bidsProvider:               parameters.bidsProvider,
		bidsSetter:                 parameters.bidsSetter,
		decryptionRequestsProvider: parameters.decryptionRequestsProvider,
		decryptionRequestsSetter:   parameters.decryptionRequestsSetter,
		createdHandlers:            parameters.createdHandlers,
		bidSubmittedHandlers:       parameters.bidSubmittedHandlers,
		endedHandlers:              parameters.endedHandlers,
		settledHandlers:            parameters.settledHandlers,
		cancelledHandlers:          parameters.cancelledHandlers,
	}

	return s, nil
}
