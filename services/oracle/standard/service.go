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
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	zerologger "github.com/rs/zerolog/log"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/sealedbid/auctiond/services/oracle"
	"golang.org/x/sync/semaphore"
)

// Service relays oracle decryption results into the settlement engine.
// Each tick it finds auctions waiting on a decryption, obtains the result
// from the decryptor and submits it for settlement.  An unresponsive
// decryptor simply leaves auctions in their ended state until it recovers.
type Service struct {
	decryptor                  oracle.PublicDecryptor
	decryptionRequestsProvider auctiondb.DecryptionRequestsProvider
	settler                    auctioneer.Settler
	interval                   time.Duration
	activitySem                *semaphore.Weighted
}

// module-wide log.
var log zerolog.Logger

// New creates a new oracle relay service.
func New(ctx context.Context, params ...Parameter) (*Service, error) {
	parameters, err := parseAndCheckParameters(params...)
	if err != nil {
		return nil, errors.Wrap(err, "problem with parameters")
	}

	// Set logging.
	log = zerologger.With().Str("service", "oracle").Str("impl", "standard").Logger().Level(parameters.logLevel)

	if err := registerMetrics(ctx, parameters.monitor); err != nil {
		return nil, errors.Wrap(err, "failed to register metrics")
	}

	s := &Service{
		decryptor:                  parameters.decryptor,
		decryptionRequestsProvider: parameters.decryptionRequestsProvider,
		settler:                    parameters.settler,
		interval:                   parameters.interval,
		activitySem:                semaphore.NewWeighted(1),
	}

	go s.run(ctx)

	return s, nil
}

func (s *Service) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Context done; stopping relay")
			return
		case <-ticker.C:
			s.onTick(ctx)
		}
	}
}

func (s *Service) onTick(ctx context.Context) {
	// Only allow 1 handler to be active.
	acquired := s.activitySem.TryAcquire(1)
	if !acquired {
		log.Debug().Msg("Another handler running")
		return
	}
	defer s.activitySem.Release(1)

	s.relayPendingRequests(ctx)
}

func (s *Service) relayPendingRequests(ctx context.Context) {
	pending := auctiondb.DecryptionRequestPending
	requests, err := s.decryptionRequestsProvider.DecryptionRequests(ctx, &auctiondb.DecryptionRequestFilter{
		Status: &pending,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to obtain pending decryption requests")
		return
	}
	if len(requests) == 0 {
		log.Trace().Msg("No pending decryption requests")
		return
	}

	for _, request := range requests {
		log := log.With().Str("request_id", request.ID).Uint64("auction_id", request.AuctionID).Logger()

		cleartexts, proof, err := s.decryptor.PublicDecrypt(ctx, request.ID, request.Handles)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to obtain decryption")
			monitorRequestFailed()
			continue
		}

		if err := s.settler.SettleAuction(ctx, request.AuctionID, request.Handles, cleartexts, proof); err != nil {
			if errors.Is(err, auctioneer.ErrAuctionNotEndedYet) {
				// Another relay got there first.
				log.Trace().Msg("Request already consumed")
				continue
			}
			log.Warn().Err(err).Msg("Failed to settle auction")
			monitorRequestFailed()
			continue
		}

		log.Trace().Msg("Relayed decryption")
		monitorRequestRelayed()
	}
}
