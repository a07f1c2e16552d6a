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
	"math/big"

	"github.com/pkg/errors"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/sealedbid/auctiond/services/fhe"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SettleAuction consumes an oracle decryption of the winning bid amount and
// finalises the auction.  The transition is guarded by the identity of the
// open decryption request, not the auction ID alone, so a stale or replayed
// result can never finalise an auction twice.
func (s *Service) SettleAuction(ctx context.Context,
	auctionID uint64,
	handles []fhe.Handle,
	cleartexts []byte,
	proof []byte,
) error {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctioneer.standard").Start(ctx, "SettleAuction", trace.WithAttributes(
		attribute.Int64("auction_id", int64(auctionID)),
	))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	auction, err := s.auctionsProvider.Auction(ctx, auctionID)
	if err != nil {
		return errors.Wrap(err, "failed to obtain auction")
	}
	if auction == nil {
		return auctioneer.ErrUnknownAuction
	}
	if auction.Cancelled {
		return auctioneer.ErrAuctionNotActive
	}

	// Settlement requires an open request.  A fulfilled request no longer
	// qualifies, which is what makes a second settlement fail.
	pending := auctiondb.DecryptionRequestPending
	requests, err := s.decryptionRequestsProvider.DecryptionRequests(ctx, &auctiondb.DecryptionRequestFilter{
		AuctionIDs: []uint64{auctionID},
		Status:     &pending,
	})
	if err != nil {
		return errors.Wrap(err, "failed to obtain decryption requests")
	}
	if len(requests) == 0 {
		return auctioneer.ErrAuctionNotEndedYet
	}
	request := requests[0]

	if len(handles) != len(request.Handles) {
		return auctioneer.ErrInvalidDecryptionProof
	}
	for i := range handles {
		if handles[i] != request.Handles[i] {
			return auctioneer.ErrInvalidDecryptionProof
		}
	}
	if len(cleartexts) != 8*len(handles) {
		return auctioneer.ErrInvalidDecryptionProof
	}

	verified, err := s.decryptionVerifier.VerifyDecryption(ctx, request.ID, handles, cleartexts, proof)
	if err != nil {
		return errors.Wrap(err, "failed to verify decryption")
	}
	if !verified {
		return auctioneer.ErrInvalidDecryptionProof
	}

	now := s.chainTime.Now()

	// The winning amount is the decryption of the first (and only) handle.
	amount := new(big.Int).SetBytes(cleartexts[:8])

	request.Status = auctiondb.DecryptionRequestFulfilled
	request.Cleartexts = cleartexts
	request.Proof = proof
	request.FulfilledAt = now

	auction.Settled = true
	auction.WinningAmount = amount

	txCtx, cancel, err := s.auctionsSetter.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := s.decryptionRequestsSetter.SetDecryptionRequest(txCtx, request); err != nil {
		cancel()
		return errors.Wrap(err, "failed to update decryption request")
	}
	if err := s.auctionsSetter.SetAuction(txCtx, auction); err != nil {
		cancel()
		return errors.Wrap(err, "failed to update auction")
	}

	if err := s.auctionsSetter.CommitTx(txCtx); err != nil {
		cancel()
		return errors.Wrap(err, "failed to commit transaction")
	}

	log.Trace().
		Uint64("auction_id", auctionID).
		Str("request_id", request.ID).
		Str("winning_amount", amount.String()).
		Msg("Auction settled")
	monitorAuctionSettled()

	for _, handler := range s.settledHandlers {
		go handler.OnAuctionSettled(ctx, auctionID, auction.HighestBidder, amount, now)
	}

	return nil
}
