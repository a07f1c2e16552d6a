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
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/sealedbid/auctiond/services/fhe"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SubmitBid records an encrypted bid and folds it into the homomorphic
// running maximum.
func (s *Service) SubmitBid(ctx context.Context,
	auctionID uint64,
	bidder []byte,
	handle fhe.Handle,
	proof []byte,
	collateral decimal.Decimal,
) error {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctioneer.standard").Start(ctx, "SubmitBid", trace.WithAttributes(
		attribute.Int64("auction_id", int64(auctionID)),
	))
	defer span.End()

	if len(bidder) == 0 {
		return errors.New("no bidder specified")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	auction, err := s.auctionsProvider.Auction(ctx, auctionID)
	if err != nil {
		return errors.Wrap(err, "failed to obtain auction")
	}
	if auction == nil {
		return auctioneer.ErrUnknownAuction
	}

	now := s.chainTime.Now()
	if auction.State(now) != auctiondb.StateActive {
		return auctioneer.ErrAuctionNotActive
	}

	existing, err := s.bidsProvider.Bid(ctx, auctionID, bidder)
	if err != nil {
		return errors.Wrap(err, "failed to check for existing bid")
	}
	if existing != nil {
		return auctioneer.ErrAlreadyBid
	}

	if collateral.LessThan(auction.StartPrice) {
		return auctioneer.ErrInsufficientCollateral
	}

	// Import the ciphertext, binding it to this instance, auction and
	// bidder so it cannot be replayed elsewhere.
	amount, err := s.encryptor.ImportExternal(ctx, handle, proof, &fhe.Binding{
		Instance:  s.instance,
		AuctionID: auctionID,
		Bidder:    bidder,
	})
	if err != nil {
		log.Debug().Uint64("auction_id", auctionID).Err(err).Msg("Rejected input proof")
		return auctioneer.ErrInvalidProof
	}

	// Running maximum update.  The comparison and selection stay in
	// ciphertext; the sole cleartext output is whether the new bid leads,
	// which picks the leading address.
	if auction.BidCount == 0 {
		auction.HighestBidHandle = amount
		auction.HighestBidder = bidder
	} else {
		isGreater, err := s.encryptor.CompareGreaterThan(ctx, amount, auction.HighestBidHandle)
		if err != nil {
			return errors.Wrap(err, "failed to compare bids")
		}
		highest, err := s.encryptor.Select(ctx, isGreater, amount, auction.HighestBidHandle)
		if err != nil {
			return errors.Wrap(err, "failed to select highest bid")
		}
		leads, err := s.encryptor.RevealCompare(ctx, isGreater)
		if err != nil {
			return errors.Wrap(err, "failed to reveal comparison")
		}
		auction.HighestBidHandle = highest
		if leads {
			auction.HighestBidder = bidder
		}
	}
	auction.BidCount++

	txCtx, cancel, err := s.bidsSetter.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := s.bidsSetter.SetBid(txCtx, &auctiondb.Bid{
		AuctionID:    auctionID,
		Bidder:       bidder,
		AmountHandle: amount,
		Proof:        proof,
		Collateral:   collateral,
		Timestamp:    now,
	}); err != nil {
		cancel()
		return errors.Wrap(err, "failed to set bid")
	}

	if err := s.auctionsSetter.SetAuction(txCtx, auction); err != nil {
		cancel()
		return errors.Wrap(err, "failed to update auction")
	}

	if err := s.bidsSetter.CommitTx(txCtx); err != nil {
		cancel()
		return errors.Wrap(err, "failed to commit transaction")
	}

	log.Trace().
		Uint64("auction_id", auctionID).
		Uint64("bid_count", auction.BidCount).
		Msg("Bid accepted")
	monitorBidAccepted()

	for _, handler := range s.bidSubmittedHandlers {
		go handler.OnBidSubmitted(ctx, auctionID, bidder, now)
	}

	return nil
}
