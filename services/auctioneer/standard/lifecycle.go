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
	"bytes"
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/sealedbid/auctiond/services/fhe"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// EndAuction marks an auction past its window as ended and opens its
// decryption request.  Permissionless: anyone may call this once the
// window has closed.
func (s *Service) EndAuction(ctx context.Context, auctionID uint64) error {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctioneer.standard").Start(ctx, "EndAuction", trace.WithAttributes(
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
	if auction.Ended || auction.Settled {
		return auctioneer.ErrAuctionAlreadyEnded
	}
	now := s.chainTime.Now()
	if now.Before(auction.EndTime) {
		return auctioneer.ErrAuctionNotEnded
	}

	auction.Ended = true

	// Open the decryption request for the winning amount.  With no bids the
	// handle is the zero ciphertext from creation, so settlement reveals 0.
	request := &auctiondb.DecryptionRequest{
		ID:          uuid.New().String(),
		AuctionID:   auctionID,
		Handles:     []fhe.Handle{auction.HighestBidHandle},
		Status:      auctiondb.DecryptionRequestPending,
		RequestedAt: now,
	}

	txCtx, cancel, err := s.auctionsSetter.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := s.auctionsSetter.SetAuction(txCtx, auction); err != nil {
		cancel()
		return errors.Wrap(err, "failed to update auction")
	}
	if err := s.decryptionRequestsSetter.SetDecryptionRequest(txCtx, request); err != nil {
		cancel()
		return errors.Wrap(err, "failed to set decryption request")
	}

	if err := s.auctionsSetter.CommitTx(txCtx); err != nil {
		cancel()
		return errors.Wrap(err, "failed to commit transaction")
	}

	log.Trace().
		Uint64("auction_id", auctionID).
		Str("request_id", request.ID).
		Uint64("bid_count", auction.BidCount).
		Msg("Auction ended")
	monitorAuctionEnded()

	for _, handler := range s.endedHandlers {
		go handler.OnAuctionEnded(ctx, auctionID, auction.HighestBidder, now)
	}

	return nil
}

// CancelAuction withdraws an auction before any bid has landed.
func (s *Service) CancelAuction(ctx context.Context, auctionID uint64, caller []byte) error {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctioneer.standard").Start(ctx, "CancelAuction", trace.WithAttributes(
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

	if !bytes.Equal(caller, auction.Seller) {
		return auctioneer.ErrOnlySeller
	}
	if auction.Cancelled {
		return auctioneer.ErrAuctionNotActive
	}
	if auction.Ended || auction.Settled {
		return auctioneer.ErrAuctionAlreadyEnded
	}
	if auction.BidCount > 0 {
		return auctioneer.ErrAuctionNotActive
	}

	auction.Cancelled = true

	txCtx, cancel, err := s.auctionsSetter.BeginTx(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}

	if err := s.auctionsSetter.SetAuction(txCtx, auction); err != nil {
		cancel()
		return errors.Wrap(err, "failed to update auction")
	}

	if err := s.auctionsSetter.CommitTx(txCtx); err != nil {
		cancel()
		return errors.Wrap(err, "failed to commit transaction")
	}

	now := s.chainTime.Now()
	log.Trace().Uint64("auction_id", auctionID).Msg("Auction cancelled")
	monitorAuctionCancelled()

	for _, handler := range s.cancelledHandlers {
		go handler.OnAuctionCancelled(ctx, auctionID, now)
	}

	return nil
}
