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
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

// CreateAuction creates an auction opening immediately and running for the
// given duration, returning its sequential ID.
func (s *Service) CreateAuction(ctx context.Context,
	seller []byte,
	startPrice decimal.Decimal,
	duration time.Duration,
) (
	uint64,
	error,
) {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctioneer.standard").Start(ctx, "CreateAuction")
	defer span.End()

	if len(seller) == 0 {
		return 0, errors.New("no seller specified")
	}
	if startPrice.Sign() <= 0 {
		return 0, auctioneer.ErrInvalidPrice
	}
	if duration <= 0 || duration > auctioneer.MaxAuctionDuration {
		return 0, auctioneer.ErrInvalidTime
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.chainTime.Now()

	// The running maximum starts from a defined encryption of zero so that
	// ending a bidless auction still has a handle to decrypt.
	zero, err := s.encryptor.ZeroCiphertext(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to obtain zero ciphertext")
	}

	txCtx, cancel, err := s.auctionsSetter.BeginTx(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to begin transaction")
	}

	auctionID, err := s.auctionsSetter.NextAuctionID(txCtx)
	if err != nil {
		cancel()
		return 0, errors.Wrap(err, "failed to obtain next auction ID")
	}

	auction := &auctiondb.Auction{
		ID:               auctionID,
		Seller:           seller,
		StartPrice:       startPrice,
		StartTime:        now,
		EndTime:          now.Add(duration),
		HighestBidHandle: zero,
	}
	if err := s.auctionsSetter.SetAuction(txCtx, auction); err != nil {
		cancel()
		return 0, errors.Wrap(err, "failed to set auction")
	}

	if err := s.auctionsSetter.CommitTx(txCtx); err != nil {
		cancel()
		return 0, errors.Wrap(err, "failed to commit transaction")
	}

	log.Trace().
		Uint64("auction_id", auctionID).
		Str("start_price", startPrice.String()).
		Time("end_time", auction.EndTime).
		Msg("Auction created")
	monitorAuctionCreated()

	for _, handler := range s.createdHandlers {
		go handler.OnAuctionCreated(ctx, auctionID, seller, startPrice, auction.StartTime, auction.EndTime)
	}

	return auctionID, nil
}
