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

package postgresql

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

// SetAuction sets an auction.
func (s *Service) SetAuction(ctx context.Context, auction *auctiondb.Auction) error {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "SetAuction")
	defer span.End()

	if auction == nil {
		return errors.New("auction nil")
	}

	tx := s.tx(ctx)
	if tx == nil {
		return ErrNoTransaction
	}

	var winningAmount decimal.NullDecimal
	if auction.WinningAmount != nil {
		winningAmount.Valid = true
		winningAmount.Decimal = decimal.NewFromBigInt(auction.WinningAmount, 0)
	}
	_, err := tx.Exec(ctx, `
INSERT INTO t_auctions(f_id
                      ,f_seller
                      ,f_start_price
                      ,f_start_time
                      ,f_end_time
                      ,f_highest_bid_handle
                      ,f_highest_bidder
                      ,f_bid_count
                      ,f_winning_amount
                      ,f_ended
                      ,f_settled
                      ,f_cancelled
                     )
VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
ON CONFLICT (f_id) DO
UPDATE
SET f_highest_bid_handle = excluded.f_highest_bid_handle
   ,f_highest_bidder = excluded.f_highest_bidder
   ,f_bid_count = excluded.f_bid_count
   ,f_winning_amount = excluded.f_winning_amount
   ,f_ended = excluded.f_ended
   ,f_settled = excluded.f_settled
   ,f_cancelled = excluded.f_cancelled
`,
		auction.ID,
		auction.Seller,
		auction.StartPrice,
		auction.StartTime,
		auction.EndTime,
		auction.HighestBidHandle[:],
		auction.HighestBidder,
		auction.BidCount,
		winningAmount,
		auction.Ended,
		auction.Settled,
		auction.Cancelled,
	)
	if err != nil {
		return err
	}

	return nil
}
