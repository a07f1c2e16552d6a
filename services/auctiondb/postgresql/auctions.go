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
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/pkg/errors"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/fhe"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
)

// Auction returns the auction with the given ID, or nil if it does not exist.
func (s *Service) Auction(ctx context.Context, id uint64) (*auctiondb.Auction, error) {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "Auction")
	defer span.End()

	var err error

	tx := s.tx(ctx)
	if tx == nil {
		ctx, err = s.BeginROTx(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to begin transaction")
		}
		tx = s.tx(ctx)
		defer s.CommitROTx(ctx)
	}

	auction := &auctiondb.Auction{}
	var highestBidHandle []byte
	var winningAmount decimal.NullDecimal
	err = tx.QueryRow(ctx, `
SELECT f_id
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
FROM t_auctions
WHERE f_id = $1`, id).Scan(
		&auction.ID,
		&auction.Seller,
		&auction.StartPrice,
		&auction.StartTime,
		&auction.EndTime,
		&highestBidHandle,
		&auction.HighestBidder,
		&auction.BidCount,
		&winningAmount,
		&auction.Ended,
		&auction.Settled,
		&auction.Cancelled,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			//nolint:nilnil
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to scan row")
	}
	copy(auction.HighestBidHandle[:], highestBidHandle)
	if winningAmount.Valid {
		auction.WinningAmount = winningAmount.Decimal.BigInt()
	}

	return auction, nil
}

// Auctions returns auctions matching the supplied filter.
func (s *Service) Auctions(ctx context.Context, filter *auctiondb.AuctionFilter) ([]*auctiondb.Auction, error) {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "Auctions")
	defer span.End()

	tx := s.tx(ctx)
	if tx == nil {
		ctx, err := s.BeginROTx(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to begin transaction")
		}
		tx = s.tx(ctx)
		defer s.CommitROTx(ctx)
	}

	// Build the query.
	queryBuilder := strings.Builder{}
	queryVals := make([]any, 0)

	_, _ = queryBuilder.WriteString(`
SELECT f_id
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
FROM t_auctions`)

	wherestr := "WHERE"

	if filter.FromID != nil {
		queryVals = append(queryVals, *filter.FromID)
		_, _ = queryBuilder.WriteString(fmt.Sprintf(`
%s f_id >= $%d`, wherestr, len(queryVals)))
		wherestr = "  AND"
	}

	if filter.ToID != nil {
		queryVals = append(queryVals, *filter.ToID)
		_, _ = queryBuilder.WriteString(fmt.Sprintf(`
%s f_id <= $%d`, wherestr, len(queryVals)))
		wherestr = "  AND"
	}

	if len(filter.Sellers) != 0 {
		queryVals = append(queryVals, filter.Sellers)
		_, _ = queryBuilder.WriteString(fmt.Sprintf(`
%s f_seller = ANY($%d)`, wherestr, len(queryVals)))
	}

	switch filter.Order {
	case auctiondb.OrderEarliest:
		_, _ = queryBuilder.WriteString(`
ORDER BY f_id`)
	case auctiondb.OrderLatest:
		_, _ = queryBuilder.WriteString(`
ORDER BY f_id DESC`)
	default:
		return nil, errors.New("no order specified")
	}

	if filter.Limit != 0 {
		queryVals = append(queryVals, filter.Limit)
		_, _ = queryBuilder.WriteString(fmt.Sprintf(`
LIMIT $%d`, len(queryVals)))
	}

	if e := log.Trace(); e.Enabled() {
		params := make([]string, len(queryVals))
		for i := range queryVals {
			params[i] = fmt.Sprintf("%v", queryVals[i])
		}
		e.Str("query", strings.ReplaceAll(queryBuilder.String(), "\n", " ")).Strs("params", params).Msg("SQL query")
	}

	rows, err := tx.Query(ctx,
		queryBuilder.String(),
		queryVals...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	auctions := make([]*auctiondb.Auction, 0)
	for rows.Next() {
		auction := &auctiondb.Auction{}
		var highestBidHandle []byte
		var winningAmount decimal.NullDecimal
		err := rows.Scan(
			&auction.ID,
			&auction.Seller,
			&auction.StartPrice,
			&auction.StartTime,
			&auction.EndTime,
			&highestBidHandle,
			&auction.HighestBidder,
			&auction.BidCount,
			&winningAmount,
			&auction.Ended,
			&auction.Settled,
			&auction.Cancelled,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		copy(auction.HighestBidHandle[:], highestBidHandle)
		if winningAmount.Valid {
			auction.WinningAmount = winningAmount.Decimal.BigInt()
		}
		auctions = append(auctions, auction)
	}

	// Always return in ascending ID order.
	sort.Slice(auctions, func(i int, j int) bool {
		return auctions[i].ID < auctions[j].ID
	})

	return auctions, nil
}

// TotalAuctions returns the number of auctions created.
func (s *Service) TotalAuctions(ctx context.Context) (uint64, error) {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "TotalAuctions")
	defer span.End()

	var err error

	tx := s.tx(ctx)
	if tx == nil {
		ctx, err = s.BeginROTx(ctx)
		if err != nil {
			return 0, errors.Wrap(err, "failed to begin transaction")
		}
		tx = s.tx(ctx)
		defer s.CommitROTx(ctx)
	}

	var total uint64
	err = tx.QueryRow(ctx, `
SELECT COUNT(*)
FROM t_auctions`).Scan(&total)
	if err != nil {
		return 0, err
	}

	return total, nil
}

// NextAuctionID returns the next sequential auction identifier.
func (s *Service) NextAuctionID(ctx context.Context) (uint64, error) {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "NextAuctionID")
	defer span.End()

	tx := s.tx(ctx)
	if tx == nil {
		return 0, ErrNoTransaction
	}

	var next uint64
	err := tx.QueryRow(ctx, `
SELECT COALESCE(MAX(f_id)+1,0)
FROM t_auctions`).Scan(&next)
	if err != nil {
		return 0, err
	}

	return next, nil
}

// handlesToBytes flattens ciphertext handles for storage.
func handlesToBytes(handles []fhe.Handle) []byte {
	res := make([]byte, 0, fhe.HandleLength*len(handles))
	for _, handle := range handles {
		res = append(res, handle[:]...)
	}

	return res
}

// bytesToHandles recovers ciphertext handles from storage.
func bytesToHandles(data []byte) []fhe.Handle {
	handles := make([]fhe.Handle, 0, len(data)/fhe.HandleLength)
	for i := 0; i+fhe.HandleLength <= len(data); i += fhe.HandleLength {
		var handle fhe.Handle
		copy(handle[:], data[i:i+fhe.HandleLength])
		handles = append(handles, handle)
	}

	return handles
}
