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
	"go.opentelemetry.io/otel"
)

// Bid returns the bid for the given auction and bidder, or nil if none exists.
func (s *Service) Bid(ctx context.Context, auctionID uint64, bidder []byte) (*auctiondb.Bid, error) {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "Bid")
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

	bid := &auctiondb.Bid{}
	var amountHandle []byte
	err = tx.QueryRow(ctx, `
SELECT f_auction_id
      ,f_bidder
      ,f_amount_handle
      ,f_proof
      ,f_collateral
      ,f_timestamp
FROM t_bids
WHERE f_auction_id = $1
  AND f_bidder = $2`, auctionID, bidder).Scan(
		&bid.AuctionID,
		&bid.Bidder,
		&amountHandle,
		&bid.Proof,
		&bid.Collateral,
		&bid.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			//nolint:nilnil
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to scan row")
	}
	copy(bid.AmountHandle[:], amountHandle)

	return bid, nil
}

// Bids returns bids matching the supplied filter.
func (s *Service) Bids(ctx context.Context, filter *auctiondb.BidFilter) ([]*auctiondb.Bid, error) {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "Bids")
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
SELECT f_auction_id
      ,f_bidder
      ,f_amount_handle
      ,f_proof
      ,f_collateral
      ,f_timestamp
FROM t_bids`)

	wherestr := "WHERE"

	if len(filter.AuctionIDs) != 0 {
		queryVals = append(queryVals, filter.AuctionIDs)
		_, _ = queryBuilder.WriteString(fmt.Sprintf(`
%s f_auction_id = ANY($%d)`, wherestr, len(queryVals)))
		wherestr = "  AND"
	}

	if len(filter.Bidders) != 0 {
		queryVals = append(queryVals, filter.Bidders)
		_, _ = queryBuilder.WriteString(fmt.Sprintf(`
%s f_bidder = ANY($%d)`, wherestr, len(queryVals)))
	}

	switch filter.Order {
	case auctiondb.OrderEarliest:
		_, _ = queryBuilder.WriteString(`
ORDER BY f_auction_id,f_timestamp`)
	case auctiondb.OrderLatest:
		_, _ = queryBuilder.WriteString(`
ORDER BY f_auction_id DESC,f_timestamp DESC`)
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

	bids := make([]*auctiondb.Bid, 0)
	for rows.Next() {
		bid := &auctiondb.Bid{}
		var amountHandle []byte
		err := rows.Scan(
			&bid.AuctionID,
			&bid.Bidder,
			&amountHandle,
			&bid.Proof,
			&bid.Collateral,
			&bid.Timestamp,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		copy(bid.AmountHandle[:], amountHandle)
		bids = append(bids, bid)
	}

	// Always return in ascending (auction ID, timestamp) order.
	sort.Slice(bids, func(i int, j int) bool {
		if bids[i].AuctionID != bids[j].AuctionID {
			return bids[i].AuctionID < bids[j].AuctionID
		}

		return bids[i].Timestamp.Before(bids[j].Timestamp)
	})

	return bids, nil
}
