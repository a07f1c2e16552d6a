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
	"time"

	"github.com/pkg/errors"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"go.opentelemetry.io/otel"
)

// DecryptionRequests returns decryption requests matching the supplied filter.
func (s *Service) DecryptionRequests(ctx context.Context,
	filter *auctiondb.DecryptionRequestFilter,
) (
	[]*auctiondb.DecryptionRequest,
	error,
) {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "DecryptionRequests")
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
      ,f_auction_id
      ,f_handles
      ,f_status
      ,f_cleartexts
      ,f_proof
      ,f_requested_at
      ,f_fulfilled_at
FROM t_decryption_requests`)

	wherestr := "WHERE"

	if len(filter.IDs) != 0 {
		queryVals = append(queryVals, filter.IDs)
		_, _ = queryBuilder.WriteString(fmt.Sprintf(`
%s f_id = ANY($%d)`, wherestr, len(queryVals)))
		wherestr = "  AND"
	}

	if len(filter.AuctionIDs) != 0 {
		queryVals = append(queryVals, filter.AuctionIDs)
		_, _ = queryBuilder.WriteString(fmt.Sprintf(`
%s f_auction_id = ANY($%d)`, wherestr, len(queryVals)))
		wherestr = "  AND"
	}

	if filter.Status != nil {
		queryVals = append(queryVals, *filter.Status)
		_, _ = queryBuilder.WriteString(fmt.Sprintf(`
%s f_status = $%d`, wherestr, len(queryVals)))
	}

	switch filter.Order {
	case auctiondb.OrderEarliest:
		_, _ = queryBuilder.WriteString(`
ORDER BY f_requested_at`)
	case auctiondb.OrderLatest:
		_, _ = queryBuilder.WriteString(`
ORDER BY f_requested_at DESC`)
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

	requests := make([]*auctiondb.DecryptionRequest, 0)
	for rows.Next() {
		request := &auctiondb.DecryptionRequest{}
		var handles []byte
		var fulfilledAt *time.Time
		err := rows.Scan(
			&request.ID,
			&request.AuctionID,
			&handles,
			&request.Status,
			&request.Cleartexts,
			&request.Proof,
			&request.RequestedAt,
			&fulfilledAt,
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to scan row")
		}
		request.Handles = bytesToHandles(handles)
		if fulfilledAt != nil {
			request.FulfilledAt = *fulfilledAt
		}
		requests = append(requests, request)
	}

	// Always return in ascending request time order.
	sort.Slice(requests, func(i int, j int) bool {
		return requests[i].RequestedAt.Before(requests[j].RequestedAt)
	})

	return requests, nil
}
