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
	"go.opentelemetry.io/otel"
)

// SetBid records a bid.  The ledger is append-only, so there is no
// conflict clause: a second bid from the same bidder is an error.
func (s *Service) SetBid(ctx context.Context, bid *auctiondb.Bid) error {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "SetBid")
	defer span.End()

	if bid == nil {
		return errors.New("bid nil")
	}

	tx := s.tx(ctx)
	if tx == nil {
		return ErrNoTransaction
	}

	_, err := tx.Exec(ctx, `
INSERT INTO t_bids(f_auction_id
                  ,f_bidder
                  ,f_amount_handle
                  ,f_proof
                  ,f_collateral
                  ,f_timestamp
                 )
VALUES($1,$2,$3,$4,$5,$6)
`,
		bid.AuctionID,
		bid.Bidder,
		bid.AmountHandle[:],
		bid.Proof,
		bid.Collateral,
		bid.Timestamp,
	)
	if err != nil {
		return err
	}

	return nil
}
