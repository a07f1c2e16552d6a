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
	"time"

	"github.com/pkg/errors"
	"github.com/sealedbid/auctiond/services/auctiondb"
	"go.opentelemetry.io/otel"
)

// SetDecryptionRequest sets a decryption request.
func (s *Service) SetDecryptionRequest(ctx context.Context, request *auctiondb.DecryptionRequest) error {
	ctx, span := otel.Tracer("sealedbid.auctiond.services.auctiondb.postgresql").Start(ctx, "SetDecryptionRequest")
	defer span.End()

	if request == nil {
		return errors.New("request nil")
	}

	tx := s.tx(ctx)
	if tx == nil {
		return ErrNoTransaction
	}

	var fulfilledAt *time.Time
	if !request.FulfilledAt.IsZero() {
		fulfilledAt = &request.FulfilledAt
	}
	_, err := tx.Exec(ctx, `
INSERT INTO t_decryption_requests(f_id
                                 ,f_auction_id
                                 ,f_handles
                                 ,f_status
                                 ,f_cleartexts
                                 ,f_proof
                                 ,f_requested_at
                                 ,f_fulfilled_at
                                )
VALUES($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (f_id) DO
UPDATE
SET f_status = excluded.f_status
   ,f_cleartexts = excluded.f_cleartexts
   ,f_proof = excluded.f_proof
   ,f_fulfilled_at = excluded.f_fulfilled_at
`,
		request.ID,
		request.AuctionID,
		handlesToBytes(request.Handles),
		request.Status,
		request.Cleartexts,
		request.Proof,
		request.RequestedAt,
		fulfilledAt,
	)
	if err != nil {
		return err
	}

	return nil
}
