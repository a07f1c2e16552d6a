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
)

// Auction returns the auction with the given ID.
func (s *Service) Auction(ctx context.Context, auctionID uint64) (*auctiondb.Auction, error) {
	auction, err := s.auctionsProvider.Auction(ctx, auctionID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to obtain auction")
	}
	if auction == nil {
		return nil, auctioneer.ErrUnknownAuction
	}

	return auction, nil
}

// TotalAuctions returns the number of auctions created.
func (s *Service) TotalAuctions(ctx context.Context) (uint64, error) {
	total, err := s.auctionsProvider.TotalAuctions(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to obtain total auctions")
	}

	return total, nil
}

// HasUserBid returns true if the given bidder has a bid in the given auction.
func (s *Service) HasUserBid(ctx context.Context, auctionID uint64, bidder []byte) (bool, error) {
	auction, err := s.auctionsProvider.Auction(ctx, auctionID)
	if err != nil {
		return false, errors.Wrap(err, "failed to obtain auction")
	}
	if auction == nil {
		return false, auctioneer.ErrUnknownAuction
	}

	bid, err := s.bidsProvider.Bid(ctx, auctionID, bidder)
	if err != nil {
		return false, errors.Wrap(err, "failed to obtain bid")
	}

	return bid != nil, nil
}

// HighestBidHandle returns the handle of the winning encrypted bid amount.
// Withheld until the auction has ended, keeping the running maximum
// confidential while bidding is open.
func (s *Service) HighestBidHandle(ctx context.Context, auctionID uint64) (fhe.Handle, error) {
	auction, err := s.auctionsProvider.Auction(ctx, auctionID)
	if err != nil {
		return fhe.ZeroHandle, errors.Wrap(err, "failed to obtain auction")
	}
	if auction == nil {
		return fhe.ZeroHandle, auctioneer.ErrUnknownAuction
	}
	if auction.Cancelled {
		return fhe.ZeroHandle, auctioneer.ErrAuctionNotActive
	}
	if !auction.Ended && !auction.Settled {
		return fhe.ZeroHandle, auctioneer.ErrAuctionNotEndedYet
	}

	return auction.HighestBidHandle, nil
}
