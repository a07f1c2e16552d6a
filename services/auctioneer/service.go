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

package auctioneer

import (
	"context"
	"math/big"
	"time"

	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/fhe"
	"github.com/shopspring/decimal"
)

// Service runs confidential sealed-bid auctions.  Bid amounts only ever
// exist as ciphertext handles; the single cleartext fact the engine reveals
// before settlement is which bidder currently leads.
type Service interface {
	AuctionCreator
	BidSubmitter
	AuctionEnder
	Settler
	AuctionCanceller

	// Auction returns the auction with the given ID.
	Auction(ctx context.Context, auctionID uint64) (*auctiondb.Auction, error)

	// TotalAuctions returns the number of auctions created.
	TotalAuctions(ctx context.Context) (uint64, error)

	// HasUserBid returns true if the given bidder has a bid in the given auction.
	HasUserBid(ctx context.Context, auctionID uint64, bidder []byte) (bool, error)

	// HighestBidHandle returns the handle of the winning encrypted bid amount.
	// It is only available once the auction has ended, keeping the running
	// maximum confidential while bidding is open.
	HighestBidHandle(ctx context.Context, auctionID uint64) (fhe.Handle, error)
}

// AuctionCreator creates auctions.
type AuctionCreator interface {
	// CreateAuction creates an auction opening immediately and running for
	// the given duration, returning its sequential ID.
	CreateAuction(ctx context.Context,
		seller []byte,
		startPrice decimal.Decimal,
		duration time.Duration,
	) (uint64, error)
}

// BidSubmitter accepts encrypted bids.
type BidSubmitter interface {
	// SubmitBid records an encrypted bid.  The handle and proof arrive from
	// the bidder's client-side encryption, bound to this auction and bidder.
	SubmitBid(ctx context.Context,
		auctionID uint64,
		bidder []byte,
		handle fhe.Handle,
		proof []byte,
		collateral decimal.Decimal,
	) error
}

// AuctionEnder closes bidding windows.
type AuctionEnder interface {
	// EndAuction marks an auction past its window as ended and opens its
	// decryption request.  Permissionless, so a seller cannot stall an
	// auction by withholding the call.
	EndAuction(ctx context.Context, auctionID uint64) error
}

// Settler finalises ended auctions from oracle decryption results.
type Settler interface {
	// SettleAuction consumes an oracle decryption of the winning bid amount.
	// It is safe to retry but can never finalise an auction twice.
	SettleAuction(ctx context.Context,
		auctionID uint64,
		handles []fhe.Handle,
		cleartexts []byte,
		proof []byte,
	) error
}

// AuctionCanceller withdraws auctions.
type AuctionCanceller interface {
	// CancelAuction withdraws an auction before any bid has landed.
	// Seller only.
	CancelAuction(ctx context.Context, auctionID uint64, caller []byte) error
}

// CreatedHandler receives notifications of created auctions.
type CreatedHandler interface {
	OnAuctionCreated(ctx context.Context,
		auctionID uint64,
		seller []byte,
		startPrice decimal.Decimal,
		startTime time.Time,
		endTime time.Time,
	)
}

// BidSubmittedHandler receives notifications of accepted bids.  The payload
// deliberately excludes the amount.
type BidSubmittedHandler interface {
	OnBidSubmitted(ctx context.Context, auctionID uint64, bidder []byte, timestamp time.Time)
}

// EndedHandler receives notifications of ended auctions.  The winner is
// empty if the auction received no bids.
type EndedHandler interface {
	OnAuctionEnded(ctx context.Context, auctionID uint64, winner []byte, timestamp time.Time)
}

// SettledHandler receives notifications of settled auctions, carrying the
// revealed winning amount.
type SettledHandler interface {
	OnAuctionSettled(ctx context.Context, auctionID uint64, winner []byte, amount *big.Int, timestamp time.Time)
}

// CancelledHandler receives notifications of cancelled auctions.
type CancelledHandler interface {
	OnAuctionCancelled(ctx context.Context, auctionID uint64, timestamp time.Time)
}
