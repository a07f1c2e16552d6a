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

package auctiondb

import (
	"context"
)

// Service defines a minimal auction database service.
type Service interface {
	// BeginTx begins a transaction.
	BeginTx(ctx context.Context) (context.Context, context.CancelFunc, error)

	// CommitTx commits a transaction.
	CommitTx(ctx context.Context) error

	// SetMetadata sets a metadata key to a JSON value.
	SetMetadata(ctx context.Context, key string, value []byte) error

	// Metadata obtains the JSON value from a metadata key.
	Metadata(ctx context.Context, key string) ([]byte, error)
}

// AuctionsProvider defines functions to provide auction information.
type AuctionsProvider interface {
	// Auction returns the auction with the given ID, or nil if it does not exist.
	Auction(ctx context.Context, id uint64) (*Auction, error)

	// Auctions returns auctions matching the supplied filter.
	Auctions(ctx context.Context, filter *AuctionFilter) ([]*Auction, error)

	// TotalAuctions returns the number of auctions created.
	TotalAuctions(ctx context.Context) (uint64, error)
}

// AuctionsSetter defines functions to create and update auctions.
type AuctionsSetter interface {
	Service

	// NextAuctionID returns the next sequential auction identifier.
	NextAuctionID(ctx context.Context) (uint64, error)

	// SetAuction sets an auction.
	SetAuction(ctx context.Context, auction *Auction) error
}

// BidsProvider defines functions to provide bid information.
type BidsProvider interface {
	// Bid returns the bid for the given auction and bidder, or nil if none exists.
	Bid(ctx context.Context, auctionID uint64, bidder []byte) (*Bid, error)

	// Bids returns bids matching the supplied filter.
	Bids(ctx context.Context, filter *BidFilter) ([]*Bid, error)
}

// BidsSetter defines functions to create bids.  The bid ledger is
// append-only; there is deliberately no way to update or delete a bid.
type BidsSetter interface {
	Service

	// SetBid records a bid.
	SetBid(ctx context.Context, bid *Bid) error
}

// DecryptionRequestsProvider defines functions to provide decryption request information.
type DecryptionRequestsProvider interface {
	// DecryptionRequests returns decryption requests matching the supplied filter.
	DecryptionRequests(ctx context.Context, filter *DecryptionRequestFilter) ([]*DecryptionRequest, error)
}

// DecryptionRequestsSetter defines functions to create and update decryption requests.
type DecryptionRequestsSetter interface {
	Service

	// SetDecryptionRequest sets a decryption request.
	SetDecryptionRequest(ctx context.Context, request *DecryptionRequest) error
}
