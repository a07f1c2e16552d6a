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

// Order is the order in which results should be fetched (N.B. fetched, not returned).
type Order uint8

const (
	// OrderEarliest fetches earliest entries first.
	OrderEarliest Order = iota
	// OrderLatest fetches latest entries first.
	OrderLatest
)

// AuctionFilter defines a filter for fetching auctions.
// Filter elements are ANDed together.
// Results are always returned in ascending auction ID order.
type AuctionFilter struct {
	// Limit is the maximum number of auctions to return.
	// If 0 then there is no limit.
	Limit uint32

	// Order is either OrderEarliest, in which case the earliest results
	// that match the filter are returned, or OrderLatest, in which case the
	// latest results that match the filter are returned.
	// The default is OrderEarliest.
	Order Order

	// FromID is the earliest auction ID from which to fetch.
	// If nil then there is no earliest ID.
	FromID *uint64

	// ToID is the latest auction ID to which to fetch.
	// If nil then there is no latest ID.
	ToID *uint64

	// Sellers are the sellers of the auctions.
	// If nil then there is no seller filter.
	Sellers [][]byte
}

// BidFilter defines a filter for fetching bids.
// Filter elements are ANDed together.
// Results are always returned in ascending (auction ID, timestamp) order.
type BidFilter struct {
	// Limit is the maximum number of bids to return.
	// If 0 then there is no limit.
	Limit uint32

	// Order is either OrderEarliest, in which case the earliest results
	// that match the filter are returned, or OrderLatest, in which case the
	// latest results that match the filter are returned.
	// The default is OrderEarliest.
	Order Order

	// AuctionIDs are the auctions whose bids to fetch.
	// If nil then there is no auction filter.
	AuctionIDs []uint64

	// Bidders are the bidders of the bids.
	// If nil then there is no bidder filter.
	Bidders [][]byte
}

// DecryptionRequestFilter defines a filter for fetching decryption requests.
// Filter elements are ANDed together.
// Results are always returned in ascending request time order.
type DecryptionRequestFilter struct {
	// Limit is the maximum number of requests to return.
	// If 0 then there is no limit.
	Limit uint32

	// Order is either OrderEarliest, in which case the earliest results
	// that match the filter are returned, or OrderLatest, in which case the
	// latest results that match the filter are returned.
	// The default is OrderEarliest.
	Order Order

	// IDs are the identifiers of the requests.
	// If nil then there is no identifier filter.
	IDs []string

	// AuctionIDs are the auctions whose requests to fetch.
	// If nil then there is no auction filter.
	AuctionIDs []uint64

	// Status restricts results to requests with the given status.
	// If nil then there is no status filter.
	Status *DecryptionRequestStatus
}
