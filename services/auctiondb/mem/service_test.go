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

package mem_test

import (
	"context"
	"testing"
	"time"

	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctiondb/mem"
	"github.com/sealedbid/auctiond/services/fhe"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	ctx := context.Background()
	s, err := mem.New(ctx)
	require.NoError(t, err)
	require.NotNil(t, s)
}

func TestTransactions(t *testing.T) {
	ctx := context.Background()
	s, err := mem.New(ctx)
	require.NoError(t, err)

	// Mutations outside a transaction fail.
	err = s.SetAuction(ctx, &auctiondb.Auction{})
	require.ErrorIs(t, err, mem.ErrNoTransaction)
	_, err = s.NextAuctionID(ctx)
	require.ErrorIs(t, err, mem.ErrNoTransaction)
	err = s.CommitTx(ctx)
	require.ErrorIs(t, err, mem.ErrNoTransaction)

	txCtx, cancel, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer cancel()

	// Nested transactions are refused.
	_, _, err = s.BeginTx(txCtx)
	require.EqualError(t, err, "cannot nest transactions")

	require.NoError(t, s.CommitTx(txCtx))

	// The transaction is single-use.
	err = s.SetAuction(txCtx, &auctiondb.Auction{})
	require.ErrorIs(t, err, mem.ErrNoTransaction)
}

func TestSetAuction(t *testing.T) {
	ctx := context.Background()
	s, err := mem.New(ctx)
	require.NoError(t, err)

	txCtx, cancel, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer cancel()

	id, err := s.NextAuctionID(txCtx)
	require.NoError(t, err)
	require.Equal(t, uint64(0), id)

	auction := &auctiondb.Auction{
		ID:         id,
		Seller:     []byte{0x01},
		StartPrice: decimal.NewFromInt(100),
		StartTime:  time.Unix(1000, 0),
		EndTime:    time.Unix(2000, 0),
	}
	require.NoError(t, s.SetAuction(txCtx, auction))

	// Identifiers are handed out in sequence.
	id, err = s.NextAuctionID(txCtx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
	err = s.SetAuction(txCtx, &auctiondb.Auction{ID: 5})
	require.EqualError(t, err, "auction ID out of sequence")

	require.NoError(t, s.CommitTx(txCtx))

	fetched, err := s.Auction(ctx, 0)
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, auction.Seller, fetched.Seller)
	require.True(t, auction.StartPrice.Equal(fetched.StartPrice))

	missing, err := s.Auction(ctx, 99)
	require.NoError(t, err)
	require.Nil(t, missing)

	total, err := s.TotalAuctions(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), total)
}

func TestAuctionsFilter(t *testing.T) {
	ctx := context.Background()
	s, err := mem.New(ctx)
	require.NoError(t, err)

	txCtx, cancel, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer cancel()
	sellers := [][]byte{{0x01}, {0x02}, {0x01}, {0x03}}
	for i, seller := range sellers {
		require.NoError(t, s.SetAuction(txCtx, &auctiondb.Auction{
			ID:     uint64(i),
			Seller: seller,
		}))
	}
	require.NoError(t, s.CommitTx(txCtx))

	tests := []struct {
		name   string
		filter *auctiondb.AuctionFilter
		ids    []uint64
	}{
		{
			name:   "All",
			filter: &auctiondb.AuctionFilter{},
			ids:    []uint64{0, 1, 2, 3},
		},
		{
			name: "Seller",
			filter: &auctiondb.AuctionFilter{
				Sellers: [][]byte{{0x01}},
			},
			ids: []uint64{0, 2},
		},
		{
			name: "Range",
			filter: &auctiondb.AuctionFilter{
				FromID: uint64Ptr(1),
				ToID:   uint64Ptr(2),
			},
			ids: []uint64{1, 2},
		},
		{
			name: "LimitLatest",
			filter: &auctiondb.AuctionFilter{
				Limit: 2,
				Order: auctiondb.OrderLatest,
			},
			ids: []uint64{2, 3},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			auctions, err := s.Auctions(ctx, test.filter)
			require.NoError(t, err)
			ids := make([]uint64, 0, len(auctions))
			for _, auction := range auctions {
				ids = append(ids, auction.ID)
			}
			require.Equal(t, test.ids, ids)
		})
	}
}

func TestSetBid(t *testing.T) {
	ctx := context.Background()
	s, err := mem.New(ctx)
	require.NoError(t, err)

	txCtx, cancel, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer cancel()

	bid := &auctiondb.Bid{
		AuctionID:    0,
		Bidder:       []byte{0x0a},
		AmountHandle: fhe.Handle{0x01},
		Collateral:   decimal.NewFromInt(100),
		Timestamp:    time.Unix(1500, 0),
	}
	require.NoError(t, s.SetBid(txCtx, bid))

	// One bid per (auction, bidder).
	err = s.SetBid(txCtx, bid)
	require.EqualError(t, err, "duplicate bid")

	// The same bidder may bid in a different auction.
	other := *bid
	other.AuctionID = 1
	require.NoError(t, s.SetBid(txCtx, &other))

	require.NoError(t, s.CommitTx(txCtx))

	fetched, err := s.Bid(ctx, 0, []byte{0x0a})
	require.NoError(t, err)
	require.NotNil(t, fetched)
	require.Equal(t, bid.AmountHandle, fetched.AmountHandle)

	missing, err := s.Bid(ctx, 0, []byte{0x0b})
	require.NoError(t, err)
	require.Nil(t, missing)

	bids, err := s.Bids(ctx, &auctiondb.BidFilter{AuctionIDs: []uint64{0}})
	require.NoError(t, err)
	require.Len(t, bids, 1)
}

func TestSetDecryptionRequest(t *testing.T) {
	ctx := context.Background()
	s, err := mem.New(ctx)
	require.NoError(t, err)

	txCtx, cancel, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer cancel()

	request := &auctiondb.DecryptionRequest{
		ID:          "req-1",
		AuctionID:   0,
		Handles:     []fhe.Handle{{0x01}},
		Status:      auctiondb.DecryptionRequestPending,
		RequestedAt: time.Unix(2000, 0),
	}
	require.NoError(t, s.SetDecryptionRequest(txCtx, request))

	// Fulfilment updates in place.
	request.Status = auctiondb.DecryptionRequestFulfilled
	request.Cleartexts = []byte{0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x2a}
	request.FulfilledAt = time.Unix(2100, 0)
	require.NoError(t, s.SetDecryptionRequest(txCtx, request))
	require.NoError(t, s.CommitTx(txCtx))

	pending := auctiondb.DecryptionRequestPending
	requests, err := s.DecryptionRequests(ctx, &auctiondb.DecryptionRequestFilter{Status: &pending})
	require.NoError(t, err)
	require.Len(t, requests, 0)

	fulfilled := auctiondb.DecryptionRequestFulfilled
	requests, err = s.DecryptionRequests(ctx, &auctiondb.DecryptionRequestFilter{Status: &fulfilled})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	require.Equal(t, "req-1", requests[0].ID)
	require.Equal(t, request.Cleartexts, requests[0].Cleartexts)
}

func TestMetadata(t *testing.T) {
	ctx := context.Background()
	s, err := mem.New(ctx)
	require.NoError(t, err)

	txCtx, cancel, err := s.BeginTx(ctx)
	require.NoError(t, err)
	defer cancel()
	require.NoError(t, s.SetMetadata(txCtx, "schema", []byte(`{"version":1}`)))
	require.NoError(t, s.CommitTx(txCtx))

	value, err := s.Metadata(ctx, "schema")
	require.NoError(t, err)
	require.JSONEq(t, `{"version":1}`, string(value))
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
