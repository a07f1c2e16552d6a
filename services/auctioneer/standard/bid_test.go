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

package standard_test

import (
	"context"
	"testing"
	"time"

	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/sealedbid/auctiond/services/fhe"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSubmitBid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)

	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))

	hasBid, err := env.svc.HasUserBid(ctx, auctionID, []byte("bidder1"))
	require.NoError(t, err)
	require.True(t, hasBid)
	hasBid, err = env.svc.HasUserBid(ctx, auctionID, []byte("bidder2"))
	require.NoError(t, err)
	require.False(t, hasBid)

	auction, err := env.svc.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), auction.BidCount)
	require.Equal(t, []byte("bidder1"), auction.HighestBidder)

	// The ledger matches the count.
	bids, err := env.store.Bids(ctx, &auctiondb.BidFilter{AuctionIDs: []uint64{auctionID}})
	require.NoError(t, err)
	require.Len(t, bids, 1)
}

func TestSubmitBidAlreadyBid(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.createAuction(t)

	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))
	require.ErrorIs(t, env.submitBid(t, auctionID, "bidder1", 30000), auctioneer.ErrAlreadyBid)
}

func TestSubmitBidUnknownAuction(t *testing.T) {
	env := newTestEnv(t)

	require.ErrorIs(t, env.submitBid(t, 99, "bidder1", 20000), auctioneer.ErrUnknownAuction)
}

func TestSubmitBidNotActive(t *testing.T) {
	env := newTestEnv(t)
	auctionID := env.createAuction(t)

	// Past the window.
	env.clock.Advance(time.Hour + time.Second)
	require.ErrorIs(t, env.submitBid(t, auctionID, "bidder1", 20000), auctioneer.ErrAuctionNotActive)
}

func TestSubmitBidCancelledAuction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)

	require.NoError(t, env.svc.CancelAuction(ctx, auctionID, []byte("seller")))
	require.ErrorIs(t, env.submitBid(t, auctionID, "bidder1", 20000), auctioneer.ErrAuctionNotActive)
}

func TestSubmitBidInvalidProof(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)
	otherID := env.createAuction(t)

	// A ciphertext bound to another auction cannot be replayed here.
	handle, proof, err := env.enc.EncryptUint64(ctx, 20000, &fhe.Binding{
		Instance:  testInstance,
		AuctionID: otherID,
		Bidder:    []byte("bidder1"),
	})
	require.NoError(t, err)
	err = env.svc.SubmitBid(ctx, auctionID, []byte("bidder1"), handle, proof, decimal.NewFromInt(100))
	require.ErrorIs(t, err, auctioneer.ErrInvalidProof)

	// Nor one bound to another bidder.
	handle, proof, err = env.enc.EncryptUint64(ctx, 20000, &fhe.Binding{
		Instance:  testInstance,
		AuctionID: auctionID,
		Bidder:    []byte("bidder2"),
	})
	require.NoError(t, err)
	err = env.svc.SubmitBid(ctx, auctionID, []byte("bidder1"), handle, proof, decimal.NewFromInt(100))
	require.ErrorIs(t, err, auctioneer.ErrInvalidProof)

	// Garbage proofs fail outright.
	err = env.svc.SubmitBid(ctx, auctionID, []byte("bidder1"), handle, []byte("garbage"), decimal.NewFromInt(100))
	require.ErrorIs(t, err, auctioneer.ErrInvalidProof)
}

func TestSubmitBidInsufficientCollateral(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)

	handle, proof, err := env.enc.EncryptUint64(ctx, 20000, &fhe.Binding{
		Instance:  testInstance,
		AuctionID: auctionID,
		Bidder:    []byte("bidder1"),
	})
	require.NoError(t, err)
	err = env.svc.SubmitBid(ctx, auctionID, []byte("bidder1"), handle, proof, decimal.NewFromInt(99))
	require.ErrorIs(t, err, auctioneer.ErrInsufficientCollateral)
}

func TestRunningMaxOrderIndependence(t *testing.T) {
	ctx := context.Background()

	// Distinct amounts submitted in any order leave the bidder of the
	// largest amount leading.
	orders := [][]struct {
		bidder string
		amount uint64
	}{
		{{"bidder1", 10000}, {"bidder2", 30000}, {"bidder3", 20000}},
		{{"bidder3", 20000}, {"bidder2", 30000}, {"bidder1", 10000}},
		{{"bidder2", 30000}, {"bidder1", 10000}, {"bidder3", 20000}},
		{{"bidder1", 10000}, {"bidder3", 20000}, {"bidder2", 30000}},
	}

	for _, order := range orders {
		env := newTestEnv(t)
		auctionID := env.createAuction(t)
		for _, bid := range order {
			require.NoError(t, env.submitBid(t, auctionID, bid.bidder, bid.amount))
		}

		auction, err := env.svc.Auction(ctx, auctionID)
		require.NoError(t, err)
		require.Equal(t, []byte("bidder2"), auction.HighestBidder)
		require.Equal(t, uint64(3), auction.BidCount)
	}
}

func TestHighestBidHandleWithheldWhileOpen(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)
	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))

	_, err := env.svc.HighestBidHandle(ctx, auctionID)
	require.ErrorIs(t, err, auctioneer.ErrAuctionNotEndedYet)

	env.clock.Advance(time.Hour + time.Second)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))

	handle, err := env.svc.HighestBidHandle(ctx, auctionID)
	require.NoError(t, err)
	require.False(t, handle.IsZero())
}
