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
	"github.com/stretchr/testify/require"
)

func TestSettleAuction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)
	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))
	require.NoError(t, env.submitBid(t, auctionID, "bidder2", 30000))

	env.clock.Advance(time.Hour + time.Second)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))
	require.NoError(t, env.settle(t, auctionID))

	auction, err := env.svc.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.True(t, auction.Settled)
	require.True(t, auction.Ended)
	require.False(t, auction.Cancelled)
	require.Equal(t, auctiondb.StateSettled, auction.State(env.clock.Now()))
	require.Equal(t, []byte("bidder2"), auction.HighestBidder)
	require.Equal(t, uint64(30000), auction.WinningAmount.Uint64())

	// The request is consumed, so a replay has nothing to consume.
	pending := auctiondb.DecryptionRequestPending
	requests, err := env.store.DecryptionRequests(ctx, &auctiondb.DecryptionRequestFilter{
		AuctionIDs: []uint64{auctionID},
		Status:     &pending,
	})
	require.NoError(t, err)
	require.Empty(t, requests)
}

func TestSettleAuctionTwice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)
	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))

	env.clock.Advance(time.Hour + time.Second)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))

	request := env.openRequest(t, auctionID)
	cleartexts, proof, err := env.enc.PublicDecrypt(ctx, request.ID, request.Handles)
	require.NoError(t, err)

	require.NoError(t, env.svc.SettleAuction(ctx, auctionID, request.Handles, cleartexts, proof))

	// Replaying the same valid result cannot finalise twice.
	err = env.svc.SettleAuction(ctx, auctionID, request.Handles, cleartexts, proof)
	require.ErrorIs(t, err, auctioneer.ErrAuctionNotEndedYet)
}

func TestSettleAuctionNotEnded(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)
	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))

	// No open request while bidding is still open.
	err := env.svc.SettleAuction(ctx, auctionID, []fhe.Handle{{0x01}}, make([]byte, 8), []byte("proof"))
	require.ErrorIs(t, err, auctioneer.ErrAuctionNotEndedYet)
}

func TestSettleAuctionMismatchedHandles(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)
	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))

	env.clock.Advance(time.Hour + time.Second)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))

	request := env.openRequest(t, auctionID)
	cleartexts, proof, err := env.enc.PublicDecrypt(ctx, request.ID, request.Handles)
	require.NoError(t, err)

	// A handle set that does not match the open request is refused.
	err = env.svc.SettleAuction(ctx, auctionID, []fhe.Handle{{0xff}}, cleartexts, proof)
	require.ErrorIs(t, err, auctioneer.ErrInvalidDecryptionProof)

	// As is an empty one.
	err = env.svc.SettleAuction(ctx, auctionID, []fhe.Handle{}, nil, proof)
	require.ErrorIs(t, err, auctioneer.ErrInvalidDecryptionProof)
}

func TestSettleAuctionForgedProof(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)
	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))

	env.clock.Advance(time.Hour + time.Second)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))

	request := env.openRequest(t, auctionID)
	cleartexts, proof, err := env.enc.PublicDecrypt(ctx, request.ID, request.Handles)
	require.NoError(t, err)

	// Tampered cleartexts no longer match the proof.
	tampered := append([]byte{}, cleartexts...)
	tampered[len(tampered)-1] ^= 0x01
	err = env.svc.SettleAuction(ctx, auctionID, request.Handles, tampered, proof)
	require.ErrorIs(t, err, auctioneer.ErrInvalidDecryptionProof)

	// A garbage proof is refused.
	err = env.svc.SettleAuction(ctx, auctionID, request.Handles, cleartexts, []byte("garbage"))
	require.ErrorIs(t, err, auctioneer.ErrInvalidDecryptionProof)

	// The untampered result still settles.
	require.NoError(t, env.svc.SettleAuction(ctx, auctionID, request.Handles, cleartexts, proof))
}

func TestSettleAuctionNoBids(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)

	env.clock.Advance(time.Hour + time.Second)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))

	auction, err := env.svc.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.Empty(t, auction.HighestBidder)

	// The zero ciphertext from creation settles to a winning amount of 0.
	require.NoError(t, env.settle(t, auctionID))
	auction, err = env.svc.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.True(t, auction.Settled)
	require.Equal(t, uint64(0), auction.WinningAmount.Uint64())
	require.Empty(t, auction.HighestBidder)
}
