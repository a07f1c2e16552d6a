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
	"github.com/stretchr/testify/require"
)

func TestEndAuction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)
	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))

	// Too early.
	require.ErrorIs(t, env.svc.EndAuction(ctx, auctionID), auctioneer.ErrAuctionNotEnded)

	// At the boundary it succeeds.
	env.clock.Advance(time.Hour)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))

	auction, err := env.svc.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.True(t, auction.Ended)
	require.False(t, auction.Settled)
	require.False(t, auction.Cancelled)
	require.Equal(t, auctiondb.StateEnded, auction.State(env.clock.Now()))

	// Ending opens exactly one decryption request for the winning handle.
	request := env.openRequest(t, auctionID)
	require.Len(t, request.Handles, 1)
	require.Equal(t, auction.HighestBidHandle, request.Handles[0])

	// Only once.
	require.ErrorIs(t, env.svc.EndAuction(ctx, auctionID), auctioneer.ErrAuctionAlreadyEnded)
}

func TestEndAuctionUnknown(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	require.ErrorIs(t, env.svc.EndAuction(ctx, 0), auctioneer.ErrUnknownAuction)
}

func TestEndAuctionCancelled(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)

	require.NoError(t, env.svc.CancelAuction(ctx, auctionID, []byte("seller")))
	env.clock.Advance(time.Hour + time.Second)
	require.ErrorIs(t, env.svc.EndAuction(ctx, auctionID), auctioneer.ErrAuctionNotActive)
}

func TestCancelAuction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)

	// Seller only.
	err := env.svc.CancelAuction(ctx, auctionID, []byte("interloper"))
	require.ErrorIs(t, err, auctioneer.ErrOnlySeller)

	require.NoError(t, env.svc.CancelAuction(ctx, auctionID, []byte("seller")))

	auction, err := env.svc.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.True(t, auction.Cancelled)
	require.False(t, auction.Ended)
	require.False(t, auction.Settled)
	require.Equal(t, auctiondb.StateCancelled, auction.State(env.clock.Now()))

	// Cancelling twice fails.
	err = env.svc.CancelAuction(ctx, auctionID, []byte("seller"))
	require.ErrorIs(t, err, auctioneer.ErrAuctionNotActive)
}

func TestCancelAuctionAfterBid(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)
	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))

	// Once any bid lands the auction can no longer be withdrawn.
	err := env.svc.CancelAuction(ctx, auctionID, []byte("seller"))
	require.ErrorIs(t, err, auctioneer.ErrAuctionNotActive)
}

func TestCancelAuctionAfterEnd(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	auctionID := env.createAuction(t)

	env.clock.Advance(time.Hour + time.Second)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))

	err := env.svc.CancelAuction(ctx, auctionID, []byte("seller"))
	require.ErrorIs(t, err, auctioneer.ErrAuctionAlreadyEnded)
}

// TestLifecycleScenario walks the canonical happy path with its guard
// failures along the way.
func TestLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	auctionID, err := env.svc.CreateAuction(ctx, []byte("seller"), decimalFromCents(1), 3600*time.Second)
	require.NoError(t, err)
	require.Equal(t, uint64(0), auctionID)

	handle, proof, err := env.enc.EncryptUint64(ctx, 20000, bindingFor(auctionID, "bidder1"))
	require.NoError(t, err)
	require.NoError(t, env.svc.SubmitBid(ctx, auctionID, []byte("bidder1"), handle, proof, decimalFromCents(1)))

	hasBid, err := env.svc.HasUserBid(ctx, auctionID, []byte("bidder1"))
	require.NoError(t, err)
	require.True(t, hasBid)
	auction, err := env.svc.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.Equal(t, uint64(1), auction.BidCount)

	// A second bid from the same bidder is refused.
	handle, proof, err = env.enc.EncryptUint64(ctx, 30000, bindingFor(auctionID, "bidder1"))
	require.NoError(t, err)
	err = env.svc.SubmitBid(ctx, auctionID, []byte("bidder1"), handle, proof, decimalFromCents(1))
	require.ErrorIs(t, err, auctioneer.ErrAlreadyBid)

	env.clock.Advance(3601 * time.Second)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))
	auction, err = env.svc.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.True(t, auction.Ended)

	require.ErrorIs(t, env.svc.EndAuction(ctx, auctionID), auctioneer.ErrAuctionAlreadyEnded)
}
