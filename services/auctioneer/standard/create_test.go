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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCreateAuction(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	auctionID, err := env.svc.CreateAuction(ctx, []byte("seller"), decimal.NewFromInt(100), time.Hour)
	require.NoError(t, err)
	require.Equal(t, uint64(0), auctionID)

	// IDs are sequential.
	auctionID, err = env.svc.CreateAuction(ctx, []byte("seller"), decimal.NewFromInt(100), time.Hour)
	require.NoError(t, err)
	require.Equal(t, uint64(1), auctionID)

	total, err := env.svc.TotalAuctions(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(2), total)

	auction, err := env.svc.Auction(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []byte("seller"), auction.Seller)
	require.True(t, auction.StartPrice.Equal(decimal.NewFromInt(100)))
	require.Equal(t, env.clock.Now(), auction.StartTime)
	require.Equal(t, env.clock.Now().Add(time.Hour), auction.EndTime)
	require.Equal(t, uint64(0), auction.BidCount)
	require.Equal(t, auctiondb.StateActive, auction.State(env.clock.Now()))
	// The running maximum starts from a defined zero ciphertext.
	require.False(t, auction.HighestBidHandle.IsZero())
	require.Empty(t, auction.HighestBidder)
}

func TestCreateAuctionInvalidPrice(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.CreateAuction(ctx, []byte("seller"), decimal.Zero, time.Hour)
	require.ErrorIs(t, err, auctioneer.ErrInvalidPrice)

	_, err = env.svc.CreateAuction(ctx, []byte("seller"), decimal.NewFromInt(-1), time.Hour)
	require.ErrorIs(t, err, auctioneer.ErrInvalidPrice)
}

func TestCreateAuctionInvalidTime(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.CreateAuction(ctx, []byte("seller"), decimal.NewFromInt(100), 0)
	require.ErrorIs(t, err, auctioneer.ErrInvalidTime)

	// 90 days exactly is the boundary: valid.
	_, err = env.svc.CreateAuction(ctx, []byte("seller"), decimal.NewFromInt(100), 90*24*time.Hour)
	require.NoError(t, err)

	// 91 days is not.
	_, err = env.svc.CreateAuction(ctx, []byte("seller"), decimal.NewFromInt(100), 91*24*time.Hour)
	require.ErrorIs(t, err, auctioneer.ErrInvalidTime)
}

func TestAuctionUnknown(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	_, err := env.svc.Auction(ctx, 0)
	require.ErrorIs(t, err, auctioneer.ErrUnknownAuction)
}
