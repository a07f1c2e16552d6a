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
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sealedbid/auctiond/services/auctiondb/mem"
	auctioneerstandard "github.com/sealedbid/auctiond/services/auctioneer/standard"
	chainmock "github.com/sealedbid/auctiond/services/chaintime/mock"
	"github.com/sealedbid/auctiond/services/fhe"
	fhemock "github.com/sealedbid/auctiond/services/fhe/mock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// TestRelayRoundTrip drives an auction to its end and confirms the relay
// settles it from the mock decryptor.
func TestRelayRoundTrip(t *testing.T) {
	ctx := context.Background()
	instance := []byte("auctiond-test")

	store, err := mem.New(ctx)
	require.NoError(t, err)
	enc, err := fhemock.New(ctx)
	require.NoError(t, err)
	clock := chainmock.New(time.Unix(1700000000, 0))

	engine, err := auctioneerstandard.New(ctx,
		auctioneerstandard.WithLogLevel(zerolog.Disabled),
		auctioneerstandard.WithInstance(instance),
		auctioneerstandard.WithChainTime(clock),
		auctioneerstandard.WithEncryptor(enc),
		auctioneerstandard.WithDecryptionVerifier(enc),
		auctioneerstandard.WithAuctionsProvider(store),
		auctioneerstandard.WithAuctionsSetter(store),
		auctioneerstandard.WithBidsProvider(store),
		auctioneerstandard.WithBidsSetter(store),
		auctioneerstandard.WithDecryptionRequestsProvider(store),
		auctioneerstandard.WithDecryptionRequestsSetter(store),
	)
	require.NoError(t, err)

	relay, err := New(ctx,
		WithLogLevel(zerolog.Disabled),
		WithDecryptor(enc),
		WithDecryptionRequestsProvider(store),
		WithSettler(engine),
		WithInterval(time.Hour),
	)
	require.NoError(t, err)

	auctionID, err := engine.CreateAuction(ctx, []byte("seller"), decimal.NewFromInt(100), time.Hour)
	require.NoError(t, err)

	handle, proof, err := enc.EncryptUint64(ctx, 25000, &fhe.Binding{
		Instance:  instance,
		AuctionID: auctionID,
		Bidder:    []byte("bidder1"),
	})
	require.NoError(t, err)
	require.NoError(t, engine.SubmitBid(ctx, auctionID, []byte("bidder1"), handle, proof, decimal.NewFromInt(100)))

	// Nothing to relay while the auction is open.
	relay.relayPendingRequests(ctx)
	auction, err := engine.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.False(t, auction.Settled)

	clock.Advance(time.Hour + time.Second)
	require.NoError(t, engine.EndAuction(ctx, auctionID))

	relay.relayPendingRequests(ctx)

	auction, err = engine.Auction(ctx, auctionID)
	require.NoError(t, err)
	require.True(t, auction.Settled)
	require.Equal(t, []byte("bidder1"), auction.HighestBidder)
	require.Equal(t, uint64(25000), auction.WinningAmount.Uint64())

	// A second pass finds nothing left to do.
	relay.relayPendingRequests(ctx)
}

func TestRelayMissingParameters(t *testing.T) {
	ctx := context.Background()
	store, err := mem.New(ctx)
	require.NoError(t, err)
	enc, err := fhemock.New(ctx)
	require.NoError(t, err)

	_, err = New(ctx,
		WithDecryptor(enc),
		WithDecryptionRequestsProvider(store),
		WithInterval(time.Hour),
	)
	require.EqualError(t, err, "problem with parameters: no settler specified")
}
