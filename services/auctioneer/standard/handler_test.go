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
	"math/big"
	"testing"
	"time"

	"github.com/sealedbid/auctiond/services/auctioneer"
	"github.com/sealedbid/auctiond/services/auctioneer/standard"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordedEvent struct {
	kind      string
	auctionID uint64
	party     []byte
	amount    *big.Int
}

type recordingHandler struct {
	events chan recordedEvent
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{events: make(chan recordedEvent, 16)}
}

func (h *recordingHandler) OnAuctionCreated(_ context.Context, auctionID uint64, seller []byte, _ decimal.Decimal, _ time.Time, _ time.Time) {
	h.events <- recordedEvent{kind: "created", auctionID: auctionID, party: seller}
}

func (h *recordingHandler) OnBidSubmitted(_ context.Context, auctionID uint64, bidder []byte, _ time.Time) {
	h.events <- recordedEvent{kind: "bid", auctionID: auctionID, party: bidder}
}

func (h *recordingHandler) OnAuctionEnded(_ context.Context, auctionID uint64, winner []byte, _ time.Time) {
	h.events <- recordedEvent{kind: "ended", auctionID: auctionID, party: winner}
}

func (h *recordingHandler) OnAuctionSettled(_ context.Context, auctionID uint64, winner []byte, amount *big.Int, _ time.Time) {
	h.events <- recordedEvent{kind: "settled", auctionID: auctionID, party: winner, amount: amount}
}

func (h *recordingHandler) OnAuctionCancelled(_ context.Context, auctionID uint64, _ time.Time) {
	h.events <- recordedEvent{kind: "cancelled", auctionID: auctionID}
}

func (h *recordingHandler) next(t *testing.T) recordedEvent {
	t.Helper()
	select {
	case event := <-h.events:
		return event
	case <-time.After(5 * time.Second):
		t.Fatal("timed out awaiting event")
		return recordedEvent{}
	}
}

func TestHandlers(t *testing.T) {
	ctx := context.Background()
	handler := newRecordingHandler()
	env := newTestEnv(t,
		standard.WithCreatedHandlers([]auctioneer.CreatedHandler{handler}),
		standard.WithBidSubmittedHandlers([]auctioneer.BidSubmittedHandler{handler}),
		standard.WithEndedHandlers([]auctioneer.EndedHandler{handler}),
		standard.WithSettledHandlers([]auctioneer.SettledHandler{handler}),
		standard.WithCancelledHandlers([]auctioneer.CancelledHandler{handler}),
	)

	auctionID := env.createAuction(t)
	event := handler.next(t)
	require.Equal(t, "created", event.kind)
	require.Equal(t, []byte("seller"), event.party)

	require.NoError(t, env.submitBid(t, auctionID, "bidder1", 20000))
	event = handler.next(t)
	require.Equal(t, "bid", event.kind)
	require.Equal(t, []byte("bidder1"), event.party)

	env.clock.Advance(time.Hour + time.Second)
	require.NoError(t, env.svc.EndAuction(ctx, auctionID))
	event = handler.next(t)
	require.Equal(t, "ended", event.kind)
	require.Equal(t, []byte("bidder1"), event.party)

	require.NoError(t, env.settle(t, auctionID))
	event = handler.next(t)
	require.Equal(t, "settled", event.kind)
	require.Equal(t, []byte("bidder1"), event.party)
	require.Equal(t, uint64(20000), event.amount.Uint64())

	// A fresh auction can still be withdrawn.
	otherID := env.createAuction(t)
	event = handler.next(t)
	require.Equal(t, "created", event.kind)
	require.NoError(t, env.svc.CancelAuction(ctx, otherID, []byte("seller")))
	event = handler.next(t)
	require.Equal(t, "cancelled", event.kind)
	require.Equal(t, otherID, event.auctionID)
}
