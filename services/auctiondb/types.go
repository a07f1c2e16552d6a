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
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sealedbid/auctiond/services/fhe"
)

// AuctionState is the lifecycle state of an auction, derived from its
// terminal flags and times.
type AuctionState uint8

const (
	// StatePending is an auction whose bidding window has not opened.
	StatePending AuctionState = iota
	// StateActive is an auction accepting bids.
	StateActive
	// StateEnded is an auction past its window awaiting settlement.
	StateEnded
	// StateSettled is an auction with a finalised outcome.
	StateSettled
	// StateCancelled is an auction withdrawn by its seller before any bids.
	StateCancelled
)

// String implements fmt.Stringer.
func (s AuctionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateActive:
		return "active"
	case StateEnded:
		return "ended"
	case StateSettled:
		return "settled"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Auction holds one confidential sale process.
type Auction struct {
	// ID is assigned sequentially from 0 and never reused.
	ID     uint64
	Seller []byte
	// StartPrice is the cleartext reserve price; it is public by design.
	StartPrice decimal.Decimal
	StartTime  time.Time
	EndTime    time.Time
	// HighestBidHandle references the current leading encrypted bid amount.
	// It is only ever updated by the homomorphic running-maximum.
	HighestBidHandle fhe.Handle
	// HighestBidder is the cleartext identity of the current leader, or
	// empty before the first bid.  It is updated atomically with
	// HighestBidHandle.
	HighestBidder []byte
	BidCount      uint64
	// WinningAmount is the revealed highest bid, set at settlement.
	WinningAmount *big.Int
	// At most one of the terminal flags may ever become true.
	Ended     bool
	Settled   bool
	Cancelled bool
}

// State derives the lifecycle state at the given time.  The flags are the
// source of truth; the derived state is for guards and display only.
func (a *Auction) State(now time.Time) AuctionState {
	switch {
	case a.Cancelled:
		return StateCancelled
	case a.Settled:
		return StateSettled
	case a.Ended:
		return StateEnded
	case !now.Before(a.StartTime) && now.Before(a.EndTime):
		return StateActive
	default:
		return StatePending
	}
}

// Bid holds one encrypted submission.  Bids are append-only: a losing bid
// is never deleted, as the refund bookkeeping of the external payment
// collaborator depends on the full ledger.
type Bid struct {
	AuctionID uint64
	Bidder    []byte
	// AmountHandle references the encrypted bid amount; the amount itself
	// is never stored in cleartext.
	AmountHandle fhe.Handle
	// Proof is the input proof the ciphertext arrived with.
	Proof []byte
	// Collateral is the cleartext deposit attached to the bid.
	Collateral decimal.Decimal
	Timestamp  time.Time
}

// DecryptionRequestStatus is the status of a decryption request.
type DecryptionRequestStatus uint8

const (
	// DecryptionRequestPending is a request awaiting an oracle callback.
	DecryptionRequestPending DecryptionRequestStatus = iota
	// DecryptionRequestFulfilled is a request with a verified result.
	DecryptionRequestFulfilled
)

// DecryptionRequest bridges the settlement engine and the decryption
// oracle.  It is created when an auction ends and fulfilled exactly once.
type DecryptionRequest struct {
	ID        string
	AuctionID uint64
	Handles   []fhe.Handle
	Status    DecryptionRequestStatus
	// Cleartexts and Proof are set on fulfilment.
	Cleartexts  []byte
	Proof       []byte
	RequestedAt time.Time
	FulfilledAt time.Time
}
