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

package auctioneer

import (
	"time"

	"github.com/pkg/errors"
)

// MaxAuctionDuration is the longest permitted bidding window.  Exactly this
// long is valid; any longer is not.
const MaxAuctionDuration = 90 * 24 * time.Hour

var (
	// ErrUnknownAuction is returned when an auction does not exist.
	ErrUnknownAuction = errors.New("unknown auction")

	// ErrInvalidPrice is returned when an auction is created with a
	// non-positive start price.
	ErrInvalidPrice = errors.New("invalid price")

	// ErrInvalidTime is returned when an auction is created with a zero
	// duration or one beyond MaxAuctionDuration.
	ErrInvalidTime = errors.New("invalid time")

	// ErrOnlySeller is returned when a seller-only operation is attempted
	// by another party.
	ErrOnlySeller = errors.New("only seller")

	// ErrAuctionNotActive is returned when an operation requires an open
	// bidding window, or when any operation targets a cancelled auction.
	ErrAuctionNotActive = errors.New("auction not active")

	// ErrAlreadyBid is returned when a bidder already has a bid in the
	// auction.  One bid per bidder per auction.
	ErrAlreadyBid = errors.New("already bid")

	// ErrInvalidProof is returned when an inbound ciphertext's input proof
	// does not verify for this auction and bidder.
	ErrInvalidProof = errors.New("invalid proof")

	// ErrInsufficientCollateral is returned when a bid's deposit is below
	// the auction's start price.
	ErrInsufficientCollateral = errors.New("insufficient collateral")

	// ErrAuctionNotEnded is returned when an auction is ended before its
	// window has closed.
	ErrAuctionNotEnded = errors.New("auction not ended")

	// ErrAuctionAlreadyEnded is returned when an auction is ended twice.
	ErrAuctionAlreadyEnded = errors.New("auction already ended")

	// ErrAuctionNotEndedYet is returned when settlement is attempted with
	// no open decryption request, including after the request has already
	// been consumed.
	ErrAuctionNotEndedYet = errors.New("auction not ended yet")

	// ErrInvalidDecryptionProof is returned when a settlement proof does
	// not verify, or the supplied handles do not match the open request.
	ErrInvalidDecryptionProof = errors.New("invalid decryption proof")
)
