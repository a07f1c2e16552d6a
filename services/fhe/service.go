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

package fhe

import (
	"context"
	"encoding/hex"
)

// HandleLength is the length in bytes of a ciphertext handle.
const HandleLength = 32

// Handle is an opaque reference to a ciphertext held by the encryption
// backend.  It never exposes plaintext to its holder.
type Handle [HandleLength]byte

// ZeroHandle is the absent handle.
var ZeroHandle = Handle{}

// IsZero returns true if the handle is unset.
func (h Handle) IsZero() bool {
	return h == ZeroHandle
}

// String implements fmt.Stringer.
func (h Handle) String() string {
	return "0x" + hex.EncodeToString(h[:])
}

// Binding ties an externally-constructed ciphertext to the context in which
// it may be used.  A ciphertext bound to one (instance, auction, bidder)
// triple cannot be replayed against another.
type Binding struct {
	// Instance identifies the deployment that will consume the ciphertext.
	Instance []byte
	// AuctionID is the auction the ciphertext is submitted to.
	AuctionID uint64
	// Bidder is the identity submitting the ciphertext.
	Bidder []byte
}

// Service provides homomorphic operations over ciphertext handles.
// The caller composes these operations without ever observing plaintext;
// implementations range from a plaintext-backed mock to a real FHE
// coprocessor adapter.
type Service interface {
	// ImportExternal validates an externally-constructed (handle, proof)
	// pair against the supplied binding and returns an internal handle for
	// the same value.
	ImportExternal(ctx context.Context, handle Handle, proof []byte, binding *Binding) (Handle, error)

	// CompareGreaterThan returns a handle to the encrypted boolean a > b.
	CompareGreaterThan(ctx context.Context, a Handle, b Handle) (Handle, error)

	// Select returns a handle holding the value of ifTrue when cond is
	// true, or ifFalse otherwise, without revealing which was chosen.
	Select(ctx context.Context, cond Handle, ifTrue Handle, ifFalse Handle) (Handle, error)

	// RevealCompare reveals the cleartext value of an encrypted boolean
	// produced by CompareGreaterThan.  This is the single plaintext
	// decision the auction core is permitted: which party leads is public,
	// by how much never is.
	RevealCompare(ctx context.Context, cond Handle) (bool, error)

	// ZeroCiphertext returns a handle to an encryption of zero, used as the
	// running maximum before the first bid arrives.
	ZeroCiphertext(ctx context.Context) (Handle, error)
}

// DecryptionVerifier verifies that a decryption result was produced by the
// oracle for a specific request.
type DecryptionVerifier interface {
	// VerifyDecryption checks that cleartexts is the correct decryption of
	// exactly handles, as attested by proof for the given request.
	VerifyDecryption(ctx context.Context, requestID string, handles []Handle, cleartexts []byte, proof []byte) (bool, error)
}
