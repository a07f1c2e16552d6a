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

package oracle

import (
	"context"

	"github.com/sealedbid/auctiond/services/fhe"
)

// PublicDecryptor decrypts ciphertext handles on request.  The decryption
// is performed off-process by a party holding key material; the returned
// proof attests that the cleartexts are the decryption of exactly the
// requested handles for the given request.
type PublicDecryptor interface {
	// PublicDecrypt decrypts the supplied handles, returning the
	// concatenated big-endian cleartexts and an attestation proof.
	PublicDecrypt(ctx context.Context, requestID string, handles []fhe.Handle) ([]byte, []byte, error)
}
