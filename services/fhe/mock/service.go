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

package mock

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	zerologger "github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"github.com/sealedbid/auctiond/services/fhe"
)

// Service is a plaintext-backed encryption capability.  Values sit behind
// random handles in a private table, so callers still only ever see opaque
// handles, but nothing is actually encrypted.  It exists so that the auction
// core can be exercised without an FHE coprocessor; a real backend is an
// adapter behind the same interfaces.
type Service struct {
	key      []byte
	valuesMu deadlock.RWMutex
	values   map[fhe.Handle]uint64
}

// module-wide log.
var log zerolog.Logger

// importProof is the CBOR envelope carried by externally-constructed
// ciphertexts.
type importProof struct {
	Handle []byte `cbor:"1,keyasint"`
	MAC    []byte `cbor:"2,keyasint"`
}

// decryptionProof is the CBOR envelope attesting an oracle decryption.
type decryptionProof struct {
	RequestID string `cbor:"1,keyasint"`
	MAC       []byte `cbor:"2,keyasint"`
}

// New creates a new mock encryption service.
func New(_ context.Context, params ...Parameter) (*Service, error) {
	parameters, err := parseAndCheckParameters(params...)
	if err != nil {
		return nil, errors.Wrap(err, "problem with parameters")
	}

	// Set logging.
	log = zerologger.With().Str("service", "fhe").Str("impl", "mock").Logger().Level(parameters.logLevel)

	key := parameters.key
	if len(key) == 0 {
		key = make([]byte, 32)
		if _, err := rand.Read(key); err != nil {
			return nil, errors.Wrap(err, "failed to generate key material")
		}
	}

	s := &Service{
		key:    key,
		values: make(map[fhe.Handle]uint64),
	}

	return s, nil
}

// EncryptUint64 constructs an external (handle, proof) pair for a value,
// bound to the supplied binding.  This is the client-side input construction
// capability; in production it runs on the bidder's machine.
func (s *Service) EncryptUint64(_ context.Context, value uint64, binding *fhe.Binding) (fhe.Handle, []byte, error) {
	if binding == nil {
		return fhe.ZeroHandle, nil, errors.New("no binding specified")
	}

	handle, err := newHandle()
	if err != nil {
		return fhe.ZeroHandle, nil, err
	}

	s.valuesMu.Lock()
	s.values[handle] = value
	s.valuesMu.Unlock()

	proof, err := cbor.Marshal(&importProof{
		Handle: handle[:],
		MAC:    s.importMAC(handle, binding),
	})
	if err != nil {
		return fhe.ZeroHandle, nil, errors.Wrap(err, "failed to marshal input proof")
	}

	return handle, proof, nil
}

// ImportExternal validates an external (handle, proof) pair against its
// binding and returns an internal handle for the same value.
func (s *Service) ImportExternal(_ context.Context, handle fhe.Handle, proof []byte, binding *fhe.Binding) (fhe.Handle, error) {
	if binding == nil {
		return fhe.ZeroHandle, errors.New("no binding specified")
	}

	var envelope importProof
	if err := cbor.Unmarshal(proof, &envelope); err != nil {
		return fhe.ZeroHandle, errors.Wrap(err, "malformed input proof")
	}
	if !bytes.Equal(envelope.Handle, handle[:]) {
		return fhe.ZeroHandle, errors.New("input proof does not cover handle")
	}
	if !hmac.Equal(envelope.MAC, s.importMAC(handle, binding)) {
		return fhe.ZeroHandle, errors.New("input proof does not verify against binding")
	}

	s.valuesMu.RLock()
	value, exists := s.values[handle]
	s.valuesMu.RUnlock()
	if !exists {
		return fhe.ZeroHandle, errors.New("unknown ciphertext handle")
	}

	return s.store(value)
}

// CompareGreaterThan returns a handle to the encrypted boolean a > b.
func (s *Service) CompareGreaterThan(_ context.Context, a fhe.Handle, b fhe.Handle) (fhe.Handle, error) {
	s.valuesMu.RLock()
	av, aOK := s.values[a]
	bv, bOK := s.values[b]
	s.valuesMu.RUnlock()
	if !aOK || !bOK {
		return fhe.ZeroHandle, errors.New("unknown ciphertext handle")
	}

	result := uint64(0)
	if av > bv {
		result = 1
	}

	return s.store(result)
}

// Select returns a fresh handle holding ifTrue's value when cond is true,
// or ifFalse's otherwise.
func (s *Service) Select(_ context.Context, cond fhe.Handle, ifTrue fhe.Handle, ifFalse fhe.Handle) (fhe.Handle, error) {
	s.valuesMu.RLock()
	cv, cOK := s.values[cond]
	tv, tOK := s.values[ifTrue]
	fv, fOK := s.values[ifFalse]
	s.valuesMu.RUnlock()
	if !cOK || !tOK || !fOK {
		return fhe.ZeroHandle, errors.New("unknown ciphertext handle")
	}

	if cv != 0 {
		return s.store(tv)
	}

	return s.store(fv)
}

// RevealCompare reveals the cleartext value of an encrypted boolean.
func (s *Service) RevealCompare(_ context.Context, cond fhe.Handle) (bool, error) {
	s.valuesMu.RLock()
	value, exists := s.values[cond]
	s.valuesMu.RUnlock()
	if !exists {
		return false, errors.New("unknown ciphertext handle")
	}

	return value != 0, nil
}

// ZeroCiphertext returns a handle to an encryption of zero.
func (s *Service) ZeroCiphertext(_ context.Context) (fhe.Handle, error) {
	return s.store(0)
}

// PublicDecrypt decrypts the supplied handles for a decryption request,
// returning the cleartexts with a proof binding them to the request.
// This is the decryption oracle capability; the mock holds the key
// material, so it plays both sides.
func (s *Service) PublicDecrypt(_ context.Context, requestID string, handles []fhe.Handle) ([]byte, []byte, error) {
	cleartexts := make([]byte, 0, 8*len(handles))
	s.valuesMu.RLock()
	for _, handle := range handles {
		value, exists := s.values[handle]
		if !exists {
			s.valuesMu.RUnlock()
			return nil, nil, errors.New("unknown ciphertext handle")
		}
		cleartexts = binary.BigEndian.AppendUint64(cleartexts, value)
	}
	s.valuesMu.RUnlock()

	proof, err := cbor.Marshal(&decryptionProof{
		RequestID: requestID,
		MAC:       s.decryptionMAC(requestID, handles, cleartexts),
	})
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to marshal decryption proof")
	}

	log.Trace().Str("request_id", requestID).Int("handles", len(handles)).Msg("Decrypted handles")

	return cleartexts, proof, nil
}

// VerifyDecryption checks that cleartexts is the correct decryption of
// exactly handles, as attested by proof for the given request.
func (s *Service) VerifyDecryption(_ context.Context, requestID string, handles []fhe.Handle, cleartexts []byte, proof []byte) (bool, error) {
	if len(cleartexts) != 8*len(handles) {
		return false, nil
	}

	var envelope decryptionProof
	if err := cbor.Unmarshal(proof, &envelope); err != nil {
		//nolint:nilerr
		return false, nil
	}
	if envelope.RequestID != requestID {
		return false, nil
	}

	return hmac.Equal(envelope.MAC, s.decryptionMAC(requestID, handles, cleartexts)), nil
}

func (s *Service) store(value uint64) (fhe.Handle, error) {
	handle, err := newHandle()
	if err != nil {
		return fhe.ZeroHandle, err
	}

	s.valuesMu.Lock()
	s.values[handle] = value
	s.valuesMu.Unlock()

	return handle, nil
}

func (s *Service) importMAC(handle fhe.Handle, binding *fhe.Binding) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte("import"))
	mac.Write(handle[:])
	mac.Write(binding.Instance)
	mac.Write(binary.BigEndian.AppendUint64(nil, binding.AuctionID))
	mac.Write(binding.Bidder)

	return mac.Sum(nil)
}

func (s *Service) decryptionMAC(requestID string, handles []fhe.Handle, cleartexts []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte("decrypt"))
	mac.Write([]byte(requestID))
	for _, handle := range handles {
		mac.Write(handle[:])
	}
	mac.Write(cleartexts)

	return mac.Sum(nil)
}

func newHandle() (fhe.Handle, error) {
	var handle fhe.Handle
	if _, err := rand.Read(handle[:]); err != nil {
		return fhe.ZeroHandle, errors.Wrap(err, "failed to generate handle")
	}

	return handle, nil
}
