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

package mem

import (
	"bytes"
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	zerologger "github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"github.com/sealedbid/auctiond/services/auctiondb"
)

// Service is an in-memory auction database.  It backs the engine tests and
// single-node deployments that do not need durability.  Each instance is an
// isolated store, so tests get a fresh registry per instance rather than
// sharing process-wide state.
//
// Transactions serialise writers: BeginTx takes the store lock and CommitTx
// or the cancel function releases it.  Writes apply immediately; callers
// follow the guard-then-write discipline, so a transaction that fails after
// its guards has nothing to roll back.
type Service struct {
	txMu deadlock.Mutex

	stateMu            deadlock.RWMutex
	auctions           map[uint64]*auctiondb.Auction
	nextAuctionID      uint64
	bids               map[uint64][]*auctiondb.Bid
	decryptionRequests []*auctiondb.DecryptionRequest
	metadata           map[string][]byte
}

// module-wide log.
var log zerolog.Logger

type txKey struct{}

// New creates a new in-memory auction database.
func New(_ context.Context, params ...Parameter) (*Service, error) {
	parameters, err := parseAndCheckParameters(params...)
	if err != nil {
		return nil, errors.Wrap(err, "problem with parameters")
	}

	// Set logging.
	log = zerologger.With().Str("service", "auctiondb").Str("impl", "mem").Logger().Level(parameters.logLevel)

	s := &Service{
		auctions: make(map[uint64]*auctiondb.Auction),
		bids:     make(map[uint64][]*auctiondb.Bid),
		metadata: make(map[string][]byte),
	}
	log.Trace().Msg("Store created")

	return s, nil
}

// BeginTx begins a transaction.
func (s *Service) BeginTx(ctx context.Context) (context.Context, context.CancelFunc, error) {
	if ctx.Value(txKey{}) != nil {
		return nil, nil, errors.New("cannot nest transactions")
	}

	s.txMu.Lock()
	done := false
	release := func() {
		if !done {
			done = true
			s.txMu.Unlock()
		}
	}

	return context.WithValue(ctx, txKey{}, &done), release, nil
}

// CommitTx commits a transaction.
func (s *Service) CommitTx(ctx context.Context) error {
	marker, isTx := ctx.Value(txKey{}).(*bool)
	if !isTx {
		return ErrNoTransaction
	}
	if *marker {
		return errors.New("transaction already closed")
	}
	*marker = true
	s.txMu.Unlock()

	return nil
}

// ErrNoTransaction is returned when an attempt is made to carry out a
// mutating operation without a transaction.
var ErrNoTransaction = errors.New("no transaction")

func (s *Service) inTx(ctx context.Context) bool {
	marker, isTx := ctx.Value(txKey{}).(*bool)

	return isTx && !*marker
}

// SetMetadata sets a metadata key to a JSON value.
func (s *Service) SetMetadata(ctx context.Context, key string, value []byte) error {
	if !s.inTx(ctx) {
		return ErrNoTransaction
	}

	s.stateMu.Lock()
	s.metadata[key] = bytes.Clone(value)
	s.stateMu.Unlock()

	return nil
}

// Metadata obtains the JSON value from a metadata key.
func (s *Service) Metadata(_ context.Context, key string) ([]byte, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	return bytes.Clone(s.metadata[key]), nil
}

// NextAuctionID returns the next sequential auction identifier.
func (s *Service) NextAuctionID(ctx context.Context) (uint64, error) {
	if !s.inTx(ctx) {
		return 0, ErrNoTransaction
	}

	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	return s.nextAuctionID, nil
}

// SetAuction sets an auction.
func (s *Service) SetAuction(ctx context.Context, auction *auctiondb.Auction) error {
	if auction == nil {
		return errors.New("auction nil")
	}
	if !s.inTx(ctx) {
		return ErrNoTransaction
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if _, exists := s.auctions[auction.ID]; !exists {
		if auction.ID != s.nextAuctionID {
			return errors.New("auction ID out of sequence")
		}
		s.nextAuctionID++
	}
	stored := *auction
	s.auctions[auction.ID] = &stored

	return nil
}

// Auction returns the auction with the given ID, or nil if it does not exist.
func (s *Service) Auction(_ context.Context, id uint64) (*auctiondb.Auction, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	auction, exists := s.auctions[id]
	if !exists {
		//nolint:nilnil
		return nil, nil
	}
	copied := *auction

	return &copied, nil
}

// Auctions returns auctions matching the supplied filter.
func (s *Service) Auctions(_ context.Context, filter *auctiondb.AuctionFilter) ([]*auctiondb.Auction, error) {
	if filter == nil {
		return nil, errors.New("no filter specified")
	}

	s.stateMu.RLock()
	auctions := make([]*auctiondb.Auction, 0, len(s.auctions))
	for _, auction := range s.auctions {
		if filter.FromID != nil && auction.ID < *filter.FromID {
			continue
		}
		if filter.ToID != nil && auction.ID > *filter.ToID {
			continue
		}
		if len(filter.Sellers) > 0 && !containsBytes(filter.Sellers, auction.Seller) {
			continue
		}
		copied := *auction
		auctions = append(auctions, &copied)
	}
	s.stateMu.RUnlock()

	sort.Slice(auctions, func(i int, j int) bool {
		if filter.Order == auctiondb.OrderLatest {
			return auctions[i].ID > auctions[j].ID
		}

		return auctions[i].ID < auctions[j].ID
	})
	if filter.Limit != 0 && uint32(len(auctions)) > filter.Limit {
		auctions = auctions[:filter.Limit]
	}

	// Always return in ascending ID order.
	sort.Slice(auctions, func(i int, j int) bool {
		return auctions[i].ID < auctions[j].ID
	})

	return auctions, nil
}

// TotalAuctions returns the number of auctions created.
func (s *Service) TotalAuctions(_ context.Context) (uint64, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	return s.nextAuctionID, nil
}

// SetBid records a bid.
func (s *Service) SetBid(ctx context.Context, bid *auctiondb.Bid) error {
	if bid == nil {
		return errors.New("bid nil")
	}
	if !s.inTx(ctx) {
		return ErrNoTransaction
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	for _, existing := range s.bids[bid.AuctionID] {
		if bytes.Equal(existing.Bidder, bid.Bidder) {
			return errors.New("duplicate bid")
		}
	}
	stored := *bid
	s.bids[bid.AuctionID] = append(s.bids[bid.AuctionID], &stored)

	return nil
}

// Bid returns the bid for the given auction and bidder, or nil if none exists.
func (s *Service) Bid(_ context.Context, auctionID uint64, bidder []byte) (*auctiondb.Bid, error) {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	for _, bid := range s.bids[auctionID] {
		if bytes.Equal(bid.Bidder, bidder) {
			copied := *bid

			return &copied, nil
		}
	}

	//nolint:nilnil
	return nil, nil
}

// Bids returns bids matching the supplied filter.
func (s *Service) Bids(_ context.Context, filter *auctiondb.BidFilter) ([]*auctiondb.Bid, error) {
	if filter == nil {
		return nil, errors.New("no filter specified")
	}

	s.stateMu.RLock()
	bids := make([]*auctiondb.Bid, 0)
	for auctionID, auctionBids := range s.bids {
		if len(filter.AuctionIDs) > 0 && !containsUint64(filter.AuctionIDs, auctionID) {
			continue
		}
		for _, bid := range auctionBids {
			if len(filter.Bidders) > 0 && !containsBytes(filter.Bidders, bid.Bidder) {
				continue
			}
			copied := *bid
			bids = append(bids, &copied)
		}
	}
	s.stateMu.RUnlock()

	sort.Slice(bids, func(i int, j int) bool {
		less := bids[i].AuctionID < bids[j].AuctionID ||
			(bids[i].AuctionID == bids[j].AuctionID && bids[i].Timestamp.Before(bids[j].Timestamp))
		if filter.Order == auctiondb.OrderLatest {
			return !less
		}

		return less
	})
	if filter.Limit != 0 && uint32(len(bids)) > filter.Limit {
		bids = bids[:filter.Limit]
	}

	return bids, nil
}

// SetDecryptionRequest sets a decryption request.
func (s *Service) SetDecryptionRequest(ctx context.Context, request *auctiondb.DecryptionRequest) error {
	if request == nil {
		return errors.New("request nil")
	}
	if !s.inTx(ctx) {
		return ErrNoTransaction
	}

	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	stored := *request
	for i, existing := range s.decryptionRequests {
		if existing.ID == request.ID {
			s.decryptionRequests[i] = &stored

			return nil
		}
	}
	s.decryptionRequests = append(s.decryptionRequests, &stored)

	return nil
}

// DecryptionRequests returns decryption requests matching the supplied filter.
func (s *Service) DecryptionRequests(_ context.Context, filter *auctiondb.DecryptionRequestFilter) ([]*auctiondb.DecryptionRequest, error) {
	if filter == nil {
		return nil, errors.New("no filter specified")
	}

	s.stateMu.RLock()
	requests := make([]*auctiondb.DecryptionRequest, 0)
	for _, request := range s.decryptionRequests {
		if len(filter.IDs) > 0 && !containsString(filter.IDs, request.ID) {
			continue
		}
		if len(filter.AuctionIDs) > 0 && !containsUint64(filter.AuctionIDs, request.AuctionID) {
			continue
		}
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		copied := *request
		requests = append(requests, &copied)
	}
	s.stateMu.RUnlock()

	sort.Slice(requests, func(i int, j int) bool {
		if filter.Order == auctiondb.OrderLatest {
			return requests[i].RequestedAt.After(requests[j].RequestedAt)
		}

		return requests[i].RequestedAt.Before(requests[j].RequestedAt)
	})
	if filter.Limit != 0 && uint32(len(requests)) > filter.Limit {
		requests = requests[:filter.Limit]
	}

	return requests, nil
}

func containsBytes(haystack [][]byte, needle []byte) bool {
	for _, candidate := range haystack {
		if bytes.Equal(candidate, needle) {
			return true
		}
	}

	return false
}

func containsUint64(haystack []uint64, needle uint64) bool {
	for _, candidate := range haystack {
		if candidate == needle {
			return true
		}
	}

	return false
}

func containsString(haystack []string, needle string) bool {
	for _, candidate := range haystack {
		if candidate == needle {
			return true
		}
	}

	return false
}
