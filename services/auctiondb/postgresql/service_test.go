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

package postgresql_test

import (
	"context"
	"os"
	"strconv"
	"testing"

	"github.com/sealedbid/auctiond/services/auctiondb"
	"github.com/sealedbid/auctiond/services/auctiondb/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atoi(input string) int32 {
	val, err := strconv.ParseInt(input, 10, 32)
	if err != nil {
		val = -1
	}
	return int32(val)
}

// skipWithoutDB skips the test when no test database is configured.
func skipWithoutDB(t *testing.T) {
	t.Helper()
	if os.Getenv("AUCTIONDB_SERVER") == "" {
		t.Skip("AUCTIONDB_SERVER not set; skipping database test")
	}
}

func newTestService(ctx context.Context, t *testing.T) *postgresql.Service {
	t.Helper()
	s, err := postgresql.New(ctx,
		postgresql.WithServer(os.Getenv("AUCTIONDB_SERVER")),
		postgresql.WithPort(atoi(os.Getenv("AUCTIONDB_PORT"))),
		postgresql.WithUser(os.Getenv("AUCTIONDB_USER")),
		postgresql.WithPassword(os.Getenv("AUCTIONDB_PASSWORD")),
	)
	require.NoError(t, err)

	return s
}

func TestService(t *testing.T) {
	tests := []struct {
		name     string
		server   string
		port     int32
		user     string
		password string
		err      string
	}{
		{
			name: "ServerMissing",
			port: 5432,
			user: "test",
			err:  "problem with parameters: no server specified",
		},
		{
			name:   "UserMissing",
			server: "localhost",
			port:   5432,
			err:    "problem with parameters: no user specified",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			ctx := context.Background()
			_, err := postgresql.New(ctx,
				postgresql.WithServer(test.server),
				postgresql.WithPort(test.port),
				postgresql.WithUser(test.user),
				postgresql.WithPassword(test.password),
			)
			if test.err != "" {
				assert.EqualError(t, err, test.err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInterfaces(t *testing.T) {
	skipWithoutDB(t)
	ctx := context.Background()
	s := newTestService(ctx, t)

	assert.Implements(t, (*auctiondb.Service)(nil), s)
	assert.Implements(t, (*auctiondb.AuctionsProvider)(nil), s)
	assert.Implements(t, (*auctiondb.AuctionsSetter)(nil), s)
	assert.Implements(t, (*auctiondb.BidsProvider)(nil), s)
	assert.Implements(t, (*auctiondb.BidsSetter)(nil), s)
	assert.Implements(t, (*auctiondb.DecryptionRequestsProvider)(nil), s)
	assert.Implements(t, (*auctiondb.DecryptionRequestsSetter)(nil), s)
}
