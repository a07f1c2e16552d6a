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

package util

import (
	"context"

	"github.com/pkg/errors"
	postgresqlauctiondb "github.com/sealedbid/auctiond/services/auctiondb/postgresql"
	"github.com/spf13/viper"
	majordomo "github.com/wealdtech/go-majordomo"
)

// InitAuctionDB initialises the auction database.
func InitAuctionDB(ctx context.Context, majordomo majordomo.Service) (*postgresqlauctiondb.Service, error) {
	opts := []postgresqlauctiondb.Parameter{
		postgresqlauctiondb.WithLogLevel(LogLevel("auctiondb")),
		postgresqlauctiondb.WithServer(viper.GetString("auctiondb.server")),
		postgresqlauctiondb.WithUser(viper.GetString("auctiondb.user")),
		postgresqlauctiondb.WithPassword(viper.GetString("auctiondb.password")),
		postgresqlauctiondb.WithPort(viper.GetInt32("auctiondb.port")),
		postgresqlauctiondb.WithMaxConnections(viper.GetUint("auctiondb.max-connections")),
	}

	if viper.GetString("auctiondb.client-cert") != "" {
		clientCert, err := majordomo.Fetch(ctx, viper.GetString("auctiondb.client-cert"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read client certificate")
		}
		opts = append(opts, postgresqlauctiondb.WithClientCert(clientCert))
	}

	if viper.GetString("auctiondb.client-key") != "" {
		clientKey, err := majordomo.Fetch(ctx, viper.GetString("auctiondb.client-key"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read client key")
		}
		opts = append(opts, postgresqlauctiondb.WithClientKey(clientKey))
	}

	if viper.GetString("auctiondb.ca-cert") != "" {
		caCert, err := majordomo.Fetch(ctx, viper.GetString("auctiondb.ca-cert"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read certificate authority certificate")
		}
		opts = append(opts, postgresqlauctiondb.WithCACert(caCert))
	}

	return postgresqlauctiondb.New(ctx, opts...)
}
