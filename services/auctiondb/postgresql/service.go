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

package postgresql

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"

	"github.com/jackc/pgx/v5"
	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	pgxzerolog "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	zerologger "github.com/rs/zerolog/log"
)

// Service is an auction database service backed by PostgreSQL.
type Service struct {
	pool *pgxpool.Pool
}

// module-wide log.
var log zerolog.Logger

// ErrNoTransaction is returned when an attempt is made to carry out a
// mutating operation without a transaction.
var ErrNoTransaction = errors.New("no transaction")

type txID struct{}
type roTxID struct{}

// New creates a new auction database service.
func New(ctx context.Context, params ...Parameter) (*Service, error) {
	parameters, err := parseAndCheckParameters(params...)
	if err != nil {
		return nil, errors.Wrap(err, "problem with parameters")
	}

	// Set logging.
	log = zerologger.With().Str("service", "auctiondb").Str("impl", "postgresql").Logger().Level(parameters.logLevel)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d", parameters.user, parameters.password, parameters.server, parameters.port)
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse database configuration")
	}

	if parameters.maxConnections > 0 {
		config.MaxConns = int32(parameters.maxConnections)
	}

	if parameters.caCert != nil || parameters.clientCert != nil {
		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS12,
			//nolint:gosec
			InsecureSkipVerify: true,
		}
		if parameters.clientCert != nil {
			clientPair, err := tls.X509KeyPair(parameters.clientCert, parameters.clientKey)
			if err != nil {
				return nil, errors.Wrap(err, "failed to load client keypair")
			}
			tlsConfig.Certificates = []tls.Certificate{clientPair}
		}
		if parameters.caCert != nil {
			rootCertPool := x509.NewCertPool()
			if ok := rootCertPool.AppendCertsFromPEM(parameters.caCert); !ok {
				return nil, errors.New("failed to append root CA certificate")
			}
			tlsConfig.RootCAs = rootCertPool
		}
		config.ConnConfig.TLSConfig = tlsConfig
	}

	// Log queries at trace level.
	config.ConnConfig.Tracer = &tracelog.TraceLog{
		Logger:   pgxzerolog.NewLogger(log),
		LogLevel: tracelog.LogLevelTrace,
	}

	// Decimals scan to shopspring decimals.
	config.AfterConnect = func(_ context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	s := &Service{
		pool: pool,
	}

	if err := s.Upgrade(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to upgrade database")
	}

	return s, nil
}

// BeginTx begins a transaction on the database.
// The transaction can be rolled back by invoking the cancel function.
func (s *Service) BeginTx(ctx context.Context) (context.Context, context.CancelFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel: pgx.Serializable,
	})
	if err != nil {
		cancel()
		return nil, nil, errors.Wrap(err, "failed to begin transaction")
	}
	ctx = context.WithValue(ctx, txID{}, tx)
	go func() {
		<-ctx.Done()
		if err := tx.Rollback(context.Background()); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			log.Debug().Err(err).Msg("Failed to rollback transaction")
		}
	}()

	return ctx, cancel, nil
}

// CommitTx commits a transaction on the database.
func (s *Service) CommitTx(ctx context.Context) error {
	tx, isTx := ctx.Value(txID{}).(pgx.Tx)
	if !isTx {
		return ErrNoTransaction
	}

	return tx.Commit(ctx)
}

// BeginROTx begins a read-only transaction on the database.
// The transaction should be committed with CommitROTx.
func (s *Service) BeginROTx(ctx context.Context) (context.Context, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin read-only transaction")
	}

	return context.WithValue(ctx, roTxID{}, tx), nil
}

// CommitROTx commits a read-only transaction on the database.
func (s *Service) CommitROTx(ctx context.Context) {
	tx, isTx := ctx.Value(roTxID{}).(pgx.Tx)
	if !isTx {
		return
	}
	if err := tx.Commit(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to commit read-only transaction")
	}
}

// tx returns the transaction, if any, in the context.
func (s *Service) tx(ctx context.Context) pgx.Tx {
	if tx, isTx := ctx.Value(txID{}).(pgx.Tx); isTx {
		return tx
	}
	if tx, isTx := ctx.Value(roTxID{}).(pgx.Tx); isTx {
		return tx
	}

	return nil
}

// SetMetadata sets a metadata key to a JSON value.
func (s *Service) SetMetadata(ctx context.Context, key string, value []byte) error {
	tx := s.tx(ctx)
	if tx == nil {
		return ErrNoTransaction
	}

	_, err := tx.Exec(ctx, `
INSERT INTO t_metadata(f_key
                      ,f_value)
VALUES($1,$2)
ON CONFLICT (f_key) DO
UPDATE
SET f_value = excluded.f_value
`, key, value)

	return err
}

// Metadata obtains the JSON value from a metadata key.
func (s *Service) Metadata(ctx context.Context, key string) ([]byte, error) {
	var err error

	tx := s.tx(ctx)
	if tx == nil {
		ctx, err = s.BeginROTx(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to begin transaction")
		}
		tx = s.tx(ctx)
		defer s.CommitROTx(ctx)
	}

	res := []byte{}
	err = tx.QueryRow(ctx, `
SELECT f_value
FROM t_metadata
WHERE f_key = $1`, key).Scan(&res)
	if err != nil && errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	return res, err
}
