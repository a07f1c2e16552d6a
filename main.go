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

package main

import (
	"context"
	"fmt"
	"time"

	"net/http"

	// #nosec G108
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sealedbid/auctiond/services/auctiondb"
	memauctiondb "github.com/sealedbid/auctiond/services/auctiondb/mem"
	standardauctioneer "github.com/sealedbid/auctiond/services/auctioneer/standard"
	standardchaintime "github.com/sealedbid/auctiond/services/chaintime/standard"
	mockfhe "github.com/sealedbid/auctiond/services/fhe/mock"
	"github.com/sealedbid/auctiond/services/metrics"
	nullmetrics "github.com/sealedbid/auctiond/services/metrics/null"
	prometheusmetrics "github.com/sealedbid/auctiond/services/metrics/prometheus"
	standardoracle "github.com/sealedbid/auctiond/services/oracle/standard"
	"github.com/sealedbid/auctiond/util"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	majordomo "github.com/wealdtech/go-majordomo"
)

// ReleaseVersion is the release version for the code.
var ReleaseVersion = "0.1.2-dev"

func main() {
	os.Exit(main2())
}

func main2() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := fetchConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch configuration: %v\n", err)
		return 1
	}

	majordomoSvc, err := util.InitMajordomo(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise majordomo: %v\n", err)
		return 1
	}

	if err := initLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logging: %v\n", err)
		return 1
	}

	// runCommands will not return if a command is run.
	runCommands(ctx)

	logModules()
	log.Info().Str("version", ReleaseVersion).Msg("Starting auctiond")

	if err := initTracing(ctx, majordomoSvc); err != nil {
		log.Error().Err(err).Msg("Failed to initialise tracing")
		return 1
	}

	initProfiling()

	runtime.GOMAXPROCS(runtime.NumCPU() * 8)

	log.Trace().Msg("Starting metrics service")
	monitor, err := startMonitor(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to start metrics service")
		return 1
	}
	if err := registerMetrics(ctx, monitor); err != nil {
		log.Error().Err(err).Msg("Failed to register metrics")
		return 1
	}
	setRelease(ctx, ReleaseVersion)
	setReady(ctx, false)

	if err := startServices(ctx, monitor, majordomoSvc); err != nil {
		log.Error().Err(err).Msg("Failed to initialise services")
		return 1
	}
	setReady(ctx, true)

	log.Info().Msg("All services operational")

	// Wait for signal.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	for {
		sig := <-sigCh
		if sig == syscall.SIGINT || sig == syscall.SIGTERM || sig == os.Interrupt || sig == os.Kill {
			break
		}
	}

	log.Info().Msg("Stopping auctiond")

	return 0
}

// fetchConfig fetches configuration from various sources.
func fetchConfig() error {
	pflag.String("base-dir", "", "base directory for configuration files")
	pflag.Bool("version", false, "show version and exit")
	pflag.String("log-level", "info", "minimum level of messsages to log")
	pflag.String("log-file", "", "redirect log output to a file")
	pflag.String("profile-address", "", "Address on which to run Go profile server")
	pflag.String("tracing-address", "", "Address to which to send tracing data")
	pflag.String("instance", "", "Identifier for this auction engine instance")
	pflag.Duration("oracle.interval", 12*time.Second, "Interval between decryption oracle relay runs")
	pflag.Uint("auctiondb.max-connections", 32, "maximum number of concurrent database connections")
	pflag.Parse()
	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return errors.Wrap(err, "failed to bind pflags to viper")
	}

	if viper.GetString("base-dir") != "" {
		// User-defined base directory.
		viper.AddConfigPath(util.ResolvePath(""))
		viper.SetConfigName("auctiond")
	} else {
		// Home directory.
		home, err := homedir.Dir()
		if err != nil {
			return errors.Wrap(err, "failed to obtain home directory")
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".auctiond")
	}

	// Environment settings.
	viper.SetEnvPrefix("AUCTIOND")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// Defaults.
	viper.SetDefault("timeout", 60*time.Second)
	viper.SetDefault("process-concurrency", int64(runtime.GOMAXPROCS(-1)))
	viper.SetDefault("instance", "auctiond")
	viper.SetDefault("auctiondb.type", "postgresql")
	viper.SetDefault("oracle.interval", 12*time.Second)

	if err := viper.ReadInConfig(); err != nil {
		switch {
		case errors.As(err, &viper.ConfigFileNotFoundError{}):
			// It is allowable for auctiond to not have a configuration file, but only if
			// we have the information from elsewhere (e.g. environment variables).  Check
			// to see if we have an auction database configured, as if not we aren't going
			// to get very far anyway.
			if viper.Get("version") == nil &&
				viper.GetString("auctiondb.server") == "" &&
				viper.GetString("auctiondb.type") != "mem" {
				// Assume the underlying issue is that the configuration file is missing.
				return errors.Wrap(err, "could not find the configuration file")
			}
		case errors.As(err, &viper.ConfigParseError{}):
			return errors.Wrap(err, "could not parse the configuration file")
		default:
			return errors.Wrap(err, "failed to obtain configuration")
		}
	}

	return nil
}

func startMonitor(ctx context.Context) (metrics.Service, error) {
	var monitor metrics.Service
	if viper.Get("metrics.prometheus.listen-address") != nil {
		var err error
		monitor, err = prometheusmetrics.New(ctx,
			prometheusmetrics.WithLogLevel(util.LogLevel("metrics.prometheus")),
			prometheusmetrics.WithAddress(viper.GetString("metrics.prometheus.listen-address")),
		)
		if err != nil {
			return nil, errors.Wrap(err, "failed to start prometheus metrics service")
		}
		log.Info().
			Str("listen_address", viper.GetString("metrics.prometheus.listen-address")).
			Msg("Started prometheus metrics service")
	} else {
		log.Debug().Msg("No metrics service supplied; monitor not starting")
		monitor = &nullmetrics.Service{}
	}

	return monitor, nil
}

func startServices(ctx context.Context, monitor metrics.Service, majordomoSvc majordomo.Service) error {
	log.Trace().Msg("Starting auction database")
	auctionDB, err := startAuctionDB(ctx, majordomoSvc)
	if err != nil {
		return errors.Wrap(err, "failed to start auction database")
	}

	log.Trace().Msg("Starting homomorphic encryption service")
	encryptor, err := startEncryptor(ctx, majordomoSvc)
	if err != nil {
		return errors.Wrap(err, "failed to start homomorphic encryption service")
	}

	chainTime, err := standardchaintime.New(ctx,
		standardchaintime.WithLogLevel(util.LogLevel("chaintime")),
	)
	if err != nil {
		return errors.Wrap(err, "failed to start chain time service")
	}

	log.Trace().Msg("Starting auctioneer service")
	auctioneerSvc, err := standardauctioneer.New(ctx,
		standardauctioneer.WithLogLevel(util.LogLevel("auctioneer")),
		standardauctioneer.WithMonitor(monitor),
		standardauctioneer.WithInstance([]byte(viper.GetString("instance"))),
		standardauctioneer.WithChainTime(chainTime),
		standardauctioneer.WithEncryptor(encryptor),
		standardauctioneer.WithDecryptionVerifier(encryptor),
		standardauctioneer.WithAuctionsProvider(auctionDB.(auctiondb.AuctionsProvider)),
		standardauctioneer.WithAuctionsSetter(auctionDB.(auctiondb.AuctionsSetter)),
		standardauctioneer.WithBidsProvider(auctionDB.(auctiondb.BidsProvider)),
		standardauctioneer.WithBidsSetter(auctionDB.(auctiondb.BidsSetter)),
		standardauctioneer.WithDecryptionRequestsProvider(auctionDB.(auctiondb.DecryptionRequestsProvider)),
		standardauctioneer.WithDecryptionRequestsSetter(auctionDB.(auctiondb.DecryptionRequestsSetter)),
	)
	if err != nil {
		return errors.Wrap(err, "failed to create auctioneer service")
	}

	log.Trace().Msg("Starting decryption oracle service")
	if _, err := standardoracle.New(ctx,
		standardoracle.WithLogLevel(util.LogLevel("oracle")),
		standardoracle.WithMonitor(monitor),
		standardoracle.WithDecryptor(encryptor),
		standardoracle.WithDecryptionRequestsProvider(auctionDB.(auctiondb.DecryptionRequestsProvider)),
		standardoracle.WithSettler(auctioneerSvc),
		standardoracle.WithInterval(viper.GetDuration("oracle.interval")),
	); err != nil {
		return errors.Wrap(err, "failed to create decryption oracle service")
	}

	return nil
}

// startAuctionDB starts the auction database configured by auctiondb.type.
func startAuctionDB(ctx context.Context, majordomoSvc majordomo.Service) (auctiondb.Service, error) {
	switch viper.GetString("auctiondb.type") {
	case "mem":
		db, err := memauctiondb.New(ctx,
			memauctiondb.WithLogLevel(util.LogLevel("auctiondb")),
		)
		if err != nil {
			return nil, err
		}

		return db, nil
	case "postgresql":
		db, err := util.InitAuctionDB(ctx, majordomoSvc)
		if err != nil {
			return nil, err
		}

		return db, nil
	default:
		return nil, errors.Errorf("unknown auction database type %q", viper.GetString("auctiondb.type"))
	}
}

// startEncryptor starts the mock homomorphic encryption service.  The key
// material is fetched through majordomo when configured, otherwise the
// service generates an ephemeral key.
func startEncryptor(ctx context.Context, majordomoSvc majordomo.Service) (*mockfhe.Service, error) {
	opts := []mockfhe.Parameter{
		mockfhe.WithLogLevel(util.LogLevel("fhe")),
	}
	if viper.GetString("fhe.key") != "" {
		key, err := majordomoSvc.Fetch(ctx, viper.GetString("fhe.key"))
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch encryption key")
		}
		opts = append(opts, mockfhe.WithKey(key))
	}

	return mockfhe.New(ctx, opts...)
}

// initProfiling initialises the profiling server.
func initProfiling() {
	profileAddress := viper.GetString("profile-address")
	if profileAddress == "" {
		return
	}
	go func() {
		log.Info().Str("profile_address", profileAddress).Msg("Starting profile server")
		runtime.SetMutexProfileFraction(1)
		server := &http.Server{
			Addr:              profileAddress,
			ReadHeaderTimeout: 5 * time.Second,
		}
		if err := server.ListenAndServe(); err != nil {
			log.Warn().Str("profile_address", profileAddress).Err(err).Msg("Failed to run profile server")
		}
	}()
}

func logModules() {
	buildInfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Trace().Str("path", buildInfo.Path).Msg("Main package")
		for _, dep := range buildInfo.Deps {
			log := log.Trace()
			if dep.Replace == nil {
				log = log.Str("path", dep.Path).Str("version", dep.Version)
			} else {
				log = log.Str("path", dep.Replace.Path).Str("version", dep.Replace.Version)
			}
			log.Msg("Dependency")
		}
	}
}

func runCommands(_ context.Context) {
	if viper.GetBool("version") {
		fmt.Fprintf(os.Stdout, "%s\n", ReleaseVersion)
		//nolint:revive
		os.Exit(0)
	}
}
