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
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	zerologger "github.com/rs/zerolog/log"
	"github.com/sealedbid/auctiond/util"
	"github.com/spf13/viper"
)

// log is the global logger.
var log zerolog.Logger

// initLogging initialises logging.
func initLogging() error {
	// We set the global logging level to trace, as individual modules alter
	// their own logging level as appropriate.
	zerolog.SetGlobalLevel(zerolog.TraceLevel)

	if viper.GetString("log-file") != "" {
		file, err := os.OpenFile(util.ResolvePath(viper.GetString("log-file")), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return errors.Wrap(err, "failed to open log file")
		}
		zerologger.Logger = zerologger.Logger.Output(file)
	}

	log = zerologger.With().Logger().Level(util.LogLevel(""))

	return nil
}
