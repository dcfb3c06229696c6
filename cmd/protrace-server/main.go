// Copyright 2023 ProTrace Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/protracehq/protrace/api/rest"
	"github.com/protracehq/protrace/codec/zbor"
	"github.com/protracehq/protrace/models/registry"
	"github.com/protracehq/protrace/service/fingerprint"
	"github.com/protracehq/protrace/service/index"
	"github.com/protracehq/protrace/service/storage"
)

const (
	success = 0
	failure = 1
)

func main() {
	os.Exit(run())
}

func run() int {

	// Signal catching for clean shutdown.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)

	// Command line parameter initialization.
	var (
		flagIndex string
		flagLevel string
		flagPort  uint16
	)

	pflag.StringVarP(&flagIndex, "index", "i", "index", "path to database directory for registry index")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.Uint16VarP(&flagPort, "port", "p", 8080, "port to host registry API on")

	pflag.Parse()

	// Logger initialization.
	zerolog.TimestampFunc = func() time.Time { return time.Now().UTC() }
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(zerolog.DebugLevel)
	level, err := zerolog.ParseLevel(flagLevel)
	if err != nil {
		log.Error().Str("level", flagLevel).Err(err).Msg("could not parse log level")
		return failure
	}
	log = log.Level(level)

	// Open the index database.
	db, err := badger.Open(registry.DefaultOptions(flagIndex))
	if err != nil {
		log.Error().Str("index", flagIndex).Err(err).Msg("could not open index database")
		return failure
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log.Error().Err(err).Msg("could not close index database")
		}
	}()

	// Registry API initialization.
	reader := index.NewReader(db, storage.New(zbor.NewCodec()))
	fingerprinter := fingerprint.New(log)
	ctrl := rest.NewController(reader, fingerprinter)
	svr := rest.API(ctrl, log)

	// This section launches the main executing components in their own
	// goroutine, so they can run concurrently. Afterwards, we wait for an
	// interrupt signal in order to proceed with the next section.
	go func() {
		log.Info().Msg("ProTrace registry server starting")
		err := svr.Start(fmt.Sprintf(":%d", flagPort))
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("registry server encountered error")
		}
		log.Info().Msg("ProTrace registry server stopped")
	}()

	<-sig
	log.Info().Msg("ProTrace registry server stopping")
	go func() {
		<-sig
		log.Warn().Msg("forcing exit")
		os.Exit(1)
	}()

	// The following code starts a shut down with a certain timeout and makes
	// sure that the main executing component shuts down within the allocated
	// shutdown time. Otherwise, we will force the shutdown and log an error.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err = svr.Shutdown(ctx)
	if err != nil {
		log.Error().Err(err).Msg("could not shut down registry server")
	}

	return success
}
