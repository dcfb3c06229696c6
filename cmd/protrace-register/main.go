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
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/protracehq/protrace/codec/zbor"
	"github.com/protracehq/protrace/models/dna"
	"github.com/protracehq/protrace/models/registry"
	"github.com/protracehq/protrace/service/fingerprint"
	"github.com/protracehq/protrace/service/index"
	"github.com/protracehq/protrace/service/manifest"
	"github.com/protracehq/protrace/service/merkle"
	"github.com/protracehq/protrace/service/similarity"
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

	// Command line parameter initialization.
	var (
		flagInput     string
		flagIndex     string
		flagOutput    string
		flagPlatform  string
		flagLevel     string
		flagWorkers   int
		flagThreshold int
	)

	pflag.StringVarP(&flagInput, "input", "i", "", "path to directory with images to register")
	pflag.StringVarP(&flagIndex, "index", "d", "", "path to database directory for registry index")
	pflag.StringVarP(&flagOutput, "output", "o", "manifest.json", "path to output file for manifest document")
	pflag.StringVarP(&flagPlatform, "platform", "p", "local", "platform identifier for registered assets")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")
	pflag.IntVarP(&flagWorkers, "workers", "w", 0, "number of fingerprint workers, zero for one per CPU")
	pflag.IntVarP(&flagThreshold, "threshold", "t", similarity.DefaultThreshold, "maximum Hamming distance for duplicate warnings")

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

	if flagInput == "" {
		log.Error().Msg("missing path to input directory")
		return failure
	}

	// Collect the images from the input directory in a deterministic order.
	entries, err := os.ReadDir(flagInput)
	if err != nil {
		log.Error().Str("input", flagInput).Err(err).Msg("could not read input directory")
		return failure
	}
	var names []string
	images := make(map[string][]byte)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg", ".gif":
		default:
			continue
		}
		data, err := os.ReadFile(filepath.Join(flagInput, entry.Name()))
		if err != nil {
			log.Error().Str("image", entry.Name()).Err(err).Msg("could not read image")
			return failure
		}
		names = append(names, entry.Name())
		images[entry.Name()] = data
	}
	sort.Strings(names)
	if len(names) == 0 {
		log.Error().Str("input", flagInput).Msg("no images found in input directory")
		return failure
	}

	// Fingerprint the whole batch across the worker pool. Partial failures
	// abort the run; a commitment over a silently reduced batch would be
	// misleading.
	fingerprinter := fingerprint.New(log)
	hashes, err := fingerprinter.Batch(images, flagWorkers)
	if err != nil {
		log.Error().Err(err).Msg("could not fingerprint images")
		return failure
	}

	// Warn about near-duplicates within the batch before committing to them.
	ordered := make([]string, 0, len(names))
	for _, name := range names {
		ordered = append(ordered, hashes[name].Hex)
	}
	matches, err := similarity.FindDuplicatePairs(ordered, flagThreshold)
	if err != nil {
		log.Error().Err(err).Msg("could not scan batch for duplicates")
		return failure
	}
	for _, match := range matches {
		log.Warn().
			Str("first", names[match.I]).
			Str("second", names[match.J]).
			Int("distance", match.Distance).
			Msg("possible duplicate in batch")
	}

	// Accumulate the registrations and build the commitment.
	timestamp := time.Now().Unix()
	tree := merkle.NewTree()
	for _, name := range names {
		record := dna.Record{
			DNA:        hashes[name].Hex,
			Pointer:    uuid.NewString(),
			PlatformID: flagPlatform,
			Timestamp:  timestamp,
		}
		idx := tree.AddLeaf(record)
		log.Debug().Str("image", name).Str("pointer", record.Pointer).Int("index", idx).Msg("leaf added")
	}
	root, err := tree.Build()
	if err != nil {
		log.Error().Err(err).Msg("could not build commitment")
		return failure
	}

	codec := manifest.NewCodec()
	doc, err := codec.Export(tree)
	if err != nil {
		log.Error().Err(err).Msg("could not export manifest")
		return failure
	}
	data, err := codec.Encode(doc)
	if err != nil {
		log.Error().Err(err).Msg("could not encode manifest")
		return failure
	}
	err = os.WriteFile(flagOutput, data, 0644)
	if err != nil {
		log.Error().Str("output", flagOutput).Err(err).Msg("could not write manifest")
		return failure
	}

	// Publish the commitment into the registry index, if one was given.
	if flagIndex != "" {
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

		writer := index.NewWriter(db, storage.New(zbor.NewCodec()))
		err = writer.Commit(doc)
		if err != nil {
			log.Error().Err(err).Msg("could not publish manifest to index")
			return failure
		}
	}

	log.Info().
		Hex("root", root[:]).
		Int("leaves", doc.TotalLeaves).
		Int64("timestamp", timestamp).
		Str("manifest", flagOutput).
		Msg("registration batch committed")

	return success
}
