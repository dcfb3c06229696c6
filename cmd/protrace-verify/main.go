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
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"

	"github.com/protracehq/protrace/models/dna"
	"github.com/protracehq/protrace/service/manifest"
	"github.com/protracehq/protrace/service/merkle"
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
		flagManifest string
		flagLevel    string
	)

	pflag.StringVarP(&flagManifest, "manifest", "m", "manifest.json", "path to manifest document to audit")
	pflag.StringVarP(&flagLevel, "level", "l", "info", "log output level")

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

	data, err := os.ReadFile(flagManifest)
	if err != nil {
		log.Error().Str("manifest", flagManifest).Err(err).Msg("could not read manifest")
		return failure
	}

	codec := manifest.NewCodec()
	doc, err := codec.Decode(data)
	if err != nil {
		log.Error().Err(err).Msg("malformed manifest document")
		return failure
	}

	// Rebuilding the tree from the leaves checks the claimed root; this is
	// the integrity check that distinguishes a tampered manifest from a
	// single invalid proof.
	tree, err := codec.Import(doc)
	if err != nil {
		if errors.Is(err, manifest.ErrRootMismatch) {
			log.Error().Err(err).Msg("manifest failed integrity check")
			return failure
		}
		log.Error().Err(err).Msg("could not import manifest")
		return failure
	}
	root, err := tree.Root()
	if err != nil {
		log.Error().Err(err).Msg("could not get root")
		return failure
	}

	// Audit the precomputed proof of every leaf against the root.
	invalid := 0
	for _, leaf := range doc.Leaves {
		proof, err := manifest.ToProof(doc.Proofs[strconv.Itoa(leaf.Index)])
		if err != nil {
			log.Error().Int("index", leaf.Index).Err(err).Msg("could not decode proof")
			return failure
		}
		record := dna.Record{
			DNA:        leaf.DNA,
			Pointer:    leaf.Pointer,
			PlatformID: leaf.PlatformID,
			Timestamp:  leaf.Timestamp,
		}
		if !merkle.Verify(record.Encode(), proof, root) {
			log.Warn().Int("index", leaf.Index).Str("pointer", leaf.Pointer).Msg("invalid proof")
			invalid++
		}
	}

	if invalid > 0 {
		log.Error().Int("invalid", invalid).Int("total", doc.TotalLeaves).Msg("audit failed")
		return failure
	}

	log.Info().Str("root", doc.Root).Int("leaves", doc.TotalLeaves).Msg("audit passed")

	return success
}
