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

// Package fingerprint derives 256-bit perceptual DNA fingerprints from image
// bytes. The pipeline is deterministic: identical input bytes always yield
// an identical fingerprint, regardless of image size or aspect ratio, thanks
// to the crop and pad normalization steps. The only failure mode is image
// data that cannot be decoded.
package fingerprint

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/protracehq/protrace/models/dna"
)

// Fingerprinter computes DNA fingerprints for images. It is stateless after
// construction and safe for concurrent use.
type Fingerprinter struct {
	log zerolog.Logger
	cfg Config
}

// New creates a fingerprinter with the given options applied on top of the
// default configuration.
func New(log zerolog.Logger, options ...Option) *Fingerprinter {

	cfg := DefaultConfig
	for _, option := range options {
		option(&cfg)
	}

	f := Fingerprinter{
		log: log.With().Str("component", "fingerprinter").Logger(),
		cfg: cfg,
	}

	return &f
}

// Fingerprint decodes the given image bytes and computes the combined
// 256-bit DNA fingerprint.
func (f *Fingerprinter) Fingerprint(data []byte) (dna.Hash, error) {

	// Combined fingerprints have a fixed layout, so only the default
	// difference hash size can contribute to one.
	if f.cfg.HashSize != DefaultConfig.HashSize {
		return dna.Hash{}, fmt.Errorf("combined fingerprints require hash size %d (have: %d)", DefaultConfig.HashSize, f.cfg.HashSize)
	}

	img, err := decodeImage(data)
	if err != nil {
		return dna.Hash{}, fmt.Errorf("could not decode image: %w", err)
	}

	dhash := f.DHash(img)
	gridHash := f.GridHash(img)

	hash, err := dna.NewHash(dhash, gridHash)
	if err != nil {
		return dna.Hash{}, fmt.Errorf("could not combine hashes: %w", err)
	}

	f.log.Debug().
		Str("dna", hash.Hex).
		Int("size", len(data)).
		Msg("image fingerprinted")

	return hash, nil
}

// Batch fingerprints a set of images concurrently across a worker pool. It
// returns the fingerprints of all images that could be processed; failures
// are collected per image and returned as a combined error alongside the
// successful results.
func (f *Fingerprinter) Batch(images map[string][]byte, workers int) (map[string]dna.Hash, error) {

	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var mutex sync.Mutex
	var errs error
	results := make(map[string]dna.Hash, len(images))

	var group errgroup.Group
	group.SetLimit(workers)
	for name, data := range images {
		name, data := name, data
		group.Go(func() error {
			hash, err := f.Fingerprint(data)
			mutex.Lock()
			defer mutex.Unlock()
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
				return nil
			}
			results[name] = hash
			return nil
		})
	}
	_ = group.Wait()

	return results, errs
}
