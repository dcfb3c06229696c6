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

package fingerprint

// DefaultConfig is the configuration that produces canonical 256-bit
// fingerprints: an 8x8 difference hash over a 512-pixel center crop and a
// three-scale grid hash over a 1024-pixel center region.
var DefaultConfig = Config{
	HashSize: 8,
}

// Config holds the tunable parameters of the fingerprint pipeline. Changing
// the hash size changes the width of the difference hash component and makes
// fingerprints incomparable with default ones.
type Config struct {
	HashSize int
}

// Option modifies the fingerprinter configuration.
type Option func(*Config)

// WithHashSize sets the edge length of the difference hash grid. The
// difference hash produces HashSize squared bits. Only the default size
// yields the 64-bit component of a combined DNA fingerprint; other sizes
// serve standalone difference hashing through the DHash method, and the
// Fingerprint method rejects them.
func WithHashSize(size int) Option {
	return func(cfg *Config) {
		cfg.HashSize = size
	}
}
