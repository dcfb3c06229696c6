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

package rest

import (
	"github.com/protracehq/protrace/service/manifest"
)

// VerifyRequest asks to check one registration record and inclusion proof
// against a commitment root.
type VerifyRequest struct {
	Root   string                  `json:"root"`
	Record manifest.Leaf           `json:"record"`
	Proof  []manifest.ProofElement `json:"proof"`
}

// DuplicatesRequest asks for all registered assets within the given Hamming
// distance of a DNA fingerprint. An absent threshold selects the default;
// an explicit zero requests exact duplicates only.
type DuplicatesRequest struct {
	DNA       string `json:"dna_hex"`
	Threshold *int   `json:"threshold,omitempty"`
}
