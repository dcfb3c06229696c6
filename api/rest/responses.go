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

// RootResponse carries a single commitment root.
type RootResponse struct {
	Root string `json:"root"`
}

// ProofResponse carries the inclusion proof for one leaf of a commitment.
type ProofResponse struct {
	Root  string                  `json:"root"`
	Index int                     `json:"index"`
	Proof []manifest.ProofElement `json:"proof"`
}

// VerifyResponse reports the outcome of a proof verification.
type VerifyResponse struct {
	Root  string `json:"root"`
	Valid bool   `json:"valid"`
}

// DuplicateMatch is one registered asset within the duplicate threshold of
// the queried fingerprint.
type DuplicateMatch struct {
	Pointer    string  `json:"pointer"`
	Distance   int     `json:"distance"`
	Similarity float64 `json:"similarity"`
}

// DuplicatesResponse lists all duplicate matches for a queried fingerprint.
type DuplicatesResponse struct {
	Threshold int              `json:"threshold"`
	Matches   []DuplicateMatch `json:"matches"`
}
