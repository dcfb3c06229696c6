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

package registry

import (
	"github.com/protracehq/protrace/models/dna"
)

// Fingerprint associates a registered asset pointer with its DNA hash. It is
// the unit stored in the fingerprint index and scanned for duplicates.
type Fingerprint struct {
	Pointer string   `json:"pointer" cbor:"pointer"`
	Hash    dna.Hash `json:"hash" cbor:"hash"`
}
