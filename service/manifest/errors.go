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

package manifest

import (
	"errors"
)

// ErrRootMismatch is returned when the root recomputed from a manifest's
// leaves does not match the root the manifest claims. It indicates a
// tampered or corrupted document, as opposed to a merely malformed one or a
// single invalid proof.
var ErrRootMismatch = errors.New("manifest root mismatch")
