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

package merkle

import (
	"errors"
)

var (
	// ErrNoLeaves is returned when building a tree without any leaves. An
	// empty tree has no meaningful root, so this is a usage error rather
	// than a valid empty-root state.
	ErrNoLeaves = errors.New("tree has no leaves")

	// ErrNotBuilt is returned when requesting the root or a proof before
	// the tree has been built.
	ErrNotBuilt = errors.New("tree not built")

	// ErrIndexOutOfRange is returned when requesting a proof or leaf with
	// an index outside the tree's leaf list.
	ErrIndexOutOfRange = errors.New("leaf index out of range")
)
