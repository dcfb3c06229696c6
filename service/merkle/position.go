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
	"fmt"
)

// Position states on which side a proof sibling sits relative to the node
// being proven at that level.
type Position uint8

const (
	Left Position = iota
	Right
)

// String returns the lowercase transport tag for the position.
func (p Position) String() string {
	switch p {
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(p))
	}
}

// ParsePosition converts a transport tag back into a position. Only the two
// lowercase tags are valid; anything else is a caller error.
func ParsePosition(tag string) (Position, error) {
	switch tag {
	case "left":
		return Left, nil
	case "right":
		return Right, nil
	default:
		return 0, fmt.Errorf("invalid position tag: %q", tag)
	}
}
