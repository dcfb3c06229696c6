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

package zbor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protracehq/protrace/codec/zbor"
	"github.com/protracehq/protrace/models/dna"
)

func TestCodecRoundTrip(t *testing.T) {
	t.Parallel()

	codec := zbor.NewCodec()

	original := dna.Record{
		DNA:        strings.Repeat("a7", 32),
		Pointer:    "asset-42",
		PlatformID: "opensea",
		Timestamp:  1698765432,
	}

	data, err := codec.Marshal(original)
	require.NoError(t, err)

	var decoded dna.Record
	err = codec.Unmarshal(data, &decoded)
	require.NoError(t, err)

	assert.Equal(t, original, decoded)
}

func TestCodecMarshalDeterministic(t *testing.T) {
	t.Parallel()

	codec := zbor.NewCodec()

	value := map[string]uint64{"b": 2, "a": 1, "c": 3}

	first, err := codec.Marshal(value)
	require.NoError(t, err)
	second, err := codec.Marshal(value)
	require.NoError(t, err)

	// Canonical encoding keeps the compressed payload byte-stable.
	assert.Equal(t, first, second)
}

func TestCodecUnmarshalInvalid(t *testing.T) {
	t.Parallel()

	codec := zbor.NewCodec()

	var out dna.Record
	err := codec.Unmarshal([]byte{0x00, 0x01, 0x02}, &out)
	assert.Error(t, err)
}
