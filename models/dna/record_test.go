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

package dna_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protracehq/protrace/models/dna"
)

func TestRecordEncode(t *testing.T) {
	t.Parallel()

	record := dna.Record{
		DNA:        strings.Repeat("a", 64),
		Pointer:    "ptr0",
		PlatformID: "p",
		Timestamp:  1000,
	}

	want := strings.Repeat("a", 64) + "|ptr0|p|1000"
	assert.Equal(t, []byte(want), record.Encode())

	// Negative timestamps keep their sign in the canonical encoding.
	record.Timestamp = -5
	assert.Equal(t, []byte(strings.Repeat("a", 64)+"|ptr0|p|-5"), record.Encode())
}

func TestDecodeRecord(t *testing.T) {
	t.Parallel()

	original := dna.Record{
		DNA:        strings.Repeat("3", 64),
		Pointer:    "uuid:550e8400",
		PlatformID: "opensea",
		Timestamp:  1698765432,
	}

	decoded, err := dna.DecodeRecord(original.Encode())
	require.NoError(t, err)
	assert.Equal(t, original, decoded)

	_, err = dna.DecodeRecord([]byte("only|three|fields"))
	assert.Error(t, err)

	_, err = dna.DecodeRecord([]byte("a|b|c|not-a-number"))
	assert.Error(t, err)
}
