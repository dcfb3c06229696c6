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

func TestNewHash(t *testing.T) {
	t.Parallel()

	dhash := "0123456789abcdef"
	grid := strings.Repeat("fedcba98", 6)

	tests := []struct {
		name string

		dhash string
		grid  string

		wantErr assert.ErrorAssertionFunc
	}{
		{
			name:    "valid components combine",
			dhash:   dhash,
			grid:    grid,
			wantErr: assert.NoError,
		},
		{
			name:    "short difference hash",
			dhash:   dhash[:15],
			grid:    grid,
			wantErr: assert.Error,
		},
		{
			name:    "short grid hash",
			dhash:   dhash,
			grid:    grid[:47],
			wantErr: assert.Error,
		},
		{
			name:    "uppercase hex rejected",
			dhash:   "0123456789ABCDEF",
			grid:    grid,
			wantErr: assert.Error,
		},
		{
			name:    "non-hex characters rejected",
			dhash:   "0123456789abcdeg",
			grid:    grid,
			wantErr: assert.Error,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			hash, err := dna.NewHash(test.dhash, test.grid)
			test.wantErr(t, err)
			if err != nil {
				return
			}

			assert.Equal(t, test.dhash, hash.DHash)
			assert.Equal(t, test.grid, hash.GridHash)
			assert.Equal(t, test.dhash+test.grid, hash.Hex)
		})
	}
}

func TestParseHex(t *testing.T) {
	t.Parallel()

	hex := strings.Repeat("1f", 32)

	hash, err := dna.ParseHex(hex)
	require.NoError(t, err)

	assert.Equal(t, hex[:dna.DHashHexLen], hash.DHash)
	assert.Equal(t, hex[dna.DHashHexLen:], hash.GridHash)
	assert.Equal(t, hex, hash.Hex)

	_, err = dna.ParseHex(hex[:63])
	assert.ErrorIs(t, err, dna.ErrMismatchedLength)

	_, err = dna.ParseHex(strings.Repeat("z", 64))
	assert.ErrorIs(t, err, dna.ErrInvalidCharacter)
}
