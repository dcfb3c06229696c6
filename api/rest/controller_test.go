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

package rest_test

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/protracehq/protrace/api/rest"
	"github.com/protracehq/protrace/models/dna"
	"github.com/protracehq/protrace/models/registry"
	"github.com/protracehq/protrace/service/manifest"
	"github.com/protracehq/protrace/service/merkle"
)

func TestControllerLatest(t *testing.T) {
	t.Parallel()

	t.Run("returns latest root", func(t *testing.T) {
		t.Parallel()

		store := testStore(t, 3)
		ctrl := rest.NewController(store, &mockFingerprinter{})

		rec, ctx := testContext(http.MethodGet, "/roots/latest", nil)
		require.NoError(t, ctrl.Latest(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var res rest.RootResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, store.doc.Root, res.Root)
	})

	t.Run("empty registry is not found", func(t *testing.T) {
		t.Parallel()

		ctrl := rest.NewController(&mockStore{}, &mockFingerprinter{})

		_, ctx := testContext(http.MethodGet, "/roots/latest", nil)
		err := ctrl.Latest(ctx)
		assertHTTPError(t, err, http.StatusNotFound)
	})
}

func TestControllerManifest(t *testing.T) {
	t.Parallel()

	store := testStore(t, 3)
	ctrl := rest.NewController(store, &mockFingerprinter{})

	t.Run("returns published manifest", func(t *testing.T) {
		t.Parallel()

		rec, ctx := testContext(http.MethodGet, "/", nil)
		ctx.SetParamNames("root")
		ctx.SetParamValues(store.doc.Root)

		require.NoError(t, ctrl.Manifest(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var doc manifest.Document
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
		assert.Equal(t, store.doc.Root, doc.Root)
		assert.Len(t, doc.Leaves, 3)
	})

	t.Run("malformed root is a bad request", func(t *testing.T) {
		t.Parallel()

		_, ctx := testContext(http.MethodGet, "/", nil)
		ctx.SetParamNames("root")
		ctx.SetParamValues("zz")

		err := ctrl.Manifest(ctx)
		assertHTTPError(t, err, http.StatusBadRequest)
	})

	t.Run("unknown root is not found", func(t *testing.T) {
		t.Parallel()

		_, ctx := testContext(http.MethodGet, "/", nil)
		ctx.SetParamNames("root")
		ctx.SetParamValues(strings.Repeat("0", 64))

		err := ctrl.Manifest(ctx)
		assertHTTPError(t, err, http.StatusNotFound)
	})
}

func TestControllerProof(t *testing.T) {
	t.Parallel()

	store := testStore(t, 3)
	ctrl := rest.NewController(store, &mockFingerprinter{})

	t.Run("returns proof for leaf", func(t *testing.T) {
		t.Parallel()

		rec, ctx := testContext(http.MethodGet, "/", nil)
		ctx.SetParamNames("root", "index")
		ctx.SetParamValues(store.doc.Root, "1")

		require.NoError(t, ctrl.Proof(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var res rest.ProofResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, store.doc.Root, res.Root)
		assert.Equal(t, 1, res.Index)
		assert.Equal(t, store.doc.Proofs["1"], res.Proof)
	})

	t.Run("leaf index out of range is not found", func(t *testing.T) {
		t.Parallel()

		_, ctx := testContext(http.MethodGet, "/", nil)
		ctx.SetParamNames("root", "index")
		ctx.SetParamValues(store.doc.Root, "9")

		err := ctrl.Proof(ctx)
		assertHTTPError(t, err, http.StatusNotFound)
	})

	t.Run("negative leaf index is a bad request", func(t *testing.T) {
		t.Parallel()

		_, ctx := testContext(http.MethodGet, "/", nil)
		ctx.SetParamNames("root", "index")
		ctx.SetParamValues(store.doc.Root, "-1")

		err := ctrl.Proof(ctx)
		assertHTTPError(t, err, http.StatusBadRequest)
	})
}

func TestControllerVerify(t *testing.T) {
	t.Parallel()

	store := testStore(t, 3)
	ctrl := rest.NewController(store, &mockFingerprinter{})

	t.Run("valid proof verifies", func(t *testing.T) {
		t.Parallel()

		req := rest.VerifyRequest{
			Root:   store.doc.Root,
			Record: store.doc.Leaves[0],
			Proof:  store.doc.Proofs["0"],
		}

		rec, ctx := testContext(http.MethodPost, "/verify", req)
		require.NoError(t, ctrl.Verify(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var res rest.VerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.True(t, res.Valid)
	})

	t.Run("tampered record fails verification without error", func(t *testing.T) {
		t.Parallel()

		record := store.doc.Leaves[0]
		record.Pointer = "someone-else"
		req := rest.VerifyRequest{
			Root:   store.doc.Root,
			Record: record,
			Proof:  store.doc.Proofs["0"],
		}

		rec, ctx := testContext(http.MethodPost, "/verify", req)
		require.NoError(t, ctrl.Verify(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var res rest.VerifyResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.False(t, res.Valid)
	})

	t.Run("malformed proof is a bad request", func(t *testing.T) {
		t.Parallel()

		req := rest.VerifyRequest{
			Root:   store.doc.Root,
			Record: store.doc.Leaves[0],
			Proof:  []manifest.ProofElement{{Hash: "zz", Position: "left"}},
		}

		_, ctx := testContext(http.MethodPost, "/verify", req)
		err := ctrl.Verify(ctx)
		assertHTTPError(t, err, http.StatusBadRequest)
	})
}

func TestControllerDuplicates(t *testing.T) {
	t.Parallel()

	store := testStore(t, 3)
	ctrl := rest.NewController(store, &mockFingerprinter{})

	t.Run("exact match is reported", func(t *testing.T) {
		t.Parallel()

		req := rest.DuplicatesRequest{
			DNA:       store.doc.Leaves[1].DNA,
			Threshold: intPtr(1),
		}

		rec, ctx := testContext(http.MethodPost, "/duplicates", req)
		require.NoError(t, ctrl.Duplicates(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var res rest.DuplicatesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 1, res.Threshold)
		require.Len(t, res.Matches, 1)
		assert.Equal(t, store.doc.Leaves[1].Pointer, res.Matches[0].Pointer)
		assert.Equal(t, 0, res.Matches[0].Distance)
		assert.Equal(t, 1.0, res.Matches[0].Similarity)
	})

	t.Run("explicit zero threshold scans exact duplicates only", func(t *testing.T) {
		t.Parallel()

		req := rest.DuplicatesRequest{
			DNA:       store.doc.Leaves[1].DNA,
			Threshold: intPtr(0),
		}

		rec, ctx := testContext(http.MethodPost, "/duplicates", req)
		require.NoError(t, ctrl.Duplicates(ctx))

		var res rest.DuplicatesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 0, res.Threshold)
		require.Len(t, res.Matches, 1)
		assert.Equal(t, 0, res.Matches[0].Distance)
	})

	t.Run("absent threshold selects the default", func(t *testing.T) {
		t.Parallel()

		req := rest.DuplicatesRequest{
			DNA: strings.Repeat("0", 64),
		}

		rec, ctx := testContext(http.MethodPost, "/duplicates", req)
		require.NoError(t, ctrl.Duplicates(ctx))

		var res rest.DuplicatesResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, 26, res.Threshold)
	})

	t.Run("negative threshold is a bad request", func(t *testing.T) {
		t.Parallel()

		req := rest.DuplicatesRequest{
			DNA:       strings.Repeat("0", 64),
			Threshold: intPtr(-1),
		}

		_, ctx := testContext(http.MethodPost, "/duplicates", req)
		err := ctrl.Duplicates(ctx)
		assertHTTPError(t, err, http.StatusBadRequest)
	})

	t.Run("invalid fingerprint is a bad request", func(t *testing.T) {
		t.Parallel()

		req := rest.DuplicatesRequest{
			DNA: "short",
		}

		_, ctx := testContext(http.MethodPost, "/duplicates", req)
		err := ctrl.Duplicates(ctx)
		assertHTTPError(t, err, http.StatusBadRequest)
	})
}

func TestControllerFingerprint(t *testing.T) {
	t.Parallel()

	hash, err := dna.ParseHex(strings.Repeat("4", 64))
	require.NoError(t, err)
	ctrl := rest.NewController(&mockStore{}, &mockFingerprinter{hash: hash})

	t.Run("returns fingerprint of uploaded image", func(t *testing.T) {
		t.Parallel()

		rec, ctx := testRawContext(http.MethodPost, "/fingerprints", []byte("image-bytes"))
		require.NoError(t, ctrl.Fingerprint(ctx))
		assert.Equal(t, http.StatusOK, rec.Code)

		var res dna.Hash
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
		assert.Equal(t, hash, res)
	})

	t.Run("empty body is a bad request", func(t *testing.T) {
		t.Parallel()

		_, ctx := testRawContext(http.MethodPost, "/fingerprints", nil)
		err := ctrl.Fingerprint(ctx)
		assertHTTPError(t, err, http.StatusBadRequest)
	})

	t.Run("undecodable image is unprocessable", func(t *testing.T) {
		t.Parallel()

		broken := rest.NewController(&mockStore{}, &mockFingerprinter{err: fmt.Errorf("bad image")})
		_, ctx := testRawContext(http.MethodPost, "/fingerprints", []byte("garbage"))
		err := broken.Fingerprint(ctx)
		assertHTTPError(t, err, http.StatusUnprocessableEntity)
	})
}

type mockStore struct {
	doc *manifest.Document
}

func (m *mockStore) Latest() ([32]byte, error) {
	if m.doc == nil {
		return [32]byte{}, registry.ErrNotFound
	}
	var root [32]byte
	data, _ := hex.DecodeString(m.doc.Root)
	copy(root[:], data)
	return root, nil
}

func (m *mockStore) Manifest(root [32]byte) (*manifest.Document, error) {
	if m.doc == nil || m.doc.Root != hex.EncodeToString(root[:]) {
		return nil, registry.ErrNotFound
	}
	return m.doc, nil
}

func (m *mockStore) Fingerprints() ([]registry.Fingerprint, error) {
	if m.doc == nil {
		return nil, nil
	}
	fingerprints := make([]registry.Fingerprint, 0, len(m.doc.Leaves))
	for _, leaf := range m.doc.Leaves {
		hash, err := dna.ParseHex(leaf.DNA)
		if err != nil {
			return nil, err
		}
		fingerprints = append(fingerprints, registry.Fingerprint{
			Pointer: leaf.Pointer,
			Hash:    hash,
		})
	}
	return fingerprints, nil
}

type mockFingerprinter struct {
	hash dna.Hash
	err  error
}

func (m *mockFingerprinter) Fingerprint([]byte) (dna.Hash, error) {
	return m.hash, m.err
}

func testStore(t *testing.T, n int) *mockStore {
	t.Helper()

	tree := merkle.NewTree()
	for i := 0; i < n; i++ {
		tree.AddLeaf(dna.Record{
			DNA:        strings.Repeat(fmt.Sprintf("%x", i+5), 64),
			Pointer:    fmt.Sprintf("asset-%d", i),
			PlatformID: "platform",
			Timestamp:  int64(1700000000 + i),
		})
	}
	_, err := tree.Build()
	require.NoError(t, err)

	doc, err := manifest.NewCodec().Export(tree)
	require.NoError(t, err)

	return &mockStore{doc: doc}
}

func testContext(method string, target string, payload interface{}) (*httptest.ResponseRecorder, echo.Context) {

	var body []byte
	if payload != nil {
		body, _ = json.Marshal(payload)
	}

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	return rec, echo.New().NewContext(req, rec)
}

func testRawContext(method string, target string, body []byte) (*httptest.ResponseRecorder, echo.Context) {

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEOctetStream)
	rec := httptest.NewRecorder()

	return rec, echo.New().NewContext(req, rec)
}

func intPtr(i int) *int {
	return &i
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, code, httpErr.Code)
}
