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

// Package rest implements the audit surface of the registry: fingerprinting
// uploads, retrieving published manifests and proofs, verifying inclusion
// proofs and scanning for duplicates.
package rest

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/protracehq/protrace/models/dna"
	"github.com/protracehq/protrace/models/registry"
	"github.com/protracehq/protrace/service/manifest"
	"github.com/protracehq/protrace/service/merkle"
	"github.com/protracehq/protrace/service/similarity"
)

// Store represents the registry index the controller reads from.
type Store interface {
	Latest() ([32]byte, error)
	Manifest(root [32]byte) (*manifest.Document, error)
	Fingerprints() ([]registry.Fingerprint, error)
}

// Fingerprinter represents something that can fingerprint raw image bytes.
type Fingerprinter interface {
	Fingerprint(data []byte) (dna.Hash, error)
}

// Controller handles the registry's REST requests.
type Controller struct {
	store         Store
	fingerprinter Fingerprinter
	codec         *manifest.Codec
}

// NewController creates a controller serving from the given store and
// fingerprinter.
func NewController(store Store, fingerprinter Fingerprinter) *Controller {

	c := Controller{
		store:         store,
		fingerprinter: fingerprinter,
		codec:         manifest.NewCodec(),
	}

	return &c
}

// Fingerprint computes the DNA fingerprint of the image uploaded as the
// request body.
func (c *Controller) Fingerprint(ctx echo.Context) error {

	data, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	if len(data) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "empty request body")
	}

	hash, err := c.fingerprinter.Fingerprint(data)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err)
	}

	return ctx.JSON(http.StatusOK, hash)
}

// Latest returns the root of the most recently published commitment.
func (c *Controller) Latest(ctx echo.Context) error {

	root, err := c.store.Latest()
	if errors.Is(err, registry.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	res := RootResponse{
		Root: hex.EncodeToString(root[:]),
	}

	return ctx.JSON(http.StatusOK, res)
}

// Manifest returns the manifest document published under the root given as
// path parameter.
func (c *Controller) Manifest(ctx echo.Context) error {

	root, err := parseRoot(ctx.Param("root"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	doc, err := c.store.Manifest(root)
	if errors.Is(err, registry.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	return ctx.JSON(http.StatusOK, doc)
}

// Proof returns the inclusion proof for one leaf index of a published
// commitment.
func (c *Controller) Proof(ctx echo.Context) error {

	root, err := parseRoot(ctx.Param("root"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil || index < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid leaf index")
	}

	doc, err := c.store.Manifest(root)
	if errors.Is(err, registry.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err)
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	proof, ok := doc.Proofs[strconv.Itoa(index)]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, fmt.Sprintf("no proof for leaf %d", index))
	}

	res := ProofResponse{
		Root:  doc.Root,
		Index: index,
		Proof: proof,
	}

	return ctx.JSON(http.StatusOK, res)
}

// Verify checks one leaf record and inclusion proof against a commitment
// root. An invalid proof is a normal response, not an error.
func (c *Controller) Verify(ctx echo.Context) error {

	var req VerifyRequest
	err := ctx.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	root, err := parseRoot(req.Root)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	proof, err := manifest.ToProof(req.Proof)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	record := dna.Record{
		DNA:        req.Record.DNA,
		Pointer:    req.Record.Pointer,
		PlatformID: req.Record.PlatformID,
		Timestamp:  req.Record.Timestamp,
	}

	res := VerifyResponse{
		Root:  req.Root,
		Valid: merkle.Verify(record.Encode(), proof, root),
	}

	return ctx.JSON(http.StatusOK, res)
}

// Duplicates scans all registered fingerprints for near-duplicates of the
// given DNA hash.
func (c *Controller) Duplicates(ctx echo.Context) error {

	var req DuplicatesRequest
	err := ctx.Bind(&req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}

	err = dna.ValidateHex(req.DNA, dna.HexLen)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err)
	}
	threshold := similarity.DefaultThreshold
	if req.Threshold != nil {
		if *req.Threshold < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "negative duplicate threshold")
		}
		threshold = *req.Threshold
	}

	fingerprints, err := c.store.Fingerprints()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err)
	}

	matches := make([]DuplicateMatch, 0)
	for _, fingerprint := range fingerprints {
		distance, err := similarity.HammingDistance(req.DNA, fingerprint.Hash.Hex)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err)
		}
		if distance > threshold {
			continue
		}
		matches = append(matches, DuplicateMatch{
			Pointer:    fingerprint.Pointer,
			Distance:   distance,
			Similarity: 1.0 - float64(distance)/float64(dna.Bits),
		})
	}

	res := DuplicatesResponse{
		Threshold: threshold,
		Matches:   matches,
	}

	return ctx.JSON(http.StatusOK, res)
}

func parseRoot(param string) ([32]byte, error) {
	var root [32]byte
	data, err := hex.DecodeString(param)
	if err != nil {
		return root, fmt.Errorf("could not decode root: %w", err)
	}
	if len(data) != 32 {
		return root, fmt.Errorf("invalid root length (have: %d, want: 32)", len(data))
	}
	copy(root[:], data)
	return root, nil
}
