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
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/protracehq/protrace/models/dna"
	"github.com/protracehq/protrace/service/merkle"
)

// Codec converts between built accumulators and self-contained manifest
// documents, and between documents and their JSON transport form.
type Codec struct {
	validate *validator.Validate
}

// NewCodec creates a manifest codec with a shared document validator.
func NewCodec() *Codec {
	c := Codec{
		validate: validator.New(),
	}
	return &c
}

// Export produces the manifest document of a built tree, with proofs
// precomputed for every leaf index.
func (c *Codec) Export(tree *merkle.Tree) (*Document, error) {

	root, err := tree.RootHex()
	if err != nil {
		return nil, fmt.Errorf("could not get root: %w", err)
	}

	records := tree.Records()
	doc := Document{
		Root:        root,
		TotalLeaves: len(records),
		Leaves:      make([]Leaf, 0, len(records)),
		Proofs:      make(map[string][]ProofElement, len(records)),
	}

	for index, record := range records {
		doc.Leaves = append(doc.Leaves, Leaf{
			Index:      index,
			DNA:        record.DNA,
			Pointer:    record.Pointer,
			PlatformID: record.PlatformID,
			Timestamp:  record.Timestamp,
		})

		proof, err := tree.Proof(index)
		if err != nil {
			return nil, fmt.Errorf("could not get proof (index: %d): %w", index, err)
		}
		doc.Proofs[strconv.Itoa(index)] = FromProof(proof)
	}

	return &doc, nil
}

// Import rebuilds an accumulator from a manifest document by replaying its
// leaves in order, and checks the recomputed root against the document's
// claimed root. A mismatch means the document was tampered with or corrupted
// and surfaces as ErrRootMismatch, distinct from a malformed document.
func (c *Codec) Import(doc *Document) (*merkle.Tree, error) {

	err := c.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest document: %w", err)
	}

	tree := merkle.NewTree()
	for i, leaf := range doc.Leaves {
		if leaf.Index != i {
			return nil, fmt.Errorf("leaf index out of order (have: %d, want: %d)", leaf.Index, i)
		}
		tree.AddLeaf(dna.Record{
			DNA:        leaf.DNA,
			Pointer:    leaf.Pointer,
			PlatformID: leaf.PlatformID,
			Timestamp:  leaf.Timestamp,
		})
	}

	_, err = tree.Build()
	if err != nil {
		return nil, fmt.Errorf("could not build tree: %w", err)
	}

	root, _ := tree.RootHex()
	if root != doc.Root {
		return nil, fmt.Errorf("%w (have: %s, want: %s)", ErrRootMismatch, root, doc.Root)
	}

	return tree, nil
}

// Validate checks the structural integrity of a manifest document: field
// formats, the leaf count and the presence of a proof for every leaf.
func (c *Codec) Validate(doc *Document) error {

	err := c.validate.Struct(doc)
	if err != nil {
		return err
	}

	if doc.TotalLeaves != len(doc.Leaves) {
		return fmt.Errorf("leaf count mismatch (have: %d, want: %d)", len(doc.Leaves), doc.TotalLeaves)
	}

	for index := range doc.Leaves {
		_, ok := doc.Proofs[strconv.Itoa(index)]
		if !ok {
			return fmt.Errorf("missing proof for leaf %d", index)
		}
	}

	return nil
}

// Encode serializes a manifest document into its JSON transport form.
func (c *Codec) Encode(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Decode parses and validates a manifest document from its JSON transport
// form. Malformed JSON and invalid fields surface here; a root mismatch only
// surfaces on import.
func (c *Codec) Decode(data []byte) (*Document, error) {

	var doc Document
	err := json.Unmarshal(data, &doc)
	if err != nil {
		return nil, fmt.Errorf("could not decode manifest: %w", err)
	}

	err = c.Validate(&doc)
	if err != nil {
		return nil, fmt.Errorf("invalid manifest document: %w", err)
	}

	return &doc, nil
}
