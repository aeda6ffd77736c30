// Copyright 2025 The caselens Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"github.com/mus-format/mus-go/ord"

	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/tfidf"
	"github.com/caselens/caselens/vector"
)

var stringSliceSer = ord.NewSliceSer[string](ord.String)

// MarshalCase serializes a Case to bytes.
func MarshalCase(c *core.Case) []byte {
	buf := make([]byte, core.CaseMUS.Size(*c))
	core.CaseMUS.Marshal(*c, buf)
	return buf
}

// UnmarshalCase deserializes a Case from bytes.
func UnmarshalCase(data []byte) (*core.Case, error) {
	c, _, err := core.CaseMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MarshalCaseOrder serializes the ordered case-id list to bytes.
func MarshalCaseOrder(ids []string) []byte {
	buf := make([]byte, stringSliceSer.Size(ids))
	stringSliceSer.Marshal(ids, buf)
	return buf
}

// UnmarshalCaseOrder deserializes the ordered case-id list from bytes.
func UnmarshalCaseOrder(data []byte) ([]string, error) {
	ids, _, err := stringSliceSer.Unmarshal(data)
	return ids, err
}

// MarshalDenseRow serializes a dense embedding row to bytes.
func MarshalDenseRow(row []float32) []byte {
	buf := make([]byte, core.Float32SliceMUS.Size(row))
	core.Float32SliceMUS.Marshal(row, buf)
	return buf
}

// UnmarshalDenseRow deserializes a dense embedding row from bytes.
func UnmarshalDenseRow(data []byte) ([]float32, error) {
	row, _, err := core.Float32SliceMUS.Unmarshal(data)
	return row, err
}

// MarshalSparseRow serializes a sparse matrix row to bytes.
func MarshalSparseRow(row vector.Sparse) []byte {
	buf := make([]byte, core.Int32SliceMUS.Size(row.Indices)+core.Float32SliceMUS.Size(row.Values))
	n := core.Int32SliceMUS.Marshal(row.Indices, buf)
	core.Float32SliceMUS.Marshal(row.Values, buf[n:])
	return buf
}

// UnmarshalSparseRow deserializes a sparse matrix row from bytes.
func UnmarshalSparseRow(data []byte) (vector.Sparse, error) {
	indices, n, err := core.Int32SliceMUS.Unmarshal(data)
	if err != nil {
		return vector.Sparse{}, err
	}
	values, _, err := core.Float32SliceMUS.Unmarshal(data[n:])
	if err != nil {
		return vector.Sparse{}, err
	}
	return vector.Sparse{Indices: indices, Values: values}, nil
}

// MarshalVectorizer serializes the TF-IDF vectorizer artifact to bytes.
func MarshalVectorizer(v *tfidf.Vectorizer) []byte {
	buf := make([]byte, tfidf.VectorizerMUS.Size(*v))
	tfidf.VectorizerMUS.Marshal(*v, buf)
	return buf
}

// UnmarshalVectorizer deserializes the TF-IDF vectorizer artifact from bytes.
func UnmarshalVectorizer(data []byte) (*tfidf.Vectorizer, error) {
	v, _, err := tfidf.VectorizerMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// MarshalSpaceMetadata serializes embedding-space metadata to bytes.
func MarshalSpaceMetadata(m *core.SpaceMetadata) []byte {
	buf := make([]byte, core.SpaceMetadataMUS.Size(*m))
	core.SpaceMetadataMUS.Marshal(*m, buf)
	return buf
}

// UnmarshalSpaceMetadata deserializes embedding-space metadata from bytes.
func UnmarshalSpaceMetadata(data []byte) (*core.SpaceMetadata, error) {
	m, _, err := core.SpaceMetadataMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
