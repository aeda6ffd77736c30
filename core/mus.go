package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the storage layer. The artifact schema is
// small and changes rarely, so the codecs are maintained by hand instead of
// generated. Field order is the struct declaration order; changing either is
// a breaking change for existing databases.
var (
	// KeyMUS serializes storage keys.
	KeyMUS = keySer{}
	// CaseMUS serializes case records.
	CaseMUS = caseSer{}
	// SpaceMetadataMUS serializes embedding-space metadata.
	SpaceMetadataMUS = spaceMetadataSer{}

	stringSliceSer = ord.NewSliceSer[string](ord.String)

	// Float32SliceMUS serializes dense embedding rows.
	Float32SliceMUS = ord.NewSliceSer[float32](raw.Float32)
	// Int32SliceMUS serializes sparse row index lists.
	Int32SliceMUS = ord.NewSliceSer[int32](varint.Int32)
)

type keySer struct{}

func (keySer) Marshal(k Key, bs []byte) int {
	return varint.Uint64.Marshal(uint64(k), bs)
}

func (keySer) Unmarshal(bs []byte) (Key, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return Key(v), n, err
}

func (keySer) Size(k Key) int {
	return varint.Uint64.Size(uint64(k))
}

type caseSer struct{}

func (caseSer) Marshal(c Case, bs []byte) (n int) {
	n = ord.String.Marshal(c.ID, bs)
	n += ord.String.Marshal(c.URL, bs[n:])
	n += ord.String.Marshal(c.Title, bs[n:])
	n += ord.String.Marshal(c.Diagnosis, bs[n:])
	n += ord.String.Marshal(c.History, bs[n:])
	n += ord.String.Marshal(c.Exam, bs[n:])
	n += ord.String.Marshal(c.Findings, bs[n:])
	n += ord.String.Marshal(c.Treatment, bs[n:])
	n += ord.String.Marshal(c.Discussion, bs[n:])
	n += ord.String.Marshal(c.DifferentialDiagnosis, bs[n:])
	n += varint.Int.Marshal(c.PatientAge, bs[n:])
	n += ord.String.Marshal(c.Gender, bs[n:])
	n += stringSliceSer.Marshal(c.Modalities, bs[n:])
	n += stringSliceSer.Marshal(c.Regions, bs[n:])
	n += varint.Int.Marshal(c.WordCount, bs[n:])
	n += varint.Int.Marshal(c.ImageCount, bs[n:])
	n += stringSliceSer.Marshal(c.ImagePaths, bs[n:])
	n += ord.String.Marshal(c.CaseFolder, bs[n:])
	n += ord.String.Marshal(c.Thumbnail, bs[n:])
	return n
}

func (caseSer) Unmarshal(bs []byte) (c Case, n int, err error) {
	var n1 int
	if c.ID, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if c.URL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Diagnosis, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.History, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Exam, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Findings, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Treatment, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Discussion, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.DifferentialDiagnosis, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.PatientAge, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Gender, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Modalities, n1, err = stringSliceSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Regions, n1, err = stringSliceSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.WordCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.ImageCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.ImagePaths, n1, err = stringSliceSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.CaseFolder, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if c.Thumbnail, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (caseSer) Size(c Case) (size int) {
	size = ord.String.Size(c.ID)
	size += ord.String.Size(c.URL)
	size += ord.String.Size(c.Title)
	size += ord.String.Size(c.Diagnosis)
	size += ord.String.Size(c.History)
	size += ord.String.Size(c.Exam)
	size += ord.String.Size(c.Findings)
	size += ord.String.Size(c.Treatment)
	size += ord.String.Size(c.Discussion)
	size += ord.String.Size(c.DifferentialDiagnosis)
	size += varint.Int.Size(c.PatientAge)
	size += ord.String.Size(c.Gender)
	size += stringSliceSer.Size(c.Modalities)
	size += stringSliceSer.Size(c.Regions)
	size += varint.Int.Size(c.WordCount)
	size += varint.Int.Size(c.ImageCount)
	size += stringSliceSer.Size(c.ImagePaths)
	size += ord.String.Size(c.CaseFolder)
	size += ord.String.Size(c.Thumbnail)
	return size
}

type spaceMetadataSer struct{}

func (spaceMetadataSer) Marshal(m SpaceMetadata, bs []byte) (n int) {
	n = ord.String.Marshal(m.ModelName, bs)
	n += varint.Int.Marshal(m.NumFeatures, bs[n:])
	n += raw.Float32.Marshal(m.Sparsity, bs[n:])
	n += raw.Float32.Marshal(m.MeanSimilarity, bs[n:])
	n += raw.Float32.Marshal(m.MedianSimilarity, bs[n:])
	return n
}

func (spaceMetadataSer) Unmarshal(bs []byte) (m SpaceMetadata, n int, err error) {
	var n1 int
	if m.ModelName, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if m.NumFeatures, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.Sparsity, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.MeanSimilarity, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	if m.MedianSimilarity, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (spaceMetadataSer) Size(m SpaceMetadata) int {
	return ord.String.Size(m.ModelName) +
		varint.Int.Size(m.NumFeatures) +
		raw.Float32.Size(m.Sparsity) +
		raw.Float32.Size(m.MeanSimilarity) +
		raw.Float32.Size(m.MedianSimilarity)
}
