package tfidf

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// VectorizerMUS serializes the vectorizer artifact: vocabulary and IDF
// weights in one blob, so neither half can be replaced independently.
var VectorizerMUS = vectorizerSer{}

type vectorizerSer struct{}

var float32SliceSer = ord.NewSliceSer[float32](raw.Float32)

func (vectorizerSer) Marshal(v Vectorizer, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v.vocabulary), bs)
	for term, idx := range v.vocabulary {
		n += ord.String.Marshal(term, bs[n:])
		n += varint.Int32.Marshal(idx, bs[n:])
	}
	n += float32SliceSer.Marshal(v.idf, bs[n:])
	return n
}

func (vectorizerSer) Unmarshal(bs []byte) (v Vectorizer, n int, err error) {
	var count int
	if count, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	v.vocabulary = make(map[string]int32, count)
	var (
		term string
		idx  int32
		n1   int
	)
	for i := 0; i < count; i++ {
		if term, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
		if idx, n1, err = varint.Int32.Unmarshal(bs[n:]); err != nil {
			return
		}
		n += n1
		v.vocabulary[term] = idx
	}
	if v.idf, n1, err = float32SliceSer.Unmarshal(bs[n:]); err != nil {
		return
	}
	n += n1
	return
}

func (vectorizerSer) Size(v Vectorizer) (size int) {
	size = varint.Int.Size(len(v.vocabulary))
	for term, idx := range v.vocabulary {
		size += ord.String.Size(term)
		size += varint.Int32.Size(idx)
	}
	size += float32SliceSer.Size(v.idf)
	return size
}
