package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/caselens/caselens/core"
)

// Key prefixes for different data types
const (
	caseRecordPrefix  = "casrec"
	caseOrderKey      = "casord"
	featureRowPrefix  = "featrow"
	spaceMetaPrefix   = "featmeta"
	vectorizerKey     = "vectorizer"
)

// makeCaseRecordKey generates a key for a case record by its storage key.
func makeCaseRecordKey(key core.Key) []byte {
	return []byte(fmt.Sprintf("%s:%d", caseRecordPrefix, key))
}

// makeFeatureRowKey generates a composite key for a matrix row.
// Format: prefix:space:rowIndex, with the index in BigEndian order so
// prefix iteration yields rows in ascending row order.
func makeFeatureRowKey(space string, row int) []byte {
	prefix := featureRowPrefix + ":" + space + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(row))
	return buf
}

// makeFeatureRowPrefix generates the iteration prefix for a space's rows.
func makeFeatureRowPrefix(space string) []byte {
	return []byte(featureRowPrefix + ":" + space + ":")
}

// makeSpaceMetaKey generates a key for embedding-space metadata.
func makeSpaceMetaKey(space string) []byte {
	return []byte(spaceMetaPrefix + ":" + space)
}
