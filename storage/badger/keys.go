package badger

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// Key prefixes for different data types
const (
	documentPrefix        = "tdoc"
	documentDatePrefix    = "tdocd"
	documentEntityPrefix  = "tdoce"
	entityPrefix          = "terec"
	entityTupleNamePrefix = "tetyna"
	relationPrefix        = "trrec"
	relationSourcePrefix  = "trsrc"
	relationTargetPrefix  = "trtgt"
)

// makeDocumentKey generates a key for a threat document by ID.
func makeDocumentKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", documentPrefix, id))
}

// makeDocumentDateKey generates a composite key for the date index.
// Format: prefix:timestamp:id
func makeDocumentDateKey(timestamp time.Time, id core.ID) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for ID
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort works correctly
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makePartialDocumentDateKey generates a partial key for date range queries.
// Format: prefix:timestamp
func makePartialDocumentDateKey(timestamp time.Time) []byte {
	prefix := documentDatePrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	return buf
}

// makeDocumentEntityKey generates a composite key for the entity index.
// Format: prefix:entityID:documentID
func makeDocumentEntityKey(entityID, documentID core.ID) []byte {
	prefix := documentEntityPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(entityID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(documentID))
	return buf
}

// makePartialDocumentEntityKey generates a partial key for entity queries.
// Format: prefix:entityID
func makePartialDocumentEntityKey(entityID core.ID) []byte {
	prefix := documentEntityPrefix + ":"
	prefixBytes := []byte(prefix)
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(entityID))
	return buf
}

// makeEntityKey generates a key for a threat entity by ID.
func makeEntityKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", entityPrefix, id))
}

// makeEntityTupleKey generates a composite key for entity lookup by (type, name).
// Names are lowercased so lookups are case-insensitive.
// Format: prefix:type:name
func makeEntityTupleKey(name string, entityType core.EntityType) []byte {
	return []byte(entityTupleNamePrefix + ":" + core.EntityTuple(name, entityType))
}

// makeRelationKey generates a key for a relationship by ID.
func makeRelationKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", relationPrefix, id))
}

// makeRelationEndpointKey generates a composite key for the source or target index.
// Format: prefix:endpointID:relationID
func makeRelationEndpointKey(prefix string, endpointID, relationID core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(endpointID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(relationID))
	return buf
}

// makePartialRelationEndpointKey generates a partial key for endpoint queries.
// Format: prefix:endpointID
func makePartialRelationEndpointKey(prefix string, endpointID core.ID) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 8
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(endpointID))
	return buf
}

// makeCheckpointKey generates a key for processor checkpoints.
func makeCheckpointKey(processorType string) []byte {
	return []byte(fmt.Sprintf("%s:chkpt", processorType))
}
