package storage

import (
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalDocument serializes a ThreatDocument to bytes.
func MarshalDocument(doc *core.ThreatDocument) []byte {
	buf := make([]byte, core.ThreatDocumentMUS.Size(*doc))
	core.ThreatDocumentMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalDocument deserializes a ThreatDocument from bytes.
func UnmarshalDocument(data []byte) (*core.ThreatDocument, error) {
	doc, _, err := core.ThreatDocumentMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalEntity serializes a ThreatEntity to bytes.
func MarshalEntity(entity *core.ThreatEntity) []byte {
	buf := make([]byte, core.ThreatEntityMUS.Size(*entity))
	core.ThreatEntityMUS.Marshal(*entity, buf)
	return buf
}

// UnmarshalEntity deserializes a ThreatEntity from bytes.
func UnmarshalEntity(data []byte) (*core.ThreatEntity, error) {
	entity, _, err := core.ThreatEntityMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// MarshalRelationship serializes a ThreatRelationship to bytes.
func MarshalRelationship(rel *core.ThreatRelationship) []byte {
	buf := make([]byte, core.ThreatRelationshipMUS.Size(*rel))
	core.ThreatRelationshipMUS.Marshal(*rel, buf)
	return buf
}

// UnmarshalRelationship deserializes a ThreatRelationship from bytes.
func UnmarshalRelationship(data []byte) (*core.ThreatRelationship, error) {
	rel, _, err := core.ThreatRelationshipMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &rel, nil
}

// MarshalCheckpoint serializes a Checkpoint to bytes.
func MarshalCheckpoint(checkpoint *core.Checkpoint) []byte {
	buf := make([]byte, core.CheckpointMUS.Size(*checkpoint))
	core.CheckpointMUS.Marshal(*checkpoint, buf)
	return buf
}

// UnmarshalCheckpoint deserializes a Checkpoint from bytes.
func UnmarshalCheckpoint(data []byte) (*core.Checkpoint, error) {
	checkpoint, _, err := core.CheckpointMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &checkpoint, nil
}
