package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"
	"strings"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated from content-based hashing so that identical content
// always maps to the same identifier, which makes ingestion idempotent.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EntityType categorizes a threat entity.
type EntityType string

const (
	EntityTypeThreatActor    EntityType = "threat_actor"
	EntityTypeMalware        EntityType = "malware"
	EntityTypeTool           EntityType = "tool"
	EntityTypeVulnerability  EntityType = "vulnerability"
	EntityTypeMitreTechnique EntityType = "mitre_technique"
	EntityTypeMitreTactic    EntityType = "mitre_tactic"
	EntityTypeIndicator      EntityType = "indicator"
	EntityTypeExploit        EntityType = "exploit"
	EntityTypeIdentity       EntityType = "identity"
	EntityTypeLocation       EntityType = "location"
	EntityTypeOrganization   EntityType = "organization"
)

// EntityTypes lists all valid entity types.
var EntityTypes = []EntityType{
	EntityTypeThreatActor,
	EntityTypeMalware,
	EntityTypeTool,
	EntityTypeVulnerability,
	EntityTypeMitreTechnique,
	EntityTypeMitreTactic,
	EntityTypeIndicator,
	EntityTypeExploit,
	EntityTypeIdentity,
	EntityTypeLocation,
	EntityTypeOrganization,
}

// RelationType categorizes a relationship between two threat entities.
type RelationType string

const (
	RelationTypeExploits     RelationType = "exploits"
	RelationTypeTargets      RelationType = "targets"
	RelationTypeUses         RelationType = "uses"
	RelationTypeVariantOf    RelationType = "variant_of"
	RelationTypeMitigates    RelationType = "mitigates"
	RelationTypeAttributedTo RelationType = "attributed_to"
	RelationTypeIndicates    RelationType = "indicates"
)

// RelationTypes lists all valid relation types.
var RelationTypes = []RelationType{
	RelationTypeExploits,
	RelationTypeTargets,
	RelationTypeUses,
	RelationTypeVariantOf,
	RelationTypeMitigates,
	RelationTypeAttributedTo,
	RelationTypeIndicates,
}

// ThreatDocument is a reconstructed threat intelligence document.
// It may be enriched with embeddings and entity references during processing.
type ThreatDocument struct {
	Id            ID
	Source        string // Feed or file the document came from
	IndicatorType string // Upstream record type, e.g. "cve", "pulse", "advisory"
	Indicator     string // Primary indicator value, if the upstream record has one
	Date          string // Publication date as supplied by the feed
	Text          string
	Vector        []float32         // Embedding vector (populated by processors)
	Entities      []EntityRef       // Entities extracted from the text (populated by processors)
	Metadata      map[string]string // Optional metadata, e.g. "url", "author"
	InsertedAt    time.Time
	UpdatedAt     time.Time
}

// DocumentID generates the content-based identifier for a document
// from its source and upstream record ID.
func DocumentID(source string, recordID int64) ID {
	return IDFromContent(source + ":" + strconv.FormatInt(recordID, 10))
}

// ThreatEntity is a named entity extracted from threat intelligence text.
type ThreatEntity struct {
	Id          ID
	Name        string
	Type        EntityType
	Description string
	Aliases     []string
	MitreID     string // ATT&CK external ID, e.g. "T1059", when enriched
	Confidence  float32
	References  []string // External reference URLs
	Vector      []float32
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// Tuple returns a string representation of the entity as "(type,name)".
// Names are lowercased so that casing variants map to the same entity.
func (e *ThreatEntity) Tuple() string {
	return EntityTuple(e.Name, e.Type)
}

// EntityTuple builds the "(type,name)" tuple used for entity identity.
func EntityTuple(name string, entityType EntityType) string {
	return "(" + string(entityType) + "," + strings.ToLower(name) + ")"
}

// EntityRef links a document to an extracted entity with the extraction confidence.
type EntityRef struct {
	EntityId   ID
	Confidence float32
}

// ThreatRelationship is a directed edge between two threat entities.
type ThreatRelationship struct {
	Id          ID
	SourceId    ID
	TargetId    ID
	Type        RelationType
	Confidence  float32
	Description string
	InsertedAt  time.Time
	UpdatedAt   time.Time
}

// RelationshipID generates the content-based identifier for a relationship edge.
func RelationshipID(sourceId ID, relType RelationType, targetId ID) ID {
	return IDFromContent("(" + strconv.FormatUint(uint64(sourceId), 10) + "," +
		string(relType) + "," + strconv.FormatUint(uint64(targetId), 10) + ")")
}

// Checkpoint records processing progress for a pipeline processor.
type Checkpoint struct {
	ProcessorType string
	LastId        ID
	UpdatedAt     time.Time
}

// SearchResult is a document returned from search with a relevance score.
type SearchResult struct {
	Document *ThreatDocument
	Score    float32
}

// Neighbor is one hop in the knowledge graph: the relationship edge and
// the entity on its other end.
type Neighbor struct {
	Relationship *ThreatRelationship
	EntityId     ID
	Outgoing     bool // true if the edge points away from the queried entity
}
