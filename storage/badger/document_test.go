package badger

import (
	"context"
	"testing"
	"time"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/storage"
)

func TestDocumentBasics(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := &core.ThreatDocument{
		Source:        "otx",
		IndicatorType: "domain",
		Indicator:     "evil.example.com",
		Text:          "Phishing domain used in an Emotet campaign.",
	}

	added, err := docRepo.AddDocuments(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	if len(added) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(added))
	}

	if added[0].Id == 0 {
		t.Fatal("Expected non-zero ID")
	}

	retrieved, err := docRepo.GetDocument(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}

	if retrieved.Indicator != "evil.example.com" {
		t.Fatalf("Expected 'evil.example.com', got '%s'", retrieved.Indicator)
	}
}

func TestDocumentContentID_Idempotent(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	before := time.Now().UTC().Add(-1 * time.Minute)

	first := &core.ThreatDocument{Source: "otx", Indicator: "1.2.3.4", Text: "C2 host"}
	second := &core.ThreatDocument{Source: "otx", Indicator: "1.2.3.4", Text: "C2 host"}

	addedFirst, err := docRepo.AddDocuments(ctx, first)
	if err != nil {
		t.Fatalf("Failed to add first document: %v", err)
	}

	// Separate calls produce distinct time.Now values
	time.Sleep(2 * time.Millisecond)

	addedSecond, err := docRepo.AddDocuments(ctx, second)
	if err != nil {
		t.Fatalf("Failed to add second document: %v", err)
	}

	if addedFirst[0].Id != addedSecond[0].Id {
		t.Fatalf("Expected identical IDs for identical content, got %d and %d",
			addedFirst[0].Id, addedSecond[0].Id)
	}

	if !addedSecond[0].InsertedAt.Equal(addedFirst[0].InsertedAt) {
		t.Fatalf("Expected insertion time %v preserved across re-ingest, got %v",
			addedFirst[0].InsertedAt, addedSecond[0].InsertedAt)
	}

	count, err := docRepo.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to count documents: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 document after re-ingest, got %d", count)
	}

	after := time.Now().UTC().Add(1 * time.Minute)
	results, err := docRepo.GetDocumentsByDateRange(ctx, before, after)
	if err != nil {
		t.Fatalf("Failed to get documents by date range: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 document in date range after re-ingest, got %d", len(results))
	}
}

func TestAddDocuments_ReingestReplacesEntityRefs(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	addedEntities, err := entityRepo.AddEntities(ctx, &core.ThreatEntity{
		Name: "Emotet",
		Type: core.EntityTypeMalware,
	})
	if err != nil {
		t.Fatalf("Failed to add entity: %v", err)
	}
	entityID := addedEntities[0].Id

	doc := &core.ThreatDocument{
		Source: "otx",
		Text:   "Emotet campaign",
		Entities: []core.EntityRef{
			{EntityId: entityID, Confidence: 0.9},
		},
	}
	if _, err := docRepo.AddDocuments(ctx, doc); err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	// Re-ingest the same content without the entity ref
	again := &core.ThreatDocument{Source: "otx", Text: "Emotet campaign"}
	if _, err := docRepo.AddDocuments(ctx, again); err != nil {
		t.Fatalf("Failed to re-ingest document: %v", err)
	}

	docIDs, err := docRepo.GetDocumentsByEntity(ctx, entityID)
	if err != nil {
		t.Fatalf("Failed to get documents by entity: %v", err)
	}
	if len(docIDs) != 0 {
		t.Fatalf("Expected 0 documents after re-ingest dropped the ref, got %d", len(docIDs))
	}
}

func TestDocumentDateRange(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	before := time.Now().UTC().Add(-1 * time.Minute)

	docs := []*core.ThreatDocument{
		{Source: "otx", Indicator: "a.example.com", Text: "Report A"},
		{Source: "otx", Indicator: "b.example.com", Text: "Report B"},
	}
	_, err = docRepo.AddDocuments(ctx, docs...)
	if err != nil {
		t.Fatalf("Failed to add documents: %v", err)
	}

	after := time.Now().UTC().Add(1 * time.Minute)

	results, err := docRepo.GetDocumentsByDateRange(ctx, before, after)
	if err != nil {
		t.Fatalf("Failed to get documents by date range: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(results))
	}

	// A range entirely in the past matches nothing
	empty, err := docRepo.GetDocumentsByDateRange(ctx, before.Add(-1*time.Hour), before)
	if err != nil {
		t.Fatalf("Failed to query past range: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("Expected 0 documents in past range, got %d", len(empty))
	}
}

func TestGetRecentDocuments(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	// Add in separate calls so insertion timestamps differ
	for _, text := range []string{"Report 1", "Report 2", "Report 3"} {
		_, err := docRepo.AddDocuments(ctx, &core.ThreatDocument{Source: "otx", Text: text})
		if err != nil {
			t.Fatalf("Failed to add document: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	results, err := docRepo.GetRecentDocuments(ctx, 2)
	if err != nil {
		t.Fatalf("Failed to get recent documents: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(results))
	}
	if results[0].Text != "Report 3" {
		t.Errorf("Expected 'Report 3' first, got '%s'", results[0].Text)
	}
	if results[1].Text != "Report 2" {
		t.Errorf("Expected 'Report 2' second, got '%s'", results[1].Text)
	}

	all, err := docRepo.GetRecentDocuments(ctx, 10)
	if err != nil {
		t.Fatalf("Failed to get all documents: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 documents, got %d", len(all))
	}
}

func TestDocumentEntityIndex(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	entity := &core.ThreatEntity{
		Name:       "Emotet",
		Type:       core.EntityTypeMalware,
		Confidence: 0.9,
	}
	addedEntities, err := entityRepo.AddEntities(ctx, entity)
	if err != nil {
		t.Fatalf("Failed to add entity: %v", err)
	}
	entityID := addedEntities[0].Id

	doc := &core.ThreatDocument{
		Source: "otx",
		Text:   "Emotet observed in the wild",
		Entities: []core.EntityRef{
			{EntityId: entityID, Confidence: 0.9},
		},
	}
	added, err := docRepo.AddDocuments(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	docIDs, err := docRepo.GetDocumentsByEntity(ctx, entityID)
	if err != nil {
		t.Fatalf("Failed to get documents by entity: %v", err)
	}
	if len(docIDs) != 1 {
		t.Fatalf("Expected 1 document, got %d", len(docIDs))
	}
	if docIDs[0] != added[0].Id {
		t.Fatalf("Expected document ID %d, got %d", added[0].Id, docIDs[0])
	}
}

func TestUpdateDocuments(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	doc := &core.ThreatDocument{Source: "otx", Text: "Original text"}
	added, err := docRepo.AddDocuments(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	added[0].Vector = []float32{0.1, 0.2, 0.3}
	_, err = docRepo.UpdateDocuments(ctx, added[0])
	if err != nil {
		t.Fatalf("Failed to update document: %v", err)
	}

	retrieved, err := docRepo.GetDocument(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to get document: %v", err)
	}
	if len(retrieved.Vector) != 3 {
		t.Fatalf("Expected vector of length 3, got %d", len(retrieved.Vector))
	}

	// Updating a missing document fails
	missing := &core.ThreatDocument{Id: 12345, Source: "otx", Text: "nope"}
	_, err = docRepo.UpdateDocuments(ctx, missing)
	if err != storage.ErrNotFound {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpdateDocuments_WithEntityChanges(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	addedEntities, err := entityRepo.AddEntities(ctx, &core.ThreatEntity{
		Name: "APT28",
		Type: core.EntityTypeThreatActor,
	})
	if err != nil {
		t.Fatalf("Failed to add entity: %v", err)
	}

	doc := &core.ThreatDocument{
		Source: "otx",
		Text:   "APT28 activity",
		Entities: []core.EntityRef{
			{EntityId: addedEntities[0].Id, Confidence: 0.85},
		},
	}
	added, err := docRepo.AddDocuments(ctx, doc)
	if err != nil {
		t.Fatalf("Failed to add document: %v", err)
	}

	// Remove the entity ref
	added[0].Entities = []core.EntityRef{}
	_, err = docRepo.UpdateDocuments(ctx, added[0])
	if err != nil {
		t.Fatalf("Failed to update document: %v", err)
	}

	docIDs, err := docRepo.GetDocumentsByEntity(ctx, addedEntities[0].Id)
	if err != nil {
		t.Fatalf("Failed to get documents by entity: %v", err)
	}
	if len(docIDs) != 0 {
		t.Fatalf("Expected 0 documents after entity removal, got %d", len(docIDs))
	}
}

func TestDeleteDocuments(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	docs := []*core.ThreatDocument{
		{Source: "otx", Text: "Report 1"},
		{Source: "otx", Text: "Report 2"},
	}
	added, err := docRepo.AddDocuments(ctx, docs...)
	if err != nil {
		t.Fatalf("Failed to add documents: %v", err)
	}

	err = docRepo.DeleteDocuments(ctx, added[0].Id)
	if err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}

	_, err = docRepo.GetDocument(ctx, added[0].Id)
	if err == nil {
		t.Fatal("Expected error when getting deleted document")
	}

	retrieved, err := docRepo.GetDocument(ctx, added[1].Id)
	if err != nil {
		t.Fatalf("Failed to get remaining document: %v", err)
	}
	if retrieved.Text != "Report 2" {
		t.Fatalf("Expected 'Report 2', got %s", retrieved.Text)
	}

	count, err := docRepo.CountDocuments(ctx)
	if err != nil {
		t.Fatalf("Failed to count documents: %v", err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 document, got %d", count)
	}
}

func TestGetDocuments_Multiple(t *testing.T) {
	docRepo, entityRepo, relRepo, backend, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("Failed to create repositories: %v", err)
	}
	defer func() { relRepo.Close(); entityRepo.Close(); docRepo.Close(); backend.Close() }()

	ctx := context.Background()

	docs := []*core.ThreatDocument{
		{Source: "otx", Text: "Report 1"},
		{Source: "otx", Text: "Report 2"},
		{Source: "otx", Text: "Report 3"},
	}
	added, err := docRepo.AddDocuments(ctx, docs...)
	if err != nil {
		t.Fatalf("Failed to add documents: %v", err)
	}

	retrieved, err := docRepo.GetDocuments(ctx, added[0].Id, added[2].Id, core.ID(99999))
	if err != nil {
		t.Fatalf("Failed to get documents: %v", err)
	}
	if len(retrieved) != 2 {
		t.Fatalf("Expected 2 documents, got %d", len(retrieved))
	}
}
