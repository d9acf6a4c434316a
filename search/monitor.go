package search

import (
	"iter"

	"github.com/Ankur-krGarg/Cyber-Threat-dashboard/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSemanticSearch(ids []uint64)
	AfterQueryEntityExtraction(entities []*core.ThreatEntity)
	FoundRelatedEntities(tuple string, entityIds []uint64)
	AfterEntityRelatedSearch(iter.Seq[uint64])
	AfterDocumentRetrieval(docs []*core.ThreatDocument)
	SemanticAndEntityHit(doc *core.ThreatDocument)
	SemanticHit(doc *core.ThreatDocument)
	EntityHit(doc *core.ThreatDocument)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                  {}
func (n *noopMonitor) AfterSemanticSearch(_ []uint64)                  {}
func (n *noopMonitor) AfterQueryEntityExtraction(_ []*core.ThreatEntity) {}
func (n *noopMonitor) FoundRelatedEntities(_ string, _ []uint64)       {}
func (n *noopMonitor) AfterEntityRelatedSearch(_ iter.Seq[uint64])     {}
func (n *noopMonitor) AfterDocumentRetrieval(_ []*core.ThreatDocument) {}
func (n *noopMonitor) SemanticAndEntityHit(_ *core.ThreatDocument)     {}
func (n *noopMonitor) SemanticHit(_ *core.ThreatDocument)              {}
func (n *noopMonitor) EntityHit(_ *core.ThreatDocument)                {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)                   {}
