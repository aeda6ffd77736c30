package search

import "github.com/caselens/caselens/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps during a query.
type SearchMonitor interface {
	Start(query string, method core.Method)
	AfterEncode(dim int)
	CacheHit(key string)
	AfterRank(hits []core.Hit)
	Finish(results []core.SimilarCase)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Method) {}
func (n *noopMonitor) AfterEncode(_ int)             {}
func (n *noopMonitor) CacheHit(_ string)             {}
func (n *noopMonitor) AfterRank(_ []core.Hit)        {}
func (n *noopMonitor) Finish(_ []core.SimilarCase)   {}
