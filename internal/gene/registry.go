package gene

import (
	"sort"
	"sync"

	"blainsmith.com/go/seahash"

	"github.com/inodb/vibe-prioritiser/internal/outcome"
	"github.com/inodb/vibe-prioritiser/internal/variant"
)

const numRegistryShards = 64

type registryShard struct {
	mu    sync.RWMutex
	genes map[string]*Gene
}

// Registry is a sharded, thread-safe map from gene symbol to *Gene.
// Read-modify-write sequences on one gene are serialised by the lock of
// the shard owning its symbol; genes in different shards proceed in
// parallel.
type Registry struct {
	shards [numRegistryShards]registryShard
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].genes = make(map[string]*Gene)
	}
	return r
}

func (r *Registry) shard(symbol string) *registryShard {
	h := seahash.Sum64([]byte(symbol))
	return &r.shards[int(h%uint64(numRegistryShards))]
}

// Add registers g under its symbol, replacing any existing entry.
func (r *Registry) Add(g *Gene) {
	s := r.shard(g.Symbol)
	s.mu.Lock()
	s.genes[g.Symbol] = g
	s.mu.Unlock()
}

// GetOrCreate returns the gene registered under symbol, creating it with
// entrezID when absent.
func (r *Registry) GetOrCreate(symbol string, entrezID int) *Gene {
	s := r.shard(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.genes[symbol]
	if !ok {
		g = New(symbol, entrezID)
		s.genes[symbol] = g
	}
	return g
}

// Contains reports whether symbol is a known gene.
func (r *Registry) Contains(symbol string) bool {
	s := r.shard(symbol)
	s.mu.RLock()
	_, ok := s.genes[symbol]
	s.mu.RUnlock()
	return ok
}

// Get returns the gene registered under symbol. Mutable fields of the
// returned gene must be accessed through View or Update.
func (r *Registry) Get(symbol string) (*Gene, bool) {
	s := r.shard(symbol)
	s.mu.RLock()
	g, ok := s.genes[symbol]
	s.mu.RUnlock()
	return g, ok
}

// Candidate is a read-only snapshot of a gene's identity and score for one
// priority type.
type Candidate struct {
	Symbol   string
	EntrezID int
	Score    float64
	Scored   bool // false when the gene has no score for the priority type
}

// Candidate returns a snapshot of the gene registered under symbol.
func (r *Registry) Candidate(symbol string, t PriorityType) (Candidate, bool) {
	s := r.shard(symbol)
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.genes[symbol]
	if !ok {
		return Candidate{}, false
	}
	score, scored := g.PriorityScore(t)
	return Candidate{Symbol: g.Symbol, EntrezID: g.EntrezID, Score: score, Scored: scored}, true
}

// View calls fn with the gene registered under symbol while holding its
// shard's read lock. Returns false if the symbol is unknown.
func (r *Registry) View(symbol string, fn func(*Gene)) bool {
	s := r.shard(symbol)
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.genes[symbol]
	if ok {
		fn(g)
	}
	return ok
}

// Update calls fn with the gene registered under symbol while holding its
// shard's write lock. Returns false if the symbol is unknown.
func (r *Registry) Update(symbol string, fn func(*Gene)) bool {
	s := r.shard(symbol)
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.genes[symbol]
	if ok {
		fn(g)
	}
	return ok
}

// AddVariant attaches v to the gene named by v.GeneSymbol. Returns false,
// leaving the registry untouched, if the symbol is unknown.
func (r *Registry) AddVariant(v *variant.Evaluation) bool {
	return r.Update(v.GeneSymbol, func(g *Gene) { g.AddVariant(v) })
}

// Len returns the number of registered genes.
func (r *Registry) Len() int {
	n := 0
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		n += len(s.genes)
		s.mu.RUnlock()
	}
	return n
}

// Genes returns all registered genes sorted by symbol.
func (r *Registry) Genes() []*Gene {
	var genes []*Gene
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.RLock()
		for _, g := range s.genes {
			genes = append(genes, g)
		}
		s.mu.RUnlock()
	}
	sort.Slice(genes, func(i, j int) bool { return genes[i].Symbol < genes[j].Symbol })
	return genes
}

// GenesWithVariants returns the registered genes with at least one attached
// variant, sorted by symbol.
func (r *Registry) GenesWithVariants() []*Gene {
	var genes []*Gene
	for _, g := range r.Genes() {
		has := false
		r.View(g.Symbol, func(g *Gene) { has = len(g.variants) > 0 })
		if has {
			genes = append(genes, g)
		}
	}
	return genes
}

// ResetAnalysis clears variants, filter results and derived scores from all
// genes, keeping their priority scores, so the registry can serve another run.
func (r *Registry) ResetAnalysis() {
	for i := range r.shards {
		s := &r.shards[i]
		s.mu.Lock()
		for _, g := range s.genes {
			g.variants = nil
			g.Filters = outcome.Set{}
			g.VariantScore = 0
			g.CombinedScore = 0
		}
		s.mu.Unlock()
	}
}
