package search

import (
	"context"
	"fmt"
	"log/slog"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/caselens/caselens/ai"
	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/feature"
	"github.com/caselens/caselens/storage"
)

// DefaultCacheSize is the number of free-text result sets kept in the
// query cache when no explicit size is configured.
const DefaultCacheSize = 256

// Searcher ranks cases by similarity over the loaded embedding spaces.
type Searcher struct {
	store    *feature.Store
	embedder ai.Embedder
	cache    *lru.Cache[string, []core.SimilarCase]
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*searcherConfig) error

type searcherConfig struct {
	logger    *slog.Logger
	cacheSize int
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *searcherConfig) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// WithCacheSize sets the free-text query cache capacity.
func WithCacheSize(n int) Option {
	return func(c *searcherConfig) error {
		if n < 1 {
			return fmt.Errorf("cache size must be positive, got %d", n)
		}
		c.cacheSize = n
		return nil
	}
}

// NewSearcher creates a new searcher over the given store. The provider's
// embedder encodes free-text queries for the sentence-embedding space.
func NewSearcher(store *feature.Store, provider ai.Provider, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}

	cfg := &searcherConfig{
		logger:    slog.Default(),
		cacheSize: DefaultCacheSize,
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	cache, err := lru.New[string, []core.SimilarCase](cfg.cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}

	return &Searcher{
		store:    store,
		embedder: provider.Embedder(),
		cache:    cache,
		logger:   cfg.logger.With("component", "searcher"),
	}, nil
}

// SimilarToCase ranks cases similar to an existing case in a single space.
// The query case itself is excluded before top-k selection, so a corpus of
// n cases always yields min(k, n-1) results. Method must be tfidf, bert or
// image; hybrid queries go through SimilarHybrid.
func (s *Searcher) SimilarToCase(ctx context.Context, id string, method core.Method, k int) ([]core.SimilarCase, error) {
	return s.SimilarToCaseWithMonitor(ctx, id, method, k, nil)
}

// SimilarToCaseWithMonitor is SimilarToCase with observation hooks.
func (s *Searcher) SimilarToCaseWithMonitor(ctx context.Context, id string, method core.Method, k int, monitor SearchMonitor) ([]core.SimilarCase, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(id, method)

	if err := core.ValidateTopK(k); err != nil {
		return nil, err
	}
	row, err := s.resolveCase(id)
	if err != nil {
		return nil, err
	}

	var hits []core.Hit
	switch method {
	case core.MethodTFIDF:
		rows := s.store.TFIDFRows()
		hits = RankCosineSparse(rows[row], rows, k, row)
	case core.MethodBERT:
		rows := s.store.TextRows()
		hits = RankCosine(rows[row], rows, k, row)
	case core.MethodImage:
		if !s.store.HasImageEmbeddings() {
			return nil, ErrNoImageSpace
		}
		rows := s.store.ImageRows()
		hits = RankCosine(rows[row], rows, k, row)
	case core.MethodHybrid:
		return nil, fmt.Errorf("%w: hybrid ranking needs a fusion weight, use SimilarHybrid", core.ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: %w %q", core.ErrInvalidInput, core.ErrUnknownMethod, method)
	}
	monitor.AfterRank(hits)

	results := FormatHits(s.store, hits)
	monitor.Finish(results)
	return results, nil
}

// SimilarHybrid ranks cases similar to an existing case by the weighted
// fusion textWeight*text + (1-textWeight)*image. It requires the image
// space; there is no silent fallback to text-only ranking.
func (s *Searcher) SimilarHybrid(ctx context.Context, id string, k int, textWeight float64) ([]core.HybridSimilarCase, error) {
	if err := core.ValidateTopK(k); err != nil {
		return nil, err
	}
	if err := core.ValidateTextWeight(textWeight); err != nil {
		return nil, err
	}
	if !s.store.HasImageEmbeddings() {
		return nil, ErrNoImageSpace
	}
	row, err := s.resolveCase(id)
	if err != nil {
		return nil, err
	}

	textRows := s.store.TextRows()
	imageRows := s.store.ImageRows()
	hits := RankHybrid(textRows[row], imageRows[row], textRows, imageRows, k, float32(textWeight), row)
	return FormatHybridHits(s.store, hits), nil
}

// SearchText ranks cases against a free-text query. The query is encoded
// with the same artifacts that produced the stored matrix: the persisted
// TF-IDF vectorizer or the serving sentence-embedding model. Only the text
// methods are accepted; there is no free-text encoder for the image space.
func (s *Searcher) SearchText(ctx context.Context, text string, method core.Method, k int) ([]core.SimilarCase, error) {
	return s.SearchTextWithMonitor(ctx, text, method, k, nil)
}

// SearchTextWithMonitor is SearchText with observation hooks.
func (s *Searcher) SearchTextWithMonitor(ctx context.Context, text string, method core.Method, k int, monitor SearchMonitor) ([]core.SimilarCase, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(text, method)

	if err := core.ValidateQueryText(text); err != nil {
		return nil, err
	}
	if err := core.ValidateTopK(k); err != nil {
		return nil, err
	}
	if method != core.MethodTFIDF && method != core.MethodBERT {
		return nil, fmt.Errorf("%w: free-text search supports tfidf and bert, got %q", core.ErrInvalidInput, method)
	}

	key := cacheKey(method, k, text)
	if cached, ok := s.cache.Get(key); ok {
		monitor.CacheHit(key)
		monitor.Finish(cached)
		return cached, nil
	}

	var hits []core.Hit
	switch method {
	case core.MethodTFIDF:
		query := s.store.Vectorizer().Transform(text)
		monitor.AfterEncode(query.NNZ())
		hits = RankCosineSparse(query, s.store.TFIDFRows(), k, -1)
	case core.MethodBERT:
		embedding, err := s.embedder.EmbedText(ctx, text)
		if err != nil {
			s.logger.Error("error generating embedding for query", "err", err)
			return nil, fmt.Errorf("failed to embed query: %w", err)
		}
		if len(embedding) != s.store.TextDim() {
			return nil, fmt.Errorf("%w: got %d, stored matrix has %d",
				ErrDimensionMismatch, len(embedding), s.store.TextDim())
		}
		monitor.AfterEncode(len(embedding))
		hits = RankCosine(embedding, s.store.TextRows(), k, -1)
	}
	monitor.AfterRank(hits)

	results := FormatHits(s.store, hits)
	s.cache.Add(key, results)
	monitor.Finish(results)
	return results, nil
}

// MethodComparison holds side-by-side rankings for one case in the two
// text spaces, with overlap statistics over the returned ids.
type MethodComparison struct {
	CaseID       string             `json:"caseId"`
	TopK         int                `json:"topK"`
	TFIDF        []core.SimilarCase `json:"tfidf"`
	BERT         []core.SimilarCase `json:"bert"`
	OverlapCount int                `json:"overlapCount"`
	OverlapPct   float64            `json:"overlapPercentage"`
	SharedIDs    []string           `json:"sharedIds"`
}

// CompareMethods ranks the same case in the TF-IDF and sentence-embedding
// spaces and reports how much the two top-k lists agree.
func (s *Searcher) CompareMethods(ctx context.Context, id string, k int) (*MethodComparison, error) {
	tfidfResults, err := s.SimilarToCase(ctx, id, core.MethodTFIDF, k)
	if err != nil {
		return nil, err
	}
	bertResults, err := s.SimilarToCase(ctx, id, core.MethodBERT, k)
	if err != nil {
		return nil, err
	}

	inTFIDF := make(map[string]bool, len(tfidfResults))
	for _, r := range tfidfResults {
		inTFIDF[r.ID] = true
	}
	shared := make([]string, 0, len(bertResults))
	for _, r := range bertResults {
		if inTFIDF[r.ID] {
			shared = append(shared, r.ID)
		}
	}

	// Percentage is over the requested k, not the returned list, so a
	// small corpus reads as partial agreement rather than full.
	pct := 100 * float64(len(shared)) / float64(k)

	return &MethodComparison{
		CaseID:       id,
		TopK:         k,
		TFIDF:        tfidfResults,
		BERT:         bertResults,
		OverlapCount: len(shared),
		OverlapPct:   pct,
		SharedIDs:    shared,
	}, nil
}

// SpaceStats describes one loaded embedding space.
type SpaceStats struct {
	NumFeatures      int     `json:"numFeatures"`
	ModelName        string  `json:"modelName,omitempty"`
	Sparsity         float32 `json:"sparsity,omitempty"`
	MeanSimilarity   float32 `json:"meanSimilarity,omitempty"`
	MedianSimilarity float32 `json:"medianSimilarity,omitempty"`
}

// Stats summarizes the loaded corpus and spaces.
type Stats struct {
	TotalCases       int                   `json:"totalCases"`
	AvailableMethods []string              `json:"availableMethods"`
	HasImages        bool                  `json:"hasImages"`
	Spaces           map[string]SpaceStats `json:"spaces"`
}

// Stats reports corpus size, available ranking methods and per-space
// details for the stats endpoint.
func (s *Searcher) Stats() *Stats {
	methods := []string{string(core.MethodTFIDF), string(core.MethodBERT)}
	spaces := map[string]SpaceStats{
		storage.SpaceTFIDF: spaceStats(s.store.Metadata(storage.SpaceTFIDF), s.store.Vectorizer().NumFeatures()),
		storage.SpaceText:  spaceStats(s.store.Metadata(storage.SpaceText), s.store.TextDim()),
	}
	if s.store.HasImageEmbeddings() {
		methods = append(methods, string(core.MethodImage), string(core.MethodHybrid))
		spaces[storage.SpaceImage] = spaceStats(s.store.Metadata(storage.SpaceImage), s.store.ImageDim())
	}

	return &Stats{
		TotalCases:       s.store.NumCases(),
		AvailableMethods: methods,
		HasImages:        s.store.HasImageEmbeddings(),
		Spaces:           spaces,
	}
}

func spaceStats(meta *core.SpaceMetadata, numFeatures int) SpaceStats {
	stats := SpaceStats{NumFeatures: numFeatures}
	if meta != nil {
		stats.ModelName = meta.ModelName
		stats.Sparsity = meta.Sparsity
		stats.MeanSimilarity = meta.MeanSimilarity
		stats.MedianSimilarity = meta.MedianSimilarity
	}
	return stats
}

func (s *Searcher) resolveCase(id string) (int, error) {
	if id == "" {
		return 0, fmt.Errorf("%w: %w", core.ErrInvalidInput, core.ErrEmptyCaseID)
	}
	row, ok := s.store.CaseIndex(id)
	if !ok {
		return 0, fmt.Errorf("case %q: %w", id, core.ErrNotFound)
	}
	return row, nil
}

func cacheKey(method core.Method, k int, text string) string {
	return fmt.Sprintf("%s\x00%d\x00%s", method, k, text)
}
