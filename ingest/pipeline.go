package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/caselens/caselens/ai"
	"github.com/caselens/caselens/core"
	"github.com/caselens/caselens/storage"
)

// Pipeline seeds the storage layer from an artifact directory.
// It validates cross-artifact consistency before committing anything.
type Pipeline struct {
	caseRepository    storage.CaseRepository
	featureRepository storage.FeatureRepository
	embedder          ai.Embedder
	pool              *ants.Pool
	batchSize         int
	logger            *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent case writes.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of cases written per batch.
// Default is 500.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		p.batchSize = size
		return nil
	}
}

// WithEmbedder enables dense-row backfill for cases whose text embedding is
// missing from the artifacts. The embedder must serve the same model that
// produced the stored matrix.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(p *Pipeline) error {
		p.embedder = embedder
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new seeding pipeline.
func NewPipeline(
	caseRepository storage.CaseRepository,
	featureRepository storage.FeatureRepository,
	opts ...Option,
) (*Pipeline, error) {
	if caseRepository == nil {
		return nil, ErrCaseRepositoryRequired
	}
	if featureRepository == nil {
		return nil, ErrFeatureRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		caseRepository:    caseRepository,
		featureRepository: featureRepository,
		pool:              pool,
		batchSize:         500,
		logger:            slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingest_pipeline")

	return p, nil
}

// Seed reads the artifact directory, validates it, and writes everything to
// storage. It is all-or-nothing at the validation boundary: no write
// happens until every artifact has been read and cross-checked.
func (p *Pipeline) Seed(ctx context.Context, dir string) error {
	order, err := readCaseOrder(dir)
	if err != nil {
		return err
	}
	if len(order) == 0 {
		return fmt.Errorf("%w: case order is empty", core.ErrCorruptArtifact)
	}

	cases, err := readCases(dir)
	if err != nil {
		return err
	}
	byID := make(map[string]*core.Case, len(cases))
	for _, c := range cases {
		byID[c.ID] = c
	}
	ordered := make([]*core.Case, len(order))
	for i, id := range order {
		c, ok := byID[id]
		if !ok {
			return fmt.Errorf("%w: %q", ErrMissingCase, id)
		}
		ordered[i] = c
	}

	vectorizer, err := readVectorizer(dir)
	if err != nil {
		return err
	}

	sparseRows, numFeatures, err := readSparseMatrix(dir)
	if err != nil {
		return err
	}
	if len(sparseRows) != len(order) {
		return fmt.Errorf("tfidf matrix has %d rows, case order has %d: %w",
			len(sparseRows), len(order), storage.ErrRowCountMismatch)
	}
	if numFeatures != vectorizer.NumFeatures() {
		return fmt.Errorf("%w: tfidf matrix width %d disagrees with vectorizer features %d",
			core.ErrCorruptArtifact, numFeatures, vectorizer.NumFeatures())
	}

	textRows, err := readDenseMatrix(dir, textMatrixFile)
	if err != nil {
		return err
	}
	if len(textRows) != len(order) {
		return fmt.Errorf("text matrix has %d rows, case order has %d: %w",
			len(textRows), len(order), storage.ErrRowCountMismatch)
	}
	if err := p.backfillText(ctx, ordered, textRows); err != nil {
		return err
	}

	var imageRows [][]float32
	if _, statErr := os.Stat(filepath.Join(dir, imageMatrixFile)); statErr == nil {
		imageRows, err = readDenseMatrix(dir, imageMatrixFile)
		if err != nil {
			return err
		}
		if len(imageRows) != len(order) {
			return fmt.Errorf("image matrix has %d rows, case order has %d: %w",
				len(imageRows), len(order), storage.ErrRowCountMismatch)
		}
	}

	p.logger.Info("Artifacts validated",
		"cases", len(ordered),
		"tfidf_features", numFeatures,
		"has_image", imageRows != nil)

	if err := p.writeCases(ctx, ordered); err != nil {
		return err
	}
	if err := p.featureRepository.PutCaseOrder(ctx, order); err != nil {
		return err
	}
	if err := p.featureRepository.PutVectorizer(ctx, vectorizer); err != nil {
		return err
	}
	if err := p.featureRepository.PutSparseRows(ctx, storage.SpaceTFIDF, sparseRows); err != nil {
		return err
	}
	if err := p.featureRepository.PutDenseRows(ctx, storage.SpaceText, textRows); err != nil {
		return err
	}
	if imageRows != nil {
		if err := p.featureRepository.PutDenseRows(ctx, storage.SpaceImage, imageRows); err != nil {
			return err
		}
	}

	if err := p.writeMetadata(ctx, dir, imageRows != nil); err != nil {
		return err
	}

	p.logger.Info("Seeding complete", "cases", len(ordered))
	return nil
}

// writeCases stores case records in batches through the worker pool.
// The first error wins; remaining batches still run but their errors are
// dropped.
func (p *Pipeline) writeCases(ctx context.Context, cases []*core.Case) error {
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for start := 0; start < len(cases); start += p.batchSize {
		end := start + p.batchSize
		if end > len(cases) {
			end = len(cases)
		}
		batch := cases[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if err := p.caseRepository.PutCases(ctx, batch...); err != nil {
				errOnce.Do(func() { firstErr = err })
			}
		})
		if submitErr != nil {
			wg.Done()
			return submitErr
		}
	}
	wg.Wait()

	return firstErr
}

// backfillText embeds the clinical text of cases whose dense row is empty.
// Without an embedder, missing rows are a hard error.
func (p *Pipeline) backfillText(ctx context.Context, cases []*core.Case, rows [][]float32) error {
	var missing []int
	for i, row := range rows {
		if len(row) == 0 {
			missing = append(missing, i)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	if p.embedder == nil {
		return fmt.Errorf("%w: %d cases have no text embedding and no embedder is configured",
			core.ErrCorruptArtifact, len(missing))
	}

	texts := make([]string, len(missing))
	for i, row := range missing {
		texts[i] = clinicalText(cases[row])
	}
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to backfill embeddings: %w", err)
	}
	if len(embeddings) != len(missing) {
		return fmt.Errorf("embedder returned %d vectors for %d texts", len(embeddings), len(missing))
	}
	for i, row := range missing {
		if len(embeddings[i]) == 0 {
			return fmt.Errorf("embedder returned an empty vector for case %s", cases[row].ID)
		}
		rows[row] = embeddings[i]
	}

	p.logger.Info("Backfilled missing text embeddings", "count", len(missing))
	return nil
}

func (p *Pipeline) writeMetadata(ctx context.Context, dir string, hasImage bool) error {
	files := map[string]string{
		storage.SpaceTFIDF: tfidfMetadataFile,
		storage.SpaceText:  textMetadataFile,
	}
	if hasImage {
		files[storage.SpaceImage] = imageMetadataFile
	}

	for space, name := range files {
		meta, err := readMetadata(dir, name)
		if err != nil {
			return err
		}
		if meta == nil {
			continue
		}
		if err := p.featureRepository.PutSpaceMetadata(ctx, space, meta); err != nil {
			return err
		}
	}
	return nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// clinicalText concatenates the text fields that feed the sentence encoder,
// in the same order the offline pipeline uses.
func clinicalText(c *core.Case) string {
	parts := make([]string, 0, 6)
	for _, s := range []string{c.Title, c.History, c.Exam, c.Findings, c.Diagnosis, c.Discussion} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}
