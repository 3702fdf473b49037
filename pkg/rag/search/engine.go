package search

import (
	"context"
	"strings"
	"sync"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/pkg/logger"
	"ai-taxconsult-be/internal/repository/contract"
	"ai-taxconsult-be/internal/repository/unitofwork"
	"ai-taxconsult-be/pkg/embedding"
)

// Config encapsulates hybrid search parameters
type Config struct {
	ConsultationTopK int
	LawArticleTopK   int
	BaseThreshold    float64
	// ArticleMargin relaxes the threshold for law-article searches; statute
	// text embeds further from conversational queries than case records do.
	ArticleMargin     float64
	MaxExpansionPairs int
	ExpansionWorkers  int
}

// DefaultConfig returns default search configuration
func DefaultConfig() Config {
	return Config{
		ConsultationTopK:  10,
		LawArticleTopK:    10,
		BaseThreshold:     0.6,
		ArticleMargin:     0.1,
		MaxExpansionPairs: 20,
		ExpansionWorkers:  4,
	}
}

// Engine runs hybrid retrieval over the shared vector index: consultation
// cases, law articles, and a cross-expansion pass that pulls in every law
// article the retrieved consultations reference.
type Engine struct {
	embeddingProvider embedding.EmbeddingProvider
	uowFactory        unitofwork.RepositoryFactory
	config            Config
	logger            logger.ILogger
}

func NewEngine(embeddingProvider embedding.EmbeddingProvider, uowFactory unitofwork.RepositoryFactory, config Config, log logger.ILogger) *Engine {
	if config.ConsultationTopK <= 0 {
		config.ConsultationTopK = 10
	}
	if config.LawArticleTopK <= 0 {
		config.LawArticleTopK = 10
	}
	if config.MaxExpansionPairs <= 0 {
		config.MaxExpansionPairs = 20
	}
	if config.ExpansionWorkers <= 0 {
		config.ExpansionWorkers = 4
	}
	return &Engine{
		embeddingProvider: embeddingProvider,
		uowFactory:        uowFactory,
		config:            config,
		logger:            log,
	}
}

// Search is the simple path: consultation records only.
func (e *Engine) Search(ctx context.Context, query string, topK int, threshold float64) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}
	}
	vector, ok := e.embed(query)
	if !ok {
		return []Result{}
	}
	repo := e.uowFactory.NewUnitOfWork(ctx).DocumentEmbeddingRepository()
	return e.searchFiltered(ctx, repo, vector, topK, threshold, contract.VectorFilter{
		DocumentType: constant.DocumentTypeConsultation,
	})
}

// HybridSearch retrieves consultations, law articles, and cross-referenced
// articles in one pass. Zero topK values fall back to the configured
// defaults. The merge order is consultations, then direct article hits,
// then expanded articles, with first-wins dedup per source document.
func (e *Engine) HybridSearch(ctx context.Context, query string, consultationTopK, lawTopK int, threshold float64) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Result{}
	}
	if consultationTopK <= 0 {
		consultationTopK = e.config.ConsultationTopK
	}
	if lawTopK <= 0 {
		lawTopK = e.config.LawArticleTopK
	}
	if threshold <= 0 {
		threshold = e.config.BaseThreshold
	}
	articleThreshold := threshold - e.config.ArticleMargin

	vector, ok := e.embed(query)
	if !ok {
		return []Result{}
	}
	repo := e.uowFactory.NewUnitOfWork(ctx).DocumentEmbeddingRepository()

	consultations := e.searchFiltered(ctx, repo, vector, consultationTopK, threshold, contract.VectorFilter{
		DocumentType: constant.DocumentTypeConsultation,
	})

	articles := e.searchFiltered(ctx, repo, vector, lawTopK, articleThreshold, contract.VectorFilter{
		DocumentType: constant.DocumentTypeLawArticle,
	})

	expanded := e.expandLawRefs(ctx, repo, vector, consultations, articleThreshold)

	e.logger.Debug("Search", "Hybrid search completed", map[string]interface{}{
		"query_len":     len(query),
		"consultations": len(consultations),
		"law_articles":  len(articles),
		"expanded":      len(expanded),
	})

	merged := make([]Result, 0, len(consultations)+len(articles)+len(expanded))
	seen := make(map[string]bool)
	for _, group := range [][]Result{consultations, articles, expanded} {
		for _, r := range group {
			key := r.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, r)
		}
	}
	return merged
}

func (e *Engine) embed(query string) ([]float32, bool) {
	res, err := e.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		e.logger.Error("Search", "Embedding generation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, false
	}
	return res.Embedding.Values, true
}

// searchFiltered runs one similarity search. Failures degrade to an empty
// slice so a broken stage never sinks the whole hybrid pass.
func (e *Engine) searchFiltered(ctx context.Context, repo contract.DocumentEmbeddingRepository, vector []float32, limit int, threshold float64, filter contract.VectorFilter) []Result {
	if threshold < 0 {
		threshold = 0
	}
	scored, err := repo.SearchSimilarWithScore(ctx, vector, limit, filter, threshold)
	if err != nil {
		e.logger.Error("Search", "Vector search failed", map[string]interface{}{
			"document_type": filter.DocumentType,
			"error":         err.Error(),
		})
		return []Result{}
	}
	results := make([]Result, 0, len(scored))
	for _, s := range scored {
		results = append(results, resultFromEmbedding(s.Embedding, s.Similarity))
	}
	return results
}

// expandLawRefs collects the distinct lawId:articleKey pairs referenced by
// the consultation hits, in insertion order and capped, then fetches each
// article with a filtered search. A pair that misses at the relaxed
// threshold is retried at threshold 0 so referenced articles always show up
// when they exist in the index at all.
func (e *Engine) expandLawRefs(ctx context.Context, repo contract.DocumentEmbeddingRepository, vector []float32, consultations []Result, threshold float64) []Result {
	type pair struct {
		lawId      string
		articleKey string
	}
	var pairs []pair
	seen := make(map[pair]bool)
	for _, c := range consultations {
		for _, ref := range c.LawRefs {
			p := pair{lawId: ref.LawId, articleKey: ref.ArticleKey}
			if seen[p] {
				continue
			}
			seen[p] = true
			pairs = append(pairs, p)
			if len(pairs) >= e.config.MaxExpansionPairs {
				break
			}
		}
		if len(pairs) >= e.config.MaxExpansionPairs {
			break
		}
	}
	if len(pairs) == 0 {
		return []Result{}
	}

	results := make([][]Result, len(pairs))
	sem := make(chan struct{}, e.config.ExpansionWorkers)
	var wg sync.WaitGroup
	for i, p := range pairs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p pair) {
			defer wg.Done()
			defer func() { <-sem }()
			filter := contract.VectorFilter{
				DocumentType: constant.DocumentTypeLawArticle,
				LawId:        p.lawId,
				ArticleKey:   p.articleKey,
			}
			hits := e.searchFiltered(ctx, repo, vector, 1, threshold, filter)
			if len(hits) == 0 {
				hits = e.searchFiltered(ctx, repo, vector, 1, 0, filter)
			}
			results[i] = hits
		}(i, p)
	}
	wg.Wait()

	var expanded []Result
	for _, hits := range results {
		expanded = append(expanded, hits...)
	}
	return expanded
}
