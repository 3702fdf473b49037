package contract

import (
	"context"

	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocumentEmbedding wraps DocumentEmbedding with its similarity score
type ScoredDocumentEmbedding struct {
	Embedding  *entity.DocumentEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

// VectorFilter narrows a similarity search. Zero-valued fields are ignored.
type VectorFilter struct {
	DocumentType string
	LawId        string
	ArticleKey   string
}

type DocumentEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.DocumentEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.DocumentEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByConsultationId(ctx context.Context, consultationId int64) error
	DeleteByLawArticle(ctx context.Context, lawId, articleKey string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocumentEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns embeddings with their similarity scores,
	// restricted by filter and cut off at threshold.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, filter VectorFilter, threshold float64) ([]*ScoredDocumentEmbedding, error)
}
