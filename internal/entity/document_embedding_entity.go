package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentEmbedding is one embedded chunk in the shared vector index.
type DocumentEmbedding struct {
	Id             uuid.UUID
	DocumentType   string
	Content        string
	EmbeddingValue []float32
	ConsultationId *int64
	LawId          string
	ArticleKey     string
	ChunkIndex     int
	TotalChunks    int
	Metadata       map[string]interface{}
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
