package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DocumentEmbedding is one embedded chunk of either a consultation record or
// a law article. DocumentType discriminates; the type-specific identifiers
// (consultation_id vs law_id/article_key) are only set for their own type.
type DocumentEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentType   string          `gorm:"type:varchar(32);not null;index"`
	Content        string          `gorm:"type:text"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimensionality
	ConsultationId *int64          `gorm:"index"`
	LawId          string          `gorm:"type:varchar(64);index:idx_doc_law_article"`
	ArticleKey     string          `gorm:"type:varchar(64);index:idx_doc_law_article"`
	ChunkIndex     int             `gorm:"default:0"`
	TotalChunks    int             `gorm:"default:1"`
	Metadata       datatypes.JSON  `gorm:"type:jsonb"`
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (DocumentEmbedding) TableName() string {
	return "document_embeddings"
}
