package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LawArticle is a source law article. (LawId, ArticleKey) identifies the
// article within its statute.
type LawArticle struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	LawId        string         `gorm:"type:varchar(64);not null;uniqueIndex:uq_law_article"`
	LawName      string         `gorm:"type:varchar(256)"`
	ArticleKey   string         `gorm:"type:varchar(64);not null;uniqueIndex:uq_law_article"`
	ArticleLabel string         `gorm:"type:varchar(128)"` // human-readable, e.g. 제14조제1항
	ArticleTitle string         `gorm:"type:varchar(512)"`
	Content      string         `gorm:"type:text"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (LawArticle) TableName() string {
	return "law_articles"
}
