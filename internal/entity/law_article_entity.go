package entity

import (
	"time"

	"github.com/google/uuid"
)

type LawArticle struct {
	Id           uuid.UUID
	LawId        string
	LawName      string
	ArticleKey   string
	ArticleLabel string
	ArticleTitle string
	Content      string
	CreatedAt    time.Time
	UpdatedAt    *time.Time
	DeletedAt    *time.Time
	IsDeleted    bool
}
