package mapper

import (
	"time"

	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/model"

	"gorm.io/gorm"
)

type LawArticleMapper struct{}

func NewLawArticleMapper() *LawArticleMapper {
	return &LawArticleMapper{}
}

func (m *LawArticleMapper) ToEntity(e *model.LawArticle) *entity.LawArticle {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.LawArticle{
		Id:           e.Id,
		LawId:        e.LawId,
		LawName:      e.LawName,
		ArticleKey:   e.ArticleKey,
		ArticleLabel: e.ArticleLabel,
		ArticleTitle: e.ArticleTitle,
		Content:      e.Content,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
		IsDeleted:    e.DeletedAt.Valid,
	}
}

func (m *LawArticleMapper) ToModel(e *entity.LawArticle) *model.LawArticle {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.LawArticle{
		Id:           e.Id,
		LawId:        e.LawId,
		LawName:      e.LawName,
		ArticleKey:   e.ArticleKey,
		ArticleLabel: e.ArticleLabel,
		ArticleTitle: e.ArticleTitle,
		Content:      e.Content,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    updatedAt,
		DeletedAt:    deletedAt,
	}
}
