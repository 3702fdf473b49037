package contract

import (
	"context"

	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/repository/specification"

	"github.com/google/uuid"
)

type LawArticleRepository interface {
	Create(ctx context.Context, article *entity.LawArticle) error
	Update(ctx context.Context, article *entity.LawArticle) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.LawArticle, error)
	FindByLawAndArticle(ctx context.Context, lawId, articleKey string) (*entity.LawArticle, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LawArticle, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
