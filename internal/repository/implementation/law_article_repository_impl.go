package implementation

import (
	"context"
	"errors"

	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/mapper"
	"ai-taxconsult-be/internal/model"
	"ai-taxconsult-be/internal/repository/contract"
	"ai-taxconsult-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LawArticleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LawArticleMapper
}

func NewLawArticleRepository(db *gorm.DB) contract.LawArticleRepository {
	return &LawArticleRepositoryImpl{
		db:     db,
		mapper: mapper.NewLawArticleMapper(),
	}
}

func (r *LawArticleRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LawArticleRepositoryImpl) Create(ctx context.Context, article *entity.LawArticle) error {
	m := r.mapper.ToModel(article)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*article = *r.mapper.ToEntity(m)
	return nil
}

func (r *LawArticleRepositoryImpl) Update(ctx context.Context, article *entity.LawArticle) error {
	m := r.mapper.ToModel(article)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*article = *r.mapper.ToEntity(m)
	return nil
}

func (r *LawArticleRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.LawArticle{}, id).Error
}

func (r *LawArticleRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.LawArticle, error) {
	var m model.LawArticle
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *LawArticleRepositoryImpl) FindByLawAndArticle(ctx context.Context, lawId, articleKey string) (*entity.LawArticle, error) {
	var m model.LawArticle
	err := r.db.WithContext(ctx).
		Where("law_id = ? AND article_key = ?", lawId, articleKey).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *LawArticleRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LawArticle, error) {
	var models []*model.LawArticle
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.LawArticle, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *LawArticleRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.LawArticle{}).Count(&count).Error
	return count, err
}
