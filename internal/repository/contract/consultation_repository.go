package contract

import (
	"context"

	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/repository/specification"
)

type ConsultationRepository interface {
	Create(ctx context.Context, consultation *entity.Consultation) error
	Update(ctx context.Context, consultation *entity.Consultation) error
	Delete(ctx context.Context, id int64) error
	FindById(ctx context.Context, id int64) (*entity.Consultation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Consultation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
