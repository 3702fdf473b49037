package unitofwork

import (
	"context"

	"ai-taxconsult-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConsultationRepository() contract.ConsultationRepository
	LawArticleRepository() contract.LawArticleRepository
	DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository
}
