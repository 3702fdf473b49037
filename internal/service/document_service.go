package service

import (
	"context"
	"strconv"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/dto"
	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/pkg/logger"
	"ai-taxconsult-be/internal/repository/specification"
	"ai-taxconsult-be/internal/repository/unitofwork"
)

type IDocumentService interface {
	CreateConsultation(ctx context.Context, request *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error)
	ListConsultations(ctx context.Context, category, query string, limit, offset int) (*dto.ConsultationListResponse, error)
	CreateLawArticle(ctx context.Context, request *dto.CreateLawArticleRequest) (*dto.LawArticleResponse, error)
	ListLawArticles(ctx context.Context, lawId string, limit, offset int) (*dto.LawArticleListResponse, error)
}

// documentService manages the two retrieval corpora. Every create also
// enqueues an embedding job so new documents become searchable without a
// separate step.
type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewDocumentService(uowFactory unitofwork.RepositoryFactory, publisherService IPublisherService, log logger.ILogger) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		logger:           log,
	}
}

func (ds *documentService) CreateConsultation(ctx context.Context, request *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	consultation := &entity.Consultation{
		Title:    request.Title,
		Category: request.Category,
		Content:  request.Content,
		LawRefs:  lawRefsFromDTO(request.LawRefs),
	}

	uow := ds.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	if err := uow.ConsultationRepository().Create(ctx, consultation); err != nil {
		uow.Rollback()
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	ds.enqueueEmbed(constant.DocumentTypeConsultation, strconv.FormatInt(consultation.Id, 10))

	return consultationToDTO(consultation), nil
}

func (ds *documentService) ListConsultations(ctx context.Context, category, query string, limit, offset int) (*dto.ConsultationListResponse, error) {
	limit, offset = normalizePage(limit, offset)

	var specs []specification.Specification
	if category != "" {
		specs = append(specs, specification.ByCategory{Category: category})
	}
	if query != "" {
		specs = append(specs, specification.ConsultationSearchQuery{Query: query})
	}

	repo := ds.uowFactory.NewUnitOfWork(ctx).ConsultationRepository()
	total, err := repo.Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(specs,
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	consultations, err := repo.FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ConsultationResponse, len(consultations))
	for i, c := range consultations {
		items[i] = *consultationToDTO(c)
	}
	return &dto.ConsultationListResponse{
		Consultations: items,
		Total:         total,
		Limit:         limit,
		Offset:        offset,
	}, nil
}

// CreateLawArticle upserts on the (lawId, articleKey) pair: amending a
// statute replaces the stored text instead of duplicating the article.
func (ds *documentService) CreateLawArticle(ctx context.Context, request *dto.CreateLawArticleRequest) (*dto.LawArticleResponse, error) {
	uow := ds.uowFactory.NewUnitOfWork(ctx)
	repo := uow.LawArticleRepository()

	article := &entity.LawArticle{
		LawId:        request.LawId,
		LawName:      request.LawName,
		ArticleKey:   request.ArticleKey,
		ArticleLabel: request.ArticleLabel,
		ArticleTitle: request.ArticleTitle,
		Content:      request.Content,
	}

	existing, err := repo.FindByLawAndArticle(ctx, request.LawId, request.ArticleKey)
	if err == nil && existing != nil {
		article.Id = existing.Id
		article.CreatedAt = existing.CreatedAt
		err = repo.Update(ctx, article)
	} else {
		err = repo.Create(ctx, article)
	}
	if err != nil {
		return nil, err
	}

	ds.enqueueEmbed(constant.DocumentTypeLawArticle, article.Id.String())

	return lawArticleToDTO(article), nil
}

func (ds *documentService) ListLawArticles(ctx context.Context, lawId string, limit, offset int) (*dto.LawArticleListResponse, error) {
	limit, offset = normalizePage(limit, offset)

	var specs []specification.Specification
	if lawId != "" {
		specs = append(specs, specification.ByLawId{LawId: lawId})
	}

	repo := ds.uowFactory.NewUnitOfWork(ctx).LawArticleRepository()
	total, err := repo.Count(ctx, specs...)
	if err != nil {
		return nil, err
	}

	listSpecs := append(specs,
		specification.OrderBy{Field: "law_id"},
		specification.Pagination{Limit: limit, Offset: offset},
	)
	articles, err := repo.FindAll(ctx, listSpecs...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.LawArticleResponse, len(articles))
	for i, a := range articles {
		items[i] = *lawArticleToDTO(a)
	}
	return &dto.LawArticleListResponse{
		Articles: items,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	}, nil
}

// enqueueEmbed is best effort: a failed enqueue leaves the document stored
// but unindexed, which the embed endpoints can repair later.
func (ds *documentService) enqueueEmbed(documentType, documentId string) {
	err := ds.publisherService.PublishEmbedDocument(dto.EmbedDocumentMessage{
		DocumentType: documentType,
		DocumentId:   documentId,
	})
	if err != nil {
		ds.logger.Warn("Document", "Failed to enqueue embedding job", map[string]interface{}{
			"document_type": documentType,
			"document_id":   documentId,
			"error":         err.Error(),
		})
	}
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func lawRefsFromDTO(refs []dto.LawRefDTO) []entity.LawRef {
	if len(refs) == 0 {
		return nil
	}
	out := make([]entity.LawRef, len(refs))
	for i, ref := range refs {
		out[i] = entity.LawRef{LawId: ref.LawId, ArticleKey: ref.ArticleKey}
	}
	return out
}

func lawRefsToDTO(refs []entity.LawRef) []dto.LawRefDTO {
	if len(refs) == 0 {
		return nil
	}
	out := make([]dto.LawRefDTO, len(refs))
	for i, ref := range refs {
		out[i] = dto.LawRefDTO{LawId: ref.LawId, ArticleKey: ref.ArticleKey}
	}
	return out
}

func consultationToDTO(c *entity.Consultation) *dto.ConsultationResponse {
	return &dto.ConsultationResponse{
		Id:        c.Id,
		Title:     c.Title,
		Category:  c.Category,
		Content:   c.Content,
		LawRefs:   lawRefsToDTO(c.LawRefs),
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

func lawArticleToDTO(a *entity.LawArticle) *dto.LawArticleResponse {
	return &dto.LawArticleResponse{
		Id:           a.Id.String(),
		LawId:        a.LawId,
		LawName:      a.LawName,
		ArticleKey:   a.ArticleKey,
		ArticleLabel: a.ArticleLabel,
		ArticleTitle: a.ArticleTitle,
		Content:      a.Content,
	}
}
