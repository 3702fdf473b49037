package controller

import (
	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/dto"
	"ai-taxconsult-be/internal/pkg/serverutils"
	"ai-taxconsult-be/internal/service"
	"ai-taxconsult-be/pkg/rag/search"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	CreateConsultation(ctx *fiber.Ctx) error
	ListConsultations(ctx *fiber.Ctx) error
	CreateLawArticle(ctx *fiber.Ctx) error
	ListLawArticles(ctx *fiber.Ctx) error
	EmbedConsultation(ctx *fiber.Ctx) error
	EmbedLawArticle(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type documentController struct {
	documentService  service.IDocumentService
	publisherService service.IPublisherService
	searchEngine     *search.Engine
}

func NewDocumentController(documentService service.IDocumentService, publisherService service.IPublisherService, searchEngine *search.Engine) IDocumentController {
	return &documentController{
		documentService:  documentService,
		publisherService: publisherService,
		searchEngine:     searchEngine,
	}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/documents")
	h.Post("/consultations", c.CreateConsultation)
	h.Get("/consultations", c.ListConsultations)
	h.Post("/consultations/:id/embed", c.EmbedConsultation)
	h.Post("/law-articles", c.CreateLawArticle)
	h.Get("/law-articles", c.ListLawArticles)
	h.Post("/law-articles/:id/embed", c.EmbedLawArticle)
	h.Post("/search", c.Search)
}

func (c *documentController) CreateConsultation(ctx *fiber.Ctx) error {
	var req dto.CreateConsultationRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.documentService.CreateConsultation(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Consultation created", res))
}

func (c *documentController) ListConsultations(ctx *fiber.Ctx) error {
	res, err := c.documentService.ListConsultations(
		ctx.Context(),
		ctx.Query("category"),
		ctx.Query("q"),
		ctx.QueryInt("limit", 20),
		ctx.QueryInt("offset", 0),
	)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Consultations", res))
}

func (c *documentController) CreateLawArticle(ctx *fiber.Ctx) error {
	var req dto.CreateLawArticleRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.documentService.CreateLawArticle(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Law article saved", res))
}

func (c *documentController) ListLawArticles(ctx *fiber.Ctx) error {
	res, err := c.documentService.ListLawArticles(
		ctx.Context(),
		ctx.Query("law_id"),
		ctx.QueryInt("limit", 20),
		ctx.QueryInt("offset", 0),
	)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Law articles", res))
}

func (c *documentController) EmbedConsultation(ctx *fiber.Ctx) error {
	return c.enqueue(ctx, constant.DocumentTypeConsultation)
}

func (c *documentController) EmbedLawArticle(ctx *fiber.Ctx) error {
	return c.enqueue(ctx, constant.DocumentTypeLawArticle)
}

func (c *documentController) enqueue(ctx *fiber.Ctx, documentType string) error {
	documentId := ctx.Params("id")
	if documentId == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Document ID is required"))
	}

	msg := dto.EmbedDocumentMessage{
		DocumentType: documentType,
		DocumentId:   documentId,
	}
	if err := c.publisherService.PublishEmbedDocument(msg); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Embedding job enqueued", dto.EmbedDocumentResponse{
		DocumentType: documentType,
		DocumentId:   documentId,
		Enqueued:     true,
	}))
}

// Search exposes hybrid retrieval directly, mainly for tuning thresholds
// and inspecting what the chat pipeline would see.
func (c *documentController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	results := c.searchEngine.HybridSearch(ctx.Context(), req.Query, req.ConsultationTopK, req.LawArticleTopK, req.Threshold)

	dtos := make([]dto.SearchResultDTO, len(results))
	for i, r := range results {
		dtos[i] = dto.SearchResultDTO{
			DocumentType:    r.DocumentType,
			Content:         r.Content,
			SimilarityScore: r.SimilarityScore,
			ConsultationId:  r.ConsultationId,
			Title:           r.Title,
			Category:        r.Category,
			LawId:           r.LawId,
			LawName:         r.LawName,
			ArticleKey:      r.ArticleKey,
			ArticleLabel:    r.ArticleLabel,
			ArticleTitle:    r.ArticleTitle,
		}
	}

	return ctx.JSON(serverutils.SuccessResponse("Search results", dto.SearchResponse{
		Query:   req.Query,
		Results: dtos,
	}))
}
