package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/dto"
	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/pkg/logger"
	"ai-taxconsult-be/internal/repository/unitofwork"
	"ai-taxconsult-be/pkg/embedding"
	"ai-taxconsult-be/pkg/events"
	natspub "ai-taxconsult-be/pkg/nats"
	"ai-taxconsult-be/pkg/utils"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IIngestService interface {
	Consume(ctx context.Context) error
}

// ingestService consumes embedding jobs: load the source row, re-chunk it
// with the sentence splitter, embed every chunk, and replace the stored
// vectors inside one transaction.
type ingestService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	natsPublisher     *natspub.Publisher // optional
	maxChunkChars     int
	chunkOverlap      int
	logger            logger.ILogger
}

func NewIngestService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	natsPublisher *natspub.Publisher,
	maxChunkChars int,
	chunkOverlap int,
	log logger.ILogger,
) IIngestService {
	if maxChunkChars <= 0 {
		maxChunkChars = utils.DefaultMaxChunkChars
	}
	return &ingestService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		natsPublisher:     natsPublisher,
		maxChunkChars:     maxChunkChars,
		chunkOverlap:      chunkOverlap,
		logger:            log,
	}
}

func (is *ingestService) Consume(ctx context.Context) error {
	messages, err := is.pubSub.Subscribe(ctx, is.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			is.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (is *ingestService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.EmbedDocumentMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		is.logger.Error("Ingest", "Failed to unmarshal message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // invalid payloads would loop forever on Nack
		return
	}

	var (
		chunks int
		err    error
	)
	switch payload.DocumentType {
	case constant.DocumentTypeConsultation:
		chunks, err = is.embedConsultation(ctx, payload.DocumentId)
	case constant.DocumentTypeLawArticle:
		chunks, err = is.embedLawArticle(ctx, payload.DocumentId)
	default:
		is.logger.Error("Ingest", "Unknown document type", map[string]interface{}{
			"document_type": payload.DocumentType,
		})
		msg.Ack()
		return
	}

	if err != nil {
		is.logger.Error("Ingest", "Embedding job failed", map[string]interface{}{
			"document_type": payload.DocumentType,
			"document_id":   payload.DocumentId,
			"error":         err.Error(),
		})
		msg.Nack() // retriable
		return
	}

	is.logger.Info("Ingest", "Document embedded", map[string]interface{}{
		"document_type": payload.DocumentType,
		"document_id":   payload.DocumentId,
		"chunks":        chunks,
	})
	is.publishEmbedded(ctx, payload.DocumentType, payload.DocumentId, chunks)
	msg.Ack()
}

func (is *ingestService) embedConsultation(ctx context.Context, documentId string) (int, error) {
	id, err := strconv.ParseInt(documentId, 10, 64)
	if err != nil {
		return 0, err
	}

	uow := is.uowFactory.NewUnitOfWork(ctx)
	consultation, err := uow.ConsultationRepository().FindById(ctx, id)
	if err != nil {
		return 0, err
	}
	if consultation == nil {
		// deleted between enqueue and processing; nothing to do
		return 0, nil
	}

	chunks := utils.Chunk(consultation.Content, is.maxChunkChars, is.chunkOverlap)
	metadata := map[string]interface{}{
		"title":     consultation.Title,
		"category":  consultation.Category,
		"createdAt": consultation.CreatedAt.Format(time.RFC3339),
	}
	if len(consultation.LawRefs) > 0 {
		refs := make([]interface{}, len(consultation.LawRefs))
		for i, ref := range consultation.LawRefs {
			refs[i] = map[string]interface{}{
				"lawId":      ref.LawId,
				"articleKey": ref.ArticleKey,
			}
		}
		metadata["lawRefs"] = refs
	}

	embeddings := make([]*entity.DocumentEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := is.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return 0, err
		}
		consultationId := consultation.Id
		embeddings = append(embeddings, &entity.DocumentEmbedding{
			DocumentType:   constant.DocumentTypeConsultation,
			Content:        chunk,
			EmbeddingValue: vector.Embedding.Values,
			ConsultationId: &consultationId,
			ChunkIndex:     i,
			TotalChunks:    len(chunks),
			Metadata:       metadata,
		})
	}

	return len(embeddings), is.replaceEmbeddings(ctx, func(txUow unitofwork.UnitOfWork) error {
		return txUow.DocumentEmbeddingRepository().DeleteByConsultationId(ctx, id)
	}, embeddings)
}

func (is *ingestService) embedLawArticle(ctx context.Context, documentId string) (int, error) {
	id, err := uuid.Parse(documentId)
	if err != nil {
		return 0, err
	}

	uow := is.uowFactory.NewUnitOfWork(ctx)
	article, err := uow.LawArticleRepository().FindById(ctx, id)
	if err != nil {
		return 0, err
	}
	if article == nil {
		return 0, nil
	}

	chunks := utils.Chunk(article.Content, is.maxChunkChars, is.chunkOverlap)
	metadata := map[string]interface{}{
		"lawName":      article.LawName,
		"articleLabel": article.ArticleLabel,
		"articleTitle": article.ArticleTitle,
	}

	embeddings := make([]*entity.DocumentEmbedding, 0, len(chunks))
	for i, chunk := range chunks {
		vector, err := is.embeddingProvider.Generate(chunk, "RETRIEVAL_DOCUMENT")
		if err != nil {
			return 0, err
		}
		embeddings = append(embeddings, &entity.DocumentEmbedding{
			DocumentType:   constant.DocumentTypeLawArticle,
			Content:        chunk,
			EmbeddingValue: vector.Embedding.Values,
			LawId:          article.LawId,
			ArticleKey:     article.ArticleKey,
			ChunkIndex:     i,
			TotalChunks:    len(chunks),
			Metadata:       metadata,
		})
	}

	return len(embeddings), is.replaceEmbeddings(ctx, func(txUow unitofwork.UnitOfWork) error {
		return txUow.DocumentEmbeddingRepository().DeleteByLawArticle(ctx, article.LawId, article.ArticleKey)
	}, embeddings)
}

// replaceEmbeddings swaps old vectors for new ones atomically.
func (is *ingestService) replaceEmbeddings(ctx context.Context, deleteOld func(unitofwork.UnitOfWork) error, embeddings []*entity.DocumentEmbedding) error {
	uow := is.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	if err := deleteOld(uow); err != nil {
		_ = uow.Rollback()
		return err
	}
	if err := uow.DocumentEmbeddingRepository().CreateBulk(ctx, embeddings); err != nil {
		_ = uow.Rollback()
		return err
	}
	return uow.Commit()
}

func (is *ingestService) publishEmbedded(ctx context.Context, documentType, documentId string, chunks int) {
	if is.natsPublisher == nil {
		return
	}
	event := events.NewDocumentEmbedded(documentType, documentId, chunks)
	if err := is.natsPublisher.Publish(ctx, event); err != nil {
		is.logger.Warn("Ingest", "Failed to publish embedded event", map[string]interface{}{
			"document_id": documentId,
			"error":       err.Error(),
		})
	}
}
