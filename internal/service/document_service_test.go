package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"ai-taxconsult-be/internal/dto"
	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/repository/contract"
	"ai-taxconsult-be/internal/repository/specification"
	"ai-taxconsult-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	published []dto.EmbedDocumentMessage
	err       error
}

func (p *recordingPublisher) PublishEmbedDocument(payload dto.EmbedDocumentMessage) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, payload)
	return nil
}

type memConsultationRepo struct {
	rows   []*entity.Consultation
	nextId int64
}

func (r *memConsultationRepo) Create(_ context.Context, c *entity.Consultation) error {
	r.nextId++
	c.Id = r.nextId
	c.CreatedAt = time.Now()
	stored := *c
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *memConsultationRepo) Update(_ context.Context, c *entity.Consultation) error {
	for i, row := range r.rows {
		if row.Id == c.Id {
			stored := *c
			r.rows[i] = &stored
			return nil
		}
	}
	return errors.New("not found")
}

func (r *memConsultationRepo) Delete(context.Context, int64) error { return nil }

func (r *memConsultationRepo) FindById(_ context.Context, id int64) (*entity.Consultation, error) {
	for _, row := range r.rows {
		if row.Id == id {
			return row, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memConsultationRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.Consultation, error) {
	return r.rows, nil
}

func (r *memConsultationRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.rows)), nil
}

type memLawArticleRepo struct {
	rows []*entity.LawArticle
}

func (r *memLawArticleRepo) Create(_ context.Context, a *entity.LawArticle) error {
	a.Id = uuid.New()
	a.CreatedAt = time.Now()
	stored := *a
	r.rows = append(r.rows, &stored)
	return nil
}

func (r *memLawArticleRepo) Update(_ context.Context, a *entity.LawArticle) error {
	for i, row := range r.rows {
		if row.Id == a.Id {
			stored := *a
			r.rows[i] = &stored
			return nil
		}
	}
	return errors.New("not found")
}

func (r *memLawArticleRepo) Delete(context.Context, uuid.UUID) error { return nil }

func (r *memLawArticleRepo) FindById(_ context.Context, id uuid.UUID) (*entity.LawArticle, error) {
	for _, row := range r.rows {
		if row.Id == id {
			return row, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *memLawArticleRepo) FindByLawAndArticle(_ context.Context, lawId, articleKey string) (*entity.LawArticle, error) {
	for _, row := range r.rows {
		if row.LawId == lawId && row.ArticleKey == articleKey {
			return row, nil
		}
	}
	return nil, nil
}

func (r *memLawArticleRepo) FindAll(_ context.Context, _ ...specification.Specification) ([]*entity.LawArticle, error) {
	return r.rows, nil
}

func (r *memLawArticleRepo) Count(_ context.Context, _ ...specification.Specification) (int64, error) {
	return int64(len(r.rows)), nil
}

type memUow struct {
	consultations *memConsultationRepo
	articles      *memLawArticleRepo
	beginErr      error
	begun         bool
	committed     bool
	rolledBack    bool
}

func (u *memUow) Begin(context.Context) error {
	if u.beginErr != nil {
		return u.beginErr
	}
	u.begun = true
	return nil
}

func (u *memUow) Commit() error   { u.committed = true; return nil }
func (u *memUow) Rollback() error { u.rolledBack = true; return nil }

func (u *memUow) ConsultationRepository() contract.ConsultationRepository { return u.consultations }
func (u *memUow) LawArticleRepository() contract.LawArticleRepository     { return u.articles }
func (u *memUow) DocumentEmbeddingRepository() contract.DocumentEmbeddingRepository {
	return nil
}

type memUowFactory struct {
	uow *memUow
}

func (f *memUowFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork { return f.uow }

func newDocumentFixture() (*memUow, *recordingPublisher, IDocumentService) {
	uow := &memUow{
		consultations: &memConsultationRepo{},
		articles:      &memLawArticleRepo{},
	}
	pub := &recordingPublisher{}
	svc := NewDocumentService(&memUowFactory{uow: uow}, pub, nopLogger{})
	return uow, pub, svc
}

func TestCreateConsultationStoresAndEnqueues(t *testing.T) {
	uow, pub, svc := newDocumentFixture()

	res, err := svc.CreateConsultation(context.Background(), &dto.CreateConsultationRequest{
		Title:    "간이과세자 부가가치세 신고 문의",
		Category: "부가가치세",
		Content:  "간이과세자도 신고 의무가 있나요?",
		LawRefs:  []dto.LawRefDTO{{LawId: "vat-act", ArticleKey: "art-26"}},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Id)
	assert.True(t, uow.begun)
	assert.True(t, uow.committed)
	require.Len(t, uow.consultations.rows, 1)
	assert.Equal(t, "vat-act", uow.consultations.rows[0].LawRefs[0].LawId)

	require.Len(t, pub.published, 1)
	assert.Equal(t, "consultation", pub.published[0].DocumentType)
	assert.Equal(t, "1", pub.published[0].DocumentId)
}

func TestCreateConsultationBeginFailure(t *testing.T) {
	uow, pub, svc := newDocumentFixture()
	uow.beginErr = errors.New("connection refused")

	_, err := svc.CreateConsultation(context.Background(), &dto.CreateConsultationRequest{
		Title:   "제목",
		Content: "내용",
	})
	require.Error(t, err)
	assert.Empty(t, pub.published)
}

func TestCreateConsultationEnqueueFailureStillSucceeds(t *testing.T) {
	_, pub, svc := newDocumentFixture()
	pub.err = errors.New("bus closed")

	res, err := svc.CreateConsultation(context.Background(), &dto.CreateConsultationRequest{
		Title:   "제목",
		Content: "내용",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Id)
}

func TestCreateLawArticleUpsert(t *testing.T) {
	uow, pub, svc := newDocumentFixture()

	first, err := svc.CreateLawArticle(context.Background(), &dto.CreateLawArticleRequest{
		LawId:      "vat-act",
		LawName:    "부가가치세법",
		ArticleKey: "art-26",
		Content:    "원래 조문",
	})
	require.NoError(t, err)
	require.Len(t, uow.articles.rows, 1)

	second, err := svc.CreateLawArticle(context.Background(), &dto.CreateLawArticleRequest{
		LawId:      "vat-act",
		LawName:    "부가가치세법",
		ArticleKey: "art-26",
		Content:    "개정된 조문",
	})
	require.NoError(t, err)

	require.Len(t, uow.articles.rows, 1, "same law and article key must not duplicate")
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, "개정된 조문", uow.articles.rows[0].Content)

	require.Len(t, pub.published, 2)
	assert.Equal(t, "lawArticle", pub.published[1].DocumentType)
	assert.Equal(t, second.Id, pub.published[1].DocumentId)
}

func TestListConsultationsPagination(t *testing.T) {
	uow, _, svc := newDocumentFixture()
	for i := 0; i < 3; i++ {
		require.NoError(t, uow.consultations.Create(context.Background(), &entity.Consultation{
			Title:   "상담",
			Content: "내용",
		}))
	}

	res, err := svc.ListConsultations(context.Background(), "", "", -5, -1)
	require.NoError(t, err)

	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, 20, res.Limit, "out-of-range limit falls back to the default")
	assert.Equal(t, 0, res.Offset)
	assert.Len(t, res.Consultations, 3)
}

func TestListLawArticlesFilterPassthrough(t *testing.T) {
	uow, _, svc := newDocumentFixture()
	require.NoError(t, uow.articles.Create(context.Background(), &entity.LawArticle{
		LawId:      "income-tax-act",
		ArticleKey: "art-70",
		Content:    "조문",
	}))

	res, err := svc.ListLawArticles(context.Background(), "income-tax-act", 0, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Total)
	require.Len(t, res.Articles, 1)
	assert.Equal(t, "income-tax-act", res.Articles[0].LawId)
}
