package specification

import "gorm.io/gorm"

// ByDocumentType filters embeddings by corpus.
type ByDocumentType struct {
	DocumentType string
}

func (s ByDocumentType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("document_type = ?", s.DocumentType)
}

// ByConsultationId filters embeddings belonging to one consultation.
type ByConsultationId struct {
	ConsultationId int64
}

func (s ByConsultationId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("consultation_id = ?", s.ConsultationId)
}

// ByLawArticle filters by the (lawId, articleKey) pair.
type ByLawArticle struct {
	LawId      string
	ArticleKey string
}

func (s ByLawArticle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("law_id = ? AND article_key = ?", s.LawId, s.ArticleKey)
}

// ByCategory filters consultations by category.
type ByCategory struct {
	Category string
}

func (s ByCategory) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("category = ?", s.Category)
}
