package specification

import "gorm.io/gorm"

// ConsultationSearchQuery filters consultations by title or content.
type ConsultationSearchQuery struct {
	Query string
}

func (s ConsultationSearchQuery) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Query + "%"
	// ILIKE for Postgres (case insensitive)
	return db.Where("title ILIKE ? OR content ILIKE ?", pattern, pattern)
}

// ByLawId filters law articles by statute.
type ByLawId struct {
	LawId string
}

func (s ByLawId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("law_id = ?", s.LawId)
}
