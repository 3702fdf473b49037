package entity

import "time"

// LawRef points a consultation at one law article.
type LawRef struct {
	LawId      string `json:"lawId"`
	ArticleKey string `json:"articleKey"`
}

type Consultation struct {
	Id        int64
	Title     string
	Category  string
	Content   string
	LawRefs   []LawRef
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
