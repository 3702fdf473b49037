package dto

// EmbedDocumentMessage is the watermill payload for one embedding job.
type EmbedDocumentMessage struct {
	DocumentType string `json:"document_type"` // "consultation" | "lawArticle"
	DocumentId   string `json:"document_id"`   // consultation id, or law article uuid
}

type EmbedDocumentResponse struct {
	DocumentType string `json:"document_type"`
	DocumentId   string `json:"document_id"`
	Enqueued     bool   `json:"enqueued"`
}

type SearchRequest struct {
	Query            string  `json:"query" validate:"required"`
	ConsultationTopK int     `json:"consultation_top_k,omitempty" validate:"min=0,max=50"`
	LawArticleTopK   int     `json:"law_article_top_k,omitempty" validate:"min=0,max=50"`
	Threshold        float64 `json:"threshold,omitempty" validate:"min=0,max=1"`
}

type SearchResultDTO struct {
	DocumentType    string  `json:"document_type"`
	Content         string  `json:"content"`
	SimilarityScore float64 `json:"similarity_score"`
	ConsultationId  int64   `json:"consultation_id,omitempty"`
	Title           string  `json:"title,omitempty"`
	Category        string  `json:"category,omitempty"`
	LawId           string  `json:"law_id,omitempty"`
	LawName         string  `json:"law_name,omitempty"`
	ArticleKey      string  `json:"article_key,omitempty"`
	ArticleLabel    string  `json:"article_label,omitempty"`
	ArticleTitle    string  `json:"article_title,omitempty"`
}

type SearchResponse struct {
	Query   string            `json:"query"`
	Results []SearchResultDTO `json:"results"`
}

type CreateConsultationRequest struct {
	Title    string      `json:"title" validate:"required,max=500"`
	Category string      `json:"category" validate:"max=100"`
	Content  string      `json:"content" validate:"required"`
	LawRefs  []LawRefDTO `json:"law_refs,omitempty" validate:"dive"`
}

type LawRefDTO struct {
	LawId      string `json:"law_id" validate:"required"`
	ArticleKey string `json:"article_key" validate:"required"`
}

type ConsultationResponse struct {
	Id        int64       `json:"id"`
	Title     string      `json:"title"`
	Category  string      `json:"category"`
	Content   string      `json:"content"`
	LawRefs   []LawRefDTO `json:"law_refs,omitempty"`
	CreatedAt string      `json:"created_at"`
}

type ConsultationListResponse struct {
	Consultations []ConsultationResponse `json:"consultations"`
	Total         int64                  `json:"total"`
	Limit         int                    `json:"limit"`
	Offset        int                    `json:"offset"`
}

type CreateLawArticleRequest struct {
	LawId        string `json:"law_id" validate:"required,max=100"`
	LawName      string `json:"law_name" validate:"required,max=200"`
	ArticleKey   string `json:"article_key" validate:"required,max=100"`
	ArticleLabel string `json:"article_label" validate:"max=100"`
	ArticleTitle string `json:"article_title" validate:"max=300"`
	Content      string `json:"content" validate:"required"`
}

type LawArticleResponse struct {
	Id           string `json:"id"`
	LawId        string `json:"law_id"`
	LawName      string `json:"law_name"`
	ArticleKey   string `json:"article_key"`
	ArticleLabel string `json:"article_label,omitempty"`
	ArticleTitle string `json:"article_title,omitempty"`
	Content      string `json:"content"`
}

type LawArticleListResponse struct {
	Articles []LawArticleResponse `json:"articles"`
	Total    int64                `json:"total"`
	Limit    int                  `json:"limit"`
	Offset   int                  `json:"offset"`
}
