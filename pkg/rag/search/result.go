package search

import (
	"strconv"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/entity"
)

// Result is one retrieved document, tagged by DocumentType. Consultation
// results carry the consultation-specific fields, law-article results the
// article fields; the rest stay zero.
type Result struct {
	DocumentType    string
	Content         string
	SimilarityScore float64
	ChunkIndex      int
	TotalChunks     int

	// consultation fields
	ConsultationId int64
	Title          string
	Category       string
	CreatedAt      string
	LawRefs        []entity.LawRef

	// law article fields
	LawId        string
	LawName      string
	ArticleKey   string
	ArticleLabel string
	ArticleTitle string
}

// DedupKey identifies the source document behind a result. Chunks of the
// same document share a key so only the best-ranked one survives a merge.
func (r Result) DedupKey() string {
	if r.DocumentType == constant.DocumentTypeLawArticle {
		return "lawArticle:" + r.LawId + ":" + r.ArticleKey
	}
	return "consultation:" + strconv.FormatInt(r.ConsultationId, 10)
}

// resultFromEmbedding lifts a scored row into a Result using the metadata
// stored alongside the vector.
func resultFromEmbedding(doc *entity.DocumentEmbedding, similarity float64) Result {
	r := Result{
		DocumentType:    doc.DocumentType,
		Content:         doc.Content,
		SimilarityScore: similarity,
		ChunkIndex:      doc.ChunkIndex,
		TotalChunks:     doc.TotalChunks,
		LawId:           doc.LawId,
		ArticleKey:      doc.ArticleKey,
	}
	if doc.ConsultationId != nil {
		r.ConsultationId = *doc.ConsultationId
	}

	meta := doc.Metadata
	if meta == nil {
		return r
	}
	r.Title = metaString(meta, "title")
	r.Category = metaString(meta, "category")
	r.CreatedAt = metaString(meta, "createdAt")
	r.LawName = metaString(meta, "lawName")
	r.ArticleLabel = metaString(meta, "articleLabel")
	r.ArticleTitle = metaString(meta, "articleTitle")
	r.LawRefs = metaLawRefs(meta)
	return r
}

func metaString(meta map[string]interface{}, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

// metaLawRefs decodes the lawRefs metadata entry, a JSON array of
// {lawId, articleKey} objects.
func metaLawRefs(meta map[string]interface{}) []entity.LawRef {
	raw, ok := meta["lawRefs"].([]interface{})
	if !ok {
		return nil
	}
	refs := make([]entity.LawRef, 0, len(raw))
	for _, item := range raw {
		obj, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		ref := entity.LawRef{}
		if v, ok := obj["lawId"].(string); ok {
			ref.LawId = v
		}
		if v, ok := obj["articleKey"].(string); ok {
			ref.ArticleKey = v
		}
		if ref.LawId != "" && ref.ArticleKey != "" {
			refs = append(refs, ref)
		}
	}
	return refs
}
