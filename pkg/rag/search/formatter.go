package search

import (
	"fmt"
	"strings"

	"ai-taxconsult-be/internal/constant"
)

const (
	consultationContentLimit = 500
	articleContentLimit      = 300
)

// FormatResults renders retrieval output as prompt-ready text, consultation
// cases first, then law articles.
func FormatResults(query string, results []Result) string {
	if len(results) == 0 {
		return fmt.Sprintf("검색어 '%s'에 대한 관련 상담 사례를 찾을 수 없습니다.\n다른 키워드로 검색하거나 질문을 더 구체적으로 작성해주세요.", query)
	}

	var consultations, articles []Result
	for _, r := range results {
		if r.DocumentType == constant.DocumentTypeLawArticle {
			articles = append(articles, r)
		} else {
			consultations = append(consultations, r)
		}
	}

	var sb strings.Builder
	sb.WriteString("검색어: ")
	sb.WriteString(query)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "검색 결과 (%d건):\n\n", len(results))

	if len(consultations) > 0 {
		fmt.Fprintf(&sb, "=== 상담 사례 (%d건) ===\n\n", len(consultations))
		for i, r := range consultations {
			writeConsultation(&sb, i+1, r)
		}
	}

	if len(articles) > 0 {
		fmt.Fprintf(&sb, "\n=== 법령 조문 (%d건) ===\n\n", len(articles))
		for i, r := range articles {
			writeArticle(&sb, i+1, r)
		}
	}

	sb.WriteString("\n위 검색 결과를 참고하여 사용자의 질문에 답변해주세요.")
	return sb.String()
}

func writeConsultation(sb *strings.Builder, index int, r Result) {
	fmt.Fprintf(sb, "[%d] ", index)
	if r.Title != "" {
		fmt.Fprintf(sb, "제목: %s\n", r.Title)
	}
	if r.Category != "" {
		fmt.Fprintf(sb, "     분야: %s\n", r.Category)
	}
	if r.Content != "" {
		fmt.Fprintf(sb, "     내용: %s\n", truncate(r.Content, consultationContentLimit))
	}
	if len(r.LawRefs) > 0 {
		sb.WriteString("     연관 법령 조문:\n")
		for _, ref := range r.LawRefs {
			fmt.Fprintf(sb, "       - %s %s\n", ref.LawId, ref.ArticleKey)
		}
	}
	fmt.Fprintf(sb, "     유사도: %.2f\n", r.SimilarityScore)
	if r.ConsultationId != 0 {
		fmt.Fprintf(sb, "     상담ID: %d\n", r.ConsultationId)
	}
	sb.WriteString("\n")
}

func writeArticle(sb *strings.Builder, index int, r Result) {
	fmt.Fprintf(sb, "[%d] ", index)
	label := r.ArticleLabel
	if label == "" {
		label = "(조문키: " + r.ArticleKey + ")"
	}
	if r.LawName != "" {
		fmt.Fprintf(sb, "%s %s", r.LawName, label)
	} else {
		fmt.Fprintf(sb, "%s %s", r.LawId, label)
	}
	if r.ArticleTitle != "" {
		fmt.Fprintf(sb, " - %s", r.ArticleTitle)
	}
	sb.WriteString("\n")
	if r.Content != "" {
		fmt.Fprintf(sb, "     조문 내용: %s\n", truncate(r.Content, articleContentLimit))
	}
	fmt.Fprintf(sb, "     유사도: %.2f\n", r.SimilarityScore)
	sb.WriteString("\n")
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
