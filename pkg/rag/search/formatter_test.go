package search

import (
	"strings"
	"testing"

	"ai-taxconsult-be/internal/constant"
	"ai-taxconsult-be/internal/entity"
)

func TestFormatResultsEmpty(t *testing.T) {
	got := FormatResults("존재하지 않는 주제", nil)
	if !strings.Contains(got, "찾을 수 없습니다") {
		t.Errorf("empty result message missing, got %q", got)
	}
	if !strings.Contains(got, "존재하지 않는 주제") {
		t.Error("query should be echoed back")
	}
}

func TestFormatResultsGrouping(t *testing.T) {
	results := []Result{
		{
			DocumentType:    constant.DocumentTypeConsultation,
			Title:           "간이과세 문의",
			Category:        "부가가치세",
			Content:         "간이과세자 기준 문의 내용",
			SimilarityScore: 0.91,
			ConsultationId:  12,
			LawRefs:         []entity.LawRef{{LawId: "vat-act", ArticleKey: "art-26"}},
		},
		{
			DocumentType:    constant.DocumentTypeLawArticle,
			LawId:           "vat-act",
			LawName:         "부가가치세법",
			ArticleKey:      "art-26",
			ArticleLabel:    "제26조",
			ArticleTitle:    "면세",
			Content:         "부가가치세를 면제한다",
			SimilarityScore: 0.84,
		},
	}

	got := FormatResults("간이과세", results)

	for _, want := range []string{
		"=== 상담 사례 (1건) ===",
		"=== 법령 조문 (1건) ===",
		"제목: 간이과세 문의",
		"vat-act art-26",
		"부가가치세법 제26조 - 면세",
		"상담ID: 12",
		"유사도: 0.91",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted output missing %q", want)
		}
	}
	// consultations render before articles
	if strings.Index(got, "상담 사례") > strings.Index(got, "법령 조문") {
		t.Error("consultations should precede law articles")
	}
}

func TestFormatResultsTruncatesContent(t *testing.T) {
	long := strings.Repeat("가", 600)
	results := []Result{{
		DocumentType: constant.DocumentTypeConsultation,
		Content:      long,
	}}

	got := FormatResults("질의", results)

	if strings.Contains(got, long) {
		t.Error("content over the limit should be truncated")
	}
	if !strings.Contains(got, strings.Repeat("가", 500)+"...") {
		t.Error("truncated content should end with an ellipsis")
	}
}

func TestFormatResultsArticleLabelFallback(t *testing.T) {
	results := []Result{{
		DocumentType: constant.DocumentTypeLawArticle,
		LawId:        "vat-act",
		ArticleKey:   "art-3",
	}}

	got := FormatResults("질의", results)

	if !strings.Contains(got, "(조문키: art-3)") {
		t.Errorf("expected article key fallback label, got %q", got)
	}
}
