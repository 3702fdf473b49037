package main

import (
	"log"
	"os"

	"ai-taxconsult-be/internal/model"
	"ai-taxconsult-be/pkg/database"

	"github.com/joho/godotenv"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	seedLawArticles(db)
	seedConsultations(db)

	log.Println("Seeding completed. Run the embed endpoints to index the new rows.")
}

func seedLawArticles(db *gorm.DB) {
	articles := []model.LawArticle{
		{
			LawId:        "vat-act",
			ArticleKey:   "art-26",
			LawName:      "부가가치세법",
			ArticleLabel: "제26조",
			ArticleTitle: "재화 또는 용역의 공급에 대한 면세",
			Content:      "다음 각 호의 재화 또는 용역의 공급에 대하여는 부가가치세를 면제한다. 1. 가공되지 아니한 식료품 및 우리나라에서 생산되어 식용으로 제공되지 아니하는 농산물, 축산물, 수산물과 임산물...",
		},
		{
			LawId:        "income-tax-act",
			ArticleKey:   "art-70",
			LawName:      "소득세법",
			ArticleLabel: "제70조",
			ArticleTitle: "종합소득 과세표준 확정신고",
			Content:      "해당 과세기간의 종합소득금액이 있는 거주자는 그 종합소득 과세표준을 그 과세기간의 다음 연도 5월 1일부터 5월 31일까지 납세지 관할 세무서장에게 신고하여야 한다.",
		},
		{
			LawId:        "corporate-tax-act",
			ArticleKey:   "art-13",
			LawName:      "법인세법",
			ArticleLabel: "제13조",
			ArticleTitle: "과세표준",
			Content:      "내국법인의 각 사업연도의 소득에 대한 법인세의 과세표준은 각 사업연도의 소득의 범위에서 이월결손금, 비과세소득, 소득공제액을 차례로 공제한 금액으로 한다.",
		},
	}

	for _, article := range articles {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "law_id"}, {Name: "article_key"}},
			UpdateAll: true,
		}).Create(&article).Error
		if err != nil {
			log.Printf("Warn: Failed to seed law article %s %s: %v", article.LawId, article.ArticleKey, err)
		}
	}
	log.Printf("Seeded %d law articles", len(articles))
}

func seedConsultations(db *gorm.DB) {
	consultations := []model.Consultation{
		{
			Title:    "간이과세자 부가가치세 신고 문의",
			Category: "부가가치세",
			Content:  "간이과세자로 등록한 개인사업자입니다. 연 매출이 4,800만원 미만인데 부가가치세 신고를 해야 하나요? 간이과세자는 1월에 한 번 신고하며, 직전 연도 공급대가가 4,800만원 미만이면 납부 의무가 면제되지만 신고는 하여야 합니다.",
			LawRefs:  datatypes.JSON([]byte(`[{"lawId":"vat-act","articleKey":"art-26"}]`)),
		},
		{
			Title:    "프리랜서 종합소득세 신고 기간",
			Category: "소득세",
			Content:  "프리랜서로 일하고 있는데 종합소득세는 언제까지 신고해야 하나요? 종합소득세는 다음 연도 5월 1일부터 5월 31일까지 신고 및 납부하여야 합니다. 성실신고확인 대상자는 6월 30일까지입니다.",
			LawRefs:  datatypes.JSON([]byte(`[{"lawId":"income-tax-act","articleKey":"art-70"}]`)),
		},
	}

	for _, consultation := range consultations {
		if err := db.Create(&consultation).Error; err != nil {
			log.Printf("Warn: Failed to seed consultation %q: %v", consultation.Title, err)
		}
	}
	log.Printf("Seeded %d consultations", len(consultations))
}
