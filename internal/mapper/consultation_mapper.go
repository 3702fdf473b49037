package mapper

import (
	"encoding/json"
	"time"

	"ai-taxconsult-be/internal/entity"
	"ai-taxconsult-be/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ConsultationMapper struct{}

func NewConsultationMapper() *ConsultationMapper {
	return &ConsultationMapper{}
}

func (m *ConsultationMapper) ToEntity(e *model.Consultation) *entity.Consultation {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	var lawRefs []entity.LawRef
	if len(e.LawRefs) > 0 {
		_ = json.Unmarshal(e.LawRefs, &lawRefs)
	}

	return &entity.Consultation{
		Id:        e.Id,
		Title:     e.Title,
		Category:  e.Category,
		Content:   e.Content,
		LawRefs:   lawRefs,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: e.DeletedAt.Valid,
	}
}

func (m *ConsultationMapper) ToModel(e *entity.Consultation) *model.Consultation {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	var lawRefs datatypes.JSON
	if e.LawRefs != nil {
		if data, err := json.Marshal(e.LawRefs); err == nil {
			lawRefs = data
		}
	}

	return &model.Consultation{
		Id:        e.Id,
		Title:     e.Title,
		Category:  e.Category,
		Content:   e.Content,
		LawRefs:   lawRefs,
		CreatedAt: e.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}
